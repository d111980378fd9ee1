// Package protocol implements the wire format shared by the master and
// slave endpoints: packet framing, CRC-16, the djb2 command hash and the
// LFSR credit token used by the streaming sub-protocol. Nothing in this
// package touches a transport; it is pure bit arithmetic over caller
// supplied buffers.
package protocol

// Packet magic values. Each direction of a phase reuses the same magic;
// an ACK/poll packet is distinguished only by carrying no payload between
// magic and CRC (see DecodePacket).
const (
	CommandHeaderMagic = 0x1209 // master->slave: (cmd_hash, payload_len); slave->master ack (empty)
	CommandDataMagic   = 0xABD1 // master->slave: payload bytes; slave->master ack (empty)
	ResultHeaderMagic  = 0x9DC2 // master->slave poll (empty); slave->master: (result_len)
	ResultDataMagic    = 0x4E4D // master->slave poll (empty); slave->master: payload bytes

	StreamReaderOpenMagic = 0xEDF6 // reader->writer: (queue_depth)
	StreamDataMagic       = 0x542E // writer->reader: chunk payload inside one framed packet; no separate size header or unframed bytes are sent
)

// Wire-format sizes, in bytes.
const (
	MagicSize = 2
	CRCSize   = 2

	// PacketOverhead is the magic+CRC bytes every packet carries in
	// addition to its payload.
	PacketOverhead = MagicSize + CRCSize

	// CommandHeaderPayloadSize is sizeof(cmd_hash:u32) + sizeof(payload_len:u32).
	CommandHeaderPayloadSize = 8

	// ResultHeaderPayloadSize is sizeof(result_len:u32).
	ResultHeaderPayloadSize = 4

	// StreamOpenPayloadSize is sizeof(queue_depth:u32).
	StreamOpenPayloadSize = 4

	// StreamDataHeaderPayloadSize is sizeof(size:u32).
	StreamDataHeaderPayloadSize = 4
)

// Default timeout baselines, in milliseconds. NewMaster and NewSlave use
// them as-is (they take no timeout arguments); they are the values a
// handshake resets to at the start of every PutCommand/GetResult/
// GetCommand/PutResult attempt.
const (
	DefaultPutShortTimeoutMs uint32 = 50
	DefaultGetShortTimeoutMs uint32 = 50
	DefaultPutLongTimeoutMs  uint32 = 300
	DefaultGetLongTimeoutMs  uint32 = 300

	// DefaultStreamWriterQueueDepthMax is the unclamped ceiling for
	// full-duplex transports. transport.NewStreamWriter clamps the
	// writer's maximum to 1 over the half-duplex I2C and SPI transports.
	DefaultStreamWriterQueueDepthMax uint32 = 255
)

// StreamControlTimeoutMs bounds the small fixed control exchanges inside
// the streaming sub-protocol (the open handshake and each credit-return
// byte). It is not configurable, mirroring the reference implementation's
// literal 1000ms budget for these exchanges.
const StreamControlTimeoutMs uint32 = 1000
