package transport

import (
	"encoding/binary"

	"github.com/ejosue98/openmv-rpc-go/protocol"
)

// StreamReader consumes a credit-based byte stream opened against a
// writer on the other end of transport. It advances a rolling LFSR token
// with every chunk it accepts and returns that token to the writer as
// proof of consumption, so the writer never sends more than queueDepth
// chunks ahead of what the reader has acknowledged.
type StreamReader struct {
	transport  Transport
	clock      Clock
	queueDepth uint32
	lfsr       byte

	openBuf  [protocol.StreamOpenPayloadSize + protocol.PacketOverhead]byte
	dataHead [protocol.StreamDataHeaderPayloadSize + protocol.PacketOverhead]byte
}

// NewStreamReader constructs a StreamReader that will advertise
// queueDepth as the number of in-flight chunks it is willing to buffer.
// Over the half-duplex transports (I2C, SPI) the writer clamps the
// negotiated depth to 1 (see NewStreamWriter), whatever the reader
// advertises.
func NewStreamReader(transport Transport, queueDepth uint32) *StreamReader {
	return &StreamReader{transport: transport, clock: systemClock{}, queueDepth: queueDepth, lfsr: protocol.StreamLFSRSeed}
}

// Open sends STREAM_READER_OPEN advertising the reader's queue depth and
// waits up to deadlineMs for the writer's acknowledgement.
func (r *StreamReader) Open(deadlineMs uint32) bool {
	var payload [protocol.StreamOpenPayloadSize]byte
	binary.LittleEndian.PutUint32(payload[:], r.queueDepth)
	protocol.EncodePacket(r.openBuf[:], protocol.StreamReaderOpenMagic, payload[:])

	start := r.clock.NowMs()
	for r.clock.NowMs()-start < deadlineMs {
		r.transport.PutBytes(r.openBuf[:], protocol.StreamControlTimeoutMs)

		var ack [protocol.PacketOverhead]byte
		if r.transport.GetBytes(ack[:], protocol.StreamControlTimeoutMs) &&
			protocol.DecodePacket(ack[:], protocol.StreamReaderOpenMagic) {
			return true
		}
	}
	return false
}

// ReadChunk receives one STREAM_DATA chunk into buf, where buf is sized
// to exactly the negotiated chunk length plus protocol.PacketOverhead,
// and returns the credit-return token to send back to the writer along
// with the payload borrowed from buf. The stream terminates the instant
// either the magic or the CRC fails to validate — the reader never
// tolerates one without the other (unlike the header's original guard).
func (r *StreamReader) ReadChunk(buf []byte, timeoutMs uint32) (payload []byte, token byte, ok bool) {
	if !r.transport.GetBytes(buf, timeoutMs) {
		return nil, 0, false
	}

	magicOK := binary.LittleEndian.Uint16(buf[0:2]) == protocol.StreamDataMagic
	crcOK := protocol.DecodePacket(buf, protocol.StreamDataMagic)
	if !magicOK || !crcOK {
		return nil, 0, false
	}

	r.lfsr = protocol.AdvanceLFSR(r.lfsr)
	return protocol.PacketPayload(buf), r.lfsr, true
}

// StreamWriter produces a credit-based byte stream. It clamps the
// reader's advertised queue depth to its own configured maximum and
// blocks sending further chunks once that many are outstanding without
// a returned credit token.
type StreamWriter struct {
	transport Transport
	clock     Clock
	maxDepth  uint32
	credits   uint32
	lfsr      byte

	openAck [protocol.PacketOverhead]byte
}

// NewStreamWriter constructs a StreamWriter that will never allow more
// than maxDepth chunks to be outstanding, regardless of what the reader
// requests at Open time. Over the half-duplex I2C and SPI transports
// maxDepth is clamped to 1.
func NewStreamWriter(transport Transport, maxDepth uint32) *StreamWriter {
	switch transport.(type) {
	case *I2C, *SPI:
		maxDepth = min32(maxDepth, 1)
	}
	return &StreamWriter{transport: transport, clock: systemClock{}, maxDepth: maxDepth, lfsr: protocol.StreamLFSRSeed}
}

// AwaitOpen waits up to deadlineMs for a STREAM_READER_OPEN, clamps the
// requested queue depth to maxDepth, and acknowledges it.
func (w *StreamWriter) AwaitOpen(deadlineMs uint32) (queueDepth uint32, ok bool) {
	var openBuf [protocol.StreamOpenPayloadSize + protocol.PacketOverhead]byte
	start := w.clock.NowMs()

	for w.clock.NowMs()-start < deadlineMs {
		if w.transport.GetBytes(openBuf[:], protocol.StreamControlTimeoutMs) &&
			protocol.DecodePacket(openBuf[:], protocol.StreamReaderOpenMagic) {

			requested := binary.LittleEndian.Uint32(protocol.PacketPayload(openBuf[:]))
			queueDepth = requested
			if queueDepth > w.maxDepth {
				queueDepth = w.maxDepth
			}
			if queueDepth < 1 {
				queueDepth = 1
			}
			w.credits = queueDepth

			protocol.EncodePacket(w.openAck[:], protocol.StreamReaderOpenMagic, nil)
			w.transport.PutBytes(w.openAck[:], protocol.StreamControlTimeoutMs)
			return queueDepth, true
		}
	}
	return 0, false
}

// WriteChunk encodes chunk into buf (sized to len(chunk)+
// protocol.PacketOverhead, typically the caller's own scratch buffer)
// and sends it as one STREAM_DATA packet, refusing if no credit is
// available (a credit is consumed per chunk sent and replenished by
// AcceptCredit as the reader's tokens arrive).
func (w *StreamWriter) WriteChunk(buf, chunk []byte, timeoutMs uint32) bool {
	if w.credits == 0 {
		return false
	}

	protocol.EncodePacket(buf, protocol.StreamDataMagic, chunk)
	if !w.transport.PutBytes(buf, timeoutMs) {
		return false
	}
	w.credits--
	return true
}

// AcceptCredit validates a credit-return token against the writer's own
// LFSR state, advancing it and replenishing one credit on a match. Either
// a magic or a CRC mismatch upstream of this call already terminates the
// stream in ReadChunk; AcceptCredit only ever sees well-formed tokens.
func (w *StreamWriter) AcceptCredit(token byte) bool {
	w.lfsr = protocol.AdvanceLFSR(w.lfsr)
	if token != w.lfsr {
		return false
	}
	w.credits++
	return true
}
