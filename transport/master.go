package transport

import (
	"encoding/binary"

	"github.com/ejosue98/openmv-rpc-go/protocol"
)

// Master drives the four-phase call handshake and the four-phase result
// retrieval handshake against a single slave over one Transport, using
// one caller-supplied, externally owned buffer for the duration of each
// call. A Master is not safe for concurrent use: at most one call is ever
// in flight on a link (spec §5).
type Master struct {
	transport Transport
	buf       []byte
	clock     Clock
	timeouts  timeoutState

	outHeader              [protocol.CommandHeaderPayloadSize + protocol.PacketOverhead]byte
	inCommandHeaderAckBuf  [protocol.PacketOverhead]byte
	inCommandDataAckBuf    [protocol.PacketOverhead]byte
	outResultHeaderPoll    [protocol.PacketOverhead]byte
	outResultDataPoll      [protocol.PacketOverhead]byte
	inResultHeaderBuf      [protocol.ResultHeaderPayloadSize + protocol.PacketOverhead]byte
}

// NewMaster constructs a Master bound to transport and buf. buf is held
// exclusively by the Master for the duration of each call; it must be at
// least as large as the largest payload this master will ever send or
// receive, plus protocol.PacketOverhead.
func NewMaster(transport Transport, buf []byte) *Master {
	m := &Master{
		transport: transport,
		buf:       buf,
		clock:     systemClock{},
		timeouts: newTimeoutState(
			protocol.DefaultPutShortTimeoutMs, protocol.DefaultGetShortTimeoutMs,
			protocol.DefaultPutLongTimeoutMs, protocol.DefaultGetLongTimeoutMs,
		),
	}
	protocol.EncodePacket(m.outResultHeaderPoll[:], protocol.ResultHeaderMagic, nil)
	protocol.EncodePacket(m.outResultDataPoll[:], protocol.ResultDataMagic, nil)
	return m
}

// PutCommand sends cmdHash with data as the call's command payload,
// retrying the header/data handshake with escalating short timeouts until
// it succeeds or deadlineMs elapses.
func (m *Master) PutCommand(cmdHash uint32, data []byte, deadlineMs uint32) bool {
	if len(m.buf) < len(data)+protocol.PacketOverhead {
		return false
	}

	var header [protocol.CommandHeaderPayloadSize]byte
	binary.LittleEndian.PutUint32(header[0:4], cmdHash)
	binary.LittleEndian.PutUint32(header[4:8], uint32(len(data)))
	protocol.EncodePacket(m.outHeader[:], protocol.CommandHeaderMagic, header[:])

	dataPacketLen := len(data) + protocol.PacketOverhead
	protocol.EncodePacket(m.buf[:dataPacketLen], protocol.CommandDataMagic, data)

	m.timeouts.reset()
	start := m.clock.NowMs()

	for m.clock.NowMs()-start < deadlineMs {
		clear(m.inCommandHeaderAckBuf[:])
		clear(m.inCommandDataAckBuf[:])
		m.transport.Flush()

		m.transport.PutBytes(m.outHeader[:], m.timeouts.putShort)
		if m.transport.GetBytes(m.inCommandHeaderAckBuf[:], m.timeouts.getShort) &&
			protocol.DecodePacket(m.inCommandHeaderAckBuf[:], protocol.CommandHeaderMagic) {

			m.transport.PutBytes(m.buf[:dataPacketLen], m.timeouts.putLong)
			if m.transport.GetBytes(m.inCommandDataAckBuf[:], m.timeouts.getShort) &&
				protocol.DecodePacket(m.inCommandDataAckBuf[:], protocol.CommandDataMagic) {
				return true
			}
		}

		m.timeouts.escalateGeometric(deadlineMs)
	}

	return false
}

// GetResult polls the slave for the result of the most recently submitted
// command, retrying with escalating short timeouts until it succeeds or
// deadlineMs elapses. The returned slice is borrowed from the Master's
// buffer and is only valid until the next call.
func (m *Master) GetResult(deadlineMs uint32) ([]byte, bool) {
	m.timeouts.reset()
	start := m.clock.NowMs()

	for m.clock.NowMs()-start < deadlineMs {
		clear(m.inResultHeaderBuf[:])
		m.transport.Flush()

		m.transport.PutBytes(m.outResultHeaderPoll[:], m.timeouts.putShort)
		if m.transport.GetBytes(m.inResultHeaderBuf[:], m.timeouts.getShort) &&
			protocol.DecodePacket(m.inResultHeaderBuf[:], protocol.ResultHeaderMagic) {

			resultLen := binary.LittleEndian.Uint32(m.inResultHeaderBuf[2:6])
			total := int(resultLen) + protocol.PacketOverhead
			if len(m.buf) < total {
				return nil, false
			}

			m.transport.PutBytes(m.outResultDataPoll[:], m.timeouts.putShort)
			if m.transport.GetBytes(m.buf[:total], m.timeouts.getLong) &&
				protocol.DecodePacket(m.buf[:total], protocol.ResultDataMagic) {
				return protocol.PacketPayload(m.buf[:total]), true
			}
		}

		m.timeouts.escalateGeometric(deadlineMs)
	}

	return nil, false
}

// Call composes PutCommand and GetResult: it submits cmdHash with in as
// the command payload, then retrieves the result into result (truncated
// or zero-padded to len(result)). If failOnEmpty is true, an empty result
// is treated as a failure. On any failure, result is zeroed.
func (m *Master) Call(cmdHash uint32, in []byte, result []byte, sendTimeoutMs, recvTimeoutMs uint32, failOnEmpty bool) bool {
	ok := m.PutCommand(cmdHash, in, sendTimeoutMs)
	var data []byte
	if ok {
		data, ok = m.GetResult(recvTimeoutMs)
	}
	if ok && failOnEmpty && len(data) == 0 {
		ok = false
	}
	clear(result)
	if !ok {
		return false
	}
	copy(result, data)
	return true
}

// CallByName is Call with the procedure name hashed via protocol.Hash.
func (m *Master) CallByName(name string, in []byte, result []byte, sendTimeoutMs, recvTimeoutMs uint32, failOnEmpty bool) bool {
	return m.Call(protocol.Hash(name), in, result, sendTimeoutMs, recvTimeoutMs, failOnEmpty)
}

// CallBorrowed is Call's no-copy form: on success it returns a slice
// borrowed from the Master's internal buffer (valid until the next call)
// instead of copying into a caller-supplied destination.
func (m *Master) CallBorrowed(cmdHash uint32, in []byte, sendTimeoutMs, recvTimeoutMs uint32) ([]byte, bool) {
	if !m.PutCommand(cmdHash, in, sendTimeoutMs) {
		return nil, false
	}
	return m.GetResult(recvTimeoutMs)
}
