package transport

import (
	"context"
	"encoding/binary"
	"log"

	"github.com/ejosue98/openmv-rpc-go/protocol"
	"github.com/ejosue98/openmv-rpc-go/registry"
)

// Slave drives the mirror image of Master's handshakes: it waits for a
// command header and data, dispatches the decoded command through its
// registry, and holds the result until the master polls for it. A Slave
// is not safe for concurrent use; Loop is the only entry point that
// should run against a given Transport.
type Slave struct {
	transport Transport
	buf       []byte
	clock     Clock
	timeouts  timeoutState
	callbacks *registry.Table

	scheduleCb func()
	loopCb     func()

	inHeaderBuf          [protocol.CommandHeaderPayloadSize + protocol.PacketOverhead]byte
	outCommandHeaderAck  [protocol.PacketOverhead]byte
	outCommandDataAck    [protocol.PacketOverhead]byte
	outResultHeader      [protocol.ResultHeaderPayloadSize + protocol.PacketOverhead]byte
}

// NewSlave constructs a Slave bound to transport and buf, with a dispatch
// registry of the given capacity. buf must be at least as large as the
// largest command payload or result this slave will ever exchange, plus
// protocol.PacketOverhead.
func NewSlave(transport Transport, buf []byte, registryCapacity int) *Slave {
	s := &Slave{
		transport: transport,
		buf:       buf,
		clock:     systemClock{},
		callbacks: registry.New(registryCapacity),
		timeouts: newTimeoutState(
			protocol.DefaultPutShortTimeoutMs, protocol.DefaultGetShortTimeoutMs,
			protocol.DefaultPutLongTimeoutMs, protocol.DefaultGetLongTimeoutMs,
		),
	}
	protocol.EncodePacket(s.outCommandHeaderAck[:], protocol.CommandHeaderMagic, nil)
	protocol.EncodePacket(s.outCommandDataAck[:], protocol.CommandDataMagic, nil)
	return s
}

// RegisterCallback binds cmdHash to cb, upserting in place if cmdHash is
// already registered. It returns false if the registry is full and
// cmdHash is new.
func (s *Slave) RegisterCallback(cmdHash uint32, cb registry.Callback) bool {
	return s.callbacks.Register(cmdHash, cb)
}

// RegisterCallbackByName is RegisterCallback with the procedure name
// hashed via protocol.Hash.
func (s *Slave) RegisterCallbackByName(name string, cb registry.Callback) bool {
	return s.RegisterCallback(protocol.Hash(name), cb)
}

// ScheduleCallback arms a one-shot function: the next time Loop delivers
// a result successfully, cb runs immediately afterward and is then
// cleared. Call it again to arm another one-shot callback.
func (s *Slave) ScheduleCallback(cb func()) { s.scheduleCb = cb }

// SetupLoopCallback sets a function invoked at the end of every Loop
// iteration, for cooperative background work the caller wants run on the
// same goroutine as the loop itself.
func (s *Slave) SetupLoopCallback(cb func()) { s.loopCb = cb }

// GetCommand waits up to deadlineMs for a complete command header and
// data, escalating its short timeouts additively on every failed
// attempt. On success it returns the decoded command hash and a slice of
// the command payload borrowed from the Slave's buffer.
func (s *Slave) GetCommand(deadlineMs uint32) (cmdHash uint32, payload []byte, ok bool) {
	s.timeouts.reset()
	start := s.clock.NowMs()

	for s.clock.NowMs()-start < deadlineMs {
		clear(s.inHeaderBuf[:])
		s.transport.Flush()

		if s.transport.GetBytes(s.inHeaderBuf[:], s.timeouts.getShort) &&
			protocol.DecodePacket(s.inHeaderBuf[:], protocol.CommandHeaderMagic) {

			header := protocol.PacketPayload(s.inHeaderBuf[:])
			cmdHash = binary.LittleEndian.Uint32(header[0:4])
			dataLen := binary.LittleEndian.Uint32(header[4:8])
			total := int(dataLen) + protocol.PacketOverhead

			if len(s.buf) < total {
				return 0, nil, false
			}

			s.transport.PutBytes(s.outCommandHeaderAck[:], s.timeouts.putShort)

			if s.transport.GetBytes(s.buf[:total], s.timeouts.getLong) &&
				protocol.DecodePacket(s.buf[:total], protocol.CommandDataMagic) {
				s.transport.PutBytes(s.outCommandDataAck[:], s.timeouts.putShort)
				return cmdHash, protocol.PacketPayload(s.buf[:total]), true
			}
		}

		s.timeouts.escalateAdditive(deadlineMs)
	}

	return 0, nil, false
}

// PutResult stages data as the result of the most recently dispatched
// command and serves it to the master's RESULT_HEADER/RESULT_DATA polls
// until deadlineMs elapses, escalating additively on every poll round
// that doesn't land.
func (s *Slave) PutResult(data []byte, deadlineMs uint32) bool {
	if len(s.buf) < len(data)+protocol.PacketOverhead {
		return false
	}

	var header [protocol.ResultHeaderPayloadSize]byte
	binary.LittleEndian.PutUint32(header[0:4], uint32(len(data)))
	protocol.EncodePacket(s.outResultHeader[:], protocol.ResultHeaderMagic, header[:])

	dataPacketLen := len(data) + protocol.PacketOverhead
	protocol.EncodePacket(s.buf[:dataPacketLen], protocol.ResultDataMagic, data)

	s.timeouts.reset()
	start := s.clock.NowMs()

	var pollBuf [protocol.PacketOverhead]byte

	for s.clock.NowMs()-start < deadlineMs {
		clear(pollBuf[:])

		if s.transport.GetBytes(pollBuf[:], s.timeouts.getShort) &&
			protocol.DecodePacket(pollBuf[:], protocol.ResultHeaderMagic) {
			s.transport.PutBytes(s.outResultHeader[:], s.timeouts.putShort)

			clear(pollBuf[:])
			if s.transport.GetBytes(pollBuf[:], s.timeouts.getShort) &&
				protocol.DecodePacket(pollBuf[:], protocol.ResultDataMagic) {
				s.transport.PutBytes(s.buf[:dataPacketLen], s.timeouts.putLong)
				return true
			}
		}

		s.timeouts.escalateAdditive(deadlineMs)
	}

	return false
}

// Loop runs GetCommand/dispatch/PutResult forever, returning only when
// ctx is cancelled. Cancellation is only observed between iterations:
// an in-flight GetCommand or PutResult attempt always runs to its own
// deadline, per the no-asynchronous-cancellation rule.
func (s *Slave) Loop(ctx context.Context, getTimeoutMs, putTimeoutMs uint32) {
	for {
		if ctx.Err() != nil {
			return
		}

		cmdHash, payload, ok := s.GetCommand(getTimeoutMs)
		if ok {
			cb, found := s.callbacks.Lookup(cmdHash)
			var out []byte
			if found {
				cb(payload, &out)
			} else {
				log.Printf("rpc: no callback registered for command %#08x", cmdHash)
			}

			if s.PutResult(out, putTimeoutMs) {
				if s.scheduleCb != nil {
					s.scheduleCb()
					s.scheduleCb = nil
				}
			} else {
				log.Printf("rpc: failed to deliver result for command %#08x", cmdHash)
			}
		}

		if s.loopCb != nil {
			s.loopCb()
		}
	}
}
