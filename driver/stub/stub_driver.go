//go:build !tinygo && !baremetal

// Package stub provides host-side test doubles for the transport
// collaborator interfaces (transport.Port, transport.BitReader/BitWriter,
// transport.I2CBus, transport.SPIBus, transport.CANBus), so tests can
// drive the protocol state machines without real hardware.
package stub

import (
	"sync"
	"time"
)

const ringCapacity = 64

// ringBuffer is a small fixed-capacity FIFO of byte slices, shared by the
// frame-oriented doubles below (CAN, I2C, SPI).
type ringBuffer struct {
	data       [ringCapacity][]byte
	head, tail int
	count      int
}

func (rb *ringBuffer) push(frame []byte) {
	if rb.count == ringCapacity {
		rb.data[rb.tail] = nil
		rb.head = (rb.head + 1) % ringCapacity
		rb.count--
	}
	cp := make([]byte, len(frame))
	copy(cp, frame)
	rb.data[rb.tail] = cp
	rb.tail = (rb.tail + 1) % ringCapacity
	rb.count++
}

func (rb *ringBuffer) pop() ([]byte, bool) {
	if rb.count == 0 {
		return nil, false
	}
	frame := rb.data[rb.head]
	rb.data[rb.head] = nil
	rb.head = (rb.head + 1) % ringCapacity
	rb.count--
	return frame, true
}

// BytePort is a loopback-style test double for transport.Port: bytes
// written to one side become readable from the other's Read once the
// two are wired together with Pipe.
type BytePort struct {
	mu   sync.Mutex
	in   []byte
	peer *BytePort

	readDeadline time.Time
}

// Pipe returns two BytePorts wired so each one's writes are the other's
// reads, modelling a full-duplex point-to-point UART link in memory.
func Pipe() (a, b *BytePort) {
	a = &BytePort{}
	b = &BytePort{}
	a.peer = b
	b.peer = a
	return a, b
}

func (p *BytePort) Read(buf []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.in) == 0 {
		if !p.readDeadline.IsZero() && !time.Now().Before(p.readDeadline) {
			return 0, errTimeout
		}
		return 0, nil
	}
	n := copy(buf, p.in)
	p.in = p.in[n:]
	return n, nil
}

func (p *BytePort) Write(data []byte) (int, error) {
	if p.peer == nil {
		return 0, errTimeout
	}
	p.peer.mu.Lock()
	p.peer.in = append(p.peer.in, data...)
	p.peer.mu.Unlock()
	return len(data), nil
}

func (p *BytePort) SetReadDeadline(t time.Time) error {
	p.mu.Lock()
	p.readDeadline = t
	p.mu.Unlock()
	return nil
}

func (p *BytePort) SetWriteDeadline(time.Time) error { return nil }

var errTimeout = &timeoutError{}

type timeoutError struct{}

func (*timeoutError) Error() string { return "stub: i/o timeout" }

// BitPort is a loopback test double for transport.BitReader/BitWriter,
// modelling a bit-banged software UART with the same Pipe shape as
// BytePort but byte-at-a-time, non-blocking reads.
type BitPort struct {
	mu   sync.Mutex
	in   []byte
	peer *BitPort
}

func BitPipe() (a, b *BitPort) {
	a = &BitPort{}
	b = &BitPort{}
	a.peer = b
	b.peer = a
	return a, b
}

func (p *BitPort) TryReadByte() (byte, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.in) == 0 {
		return 0, false
	}
	b := p.in[0]
	p.in = p.in[1:]
	return b, true
}

func (p *BitPort) WriteByte(b byte) bool {
	if p.peer == nil {
		return false
	}
	p.peer.mu.Lock()
	p.peer.in = append(p.peer.in, b)
	p.peer.mu.Unlock()
	return true
}

// FrameBus is a shared loopback double for the three chunked transports
// (CAN, I2C, SPI): each side's sent frames queue on the other side's
// ringBuffer, and Recv/Read pop whatever is queued, or report "no data"
// in whatever shape the caller's interface expects.
type FrameBus struct {
	mu   sync.Mutex
	in   ringBuffer
	peer *FrameBus
}

func FramePipe() (a, b *FrameBus) {
	a = &FrameBus{}
	b = &FrameBus{}
	a.peer = b
	b.peer = a
	return a, b
}

func (f *FrameBus) send(frame []byte) {
	f.peer.mu.Lock()
	f.peer.in.push(frame)
	f.peer.mu.Unlock()
}

func (f *FrameBus) recv() ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.in.pop()
}

// CANSend, CANRecv, I2CRead, I2CWrite, and SPITransfer adapt FrameBus to
// the field-function shape transport.CANBus/I2CBus/SPIBus expect.

func (f *FrameBus) CANSend(id uint32, data []byte) bool {
	f.send(data)
	return true
}

func (f *FrameBus) CANRecv(timeoutMs uint32) ([]byte, bool) {
	deadline := time.Now().Add(time.Duration(timeoutMs) * time.Millisecond)
	for {
		if frame, ok := f.recv(); ok {
			return frame, true
		}
		if time.Now().After(deadline) {
			return nil, false
		}
	}
}

func (f *FrameBus) I2CRead(addr byte, buf []byte) bool {
	frame, ok := f.recv()
	if !ok {
		return false
	}
	n := copy(buf, frame)
	for ; n < len(buf); n++ {
		buf[n] = 0xFF
	}
	return true
}

func (f *FrameBus) I2CWrite(addr byte, data []byte) bool {
	f.send(data)
	return true
}

func (f *FrameBus) SPITransfer(tx, rx []byte) bool {
	if len(tx) > 0 {
		f.send(tx)
	}
	if rx != nil {
		frame, ok := f.recv()
		if !ok {
			for i := range rx {
				rx[i] = 0xFF
			}
			return true
		}
		n := copy(rx, frame)
		for ; n < len(rx); n++ {
			rx[n] = 0xFF
		}
	}
	return true
}
