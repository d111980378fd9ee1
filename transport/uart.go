package transport

import "time"

// Port is the collaborator a hardware UART transport wraps: a duplex
// byte stream with independently settable read/write deadlines, the
// shape a termios-backed serial port or a TinyGo machine.UART naturally
// presents.
type Port interface {
	Read(buf []byte) (int, error)
	Write(data []byte) (int, error)
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
}

// HardwareUART adapts a native, interrupt- or DMA-backed UART port to
// Transport. Because the underlying stream already honours read/write
// deadlines, GetBytes/PutBytes need no chunking or heuristics of their
// own — the link is byte-exact and full-duplex.
type HardwareUART struct {
	port Port
}

func NewHardwareUART(port Port) *HardwareUART { return &HardwareUART{port: port} }

func (u *HardwareUART) GetBytes(buf []byte, timeoutMs uint32) bool {
	u.port.SetReadDeadline(time.Now().Add(time.Duration(timeoutMs) * time.Millisecond))
	n := 0
	for n < len(buf) {
		m, err := u.port.Read(buf[n:])
		n += m
		if err != nil {
			break
		}
	}
	return n == len(buf)
}

func (u *HardwareUART) PutBytes(data []byte, timeoutMs uint32) bool {
	u.port.SetWriteDeadline(time.Now().Add(time.Duration(timeoutMs) * time.Millisecond))
	n := 0
	for n < len(data) {
		m, err := u.port.Write(data[n:])
		n += m
		if err != nil {
			break
		}
	}
	return n == len(data)
}

func (u *HardwareUART) Flush() {
	var discard [64]byte
	u.port.SetReadDeadline(time.Now())
	for {
		n, err := u.port.Read(discard[:])
		if n == 0 || err != nil {
			return
		}
	}
}

// softwareUARTByteTimeoutMs is the fixed per-character timeout a
// bit-banged receive loop applies, independent of the caller's overall
// budget: every received byte resets the window for the next one. The
// caller's overall deadline still bounds the whole read.
const softwareUARTByteTimeoutMs = 2

// BitReader is the collaborator a software (bit-banged) UART receiver
// wraps: a single non-blocking poll for the next decoded byte.
type BitReader interface {
	TryReadByte() (byte, bool)
}

// BitWriter is the collaborator a software UART transmitter wraps: a
// blocking, byte-at-a-time bit-bang write.
type BitWriter interface {
	WriteByte(b byte) bool
}

// SoftwareUART adapts a bit-banged UART, as found on microcontrollers
// without a dedicated UART peripheral, to Transport. Its receive timeout
// discipline differs from HardwareUART's: rather than one deadline for
// the whole read, every received byte resets a fixed 2ms window for the
// next one.
type SoftwareUART struct {
	reader BitReader
	writer BitWriter
	clock  Clock
}

func NewSoftwareUART(reader BitReader, writer BitWriter) *SoftwareUART {
	return &SoftwareUART{reader: reader, writer: writer, clock: systemClock{}}
}

func (u *SoftwareUART) GetBytes(buf []byte, timeoutMs uint32) bool {
	overallDeadline := u.clock.NowMs() + timeoutMs
	n := 0
	byteDeadline := u.clock.NowMs() + softwareUARTByteTimeoutMs

	for n < len(buf) {
		now := u.clock.NowMs()
		if now >= overallDeadline || now >= byteDeadline {
			return false
		}
		b, ok := u.reader.TryReadByte()
		if !ok {
			continue
		}
		buf[n] = b
		n++
		byteDeadline = u.clock.NowMs() + softwareUARTByteTimeoutMs
	}
	return true
}

func (u *SoftwareUART) PutBytes(data []byte, timeoutMs uint32) bool {
	deadline := u.clock.NowMs() + timeoutMs
	for _, b := range data {
		if u.clock.NowMs() >= deadline {
			return false
		}
		if !u.writer.WriteByte(b) {
			return false
		}
	}
	return true
}

func (u *SoftwareUART) Flush() {
	for {
		if _, ok := u.reader.TryReadByte(); !ok {
			return
		}
	}
}
