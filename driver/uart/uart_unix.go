//go:build unix

// Package uart provides a real, host-buildable hardware UART
// implementation of transport.Port, backed by a termios-configured
// serial device.
package uart

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// Config configures the serial device opened by Open.
type Config struct {
	Device   string
	BaudRate int
}

// Port is a termios-backed serial port satisfying transport.Port.
type Port struct {
	mu     sync.Mutex
	fd     int
	old    unix.Termios
	closed bool

	readDeadline time.Time
}

// Open configures fd for raw 8N1 operation at cfg.BaudRate and returns a
// Port ready to be wrapped in transport.NewHardwareUART.
func Open(cfg Config) (*Port, error) {
	fd, err := unix.Open(cfg.Device, unix.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("uart: open %s: %w", cfg.Device, err)
	}

	old, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("uart: get termios: %w", err)
	}

	termios := *old
	termios.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP |
		unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON | unix.IXOFF | unix.IXANY
	termios.Oflag &^= unix.OPOST
	termios.Cflag &^= unix.CSIZE | unix.PARENB | unix.PARODD | unix.CSTOPB
	termios.Cflag |= unix.CS8 | unix.CREAD | unix.CLOCAL
	termios.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN

	speed, err := baudToSpeed(cfg.BaudRate)
	if err != nil {
		unix.Close(fd)
		return nil, err
	}
	setSpeed(&termios, speed)

	termios.Cc[unix.VMIN] = 0
	termios.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(fd, ioctlSetTermios, &termios); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("uart: set termios: %w", err)
	}
	if err := unix.SetNonblock(fd, false); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("uart: set blocking: %w", err)
	}

	return &Port{fd: fd, old: *old}, nil
}

func (p *Port) Read(buf []byte) (int, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return 0, errClosed
	}
	fd := p.fd
	deadline := p.readDeadline
	p.mu.Unlock()

	timeoutMs := -1
	if !deadline.IsZero() {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return 0, errTimeout
		}
		timeoutMs = int(remaining.Milliseconds())
	}

	pfd := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	n, err := unix.Poll(pfd, timeoutMs)
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return 0, nil
		}
		return 0, fmt.Errorf("uart: poll: %w", err)
	}
	if n == 0 {
		return 0, errTimeout
	}

	return unix.Read(fd, buf)
}

func (p *Port) Write(data []byte) (int, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return 0, errClosed
	}
	fd := p.fd
	p.mu.Unlock()

	return unix.Write(fd, data)
}

func (p *Port) SetReadDeadline(t time.Time) error {
	p.mu.Lock()
	p.readDeadline = t
	p.mu.Unlock()
	return nil
}

// SetWriteDeadline is a no-op: writes to a raw tty device never block
// long enough on a point-to-point link to need one.
func (p *Port) SetWriteDeadline(time.Time) error { return nil }

func (p *Port) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	_ = unix.IoctlSetTermios(p.fd, ioctlSetTermios, &p.old)
	return unix.Close(p.fd)
}

var errClosed = errors.New("uart: port closed")
var errTimeout = errors.New("uart: read timeout")
