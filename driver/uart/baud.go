//go:build unix

package uart

import (
	"fmt"

	"golang.org/x/sys/unix"
)

func baudToSpeed(baud int) (uint32, error) {
	speeds := map[int]uint32{
		9600:    unix.B9600,
		19200:   unix.B19200,
		38400:   unix.B38400,
		57600:   unix.B57600,
		115200:  unix.B115200,
		230400:  unix.B230400,
		460800:  unix.B460800,
		921600:  unix.B921600,
	}
	speed, ok := speeds[baud]
	if !ok {
		return 0, fmt.Errorf("uart: unsupported baud rate %d", baud)
	}
	return speed, nil
}
