//go:build darwin

package uart

import "golang.org/x/sys/unix"

func setSpeed(termios *unix.Termios, speed uint32) {
	termios.Ispeed = uint64(speed)
	termios.Ospeed = uint64(speed)
}
