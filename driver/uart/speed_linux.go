//go:build linux

package uart

import "golang.org/x/sys/unix"

func setSpeed(termios *unix.Termios, speed uint32) {
	termios.Ispeed = speed
	termios.Ospeed = speed
}
