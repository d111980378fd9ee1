//go:build unix

// This file is built only on unix hosts, wiring a real termios-backed
// serial device in place of the stub loopback.
package openmvrpc

import (
	"github.com/ejosue98/openmv-rpc-go/driver/uart"
	"github.com/ejosue98/openmv-rpc-go/transport"
)

// NewMasterOverSerial opens device at baud and returns a Master ready to
// drive calls against a slave reachable over that real serial link.
func NewMasterOverSerial(device string, baud int, buf []byte) (*Master, error) {
	port, err := uart.Open(uart.Config{Device: device, BaudRate: baud})
	if err != nil {
		return nil, err
	}
	return NewMaster(transport.NewHardwareUART(port), buf), nil
}

// NewSlaveOverSerial opens device at baud and returns a Slave ready to
// serve calls from a master reachable over that real serial link.
func NewSlaveOverSerial(device string, baud int, buf []byte, registryCapacity int) (*Slave, error) {
	port, err := uart.Open(uart.Config{Device: device, BaudRate: baud})
	if err != nil {
		return nil, err
	}
	return NewSlave(transport.NewHardwareUART(port), buf, registryCapacity), nil
}
