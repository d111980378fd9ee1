//go:build !tinygo && !baremetal

// This file is built only for non-embedded targets (host-based
// development and testing), wiring the loopback stub transports instead
// of real hardware.
package openmvrpc

import (
	"github.com/ejosue98/openmv-rpc-go/driver/stub"
	"github.com/ejosue98/openmv-rpc-go/transport"
)

// NewLoopbackPair returns a Master and Slave wired together over an
// in-memory UART loopback, for tests and local development that want a
// live link without real hardware.
func NewLoopbackPair(masterBuf, slaveBuf []byte, registryCapacity int) (*Master, *Slave) {
	a, b := stub.Pipe()
	master := NewMaster(transport.NewHardwareUART(a), masterBuf)
	slave := NewSlave(transport.NewHardwareUART(b), slaveBuf, registryCapacity)
	return master, slave
}
