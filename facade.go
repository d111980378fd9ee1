// Package openmvrpc provides a façade over the master/slave RPC
// endpoints and the wire-level protocol pieces they're built from.
package openmvrpc

import (
	"github.com/ejosue98/openmv-rpc-go/protocol"
	"github.com/ejosue98/openmv-rpc-go/registry"
	"github.com/ejosue98/openmv-rpc-go/transport"
)

// The actual constructors are split into build-tag specific files:
// - constructors_host.go - loopback/stub transports for development and testing
// - constructors_unix.go - a real termios serial port (hardware UART) on unix hosts

// Re-export the core types so callers need only import this package.
type (
	Transport    = transport.Transport
	Master       = transport.Master
	Slave        = transport.Slave
	StreamReader = transport.StreamReader
	StreamWriter = transport.StreamWriter
	Callback     = registry.Callback
)

// Error constants exposed in the public API.
var (
	ErrTimeout        = protocol.ErrTimeout
	ErrBufferTooSmall = protocol.ErrBufferTooSmall
	ErrRegistryFull   = protocol.ErrRegistryFull
	ErrPortClosed     = protocol.ErrPortClosed
)

// Hash computes the djb2-derived command name hash callers register and
// call against.
func Hash(name string) uint32 { return protocol.Hash(name) }

// NewMaster constructs a Master over transport, using buf as its sole
// scratch buffer for the lifetime of every call it makes.
func NewMaster(t Transport, buf []byte) *Master { return transport.NewMaster(t, buf) }

// NewSlave constructs a Slave over transport, with a dispatch registry
// of the given capacity and buf as its sole scratch buffer.
func NewSlave(t Transport, buf []byte, registryCapacity int) *Slave {
	return transport.NewSlave(t, buf, registryCapacity)
}
