package protocol

import "errors"

// Sentinel errors re-exported by the root package. The core protocol's
// own public surface is boolean (see transport.Master/transport.Slave);
// the driver/uart and driver/stub packages return their own errors, not
// these.
var (
	ErrTimeout        = errors.New("rpc: operation timed out")
	ErrBufferTooSmall = errors.New("rpc: buffer too small for payload")
	ErrRegistryFull   = errors.New("rpc: dispatch registry is full")
	ErrPortClosed     = errors.New("rpc: port closed")
)
