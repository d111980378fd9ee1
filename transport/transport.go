// Package transport implements the master and slave RPC endpoint state
// machines, the credit-based streaming sub-protocol, and the four
// transport-specific wrappers (UART, I2C, SPI, CAN) that adapt a raw
// byte-oriented link to the Transport contract.
package transport

// Transport is the minimal contract a byte-oriented point-to-point link
// must satisfy to carry the protocol. Concrete transports (UART, SPI,
// I2C, CAN) each implement this over whatever hardware collaborator they
// wrap; the endpoint state machines never see below this interface.
//
// For transports whose primitive read/write cannot honour an absolute
// timeout (I2C, SPI), the timeoutMs deadline is checked only between
// chunks; a chunk transfer already under way is not cut short.
type Transport interface {
	// GetBytes blocks up to timeoutMs attempting to fill buf entirely.
	// It returns true only on a full fill.
	GetBytes(buf []byte, timeoutMs uint32) bool

	// PutBytes blocks up to timeoutMs attempting to send all of data. It
	// returns true only when every byte was accepted by the link.
	PutBytes(data []byte, timeoutMs uint32) bool

	// Flush discards any buffered input, so the next GetBytes starts
	// from a clean slate.
	Flush()
}
