// Package i2c provides access to a shared I2C bus.
//
// The motor controller is the only device go-jetbot talks to directly,
// but the bus itself is shared hardware: every transfer goes through a
// single mutex so concurrent callers cannot interleave register writes.
//
// Backends:
//   - Linux (/dev/i2c-N via ioctl) - production on the Jetson
//   - Stub - non-Linux platforms, always returns ErrUnsupported
//   - Mock - scriptable in-memory bus for tests
package i2c

import "errors"

// Sentinel errors for bus conditions.
var (
	// ErrClosed is returned when using a bus after Close.
	ErrClosed = errors.New("i2c: bus closed")

	// ErrNoDevice is returned when no device acknowledges at an address.
	ErrNoDevice = errors.New("i2c: no device at address")

	// ErrUnsupported is returned on platforms without I2C support.
	ErrUnsupported = errors.New("i2c: not supported on this platform")
)

// Bus is a shared I2C bus. Implementations must serialize transfers;
// callers may use a Bus from multiple goroutines.
type Bus interface {
	// WriteReg writes data to a device register.
	WriteReg(addr, reg byte, data ...byte) error

	// ReadReg reads len(buf) bytes from a device register into buf.
	ReadReg(addr, reg byte, buf []byte) error

	// Ping checks whether a device acknowledges at addr.
	// Returns ErrNoDevice if nothing responds.
	Ping(addr byte) error

	// Close releases the bus handle.
	Close() error
}
