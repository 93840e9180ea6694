package motor

import (
	"errors"
	"fmt"
)

// Sentinel errors for controller conditions.
var (
	// ErrNoController is returned when the probe finds no board at
	// either known address. Fatal at startup: a robot with no motor
	// controller must not pretend to move.
	ErrNoController = errors.New("motor: no controller detected on bus")

	// ErrClosed is returned when using a driver after Close.
	ErrClosed = errors.New("motor: driver closed")
)

// BusError wraps an I2C failure during a motor command with the
// address and register that failed.
type BusError struct {
	Addr byte
	Reg  byte
	Err  error
}

// Error implements the error interface.
func (e *BusError) Error() string {
	return fmt.Sprintf("motor: bus write addr=0x%02x reg=0x%02x: %v", e.Addr, e.Reg, e.Err)
}

// Unwrap returns the underlying I2C error.
func (e *BusError) Unwrap() error {
	return e.Err
}
