//go:build linux

package i2c

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// i2cSlave is the I2C_SLAVE ioctl request from linux/i2c-dev.h.
const i2cSlave = 0x0703

// DevBus talks to a Linux /dev/i2c-N character device.
type DevBus struct {
	mu     sync.Mutex
	fd     int
	path   string
	closed bool
}

// Open opens the I2C bus with the given number (e.g. 1 for /dev/i2c-1).
func Open(bus int) (*DevBus, error) {
	path := fmt.Sprintf("/dev/i2c-%d", bus)
	fd, err := unix.Open(path, unix.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("i2c: open %s: %w", path, err)
	}
	return &DevBus{fd: fd, path: path}, nil
}

// WriteReg writes data to a device register.
func (b *DevBus) WriteReg(addr, reg byte, data ...byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.setSlave(addr); err != nil {
		return err
	}
	buf := append([]byte{reg}, data...)
	if _, err := unix.Write(b.fd, buf); err != nil {
		return fmt.Errorf("i2c: write addr=0x%02x reg=0x%02x: %w", addr, reg, err)
	}
	return nil
}

// ReadReg reads len(buf) bytes from a device register into buf.
func (b *DevBus) ReadReg(addr, reg byte, buf []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.setSlave(addr); err != nil {
		return err
	}
	if _, err := unix.Write(b.fd, []byte{reg}); err != nil {
		return fmt.Errorf("i2c: select reg 0x%02x at 0x%02x: %w", reg, addr, err)
	}
	if _, err := unix.Read(b.fd, buf); err != nil {
		return fmt.Errorf("i2c: read addr=0x%02x reg=0x%02x: %w", addr, reg, err)
	}
	return nil
}

// Ping checks whether a device acknowledges at addr by attempting a
// one-byte read. Devices that NAK the address report ENXIO or EREMOTEIO.
func (b *DevBus) Ping(addr byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.setSlave(addr); err != nil {
		return err
	}
	var one [1]byte
	if _, err := unix.Read(b.fd, one[:]); err != nil {
		return fmt.Errorf("%w 0x%02x: %v", ErrNoDevice, addr, err)
	}
	return nil
}

// Close releases the device file descriptor.
func (b *DevBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	return unix.Close(b.fd)
}

// setSlave points the fd at a device address. Caller holds b.mu.
func (b *DevBus) setSlave(addr byte) error {
	if b.closed {
		return ErrClosed
	}
	if err := unix.IoctlSetInt(b.fd, i2cSlave, int(addr)); err != nil {
		return fmt.Errorf("i2c: select slave 0x%02x on %s: %w", addr, b.path, err)
	}
	return nil
}
