//go:build !linux

package i2c

// DevBus is unavailable off-Linux; development happens against MockBus.
type DevBus struct{}

// Open always fails on non-Linux platforms.
func Open(bus int) (*DevBus, error) {
	return nil, ErrUnsupported
}

func (b *DevBus) WriteReg(addr, reg byte, data ...byte) error { return ErrUnsupported }
func (b *DevBus) ReadReg(addr, reg byte, buf []byte) error    { return ErrUnsupported }
func (b *DevBus) Ping(addr byte) error                        { return ErrUnsupported }
func (b *DevBus) Close() error                                { return nil }
