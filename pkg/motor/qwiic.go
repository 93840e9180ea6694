package motor

import (
	"fmt"
	"math"
	"sync"

	"github.com/teslashibe/go-jetbot/pkg/i2c"
)

// SCMD registers (SparkFun Serial Controlled Motor Driver at 0x5D).
const (
	scmdID           byte = 0x01
	scmdMADrive      byte = 0x20
	scmdMBDrive      byte = 0x21
	scmdDriverEnable byte = 0x70

	// scmdIDValue is the fixed chip ID the SCMD reports.
	scmdIDValue byte = 0xA9

	// scmdStop is the midpoint of the 0-255 drive range.
	scmdStop = 128
)

// QwiicDriver drives the SparkFun Qwiic SCMD at 0x5D.
type QwiicDriver struct {
	bus i2c.Bus
	cfg Config

	mu     sync.Mutex
	closed bool
}

// NewQwiic verifies the chip ID, centers both drive registers, and
// enables the output stage.
func NewQwiic(bus i2c.Bus, cfg Config) (*QwiicDriver, error) {
	var id [1]byte
	if err := bus.ReadReg(AddrQwiic, scmdID, id[:]); err != nil {
		return nil, &BusError{Addr: AddrQwiic, Reg: scmdID, Err: err}
	}
	if id[0] != scmdIDValue {
		return nil, fmt.Errorf("motor: unexpected SCMD id 0x%02x at 0x%02x (want 0x%02x)",
			id[0], AddrQwiic, scmdIDValue)
	}

	d := &QwiicDriver{bus: bus, cfg: cfg}
	if err := d.write(scmdMADrive, scmdStop); err != nil {
		return nil, err
	}
	if err := d.write(scmdMBDrive, scmdStop); err != nil {
		return nil, err
	}
	if err := d.write(scmdDriverEnable, 0x01); err != nil {
		return nil, err
	}
	return d, nil
}

// Kind implements Driver.
func (d *QwiicDriver) Kind() Kind { return KindQwiic }

// SetSpeed implements Driver. Speed maps onto the SCMD drive scale
// symmetrically about 128: 1 full reverse, 128 stop, 255 full forward
// (level 0 is never emitted).
func (d *QwiicDriver) SetSpeed(ch Channel, v float64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}

	v = d.cfg.invert(ch, clamp(v))
	level := byte(scmdStop + int(math.Round(v*127)))

	reg := scmdMADrive
	if ch == Right {
		reg = scmdMBDrive
	}
	return d.write(reg, level)
}

// Close stops both motors and disables the output stage.
func (d *QwiicDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true

	if err := d.write(scmdMADrive, scmdStop); err != nil {
		return err
	}
	if err := d.write(scmdMBDrive, scmdStop); err != nil {
		return err
	}
	return d.write(scmdDriverEnable, 0x00)
}

func (d *QwiicDriver) write(reg byte, data ...byte) error {
	if err := d.bus.WriteReg(AddrQwiic, reg, data...); err != nil {
		return &BusError{Addr: AddrQwiic, Reg: reg, Err: err}
	}
	return nil
}
