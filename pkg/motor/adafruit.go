package motor

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/teslashibe/go-jetbot/pkg/i2c"
)

// PCA9685 registers (the MotorHAT's PWM expander).
const (
	pcaMode1    byte = 0x00
	pcaMode2    byte = 0x01
	pcaPrescale byte = 0xFE
	pcaLED0On   byte = 0x06
	pcaAllOn    byte = 0xFA

	pcaMode1Restart byte = 0x80
	pcaMode1AI      byte = 0x20
	pcaMode1Sleep   byte = 0x10
	pcaMode1AllCall byte = 0x01
	pcaMode2OutDrv  byte = 0x04
)

// MotorHAT pin mapping: each DC motor uses one PWM channel for speed
// and two channels driven as digital pins for direction.
type hatPins struct {
	pwm, in1, in2 byte
}

var hatChannel = map[Channel]hatPins{
	Left:  {pwm: 8, in2: 9, in1: 10},   // M1 terminal
	Right: {pwm: 13, in2: 12, in1: 11}, // M2 terminal
}

// hatPWMFreq is the motor PWM frequency the Adafruit driver uses.
const hatPWMFreq = 1600.0

// AdafruitDriver drives the Adafruit MotorHAT at 0x60.
type AdafruitDriver struct {
	bus i2c.Bus
	cfg Config

	mu     sync.Mutex
	closed bool
}

// NewAdafruit initializes the MotorHAT: wake the PCA9685, configure
// totem-pole outputs, and set the motor PWM frequency.
func NewAdafruit(bus i2c.Bus, cfg Config) (*AdafruitDriver, error) {
	d := &AdafruitDriver{bus: bus, cfg: cfg}

	// All outputs off before touching mode registers.
	if err := d.write(pcaAllOn, 0x00, 0x00, 0x00, 0x10); err != nil {
		return nil, fmt.Errorf("motor: adafruit init: %w", err)
	}
	if err := d.write(pcaMode2, pcaMode2OutDrv); err != nil {
		return nil, fmt.Errorf("motor: adafruit init: %w", err)
	}
	if err := d.write(pcaMode1, pcaMode1AllCall); err != nil {
		return nil, fmt.Errorf("motor: adafruit init: %w", err)
	}
	time.Sleep(5 * time.Millisecond) // oscillator wake-up

	if err := d.setPWMFreq(hatPWMFreq); err != nil {
		return nil, fmt.Errorf("motor: adafruit init: %w", err)
	}
	return d, nil
}

// Kind implements Driver.
func (d *AdafruitDriver) Kind() Kind { return KindAdafruit }

// SetSpeed implements Driver. Speed maps to a 12-bit PWM duty on the
// channel's speed pin; sign selects the H-bridge direction pins.
func (d *AdafruitDriver) SetSpeed(ch Channel, v float64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}

	v = d.cfg.invert(ch, clamp(v))
	pins := hatChannel[ch]

	switch {
	case v > 0:
		if err := d.setPin(pins.in2, false); err != nil {
			return err
		}
		if err := d.setPin(pins.in1, true); err != nil {
			return err
		}
	case v < 0:
		if err := d.setPin(pins.in1, false); err != nil {
			return err
		}
		if err := d.setPin(pins.in2, true); err != nil {
			return err
		}
	default:
		// Coast: both direction pins low.
		if err := d.setPin(pins.in1, false); err != nil {
			return err
		}
		if err := d.setPin(pins.in2, false); err != nil {
			return err
		}
	}

	duty := uint16(math.Round(math.Abs(v) * 4095))
	return d.setPWM(pins.pwm, 0, duty)
}

// Close stops both motors and marks the driver unusable.
func (d *AdafruitDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true
	// Best effort: turn every output off.
	return d.write(pcaAllOn, 0x00, 0x00, 0x00, 0x10)
}

// setPWMFreq programs the prescaler. The PCA9685 only accepts prescale
// writes while asleep.
func (d *AdafruitDriver) setPWMFreq(freq float64) error {
	prescale := byte(math.Floor(25_000_000.0/4096.0/freq - 1 + 0.5))

	var mode1 [1]byte
	if err := d.bus.ReadReg(AddrAdafruit, pcaMode1, mode1[:]); err != nil {
		return &BusError{Addr: AddrAdafruit, Reg: pcaMode1, Err: err}
	}

	sleep := (mode1[0] &^ pcaMode1Restart) | pcaMode1Sleep
	if err := d.write(pcaMode1, sleep); err != nil {
		return err
	}
	if err := d.write(pcaPrescale, prescale); err != nil {
		return err
	}
	if err := d.write(pcaMode1, mode1[0]); err != nil {
		return err
	}
	time.Sleep(5 * time.Millisecond)
	return d.write(pcaMode1, mode1[0]|pcaMode1Restart|pcaMode1AI)
}

// setPWM writes a channel's on/off tick counts.
func (d *AdafruitDriver) setPWM(channel byte, on, off uint16) error {
	reg := pcaLED0On + 4*channel
	return d.write(reg,
		byte(on), byte(on>>8),
		byte(off), byte(off>>8),
	)
}

// setPin drives a PWM channel as a digital output (full on / full off).
func (d *AdafruitDriver) setPin(channel byte, high bool) error {
	if high {
		return d.setPWM(channel, 4096, 0)
	}
	return d.setPWM(channel, 0, 4096)
}

func (d *AdafruitDriver) write(reg byte, data ...byte) error {
	if err := d.bus.WriteReg(AddrAdafruit, reg, data...); err != nil {
		return &BusError{Addr: AddrAdafruit, Reg: reg, Err: err}
	}
	return nil
}
