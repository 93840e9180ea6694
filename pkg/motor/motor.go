// Package motor detects and drives the JetBot's motor controller.
//
// Two controller boards exist in the wild: the Adafruit MotorHAT
// (PCA9685 PWM expander at 0x60) and the SparkFun Qwiic SCMD (at 0x5D).
// Which one is attached is discovered once at startup by probing the
// I2C bus; the resulting Driver presents the same normalized-speed
// interface over either board.
package motor

import (
	"fmt"
	"log/slog"

	"github.com/teslashibe/go-jetbot/pkg/i2c"
)

// Fixed controller addresses. These are protocol constants of the
// boards, not configuration.
const (
	AddrAdafruit byte = 0x60
	AddrQwiic    byte = 0x5D
)

// Kind identifies the detected motor controller board.
type Kind string

const (
	// KindAdafruit is the Adafruit MotorHAT (original JetBot kit).
	KindAdafruit Kind = "adafruit_motorhat"
	// KindQwiic is the SparkFun Qwiic SCMD (SparkFun JetBot kit).
	KindQwiic Kind = "qwiic_scmd"
	// KindUnknown means no controller responded to the probe.
	KindUnknown Kind = "unknown"
)

// Channel selects one of the two motor outputs.
type Channel int

const (
	Left Channel = iota
	Right
)

func (c Channel) String() string {
	if c == Left {
		return "left"
	}
	return "right"
}

// Driver drives one motor controller board. Implementations clamp
// out-of-range speeds rather than failing.
type Driver interface {
	// SetSpeed drives a channel at a normalized speed in [-1, 1].
	// Values outside the range are clamped before encoding.
	SetSpeed(ch Channel, v float64) error

	// Kind returns the board this driver talks to.
	Kind() Kind

	// Close de-energizes both channels and releases the driver.
	Close() error
}

// Config holds driver construction options.
type Config struct {
	// InvertLeft/InvertRight negate a channel's speed before encoding,
	// correcting physically reversed motor wiring.
	InvertLeft  bool
	InvertRight bool
}

// New probes the bus and constructs the matching driver.
// Returns ErrNoController if neither board responds.
func New(bus i2c.Bus, cfg Config, logger *slog.Logger) (Driver, error) {
	if logger == nil {
		logger = slog.Default()
	}

	kind, err := Probe(bus)
	if err != nil {
		return nil, err
	}

	logger.Info("motor controller detected",
		"kind", kind,
		"invert_left", cfg.InvertLeft,
		"invert_right", cfg.InvertRight,
	)

	switch kind {
	case KindAdafruit:
		return NewAdafruit(bus, cfg)
	case KindQwiic:
		return NewQwiic(bus, cfg)
	default:
		return nil, fmt.Errorf("motor: no driver for %s", kind)
	}
}

// clamp restricts v to [-1, 1].
func clamp(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

// invert applies the per-channel wiring correction from cfg.
func (c Config) invert(ch Channel, v float64) float64 {
	if ch == Left && c.InvertLeft {
		return -v
	}
	if ch == Right && c.InvertRight {
		return -v
	}
	return v
}
