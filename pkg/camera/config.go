package camera

import (
	"fmt"
	"time"
)

// Backend selects the capture path. The choice is process-wide and
// fixed for the process lifetime.
type Backend string

const (
	// BackendGStreamer captures locally through the Jetson pipeline.
	BackendGStreamer Backend = "gstreamer"
	// BackendRelay consumes frames from a remote capture process.
	BackendRelay Backend = "relay"
	// BackendMock injects frames in tests.
	BackendMock Backend = "mock"
)

// ParseBackend converts a configuration string to a Backend.
func ParseBackend(s string) (Backend, error) {
	switch Backend(s) {
	case BackendGStreamer, BackendRelay, BackendMock:
		return Backend(s), nil
	default:
		return "", fmt.Errorf("camera: unknown backend %q", s)
	}
}

// Config holds camera configuration. Read once at Open; immutable
// afterwards.
type Config struct {
	// Backend selects the capture path.
	Backend Backend `json:"backend"`

	// SensorID is the CSI sensor index (gstreamer backend).
	SensorID int `json:"sensor_id"`

	// Capture geometry and rate (gstreamer backend; also stamped onto
	// relay frames for consumers that care).
	Width     int `json:"width"`
	Height    int `json:"height"`
	Framerate int `json:"framerate"`

	// RelayAddr is the TCP address of the frame relay (relay backend).
	RelayAddr string `json:"relay_addr"`

	// DialTimeout bounds the relay connection attempt.
	DialTimeout time.Duration `json:"dial_timeout"`
}

// DefaultConfig returns the IMX219 720p30 configuration the JetBot
// ships with.
func DefaultConfig() Config {
	return Config{
		Backend:     BackendGStreamer,
		SensorID:    0,
		Width:       1280,
		Height:      720,
		Framerate:   30,
		DialTimeout: 5 * time.Second,
	}
}

// Validate checks that the configuration is usable for its backend.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendGStreamer:
		if c.Width <= 0 || c.Height <= 0 {
			return fmt.Errorf("camera: invalid resolution %dx%d", c.Width, c.Height)
		}
		if c.Framerate <= 0 {
			return fmt.Errorf("camera: framerate must be positive, got %d", c.Framerate)
		}
	case BackendRelay:
		if c.RelayAddr == "" {
			return fmt.Errorf("camera: relay backend requires an address")
		}
	case BackendMock:
	default:
		return fmt.Errorf("camera: unknown backend %q", c.Backend)
	}
	return nil
}

// FramePeriod returns the expected time between frames.
func (c *Config) FramePeriod() time.Duration {
	if c.Framerate <= 0 {
		return time.Second / 30
	}
	return time.Second / time.Duration(c.Framerate)
}
