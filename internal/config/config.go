// Package config provides process configuration for go-jetbot commands.
// Values come from environment variables (optionally via a .env file),
// are read once at startup, and are immutable afterwards.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Defaults for the jetbot daemon.
const (
	DefaultI2CBus    = 1
	DefaultHTTPPort  = 8080
	DefaultRelayAddr = "127.0.0.1:9000"
	DefaultWidth     = 1280
	DefaultHeight    = 720
	DefaultFramerate = 30
	DefaultSensorID  = 0
)

// Config holds the full daemon configuration.
type Config struct {
	// I2CBus is the /dev/i2c-N bus number the motor controller sits on.
	// Jetson Nano uses bus 1, Orin carriers typically bus 7.
	I2CBus int

	// CameraBackend selects the capture path: "gstreamer" or "relay".
	CameraBackend string

	// RelayAddr is the TCP address of the frame relay (relay backend only).
	RelayAddr string

	// SensorID is the CSI sensor index for nvarguscamerasrc.
	SensorID int

	// Capture resolution and rate.
	Width     int
	Height    int
	Framerate int

	// InvertLeft/InvertRight correct reversed motor wiring.
	InvertLeft  bool
	InvertRight bool

	// HTTPPort is the dashboard/teleop server port.
	HTTPPort int

	// ModelPath enables the object detector when non-empty.
	ModelPath string

	// LogLevel is one of debug, info, warn, error.
	LogLevel string
}

// Load reads configuration from the environment. A .env file in the
// working directory is applied first if present (it never overrides
// variables already set in the environment).
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		I2CBus:        envInt("JETBOT_I2C_BUS", DefaultI2CBus),
		CameraBackend: envStr("JETBOT_CAMERA_BACKEND", "gstreamer"),
		RelayAddr:     envStr("JETBOT_RELAY_ADDR", DefaultRelayAddr),
		SensorID:      envInt("JETBOT_SENSOR_ID", DefaultSensorID),
		Width:         envInt("JETBOT_CAMERA_WIDTH", DefaultWidth),
		Height:        envInt("JETBOT_CAMERA_HEIGHT", DefaultHeight),
		Framerate:     envInt("JETBOT_CAMERA_FPS", DefaultFramerate),
		InvertLeft:    envBool("JETBOT_INVERT_LEFT", false),
		InvertRight:   envBool("JETBOT_INVERT_RIGHT", false),
		HTTPPort:      envInt("JETBOT_HTTP_PORT", DefaultHTTPPort),
		ModelPath:     envStr("JETBOT_MODEL_PATH", ""),
		LogLevel:      envStr("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.I2CBus < 0 {
		return fmt.Errorf("i2c bus must be non-negative, got %d", c.I2CBus)
	}
	switch c.CameraBackend {
	case "gstreamer", "relay", "mock":
	default:
		return fmt.Errorf("camera backend must be gstreamer or relay, got %q", c.CameraBackend)
	}
	if c.CameraBackend == "relay" && c.RelayAddr == "" {
		return fmt.Errorf("relay backend requires JETBOT_RELAY_ADDR")
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("invalid capture resolution %dx%d", c.Width, c.Height)
	}
	if c.Framerate <= 0 {
		return fmt.Errorf("framerate must be positive, got %d", c.Framerate)
	}
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid http port %d", c.HTTPPort)
	}
	return nil
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
