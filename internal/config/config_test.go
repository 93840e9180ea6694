package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.I2CBus != DefaultI2CBus {
		t.Errorf("I2CBus: got %d, want %d", cfg.I2CBus, DefaultI2CBus)
	}
	if cfg.CameraBackend != "gstreamer" {
		t.Errorf("CameraBackend: got %q, want gstreamer", cfg.CameraBackend)
	}
	if cfg.HTTPPort != DefaultHTTPPort {
		t.Errorf("HTTPPort: got %d, want %d", cfg.HTTPPort, DefaultHTTPPort)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("JETBOT_I2C_BUS", "7")
	t.Setenv("JETBOT_CAMERA_BACKEND", "relay")
	t.Setenv("JETBOT_RELAY_ADDR", "10.0.0.5:9000")
	t.Setenv("JETBOT_INVERT_LEFT", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.I2CBus != 7 {
		t.Errorf("I2CBus: got %d, want 7", cfg.I2CBus)
	}
	if cfg.CameraBackend != "relay" {
		t.Errorf("CameraBackend: got %q, want relay", cfg.CameraBackend)
	}
	if cfg.RelayAddr != "10.0.0.5:9000" {
		t.Errorf("RelayAddr: got %q", cfg.RelayAddr)
	}
	if !cfg.InvertLeft {
		t.Error("InvertLeft: got false, want true")
	}
}

func TestValidate_Rejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad backend", func(c *Config) { c.CameraBackend = "webrtc" }},
		{"negative bus", func(c *Config) { c.I2CBus = -1 }},
		{"zero framerate", func(c *Config) { c.Framerate = 0 }},
		{"relay without addr", func(c *Config) { c.CameraBackend = "relay"; c.RelayAddr = "" }},
		{"bad port", func(c *Config) { c.HTTPPort = 70000 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate: expected error, got nil")
			}
		})
	}
}
