package camera

import (
	"fmt"
	"log/slog"
)

// Open validates the configuration and constructs the selected
// backend. Construction fails fast: an unopenable device or an
// unreachable relay surfaces here, never lazily on the first Latest.
func Open(cfg Config, logger *slog.Logger) (Camera, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("opening camera",
		"backend", cfg.Backend,
		"width", cfg.Width,
		"height", cfg.Height,
		"framerate", cfg.Framerate,
	)

	switch cfg.Backend {
	case BackendGStreamer:
		return openGStreamer(cfg, logger)
	case BackendRelay:
		return openRelay(cfg, logger)
	case BackendMock:
		return NewMock(cfg), nil
	default:
		return nil, fmt.Errorf("camera: unsupported backend %q", cfg.Backend)
	}
}
