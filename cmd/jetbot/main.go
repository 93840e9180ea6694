// Command jetbot is the rover daemon. It probes the I2C bus for a
// motor controller, opens the configured camera backend, and serves
// the teleop dashboard.
package main

import (
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/teslashibe/go-jetbot/internal/config"
	"github.com/teslashibe/go-jetbot/internal/log"
	"github.com/teslashibe/go-jetbot/pkg/camera"
	"github.com/teslashibe/go-jetbot/pkg/detection"
	"github.com/teslashibe/go-jetbot/pkg/heartbeat"
	"github.com/teslashibe/go-jetbot/pkg/i2c"
	"github.com/teslashibe/go-jetbot/pkg/motor"
	"github.com/teslashibe/go-jetbot/pkg/protocol"
	"github.com/teslashibe/go-jetbot/pkg/robot"
	"github.com/teslashibe/go-jetbot/pkg/web"
)

// heartbeatPeriod is how long the rover keeps driving without a beat
// from the controlling client.
const heartbeatPeriod = 500 * time.Millisecond

func main() {
	port := flag.Int("port", 0, "dashboard port (overrides JETBOT_HTTP_PORT)")
	backend := flag.String("camera", "", "camera backend: gstreamer or relay (overrides JETBOT_CAMERA_BACKEND)")
	busNum := flag.Int("bus", -1, "i2c bus number (overrides JETBOT_I2C_BUS)")
	model := flag.String("model", "", "object detection model path (overrides JETBOT_MODEL_PATH)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Init("info")
		log.Error("bad configuration", "error", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.HTTPPort = *port
	}
	if *backend != "" {
		cfg.CameraBackend = *backend
	}
	if *busNum >= 0 {
		cfg.I2CBus = *busNum
	}
	if *model != "" {
		cfg.ModelPath = *model
	}

	log.Init(cfg.LogLevel)
	logger := log.L()
	logger.Info("jetbot starting",
		"i2c_bus", cfg.I2CBus,
		"camera", cfg.CameraBackend,
		"port", cfg.HTTPPort)

	// Motor controller. No controller is fatal: a rover that cannot
	// stop its motors must not accept drive commands.
	bus, err := i2c.Open(cfg.I2CBus)
	if err != nil {
		logger.Error("i2c bus open failed", "bus", cfg.I2CBus, "error", err)
		os.Exit(1)
	}
	driver, err := motor.New(bus, motor.Config{
		InvertLeft:  cfg.InvertLeft,
		InvertRight: cfg.InvertRight,
	}, logger)
	if err != nil {
		if errors.Is(err, motor.ErrNoController) {
			logger.Error("no motor controller found",
				"bus", cfg.I2CBus,
				"tried", []string{"0x60 adafruit", "0x5d qwiic"})
		} else {
			logger.Error("motor controller init failed", "error", err)
		}
		bus.Close()
		os.Exit(1)
	}

	bot := robot.New(driver, logger)
	defer bot.Close()
	logger.Info("motor controller ready", "kind", driver.Kind())

	// Camera. An unopenable backend is fatal, same as a missing motor
	// controller: the process refuses to start rather than serve a
	// half-working rover.
	cam, err := openCamera(cfg, logger)
	if err != nil {
		logger.Error("camera init failed", "backend", cfg.CameraBackend, "error", err)
		bot.Close()
		os.Exit(1)
	}
	defer cam.Close()

	// Watchdog: a lapsed client stops the motors.
	watchdog := heartbeat.New(heartbeatPeriod, func() {
		logger.Warn("heartbeat lapsed, stopping motors")
		if err := bot.Stop(); err != nil {
			logger.Error("watchdog stop failed", "error", err)
		}
	}, logger)
	defer watchdog.Close()

	server := web.NewServer(cfg.HTTPPort, bot, cam, watchdog, logger)

	// Optional object detection feeding the state stream.
	if cfg.ModelPath != "" {
		detCfg := detection.DefaultConfig()
		detCfg.ModelPath = cfg.ModelPath
		det, err := detection.NewSSD(detCfg)
		if err != nil {
			logger.Warn("detector init failed, detection disabled", "error", err)
		} else {
			defer det.Close()
			go detectLoop(det, cam, server, log.Component("detection"))
		}
	}

	server.StartAsync()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down")
	if err := server.Shutdown(); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}
	if err := bot.Stop(); err != nil {
		logger.Error("final stop failed", "error", err)
	}
}

// openCamera maps the daemon configuration onto a camera backend. Any
// open failure, camera.ErrBackendUnavailable included, is returned to
// the caller so it can refuse to start.
func openCamera(cfg *config.Config, logger *slog.Logger) (camera.Camera, error) {
	camCfg := camera.DefaultConfig()
	camCfg.Backend = camera.Backend(cfg.CameraBackend)
	camCfg.SensorID = cfg.SensorID
	camCfg.Width = cfg.Width
	camCfg.Height = cfg.Height
	camCfg.Framerate = cfg.Framerate
	camCfg.RelayAddr = cfg.RelayAddr
	return camera.Open(camCfg, logger)
}

// detectLoop runs inference on each new camera frame and pushes the
// results to state subscribers. Inference speed sets the pace; frames
// that arrive mid-inference are skipped, not queued.
func detectLoop(det detection.Detector, cam camera.Camera, server *web.Server, logger *slog.Logger) {
	var lastSeq uint64
	for {
		frame, err := cam.Latest()
		if err != nil {
			if errors.Is(err, camera.ErrClosed) {
				return
			}
			time.Sleep(100 * time.Millisecond)
			continue
		}
		if frame.Seq == lastSeq {
			time.Sleep(10 * time.Millisecond)
			continue
		}
		lastSeq = frame.Seq

		dets, err := det.Detect(frame.Data)
		if err != nil {
			logger.Warn("detection failed", "seq", frame.Seq, "error", err)
			continue
		}
		if len(dets) == 0 {
			continue
		}

		objects := make([]protocol.BoxObject, 0, len(dets))
		for _, d := range dets {
			objects = append(objects, protocol.BoxObject{
				Label:      d.Label,
				Confidence: d.Confidence,
				X:          d.X,
				Y:          d.Y,
				W:          d.W,
				H:          d.H,
			})
		}
		server.BroadcastDetections(frame.Seq, objects)
	}
}
