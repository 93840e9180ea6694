// Package web serves the rover dashboard: an MJPEG video endpoint, a
// drive websocket guarded by the heartbeat watchdog, and a state
// broadcast stream.
package web

import (
	"bufio"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-jetbot/pkg/camera"
	"github.com/teslashibe/go-jetbot/pkg/heartbeat"
	"github.com/teslashibe/go-jetbot/pkg/hub"
	"github.com/teslashibe/go-jetbot/pkg/protocol"
	"github.com/teslashibe/go-jetbot/pkg/robot"
)

// statePeriod is how often the state stream is refreshed.
const statePeriod = 500 * time.Millisecond

// framePoll bounds how fast the MJPEG and frame-hub loops spin when
// the camera produces no new frames.
const framePoll = 10 * time.Millisecond

// Server is the HTTP and websocket front end of the daemon.
type Server struct {
	app    *fiber.App
	port   int
	logger *slog.Logger

	bot      *robot.Robot
	cam      camera.Camera
	watchdog *heartbeat.Watchdog

	// Hubs for websocket broadcast (thread-safe)
	stateHub *hub.Hub
	frameHub *hub.Hub

	start time.Time
	done  chan struct{}
}

// NewServer wires the rover components into a web server. cam may be
// nil when the daemon runs headless (no camera backend available).
func NewServer(port int, bot *robot.Robot, cam camera.Camera, watchdog *heartbeat.Watchdog, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		port:     port,
		logger:   logger.With("component", "web"),
		bot:      bot,
		cam:      cam,
		watchdog: watchdog,
		stateHub: hub.New("state", logger),
		frameHub: hub.New("frames", logger),
		start:    time.Now(),
		done:     make(chan struct{}),
	}

	app := fiber.New(fiber.Config{
		AppName:               "JetBot Dashboard",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	app.Get("/", s.handleIndex)
	app.Get("/video", s.handleVideo)

	api := app.Group("/api")
	api.Get("/state", s.handleState)
	api.Post("/stop", s.handleStop)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/drive", websocket.New(s.handleDriveWS))
	app.Get("/ws/state", websocket.New(s.handleStateWS))
	app.Get("/ws/camera", websocket.New(s.handleCameraWS))

	s.app = app
	return s
}

// Start runs the hubs and background pumps, then serves until Shutdown.
func (s *Server) Start() error {
	s.logger.Info("dashboard listening", "addr", fmt.Sprintf("http://localhost:%d", s.port))

	go s.stateHub.Run()
	go s.frameHub.Run()
	go s.statePump()
	if s.cam != nil {
		go s.framePump()
	}

	return s.app.Listen(fmt.Sprintf(":%d", s.port))
}

// StartAsync starts the web server in a goroutine.
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			s.logger.Error("web server stopped", "error", err)
		}
	}()
}

// BroadcastDetections pushes a detection result to state subscribers.
func (s *Server) BroadcastDetections(frameSeq uint64, objects []protocol.BoxObject) {
	msg, err := protocol.NewDetectionMessage(frameSeq, objects)
	if err != nil {
		return
	}
	data, err := msg.Bytes()
	if err != nil {
		return
	}
	s.stateHub.Broadcast(hub.NewJSONMessage(data))
}

// snapshot assembles the current rover state.
func (s *Server) snapshot() protocol.StateData {
	last := s.bot.LastCommand()
	state := protocol.StateData{
		Controller:   string(s.bot.Kind()),
		Heartbeat:    string(s.watchdog.Status()),
		CommandLeft:  last.Left,
		CommandRight: last.Right,
		UptimeSec:    int64(time.Since(s.start).Seconds()),
	}
	if s.cam != nil {
		state.CameraBackend = string(s.cam.Backend())
		if frame, err := s.cam.Latest(); err == nil {
			state.FrameSeq = frame.Seq
		}
	}
	return state
}

// statePump broadcasts the rover state on a fixed cadence.
func (s *Server) statePump() {
	ticker := time.NewTicker(statePeriod)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			if s.stateHub.ClientCount() == 0 {
				continue
			}
			msg, err := protocol.NewStateMessage(s.snapshot())
			if err != nil {
				continue
			}
			data, err := msg.Bytes()
			if err != nil {
				continue
			}
			s.stateHub.Broadcast(hub.NewJSONMessage(data))
		}
	}
}

// framePump forwards new camera frames to binary subscribers.
func (s *Server) framePump() {
	var lastSeq uint64
	ticker := time.NewTicker(framePoll)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			if s.frameHub.ClientCount() == 0 {
				continue
			}
			frame, err := s.cam.Latest()
			if err != nil || frame.Seq == lastSeq {
				continue
			}
			lastSeq = frame.Seq
			s.frameHub.BroadcastBinary(frame.Data)
		}
	}
}

// writeMJPEG streams frames as multipart/x-mixed-replace parts until
// the client disconnects or the writer returns an error.
func (s *Server) writeMJPEG(w *bufio.Writer) {
	var lastSeq uint64
	for {
		select {
		case <-s.done:
			return
		default:
		}

		frame, err := s.cam.Latest()
		if err != nil || frame.Seq == lastSeq {
			time.Sleep(framePoll)
			continue
		}
		lastSeq = frame.Seq

		if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(frame.Data)); err != nil {
			return
		}
		if _, err := w.Write(frame.Data); err != nil {
			return
		}
		if _, err := w.WriteString("\r\n"); err != nil {
			return
		}
		if err := w.Flush(); err != nil {
			return
		}
	}
}

// Shutdown gracefully stops the web server.
func (s *Server) Shutdown() error {
	close(s.done)
	return s.app.Shutdown()
}
