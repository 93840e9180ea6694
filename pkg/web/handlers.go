package web

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/valyala/fasthttp"

	"github.com/teslashibe/go-jetbot/pkg/hub"
	"github.com/teslashibe/go-jetbot/pkg/protocol"
)

// handleIndex serves the teleop page.
func (s *Server) handleIndex(c *fiber.Ctx) error {
	c.Type("html")
	return c.SendString(indexHTML)
}

// handleState returns the current rover state.
func (s *Server) handleState(c *fiber.Ctx) error {
	return c.JSON(s.snapshot())
}

// handleStop is the out-of-band kill switch.
func (s *Server) handleStop(c *fiber.Ctx) error {
	if err := s.bot.Stop(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(fiber.Map{"stopped": true})
}

// handleVideo streams the camera as multipart MJPEG.
func (s *Server) handleVideo(c *fiber.Ctx) error {
	if s.cam == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "no camera attached",
		})
	}
	c.Set(fiber.HeaderContentType, "multipart/x-mixed-replace; boundary=frame")
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(s.writeMJPEG))
	return nil
}

// handleDriveWS accepts teleop commands. Every drive or heartbeat
// message feeds the watchdog; when the watchdog lapses the daemon's
// death callback stops the motors independently of this handler.
func (s *Server) handleDriveWS(c *websocket.Conn) {
	logger := s.logger.With("remote", c.RemoteAddr().String())
	logger.Info("drive client connected")
	defer func() {
		// A vanished operator must not leave the rover moving.
		if err := s.bot.Stop(); err != nil {
			logger.Error("stop on disconnect failed", "error", err)
		}
		logger.Info("drive client disconnected")
		c.Close()
	}()

	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			return
		}

		msg, err := protocol.ParseMessage(data)
		if err != nil {
			logger.Warn("bad drive message", "error", err)
			continue
		}

		switch msg.Type {
		case protocol.TypeDrive:
			drive, err := msg.GetDriveData()
			if err != nil {
				logger.Warn("bad drive payload", "error", err)
				continue
			}
			s.watchdog.Beat()
			if err := s.bot.SetMotors(drive.Left, drive.Right); err != nil {
				logger.Error("drive failed", "error", err)
			}

		case protocol.TypeStop:
			if err := s.bot.Stop(); err != nil {
				logger.Error("stop failed", "error", err)
			}

		case protocol.TypeHeartbeat:
			s.watchdog.Beat()

		case protocol.TypePing:
			ping, err := msg.GetPingData()
			if err != nil {
				continue
			}
			pong, err := protocol.NewPongMessage(ping.ID, msg.Timestamp, time.Now().UnixMilli())
			if err != nil {
				continue
			}
			out, err := pong.Bytes()
			if err != nil {
				continue
			}
			if err := c.WriteMessage(websocket.TextMessage, out); err != nil {
				return
			}

		default:
			logger.Warn("unexpected drive message", "type", msg.Type)
		}
	}
}

// handleStateWS streams state and detection JSON to dashboards.
func (s *Server) handleStateWS(c *websocket.Conn) {
	client := hub.NewClient(s.stateHub, c)

	// Send the current state immediately so the page renders without
	// waiting for the next tick.
	if msg, err := protocol.NewStateMessage(s.snapshot()); err == nil {
		if data, err := msg.Bytes(); err == nil {
			c.WriteMessage(websocket.TextMessage, data)
		}
	}

	client.Run()
}

// handleCameraWS streams binary JPEG frames.
func (s *Server) handleCameraWS(c *websocket.Conn) {
	hub.NewClient(s.frameHub, c).Run()
}
