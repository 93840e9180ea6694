// Command camera-server captures frames on a Jetson and republishes
// them over TCP for rovers running with the relay camera backend. An
// optional MJPEG preview endpoint aids pipeline debugging.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/teslashibe/go-jetbot/internal/log"
	"github.com/teslashibe/go-jetbot/pkg/camera"
)

func main() {
	addr := flag.String("addr", "0.0.0.0:9000", "TCP address to serve frames on")
	sensor := flag.Int("sensor", 0, "CSI sensor index")
	width := flag.Int("width", 1280, "capture width")
	height := flag.Int("height", 720, "capture height")
	fps := flag.Int("fps", 30, "capture framerate")
	preview := flag.Int("preview", 0, "MJPEG preview port (0 disables)")
	level := flag.String("log", "info", "log level")
	flag.Parse()

	log.Init(*level)
	logger := log.L()

	cfg := camera.DefaultConfig()
	cfg.SensorID = *sensor
	cfg.Width = *width
	cfg.Height = *height
	cfg.Framerate = *fps

	cam, err := camera.Open(cfg, logger)
	if err != nil {
		logger.Error("capture pipeline failed", "error", err)
		os.Exit(1)
	}
	defer cam.Close()

	relay, err := camera.NewRelayServer(*addr, logger)
	if err != nil {
		logger.Error("relay listen failed", "addr", *addr, "error", err)
		os.Exit(1)
	}
	defer relay.Close()
	logger.Info("camera relay serving", "addr", relay.Addr(),
		"resolution", fmt.Sprintf("%dx%d@%d", *width, *height, *fps))

	if *preview > 0 {
		go servePreview(*preview, cam, logger)
	}

	done := make(chan struct{})
	go publishLoop(cam, relay, cfg.FramePeriod(), done)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down")
	close(done)
}

// publishLoop forwards each new captured frame to relay subscribers.
func publishLoop(cam camera.Camera, relay *camera.RelayServer, period time.Duration, done chan struct{}) {
	var lastSeq uint64
	ticker := time.NewTicker(period / 2)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			frame, err := cam.Latest()
			if err != nil || frame.Seq == lastSeq {
				continue
			}
			lastSeq = frame.Seq
			relay.Publish(frame.Data)
		}
	}
}

// servePreview exposes the capture feed as multipart MJPEG.
func servePreview(port int, cam camera.Camera, logger *slog.Logger) {
	app := fiber.New(fiber.Config{
		AppName:               "JetBot Camera Preview",
		DisableStartupMessage: true,
	})

	app.Get("/video", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, "multipart/x-mixed-replace; boundary=frame")
		c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
			var lastSeq uint64
			for {
				frame, err := cam.Latest()
				if err != nil || frame.Seq == lastSeq {
					time.Sleep(10 * time.Millisecond)
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
		}))
		return nil
	})

	logger.Info("preview listening", "addr", fmt.Sprintf("http://localhost:%d/video", port))
	if err := app.Listen(fmt.Sprintf(":%d", port)); err != nil {
		logger.Error("preview server stopped", "error", err)
	}
}
