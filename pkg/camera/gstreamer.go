package camera

import (
	"bufio"
	"fmt"
	"log/slog"
	"os/exec"
	"sync"
)

// gstLaunchBin is the GStreamer launcher; a package variable so tests
// can substitute a fake producer.
var gstLaunchBin = "gst-launch-1.0"

// GStreamerCamera captures through the Jetson's hardware pipeline:
// nvarguscamerasrc feeds the hardware JPEG encoder and raw JPEGs
// arrive on the subprocess's stdout. The heavy lifting (ISP, encode)
// stays in the vendor pipeline; this side only splits the stream into
// frames.
type GStreamerCamera struct {
	cfg    Config
	logger *slog.Logger

	cell cell
	cmd  *exec.Cmd
	done chan struct{}

	closeOnce sync.Once
	closeErr  error
}

// pipelineArgs builds the gst-launch argument list.
func pipelineArgs(cfg Config) []string {
	return []string{
		"-q",
		"nvarguscamerasrc", fmt.Sprintf("sensor-id=%d", cfg.SensorID),
		"!", fmt.Sprintf("video/x-raw(memory:NVMM),width=%d,height=%d,framerate=%d/1",
			cfg.Width, cfg.Height, cfg.Framerate),
		"!", "nvvidconv",
		"!", "nvjpegenc",
		"!", "fdsink",
	}
}

// openGStreamer spawns the capture pipeline. A pipeline that cannot
// start (missing binary, busy sensor) fails construction.
func openGStreamer(cfg Config, logger *slog.Logger) (*GStreamerCamera, error) {
	cmd := exec.Command(gstLaunchBin, pipelineArgs(cfg)...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: pipe: %v", ErrBackendUnavailable, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: start %s: %v", ErrBackendUnavailable, gstLaunchBin, err)
	}

	c := &GStreamerCamera{
		cfg:    cfg,
		logger: logger,
		cmd:    cmd,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(c.done)
		br := bufio.NewReaderSize(stdout, 1<<20)
		for {
			data, err := readJPEG(br)
			if err != nil {
				// Pipe closed: either Close killed the process or the
				// pipeline died on its own.
				c.logger.Debug("capture loop ended", "error", err)
				return
			}
			c.cell.publish(Frame{
				Width:  cfg.Width,
				Height: cfg.Height,
				Format: "jpeg",
				Data:   data,
			})
		}
	}()

	return c, nil
}

// Latest implements Camera.
func (c *GStreamerCamera) Latest() (Frame, error) {
	return c.cell.latest()
}

// Backend implements Camera.
func (c *GStreamerCamera) Backend() Backend { return BackendGStreamer }

// Close kills the pipeline and waits for the capture loop to finish,
// so the sensor is free for the next user when Close returns.
func (c *GStreamerCamera) Close() error {
	c.closeOnce.Do(func() {
		if c.cmd.Process != nil {
			if err := c.cmd.Process.Kill(); err != nil {
				c.closeErr = fmt.Errorf("camera: kill pipeline: %w", err)
			}
		}
		// Wait reaps the process and closes the stdout pipe, which
		// unblocks the reader goroutine mid-frame.
		c.cmd.Wait()
		<-c.done
		c.logger.Info("gstreamer pipeline stopped", "frames", c.cell.sequence())
	})
	return c.closeErr
}
