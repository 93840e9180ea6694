// Package camera provides the rover's camera abstraction.
//
// Backends:
//   - GStreamer - local CSI capture through the Jetson's hardware
//     pipeline (nvarguscamerasrc/nvjpegenc), production on the robot
//   - Relay - frames consumed from a remote capture process over TCP
//   - Mock - frame injection for tests
//
// Every backend publishes into a single-slot holding cell: the newest
// frame overwrites the previous one, so slow consumers skip frames
// instead of blocking the capture loop, and memory stays bounded to
// one frame in flight. Exactly one backend is active per process; the
// selection is made once at startup and never hot-swapped.
package camera

import (
	"errors"
	"io"
)

// Sentinel errors for camera conditions.
var (
	// ErrNoFrame is returned by Latest before any frame has arrived.
	// This is a normal transient state at startup, not a failure.
	ErrNoFrame = errors.New("camera: no frame received yet")

	// ErrBackendUnavailable is returned when the configured device or
	// relay cannot be opened. Fatal at startup.
	ErrBackendUnavailable = errors.New("camera: backend unavailable")

	// ErrClosed is returned when reading from a closed camera.
	ErrClosed = errors.New("camera: closed")
)

// Frame is one captured image. Data is an encoded JPEG payload; Seq
// increases monotonically so consumers can detect skipped or stale
// frames.
type Frame struct {
	Width  int
	Height int
	Format string // "jpeg"
	Seq    uint64
	Data   []byte
}

// Camera is the uniform latest-frame interface over any backend.
type Camera interface {
	// Latest returns the most recent frame without blocking. Before
	// the first frame arrives it returns ErrNoFrame.
	Latest() (Frame, error)

	// Backend reports which backend is active.
	Backend() Backend

	// Close interrupts the capture loop and releases the underlying
	// device or socket before returning.
	io.Closer
}
