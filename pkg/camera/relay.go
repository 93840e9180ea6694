package camera

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
)

// maxFrameSize caps a relay payload. Anything larger means a corrupt
// stream, not a frame.
const maxFrameSize = 16 << 20

// RelayCamera consumes frames from a remote capture process. The wire
// format is fixed: each frame is a uint32 big-endian length followed
// by that many bytes of JPEG payload.
type RelayCamera struct {
	cfg    Config
	logger *slog.Logger

	cell cell
	conn net.Conn
	done chan struct{}

	closeOnce sync.Once
}

// openRelay dials the relay. An unreachable relay fails construction
// here, not on the first Latest.
func openRelay(cfg Config, logger *slog.Logger) (*RelayCamera, error) {
	conn, err := net.DialTimeout("tcp", cfg.RelayAddr, cfg.DialTimeout)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", ErrBackendUnavailable, cfg.RelayAddr, err)
	}

	c := &RelayCamera{
		cfg:    cfg,
		logger: logger,
		conn:   conn,
		done:   make(chan struct{}),
	}

	go c.readLoop()
	return c, nil
}

func (c *RelayCamera) readLoop() {
	defer close(c.done)

	var lenBuf [4]byte
	for {
		if _, err := io.ReadFull(c.conn, lenBuf[:]); err != nil {
			c.logEnd(err)
			return
		}
		n := binary.BigEndian.Uint32(lenBuf[:])
		if n == 0 || n > maxFrameSize {
			c.logger.Error("relay stream corrupt", "frame_len", n)
			c.conn.Close()
			return
		}

		data := make([]byte, n)
		if _, err := io.ReadFull(c.conn, data); err != nil {
			c.logEnd(err)
			return
		}

		c.cell.publish(Frame{
			Width:  c.cfg.Width,
			Height: c.cfg.Height,
			Format: "jpeg",
			Data:   data,
		})
	}
}

func (c *RelayCamera) logEnd(err error) {
	if errors.Is(err, net.ErrClosed) || errors.Is(err, io.EOF) {
		c.logger.Debug("relay stream ended", "error", err)
		return
	}
	c.logger.Warn("relay read failed", "error", err)
}

// Latest implements Camera.
func (c *RelayCamera) Latest() (Frame, error) {
	return c.cell.latest()
}

// Backend implements Camera.
func (c *RelayCamera) Backend() Backend { return BackendRelay }

// Close shuts the socket and waits for the reader to exit, so the
// connection is fully released when Close returns - even if the
// reader was mid-frame.
func (c *RelayCamera) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.conn.Close()
		<-c.done
	})
	return err
}
