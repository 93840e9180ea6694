package camera

import "sync"

// MockCamera is an injectable camera for tests: push frames in with
// Push, observe releases with Closed.
type MockCamera struct {
	cfg  Config
	cell cell

	mu     sync.Mutex
	closed bool
}

// NewMock creates a mock camera.
func NewMock(cfg Config) *MockCamera {
	return &MockCamera{cfg: cfg}
}

// Push publishes a frame into the latest-frame cell.
func (c *MockCamera) Push(f Frame) {
	if f.Format == "" {
		f.Format = "jpeg"
	}
	c.cell.publish(f)
}

// Latest implements Camera.
func (c *MockCamera) Latest() (Frame, error) {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return Frame{}, ErrClosed
	}
	return c.cell.latest()
}

// Backend implements Camera.
func (c *MockCamera) Backend() Backend { return BackendMock }

// Close implements Camera.
func (c *MockCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// Closed reports whether Close was called.
func (c *MockCamera) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
