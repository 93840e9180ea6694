package camera

import "sync"

// cell is the single-slot frame holder shared by all backends.
// Writes overwrite, reads copy out; neither ever blocks on the other
// beyond the mutex hold.
type cell struct {
	mu    sync.RWMutex
	frame Frame
	seq   uint64
	has   bool
}

// publish stores f as the latest frame, stamping its sequence number.
func (c *cell) publish(f Frame) {
	c.mu.Lock()
	c.seq++
	f.Seq = c.seq
	c.frame = f
	c.has = true
	c.mu.Unlock()
}

// latest returns a copy of the current frame, or ErrNoFrame before
// the first publish. The copy keeps callers isolated from the next
// overwrite.
func (c *cell) latest() (Frame, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.has {
		return Frame{}, ErrNoFrame
	}
	f := c.frame
	f.Data = make([]byte, len(c.frame.Data))
	copy(f.Data, c.frame.Data)
	return f, nil
}

// sequence returns the current sequence number (0 before any frame).
func (c *cell) sequence() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.seq
}
