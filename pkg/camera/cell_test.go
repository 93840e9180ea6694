package camera

import (
	"errors"
	"testing"
	"time"
)

func TestCell_SentinelBeforeFirstFrame(t *testing.T) {
	var c cell

	// Must return immediately with the sentinel - never block, never
	// panic.
	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := c.latest(); !errors.Is(err, ErrNoFrame) {
			t.Errorf("latest before publish: got %v, want ErrNoFrame", err)
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("latest blocked waiting for a frame")
	}
}

func TestCell_OverwriteKeepsNewest(t *testing.T) {
	var c cell

	c.publish(Frame{Data: []byte("one")})
	c.publish(Frame{Data: []byte("two")})
	c.publish(Frame{Data: []byte("three")})

	f, err := c.latest()
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if string(f.Data) != "three" {
		t.Errorf("got %q, want newest frame", f.Data)
	}
	if f.Seq != 3 {
		t.Errorf("seq: got %d, want 3", f.Seq)
	}
}

func TestCell_ReadCopyIsolatedFromOverwrite(t *testing.T) {
	var c cell

	c.publish(Frame{Data: []byte("aaaa")})
	f, _ := c.latest()
	c.publish(Frame{Data: []byte("bbbb")})

	if string(f.Data) != "aaaa" {
		t.Errorf("earlier read mutated by later publish: %q", f.Data)
	}
}

func TestCell_SequenceMonotonic(t *testing.T) {
	var c cell

	var prev uint64
	for i := 0; i < 10; i++ {
		c.publish(Frame{Data: []byte{byte(i)}})
		f, _ := c.latest()
		if f.Seq <= prev {
			t.Fatalf("seq not increasing: %d after %d", f.Seq, prev)
		}
		prev = f.Seq
	}
}

func TestMock_CloseRecorded(t *testing.T) {
	m := NewMock(Config{Backend: BackendMock})
	m.Push(Frame{Data: []byte("f")})

	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !m.Closed() {
		t.Error("Closed not recorded")
	}
	if _, err := m.Latest(); !errors.Is(err, ErrClosed) {
		t.Errorf("Latest after Close: got %v, want ErrClosed", err)
	}
}
