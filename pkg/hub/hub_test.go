package hub

import (
	"fmt"
	"testing"
	"time"
)

func waitForCount(t *testing.T, h *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if h.ClientCount() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("ClientCount() = %d, want %d", h.ClientCount(), want)
}

// A client that never drains its send buffer must be dropped by the
// broadcast loop while ClientCount is polled from another goroutine,
// the way the state and frame pumps do.
func TestHub_BroadcastDropsStalledClient(t *testing.T) {
	h := New("test", nil)
	go h.Run()

	stalled := &Client{
		ID:   "stalled",
		hub:  h,
		send: make(chan Message, 1),
	}
	h.register <- stalled
	waitForCount(t, h, 1)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 64; i++ {
			h.Broadcast(NewJSONMessage([]byte(fmt.Sprintf(`{"n":%d}`, i))))
		}
	}()

	// First message fills the buffer, the next one trips the drop.
	waitForCount(t, h, 0)
	<-done

	if _, open := <-stalled.send; open {
		// The buffered message drains first; the channel must then
		// report closed.
		if _, open := <-stalled.send; open {
			t.Fatal("send channel left open after drop")
		}
	}
}
