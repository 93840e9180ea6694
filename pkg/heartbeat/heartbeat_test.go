package heartbeat

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestWatchdog_StartsDead(t *testing.T) {
	w := New(50*time.Millisecond, nil, nil)
	defer w.Close()

	if w.Status() != StatusDead {
		t.Errorf("initial status: got %s, want %s", w.Status(), StatusDead)
	}
}

func TestWatchdog_BeatKeepsAlive(t *testing.T) {
	var deaths atomic.Int32
	w := New(60*time.Millisecond, func() { deaths.Add(1) }, nil)
	defer w.Close()

	// Beat faster than the period for a while.
	for i := 0; i < 6; i++ {
		w.Beat()
		time.Sleep(20 * time.Millisecond)
	}

	if w.Status() != StatusAlive {
		t.Errorf("status: got %s, want %s", w.Status(), StatusAlive)
	}
	if n := deaths.Load(); n != 0 {
		t.Errorf("onDeath fired %d times while beating", n)
	}
}

func TestWatchdog_FiresOnceOnLapse(t *testing.T) {
	var deaths atomic.Int32
	w := New(40*time.Millisecond, func() { deaths.Add(1) }, nil)
	defer w.Close()

	w.Beat()
	time.Sleep(150 * time.Millisecond)

	if w.Status() != StatusDead {
		t.Errorf("status after lapse: got %s, want %s", w.Status(), StatusDead)
	}
	if n := deaths.Load(); n != 1 {
		t.Errorf("onDeath fired %d times, want exactly 1", n)
	}
}

func TestWatchdog_Revives(t *testing.T) {
	var deaths atomic.Int32
	w := New(40*time.Millisecond, func() { deaths.Add(1) }, nil)
	defer w.Close()

	w.Beat()
	time.Sleep(120 * time.Millisecond) // lapse
	w.Beat()                           // revive

	if w.Status() != StatusAlive {
		t.Errorf("status after revive: got %s, want %s", w.Status(), StatusAlive)
	}

	time.Sleep(120 * time.Millisecond) // lapse again
	if n := deaths.Load(); n != 2 {
		t.Errorf("onDeath fired %d times across two lapses, want 2", n)
	}
}

func TestWatchdog_CloseDoesNotFire(t *testing.T) {
	var deaths atomic.Int32
	w := New(30*time.Millisecond, func() { deaths.Add(1) }, nil)

	w.Beat()
	w.Close()
	time.Sleep(100 * time.Millisecond)

	if n := deaths.Load(); n != 0 {
		t.Errorf("onDeath fired %d times after Close", n)
	}
}
