// Package heartbeat provides a watchdog that halts the rover when the
// controlling client stops checking in. A browser tab that crashes
// mid-drive must not leave the motors running.
package heartbeat

import (
	"log/slog"
	"sync"
	"time"
)

// Status is the watchdog state.
type Status string

const (
	// StatusAlive means a beat arrived within the period.
	StatusAlive Status = "alive"
	// StatusDead means the client missed its deadline.
	StatusDead Status = "dead"
)

// Watchdog fires a callback once each time the beat deadline lapses.
// A subsequent Beat revives it.
type Watchdog struct {
	period  time.Duration
	onDeath func()
	logger  *slog.Logger

	mu       sync.Mutex
	lastBeat time.Time
	status   Status
	stopCh   chan struct{}
	stopped  bool
}

// New creates a watchdog that calls onDeath when no Beat arrives for
// one period. The watchdog starts dead; the first Beat arms it.
func New(period time.Duration, onDeath func(), logger *slog.Logger) *Watchdog {
	if logger == nil {
		logger = slog.Default()
	}
	w := &Watchdog{
		period:  period,
		onDeath: onDeath,
		logger:  logger,
		status:  StatusDead,
		stopCh:  make(chan struct{}),
	}
	go w.run()
	return w
}

// Beat records a client check-in, reviving a dead watchdog.
func (w *Watchdog) Beat() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lastBeat = time.Now()
	if w.status == StatusDead {
		w.logger.Debug("heartbeat revived")
	}
	w.status = StatusAlive
}

// Status returns the current watchdog state.
func (w *Watchdog) Status() Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// Close stops the watchdog goroutine. It does not fire onDeath.
func (w *Watchdog) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.stopped {
		w.stopped = true
		close(w.stopCh)
	}
	return nil
}

func (w *Watchdog) run() {
	// Check at twice the beat rate so a lapse is caught within half a
	// period of the deadline.
	ticker := time.NewTicker(w.period / 2)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.check()
		}
	}
}

func (w *Watchdog) check() {
	w.mu.Lock()
	lapsed := w.status == StatusAlive && time.Since(w.lastBeat) > w.period
	if lapsed {
		w.status = StatusDead
	}
	w.mu.Unlock()

	if lapsed {
		w.logger.Warn("heartbeat lost, halting", "period", w.period)
		if w.onDeath != nil {
			w.onDeath()
		}
	}
}
