// Package robot composes two motor channels into a differential-drive
// rover with directional commands and an observable command state.
package robot

import (
	"log/slog"
	"sync"

	"github.com/teslashibe/go-jetbot/pkg/motor"
)

// Command is the last drive command issued, as normalized per-channel
// speeds. A motor has one instantaneous state, so only the latest
// command is retained - there is no command queue.
type Command struct {
	Left  float64 `json:"left"`
	Right float64 `json:"right"`
}

// Robot is the rover facade. All driver writes are serialized through
// the facade mutex; it is safe to drive from multiple goroutines.
type Robot struct {
	driver motor.Driver
	logger *slog.Logger

	mu      sync.Mutex
	last    Command
	subs    []func(Command)
}

// New creates a Robot over a detected motor driver.
func New(driver motor.Driver, logger *slog.Logger) *Robot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Robot{driver: driver, logger: logger}
}

// OnCommand subscribes to command changes. The callback runs on the
// caller's goroutine after each successful drive call; it must not
// call back into the Robot.
func (r *Robot) OnCommand(fn func(Command)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs = append(r.subs, fn)
}

// LastCommand returns the most recently issued command.
func (r *Robot) LastCommand() Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

// Kind returns the detected controller kind.
func (r *Robot) Kind() motor.Kind {
	return r.driver.Kind()
}

// Forward drives both channels at speed.
func (r *Robot) Forward(speed float64) error {
	return r.SetMotors(speed, speed)
}

// Backward drives both channels at -speed.
func (r *Robot) Backward(speed float64) error {
	return r.SetMotors(-speed, -speed)
}

// Left pivots in place: the left channel runs at -speed, the right at
// +speed. Pivot turns (rather than differential arcs) are the
// convention here because they match the original JetBot notebooks and
// keep Left and Right exact mirrors of each other.
func (r *Robot) Left(speed float64) error {
	return r.SetMotors(-speed, speed)
}

// Right pivots in place, mirroring Left.
func (r *Robot) Right(speed float64) error {
	return r.SetMotors(speed, -speed)
}

// SetMotors drives each channel independently. A bus failure on either
// channel is surfaced to the caller without retry; the caller decides
// whether to reissue or stop.
func (r *Robot) SetMotors(left, right float64) error {
	r.mu.Lock()

	if err := r.driver.SetSpeed(motor.Left, left); err != nil {
		r.mu.Unlock()
		return err
	}
	if err := r.driver.SetSpeed(motor.Right, right); err != nil {
		r.mu.Unlock()
		return err
	}

	cmd := Command{Left: left, Right: right}
	r.last = cmd
	subs := make([]func(Command), len(r.subs))
	copy(subs, r.subs)
	r.mu.Unlock()

	for _, fn := range subs {
		fn(cmd)
	}
	return nil
}

// Stop drives both channels to zero unconditionally. Motors-off is
// safety critical, so a failed channel write is retried once
// immediately before the error is surfaced; the other channel is still
// attempted either way.
func (r *Robot) Stop() error {
	r.mu.Lock()

	errL := r.stopChannel(motor.Left)
	errR := r.stopChannel(motor.Right)

	cmd := Command{}
	r.last = cmd
	subs := make([]func(Command), len(r.subs))
	copy(subs, r.subs)
	r.mu.Unlock()

	for _, fn := range subs {
		fn(cmd)
	}

	if errL != nil {
		return errL
	}
	return errR
}

// stopChannel writes zero to one channel with a single retry.
// Caller holds r.mu.
func (r *Robot) stopChannel(ch motor.Channel) error {
	err := r.driver.SetSpeed(ch, 0)
	if err == nil {
		return nil
	}
	r.logger.Warn("stop write failed, retrying", "channel", ch.String(), "error", err)
	return r.driver.SetSpeed(ch, 0)
}

// Close stops the rover and releases the driver.
func (r *Robot) Close() error {
	if err := r.Stop(); err != nil {
		r.logger.Error("stop during close failed", "error", err)
	}
	return r.driver.Close()
}
