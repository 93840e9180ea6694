package robot

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/teslashibe/go-jetbot/pkg/motor"
)

const floatTolerance = 1e-9

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < floatTolerance
}

// recordingDriver records every SetSpeed call and can be made to fail.
type recordingDriver struct {
	mu    sync.Mutex
	calls []struct {
		ch motor.Channel
		v  float64
	}
	// failNext fails the next n SetSpeed calls.
	failNext int
	failErr  error
	closed   bool
}

func (d *recordingDriver) SetSpeed(ch motor.Channel, v float64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failNext > 0 {
		d.failNext--
		return d.failErr
	}
	d.calls = append(d.calls, struct {
		ch motor.Channel
		v  float64
	}{ch, v})
	return nil
}

func (d *recordingDriver) Kind() motor.Kind { return motor.KindAdafruit }

func (d *recordingDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

func (d *recordingDriver) lastSpeed(ch motor.Channel) (float64, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := len(d.calls) - 1; i >= 0; i-- {
		if d.calls[i].ch == ch {
			return d.calls[i].v, true
		}
	}
	return 0, false
}

func TestForwardBackward(t *testing.T) {
	d := &recordingDriver{}
	r := New(d, nil)

	if err := r.Forward(0.5); err != nil {
		t.Fatalf("Forward: %v", err)
	}
	l, _ := d.lastSpeed(motor.Left)
	rr, _ := d.lastSpeed(motor.Right)
	if !floatEquals(l, 0.5) || !floatEquals(rr, 0.5) {
		t.Errorf("Forward(0.5): channels (%v, %v), want (0.5, 0.5)", l, rr)
	}

	if err := r.Backward(0.3); err != nil {
		t.Fatalf("Backward: %v", err)
	}
	l, _ = d.lastSpeed(motor.Left)
	rr, _ = d.lastSpeed(motor.Right)
	if !floatEquals(l, -0.3) || !floatEquals(rr, -0.3) {
		t.Errorf("Backward(0.3): channels (%v, %v), want (-0.3, -0.3)", l, rr)
	}
}

func TestLeftRight_ExactNegations(t *testing.T) {
	d := &recordingDriver{}
	r := New(d, nil)

	r.Left(0.4)
	leftL, _ := d.lastSpeed(motor.Left)
	leftR, _ := d.lastSpeed(motor.Right)

	r.Right(0.4)
	rightL, _ := d.lastSpeed(motor.Left)
	rightR, _ := d.lastSpeed(motor.Right)

	if !floatEquals(leftL, -rightL) || !floatEquals(leftR, -rightR) {
		t.Errorf("Left(0.4)=(%v,%v) is not the negation of Right(0.4)=(%v,%v)",
			leftL, leftR, rightL, rightR)
	}
	// Pivot convention: left channel reversed when turning left.
	if !floatEquals(leftL, -0.4) || !floatEquals(leftR, 0.4) {
		t.Errorf("Left(0.4): channels (%v, %v), want (-0.4, 0.4)", leftL, leftR)
	}
}

func TestStop_AfterFullSpeed(t *testing.T) {
	d := &recordingDriver{}
	r := New(d, nil)

	r.Forward(1.0)
	if err := r.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	l, _ := d.lastSpeed(motor.Left)
	rr, _ := d.lastSpeed(motor.Right)
	if l != 0 || rr != 0 {
		t.Errorf("Stop: channels (%v, %v), want (0, 0)", l, rr)
	}
	if cmd := r.LastCommand(); cmd.Left != 0 || cmd.Right != 0 {
		t.Errorf("LastCommand after Stop: %+v", cmd)
	}
}

func TestStop_RetriesOnceOnBusError(t *testing.T) {
	d := &recordingDriver{failNext: 1, failErr: errors.New("EIO")}
	r := New(d, nil)

	// First write fails, retry succeeds; Stop overall succeeds.
	if err := r.Stop(); err != nil {
		t.Fatalf("Stop with transient fault: %v", err)
	}
	l, ok := d.lastSpeed(motor.Left)
	if !ok || l != 0 {
		t.Error("Stop retry did not drive left channel to 0")
	}
}

func TestStop_SurfacesPersistentFault(t *testing.T) {
	busErr := errors.New("EIO")
	d := &recordingDriver{failNext: 4, failErr: busErr}
	r := New(d, nil)

	// Both writes and both retries fail: Stop must report it, not
	// swallow it.
	if err := r.Stop(); !errors.Is(err, busErr) {
		t.Fatalf("Stop: got %v, want wrapped bus error", err)
	}
}

func TestSetMotors_SurfacesErrorWithoutRetry(t *testing.T) {
	busErr := errors.New("EIO")
	d := &recordingDriver{failNext: 1, failErr: busErr}
	r := New(d, nil)

	if err := r.SetMotors(0.5, 0.5); !errors.Is(err, busErr) {
		t.Fatalf("SetMotors: got %v, want bus error", err)
	}
	// No retry: the failed left write consumed the single failure, so
	// no left-channel call was recorded.
	if _, ok := d.lastSpeed(motor.Left); ok {
		t.Error("SetMotors retried a non-stop command")
	}
}

func TestOnCommand_Notifies(t *testing.T) {
	d := &recordingDriver{}
	r := New(d, nil)

	var got []Command
	r.OnCommand(func(c Command) { got = append(got, c) })

	r.Forward(0.6)
	r.Stop()

	if len(got) != 2 {
		t.Fatalf("notifications: got %d, want 2", len(got))
	}
	if !floatEquals(got[0].Left, 0.6) || !floatEquals(got[0].Right, 0.6) {
		t.Errorf("first notification: %+v", got[0])
	}
	if got[1].Left != 0 || got[1].Right != 0 {
		t.Errorf("stop notification: %+v", got[1])
	}
}

func TestClose_StopsAndReleasesDriver(t *testing.T) {
	d := &recordingDriver{}
	r := New(d, nil)

	r.Forward(1.0)
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !d.closed {
		t.Error("Close did not release the driver")
	}
	l, _ := d.lastSpeed(motor.Left)
	if l != 0 {
		t.Error("Close did not stop the motors")
	}
}
