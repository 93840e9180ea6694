package web

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/teslashibe/go-jetbot/pkg/camera"
	"github.com/teslashibe/go-jetbot/pkg/heartbeat"
	"github.com/teslashibe/go-jetbot/pkg/motor"
	"github.com/teslashibe/go-jetbot/pkg/protocol"
	"github.com/teslashibe/go-jetbot/pkg/robot"
)

// stubDriver records channel speeds for assertions.
type stubDriver struct {
	mu     sync.Mutex
	speeds map[motor.Channel]float64
}

func newStubDriver() *stubDriver {
	return &stubDriver{speeds: make(map[motor.Channel]float64)}
}

func (d *stubDriver) SetSpeed(ch motor.Channel, v float64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.speeds[ch] = v
	return nil
}

func (d *stubDriver) Kind() motor.Kind { return motor.KindAdafruit }
func (d *stubDriver) Close() error     { return nil }

func (d *stubDriver) speed(ch motor.Channel) float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.speeds[ch]
}

func newTestServer(t *testing.T, cam camera.Camera) (*Server, *stubDriver) {
	t.Helper()
	driver := newStubDriver()
	bot := robot.New(driver, nil)
	wd := heartbeat.New(time.Second, func() {}, nil)
	t.Cleanup(func() { wd.Close() })
	return NewServer(0, bot, cam, wd, nil), driver
}

func TestServer_State(t *testing.T) {
	cam := camera.NewMock(camera.DefaultConfig())
	cam.Push(camera.Frame{Width: 4, Height: 4, Format: "jpeg", Data: []byte{1}})
	s, _ := newTestServer(t, cam)

	if err := s.bot.SetMotors(0.25, -0.25); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest("GET", "/api/state", nil)
	resp, err := s.app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("status: got %d", resp.StatusCode)
	}

	var state protocol.StateData
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		t.Fatal(err)
	}
	if state.Controller != string(motor.KindAdafruit) {
		t.Errorf("controller: got %q", state.Controller)
	}
	if state.CameraBackend != string(camera.BackendMock) {
		t.Errorf("camera backend: got %q", state.CameraBackend)
	}
	if state.Heartbeat != string(heartbeat.StatusDead) {
		t.Errorf("heartbeat before any beat: got %q", state.Heartbeat)
	}
	if state.CommandLeft != 0.25 || state.CommandRight != -0.25 {
		t.Errorf("command: got L=%v R=%v", state.CommandLeft, state.CommandRight)
	}
	if state.FrameSeq != 1 {
		t.Errorf("frame seq: got %d", state.FrameSeq)
	}
}

func TestServer_StopEndpoint(t *testing.T) {
	s, driver := newTestServer(t, nil)

	if err := s.bot.SetMotors(0.8, 0.8); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest("POST", "/api/stop", nil)
	resp, err := s.app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("status: got %d", resp.StatusCode)
	}

	if driver.speed(motor.Left) != 0 || driver.speed(motor.Right) != 0 {
		t.Errorf("motors still running: L=%v R=%v",
			driver.speed(motor.Left), driver.speed(motor.Right))
	}
}

func TestServer_Index(t *testing.T) {
	s, _ := newTestServer(t, nil)

	req := httptest.NewRequest("GET", "/", nil)
	resp, err := s.app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("status: got %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(body), "/ws/drive") {
		t.Error("index page missing drive socket wiring")
	}
}

func TestServer_VideoWithoutCamera(t *testing.T) {
	s, _ := newTestServer(t, nil)

	req := httptest.NewRequest("GET", "/video", nil)
	resp, err := s.app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != 503 {
		t.Errorf("status without camera: got %d, want 503", resp.StatusCode)
	}
}
