// Package protocol defines the websocket message types for the
// jetbot teleoperation surface. The same envelope is used by the
// daemon's dashboard sockets and by remote teleop clients.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType identifies the type of websocket message
type MessageType string

const (
	// Client → Robot messages
	TypeDrive     MessageType = "drive"     // Per-channel drive command
	TypeStop      MessageType = "stop"      // Emergency stop
	TypeHeartbeat MessageType = "heartbeat" // Client liveness beat

	// Robot → Client messages
	TypeState     MessageType = "state"     // Rover state snapshot
	TypeDetection MessageType = "detection" // Object detection results

	// Bidirectional
	TypePing MessageType = "ping"
	TypePong MessageType = "pong"
)

// Message is the base wrapper for all websocket messages
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(msgType MessageType, data interface{}) (*Message, error) {
	var rawData json.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message data: %w", err)
		}
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      rawData,
	}, nil
}

// ParseData unmarshals the message data into the provided struct
func (m *Message) ParseData(v interface{}) error {
	if m.Data == nil {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Bytes returns the JSON-encoded message
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage parses a JSON message from bytes
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	return &msg, nil
}

// =============================================================================
// Client → Robot Message Types
// =============================================================================

// DriveData carries normalized per-channel speeds in [-1, 1].
// Out-of-range values are clamped by the motor layer, never rejected.
type DriveData struct {
	Left  float64 `json:"left"`
	Right float64 `json:"right"`
}

// HeartbeatData carries a client liveness beat
type HeartbeatData struct {
	ClientID string `json:"client_id,omitempty"`
}

// =============================================================================
// Robot → Client Message Types
// =============================================================================

// StateData is a snapshot of the rover for dashboards
type StateData struct {
	Controller    string  `json:"controller"`     // detected motor controller kind
	CameraBackend string  `json:"camera_backend"` // active camera backend
	Heartbeat     string  `json:"heartbeat"`      // watchdog status
	CommandLeft   float64 `json:"command_left"`   // last issued drive command
	CommandRight  float64 `json:"command_right"`
	FrameSeq      uint64  `json:"frame_seq"` // latest camera frame sequence
	UptimeSec     int64   `json:"uptime_sec"`
}

// DetectionData carries object detection results for one frame
type DetectionData struct {
	FrameSeq uint64      `json:"frame_seq"`
	Objects  []BoxObject `json:"objects"`
}

// BoxObject is one detected object with a normalized bounding box
type BoxObject struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	X          float64 `json:"x"` // top-left, 0-1 normalized
	Y          float64 `json:"y"`
	W          float64 `json:"w"`
	H          float64 `json:"h"`
}

// =============================================================================
// Bidirectional Message Types
// =============================================================================

// PingData contains ping information
type PingData struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"ts"`
}

// PongData contains pong response
type PongData struct {
	ID        string `json:"id"`
	PingTS    int64  `json:"ping_ts"`
	PongTS    int64  `json:"pong_ts"`
	LatencyMs int64  `json:"latency_ms"`
}
