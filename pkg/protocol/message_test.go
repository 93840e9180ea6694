package protocol

import (
	"testing"
)

func TestNewMessage(t *testing.T) {
	tests := []struct {
		name    string
		msgType MessageType
		data    interface{}
		wantErr bool
	}{
		{
			name:    "drive message",
			msgType: TypeDrive,
			data:    DriveData{Left: 0.5, Right: -0.5},
			wantErr: false,
		},
		{
			name:    "state message",
			msgType: TypeState,
			data:    StateData{Controller: "adafruit_motorhat", FrameSeq: 42},
			wantErr: false,
		},
		{
			name:    "nil data",
			msgType: TypeStop,
			data:    nil,
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := NewMessage(tt.msgType, tt.data)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewMessage() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if msg.Type != tt.msgType {
				t.Errorf("NewMessage() type = %v, want %v", msg.Type, tt.msgType)
			}
			if msg.Timestamp == 0 {
				t.Error("NewMessage() timestamp should be set")
			}
		})
	}
}

func TestDriveRoundTrip(t *testing.T) {
	msg, err := NewDriveMessage(0.4, -0.4)
	if err != nil {
		t.Fatalf("NewDriveMessage: %v", err)
	}

	raw, err := msg.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}

	parsed, err := ParseMessage(raw)
	if err != nil {
		t.Fatalf("ParseMessage: %v", err)
	}
	if parsed.Type != TypeDrive {
		t.Errorf("type: got %s, want %s", parsed.Type, TypeDrive)
	}

	drive, err := parsed.GetDriveData()
	if err != nil {
		t.Fatalf("GetDriveData: %v", err)
	}
	if drive.Left != 0.4 || drive.Right != -0.4 {
		t.Errorf("drive: got %+v", drive)
	}
}

func TestDetectionRoundTrip(t *testing.T) {
	objects := []BoxObject{
		{Label: "person", Confidence: 0.91, X: 0.1, Y: 0.2, W: 0.3, H: 0.5},
	}
	msg, err := NewDetectionMessage(7, objects)
	if err != nil {
		t.Fatalf("NewDetectionMessage: %v", err)
	}

	raw, _ := msg.Bytes()
	parsed, err := ParseMessage(raw)
	if err != nil {
		t.Fatalf("ParseMessage: %v", err)
	}

	det, err := parsed.GetDetectionData()
	if err != nil {
		t.Fatalf("GetDetectionData: %v", err)
	}
	if det.FrameSeq != 7 || len(det.Objects) != 1 {
		t.Fatalf("detection: got %+v", det)
	}
	if det.Objects[0].Label != "person" {
		t.Errorf("label: got %q", det.Objects[0].Label)
	}
}

func TestParseMessage_Invalid(t *testing.T) {
	if _, err := ParseMessage([]byte("{not json")); err == nil {
		t.Error("ParseMessage accepted invalid JSON")
	}
}
