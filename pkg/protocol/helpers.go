package protocol

// =============================================================================
// Helper functions for creating messages
// =============================================================================

// NewDriveMessage creates a drive command message
func NewDriveMessage(left, right float64) (*Message, error) {
	return NewMessage(TypeDrive, DriveData{Left: left, Right: right})
}

// NewStopMessage creates an emergency stop message
func NewStopMessage() (*Message, error) {
	return NewMessage(TypeStop, nil)
}

// NewHeartbeatMessage creates a heartbeat message
func NewHeartbeatMessage(clientID string) (*Message, error) {
	return NewMessage(TypeHeartbeat, HeartbeatData{ClientID: clientID})
}

// NewStateMessage creates a state snapshot message
func NewStateMessage(state StateData) (*Message, error) {
	return NewMessage(TypeState, state)
}

// NewDetectionMessage creates a detection results message
func NewDetectionMessage(frameSeq uint64, objects []BoxObject) (*Message, error) {
	return NewMessage(TypeDetection, DetectionData{FrameSeq: frameSeq, Objects: objects})
}

// NewPingMessage creates a ping message
func NewPingMessage(id string) (*Message, error) {
	return NewMessage(TypePing, PingData{ID: id})
}

// NewPongMessage creates a pong response message
func NewPongMessage(id string, pingTS, pongTS int64) (*Message, error) {
	return NewMessage(TypePong, PongData{
		ID:        id,
		PingTS:    pingTS,
		PongTS:    pongTS,
		LatencyMs: pongTS - pingTS,
	})
}

// =============================================================================
// Helper functions for parsing messages
// =============================================================================

// GetDriveData extracts a drive command from a message
func (m *Message) GetDriveData() (*DriveData, error) {
	var data DriveData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetHeartbeatData extracts heartbeat data from a message
func (m *Message) GetHeartbeatData() (*HeartbeatData, error) {
	var data HeartbeatData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetStateData extracts state data from a message
func (m *Message) GetStateData() (*StateData, error) {
	var data StateData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetDetectionData extracts detection results from a message
func (m *Message) GetDetectionData() (*DetectionData, error) {
	var data DetectionData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPingData extracts ping data from a message
func (m *Message) GetPingData() (*PingData, error) {
	var data PingData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPongData extracts pong data from a message
func (m *Message) GetPongData() (*PongData, error) {
	var data PongData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}
