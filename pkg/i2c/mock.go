package i2c

import (
	"fmt"
	"sync"
)

// RegWrite records one register write for test assertions.
type RegWrite struct {
	Addr byte
	Reg  byte
	Data []byte
}

// MockBus is an in-memory Bus for tests. Configure which addresses
// respond with Present, inject failures with FailWrites/FailPings,
// and inspect the write log with Writes.
type MockBus struct {
	mu sync.Mutex

	// present addresses acknowledge Ping.
	present map[byte]bool

	// pingFlaky[addr] counts down transient Ping failures before success.
	pingFlaky map[byte]int

	// failWrites makes every WriteReg fail when non-nil.
	failWrites error

	// failWritesLeft limits failWrites to the first N calls (0 = unlimited).
	failWritesLeft int

	writes []RegWrite
	regs   map[byte]map[byte][]byte
	closed bool
}

// NewMockBus creates a mock bus with devices present at the given addresses.
func NewMockBus(present ...byte) *MockBus {
	m := &MockBus{
		present:   make(map[byte]bool),
		pingFlaky: make(map[byte]int),
		regs:      make(map[byte]map[byte][]byte),
	}
	for _, a := range present {
		m.present[a] = true
	}
	return m
}

// SetPresent adds or removes a device at addr.
func (m *MockBus) SetPresent(addr byte, present bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.present[addr] = present
}

// FlakyPings makes the first n Pings at addr fail before succeeding,
// simulating transient bus noise.
func (m *MockBus) FlakyPings(addr byte, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingFlaky[addr] = n
}

// FailWrites makes WriteReg return err. If n > 0 only the next n writes fail.
func (m *MockBus) FailWrites(err error, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWrites = err
	m.failWritesLeft = n
}

// SetReg seeds a register value for ReadReg.
func (m *MockBus) SetReg(addr, reg byte, data ...byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.regs[addr] == nil {
		m.regs[addr] = make(map[byte][]byte)
	}
	m.regs[addr][reg] = data
}

// Writes returns a copy of the write log.
func (m *MockBus) Writes() []RegWrite {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]RegWrite, len(m.writes))
	copy(out, m.writes)
	return out
}

// LastWrite returns the most recent write to addr, or nil.
func (m *MockBus) LastWrite(addr byte) *RegWrite {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.writes) - 1; i >= 0; i-- {
		if m.writes[i].Addr == addr {
			w := m.writes[i]
			return &w
		}
	}
	return nil
}

// ClearWrites empties the write log.
func (m *MockBus) ClearWrites() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes = nil
}

// Closed reports whether Close was called.
func (m *MockBus) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// WriteReg implements Bus.
func (m *MockBus) WriteReg(addr, reg byte, data ...byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if m.failWrites != nil {
		err := m.failWrites
		if m.failWritesLeft > 0 {
			m.failWritesLeft--
			if m.failWritesLeft == 0 {
				m.failWrites = nil
			}
		}
		return err
	}
	if !m.present[addr] {
		return fmt.Errorf("%w 0x%02x", ErrNoDevice, addr)
	}

	d := make([]byte, len(data))
	copy(d, data)
	m.writes = append(m.writes, RegWrite{Addr: addr, Reg: reg, Data: d})
	if m.regs[addr] == nil {
		m.regs[addr] = make(map[byte][]byte)
	}
	m.regs[addr][reg] = d
	return nil
}

// ReadReg implements Bus.
func (m *MockBus) ReadReg(addr, reg byte, buf []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if !m.present[addr] {
		return fmt.Errorf("%w 0x%02x", ErrNoDevice, addr)
	}
	copy(buf, m.regs[addr][reg])
	return nil
}

// Ping implements Bus.
func (m *MockBus) Ping(addr byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if n := m.pingFlaky[addr]; n > 0 {
		m.pingFlaky[addr] = n - 1
		return fmt.Errorf("i2c: transient read failure at 0x%02x", addr)
	}
	if !m.present[addr] {
		return fmt.Errorf("%w 0x%02x", ErrNoDevice, addr)
	}
	return nil
}

// Close implements Bus.
func (m *MockBus) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
