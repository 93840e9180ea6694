package motor

import (
	"time"

	"github.com/teslashibe/go-jetbot/pkg/i2c"
)

const (
	// probeAttempts bounds retries per address; the bus can NAK
	// transiently right after power-up.
	probeAttempts = 3
	probeBackoff  = 10 * time.Millisecond
)

// Probe scans the known controller addresses and reports which board
// is attached. The Adafruit address is checked first and wins if both
// ever respond (should not happen with stock hardware).
//
// Returns (KindUnknown, ErrNoController) when neither address answers
// after bounded retries.
func Probe(bus i2c.Bus) (Kind, error) {
	if pingRetry(bus, AddrAdafruit) {
		return KindAdafruit, nil
	}
	if pingRetry(bus, AddrQwiic) {
		return KindQwiic, nil
	}
	return KindUnknown, ErrNoController
}

// pingRetry pings addr up to probeAttempts times before giving up.
func pingRetry(bus i2c.Bus, addr byte) bool {
	for i := 0; i < probeAttempts; i++ {
		if err := bus.Ping(addr); err == nil {
			return true
		}
		if i < probeAttempts-1 {
			time.Sleep(probeBackoff)
		}
	}
	return false
}
