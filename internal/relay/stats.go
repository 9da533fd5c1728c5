package relay

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/heatlink/hgi80/helpers/atomic_clock"
)

type counters struct {
	lines        uint64
	timeouts     uint64
	decodeErrors uint64
	noisy        uint64
	ignored      uint64
	forwarded    uint64

	lastTelegram atomic_clock.Clock
	lastForward  atomic_clock.Clock
}

// Stats is point in time copy of loop counters.
type Stats struct {
	Lines        uint64
	Timeouts     uint64
	DecodeErrors uint64
	Noisy        uint64
	Ignored      uint64 // valid, not zone temperature
	Forwarded    uint64
	LastTelegram time.Time
	LastForward  time.Time
}

func (self *counters) snapshot() Stats {
	return Stats{
		Lines:        atomic.LoadUint64(&self.lines),
		Timeouts:     atomic.LoadUint64(&self.timeouts),
		DecodeErrors: atomic.LoadUint64(&self.decodeErrors),
		Noisy:        atomic.LoadUint64(&self.noisy),
		Ignored:      atomic.LoadUint64(&self.ignored),
		Forwarded:    atomic.LoadUint64(&self.forwarded),
		LastTelegram: self.lastTelegram.Time(),
		LastForward:  self.lastForward.Time(),
	}
}

func (s Stats) String() string {
	return fmt.Sprintf("lines=%d timeouts=%d decode_errors=%d noisy=%d ignored=%d forwarded=%d last_forward=%s",
		s.Lines, s.Timeouts, s.DecodeErrors, s.Noisy, s.Ignored, s.Forwarded, formatTime(s.LastForward))
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Format(time.RFC3339)
}
