package relay

import (
	"context"
	"sync/atomic"

	"github.com/heatlink/hgi80/internal/forward"
	"github.com/heatlink/hgi80/internal/telegram"
	"github.com/heatlink/hgi80/log2"
	"github.com/juju/errors"
	"github.com/temoto/alive/v2"
)

// DefaultSignalMax is lowest signal quality value treated as noise.
const DefaultSignalMax = 80

// Source yields gateway lines. ReadLine must return within bounded time,
// errors.IsTimeout when nothing complete arrived.
type Source interface {
	ReadLine() (string, error)
}

type State uint32

const (
	StateRunning State = iota
	StateStopping
	StateStopped
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	}
	return "invalid"
}

// Loop reads telegrams in arrival order and forwards clean zone temperature readings.
type Loop struct {
	SignalMax uint16

	log    *log2.Log
	source Source
	fwd    forward.Forwarder
	state  uint32
	stat   counters
}

func NewLoop(source Source, fwd forward.Forwarder, signalMax uint16, log *log2.Log) *Loop {
	if signalMax == 0 {
		signalMax = DefaultSignalMax
	}
	return &Loop{
		SignalMax: signalMax,
		log:       log,
		source:    source,
		fwd:       fwd,
	}
}

func (self *Loop) State() State { return State(atomic.LoadUint32(&self.state)) }
func (self *Loop) Stats() Stats { return self.stat.snapshot() }
func (self *Loop) setState(s State) { atomic.StoreUint32(&self.state, uint32(s)) }

// Run blocks until a.Stop() or ctx done (nil error) or the source breaks (fatal error).
// Stop is observed between reads, so latency is at most one source read timeout.
// Zero state is StateRunning, Stop() before Run() leaves StateStopping intact.
func (self *Loop) Run(ctx context.Context, a *alive.Alive) error {
	for a.IsRunning() && ctx.Err() == nil {
		line, err := self.source.ReadLine()
		if err != nil {
			if errors.IsTimeout(err) {
				atomic.AddUint64(&self.stat.timeouts, 1)
				self.log.Debugf("relay %v", err)
				continue
			}
			self.setState(StateFailed)
			return errors.Annotate(err, "relay source")
		}
		self.handle(ctx, line)
	}
	self.setState(StateStopped)
	return nil
}

func (self *Loop) handle(ctx context.Context, line string) {
	atomic.AddUint64(&self.stat.lines, 1)
	p, err := telegram.Parse(line)
	if err != nil {
		atomic.AddUint64(&self.stat.decodeErrors, 1)
		self.log.Debugf("relay decode line=%q err=%v", line, err)
		return
	}
	self.stat.lastTelegram.SetNow()
	if p.Signal >= self.SignalMax {
		atomic.AddUint64(&self.stat.noisy, 1)
		self.log.Debugf("relay noisy signal=%d max=%d packet=%s", p.Signal, self.SignalMax, p.String())
		return
	}
	zt, ok := p.ZoneTemps()
	if !ok {
		atomic.AddUint64(&self.stat.ignored, 1)
		return
	}
	self.log.Debugf("relay forward %s", zt.String())
	self.fwd.Forward(ctx, zt)
	atomic.AddUint64(&self.stat.forwarded, 1)
	self.stat.lastForward.SetNow()
}
