// Package relay runs the gateway ingestion loop and owns its lifecycle.
package relay

import (
	"context"
	"sync/atomic"

	"github.com/heatlink/hgi80/helpers"
	"github.com/heatlink/hgi80/internal/forward"
	"github.com/heatlink/hgi80/log2"
	"github.com/juju/errors"
	"github.com/temoto/alive/v2"
)

type Config struct {
	SignalMax uint16
}

// Relay is handle to running ingestion loop.
type Relay struct {
	Loop *Loop

	alive  *alive.Alive
	cancel context.CancelFunc
	err    helpers.AtomicError
	log    *log2.Log
}

// Start launches ingestion loop in background and returns immediately.
func Start(ctx context.Context, log *log2.Log, source Source, fwd forward.Forwarder, cfg Config) *Relay {
	ctx, cancel := context.WithCancel(ctx)
	self := &Relay{
		Loop:   NewLoop(source, fwd, cfg.SignalMax, log),
		alive:  alive.NewAlive(),
		cancel: cancel,
		log:    log,
	}
	self.alive.Add(1)
	go self.run(ctx)
	return self
}

func (self *Relay) run(ctx context.Context) {
	defer self.alive.Done()
	err := self.Loop.Run(ctx, self.alive)
	if err != nil {
		self.log.Errorf("relay fatal err=%v", errors.ErrorStack(err))
		self.err.StoreOnce(err)
	}
	// fatal exit or ctx done, make Done() observable
	self.alive.Stop()
}

// Stop requests loop exit, waits for it and returns fatal error if any.
// Safe to call many times and concurrently, every call returns same result.
func (self *Relay) Stop() error {
	if atomic.CompareAndSwapUint32(&self.Loop.state, uint32(StateRunning), uint32(StateStopping)) {
		self.log.Debugf("relay stop requested")
	}
	self.alive.Stop()
	self.alive.Wait()
	self.cancel()
	return self.Err()
}

// Done is closed after loop exited, either by Stop or fatal error.
func (self *Relay) Done() <-chan struct{} { return self.alive.WaitChan() }

func (self *Relay) Err() error {
	err, _ := self.err.Load()
	return err
}

func (self *Relay) Stats() Stats { return self.Loop.Stats() }
