package forward

import (
	"context"
	"encoding/json"
	"time"

	"github.com/heatlink/hgi80/helpers"
	"github.com/heatlink/hgi80/internal/telegram"
	"github.com/heatlink/hgi80/log2"
	"github.com/juju/errors"
	"github.com/temoto/alive/v2"
	"github.com/temoto/spq"
)

// Queue decouples the reader from slow sinks.
// Readings are persisted in arrival order and delivered one at a time to next.
type Queue struct {
	alive *alive.Alive
	log   *log2.Log
	next  Forwarder
	q     *spq.Queue
	retry helpers.Backoff
}

// NewQueue opens persistent queue at path, spq.OnlyForTesting keeps it in memory.
func NewQueue(path string, next Forwarder, log *log2.Log) (*Queue, error) {
	if path == "" {
		return nil, errors.NotValidf("queue path empty")
	}
	q, err := spq.Open(path)
	if err != nil {
		return nil, errors.Annotatef(err, "queue open path=%s", path)
	}
	self := &Queue{
		alive: alive.NewAlive(),
		log:   log,
		next:  next,
		q:     q,
		retry: helpers.Backoff{Min: 100 * time.Millisecond, Max: 10 * time.Second, K: 2},
	}
	self.alive.Add(1)
	go self.worker()
	return self, nil
}

func (self *Queue) Forward(ctx context.Context, zt telegram.ZoneTemps) {
	b, err := json.Marshal(zt)
	if err != nil {
		self.log.Errorf("queue encode err=%v", err)
		return
	}
	if err = self.q.Push(b); err != nil {
		self.log.Errorf("queue push err=%v", err)
	}
}

// Close stops worker. Undelivered readings stay on disk for next Open.
func (self *Queue) Close() error {
	self.alive.Stop()
	err := self.q.Close()
	self.alive.Wait()
	return errors.Annotate(err, "queue close")
}

func (self *Queue) worker() {
	defer self.alive.Done()
	ctx := context.Background()
	for self.alive.IsRunning() {
		box, err := self.q.Peek()
		switch errors.Cause(err) {
		case nil:
			self.retry.Reset()
			self.handle(ctx, box.Bytes())
			if err = self.q.Delete(box); err != nil {
				self.log.Errorf("queue delete err=%v", err)
			}

		case spq.ErrClosed:
			if self.alive.IsRunning() {
				self.log.Errorf("CRITICAL queue closed unexpectedly")
			}
			return

		default:
			self.log.Errorf("queue peek err=%v", err)
			self.retry.Failure()
			select {
			case <-time.After(self.retry.DelayBefore()):
			case <-self.alive.StopChan():
				return
			}
		}
	}
}

func (self *Queue) handle(ctx context.Context, b []byte) {
	var zt telegram.ZoneTemps
	if err := json.Unmarshal(b, &zt); err != nil {
		self.log.Errorf("queue decode b=%x err=%v", b, err)
		return
	}
	self.next.Forward(ctx, zt)
}
