package scheduler

import (
	"context"
	"log"
	"time"
)

// Sweeper is the minimal interface the scheduler needs from a session store.
// Any type implementing DeleteExpired(context.Context,time.Time) (int,error)
// can be passed.
type Sweeper interface {
	// DeleteExpired removes sessions idle past their timeout.
	// Returns the number of sessions removed and an error if any.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// Scheduler periodically runs a Sweeper's DeleteExpired method.
type Scheduler struct {
	interval time.Duration
	sweeper  Sweeper

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewScheduler constructs a scheduler that runs sweeper.DeleteExpired every `interval`.
// If interval <= 0 it defaults to 1 minute.
func NewScheduler(interval time.Duration, sweeper Sweeper) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{
		interval: interval,
		sweeper:  sweeper,
		done:     make(chan struct{}),
	}
}

// Start begins the scheduler loop in a background goroutine.
// parentCtx is used as the parent for internal contexts; calling Start multiple times has no effect.
func (s *Scheduler) Start(parentCtx context.Context) {
	if s.ctx != nil {
		// already started
		return
	}
	ctx, cancel := context.WithCancel(parentCtx)
	s.ctx = ctx
	s.cancel = cancel

	go s.loop()
}

// loop runs the periodic sweep until cancelled.
func (s *Scheduler) loop() {
	ticker := time.NewTicker(s.interval)
	defer func() {
		ticker.Stop()
		close(s.done)
	}()

	log.Printf("[scheduler] started with interval %s\n", s.interval)
	for {
		select {
		case <-s.ctx.Done():
			log.Println("[scheduler] context cancelled; stopping")
			return
		case <-ticker.C:
			// run DeleteExpired with a bounded timeout
			runCtx, cancel := context.WithTimeout(s.ctx, 30*time.Second)
			func() {
				defer cancel()
				removed, err := s.sweeper.DeleteExpired(runCtx, time.Now())
				if err != nil {
					log.Printf("[scheduler] DeleteExpired error: %v", err)
					return
				}
				if removed > 0 {
					log.Printf("[scheduler] swept %d expired sessions", removed)
				}
			}()
		}
	}
}

// Stop cancels the scheduler and waits for the loop to finish. It is idempotent.
func (s *Scheduler) Stop() {
	if s.cancel == nil {
		// not started
		return
	}
	// cancel and wait for done
	s.cancel()
	<-s.done
	// reset for potential restart
	s.ctx = nil
	s.cancel = nil
	s.done = make(chan struct{})
	log.Println("[scheduler] stopped")
}
