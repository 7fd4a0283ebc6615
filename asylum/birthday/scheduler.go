package birthday

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

const runTimeout = 10 * time.Minute

// Runner is the unit of work the scheduler fires once per calendar day.
type Runner interface {
	Run(ctx context.Context, now time.Time)
}

// Scheduler fires its Runner once immediately on Start, then once at every
// local midnight until stopped. Each re-arm recomputes the delay from the
// current wall clock, so the loop self-corrects for slow runs and DST
// instead of drifting by fixed 24h steps.
type Scheduler struct {
	runner Runner
	clock  clockwork.Clock

	stopOnce sync.Once
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewScheduler(runner Runner, clock clockwork.Clock) *Scheduler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Scheduler{
		runner: runner,
		clock:  clock,
		done:   make(chan struct{}),
	}
}

// Start launches the scheduling loop. The initial run is the catch-up for
// the current day; the process may have been down at midnight.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	go func() {
		defer close(s.done)

		s.runOnce(ctx)

		for {
			now := s.clock.Now()
			delay := nextMidnight(now).Sub(now)

			select {
			case <-ctx.Done():
				return
			case <-s.clock.After(delay):
				s.runOnce(ctx)
			}
		}
	}()
}

// Stop cancels the pending timer and waits for an in-flight run to finish.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
		<-s.done
	})
}

func (s *Scheduler) runOnce(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Birthday job panicked",
				slog.String("type", "job"),
				slog.Any("panic", r))
		}
	}()

	runCtx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	s.runner.Run(runCtx, s.clock.Now())
}

// nextMidnight returns the start of the next calendar day in t's location.
func nextMidnight(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day+1, 0, 0, 0, 0, t.Location())
}
