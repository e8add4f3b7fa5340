package sweeper

import (
	"context"
	"time"

	"github.com/go-redsync/redsync/v4"
	"go.uber.org/zap"

	"github.com/votetrack/votetrack/internal/repository"
	"github.com/votetrack/votetrack/internal/service"
)

const lockName = "votetrack:sweep"

// Locker serializes sweeps across instances. Satisfied by a redsync mutex in
// production and a no-op in tests.
type Locker interface {
	Lock() error
	Unlock() (bool, error)
}

// Sweeper periodically recomputes every poll's active flag from the clock.
// It owns the scheduled side of the lifecycle: polls crossing their start
// boundary come alive, polls crossing their expiration go dark. Failures are
// logged and swallowed; there is no caller to report to.
type Sweeper struct {
	polls    repository.PollRepository
	newLock  func() Locker
	interval time.Duration
	log      *zap.Logger
}

func New(polls repository.PollRepository, rs *redsync.Redsync, interval time.Duration, log *zap.Logger) *Sweeper {
	return &Sweeper{
		polls: polls,
		newLock: func() Locker {
			return rs.NewMutex(lockName,
				redsync.WithExpiry(30*time.Second),
				redsync.WithTries(1))
		},
		interval: interval,
		log:      log,
	}
}

// NewWithLocker constructs a sweeper with a custom lock factory.
func NewWithLocker(polls repository.PollRepository, newLock func() Locker, interval time.Duration, log *zap.Logger) *Sweeper {
	return &Sweeper{polls: polls, newLock: newLock, interval: interval, log: log}
}

// Run ticks until the context is cancelled. Intended to be started as a
// goroutine from main; it never blocks request handling.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info("activation sweeper started", zap.Duration("interval", s.interval))
	for {
		select {
		case <-ctx.Done():
			s.log.Info("activation sweeper stopped")
			return
		case <-ticker.C:
			s.sweepWithLock(ctx)
		}
	}
}

func (s *Sweeper) sweepWithLock(ctx context.Context) {
	lock := s.newLock()
	if err := lock.Lock(); err != nil {
		// Another instance holds the sweep; skip this tick.
		s.log.Debug("sweep lock not acquired", zap.Error(err))
		return
	}
	defer func() {
		if _, err := lock.Unlock(); err != nil {
			s.log.Warn("sweep lock release failed", zap.Error(err))
		}
	}()

	s.Sweep(ctx, time.Now())
}

// Sweep runs the two activation batches for the given instant. Idempotent:
// a second run with the same now changes nothing. A failure in one batch
// does not abort the other.
func (s *Sweeper) Sweep(ctx context.Context, now time.Time) {
	polls, err := s.polls.All(ctx)
	if err != nil {
		s.log.Error("sweep: listing polls failed", zap.Error(err))
		return
	}

	// Batch 1: activate polls whose window has opened.
	activated := 0
	for i := range polls {
		poll := &polls[i]
		if !poll.Active && service.ComputeActiveState(poll.StartDate, poll.ExpirationDate, now) {
			if err := s.setActive(ctx, poll.ID, true); err != nil {
				s.log.Error("sweep: activating poll failed",
					zap.String("poll_id", poll.ID), zap.Error(err))
				continue
			}
			activated++
		}
	}

	// Batch 2: deactivate polls whose window has closed.
	deactivated := 0
	for i := range polls {
		poll := &polls[i]
		if poll.Active && !service.ComputeActiveState(poll.StartDate, poll.ExpirationDate, now) {
			if err := s.setActive(ctx, poll.ID, false); err != nil {
				s.log.Error("sweep: deactivating poll failed",
					zap.String("poll_id", poll.ID), zap.Error(err))
				continue
			}
			deactivated++
		}
	}

	if activated > 0 || deactivated > 0 {
		s.log.Info("active status updated",
			zap.Int("activated", activated),
			zap.Int("deactivated", deactivated))
	}
}

// setActive re-fetches the document before saving so the flip never writes
// back a stale snapshot taken at list time.
func (s *Sweeper) setActive(ctx context.Context, pollID string, active bool) error {
	poll, err := s.polls.Get(ctx, pollID)
	if err != nil {
		return err
	}
	poll.Active = active
	return s.polls.Save(ctx, poll)
}
