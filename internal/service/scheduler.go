package service

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Hussein-Mazeh/guardvault/internal/session"
)

// Scheduler drives the two periodic tasks of an open vault: refreshing the
// displayed codes and checking for inactivity.
type Scheduler struct {
	svc *Service

	// RefreshInterval and PollInterval default to one second and
	// session.DefaultPollInterval.
	RefreshInterval time.Duration
	PollInterval    time.Duration

	// OnRefresh receives fresh codes while the session is unlocked. It is
	// never called while locked.
	OnRefresh func([]CodeView)
	// OnLocked is called when a poll locks the session.
	OnLocked func()
}

// NewScheduler returns a scheduler for svc with default intervals.
func NewScheduler(svc *Service) *Scheduler {
	return &Scheduler{
		svc:             svc,
		RefreshInterval: time.Second,
		PollInterval:    session.DefaultPollInterval,
	}
}

// Run blocks until ctx is cancelled, running both tasks on their own tickers.
// Neither task counts as user activity.
func (sc *Scheduler) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return every(ctx, sc.refreshInterval(), sc.refresh)
	})
	g.Go(func() error {
		return every(ctx, sc.pollInterval(), sc.poll)
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

func (sc *Scheduler) refresh() {
	if sc.OnRefresh == nil || sc.svc.State() != session.Unlocked {
		return
	}
	codes, err := sc.svc.Codes(sc.svc.now())
	if err != nil {
		// Locked between the check and the read, or a bad secret.
		sc.svc.log.Debug(context.Background(), "code refresh skipped", "error", err)
		return
	}
	sc.OnRefresh(codes)
}

func (sc *Scheduler) poll() {
	if sc.svc.Poll(sc.svc.now()) && sc.OnLocked != nil {
		sc.OnLocked()
	}
}

func (sc *Scheduler) refreshInterval() time.Duration {
	if sc.RefreshInterval <= 0 {
		return time.Second
	}
	return sc.RefreshInterval
}

func (sc *Scheduler) pollInterval() time.Duration {
	if sc.PollInterval <= 0 {
		return session.DefaultPollInterval
	}
	return sc.PollInterval
}

func every(ctx context.Context, d time.Duration, fn func()) error {
	t := time.NewTicker(d)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			fn()
		}
	}
}
