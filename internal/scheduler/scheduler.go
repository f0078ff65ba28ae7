// Package scheduler wires up the cron job that periodically expires
// published offers whose application deadline has passed.
package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
)

// OfferExpirer is the slice of the workflow the scheduler drives.
type OfferExpirer interface {
	ExpireDueOffers(ctx context.Context) (int, error)
}

// Scheduler wraps robfig/cron and manages the expiry loop.
type Scheduler struct {
	cron    *cron.Cron
	expirer OfferExpirer
	spec    string // cron spec, e.g. "@every 60m"
}

// New creates a Scheduler that fires every intervalMinutes minutes.
func New(expirer OfferExpirer, intervalMinutes int) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithLogger(cron.DefaultLogger)),
		expirer: expirer,
		spec:    fmt.Sprintf("@every %dm", intervalMinutes),
	}
}

// Start registers the job and starts the scheduler. Also runs one pass
// immediately so offers that went stale while the service was down are
// expired without waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.RunOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	log.Printf("[scheduler] Cron started — spec: %s", s.spec)

	// Run immediately on startup (non-blocking)
	go s.RunOnce(ctx)

	return nil
}

// Stop gracefully shuts down the scheduler. Any expiry already committed
// stays committed; a pass cut short resumes on the next start.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[scheduler] Cron stopped")
}

// RunOnce performs a single expiry pass. Safe to run concurrently with live
// transitions and with itself: every individual expiry is a status-guarded,
// independently committed write.
func (s *Scheduler) RunOnce(ctx context.Context) {
	expired, err := s.expirer.ExpireDueOffers(ctx)
	if err != nil {
		log.Printf("[scheduler] Expiry pass error: %v", err)
		return
	}
	if expired > 0 {
		log.Printf("[scheduler] Expired %d offer(s)", expired)
	}
}
