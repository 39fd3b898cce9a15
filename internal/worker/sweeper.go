package worker

import (
	"context"
	"time"

	"github.com/Abdurahmanit/GroupProject/tender-service/internal/platform/clock"
	"github.com/Abdurahmanit/GroupProject/tender-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/tender-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/tender-service/internal/repository"
	"github.com/Abdurahmanit/GroupProject/tender-service/internal/service"
)

// Sweeper periodically finalizes active listings whose deadline has passed.
// Resolution is idempotent, so a sweep re-visiting a listing that a racing
// bid or another worker already resolved is harmless.
type Sweeper struct {
	tenders  service.TenderService
	listings repository.ListingRepository
	interval time.Duration
	clock    clock.Clock
	metrics  *metrics.Manager
	log      logger.Logger
}

func NewSweeper(
	tenders service.TenderService,
	listings repository.ListingRepository,
	interval time.Duration,
	clk clock.Clock,
	m *metrics.Manager,
	log logger.Logger,
) *Sweeper {
	return &Sweeper{
		tenders:  tenders,
		listings: listings,
		interval: interval,
		clock:    clk,
		metrics:  m,
		log:      log,
	}
}

// Run blocks until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	s.log.Infof("Expiry sweeper started, interval %s", s.interval)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Expiry sweeper stopped")
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce resolves every currently expired active listing. Per-listing
// failures are logged and skipped; the next sweep retries them.
func (s *Sweeper) SweepOnce(ctx context.Context) {
	start := time.Now()

	expired, err := s.listings.FindExpired(ctx, s.clock.Now())
	if err != nil {
		s.log.Errorf("Sweep: failed to list expired listings: %v", err)
		return
	}

	for _, listing := range expired {
		if err := s.tenders.ResolveExpiry(ctx, listing.ID); err != nil {
			s.log.Warnf("Sweep: failed to resolve listing %s: %v", listing.ID, err)
		}
	}

	s.metrics.SweepDurationSeconds.Observe(time.Since(start).Seconds())
	if len(expired) > 0 {
		s.log.Infof("Sweep processed %d expired listings", len(expired))
	}
}
