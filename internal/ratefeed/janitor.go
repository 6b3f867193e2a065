package ratefeed

import (
	"context"
	"log/slog"
	"sync"
	"time"

	portsrepo "github.com/divisando/divisando-backend/internal/core/ports/repositories"
)

// JanitorConfig holds the retention knobs for the periodic sweep.
type JanitorConfig struct {
	Interval             time.Duration
	RateRetention        time.Duration
	UnverifiedUserMaxAge time.Duration
	UnverifiedUserBatch  int
}

// Janitor periodically purges expired verification codes, rate records past
// retention and local accounts that never finished signup.
type Janitor struct {
	cfg      JanitorConfig
	rateRepo portsrepo.ExchangeRateRepository
	codeRepo portsrepo.VerificationCodeRepository
	userRepo portsrepo.UserRepository
	logger   *slog.Logger

	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewJanitor creates a Janitor.
func NewJanitor(
	cfg JanitorConfig,
	rateRepo portsrepo.ExchangeRateRepository,
	codeRepo portsrepo.VerificationCodeRepository,
	userRepo portsrepo.UserRepository,
	logger *slog.Logger,
) *Janitor {
	return &Janitor{
		cfg:      cfg,
		rateRepo: rateRepo,
		codeRepo: codeRepo,
		userRepo: userRepo,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start launches the sweep loop.
func (j *Janitor) Start() {
	j.wg.Add(1)
	go func() {
		defer j.wg.Done()

		ticker := time.NewTicker(j.cfg.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				j.sweep(context.Background())
			case <-j.stopChan:
				return
			}
		}
	}()
	j.logger.Info("janitor started", slog.Duration("interval", j.cfg.Interval))
}

// Stop halts the sweep loop and waits for it to exit.
func (j *Janitor) Stop() {
	close(j.stopChan)
	j.wg.Wait()
	j.logger.Info("janitor stopped")
}

// sweep runs every purge once. Failures are logged and never interrupt the
// other purges.
func (j *Janitor) sweep(ctx context.Context) {
	now := time.Now()

	codes, err := j.codeRepo.DeleteExpired(ctx, now)
	if err != nil {
		j.logger.Error("failed to purge expired verification codes", slog.String("error", err.Error()))
	} else if codes > 0 {
		j.logger.Info("purged expired verification codes", slog.Int64("count", codes))
	}

	records, err := j.rateRepo.DeleteInsertedBefore(ctx, now.Add(-j.cfg.RateRetention))
	if err != nil {
		j.logger.Error("failed to purge rate records past retention", slog.String("error", err.Error()))
	} else if records > 0 {
		j.logger.Info("purged rate records past retention", slog.Int64("count", records))
	}

	users, err := j.userRepo.DeleteStaleUnverified(ctx, now.Add(-j.cfg.UnverifiedUserMaxAge), j.cfg.UnverifiedUserBatch)
	if err != nil {
		j.logger.Error("failed to purge stale unverified accounts", slog.String("error", err.Error()))
	} else if users > 0 {
		j.logger.Info("purged stale unverified accounts", slog.Int64("count", users))
	}
}
