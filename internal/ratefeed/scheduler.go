package ratefeed

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/divisando/divisando-backend/internal/core/domain"
	portsrepo "github.com/divisando/divisando-backend/internal/core/ports/repositories"
)

// catalogKeyword in the configured currency list means "ingest every currency
// the catalog knows" instead of a fixed set.
const catalogKeyword = "ALL"

// Scheduler runs ingestion cycles on a ticker and on demand. It owns the
// single running flag: at most one cycle executes at a time, and a trigger
// while one is in flight is a no-op.
type Scheduler struct {
	fetcher     *Fetcher
	rateRepo    portsrepo.ExchangeRateRepository
	catalogRepo portsrepo.CurrencyCatalogRepository

	currencies []string
	interval   time.Duration
	logger     *slog.Logger

	running  atomic.Bool
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewScheduler creates a Scheduler. currencies is the configured ingestion
// list; empty falls back to the default set and the single entry "ALL"
// resolves against the catalog each cycle.
func NewScheduler(
	fetcher *Fetcher,
	rateRepo portsrepo.ExchangeRateRepository,
	catalogRepo portsrepo.CurrencyCatalogRepository,
	currencies []string,
	interval time.Duration,
	logger *slog.Logger,
) *Scheduler {
	return &Scheduler{
		fetcher:     fetcher,
		rateRepo:    rateRepo,
		catalogRepo: catalogRepo,
		currencies:  currencies,
		interval:    interval,
		logger:      logger,
		stopChan:    make(chan struct{}),
	}
}

// Start launches the ticker loop. An initial cycle runs immediately so a
// fresh deployment has data before the first tick.
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		s.runCycle(context.Background())

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.runCycle(context.Background())
			case <-s.stopChan:
				return
			}
		}
	}()
	s.logger.Info("rate ingestion scheduler started", slog.Duration("interval", s.interval))
}

// Stop halts the ticker loop and waits for it to exit. A cycle already in
// flight finishes on its own.
func (s *Scheduler) Stop() {
	close(s.stopChan)
	s.wg.Wait()
	s.logger.Info("rate ingestion scheduler stopped")
}

// TriggerRefresh starts a cycle in the background unless one is already
// running. It reports whether a new cycle was started.
func (s *Scheduler) TriggerRefresh(ctx context.Context) bool {
	if !s.running.CompareAndSwap(false, true) {
		return false
	}
	go func() {
		defer s.running.Store(false)
		s.cycle(context.Background())
	}()
	return true
}

// runCycle claims the running flag and executes one cycle synchronously.
func (s *Scheduler) runCycle(ctx context.Context) bool {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Info("skipping ingestion cycle, previous cycle still running")
		return false
	}
	defer s.running.Store(false)
	s.cycle(ctx)
	return true
}

// cycle ingests every resolved currency, then rebuilds the catalog. A 429
// from the provider aborts the rest of the cycle, including the catalog
// rebuild, so a half-ingested cycle never shrinks the catalog.
func (s *Scheduler) cycle(ctx context.Context) {
	started := time.Now()
	currencies := s.resolveCurrencies(ctx)

	var stored, skipped, failed int
	for _, currency := range currencies {
		outcome, err := s.fetcher.FetchForCurrency(ctx, currency)
		switch outcome {
		case OutcomeStored:
			stored++
		case OutcomeSkipped:
			skipped++
		case OutcomeRateLimited:
			s.logger.Warn("provider rate limit hit, aborting ingestion cycle",
				slog.String("currency", currency), slog.String("error", err.Error()))
			return
		case OutcomeFailed:
			failed++
			s.logger.Error("failed to ingest currency",
				slog.String("currency", currency), slog.String("error", err.Error()))
		}
	}

	s.rebuildCatalog(ctx)

	s.logger.Info("ingestion cycle finished",
		slog.Int("stored", stored),
		slog.Int("skipped", skipped),
		slog.Int("failed", failed),
		slog.Duration("took", time.Since(started)))
}

// resolveCurrencies decides what to ingest this cycle.
func (s *Scheduler) resolveCurrencies(ctx context.Context) []string {
	if len(s.currencies) == 1 && strings.EqualFold(s.currencies[0], catalogKeyword) {
		catalog, err := s.catalogRepo.GetCatalog(ctx)
		if err != nil || len(catalog.Currencies) == 0 {
			return domain.DefaultCurrencies
		}
		return catalog.Currencies
	}
	if len(s.currencies) == 0 {
		return domain.DefaultCurrencies
	}
	return s.currencies
}

// rebuildCatalog rederives the catalog from the distinct base currencies
// actually present in the store.
func (s *Scheduler) rebuildCatalog(ctx context.Context) {
	currencies, err := s.rateRepo.DistinctBaseCurrencies(ctx)
	if err != nil {
		s.logger.Error("failed to derive currency catalog", slog.String("error", err.Error()))
		return
	}
	if len(currencies) == 0 {
		return
	}
	if err := s.catalogRepo.ReplaceCatalog(ctx, currencies, time.Now()); err != nil {
		s.logger.Error("failed to store currency catalog", slog.String("error", err.Error()))
	}
}
