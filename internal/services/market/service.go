// Package market provides the trading-day keyed market data cache with
// per-symbol price resolution and batch enrichment.
package market

import (
	"context"
	"sync"
	"time"

	"github.com/foliodash/folio/internal/calendar"
	"github.com/foliodash/folio/internal/common"
	"github.com/foliodash/folio/internal/interfaces"
	"github.com/foliodash/folio/internal/models"
)

// Service holds the current market snapshot and the collaborators needed to
// refresh it. Constructed once per process and injected into its consumers —
// never a hidden package-level singleton.
type Service struct {
	client interfaces.MarketDataClient
	cal    *calendar.Calendar
	store  interfaces.SnapshotStore // optional; nil disables persistence
	logger *common.Logger
	now    func() time.Time // injectable clock for testing

	mu       sync.Mutex
	snapshot *models.MarketSnapshot
}

// NewService creates a new market data service.
// store may be nil — snapshots will not survive restarts.
func NewService(client interfaces.MarketDataClient, cal *calendar.Calendar, store interfaces.SnapshotStore, logger *common.Logger) *Service {
	return &Service{
		client: client,
		cal:    cal,
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// GetSnapshot returns the snapshot for the current trading day.
//
// A snapshot already held for that day is a pure cache hit: non-empty stock
// data and closed-market days both count (a closed day is cached so repeated
// calls within the day don't re-issue the grouped request). On a miss the
// store is consulted first, then the upstream grouped endpoint, retrying
// once against the configured fallback date. Transient upstream failures are
// absorbed: the caller always receives a usable snapshot, possibly with an
// empty stock map meaning "no data".
func (s *Service) GetSnapshot(ctx context.Context) (*models.MarketSnapshot, error) {
	date := s.cal.ResolveTradingDate(s.now())

	s.mu.Lock()
	if cached := s.snapshot; cached != nil && cached.Date == date && (len(cached.Stocks) > 0 || cached.Closed) {
		s.mu.Unlock()
		return cached, nil
	}
	s.mu.Unlock()

	// Warm start: a snapshot persisted earlier in the same trading day
	// avoids the grouped fetch entirely.
	if s.store != nil {
		if stored, err := s.store.GetSnapshot(ctx, date); err == nil && (len(stored.Stocks) > 0 || stored.Closed) {
			s.logger.Info().
				Str("date", date).
				Int("stocks", len(stored.Stocks)).
				Msg("Market snapshot warm-started from store")
			s.install(stored)
			return stored, nil
		}
	}

	// Explicit finite fallback chain: the resolved day, then the configured
	// last-known-good day.
	dates := []string{date}
	if fallback := s.cal.FallbackDate(); fallback != date {
		dates = append(dates, fallback)
	}

	for _, d := range dates {
		quotes, err := s.client.GetGroupedDaily(ctx, d)
		if err == nil {
			snapshot := buildSnapshot(d, quotes, s.now())
			s.logger.Info().
				Str("date", d).
				Int("stocks", len(snapshot.Stocks)).
				Msg("Market snapshot fetched")
			s.install(snapshot)
			s.persist(ctx, snapshot)
			return snapshot, nil
		}

		if models.IsMarketClosed(err) {
			// Expected, not exceptional: cache the empty day so same-day
			// calls stay off the network.
			snapshot := models.NewMarketSnapshot(d)
			snapshot.Closed = true
			snapshot.FetchedAt = s.now()
			s.logger.Info().Str("date", d).Msg("Market closed for date, caching empty snapshot")
			s.install(snapshot)
			s.persist(ctx, snapshot)
			return snapshot, nil
		}

		s.logger.Warn().Str("date", d).Err(err).Msg("Grouped daily fetch failed")
	}

	// Every fetch failed. Hand back an empty snapshot for the fallback date
	// without installing it, so the next call retries the chain.
	return models.NewMarketSnapshot(dates[len(dates)-1]), nil
}

// buildSnapshot assembles a fresh snapshot from grouped quotes. Both maps
// start empty for the new day — crypto quotes from a previous day describe a
// previous day and are not carried forward.
func buildSnapshot(date string, quotes []models.Quote, fetchedAt time.Time) *models.MarketSnapshot {
	snapshot := models.NewMarketSnapshot(date)
	snapshot.FetchedAt = fetchedAt
	for _, q := range quotes {
		snapshot.Stocks[q.Symbol] = q
	}
	return snapshot
}

// install replaces the current snapshot.
func (s *Service) install(snapshot *models.MarketSnapshot) {
	s.mu.Lock()
	s.snapshot = snapshot
	s.mu.Unlock()
}

// persist writes the snapshot through to the store, if configured.
func (s *Service) persist(ctx context.Context, snapshot *models.MarketSnapshot) {
	if s.store == nil {
		return
	}
	if err := s.store.SaveSnapshot(ctx, snapshot); err != nil {
		s.logger.Warn().Str("date", snapshot.Date).Err(err).Msg("Failed to persist snapshot")
	}
}

// Ensure Service implements MarketService
var _ interfaces.MarketService = (*Service)(nil)
