package market

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/foliodash/folio/internal/models"
)

const (
	// maxBatchResolve bounds how many candidates a single batch actively
	// prices. The rest keep the unpriced sentinel — the upstream free tier
	// tolerates very few requests per minute.
	maxBatchResolve = 5

	// staggerDelay spaces out the dispatch of concurrent single-bar
	// fetches within a batch.
	staggerDelay = 100 * time.Millisecond
)

// EnrichWithPrices resolves prices for the first maxBatchResolve candidates.
//
// Cached symbols are priced synchronously with no network calls. The
// remaining prefix symbols are fetched concurrently, each dispatch delayed
// by its index times staggerDelay to spread load. Any per-symbol failure is
// replaced with a simulated price; if the snapshot itself cannot be
// obtained, the whole prefix is simulated. This method never fails — the UI
// is never blocked by upstream unavailability. Candidates beyond the prefix
// are returned with models.PriceUnknown.
func (s *Service) EnrichWithPrices(ctx context.Context, candidates []models.SymbolCandidate, class models.AssetClass) []models.SymbolCandidate {
	enriched := make([]models.SymbolCandidate, len(candidates))
	copy(enriched, candidates)

	limit := len(enriched)
	if limit > maxBatchResolve {
		limit = maxBatchResolve
	}
	for i := limit; i < len(enriched); i++ {
		enriched[i].Price = models.PriceUnknown
		enriched[i].Simulated = false
	}
	if limit == 0 {
		return enriched
	}

	snapshot, err := s.GetSnapshot(ctx)
	if err != nil || snapshot == nil {
		s.logger.Warn().Err(err).Msg("Snapshot unavailable for batch enrichment, simulating all prices")
		for i := 0; i < limit; i++ {
			simulateCandidate(&enriched[i], class)
		}
		return enriched
	}

	var misses []int
	s.mu.Lock()
	quotes := snapshot.QuoteMap(class)
	for i := 0; i < limit; i++ {
		symbol := strings.ToUpper(strings.TrimSpace(enriched[i].Symbol))
		if quote, ok := quotes[symbol]; ok {
			enriched[i].Price = quote.Close
			enriched[i].Simulated = quote.Simulated
		} else {
			misses = append(misses, i)
		}
	}
	s.mu.Unlock()

	var wg sync.WaitGroup
	for n, idx := range misses {
		wg.Add(1)
		go func(n, idx int) {
			defer wg.Done()

			select {
			case <-time.After(time.Duration(n) * staggerDelay):
			case <-ctx.Done():
			}

			price, err := s.ResolvePrice(ctx, enriched[idx].Symbol, class)
			if err != nil {
				s.logger.Debug().Str("symbol", enriched[idx].Symbol).Err(err).Msg("Batch price fetch failed, simulating")
				simulateCandidate(&enriched[idx], class)
				return
			}
			enriched[idx].Price = price
			enriched[idx].Simulated = false
		}(n, idx)
	}
	wg.Wait()

	return enriched
}

// simulateCandidate assigns a simulated price in place.
func simulateCandidate(c *models.SymbolCandidate, class models.AssetClass) {
	quote := SimulatePrice(c.Symbol, class)
	c.Price = quote.Close
	c.Simulated = true
}
