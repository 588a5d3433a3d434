package interfaces

import (
	"context"

	"github.com/foliodash/folio/internal/models"
)

// MarketService provides trading-day keyed market data with caching,
// per-symbol price resolution, and batch price enrichment.
type MarketService interface {
	// GetSnapshot returns the snapshot for the current trading day, fetching
	// grouped data on a cache miss. It always returns a usable (possibly
	// empty) snapshot; callers treat an empty stock map as "no data", not as
	// an error. The error return exists for the interface's consumers — the
	// cache implementation absorbs upstream failures.
	GetSnapshot(ctx context.Context) (*models.MarketSnapshot, error)

	// ResolvePrice returns the latest close for a symbol, consulting the
	// snapshot first and falling back to a single-bar upstream fetch.
	// Surfaces models.ErrMarketClosed and models.ErrPriceUnavailable.
	ResolvePrice(ctx context.Context, symbol string, class models.AssetClass) (float64, error)

	// EnrichWithPrices resolves prices for a bounded prefix of candidates,
	// substituting simulated prices for failures. Never fails; candidates
	// beyond the prefix keep the models.PriceUnknown sentinel.
	EnrichWithPrices(ctx context.Context, candidates []models.SymbolCandidate, class models.AssetClass) []models.SymbolCandidate
}
