// Package interfaces defines service contracts for folio
package interfaces

import (
	"context"

	"github.com/foliodash/folio/internal/models"
)

// MarketDataClient provides access to the upstream market data source.
// Failures are returned as *models.UpstreamError so callers can branch on
// the failure kind rather than on message text.
type MarketDataClient interface {
	// GetGroupedDaily retrieves one daily bar per symbol for a trading day
	// (YYYY-MM-DD). Symbols in the result are upper-cased.
	GetGroupedDaily(ctx context.Context, date string) ([]models.Quote, error)

	// GetDailyBar retrieves a single symbol's daily bar for a trading day.
	// Crypto symbols use the pair ticker convention ("X:BTCUSD").
	GetDailyBar(ctx context.Context, ticker string, date string) (*models.Quote, error)
}
