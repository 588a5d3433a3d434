package market

import (
	"context"
	"fmt"
	"strings"

	"github.com/foliodash/folio/internal/models"
)

// ResolvePrice returns the latest close for a symbol.
//
// The current snapshot is consulted first; a hit costs zero network calls.
// On a miss a single-bar fetch is issued for the snapshot's trading day and
// the result is inserted into the live snapshot, so subsequent lookups for
// the same symbol and day hit the cache. Surfaces models.ErrMarketClosed
// when the upstream reports the date had no equity session, and
// models.ErrPriceUnavailable for everything else. Neither is retried here —
// the caller decides whether to fall back to simulation.
func (s *Service) ResolvePrice(ctx context.Context, symbol string, class models.AssetClass) (float64, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return 0, fmt.Errorf("empty symbol: %w", models.ErrPriceUnavailable)
	}

	snapshot, err := s.GetSnapshot(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", symbol, models.ErrPriceUnavailable)
	}

	s.mu.Lock()
	quote, ok := snapshot.QuoteMap(class)[symbol]
	s.mu.Unlock()
	if ok {
		return quote.Close, nil
	}

	bar, err := s.client.GetDailyBar(ctx, pairTicker(symbol, class), snapshot.Date)
	if err != nil {
		if models.IsMarketClosed(err) && class == models.AssetStocks {
			s.logger.Debug().Str("symbol", symbol).Str("date", snapshot.Date).Msg("Market closed for single-bar fetch")
			return 0, fmt.Errorf("%s on %s: %w", symbol, snapshot.Date, models.ErrMarketClosed)
		}
		s.logger.Debug().Str("symbol", symbol).Err(err).Msg("Single-bar fetch failed")
		return 0, fmt.Errorf("%s: %w", symbol, models.ErrPriceUnavailable)
	}

	resolved := *bar
	resolved.Symbol = symbol

	s.mu.Lock()
	snapshot.QuoteMap(class)[symbol] = resolved
	s.mu.Unlock()

	return resolved.Close, nil
}

// pairTicker maps a symbol to the upstream ticker convention: equities pass
// through, crypto becomes the USD pair ("BTC" -> "X:BTCUSD").
func pairTicker(symbol string, class models.AssetClass) string {
	if class == models.AssetCrypto {
		return "X:" + symbol + "USD"
	}
	return symbol
}
