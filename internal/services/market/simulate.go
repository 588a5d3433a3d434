package market

import (
	"math/rand"
	"strings"
	"time"

	"github.com/foliodash/folio/internal/models"
)

// stablecoins pegged to the US dollar simulate close to parity.
var stablecoins = map[string]bool{
	"USDT": true,
	"USDC": true,
	"DAI":  true,
	"BUSD": true,
}

// SimulatePrice synthesizes a plausible close for a symbol when real data
// cannot be obtained. Pure aside from its randomness source: no I/O, never
// fails. The result is always tagged Simulated so presentation layers can
// show an "estimated" indicator.
func SimulatePrice(symbol string, class models.AssetClass) models.Quote {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	low, high := simulationBand(symbol, class)

	return models.Quote{
		Symbol:      symbol,
		Close:       low + rand.Float64()*(high-low),
		Simulated:   true,
		RetrievedAt: time.Now(),
	}
}

// simulationBand returns the price range for a symbol's asset class.
func simulationBand(symbol string, class models.AssetClass) (low, high float64) {
	if class != models.AssetCrypto {
		return 10, 500 // generic equities
	}

	switch {
	case symbol == "BTC":
		return 25000, 45000
	case symbol == "ETH":
		return 1500, 3000
	case stablecoins[symbol]:
		return 0.95, 1.05
	default:
		return 0.10, 100
	}
}
