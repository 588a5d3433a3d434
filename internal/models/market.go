// Package models defines data structures for folio
package models

import (
	"strings"
	"time"
)

// AssetClass identifies which quote map a symbol belongs to.
type AssetClass string

const (
	AssetStocks AssetClass = "stocks"
	AssetCrypto AssetClass = "crypto"
)

// ParseAssetClass normalizes a caller-supplied asset class string,
// defaulting to stocks for anything unrecognized.
func ParseAssetClass(s string) AssetClass {
	if strings.EqualFold(strings.TrimSpace(s), string(AssetCrypto)) {
		return AssetCrypto
	}
	return AssetStocks
}

// PriceUnknown is the sentinel for a candidate whose price has not been
// resolved. Zero is a legal (if degenerate) price and is never used as
// "unknown".
const PriceUnknown = -1

// Quote holds one symbol's daily bar. Immutable once retrieved; change
// figures are derived from close/open, never stored.
type Quote struct {
	Symbol       string    `json:"symbol"`
	Close        float64   `json:"close"`
	Open         float64   `json:"open"`
	High         float64   `json:"high"`
	Low          float64   `json:"low"`
	Volume       float64   `json:"volume,omitempty"`
	VWAP         float64   `json:"vwap,omitempty"`
	Transactions int64     `json:"transactions,omitempty"`
	Simulated    bool      `json:"simulated,omitempty"`
	RetrievedAt  time.Time `json:"retrieved_at,omitempty"`
}

// Change returns the absolute close-over-open move.
func (q Quote) Change() float64 {
	return q.Close - q.Open
}

// ChangePct returns the percentage close-over-open move.
func (q Quote) ChangePct() float64 {
	if q.Open == 0 {
		return 0
	}
	return (q.Close - q.Open) / q.Open * 100
}

// MarketSnapshot is the cached bundle of quotes for one trading day.
// Exactly one snapshot is current at a time; both maps are keyed by
// upper-cased symbol and both are replaced when the resolved day advances.
// Closed marks a day the upstream reported no data for, cached so repeated
// calls within the day don't re-issue the grouped request.
type MarketSnapshot struct {
	Date      string           `json:"date"` // YYYY-MM-DD
	Stocks    map[string]Quote `json:"stocks"`
	Crypto    map[string]Quote `json:"crypto"`
	Closed    bool             `json:"closed,omitempty"`
	FetchedAt time.Time        `json:"fetched_at"`
}

// NewMarketSnapshot returns an empty snapshot for the given trading day.
func NewMarketSnapshot(date string) *MarketSnapshot {
	return &MarketSnapshot{
		Date:   date,
		Stocks: make(map[string]Quote),
		Crypto: make(map[string]Quote),
	}
}

// QuoteMap returns the quote map for the given asset class.
func (s *MarketSnapshot) QuoteMap(class AssetClass) map[string]Quote {
	if class == AssetCrypto {
		return s.Crypto
	}
	return s.Stocks
}

// SymbolCandidate is a search result awaiting price enrichment. Price holds
// PriceUnknown until resolved; Simulated is set exactly when the price came
// from the simulator rather than the cache or a live fetch.
type SymbolCandidate struct {
	Symbol    string  `json:"symbol"`
	Name      string  `json:"name,omitempty"`
	Price     float64 `json:"price"`
	Simulated bool    `json:"simulated,omitempty"`
}

// Priced reports whether the candidate carries a resolved price.
func (c SymbolCandidate) Priced() bool {
	return c.Price != PriceUnknown
}
