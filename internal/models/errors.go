package models

import (
	"errors"
	"fmt"
)

// FailureKind classifies an upstream data-source failure at the client
// boundary so services branch on a closed enum, never on message prose.
type FailureKind int

const (
	// FailureMarketClosed: the requested date was a weekend/holiday or the
	// upstream reported no data for it. Expected, not exceptional.
	FailureMarketClosed FailureKind = iota
	// FailureRateLimited: the upstream signalled throttling (HTTP 429).
	FailureRateLimited
	// FailureNetwork: transport-level failure or a non-2xx status.
	FailureNetwork
	// FailureParse: the upstream payload could not be decoded.
	FailureParse
)

// String returns the kind's wire-friendly name.
func (k FailureKind) String() string {
	switch k {
	case FailureMarketClosed:
		return "market_closed"
	case FailureRateLimited:
		return "rate_limited"
	case FailureNetwork:
		return "network"
	case FailureParse:
		return "parse"
	default:
		return "unknown"
	}
}

// UpstreamError is a classified failure from the market data source.
type UpstreamError struct {
	Kind       FailureKind
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s error: %s (status: %d, endpoint: %s)",
		e.Kind, e.Message, e.StatusCode, e.Endpoint)
}

// KindOf extracts the failure kind from an error chain. The second return
// is false when the error carries no upstream classification.
func KindOf(err error) (FailureKind, bool) {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.Kind, true
	}
	return 0, false
}

// IsMarketClosed reports whether err is classified as a closed-market day.
func IsMarketClosed(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind == FailureMarketClosed
}

// Sentinel errors surfaced by price resolution. MarketClosed is expected
// (the date simply has no equity bar); PriceUnavailable merges rate-limit,
// network, and parse failures into "no answer for this symbol".
var (
	ErrMarketClosed     = errors.New("market closed for requested date")
	ErrPriceUnavailable = errors.New("price unavailable")
)
