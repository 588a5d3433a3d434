package interfaces

import (
	"context"

	"github.com/foliodash/folio/internal/models"
)

// SnapshotStore persists market snapshots keyed by trading day, giving the
// cache a warm start across process restarts.
type SnapshotStore interface {
	// GetSnapshot loads the stored snapshot for a trading day (YYYY-MM-DD).
	GetSnapshot(ctx context.Context, date string) (*models.MarketSnapshot, error)

	// SaveSnapshot stores a snapshot under its trading day.
	SaveSnapshot(ctx context.Context, snapshot *models.MarketSnapshot) error

	// ListDates returns the trading days with stored snapshots.
	ListDates(ctx context.Context) ([]string, error)

	// Close releases any held resources.
	Close() error
}
