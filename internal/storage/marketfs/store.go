// Package marketfs implements file-based storage for market snapshots,
// keyed by trading day. It gives the in-process cache a warm start across
// restarts: a snapshot fetched this morning survives a redeploy.
package marketfs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/foliodash/folio/internal/common"
	"github.com/foliodash/folio/internal/interfaces"
	"github.com/foliodash/folio/internal/models"
)

// Store provides file-based JSON storage for market snapshots.
type Store struct {
	snapshotDir string
	logger      *common.Logger
}

// NewStore creates a new snapshot file store rooted at path.
func NewStore(logger *common.Logger, path string) (*Store, error) {
	snapshotDir := filepath.Join(path, "snapshots")
	if err := os.MkdirAll(snapshotDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot store path %s: %w", snapshotDir, err)
	}

	logger.Info().Str("path", path).Msg("MarketFS store opened")
	return &Store{
		snapshotDir: snapshotDir,
		logger:      logger,
	}, nil
}

// GetSnapshot loads the stored snapshot for a trading day.
func (s *Store) GetSnapshot(_ context.Context, date string) (*models.MarketSnapshot, error) {
	var snapshot models.MarketSnapshot
	if err := readJSON(s.snapshotDir, date, &snapshot); err != nil {
		return nil, fmt.Errorf("snapshot for '%s' not found", date)
	}
	if snapshot.Stocks == nil {
		snapshot.Stocks = make(map[string]models.Quote)
	}
	if snapshot.Crypto == nil {
		snapshot.Crypto = make(map[string]models.Quote)
	}
	return &snapshot, nil
}

// SaveSnapshot stores a snapshot under its trading day.
func (s *Store) SaveSnapshot(_ context.Context, snapshot *models.MarketSnapshot) error {
	if snapshot == nil || snapshot.Date == "" {
		return fmt.Errorf("snapshot must carry a trading day")
	}
	if err := writeJSON(s.snapshotDir, snapshot.Date, snapshot); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	s.logger.Debug().Str("date", snapshot.Date).Int("stocks", len(snapshot.Stocks)).Msg("Snapshot saved")
	return nil
}

// ListDates returns the trading days with stored snapshots, ascending.
func (s *Store) ListDates(_ context.Context) ([]string, error) {
	keys, err := listKeys(s.snapshotDir)
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}

// Purge removes all stored snapshots and returns the count.
func (s *Store) Purge() int {
	keys, err := listKeys(s.snapshotDir)
	if err != nil {
		return 0
	}
	count := 0
	for _, key := range keys {
		os.Remove(filePath(s.snapshotDir, key))
		count++
	}
	return count
}

// Close is a no-op for file-based storage.
func (s *Store) Close() error {
	return nil
}

// --- helpers ---

func sanitizeKey(key string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "..", "_")
	return r.Replace(key)
}

func filePath(dir, key string) string {
	return filepath.Join(dir, sanitizeKey(key)+".json")
}

func readJSON(dir, key string, dest interface{}) error {
	path := filePath(dir, key)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("'%s' not found", key)
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(data) == 0 {
		return fmt.Errorf("'%s' is empty", key)
	}
	return json.Unmarshal(data, dest)
}

func writeJSON(dir, key string, data interface{}) error {
	target := filePath(dir, key)
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	jsonData = append(jsonData, '\n')

	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(jsonData); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

func listKeys(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}
	var keys []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasSuffix(name, ".json") && !strings.HasPrefix(name, ".tmp-") {
			keys = append(keys, strings.TrimSuffix(name, ".json"))
		}
	}
	return keys, nil
}

// Ensure Store implements SnapshotStore
var _ interfaces.SnapshotStore = (*Store)(nil)
