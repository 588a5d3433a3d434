// Package app wires configuration, storage, clients, and services into a
// single application core.
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/foliodash/folio/internal/calendar"
	"github.com/foliodash/folio/internal/clients/polygon"
	"github.com/foliodash/folio/internal/common"
	"github.com/foliodash/folio/internal/interfaces"
	"github.com/foliodash/folio/internal/services/market"
	"github.com/foliodash/folio/internal/storage/marketfs"
)

// App holds all initialized services, clients, and storage.
type App struct {
	Config        *common.Config
	Logger        *common.Logger
	Store         interfaces.SnapshotStore
	MarketClient  interfaces.MarketDataClient
	Calendar      *calendar.Calendar
	MarketService interfaces.MarketService
	StartupTime   time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes storage, clients, and services.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	// Get binary directory for self-contained operation
	binDir := getBinaryDir()

	// Load configuration - check provided path, FOLIO_CONFIG, then binary dir, then fallback
	if configPath == "" {
		configPath = os.Getenv("FOLIO_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "folio.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/folio.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative storage path to binary directory
	if config.Storage.Market.Path != "" && !filepath.IsAbs(config.Storage.Market.Path) {
		config.Storage.Market.Path = filepath.Join(binDir, config.Storage.Market.Path)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	store, err := marketfs.NewStore(logger, config.Storage.Market.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize snapshot store: %w", err)
	}

	apiKey := config.Clients.Polygon.APIKey
	if apiKey == "" {
		logger.Warn().Msg("Polygon API key not configured - price fetches will fail and fall back to simulation")
	}

	client := polygon.NewClient(apiKey,
		polygon.WithBaseURL(config.Clients.Polygon.BaseURL),
		polygon.WithLogger(logger),
		polygon.WithRateLimit(config.Clients.Polygon.RateLimit),
		polygon.WithTimeout(config.Clients.Polygon.GetTimeout()),
	)

	cal := calendar.New(config.Calendar)
	marketService := market.NewService(client, cal, store, logger)

	a := &App{
		Config:        config,
		Logger:        logger,
		Store:         store,
		MarketClient:  client,
		Calendar:      cal,
		MarketService: marketService,
		StartupTime:   startupStart,
	}

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")

	return a, nil
}

// Close releases all resources held by the App.
func (a *App) Close() {
	if a.Store != nil {
		a.Store.Close()
		a.Store = nil
	}
}
