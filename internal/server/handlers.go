package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/foliodash/folio/internal/common"
	"github.com/foliodash/folio/internal/models"
)

// handleHealth handles GET /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleVersion handles GET /api/version.
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}

// handleShutdown handles POST /api/shutdown (dev mode only).
func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if s.app.Config.IsProduction() {
		WriteError(w, http.StatusForbidden, "Shutdown endpoint disabled in production")
		return
	}

	s.logger.Info().Msg("Shutdown requested via HTTP endpoint")

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Shutting down gracefully...\n"))

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	if s.shutdownChan != nil {
		go func() {
			time.Sleep(100 * time.Millisecond)
			s.shutdownChan <- struct{}{}
		}()
	}
}

// handleMarketSnapshot handles GET /api/market/snapshot — the full quote
// snapshot for the current trading day.
func (s *Server) handleMarketSnapshot(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	snapshot, err := s.app.MarketService.GetSnapshot(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "failed to load snapshot: "+err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, snapshot)
}

// handleMarketPrice handles GET /api/market/price?symbol=AAPL&class=stocks.
func (s *Server) handleMarketPrice(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "symbol query parameter is required")
		return
	}

	class := models.ParseAssetClass(r.URL.Query().Get("class"))

	price, err := s.app.MarketService.ResolvePrice(r.Context(), symbol, class)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrMarketClosed):
			WriteErrorWithCode(w, http.StatusNotFound, "market closed for the resolved trading day", "market_closed")
		case errors.Is(err, models.ErrPriceUnavailable):
			WriteErrorWithCode(w, http.StatusNotFound, "price unavailable for "+symbol, "price_unavailable")
		default:
			WriteError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"symbol": symbol,
		"class":  class,
		"price":  price,
	})
}

// handleMarketEnrich handles POST /api/market/enrich — batch price
// enrichment for symbol candidates.
func (s *Server) handleMarketEnrich(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Candidates []models.SymbolCandidate `json:"candidates"`
		Class      string                   `json:"class"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	class := models.ParseAssetClass(req.Class)

	enriched := s.app.MarketService.EnrichWithPrices(r.Context(), req.Candidates, class)
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"candidates": enriched,
	})
}

// handleMarketDates handles GET /api/market/dates — trading days with a
// persisted snapshot.
func (s *Server) handleMarketDates(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	dates := []string{}
	if s.app.Store != nil {
		listed, err := s.app.Store.ListDates(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list snapshot dates: "+err.Error())
			return
		}
		if listed != nil {
			dates = listed
		}
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"dates": dates})
}
