// Package polygon provides a client for the Polygon market data API
package polygon

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/foliodash/folio/internal/common"
	"github.com/foliodash/folio/internal/interfaces"
	"github.com/foliodash/folio/internal/models"
)

const (
	DefaultBaseURL   = "https://api.polygon.io"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per second
)

// closedMarketMarkers are the message fragments the upstream uses to signal
// that a date simply has no trading data. Matched once here, at the
// boundary, so everything above this package branches on models.FailureKind.
var closedMarketMarkers = []string{"no data", "holiday", "weekend", "not open"}

// Client implements the MarketDataClient interface
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new Polygon client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// containsClosedMarker reports whether an upstream message carries one of
// the market-closure fragments, case-insensitively.
func containsClosedMarker(msg string) bool {
	lower := strings.ToLower(msg)
	for _, marker := range closedMarketMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// get performs a rate-limited GET request and classifies failures.
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("apiKey", c.apiKey)

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("url", c.baseURL+path).Msg("Polygon API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &models.UpstreamError{
			Kind:     models.FailureNetwork,
			Message:  err.Error(),
			Endpoint: path,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		kind := models.FailureNetwork
		if resp.StatusCode == http.StatusTooManyRequests {
			kind = models.FailureRateLimited
		} else if containsClosedMarker(string(body)) {
			kind = models.FailureMarketClosed
		}
		return &models.UpstreamError{
			Kind:       kind,
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return &models.UpstreamError{
			Kind:       models.FailureParse,
			StatusCode: resp.StatusCode,
			Message:    err.Error(),
			Endpoint:   path,
		}
	}

	return nil
}

// groupedBar represents one symbol's bar in the grouped daily response
type groupedBar struct {
	Ticker       string  `json:"T"`
	Close        float64 `json:"c"`
	Open         float64 `json:"o"`
	High         float64 `json:"h"`
	Low          float64 `json:"l"`
	Volume       float64 `json:"v"`
	VWAP         float64 `json:"vw"`
	Transactions int64   `json:"n"`
}

// groupedResponse represents the grouped daily aggregates response
type groupedResponse struct {
	Status       string       `json:"status"`
	QueryCount   int          `json:"queryCount"`
	ResultsCount int          `json:"resultsCount"`
	Results      []groupedBar `json:"results"`
	Error        string       `json:"error,omitempty"`
	Message      string       `json:"message,omitempty"`
}

// GetGroupedDaily retrieves one daily bar per stock symbol for a trading day.
func (c *Client) GetGroupedDaily(ctx context.Context, date string) ([]models.Quote, error) {
	path := fmt.Sprintf("/v2/aggs/grouped/locale/us/market/stocks/%s", date)

	params := url.Values{}
	params.Set("adjusted", "true")

	var resp groupedResponse
	if err := c.get(ctx, path, params, &resp); err != nil {
		return nil, err
	}

	if !strings.EqualFold(resp.Status, "OK") {
		kind := models.FailureNetwork
		msg := resp.Error
		if msg == "" {
			msg = resp.Message
		}
		if containsClosedMarker(msg) || containsClosedMarker(resp.Status) {
			kind = models.FailureMarketClosed
		}
		return nil, &models.UpstreamError{
			Kind:       kind,
			StatusCode: http.StatusOK,
			Message:    fmt.Sprintf("status %s: %s", resp.Status, msg),
			Endpoint:   path,
		}
	}

	if resp.ResultsCount == 0 || len(resp.Results) == 0 {
		return nil, &models.UpstreamError{
			Kind:       models.FailureMarketClosed,
			StatusCode: http.StatusOK,
			Message:    "no data for date " + date,
			Endpoint:   path,
		}
	}

	now := time.Now()
	quotes := make([]models.Quote, 0, len(resp.Results))
	for _, bar := range resp.Results {
		quotes = append(quotes, models.Quote{
			Symbol:       strings.ToUpper(bar.Ticker),
			Close:        bar.Close,
			Open:         bar.Open,
			High:         bar.High,
			Low:          bar.Low,
			Volume:       bar.Volume,
			VWAP:         bar.VWAP,
			Transactions: bar.Transactions,
			RetrievedAt:  now,
		})
	}

	c.logger.Debug().Str("date", date).Int("results", len(quotes)).Msg("Polygon grouped daily returned results")

	return quotes, nil
}

// dailyBarResponse represents the single-symbol open-close response
type dailyBarResponse struct {
	Status  string  `json:"status"`
	Symbol  string  `json:"symbol"`
	Open    float64 `json:"open"`
	High    float64 `json:"high"`
	Low     float64 `json:"low"`
	Close   float64 `json:"close"`
	Volume  float64 `json:"volume"`
	Message string  `json:"message,omitempty"`
}

// GetDailyBar retrieves a single symbol's daily bar for a trading day.
// Crypto symbols use the pair ticker convention ("X:BTCUSD").
func (c *Client) GetDailyBar(ctx context.Context, ticker string, date string) (*models.Quote, error) {
	path := fmt.Sprintf("/v1/open-close/%s/%s", url.PathEscape(strings.ToUpper(ticker)), date)

	params := url.Values{}
	params.Set("adjusted", "true")

	var resp dailyBarResponse
	if err := c.get(ctx, path, params, &resp); err != nil {
		return nil, err
	}

	if !strings.EqualFold(resp.Status, "OK") {
		kind := models.FailureNetwork
		if containsClosedMarker(resp.Message) || containsClosedMarker(resp.Status) {
			kind = models.FailureMarketClosed
		}
		return nil, &models.UpstreamError{
			Kind:       kind,
			StatusCode: http.StatusOK,
			Message:    fmt.Sprintf("status %s: %s", resp.Status, resp.Message),
			Endpoint:   path,
		}
	}

	symbol := strings.ToUpper(resp.Symbol)
	if symbol == "" {
		symbol = strings.ToUpper(ticker)
	}

	return &models.Quote{
		Symbol:      symbol,
		Close:       resp.Close,
		Open:        resp.Open,
		High:        resp.High,
		Low:         resp.Low,
		Volume:      resp.Volume,
		RetrievedAt: time.Now(),
	}, nil
}

// Ensure Client implements MarketDataClient
var _ interfaces.MarketDataClient = (*Client)(nil)
