package market

import (
	"context"
	"errors"
	"testing"

	"github.com/foliodash/folio/internal/models"
)

func TestResolvePrice_CacheHitCostsNoNetworkCalls(t *testing.T) {
	client := &mockMarketDataClient{
		groupedFn: groupedOK(models.Quote{Symbol: "AAPL", Close: 230.5}),
	}
	svc := newTestService(client, nil)

	price, err := svc.ResolvePrice(context.Background(), "AAPL", models.AssetStocks)
	if err != nil {
		t.Fatalf("ResolvePrice failed: %v", err)
	}
	if price != 230.5 {
		t.Errorf("price = %v, want 230.5", price)
	}
	if got := client.dailyCallCount(); got != 0 {
		t.Errorf("daily bar calls = %d, want 0 for a cached symbol", got)
	}
}

func TestResolvePrice_NormalizesSymbol(t *testing.T) {
	client := &mockMarketDataClient{
		groupedFn: groupedOK(models.Quote{Symbol: "AAPL", Close: 230.5}),
	}
	svc := newTestService(client, nil)

	price, err := svc.ResolvePrice(context.Background(), "  aapl ", models.AssetStocks)
	if err != nil {
		t.Fatalf("ResolvePrice failed: %v", err)
	}
	if price != 230.5 {
		t.Errorf("price = %v, want 230.5", price)
	}
}

func TestResolvePrice_EmptySymbol(t *testing.T) {
	svc := newTestService(&mockMarketDataClient{}, nil)

	_, err := svc.ResolvePrice(context.Background(), "   ", models.AssetStocks)
	if !errors.Is(err, models.ErrPriceUnavailable) {
		t.Errorf("err = %v, want ErrPriceUnavailable", err)
	}
}

func TestResolvePrice_MissBackfillsSnapshot(t *testing.T) {
	client := &mockMarketDataClient{
		groupedFn: groupedOK(models.Quote{Symbol: "AAPL", Close: 230.5}),
		dailyBarFn: func(_ context.Context, ticker, date string) (*models.Quote, error) {
			if ticker != "NVDA" {
				t.Errorf("ticker = %s, want NVDA", ticker)
			}
			if date != testTradingDay {
				t.Errorf("date = %s, want %s", date, testTradingDay)
			}
			return &models.Quote{Close: 118.75, Open: 116.0}, nil
		},
	}
	svc := newTestService(client, nil)
	ctx := context.Background()

	price, err := svc.ResolvePrice(ctx, "NVDA", models.AssetStocks)
	if err != nil {
		t.Fatalf("ResolvePrice failed: %v", err)
	}
	if price != 118.75 {
		t.Errorf("price = %v, want 118.75", price)
	}

	// Round trip: the resolved bar now lives in the snapshot, so the next
	// lookup is a cache hit with the exact same close.
	again, err := svc.ResolvePrice(ctx, "NVDA", models.AssetStocks)
	if err != nil {
		t.Fatalf("ResolvePrice failed on second call: %v", err)
	}
	if again != 118.75 {
		t.Errorf("second price = %v, want 118.75", again)
	}
	if got := client.dailyCallCount(); got != 1 {
		t.Errorf("daily bar calls = %d, want 1", got)
	}

	snapshot, _ := svc.GetSnapshot(ctx)
	if snapshot.Stocks["NVDA"].Symbol != "NVDA" {
		t.Error("backfilled quote should carry the normalized symbol")
	}
}

func TestResolvePrice_CryptoUsesPairTicker(t *testing.T) {
	client := &mockMarketDataClient{
		groupedFn: groupedOK(models.Quote{Symbol: "AAPL", Close: 230.5}),
		dailyBarFn: func(_ context.Context, ticker, _ string) (*models.Quote, error) {
			if ticker != "X:BTCUSD" {
				t.Errorf("ticker = %s, want X:BTCUSD", ticker)
			}
			return &models.Quote{Close: 64321.5}, nil
		},
	}
	svc := newTestService(client, nil)
	ctx := context.Background()

	price, err := svc.ResolvePrice(ctx, "btc", models.AssetCrypto)
	if err != nil {
		t.Fatalf("ResolvePrice failed: %v", err)
	}
	if price != 64321.5 {
		t.Errorf("price = %v, want 64321.5", price)
	}

	// The crypto map caches under the bare symbol, not the pair ticker.
	snapshot, _ := svc.GetSnapshot(ctx)
	if _, ok := snapshot.Crypto["BTC"]; !ok {
		t.Error("crypto quote should be cached under BTC")
	}
}

func TestResolvePrice_ClosedMarketForStocks(t *testing.T) {
	client := &mockMarketDataClient{
		groupedFn: groupedOK(models.Quote{Symbol: "AAPL", Close: 230.5}),
		dailyBarFn: func(_ context.Context, _, date string) (*models.Quote, error) {
			return nil, closedErr(date)
		},
	}
	svc := newTestService(client, nil)

	_, err := svc.ResolvePrice(context.Background(), "NVDA", models.AssetStocks)
	if !errors.Is(err, models.ErrMarketClosed) {
		t.Errorf("err = %v, want ErrMarketClosed", err)
	}
}

func TestResolvePrice_ClosedKindForCryptoIsUnavailable(t *testing.T) {
	// Crypto trades continuously; a closed-market classification from the
	// upstream means the pair is missing, not that the session is closed.
	client := &mockMarketDataClient{
		groupedFn: groupedOK(models.Quote{Symbol: "AAPL", Close: 230.5}),
		dailyBarFn: func(_ context.Context, _, date string) (*models.Quote, error) {
			return nil, closedErr(date)
		},
	}
	svc := newTestService(client, nil)

	_, err := svc.ResolvePrice(context.Background(), "BTC", models.AssetCrypto)
	if errors.Is(err, models.ErrMarketClosed) {
		t.Errorf("err = %v, crypto should never surface ErrMarketClosed", err)
	}
	if !errors.Is(err, models.ErrPriceUnavailable) {
		t.Errorf("err = %v, want ErrPriceUnavailable", err)
	}
}

func TestResolvePrice_FetchFailure(t *testing.T) {
	client := &mockMarketDataClient{
		groupedFn: groupedOK(models.Quote{Symbol: "AAPL", Close: 230.5}),
		dailyBarFn: func(_ context.Context, _, _ string) (*models.Quote, error) {
			return nil, networkErr()
		},
	}
	svc := newTestService(client, nil)

	_, err := svc.ResolvePrice(context.Background(), "NVDA", models.AssetStocks)
	if !errors.Is(err, models.ErrPriceUnavailable) {
		t.Errorf("err = %v, want ErrPriceUnavailable", err)
	}
}
