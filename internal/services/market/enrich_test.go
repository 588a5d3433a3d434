package market

import (
	"context"
	"testing"

	"github.com/foliodash/folio/internal/models"
)

func candidates(symbols ...string) []models.SymbolCandidate {
	out := make([]models.SymbolCandidate, len(symbols))
	for i, s := range symbols {
		out[i] = models.SymbolCandidate{Symbol: s, Name: s + " Inc"}
	}
	return out
}

func TestEnrichWithPrices_OnlyPrefixIsResolved(t *testing.T) {
	client := &mockMarketDataClient{
		groupedFn: groupedOK(
			models.Quote{Symbol: "A", Close: 10},
			models.Quote{Symbol: "B", Close: 20},
			models.Quote{Symbol: "C", Close: 30},
			models.Quote{Symbol: "D", Close: 40},
			models.Quote{Symbol: "E", Close: 50},
			models.Quote{Symbol: "F", Close: 60},
			models.Quote{Symbol: "G", Close: 70},
		),
	}
	svc := newTestService(client, nil)

	enriched := svc.EnrichWithPrices(context.Background(), candidates("A", "B", "C", "D", "E", "F", "G"), models.AssetStocks)
	if len(enriched) != 7 {
		t.Fatalf("len = %d, want 7", len(enriched))
	}

	for i, want := range []float64{10, 20, 30, 40, 50} {
		if enriched[i].Price != want {
			t.Errorf("candidate %d price = %v, want %v", i, enriched[i].Price, want)
		}
		if enriched[i].Simulated {
			t.Errorf("candidate %d should not be simulated", i)
		}
	}

	// Candidates 6 and 7 sit beyond the batch bound even though the
	// snapshot holds their quotes.
	for i := 5; i < 7; i++ {
		if enriched[i].Price != models.PriceUnknown {
			t.Errorf("candidate %d price = %v, want PriceUnknown", i, enriched[i].Price)
		}
		if enriched[i].Priced() {
			t.Errorf("candidate %d should report unpriced", i)
		}
	}

	if got := client.dailyCallCount(); got != 0 {
		t.Errorf("daily bar calls = %d, want 0 (all prefix symbols cached)", got)
	}
}

func TestEnrichWithPrices_MissesFetchedConcurrently(t *testing.T) {
	client := &mockMarketDataClient{
		groupedFn: groupedOK(models.Quote{Symbol: "AAPL", Close: 230.5}),
		dailyBarFn: func(_ context.Context, ticker, _ string) (*models.Quote, error) {
			switch ticker {
			case "NVDA":
				return &models.Quote{Close: 118.75}, nil
			case "TSLA":
				return &models.Quote{Close: 242.1}, nil
			}
			return nil, networkErr()
		},
	}
	svc := newTestService(client, nil)

	enriched := svc.EnrichWithPrices(context.Background(), candidates("AAPL", "NVDA", "TSLA"), models.AssetStocks)

	if enriched[0].Price != 230.5 || enriched[0].Simulated {
		t.Errorf("AAPL = %+v, want cached 230.5", enriched[0])
	}
	if enriched[1].Price != 118.75 || enriched[1].Simulated {
		t.Errorf("NVDA = %+v, want fetched 118.75", enriched[1])
	}
	if enriched[2].Price != 242.1 || enriched[2].Simulated {
		t.Errorf("TSLA = %+v, want fetched 242.1", enriched[2])
	}
	if got := client.dailyCallCount(); got != 2 {
		t.Errorf("daily bar calls = %d, want 2", got)
	}
}

func TestEnrichWithPrices_FailuresAreSimulated(t *testing.T) {
	client := &mockMarketDataClient{
		groupedFn: groupedOK(models.Quote{Symbol: "AAPL", Close: 230.5}),
		dailyBarFn: func(_ context.Context, _, _ string) (*models.Quote, error) {
			return nil, networkErr()
		},
	}
	svc := newTestService(client, nil)

	enriched := svc.EnrichWithPrices(context.Background(), candidates("NVDA", "TSLA", "AMD"), models.AssetStocks)

	for i, c := range enriched {
		if !c.Simulated {
			t.Errorf("candidate %d should be simulated after a failed fetch", i)
		}
		if c.Price < 10 || c.Price > 500 {
			t.Errorf("candidate %d simulated price = %v, want within [10, 500]", i, c.Price)
		}
	}
}

func TestEnrichWithPrices_CryptoSimulationBands(t *testing.T) {
	client := &mockMarketDataClient{
		groupedFn: groupedOK(models.Quote{Symbol: "AAPL", Close: 230.5}),
		dailyBarFn: func(_ context.Context, _, _ string) (*models.Quote, error) {
			return nil, networkErr()
		},
	}
	svc := newTestService(client, nil)

	enriched := svc.EnrichWithPrices(context.Background(), candidates("BTC", "USDT"), models.AssetCrypto)

	if p := enriched[0].Price; p < 25000 || p > 45000 {
		t.Errorf("BTC simulated price = %v, want within [25000, 45000]", p)
	}
	if p := enriched[1].Price; p < 0.95 || p > 1.05 {
		t.Errorf("USDT simulated price = %v, want within [0.95, 1.05]", p)
	}
}

func TestEnrichWithPrices_EmptyBatch(t *testing.T) {
	svc := newTestService(&mockMarketDataClient{}, nil)

	enriched := svc.EnrichWithPrices(context.Background(), nil, models.AssetStocks)
	if len(enriched) != 0 {
		t.Errorf("len = %d, want 0", len(enriched))
	}
}

func TestEnrichWithPrices_DoesNotMutateInput(t *testing.T) {
	client := &mockMarketDataClient{
		groupedFn: groupedOK(models.Quote{Symbol: "AAPL", Close: 230.5}),
	}
	svc := newTestService(client, nil)

	in := candidates("AAPL")
	svc.EnrichWithPrices(context.Background(), in, models.AssetStocks)
	if in[0].Price != 0 {
		t.Errorf("input candidate mutated: price = %v", in[0].Price)
	}
}
