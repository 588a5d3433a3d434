package market

import (
	"testing"

	"github.com/foliodash/folio/internal/models"
)

func TestSimulatePrice_Bands(t *testing.T) {
	tests := []struct {
		name   string
		symbol string
		class  models.AssetClass
		low    float64
		high   float64
	}{
		{"equity", "AAPL", models.AssetStocks, 10, 500},
		{"bitcoin", "BTC", models.AssetCrypto, 25000, 45000},
		{"ether", "ETH", models.AssetCrypto, 1500, 3000},
		{"stablecoin tether", "USDT", models.AssetCrypto, 0.95, 1.05},
		{"stablecoin dai", "DAI", models.AssetCrypto, 0.95, 1.05},
		{"altcoin", "DOGE", models.AssetCrypto, 0.10, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < 100; i++ {
				quote := SimulatePrice(tt.symbol, tt.class)
				if quote.Close < tt.low || quote.Close > tt.high {
					t.Fatalf("SimulatePrice(%s, %s) = %v, want within [%v, %v]",
						tt.symbol, tt.class, quote.Close, tt.low, tt.high)
				}
				if !quote.Simulated {
					t.Fatal("quote must be tagged Simulated")
				}
				if quote.Symbol != tt.symbol {
					t.Fatalf("symbol = %s, want %s", quote.Symbol, tt.symbol)
				}
			}
		})
	}
}

func TestSimulatePrice_NormalizesSymbol(t *testing.T) {
	quote := SimulatePrice(" btc ", models.AssetCrypto)
	if quote.Symbol != "BTC" {
		t.Errorf("symbol = %s, want BTC", quote.Symbol)
	}
	if quote.Close < 25000 || quote.Close > 45000 {
		t.Errorf("normalized BTC should use the bitcoin band, got %v", quote.Close)
	}
}
