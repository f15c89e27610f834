package connectors

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func marketTestClient(baseURL string) *MarketClient {
	return NewMarketClient(Config{
		MarketBaseURL:   baseURL,
		MarketRateLimit: 100,
		RateLimitWindow: time.Minute,
	})
}

func TestMarketClientParsesTokenInfo(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	created := now.Add(-2 * time.Hour).Unix()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tokens/sol/addr-1" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprintf(w, `{"code":0,"data":{"token":{"market_cap":500000,"liquidity":60000,"volume_24h":12000,"holder_count":300,"creation_timestamp":%d}}}`, created)
	}))
	defer server.Close()

	client := marketTestClient(server.URL)
	client.now = func() time.Time { return now }

	data, err := client.MarketData(context.Background(), "addr-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data.MarketCap != 500000 || data.Liquidity != 60000 || data.Volume24h != 12000 {
		t.Fatalf("unexpected market data: %+v", data)
	}
	if data.HolderCount != 300 {
		t.Fatalf("holder count = %d, want 300", data.HolderCount)
	}
	if math.Abs(data.AgeHours-2) > 1e-6 {
		t.Fatalf("age = %f hours, want 2", data.AgeHours)
	}
	// 60k liquidity against a 500k cap is above the 10% locked threshold, and
	// a two-hour-old token counts as mint disabled.
	if !data.LiquidityLocked || !data.MintDisabled {
		t.Fatalf("derived flags wrong: %+v", data)
	}
}

func TestMarketClientRejectsForeignResponseShape(t *testing.T) {
	// A well-formed payload from a different API has no code/data envelope
	// and must not decode into an empty token that slips past the filters.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"schemaVersion":"1.0.0","pairs":[]}`)
	}))
	defer server.Close()

	client := marketTestClient(server.URL)
	if _, err := client.MarketData(context.Background(), "addr-1"); err == nil {
		t.Fatal("response without the token envelope must be an error")
	}
}

func TestMarketClientAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"code":1,"msg":"query failed"}`)
	}))
	defer server.Close()

	client := marketTestClient(server.URL)
	if _, err := client.MarketData(context.Background(), "addr-1"); err == nil {
		t.Fatal("non-zero API code must be an error")
	}
}
