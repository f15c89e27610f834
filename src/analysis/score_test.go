package analysis

import (
	"math"
	"testing"

	"memetrader/src/model"
)

func scoringConfig() Config {
	return Config{
		MinSafetyScore:         80,
		MinMarketCap:           10000,
		MaxMarketCap:           1000000,
		MinLiquidity:           5000,
		MinVolume24h:           1000,
		RequireLockedLiquidity: true,
		RequireDisabledMint:    true,
		SafetyWeight:           0.4,
		AIWeight:               0.4,
		MarketWeight:           0.2,
		BuyThreshold:           0.75,
		MonitorThreshold:       0.60,
		VolumeCap:              10000,
		LiquidityCap:           50000,
		AgeDecayHours:          24,
		HolderCap:              1000,
	}
}

func TestMarketConditionScoreBounds(t *testing.T) {
	e := &Engine{config: scoringConfig()}

	tests := []struct {
		name   string
		market model.MarketData
		want   float64
	}{
		{
			name:   "all zero",
			market: model.MarketData{AgeHours: 24},
			want:   0,
		},
		{
			name: "all sub-terms saturated",
			market: model.MarketData{
				Volume24h:   1e9,
				Liquidity:   1e9,
				AgeHours:    0,
				HolderCount: 1000000,
			},
			want: 1.0,
		},
		{
			name: "mid-range blend",
			market: model.MarketData{
				Volume24h:   5000,  // 0.5 * 0.3
				Liquidity:   25000, // 0.5 * 0.3
				AgeHours:    12,    // 0.5 * 0.2
				HolderCount: 500,   // 0.5 * 0.2
			},
			want: 0.5,
		},
		{
			name: "age beyond decay window scores zero",
			market: model.MarketData{
				AgeHours: 100,
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.MarketConditionScore(tt.market)
			if got < 0 || got > 1 {
				t.Fatalf("score %f out of [0,1]", got)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("expected %f, got %f", tt.want, got)
			}
		})
	}
}

func TestCombinedScoreScenario(t *testing.T) {
	e := &Engine{config: scoringConfig()}

	// safety 90, ai 0.9, market 0.8 -> 0.4*0.9 + 0.4*0.9 + 0.2*0.8 = 0.88
	got := e.CombinedScore(90, 0.9, 0.8)
	if math.Abs(got-0.88) > 1e-9 {
		t.Fatalf("expected 0.88, got %f", got)
	}
	if e.RecommendationFor(got) != model.RecommendationBuy {
		t.Fatalf("0.88 should be BUY")
	}
}

func TestRecommendationThresholds(t *testing.T) {
	e := &Engine{config: scoringConfig()}

	tests := []struct {
		combined float64
		want     model.Recommendation
	}{
		{1.0, model.RecommendationBuy},
		{0.75, model.RecommendationBuy},
		{0.7499, model.RecommendationMonitor},
		{0.60, model.RecommendationMonitor},
		{0.5999, model.RecommendationPass},
		{0.0, model.RecommendationPass},
	}

	for _, tt := range tests {
		if got := e.RecommendationFor(tt.combined); got != tt.want {
			t.Fatalf("combined %f: expected %s, got %s", tt.combined, tt.want, got)
		}
	}
}

func TestCombinedScoreStaysBounded(t *testing.T) {
	e := &Engine{config: scoringConfig()}

	for _, safety := range []int{0, 50, 100} {
		for _, ai := range []float64{0, 0.5, 1} {
			for _, market := range []float64{0, 0.5, 1} {
				got := e.CombinedScore(safety, ai, market)
				if got < 0 || got > 1 {
					t.Fatalf("combined(%d, %f, %f) = %f out of [0,1]", safety, ai, market, got)
				}
			}
		}
	}
}
