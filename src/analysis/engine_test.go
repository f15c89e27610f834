package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"memetrader/src/model"
)

type fakeSafety struct {
	score int
	err   error
}

func (f *fakeSafety) SafetyScore(context.Context, string) (int, error) {
	return f.score, f.err
}

type fakeMarket struct {
	data model.MarketData
	err  error
}

func (f *fakeMarket) MarketData(context.Context, string) (model.MarketData, error) {
	return f.data, f.err
}

type fakePredictor struct {
	probability float64
	err         error
}

func (f *fakePredictor) PredictSuccess(context.Context, *model.TokenSignal, model.MarketData, int) (float64, error) {
	return f.probability, f.err
}

type recordingAlerts struct {
	lowSafety []int
}

func (r *recordingAlerts) LowSafetyAlert(_ *model.TokenSignal, score int) {
	r.lowSafety = append(r.lowSafety, score)
}

func healthyMarket() model.MarketData {
	return model.MarketData{
		MarketCap:       100000,
		Liquidity:       50000,
		Volume24h:       10000,
		AgeHours:        1,
		HolderCount:     500,
		LiquidityLocked: true,
		MintDisabled:    true,
	}
}

func testSignal() *model.TokenSignal {
	return &model.TokenSignal{
		ID:         7,
		Symbol:     "MEME",
		Address:    "So11111111111111111111111111111111111111112",
		Source:     "twitter",
		Timestamp:  time.Now(),
		Confidence: 0.8,
	}
}

func TestAssessBuyPath(t *testing.T) {
	e := NewEngine(scoringConfig(),
		&fakeSafety{score: 90},
		&fakeMarket{data: healthyMarket()},
		&fakePredictor{probability: 0.9},
		nil)

	assessment := e.Assess(context.Background(), testSignal())

	if assessment.Recommendation != model.RecommendationBuy {
		t.Fatalf("expected BUY, got %s (score %f)", assessment.Recommendation, assessment.CombinedScore)
	}
	if !assessment.FilterPassed {
		t.Fatal("filter_passed should be true on BUY")
	}
	if assessment.SafetyScore != 90 || assessment.AIProbability != 0.9 {
		t.Fatalf("inputs not recorded: %+v", assessment)
	}
}

func TestAssessLowSafetyShortCircuits(t *testing.T) {
	alerts := &recordingAlerts{}
	e := NewEngine(scoringConfig(),
		&fakeSafety{score: 50},
		&fakeMarket{data: healthyMarket()},
		&fakePredictor{probability: 0.99},
		alerts)

	assessment := e.Assess(context.Background(), testSignal())

	if assessment.Recommendation != model.RecommendationPass {
		t.Fatalf("expected PASS on low safety, got %s", assessment.Recommendation)
	}
	if assessment.Market.MarketCap != 0 {
		t.Fatal("market data must not be fetched after the safety short-circuit")
	}
	if len(alerts.lowSafety) != 1 || alerts.lowSafety[0] != 50 {
		t.Fatalf("expected one low-safety alert with score 50, got %v", alerts.lowSafety)
	}
}

func TestAssessProviderFailuresPass(t *testing.T) {
	boom := errors.New("upstream down")

	tests := []struct {
		name      string
		safety    *fakeSafety
		market    *fakeMarket
		predictor *fakePredictor
	}{
		{"safety failure", &fakeSafety{err: boom}, &fakeMarket{data: healthyMarket()}, &fakePredictor{probability: 0.9}},
		{"market failure", &fakeSafety{score: 90}, &fakeMarket{err: boom}, &fakePredictor{probability: 0.9}},
		{"predictor failure", &fakeSafety{score: 90}, &fakeMarket{data: healthyMarket()}, &fakePredictor{err: boom}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(scoringConfig(), tt.safety, tt.market, tt.predictor, nil)
			assessment := e.Assess(context.Background(), testSignal())
			if assessment.Recommendation != model.RecommendationPass {
				t.Fatalf("expected PASS, got %s", assessment.Recommendation)
			}
			if assessment.FilterPassed {
				t.Fatal("filter_passed must be false on provider failure")
			}
		})
	}
}

func TestAssessHardFilters(t *testing.T) {
	mutate := func(f func(*model.MarketData)) model.MarketData {
		m := healthyMarket()
		f(&m)
		return m
	}

	tests := []struct {
		name   string
		market model.MarketData
	}{
		{"market cap too low", mutate(func(m *model.MarketData) { m.MarketCap = 5000 })},
		{"market cap too high", mutate(func(m *model.MarketData) { m.MarketCap = 2000000 })},
		{"thin liquidity", mutate(func(m *model.MarketData) { m.Liquidity = 1000 })},
		{"thin volume", mutate(func(m *model.MarketData) { m.Volume24h = 100 })},
		{"liquidity not locked", mutate(func(m *model.MarketData) { m.LiquidityLocked = false })},
		{"mint enabled", mutate(func(m *model.MarketData) { m.MintDisabled = false })},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(scoringConfig(),
				&fakeSafety{score: 95},
				&fakeMarket{data: tt.market},
				&fakePredictor{probability: 0.99},
				nil)

			assessment := e.Assess(context.Background(), testSignal())
			if assessment.Recommendation != model.RecommendationPass {
				t.Fatalf("expected PASS, got %s", assessment.Recommendation)
			}
			if assessment.AIProbability != 0 {
				t.Fatal("predictor must not run when hard filters fail")
			}
		})
	}
}
