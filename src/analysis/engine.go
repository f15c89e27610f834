package analysis

import (
	"context"
	"time"

	logger "github.com/sirupsen/logrus"

	"memetrader/src/model"
)

// SafetyProvider supplies a contract safety score in [0,100].
type SafetyProvider interface {
	SafetyScore(ctx context.Context, address string) (int, error)
}

// MarketDataProvider supplies the market snapshot for one token.
type MarketDataProvider interface {
	MarketData(ctx context.Context, address string) (model.MarketData, error)
}

// SuccessPredictor is the opaque AI scoring function, returning a success
// probability in [0,1].
type SuccessPredictor interface {
	PredictSuccess(ctx context.Context, signal *model.TokenSignal, market model.MarketData, safetyScore int) (float64, error)
}

// AlertSink receives out-of-band alerts raised during assessment.
type AlertSink interface {
	LowSafetyAlert(signal *model.TokenSignal, safetyScore int)
}

// Engine turns admitted signals into assessments. Deterministic given the
// provider outputs; any provider failure resolves to a PASS assessment with
// whatever data was gathered, never an error out of Assess.
type Engine struct {
	config    Config
	safety    SafetyProvider
	market    MarketDataProvider
	predictor SuccessPredictor
	alerts    AlertSink
	now       func() time.Time
}

func NewEngine(config Config, safety SafetyProvider, market MarketDataProvider, predictor SuccessPredictor, alerts AlertSink) *Engine {
	return &Engine{
		config:    config,
		safety:    safety,
		market:    market,
		predictor: predictor,
		alerts:    alerts,
		now:       time.Now,
	}
}

// Assess scores one signal. The failed-provider path logs and passes; the
// signal is not retried, a fresh mention has to re-trigger assessment.
func (e *Engine) Assess(ctx context.Context, signal *model.TokenSignal) *model.Assessment {
	log := logger.WithFields(logger.Fields{
		"component": "AssessmentEngine",
		"symbol":    signal.Symbol,
		"address":   signal.Address,
	})

	assessment := &model.Assessment{
		SignalID:       signal.ID,
		Address:        signal.Address,
		Symbol:         signal.Symbol,
		Recommendation: model.RecommendationPass,
		AssessedAt:     e.now(),
		Signal:         signal,
	}

	safetyScore, err := e.safety.SafetyScore(ctx, signal.Address)
	if err != nil {
		log.WithError(err).Warn("Safety score unavailable, passing")
		return assessment
	}
	assessment.SafetyScore = safetyScore

	if safetyScore < e.config.MinSafetyScore {
		log.WithField("safety_score", safetyScore).Info("Token failed safety check")
		if e.alerts != nil {
			e.alerts.LowSafetyAlert(signal, safetyScore)
		}
		return assessment
	}

	market, err := e.market.MarketData(ctx, signal.Address)
	if err != nil {
		log.WithError(err).Warn("Market data unavailable, passing")
		return assessment
	}
	assessment.Market = market

	if reason, ok := e.checkMarketFilters(market); !ok {
		log.WithField("reason", reason).Info("Token failed market filters")
		return assessment
	}

	aiProbability, err := e.predictor.PredictSuccess(ctx, signal, market, safetyScore)
	if err != nil {
		log.WithError(err).Warn("AI prediction unavailable, passing")
		return assessment
	}
	assessment.AIProbability = aiProbability

	marketScore := e.MarketConditionScore(market)
	combined := e.CombinedScore(safetyScore, aiProbability, marketScore)
	recommendation := e.RecommendationFor(combined)

	assessment.CombinedScore = combined
	assessment.Recommendation = recommendation
	assessment.FilterPassed = recommendation == model.RecommendationBuy ||
		recommendation == model.RecommendationMonitor

	log.WithFields(logger.Fields{
		"safety_score":   safetyScore,
		"ai_probability": aiProbability,
		"market_score":   marketScore,
		"combined_score": combined,
		"recommendation": recommendation,
	}).Info("Assessment complete")

	return assessment
}

// checkMarketFilters applies the hard filters. Returns the first failing
// filter name so skips are explainable in logs and tests.
func (e *Engine) checkMarketFilters(market model.MarketData) (string, bool) {
	if market.MarketCap < e.config.MinMarketCap || market.MarketCap > e.config.MaxMarketCap {
		return "market_cap", false
	}
	if market.Liquidity < e.config.MinLiquidity {
		return "liquidity", false
	}
	if market.Volume24h < e.config.MinVolume24h {
		return "volume_24h", false
	}
	if e.config.RequireLockedLiquidity && !market.LiquidityLocked {
		return "liquidity_locked", false
	}
	if e.config.RequireDisabledMint && !market.MintDisabled {
		return "mint_disabled", false
	}
	return "", true
}
