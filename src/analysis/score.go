package analysis

import (
	"memetrader/src/model"
)

// MarketConditionScore blends normalized 24h volume, liquidity, inverse token
// age and holder count into a [0,1] sub-score. Each sub-term is capped at 1.0
// before weighting, so the blend cannot exceed 1.
func (e *Engine) MarketConditionScore(market model.MarketData) float64 {
	volumeScore := capAt(market.Volume24h/e.config.VolumeCap, 1.0)
	liquidityScore := capAt(market.Liquidity/e.config.LiquidityCap, 1.0)

	ageScore := 1.0 - market.AgeHours/e.config.AgeDecayHours
	if ageScore < 0 {
		ageScore = 0
	}

	holderScore := capAt(float64(market.HolderCount)/e.config.HolderCap, 1.0)

	score := volumeScore*0.3 + liquidityScore*0.3 + ageScore*0.2 + holderScore*0.2
	return capAt(score, 1.0)
}

// CombinedScore blends the three normalized inputs. All inputs live in [0,1]
// after normalization and the weights sum to 1, so the result does too.
func (e *Engine) CombinedScore(safetyScore int, aiProbability, marketScore float64) float64 {
	return e.config.SafetyWeight*(float64(safetyScore)/100) +
		e.config.AIWeight*aiProbability +
		e.config.MarketWeight*marketScore
}

// RecommendationFor maps a combined score onto the closed recommendation set.
func (e *Engine) RecommendationFor(combined float64) model.Recommendation {
	switch {
	case combined >= e.config.BuyThreshold:
		return model.RecommendationBuy
	case combined >= e.config.MonitorThreshold:
		return model.RecommendationMonitor
	default:
		return model.RecommendationPass
	}
}

func capAt(v, limit float64) float64 {
	if v > limit {
		return limit
	}
	return v
}
