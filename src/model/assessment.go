package model

import "time"

// Recommendation is the closed set of assessment outcomes.
type Recommendation string

const (
	RecommendationBuy     Recommendation = "BUY"
	RecommendationMonitor Recommendation = "MONITOR"
	RecommendationPass    Recommendation = "PASS"
)

func (r Recommendation) IsValid() bool {
	switch r {
	case RecommendationBuy, RecommendationMonitor, RecommendationPass:
		return true
	}
	return false
}

// MarketData is the market snapshot gathered for one assessment. Embedded in
// Assessment so the whole record lands in a single row.
type MarketData struct {
	MarketCap       float64 `json:"market_cap"`
	Liquidity       float64 `json:"liquidity"`
	Volume24h       float64 `json:"volume_24h"`
	AgeHours        float64 `json:"age_hours"`
	HolderCount     int     `json:"holder_count"`
	LiquidityLocked bool    `json:"liquidity_locked"`
	MintDisabled    bool    `json:"mint_disabled"`
}

// Assessment is the scored outcome of evaluating one signal. Created once per
// admitted signal, immutable afterwards, kept for audit and model calibration.
type Assessment struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	SignalID       uint           `gorm:"index" json:"signal_id"`
	Address        string         `gorm:"size:60;index" json:"address"`
	Symbol         string         `gorm:"size:20" json:"symbol"`
	SafetyScore    int            `json:"safety_score"`
	Market         MarketData     `gorm:"embedded;embeddedPrefix:market_" json:"market"`
	AIProbability  float64        `json:"ai_probability"`
	CombinedScore  float64        `json:"combined_score"`
	Recommendation Recommendation `gorm:"size:10" json:"recommendation"`
	FilterPassed   bool           `json:"filter_passed"`
	AssessedAt     time.Time      `json:"assessed_at"`
	CreatedAt      time.Time      `json:"created_at"`

	Signal *TokenSignal `gorm:"-" json:"signal,omitempty"`
}

func (Assessment) TableName() string {
	return "assessments"
}
