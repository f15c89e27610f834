package analysis

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config carries the hard filters and scoring constants. The weights and
// thresholds are hand-tuned heuristics carried over as configuration, they
// imply no statistical guarantee.
type Config struct {
	MinSafetyScore int `envconfig:"MIN_SAFETY_SCORE" default:"80"`

	MinMarketCap float64 `envconfig:"MIN_MARKET_CAP" default:"10000"`
	MaxMarketCap float64 `envconfig:"MAX_MARKET_CAP" default:"1000000"`
	MinLiquidity float64 `envconfig:"MIN_LIQUIDITY" default:"5000"`
	MinVolume24h float64 `envconfig:"MIN_VOLUME_24H" default:"1000"`

	RequireLockedLiquidity bool `envconfig:"REQUIRE_LOCKED_LIQUIDITY" default:"true"`
	RequireDisabledMint    bool `envconfig:"REQUIRE_DISABLED_MINT" default:"true"`

	SafetyWeight float64 `envconfig:"SCORE_SAFETY_WEIGHT" default:"0.4"`
	AIWeight     float64 `envconfig:"SCORE_AI_WEIGHT" default:"0.4"`
	MarketWeight float64 `envconfig:"SCORE_MARKET_WEIGHT" default:"0.2"`

	BuyThreshold     float64 `envconfig:"SCORE_BUY_THRESHOLD" default:"0.75"`
	MonitorThreshold float64 `envconfig:"SCORE_MONITOR_THRESHOLD" default:"0.60"`

	VolumeCap     float64 `envconfig:"MARKET_SCORE_VOLUME_CAP" default:"10000"`
	LiquidityCap  float64 `envconfig:"MARKET_SCORE_LIQUIDITY_CAP" default:"50000"`
	AgeDecayHours float64 `envconfig:"MARKET_SCORE_AGE_DECAY_HOURS" default:"24"`
	HolderCap     float64 `envconfig:"MARKET_SCORE_HOLDER_CAP" default:"1000"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
