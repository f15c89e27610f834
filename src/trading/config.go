package trading

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	BuyAmountSOL    float64 `envconfig:"BUY_AMOUNT_SOL" default:"1.5"`
	MaxBuyAmountSOL float64 `envconfig:"MAX_BUY_AMOUNT_SOL" default:"2.0"`

	BuySlippage  float64 `envconfig:"BUY_SLIPPAGE" default:"0.20"`
	SellSlippage float64 `envconfig:"SELL_SLIPPAGE" default:"0.25"`

	StopLossPct          float64 `envconfig:"STOP_LOSS_PCT" default:"0.50"`
	TakeProfitMultiplier float64 `envconfig:"TAKE_PROFIT_MULTIPLIER" default:"10.0"`
	MoonbagPct           float64 `envconfig:"MOONBAG_PCT" default:"0.15"`

	MaxPositions    int           `envconfig:"MAX_POSITIONS" default:"5"`
	MaxHoldDuration time.Duration `envconfig:"MAX_HOLD_DURATION" default:"24h"`
	MonitorInterval time.Duration `envconfig:"MONITOR_INTERVAL" default:"30s"`
	PriceCacheTTL   time.Duration `envconfig:"PRICE_CACHE_TTL" default:"30s"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
