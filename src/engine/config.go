package engine

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	SignalQueueSize int `envconfig:"SIGNAL_QUEUE_SIZE" default:"256"`
	BuyQueueSize    int `envconfig:"BUY_QUEUE_SIZE" default:"64"`
	AssessWorkers   int `envconfig:"ASSESS_WORKERS" default:"2"`

	StatsInterval       time.Duration `envconfig:"STATS_INTERVAL" default:"5m"`
	PruneInterval       time.Duration `envconfig:"PRUNE_INTERVAL" default:"10m"`
	WinRateLookbackDays int           `envconfig:"WIN_RATE_LOOKBACK_DAYS" default:"30"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
