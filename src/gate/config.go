package gate

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	DedupWindow   time.Duration `envconfig:"SIGNAL_DEDUP_WINDOW" default:"1h"`
	MinConfidence float64       `envconfig:"SIGNAL_MIN_CONFIDENCE" default:"0.4"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
