package notify

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Enabled    bool          `envconfig:"NOTIFY_ENABLED" default:"true"`
	WebhookURL string        `envconfig:"NOTIFY_WEBHOOK_URL" default:""`
	Timeout    time.Duration `envconfig:"NOTIFY_TIMEOUT" default:"10s"`

	MinIntervalLow      time.Duration `envconfig:"NOTIFY_MIN_INTERVAL_LOW" default:"5m"`
	MinIntervalMedium   time.Duration `envconfig:"NOTIFY_MIN_INTERVAL_MEDIUM" default:"2m"`
	MinIntervalHigh     time.Duration `envconfig:"NOTIFY_MIN_INTERVAL_HIGH" default:"1m"`
	MinIntervalCritical time.Duration `envconfig:"NOTIFY_MIN_INTERVAL_CRITICAL" default:"0s"`

	HistoryLimit int `envconfig:"NOTIFY_HISTORY_LIMIT" default:"1000"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
