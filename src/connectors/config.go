package connectors

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	JupiterBaseURL string `envconfig:"JUPITER_BASE_URL" default:"https://quote-api.jup.ag/v6"`
	RaydiumBaseURL string `envconfig:"RAYDIUM_BASE_URL" default:"https://api-v3.raydium.io"`
	SafetyBaseURL  string `envconfig:"SAFETY_BASE_URL" default:"https://solsniffer.com/api/v2"`
	SafetyAPIKey   string `envconfig:"SAFETY_API_KEY"`
	MarketBaseURL  string `envconfig:"MARKET_BASE_URL" default:"https://gmgn.ai/defi/quotation/v1"`
	PredictBaseURL string `envconfig:"PREDICT_BASE_URL" default:"http://localhost:9090"`
	SolanaRPCURL   string `envconfig:"SOLANA_RPC_URL" default:"https://api.mainnet-beta.solana.com"`

	PriorityFeeLamports int64 `envconfig:"PRIORITY_FEE_LAMPORTS" default:"10000"`

	ConfirmTimeout  time.Duration `envconfig:"CONFIRM_TIMEOUT" default:"60s"`
	ConfirmInterval time.Duration `envconfig:"CONFIRM_INTERVAL" default:"2s"`

	// Fixed-window budgets, calls per window per API.
	RateLimitWindow  time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`
	JupiterRateLimit int           `envconfig:"JUPITER_RATE_LIMIT" default:"120"`
	RaydiumRateLimit int           `envconfig:"RAYDIUM_RATE_LIMIT" default:"60"`
	SafetyRateLimit  int           `envconfig:"SAFETY_RATE_LIMIT" default:"30"`
	MarketRateLimit  int           `envconfig:"MARKET_RATE_LIMIT" default:"60"`
	RPCRateLimit     int           `envconfig:"RPC_RATE_LIMIT" default:"120"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
