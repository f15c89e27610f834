package connectors

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	logger "github.com/sirupsen/logrus"
)

// SafetyClient fetches contract safety scores from a Solsniffer-style
// scanner. Scores live in [0,100].
type SafetyClient struct {
	http    *resty.Client
	limiter *WindowLimiter
	apiKey  string
}

func NewSafetyClient(config Config) *SafetyClient {
	return &SafetyClient{
		http:    newHTTPClient(config.SafetyBaseURL, 15*time.Second),
		limiter: NewWindowLimiter(config.SafetyRateLimit, config.RateLimitWindow),
		apiKey:  config.SafetyAPIKey,
	}
}

type safetyResponse struct {
	Score int `json:"score"`
}

// SafetyScore returns the scanner's score for the token. An unknown token
// scores 0 rather than erroring; brand-new mints are often not indexed yet.
func (c *SafetyClient) SafetyScore(ctx context.Context, address string) (int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	req := c.http.R().SetContext(ctx)
	if c.apiKey != "" {
		req.SetHeader("X-API-Key", c.apiKey)
	}

	resp, err := req.Get("/token/" + address)
	if err != nil {
		return 0, fmt.Errorf("safety score: %w", err)
	}

	switch resp.StatusCode() {
	case 200:
	case 404:
		logger.WithFields(logger.Fields{
			"component": "SafetyClient",
			"address":   address,
		}).Warn("Token not indexed by safety scanner")
		return 0, nil
	default:
		return 0, fmt.Errorf("safety score: HTTP %d", resp.StatusCode())
	}

	var parsed safetyResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return 0, fmt.Errorf("safety score: decode: %w", err)
	}
	if parsed.Score < 0 || parsed.Score > 100 {
		return 0, fmt.Errorf("safety score out of range: %d", parsed.Score)
	}

	return parsed.Score, nil
}
