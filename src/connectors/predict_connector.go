package connectors

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"memetrader/src/model"
)

// PredictClient calls the external AI scoring service. The model behind it is
// a black box here; the client only validates that the returned probability
// is in range.
type PredictClient struct {
	http *resty.Client
}

func NewPredictClient(config Config) *PredictClient {
	return &PredictClient{
		http: newHTTPClient(config.PredictBaseURL, 20*time.Second),
	}
}

type predictResponse struct {
	SuccessProbability float64 `json:"success_probability"`
}

func (c *PredictClient) PredictSuccess(ctx context.Context, signal *model.TokenSignal, market model.MarketData, safetyScore int) (float64, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]interface{}{
			"address":      signal.Address,
			"symbol":       signal.Symbol,
			"source":       signal.Source,
			"confidence":   signal.Confidence,
			"safety_score": safetyScore,
			"market_cap":   market.MarketCap,
			"liquidity":    market.Liquidity,
			"volume_24h":   market.Volume24h,
			"age_hours":    market.AgeHours,
			"holder_count": market.HolderCount,
		}).
		Post("/predict")
	if err != nil {
		return 0, fmt.Errorf("predict: %w", err)
	}
	if resp.StatusCode() != 200 {
		return 0, fmt.Errorf("predict: HTTP %d", resp.StatusCode())
	}

	var parsed predictResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return 0, fmt.Errorf("predict: decode: %w", err)
	}
	if parsed.SuccessProbability < 0 || parsed.SuccessProbability > 1 {
		return 0, fmt.Errorf("predict: probability out of range: %f", parsed.SuccessProbability)
	}

	return parsed.SuccessProbability, nil
}
