package connectors

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"memetrader/src/model"
)

// MarketClient fetches the market snapshot for one token from a GMGN-style
// token info API and derives the flags the hard filters need.
type MarketClient struct {
	http    *resty.Client
	limiter *WindowLimiter
	now     func() time.Time
}

func NewMarketClient(config Config) *MarketClient {
	return &MarketClient{
		http:    newHTTPClient(config.MarketBaseURL, 15*time.Second),
		limiter: NewWindowLimiter(config.MarketRateLimit, config.RateLimitWindow),
		now:     time.Now,
	}
}

type marketResponse struct {
	Code int `json:"code"`
	Data *struct {
		Token struct {
			MarketCap         float64 `json:"market_cap"`
			Liquidity         float64 `json:"liquidity"`
			Volume24h         float64 `json:"volume_24h"`
			HolderCount       int     `json:"holder_count"`
			CreationTimestamp int64   `json:"creation_timestamp"`
		} `json:"token"`
	} `json:"data"`
	Msg string `json:"msg"`
}

func (c *MarketClient) MarketData(ctx context.Context, address string) (model.MarketData, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return model.MarketData{}, err
	}

	resp, err := c.http.R().
		SetContext(ctx).
		Get("/tokens/sol/" + address)
	if err != nil {
		return model.MarketData{}, fmt.Errorf("market data: %w", err)
	}
	if resp.StatusCode() != 200 {
		return model.MarketData{}, fmt.Errorf("market data: HTTP %d", resp.StatusCode())
	}

	var parsed marketResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return model.MarketData{}, fmt.Errorf("market data: decode: %w", err)
	}
	// A success envelope carries code 0 and a data object. Anything else,
	// including a well-formed payload from a different API, is an error.
	if parsed.Code != 0 || parsed.Data == nil {
		return model.MarketData{}, fmt.Errorf("market data: API error %d: %s", parsed.Code, parsed.Msg)
	}

	token := parsed.Data.Token

	// Unknown creation time is assumed a day old; it neither looks brand new
	// nor triggers the fresh-mint heuristics below.
	ageHours := 24.0
	if token.CreationTimestamp > 0 {
		ageHours = c.now().Sub(time.Unix(token.CreationTimestamp, 0)).Hours()
	}

	// Liquidity counted as locked when at least 10% of market cap sits in the
	// pool; mint treated as disabled once the token is older than an hour.
	liquidityLocked := token.MarketCap > 0 && token.Liquidity/token.MarketCap > 0.1
	mintDisabled := ageHours > 1

	return model.MarketData{
		MarketCap:       token.MarketCap,
		Liquidity:       token.Liquidity,
		Volume24h:       token.Volume24h,
		AgeHours:        ageHours,
		HolderCount:     token.HolderCount,
		LiquidityLocked: liquidityLocked,
		MintDisabled:    mintDisabled,
	}, nil
}
