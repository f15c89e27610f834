package connectors

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	logger "github.com/sirupsen/logrus"

	"memetrader/src/wallet"
)

// RaydiumClient is the secondary venue, used only when the aggregator fails:
// a direct-pool swap against Raydium's own pools. Quotes are price-based
// estimates with a flat impact assumption.
type RaydiumClient struct {
	http    *resty.Client
	limiter *WindowLimiter
	rpc     *RPCClient
	wallet  *wallet.Wallet
}

// raydiumImpact is the flat slippage-impact estimate applied to direct-pool
// quotes in place of a route simulation.
const raydiumImpact = 0.01

func NewRaydiumClient(config Config, rpc *RPCClient, w *wallet.Wallet) *RaydiumClient {
	return &RaydiumClient{
		http:    newHTTPClient(config.RaydiumBaseURL, 15*time.Second),
		limiter: NewWindowLimiter(config.RaydiumRateLimit, config.RateLimitWindow),
		rpc:     rpc,
		wallet:  w,
	}
}

func (c *RaydiumClient) Name() string { return "raydium" }

type raydiumPriceResponse struct {
	Data map[string]string `json:"data"`
}

// Price returns the token price in SOL from the pool price endpoint.
func (c *RaydiumClient) Price(ctx context.Context, tokenAddress string) (float64, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("mints", tokenAddress).
		Get("/mint/price")
	if err != nil {
		return 0, fmt.Errorf("raydium price: %w", err)
	}
	if resp.StatusCode() != 200 {
		return 0, fmt.Errorf("raydium price: HTTP %d", resp.StatusCode())
	}

	var parsed raydiumPriceResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return 0, fmt.Errorf("raydium price: decode: %w", err)
	}

	raw, ok := parsed.Data[tokenAddress]
	if !ok {
		return 0, fmt.Errorf("raydium price: no pool price for %s", tokenAddress)
	}
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil || price <= 0 {
		return 0, fmt.Errorf("raydium price: bad price %q", raw)
	}
	return price, nil
}

// Quote estimates the swap output from the current pool price.
func (c *RaydiumClient) Quote(ctx context.Context, direction TradeDirection, tokenAddress string, amount, slippage float64) (*Quote, error) {
	price, err := c.Price(ctx, tokenAddress)
	if err != nil {
		return nil, err
	}

	var estimatedOutput float64
	if direction == DirectionBuy {
		estimatedOutput = amount / price
	} else {
		estimatedOutput = amount * price
	}

	payload, _ := json.Marshal(map[string]interface{}{
		"mint":        tokenAddress,
		"direction":   direction,
		"amount":      amount,
		"slippageBps": int(slippage * 10000),
	})

	return &Quote{
		Venue:           c.Name(),
		Direction:       direction,
		TokenAddress:    tokenAddress,
		InAmount:        amount,
		EstimatedOutput: estimatedOutput,
		Price:           price,
		Impact:          raydiumImpact,
		Payload:         payload,
	}, nil
}

type raydiumSwapResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Transaction string `json:"transaction"`
	} `json:"data"`
	Msg string `json:"msg"`
}

// Swap requests a serialized pool-swap transaction, signs and submits it.
func (c *RaydiumClient) Swap(ctx context.Context, quote *Quote) (*TradeResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	log := logger.WithFields(logger.Fields{
		"component": "RaydiumClient",
		"direction": quote.Direction,
		"token":     quote.TokenAddress,
	})

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]interface{}{
			"swap":      json.RawMessage(quote.Payload),
			"wallet":    c.wallet.PublicKey(),
			"txVersion": "V0",
		}).
		Post("/transaction/swap-base-in")
	if err != nil {
		return nil, fmt.Errorf("raydium swap: %w", err)
	}
	if resp.StatusCode() != 200 {
		return failedResult(c.Name(), quote, fmt.Sprintf("raydium swap: HTTP %d: %s", resp.StatusCode(), resp.String())), nil
	}

	var parsed raydiumSwapResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return nil, fmt.Errorf("raydium swap: decode: %w", err)
	}
	if !parsed.Success || parsed.Data.Transaction == "" {
		return failedResult(c.Name(), quote, fmt.Sprintf("raydium swap rejected: %s", parsed.Msg)), nil
	}

	signed, err := c.wallet.SignTransaction(parsed.Data.Transaction)
	if err != nil {
		return failedResult(c.Name(), quote, fmt.Sprintf("sign transaction: %v", err)), nil
	}

	signature, err := c.rpc.SendTransaction(ctx, signed)
	if err != nil {
		return failedResult(c.Name(), quote, fmt.Sprintf("send transaction: %v", err)), nil
	}
	log = log.WithField("signature", signature)

	status, err := c.rpc.ConfirmTransaction(ctx, signature)
	if err != nil {
		return failedResult(c.Name(), quote, fmt.Sprintf("confirm transaction: %v", err)), nil
	}
	if status != ConfirmConfirmed {
		log.WithField("status", status).Warn("Swap not confirmed")
		return failedResult(c.Name(), quote, fmt.Sprintf("transaction %s: %s", signature, status)), nil
	}

	log.Info("Swap confirmed")
	return &TradeResult{
		Success:       true,
		Venue:         c.Name(),
		TransactionID: signature,
		Price:         quote.Price,
		AmountIn:      quote.InAmount,
		AmountOut:     quote.EstimatedOutput,
		Timestamp:     time.Now(),
	}, nil
}
