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

const (
	// SOLMint is the wrapped SOL mint address, the base side of every swap.
	SOLMint = "So11111111111111111111111111111111111111112"

	lamportsPerSOL = 1e9
	// Token decimals are assumed 9 as on most SPL mints; venues report
	// amounts in base units.
	defaultTokenDecimals = 9
)

// JupiterClient is the primary venue: a best-price aggregator across many
// liquidity pools. Swaps are built by the aggregator, signed locally and
// submitted through the Solana RPC.
type JupiterClient struct {
	http    *resty.Client
	limiter *WindowLimiter
	rpc     *RPCClient
	wallet  *wallet.Wallet

	priorityFeeLamports int64
}

func NewJupiterClient(config Config, rpc *RPCClient, w *wallet.Wallet) *JupiterClient {
	return &JupiterClient{
		http:                newHTTPClient(config.JupiterBaseURL, 15*time.Second),
		limiter:             NewWindowLimiter(config.JupiterRateLimit, config.RateLimitWindow),
		rpc:                 rpc,
		wallet:              w,
		priorityFeeLamports: config.PriorityFeeLamports,
	}
}

func (c *JupiterClient) Name() string { return "jupiter" }

type jupiterQuoteResponse struct {
	InAmount       string `json:"inAmount"`
	OutAmount      string `json:"outAmount"`
	PriceImpactPct string `json:"priceImpactPct"`
}

// Quote asks the aggregator for a route. Buy quotes swap SOL into the token,
// sell quotes swap the token back into SOL.
func (c *JupiterClient) Quote(ctx context.Context, direction TradeDirection, tokenAddress string, amount, slippage float64) (*Quote, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	inputMint, outputMint := SOLMint, tokenAddress
	inBaseUnits := int64(amount * lamportsPerSOL)
	if direction == DirectionSell {
		inputMint, outputMint = tokenAddress, SOLMint
		inBaseUnits = int64(amount * pow10(defaultTokenDecimals))
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"inputMint":   inputMint,
			"outputMint":  outputMint,
			"amount":      strconv.FormatInt(inBaseUnits, 10),
			"slippageBps": strconv.Itoa(int(slippage * 10000)),
		}).
		Get("/quote")
	if err != nil {
		return nil, fmt.Errorf("jupiter quote: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("jupiter quote: HTTP %d: %s", resp.StatusCode(), resp.String())
	}

	var parsed jupiterQuoteResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return nil, fmt.Errorf("jupiter quote: decode: %w", err)
	}

	outBaseUnits, err := strconv.ParseFloat(parsed.OutAmount, 64)
	if err != nil || outBaseUnits <= 0 {
		return nil, fmt.Errorf("jupiter quote: bad outAmount %q", parsed.OutAmount)
	}
	impact, _ := strconv.ParseFloat(parsed.PriceImpactPct, 64)

	var estimatedOutput, price float64
	if direction == DirectionBuy {
		estimatedOutput = outBaseUnits / pow10(defaultTokenDecimals)
		price = amount / estimatedOutput
	} else {
		estimatedOutput = outBaseUnits / lamportsPerSOL
		price = estimatedOutput / amount
	}

	return &Quote{
		Venue:           c.Name(),
		Direction:       direction,
		TokenAddress:    tokenAddress,
		InAmount:        amount,
		EstimatedOutput: estimatedOutput,
		Price:           price,
		Impact:          impact,
		Payload:         resp.Body(),
	}, nil
}

type jupiterSwapResponse struct {
	SwapTransaction string `json:"swapTransaction"`
}

// Swap builds the swap transaction via the aggregator, signs it with the
// wallet keypair, submits it and polls for confirmation. A confirmation
// timeout is a non-fatal failure, never assumed successful.
func (c *JupiterClient) Swap(ctx context.Context, quote *Quote) (*TradeResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	log := logger.WithFields(logger.Fields{
		"component": "JupiterClient",
		"direction": quote.Direction,
		"token":     quote.TokenAddress,
	})

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]interface{}{
			"quoteResponse":             json.RawMessage(quote.Payload),
			"userPublicKey":             c.wallet.PublicKey(),
			"wrapAndUnwrapSol":          true,
			"prioritizationFeeLamports": c.priorityFeeLamports,
		}).
		Post("/swap")
	if err != nil {
		return nil, fmt.Errorf("jupiter swap: %w", err)
	}
	if resp.StatusCode() != 200 {
		return failedResult(c.Name(), quote, fmt.Sprintf("jupiter swap: HTTP %d: %s", resp.StatusCode(), resp.String())), nil
	}

	var parsed jupiterSwapResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return nil, fmt.Errorf("jupiter swap: decode: %w", err)
	}

	signed, err := c.wallet.SignTransaction(parsed.SwapTransaction)
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

type jupiterPriceResponse struct {
	Data map[string]struct {
		Price float64 `json:"price"`
	} `json:"data"`
}

// Price returns the token price in SOL from the aggregator's price API.
func (c *JupiterClient) Price(ctx context.Context, tokenAddress string) (float64, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"ids":     tokenAddress,
			"vsToken": SOLMint,
		}).
		Get("/price")
	if err != nil {
		return 0, fmt.Errorf("jupiter price: %w", err)
	}
	if resp.StatusCode() != 200 {
		return 0, fmt.Errorf("jupiter price: HTTP %d", resp.StatusCode())
	}

	var parsed jupiterPriceResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return 0, fmt.Errorf("jupiter price: decode: %w", err)
	}

	entry, ok := parsed.Data[tokenAddress]
	if !ok || entry.Price <= 0 {
		return 0, fmt.Errorf("jupiter price: no price for %s", tokenAddress)
	}
	return entry.Price, nil
}

func failedResult(venue string, quote *Quote, errMsg string) *TradeResult {
	return &TradeResult{
		Success:   false,
		Venue:     venue,
		AmountIn:  quote.InAmount,
		Error:     errMsg,
		Timestamp: time.Now(),
	}
}

func pow10(n int) float64 {
	v := 1.0
	for i := 0; i < n; i++ {
		v *= 10
	}
	return v
}
