package trading

import (
	"context"
	"fmt"
	"time"

	logger "github.com/sirupsen/logrus"

	"memetrader/src/connectors"
)

// BalanceSource supplies wallet balances for the pre-trade checks.
type BalanceSource interface {
	GetBalance(ctx context.Context, pubkey string) (float64, error)
	GetTokenBalance(ctx context.Context, owner, mint string) (float64, error)
}

// Trader executes buys and sells through the venue router and serves price
// lookups through a short-TTL cache.
type Trader struct {
	router *Router
	rpc    BalanceSource
	pubkey string
	cache  *priceCache
}

func NewTrader(config Config, router *Router, rpc BalanceSource, pubkey string) *Trader {
	return &Trader{
		router: router,
		rpc:    rpc,
		pubkey: pubkey,
		cache:  newPriceCache(config.PriceCacheTTL),
	}
}

// BuyToken swaps SOL into the token. The SOL balance is checked before any
// quote is requested; an insufficient balance is a failed result, not an
// error, so the caller's skip/retry semantics stay uniform.
func (t *Trader) BuyToken(ctx context.Context, tokenAddress string, amountSOL, slippage float64) (*connectors.TradeResult, error) {
	log := logger.WithFields(logger.Fields{
		"component":  "Trader",
		"token":      tokenAddress,
		"amount_sol": amountSOL,
	})
	log.Info("Attempting buy")

	balance, err := t.rpc.GetBalance(ctx, t.pubkey)
	if err != nil {
		return nil, fmt.Errorf("buy preflight: %w", err)
	}
	if balance < amountSOL {
		return &connectors.TradeResult{
			Success:   false,
			Error:     fmt.Sprintf("insufficient SOL balance: %.4f < %.4f", balance, amountSOL),
			Timestamp: time.Now(),
		}, nil
	}

	quote, venue, err := t.router.Quote(ctx, connectors.DirectionBuy, tokenAddress, amountSOL, slippage)
	if err != nil {
		return &connectors.TradeResult{
			Success:   false,
			Error:     fmt.Sprintf("failed to get quote: %v", err),
			Timestamp: time.Now(),
		}, nil
	}

	result, err := venue.Swap(ctx, quote)
	if err != nil {
		return nil, fmt.Errorf("buy via %s: %w", venue.Name(), err)
	}

	if result.Success {
		t.cache.put(tokenAddress, result.Price)
		log.WithFields(logger.Fields{
			"venue": result.Venue,
			"price": result.Price,
			"tx":    result.TransactionID,
		}).Info("Buy executed")
	}
	return result, nil
}

// SellToken swaps tokens back into SOL.
func (t *Trader) SellToken(ctx context.Context, tokenAddress string, amountTokens, slippage float64) (*connectors.TradeResult, error) {
	log := logger.WithFields(logger.Fields{
		"component":     "Trader",
		"token":         tokenAddress,
		"amount_tokens": amountTokens,
	})
	log.Info("Attempting sell")

	balance, err := t.rpc.GetTokenBalance(ctx, t.pubkey, tokenAddress)
	if err != nil {
		return nil, fmt.Errorf("sell preflight: %w", err)
	}
	if balance < amountTokens {
		return &connectors.TradeResult{
			Success:   false,
			Error:     fmt.Sprintf("insufficient token balance: %.2f < %.2f", balance, amountTokens),
			Timestamp: time.Now(),
		}, nil
	}

	quote, venue, err := t.router.Quote(ctx, connectors.DirectionSell, tokenAddress, amountTokens, slippage)
	if err != nil {
		return &connectors.TradeResult{
			Success:   false,
			Error:     fmt.Sprintf("failed to get quote: %v", err),
			Timestamp: time.Now(),
		}, nil
	}

	result, err := venue.Swap(ctx, quote)
	if err != nil {
		return nil, fmt.Errorf("sell via %s: %w", venue.Name(), err)
	}

	if result.Success {
		log.WithFields(logger.Fields{
			"venue": result.Venue,
			"price": result.Price,
			"tx":    result.TransactionID,
		}).Info("Sell executed")
	}
	return result, nil
}

// GetTokenPrice serves monitoring price ticks. Cache hit within the TTL
// avoids the venue call entirely.
func (t *Trader) GetTokenPrice(ctx context.Context, tokenAddress string) (float64, error) {
	if price, ok := t.cache.get(tokenAddress); ok {
		return price, nil
	}

	price, err := t.router.Price(ctx, tokenAddress)
	if err != nil {
		return 0, err
	}

	t.cache.put(tokenAddress, price)
	return price, nil
}
