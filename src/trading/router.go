package trading

import (
	"context"
	"errors"
	"fmt"

	logger "github.com/sirupsen/logrus"

	"memetrader/src/connectors"
)

// VenueConnector is a liquidity source able to quote and execute swaps.
type VenueConnector interface {
	Name() string
	Quote(ctx context.Context, direction connectors.TradeDirection, tokenAddress string, amount, slippage float64) (*connectors.Quote, error)
	Swap(ctx context.Context, quote *connectors.Quote) (*connectors.TradeResult, error)
	Price(ctx context.Context, tokenAddress string) (float64, error)
}

// ErrNoQuote means no venue produced a usable quote for this attempt.
var ErrNoQuote = errors.New("no venue returned a quote")

// Router applies the fail-fast routing policy: venues are tried in order and
// the first non-error quote wins. No price comparison is made across venues
// once one succeeds.
type Router struct {
	venues []VenueConnector
}

func NewRouter(venues ...VenueConnector) *Router {
	return &Router{venues: venues}
}

// Quote walks the venue list and returns the first successful quote together
// with the venue that produced it. When every venue fails, the last venue
// error is wrapped into ErrNoQuote so the caller can record what went wrong.
func (r *Router) Quote(ctx context.Context, direction connectors.TradeDirection, tokenAddress string, amount, slippage float64) (*connectors.Quote, VenueConnector, error) {
	var lastErr error
	for _, venue := range r.venues {
		quote, err := venue.Quote(ctx, direction, tokenAddress, amount, slippage)
		if err != nil {
			logger.WithFields(logger.Fields{
				"component": "Router",
				"venue":     venue.Name(),
				"token":     tokenAddress,
				"direction": direction,
			}).WithError(err).Warn("Venue quote failed, trying next")
			lastErr = fmt.Errorf("%s: %w", venue.Name(), err)
			continue
		}
		return quote, venue, nil
	}
	if lastErr != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrNoQuote, lastErr)
	}
	return nil, nil, ErrNoQuote
}

// Price returns the first venue price that resolves.
func (r *Router) Price(ctx context.Context, tokenAddress string) (float64, error) {
	var lastErr error = ErrNoQuote
	for _, venue := range r.venues {
		price, err := venue.Price(ctx, tokenAddress)
		if err == nil {
			return price, nil
		}
		lastErr = err
	}
	return 0, lastErr
}
