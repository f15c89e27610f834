package connectors

import "time"

type TradeDirection string

const (
	DirectionBuy  TradeDirection = "buy"
	DirectionSell TradeDirection = "sell"
)

// Quote is a venue price estimate for one trade attempt. Ephemeral, produced
// and consumed within the attempt, never persisted on its own.
type Quote struct {
	Venue           string
	Direction       TradeDirection
	TokenAddress    string
	InAmount        float64
	EstimatedOutput float64
	Price           float64
	Impact          float64
	// Raw payload needed by the venue to build the swap transaction.
	Payload []byte
}

// TradeResult is the normalized outcome of one executed (or failed) trade.
type TradeResult struct {
	Success       bool
	Venue         string
	TransactionID string
	Price         float64
	AmountIn      float64
	AmountOut     float64
	Error         string
	Timestamp     time.Time
}

// ConfirmStatus classifies the result of polling a submitted transaction.
type ConfirmStatus string

const (
	ConfirmConfirmed ConfirmStatus = "confirmed"
	ConfirmFailed    ConfirmStatus = "failed"
	ConfirmTimedOut  ConfirmStatus = "timed_out"
)
