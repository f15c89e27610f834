package model

import "time"

const (
	TradeSideBuy  = "BUY"
	TradeSideSell = "SELL"
)

// TransactionLog records every executed venue trade, successful or not.
type TransactionLog struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Side          string    `gorm:"size:10" json:"side"`
	Address       string    `gorm:"size:60;index" json:"address"`
	Symbol        string    `gorm:"size:20" json:"symbol"`
	Venue         string    `gorm:"size:20" json:"venue"`
	TransactionID string    `gorm:"size:120" json:"transaction_id"`
	Price         float64   `json:"price"`
	AmountIn      float64   `json:"amount_in"`
	AmountOut     float64   `json:"amount_out"`
	Success       bool      `json:"success"`
	Error         string    `json:"error,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func (TransactionLog) TableName() string {
	return "transaction_logs"
}
