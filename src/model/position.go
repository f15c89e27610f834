package model

import "time"

type PositionStatus string

const (
	PositionStatusOpen         PositionStatus = "OPEN"
	PositionStatusPartialClose PositionStatus = "PARTIAL_CLOSE"
	PositionStatusClosed       PositionStatus = "CLOSED"
)

// Live reports whether the position still holds tokens. At most one live
// position may exist per token address system-wide.
func (s PositionStatus) Live() bool {
	return s == PositionStatusOpen || s == PositionStatusPartialClose
}

// CanTransition enforces the position state machine:
// OPEN -> PARTIAL_CLOSE -> CLOSED and OPEN -> CLOSED. CLOSED is terminal.
func (s PositionStatus) CanTransition(to PositionStatus) bool {
	switch s {
	case PositionStatusOpen:
		return to == PositionStatusPartialClose || to == PositionStatusClosed
	case PositionStatusPartialClose:
		return to == PositionStatusClosed
	}
	return false
}

type ExitReason string

const (
	ExitReasonTakeProfit ExitReason = "TAKE_PROFIT"
	ExitReasonStopLoss   ExitReason = "STOP_LOSS"
	ExitReasonTimeLimit  ExitReason = "TIME_LIMIT"
)

// Position is one holding opened by a successful buy. Mutated by the monitor
// on price ticks and on partial/full exits until it reaches CLOSED.
type Position struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Address         string         `gorm:"size:60;uniqueIndex" json:"address"`
	Symbol          string         `gorm:"size:20" json:"symbol"`
	EntryPrice      float64        `json:"entry_price"`
	CurrentPrice    float64        `json:"current_price"`
	AmountSOL       float64        `json:"amount_sol"`
	TokensHeld      float64        `json:"tokens_held"`
	EntryTimestamp  time.Time      `json:"entry_timestamp"`
	ExitTimestamp   *time.Time     `json:"exit_timestamp,omitempty"`
	Status          PositionStatus `gorm:"size:20;not null;default:OPEN" json:"status"`
	PnlPercent      float64        `json:"pnl_percent"`
	StopLossPrice   float64        `json:"stop_loss_price"`
	TakeProfitPrice float64        `json:"take_profit_price"`
	ExitReason      ExitReason     `gorm:"size:20" json:"exit_reason,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

func (Position) TableName() string {
	return "positions"
}
