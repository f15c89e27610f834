package model

import "time"

// StatisticsSnapshot is a periodic aggregate written by the statistics loop.
type StatisticsSnapshot struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	TokensDiscovered int64     `json:"tokens_discovered"`
	TokensAssessed   int64     `json:"tokens_assessed"`
	PositionsOpened  int64     `json:"positions_opened"`
	PositionsClosed  int64     `json:"positions_closed"`
	TotalPnlSOL      float64   `json:"total_pnl_sol"`
	WinRate          float64   `json:"win_rate"`
	CreatedAt        time.Time `json:"created_at"`
}

func (StatisticsSnapshot) TableName() string {
	return "statistics_snapshots"
}
