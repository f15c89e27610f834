package model

import "time"

// TokenSignal is a single mention of a candidate token pushed by an external
// collector. Immutable once created; confidence is computed upstream and
// treated as opaque here.
type TokenSignal struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Symbol     string    `gorm:"size:20" json:"symbol"`
	Address    string    `gorm:"size:60;index" json:"address"`
	Source     string    `gorm:"size:30" json:"source"`
	Timestamp  time.Time `json:"timestamp"`
	Text       string    `json:"text"`
	Author     string    `gorm:"size:120" json:"author"`
	URL        string    `json:"url"`
	Confidence float64   `json:"confidence"`
	CreatedAt  time.Time `json:"created_at"`
}

func (TokenSignal) TableName() string {
	return "token_signals"
}
