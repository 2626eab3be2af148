package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	ModeDutching = "dutching"
	ModeSurebet  = "surebet"
)

// OperationHistory records the terminal state of a committed arbitrage
// operation with enough detail to reverse it.
type OperationHistory struct {
	gorm.Model
	EntryID       string    `gorm:"uniqueIndex;not null" json:"entry_id"`
	UserID        string    `gorm:"index;not null" json:"user_id"`
	Mode          string    `json:"mode"` // "dutching" or "surebet"
	Legs          string    `json:"legs"` // JSON snapshot of the operation's legs
	Total         float64   `json:"total"`
	Return        float64   `json:"return"`
	Profit        float64   `json:"profit"`
	Date          string    `gorm:"index" json:"date"`
	TransactionID uint      `json:"transaction_id,omitempty"` // 0 when the close had zero profit
	ClosedAt      time.Time `json:"closed_at"`
}
