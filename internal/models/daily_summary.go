package models

import "gorm.io/gorm"

// DailySummary is the immutable-by-default snapshot of one closed calendar day.
// Profit and Margin are the same quantity under two historical names; they are
// only ever written together through SetProfit/AddProfit.
type DailySummary struct {
	gorm.Model
	UserID           string  `gorm:"uniqueIndex:idx_summary_user_date;not null" json:"user_id"`
	Date             string  `gorm:"uniqueIndex:idx_summary_user_date;not null" json:"date"`
	TotalDeposits    float64 `json:"total_deposits"`
	TotalWithdraws   float64 `json:"total_withdraws"`
	Profit           float64 `json:"profit"`
	Margin           float64 `json:"margin"`
	TransactionCount int     `json:"transaction_count"`
	Snapshot         string  `json:"snapshot,omitempty"`    // JSON list of the transactions at closure time
	ByEmployee       string  `json:"by_employee,omitempty"` // JSON per-employee breakdown
}

// SetProfit writes the canonical profit value to both columns.
func (s *DailySummary) SetProfit(v float64) {
	s.Profit = v
	s.Margin = v
}

// AddProfit applies a signed delta through SetProfit.
func (s *DailySummary) AddProfit(delta float64) {
	s.SetProfit(s.Profit + delta)
}
