package models

import (
	"strings"

	"gorm.io/gorm"
)

const (
	TypeDeposit  = "deposit"
	TypeWithdraw = "withdraw"

	// KindPlain is ordinary cash movement; the sign of its profit
	// contribution follows the transaction type.
	KindPlain = "plain"
	// KindArbitrageResult carries a signed net operation result in Amount,
	// independent of the transaction type.
	KindArbitrageResult = "arbitrage_result"
)

// Transaction represents one ledger entry.
type Transaction struct {
	gorm.Model
	UserID      string  `gorm:"index;not null" json:"user_id"`
	EmployeeID  string  `json:"employee_id,omitempty"`
	PlatformID  string  `json:"platform_id,omitempty"`
	Type        string  `gorm:"not null" json:"type"` // "deposit" or "withdraw"
	Kind        string  `gorm:"default:plain" json:"kind"`
	Amount      float64 `gorm:"not null" json:"amount"`
	Date        string  `gorm:"index;not null" json:"date"` // calendar day, "2006-01-02"
	Description string  `json:"description,omitempty"`
}

// IsNetResult reports whether this entry already carries a net profit figure.
// Rows written by the closure service are tagged with KindArbitrageResult;
// rows imported from older data are recognized by their description prefix.
func (t *Transaction) IsNetResult() bool {
	if t.Kind == KindArbitrageResult {
		return true
	}
	return strings.HasPrefix(t.Description, "Surebet") || strings.HasPrefix(t.Description, "FreeBet")
}

// ProfitContribution returns the signed effect of this entry on the day's
// profit: withdraws count positive, deposits negative, and net-result rows
// contribute their stored amount as-is.
func (t *Transaction) ProfitContribution() float64 {
	if t.IsNetResult() {
		return t.Amount
	}
	if t.Type == TypeWithdraw {
		return t.Amount
	}
	return -t.Amount
}
