package models

import "gorm.io/gorm"

// OperationDraft is the autosaved working state of an arbitrage operation
// still being edited. One row per user, overwritten on every flush and
// cleared when the operation is committed or abandoned.
type OperationDraft struct {
	gorm.Model
	UserID  string `gorm:"uniqueIndex;not null" json:"user_id"`
	Mode    string `json:"mode"`
	Payload string `json:"payload"` // JSON-encoded draft legs/totals
}
