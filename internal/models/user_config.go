package models

import "gorm.io/gorm"

// UserConfig holds per-user settings. The monthly goal is a single scalar
// with overwrite semantics; no history is kept.
type UserConfig struct {
	gorm.Model
	UserID      string  `gorm:"uniqueIndex;not null" json:"user_id"`
	MonthlyGoal float64 `json:"monthly_goal"`
}
