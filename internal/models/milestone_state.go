package models

import (
	"sort"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

// MilestoneState stores which goal-progress thresholds were already announced
// for one (user, year, month) scope. One row per scope; the row for a new
// month starts empty and the previous month's row is simply left behind.
type MilestoneState struct {
	gorm.Model
	UserID   string `gorm:"uniqueIndex:idx_milestone_scope;not null" json:"user_id"`
	Year     int    `gorm:"uniqueIndex:idx_milestone_scope;not null" json:"year"`
	Month    int    `gorm:"uniqueIndex:idx_milestone_scope;not null" json:"month"`
	Notified string `json:"notified"` // comma-separated thresholds, e.g. "50,75"
}

// Thresholds returns the recorded thresholds in ascending order.
func (m *MilestoneState) Thresholds() []int {
	if m.Notified == "" {
		return nil
	}
	parts := strings.Split(m.Notified, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		if v, err := strconv.Atoi(strings.TrimSpace(p)); err == nil {
			out = append(out, v)
		}
	}
	sort.Ints(out)
	return out
}

// Has reports whether the threshold was already announced this month.
func (m *MilestoneState) Has(threshold int) bool {
	for _, t := range m.Thresholds() {
		if t == threshold {
			return true
		}
	}
	return false
}

// Mark records a threshold as announced. Duplicates are ignored.
func (m *MilestoneState) Mark(threshold int) {
	if m.Has(threshold) {
		return
	}
	ts := append(m.Thresholds(), threshold)
	sort.Ints(ts)
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = strconv.Itoa(t)
	}
	m.Notified = strings.Join(parts, ",")
}
