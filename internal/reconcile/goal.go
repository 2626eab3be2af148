package reconcile

import (
	"time"

	"bet-ops-dashboard-go/internal/models"
	"go.uber.org/zap"
)

// GoalProgress is the month-to-date result against the stored monthly goal.
type GoalProgress struct {
	MonthlyProfit float64 `json:"monthly_profit"`
	Goal          float64 `json:"goal"`
	Percentage    float64 `json:"percentage"`
}

// ComputeMonthlyGoalProgress sums the month's profit from closed summaries
// plus open transactions and derives the percentage toward the goal.
//
// Closed dates contribute their stored profit; transactions on those dates
// are skipped entirely. A net-result transaction (Surebet/FreeBet close) on
// any date that has a summary is also skipped, because its effect is already
// baked into that summary's total - counting it again would double the
// operation's profit. The percentage is capped at 100 but never clamped
// below its natural (possibly negative) value; a non-positive goal yields 0.
func ComputeMonthlyGoalProgress(logger *zap.Logger, summaries []models.DailySummary, txs []models.Transaction, goal float64, year int, month time.Month, today string) GoalProgress {
	first, last := MonthBounds(year, month)

	closed := make(map[string]float64)
	summarized := make(map[string]bool)
	for _, s := range summaries {
		day, ok := ParseDay(s.Date)
		if !ok {
			logger.Warn("Dropping daily summary with unparseable date",
				zap.Uint("summary_id", s.ID),
				zap.String("raw_date", s.Date))
			continue
		}
		summarized[day] = true
		if day != today {
			closed[day] = s.Profit
		}
	}

	var monthlyProfit float64
	for day, profit := range closed {
		if day >= first && day <= last {
			monthlyProfit += profit
		}
	}

	for _, t := range txs {
		if t.Date < first || t.Date > last {
			continue
		}
		if _, isClosed := closed[t.Date]; isClosed {
			continue
		}
		if t.IsNetResult() && summarized[t.Date] {
			continue
		}
		monthlyProfit += t.ProfitContribution()
	}

	progress := GoalProgress{MonthlyProfit: monthlyProfit, Goal: goal}
	if goal > 0 {
		progress.Percentage = monthlyProfit / goal * 100
		if progress.Percentage > 100 {
			progress.Percentage = 100
		}
	}
	return progress
}
