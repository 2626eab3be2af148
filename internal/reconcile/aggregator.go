// Package reconcile merges closed daily snapshots with open ledger
// transactions into per-day profit figures, tracks monthly goal progress, and
// folds committed arbitrage operations into persisted state.
package reconcile

import (
	"bet-ops-dashboard-go/internal/models"
	"go.uber.org/zap"
)

// AggregateDailyProfits reconciles closed history with live transactions into
// a profit-per-day map with no double counting.
//
// Closed dates keep the profit stored on their summary. Transactions on a
// closed date are superseded by that summary and ignored. Today is the
// exception in both directions: a summary dated today is stale by definition
// (the day is still open) and is never trusted, and today's transactions are
// always recomputed live, overriding any leftover stored value.
//
// Summaries whose date cannot be parsed are dropped from the aggregation with
// a warning rather than aborting the batch.
func AggregateDailyProfits(logger *zap.Logger, summaries []models.DailySummary, txs []models.Transaction, today string) map[string]float64 {
	closed := make(map[string]float64, len(summaries))
	result := make(map[string]float64, len(summaries))

	for _, s := range summaries {
		day, ok := ParseDay(s.Date)
		if !ok {
			logger.Warn("Dropping daily summary with unparseable date",
				zap.Uint("summary_id", s.ID),
				zap.String("raw_date", s.Date))
			continue
		}
		if day == today {
			// Recomputed from transactions below, even when no transactions
			// remain for the day.
			result[day] = 0
			continue
		}
		closed[day] = s.Profit
		result[day] = s.Profit
	}

	open := make(map[string]float64)
	for _, t := range txs {
		if _, isClosed := closed[t.Date]; isClosed {
			continue
		}
		open[t.Date] += t.ProfitContribution()
	}

	for day, profit := range open {
		result[day] = profit
	}
	return result
}
