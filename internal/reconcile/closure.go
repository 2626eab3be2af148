package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bet-ops-dashboard-go/internal/arb"
	"bet-ops-dashboard-go/internal/models"
	"bet-ops-dashboard-go/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrPartialWrite marks a close or reversal that failed midway and left
// persisted state inconsistent. The store offers no multi-record
// transactions, so nothing is rolled back automatically; the caller must
// flag the operation for manual reconciliation.
var ErrPartialWrite = errors.New("partial write, manual reconciliation required")

// CloseMetadata captures the terminal state of an arbitrage operation being
// committed, with enough detail to reverse it later.
type CloseMetadata struct {
	Mode        string    `json:"mode"` // models.ModeDutching or models.ModeSurebet
	Legs        []arb.Leg `json:"legs"`
	Total       float64   `json:"total"`
	Return      float64   `json:"return"`
	Description string    `json:"description"`
}

// CloseResult reports what a close wrote.
type CloseResult struct {
	EntryID       string `json:"entry_id"`
	TransactionID uint   `json:"transaction_id,omitempty"`
	Date          string `json:"date"`
}

// ClosureService folds arbitrage operation results into the ledger: one
// net-result transaction, an additive update to today's summary, and a
// history entry supporting reversal.
type ClosureService struct {
	store  store.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewClosureService creates a new closure service.
func NewClosureService(st store.Store, logger *zap.Logger) *ClosureService {
	return &ClosureService{store: st, logger: logger.Named("closure"), now: time.Now}
}

// CloseOperation commits an arbitrage operation's profit dated today.
//
// A zero profit skips both the transaction write and the summary touch but
// still records the history entry, so the draft reaches its terminal state.
// Each write is awaited before the next; a failure after the transaction was
// created is surfaced wrapped in ErrPartialWrite.
func (s *ClosureService) CloseOperation(ctx context.Context, userID string, profit float64, meta CloseMetadata) (CloseResult, error) {
	today := s.now().Format(DayFormat)
	res := CloseResult{Date: today}

	if profit != 0 {
		txType := models.TypeWithdraw
		if profit < 0 {
			txType = models.TypeDeposit
		}
		desc := meta.Description
		if desc == "" {
			switch meta.Mode {
			case models.ModeDutching:
				desc = "Dutching"
			default:
				desc = "Surebet"
			}
		}

		// Net-result rows carry the signed result in Amount; the type only
		// records the cash-movement direction for display.
		tx := &models.Transaction{
			UserID:      userID,
			Type:        txType,
			Kind:        models.KindArbitrageResult,
			Amount:      profit,
			Date:        today,
			Description: desc,
		}
		if err := s.store.CreateTransaction(ctx, tx); err != nil {
			return res, fmt.Errorf("close operation: %w", err)
		}
		res.TransactionID = tx.ID

		if err := s.applySummaryDelta(ctx, userID, today, profit); err != nil {
			return res, fmt.Errorf("%w: transaction %d created but summary update failed: %w",
				ErrPartialWrite, tx.ID, err)
		}
	}

	legs, err := json.Marshal(meta.Legs)
	if err != nil {
		return res, fmt.Errorf("close operation: encode legs: %w", err)
	}
	entry := &models.OperationHistory{
		EntryID:       uuid.NewString(),
		UserID:        userID,
		Mode:          meta.Mode,
		Legs:          string(legs),
		Total:         meta.Total,
		Return:        meta.Return,
		Profit:        profit,
		Date:          today,
		TransactionID: res.TransactionID,
		ClosedAt:      s.now(),
	}
	if err := s.store.CreateHistoryEntry(ctx, entry); err != nil {
		if profit != 0 {
			return res, fmt.Errorf("%w: ledger updated but history entry failed: %w",
				ErrPartialWrite, err)
		}
		return res, fmt.Errorf("close operation: %w", err)
	}
	res.EntryID = entry.EntryID

	s.logger.Info("Operation closed",
		zap.String("entry_id", entry.EntryID),
		zap.String("mode", meta.Mode),
		zap.Float64("profit", profit),
		zap.Uint("transaction_id", res.TransactionID))
	return res, nil
}

// applySummaryDelta upserts the day's summary with an additive contribution.
func (s *ClosureService) applySummaryDelta(ctx context.Context, userID, date string, profit float64) error {
	summary, err := s.store.GetDailySummaryByDate(ctx, userID, date)
	if err != nil {
		return err
	}
	if summary == nil {
		summary = &models.DailySummary{UserID: userID, Date: date}
	}

	if profit > 0 {
		summary.TotalWithdraws += profit
	} else {
		summary.TotalDeposits += -profit
	}
	summary.AddProfit(profit)
	summary.TransactionCount++

	return s.store.UpsertDailySummary(ctx, summary)
}

// CloseDay folds a date's open transactions into one immutable summary with
// a snapshot of the transactions that composed it and a per-employee
// breakdown. Closing an already-closed date is rejected; posting to a closed
// date later goes through the additive-delta path instead.
func (s *ClosureService) CloseDay(ctx context.Context, userID, date string) (*models.DailySummary, error) {
	day, ok := ParseDay(date)
	if !ok {
		return nil, fmt.Errorf("close day: invalid date %q", date)
	}

	existing, err := s.store.GetDailySummaryByDate(ctx, userID, day)
	if err != nil {
		return nil, fmt.Errorf("close day: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("close day: %s is already closed", day)
	}

	txs, err := s.store.ListTransactions(ctx, userID, &store.DateRange{From: day, To: day})
	if err != nil {
		return nil, fmt.Errorf("close day: %w", err)
	}

	summary := &models.DailySummary{UserID: userID, Date: day, TransactionCount: len(txs)}
	byEmployee := make(map[string]float64)
	var profit float64
	for i := range txs {
		tx := &txs[i]
		contribution := tx.ProfitContribution()
		profit += contribution
		if tx.EmployeeID != "" {
			byEmployee[tx.EmployeeID] += contribution
		}
		if contribution >= 0 {
			summary.TotalWithdraws += contribution
		} else {
			summary.TotalDeposits += -contribution
		}
	}
	summary.SetProfit(profit)

	if snapshot, err := json.Marshal(txs); err == nil {
		summary.Snapshot = string(snapshot)
	}
	if breakdown, err := json.Marshal(byEmployee); err == nil {
		summary.ByEmployee = string(breakdown)
	}

	if err := s.store.UpsertDailySummary(ctx, summary); err != nil {
		return nil, fmt.Errorf("close day: %w", err)
	}

	s.logger.Info("Day closed",
		zap.String("date", day),
		zap.Float64("profit", profit),
		zap.Int("transactions", len(txs)))
	return summary, nil
}

// ReopenDay deletes a date's closure so its transactions aggregate live
// again. Reopening a date that was never closed is a no-op.
func (s *ClosureService) ReopenDay(ctx context.Context, userID, date string) error {
	day, ok := ParseDay(date)
	if !ok {
		return fmt.Errorf("reopen day: invalid date %q", date)
	}
	if err := s.store.DeleteDailySummary(ctx, userID, day); err != nil {
		return fmt.Errorf("reopen day: %w", err)
	}
	s.logger.Info("Day reopened", zap.String("date", day))
	return nil
}

// DeleteHistoryEntry reverses a committed operation: the profit is subtracted
// back out of the day's summary, the linked transaction is removed, and the
// history record deleted. A summary or transaction that no longer exists is
// skipped without failing the rest of the deletion.
func (s *ClosureService) DeleteHistoryEntry(ctx context.Context, userID, entryID string) error {
	entry, err := s.store.GetHistoryEntry(ctx, userID, entryID)
	if err != nil {
		return fmt.Errorf("delete history entry: %w", err)
	}
	if entry == nil {
		s.logger.Warn("History entry already gone", zap.String("entry_id", entryID))
		return nil
	}

	if entry.Profit != 0 {
		if err := s.revertSummaryDelta(ctx, userID, entry); err != nil {
			return fmt.Errorf("delete history entry: %w", err)
		}
	}

	if entry.TransactionID != 0 {
		if err := s.store.DeleteTransaction(ctx, userID, entry.TransactionID); err != nil {
			return fmt.Errorf("%w: summary reverted but transaction delete failed: %w",
				ErrPartialWrite, err)
		}
	}

	if err := s.store.DeleteHistoryEntry(ctx, userID, entryID); err != nil {
		return fmt.Errorf("%w: ledger reverted but history delete failed: %w",
			ErrPartialWrite, err)
	}

	s.logger.Info("Operation reversed",
		zap.String("entry_id", entryID),
		zap.Float64("profit", entry.Profit))
	return nil
}

func (s *ClosureService) revertSummaryDelta(ctx context.Context, userID string, entry *models.OperationHistory) error {
	summary, err := s.store.GetDailySummaryByDate(ctx, userID, entry.Date)
	if err != nil {
		return err
	}
	if summary == nil {
		s.logger.Warn("Summary already gone, skipping rollback",
			zap.String("entry_id", entry.EntryID),
			zap.String("date", entry.Date))
		return nil
	}

	summary.AddProfit(-entry.Profit)
	if entry.Profit > 0 {
		summary.TotalWithdraws -= entry.Profit
	} else {
		summary.TotalDeposits -= -entry.Profit
	}
	// deposit/withdraw totals never go negative
	if summary.TotalWithdraws < 0 {
		summary.TotalWithdraws = 0
	}
	if summary.TotalDeposits < 0 {
		summary.TotalDeposits = 0
	}
	if summary.TransactionCount > 0 {
		summary.TransactionCount--
	}

	if summary.TransactionCount == 0 {
		// The close seeded this summary; removing its last contribution
		// removes the closure itself.
		return s.store.DeleteDailySummary(ctx, userID, entry.Date)
	}
	return s.store.UpsertDailySummary(ctx, summary)
}
