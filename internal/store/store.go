package store

import (
	"context"

	"bet-ops-dashboard-go/internal/models"
)

// DateRange bounds a transaction query by calendar day, inclusive on both
// ends. An empty field means unbounded on that side.
type DateRange struct {
	From string
	To   string
}

// Store is the persistence collaborator for the reconciliation core. It
// exposes plain create/read/update/delete shapes; numeric deltas on summaries
// are applied by the caller before upserting, never inside the store. The
// store makes no atomicity promise across calls.
type Store interface {
	ListTransactions(ctx context.Context, userID string, r *DateRange) ([]models.Transaction, error)
	CreateTransaction(ctx context.Context, tx *models.Transaction) error
	DeleteTransaction(ctx context.Context, userID string, id uint) error

	ListDailySummaries(ctx context.Context, userID string) ([]models.DailySummary, error)
	// GetDailySummaryByDate returns (nil, nil) when no summary exists for the date.
	GetDailySummaryByDate(ctx context.Context, userID, date string) (*models.DailySummary, error)
	UpsertDailySummary(ctx context.Context, s *models.DailySummary) error
	DeleteDailySummary(ctx context.Context, userID, date string) error

	CreateHistoryEntry(ctx context.Context, e *models.OperationHistory) error
	// GetHistoryEntry returns (nil, nil) when no entry matches.
	GetHistoryEntry(ctx context.Context, userID, entryID string) (*models.OperationHistory, error)
	ListHistory(ctx context.Context, userID string) ([]models.OperationHistory, error)
	DeleteHistoryEntry(ctx context.Context, userID, entryID string) error

	// GetDraft returns (nil, nil) when the user has no autosaved draft.
	GetDraft(ctx context.Context, userID string) (*models.OperationDraft, error)
	SaveDraft(ctx context.Context, userID, mode, payload string) error
	DeleteDraft(ctx context.Context, userID string) error

	GetUserConfig(ctx context.Context, userID string) (*models.UserConfig, error)
	UpdateMonthlyGoal(ctx context.Context, userID string, value float64) error

	// GetMilestoneState returns an empty, unsaved state when none exists yet
	// for the scope.
	GetMilestoneState(ctx context.Context, userID string, year, month int) (*models.MilestoneState, error)
	PutMilestoneState(ctx context.Context, s *models.MilestoneState) error
}
