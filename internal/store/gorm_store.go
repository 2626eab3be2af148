package store

import (
	"context"
	"errors"
	"fmt"

	"bet-ops-dashboard-go/internal/models"
	"gorm.io/gorm"
)

// GormStore implements Store on top of a gorm database handle.
type GormStore struct {
	db *gorm.DB
}

// ensure GormStore implements the interface
var _ Store = (*GormStore)(nil)

// NewGormStore creates a new store backed by the given database.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) ListTransactions(ctx context.Context, userID string, r *DateRange) ([]models.Transaction, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if r != nil {
		if r.From != "" {
			q = q.Where("date >= ?", r.From)
		}
		if r.To != "" {
			q = q.Where("date <= ?", r.To)
		}
	}

	var txs []models.Transaction
	if err := q.Order("date, id").Find(&txs).Error; err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txs, nil
}

func (s *GormStore) CreateTransaction(ctx context.Context, tx *models.Transaction) error {
	if err := s.db.WithContext(ctx).Create(tx).Error; err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (s *GormStore) DeleteTransaction(ctx context.Context, userID string, id uint) error {
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.Transaction{}, id).Error
	if err != nil {
		return fmt.Errorf("failed to delete transaction %d: %w", id, err)
	}
	return nil
}

func (s *GormStore) ListDailySummaries(ctx context.Context, userID string) ([]models.DailySummary, error) {
	var summaries []models.DailySummary
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date").
		Find(&summaries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list daily summaries: %w", err)
	}
	return summaries, nil
}

func (s *GormStore) GetDailySummaryByDate(ctx context.Context, userID, date string) (*models.DailySummary, error) {
	var summary models.DailySummary
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		First(&summary).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get daily summary for %s: %w", date, err)
	}
	return &summary, nil
}

func (s *GormStore) UpsertDailySummary(ctx context.Context, summary *models.DailySummary) error {
	if err := s.db.WithContext(ctx).Save(summary).Error; err != nil {
		return fmt.Errorf("failed to upsert daily summary for %s: %w", summary.Date, err)
	}
	return nil
}

func (s *GormStore) DeleteDailySummary(ctx context.Context, userID, date string) error {
	// Hard delete: the (user_id, date) unique index must be free for the
	// date to be closed again later.
	err := s.db.WithContext(ctx).Unscoped().
		Where("user_id = ? AND date = ?", userID, date).
		Delete(&models.DailySummary{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete daily summary for %s: %w", date, err)
	}
	return nil
}

func (s *GormStore) CreateHistoryEntry(ctx context.Context, e *models.OperationHistory) error {
	if err := s.db.WithContext(ctx).Create(e).Error; err != nil {
		return fmt.Errorf("failed to create history entry: %w", err)
	}
	return nil
}

func (s *GormStore) GetHistoryEntry(ctx context.Context, userID, entryID string) (*models.OperationHistory, error) {
	var entry models.OperationHistory
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND entry_id = ?", userID, entryID).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get history entry %s: %w", entryID, err)
	}
	return &entry, nil
}

func (s *GormStore) ListHistory(ctx context.Context, userID string) ([]models.OperationHistory, error) {
	var entries []models.OperationHistory
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("closed_at desc").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	return entries, nil
}

func (s *GormStore) DeleteHistoryEntry(ctx context.Context, userID, entryID string) error {
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND entry_id = ?", userID, entryID).
		Delete(&models.OperationHistory{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete history entry %s: %w", entryID, err)
	}
	return nil
}

func (s *GormStore) GetDraft(ctx context.Context, userID string) (*models.OperationDraft, error) {
	var draft models.OperationDraft
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&draft).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}
	return &draft, nil
}

func (s *GormStore) SaveDraft(ctx context.Context, userID, mode, payload string) error {
	draft := models.OperationDraft{UserID: userID}
	err := s.db.WithContext(ctx).
		Where(models.OperationDraft{UserID: userID}).
		FirstOrCreate(&draft).Error
	if err != nil {
		return fmt.Errorf("failed to load draft: %w", err)
	}

	err = s.db.WithContext(ctx).
		Model(&draft).
		Updates(map[string]any{"mode": mode, "payload": payload}).Error
	if err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

func (s *GormStore) DeleteDraft(ctx context.Context, userID string) error {
	// Hard delete: the user_id unique index must be free for the next
	// autosave to recreate the row.
	err := s.db.WithContext(ctx).Unscoped().
		Where("user_id = ?", userID).
		Delete(&models.OperationDraft{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	return nil
}

func (s *GormStore) GetUserConfig(ctx context.Context, userID string) (*models.UserConfig, error) {
	var cfg models.UserConfig
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.UserConfig{UserID: userID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user config: %w", err)
	}
	return &cfg, nil
}

func (s *GormStore) UpdateMonthlyGoal(ctx context.Context, userID string, value float64) error {
	cfg := models.UserConfig{UserID: userID}
	err := s.db.WithContext(ctx).
		Where(models.UserConfig{UserID: userID}).
		FirstOrCreate(&cfg).Error
	if err != nil {
		return fmt.Errorf("failed to load user config: %w", err)
	}

	err = s.db.WithContext(ctx).
		Model(&cfg).
		Update("monthly_goal", value).Error
	if err != nil {
		return fmt.Errorf("failed to update monthly goal: %w", err)
	}
	return nil
}

func (s *GormStore) GetMilestoneState(ctx context.Context, userID string, year, month int) (*models.MilestoneState, error) {
	var state models.MilestoneState
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND year = ? AND month = ?", userID, year, month).
		First(&state).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.MilestoneState{UserID: userID, Year: year, Month: month}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get milestone state: %w", err)
	}
	return &state, nil
}

func (s *GormStore) PutMilestoneState(ctx context.Context, state *models.MilestoneState) error {
	if err := s.db.WithContext(ctx).Save(state).Error; err != nil {
		return fmt.Errorf("failed to save milestone state: %w", err)
	}
	return nil
}
