package reconcile

import (
	"context"
	"fmt"
	"sync"
	"time"

	"bet-ops-dashboard-go/internal/config"
	"bet-ops-dashboard-go/internal/notify"
	"bet-ops-dashboard-go/internal/store"
	"go.uber.org/zap"
)

// RefreshResult is one full recomputation of the dashboard's derived state.
type RefreshResult struct {
	DailyProfits map[string]float64 `json:"daily_profits"`
	Progress     GoalProgress       `json:"progress"`
	Milestones   []int              `json:"milestones,omitempty"` // thresholds announced by this refresh
}

// Engine drives recomputation. Refresh is pull-based (recompute on read);
// Run adds the periodic tick that gates the high-activity notification
// class. There is no other background scheduling.
type Engine struct {
	logger     *zap.Logger
	cfg        *config.Dashboard
	store      store.Store
	milestones *MilestoneNotifier
	notifier   notify.Notifier

	mu          sync.Mutex
	activityDay string // day the high-activity notice was last sent for
}

// NewEngine creates a new reconciliation engine.
func NewEngine(logger *zap.Logger, cfg *config.Dashboard, st store.Store, milestones *MilestoneNotifier, notifier notify.Notifier) *Engine {
	return &Engine{
		logger:     logger.Named("engine"),
		cfg:        cfg,
		store:      st,
		milestones: milestones,
		notifier:   notifier,
	}
}

// Refresh recomputes per-day profits and monthly goal progress from the
// store and runs the milestone check on the result.
func (e *Engine) Refresh(ctx context.Context, userID string) (RefreshResult, error) {
	var res RefreshResult

	summaries, err := e.store.ListDailySummaries(ctx, userID)
	if err != nil {
		return res, fmt.Errorf("refresh: %w", err)
	}
	txs, err := e.store.ListTransactions(ctx, userID, nil)
	if err != nil {
		return res, fmt.Errorf("refresh: %w", err)
	}
	userCfg, err := e.store.GetUserConfig(ctx, userID)
	if err != nil {
		return res, fmt.Errorf("refresh: %w", err)
	}

	today := Today()
	now := time.Now()

	res.DailyProfits = AggregateDailyProfits(e.logger, summaries, txs, today)
	res.Progress = ComputeMonthlyGoalProgress(e.logger, summaries, txs,
		userCfg.MonthlyGoal, now.Year(), now.Month(), today)

	emitted, err := e.milestones.CheckMilestones(ctx, userID, now.Year(), int(now.Month()),
		res.Progress.Percentage, res.Progress.MonthlyProfit, userCfg.MonthlyGoal)
	if err != nil {
		return res, fmt.Errorf("refresh: %w", err)
	}
	res.Milestones = emitted

	return res, nil
}

// Run starts the periodic re-check loop and blocks until the context is
// cancelled. A missed or superseded tick needs no cleanup.
func (e *Engine) Run(ctx context.Context, userID string) {
	ticker := time.NewTicker(e.cfg.RefreshInterval)
	defer ticker.Stop()

	e.logger.Info("Starting refresh loop",
		zap.Duration("interval", e.cfg.RefreshInterval),
		zap.String("user_id", userID))

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("Stopping refresh loop...")
			return
		case <-ticker.C:
			if _, err := e.Refresh(ctx, userID); err != nil {
				e.logger.Error("Refresh failed", zap.Error(err))
			}
			if err := e.checkActivity(ctx, userID); err != nil {
				e.logger.Error("Activity check failed", zap.Error(err))
			}
		}
	}
}

// checkActivity sends the high-activity notice when today's transaction
// volume crosses the configured threshold, at most once per day.
func (e *Engine) checkActivity(ctx context.Context, userID string) error {
	if e.cfg.ActivityThreshold <= 0 {
		return nil
	}

	today := Today()
	e.mu.Lock()
	alreadySent := e.activityDay == today
	e.mu.Unlock()
	if alreadySent {
		return nil
	}

	txs, err := e.store.ListTransactions(ctx, userID, &store.DateRange{From: today, To: today})
	if err != nil {
		return err
	}
	if len(txs) < e.cfg.ActivityThreshold {
		return nil
	}

	ev := notify.Event{
		UserID: userID,
		Class:  notify.ClassHighActivity,
		Title:  "Dia de alta movimentação",
		Body:   fmt.Sprintf("%d operações registradas hoje", len(txs)),
	}
	if err := e.notifier.Notify(ctx, ev); err != nil {
		return err
	}

	e.mu.Lock()
	e.activityDay = today
	e.mu.Unlock()
	return nil
}
