package reconcile

import (
	"context"
	"fmt"

	"bet-ops-dashboard-go/internal/notify"
	"bet-ops-dashboard-go/internal/store"
	"go.uber.org/zap"
)

// MilestoneThresholds are the goal-progress percentages announced once per
// month, in the order they are checked.
var MilestoneThresholds = []int{50, 75, 100}

// MilestoneNotifier fires a goal-progress notification exactly once per
// threshold per (user, year, month) scope. Announced thresholds are persisted
// through the store, so a restart never re-announces, and a new month starts
// from an empty set because the state row is keyed by the scope.
type MilestoneNotifier struct {
	store    store.Store
	notifier notify.Notifier
	logger   *zap.Logger
}

// NewMilestoneNotifier creates a new milestone notifier.
func NewMilestoneNotifier(st store.Store, notifier notify.Notifier, logger *zap.Logger) *MilestoneNotifier {
	return &MilestoneNotifier{store: st, notifier: notifier, logger: logger.Named("milestones")}
}

// CheckMilestones compares the current percentage against the thresholds not
// yet announced this month and emits one notification per newly reached
// threshold, ascending. At the 100 mark a distinct "goal exceeded" event is
// sent when the profit is strictly above the goal. The updated set is
// persisted before any delivery is attempted, so a failure between the two
// can only lose a notification, never duplicate one; delivery itself is best
// effort and a failed send is logged, not retried.
func (m *MilestoneNotifier) CheckMilestones(ctx context.Context, userID string, year int, month int, percentage, monthlyProfit, goal float64) ([]int, error) {
	state, err := m.store.GetMilestoneState(ctx, userID, year, month)
	if err != nil {
		return nil, fmt.Errorf("check milestones: %w", err)
	}

	var events []notify.Event
	for _, threshold := range MilestoneThresholds {
		if percentage < float64(threshold) || state.Has(threshold) {
			continue
		}

		ev := notify.Event{
			UserID:    userID,
			Class:     notify.ClassGoalProgress,
			Title:     fmt.Sprintf("Meta mensal: %d%%", threshold),
			Body:      fmt.Sprintf("Lucro do mês: %.2f de %.2f", monthlyProfit, goal),
			Threshold: threshold,
		}
		if threshold == 100 && monthlyProfit > goal {
			ev.Class = notify.ClassGoalExceeded
			ev.Title = "Meta mensal batida e superada!"
		}

		state.Mark(threshold)
		events = append(events, ev)
	}

	if len(events) == 0 {
		return nil, nil
	}
	if err := m.store.PutMilestoneState(ctx, state); err != nil {
		return nil, fmt.Errorf("check milestones: persist state: %w", err)
	}

	emitted := make([]int, 0, len(events))
	for _, ev := range events {
		if err := m.notifier.Notify(ctx, ev); err != nil {
			m.logger.Warn("Notification delivery failed",
				zap.Int("threshold", ev.Threshold),
				zap.Error(err))
		}
		emitted = append(emitted, ev.Threshold)
	}
	return emitted, nil
}
