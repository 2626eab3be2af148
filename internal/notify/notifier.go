// Package notify delivers user-facing progress notifications. The transport
// is pluggable; the core only depends on the Notifier interface.
package notify

import (
	"context"

	"go.uber.org/zap"
)

const (
	ClassGoalProgress = "goal_progress"
	ClassGoalExceeded = "goal_exceeded"
	ClassHighActivity = "high_activity"
)

// Event is one notification to deliver.
type Event struct {
	UserID    string `json:"user_id"`
	Class     string `json:"class"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Threshold int    `json:"threshold,omitempty"` // goal-progress events only
}

// Notifier delivers events to the user.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

// LogNotifier writes events to the application log. It is the default sink
// when no webhook is configured.
type LogNotifier struct {
	logger *zap.Logger
}

var _ Notifier = (*LogNotifier)(nil)

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.Named("notify")}
}

func (n *LogNotifier) Notify(_ context.Context, ev Event) error {
	n.logger.Info("Notification",
		zap.String("user_id", ev.UserID),
		zap.String("class", ev.Class),
		zap.String("title", ev.Title),
		zap.String("body", ev.Body),
		zap.Int("threshold", ev.Threshold))
	return nil
}
