package reconcile

import (
	"context"
	"errors"
	"testing"

	"bet-ops-dashboard-go/internal/models"
	"bet-ops-dashboard-go/internal/notify"
	"bet-ops-dashboard-go/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockNotifier is a mock implementation of notify.Notifier.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, ev notify.Event) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

func TestCheckMilestones_EmitsAscending(t *testing.T) {
	st := setupStore(t)
	notifier := new(MockNotifier)
	mn := NewMilestoneNotifier(st, notifier, zap.NewNop())

	notifier.On("Notify", mock.Anything, mock.MatchedBy(func(ev notify.Event) bool {
		return ev.Class == notify.ClassGoalProgress && ev.Threshold == 50
	})).Return(nil).Once()
	notifier.On("Notify", mock.Anything, mock.MatchedBy(func(ev notify.Event) bool {
		return ev.Class == notify.ClassGoalProgress && ev.Threshold == 75
	})).Return(nil).Once()

	emitted, err := mn.CheckMilestones(context.Background(), "u1", 2026, 8, 80, 800, 1000)
	assert.NoError(t, err)
	assert.Equal(t, []int{50, 75}, emitted)
	notifier.AssertExpectations(t)
}

func TestCheckMilestones_IdempotentAcrossCalls(t *testing.T) {
	st := setupStore(t)
	notifier := new(MockNotifier)
	mn := NewMilestoneNotifier(st, notifier, zap.NewNop())
	ctx := context.Background()

	notifier.On("Notify", mock.Anything, mock.Anything).Return(nil)

	first, err := mn.CheckMilestones(ctx, "u1", 2026, 8, 60, 600, 1000)
	assert.NoError(t, err)
	assert.Equal(t, []int{50}, first)

	// same percentage again: nothing new to announce
	second, err := mn.CheckMilestones(ctx, "u1", 2026, 8, 60, 600, 1000)
	assert.NoError(t, err)
	assert.Empty(t, second)

	notifier.AssertNumberOfCalls(t, "Notify", 1)
}

func TestCheckMilestones_SurvivesRestart(t *testing.T) {
	st := setupStore(t)
	ctx := context.Background()

	notifier := new(MockNotifier)
	notifier.On("Notify", mock.Anything, mock.Anything).Return(nil)
	mn := NewMilestoneNotifier(st, notifier, zap.NewNop())
	_, err := mn.CheckMilestones(ctx, "u1", 2026, 8, 55, 550, 1000)
	assert.NoError(t, err)

	// a fresh notifier over the same store stands in for a process restart
	notifier2 := new(MockNotifier)
	mn2 := NewMilestoneNotifier(st, notifier2, zap.NewNop())
	emitted, err := mn2.CheckMilestones(ctx, "u1", 2026, 8, 55, 550, 1000)
	assert.NoError(t, err)
	assert.Empty(t, emitted)
	notifier2.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
}

func TestCheckMilestones_MonthRolloverStartsEmpty(t *testing.T) {
	st := setupStore(t)
	notifier := new(MockNotifier)
	notifier.On("Notify", mock.Anything, mock.Anything).Return(nil)
	mn := NewMilestoneNotifier(st, notifier, zap.NewNop())
	ctx := context.Background()

	_, err := mn.CheckMilestones(ctx, "u1", 2026, 8, 100, 1500, 1000)
	assert.NoError(t, err)

	// new month, same user: all thresholds are eligible again
	emitted, err := mn.CheckMilestones(ctx, "u1", 2026, 9, 60, 600, 1000)
	assert.NoError(t, err)
	assert.Equal(t, []int{50}, emitted)
}

func TestCheckMilestones_ExceededGoalEvent(t *testing.T) {
	st := setupStore(t)
	notifier := new(MockNotifier)
	mn := NewMilestoneNotifier(st, notifier, zap.NewNop())

	var classes []string
	notifier.On("Notify", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		classes = append(classes, args.Get(1).(notify.Event).Class)
	})

	emitted, err := mn.CheckMilestones(context.Background(), "u1", 2026, 8, 100, 1200, 1000)
	assert.NoError(t, err)
	assert.Equal(t, []int{50, 75, 100}, emitted)
	assert.Equal(t, []string{
		notify.ClassGoalProgress,
		notify.ClassGoalProgress,
		notify.ClassGoalExceeded,
	}, classes)
}

func TestCheckMilestones_ExactGoalIsPlainProgress(t *testing.T) {
	st := setupStore(t)
	notifier := new(MockNotifier)
	mn := NewMilestoneNotifier(st, notifier, zap.NewNop())

	var last notify.Event
	notifier.On("Notify", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		last = args.Get(1).(notify.Event)
	})

	// exactly on the goal: 100% but not exceeded
	_, err := mn.CheckMilestones(context.Background(), "u1", 2026, 8, 100, 1000, 1000)
	assert.NoError(t, err)
	assert.Equal(t, notify.ClassGoalProgress, last.Class)
	assert.Equal(t, 100, last.Threshold)
}

// milestoneWriteFailStore forces PutMilestoneState to fail.
type milestoneWriteFailStore struct {
	store.Store
	err error
}

func (s *milestoneWriteFailStore) PutMilestoneState(ctx context.Context, state *models.MilestoneState) error {
	return s.err
}

func TestCheckMilestones_StateWriteFailureSendsNothing(t *testing.T) {
	st := &milestoneWriteFailStore{Store: setupStore(t), err: errors.New("disk full")}
	notifier := new(MockNotifier)
	mn := NewMilestoneNotifier(st, notifier, zap.NewNop())

	emitted, err := mn.CheckMilestones(context.Background(), "u1", 2026, 8, 60, 600, 1000)
	assert.Error(t, err)
	assert.Empty(t, emitted)

	// the announced set could not be recorded, so no delivery may happen;
	// a lost notification is recoverable, a duplicate is not
	notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
}

func TestCheckMilestones_DeliveryFailureStillMarks(t *testing.T) {
	st := setupStore(t)
	notifier := new(MockNotifier)
	notifier.On("Notify", mock.Anything, mock.Anything).Return(errors.New("webhook down"))
	mn := NewMilestoneNotifier(st, notifier, zap.NewNop())
	ctx := context.Background()

	emitted, err := mn.CheckMilestones(ctx, "u1", 2026, 8, 50, 500, 1000)
	assert.NoError(t, err)
	assert.Equal(t, []int{50}, emitted)

	// at-most-once: the failed delivery is not retried on the next check
	again, err := mn.CheckMilestones(ctx, "u1", 2026, 8, 50, 500, 1000)
	assert.NoError(t, err)
	assert.Empty(t, again)
}
