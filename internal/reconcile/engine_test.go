package reconcile

import (
	"context"
	"testing"
	"time"

	"bet-ops-dashboard-go/internal/config"
	"bet-ops-dashboard-go/internal/models"
	"bet-ops-dashboard-go/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func TestEngine_Refresh(t *testing.T) {
	st := setupStore(t)
	notifier := new(MockNotifier)
	notifier.On("Notify", mock.Anything, mock.Anything).Return(nil)
	mn := NewMilestoneNotifier(st, notifier, zap.NewNop())
	cfg := &config.Dashboard{RefreshInterval: time.Minute}
	e := NewEngine(zap.NewNop(), cfg, st, mn, notifier)
	ctx := context.Background()

	assert.NoError(t, st.UpdateMonthlyGoal(ctx, "u1", 100))
	assert.NoError(t, st.CreateTransaction(ctx, &models.Transaction{
		UserID: "u1",
		Type:   models.TypeWithdraw,
		Kind:   models.KindPlain,
		Amount: 50,
		Date:   Today(),
	}))

	res, err := e.Refresh(ctx, "u1")
	assert.NoError(t, err)
	assert.InDelta(t, 50, res.DailyProfits[Today()], 1e-9)
	assert.InDelta(t, 50, res.Progress.MonthlyProfit, 1e-9)
	assert.InDelta(t, 50, res.Progress.Percentage, 1e-9)
	assert.Equal(t, []int{50}, res.Milestones)

	// a second refresh with unchanged data announces nothing new
	res, err = e.Refresh(ctx, "u1")
	assert.NoError(t, err)
	assert.Empty(t, res.Milestones)
	notifier.AssertNumberOfCalls(t, "Notify", 1)
}

func TestEngine_ActivityNoticeOncePerDay(t *testing.T) {
	st := setupStore(t)
	notifier := new(MockNotifier)
	mn := NewMilestoneNotifier(st, notifier, zap.NewNop())
	cfg := &config.Dashboard{RefreshInterval: time.Minute, ActivityThreshold: 2}
	e := NewEngine(zap.NewNop(), cfg, st, mn, notifier)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		assert.NoError(t, st.CreateTransaction(ctx, &models.Transaction{
			UserID: "u1",
			Type:   models.TypeDeposit,
			Kind:   models.KindPlain,
			Amount: 10,
			Date:   Today(),
		}))
	}

	notifier.On("Notify", mock.Anything, mock.MatchedBy(func(ev notify.Event) bool {
		return ev.Class == notify.ClassHighActivity
	})).Return(nil).Once()

	assert.NoError(t, e.checkActivity(ctx, "u1"))
	// superseding tick on the same day is silent
	assert.NoError(t, e.checkActivity(ctx, "u1"))
	notifier.AssertExpectations(t)
	notifier.AssertNumberOfCalls(t, "Notify", 1)
}

func TestEngine_ActivityBelowThresholdIsSilent(t *testing.T) {
	st := setupStore(t)
	notifier := new(MockNotifier)
	mn := NewMilestoneNotifier(st, notifier, zap.NewNop())
	cfg := &config.Dashboard{RefreshInterval: time.Minute, ActivityThreshold: 5}
	e := NewEngine(zap.NewNop(), cfg, st, mn, notifier)
	ctx := context.Background()

	assert.NoError(t, st.CreateTransaction(ctx, &models.Transaction{
		UserID: "u1",
		Type:   models.TypeDeposit,
		Kind:   models.KindPlain,
		Amount: 10,
		Date:   Today(),
	}))

	assert.NoError(t, e.checkActivity(ctx, "u1"))
	notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
}
