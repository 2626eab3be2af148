package store

import (
	"context"
	"testing"

	"bet-ops-dashboard-go/internal/database"
	"bet-ops-dashboard-go/internal/models"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTest creates a store over a fresh in-memory database.
func setupTest(t *testing.T) *GormStore {
	// Use a new, non-shared in-memory database for each test to ensure isolation.
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	assert.NoError(t, err)
	assert.NoError(t, database.AutoMigrate(db))
	return NewGormStore(db)
}

func TestListTransactions_DateRange(t *testing.T) {
	st := setupTest(t)
	ctx := context.Background()

	for _, date := range []string{"2026-08-01", "2026-08-15", "2026-08-31"} {
		assert.NoError(t, st.CreateTransaction(ctx, &models.Transaction{
			UserID: "u1", Type: models.TypeDeposit, Kind: models.KindPlain, Amount: 1, Date: date,
		}))
	}
	// other user's rows never leak in
	assert.NoError(t, st.CreateTransaction(ctx, &models.Transaction{
		UserID: "u2", Type: models.TypeDeposit, Kind: models.KindPlain, Amount: 1, Date: "2026-08-15",
	}))

	all, err := st.ListTransactions(ctx, "u1", nil)
	assert.NoError(t, err)
	assert.Len(t, all, 3)

	ranged, err := st.ListTransactions(ctx, "u1", &DateRange{From: "2026-08-10", To: "2026-08-20"})
	assert.NoError(t, err)
	assert.Len(t, ranged, 1)
	assert.Equal(t, "2026-08-15", ranged[0].Date)

	open, err := st.ListTransactions(ctx, "u1", &DateRange{From: "2026-08-16"})
	assert.NoError(t, err)
	assert.Len(t, open, 1)
	assert.Equal(t, "2026-08-31", open[0].Date)
}

func TestDailySummary_GetUpsertDelete(t *testing.T) {
	st := setupTest(t)
	ctx := context.Background()

	missing, err := st.GetDailySummaryByDate(ctx, "u1", "2026-08-30")
	assert.NoError(t, err)
	assert.Nil(t, missing)

	s := &models.DailySummary{UserID: "u1", Date: "2026-08-30", TransactionCount: 1}
	s.SetProfit(10)
	assert.NoError(t, st.UpsertDailySummary(ctx, s))

	got, err := st.GetDailySummaryByDate(ctx, "u1", "2026-08-30")
	assert.NoError(t, err)
	assert.NotNil(t, got)
	assert.Equal(t, 10.0, got.Profit)
	assert.Equal(t, 10.0, got.Margin)

	got.AddProfit(5)
	assert.NoError(t, st.UpsertDailySummary(ctx, got))
	again, _ := st.GetDailySummaryByDate(ctx, "u1", "2026-08-30")
	assert.Equal(t, 15.0, again.Profit)

	assert.NoError(t, st.DeleteDailySummary(ctx, "u1", "2026-08-30"))
	gone, err := st.GetDailySummaryByDate(ctx, "u1", "2026-08-30")
	assert.NoError(t, err)
	assert.Nil(t, gone)
}

func TestHistoryEntries(t *testing.T) {
	st := setupTest(t)
	ctx := context.Background()

	missing, err := st.GetHistoryEntry(ctx, "u1", "nope")
	assert.NoError(t, err)
	assert.Nil(t, missing)

	e := &models.OperationHistory{EntryID: "e1", UserID: "u1", Mode: models.ModeSurebet, Profit: 3.5}
	assert.NoError(t, st.CreateHistoryEntry(ctx, e))

	got, err := st.GetHistoryEntry(ctx, "u1", "e1")
	assert.NoError(t, err)
	assert.NotNil(t, got)
	assert.Equal(t, 3.5, got.Profit)

	list, err := st.ListHistory(ctx, "u1")
	assert.NoError(t, err)
	assert.Len(t, list, 1)

	assert.NoError(t, st.DeleteHistoryEntry(ctx, "u1", "e1"))
	gone, _ := st.GetHistoryEntry(ctx, "u1", "e1")
	assert.Nil(t, gone)
}

func TestUserConfig_DefaultAndUpdate(t *testing.T) {
	st := setupTest(t)
	ctx := context.Background()

	cfg, err := st.GetUserConfig(ctx, "u1")
	assert.NoError(t, err)
	assert.Zero(t, cfg.MonthlyGoal)

	assert.NoError(t, st.UpdateMonthlyGoal(ctx, "u1", 2500))
	cfg, err = st.GetUserConfig(ctx, "u1")
	assert.NoError(t, err)
	assert.Equal(t, 2500.0, cfg.MonthlyGoal)

	// overwrite semantics, no history
	assert.NoError(t, st.UpdateMonthlyGoal(ctx, "u1", 3000))
	cfg, _ = st.GetUserConfig(ctx, "u1")
	assert.Equal(t, 3000.0, cfg.MonthlyGoal)
}

func TestDraft_SaveOverwritesAndDeletes(t *testing.T) {
	st := setupTest(t)
	ctx := context.Background()

	missing, err := st.GetDraft(ctx, "u1")
	assert.NoError(t, err)
	assert.Nil(t, missing)

	assert.NoError(t, st.SaveDraft(ctx, "u1", models.ModeDutching, `{"total":100}`))
	assert.NoError(t, st.SaveDraft(ctx, "u1", models.ModeSurebet, `{"total":250}`))

	draft, err := st.GetDraft(ctx, "u1")
	assert.NoError(t, err)
	assert.NotNil(t, draft)
	assert.Equal(t, models.ModeSurebet, draft.Mode)
	assert.Equal(t, `{"total":250}`, draft.Payload)

	assert.NoError(t, st.DeleteDraft(ctx, "u1"))
	gone, err := st.GetDraft(ctx, "u1")
	assert.NoError(t, err)
	assert.Nil(t, gone)
}

func TestDailySummary_RecreateAfterDelete(t *testing.T) {
	st := setupTest(t)
	ctx := context.Background()

	s := &models.DailySummary{UserID: "u1", Date: "2026-08-30"}
	s.SetProfit(10)
	assert.NoError(t, st.UpsertDailySummary(ctx, s))
	assert.NoError(t, st.DeleteDailySummary(ctx, "u1", "2026-08-30"))

	// a fresh row for the same (user, date) must not trip the unique index
	fresh := &models.DailySummary{UserID: "u1", Date: "2026-08-30"}
	fresh.SetProfit(5)
	assert.NoError(t, st.UpsertDailySummary(ctx, fresh))

	got, err := st.GetDailySummaryByDate(ctx, "u1", "2026-08-30")
	assert.NoError(t, err)
	assert.NotNil(t, got)
	assert.Equal(t, 5.0, got.Profit)
}

func TestDraft_ResaveAfterDelete(t *testing.T) {
	st := setupTest(t)
	ctx := context.Background()

	assert.NoError(t, st.SaveDraft(ctx, "u1", models.ModeDutching, `{"total":100}`))
	assert.NoError(t, st.DeleteDraft(ctx, "u1"))

	// the next autosave must be able to recreate the row for the same user
	assert.NoError(t, st.SaveDraft(ctx, "u1", models.ModeSurebet, `{"total":250}`))
	draft, err := st.GetDraft(ctx, "u1")
	assert.NoError(t, err)
	assert.NotNil(t, draft)
	assert.Equal(t, models.ModeSurebet, draft.Mode)
	assert.Equal(t, `{"total":250}`, draft.Payload)
}

func TestMilestoneState_ScopedPersistence(t *testing.T) {
	st := setupTest(t)
	ctx := context.Background()

	state, err := st.GetMilestoneState(ctx, "u1", 2026, 8)
	assert.NoError(t, err)
	assert.Empty(t, state.Thresholds())

	state.Mark(50)
	state.Mark(75)
	assert.NoError(t, st.PutMilestoneState(ctx, state))

	reloaded, err := st.GetMilestoneState(ctx, "u1", 2026, 8)
	assert.NoError(t, err)
	assert.Equal(t, []int{50, 75}, reloaded.Thresholds())

	// a different month scope starts empty
	next, err := st.GetMilestoneState(ctx, "u1", 2026, 9)
	assert.NoError(t, err)
	assert.Empty(t, next.Thresholds())
}
