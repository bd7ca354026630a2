package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xp-ledger/models"
)

func TestUpdateGoalProgress_CompletesOnce(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	register(t, svc, "alice")

	g, err := svc.CreateGoal(ctx, "alice", GoalInput{Title: "Run 100km", TargetValue: 100, XPReward: 250})
	require.NoError(t, err)

	res, err := svc.UpdateGoalProgress(ctx, "alice", g.ID, 80)
	require.NoError(t, err)
	assert.False(t, res.Completed)
	assert.Equal(t, 80, res.Goal.CurrentValue)

	res, err = svc.UpdateGoalProgress(ctx, "alice", g.ID, 30)
	require.NoError(t, err)
	assert.True(t, res.Completed)
	assert.Equal(t, 100, res.Goal.CurrentValue)
	assert.Equal(t, models.GoalStatusCompleted, res.Goal.Status)
	assert.NotNil(t, res.Goal.CompletedAt)

	snap := snapshotOf(t, svc, "alice")
	require.Len(t, snap.XPLogs, 1)
	assert.Equal(t, models.XPTypeBonus, snap.XPLogs[0].Type)
	assert.Equal(t, 250, snap.XPLogs[0].Amount)
	assert.Equal(t, "Goal: Run 100km", snap.XPLogs[0].Source)
	require.Len(t, snap.Notifications, 1)
	assert.Equal(t, models.NotificationGoalCompleted, snap.Notifications[0].Type)
	assert.Equal(t, 250, snap.Profile.TotalXP)

	_, err = svc.UpdateGoalProgress(ctx, "alice", g.ID, 1)
	assert.ErrorIs(t, err, ErrGoalNotActive)
	assert.Len(t, snapshotOf(t, svc, "alice").XPLogs, 1)
	requireConsistent(t, svc, "alice")
}

func TestUpdateGoalProgress_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	register(t, svc, "alice")
	g, err := svc.CreateGoal(ctx, "alice", GoalInput{Title: "Write", TargetValue: 10})
	require.NoError(t, err)

	_, err = svc.UpdateGoalProgress(ctx, "alice", g.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidIncrement)
	_, err = svc.UpdateGoalProgress(ctx, "alice", "missing", 1)
	assert.ErrorIs(t, err, ErrGoalNotFound)

	_, err = svc.FailGoal(ctx, "alice", g.ID)
	require.NoError(t, err)
	_, err = svc.UpdateGoalProgress(ctx, "alice", g.ID, 1)
	assert.ErrorIs(t, err, ErrGoalNotActive)
}

func TestPurchaseItem(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	register(t, svc, "alice")

	item, err := svc.CreateShopItem(ctx, "alice", ShopItemInput{Name: "New Keyboard", Cost: 200})
	require.NoError(t, err)
	assert.Equal(t, "new-keyboard", item.Slug)

	_, err = svc.GrantXP(ctx, "alice", GrantInput{Amount: 150, Type: models.XPTypeManual})
	require.NoError(t, err)
	_, err = svc.PurchaseItem(ctx, "alice", item.ID)
	assert.ErrorIs(t, err, ErrInsufficientXP)

	_, err = svc.GrantXP(ctx, "alice", GrantInput{Amount: 100, Type: models.XPTypeManual})
	require.NoError(t, err)
	res, err := svc.PurchaseItem(ctx, "alice", item.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, res.TotalXP)
	assert.True(t, res.Item.IsOwned)
	assert.Equal(t, -200, res.Log.Delta)

	snap := snapshotOf(t, svc, "alice")
	assert.Len(t, snap.XPLogs, 2, "purchases never write an XP log")
	assert.Equal(t, 50, snap.Profile.TotalXP)

	_, err = svc.PurchaseItem(ctx, "alice", item.ID)
	assert.ErrorIs(t, err, ErrAlreadyOwned)
	_, err = svc.RefundItem(ctx, "alice", item.ID)
	assert.ErrorIs(t, err, ErrNotRefundable)
	requireConsistent(t, svc, "alice")
}

func TestRefundItem(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	register(t, svc, "alice")
	item, err := svc.CreateShopItem(ctx, "alice", ShopItemInput{Name: "Game", Cost: 60, Refundable: true})
	require.NoError(t, err)

	_, err = svc.RefundItem(ctx, "alice", item.ID)
	assert.ErrorIs(t, err, ErrNotOwned)

	_, err = svc.GrantXP(ctx, "alice", GrantInput{Amount: 100, Type: models.XPTypeManual})
	require.NoError(t, err)
	_, err = svc.PurchaseItem(ctx, "alice", item.ID)
	require.NoError(t, err)
	res, err := svc.RefundItem(ctx, "alice", item.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, res.TotalXP)
	assert.False(t, res.Item.IsOwned)

	page, err := svc.ListRedemptions(ctx, "alice", 0, 0)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, models.RedemptionRefund, page.Items[0].Kind)
	assert.Equal(t, models.RedemptionPurchase, page.Items[1].Kind)
	requireConsistent(t, svc, "alice")
}

func TestResetProfile(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	register(t, svc, "alice")

	cat, err := svc.CreateCategory(ctx, "alice", CategoryInput{Name: "Health"})
	require.NoError(t, err)
	_, err = svc.GrantXP(ctx, "alice", GrantInput{Amount: 5000, Type: models.XPTypeManual, CategoryID: &cat.ID})
	require.NoError(t, err)
	h, err := svc.CreateHabit(ctx, "alice", HabitInput{Name: "Walk", XPReward: 5})
	require.NoError(t, err)
	_, err = svc.CompleteHabit(ctx, "alice", h.ID, CompleteInput{})
	require.NoError(t, err)
	_, err = svc.UpdateRulebook(ctx, "alice", models.RulebookConfig{Mode: models.RulebookModeManual})
	require.NoError(t, err)
	_, err = svc.SetManualOverrides(ctx, "alice", ptr(50), nil)
	require.NoError(t, err)

	p, err := svc.ResetProfile(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 0, p.TotalXP)
	assert.Equal(t, 1, p.Level)
	assert.Equal(t, models.RankE, p.Rank)
	assert.Equal(t, "Novice", p.Title)
	assert.Equal(t, 0, p.AvatarTier)
	assert.Nil(t, p.ManualLevelOverride)
	assert.Equal(t, "alice", p.DisplayName)

	snap := snapshotOf(t, svc, "alice")
	assert.Empty(t, snap.Categories)
	assert.Empty(t, snap.XPLogs)
	assert.Empty(t, snap.Calendar)
	assert.Empty(t, snap.Habits)
	assert.Empty(t, snap.Completions)
	assert.Nil(t, snap.Rulebook)

	_, err = svc.ResetProfile(ctx, "nobody")
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestRulebook_ManualOverrides(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	register(t, svc, "alice")

	_, err := svc.SetManualOverrides(ctx, "alice", ptr(45), nil)
	assert.ErrorIs(t, err, ErrManualModeRequired)

	rb, err := svc.GetRulebook(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, models.RulebookModeAuto, rb.Mode)
	assert.Equal(t, DefaultLevelFormula, rb.XPLevelFormula)

	_, err = svc.UpdateRulebook(ctx, "alice", models.RulebookConfig{Mode: models.RulebookModeManual})
	require.NoError(t, err)
	p, err := svc.SetManualOverrides(ctx, "alice", ptr(45), nil)
	require.NoError(t, err)
	assert.Equal(t, 45, p.Level)
	assert.Equal(t, models.RankA, p.Rank)
	assert.Equal(t, "Champion", p.Title)
	requireConsistent(t, svc, "alice")

	_, err = svc.UpdateRulebook(ctx, "alice", models.RulebookConfig{Mode: models.RulebookModeAuto})
	require.NoError(t, err)
	view := profileOf(t, svc, "alice")
	assert.Nil(t, view.ManualLevelOverride)
	assert.Equal(t, 1, view.Level)
	assert.Equal(t, models.RankE, view.Rank)

	_, err = svc.SetManualOverrides(ctx, "alice", ptr(0), nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRulebook_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	register(t, svc, "alice")

	_, err := svc.UpdateRulebook(ctx, "alice", models.RulebookConfig{
		LevelRankMap: []models.RankThreshold{{MinLevel: 10, Rank: models.RankC}, {MinLevel: 20, Rank: models.RankD}},
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.UpdateRulebook(ctx, "alice", models.RulebookConfig{Mode: "SOMETIMES"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.UpdateRulebook(ctx, "alice", models.RulebookConfig{
		StatMultipliers: map[models.XPType]float64{models.XPTypeBonus: 0},
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	// Custom thresholds are sorted and drive the derived rank immediately.
	_, err = svc.GrantXP(ctx, "alice", GrantInput{Amount: 400, Type: models.XPTypeManual})
	require.NoError(t, err)
	rb, err := svc.UpdateRulebook(ctx, "alice", models.RulebookConfig{
		LevelRankMap: []models.RankThreshold{{MinLevel: 3, Rank: models.RankC}, {MinLevel: 2, Rank: models.RankD}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, rb.LevelRankMap[0].MinLevel)
	assert.Equal(t, models.RankD, profileOf(t, svc, "alice").Rank)

	rb, err = svc.ResetRulebook(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, DefaultRankThresholds, rb.LevelRankMap)
	assert.Equal(t, models.RankE, profileOf(t, svc, "alice").Rank)
}

func TestRulebookDefaultsOption(t *testing.T) {
	svc, _ := newTestService(t, WithRulebookDefaults(&models.RulebookConfig{
		RankTitles: []models.TitleThreshold{{MinLevel: 1, Title: "Rookie"}},
	}))
	register(t, svc, "alice")
	assert.Equal(t, "Rookie", profileOf(t, svc, "alice").Title)
}

func TestNotifications(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	register(t, svc, "alice")
	for _, title := range []string{"A", "B"} {
		g, err := svc.CreateGoal(ctx, "alice", GoalInput{Title: title, TargetValue: 1, XPReward: 1})
		require.NoError(t, err)
		_, err = svc.UpdateGoalProgress(ctx, "alice", g.ID, 1)
		require.NoError(t, err)
	}

	list, err := svc.ListNotifications(ctx, "alice", true)
	require.NoError(t, err)
	require.Len(t, list, 2)

	require.NoError(t, svc.MarkNotificationRead(ctx, "alice", list[0].ID))
	assert.ErrorIs(t, svc.MarkNotificationRead(ctx, "alice", "missing"), ErrNotificationNotFound)

	n, err := svc.MarkAllNotificationsRead(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	list, err = svc.ListNotifications(ctx, "alice", true)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDeleteCategoryDetachesReferences(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	register(t, svc, "alice")

	cat, err := svc.CreateCategory(ctx, "alice", CategoryInput{Name: "Mind"})
	require.NoError(t, err)
	_, err = svc.CreateCategory(ctx, "alice", CategoryInput{Name: "mind"})
	assert.ErrorIs(t, err, ErrDuplicateName)

	_, err = svc.GrantXP(ctx, "alice", GrantInput{Amount: 30, Type: models.XPTypeManual, CategoryID: &cat.ID})
	require.NoError(t, err)
	radar, err := svc.Radar(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []CategoryTotal{{CategoryID: cat.ID, Name: "Mind", TotalXP: 30}}, radar)

	require.NoError(t, svc.DeleteCategory(ctx, "alice", cat.ID))
	assert.ErrorIs(t, svc.DeleteCategory(ctx, "alice", cat.ID), ErrCategoryNotFound)

	radar, err = svc.Radar(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []CategoryTotal{{Name: UncategorizedName, TotalXP: 30}}, radar)
	assert.Equal(t, 30, profileOf(t, svc, "alice").TotalXP)
}

func TestDeleteHabitKeepsEarnedXP(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	register(t, svc, "alice")

	h, err := svc.CreateHabit(ctx, "alice", HabitInput{Name: "Stretch", XPReward: 10})
	require.NoError(t, err)
	_, err = svc.CompleteHabit(ctx, "alice", h.ID, CompleteInput{Date: day(1)})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteHabit(ctx, "alice", h.ID))
	assert.ErrorIs(t, svc.DeleteHabit(ctx, "alice", h.ID), ErrHabitNotFound)

	snap := snapshotOf(t, svc, "alice")
	assert.Empty(t, snap.Habits)
	assert.Empty(t, snap.Completions)
	assert.Len(t, snap.XPLogs, 1)
	assert.Equal(t, 15, snap.Profile.TotalXP)
	requireConsistent(t, svc, "alice")

	item, err := svc.CreateShopItem(ctx, "alice", ShopItemInput{Name: "Coffee", Cost: 5})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteShopItem(ctx, "alice", item.ID))
	assert.ErrorIs(t, svc.DeleteShopItem(ctx, "alice", item.ID), ErrItemNotFound)

	g, err := svc.CreateGoal(ctx, "alice", GoalInput{Title: "Plank", TargetValue: 3})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteGoal(ctx, "alice", g.ID))
	_, err = svc.GetGoal(ctx, "alice", g.ID)
	assert.ErrorIs(t, err, ErrGoalNotFound)
}

func TestAudit_DetectsDrift(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	register(t, svc, "alice")
	register(t, svc, "bob")
	_, err := svc.GrantXP(ctx, "alice", GrantInput{Amount: 10, Type: models.XPTypeManual})
	require.NoError(t, err)

	// Corrupt bob directly through the store.
	snap := snapshotOf(t, svc, "bob")
	snap.Profile.TotalXP = 70
	snap.Version++
	require.NoError(t, svc.uow.Store().Save(ctx, snap))

	failing, err := svc.VerifyAll(ctx)
	require.NoError(t, err)
	require.Len(t, failing, 1)
	assert.Equal(t, "bob", failing[0].UserID)

	checks := map[string]bool{}
	for _, v := range failing[0].Violations {
		checks[v.Check] = true
	}
	assert.True(t, checks["balance"])
}

func TestRegisterProfile(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	p, err := svc.RegisterProfile(ctx, "alice", "Alice")
	require.NoError(t, err)
	assert.Equal(t, 1, p.Level)
	assert.Equal(t, models.RankE, p.Rank)

	_, err = svc.RegisterProfile(ctx, "alice", "Alice")
	assert.ErrorIs(t, err, ErrProfileExists)
	_, err = svc.RegisterProfile(ctx, " ", "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	again, err := svc.EnsureProfile(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice", again.DisplayName)
}
