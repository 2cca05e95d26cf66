package achievement

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fatflowers/quitsmart/internal/app/service/statistics"
	"github.com/fatflowers/quitsmart/internal/models"
	"github.com/fatflowers/quitsmart/internal/store"
	"github.com/fatflowers/quitsmart/pkg/apperr"
	"github.com/fatflowers/quitsmart/pkg/config"
	"github.com/fatflowers/quitsmart/pkg/tool"
)

var now = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func newSeededService(t *testing.T) (*Service, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	svc := NewService(st, nil, zap.NewNop().Sugar()).WithClock(tool.FixedClock(now))
	n, err := svc.SeedCatalog(context.Background(), config.DefaultAchievements())
	require.NoError(t, err)
	require.Equal(t, len(config.DefaultAchievements()), n)
	return svc, st
}

func names(us []Unlocked) []string {
	return lo.Map(us, func(u Unlocked, _ int) string { return u.Achievement.Name })
}

func TestService_SeedCatalogIsIdempotent(t *testing.T) {
	svc, st := newSeededService(t)
	n, err := svc.SeedCatalog(context.Background(), config.DefaultAchievements())
	require.NoError(t, err)
	require.Zero(t, n)

	defs, err := st.ListAchievements(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, defs, len(config.DefaultAchievements()))
}

func TestService_EvaluateUnlocksOnce(t *testing.T) {
	ctx := context.Background()
	svc, _ := newSeededService(t)
	stats := statistics.Statistics{CurrentStreak: 7, LongestStreak: 7, TotalMoneySaved: 50000}

	got, err := svc.Evaluate(ctx, "acc", stats)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"First Day", "One Week Strong"}, names(got))
	require.Equal(t, now, got[0].UnlockedAt)

	again, err := svc.Evaluate(ctx, "acc", stats)
	require.NoError(t, err)
	require.Empty(t, again)

	unlocked, err := svc.ListUnlocked(ctx, "acc")
	require.NoError(t, err)
	require.Len(t, unlocked, 2)
}

func TestService_EvaluateActivityCategories(t *testing.T) {
	ctx := context.Background()
	svc, st := newSeededService(t)
	st.AddPosts("acc", 1)
	st.AddComments("acc", 9)
	st.AddQuitPlan("acc", models.QuitPlanStatusCompleted)

	got, err := svc.Evaluate(ctx, "acc", statistics.Statistics{})
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"First Post", "Planner"}, names(got))

	st.AddComments("acc", 1)
	got, err = svc.Evaluate(ctx, "acc", statistics.Statistics{})
	require.NoError(t, err)
	require.Equal(t, []string{"Supporter"}, names(got))
}

func TestService_ConcurrentEvaluateUnlocksOnce(t *testing.T) {
	ctx := context.Background()
	svc, _ := newSeededService(t)
	stats := statistics.Statistics{CurrentStreak: 1}

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		total int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := svc.Evaluate(ctx, "acc", stats)
			assert.NoError(t, err)
			mu.Lock()
			total += len(got)
			mu.Unlock()
		}()
	}
	wg.Wait()
	require.Equal(t, 1, total)
}

func TestService_ListForAccount(t *testing.T) {
	ctx := context.Background()
	svc, _ := newSeededService(t)
	stats := statistics.Statistics{CurrentStreak: 6}

	_, err := svc.Evaluate(ctx, "acc", stats)
	require.NoError(t, err)

	list, err := svc.ListForAccount(ctx, "acc", stats)
	require.NoError(t, err)
	require.Len(t, list, len(config.DefaultAchievements()))

	byName := lo.KeyBy(list, func(s Status) string { return s.Achievement.Name })
	require.True(t, byName["First Day"].Unlocked)
	require.NotNil(t, byName["First Day"].UnlockedAt)
	week := byName["One Week Strong"]
	require.False(t, week.Unlocked)
	require.Equal(t, 6, week.Progress)
	require.InDelta(t, 85.7, week.Percent, 0.05)
}

func TestService_CreateDefinition(t *testing.T) {
	ctx := context.Background()
	svc, _ := newSeededService(t)

	a, err := svc.CreateDefinition(ctx, Definition{
		Name: "Two Weeks", Category: models.AchievementCategorySmokeFreeDays, RequiredValue: 14, Points: 80,
		Reward: map[string]any{"badge": "silver"},
	})
	require.NoError(t, err)
	require.True(t, a.IsActive)
	require.Equal(t, "silver", a.Reward["badge"])

	_, err = svc.CreateDefinition(ctx, Definition{Name: "Two Weeks", Category: models.AchievementCategorySmokeFreeDays})
	require.ErrorIs(t, err, apperr.ErrConflict)
	_, err = svc.CreateDefinition(ctx, Definition{Name: "Walker", Category: "STEPS"})
	require.ErrorIs(t, err, apperr.ErrValidation)
	_, err = svc.CreateDefinition(ctx, Definition{Name: " ", Category: models.AchievementCategoryMoneySaved})
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestService_Leaderboard(t *testing.T) {
	ctx := context.Background()
	svc, _ := newSeededService(t)

	_, err := svc.Evaluate(ctx, "alice", statistics.Statistics{CurrentStreak: 7})
	require.NoError(t, err)
	_, err = svc.Evaluate(ctx, "bob", statistics.Statistics{CurrentStreak: 1})
	require.NoError(t, err)

	rows, err := svc.Leaderboard(ctx, 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "alice", rows[0].AccountID)
	require.EqualValues(t, 2, rows[0].UnlockedCount)
	require.EqualValues(t, 60, rows[0].Points)

	rows, err = svc.Leaderboard(ctx, 1)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
