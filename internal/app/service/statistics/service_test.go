package statistics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fatflowers/quitsmart/internal/models"
	"github.com/fatflowers/quitsmart/internal/store"
	"github.com/fatflowers/quitsmart/pkg/apperr"
	"github.com/fatflowers/quitsmart/pkg/tool"
)

func seedProfiles(t *testing.T, st store.Store, profiles map[string][2]int) {
	t.Helper()
	for acc, v := range profiles {
		require.NoError(t, st.SaveProfile(context.Background(), &models.SmokingProfile{
			ID: tool.GenerateUUIDV7(), AccountID: acc, QuitDate: day(1),
			CigarettesPerDay: v[0], YearsSmoked: v[1], CostPerPack: 20000, CigarettesPerPack: 20,
		}))
	}
}

func TestService_RiskReport(t *testing.T) {
	st := store.NewMemoryStore()
	seedProfiles(t, st, map[string][2]int{
		"a": {5, 10},  // 50
		"b": {10, 10}, // 100
		"c": {15, 10}, // 150
		"d": {20, 15}, // 300
	})
	svc := NewService(st, zap.NewNop().Sugar()).WithClock(tool.FixedClock(day(11)))

	r, err := svc.RiskReport(context.Background(), "c")
	require.NoError(t, err)
	require.Equal(t, 150, r.Index)
	require.Equal(t, RiskMedium, r.Level)
	require.Equal(t, 50, r.Percentile)
	require.Equal(t, 4, r.PopulationSize)
	require.InDelta(t, 150.0, r.SystemAverageIndex, 1e-9)
	require.Equal(t, 10, r.Savings.SmokeFreeDays)
	require.Equal(t, 150, r.Savings.CigarettesAvoided)
}

func TestService_RiskReport_NoProfile(t *testing.T) {
	svc := NewService(store.NewMemoryStore(), zap.NewNop().Sugar())
	_, err := svc.RiskReport(context.Background(), "nobody")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestService_RiskOverview(t *testing.T) {
	st := store.NewMemoryStore()
	seedProfiles(t, st, map[string][2]int{"a": {5, 10}, "b": {10, 10}, "c": {15, 10}, "d": {20, 15}})
	svc := NewService(st, zap.NewNop().Sugar())

	ov, err := svc.RiskOverview(context.Background())
	require.NoError(t, err)
	require.Equal(t, 4, ov.Total)
	require.Equal(t, []BandCount{
		{Level: RiskLow, Count: 1, Percent: 25},
		{Level: RiskMedium, Count: 2, Percent: 50},
		{Level: RiskHigh, Count: 1, Percent: 25},
	}, ov.Bands)

	empty, err := NewService(store.NewMemoryStore(), zap.NewNop().Sugar()).RiskOverview(context.Background())
	require.NoError(t, err)
	require.Zero(t, empty.Total)
	require.Len(t, empty.Bands, 3)
}

func TestService_ForAccount(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	seedProfiles(t, st, map[string][2]int{"a": {10, 5}})
	for _, d := range []int{8, 9, 10} {
		require.NoError(t, st.InsertDailyEntry(ctx, &models.DailyLogEntry{ID: tool.GenerateUUIDV7(), AccountID: "a", Date: day(d)}))
	}
	svc := NewService(st, zap.NewNop().Sugar()).WithClock(tool.FixedClock(day(10)))

	stats, profile, err := svc.ForAccount(ctx, "a")
	require.NoError(t, err)
	require.NotNil(t, profile)
	require.Equal(t, 3, stats.CurrentStreak)
	require.Equal(t, 9, stats.DaysSinceQuit)

	stats, profile, err = svc.ForAccount(ctx, "nobody")
	require.NoError(t, err)
	require.Nil(t, profile)
	require.Zero(t, stats.TotalDays)
}
