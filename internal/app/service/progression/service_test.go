package progression

import (
	"context"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fatflowers/quitsmart/internal/app/service/achievement"
	"github.com/fatflowers/quitsmart/internal/app/service/changelog"
	"github.com/fatflowers/quitsmart/internal/app/service/entitlement"
	"github.com/fatflowers/quitsmart/internal/app/service/stage"
	"github.com/fatflowers/quitsmart/internal/app/service/statistics"
	"github.com/fatflowers/quitsmart/internal/models"
	"github.com/fatflowers/quitsmart/internal/store"
	"github.com/fatflowers/quitsmart/pkg/apperr"
	"github.com/fatflowers/quitsmart/pkg/authz"
	"github.com/fatflowers/quitsmart/pkg/config"
	"github.com/fatflowers/quitsmart/pkg/tool"
)

var now = time.Date(2025, 3, 10, 20, 0, 0, 0, time.UTC)

type fixture struct {
	svc *Service
	st  *store.MemoryStore
	cl  *changelog.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := store.NewMemoryStore()
	svc, cl := wire(t, st)
	return &fixture{svc: svc, st: st, cl: cl}
}

func wire(t *testing.T, st store.Store) (*Service, *changelog.Service) {
	t.Helper()
	log := zap.NewNop().Sugar()
	clock := tool.FixedClock(now)
	cfg := &config.Config{Packages: config.DefaultPackages()}

	cl := changelog.New(st, log)
	stats := statistics.NewService(st, log).WithClock(clock)
	ent := entitlement.NewService(cfg, st, cl, nil, log).WithClock(clock)
	stages := stage.NewService(st, ent, cl, nil, log).WithClock(clock)
	ach := achievement.NewService(st, nil, log).WithClock(clock)
	_, err := ach.SeedCatalog(context.Background(), config.DefaultAchievements())
	require.NoError(t, err)

	svc := NewService(st, stats, ent, stages, ach, nil, log).WithClock(clock)
	t.Cleanup(cl.Wait)
	return svc, cl
}

func daysAgo(n int) time.Time {
	return tool.DayOf(now).AddDate(0, 0, -n)
}

func entry(date time.Time) EntryInput {
	return EntryInput{Date: date, CigarettesAvoided: 10, MoneySaved: 15000, Mood: lo.ToPtr(4)}
}

func TestService_RecordDailyEntry(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.SaveSmokingProfile(ctx, "acc", ProfileInput{
		QuitDate: daysAgo(10), CigarettesPerDay: 10, YearsSmoked: 8, CostPerPack: 30000, CigarettesPerPack: 20,
	})
	require.NoError(t, err)

	var res *EntryResult
	for i := 6; i >= 0; i-- {
		res, err = f.svc.RecordDailyEntry(ctx, "acc", "acc", entry(daysAgo(i)))
		require.NoError(t, err)
		if i > 0 {
			// the streak only counts once today is logged
			require.Zero(t, res.Statistics.CurrentStreak)
			require.Empty(t, res.Unlocked)
		}
	}
	require.Equal(t, 7, res.Statistics.CurrentStreak)
	require.ElementsMatch(t, []string{"First Day", "One Week Strong", "Saver"}, unlockedNames(res.Unlocked))
	require.Equal(t, "acc", res.Entry.RecordedBy)

	p, err := f.st.GetProfile(ctx, "acc")
	require.NoError(t, err)
	require.Equal(t, 7, p.CurrentStreak)
	require.Equal(t, 7, p.LongestStreak)
	require.Equal(t, 70, p.CigarettesAvoided)
	require.InDelta(t, 105000, p.MoneySaved, 1e-9)
	require.NotNil(t, p.StatsRecomputedAt)
}

func TestService_RecordDailyEntryValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.RecordDailyEntry(ctx, "acc", "acc", entry(daysAgo(0)))
	require.NoError(t, err)

	cases := map[string]EntryInput{
		"duplicate date":    entry(daysAgo(0)),
		"missing date":      {CigarettesAvoided: 1},
		"future date":       entry(daysAgo(-1)),
		"mood out of range": {Date: daysAgo(1), Mood: lo.ToPtr(6)},
		"craving zero":      {Date: daysAgo(1), CravingLevel: lo.ToPtr(0)},
		"negative avoided":  {Date: daysAgo(1), CigarettesAvoided: -1},
		"too much sleep":    {Date: daysAgo(1), SleepHours: lo.ToPtr(25.0)},
	}
	for name, in := range cases {
		_, err := f.svc.RecordDailyEntry(ctx, "acc", "acc", in)
		require.ErrorIs(t, err, apperr.ErrValidation, name)
	}
}

func TestService_RecordWithoutProfileStillEvaluates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	res, err := f.svc.RecordDailyEntry(ctx, "acc", "acc", entry(daysAgo(0)))
	require.NoError(t, err)
	require.Equal(t, 1, res.Statistics.CurrentStreak)
	require.Equal(t, []string{"First Day"}, unlockedNames(res.Unlocked))
}

func TestService_RecordDailyEntryFor(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.RecordDailyEntryFor(ctx, authz.Account{ID: "other", Roles: []string{authz.RoleUser}}, "acc", entry(daysAgo(0)))
	require.ErrorIs(t, err, apperr.ErrEntitlement)

	res, err := f.svc.RecordDailyEntryFor(ctx, authz.Account{ID: "coach-1", Roles: []string{authz.RoleCoach}}, "acc", entry(daysAgo(0)))
	require.NoError(t, err)
	require.Equal(t, "coach-1", res.Entry.RecordedBy)
	require.Equal(t, "acc", res.Entry.AccountID)
}

func TestService_UpdateAndDeleteDailyEntry(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.svc.SaveSmokingProfile(ctx, "acc", ProfileInput{QuitDate: daysAgo(3), CigarettesPerDay: 10, YearsSmoked: 2, CostPerPack: 20000, CigarettesPerPack: 20})
	require.NoError(t, err)

	first, err := f.svc.RecordDailyEntry(ctx, "acc", "acc", entry(daysAgo(1)))
	require.NoError(t, err)
	_, err = f.svc.RecordDailyEntry(ctx, "acc", "acc", entry(daysAgo(0)))
	require.NoError(t, err)

	in := entry(time.Time{})
	in.CigarettesAvoided = 3
	upd, err := f.svc.UpdateDailyEntry(ctx, "acc", first.Entry.ID, in)
	require.NoError(t, err)
	require.Equal(t, 13, upd.Statistics.TotalCigarettesAvoided)

	_, err = f.svc.UpdateDailyEntry(ctx, "acc", first.Entry.ID, entry(daysAgo(2)))
	require.ErrorIs(t, err, apperr.ErrValidation)
	_, err = f.svc.UpdateDailyEntry(ctx, "other", first.Entry.ID, in)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	require.NoError(t, f.svc.DeleteDailyEntry(ctx, "acc", first.Entry.ID))
	require.ErrorIs(t, f.svc.DeleteDailyEntry(ctx, "acc", first.Entry.ID), apperr.ErrNotFound)

	p, err := f.st.GetProfile(ctx, "acc")
	require.NoError(t, err)
	require.Equal(t, 1, p.CurrentStreak)
	require.Equal(t, 10, p.CigarettesAvoided)

	list, err := f.svc.ListDailyEntries(ctx, "acc", daysAgo(5), daysAgo(0))
	require.NoError(t, err)
	require.Len(t, list, 1)
	_, err = f.svc.ListDailyEntries(ctx, "acc", daysAgo(0), daysAgo(5))
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestService_GetStatisticsIgnoresStaleCache(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.svc.SaveSmokingProfile(ctx, "acc", ProfileInput{QuitDate: daysAgo(3), CigarettesPerDay: 10, YearsSmoked: 2})
	require.NoError(t, err)
	_, err = f.svc.RecordDailyEntry(ctx, "acc", "acc", entry(daysAgo(0)))
	require.NoError(t, err)

	p, err := f.st.GetProfile(ctx, "acc")
	require.NoError(t, err)
	p.CurrentStreak = 99
	require.NoError(t, f.st.SaveProfile(ctx, p))

	stats, err := f.svc.GetStatistics(ctx, "acc")
	require.NoError(t, err)
	require.Equal(t, 1, stats.CurrentStreak)
	require.Equal(t, 3, stats.DaysSinceQuit)
}

// afterGetProfileStore runs hook once, right after the next profile read.
type afterGetProfileStore struct {
	store.Store
	hook func()
}

func (s *afterGetProfileStore) GetProfile(ctx context.Context, accountID string) (*models.SmokingProfile, error) {
	p, err := s.Store.GetProfile(ctx, accountID)
	if h := s.hook; h != nil {
		s.hook = nil
		h()
	}
	return p, err
}

func TestService_RecomputeKeepsConcurrentBaselineUpdate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.svc.SaveSmokingProfile(ctx, "acc", ProfileInput{QuitDate: daysAgo(3), CigarettesPerDay: 10, YearsSmoked: 5})
	require.NoError(t, err)

	wrapped := &afterGetProfileStore{Store: f.st}
	svc, _ := wire(t, wrapped)
	wrapped.hook = func() {
		_, err := f.svc.SaveSmokingProfile(ctx, "acc", ProfileInput{QuitDate: daysAgo(10), CigarettesPerDay: 30, YearsSmoked: 20})
		require.NoError(t, err)
	}

	res, err := svc.RecordDailyEntry(ctx, "acc", "acc", entry(daysAgo(0)))
	require.NoError(t, err)
	require.Nil(t, wrapped.hook)
	require.Equal(t, 1, res.Statistics.CurrentStreak)

	p, err := f.st.GetProfile(ctx, "acc")
	require.NoError(t, err)
	require.Equal(t, 30, p.CigarettesPerDay)
	require.Equal(t, 20, p.YearsSmoked)
	require.Equal(t, daysAgo(10), p.QuitDate)
	require.Equal(t, 1, p.CurrentStreak)
	require.Equal(t, 10, p.CigarettesAvoided)
	require.NotNil(t, p.StatsRecomputedAt)
}

func TestService_SaveSmokingProfileValidation(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.SaveSmokingProfile(context.Background(), "acc", ProfileInput{CigarettesPerDay: 10})
	require.ErrorIs(t, err, apperr.ErrValidation)
	_, err = f.svc.SaveSmokingProfile(context.Background(), "acc", ProfileInput{QuitDate: now, CigarettesPerDay: -1})
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestService_UpgradeSubscriptionOpensPreparation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	res, err := f.svc.UpgradeSubscription(ctx, "acc", entitlement.UpgradeRequest{PackageID: "premium_month"})
	require.NoError(t, err)
	require.True(t, res.Entitlement.IsActive)
	require.NotNil(t, res.Stage)
	require.Equal(t, models.StagePreparation, res.Stage.Stage)

	// renewing does not open another stage
	res, err = f.svc.UpgradeSubscription(ctx, "acc", entitlement.UpgradeRequest{PackageID: "premium_quarter"})
	require.NoError(t, err)
	require.Nil(t, res.Stage)

	stages, err := f.st.ListStages(ctx, "acc")
	require.NoError(t, err)
	require.Len(t, stages, 1)
}

func TestService_UpgradeToBasicSkipsStage(t *testing.T) {
	f := newFixture(t)
	res, err := f.svc.UpgradeSubscription(context.Background(), "acc", entitlement.UpgradeRequest{Tier: models.TierBasic, DurationDays: 30})
	require.NoError(t, err)
	require.Nil(t, res.Stage)
	require.False(t, res.Entitlement.IsActive)
	require.True(t, res.Entitlement.HasPackage)
}

func TestService_AdvanceStage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.AdvanceStage(ctx, "acc", "", "acc")
	require.ErrorIs(t, err, apperr.ErrEntitlement)

	_, err = f.svc.UpgradeSubscription(ctx, "acc", entitlement.UpgradeRequest{PackageID: "premium_month"})
	require.NoError(t, err)
	adv, err := f.svc.AdvanceStage(ctx, "acc", "", "acc")
	require.NoError(t, err)
	require.Equal(t, models.StageInitialQuit, adv.Opened.Stage)
	require.False(t, adv.OffSequence)
}

func TestService_CheckAchievements(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.st.AddPosts("acc", 1)

	got, err := f.svc.CheckAchievements(ctx, "acc")
	require.NoError(t, err)
	require.Equal(t, []string{"First Post"}, unlockedNames(got))

	got, err = f.svc.CheckAchievements(ctx, "acc")
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestRetryOnConflict(t *testing.T) {
	calls := 0
	v, err := retryOnConflict(func() (int, error) {
		calls++
		if calls == 1 {
			return 0, apperr.Conflict("busy")
		}
		return 7, nil
	})
	require.NoError(t, err)
	require.Equal(t, 7, v)
	require.Equal(t, 2, calls)

	calls = 0
	_, err = retryOnConflict(func() (int, error) {
		calls++
		return 0, apperr.Conflict("busy")
	})
	require.ErrorIs(t, err, apperr.ErrConflict)
	require.Equal(t, 2, calls)
}

func unlockedNames(us []achievement.Unlocked) []string {
	return lo.Map(us, func(u achievement.Unlocked, _ int) string { return u.Achievement.Name })
}
