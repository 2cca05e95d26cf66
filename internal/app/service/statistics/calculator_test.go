package statistics

import (
	"math/rand"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"github.com/fatflowers/quitsmart/internal/models"
)

func day(n int) time.Time {
	return time.Date(2024, 1, n, 0, 0, 0, 0, time.UTC)
}

func entriesOn(days ...int) []*models.DailyLogEntry {
	return lo.Map(days, func(d int, _ int) *models.DailyLogEntry {
		return &models.DailyLogEntry{AccountID: "acc-1", Date: day(d), CigarettesAvoided: 10, MoneySaved: 2.5}
	})
}

func TestCompute_StreaksWithGap(t *testing.T) {
	// day 4 missing, evaluated on day 6 afternoon
	st := Compute(entriesOn(1, 2, 3, 5, 6), time.Time{}, day(6).Add(15*time.Hour))
	require.Equal(t, 2, st.CurrentStreak)
	require.Equal(t, 3, st.LongestStreak)
	require.Equal(t, 5, st.TotalDays)
	require.Equal(t, 50, st.TotalCigarettesAvoided)
	require.InDelta(t, 12.5, st.TotalMoneySaved, 1e-9)
	require.Equal(t, day(1), *st.FirstEntryDate)
	require.Equal(t, day(6), *st.LastEntryDate)
}

func TestCompute_CurrentStreakZeroWhenTodayMissing(t *testing.T) {
	st := Compute(entriesOn(1, 2, 3), time.Time{}, day(4))
	require.Equal(t, 0, st.CurrentStreak)
	require.Equal(t, 3, st.LongestStreak)
}

func TestCompute_TodayAfterUnbrokenStreak(t *testing.T) {
	entries := entriesOn(1, 2, 3, 4)
	before := Compute(entries, time.Time{}, day(4))
	require.Equal(t, 4, before.CurrentStreak)

	after := Compute(append(entries, entriesOn(5)...), time.Time{}, day(5))
	require.Equal(t, before.CurrentStreak+1, after.CurrentStreak)

	// one-day gap: day 6 missing, day 7 logged
	gap := Compute(append(entries, entriesOn(5, 7)...), time.Time{}, day(7))
	require.Equal(t, 1, gap.CurrentStreak)
}

func TestCompute_Empty(t *testing.T) {
	st := Compute(nil, day(1), day(11))
	require.Equal(t, Statistics{DaysSinceQuit: 10}, st)
}

func TestCompute_UnsortedAndDuplicateDates(t *testing.T) {
	older := &models.DailyLogEntry{Date: day(2), CigarettesAvoided: 1, UpdatedAt: day(2)}
	newer := &models.DailyLogEntry{Date: day(2).Add(3 * time.Hour), CigarettesAvoided: 7, UpdatedAt: day(3)}
	entries := []*models.DailyLogEntry{entriesOn(3)[0], newer, entriesOn(1)[0], older, nil}

	st := Compute(entries, time.Time{}, day(3))
	require.Equal(t, 3, st.TotalDays)
	require.Equal(t, 3, st.CurrentStreak)
	require.Equal(t, 3, st.LongestStreak)
	require.Equal(t, 27, st.TotalCigarettesAvoided)
}

func TestCompute_AveragesIgnoreMissingValues(t *testing.T) {
	entries := []*models.DailyLogEntry{
		{Date: day(1), Mood: lo.ToPtr(2), SleepHours: lo.ToPtr(6.0), ExerciseMinutes: lo.ToPtr(30)},
		{Date: day(2), Mood: lo.ToPtr(4), CravingLevel: lo.ToPtr(5)},
		{Date: day(3)},
	}
	st := Compute(entries, time.Time{}, day(3))
	require.InDelta(t, 3.0, st.AverageMood, 1e-9)
	require.InDelta(t, 5.0, st.AverageCraving, 1e-9)
	require.InDelta(t, 6.0, st.AverageSleepHours, 1e-9)
	require.Zero(t, st.AverageHealthScore)
	require.Equal(t, 30, st.TotalExerciseMinutes)
}

func TestCompute_DaysSinceQuit(t *testing.T) {
	require.Equal(t, 5, Compute(nil, day(1), day(6)).DaysSinceQuit)
	// quit date in the future clamps to zero
	require.Equal(t, 0, Compute(nil, day(9), day(6)).DaysSinceQuit)
}

func TestCompute_FutureEntriesDoNotCountTowardsToday(t *testing.T) {
	st := Compute(entriesOn(1, 2, 9), time.Time{}, day(2))
	require.Equal(t, 2, st.CurrentStreak)
}

func TestCompute_CurrentNeverExceedsLongest(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		var days []int
		for d := 1; d <= 28; d++ {
			if r.Intn(3) > 0 {
				days = append(days, d)
			}
		}
		r.Shuffle(len(days), func(a, b int) { days[a], days[b] = days[b], days[a] })
		st := Compute(entriesOn(days...), time.Time{}, day(1+r.Intn(28)))
		require.LessOrEqual(t, st.CurrentStreak, st.LongestStreak)
	}
}

func TestPercentileRank(t *testing.T) {
	require.Equal(t, 0, PercentileRank(100, nil))
	require.Equal(t, 50, PercentileRank(150, []int{50, 100, 150, 200}))
	require.Equal(t, 0, PercentileRank(10, []int{10, 20}))
	require.Equal(t, 100, PercentileRank(999, []int{10, 20}))
	// 1/8 = 12.5 rounds to even
	require.Equal(t, 12, PercentileRank(2, []int{1, 2, 3, 4, 5, 6, 7, 8}))
	// 3/8 = 37.5 rounds to even
	require.Equal(t, 38, PercentileRank(4, []int{1, 2, 3, 4, 5, 6, 7, 8}))
}
