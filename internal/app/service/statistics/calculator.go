package statistics

import (
	"math"
	"slices"
	"time"

	"github.com/samber/lo"

	"github.com/fatflowers/quitsmart/internal/models"
	"github.com/fatflowers/quitsmart/pkg/tool"
)

// Statistics is derived from an account's daily log. Every field can be
// recomputed from raw entries at any time.
type Statistics struct {
	TotalDays              int        `json:"total_days"`
	CurrentStreak          int        `json:"current_streak"`
	LongestStreak          int        `json:"longest_streak"`
	TotalCigarettesAvoided int        `json:"total_cigarettes_avoided"`
	TotalMoneySaved        float64    `json:"total_money_saved"`
	TotalExerciseMinutes   int        `json:"total_exercise_minutes"`
	AverageMood            float64    `json:"average_mood"`
	AverageCraving         float64    `json:"average_craving"`
	AverageSleepHours      float64    `json:"average_sleep_hours"`
	AverageHealthScore     float64    `json:"average_health_score"`
	DaysSinceQuit          int        `json:"days_since_quit"`
	FirstEntryDate         *time.Time `json:"first_entry_date,omitempty"`
	LastEntryDate          *time.Time `json:"last_entry_date,omitempty"`
}

// Compute derives statistics from entries as of now. Entries may arrive in
// any order and may repeat a date; the most recently updated entry of a day
// wins. quitDate may be zero when the account has no profile.
func Compute(entries []*models.DailyLogEntry, quitDate time.Time, now time.Time) Statistics {
	var st Statistics
	today := tool.DayOf(now)
	if !quitDate.IsZero() {
		st.DaysSinceQuit = max(0, tool.DaysBetween(quitDate, today))
	}

	days := dedupe(entries)
	if len(days) == 0 {
		return st
	}
	st.TotalDays = len(days)
	st.FirstEntryDate = lo.ToPtr(tool.DayOf(days[0].Date))
	st.LastEntryDate = lo.ToPtr(tool.DayOf(days[len(days)-1].Date))

	var mood, craving, sleep, health mean
	for _, e := range days {
		st.TotalCigarettesAvoided += e.CigarettesAvoided
		st.TotalMoneySaved += e.MoneySaved
		if e.ExerciseMinutes != nil {
			st.TotalExerciseMinutes += *e.ExerciseMinutes
		}
		mood.addInt(e.Mood)
		craving.addInt(e.CravingLevel)
		health.addInt(e.HealthScore)
		sleep.addFloat(e.SleepHours)
	}
	st.AverageMood = mood.value()
	st.AverageCraving = craving.value()
	st.AverageSleepHours = sleep.value()
	st.AverageHealthScore = health.value()

	st.CurrentStreak = currentStreak(days, today)
	st.LongestStreak = longestStreak(days)
	return st
}

// dedupe returns one entry per calendar day sorted by date ascending.
func dedupe(entries []*models.DailyLogEntry) []*models.DailyLogEntry {
	byDay := make(map[time.Time]*models.DailyLogEntry, len(entries))
	for _, e := range entries {
		if e == nil {
			continue
		}
		d := tool.DayOf(e.Date)
		if cur, ok := byDay[d]; !ok || e.UpdatedAt.After(cur.UpdatedAt) {
			byDay[d] = e
		}
	}
	out := lo.Values(byDay)
	slices.SortFunc(out, func(a, b *models.DailyLogEntry) int {
		return tool.DayOf(a.Date).Compare(tool.DayOf(b.Date))
	})
	return out
}

// currentStreak counts consecutive logged days ending today; 0 when today
// has no entry. days must be deduplicated and sorted ascending.
func currentStreak(days []*models.DailyLogEntry, today time.Time) int {
	streak := 0
	for i := len(days) - 1; i >= 0; i-- {
		d := tool.DayOf(days[i].Date)
		if d.After(today) {
			continue
		}
		if !d.Equal(today.AddDate(0, 0, -streak)) {
			break
		}
		streak++
	}
	return streak
}

func longestStreak(days []*models.DailyLogEntry) int {
	if len(days) == 0 {
		return 0
	}
	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		if tool.DaysBetween(days[i-1].Date, days[i].Date) == 1 {
			run++
		} else {
			run = 1
		}
		longest = max(longest, run)
	}
	return longest
}

type mean struct {
	sum float64
	n   int
}

func (m *mean) addInt(v *int) {
	if v != nil {
		m.sum += float64(*v)
		m.n++
	}
}

func (m *mean) addFloat(v *float64) {
	if v != nil {
		m.sum += *v
		m.n++
	}
}

func (m mean) value() float64 {
	if m.n == 0 {
		return 0
	}
	return m.sum / float64(m.n)
}

// PercentileRank is the share of population strictly below subject, as a
// whole percentage rounded half to even. An empty population ranks 0.
func PercentileRank(subject int, population []int) int {
	if len(population) == 0 {
		return 0
	}
	below := lo.CountBy(population, func(v int) bool { return v < subject })
	return int(math.RoundToEven(float64(below) / float64(len(population)) * 100))
}
