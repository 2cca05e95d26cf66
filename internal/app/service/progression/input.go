package progression

import (
	"time"

	"github.com/fatflowers/quitsmart/internal/models"
	"github.com/fatflowers/quitsmart/pkg/apperr"
	"github.com/fatflowers/quitsmart/pkg/tool"
)

// EntryInput is one day of self-reported data.
type EntryInput struct {
	Date              time.Time
	CigarettesAvoided int
	MoneySaved        float64
	HealthScore       *int
	Mood              *int
	CravingLevel      *int
	Weight            *float64
	ExerciseMinutes   *int
	SleepHours        *float64
	Notes             string
}

func between[T int | float64](v *T, lo, hi T) bool {
	return v == nil || (*v >= lo && *v <= hi)
}

func (in EntryInput) validate(now time.Time) error {
	switch {
	case in.Date.IsZero():
		return apperr.Validation("date required")
	case tool.DayOf(in.Date).After(tool.DayOf(now)):
		return apperr.Validation("date %s is in the future", in.Date.Format(tool.DateLayout))
	case in.CigarettesAvoided < 0:
		return apperr.Validation("cigarettes_avoided must not be negative")
	case in.MoneySaved < 0:
		return apperr.Validation("money_saved must not be negative")
	case !between(in.Mood, 1, 5):
		return apperr.Validation("mood must be between 1 and 5")
	case !between(in.CravingLevel, 1, 5):
		return apperr.Validation("craving_level must be between 1 and 5")
	case !between(in.HealthScore, 0, 100):
		return apperr.Validation("health_score must be between 0 and 100")
	case !between(in.ExerciseMinutes, 0, 24*60):
		return apperr.Validation("exercise_minutes must be between 0 and 1440")
	case !between(in.SleepHours, 0, 24):
		return apperr.Validation("sleep_hours must be between 0 and 24")
	case in.Weight != nil && *in.Weight <= 0:
		return apperr.Validation("weight must be positive")
	}
	return nil
}

// apply copies the mutable fields onto e. The date is not one of them.
func (in EntryInput) apply(e *models.DailyLogEntry) {
	e.CigarettesAvoided = in.CigarettesAvoided
	e.MoneySaved = in.MoneySaved
	e.HealthScore = in.HealthScore
	e.Mood = in.Mood
	e.CravingLevel = in.CravingLevel
	e.Weight = in.Weight
	e.ExerciseMinutes = in.ExerciseMinutes
	e.SleepHours = in.SleepHours
	e.Notes = in.Notes
}

// ProfileInput is the smoking baseline of an account.
type ProfileInput struct {
	QuitDate          time.Time
	CigarettesPerDay  int
	YearsSmoked       int
	CostPerPack       float64
	CigarettesPerPack int
}

func (in ProfileInput) validate() error {
	switch {
	case in.QuitDate.IsZero():
		return apperr.Validation("quit_date required")
	case in.CigarettesPerDay < 0:
		return apperr.Validation("cigarettes_per_day must not be negative")
	case in.YearsSmoked < 0:
		return apperr.Validation("years_smoked must not be negative")
	case in.CostPerPack < 0:
		return apperr.Validation("cost_per_pack must not be negative")
	case in.CigarettesPerPack < 0:
		return apperr.Validation("cigarettes_per_pack must not be negative")
	}
	return nil
}
