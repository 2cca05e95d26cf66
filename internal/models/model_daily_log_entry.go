package models

import "time"

// DailyLogEntry is one account's record for one calendar day.
// Date is stored as a UTC calendar date and never changes after creation.
type DailyLogEntry struct {
	ID                string    `gorm:"column:id;type:uuid;primary_key" json:"id"`
	AccountID         string    `gorm:"column:account_id;type:varchar(64);not null;uniqueIndex:idx_daily_log_account_date,priority:1" json:"account_id"`
	Date              time.Time `gorm:"column:date;type:date;not null;uniqueIndex:idx_daily_log_account_date,priority:2" json:"date"`
	CigarettesAvoided int       `gorm:"column:cigarettes_avoided;not null" json:"cigarettes_avoided"`
	MoneySaved        float64   `gorm:"column:money_saved;type:numeric(14,2);not null" json:"money_saved"`
	// Optional metrics; nil means not reported and is excluded from averages.
	HealthScore     *int     `gorm:"column:health_score" json:"health_score,omitempty"`
	Mood            *int     `gorm:"column:mood" json:"mood,omitempty"`
	CravingLevel    *int     `gorm:"column:craving_level" json:"craving_level,omitempty"`
	Weight          *float64 `gorm:"column:weight" json:"weight,omitempty"`
	ExerciseMinutes *int     `gorm:"column:exercise_minutes" json:"exercise_minutes,omitempty"`
	SleepHours      *float64 `gorm:"column:sleep_hours" json:"sleep_hours,omitempty"`
	Notes           string   `gorm:"column:notes;type:text" json:"notes"`
	// RecordedBy is the account that wrote the entry: the owner or a coach.
	RecordedBy string    `gorm:"column:recorded_by;type:varchar(64);not null" json:"recorded_by"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (DailyLogEntry) TableName() string {
	return "daily_log_entry"
}
