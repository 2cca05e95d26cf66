package models

import "time"

// SmokingProfile holds an account's smoking baseline plus cached statistics.
// The cached fields can always be rebuilt from daily_log_entry rows.
type SmokingProfile struct {
	ID                string    `gorm:"column:id;type:uuid;primary_key" json:"id"`
	AccountID         string    `gorm:"column:account_id;type:varchar(64);not null;uniqueIndex" json:"account_id"`
	QuitDate          time.Time `gorm:"column:quit_date;type:date;not null" json:"quit_date"`
	CigarettesPerDay  int       `gorm:"column:cigarettes_per_day;not null" json:"cigarettes_per_day"`
	YearsSmoked       int       `gorm:"column:years_smoked;not null" json:"years_smoked"`
	CostPerPack       float64   `gorm:"column:cost_per_pack;type:numeric(14,2);not null" json:"cost_per_pack"`
	CigarettesPerPack int       `gorm:"column:cigarettes_per_pack;not null" json:"cigarettes_per_pack"`

	CurrentStreak     int        `gorm:"column:current_streak;not null" json:"current_streak"`
	LongestStreak     int        `gorm:"column:longest_streak;not null" json:"longest_streak"`
	CigarettesAvoided int        `gorm:"column:cigarettes_avoided;not null" json:"cigarettes_avoided"`
	MoneySaved        float64    `gorm:"column:money_saved;type:numeric(14,2);not null" json:"money_saved"`
	StatsRecomputedAt *time.Time `gorm:"column:stats_recomputed_at" json:"stats_recomputed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SmokingProfile) TableName() string {
	return "smoking_profile"
}

// RiskIndex is the Brinkman index: cigarettes per day times years smoked.
func (p *SmokingProfile) RiskIndex() int {
	if p == nil {
		return 0
	}
	return p.CigarettesPerDay * p.YearsSmoked
}
