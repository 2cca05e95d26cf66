package models

import (
	"time"

	"gorm.io/datatypes"
)

type StageName string

const (
	StagePreparation     StageName = "PREPARATION"
	StageInitialQuit     StageName = "INITIAL_QUIT"
	StageEarlyRecovery   StageName = "EARLY_RECOVERY"
	StageOngoingRecovery StageName = "ONGOING_RECOVERY"
	StageMaintenance     StageName = "MAINTENANCE"
)

// StageProgress is one stage an account went through. The record with a nil
// EndDate is the current stage; idx_stage_progress_one_open keeps it unique.
type StageProgress struct {
	ID         string     `gorm:"column:id;type:uuid;primary_key" json:"id"`
	AccountID  string     `gorm:"column:account_id;type:varchar(64);not null;index;uniqueIndex:idx_stage_progress_one_open,where:end_date IS NULL" json:"account_id"`
	Stage      StageName  `gorm:"column:stage;type:varchar(32);not null" json:"stage"`
	StartDate  time.Time  `gorm:"column:start_date;not null" json:"start_date"`
	EndDate    *time.Time `gorm:"column:end_date" json:"end_date"`
	Percentage int        `gorm:"column:percentage;not null" json:"percentage"`
	Goals      string     `gorm:"column:goals;type:text" json:"goals"`
	CoachNotes string     `gorm:"column:coach_notes;type:text" json:"coach_notes"`
	UserNotes  string     `gorm:"column:user_notes;type:text" json:"user_notes"`
	// Per-stage metrics; reset when a new stage opens.
	CigarettesSmoked *int      `gorm:"column:cigarettes_smoked" json:"cigarettes_smoked,omitempty"`
	CravingLevel     *int      `gorm:"column:craving_level" json:"craving_level,omitempty"`
	StressLevel      *int      `gorm:"column:stress_level" json:"stress_level,omitempty"`
	SupportLevel     *int      `gorm:"column:support_level" json:"support_level,omitempty"`
	Challenges       string    `gorm:"column:challenges;type:text" json:"challenges"`
	Wins             string    `gorm:"column:wins;type:text" json:"wins"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (StageProgress) TableName() string {
	return "stage_progress"
}

func (s *StageProgress) Open() bool {
	return s != nil && s.EndDate == nil
}

// StageLog records stage transitions, including ones that skipped or
// repeated a stage.
type StageLog struct {
	ID          string            `gorm:"column:id;type:uuid;primary_key" json:"id"`
	AccountID   string            `gorm:"column:account_id;type:varchar(64);not null;index" json:"account_id"`
	FromStage   StageName         `gorm:"column:from_stage;type:varchar(32)" json:"from_stage"`
	ToStage     StageName         `gorm:"column:to_stage;type:varchar(32);not null" json:"to_stage"`
	OffSequence bool              `gorm:"column:off_sequence;not null" json:"off_sequence"`
	ActorID     string            `gorm:"column:actor_id;type:varchar(64)" json:"actor_id"`
	Extra       datatypes.JSONMap `gorm:"column:extra;type:jsonb" json:"extra"`
	CreatedAt   time.Time         `json:"created_at"`
}

func (StageLog) TableName() string {
	return "stage_log"
}
