package models

import "time"

// The tables below belong to the community and coaching services. This
// service only counts rows in them for achievement progress.

type CommunityPost struct {
	ID        string    `gorm:"column:id;type:uuid;primary_key"`
	AccountID string    `gorm:"column:account_id;type:varchar(64);not null;index"`
	CreatedAt time.Time
}

func (CommunityPost) TableName() string { return "community_post" }

type PostComment struct {
	ID        string    `gorm:"column:id;type:uuid;primary_key"`
	PostID    string    `gorm:"column:post_id;type:uuid;not null"`
	AccountID string    `gorm:"column:account_id;type:varchar(64);not null;index"`
	CreatedAt time.Time
}

func (PostComment) TableName() string { return "post_comment" }

type QuitPlanStatus string

const QuitPlanStatusCompleted QuitPlanStatus = "COMPLETED"

type QuitPlan struct {
	ID        string         `gorm:"column:id;type:uuid;primary_key"`
	MemberID  string         `gorm:"column:member_id;type:varchar(64);not null;index"`
	Status    QuitPlanStatus `gorm:"column:status;type:varchar(32);not null"`
	CreatedAt time.Time
}

func (QuitPlan) TableName() string { return "quit_plan" }

// All lists every model for auto-migration.
func All() []any {
	return []any{
		&DailyLogEntry{},
		&SmokingProfile{},
		&Subscription{},
		&SubscriptionLog{},
		&SubscriptionDailySnapshot{},
		&StageProgress{},
		&StageLog{},
		&Achievement{},
		&UnlockedAchievement{},
		&CommunityPost{},
		&PostComment{},
		&QuitPlan{},
	}
}
