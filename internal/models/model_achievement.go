package models

import (
	"time"

	"gorm.io/datatypes"
)

type AchievementCategory string

const (
	AchievementCategorySmokeFreeDays  AchievementCategory = "SMOKE_FREE_DAYS"
	AchievementCategoryMoneySaved     AchievementCategory = "MONEY_SAVED"
	AchievementCategoryPostsCreated   AchievementCategory = "POSTS_CREATED"
	AchievementCategoryCommentsMade   AchievementCategory = "COMMENTS_MADE"
	AchievementCategoryPlansCompleted AchievementCategory = "PLANS_COMPLETED"
)

var AchievementCategories = []AchievementCategory{
	AchievementCategorySmokeFreeDays,
	AchievementCategoryMoneySaved,
	AchievementCategoryPostsCreated,
	AchievementCategoryCommentsMade,
	AchievementCategoryPlansCompleted,
}

// Achievement is a catalog definition.
type Achievement struct {
	ID            string              `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Name          string              `gorm:"column:name;type:varchar(128);not null;uniqueIndex" json:"name"`
	Description   string              `gorm:"column:description;type:text" json:"description"`
	Icon          string              `gorm:"column:icon;type:varchar(64)" json:"icon"`
	Category      AchievementCategory `gorm:"column:category;type:varchar(32);not null" json:"category"`
	RequiredValue int                 `gorm:"column:required_value;not null" json:"required_value"`
	BadgeColor    string              `gorm:"column:badge_color;type:varchar(16)" json:"badge_color"`
	Points        int                 `gorm:"column:points;not null" json:"points"`
	// Reward holds free-form reward metadata shown with the badge.
	Reward    datatypes.JSONMap `gorm:"column:reward;type:jsonb" json:"reward"`
	IsActive  bool              `gorm:"column:is_active;not null" json:"is_active"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func (Achievement) TableName() string {
	return "achievement"
}

// UnlockedAchievement marks an achievement as earned by an account. Rows are
// only ever inserted; (account_id, achievement_id) is unique.
type UnlockedAchievement struct {
	ID            string    `gorm:"column:id;type:uuid;primary_key" json:"id"`
	AccountID     string    `gorm:"column:account_id;type:varchar(64);not null;uniqueIndex:idx_unlocked_account_achievement,priority:1" json:"account_id"`
	AchievementID string    `gorm:"column:achievement_id;type:uuid;not null;uniqueIndex:idx_unlocked_account_achievement,priority:2" json:"achievement_id"`
	UnlockedAt    time.Time `gorm:"column:unlocked_at;not null" json:"unlocked_at"`
}

func (UnlockedAchievement) TableName() string {
	return "unlocked_achievement"
}
