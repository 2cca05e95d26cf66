package models

import (
	"time"

	"gorm.io/datatypes"
)

// SubscriptionDailySnapshot is a daily per-account copy of the live
// subscription, written by the snapshot job for analytics.
type SubscriptionDailySnapshot struct {
	ID             string             `gorm:"column:id;type:uuid;primary_key" json:"id"`
	AccountID      string             `gorm:"column:account_id;type:varchar(64);not null;uniqueIndex:idx_account_id_snapshot_date,priority:1" json:"account_id"`
	SnapshotDate   string             `gorm:"column:snapshot_date;type:varchar(10);not null;uniqueIndex:idx_account_id_snapshot_date,priority:2" json:"snapshot_date"`
	SubscriptionID string             `gorm:"column:subscription_id;type:uuid" json:"subscription_id"`
	Tier           Tier               `gorm:"column:tier;type:varchar(16);not null" json:"tier"`
	Status         SubscriptionStatus `gorm:"column:status;type:varchar(16);not null" json:"status"`
	EndDate        *time.Time         `gorm:"column:end_date" json:"end_date"`
	// Extra stores package and coach details at snapshot time.
	Extra             datatypes.JSONMap `gorm:"column:extra;type:jsonb" json:"extra"`
	SnapshotCreatedAt time.Time         `gorm:"column:snapshot_created_at" json:"snapshot_created_at"`
}

func (SubscriptionDailySnapshot) TableName() string {
	return "subscription_daily_snapshot"
}
