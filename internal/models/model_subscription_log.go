package models

import (
	"time"

	"gorm.io/datatypes"
)

type SubscriptionChangeReason string

const (
	SubscriptionChangeReasonSignup  SubscriptionChangeReason = "signup"
	SubscriptionChangeReasonUpgrade SubscriptionChangeReason = "upgrade"
	SubscriptionChangeReasonGrant   SubscriptionChangeReason = "grant"
	SubscriptionChangeReasonCancel  SubscriptionChangeReason = "cancel"
	SubscriptionChangeReasonExpire  SubscriptionChangeReason = "expire"
)

// SubscriptionLog records changes to account subscriptions.
// Use case: troubleshooting.
type SubscriptionLog struct {
	ID        string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	AccountID string `gorm:"column:account_id;type:varchar(64);index:idx_subscription_log_account_id,priority:1;not null"`
	// Reason is the change reason.
	Reason SubscriptionChangeReason `gorm:"column:reason;type:varchar(64);not null"`
	// Before stores subscription data before the change in JSON format.
	Before datatypes.JSONType[*Subscription] `gorm:"column:before;type:jsonb"`
	// After stores subscription data after the change in JSON format.
	After datatypes.JSONType[*Subscription] `gorm:"column:after;type:jsonb"`
	// Extra stores additional context such as the operator and package id.
	Extra     datatypes.JSONMap `gorm:"column:extra;type:jsonb"`
	CreatedAt time.Time
}

func (SubscriptionLog) TableName() string {
	return "subscription_log"
}
