package models

import (
	"time"
)

type Tier string

const (
	TierBasic   Tier = "BASIC"
	TierPremium Tier = "PREMIUM"
)

func (t Tier) Valid() bool {
	return t == TierBasic || t == TierPremium
}

type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "ACTIVE"
	SubscriptionStatusExpired   SubscriptionStatus = "EXPIRED"
	SubscriptionStatusCancelled SubscriptionStatus = "CANCELLED"
	SubscriptionStatusPending   SubscriptionStatus = "PENDING"
)

// Subscription is one entry of an account's subscription history.
// At most one row per account has status ACTIVE; the partial unique index
// idx_subscription_one_active enforces it in the database.
type Subscription struct {
	ID        string             `gorm:"column:id;type:uuid;primary_key" json:"id"`
	AccountID string             `gorm:"column:account_id;type:varchar(64);not null;index;uniqueIndex:idx_subscription_one_active,where:status = 'ACTIVE'" json:"account_id"`
	Tier      Tier               `gorm:"column:tier;type:varchar(16);not null" json:"tier"`
	Status    SubscriptionStatus `gorm:"column:status;type:varchar(16);not null" json:"status"`
	StartDate time.Time          `gorm:"column:start_date;not null" json:"start_date"`
	// EndDate is nil for undated (signup BASIC) subscriptions.
	EndDate   *time.Time `gorm:"column:end_date" json:"end_date"`
	Price     float64    `gorm:"column:price;type:numeric(14,2);not null" json:"price"`
	PackageID string     `gorm:"column:package_id;type:varchar(64)" json:"package_id"`
	// AssignedCoachID is only set on PREMIUM subscriptions.
	AssignedCoachID *string   `gorm:"column:assigned_coach_id;type:varchar(64)" json:"assigned_coach_id,omitempty"`
	Notes           string    `gorm:"column:notes;type:text" json:"notes"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (Subscription) TableName() string {
	return "subscription"
}

// Live reports whether the subscription is ACTIVE and not past its end date at now.
func (s *Subscription) Live(now time.Time) bool {
	return s != nil &&
		s.Status == SubscriptionStatusActive &&
		(s.EndDate == nil || s.EndDate.After(now))
}

// Lapsed reports an ACTIVE row whose end date has passed and that should be expired.
func (s *Subscription) Lapsed(now time.Time) bool {
	return s != nil &&
		s.Status == SubscriptionStatusActive &&
		s.EndDate != nil && !s.EndDate.After(now)
}
