package entitlement

import (
	"time"

	"github.com/samber/lo"

	"github.com/fatflowers/quitsmart/internal/models"
	"github.com/fatflowers/quitsmart/pkg/tool"
)

type Feature string

const (
	FeatureRiskIndex            Feature = "risk_index"
	FeatureProgressStatistics   Feature = "progress_statistics"
	FeatureCommunityLeaderboard Feature = "community_leaderboard"
	FeatureSavingsTracking      Feature = "savings_tracking"
	FeatureSuggestedQuitPlan    Feature = "suggested_quit_plan"

	FeatureCoachSupport       Feature = "coach_support"
	FeatureCoachChat          Feature = "coach_chat"
	FeatureMeetingBooking     Feature = "meeting_booking"
	FeatureStageManagement    Feature = "stage_management"
	FeatureDetailedReports    Feature = "detailed_reports"
	FeaturePersonalizedAdvice Feature = "personalized_advice"
)

// BaselineFeatures are unlocked by any live subscription.
var BaselineFeatures = []Feature{
	FeatureRiskIndex,
	FeatureProgressStatistics,
	FeatureCommunityLeaderboard,
	FeatureSavingsTracking,
	FeatureSuggestedQuitPlan,
}

// PremiumFeatures are unlocked only by PREMIUM, on top of the baseline.
var PremiumFeatures = []Feature{
	FeatureCoachSupport,
	FeatureCoachChat,
	FeatureMeetingBooking,
	FeatureStageManagement,
	FeatureDetailedReports,
	FeaturePersonalizedAdvice,
}

// FeaturesFor returns the static feature list of a tier.
func FeaturesFor(tier models.Tier) []Feature {
	switch tier {
	case models.TierPremium:
		return append(append([]Feature(nil), BaselineFeatures...), PremiumFeatures...)
	case models.TierBasic:
		return append([]Feature(nil), BaselineFeatures...)
	}
	return nil
}

// Entitlement is what an account may do at a point in time.
type Entitlement struct {
	SubscriptionID string                    `json:"subscription_id,omitempty"`
	Tier           models.Tier               `json:"tier,omitempty"`
	Status         models.SubscriptionStatus `json:"status,omitempty"`
	// HasPackage is false when no live subscription exists.
	HasPackage bool `json:"has_package"`
	// IsActive is true only for a live PREMIUM subscription.
	IsActive        bool       `json:"is_active"`
	StartDate       *time.Time `json:"start_date,omitempty"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
	DaysRemaining   *int       `json:"days_remaining,omitempty"`
	Features        []Feature  `json:"features"`
	AssignedCoachID *string    `json:"assigned_coach_id,omitempty"`
}

func (e Entitlement) HasFeature(f Feature) bool {
	return lo.Contains(e.Features, f)
}

// Resolve picks the live subscription (ACTIVE and not past its end date) and
// derives the entitlement from it. When several are live the latest start wins.
func Resolve(subs []*models.Subscription, now time.Time) Entitlement {
	live := lo.Filter(subs, func(s *models.Subscription, _ int) bool { return s.Live(now) })
	if len(live) == 0 {
		return Entitlement{Features: []Feature{}}
	}
	cur := lo.MaxBy(live, func(a, b *models.Subscription) bool { return a.StartDate.After(b.StartDate) })

	e := Entitlement{
		SubscriptionID:  cur.ID,
		Tier:            cur.Tier,
		Status:          cur.Status,
		HasPackage:      true,
		IsActive:        cur.Tier == models.TierPremium,
		StartDate:       lo.ToPtr(cur.StartDate),
		ExpiresAt:       cur.EndDate,
		Features:        FeaturesFor(cur.Tier),
		AssignedCoachID: cur.AssignedCoachID,
	}
	if cur.EndDate != nil {
		e.DaysRemaining = lo.ToPtr(tool.CeilDays(cur.EndDate.Sub(now)))
	}
	return e
}
