package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTableNames(t *testing.T) {
	cases := map[string]interface{ TableName() string }{
		"daily_log_entry":             DailyLogEntry{},
		"smoking_profile":             SmokingProfile{},
		"subscription":                Subscription{},
		"subscription_log":            SubscriptionLog{},
		"subscription_daily_snapshot": SubscriptionDailySnapshot{},
		"stage_progress":              StageProgress{},
		"stage_log":                   StageLog{},
		"achievement":                 Achievement{},
		"unlocked_achievement":        UnlockedAchievement{},
		"community_post":              CommunityPost{},
		"post_comment":                PostComment{},
		"quit_plan":                   QuitPlan{},
	}
	for want, m := range cases {
		require.Equal(t, want, m.TableName())
	}
	require.Len(t, All(), len(cases))
}

func TestSmokingProfile_RiskIndex(t *testing.T) {
	p := &SmokingProfile{CigarettesPerDay: 15, YearsSmoked: 10}
	require.Equal(t, 150, p.RiskIndex())

	var nilProfile *SmokingProfile
	require.Equal(t, 0, nilProfile.RiskIndex())
}

func TestSubscription_LiveAndLapsed(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	undated := &Subscription{Status: SubscriptionStatusActive}
	require.True(t, undated.Live(now))
	require.False(t, undated.Lapsed(now))

	dated := &Subscription{Status: SubscriptionStatusActive, EndDate: &future}
	require.True(t, dated.Live(now))

	ended := &Subscription{Status: SubscriptionStatusActive, EndDate: &past}
	require.False(t, ended.Live(now))
	require.True(t, ended.Lapsed(now))

	endsNow := &Subscription{Status: SubscriptionStatusActive, EndDate: &now}
	require.False(t, endsNow.Live(now))

	cancelled := &Subscription{Status: SubscriptionStatusCancelled}
	require.False(t, cancelled.Live(now))
	require.False(t, cancelled.Lapsed(now))

	var none *Subscription
	require.False(t, none.Live(now))
}

func TestTier_Valid(t *testing.T) {
	require.True(t, TierBasic.Valid())
	require.True(t, TierPremium.Valid())
	require.False(t, Tier("GOLD").Valid())
}
