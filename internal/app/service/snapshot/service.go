package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/fatflowers/quitsmart/internal/app/service/entitlement"
	"github.com/fatflowers/quitsmart/internal/models"
	"github.com/fatflowers/quitsmart/internal/store"
	"github.com/fatflowers/quitsmart/pkg/metrics"
	"github.com/fatflowers/quitsmart/pkg/tool"
)

// Service produces the daily subscription snapshot and sweeps lapsed
// subscriptions.
type Service struct {
	store       store.Store
	entitlement *entitlement.Service
	metrics     *metrics.Business
	log         *zap.SugaredLogger
	now         tool.Clock
}

func NewService(st store.Store, ent *entitlement.Service, m *metrics.Business, log *zap.SugaredLogger) *Service {
	return &Service{store: st, entitlement: ent, metrics: m, log: log, now: tool.SystemClock}
}

func (s *Service) WithClock(c tool.Clock) *Service {
	s.now = c
	return s
}

// SnapshotResult summarises one snapshot run.
type SnapshotResult struct {
	Date   string              `json:"date"`
	Count  int                 `json:"count"`
	ByTier map[models.Tier]int `json:"by_tier"`
}

// TakeDailySnapshot writes one row per account with a live subscription for
// the current UTC day. Re-running on the same day overwrites that day's rows.
func (s *Service) TakeDailySnapshot(ctx context.Context) (*SnapshotResult, error) {
	start := time.Now()
	subs, err := s.store.ListActiveSubscriptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active subscriptions: %w", err)
	}
	now := s.now()
	date := tool.DayOf(now).Format(tool.DateLayout)
	live := lo.Filter(subs, func(sub *models.Subscription, _ int) bool { return sub.Live(now) })

	snaps := lo.Map(live, func(sub *models.Subscription, _ int) *models.SubscriptionDailySnapshot {
		return &models.SubscriptionDailySnapshot{
			ID:             tool.GenerateUUIDV7(),
			AccountID:      sub.AccountID,
			SnapshotDate:   date,
			SubscriptionID: sub.ID,
			Tier:           sub.Tier,
			Status:         sub.Status,
			EndDate:        sub.EndDate,
			Extra: datatypes.JSONMap{
				"package_id":        sub.PackageID,
				"assigned_coach_id": lo.FromPtr(sub.AssignedCoachID),
			},
			SnapshotCreatedAt: now,
		}
	})
	if err := s.store.UpsertSnapshots(ctx, snaps); err != nil {
		return nil, fmt.Errorf("upsert snapshots: %w", err)
	}

	byTier := lo.CountValuesBy(live, func(sub *models.Subscription) models.Tier { return sub.Tier })
	for _, tier := range []models.Tier{models.TierBasic, models.TierPremium} {
		s.metrics.SetActiveSubscriptions(string(tier), byTier[tier])
	}
	s.metrics.ObserveProcess("snapshot", "daily", start)
	s.log.Infow("subscription_snapshot_taken", "date", date, "count", len(snaps))
	return &SnapshotResult{Date: date, Count: len(snaps), ByTier: byTier}, nil
}

// SweepLapsed expires every ACTIVE subscription past its end date.
func (s *Service) SweepLapsed(ctx context.Context) (int, error) {
	n, err := s.entitlement.ExpireLapsed(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Infow("subscription_sweep_expired", "count", n)
	}
	return n, nil
}
