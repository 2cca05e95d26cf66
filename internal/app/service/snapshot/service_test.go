package snapshot

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fatflowers/quitsmart/internal/app/service/entitlement"
	"github.com/fatflowers/quitsmart/internal/models"
	"github.com/fatflowers/quitsmart/internal/store"
	"github.com/fatflowers/quitsmart/pkg/config"
	"github.com/fatflowers/quitsmart/pkg/metrics"
	"github.com/fatflowers/quitsmart/pkg/tool"
)

var now = time.Date(2025, 3, 10, 0, 10, 0, 0, time.UTC)

func newTestService(t *testing.T, reg prometheus.Registerer) (*Service, *entitlement.Service, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	log := zap.NewNop().Sugar()
	m, err := metrics.NewBusiness(reg)
	require.NoError(t, err)
	cfg := &config.Config{Packages: config.DefaultPackages()}
	ent := entitlement.NewService(cfg, st, nil, m, log).WithClock(tool.FixedClock(now))
	return NewService(st, ent, m, log).WithClock(tool.FixedClock(now)), ent, st
}

func TestService_TakeDailySnapshot(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	svc, ent, st := newTestService(t, reg)

	_, err := ent.CreateBasic(ctx, "a")
	require.NoError(t, err)
	_, err = ent.CreateBasic(ctx, "b")
	require.NoError(t, err)
	_, err = ent.Upgrade(ctx, "b", entitlement.UpgradeRequest{PackageID: "premium_month", PreferredCoachID: "coach-1"})
	require.NoError(t, err)

	res, err := svc.TakeDailySnapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, "2025-03-10", res.Date)
	require.Equal(t, 2, res.Count)
	require.Equal(t, 1, res.ByTier[models.TierPremium])

	// same day again overwrites
	_, err = svc.TakeDailySnapshot(ctx)
	require.NoError(t, err)
	snaps := st.Snapshots()
	require.Len(t, snaps, 2)

	n, err := testutil.GatherAndCount(reg, "quitsmart_subscription_upgrade_total")
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.InDelta(t, 1, activeGauge(t, reg, "PREMIUM"), 1e-9)
	require.InDelta(t, 1, activeGauge(t, reg, "BASIC"), 1e-9)
}

func activeGauge(t *testing.T, reg *prometheus.Registry, tier string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != "quitsmart_subscription_active" {
			continue
		}
		for _, m := range f.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "tier" && l.GetValue() == tier {
					return m.GetGauge().GetValue()
				}
			}
		}
	}
	t.Fatalf("no subscription_active sample for %s", tier)
	return 0
}

func TestService_SweepLapsed(t *testing.T) {
	ctx := context.Background()
	svc, ent, st := newTestService(t, nil)

	_, err := ent.Upgrade(ctx, "a", entitlement.UpgradeRequest{Tier: models.TierPremium, DurationDays: 1})
	require.NoError(t, err)

	n, err := svc.SweepLapsed(ctx)
	require.NoError(t, err)
	require.Zero(t, n)

	later := tool.FixedClock(now.AddDate(0, 0, 2))
	ent.WithClock(later)
	svc.WithClock(later)
	n, err = svc.SweepLapsed(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	active, err := st.ListActiveSubscriptions(ctx)
	require.NoError(t, err)
	require.Empty(t, active)

	res, err := svc.TakeDailySnapshot(ctx)
	require.NoError(t, err)
	require.Zero(t, res.Count)
}

func TestNewScheduler(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	log := zap.NewNop().Sugar()

	sch, err := NewScheduler(&config.Config{Jobs: config.JobsConfig{SnapshotCron: "10 0 * * *", ExpirySweepCron: "*/15 * * * *"}}, svc, log)
	require.NoError(t, err)
	require.Equal(t, 2, sch.Entries())

	sch, err = NewScheduler(&config.Config{Jobs: config.JobsConfig{SnapshotCron: "10 0 * * *"}}, svc, log)
	require.NoError(t, err)
	require.Equal(t, 1, sch.Entries())

	_, err = NewScheduler(&config.Config{Jobs: config.JobsConfig{SnapshotCron: "every day"}}, svc, log)
	require.Error(t, err)
}
