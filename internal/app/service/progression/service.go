package progression

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fatflowers/quitsmart/internal/app/service/achievement"
	"github.com/fatflowers/quitsmart/internal/app/service/entitlement"
	"github.com/fatflowers/quitsmart/internal/app/service/stage"
	"github.com/fatflowers/quitsmart/internal/app/service/statistics"
	"github.com/fatflowers/quitsmart/internal/models"
	"github.com/fatflowers/quitsmart/internal/store"
	"github.com/fatflowers/quitsmart/pkg/apperr"
	"github.com/fatflowers/quitsmart/pkg/authz"
	"github.com/fatflowers/quitsmart/pkg/logctx"
	"github.com/fatflowers/quitsmart/pkg/metrics"
	"github.com/fatflowers/quitsmart/pkg/tool"
)

// Service orchestrates writes that touch more than one engine component and
// fixes the order in which derived state is refreshed.
type Service struct {
	store        store.Store
	stats        *statistics.Service
	entitlement  *entitlement.Service
	stages       *stage.Service
	achievements *achievement.Service
	metrics      *metrics.Business
	log          *zap.SugaredLogger
	now          tool.Clock
}

func NewService(
	st store.Store,
	stats *statistics.Service,
	ent *entitlement.Service,
	stages *stage.Service,
	achievements *achievement.Service,
	m *metrics.Business,
	log *zap.SugaredLogger,
) *Service {
	return &Service{
		store:        st,
		stats:        stats,
		entitlement:  ent,
		stages:       stages,
		achievements: achievements,
		metrics:      m,
		log:          log,
		now:          tool.SystemClock,
	}
}

func (s *Service) WithClock(c tool.Clock) *Service {
	s.now = c
	return s
}

// EntryResult is a stored entry with the state derived after it.
type EntryResult struct {
	Entry      *models.DailyLogEntry  `json:"entry"`
	Statistics statistics.Statistics  `json:"statistics"`
	Unlocked   []achievement.Unlocked `json:"unlocked_achievements"`
}

// RecordDailyEntry stores the day and then refreshes the profile cache and
// achievements. Failures after the entry is stored are logged and do not fail
// the call.
func (s *Service) RecordDailyEntry(ctx context.Context, accountID, recordedBy string, in EntryInput) (*EntryResult, error) {
	if accountID == "" {
		return nil, apperr.Validation("account id required")
	}
	if err := in.validate(s.now()); err != nil {
		return nil, err
	}
	start := time.Now()
	e := &models.DailyLogEntry{
		ID:         tool.GenerateUUIDV7(),
		AccountID:  accountID,
		Date:       tool.DayOf(in.Date),
		RecordedBy: recordedBy,
	}
	in.apply(e)
	if err := s.store.InsertDailyEntry(ctx, e); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.Validation("an entry for %s already exists", e.Date.Format(tool.DateLayout))
		}
		return nil, fmt.Errorf("insert daily entry: %w", err)
	}
	logctx.FromCtx(ctx, s.log).Infow("daily_entry_recorded", "entry_id", e.ID, "date", e.Date.Format(tool.DateLayout), "recorded_by", recordedBy)

	res := s.refresh(ctx, accountID)
	res.Entry = e
	s.metrics.ObserveProcess("daily_log", "record", start)
	return res, nil
}

// RecordDailyEntryFor records an entry on behalf of accountID. Anyone but the
// owner needs the Coach or Admin role.
func (s *Service) RecordDailyEntryFor(ctx context.Context, actor authz.Account, accountID string, in EntryInput) (*EntryResult, error) {
	if actor.ID != accountID && !authz.HasRole(actor, authz.RoleCoach, authz.RoleAdmin) {
		return nil, apperr.Entitlement("recording for another account requires the Coach or Admin role")
	}
	return s.RecordDailyEntry(ctx, accountID, actor.ID, in)
}

// UpdateDailyEntry replaces the metrics of an entry. The date cannot change.
func (s *Service) UpdateDailyEntry(ctx context.Context, accountID, id string, in EntryInput) (*EntryResult, error) {
	cur, err := s.store.GetDailyEntry(ctx, accountID, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("daily entry %s", id)
		}
		return nil, fmt.Errorf("get daily entry: %w", err)
	}
	if in.Date.IsZero() {
		in.Date = cur.Date
	}
	if !tool.DayOf(in.Date).Equal(tool.DayOf(cur.Date)) {
		return nil, apperr.Validation("the date of an entry cannot be changed")
	}
	if err := in.validate(s.now()); err != nil {
		return nil, err
	}
	in.apply(cur)
	if err := s.store.UpdateDailyEntry(ctx, cur); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("daily entry %s", id)
		}
		return nil, fmt.Errorf("update daily entry: %w", err)
	}
	res := s.refresh(ctx, accountID)
	res.Entry = cur
	return res, nil
}

// DeleteDailyEntry removes an entry and refreshes the profile cache.
func (s *Service) DeleteDailyEntry(ctx context.Context, accountID, id string) error {
	if err := s.store.DeleteDailyEntry(ctx, accountID, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("daily entry %s", id)
		}
		return fmt.Errorf("delete daily entry: %w", err)
	}
	logctx.FromCtx(ctx, s.log).Infow("daily_entry_deleted", "entry_id", id)
	if _, err := s.RecomputeProfile(ctx, accountID); err != nil {
		logctx.FromCtx(ctx, s.log).Errorw("profile_recompute_failed", "err", err)
	}
	return nil
}

// ListDailyEntries returns entries between from and to inclusive. Zero
// bounds are open.
func (s *Service) ListDailyEntries(ctx context.Context, accountID string, from, to time.Time) ([]*models.DailyLogEntry, error) {
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return nil, apperr.Validation("to must not be before from")
	}
	r := store.DateRange{}
	if !from.IsZero() {
		r.From = tool.DayOf(from)
	}
	if !to.IsZero() {
		r.To = tool.DayOf(to)
	}
	entries, err := s.store.ListDailyEntries(ctx, accountID, r)
	if err != nil {
		return nil, fmt.Errorf("list daily entries: %w", err)
	}
	return entries, nil
}

// refresh recomputes the profile cache and evaluates achievements.
func (s *Service) refresh(ctx context.Context, accountID string) *EntryResult {
	lg := logctx.FromCtx(ctx, s.log)
	res := &EntryResult{Unlocked: []achievement.Unlocked{}}
	stats, err := s.RecomputeProfile(ctx, accountID)
	if err != nil {
		lg.Errorw("profile_recompute_failed", "err", err)
		return res
	}
	res.Statistics = stats
	unlocked, err := s.achievements.Evaluate(ctx, accountID, stats)
	if err != nil {
		lg.Errorw("achievement_evaluate_failed", "err", err)
	}
	if len(unlocked) > 0 {
		res.Unlocked = unlocked
	}
	return res
}

// SaveSmokingProfile inserts or replaces the baseline and refreshes the cache.
func (s *Service) SaveSmokingProfile(ctx context.Context, accountID string, in ProfileInput) (*models.SmokingProfile, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	p, err := s.store.GetProfile(ctx, accountID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		p = &models.SmokingProfile{ID: tool.GenerateUUIDV7(), AccountID: accountID}
	case err != nil:
		return nil, fmt.Errorf("get profile: %w", err)
	}
	p.QuitDate = tool.DayOf(in.QuitDate)
	p.CigarettesPerDay = in.CigarettesPerDay
	p.YearsSmoked = in.YearsSmoked
	p.CostPerPack = in.CostPerPack
	p.CigarettesPerPack = in.CigarettesPerPack
	if err := s.store.SaveProfile(ctx, p); err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}
	if _, err := s.RecomputeProfile(ctx, accountID); err != nil {
		logctx.FromCtx(ctx, s.log).Errorw("profile_recompute_failed", "err", err)
	}
	return s.store.GetProfile(ctx, accountID)
}

// RecomputeProfile rebuilds the cached statistics on the profile from raw
// entries. Only the cache columns are written so a concurrent baseline
// update survives. Without a profile only the statistics are returned.
func (s *Service) RecomputeProfile(ctx context.Context, accountID string) (statistics.Statistics, error) {
	stats, p, err := s.stats.ForAccount(ctx, accountID)
	if err != nil {
		return stats, err
	}
	if p == nil {
		return stats, nil
	}
	err = s.store.UpdateProfileStats(ctx, accountID, store.ProfileStats{
		CurrentStreak:     stats.CurrentStreak,
		LongestStreak:     stats.LongestStreak,
		CigarettesAvoided: stats.TotalCigarettesAvoided,
		MoneySaved:        stats.TotalMoneySaved,
		RecomputedAt:      s.now(),
	})
	switch {
	case errors.Is(err, store.ErrNotFound):
		// profile deleted since it was read
		return stats, nil
	case err != nil:
		return stats, fmt.Errorf("update profile stats: %w", err)
	}
	return stats, nil
}

// GetStatistics always computes from raw entries, never from the cache.
func (s *Service) GetStatistics(ctx context.Context, accountID string) (statistics.Statistics, error) {
	stats, _, err := s.stats.ForAccount(ctx, accountID)
	return stats, err
}

// UpgradeResult is the outcome of a subscription change.
type UpgradeResult struct {
	Subscription *models.Subscription    `json:"subscription"`
	Entitlement  entitlement.Entitlement `json:"entitlement"`
	Stage        *models.StageProgress   `json:"stage,omitempty"`
}

// UpgradeSubscription changes the subscription and, on a first PREMIUM
// upgrade, opens the PREPARATION stage.
func (s *Service) UpgradeSubscription(ctx context.Context, accountID string, req entitlement.UpgradeRequest) (*UpgradeResult, error) {
	sub, err := retryOnConflict(func() (*models.Subscription, error) {
		return s.entitlement.Upgrade(ctx, accountID, req)
	})
	if err != nil {
		return nil, err
	}
	res := &UpgradeResult{Subscription: sub}
	if sub.Tier == models.TierPremium {
		res.Stage = s.ensureInitialStage(ctx, accountID)
	}
	if res.Entitlement, err = s.entitlement.GetEntitlement(ctx, accountID); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Service) ensureInitialStage(ctx context.Context, accountID string) *models.StageProgress {
	lg := logctx.FromCtx(ctx, s.log)
	has, err := s.stages.HasStages(ctx, accountID)
	if err != nil {
		lg.Errorw("stage_lookup_failed", "err", err)
		return nil
	}
	if has {
		return nil
	}
	rec, err := s.stages.StartInitialStage(ctx, accountID)
	switch {
	case errors.Is(err, apperr.ErrConflict):
		// opened concurrently
		return nil
	case err != nil:
		lg.Errorw("initial_stage_failed", "err", err)
		return nil
	}
	return rec
}

// AdvanceStage moves the account to next, retrying once when a concurrent
// change won the race.
func (s *Service) AdvanceStage(ctx context.Context, accountID string, next models.StageName, actorID string) (*stage.AdvanceResult, error) {
	return retryOnConflict(func() (*stage.AdvanceResult, error) {
		return s.stages.AdvanceStage(ctx, accountID, next, actorID)
	})
}

// CheckAchievements evaluates achievements against fresh statistics and
// returns the ones unlocked by this call.
func (s *Service) CheckAchievements(ctx context.Context, accountID string) ([]achievement.Unlocked, error) {
	stats, err := s.GetStatistics(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return s.achievements.Evaluate(ctx, accountID, stats)
}

func retryOnConflict[T any](fn func() (T, error)) (T, error) {
	v, err := fn()
	if errors.Is(err, apperr.ErrConflict) {
		return fn()
	}
	return v, err
}
