package entitlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/fatflowers/quitsmart/internal/app/service/changelog"
	"github.com/fatflowers/quitsmart/internal/models"
	"github.com/fatflowers/quitsmart/internal/store"
	"github.com/fatflowers/quitsmart/pkg/apperr"
	"github.com/fatflowers/quitsmart/pkg/config"
	"github.com/fatflowers/quitsmart/pkg/logctx"
	"github.com/fatflowers/quitsmart/pkg/metrics"
	"github.com/fatflowers/quitsmart/pkg/tool"
)

type Service struct {
	cfg       *config.Config
	store     store.Store
	changelog *changelog.Service
	metrics   *metrics.Business
	log       *zap.SugaredLogger
	now       tool.Clock
}

func NewService(cfg *config.Config, st store.Store, cl *changelog.Service, m *metrics.Business, log *zap.SugaredLogger) *Service {
	return &Service{cfg: cfg, store: st, changelog: cl, metrics: m, log: log, now: tool.SystemClock}
}

// WithClock replaces the wall clock.
func (s *Service) WithClock(c tool.Clock) *Service {
	s.now = c
	return s
}

// UpgradeRequest names either a configured package or an explicit tier and
// duration.
type UpgradeRequest struct {
	PackageID        string
	Tier             models.Tier
	DurationDays     int
	Price            float64
	PreferredCoachID string
	OperatorID       string
	Reason           models.SubscriptionChangeReason
	Notes            string
}

func (s *Service) resolveRequest(req *UpgradeRequest) error {
	if req.PackageID != "" {
		pkg := s.cfg.GetPackageByID(req.PackageID)
		if pkg == nil {
			return apperr.Validation("package not found: %s", req.PackageID)
		}
		req.Tier, req.DurationDays, req.Price = models.Tier(pkg.Tier), pkg.DurationDays, pkg.Price
	}
	if !req.Tier.Valid() {
		return apperr.Validation("invalid tier %q", req.Tier)
	}
	if req.DurationDays <= 0 {
		return apperr.Validation("duration_days must be positive")
	}
	if req.Price < 0 {
		return apperr.Validation("price must not be negative")
	}
	if req.Reason == "" {
		req.Reason = models.SubscriptionChangeReasonUpgrade
	}
	return nil
}

// GetEntitlement resolves the account's entitlement now. ACTIVE rows whose
// end date has passed are marked EXPIRED on the way; a failure to persist
// that is logged and does not affect the answer.
func (s *Service) GetEntitlement(ctx context.Context, accountID string) (Entitlement, error) {
	subs, err := s.store.ListSubscriptions(ctx, accountID)
	if err != nil {
		return Entitlement{}, fmt.Errorf("list subscriptions: %w", err)
	}
	now := s.now()
	for _, sub := range subs {
		if sub.Lapsed(now) {
			s.expire(ctx, sub)
		}
	}
	return Resolve(subs, now), nil
}

func (s *Service) expire(ctx context.Context, sub *models.Subscription) {
	before := *sub
	next := *sub
	next.Status = models.SubscriptionStatusExpired
	if err := s.store.UpdateSubscription(ctx, &next); err != nil {
		logctx.FromCtx(ctx, s.log).Warnw("subscription_expire_failed", "subscription_id", sub.ID, "err", err)
		return
	}
	s.saveLog(ctx, models.SubscriptionChangeReasonExpire, &before, &next, nil)
}

// RequirePremium fails with an entitlement error unless the account holds a
// live PREMIUM subscription.
func (s *Service) RequirePremium(ctx context.Context, accountID string) (Entitlement, error) {
	e, err := s.GetEntitlement(ctx, accountID)
	if err != nil {
		return e, err
	}
	if !e.IsActive {
		return e, apperr.Entitlement("an active PREMIUM subscription is required")
	}
	return e, nil
}

// RequireFeature fails with an entitlement error unless f is unlocked.
func (s *Service) RequireFeature(ctx context.Context, accountID string, f Feature) (Entitlement, error) {
	e, err := s.GetEntitlement(ctx, accountID)
	if err != nil {
		return e, err
	}
	if !e.HasFeature(f) {
		return e, apperr.Entitlement("feature %s is not included in the current subscription", f)
	}
	return e, nil
}

// CreateBasic creates the undated BASIC subscription given at signup.
func (s *Service) CreateBasic(ctx context.Context, accountID string) (*models.Subscription, error) {
	if accountID == "" {
		return nil, apperr.Validation("account id required")
	}
	sub := &models.Subscription{
		ID:        tool.GenerateUUIDV7(),
		AccountID: accountID,
		Tier:      models.TierBasic,
		Status:    models.SubscriptionStatusActive,
		StartDate: s.now(),
	}
	if err := s.store.InsertSubscription(ctx, sub); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.Conflict("account %s already has an active subscription", accountID)
		}
		return nil, fmt.Errorf("insert subscription: %w", err)
	}
	s.saveLog(ctx, models.SubscriptionChangeReasonSignup, nil, sub, nil)
	return sub, nil
}

// Upgrade expires every ACTIVE subscription of the account and inserts the
// new one, atomically. A concurrent upgrade that wins the race surfaces as a
// conflict error.
func (s *Service) Upgrade(ctx context.Context, accountID string, req UpgradeRequest) (*models.Subscription, error) {
	if accountID == "" {
		return nil, apperr.Validation("account id required")
	}
	if err := s.resolveRequest(&req); err != nil {
		return nil, err
	}
	start := time.Now()
	now := s.now()

	created := &models.Subscription{
		ID:        tool.GenerateUUIDV7(),
		AccountID: accountID,
		Tier:      req.Tier,
		Status:    models.SubscriptionStatusActive,
		StartDate: now,
		EndDate:   lo.ToPtr(now.AddDate(0, 0, req.DurationDays)),
		Price:     req.Price,
		PackageID: req.PackageID,
		Notes:     req.Notes,
	}
	if req.Tier == models.TierPremium && req.PreferredCoachID != "" {
		created.AssignedCoachID = lo.ToPtr(req.PreferredCoachID)
	}

	var expired []models.Subscription
	err := s.store.InTx(ctx, func(tx store.Store) error {
		subs, err := tx.LockSubscriptions(ctx, accountID)
		if err != nil {
			return fmt.Errorf("lock subscriptions: %w", err)
		}
		expired = expired[:0]
		for _, sub := range subs {
			if sub.Status != models.SubscriptionStatusActive {
				continue
			}
			expired = append(expired, *sub)
			sub.Status = models.SubscriptionStatusExpired
			if err := tx.UpdateSubscription(ctx, sub); err != nil {
				return fmt.Errorf("expire subscription %s: %w", sub.ID, err)
			}
		}
		if err := tx.InsertSubscription(ctx, created); err != nil {
			return fmt.Errorf("insert subscription: %w", err)
		}
		return nil
	})
	if err != nil {
		s.metrics.SubscriptionUpgraded(string(req.Tier), "error")
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.Conflict("concurrent subscription change for account %s", accountID)
		}
		return nil, err
	}
	s.metrics.SubscriptionUpgraded(string(req.Tier), "ok")
	s.metrics.ObserveProcess("subscription", "upgrade", start)

	extra := datatypes.JSONMap{"operator_id": req.OperatorID, "package_id": req.PackageID}
	for i := range expired {
		after := expired[i]
		after.Status = models.SubscriptionStatusExpired
		s.saveLog(ctx, req.Reason, &expired[i], &after, extra)
	}
	s.saveLog(ctx, req.Reason, nil, created, extra)

	logctx.FromCtx(ctx, s.log).Infow("subscription_upgraded",
		"subscription_id", created.ID, "tier", created.Tier, "end_date", created.EndDate, "expired", len(expired))
	return created, nil
}

// GrantPackage gives an account a configured package for free on behalf of an operator.
func (s *Service) GrantPackage(ctx context.Context, accountID, packageID, operatorID string) (*models.Subscription, error) {
	if packageID == "" {
		return nil, apperr.Validation("package id required")
	}
	return s.Upgrade(ctx, accountID, UpgradeRequest{
		PackageID:  packageID,
		OperatorID: operatorID,
		Reason:     models.SubscriptionChangeReasonGrant,
		Notes:      "granted by " + operatorID,
	})
}

// Cancel marks the account's ACTIVE subscription CANCELLED.
func (s *Service) Cancel(ctx context.Context, accountID string) (*models.Subscription, error) {
	var before, after models.Subscription
	err := s.store.InTx(ctx, func(tx store.Store) error {
		subs, err := tx.LockSubscriptions(ctx, accountID)
		if err != nil {
			return fmt.Errorf("lock subscriptions: %w", err)
		}
		cur, ok := lo.Find(subs, func(sub *models.Subscription) bool { return sub.Status == models.SubscriptionStatusActive })
		if !ok {
			return apperr.NotFound("no active subscription for account %s", accountID)
		}
		before = *cur
		cur.Status = models.SubscriptionStatusCancelled
		if err := tx.UpdateSubscription(ctx, cur); err != nil {
			return fmt.Errorf("cancel subscription %s: %w", cur.ID, err)
		}
		after = *cur
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.saveLog(ctx, models.SubscriptionChangeReasonCancel, &before, &after, nil)
	logctx.FromCtx(ctx, s.log).Infow("subscription_cancelled", "subscription_id", after.ID, "tier", after.Tier)
	return &after, nil
}

// History lists every subscription of the account, newest first.
func (s *Service) History(ctx context.Context, accountID string) ([]*models.Subscription, error) {
	subs, err := s.store.ListSubscriptions(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	return lo.Reverse(subs), nil
}

// ExpireLapsed expires every ACTIVE subscription whose end date has passed
// and returns how many were expired.
func (s *Service) ExpireLapsed(ctx context.Context) (int, error) {
	subs, err := s.store.ListActiveSubscriptions(ctx)
	if err != nil {
		return 0, fmt.Errorf("list active subscriptions: %w", err)
	}
	now := s.now()
	lapsed := lo.Filter(subs, func(sub *models.Subscription, _ int) bool { return sub.Lapsed(now) })
	for _, sub := range lapsed {
		s.expire(ctx, sub)
	}
	return len(lapsed), nil
}

func (s *Service) saveLog(ctx context.Context, reason models.SubscriptionChangeReason, before, after *models.Subscription, extra datatypes.JSONMap) {
	if s.changelog == nil {
		return
	}
	accountID := lo.FromPtr(after).AccountID
	if accountID == "" {
		accountID = lo.FromPtr(before).AccountID
	}
	s.changelog.SaveSubscriptionLog(ctx, &models.SubscriptionLog{
		AccountID: accountID,
		Reason:    reason,
		Before:    datatypes.NewJSONType(before),
		After:     datatypes.NewJSONType(after),
		Extra:     extra,
	})
}
