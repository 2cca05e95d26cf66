package quitplan

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/fatflowers/quitsmart/internal/app/service/entitlement"
	"github.com/fatflowers/quitsmart/internal/store"
	"github.com/fatflowers/quitsmart/pkg/apperr"
	"github.com/fatflowers/quitsmart/pkg/logctx"
	"github.com/fatflowers/quitsmart/pkg/tool"
)

// Gate decides whether an account may use a feature.
type Gate interface {
	RequireFeature(ctx context.Context, accountID string, f entitlement.Feature) (entitlement.Entitlement, error)
}

type Service struct {
	store store.Store
	gate  Gate
	log   *zap.SugaredLogger
	now   tool.Clock
}

func NewService(st store.Store, ent *entitlement.Service, log *zap.SugaredLogger) *Service {
	return newService(st, ent, log)
}

func newService(st store.Store, gate Gate, log *zap.SugaredLogger) *Service {
	return &Service{store: st, gate: gate, log: log, now: tool.SystemClock}
}

func (s *Service) WithClock(c tool.Clock) *Service {
	s.now = c
	return s
}

// Suggested returns a plan generated from the account's smoking profile.
func (s *Service) Suggested(ctx context.Context, accountID string) (Plan, error) {
	if _, err := s.gate.RequireFeature(ctx, accountID, entitlement.FeatureSuggestedQuitPlan); err != nil {
		return Plan{}, err
	}
	p, err := s.store.GetProfile(ctx, accountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Plan{}, apperr.NotFound("account %s has no smoking profile", accountID)
		}
		return Plan{}, fmt.Errorf("get profile: %w", err)
	}
	plan := Suggest(p.CigarettesPerDay, p.YearsSmoked, s.now())
	logctx.FromCtx(ctx, s.log).Infow("quit_plan_suggested", "strategy", plan.Strategy, "risk_index", plan.RiskIndex)
	return plan, nil
}
