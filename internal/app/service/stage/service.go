package stage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/fatflowers/quitsmart/internal/app/service/changelog"
	"github.com/fatflowers/quitsmart/internal/app/service/entitlement"
	"github.com/fatflowers/quitsmart/internal/models"
	"github.com/fatflowers/quitsmart/internal/store"
	"github.com/fatflowers/quitsmart/pkg/apperr"
	"github.com/fatflowers/quitsmart/pkg/logctx"
	"github.com/fatflowers/quitsmart/pkg/metrics"
	"github.com/fatflowers/quitsmart/pkg/tool"
)

// Gate decides whether an account may use stage management.
type Gate interface {
	RequirePremium(ctx context.Context, accountID string) (entitlement.Entitlement, error)
}

type Service struct {
	store     store.Store
	gate      Gate
	changelog *changelog.Service
	metrics   *metrics.Business
	log       *zap.SugaredLogger
	now       tool.Clock
}

func NewService(st store.Store, ent *entitlement.Service, cl *changelog.Service, m *metrics.Business, log *zap.SugaredLogger) *Service {
	return newService(st, ent, cl, m, log)
}

func newService(st store.Store, gate Gate, cl *changelog.Service, m *metrics.Business, log *zap.SugaredLogger) *Service {
	return &Service{store: st, gate: gate, changelog: cl, metrics: m, log: log, now: tool.SystemClock}
}

func (s *Service) WithClock(c tool.Clock) *Service {
	s.now = c
	return s
}

// Metrics is a partial update of the open stage. Nil fields are left alone.
type Metrics struct {
	Percentage       *int    `json:"percentage"`
	CigarettesSmoked *int    `json:"cigarettes_smoked"`
	CravingLevel     *int    `json:"craving_level"`
	StressLevel      *int    `json:"stress_level"`
	SupportLevel     *int    `json:"support_level"`
	UserNotes        *string `json:"user_notes"`
	CoachNotes       *string `json:"coach_notes"`
	Challenges       *string `json:"challenges"`
	Wins             *string `json:"wins"`
}

func (m Metrics) validate() error {
	if p := m.Percentage; p != nil && (*p < 0 || *p > 100) {
		return apperr.Validation("percentage must be between 0 and 100")
	}
	if c := m.CigarettesSmoked; c != nil && *c < 0 {
		return apperr.Validation("cigarettes_smoked must not be negative")
	}
	for name, v := range map[string]*int{
		"craving_level": m.CravingLevel,
		"stress_level":  m.StressLevel,
		"support_level": m.SupportLevel,
	} {
		if v != nil && (*v < 1 || *v > 10) {
			return apperr.Validation("%s must be between 1 and 10", name)
		}
	}
	return nil
}

// AdvanceResult describes a stage transition.
type AdvanceResult struct {
	Closed *models.StageProgress `json:"closed,omitempty"`
	Opened *models.StageProgress `json:"opened"`
	// Expected is the defined successor of the closed stage.
	Expected models.StageName `json:"expected"`
	// OffSequence is set when the requested stage is not the defined successor.
	OffSequence bool `json:"off_sequence"`
	// NoOp is set when MAINTENANCE was advanced to itself.
	NoOp bool `json:"no_op"`
}

func (s *Service) newRecord(accountID string, st models.StageName, at time.Time) *models.StageProgress {
	tpl, _ := TemplateFor(st)
	return &models.StageProgress{
		ID:        tool.GenerateUUIDV7(),
		AccountID: accountID,
		Stage:     st,
		StartDate: at,
		Goals:     tpl.Goals,
	}
}

// HasStages reports whether the account has any stage record. It is not gated.
func (s *Service) HasStages(ctx context.Context, accountID string) (bool, error) {
	n, err := s.store.CountStages(ctx, accountID)
	if err != nil {
		return false, fmt.Errorf("count stages: %w", err)
	}
	return n > 0, nil
}

// StartInitialStage opens PREPARATION for an account without any stage history.
func (s *Service) StartInitialStage(ctx context.Context, accountID string) (*models.StageProgress, error) {
	if _, err := s.gate.RequirePremium(ctx, accountID); err != nil {
		return nil, err
	}
	rec := s.newRecord(accountID, models.StagePreparation, s.now())
	err := s.store.InTx(ctx, func(tx store.Store) error {
		n, err := tx.CountStages(ctx, accountID)
		if err != nil {
			return fmt.Errorf("count stages: %w", err)
		}
		if n > 0 {
			return apperr.Conflict("account %s already has stage records", accountID)
		}
		return tx.InsertStage(ctx, rec)
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.Conflict("account %s already has an open stage", accountID)
		}
		return nil, err
	}
	s.saveLog(ctx, accountID, "", rec.Stage, false, "")
	logctx.FromCtx(ctx, s.log).Infow("stage_started", "stage", rec.Stage, "stage_id", rec.ID)
	return rec, nil
}

// CurrentStage returns the open stage record.
func (s *Service) CurrentStage(ctx context.Context, accountID string) (*models.StageProgress, error) {
	if _, err := s.gate.RequirePremium(ctx, accountID); err != nil {
		return nil, err
	}
	cur, err := s.store.GetOpenStage(ctx, accountID, false)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("account %s has no open stage", accountID)
		}
		return nil, fmt.Errorf("get open stage: %w", err)
	}
	return cur, nil
}

// History returns every stage record, oldest first.
func (s *Service) History(ctx context.Context, accountID string) ([]*models.StageProgress, error) {
	if _, err := s.gate.RequirePremium(ctx, accountID); err != nil {
		return nil, err
	}
	stages, err := s.store.ListStages(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("list stages: %w", err)
	}
	return stages, nil
}

// UpdateCurrentStage applies m to the open stage record.
func (s *Service) UpdateCurrentStage(ctx context.Context, accountID string, m Metrics) (*models.StageProgress, error) {
	if _, err := s.gate.RequirePremium(ctx, accountID); err != nil {
		return nil, err
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	var out *models.StageProgress
	err := s.store.InTx(ctx, func(tx store.Store) error {
		cur, err := tx.GetOpenStage(ctx, accountID, true)
		if err != nil {
			return err
		}
		if m.Percentage != nil {
			cur.Percentage = *m.Percentage
		}
		cur.CigarettesSmoked = lo.CoalesceOrEmpty(m.CigarettesSmoked, cur.CigarettesSmoked)
		cur.CravingLevel = lo.CoalesceOrEmpty(m.CravingLevel, cur.CravingLevel)
		cur.StressLevel = lo.CoalesceOrEmpty(m.StressLevel, cur.StressLevel)
		cur.SupportLevel = lo.CoalesceOrEmpty(m.SupportLevel, cur.SupportLevel)
		cur.UserNotes = lo.FromPtrOr(m.UserNotes, cur.UserNotes)
		cur.CoachNotes = lo.FromPtrOr(m.CoachNotes, cur.CoachNotes)
		cur.Challenges = lo.FromPtrOr(m.Challenges, cur.Challenges)
		cur.Wins = lo.FromPtrOr(m.Wins, cur.Wins)
		if err := tx.UpdateStage(ctx, cur); err != nil {
			return err
		}
		out = cur
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("account %s has no open stage", accountID)
		}
		return nil, fmt.Errorf("update stage: %w", err)
	}
	return out, nil
}

// maxStageNameLen matches the stage column width.
const maxStageNameLen = 32

// AdvanceStage closes the open stage and opens next. An empty next means the
// defined successor. Any value is accepted, including names outside the
// defined order; one that is not the successor is recorded as off-sequence.
func (s *Service) AdvanceStage(ctx context.Context, accountID string, next models.StageName, actorID string) (*AdvanceResult, error) {
	if _, err := s.gate.RequirePremium(ctx, accountID); err != nil {
		return nil, err
	}
	if len(next) > maxStageNameLen {
		return nil, apperr.Validation("stage name longer than %d characters", maxStageNameLen)
	}
	start := time.Now()
	now := s.now()

	var res AdvanceResult
	err := s.store.InTx(ctx, func(tx store.Store) error {
		cur, err := tx.GetOpenStage(ctx, accountID, true)
		if err != nil {
			return err
		}
		res = AdvanceResult{Expected: Next(cur.Stage)}
		target := next
		if target == "" {
			target = res.Expected
		}
		if target == "" {
			return apperr.Validation("stage %q has no defined successor, next stage required", cur.Stage)
		}
		if cur.Stage == models.StageMaintenance && target == models.StageMaintenance {
			res.Opened, res.NoOp = cur, true
			return nil
		}
		res.OffSequence = target != res.Expected

		closed := *cur
		closed.EndDate = lo.ToPtr(now)
		closed.Percentage = 100
		if err := tx.UpdateStage(ctx, &closed); err != nil {
			return fmt.Errorf("close stage: %w", err)
		}
		opened := s.newRecord(accountID, target, now)
		if err := tx.InsertStage(ctx, opened); err != nil {
			return fmt.Errorf("open stage: %w", err)
		}
		res.Closed, res.Opened = &closed, opened
		return nil
	})
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil, apperr.NotFound("account %s has no open stage", accountID)
	case errors.Is(err, store.ErrDuplicate):
		return nil, apperr.Conflict("concurrent stage change for account %s", accountID)
	case err != nil:
		return nil, err
	}
	if res.NoOp {
		return &res, nil
	}

	lg := logctx.FromCtx(ctx, s.log)
	if res.OffSequence {
		lg.Warnw("stage_advance_off_sequence",
			"from", res.Closed.Stage, "to", res.Opened.Stage, "expected", res.Expected, "actor_id", actorID)
	} else {
		lg.Infow("stage_advanced", "from", res.Closed.Stage, "to", res.Opened.Stage)
	}
	s.metrics.StageAdvanced(metricStage(res.Opened.Stage), res.OffSequence)
	s.metrics.ObserveProcess("stage", "advance", start)
	s.saveLog(ctx, accountID, res.Closed.Stage, res.Opened.Stage, res.OffSequence, actorID)
	return &res, nil
}

// metricStage keeps the stage label bounded when callers open stages
// outside the defined order.
func metricStage(st models.StageName) string {
	if Valid(st) {
		return string(st)
	}
	return "OTHER"
}

func (s *Service) saveLog(ctx context.Context, accountID string, from, to models.StageName, off bool, actorID string) {
	if s.changelog == nil {
		return
	}
	var extra datatypes.JSONMap
	if off {
		extra = datatypes.JSONMap{"expected": string(Next(from))}
	}
	s.changelog.SaveStageLog(ctx, &models.StageLog{
		AccountID:   accountID,
		FromStage:   from,
		ToStage:     to,
		OffSequence: off,
		ActorID:     actorID,
		Extra:       extra,
	})
}
