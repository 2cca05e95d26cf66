package achievement

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/fatflowers/quitsmart/internal/app/service/statistics"
	"github.com/fatflowers/quitsmart/internal/models"
	"github.com/fatflowers/quitsmart/internal/store"
	"github.com/fatflowers/quitsmart/pkg/apperr"
	"github.com/fatflowers/quitsmart/pkg/config"
	"github.com/fatflowers/quitsmart/pkg/logctx"
	"github.com/fatflowers/quitsmart/pkg/metrics"
	"github.com/fatflowers/quitsmart/pkg/tool"
)

const (
	DefaultLeaderboardSize = 10
	MaxLeaderboardSize     = 100
)

type Service struct {
	store   store.Store
	metrics *metrics.Business
	log     *zap.SugaredLogger
	now     tool.Clock
}

func NewService(st store.Store, m *metrics.Business, log *zap.SugaredLogger) *Service {
	return &Service{store: st, metrics: m, log: log, now: tool.SystemClock}
}

func (s *Service) WithClock(c tool.Clock) *Service {
	s.now = c
	return s
}

// Unlocked is an achievement earned by an account.
type Unlocked struct {
	Achievement *models.Achievement `json:"achievement"`
	UnlockedAt  time.Time           `json:"unlocked_at"`
}

// Status is one catalog entry seen from an account.
type Status struct {
	Achievement *models.Achievement `json:"achievement"`
	Progress    int                 `json:"progress"`
	Percent     float64             `json:"percent"`
	Unlocked    bool                `json:"unlocked"`
	UnlockedAt  *time.Time          `json:"unlocked_at,omitempty"`
}

// Evaluate unlocks every active achievement whose requirement stats and the
// account's activity satisfy. Only achievements unlocked by this call are
// returned, so repeated calls return nothing new.
func (s *Service) Evaluate(ctx context.Context, accountID string, stats statistics.Statistics) ([]Unlocked, error) {
	start := time.Now()
	defs, err := s.store.ListAchievements(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	have, err := s.unlockedSet(ctx, accountID)
	if err != nil {
		return nil, err
	}
	pending := lo.Filter(defs, func(a *models.Achievement, _ int) bool {
		_, ok := have[a.ID]
		return !ok
	})
	if len(pending) == 0 {
		return []Unlocked{}, nil
	}
	progress, err := collectProgress(ctx, s.store, accountID, stats)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := []Unlocked{}
	for _, a := range pending {
		if progress.Of(a.Category) < a.RequiredValue {
			continue
		}
		created, err := s.store.InsertUnlock(ctx, &models.UnlockedAchievement{
			ID:            tool.GenerateUUIDV7(),
			AccountID:     accountID,
			AchievementID: a.ID,
			UnlockedAt:    now,
		})
		if err != nil {
			return out, fmt.Errorf("unlock %s: %w", a.Name, err)
		}
		if !created {
			continue
		}
		out = append(out, Unlocked{Achievement: a, UnlockedAt: now})
		s.metrics.AchievementUnlocked(string(a.Category))
		logctx.FromCtx(ctx, s.log).Infow("achievement_unlocked", "achievement", a.Name, "category", a.Category)
	}
	s.metrics.ObserveProcess("achievement", "evaluate", start)
	return out, nil
}

func (s *Service) unlockedSet(ctx context.Context, accountID string) (map[string]*models.UnlockedAchievement, error) {
	rows, err := s.store.ListUnlocked(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("list unlocked: %w", err)
	}
	return lo.KeyBy(rows, func(u *models.UnlockedAchievement) string { return u.AchievementID }), nil
}

// ListForAccount returns every active achievement with the account's progress.
func (s *Service) ListForAccount(ctx context.Context, accountID string, stats statistics.Statistics) ([]Status, error) {
	defs, err := s.store.ListAchievements(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	have, err := s.unlockedSet(ctx, accountID)
	if err != nil {
		return nil, err
	}
	progress, err := collectProgress(ctx, s.store, accountID, stats)
	if err != nil {
		return nil, err
	}
	return lo.Map(defs, func(a *models.Achievement, _ int) Status {
		p := progress.Of(a.Category)
		st := Status{Achievement: a, Progress: p, Percent: ProgressPercent(p, a.RequiredValue)}
		if u, ok := have[a.ID]; ok {
			st.Unlocked, st.UnlockedAt = true, lo.ToPtr(u.UnlockedAt)
		}
		return st
	}), nil
}

// ListUnlocked returns the account's earned achievements, oldest first.
func (s *Service) ListUnlocked(ctx context.Context, accountID string) ([]Unlocked, error) {
	rows, err := s.store.ListUnlocked(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("list unlocked: %w", err)
	}
	defs, err := s.store.ListAchievements(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	byID := lo.KeyBy(defs, func(a *models.Achievement) string { return a.ID })
	return lo.FilterMap(rows, func(u *models.UnlockedAchievement, _ int) (Unlocked, bool) {
		a, ok := byID[u.AchievementID]
		return Unlocked{Achievement: a, UnlockedAt: u.UnlockedAt}, ok
	}), nil
}

// Definition is the admin input for a catalog entry.
type Definition struct {
	Name          string                     `json:"name" binding:"required"`
	Description   string                     `json:"description"`
	Icon          string                     `json:"icon"`
	Category      models.AchievementCategory `json:"category" binding:"required"`
	RequiredValue int                        `json:"required_value"`
	BadgeColor    string                     `json:"badge_color"`
	Points        int                        `json:"points"`
	Reward        map[string]any             `json:"reward"`
}

func (d Definition) validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return apperr.Validation("name required")
	}
	if !lo.Contains(models.AchievementCategories, d.Category) {
		return apperr.Validation("unknown category %q", d.Category)
	}
	if d.RequiredValue < 0 {
		return apperr.Validation("required_value must not be negative")
	}
	if d.Points < 0 {
		return apperr.Validation("points must not be negative")
	}
	return nil
}

// CreateDefinition adds an active achievement to the catalog.
func (s *Service) CreateDefinition(ctx context.Context, d Definition) (*models.Achievement, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}
	a := &models.Achievement{
		ID:            tool.GenerateUUIDV7(),
		Name:          strings.TrimSpace(d.Name),
		Description:   d.Description,
		Icon:          d.Icon,
		Category:      d.Category,
		RequiredValue: d.RequiredValue,
		BadgeColor:    d.BadgeColor,
		Points:        d.Points,
		Reward:        d.Reward,
		IsActive:      true,
	}
	if err := s.store.InsertAchievement(ctx, a); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.Conflict("achievement %q already exists", a.Name)
		}
		return nil, fmt.Errorf("insert achievement: %w", err)
	}
	return a, nil
}

// SeedCatalog inserts the seeds whose name is not in the catalog yet and
// returns how many were added.
func (s *Service) SeedCatalog(ctx context.Context, seeds []config.AchievementSeed) (int, error) {
	defs, err := s.store.ListAchievements(ctx, false)
	if err != nil {
		return 0, fmt.Errorf("list achievements: %w", err)
	}
	existing := lo.SliceToMap(defs, func(a *models.Achievement) (string, struct{}) { return a.Name, struct{}{} })
	added := 0
	for _, seed := range seeds {
		if _, ok := existing[seed.Name]; ok {
			continue
		}
		_, err := s.CreateDefinition(ctx, Definition{
			Name:          seed.Name,
			Description:   seed.Description,
			Icon:          seed.Icon,
			Category:      models.AchievementCategory(seed.Category),
			RequiredValue: seed.RequiredValue,
			BadgeColor:    seed.BadgeColor,
			Points:        seed.Points,
		})
		switch {
		case errors.Is(err, apperr.ErrConflict):
			// seeded concurrently by another instance
		case err != nil:
			return added, fmt.Errorf("seed %q: %w", seed.Name, err)
		default:
			added++
		}
	}
	return added, nil
}

// Leaderboard ranks accounts by unlocked achievements.
func (s *Service) Leaderboard(ctx context.Context, take int) ([]store.LeaderboardRow, error) {
	if take <= 0 {
		take = DefaultLeaderboardSize
	}
	take = min(take, MaxLeaderboardSize)
	rows, err := s.store.Leaderboard(ctx, take)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	return rows, nil
}
