package statistics

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/fatflowers/quitsmart/internal/models"
	"github.com/fatflowers/quitsmart/internal/store"
	"github.com/fatflowers/quitsmart/pkg/apperr"
	"github.com/fatflowers/quitsmart/pkg/logctx"
	"github.com/fatflowers/quitsmart/pkg/tool"
)

// RiskReport places one account's Brinkman index within the population.
type RiskReport struct {
	RiskAssessment
	CigarettesPerDay   int     `json:"cigarettes_per_day"`
	YearsSmoked        int     `json:"years_smoked"`
	Percentile         int     `json:"percentile"`
	SystemAverageIndex float64 `json:"system_average_index"`
	PopulationSize     int     `json:"population_size"`
	Savings            Savings `json:"savings"`
}

type BandCount struct {
	Level   RiskLevel `json:"level"`
	Count   int       `json:"count"`
	Percent float64   `json:"percent"`
}

// RiskOverview summarises risk bands across every profile.
type RiskOverview struct {
	Total        int         `json:"total"`
	AverageIndex float64     `json:"average_index"`
	Bands        []BandCount `json:"bands"`
}

// Service provides the store-backed statistics queries.
type Service struct {
	store store.Store
	log   *zap.SugaredLogger
	now   tool.Clock
}

func NewService(st store.Store, log *zap.SugaredLogger) *Service {
	return &Service{store: st, log: log, now: tool.SystemClock}
}

// WithClock replaces the clock used for "today".
func (s *Service) WithClock(c tool.Clock) *Service {
	s.now = c
	return s
}

// ForAccount computes statistics from the account's raw entries. A missing
// profile is not an error; DaysSinceQuit is then 0.
func (s *Service) ForAccount(ctx context.Context, accountID string) (Statistics, *models.SmokingProfile, error) {
	entries, err := s.store.ListDailyEntries(ctx, accountID, store.DateRange{})
	if err != nil {
		return Statistics{}, nil, fmt.Errorf("list daily entries: %w", err)
	}
	profile, err := s.store.GetProfile(ctx, accountID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return Statistics{}, nil, fmt.Errorf("get profile: %w", err)
	}
	quitDate := lo.FromPtr(profile).QuitDate
	return Compute(entries, quitDate, s.now()), profile, nil
}

func (s *Service) RiskReport(ctx context.Context, accountID string) (*RiskReport, error) {
	profile, err := s.store.GetProfile(ctx, accountID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("smoking profile of account %s", accountID)
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	profiles, err := s.store.ListProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	population := lo.Map(profiles, func(p *models.SmokingProfile, _ int) int { return p.RiskIndex() })
	index := profile.RiskIndex()

	report := &RiskReport{
		RiskAssessment:     Assess(index),
		CigarettesPerDay:   profile.CigarettesPerDay,
		YearsSmoked:        profile.YearsSmoked,
		Percentile:         PercentileRank(index, population),
		SystemAverageIndex: round1(average(population)),
		PopulationSize:     len(population),
		Savings:            ProjectSavings(profile, s.now()),
	}
	logctx.FromCtx(ctx, s.log).Debugw("risk_report", "index", index, "level", report.Level, "percentile", report.Percentile)
	return report, nil
}

func (s *Service) RiskOverview(ctx context.Context) (*RiskOverview, error) {
	profiles, err := s.store.ListProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	indices := lo.Map(profiles, func(p *models.SmokingProfile, _ int) int { return p.RiskIndex() })
	counts := lo.CountValuesBy(indices, RiskBand)

	ov := &RiskOverview{Total: len(indices), AverageIndex: round1(average(indices))}
	for _, level := range RiskLevels {
		bc := BandCount{Level: level, Count: counts[level]}
		if ov.Total > 0 {
			bc.Percent = round1(float64(bc.Count) / float64(ov.Total) * 100)
		}
		ov.Bands = append(ov.Bands, bc)
	}
	return ov, nil
}

func average(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	return float64(lo.Sum(values)) / float64(len(values))
}

func round1(v float64) float64 {
	return math.RoundToEven(v*10) / 10
}
