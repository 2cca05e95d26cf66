package statistics

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fatflowers/quitsmart/internal/models"
)

func TestRiskIndexAndBand(t *testing.T) {
	require.Equal(t, 150, RiskIndex(15, 10))
	require.Equal(t, RiskMedium, RiskBand(RiskIndex(15, 10)))

	cases := map[int]RiskLevel{
		0:   RiskLow,
		99:  RiskLow,
		100: RiskMedium,
		200: RiskMedium,
		201: RiskHigh,
	}
	for index, want := range cases {
		require.Equal(t, want, RiskBand(index), index)
	}
}

func TestAssess(t *testing.T) {
	a := Assess(250)
	require.Equal(t, RiskHigh, a.Level)
	require.Equal(t, "#dc3545", a.Color)
	require.Len(t, a.Recommendations, 7)

	// callers cannot mutate the shared table
	a.Recommendations[0] = "changed"
	require.NotEqual(t, "changed", RiskRecommendations(RiskHigh)[0])
}

func TestProjectSavings(t *testing.T) {
	p := &models.SmokingProfile{QuitDate: day(1), CigarettesPerDay: 10, CostPerPack: 30000, CigarettesPerPack: 20}
	s := ProjectSavings(p, day(8))
	require.Equal(t, 7, s.SmokeFreeDays)
	require.Equal(t, 70, s.CigarettesAvoided)
	require.InDelta(t, 105000.0, s.MoneySaved, 1e-6)
	require.Equal(t, HealthMilestone(7), s.HealthMilestone)

	p.CigarettesPerPack = 0
	require.Zero(t, ProjectSavings(p, day(8)).MoneySaved)

	require.Equal(t, 0, ProjectSavings(p, day(1).AddDate(0, 0, -3)).SmokeFreeDays)
	require.Equal(t, 0, ProjectSavings(nil, day(1)).SmokeFreeDays)
}

func TestHealthMilestone(t *testing.T) {
	require.Contains(t, HealthMilestone(0), "starts now")
	require.Contains(t, HealthMilestone(365), "One year")
	require.Equal(t, "Keep going! Your body is recovering.", HealthMilestone(3))
	require.Equal(t, "Your lungs are getting better every day.", HealthMilestone(20))
	require.Equal(t, "Your overall health is improving significantly.", HealthMilestone(200))
	require.Contains(t, HealthMilestone(400), "Congratulations")
}
