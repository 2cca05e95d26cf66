package statistics

import (
	"time"

	"github.com/fatflowers/quitsmart/internal/models"
	"github.com/fatflowers/quitsmart/pkg/tool"
)

type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// RiskLevels lists the bands from lowest to highest.
var RiskLevels = []RiskLevel{RiskLow, RiskMedium, RiskHigh}

// RiskIndex is the Brinkman index.
func RiskIndex(cigarettesPerDay, yearsSmoked int) int {
	return cigarettesPerDay * yearsSmoked
}

// RiskBand: below 100 is low, 100 through 200 medium, above 200 high.
func RiskBand(index int) RiskLevel {
	switch {
	case index < 100:
		return RiskLow
	case index <= 200:
		return RiskMedium
	default:
		return RiskHigh
	}
}

// RiskAssessment is the display data of a band.
type RiskAssessment struct {
	Index           int       `json:"index"`
	Level           RiskLevel `json:"level"`
	Color           string    `json:"color"`
	Summary         string    `json:"summary"`
	Recommendations []string  `json:"recommendations"`
}

var riskColors = map[RiskLevel]string{
	RiskLow:    "#28a745",
	RiskMedium: "#ffc107",
	RiskHigh:   "#dc3545",
}

var riskSummaries = map[RiskLevel]string{
	RiskLow:    "Your smoking index is low. Quitting completely still protects your long-term health.",
	RiskMedium: "Your smoking index is medium. You are at risk of smoking-related disease; plan to quit seriously.",
	RiskHigh:   "Your smoking index is high. The risk of lung cancer and heart disease is very high; quit now.",
}

var riskRecommendations = map[RiskLevel][]string{
	RiskLow: {
		"Quit completely to protect your long-term health",
		"Keep a balanced diet",
		"Exercise regularly to strengthen your lungs",
		"Avoid second-hand smoke",
	},
	RiskMedium: {
		"Quit now, your health risk is growing",
		"Ask a doctor for a quit plan that suits you",
		"Use nicotine replacement therapy if needed",
		"Join a quit-smoking support group",
		"Get regular check-ups, especially lungs and heart",
	},
	RiskHigh: {
		"Quit immediately and seek medical support",
		"Visit a clinic for professional counselling",
		"Get a full health check as soon as possible",
		"Consider prescribed cessation medication",
		"Change your lifestyle: healthy food and exercise",
		"Stay away from smoky environments",
		"Report unusual symptoms to your doctor right away",
	},
}

// RiskRecommendations returns the static advice list of a band.
func RiskRecommendations(level RiskLevel) []string {
	return append([]string(nil), riskRecommendations[level]...)
}

func Assess(index int) RiskAssessment {
	level := RiskBand(index)
	return RiskAssessment{
		Index:           index,
		Level:           level,
		Color:           riskColors[level],
		Summary:         riskSummaries[level],
		Recommendations: RiskRecommendations(level),
	}
}

// Savings is the projection of what quitting saved since the quit date,
// assuming the baseline consumption would have continued.
type Savings struct {
	SmokeFreeDays     int     `json:"smoke_free_days"`
	CigarettesAvoided int     `json:"cigarettes_avoided"`
	MoneySaved        float64 `json:"money_saved"`
	HealthMilestone   string  `json:"health_milestone"`
}

func ProjectSavings(p *models.SmokingProfile, now time.Time) Savings {
	if p == nil {
		return Savings{HealthMilestone: HealthMilestone(0)}
	}
	days := max(0, tool.DaysBetween(p.QuitDate, now))
	avoided := days * p.CigarettesPerDay
	var money float64
	if p.CigarettesPerPack > 0 {
		money = float64(avoided) * p.CostPerPack / float64(p.CigarettesPerPack)
	}
	return Savings{
		SmokeFreeDays:     days,
		CigarettesAvoided: avoided,
		MoneySaved:        money,
		HealthMilestone:   HealthMilestone(days),
	}
}

var milestones = map[int]string{
	0:   "Your journey starts now. Your body begins clearing nicotine.",
	1:   "First day done! Your heart attack risk starts to drop.",
	7:   "One week smoke-free! Taste and smell are improving.",
	14:  "Two weeks! Circulation and lung function are improving.",
	30:  "One month! Your risk of infection is much lower.",
	90:  "Three months! Lung function has improved by up to 30%.",
	365: "One year! Your risk of heart disease is half that of a smoker.",
}

// HealthMilestone returns the health message for a number of smoke-free days.
func HealthMilestone(days int) string {
	if msg, ok := milestones[days]; ok {
		return msg
	}
	switch {
	case days < 7:
		return "Keep going! Your body is recovering."
	case days < 30:
		return "Your lungs are getting better every day."
	case days < 365:
		return "Your overall health is improving significantly."
	default:
		return "Congratulations! You have achieved something great for your health."
	}
}
