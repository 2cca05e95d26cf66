package quitplan

import (
	"fmt"
	"time"

	"github.com/fatflowers/quitsmart/internal/app/service/statistics"
	"github.com/fatflowers/quitsmart/pkg/tool"
)

type Strategy string

const (
	StrategyQuick   Strategy = "QUICK"
	StrategyGradual Strategy = "GRADUAL"
	StrategySlow    Strategy = "SLOW"
)

type Milestone struct {
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	TargetDate       time.Time `json:"target_date"`
	TargetCigarettes int       `json:"target_cigarettes"`
	Actions          []string  `json:"actions"`
}

// Plan is a generated suggestion. Nothing about it is persisted.
type Plan struct {
	Name                   string               `json:"name"`
	Description            string               `json:"description"`
	Strategy               Strategy             `json:"strategy"`
	RiskIndex              int                  `json:"risk_index"`
	RiskLevel              statistics.RiskLevel `json:"risk_level"`
	DurationDays           int                  `json:"duration_days"`
	StartDate              time.Time            `json:"start_date"`
	EndDate                time.Time            `json:"end_date"`
	TargetCigarettesPerDay int                  `json:"target_cigarettes_per_day"`
	Strategies             []string             `json:"strategies"`
	Reason                 string               `json:"reason"`
	Milestones             []Milestone          `json:"milestones"`
}

// DurationDays is 21, 42 or 84 days for a low, medium or high risk index.
func DurationDays(index int) int {
	switch statistics.RiskBand(index) {
	case statistics.RiskLow:
		return 21
	case statistics.RiskMedium:
		return 42
	}
	return 84
}

func StrategyFor(cigarettesPerDay, index int) Strategy {
	switch {
	case cigarettesPerDay <= 10 && index < 100:
		return StrategyQuick
	case cigarettesPerDay <= 20:
		return StrategyGradual
	}
	return StrategySlow
}

func strategies(index int) []string {
	out := []string{
		"Set a specific quit date",
		"Remove tobacco from your home and car",
		"Exercise regularly",
		"Find a replacement activity",
	}
	if index >= 100 {
		out = append(out, "Talk to a doctor", "Consider nicotine replacement therapy", "Join a support group")
	}
	if index > 200 {
		out = append(out, "Get regular health checkups", "Ask about quit-smoking medication", "Stay under close medical follow-up")
	}
	return out
}

func reason(cigarettesPerDay, index int) string {
	switch statistics.RiskBand(index) {
	case statistics.RiskLow:
		return fmt.Sprintf("With %d cigarettes a day and a risk index of %d you can quit quickly with a focused plan.", cigarettesPerDay, index)
	case statistics.RiskMedium:
		return fmt.Sprintf("A risk index of %d calls for a gradual reduction to soften withdrawal.", index)
	}
	return fmt.Sprintf("With a high risk index (%d) a slow reduction is safer and more likely to succeed.", index)
}

func weekly(cigarettesPerDay, weeks, divisor int, now time.Time, describe func(target int) (string, []string)) []Milestone {
	step := cigarettesPerDay / divisor
	out := make([]Milestone, 0, weeks)
	for week := 1; week <= weeks; week++ {
		target := max(0, cigarettesPerDay-step*week)
		desc, actions := describe(target)
		out = append(out, Milestone{
			Title:            fmt.Sprintf("Week %d", week),
			Description:      desc,
			TargetDate:       now.AddDate(0, 0, week*7),
			TargetCigarettes: target,
			Actions:          actions,
		})
	}
	return out
}

func milestones(s Strategy, cigarettesPerDay int, now time.Time) []Milestone {
	switch s {
	case StrategyQuick:
		return []Milestone{
			{
				Title:            "Week 1: Prepare",
				Description:      "Get ready mentally and clean up your surroundings",
				TargetDate:       now.AddDate(0, 0, 7),
				TargetCigarettes: cigarettesPerDay / 2,
				Actions:          []string{"Cut cigarettes by half", "Prepare yourself mentally", "Tell your family"},
			},
			{
				Title:       "Week 2: Quit",
				Description: "Stop smoking completely",
				TargetDate:  now.AddDate(0, 0, 14),
				Actions:     []string{"Stop smoking completely", "Exercise every day", "Drink plenty of water"},
			},
			{
				Title:       "Week 3: Maintain",
				Description: "Keep and strengthen the new habits",
				TargetDate:  now.AddDate(0, 0, 21),
				Actions:     []string{"Stay smoke-free", "Find replacement activities", "Reward yourself"},
			},
		}
	case StrategyGradual:
		return weekly(cigarettesPerDay, 6, 4, now, func(target int) (string, []string) {
			d := fmt.Sprintf("Cut down to %d cigarettes a day", target)
			return d, []string{d, "Keep a journal", "Exercise"}
		})
	}
	return weekly(cigarettesPerDay, 12, 8, now, func(target int) (string, []string) {
		return fmt.Sprintf("Target: %d cigarettes a day", target), []string{"Reduce slowly", "Track your feelings", "Ask for support"}
	})
}

// Suggest builds a plan from a smoking baseline. The plan starts tomorrow.
func Suggest(cigarettesPerDay, yearsSmoked int, now time.Time) Plan {
	index := statistics.RiskIndex(cigarettesPerDay, yearsSmoked)
	days := DurationDays(index)
	strategy := StrategyFor(cigarettesPerDay, index)
	today := tool.DayOf(now)
	return Plan{
		Name:         fmt.Sprintf("%d-day quit plan", days),
		Description:  fmt.Sprintf("Generated from a habit of %d cigarettes a day", cigarettesPerDay),
		Strategy:     strategy,
		RiskIndex:    index,
		RiskLevel:    statistics.RiskBand(index),
		DurationDays: days,
		StartDate:    today.AddDate(0, 0, 1),
		EndDate:      today.AddDate(0, 0, days),
		Strategies:   strategies(index),
		Reason:       reason(cigarettesPerDay, index),
		Milestones:   milestones(strategy, cigarettesPerDay, now),
	}
}
