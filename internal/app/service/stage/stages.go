package stage

import (
	"github.com/samber/lo"

	"github.com/fatflowers/quitsmart/internal/models"
)

// Order is the defined progression of stages.
var Order = []models.StageName{
	models.StagePreparation,
	models.StageInitialQuit,
	models.StageEarlyRecovery,
	models.StageOngoingRecovery,
	models.StageMaintenance,
}

// Next returns the successor of s. MAINTENANCE is terminal and maps to
// itself; an unknown stage has no successor.
func Next(s models.StageName) models.StageName {
	i := lo.IndexOf(Order, s)
	switch {
	case i < 0:
		return ""
	case i == len(Order)-1:
		return s
	}
	return Order[i+1]
}

// Valid reports whether s is one of the defined stages.
func Valid(s models.StageName) bool {
	return lo.Contains(Order, s)
}

// Template is the static content shown for a stage.
type Template struct {
	Stage       models.StageName `json:"stage"`
	DisplayName string           `json:"display_name"`
	Description string           `json:"description"`
	Goals       string           `json:"goals"`
	NextActions []string         `json:"next_actions"`
}

var templates = map[models.StageName]Template{
	models.StagePreparation: {
		DisplayName: "Preparation",
		Description: "Getting ready to quit: understand your triggers and set a quit date.",
		Goals:       "Pick a quit date, list your smoking triggers, tell friends and family about your plan.",
		NextActions: []string{"Set a quit date", "Remove cigarettes from home and car", "Talk with your coach about a plan"},
	},
	models.StageInitialQuit: {
		DisplayName: "Initial quit",
		Description: "The first smoke-free days, when withdrawal is strongest.",
		Goals:       "Stay smoke-free every day, use coping techniques for cravings, log every day.",
		NextActions: []string{"Log your day", "Practice a breathing exercise when a craving hits", "Check in with your coach"},
	},
	models.StageEarlyRecovery: {
		DisplayName: "Early recovery",
		Description: "Cravings fade and new routines take shape.",
		Goals:       "Replace smoking routines, keep stress under control, avoid high-risk situations.",
		NextActions: []string{"Build a new daily routine", "Add light exercise", "Review your wins with your coach"},
	},
	models.StageOngoingRecovery: {
		DisplayName: "Ongoing recovery",
		Description: "Smoke-free life becomes normal; watch for relapse triggers.",
		Goals:       "Keep healthy habits, handle stressful events without smoking, support others.",
		NextActions: []string{"Share your story in the community", "Plan for stressful events", "Track your savings"},
	},
	models.StageMaintenance: {
		DisplayName: "Maintenance",
		Description: "Long-term smoke-free maintenance.",
		Goals:       "Stay smoke-free for good and help others quit.",
		NextActions: []string{"Mentor a new member", "Celebrate your milestones"},
	},
}

// TemplateFor returns the template of s and whether s is known.
func TemplateFor(s models.StageName) (Template, bool) {
	t, ok := templates[s]
	if !ok {
		return Template{}, false
	}
	t.Stage = s
	t.NextActions = append([]string(nil), t.NextActions...)
	return t, true
}
