package handlers

import (
	"github.com/fatflowers/quitsmart/internal/app/service/achievement"
	"github.com/fatflowers/quitsmart/internal/app/service/entitlement"
	"github.com/fatflowers/quitsmart/internal/app/service/progression"
	"github.com/fatflowers/quitsmart/internal/app/service/quitplan"
	"github.com/fatflowers/quitsmart/internal/app/service/snapshot"
	"github.com/fatflowers/quitsmart/internal/app/service/stage"
	"github.com/fatflowers/quitsmart/internal/app/service/statistics"
	"github.com/fatflowers/quitsmart/internal/models"
	"github.com/fatflowers/quitsmart/pkg/config"
	"github.com/fatflowers/quitsmart/pkg/response"
	"github.com/fatflowers/quitsmart/internal/store"
)

// Envelope types below exist for swag; handlers write response.APIResponse directly.

// RespOK is a generic OK envelope for endpoints returning no specific data.
type RespOK struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    interface{}              `json:"data"`
}

type RespHealth struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    HealthStatus             `json:"data"`
}

type RespEntryResult struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    progression.EntryResult  `json:"data"`
}

type RespDailyLogs struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    []models.DailyLogEntry   `json:"data"`
}

type RespStatistics struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    statistics.Statistics    `json:"data"`
}

type RespSmokingProfile struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    models.SmokingProfile    `json:"data"`
}

type RespRiskReport struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    statistics.RiskReport    `json:"data"`
}

type RespRiskOverview struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    statistics.RiskOverview  `json:"data"`
}

type RespQuitPlan struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    quitplan.Plan            `json:"data"`
}

type RespEntitlement struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    entitlement.Entitlement  `json:"data"`
}

type RespSubscription struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    models.Subscription      `json:"data"`
}

type RespSubscriptions struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    []models.Subscription    `json:"data"`
}

type RespPackages struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    []config.Package         `json:"data"`
}

type RespUpgradeResult struct {
	Code    response.APIResponseCode  `json:"code"`
	Message string                    `json:"message"`
	Data    progression.UpgradeResult `json:"data"`
}

type RespStage struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    StageView                `json:"data"`
}

type RespStages struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    []models.StageProgress   `json:"data"`
}

type RespAdvance struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    stage.AdvanceResult      `json:"data"`
}

type RespAchievement struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    models.Achievement       `json:"data"`
}

type RespAchievementStatuses struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    []achievement.Status     `json:"data"`
}

type RespUnlocked struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    []achievement.Unlocked   `json:"data"`
}

type RespLeaderboard struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    []store.LeaderboardRow   `json:"data"`
}

type RespSnapshot struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    snapshot.SnapshotResult  `json:"data"`
}
