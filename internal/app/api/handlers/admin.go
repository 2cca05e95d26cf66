package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fatflowers/quitsmart/internal/app/service/achievement"
	"github.com/fatflowers/quitsmart/internal/app/service/entitlement"
	"github.com/fatflowers/quitsmart/internal/app/service/snapshot"
	"github.com/fatflowers/quitsmart/internal/app/service/statistics"
	"github.com/fatflowers/quitsmart/pkg/authz"
)

// @Summary      Create achievement (Admin)
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body achievement.Definition true "Catalog entry"
// @Success      200  {object}  handlers.RespAchievement
// @Router       /api/v1/admin/achievements [post]
func ApiCreateAchievement(ach *achievement.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireRole(c, authz.RoleAdmin) {
			return
		}
		var d achievement.Definition
		if err := c.ShouldBindJSON(&d); err != nil {
			badRequest(c, err.Error())
			return
		}
		a, err := ach.CreateDefinition(c.Request.Context(), d)
		if err != nil {
			fail(c, log, err)
			return
		}
		respondOK(c, a)
	}
}

type GrantPackageRequest struct {
	AccountID string `json:"account_id" binding:"required"`
	PackageID string `json:"package_id" binding:"required" example:"premium_month"`
}

// @Summary      Grant package (Admin)
// @Description  Starts a configured package for an account without payment.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body GrantPackageRequest true "Grant request"
// @Success      200  {object}  handlers.RespSubscription
// @Router       /api/v1/admin/grant_package [post]
func ApiGrantPackage(ent *entitlement.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireRole(c, authz.RoleAdmin) {
			return
		}
		var req GrantPackageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		sub, err := ent.GrantPackage(c.Request.Context(), req.AccountID, req.PackageID, caller(c).ID)
		if err != nil {
			fail(c, log, err)
			return
		}
		respondOK(c, sub)
	}
}

// @Summary      Risk overview (Admin)
// @Description  Population risk bands and averages across all smoking profiles.
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  handlers.RespRiskOverview
// @Router       /api/v1/admin/risk_overview [get]
func ApiRiskOverview(stats *statistics.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireRole(c, authz.RoleAdmin) {
			return
		}
		o, err := stats.RiskOverview(c.Request.Context())
		if err != nil {
			fail(c, log, err)
			return
		}
		respondOK(c, o)
	}
}

// @Summary      Take subscription snapshot (Admin)
// @Description  Runs the daily active-subscription snapshot immediately.
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  handlers.RespSnapshot
// @Router       /api/v1/admin/snapshot [post]
func ApiTakeSnapshot(snap *snapshot.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireRole(c, authz.RoleAdmin) {
			return
		}
		res, err := snap.TakeDailySnapshot(c.Request.Context())
		if err != nil {
			fail(c, log, err)
			return
		}
		respondOK(c, res)
	}
}

func RegisterAdminRoutes(r gin.IRouter, ach *achievement.Service, ent *entitlement.Service, stats *statistics.Service, snap *snapshot.Service, log *zap.SugaredLogger) {
	g := r.Group("/admin")
	g.POST("/achievements", ApiCreateAchievement(ach, log))
	g.POST("/grant_package", ApiGrantPackage(ent, log))
	g.GET("/risk_overview", ApiRiskOverview(stats, log))
	g.POST("/snapshot", ApiTakeSnapshot(snap, log))
}
