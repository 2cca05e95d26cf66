package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fatflowers/quitsmart/internal/app/service/entitlement"
	"github.com/fatflowers/quitsmart/internal/app/service/progression"
	"github.com/fatflowers/quitsmart/internal/models"
	"github.com/fatflowers/quitsmart/pkg/config"
)

// @Summary      Get entitlement
// @Description  Current tier, expiry and unlocked features.
// @Tags         Subscription
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  handlers.RespEntitlement
// @Router       /api/v1/subscription [get]
func ApiGetEntitlement(ent *entitlement.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		e, err := ent.GetEntitlement(c.Request.Context(), caller(c).ID)
		if err != nil {
			fail(c, log, err)
			return
		}
		respondOK(c, e)
	}
}

// @Summary      Subscription history
// @Tags         Subscription
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  handlers.RespSubscriptions
// @Router       /api/v1/subscription/history [get]
func ApiSubscriptionHistory(ent *entitlement.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		subs, err := ent.History(c.Request.Context(), caller(c).ID)
		if err != nil {
			fail(c, log, err)
			return
		}
		respondOK(c, subs)
	}
}

// @Summary      List packages
// @Tags         Subscription
// @Produce      json
// @Success      200  {object}  handlers.RespPackages
// @Router       /api/v1/subscription/packages [get]
func ApiListPackages(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		respondOK(c, cfg.Packages)
	}
}

type UpgradeRequest struct {
	// PackageID selects a configured package. When empty Tier and DurationDays are used.
	PackageID        string      `json:"package_id" example:"premium_month"`
	Tier             models.Tier `json:"tier" example:"PREMIUM"`
	DurationDays     int         `json:"duration_days"`
	Price            float64     `json:"price"`
	PreferredCoachID string      `json:"preferred_coach_id"`
}

// @Summary      Upgrade subscription
// @Description  Expires the active subscription and starts the new one. A first PREMIUM upgrade opens the PREPARATION stage.
// @Tags         Subscription
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body UpgradeRequest true "Upgrade request"
// @Success      200  {object}  handlers.RespUpgradeResult
// @Router       /api/v1/subscription/upgrade [post]
func ApiUpgradeSubscription(svc *progression.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpgradeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		acc := caller(c)
		res, err := svc.UpgradeSubscription(c.Request.Context(), acc.ID, entitlement.UpgradeRequest{
			PackageID:        req.PackageID,
			Tier:             req.Tier,
			DurationDays:     req.DurationDays,
			Price:            req.Price,
			PreferredCoachID: req.PreferredCoachID,
			OperatorID:       acc.ID,
		})
		if err != nil {
			fail(c, log, err)
			return
		}
		respondOK(c, res)
	}
}

// @Summary      Cancel subscription
// @Tags         Subscription
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  handlers.RespSubscription
// @Router       /api/v1/subscription/cancel [post]
func ApiCancelSubscription(ent *entitlement.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sub, err := ent.Cancel(c.Request.Context(), caller(c).ID)
		if err != nil {
			fail(c, log, err)
			return
		}
		respondOK(c, sub)
	}
}

func RegisterSubscriptionRoutes(r gin.IRouter, svc *progression.Service, ent *entitlement.Service, cfg *config.Config, log *zap.SugaredLogger) {
	r.GET("/subscription", ApiGetEntitlement(ent, log))
	r.GET("/subscription/history", ApiSubscriptionHistory(ent, log))
	r.GET("/subscription/packages", ApiListPackages(cfg))
	r.POST("/subscription/upgrade", ApiUpgradeSubscription(svc, log))
	r.POST("/subscription/cancel", ApiCancelSubscription(ent, log))
}
