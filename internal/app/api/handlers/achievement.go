package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fatflowers/quitsmart/internal/app/service/achievement"
	"github.com/fatflowers/quitsmart/internal/app/service/entitlement"
	"github.com/fatflowers/quitsmart/internal/app/service/progression"
)

// @Summary      List achievements
// @Description  Every active achievement with the caller's progress toward it.
// @Tags         Achievement
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  handlers.RespAchievementStatuses
// @Router       /api/v1/achievements [get]
func ApiListAchievements(svc *progression.Service, ach *achievement.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		id := caller(c).ID
		stats, err := svc.GetStatistics(ctx, id)
		if err != nil {
			fail(c, log, err)
			return
		}
		list, err := ach.ListForAccount(ctx, id, stats)
		if err != nil {
			fail(c, log, err)
			return
		}
		respondOK(c, list)
	}
}

// @Summary      List unlocked achievements
// @Tags         Achievement
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  handlers.RespUnlocked
// @Router       /api/v1/achievements/unlocked [get]
func ApiListUnlocked(ach *achievement.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := ach.ListUnlocked(c.Request.Context(), caller(c).ID)
		if err != nil {
			fail(c, log, err)
			return
		}
		respondOK(c, list)
	}
}

// @Summary      Achievement leaderboard
// @Tags         Achievement
// @Produce      json
// @Security     BearerAuth
// @Param        take query int false "Rows to return (default 10, max 100)"
// @Success      200  {object}  handlers.RespLeaderboard
// @Router       /api/v1/achievements/leaderboard [get]
func ApiLeaderboard(ent *entitlement.Service, ach *achievement.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if _, err := ent.RequireFeature(ctx, caller(c).ID, entitlement.FeatureCommunityLeaderboard); err != nil {
			fail(c, log, err)
			return
		}
		take := 0
		if v := c.Query("take"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				badRequest(c, "take must be an integer")
				return
			}
			take = n
		}
		rows, err := ach.Leaderboard(ctx, take)
		if err != nil {
			fail(c, log, err)
			return
		}
		respondOK(c, rows)
	}
}

// @Summary      Re-check achievements
// @Description  Recomputes statistics and unlocks anything newly earned.
// @Tags         Achievement
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  handlers.RespUnlocked
// @Router       /api/v1/achievements/check [post]
func ApiCheckAchievements(svc *progression.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		unlocked, err := svc.CheckAchievements(c.Request.Context(), caller(c).ID)
		if err != nil {
			fail(c, log, err)
			return
		}
		respondOK(c, unlocked)
	}
}

func RegisterAchievementRoutes(r gin.IRouter, svc *progression.Service, ent *entitlement.Service, ach *achievement.Service, log *zap.SugaredLogger) {
	r.GET("/achievements", ApiListAchievements(svc, ach, log))
	r.GET("/achievements/unlocked", ApiListUnlocked(ach, log))
	r.GET("/achievements/leaderboard", ApiLeaderboard(ent, ach, log))
	r.POST("/achievements/check", ApiCheckAchievements(svc, log))
}
