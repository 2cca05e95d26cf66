package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fatflowers/quitsmart/internal/app/service/entitlement"
	"github.com/fatflowers/quitsmart/internal/app/service/progression"
	"github.com/fatflowers/quitsmart/internal/app/service/quitplan"
	"github.com/fatflowers/quitsmart/internal/app/service/statistics"
	"github.com/fatflowers/quitsmart/pkg/authz"
)

type DailyLogRequest struct {
	// Date is YYYY-MM-DD. Required on create, must match the entry on update.
	Date              string   `json:"date" example:"2025-03-10"`
	CigarettesAvoided int      `json:"cigarettes_avoided"`
	MoneySaved        float64  `json:"money_saved"`
	HealthScore       *int     `json:"health_score"`
	Mood              *int     `json:"mood"`
	CravingLevel      *int     `json:"craving_level"`
	Weight            *float64 `json:"weight"`
	ExerciseMinutes   *int     `json:"exercise_minutes"`
	SleepHours        *float64 `json:"sleep_hours"`
	Notes             string   `json:"notes"`
}

func (r DailyLogRequest) input() (progression.EntryInput, error) {
	date, err := optionalDate(r.Date)
	if err != nil {
		return progression.EntryInput{}, err
	}
	return progression.EntryInput{
		Date:              date,
		CigarettesAvoided: r.CigarettesAvoided,
		MoneySaved:        r.MoneySaved,
		HealthScore:       r.HealthScore,
		Mood:              r.Mood,
		CravingLevel:      r.CravingLevel,
		Weight:            r.Weight,
		ExerciseMinutes:   r.ExerciseMinutes,
		SleepHours:        r.SleepHours,
		Notes:             r.Notes,
	}, nil
}

func bindDailyLog(c *gin.Context) (progression.EntryInput, bool) {
	var req DailyLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return progression.EntryInput{}, false
	}
	in, err := req.input()
	if err != nil {
		badRequest(c, "date must be YYYY-MM-DD")
		return progression.EntryInput{}, false
	}
	return in, true
}

// @Summary      Record daily log
// @Description  Stores one day of progress, refreshes cached statistics and unlocks achievements.
// @Tags         Progress
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body DailyLogRequest true "Daily log"
// @Success      200  {object}  handlers.RespEntryResult
// @Router       /api/v1/daily_logs [post]
func ApiRecordDailyLog(svc *progression.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		in, valid := bindDailyLog(c)
		if !valid {
			return
		}
		acc := caller(c)
		res, err := svc.RecordDailyEntry(c.Request.Context(), acc.ID, acc.ID, in)
		if err != nil {
			fail(c, log, err)
			return
		}
		respondOK(c, res)
	}
}

// @Summary      Record daily log for a member (Coach)
// @Tags         Coach
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        account_id path string true "Member account id"
// @Param        request body DailyLogRequest true "Daily log"
// @Success      200  {object}  handlers.RespEntryResult
// @Router       /api/v1/coach/accounts/{account_id}/daily_logs [post]
func ApiRecordDailyLogFor(svc *progression.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireRole(c, authz.RoleCoach, authz.RoleAdmin) {
			return
		}
		in, valid := bindDailyLog(c)
		if !valid {
			return
		}
		res, err := svc.RecordDailyEntryFor(c.Request.Context(), caller(c), c.Param("account_id"), in)
		if err != nil {
			fail(c, log, err)
			return
		}
		respondOK(c, res)
	}
}

// @Summary      List daily logs
// @Tags         Progress
// @Produce      json
// @Security     BearerAuth
// @Param        from query string false "First day, YYYY-MM-DD"
// @Param        to   query string false "Last day, YYYY-MM-DD"
// @Success      200  {object}  handlers.RespDailyLogs
// @Router       /api/v1/daily_logs [get]
func ApiListDailyLogs(svc *progression.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		from, err := optionalDate(c.Query("from"))
		if err != nil {
			badRequest(c, "from must be YYYY-MM-DD")
			return
		}
		to, err := optionalDate(c.Query("to"))
		if err != nil {
			badRequest(c, "to must be YYYY-MM-DD")
			return
		}
		entries, err := svc.ListDailyEntries(c.Request.Context(), caller(c).ID, from, to)
		if err != nil {
			fail(c, log, err)
			return
		}
		respondOK(c, entries)
	}
}

// @Summary      Update daily log
// @Tags         Progress
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Entry id"
// @Param        request body DailyLogRequest true "Daily log"
// @Success      200  {object}  handlers.RespEntryResult
// @Router       /api/v1/daily_logs/{id} [put]
func ApiUpdateDailyLog(svc *progression.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		in, valid := bindDailyLog(c)
		if !valid {
			return
		}
		res, err := svc.UpdateDailyEntry(c.Request.Context(), caller(c).ID, c.Param("id"), in)
		if err != nil {
			fail(c, log, err)
			return
		}
		respondOK(c, res)
	}
}

// @Summary      Delete daily log
// @Tags         Progress
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Entry id"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/daily_logs/{id} [delete]
func ApiDeleteDailyLog(svc *progression.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.DeleteDailyEntry(c.Request.Context(), caller(c).ID, c.Param("id")); err != nil {
			fail(c, log, err)
			return
		}
		respondOK[any](c, nil)
	}
}

// @Summary      Get statistics
// @Description  Always computed from the raw daily logs.
// @Tags         Progress
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  handlers.RespStatistics
// @Router       /api/v1/statistics [get]
func ApiGetStatistics(svc *progression.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := svc.GetStatistics(c.Request.Context(), caller(c).ID)
		if err != nil {
			fail(c, log, err)
			return
		}
		respondOK(c, stats)
	}
}

type SmokingProfileRequest struct {
	QuitDate          string  `json:"quit_date" binding:"required" example:"2025-03-01"`
	CigarettesPerDay  int     `json:"cigarettes_per_day"`
	YearsSmoked       int     `json:"years_smoked"`
	CostPerPack       float64 `json:"cost_per_pack"`
	CigarettesPerPack int     `json:"cigarettes_per_pack"`
}

// @Summary      Save smoking profile
// @Tags         Progress
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body SmokingProfileRequest true "Smoking baseline"
// @Success      200  {object}  handlers.RespSmokingProfile
// @Router       /api/v1/smoking_profile [put]
func ApiSaveSmokingProfile(svc *progression.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SmokingProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		quit, err := optionalDate(req.QuitDate)
		if err != nil {
			badRequest(c, "quit_date must be YYYY-MM-DD")
			return
		}
		p, err := svc.SaveSmokingProfile(c.Request.Context(), caller(c).ID, progression.ProfileInput{
			QuitDate:          quit,
			CigarettesPerDay:  req.CigarettesPerDay,
			YearsSmoked:       req.YearsSmoked,
			CostPerPack:       req.CostPerPack,
			CigarettesPerPack: req.CigarettesPerPack,
		})
		if err != nil {
			fail(c, log, err)
			return
		}
		respondOK(c, p)
	}
}

// @Summary      Get risk report
// @Description  Brinkman index, band, population percentile and projected savings.
// @Tags         Progress
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  handlers.RespRiskReport
// @Router       /api/v1/risk [get]
func ApiGetRisk(ent *entitlement.Service, stats *statistics.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := caller(c).ID
		if _, err := ent.RequireFeature(c.Request.Context(), id, entitlement.FeatureRiskIndex); err != nil {
			fail(c, log, err)
			return
		}
		r, err := stats.RiskReport(c.Request.Context(), id)
		if err != nil {
			fail(c, log, err)
			return
		}
		respondOK(c, r)
	}
}

// @Summary      Get suggested quit plan
// @Tags         Progress
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  handlers.RespQuitPlan
// @Router       /api/v1/quit_plan/suggested [get]
func ApiSuggestedQuitPlan(svc *quitplan.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		plan, err := svc.Suggested(c.Request.Context(), caller(c).ID)
		if err != nil {
			fail(c, log, err)
			return
		}
		respondOK(c, plan)
	}
}

func RegisterProgressRoutes(r gin.IRouter, svc *progression.Service, ent *entitlement.Service, stats *statistics.Service, plans *quitplan.Service, log *zap.SugaredLogger) {
	r.POST("/daily_logs", ApiRecordDailyLog(svc, log))
	r.GET("/daily_logs", ApiListDailyLogs(svc, log))
	r.PUT("/daily_logs/:id", ApiUpdateDailyLog(svc, log))
	r.DELETE("/daily_logs/:id", ApiDeleteDailyLog(svc, log))
	r.GET("/statistics", ApiGetStatistics(svc, log))
	r.PUT("/smoking_profile", ApiSaveSmokingProfile(svc, log))
	r.GET("/risk", ApiGetRisk(ent, stats, log))
	r.GET("/quit_plan/suggested", ApiSuggestedQuitPlan(plans, log))
	r.POST("/coach/accounts/:account_id/daily_logs", ApiRecordDailyLogFor(svc, log))
}
