package handlers

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fatflowers/quitsmart/internal/app/service/progression"
	"github.com/fatflowers/quitsmart/internal/app/service/stage"
	"github.com/fatflowers/quitsmart/internal/models"
)

// StageView is the open stage with its static content.
type StageView struct {
	*models.StageProgress
	Template stage.Template `json:"template"`
}

func viewOf(p *models.StageProgress) StageView {
	tpl, _ := stage.TemplateFor(p.Stage)
	return StageView{StageProgress: p, Template: tpl}
}

// @Summary      Current stage (Premium)
// @Tags         Stage
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  handlers.RespStage
// @Router       /api/v1/stage/current [get]
func ApiCurrentStage(svc *stage.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		cur, err := svc.CurrentStage(c.Request.Context(), caller(c).ID)
		if err != nil {
			fail(c, log, err)
			return
		}
		respondOK(c, viewOf(cur))
	}
}

// @Summary      Stage history (Premium)
// @Tags         Stage
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  handlers.RespStages
// @Router       /api/v1/stage/history [get]
func ApiStageHistory(svc *stage.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		hist, err := svc.History(c.Request.Context(), caller(c).ID)
		if err != nil {
			fail(c, log, err)
			return
		}
		respondOK(c, hist)
	}
}

// @Summary      Update current stage (Premium)
// @Tags         Stage
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body stage.Metrics true "Partial update"
// @Success      200  {object}  handlers.RespStage
// @Router       /api/v1/stage/current [put]
func ApiUpdateCurrentStage(svc *stage.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var m stage.Metrics
		if err := c.ShouldBindJSON(&m); err != nil {
			badRequest(c, err.Error())
			return
		}
		cur, err := svc.UpdateCurrentStage(c.Request.Context(), caller(c).ID, m)
		if err != nil {
			fail(c, log, err)
			return
		}
		respondOK(c, viewOf(cur))
	}
}

type AdvanceStageRequest struct {
	// NextStage defaults to the defined successor. Any other stage is accepted and flagged off-sequence.
	NextStage models.StageName `json:"next_stage" example:"INITIAL_QUIT"`
}

// @Summary      Advance stage (Premium)
// @Tags         Stage
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body AdvanceStageRequest false "Target stage"
// @Success      200  {object}  handlers.RespAdvance
// @Router       /api/v1/stage/advance [post]
func ApiAdvanceStage(svc *progression.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AdvanceStageRequest
		// an empty body, chunked or not, means the defined successor
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			badRequest(c, err.Error())
			return
		}
		acc := caller(c)
		res, err := svc.AdvanceStage(c.Request.Context(), acc.ID, req.NextStage, acc.ID)
		if err != nil {
			fail(c, log, err)
			return
		}
		respondOK(c, res)
	}
}

func RegisterStageRoutes(r gin.IRouter, svc *progression.Service, stages *stage.Service, log *zap.SugaredLogger) {
	r.GET("/stage/current", ApiCurrentStage(stages, log))
	r.PUT("/stage/current", ApiUpdateCurrentStage(stages, log))
	r.GET("/stage/history", ApiStageHistory(stages, log))
	r.POST("/stage/advance", ApiAdvanceStage(svc, log))
}
