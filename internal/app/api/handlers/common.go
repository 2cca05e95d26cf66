package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fatflowers/quitsmart/pkg/apperr"
	"github.com/fatflowers/quitsmart/pkg/authz"
	"github.com/fatflowers/quitsmart/pkg/logctx"
	"github.com/fatflowers/quitsmart/pkg/response"
	"github.com/fatflowers/quitsmart/pkg/tool"
)

// caller returns the authenticated account set by the auth middleware.
func caller(c *gin.Context) authz.Account {
	a, _ := authz.AccountFromCtx(c.Request.Context())
	return a
}

func respondOK[T any](c *gin.Context, data T) {
	c.JSON(http.StatusOK, response.OKT(data))
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, response.ErrorT(response.APIResponseCodeBadRequest, msg))
}

// fail writes the envelope for err. Unclassified errors are logged since
// their detail is hidden from the client; base is used when the request
// carries no scoped logger.
func fail(c *gin.Context, base *zap.SugaredLogger, err error) {
	if apperr.Kind(err) == nil {
		logctx.FromGin(c, base).Errorw("request_failed", "err", err)
	}
	_ = c.Error(err)
	c.JSON(http.StatusOK, response.FromError(err))
}

// requireRole writes a forbidden envelope and returns false unless the
// caller holds one of roles.
func requireRole(c *gin.Context, roles ...string) bool {
	if authz.HasRole(caller(c), roles...) {
		return true
	}
	c.JSON(http.StatusOK, response.ErrorT(response.APIResponseCodeForbidden, "insufficient role"))
	return false
}

// optionalDate parses a YYYY-MM-DD value; empty yields the zero time.
func optionalDate(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	return tool.ParseDate(v)
}
