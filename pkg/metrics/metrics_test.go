package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestBusiness_NilIsNoop(t *testing.T) {
	var b *Business
	require.NotPanics(t, func() {
		b.AchievementUnlocked("SMOKE_FREE_DAYS")
		b.StageAdvanced("INITIAL_QUIT", true)
		b.SubscriptionUpgraded("PREMIUM", "ok")
		b.SetActiveSubscriptions("PREMIUM", 3)
		b.ObserveProcess("stage", "advance", time.Now())
	})
}

func TestBusiness_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	b, err := NewBusiness(reg)
	require.NoError(t, err)

	b.StageAdvanced("EARLY_RECOVERY", true)
	b.StageAdvanced("EARLY_RECOVERY", false)
	b.StageAdvanced("EARLY_RECOVERY", true)
	require.Equal(t, 2.0, testutil.ToFloat64(b.advance.WithLabelValues("EARLY_RECOVERY", "true")))

	b.AchievementUnlocked("MONEY_SAVED")
	require.Equal(t, 1.0, testutil.ToFloat64(b.unlocked.WithLabelValues("MONEY_SAVED")))

	b.SetActiveSubscriptions("BASIC", 4)
	require.Equal(t, 4.0, testutil.ToFloat64(b.active.WithLabelValues("BASIC")))
}

func TestPrometheus_MiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	p := NewPrometheus(NewPrometheusOptions{Subsystem: "test", Registry: reg})

	r := gin.New()
	p.Use(r)
	r.GET("/accounts/:id", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/accounts/42", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1.0, testutil.ToFloat64(p.reqCnt.WithLabelValues("200", "GET", "/accounts/:id", "")))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, strings.Contains(w.Body.String(), "test_req_total"))
}
