package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/quitsmart/docs"
	"github.com/fatflowers/quitsmart/internal/app/api/handlers"
	mw "github.com/fatflowers/quitsmart/internal/app/api/middleware"
	"github.com/fatflowers/quitsmart/internal/app/service/achievement"
	"github.com/fatflowers/quitsmart/internal/app/service/entitlement"
	"github.com/fatflowers/quitsmart/internal/app/service/progression"
	"github.com/fatflowers/quitsmart/internal/app/service/quitplan"
	"github.com/fatflowers/quitsmart/internal/app/service/snapshot"
	"github.com/fatflowers/quitsmart/internal/app/service/stage"
	"github.com/fatflowers/quitsmart/internal/app/service/statistics"
	cfgpkg "github.com/fatflowers/quitsmart/pkg/config"
	metrics "github.com/fatflowers/quitsmart/pkg/metrics"
)

// Services groups everything the HTTP routes dispatch to.
type Services struct {
	fx.In

	Progression  *progression.Service
	Entitlement  *entitlement.Service
	Stages       *stage.Service
	Achievements *achievement.Service
	Statistics   *statistics.Service
	QuitPlans    *quitplan.Service
	Snapshots    *snapshot.Service
}

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	// request logger & access log are attached per group in registerRoutes
	r.Use(mw.TraceMiddleware())
	return r
}

func newAuthenticator(cfg *cfgpkg.Config) (*mw.Authenticator, error) {
	return mw.NewAuthenticator(cfg.Auth)
}

func newRateLimiter(cfg *cfgpkg.Config) *mw.RateLimiter {
	return mw.NewRateLimiter(cfg.RateLimit)
}

// registerMetrics instruments r and serves /metrics on cfg.MetricsAddr when set.
func registerMetrics(lc fx.Lifecycle, r *gin.Engine, log *zap.SugaredLogger, cfg *cfgpkg.Config) {
	if cfg == nil || cfg.MetricsAddr == "" {
		return
	}
	p := metrics.NewPrometheus(metrics.NewPrometheusOptions{Logger: log})
	p.SetListenAddress(cfg.MetricsAddr)
	p.Use(r)
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Start()
			log.Infow("metrics started", "addr", cfg.MetricsAddr)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return p.Close()
		},
	})
}

func registerRoutes(r *gin.Engine, log *zap.SugaredLogger, cfg *cfgpkg.Config, auth *mw.Authenticator, limiter *mw.RateLimiter, svc Services) {
	// Public group: request logger + access log
	pub := r.Group("/")
	pub.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware(log))
	handlers.RegisterHealthRoutes(pub)
	docs.SwaggerInfo.BasePath = "/"
	pub.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	apiV1 := r.Group("/api/v1")
	apiV1.Use(
		mw.RequestLoggerMiddleware(log),
		mw.AccessLogMiddleware(log),
		mw.AuthMiddleware(auth, log),
		mw.RateLimitMiddleware(limiter),
	)
	handlers.RegisterProgressRoutes(apiV1, svc.Progression, svc.Entitlement, svc.Statistics, svc.QuitPlans, log)
	handlers.RegisterSubscriptionRoutes(apiV1, svc.Progression, svc.Entitlement, cfg, log)
	handlers.RegisterStageRoutes(apiV1, svc.Progression, svc.Stages, log)
	handlers.RegisterAchievementRoutes(apiV1, svc.Progression, svc.Entitlement, svc.Achievements, log)
	handlers.RegisterAdminRoutes(apiV1, svc.Achievements, svc.Entitlement, svc.Statistics, svc.Snapshots, log)
}

func runServer(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *cfgpkg.Config, r *gin.Engine) {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting HTTP server", "addr", addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Errorf("server error: %v", err)
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping HTTP server")
			shutdownCtx, cancel := context.WithTimeout(ctx, 120*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

var Module = fx.Options(
	fx.Provide(newEngine, newAuthenticator, newRateLimiter),
	fx.Invoke(registerMetrics, registerRoutes, runServer),
)
