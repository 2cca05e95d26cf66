package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/fatflowers/quitsmart/internal/app/api/server"
	"github.com/fatflowers/quitsmart/internal/app/service/achievement"
	"github.com/fatflowers/quitsmart/internal/app/service/changelog"
	"github.com/fatflowers/quitsmart/internal/app/service/entitlement"
	"github.com/fatflowers/quitsmart/internal/app/service/progression"
	"github.com/fatflowers/quitsmart/internal/app/service/quitplan"
	"github.com/fatflowers/quitsmart/internal/app/service/snapshot"
	"github.com/fatflowers/quitsmart/internal/app/service/stage"
	"github.com/fatflowers/quitsmart/internal/app/service/statistics"
	"github.com/fatflowers/quitsmart/internal/platform/db"
	"github.com/fatflowers/quitsmart/pkg/config"
	"github.com/fatflowers/quitsmart/pkg/logger"
	"github.com/fatflowers/quitsmart/pkg/metrics"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	metrics.Module,
	changelog.Module,
	statistics.Module,
	entitlement.Module,
	stage.Module,
	achievement.Module,
	progression.Module,
	quitplan.Module,
	snapshot.Module,
	server.Module,
)
