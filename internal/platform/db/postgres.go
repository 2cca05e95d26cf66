package db

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/fatflowers/quitsmart/internal/models"
	"github.com/fatflowers/quitsmart/internal/store"
	cfgpkg "github.com/fatflowers/quitsmart/pkg/config"
	gormzap "github.com/fatflowers/quitsmart/pkg/gormlog"
)

func NewDB(l *zap.SugaredLogger, cfg *cfgpkg.Config) (*gorm.DB, error) {
	if cfg.Database.DSN == "" {
		l.Error("database DSN is empty")
		return nil, gorm.ErrInvalidDB
	}
	level := gormlogger.Warn
	if cfg.Env == cfgpkg.EnvDev {
		level = gormlogger.Info
	}
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{
		Logger:         gormzap.New(l, level),
		TranslateError: true,
	})
	if err != nil {
		l.Errorf("failed to connect database: %v", err)
		return nil, err
	}
	l.Infow("connected to postgres via DSN")
	return db, nil
}

// NewStore selects the store implementation from database.driver. The
// postgres driver migrates the schema and closes the pool on shutdown.
func NewStore(lc fx.Lifecycle, l *zap.SugaredLogger, cfg *cfgpkg.Config) (store.Store, error) {
	if cfg.Database.Driver == cfgpkg.DBDriverMemory {
		l.Warnw("using in-memory store; data is lost on restart")
		return store.NewMemoryStore(), nil
	}
	gdb, err := NewDB(l, cfg)
	if err != nil {
		return nil, err
	}
	if err := AutoMigrate(l, gdb); err != nil {
		return nil, err
	}
	registerDBClose(lc, l, gdb)
	return store.NewGormStore(gdb), nil
}

var Module = fx.Options(
	fx.Provide(NewStore),
)

// AutoMigrate runs GORM migrations on startup
func AutoMigrate(l *zap.SugaredLogger, db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		l.Errorf("automigrate failed: %v", err)
		return err
	}
	l.Infow("automigrate completed")
	return nil
}

// registerDBClose ensures the underlying *sql.DB is closed on shutdown
func registerDBClose(lc fx.Lifecycle, l *zap.SugaredLogger, gdb *gorm.DB) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			sqlDB, err := gdb.DB()
			if err != nil {
				l.Warnw("gorm: get sql.DB failed", "err", err)
				return nil
			}
			l.Infow("closing postgres connection pool")
			return sqlDB.Close()
		},
	})
}
