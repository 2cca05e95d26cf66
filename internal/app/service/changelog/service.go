package changelog

import (
	"context"
	"sync"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/quitsmart/internal/models"
	"github.com/fatflowers/quitsmart/internal/store"
	"github.com/fatflowers/quitsmart/pkg/logctx"
	"github.com/fatflowers/quitsmart/pkg/tool"
)

// Service writes troubleshooting logs off the request path. Failures are
// logged and never reach the caller.
type Service struct {
	store store.Store
	log   *zap.SugaredLogger
	wg    sync.WaitGroup
}

func New(st store.Store, log *zap.SugaredLogger) *Service { return &Service{store: st, log: log} }

// SaveSubscriptionLog asynchronously persists a subscription change. Nil input is ignored.
func (s *Service) SaveSubscriptionLog(ctx context.Context, l *models.SubscriptionLog) {
	if l == nil {
		return
	}
	if l.ID == "" {
		l.ID = tool.GenerateUUIDV7()
	}
	s.async(ctx, "subscription_log", func(ctx context.Context) error {
		return s.store.InsertSubscriptionLog(ctx, l)
	})
}

// SaveStageLog asynchronously persists a stage transition. Nil input is ignored.
func (s *Service) SaveStageLog(ctx context.Context, l *models.StageLog) {
	if l == nil {
		return
	}
	if l.ID == "" {
		l.ID = tool.GenerateUUIDV7()
	}
	s.async(ctx, "stage_log", func(ctx context.Context) error {
		return s.store.InsertStageLog(ctx, l)
	})
}

func (s *Service) async(ctx context.Context, kind string, write func(context.Context) error) {
	// the request may finish before the write does
	ctx = context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := write(ctx); err != nil {
			logctx.FromCtx(ctx, s.log).Errorf("failed to save %s: %v", kind, err)
		}
	}()
}

// Wait blocks until every pending write has finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

func registerFlush(lc fx.Lifecycle, s *Service) {
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			s.Wait()
			return nil
		},
	})
}

var Module = fx.Options(
	fx.Provide(New),
	fx.Invoke(registerFlush),
)
