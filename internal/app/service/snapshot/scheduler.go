package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/quitsmart/pkg/config"
)

const jobTimeout = 5 * time.Minute

// Scheduler runs the snapshot and sweep jobs on their cron schedules.
type Scheduler struct {
	cron *cron.Cron
	log  *zap.SugaredLogger
}

func NewScheduler(cfg *config.Config, s *Service, log *zap.SugaredLogger) (*Scheduler, error) {
	c := cron.New(cron.WithLocation(time.UTC), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	sch := &Scheduler{cron: c, log: log}

	jobs := []struct {
		name string
		spec string
		run  func(context.Context) error
	}{
		{"subscription_snapshot", cfg.Jobs.SnapshotCron, func(ctx context.Context) error {
			_, err := s.TakeDailySnapshot(ctx)
			return err
		}},
		{"subscription_sweep", cfg.Jobs.ExpirySweepCron, func(ctx context.Context) error {
			_, err := s.SweepLapsed(ctx)
			return err
		}},
	}
	for _, j := range jobs {
		if j.spec == "" {
			log.Infow("job_disabled", "job", j.name)
			continue
		}
		if _, err := c.AddFunc(j.spec, sch.wrap(j.name, j.run)); err != nil {
			return nil, fmt.Errorf("schedule %s (%q): %w", j.name, j.spec, err)
		}
	}
	return sch, nil
}

func (sch *Scheduler) wrap(name string, run func(context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		start := time.Now()
		if err := run(ctx); err != nil {
			sch.log.Errorw("job_failed", "job", name, "err", err)
			return
		}
		sch.log.Debugw("job_done", "job", name, "duration", time.Since(start))
	}
}

// Entries reports how many jobs are scheduled.
func (sch *Scheduler) Entries() int {
	return len(sch.cron.Entries())
}

func registerScheduler(lc fx.Lifecycle, sch *Scheduler) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			sch.cron.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			select {
			case <-sch.cron.Stop().Done():
			case <-ctx.Done():
			}
			return nil
		},
	})
}

var Module = fx.Options(
	fx.Provide(NewService, NewScheduler),
	fx.Invoke(registerScheduler),
)
