package scheduler

import (
	"context"

	"go.uber.org/fx"

	"github.com/contentry/ledger/internal/config"
)

func ProvideConfig(cfg config.Config) Config {
	return Config{
		RunInterval: cfg.Settlement.RunInterval,
		JobTimeout:  cfg.Settlement.JobTimeout,
	}
}

var Module = fx.Module("scheduler",
	fx.Provide(ProvideConfig),
	fx.Provide(New),
	fx.Invoke(NewScheduler),
)

func NewScheduler(lc fx.Lifecycle, sched *Scheduler) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ctx, cancel := context.WithCancel(context.Background())

			go sched.RunForever(ctx)

			lc.Append(fx.Hook{
				OnStop: func(context.Context) error {
					cancel()
					return nil
				},
			})

			return nil
		},
	})
}
