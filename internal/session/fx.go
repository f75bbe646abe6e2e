package session

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/smallbiznis/couponview/internal/config"
)

var Module = fx.Module("session",
	fx.Provide(func(cfg config.Config) *Store {
		return NewStore(cfg.Session.ViewTTL)
	}),
	fx.Provide(NewGate),
	fx.Provide(func(store *Store, log *zap.Logger, cfg config.Config) *SweepWorker {
		return NewSweepWorker(store, log, cfg.Session.SweepInterval)
	}),
	fx.Invoke(runSweepWorker),
)

func runSweepWorker(lc fx.Lifecycle, worker *SweepWorker) {
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go worker.RunForever(ctx)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}
