package notify

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/smallbiznis/couponview/internal/config"
)

var Module = fx.Module("notify",
	fx.Provide(func(cfg config.Config, log *zap.Logger) *Notifier {
		return New(Config{
			BaseURL: cfg.Notifier.BaseURL,
			Token:   cfg.Notifier.Token,
			Timeout: cfg.Notifier.Timeout,
		}, log)
	}),
)
