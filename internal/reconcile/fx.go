package reconcile

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/smallbiznis/couponview/internal/ledger"
)

var Module = fx.Module("reconcile",
	fx.Provide(func(client ledger.Client, log *zap.Logger) *Reconciler {
		return NewReconciler(client, log)
	}),
)
