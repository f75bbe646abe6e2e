package evm

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/smallbiznis/couponview/internal/config"
	"github.com/smallbiznis/couponview/internal/ledger"
)

// Module provides the EVM-backed ledger.Client and ties the RPC connection
// to the application lifecycle.
var Module = fx.Module("ledger.evm",
	fx.Provide(func(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (ledger.Client, error) {
		client, err := Dial(context.Background(), Config{
			RPCURL:          cfg.Ledger.RPCURL,
			ContractAddress: cfg.Ledger.ContractAddress,
			PrivateKey:      cfg.Ledger.PrivateKey,
			ChainID:         cfg.Ledger.ChainID,
		}, log)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				client.Close()
				return nil
			},
		})
		return client, nil
	}),
)
