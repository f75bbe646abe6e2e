package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/smallbiznis/couponview/internal/config"
	"github.com/smallbiznis/couponview/internal/coupon/service"
	"github.com/smallbiznis/couponview/internal/ledger/evm"
	"github.com/smallbiznis/couponview/internal/notify"
	"github.com/smallbiznis/couponview/internal/observability"
	"github.com/smallbiznis/couponview/internal/reconcile"
	"github.com/smallbiznis/couponview/internal/server"
	"github.com/smallbiznis/couponview/internal/session"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),

		evm.Module,
		reconcile.Module,
		session.Module,
		notify.Module,
		service.Module,

		fx.Provide(server.NewEngine),
		fx.Provide(server.NewServer),
		fx.Invoke(func(s *server.Server) {
			s.RegisterAPIRoutes()
		}),
		fx.Invoke(server.RunHTTP),
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
