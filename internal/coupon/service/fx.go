package service

import "go.uber.org/fx"

// Module wires the coupon service.
var Module = fx.Module("coupon.service",
	fx.Provide(NewService),
)
