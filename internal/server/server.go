// Package server exposes the coupon read model and write surface over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/smallbiznis/couponview/internal/config"
	"github.com/smallbiznis/couponview/internal/coupon/domain"
	"github.com/smallbiznis/couponview/internal/observability/logger"
	"github.com/smallbiznis/couponview/internal/observability/metrics"
)

const identityHeader = "X-Wallet-Address"

// redeem endpoints are public and keyed by coupon code, so they are
// throttled per client.
const (
	redeemRateLimit  = 30
	redeemRateWindow = time.Minute
)

type ServerParam struct {
	fx.In

	Cfg config.Config
	Log *zap.Logger
	Svc domain.Service
}

type Server struct {
	cfg           config.Config
	log           *zap.Logger
	svc           domain.Service
	engine        *gin.Engine
	redeemLimiter *rateLimiter
}

// NewEngine builds the gin engine with the shared middleware chain.
func NewEngine(cfg config.Config, httpMetrics *metrics.HTTPMetrics) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(logger.GinMiddleware(logger.MiddlewareConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	engine.Use(metrics.GinMiddleware(httpMetrics))
	return engine
}

func NewServer(p ServerParam, engine *gin.Engine) *Server {
	return &Server{
		cfg:           p.Cfg,
		log:           p.Log.Named("server"),
		svc:           p.Svc,
		engine:        engine,
		redeemLimiter: newRateLimiter(redeemRateLimit, redeemRateWindow),
	}
}

func (s *Server) RegisterAPIRoutes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.engine.Group("/api")
	{
		api.GET("/dashboard", s.Dashboard)

		api.GET("/coupons", s.ListCoupons)
		api.POST("/coupons", s.CreateCoupon)
		api.POST("/coupons/:id/use", s.UseCoupon)
		api.POST("/coupons/:id/share", s.ShareCoupon)

		api.GET("/organizations", s.ListOrganizations)
		api.POST("/organizations", s.CreateOrganization)
		api.GET("/organizations/:id", s.GetOrganization)

		redeem := api.Group("/redeem", s.redeemThrottle())
		redeem.GET("/:code", s.LookupRedemption)
		redeem.POST("/:code", s.Redeem)
	}
}

// identity returns the caller's wallet address. The header is set by the
// fronting gateway after signature verification and is trusted here.
func (s *Server) identity(c *gin.Context) (string, bool) {
	identity := c.GetHeader(identityHeader)
	if identity == "" {
		AbortWithError(c, domain.ErrIdentityRequired)
		return "", false
	}
	return identity, true
}

func (s *Server) redeemThrottle() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.redeemLimiter.Allow(c.ClientIP()) {
			AbortWithError(c, ErrRateLimited)
			return
		}
		c.Next()
	}
}

// RunHTTP starts the HTTP listener under the fx lifecycle.
func RunHTTP(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, engine *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
