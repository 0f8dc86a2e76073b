package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/partnerledger/internal/commission"
	commissiondomain "github.com/smallbiznis/partnerledger/internal/commission/domain"
	"github.com/smallbiznis/partnerledger/internal/commissionrate"
	ratedomain "github.com/smallbiznis/partnerledger/internal/commissionrate/domain"
	"github.com/smallbiznis/partnerledger/internal/config"
	"github.com/smallbiznis/partnerledger/internal/earnings"
	earningsdomain "github.com/smallbiznis/partnerledger/internal/earnings/domain"
	"github.com/smallbiznis/partnerledger/internal/notification"
	"github.com/smallbiznis/partnerledger/internal/observability"
	obsmiddleware "github.com/smallbiznis/partnerledger/internal/observability/logger"
	obstracing "github.com/smallbiznis/partnerledger/internal/observability/tracing"
	"github.com/smallbiznis/partnerledger/internal/partner"
	partnerdomain "github.com/smallbiznis/partnerledger/internal/partner/domain"
	"github.com/smallbiznis/partnerledger/internal/payout"
	payoutdomain "github.com/smallbiznis/partnerledger/internal/payout/domain"
	"github.com/smallbiznis/partnerledger/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	ratelimit.Module,
	partner.Module,
	commissionrate.Module,
	notification.Module,
	commission.Module,
	earnings.Module,
	payout.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config) *gin.Engine {
	if !obsCfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}
	return NewEngine(obsCfg)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	log           *zap.Logger
	partnerSvc    partnerdomain.Service
	rateSvc       ratedomain.Service
	commissionSvc commissiondomain.Service
	earningsSvc   earningsdomain.Service
	payoutSvc     payoutdomain.Service
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	Log           *zap.Logger
	PartnerSvc    partnerdomain.Service
	RateSvc       ratedomain.Service
	CommissionSvc commissiondomain.Service
	EarningsSvc   earningsdomain.Service
	PayoutSvc     payoutdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		log:           p.Log.Named("http.server"),
		partnerSvc:    p.PartnerSvc,
		rateSvc:       p.RateSvc,
		commissionSvc: p.CommissionSvc,
		earningsSvc:   p.EarningsSvc,
		payoutSvc:     p.PayoutSvc,
	}

	svc.registerAPIRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Partners --------
	api.POST("/partners", s.CreatePartner)
	api.GET("/partners", s.ListPartners)
	api.GET("/partners/:id", s.GetPartnerByID)
	api.PATCH("/partners/:id", s.UpdatePartner)
	api.POST("/partners/:id/deactivate", s.DeactivatePartner)

	// -------- Commission Rates --------
	api.POST("/partners/:id/rates", s.CreateRate)
	api.GET("/partners/:id/rates", s.ListRates)
	api.PATCH("/rates/:id", s.UpdateRate)
	api.POST("/rates/:id/deactivate", s.DeactivateRate)

	// -------- Booking Hooks --------
	api.POST("/bookings/commissions", s.CreateBookingCommission)
	api.POST("/bookings/:booking_id/status", s.TransitionBookingCommission)
	api.GET("/bookings/:booking_id/commission", s.GetBookingCommission)

	// -------- Commissions --------
	api.GET("/commissions", s.ListCommissions)
	api.GET("/commissions/:id", s.GetCommissionByID)
	api.GET("/commissions/:id/history", s.GetCommissionHistory)
	api.POST("/commissions/:id/mark-paid", s.MarkCommissionPaid)

	// -------- Earnings --------
	api.GET("/partners/:id/earnings", s.GetPartnerEarnings)
	api.GET("/partners/:id/earnings/summary", s.GetPartnerEarningsSummary)
	api.GET("/partners/:id/earnings/categories", s.GetPartnerEarningsByCategory)

	// -------- Payouts --------
	api.POST("/partners/:id/payouts", s.GeneratePayout)
	api.GET("/partners/:id/payouts", s.ListPayouts)
	api.GET("/payouts/:id", s.GetPayoutByID)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
