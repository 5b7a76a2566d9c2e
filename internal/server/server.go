package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stayhive/stayhive/internal/audit"
	auditdomain "github.com/stayhive/stayhive/internal/audit/domain"
	"github.com/stayhive/stayhive/internal/availability"
	"github.com/stayhive/stayhive/internal/booking"
	bookingdomain "github.com/stayhive/stayhive/internal/booking/domain"
	"github.com/stayhive/stayhive/internal/commission"
	commissiondomain "github.com/stayhive/stayhive/internal/commission/domain"
	"github.com/stayhive/stayhive/internal/config"
	"github.com/stayhive/stayhive/internal/hotel"
	hoteldomain "github.com/stayhive/stayhive/internal/hotel/domain"
	obstracing "github.com/stayhive/stayhive/internal/observability/tracing"
	"github.com/stayhive/stayhive/internal/payment"
	paymentdomain "github.com/stayhive/stayhive/internal/payment/domain"
	"github.com/stayhive/stayhive/internal/ratelimit"
	"github.com/stayhive/stayhive/internal/review"
	reviewdomain "github.com/stayhive/stayhive/internal/review/domain"
	"github.com/stayhive/stayhive/internal/search"
	searchdomain "github.com/stayhive/stayhive/internal/search/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	audit.Module,
	availability.Module,
	hotel.Module,
	booking.Module,
	review.Module,
	search.Module,
	commission.Module,
	payment.Module,
	ratelimit.Module,
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(registerRoutes),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestMetadata())
	r.Use(RequestLogging(log))
	r.Use(obstracing.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server starting", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
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
	db            *gorm.DB
	genID         *snowflake.Node
	hotelSvc      hoteldomain.Service
	bookingSvc    bookingdomain.Service
	reviewSvc     reviewdomain.Service
	searchSvc     searchdomain.Service
	maintainer    searchdomain.Maintainer
	paymentSvc    paymentdomain.Service
	commissionSvc commissiondomain.Service
	auditSvc      auditdomain.Service
	searchLimiter *ratelimit.SearchLimiter
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	Log           *zap.Logger
	DB            *gorm.DB
	GenID         *snowflake.Node
	HotelSvc      hoteldomain.Service
	BookingSvc    bookingdomain.Service
	ReviewSvc     reviewdomain.Service
	SearchSvc     searchdomain.Service
	Maintainer    searchdomain.Maintainer
	PaymentSvc    paymentdomain.Service
	CommissionSvc commissiondomain.Service
	AuditSvc      auditdomain.Service
	SearchLimiter *ratelimit.SearchLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		log:           p.Log.Named("server"),
		db:            p.DB,
		genID:         p.GenID,
		hotelSvc:      p.HotelSvc,
		bookingSvc:    p.BookingSvc,
		reviewSvc:     p.ReviewSvc,
		searchSvc:     p.SearchSvc,
		maintainer:    p.Maintainer,
		paymentSvc:    p.PaymentSvc,
		commissionSvc: p.CommissionSvc,
		auditSvc:      p.AuditSvc,
		searchLimiter: p.SearchLimiter,
	}
}

func registerRoutes(s *Server) {
	v1 := s.engine.Group("/v1")

	hotels := v1.Group("/hotels")
	hotels.GET("/search", s.SearchRateLimit(), s.SearchHotels)
	hotels.GET("/:id", s.GetHotel)
	hotels.POST("", s.CreateHotel)
	hotels.PATCH("/:id", s.UpdateHotel)
	hotels.POST("/:id/rooms", s.CreateRoom)

	bookings := v1.Group("/bookings")
	bookings.POST("", s.CreateBooking)
	bookings.GET("/:id", s.GetBooking)
	bookings.GET("/:id/history", s.GetBookingHistory)
	bookings.POST("/:id/confirm", s.ConfirmBooking)
	bookings.POST("/:id/cancel", s.CancelBooking)
	v1.GET("/confirmations/:number", s.GetBookingByConfirmation)

	reviews := v1.Group("/reviews")
	reviews.POST("", s.SubmitReview)
	reviews.GET("/:id", s.GetReview)

	v1.POST("/payments/result", s.ApplyPaymentResult)

	admin := v1.Group("/admin")
	admin.GET("/audit-logs", s.ListAuditLogs)
	admin.POST("/hotels/:id/reindex", s.ReindexHotel)
	admin.POST("/bookings/:id/commission", s.RecomputeCommission)
	admin.DELETE("/bookings/:id", s.PurgeBooking)
	admin.GET("/bookings/:id/commission", s.GetCommission)
	admin.POST("/commissions/:id/reverse", s.ReverseCommission)
	admin.POST("/reviews/:id/approve", s.ApproveReview)
	admin.POST("/reviews/:id/reject", s.RejectReview)
	admin.DELETE("/reviews/:id", s.DeleteReview)
}
