// Package server exposes the ledger over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"

	accountdomain "github.com/contentry/ledger/internal/account/domain"
	"github.com/contentry/ledger/internal/config"
	invoicedomain "github.com/contentry/ledger/internal/invoice/domain"
	matcherdomain "github.com/contentry/ledger/internal/matcher/domain"
	paymentdomain "github.com/contentry/ledger/internal/payment/domain"
	settlementdomain "github.com/contentry/ledger/internal/settlement/domain"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Provide(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}

func registerGin(log *zap.Logger) *gin.Engine {
	return NewEngine(log)
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	log = log.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}

func run(lc fx.Lifecycle, cfg config.Config, s *Server) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: s.Engine(),
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
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
	genID         *snowflake.Node
	invoiceSvc    invoicedomain.Service
	paymentSvc    paymentdomain.Service
	matcherSvc    matcherdomain.Service
	accountSvc    accountdomain.Service
	settlementSvc settlementdomain.Service
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	GenID         *snowflake.Node
	InvoiceSvc    invoicedomain.Service
	PaymentSvc    paymentdomain.Service
	MatcherSvc    matcherdomain.Service
	AccountSvc    accountdomain.Service
	SettlementSvc settlementdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		genID:         p.GenID,
		invoiceSvc:    p.InvoiceSvc,
		paymentSvc:    p.PaymentSvc,
		matcherSvc:    p.MatcherSvc,
		accountSvc:    p.AccountSvc,
		settlementSvc: p.SettlementSvc,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Invoices --------
	api.POST("/invoices", s.CreateInvoice)
	api.GET("/invoices/:id", s.GetInvoiceByID)
	api.POST("/invoices/:id/void", s.VoidInvoice)
	api.POST("/invoices/:id/apply_payment", s.ApplyPayment)

	// -------- Payments --------
	api.POST("/payments", s.AuthorizePayment)
	api.GET("/payments/:id", s.GetPaymentByID)
	api.POST("/payments/:id/capture", s.CapturePayment)
	api.POST("/payments/:id/refund", s.RefundPayment)
	api.POST("/payments/:id/fail", s.FailPayment)

	// -------- Monetization accounts --------
	api.POST("/accounts", s.EnsureAccount)
	api.GET("/accounts/:id", s.GetAccountByID)
	api.POST("/accounts/:id/capabilities", s.GrantCapability)
	api.POST("/accounts/:id/connected_account", s.AttachConnectedAccount)
	api.PUT("/accounts/:id/connected_account/status", s.UpdateConnectedAccountStatus)

	// -------- Settlement --------
	api.POST("/settlement_batches", s.CreateSettlementBatch)
	api.GET("/settlement_batches/:id", s.GetSettlementBatchByID)
	api.GET("/transfers/:id", s.GetTransferByID)
	api.POST("/transfers/:id/execute", s.ExecuteTransfer)
}

func parseID(c *gin.Context) (snowflake.ID, bool) {
	id, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return 0, false
	}
	return id, true
}
