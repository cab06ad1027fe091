package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/luisk202009/kuppel-dine-ease-sub001/internal/audit/domain"
	cashdomain "github.com/luisk202009/kuppel-dine-ease-sub001/internal/cashsession/domain"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/clock"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/config"
	einvoicedomain "github.com/luisk202009/kuppel-dine-ease-sub001/internal/einvoice/domain"
	invoicedomain "github.com/luisk202009/kuppel-dine-ease-sub001/internal/invoice/domain"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/invoice/render"
	templatedomain "github.com/luisk202009/kuppel-dine-ease-sub001/internal/invoicetemplate/domain"
	ledgerdomain "github.com/luisk202009/kuppel-dine-ease-sub001/internal/ledger/domain"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/observability/logger"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/observability/metrics"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/observability/tracing"
	reportdomain "github.com/luisk202009/kuppel-dine-ease-sub001/internal/reports/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	HeaderOrg = "X-Org-Id"

	submitRateLimit  = 30
	submitRateWindow = time.Minute
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server, engine *gin.Engine) { s.RegisterAPIRoutes(engine) }),
	fx.Invoke(RunHTTP),
)

type Params struct {
	fx.In

	Cfg   config.Config
	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock

	InvoiceSvc  invoicedomain.Service
	DocumentSvc *render.DocumentService
	TemplateSvc templatedomain.Service
	CashSvc     cashdomain.Service
	ReportSvc   reportdomain.Service
	EInvoiceSvc einvoicedomain.Service
	LedgerSvc   ledgerdomain.Service
	AuditSvc    auditdomain.Service
}

type Server struct {
	cfg   config.Config
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock

	invoiceSvc  invoicedomain.Service
	documentSvc *render.DocumentService
	templateSvc templatedomain.Service
	cashSvc     cashdomain.Service
	reportSvc   reportdomain.Service
	einvoiceSvc einvoicedomain.Service
	ledgerSvc   ledgerdomain.Service
	auditSvc    auditdomain.Service

	submitLimiter *rateLimiter
}

func NewServer(p Params) *Server {
	return &Server{
		cfg:           p.Cfg,
		db:            p.DB,
		log:           p.Log.Named("http.server"),
		clock:         p.Clock,
		invoiceSvc:    p.InvoiceSvc,
		documentSvc:   p.DocumentSvc,
		templateSvc:   p.TemplateSvc,
		cashSvc:       p.CashSvc,
		reportSvc:     p.ReportSvc,
		einvoiceSvc:   p.EInvoiceSvc,
		ledgerSvc:     p.LedgerSvc,
		auditSvc:      p.AuditSvc,
		submitLimiter: newRateLimiter(submitRateLimit, submitRateWindow, p.Clock),
	}
}

type EngineParams struct {
	fx.In

	Cfg         config.Config
	HTTPMetrics *metrics.HTTPMetrics `optional:"true"`
}

// NewEngine builds the gin engine with request logging, tracing and HTTP
// metrics middleware.
func NewEngine(p EngineParams) *gin.Engine {
	if p.Cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(logger.GinMiddleware(logger.MiddlewareConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	engine.Use(tracing.GinMiddleware(p.Cfg.ServiceName))
	engine.Use(metrics.GinMiddleware(p.HTTPMetrics))
	engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
	return engine
}

// RegisterAPIRoutes mounts the health, metrics and /api routes.
func (s *Server) RegisterAPIRoutes(engine *gin.Engine) {
	engine.GET("/healthz", s.Health)
	if s.cfg.Metrics.Enabled {
		engine.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	api := engine.Group("/api")
	api.POST("/invoices/preview", s.PreviewInvoice)

	scoped := api.Group("", s.OrgRequired())
	{
		scoped.POST("/invoices", s.CreateInvoice)
		scoped.GET("/invoices", s.ListInvoices)
		scoped.GET("/invoices/:id", s.GetInvoice)
		scoped.GET("/invoices/:id/document", s.RenderInvoice)

		scoped.POST("/invoices/:id/items", s.AddInvoiceItem)
		scoped.PUT("/invoices/:id/items/order", s.ReorderInvoiceItems)
		scoped.PATCH("/invoices/:id/items/:item_id", s.UpdateInvoiceItem)
		scoped.DELETE("/invoices/:id/items/:item_id", s.RemoveInvoiceItem)

		scoped.POST("/invoices/:id/issue", s.IssueInvoice)
		scoped.POST("/invoices/:id/cancel", s.CancelInvoice)
		scoped.POST("/invoices/:id/pay", s.MarkInvoicePaid)
		scoped.POST("/invoices/:id/overdue", s.MarkInvoiceOverdue)

		scoped.POST("/invoices/:id/einvoice", s.SubmitEInvoice)
		scoped.GET("/invoices/:id/einvoice/preview", s.PreviewEInvoice)

		scoped.POST("/invoice-templates", s.CreateInvoiceTemplate)
		scoped.GET("/invoice-templates", s.ListInvoiceTemplates)
		scoped.GET("/invoice-templates/:id", s.GetInvoiceTemplate)
		scoped.PATCH("/invoice-templates/:id", s.UpdateInvoiceTemplate)
		scoped.POST("/invoice-templates/:id/default", s.SetDefaultInvoiceTemplate)

		scoped.POST("/cash-sessions", s.OpenCashSession)
		scoped.GET("/cash-sessions/:id", s.GetCashSession)
		scoped.POST("/cash-sessions/:id/sales", s.RecordCashSale)
		scoped.POST("/cash-sessions/:id/movements", s.RecordCashMovement)
		scoped.POST("/cash-sessions/:id/close", s.CloseCashSession)

		scoped.GET("/reports/sales", s.MonthlySalesReport)
		scoped.GET("/reports/statuses", s.StatusBreakdownReport)
		scoped.GET("/reports/cash-flow", s.CashFlowReport)
		scoped.GET("/reports/dashboard", s.DashboardReport)

		scoped.GET("/ledger/balances", s.LedgerBalances)
		scoped.GET("/audit-logs", s.ListAuditLogs)
	}
}

// Health reports whether the database answers a ping.
func (s *Server) Health(c *gin.Context) {
	sqlDB, err := s.db.DB()
	if err == nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		s.log.Warn("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// RunHTTP binds the engine to the configured address for the lifetime of
// the fx application.
func RunHTTP(lc fx.Lifecycle, cfg config.Config, engine *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
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
