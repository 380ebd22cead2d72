package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sunterra/sunplan/internal/catalog"
	catalogdomain "github.com/sunterra/sunplan/internal/catalog/domain"
	"github.com/sunterra/sunplan/internal/config"
	"github.com/sunterra/sunplan/internal/geocode"
	"github.com/sunterra/sunplan/internal/observability"
	obsmiddleware "github.com/sunterra/sunplan/internal/observability/logger"
	obsmetrics "github.com/sunterra/sunplan/internal/observability/metrics"
	obstracing "github.com/sunterra/sunplan/internal/observability/tracing"
	"github.com/sunterra/sunplan/internal/plan"
	plandomain "github.com/sunterra/sunplan/internal/plan/domain"
	"github.com/sunterra/sunplan/internal/providers"
	"github.com/sunterra/sunplan/internal/ratelimit"
	"github.com/sunterra/sunplan/internal/submission"
	submissiondomain "github.com/sunterra/sunplan/internal/submission/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	catalog.Module,
	plan.Module,
	submission.Module,
	providers.Module,
	geocode.Module,
	ratelimit.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
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
	cfg           config.Config
	log           *zap.Logger
	catalogSvc    catalogdomain.Service
	planSvc       plandomain.Service
	submissionSvc submissiondomain.Service
	geocoder      geocode.Provider
	limiter       *ratelimit.SubmissionLimiter
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	Log           *zap.Logger
	CatalogSvc    catalogdomain.Service
	PlanSvc       plandomain.Service
	SubmissionSvc submissiondomain.Service
	Geocoder      geocode.Provider
	Limiter       *ratelimit.SubmissionLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		log:           p.Log.Named("server"),
		catalogSvc:    p.CatalogSvc,
		planSvc:       p.PlanSvc,
		submissionSvc: p.SubmissionSvc,
		geocoder:      p.Geocoder,
		limiter:       p.Limiter,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerRoutes() {
	v1 := s.engine.Group("/v1")
	v1.Use(SessionMiddleware())

	v1.GET("/catalog", s.GetCatalog)
	v1.POST("/catalog/refresh", s.RefreshCatalog)

	v1.GET("/plan", s.GetPlan)
	v1.PUT("/plan", s.UpdatePlan)

	v1.GET("/geocode", s.Geocode)

	v1.POST("/submission", s.Submit)
}
