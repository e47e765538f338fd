package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/study-planner/api/swagger"
	"github.com/noah-isme/study-planner/internal/handler"
	internalmiddleware "github.com/noah-isme/study-planner/internal/middleware"
	"github.com/noah-isme/study-planner/internal/repository"
	"github.com/noah-isme/study-planner/internal/service"
	"github.com/noah-isme/study-planner/pkg/cache"
	"github.com/noah-isme/study-planner/pkg/config"
	"github.com/noah-isme/study-planner/pkg/database"
	"github.com/noah-isme/study-planner/pkg/logger"
	corsmiddleware "github.com/noah-isme/study-planner/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/study-planner/pkg/middleware/requestid"
)

const shutdownTimeout = 10 * time.Second

// @title Study Planner API
// @version 1.0.0
// @description Allocates curriculum disciplines into semesters and keeps versioned study plans per student
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	defaults, err := service.PlannerDefaults(cfg.Planner)
	if err != nil {
		logr.Fatal("invalid planner configuration", zap.Error(err))
	}

	var metrics *service.MetricsService
	if cfg.Features.Metrics {
		metrics = service.NewMetricsService()
	}

	dependencies := map[string]handler.Pinger{}

	var (
		db       *sqlx.DB
		planRepo *repository.StudyPlanRepository
	)
	if cfg.Features.Persistence {
		db, err = database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			logr.Fatal("failed to connect to postgres", zap.Error(err))
		}
		defer db.Close()
		if err := database.Migrate(ctx, db); err != nil {
			logr.Fatal("failed to migrate schema", zap.Error(err))
		}
		planRepo = repository.NewStudyPlanRepository(db)
		dependencies["postgres"] = handler.PingFunc(db.PingContext)
	}

	var resultCache *service.CacheService
	if cfg.Features.Cache {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, result cache disabled", zap.Error(err))
		} else {
			cacheRepo := repository.NewCacheRepository(client, "", logr)
			defer cacheRepo.Close() //nolint:errcheck
			resultCache = service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, logr, true)
			dependencies["redis"] = cacheRepo
		}
	}

	store := service.NewPlanStore(cfg.Planner.PreviewTTL)
	go store.Start()
	defer store.Stop()

	validate := validator.New()
	exporter := service.NewExportService(logr, nil, nil)
	planSvc := newPlanService(planRepo, db, store, resultCache, metrics, exporter, validate, logr, service.PlanServiceConfig{
		Defaults: defaults,
		CacheTTL: cfg.Cache.TTL,
	})

	planHandler := handler.NewPlanHandler(planSvc, logr)
	metricsHandler := handler.NewMetricsHandler(metrics, handler.ServiceInfo{
		Name: "study-planner",
		Env:  cfg.Env,
		Features: map[string]bool{
			"persistence": planRepo != nil,
			"cache":       resultCache != nil,
			"auth":        cfg.Features.Auth,
			"metrics":     metrics != nil,
		},
	}, dependencies)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(corsmiddleware.Options{AllowedOrigins: cfg.CORS.AllowedOrigins}))
	r.Use(internalmiddleware.Metrics(metrics))
	r.Use(internalmiddleware.WithResponseMeta())

	r.GET("/", metricsHandler.Info)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	if metrics != nil {
		r.GET("/metrics", metricsHandler.Prometheus)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	var tokens internalmiddleware.TokenValidator
	if cfg.Features.Auth {
		tokens = service.NewTokenService(service.TokenConfig{
			Secret: cfg.JWT.Secret,
			Issuer: cfg.JWT.Issuer,
			Expiry: cfg.JWT.Expiration,
		})
	}
	registerPlanRoutes(r, cfg.APIPrefix, planHandler, tokens)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env,
			"persistence", planRepo != nil, "cache", resultCache != nil, "auth", cfg.Features.Auth)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

// newPlanService keeps a nil repository from becoming a non-nil interface
// value. A nil *CacheService is safe to pass since it reports itself disabled.
func newPlanService(
	repo *repository.StudyPlanRepository,
	db *sqlx.DB,
	store *service.PlanStore,
	resultCache *service.CacheService,
	metrics *service.MetricsService,
	exporter *service.ExportService,
	validate *validator.Validate,
	logr *zap.Logger,
	cfg service.PlanServiceConfig,
) *service.PlanService {
	if repo == nil {
		return service.NewPlanService(nil, nil, store, resultCache, metrics, exporter, validate, logr, cfg)
	}
	return service.NewPlanService(repo, db, store, resultCache, metrics, exporter, validate, logr, cfg)
}
