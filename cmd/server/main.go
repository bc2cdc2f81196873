package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	fulfillmentapp "github.com/orderbridge/backend/internal/application/fulfillment"
	"github.com/orderbridge/backend/internal/domain/shared"
	"github.com/orderbridge/backend/internal/infrastructure/browser"
	"github.com/orderbridge/backend/internal/infrastructure/cache"
	"github.com/orderbridge/backend/internal/infrastructure/config"
	"github.com/orderbridge/backend/internal/infrastructure/logger"
	"github.com/orderbridge/backend/internal/infrastructure/shopvox"
	"github.com/orderbridge/backend/internal/infrastructure/storage"
	"github.com/orderbridge/backend/internal/infrastructure/telemetry"
	"github.com/orderbridge/backend/internal/infrastructure/vendor"
	"github.com/orderbridge/backend/internal/interfaces/http/handler"
	"github.com/orderbridge/backend/internal/interfaces/http/middleware"
	"github.com/orderbridge/backend/internal/interfaces/http/router"
	"go.uber.org/zap"

	_ "github.com/orderbridge/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

//	@title			OrderBridge API
//	@version		1.0
//	@description	Moves ShopVox sales orders into SanMar and S&S Activewear carts and exports ShopVox job reports.

//	@contact.name	OrderBridge maintainers

//	@host		localhost:8000
//	@BasePath	/api/v1

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	ctx := context.Background()

	// Telemetry: traces, metrics, logs, then the profiler so span profiles can attach
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}

	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	if loggerProvider.IsEnabled() {
		log = loggerProvider.Bridge(log, telemetry.ParseLevel(cfg.Telemetry.LogsLevel))
	}

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.PyroscopeAddress,
		ApplicationName: cfg.Telemetry.ServiceName,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}

	log.Info("Starting OrderBridge",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	// One Chrome for every page; launched lazily on first use
	session, err := browser.New(&browser.Config{
		UserDataDir:   cfg.Browser.UserDataDir,
		RemoteURL:     cfg.Browser.RemoteURL,
		Headless:      cfg.Browser.Headless,
		NoSandbox:     os.Geteuid() == 0,
		NavTimeout:    cfg.Browser.NavTimeout,
		ActionTimeout: cfg.Browser.ActionTimeout,
		DownloadDir:   cfg.Browser.DownloadDir,
		Logger:        log,
	})
	if err != nil {
		log.Fatal("Failed to create browser session", zap.Error(err))
	}

	// ShopVox adapters
	shopvoxCfg := shopvox.Config{
		BaseURL:       cfg.ShopVox.BaseURL,
		Email:         cfg.ShopVox.Email,
		Password:      cfg.ShopVox.Password,
		ToOrderView:   cfg.ShopVox.ToOrderView,
		NavTimeout:    cfg.Browser.NavTimeout,
		ActionTimeout: cfg.Browser.ActionTimeout,
		Stabilize: browser.StabilizeConfig{
			StablePolls: cfg.Orders.StablePolls,
			Interval:    cfg.Orders.PollInterval,
			MaxPolls:    cfg.Orders.MaxPolls,
		},
		Logger: log,
	}
	board := shopvox.NewOrderBoard(shopvoxCfg)
	rows := shopvox.NewRowSource(shopvoxCfg)
	reporter := shopvox.NewJobReporter(shopvoxCfg, session)
	authenticator := shopvox.NewAuthenticator(shopvoxCfg, session)

	// Vendor sites
	sanmarCfg := siteConfig(cfg.Vendors.SanMar, cfg, log)
	ssCfg := siteConfig(cfg.Vendors.SSActivewear, cfg, log)
	registry := vendor.NewRegistry(
		vendor.NewSanMar(sanmarCfg),
		vendor.NewSSActivewear(ssCfg),
	)

	// Report archive (optional)
	var archive fulfillmentapp.ReportArchive
	if cfg.Storage.Enabled {
		s3Archive, err := storage.NewS3Archive(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize report archive", zap.Error(err))
		}
		ensureCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		if err := s3Archive.EnsureBucket(ensureCtx); err != nil {
			log.Warn("Report archive bucket check failed", zap.Error(err))
		}
		cancel()
		archive = s3Archive
		log.Info("Report archive enabled", zap.String("bucket", cfg.Storage.Bucket))
	}

	// Application services
	intakeService := fulfillmentapp.NewIntakeService(board, rows, session, fulfillmentapp.IntakeConfig{
		Concurrency:   cfg.Orders.DetailConcurrency,
		StartInterval: cfg.Orders.DetailStartInterval,
		Attempts:      cfg.Orders.DetailAttempts,
	}, log)
	cartService := fulfillmentapp.NewCartService(session, registry, cfg.Orders.CartConcurrency, log)
	tagService := fulfillmentapp.NewTagService(board, session, cfg.Orders.TagConcurrency, log)
	reportService := fulfillmentapp.NewReportService(reporter, session, archive, fulfillmentapp.ReportConfig{
		OverdueView:   cfg.ShopVox.OverdueView,
		PendingView:   cfg.ShopVox.PendingView,
		SalesRepViews: cfg.ShopVox.SalesRepViews,
	}, log)
	sessionService := fulfillmentapp.NewSessionService(authenticator, session, log,
		vendor.NewSanMarLogin(sanmarCfg),
		vendor.NewSSActivewearLogin(ssCfg),
	)

	var fulfillmentMetrics *telemetry.FulfillmentMetrics
	if meterProvider.IsEnabled() {
		fulfillmentMetrics, err = telemetry.NewFulfillmentMetrics(telemetry.FulfillmentMetricsConfig{
			Meter:        meterProvider.Meter("orderbridge.fulfillment"),
			Logger:       log,
			PageProvider: session,
		})
		if err != nil {
			log.Warn("Fulfillment metrics disabled", zap.Error(err))
		} else {
			cartService.SetMetrics(fulfillmentMetrics)
			fulfillmentMetrics.StartPeriodicCollection(ctx, 15*time.Second)
		}
	}

	// Idempotency keys for add-to-cart and tag updates
	idempotencyStore, err := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log)).CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}

	// Handlers
	fulfillmentHandler := handler.NewFulfillmentHandler(intakeService, cartService, tagService, reportService)
	sessionHandler := handler.NewSessionHandler(sessionService, cfg.ShopVox.MFATimeout())
	systemHandler := handler.NewSystemHandler(cfg.App.Name, version, session)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware order:
	// 1. RequestID
	// 2. Tracing, then span attributes and error marking
	// 3. Recovery and request logging
	// 4. Metrics and profiling labels
	// 5. Security headers, CORS, body limit, rate limit
	engine.Use(middleware.RequestID())
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.TracingAttributeInjector())
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
		MeterProvider: meterProvider,
		Enabled:       cfg.Telemetry.MetricsEnabled,
		Logger:        log,
	}))
	engine.Use(middleware.ProfilingWithConfig(middleware.ProfilingConfig{
		Enabled:          profiler.IsEnabled(),
		SkipPaths:        middleware.DefaultProfilingConfig().SkipPaths,
		SkipPathPrefixes: middleware.DefaultProfilingConfig().SkipPathPrefixes,
	}))
	engine.Use(middleware.Secure())

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORS(corsConfig))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	var rateLimiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	router.RegisterProbes(engine, systemHandler)

	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:    cfg.Swagger.Enabled,
			AllowedIPs: cfg.Swagger.AllowedIPs,
		}),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	idempotency := middleware.Idempotency(idempotencyStore, shared.IdempotencyConfig{
		Enabled: cfg.Idempotency.Enabled,
		TTL:     cfg.Idempotency.TTL,
	}, log)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"), router.WithRootMount(true))
	r.Register(router.NewFulfillmentRoutes(fulfillmentHandler, idempotency)).
		Register(router.NewSessionRoutes(sessionHandler)).
		Register(router.NewSystemRoutes(systemHandler))
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	if rateLimiter != nil {
		rateLimiter.Stop()
	}
	if fulfillmentMetrics != nil {
		fulfillmentMetrics.Stop()
	}
	if err := idempotencyStore.Close(); err != nil {
		log.Warn("Error closing idempotency store", zap.Error(err))
	}
	authenticator.Close()
	if err := session.Close(); err != nil {
		log.Warn("Error closing browser session", zap.Error(err))
	}

	if err := profiler.Stop(); err != nil {
		log.Warn("Error stopping profiler", zap.Error(err))
	}
	if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error shutting down logger provider", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error shutting down tracer provider", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

func siteConfig(site config.VendorSiteConfig, cfg *config.Config, log *zap.Logger) vendor.SiteConfig {
	return vendor.SiteConfig{
		BaseURL:       site.BaseURL,
		Username:      site.Username,
		Password:      site.Password,
		NavTimeout:    cfg.Browser.NavTimeout,
		ActionTimeout: cfg.Browser.ActionTimeout,
		Pace:          cfg.Vendors.Pace,
		Logger:        log,
	}
}
