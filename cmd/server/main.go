package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"birthchart-server/internal/auth"
	"birthchart-server/internal/chart"
	"birthchart-server/internal/ephemeris"
	"birthchart-server/internal/geocode"
	"birthchart-server/internal/middleware"
	"birthchart-server/internal/server"
	serverHandlers "birthchart-server/internal/server/handlers"
	"birthchart-server/internal/shared/cache"
	"birthchart-server/internal/shared/config"
	"birthchart-server/internal/shared/database"
	"birthchart-server/internal/shared/logger"
	"birthchart-server/internal/shared/metrics"
	"birthchart-server/internal/shared/redis"
	"birthchart-server/internal/user"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

const memoryCacheSize = 10000

func main() {
	if err := config.Init(); err != nil {
		slog.Error("Failed to initialize configuration", "error", err)
		os.Exit(1)
	}
	logger.Init()

	if err := run(); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.GlobalConfig
	log := slog.With("component", "main")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Postgres and Redis are optional; Connect returns nil when unconfigured
	db, err := database.Connect(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	if db != nil {
		if err := db.RunMigrations(ctx, cfg.Database.MigrationsPath); err != nil {
			return err
		}
	}

	rdb, err := redis.Connect(ctx)
	if err != nil {
		return err
	}
	defer rdb.Close()

	// Initialize metrics
	var recorder *metrics.Recorder
	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		recorder = metrics.New(reg)
		metricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}

	// Redis backs the cache when available, memory otherwise
	var store cache.Cache
	var redisPinger serverHandlers.Pinger
	if rdb != nil {
		store = cache.NewRedisCache(rdb.Client, "birthchart")
		redisPinger = rdb
	} else {
		store = cache.NewMemoryCache(memoryCacheSize)
	}

	// Initialize the chart engine
	provider, err := ephemeris.Load(cfg.Chart.EphemerisPath)
	if err != nil {
		return err
	}
	geocoder := geocode.NewCached(geocode.NewNominatim(cfg.Geocoder, recorder), store, cfg.Geocoder.CacheTTL, recorder)

	defaultSystem, err := chart.ParseHouseSystem(cfg.Chart.HouseSystem)
	if err != nil {
		return err
	}

	routes := &server.Routes{
		OAuthProviders: auth.InitOAuth(),
		Metrics:        metricsHandler,
		MetricsPath:    cfg.Metrics.Path,
		ImageSize:      cfg.Chart.ImageSize,
	}

	chartOpts := chart.ServiceOptions{
		Cache:         store,
		CacheTTL:      cfg.Chart.CacheTTL,
		DefaultSystem: defaultSystem,
		Metrics:       recorder,
	}

	// Accounts and saved charts need the database
	var dbPinger serverHandlers.Pinger
	if db != nil {
		dbPinger = db
		chartOpts.Store = chart.NewRepository(db)
		routes.UserService = user.NewService(user.NewRepository(db), slog.Default())
		routes.AuthService = auth.NewService(auth.NewRepository(db), routes.UserService, slog.Default())
	}

	routes.ChartService = chart.NewService(geocoder, chart.NewBuilder(provider), chartOpts, slog.Default())
	routes.Health = serverHandlers.NewHealthHandler(provider.Name(), dbPinger, redisPinger)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit)
	cors := middleware.NewCORS(cfg.Frontend)

	// Apply middleware, outermost last
	var handler http.Handler = routes.Setup()
	handler = rateLimiter.Middleware(handler)
	handler = cors.Middleware(handler)
	handler = middleware.RequestLogger(recorder)(handler)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("Server starting",
			"port", cfg.Server.Port,
			"environment", cfg.Server.Environment,
			"ephemeris", provider.Name(),
			"default_house_system", defaultSystem,
			"database_enabled", db != nil,
			"redis_enabled", rdb != nil,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error { return auth.RunStateCleanup(gctx) })

	if cfg.RateLimit.Enabled {
		g.Go(func() error { return rateLimiter.Run(gctx) })
	}

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
