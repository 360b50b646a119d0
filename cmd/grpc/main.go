package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fekuna/omnipos-catalog-service/config"
	availUCPkg "github.com/fekuna/omnipos-catalog-service/internal/availability/usecase"
	"github.com/fekuna/omnipos-catalog-service/internal/cache"
	"github.com/fekuna/omnipos-catalog-service/internal/catalog"
	"github.com/fekuna/omnipos-catalog-service/internal/catalog/enrich"
	catH "github.com/fekuna/omnipos-catalog-service/internal/catalog/handler"
	catSearchPkg "github.com/fekuna/omnipos-catalog-service/internal/catalog/search"
	catUCPkg "github.com/fekuna/omnipos-catalog-service/internal/catalog/usecase"
	deltaH "github.com/fekuna/omnipos-catalog-service/internal/delta/handler"
	deltaUCPkg "github.com/fekuna/omnipos-catalog-service/internal/delta/usecase"
	"github.com/fekuna/omnipos-catalog-service/internal/events"
	priceUCPkg "github.com/fekuna/omnipos-catalog-service/internal/pricing/usecase"
	"github.com/fekuna/omnipos-catalog-service/internal/store"
	"github.com/fekuna/omnipos-catalog-service/internal/store/memory"
	storeRepoPkg "github.com/fekuna/omnipos-catalog-service/internal/store/repository"
	"github.com/fekuna/omnipos-catalog-service/pkg/broker"
	pkgcache "github.com/fekuna/omnipos-catalog-service/pkg/cache"
	"github.com/fekuna/omnipos-catalog-service/pkg/database/postgres"
	"github.com/fekuna/omnipos-catalog-service/pkg/i18n"
	"github.com/fekuna/omnipos-catalog-service/pkg/logger"
	"github.com/fekuna/omnipos-catalog-service/pkg/middleware"
	"github.com/fekuna/omnipos-catalog-service/pkg/search"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load() // Load .env file if it exists
	cfg := config.LoadEnv()

	// 1.5 Initialize i18n
	i18n.Init()
	if cfg.I18n.LocalesDir != "" {
		files, _ := filepath.Glob(filepath.Join(cfg.I18n.LocalesDir, "*.json"))
		for _, f := range files {
			if err := i18n.Load(f); err != nil {
				log.Printf("Failed to load locale %s: %v", f, err)
			}
		}
	}

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          cfg.Logger.Encoding,
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}

	if cfg.Server.AppEnv == "development" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = "console"
		logConfig.Level = "debug"
	}

	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Initialize Master Store
	var repo store.Repository
	switch cfg.Store.Driver {
	case "memory":
		if cfg.Store.FixturePath == "" {
			repo = memory.New(memory.Data{})
			appLogger.Warn("Using empty in-memory store")
			break
		}
		memStore, err := memory.LoadFile(cfg.Store.FixturePath)
		if err != nil {
			appLogger.Fatal("Could not load store fixture", zap.String("path", cfg.Store.FixturePath), zap.Error(err))
		}
		repo = memStore
		appLogger.Info("Loaded in-memory store", zap.String("path", cfg.Store.FixturePath))
	default:
		db, err := postgres.NewPostgres(&postgres.Config{
			Host:            cfg.Postgres.Host,
			Port:            cfg.Postgres.Port,
			User:            cfg.Postgres.User,
			Password:        cfg.Postgres.Password,
			DBName:          cfg.Postgres.DBName,
			SSLMode:         cfg.Postgres.SSLMode,
			MaxOpenConns:    cfg.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Postgres.MaxIdleConns,
			ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
			ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
		})
		if err != nil {
			appLogger.Fatal("Could not connect to database", zap.Error(err))
		}
		defer db.Close()
		repo = storeRepoPkg.NewPGRepository(db)
		appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))
	}

	// 4. Initialize Result Cache
	var backend cache.Backend
	if cfg.Catalog.CacheBackend == "redis" {
		redisClient, err := pkgcache.NewRedisClient(&pkgcache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			appLogger.Fatal("Could not connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		backend = cache.NewRedisBackend(redisClient)
		appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
	} else {
		memBackend := cache.NewMemoryBackend()
		go memBackend.RunJanitor(ctx, cfg.Catalog.CacheSweepInterval)
		backend = memBackend
	}
	resultCache := cache.NewResultCache(backend, appLogger)

	// 5. Initialize Kafka diagnostics publisher
	publisher := events.NewNopPublisher()
	if cfg.Kafka.Enabled {
		producer := broker.NewProducer(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.DiagnosticsTopic,
		})
		defer producer.Close()
		publisher = events.NewKafkaPublisher(producer, cfg.Kafka.PublishTimeout, appLogger)
		appLogger.Info("Kafka diagnostics enabled", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", producer.Topic()))
	}

	// 5.5 Initialize Elasticsearch
	var searcher catalog.Searcher
	if cfg.Elastic.Enabled {
		esClient, err := search.NewClient(&search.Config{
			Addresses: cfg.Elastic.Addresses,
			Username:  cfg.Elastic.Username,
			Password:  cfg.Elastic.Password,
		})
		if err != nil {
			appLogger.Warn("Could not connect to Elasticsearch, catalog search uses the store only", zap.Error(err))
		} else {
			searcher = catSearchPkg.NewElasticSearcher(esClient, cfg.Catalog.SearchIndex)
			appLogger.Info("Connected to Elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
		}
	}

	// 6. Initialize UseCases
	priceResolver := priceUCPkg.NewPriceResolver(
		repo,
		priceUCPkg.NewStoreExchangeRates(repo),
		publisher,
		priceUCPkg.Config{Precision: int32(cfg.Catalog.CurrencyPrecision)},
		appLogger,
	)
	stockResolver := availUCPkg.NewAvailabilityResolver(repo, appLogger)
	enricher := enrich.New(repo, priceResolver, stockResolver, cfg.Catalog.EnrichWorkers, appLogger)

	catalogUC := catUCPkg.NewCatalogUseCase(repo, priceResolver, enricher, resultCache, searcher,
		catUCPkg.Config{CacheTTL: cfg.Catalog.CacheTTL}, appLogger)
	deltaUC := deltaUCPkg.NewDeltaUseCase(repo, enricher, publisher, deltaUCPkg.Config{
		ChangeScanLimit:     cfg.Catalog.ChangeScanLimit,
		CustomerChangeLimit: cfg.Catalog.CustomerChangeLimit,
		SelectiveFetchCap:   cfg.Catalog.SelectiveFetchCap,
		SerialCap:           cfg.Catalog.SerialCap,
		Lookback:            cfg.Catalog.ChangeLookback,
		DefaultLang:         cfg.I18n.DefaultLang,
	}, appLogger)

	// 7. Start gRPC Server
	port := cfg.Server.GRPCPort
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	lis, err := net.Listen("tcp", port)
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			middleware.RecoveryInterceptor(appLogger),
			middleware.ContextInterceptor(),
			middleware.LoggingInterceptor(appLogger),
		),
	)

	// Register Services
	catH.RegisterCatalogServiceServer(grpcServer, catH.NewCatalogHandler(catalogUC, appLogger))
	deltaH.RegisterSyncServiceServer(grpcServer, deltaH.NewSyncHandler(deltaUC, appLogger))

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus(catH.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(deltaH.ServiceName, healthpb.HealthCheckResponse_SERVING)

	// Register Reflection
	reflection.Register(grpcServer)

	appLogger.Info("Starting gRPC server", zap.String("port", port))

	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			appLogger.Fatal("failed to serve", zap.Error(err))
		}
	}()

	// 8. Start HTTP Server
	httpPort := cfg.Server.HTTPPort
	if !strings.HasPrefix(httpPort, ":") {
		httpPort = ":" + httpPort
	}
	if cfg.Server.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestContext(),
		middleware.RequestLogger(appLogger),
		middleware.NewIPRateLimiter(rate.Limit(cfg.HTTP.RateLimitRPS), cfg.HTTP.RateLimitBurst, appLogger).RateLimit(),
	)
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	api := router.Group("/api/v1")
	catH.NewHTTPHandler(catalogUC, appLogger).Register(api)
	deltaH.NewHTTPHandler(deltaUC, appLogger).Register(api)

	httpServer := &http.Server{
		Addr:              httpPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		appLogger.Info("Starting HTTP server", zap.String("port", httpPort))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("failed to serve http", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	healthServer.Shutdown()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("http shutdown failed", zap.Error(err))
	}
	grpcServer.GracefulStop()
	cancel()
	appLogger.Info("Server stopped")
}
