package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"agrilink-core/internal/config"
	nethttp "agrilink-core/internal/controllers/http"
	"agrilink-core/internal/infra"
	mmysql "agrilink-core/internal/infra/mysql"
	"agrilink-core/internal/infra/rabbitmq"
	mysqlrepo "agrilink-core/internal/repository/mysql"
	"agrilink-core/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	db, err := mmysql.NewMySQL(cfg)
	if err != nil {
		logger.Fatal("db: connect", zap.Error(err))
	}

	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetMaxIdleConns(20)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(1 * time.Minute)

	orderRepo := mysqlrepo.NewOrderRepository(db, cfg.StoreTimeout)
	deviceRepo := mysqlrepo.NewDeviceRepository(db, cfg.StoreTimeout)
	alertRepo := mysqlrepo.NewAlertRepository(db, cfg.StoreTimeout)

	listingClient := infra.NewListingClient(cfg.ListingServiceURL, 2*time.Second)
	farmClient := infra.NewFarmClient(cfg.FarmServiceURL, 2*time.Second)

	publisher, err := rabbitmq.NewPublisher(cfg.RabbitMQURL, "agrilink.events")
	if err != nil {
		logger.Fatal("failed to init publisher", zap.Error(err))
	}
	defer publisher.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisHost + ":6379",
		DB:           0,
		PoolSize:     100,
		MinIdleConns: 10,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})

	orderService := services.NewOrderService(orderRepo, listingClient, publisher, logger)
	orderService.SetRedisClient(redisClient)
	deviceService := services.NewDeviceService(deviceRepo, farmClient, publisher, cfg.FreshnessWindow, logger)
	telemetryService := services.NewTelemetryService(deviceRepo, alertRepo, publisher, logger)
	alertService := services.NewAlertService(alertRepo, deviceRepo, logger)

	handler := nethttp.NewHandler(orderService, deviceService, telemetryService, alertService, redisClient)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	handler.RegisterRoutes(r)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting agrilink core", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	// Optional optimization: reads already derive staleness lazily, the
	// sweep only announces devices that went quiet.
	g.Go(func() error {
		ticker := time.NewTicker(cfg.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if err := deviceService.SweepStale(ctx); err != nil {
					logger.Warn("staleness sweep failed", zap.Error(err))
				}
			}
		}
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
	logger.Info("shutdown complete")
}
