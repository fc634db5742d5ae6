package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amenelu/mekina/internal/api/handlers"
	apimiddleware "github.com/amenelu/mekina/internal/api/middleware"
	"github.com/amenelu/mekina/internal/config"
	mysqlstore "github.com/amenelu/mekina/internal/infrastructure/mysql"
	redisinfra "github.com/amenelu/mekina/internal/infrastructure/redis"
	wsinfra "github.com/amenelu/mekina/internal/infrastructure/websocket"
	"github.com/amenelu/mekina/internal/services"
	"github.com/amenelu/mekina/pkg/logger"

	redisClient "github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func main() {
	log := logger.New()
	log.Info("Starting mekina marketplace")

	cfg, err := config.Load()
	if err != nil {
		log.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	log.Info("Configuration loaded", "config", cfg.String())

	// Redis
	rdb := redisClient.NewClient(&redisClient.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	log.Info("Connected to Redis", "address", cfg.Redis.Address)

	// MySQL
	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		log.Error("Failed to connect to MySQL", "error", err)
		os.Exit(1)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			log.Error("Failed to close MySQL connection", "error", err)
		}
	}(db)

	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		log.Error("Failed to ping MySQL", "error", err)
		os.Exit(1)
	}
	log.Info("Connected to MySQL")

	// Repositories
	auctionRepo := mysqlstore.NewMySQLAuctionRepository(db)
	carRepo := mysqlstore.NewMySQLCarRepository(db)
	userRepo := mysqlstore.NewMySQLUserRepository(db)
	rentalRepo := mysqlstore.NewMySQLRentalRepository(db)
	requestRepo := mysqlstore.NewMySQLRequestRepository(db)
	notificationRepo := mysqlstore.NewMySQLNotificationRepository(db)
	tradeInRepo := mysqlstore.NewMySQLTradeInRepository(db)
	questionRepo := mysqlstore.NewMySQLQuestionRepository(db)

	// Redis based components
	stateCache := redisinfra.NewRedisStateCache(rdb)
	eventPublisher := redisinfra.NewRedisEventPublisher(rdb)
	eventSubscriber := redisinfra.NewRedisEventSubscriber(rdb, log)

	// Services
	notifier := services.NewNotificationService(notificationRepo, eventPublisher, log)
	ledger := services.NewAuctionLedger(
		auctionRepo,
		stateCache,
		eventPublisher,
		cfg.Bidding.MinIncrement,
		cfg.Bidding.ConflictRetries,
		cfg.Bidding.PerPage,
		log,
	)
	listings := services.NewListingService(carRepo, userRepo, rentalRepo, auctionRepo, ledger, notifier, log)
	requests := services.NewRequestService(requestRepo, userRepo, notifier, eventPublisher, log)
	closer := services.NewAuctionCloser(auctionRepo, stateCache, eventPublisher, notifier, log)
	tradeIns := services.NewTradeInService(tradeInRepo, notifier, log)
	questions := services.NewQuestionService(questionRepo, auctionRepo, notifier, log)

	// Realtime gateway: websocket connections fed by the redis event stream.
	connManager := wsinfra.NewConnectionManager(log)
	pushGateway := wsinfra.NewPushGateway(connManager)
	wsHandler := wsinfra.NewHandler(auctionRepo, userRepo, connManager, log)

	subCtx, subCancel := context.WithCancel(context.Background())
	defer subCancel()
	go func() {
		if err := eventSubscriber.SubscribeToEvents(subCtx, pushGateway.HandleEvent); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("Event subscription stopped", "error", err)
		}
	}()

	if err := closer.Start(subCtx); err != nil {
		log.Error("Failed to start auction closer", "error", err)
		os.Exit(1)
	}

	// HTTP API
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{
			echo.GET, echo.HEAD, echo.PUT, echo.PATCH,
			echo.POST, echo.DELETE, echo.OPTIONS,
		},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderAuthorization,
		},
	}))
	e.Use(apimiddleware.Identity(userRepo, log))

	handlers.NewAuctionHandler(ledger, log).Register(e)
	handlers.NewSellerHandler(listings, log).Register(e)
	handlers.NewAdminHandler(ledger, listings, log).Register(e)
	handlers.NewRequestHandler(requests, log).Register(e)
	handlers.NewRentalHandler(listings, log).Register(e)
	handlers.NewNotificationHandler(notifier, log).Register(e)
	handlers.NewTradeInHandler(tradeIns, log).Register(e)
	handlers.NewQuestionHandler(questions, log).Register(e)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":    "ok",
			"service":   "mekina",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		log.Info("Starting API server", "address", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("API server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Realtime listener runs on its own port so websocket traffic stays off
	// the API middleware chain.
	realtime := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Realtime.Port),
		Handler: wsHandler.Router(),
	}
	go func() {
		log.Info("Starting realtime server", "address", realtime.Addr)
		if err := realtime.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Realtime server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := closer.Stop(); err != nil {
		log.Error("Failed to stop auction closer", "error", err)
	}
	subCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("API server forced to shutdown", "error", err)
	}
	if err := realtime.Shutdown(shutdownCtx); err != nil {
		log.Error("Realtime server forced to shutdown", "error", err)
	}

	log.Info("Stopped")
}
