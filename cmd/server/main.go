package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/lucidplay/crashgate/internal/config"
	"github.com/lucidplay/crashgate/internal/handler"
	"github.com/lucidplay/crashgate/internal/hub"
	"github.com/lucidplay/crashgate/internal/identity"
	"github.com/lucidplay/crashgate/internal/middleware"
	"github.com/lucidplay/crashgate/internal/pkg/logger"
	"github.com/lucidplay/crashgate/internal/repository"
	"github.com/lucidplay/crashgate/internal/service"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.Init(cfg.Log.Level)

	// 2. Initialize Persistence
	// Redis backs the identity token store and the shared history cache.
	var redisClient *repository.RedisClient
	if cfg.Redis.Addr != "" {
		redisClient, err = repository.NewRedisClient(cfg)
		if err == nil {
			logger.Info("connected to Redis", "addr", cfg.Redis.Addr)
		} else {
			logger.Error("failed to connect to Redis, falling back to static identities", "error", err)
			redisClient = nil
		}
	}

	// Wallet + round archive (Postgres > Memory)
	startingBalance := decimal.NewFromFloat(cfg.Game.StartingBalance)
	var ledger service.Ledger
	var roundRepo service.RoundRepo
	if cfg.Database.DSN != "" {
		if pgLedger, err := repository.NewGormLedger(cfg.Database.DSN, startingBalance); err == nil {
			ledger = pgLedger
			logger.Info("wallet ledger backed by PostgreSQL")
		} else {
			logger.Error("failed to open wallet ledger, falling back to memory", "error", err)
		}
		if db, err := repository.NewDB(cfg.Database.DSN); err == nil {
			roundRepo = repository.NewPostgresRoundRepo(db)
			logger.Info("round archive backed by PostgreSQL")
		} else {
			logger.Error("failed to open round archive, rounds will not be persisted", "error", err)
		}
	}
	if ledger == nil {
		ledger = service.NewMemoryLedger(startingBalance)
	}

	// Identity provider (Redis > static map > insecure dev mode)
	var provider identity.Provider
	switch {
	case redisClient != nil:
		provider = redisClient
	case cfg.Auth.RequireToken:
		provider = identity.NewStaticProvider(cfg.Auth.Tokens)
	default:
		logger.Warn("auth.require_token is false: any token is accepted as a user id")
		provider = identity.InsecureProvider{}
	}

	// 3. Initialize Core Services
	realtimeHub := hub.NewHub()
	book := service.NewTicketBook()

	var historySink service.HistorySink
	if redisClient != nil {
		historySink = redisClient
	}

	engine, err := service.NewEngine(service.EngineConfig{
		BettingWindowMs: cfg.Loop.BettingWindowMs,
		SettleDelayMs:   cfg.Loop.SettleDelayMs,
		TickIntervalMs:  cfg.Loop.TickIntervalMs,
		HistorySize:     cfg.Loop.HistorySize,
		RTP:             cfg.Game.RTP,
		GrowthRate:      cfg.Game.GrowthRate,
	}, book, ledger, realtimeHub, roundRepo, historySink)
	if err != nil {
		log.Fatalf("Failed to initialize game engine: %v", err)
	}

	commands := service.NewCommandProcessor(engine, book, ledger, realtimeHub,
		decimal.NewFromFloat(cfg.Game.MinBet), decimal.NewFromFloat(cfg.Game.MaxBet))

	limiters := middleware.NewLimiterStore(cfg.Rate.BetsPerSecond, cfg.Rate.Burst)

	// 4. Initialize Handlers
	gameHandler := handler.NewGameHandler(commands, engine)
	overrideHandler := handler.NewOverrideHandler(engine)
	wsHandler := handler.NewWSHandler(realtimeHub, provider,
		time.Duration(cfg.Hub.AuthTimeoutMs)*time.Millisecond, cfg.Hub.SendBuffer)

	// 5. Setup Router
	r := gin.Default()

	r.Use(middleware.ErrorHandler())
	r.Use(middleware.MetricsMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "crashgate"})
	})

	if cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	r.GET("/ws", wsHandler.Serve)

	v1 := r.Group("/v1")
	v1.Use(middleware.RateLimitMiddleware(limiters))
	{
		v1.POST("/bets", gameHandler.PlaceBet)
		v1.POST("/cashouts", gameHandler.Cashout)
		v1.GET("/state", gameHandler.State)
		v1.GET("/history", gameHandler.History)
	}

	admin := r.Group("/admin")
	admin.Use(middleware.AdminMiddleware(cfg.Auth.AdminKey))
	{
		admin.POST("/override", overrideHandler.Override)
	}

	// 6. Start the round timeline and the server with graceful shutdown
	engine.Start()

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		logger.Info("crashgate started", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server listen failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	engine.Stop()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	logger.Info("Server exiting")
}
