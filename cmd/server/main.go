package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sf-weekly-pulse/internal/digest/config"
	delivery "sf-weekly-pulse/internal/digest/delivery/http"
	_ "sf-weekly-pulse/internal/digest/docs"
	"sf-weekly-pulse/internal/digest/repository"
	"sf-weekly-pulse/internal/digest/service"
	"sf-weekly-pulse/pkg/cache"
	"sf-weekly-pulse/pkg/logger"
	"sf-weekly-pulse/pkg/postgres"
	"sf-weekly-pulse/pkg/redis"
	"sf-weekly-pulse/pkg/telegram"
	"sf-weekly-pulse/pkg/utils"

	"github.com/labstack/echo/v4"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	swagger "github.com/swaggo/echo-swagger"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the weekly pulse service",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting Weekly Pulse Service", logger.Field("name", cfg.App.Name))

	postgresCfg := postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}
	db, err := postgres.NewDB(postgresCfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize database", logger.ErrorField(err))
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		defer sqlDB.Close()
	}

	// The social post cache degrades to an in-process store when Redis is
	// not configured.
	var cacheStore cache.Store
	if cfg.Redis.Host != "" {
		redisCfg := redis.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		}
		redisClient, err := redis.NewClient(redisCfg)
		if err != nil {
			appLogger.Fatal("Failed to initialize Redis", logger.ErrorField(err))
		}
		defer redisClient.Close()
		cacheStore = cache.NewRedisStore(redisClient.Client)
	} else {
		appLogger.Warn("Redis not configured, using in-memory cache")
		cacheStore = cache.NewMemoryStore(cfg.Twitter.CacheTTL, time.Hour)
	}

	notifier := telegram.NewNoopNotifier()
	if cfg.Telegram.BotToken != "" {
		notifier, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			appLogger.Fatal("Failed to initialize Telegram client", logger.ErrorField(err))
		}
	}

	// Initialize repositories
	newsRepo := repository.NewWeeklyNewsRepository(db.DB)
	eventRepo := repository.NewTimelineEventRepository(db.DB)
	voteRepo := repository.NewUserVoteRepository(db.DB)
	newsAPIRepo := repository.NewNewsAPIRepository(cfg, appLogger)
	rssRepo := repository.NewRSSRepository(cfg, appLogger)
	twitterRepo := repository.NewTwitterRepository(cfg, appLogger)
	aiRepo, err := repository.NewAIRepository(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize AI provider", logger.ErrorField(err))
	}

	// Initialize services
	fetcher := service.NewNewsFetcher(newsAPIRepo, rssRepo, appLogger)
	narrativeSvc := service.NewNarrativeService(cfg, aiRepo, appLogger)
	aggregatorSvc := service.NewAggregatorService(cfg, fetcher, narrativeSvc, newsRepo, notifier, appLogger)
	socialSvc := service.NewSocialService(cfg, twitterRepo, narrativeSvc, eventRepo, cacheStore, appLogger)
	voteSvc := service.NewVoteService(eventRepo, voteRepo, appLogger)
	chatSvc := service.NewChatService(aiRepo, newsRepo, eventRepo, appLogger)

	// Scheduled weekly runs
	var scheduler *cron.Cron
	if cfg.Scheduler.Enabled {
		scheduler = cron.New()
		_, err := scheduler.AddFunc(cfg.Scheduler.CronSpec, func() {
			utils.GoSafe(func() {
				if _, err := aggregatorSvc.RunWeekly(ctx, nil); err != nil {
					appLogger.Error("Scheduled weekly aggregation failed", logger.ErrorField(err))
				}
				if _, err := socialSvc.ProcessWeeklyTopics(ctx, cfg.Aggregator.Topics); err != nil {
					appLogger.Error("Scheduled topic processing failed", logger.ErrorField(err))
				}
			})
		})
		if err != nil {
			appLogger.Fatal("Invalid cron spec", logger.ErrorField(err))
		}
		scheduler.Start()
		appLogger.Info("Scheduler started", logger.StringField("spec", cfg.Scheduler.CronSpec))
	}

	// Initialize Echo server
	e := echo.New()
	e.HideBanner = true

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api := e.Group("/api")
	delivery.NewDigestHandler(newsRepo, appLogger).RegisterRoutes(api.Group("/news"))
	delivery.NewEventHandler(eventRepo, voteSvc, appLogger).RegisterRoutes(api.Group("/events"))
	delivery.NewChatHandler(chatSvc, appLogger).RegisterRoutes(api.Group("/chat"))
	delivery.NewTriggerHandler(cfg, aggregatorSvc, socialSvc, appLogger).RegisterRoutes(api.Group("/trigger"))

	e.GET("/swagger/*", swagger.WrapHandler)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.Field("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop()
		}
	}()

	<-ctx.Done()

	appLogger.Info("Shutting down server...")

	if scheduler != nil {
		scheduler.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatal("Server forced to shutdown", logger.ErrorField(err))
	}

	appLogger.Info("Server exiting")
}

// @title SF Weekly Pulse API
// @version 1.0
// @description Weekly San Francisco news digests, social narratives and community voting.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	rootCmd := &cobra.Command{Use: "server"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing server CLI: %s\n", err)
		os.Exit(1)
	}
}
