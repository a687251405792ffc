package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	config "github.com/avatarctic/caller-crm/configs"
	"github.com/avatarctic/caller-crm/internal/application/query"
	"github.com/avatarctic/caller-crm/internal/application/services"
	"github.com/avatarctic/caller-crm/internal/core/ports"
	"github.com/avatarctic/caller-crm/internal/infrastructure/crmapi"
	"github.com/avatarctic/caller-crm/internal/infrastructure/health"
	"github.com/avatarctic/caller-crm/internal/infrastructure/httpserver"
	"github.com/avatarctic/caller-crm/internal/infrastructure/redis"
	"github.com/avatarctic/caller-crm/internal/infrastructure/repositories"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Setup logger
	logger := logrus.New()
	if cfg.Log.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(level)
	}

	logger.WithField("vendor_id", cfg.CRM.VendorID).Info("Starting caller CRM dashboard...")

	httpClient := &http.Client{Timeout: cfg.CRM.Timeout}
	crmClient, err := crmapi.NewClient(crmapi.Config{
		BaseURL:           cfg.CRM.BaseURL,
		Timeout:           cfg.CRM.Timeout,
		RequestsPerSecond: cfg.CRM.RequestsPerSecond,
	}, httpClient, logger)
	if err != nil {
		logger.Fatal("Failed to initialize CRM client:", err)
	}

	hcSlice := []ports.HealthChecker{health.NewCRMHealthChecker(crmClient.BaseURL(), httpClient)}

	queryOpts := query.Options{
		StaleTime:    cfg.Query.StaleTime,
		FetchTimeout: cfg.Query.FetchTimeout,
		MaxEntries:   cfg.Query.MaxEntries,
		SnapshotTTL:  cfg.Query.SnapshotTTL,
		Logger:       logger,
		Metrics:      query.NewMetrics(prometheus.DefaultRegisterer),
	}

	// Redis is optional: it backs query snapshots and the inbound rate limiter
	var rateLimiterService ports.RateLimiterService
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewRedisClient(context.Background(), &cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to Redis:", err)
		}
		defer redisClient.Close()

		logger.Info("Connected to Redis successfully")

		queryOpts.Persister = redis.NewSnapshotStore(redisClient, "crmcache")
		rateLimiterService = services.NewRateLimiterService(
			repositories.NewRateLimitRedisRepository(redisClient),
			&services.RateLimiterConfig{
				DefaultRequestsPerMinute: cfg.RateLimit.DefaultRequestsPerMinute,
				BurstMultiplier:          cfg.RateLimit.BurstMultiplier,
				Window:                   cfg.RateLimit.Window,
				KeyPrefix:                cfg.RateLimit.KeyPrefix,
			},
			logger,
		)
		hcSlice = append(hcSlice, health.NewRedisHealthChecker(redisClient))
	}

	cache := query.New(queryOpts)
	defer cache.Close()

	contactService := services.NewContactService(crmClient, cache, cfg.CRM.VendorID, logger)
	callService := services.NewCallService(crmClient, cache, services.CallServiceConfig{
		VendorID:      cfg.CRM.VendorID,
		CurrentCallID: cfg.CRM.CurrentCallID,
		PollInterval:  cfg.CRM.LivePollInterval,
	}, logger)
	agentService := services.NewAgentService(crmClient, cache, cfg.CRM.VendorID, logger)
	dashboardService := services.NewDashboardService(contactService, callService, agentService)

	serverConfig := &httpserver.ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		TLSCertFile:    cfg.Server.TLSCertFile,
		TLSKeyFile:     cfg.Server.TLSKeyFile,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Environment:    cfg.Server.Environment,
		VendorID:       cfg.CRM.VendorID,
		TrustProxy:     cfg.Server.TrustProxy,
	}

	deps := httpserver.ServerDeps{
		ContactService:     contactService,
		CallService:        callService,
		AgentService:       agentService,
		DashboardService:   dashboardService,
		RateLimiterService: rateLimiterService,
		QueryCache:         cache,
		HealthCheckers:     hcSlice,
	}

	server := httpserver.NewServer(serverConfig, logger, deps)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server:", err)
		}
	}()

	logger.Infof("Server started on %s:%s", cfg.Server.Host, cfg.Server.Port)

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Stop live-call pollers before draining connections
	cache.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}
