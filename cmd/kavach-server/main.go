package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/kavachhq/kavach-backend/internal/alerts"
	"github.com/kavachhq/kavach-backend/internal/api"
	"github.com/kavachhq/kavach-backend/internal/config"
	"github.com/kavachhq/kavach-backend/internal/explain"
	"github.com/kavachhq/kavach-backend/internal/geocode"
	"github.com/kavachhq/kavach-backend/internal/logging"
	"github.com/kavachhq/kavach-backend/internal/monitor"
	"github.com/kavachhq/kavach-backend/internal/news"
	"github.com/kavachhq/kavach-backend/internal/notify"
	"github.com/kavachhq/kavach-backend/internal/observability"
	"github.com/kavachhq/kavach-backend/internal/otp"
	"github.com/kavachhq/kavach-backend/internal/pois"
	"github.com/kavachhq/kavach-backend/internal/terrain"
	"github.com/kavachhq/kavach-backend/internal/weather"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("Server starting", "host", cfg.Server.Host, "port", cfg.Server.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Notification channels stay nil when unconfigured; the dispatcher
	// skips nil channels instead of erroring per alert.
	var emailSender notify.EmailSender
	if cfg.SMTPConfigured() {
		emailSender = notify.NewMailer(cfg.SMTP)
		slog.Info("email channel enabled", "host", cfg.SMTP.Host)
	} else {
		slog.Warn("email channel disabled, SMTP not configured")
	}

	var smsSender notify.SMSSender
	if cfg.SNSConfigured() {
		sns, err := notify.NewSNSSender(ctx, cfg.SNS)
		if err != nil {
			slog.Error("sms channel unavailable", "error", err)
		} else {
			smsSender = sns
			slog.Info("sms channel enabled", "region", cfg.SNS.Region)
		}
	} else {
		slog.Warn("sms channel disabled, SNS not configured")
	}

	metrics := observability.NewMetrics()

	store := alerts.NewSettingsStore()
	history := alerts.NewHistory()
	broadcaster := alerts.NewBroadcaster()
	dispatcher := alerts.NewDispatcher(emailSender, smsSender, metrics)
	evaluator := alerts.NewEvaluator(store, history, dispatcher, broadcaster, metrics, nil)
	otpService := otp.NewService(smsSender, metrics, nil)

	terrainClient := terrain.NewClient(cfg.External.ElevationURL)
	weatherClient := weather.NewClient(cfg.External.ForecastURL)
	poisClient := pois.NewClient(cfg.External.OverpassURL)
	geocodeClient := geocode.NewClient(cfg.External.NominatimURL)
	newsClient := news.NewClient(cfg.External.GNewsURL, cfg.External.GNewsAPIKey)
	explainService := explain.NewService(nil, cfg.Explain, nil)

	var mgr *monitor.Manager
	if cfg.Monitor.Enabled {
		mgr = monitor.NewManager(cfg.Monitor, store, evaluator, weatherClient, terrainClient, metrics)
		mgr.Start(ctx)
	} else {
		slog.Info("background monitoring disabled")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false, // Set to false when using wildcard origins
	}))
	router.Use(api.RateLimitMiddleware(cfg.Server.RateLimit))

	handler := api.NewHandler(store, history, evaluator, broadcaster, otpService, terrainClient, weatherClient, poisClient, geocodeClient, newsClient, explainService)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	cancel()
	if mgr != nil {
		mgr.Stop()
	}
	broadcaster.Close() // Close all alert streams gracefully

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
}
