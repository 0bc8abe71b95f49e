package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/HSouheill/skillnera_mlm/config"
	"github.com/HSouheill/skillnera_mlm/controllers"
	"github.com/HSouheill/skillnera_mlm/middleware"
	"github.com/HSouheill/skillnera_mlm/repositories"
	"github.com/HSouheill/skillnera_mlm/routes"
	"github.com/HSouheill/skillnera_mlm/services"
	"github.com/HSouheill/skillnera_mlm/websocket"
)

// CustomValidator is a custom validator for Echo
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates the request body
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func main() {
	// Load .env file
	envErr := godotenv.Load()

	cfg := config.Load()
	log := config.NewLogger("skillnera-mlm", cfg.LogLevel)
	if envErr != nil {
		log.Debug(".env file not found, using process environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := config.ConnectDB(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to MongoDB")
	}
	db := client.Database(cfg.DBName)

	redisClient := config.ConnectRedis(cfg, log)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := services.NewMetrics(registry)
	httpMetrics := middleware.NewHTTPMetrics(registry)

	// Create WebSocket hub
	wsHub := websocket.NewHub(log.WithField("component", "websocket"), middleware.NewCORSConfig(cfg.CORSOrigins).AllowOrigins)
	go wsHub.Run(ctx)

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	settingsRepo := repositories.NewSettingsRepository(db)
	commissionRepo := repositories.NewCommissionRepository(db)
	orderRepo := repositories.NewOrderRepository(db)

	// Initialize services
	secret := []byte(cfg.JWTSecret)
	settingsService := services.NewSettingsService(settingsRepo)
	engine := services.NewCommissionEngine(settingsService, userRepo, commissionRepo, wsHub, metrics, log.WithField("component", "engine"))
	reportService := services.NewCommissionReportService(commissionRepo, log)
	treeCache := services.NewTreeCache(redisClient, cfg.TreeCacheTTL, metrics, log)
	treeService := services.NewReferralTreeService(userRepo, reportService, treeCache, log)
	orderService := services.NewOrderService(orderRepo, engine, log.WithField("component", "orders"))
	referralService := services.NewReferralService(userRepo, userRepo, secret, cfg.ReferralPrefix, cfg.PublicBaseURL, log)

	// Create a new Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = &CustomValidator{validator: validator.New()}

	rateLimiter := middleware.NewRateLimiter()

	// Middleware
	e.Use(echoMiddleware.Recover())
	e.Use(middleware.RequestLogger(log, httpMetrics))
	e.Use(middleware.CORSWithConfig(middleware.NewCORSConfig(cfg.CORSOrigins)))
	e.Use(middleware.SecurityHeadersWithConfig(middleware.SecurityConfig{
		AllowedDomains: cfg.CORSOrigins,
	}))
	e.Use(rateLimiter.RateLimit())
	e.Use(middleware.CaptureReferral(secret, cfg.ReferralCookieTTL, log))

	e.Match([]string{"GET", "HEAD"}, "/health", func(c echo.Context) error {
		status := map[string]string{
			"status":   "healthy",
			"database": "connected",
			"cache":    "disabled",
		}
		pingCtx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx, nil); err != nil {
			status["status"] = "degraded"
			status["database"] = "unreachable"
		}
		if redisClient != nil {
			status["cache"] = "connected"
			if err := redisClient.Ping(pingCtx).Err(); err != nil {
				status["cache"] = "unreachable"
			}
		}
		return c.JSON(http.StatusOK, status)
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	routes.SetupRoutes(e, middleware.JWTMiddleware(secret, log), routes.Controllers{
		MLM:      controllers.NewMLMController(reportService, settingsService, treeService, wsHub, log),
		Order:    controllers.NewOrderController(orderService, log),
		Referral: controllers.NewReferralController(referralService, log),
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("http shutdown failed")
	}
	if redisClient != nil {
		redisClient.Close()
	}
	if err := client.Disconnect(shutdownCtx); err != nil {
		log.WithError(err).Error("mongo disconnect failed")
	}
}
