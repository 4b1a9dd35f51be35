package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"

	"firstlook/internal/bootstrap"
	"firstlook/internal/config"
	"firstlook/internal/handler"
	"firstlook/internal/interfaces"
	"firstlook/internal/logger"
	"firstlook/internal/messaging"
	"firstlook/internal/middleware"
	"firstlook/internal/payment"
	"firstlook/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:      cfg.LogLevel,
		Encoding:   cfg.LogEncoding,
		OutputPath: cfg.LogOutput,
		Service:    "firstlook-api",
		Env:        cfg.Env,
	})
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	zap.ReplaceGlobals(log)
	log.Info("Logger initialized", zap.String("logLevel", cfg.LogLevel), zap.String("env", cfg.Env))

	startCtx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	infra, err := bootstrap.Open(startCtx, cfg, log)
	if err != nil {
		log.Fatal("Failed to open infrastructure", zap.Error(err))
	}
	defer infra.Close()

	authClient, err := middleware.NewFirebaseAuthClient(startCtx, cfg.FirebaseProjectID, cfg.FirebaseCredentials)
	if err != nil {
		log.Fatal("Failed to create Firebase Auth client", zap.Error(err))
	}

	// The queue is optional; without it only synchronous generation works.
	var (
		publisher interfaces.GenerationTaskPublisher
		mqConn    *amqp.Connection
	)
	if cfg.RabbitMQURL != "" {
		mqConn, err = messaging.Connect(startCtx, cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay, log)
		if err != nil {
			log.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
		}
		defer mqConn.Close()
		ch, err := mqConn.Channel()
		if err != nil {
			log.Fatal("Failed to open RabbitMQ channel", zap.Error(err))
		}
		defer ch.Close()
		taskPublisher, err := messaging.NewTaskPublisher(ch, log)
		if err != nil {
			log.Fatal("Failed to create task publisher", zap.Error(err))
		}
		publisher = taskPublisher
	} else {
		log.Info("RABBITMQ_URL not set, queued generation is disabled")
	}

	// --- Services ---
	stripeProvider := payment.NewStripeProvider(payment.Config{
		SecretKey:     cfg.StripeSecretKey,
		WebhookSecret: cfg.StripeWebhookSecret,
		SuccessURL:    cfg.StripeSuccessURL,
		CancelURL:     cfg.StripeCancelURL,
	}, log)

	librarySvc := service.NewLibraryService(infra.Users, infra.Stories, log)
	balanceSvc := service.NewBalanceService(infra.Users, infra.Stories, stripeProvider, log)
	checkoutSvc := service.NewCheckoutService(infra.Users, stripeProvider, infra.Catalog, balanceSvc, log)
	analyticsSvc := service.NewAnalyticsService(infra.Stories, infra.Cache, cfg.AnalyticsTTL, log)
	maintenanceSvc := service.NewMaintenanceService(infra.Stories, infra.Catalog, infra.Cache, log)
	generationSvc, err := infra.GenerationService(cfg, publisher)
	if err != nil {
		log.Fatal("Failed to create generation service", zap.Error(err))
	}

	// --- HTTP ---
	if err := handler.RegisterValidators(); err != nil {
		log.Fatal("Failed to register validators", zap.Error(err))
	}

	gin.SetMode(gin.ReleaseMode)
	if !cfg.IsProduction() && cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.RedirectTrailingSlash = true
	router.Use(middleware.GinZapLogger(log))
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
		corsConfig.AllowCredentials = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", middleware.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{middleware.RequestIDHeader}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	p := ginprometheus.NewPrometheus("gin")

	router.GET("/health", handler.HealthCheck)
	router.HEAD("/health", handler.HealthCheck)

	unlockStore := middleware.NewRateLimitStore(infra.Redis, cfg.RateLimitWindow, cfg.UnlockRateLimit)
	checkoutStore := middleware.NewRateLimitStore(infra.Redis, cfg.RateLimitWindow, cfg.CheckoutRateLimit)

	apiHandler := handler.NewAPIHandler(handler.Deps{
		Library:     librarySvc,
		Checkout:    checkoutSvc,
		Balance:     balanceSvc,
		Analytics:   analyticsSvc,
		Maintenance: maintenanceSvc,
		Generation:  generationSvc,
	}, log)
	apiHandler.RegisterRoutes(router, handler.Middlewares{
		Auth:            middleware.FirebaseAuth(authClient, librarySvc, log),
		Admin:           middleware.RequireAdmin(log),
		UnlockLimiter:   middleware.UserRateLimiter("unlock", unlockStore, log),
		CheckoutLimiter: middleware.UserRateLimiter("checkout", checkoutStore, log),
	})

	// Registered after the routes so every route gets instrumented.
	p.Use(router)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
		// Synchronous generation can take minutes.
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.AITimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Starting HTTP server", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server listen error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exiting")
}
