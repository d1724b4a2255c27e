package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"academy-svc/cache"
	"academy-svc/config"
	"academy-svc/database"
	"academy-svc/gateway"
	"academy-svc/handlers"
	"academy-svc/kafka"
	"academy-svc/lifecycle"
	"academy-svc/middleware"
	"academy-svc/notifier"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	// Initialize database
	db, err := database.InitDB(cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// Initialize Redis cache
	redisClient, err := cache.InitRedis(cfg.Redis, logger)
	if err != nil {
		logger.Fatal("Failed to initialize Redis", zap.Error(err))
	}
	defer redisClient.Close()

	// Initialize Kafka producer
	producer, err := kafka.InitProducer(cfg.Kafka, logger)
	if err != nil {
		logger.Fatal("Failed to initialize Kafka producer", zap.Error(err))
	}
	defer producer.Close()

	// Initialize Kafka consumer
	consumer, err := kafka.InitConsumer(cfg.Kafka, logger)
	if err != nil {
		logger.Fatal("Failed to initialize Kafka consumer", zap.Error(err))
	}
	defer consumer.Close()

	// Initialize OpenTelemetry
	shutdownTracing, err := middleware.InitTracing("academy-svc")
	if err != nil {
		logger.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer shutdownTracing()

	// Stores and services
	orderStore := database.NewOrderStore(db, logger)
	productStore := database.NewProductStore(db, logger)
	blogStore := database.NewBlogStore(db, logger)
	lifecycleSvc := lifecycle.NewService(orderStore, producer, logger)
	gatewayAdapter := gateway.New(cfg.Gateway, cfg.PublicBaseURL, orderStore, logger)
	mailer := notifier.New(cfg.SMTP, logger)

	// Start notification consumer in background
	consumerCtx, cancelConsumer := context.WithCancel(context.Background())
	defer cancelConsumer()
	go func() {
		if err := kafka.StartConsumer(consumerCtx, consumer, cfg.Kafka.Topic, mailer, logger); err != nil && consumerCtx.Err() == nil {
			logger.Error("Kafka consumer error", zap.Error(err))
		}
	}()

	// Setup REST API with Gin
	router := gin.New()
	router.Use(gin.Recovery())
	// OpenTelemetry middleware must be first to extract trace context
	router.Use(otelgin.Middleware("academy-svc"))
	router.Use(middleware.LoggerMiddleware(logger))
	router.Use(middleware.MetricsMiddleware())

	// Health check endpoint
	router.GET("/health", handlers.HealthCheck)

	// Metrics endpoint
	router.GET("/metrics", middleware.PrometheusHandler())

	// Storefront endpoints
	orderHandler := handlers.NewOrderHandler(lifecycleSvc, orderStore, logger)
	paymentHandler := handlers.NewPaymentHandler(gatewayAdapter, lifecycleSvc, cfg.FrontendBaseURL, logger)
	productHandler := handlers.NewProductHandler(productStore, redisClient, logger)
	blogHandler := handlers.NewBlogHandler(blogStore, logger)
	authHandler := handlers.NewAuthHandler(cfg.Admin, logger)
	statsHandler := handlers.NewStatsHandler(orderStore, productStore, blogStore, logger)

	router.GET("/products", productHandler.GetProducts)
	router.GET("/products/:id", productHandler.GetProduct)
	router.GET("/blogs", blogHandler.ListPosts)
	router.GET("/blogs/:slug", blogHandler.GetPost)

	authorized := middleware.CookieAuth(cfg.Admin.JWTSecret)

	router.POST("/orders", orderHandler.CreateOrder)
	router.GET("/orders", authorized, orderHandler.ListOrders)
	router.PATCH("/orders/:id", authorized, orderHandler.UpdateOrder)
	router.DELETE("/orders/:id", authorized, orderHandler.DeleteOrder)

	router.POST("/payment/init", paymentHandler.InitPayment)
	// Provider callbacks; always answered with a redirect.
	router.POST("/payment/success", paymentHandler.Success)
	router.POST("/payment/fail", paymentHandler.Fail)
	router.POST("/payment/cancel", paymentHandler.Cancel)

	router.POST("/admin/login", authHandler.Login)
	router.POST("/admin/logout", authHandler.Logout)

	// Admin back office, JWT-cookie gated
	admin := router.Group("/admin")
	admin.Use(authorized)
	{
		admin.POST("/products", productHandler.CreateProduct)
		admin.PUT("/products/:id", productHandler.UpdateProduct)
		admin.DELETE("/products/:id", productHandler.DeleteProduct)

		admin.POST("/blogs", blogHandler.CreatePost)
		admin.PUT("/blogs/:slug", blogHandler.UpdatePost)
		admin.DELETE("/blogs/:slug", blogHandler.DeletePost)

		admin.GET("/stats", statsHandler.GetStats)
	}

	// Start REST server
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start REST server", zap.Error(err))
		}
	}()

	logger.Info("Academy service started", zap.String("addr", cfg.HTTPAddr))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	cancelConsumer()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
