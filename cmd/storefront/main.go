package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/marketbay/storefront/internal/cache"
	"github.com/marketbay/storefront/internal/config"
	h "github.com/marketbay/storefront/internal/http"
	"github.com/marketbay/storefront/internal/notifier"
	"github.com/marketbay/storefront/internal/payment"
	"github.com/marketbay/storefront/internal/repository"
	"github.com/marketbay/storefront/internal/sequence"
	"github.com/marketbay/storefront/internal/service"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	connectCtx, connectCancel := context.WithTimeout(ctx, 15*time.Second)
	db, err := repository.ConnectMongoDB(connectCtx, repository.MongoConfig{
		URI:              cfg.MongoURI,
		Database:         cfg.MongoDatabase,
		ConnectTimeout:   cfg.MongoConnectTimeout,
		SelectionTimeout: cfg.MongoSelectionTimeout,
		MaxPoolSize:      cfg.MongoMaxPoolSize,
		MinPoolSize:      cfg.MongoMinPoolSize,
	})
	connectCancel()
	if err != nil {
		log.Fatalf("failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := db.Client().Disconnect(context.Background()); err != nil {
			log.Errorf("failed to disconnect from MongoDB: %v", err)
		}
	}()

	orderRepo := repository.NewMongoOrderRepository(db)
	productRepo := repository.NewMongoProductRepository(db)

	indexCtx, indexCancel := context.WithTimeout(ctx, 15*time.Second)
	if err := repository.EnsureOrderIndexes(indexCtx, db); err != nil {
		log.Warnf("failed to ensure order indexes: %v", err)
	}
	indexCancel()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()
	catalogCache := cache.NewRedisCatalogCache(redisClient)

	dispatcher := notifier.NewKafkaDispatcher(cfg.KafkaBrokers...)
	defer func() {
		if err := dispatcher.Close(); err != nil {
			log.Errorf("failed to close dispatcher: %v", err)
		}
	}()

	consumer := notifier.NewConsumer(
		&notifier.LogMailer{Log: log},
		notifier.TextRenderer{},
		cfg.OperatorEmail,
		log,
		cfg.KafkaBrokers...,
	)
	defer consumer.Close()
	go consumer.Run(ctx)

	allocator := sequence.NewMongoAllocator(db)
	verifier := payment.NewVerifier(cfg.PaymentSecret)

	checkoutService := service.NewCheckoutService(
		orderRepo, productRepo, allocator, verifier,
		dispatcher, catalogCache, cfg.OrderPrefix, log,
	)
	orderService := service.NewOrderService(orderRepo, dispatcher, log)
	stockService := service.NewStockService(productRepo)

	codec := h.NewTokenCodec(cfg.AuthSecret)
	orderHandler := h.NewOrderHandler(checkoutService, orderService, cfg.RequestTimeout)
	productHandler := h.NewProductHandler(stockService, catalogCache, cfg.RevalidateSecret, cfg.RequestTimeout)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(h.AuthMiddleware(codec))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/order", func(r chi.Router) {
		r.Post("/handler", orderHandler.HandleCheckout)
		r.Get("/me", orderHandler.MyOrders)
		r.Get("/{id}", orderHandler.GetOrder)
	})
	r.Route("/products", func(r chi.Router) {
		r.Post("/stock", productHandler.GetStock)
		r.Post("/revalidate", productHandler.Revalidate)
	})
	r.Post("/cart/reconcile", productHandler.Reconcile)
	r.Put("/admin/orders/{orderId}", orderHandler.UpdateStatus)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infof("storefront starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Info("server exited")
}
