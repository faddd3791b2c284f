package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/desobsesor/simple-payment-web/internal/cart"
	"github.com/desobsesor/simple-payment-web/internal/catalog"
	"github.com/desobsesor/simple-payment-web/internal/checkout"
	h "github.com/desobsesor/simple-payment-web/internal/http"
	"github.com/desobsesor/simple-payment-web/internal/identity"
	"github.com/desobsesor/simple-payment-web/internal/payment"
	"github.com/desobsesor/simple-payment-web/internal/paymentmethod"
)

type Config struct {
	HTTPPort        string
	ProductsAPIURL  string
	PaymentsAPIURL  string
	KafkaBrokers    []string
	JWTSecret       string
	RequestTimeout  time.Duration
	UpstreamTimeout time.Duration
	ShutdownTimeout time.Duration
	RateLimit       rate.Limit
	RateBurst       int
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		ProductsAPIURL:  getEnv("PRODUCTS_API_URL", "http://localhost:3001"),
		PaymentsAPIURL:  getEnv("PAYMENTS_API_URL", "http://localhost:3002"),
		KafkaBrokers:    strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
		JWTSecret:       getEnv("JWT_SECRET", "dev-secret"),
		RequestTimeout:  30 * time.Second,
		UpstreamTimeout: 5 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		RateLimit:       rate.Limit(100),
		RateBurst:       200,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	cfg := loadConfig()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	// Catalog: seed from the products API, then track stock updates.
	catalogStore := catalog.NewStore()
	productsClient := catalog.NewHTTPClient(cfg.ProductsAPIURL, cfg.UpstreamTimeout)

	seedCtx, cancelSeed := context.WithTimeout(context.Background(), cfg.UpstreamTimeout)
	products, err := productsClient.GetProducts(seedCtx)
	cancelSeed()
	if err != nil {
		logger.Warn("seeding catalog failed, starting empty", zap.Error(err))
	} else {
		catalogStore.Replace(products)
		logger.Info("catalog seeded", zap.Int("products", len(products)))
	}

	listenerCtx, stopListener := context.WithCancel(context.Background())
	stockListener := catalog.NewStockListener(catalogStore, logger, cfg.KafkaBrokers...)
	go stockListener.Run(listenerCtx)

	// Payments: simulated gateway in front of the transactions API.
	registrar := payment.NewHTTPRegistrar(cfg.PaymentsAPIURL, cfg.UpstreamTimeout)
	gateway := payment.NewSimulator(payment.NewRandomOutcomes(), registrar, payment.DefaultSimulatorConfig(), logger)
	methods := paymentmethod.NewHTTPProvider(cfg.PaymentsAPIURL, cfg.UpstreamTimeout)

	carts := cart.NewRegistry()
	checkouts := checkout.NewRegistry(func(intent checkout.Intent, userID string) *checkout.Machine {
		return checkout.NewMachine(checkout.Deps{
			Gateway:   gateway,
			Registrar: registrar,
			Methods:   methods,
			Selection: paymentmethod.NewSelectionStore(),
			Cart:      carts.For(userID),
			Logger:    logger,
		}, intent, userID, checkout.DefaultConfig(), nil)
	})

	verifier := identity.NewVerifier(cfg.JWTSecret)
	router := h.NewRouter(
		h.NewProductHandler(catalogStore),
		h.NewCartHandler(carts, catalogStore, logger),
		h.NewCheckoutHandler(checkouts, catalogStore, logger),
		verifier, logger,
		h.RouterConfig{
			RequestTimeout: cfg.RequestTimeout,
			RateLimit:      cfg.RateLimit,
			RateBurst:      cfg.RateBurst,
		},
	)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("storefront starting", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	stopListener()
	stockListener.Close()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}
