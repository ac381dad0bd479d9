package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"storefront-be/internal/auth"
	"storefront-be/internal/cart"
	"storefront-be/internal/checkout"
	"storefront-be/internal/config"
	"storefront-be/internal/db"
	"storefront-be/internal/logger"
	"storefront-be/internal/metrics"
	"storefront-be/internal/middleware"
	"storefront-be/internal/order"
	"storefront-be/internal/payment"
	"storefront-be/internal/payment/webhook"
	"storefront-be/internal/product"
	"storefront-be/internal/server"
	"storefront-be/internal/user"

	"go.uber.org/zap"
)

// Swapped out in tests.
var (
	initDBFunc      = db.InitDB
	startServerFunc = func(s *server.Server) error { return s.Start() }
)

func main() {
	if err := run(); err != nil {
		logger.L().Fatal("server exited", zap.Error(err))
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := logger.Init(cfg.App); err != nil {
		return err
	}
	defer logger.Sync()

	database := initDBFunc(cfg.DB)
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg.App, newServer(ctx, cfg, database), logger.L())

	errCh := make(chan error, 1)
	go func() { errCh <- startServerFunc(srv) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newServer wires repositories, services and handlers into the HTTP router.
// Background work started here stops when ctx is done.
func newServer(ctx context.Context, cfg *config.Config, database *sql.DB) http.Handler {
	m := metrics.New()
	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)

	userSvc := user.NewService(user.NewRepository(database), tokens)
	productSvc := product.NewService(product.NewRepository(database))
	cartSvc := cart.NewService(cart.NewRepository(database), productSvc)

	checkoutRepo := checkout.NewRepository(database)
	checkoutSvc := checkout.NewService(checkoutRepo, cartSvc, productSvc, cfg.Checkout.CartPolicy, m)
	orderSvc := order.NewService(order.NewRepository(database, checkoutRepo), m)

	paymentRepo := payment.NewRepository(database)
	paymentSvc := payment.NewService(
		payment.NewFawaterakGateway(cfg.Fawaterak),
		checkoutSvc,
		orderSvc,
		userSvc,
		cartSvc,
		cfg.Fawaterak,
		cfg.Checkout.CartPolicy,
	)

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(cfg.App.InternalKey)
		go limiter.Cleanup(ctx)
	}

	return server.NewRouter(server.Handlers{
		User:     user.NewHandler(userSvc),
		Product:  product.NewHandler(productSvc),
		Cart:     cart.NewHandler(cartSvc),
		Checkout: checkout.NewHandler(checkoutSvc),
		Order:    order.NewHandler(orderSvc),
		Payment:  payment.NewHandler(paymentSvc),
		Webhook: webhook.NewWebhookHandler(
			paymentSvc,
			paymentRepo,
			webhook.NewVerifier(cfg.Fawaterak.VendorKey),
			m,
		),
	}, server.RouterConfig{
		Tokens:     tokens,
		Limiter:    limiter,
		Metrics:    m,
		DB:         database,
		CORSOrigin: cfg.App.CORSOrigin,
	})
}
