package server

import (
	"context"
	"net/http"
	"time"

	"storefront-be/internal/cart"
	"storefront-be/internal/checkout"
	"storefront-be/internal/logger"
	"storefront-be/internal/metrics"
	"storefront-be/internal/middleware"
	"storefront-be/internal/order"
	"storefront-be/internal/payment"
	"storefront-be/internal/payment/webhook"
	"storefront-be/internal/product"
	"storefront-be/internal/user"
	"storefront-be/internal/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type Handlers struct {
	User     *user.Handler
	Product  *product.Handler
	Cart     *cart.Handler
	Checkout *checkout.Handler
	Order    *order.Handler
	Payment  *payment.Handler
	Webhook  *webhook.Handler
}

// Pinger reports database reachability for /health.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type RouterConfig struct {
	Tokens     middleware.TokenParser
	Limiter    *middleware.RateLimiter
	Metrics    *metrics.Metrics
	DB         Pinger
	CORSOrigin string
}

func NewRouter(h Handlers, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(logger.RequestIDMiddleware)
	r.Use(middleware.LoggingMiddleware)
	r.Use(middleware.CORS(cfg.CORSOrigin))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Instrument)
	}

	// The limiter keys on the user id, so it runs after auth.
	limit := func(next http.Handler) http.Handler { return next }
	if cfg.Limiter != nil {
		limit = cfg.Limiter.Middleware
	}

	r.Get("/health", health(cfg.DB))
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		// Provider callbacks carry no user token.
		r.With(limit).Post("/payment/webhook_json", h.Webhook.PaymentWebhookHandler)
		r.With(limit).Post("/payment/fail_json", h.Webhook.PaymentWebhookHandler)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(cfg.Tokens))
			r.Use(limit)

			r.Route("/users", func(r chi.Router) {
				r.Post("/register", h.User.Register)
				r.Post("/login", h.User.Login)
				r.Post("/refresh-token", h.User.RefreshToken)
				r.With(middleware.RequireAuth).Get("/profile", h.User.Profile)
			})

			r.Route("/products", func(r chi.Router) {
				r.Get("/", h.Product.List)
				r.Get("/best-seller", h.Product.BestSellers)
				r.Get("/new-arrivals", h.Product.NewArrivals)
				r.Get("/{id}", h.Product.Get)
				r.Get("/{id}/similar", h.Product.Similar)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin)
					r.Post("/", h.Product.Create)
					r.Put("/{id}", h.Product.Update)
					r.Delete("/{id}", h.Product.Delete)
				})
			})

			r.Route("/cart", func(r chi.Router) {
				r.Use(middleware.GuestMiddleware)
				r.Get("/", h.Cart.Get)
				r.Post("/", h.Cart.Add)
				r.Put("/", h.Cart.Update)
				r.Delete("/", h.Cart.Remove)
				r.With(middleware.RequireAuth).Put("/merge", h.Cart.Merge)
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Post("/", h.Checkout.Create)
				r.Get("/", h.Checkout.List)
				r.Get("/{id}", h.Checkout.Get)
				r.Post("/{id}/cancel", h.Checkout.Cancel)
			})

			r.Route("/payment", func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Get("/methods", h.Payment.PaymentMethods)
				r.Post("/execute", h.Payment.Execute)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Get("/my-orders", h.Order.MyOrders)
				r.Get("/{orderId}", h.Order.Get)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Get("/users", h.User.ListUsers)
				r.Post("/users", h.User.AddUser)
				r.Put("/users/{id}", h.User.UpdateUser)
				r.Delete("/users/{id}", h.User.DeleteUser)
				r.Get("/orders", h.Order.List)
				r.Put("/orders/{orderId}", h.Order.UpdateStatus)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteJSONError(w, "route not found", http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteJSONError(w, "method not allowed", http.StatusMethodNotAllowed)
	})

	return r
}

func health(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{"server": "OK", "database": "OK"}
		code := http.StatusOK

		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				status["database"] = "unreachable"
				code = http.StatusServiceUnavailable
			}
		}
		utils.WriteJSON(w, code, status)
	}
}
