package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/desobsesor/simple-payment-web/internal/identity"
)

type RouterConfig struct {
	RequestTimeout time.Duration
	RateLimit      rate.Limit
	RateBurst      int
}

// NewRouter wires every storefront route. The product listing is public;
// cart and checkout require a bearer token.
func NewRouter(
	products *ProductHandler,
	carts *CartHandler,
	checkouts *CheckoutHandler,
	verifier *identity.Verifier,
	logger *zap.Logger,
	cfg RouterConfig,
) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(otelhttp.NewMiddleware("storefront"))
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	if cfg.RateLimit > 0 {
		r.Use(RateLimitMiddleware(rate.NewLimiter(cfg.RateLimit, cfg.RateBurst)))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", products.List)
		r.Get("/products/{product_id}", products.Get)

		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(verifier, logger))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", carts.GetCart)
				r.Delete("/", carts.ClearCart)
				r.Post("/items", carts.AddItem)
				r.Put("/items/{product_id}", carts.UpdateQuantity)
				r.Delete("/items/{product_id}", carts.RemoveItem)
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Post("/", checkouts.Open)
				r.Get("/", checkouts.View)
				r.Delete("/", checkouts.Close)
				r.Post("/card", checkouts.SubmitCard)
				r.Post("/saved-method", checkouts.PayWithSavedMethod)
				r.Put("/method/{method_id}", checkouts.SelectMethod)
				r.Post("/new-card", checkouts.AddNewCard)
			})
		})
	})

	return r
}
