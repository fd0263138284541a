package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mtaanigas/fulfillment-backend/api/controllers"
	billingcontrollers "github.com/mtaanigas/fulfillment-backend/api/controllers/billing"
	cartcontrollers "github.com/mtaanigas/fulfillment-backend/api/controllers/cart"
	ordercontrollers "github.com/mtaanigas/fulfillment-backend/api/controllers/orders"
	"github.com/mtaanigas/fulfillment-backend/api/middleware"
	"github.com/mtaanigas/fulfillment-backend/internal/cart"
	"github.com/mtaanigas/fulfillment-backend/internal/orders"
	"github.com/mtaanigas/fulfillment-backend/internal/paymentmethods"
	"github.com/mtaanigas/fulfillment-backend/internal/payments"
	products "github.com/mtaanigas/fulfillment-backend/internal/products"
	"github.com/mtaanigas/fulfillment-backend/pkg/config"
	"github.com/mtaanigas/fulfillment-backend/pkg/db"
	"github.com/mtaanigas/fulfillment-backend/pkg/enums"
	"github.com/mtaanigas/fulfillment-backend/pkg/logger"
	"github.com/mtaanigas/fulfillment-backend/pkg/redis"
)

// Cache is the Redis surface the HTTP layer depends on.
type Cache interface {
	redis.IdempotencyStore
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
	Ping(ctx context.Context) error
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	cache Cache,
	metricsHandler http.Handler,
	productService products.Service,
	cartService cart.Service,
	ordersSvc orders.Service,
	paymentMethodService paymentmethods.Service,
	paymentService payments.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	claimPolicy := middleware.NewRateLimitPolicy("claim", cfg.RateLimit.ClaimWindow, cfg.RateLimit.ClaimLimit)
	verifyPolicy := middleware.NewRateLimitPolicy("verify", cfg.RateLimit.VerifyWindow, cfg.RateLimit.VerifyLimit)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, cache))
	})
	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(productService, logg))
			r.Get("/{productId}", controllers.ProductDetail(productService, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Use(middleware.Idempotency(cache, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, enums.UserRoleClient))

				r.Route("/orders", func(r chi.Router) {
					r.Post("/", ordercontrollers.Create(ordersSvc, logg))
					r.Get("/", ordercontrollers.List(ordersSvc, logg))
					r.Get("/status/counts", ordercontrollers.StatusCounts(ordersSvc, logg))
					r.Get("/stats", ordercontrollers.Stats(ordersSvc, logg))
					r.Get("/{orderId}", ordercontrollers.Detail(ordersSvc, logg))
					r.Patch("/{orderId}/cancel", ordercontrollers.Cancel(ordersSvc, logg))
				})

				r.Route("/cart", func(r chi.Router) {
					r.Get("/", cartcontrollers.CartFetch(cartService, logg))
					r.Delete("/", cartcontrollers.CartClear(cartService, logg))
					r.Post("/items", cartcontrollers.CartAddItem(cartService, logg))
					r.Patch("/items/{productId}", cartcontrollers.CartUpdateItem(cartService, logg))
					r.Delete("/items/{productId}", cartcontrollers.CartRemoveItem(cartService, logg))
				})

				r.Route("/payment-methods", func(r chi.Router) {
					r.Get("/", billingcontrollers.PaymentMethodList(paymentMethodService, logg))
					r.Get("/default", billingcontrollers.PaymentMethodDefault(paymentMethodService, logg))
					r.Post("/mpesa", billingcontrollers.PaymentMethodAddMpesa(paymentMethodService, logg))
					r.Post("/card", billingcontrollers.PaymentMethodAddCard(paymentMethodService, logg))
					r.Patch("/{methodId}/default", billingcontrollers.PaymentMethodSetDefault(paymentMethodService, logg))
					r.Delete("/{methodId}", billingcontrollers.PaymentMethodDelete(paymentMethodService, logg))
				})

				r.Route("/payments", func(r chi.Router) {
					r.Post("/initiate", billingcontrollers.PaymentInitiate(paymentService, logg))
					r.With(middleware.RateLimit(verifyPolicy, cache, logg)).
						Post("/verify-code", billingcontrollers.PaymentVerifyCode(paymentService, logg))
					r.Get("/history", billingcontrollers.PaymentHistory(paymentService, logg))
					r.Get("/status/{orderId}", billingcontrollers.PaymentStatus(paymentService, logg))
				})
			})

			r.Route("/agent-orders", func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, enums.UserRoleDealer))
				r.Get("/available", ordercontrollers.AgentAvailable(ordersSvc, logg))
				r.Get("/my-orders", ordercontrollers.AgentMyOrders(ordersSvc, logg))
				r.Get("/{orderId}", ordercontrollers.AgentDetail(ordersSvc, logg))
				r.With(middleware.RateLimit(claimPolicy, cache, logg)).
					Post("/{orderId}/accept", ordercontrollers.AgentAccept(ordersSvc, logg))
				r.Patch("/{orderId}/status", ordercontrollers.AgentUpdateStatus(ordersSvc, logg))
			})

			r.Route("/admin/payments", func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, enums.UserRoleAdmin))
				r.Get("/pending", billingcontrollers.AdminPendingPayments(paymentService, logg))
				r.Post("/{paymentId}/confirm", billingcontrollers.AdminConfirmPayment(paymentService, logg))
				r.Post("/{paymentId}/reject", billingcontrollers.AdminRejectPayment(paymentService, logg))
				r.Post("/{paymentId}/refund", billingcontrollers.AdminRefundPayment(paymentService, logg))
			})
		})
	})

	return r
}
