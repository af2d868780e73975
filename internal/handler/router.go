package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"orderdesk/internal/mw"
	"orderdesk/internal/service"
	"orderdesk/internal/storage"
)

type Services struct {
	Auth     *service.AuthService
	Coupons  *service.CouponService
	Orders   *service.OrderService
	Menu     *service.MenuService
	Stats    *service.StatsService
	Tracking *service.TrackingService
	Checkout *service.CheckoutService
	Sessions storage.KV
}

type RouterConfig struct {
	JWTSecret      string
	AllowedOrigins []string
	SessionTTL     time.Duration
}

func NewRouter(svc Services, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.QueryToken)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", idempotencyHeader},
		ExposedHeaders:   []string{"Authorization", cartCountHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/menu", ListMenuHandler(svc.Menu))
		r.Get("/menu/{id}", GetMenuItemHandler(svc.Menu))
		r.Post("/coupons/validate", ValidateCouponHandler(svc.Coupons))
		r.Post("/staff/login", StaffLoginHandler(svc.Auth))

		// Customer routes, keyed by the cart session cookie
		r.Group(func(r chi.Router) {
			r.Use(mw.CartSession(cfg.SessionTTL))

			r.Get("/cart", GetCartHandler(svc.Sessions, svc.Coupons))
			r.Delete("/cart", ClearCartHandler(svc.Sessions))
			r.Post("/cart/items", AddCartItemHandler(svc.Sessions, svc.Menu))
			r.Patch("/cart/items/{id}", UpdateCartItemHandler(svc.Sessions))
			r.Delete("/cart/items/{id}", RemoveCartItemHandler(svc.Sessions))

			r.Post("/orders", SubmitOrderHandler(svc.Sessions, svc.Checkout))
			r.Get("/orders/tracked", GetTrackedOrderHandler(svc.Tracking, svc.Orders))
			r.Delete("/orders/tracked", ForgetTrackedOrderHandler(svc.Tracking))
			r.Get("/orders/{id}", GetOrderHandler(svc.Orders))
			r.Get("/orders/{id}/events", OrderEventsHandler(svc.Orders))
		})

		// Staff routes
		r.Route("/admin", func(r chi.Router) {
			r.Use(mw.RequireRole(cfg.JWTSecret, service.RoleStaff))

			r.Get("/orders", ListOrdersHandler(svc.Orders))
			r.Get("/orders/events", NewOrdersEventsHandler(svc.Orders))
			r.Patch("/orders/{id}/status", UpdateOrderStatusHandler(svc.Orders))
			r.Delete("/orders/{id}", DeleteOrderHandler(svc.Orders))
			r.Get("/stats", StatsHandler(svc.Stats))

			r.Get("/coupons", ListCouponsHandler(svc.Coupons))
			r.Post("/coupons", CreateCouponHandler(svc.Coupons))
			r.Patch("/coupons/{id}", ToggleCouponHandler(svc.Coupons))
			r.Delete("/coupons/{id}", DeleteCouponHandler(svc.Coupons))

			r.Post("/menu", CreateMenuItemHandler(svc.Menu))
			r.Put("/menu/{id}", UpdateMenuItemHandler(svc.Menu))
			r.Delete("/menu/{id}", DeleteMenuItemHandler(svc.Menu))
		})
	})

	return r
}
