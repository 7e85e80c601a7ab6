package api

import (
	"delivery-dispatch-service/internal/api/handlers"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Deps struct {
	Assigner handlers.RouteAssigner
	Orders   handlers.OrderLister
	Updater  handlers.OrderStatusUpdater
	Drivers  handlers.DriverViews
	Logger   *zap.Logger

	// Optional. Without a client, writes are not rate limited.
	Redis        *redis.Client
	RateLimitRPS int
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// Handlers stay unaware of concrete adapters.
func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	routeHandler := &handlers.RouteHandler{Assigner: d.Assigner}
	orderHandler := &handlers.OrderHandler{Orders: d.Orders, Updater: d.Updater}
	driverHandler := &handlers.DriverHandler{Drivers: d.Drivers}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(middleware.RealIP)
	r.Use(loggingMiddleware(logger.Named("http")))
	r.Use(middleware.Recoverer)

	r.NotFound(handlers.NotFound)
	r.MethodNotAllowed(handlers.MethodNotAllowed)

	r.Get("/health", handlers.Health)
	r.Get("/orders", orderHandler.List)
	r.Get("/drivers/{id}/route", driverHandler.CurrentRoute)
	r.Get("/drivers/{id}/history", driverHandler.History)

	r.Group(func(r chi.Router) {
		if d.Redis != nil && d.RateLimitRPS > 0 {
			r.Use(rateLimitMiddleware(d.Redis, d.RateLimitRPS, logger))
		}
		r.Post("/logistics/assign-route", routeHandler.Assign)
		r.Patch("/orders/{id}/status", orderHandler.UpdateStatus)
		r.Post("/drivers/{id}/incidents", driverHandler.ReportIncident)
	})

	return r
}
