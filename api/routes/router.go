package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ducvu/wasteflow-backend/api/controllers"
	"github.com/ducvu/wasteflow-backend/api/middleware"
	"github.com/ducvu/wasteflow-backend/internal/depots"
	"github.com/ducvu/wasteflow-backend/internal/dispatch"
	"github.com/ducvu/wasteflow-backend/internal/notifications"
	"github.com/ducvu/wasteflow-backend/internal/orders"
	routesvc "github.com/ducvu/wasteflow-backend/internal/routes"
	"github.com/ducvu/wasteflow-backend/internal/vehicles"
	"github.com/ducvu/wasteflow-backend/pkg/config"
	"github.com/ducvu/wasteflow-backend/pkg/db"
	"github.com/ducvu/wasteflow-backend/pkg/logger"
	"github.com/ducvu/wasteflow-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	ordersService orders.Service,
	vehiclesService vehicles.Service,
	depotsService depots.Service,
	dispatchService dispatch.Service,
	routesService routesvc.Service,
	notificationsService notifications.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
		middleware.Identity(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/orders", func(r chi.Router) {
			r.With(middleware.RequireUser(logg)).Post("/", controllers.CreateOrder(ordersService, logg))
			r.With(middleware.RequireUser(logg)).Get("/mine", controllers.ListMyOrders(ordersService, logg))
			r.Get("/", controllers.ListOrdersByStatus(ordersService, logg))
			r.Get("/{orderId}", controllers.GetOrder(ordersService, logg))
			r.Post("/{orderId}/cancel", controllers.CancelOrder(ordersService, logg))
			r.Post("/{orderId}/complete", controllers.CompleteOrder(ordersService, logg))
		})

		r.Route("/vehicles", func(r chi.Router) {
			r.Post("/", controllers.CreateVehicle(vehiclesService, logg))
			r.Get("/", controllers.ListVehicles(vehiclesService, logg))
			r.Get("/{vehicleId}", controllers.GetVehicle(vehiclesService, logg))
			r.Patch("/{vehicleId}", controllers.UpdateVehicle(vehiclesService, logg))
			r.Get("/{vehicleId}/route", controllers.GetVehicleRoute(routesService, logg))
		})

		r.Route("/depots", func(r chi.Router) {
			r.Post("/", controllers.CreateDepot(depotsService, logg))
			r.Get("/", controllers.ListDepots(depotsService, logg))
			r.Get("/{depotId}", controllers.GetDepot(depotsService, logg))
			r.Patch("/{depotId}", controllers.UpdateDepot(depotsService, logg))
			r.Delete("/{depotId}", controllers.DeleteDepot(depotsService, logg))
		})

		r.Route("/dispatches", func(r chi.Router) {
			r.Post("/rounds", controllers.TriggerDispatchRound(dispatchService, logg))
			r.Get("/", controllers.ListDispatches(dispatchService, logg))
			r.Get("/active", controllers.GetActiveDispatch(dispatchService, logg))
			r.Get("/{dispatchId}", controllers.GetDispatch(dispatchService, logg))
			r.Get("/{dispatchId}/routes", controllers.ListRoutesByDispatch(routesService, logg))
		})

		r.Route("/routes", func(r chi.Router) {
			r.Get("/{routeId}", controllers.GetRoute(routesService, logg))
			r.Post("/{routeId}/complete", controllers.CompleteRoute(routesService, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Use(middleware.RequireUser(logg))
			r.Get("/", controllers.ListNotifications(notificationsService, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(notificationsService, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(notificationsService, logg))
		})
	})

	return r
}
