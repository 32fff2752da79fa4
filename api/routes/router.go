package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/canteenhub/canteen-backend/api/controllers"
	"github.com/canteenhub/canteen-backend/api/middleware"
	accountsvc "github.com/canteenhub/canteen-backend/internal/accounts"
	dishsvc "github.com/canteenhub/canteen-backend/internal/dishes"
	menusvc "github.com/canteenhub/canteen-backend/internal/menus"
	restaurantsvc "github.com/canteenhub/canteen-backend/internal/restaurants"
	sessionsvc "github.com/canteenhub/canteen-backend/internal/session"
	"github.com/canteenhub/canteen-backend/pkg/config"
	"github.com/canteenhub/canteen-backend/pkg/logger"
	"github.com/canteenhub/canteen-backend/pkg/metrics"
)

// Services bundles the domain services the router exposes.
type Services struct {
	Session     sessionsvc.Service
	Accounts    accountsvc.Service
	Dishes      dishsvc.Service
	Restaurants restaurantsvc.Service
	Menus       menusvc.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	readiness controllers.ReadinessDeps,
	rateStore middleware.RateLimiterStore,
	httpMetrics *metrics.HTTPMetrics,
	gatherer prometheus.Gatherer,
	services Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
		middleware.Metrics(httpMetrics),
	)

	sessionPolicy := middleware.NewRateLimitPolicy(
		"session",
		cfg.AuthRateLimit.SessionWindow,
		cfg.AuthRateLimit.SessionIPLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, readiness, logg))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.Identity, logg))

		r.Route("/session", func(r chi.Router) {
			r.Use(middleware.RateLimit(sessionPolicy, rateStore, logg))
			r.Get("/", controllers.ResolveSession(services.Session, logg))
			r.Get("/profile", controllers.SessionProfile(services.Session, logg))
		})

		r.Route("/employees", func(r chi.Router) {
			r.Get("/", controllers.ListEmployees(services.Accounts, logg))
			r.Post("/", controllers.CreateEmployee(services.Accounts, logg))
			r.Get("/{employeeID}", controllers.GetEmployee(services.Accounts, logg))
			r.Patch("/{employeeID}", controllers.UpdateEmployee(services.Accounts, logg))
			r.Delete("/{employeeID}", controllers.DeleteEmployee(services.Accounts, logg))
		})

		r.Route("/dishes", func(r chi.Router) {
			r.Get("/", controllers.ListDishes(services.Dishes, logg))
			r.Post("/", controllers.CreateDish(services.Dishes, logg))
			r.Get("/{dishID}", controllers.GetDish(services.Dishes, logg))
			r.Patch("/{dishID}", controllers.UpdateDish(services.Dishes, logg))
			r.Delete("/{dishID}", controllers.DeleteDish(services.Dishes, logg))
		})

		r.Route("/restaurants", func(r chi.Router) {
			r.Get("/", controllers.ListRestaurants(services.Restaurants, logg))
			r.Post("/", controllers.CreateRestaurant(services.Restaurants, logg))
			r.Get("/{restaurantID}", controllers.GetRestaurant(services.Restaurants, logg))
			r.Patch("/{restaurantID}", controllers.UpdateRestaurant(services.Restaurants, logg))
			r.Delete("/{restaurantID}", controllers.DeleteRestaurant(services.Restaurants, logg))

			r.Route("/{restaurantID}/menus/{date}", func(r chi.Router) {
				r.Get("/", controllers.GetMenu(services.Menus, logg))
				r.Put("/", controllers.UpsertMenu(services.Menus, logg))
			})
		})

		r.Get("/menus", controllers.ListMenusForDate(services.Menus, logg))
	})

	return r
}
