package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rmarchetti/stockroom-backend/api/controllers"
	"github.com/rmarchetti/stockroom-backend/api/middleware"
	"github.com/rmarchetti/stockroom-backend/internal/auth"
	"github.com/rmarchetti/stockroom-backend/internal/categories"
	"github.com/rmarchetti/stockroom-backend/internal/inventory"
	"github.com/rmarchetti/stockroom-backend/internal/notifications"
	"github.com/rmarchetti/stockroom-backend/internal/requests"
	"github.com/rmarchetti/stockroom-backend/internal/users"
	"github.com/rmarchetti/stockroom-backend/pkg/auth/session"
	"github.com/rmarchetti/stockroom-backend/pkg/config"
	"github.com/rmarchetti/stockroom-backend/pkg/enums"
	"github.com/rmarchetti/stockroom-backend/pkg/logger"
	"github.com/rmarchetti/stockroom-backend/pkg/redis"
)

type dbPinger interface {
	Ping(context.Context) error
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP dbPinger,
	redisClient *redis.Client,
	sessions session.AccessSessionChecker,
	authService auth.Service,
	requestsService requests.Service,
	inventoryService inventory.Service,
	categoriesService categories.Service,
	usersService users.Service,
	notificationsService notifications.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, redisClient, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(authService, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).Post("/register", controllers.AuthRegister(authService, logg))
		r.Post("/refresh", controllers.AuthRefresh(authService, logg))
		r.With(middleware.Auth(cfg.JWT, sessions, logg)).Post("/logout", controllers.AuthLogout(authService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))

		r.With(middleware.RequirePrivileged([]string{"approve", "reject", "fulfill"}, logg)).
			Post("/requests/actions", controllers.RequestActions(requestsService, logg))
		r.With(middleware.RequirePrivileged([]string{"create", "update", "delete"}, logg)).
			Post("/inventory/actions", controllers.InventoryActions(inventoryService, logg))
		r.With(middleware.RequirePrivileged([]string{"create", "update", "delete"}, logg)).
			Post("/categories/actions", controllers.CategoryActions(categoriesService, logg))
		r.With(middleware.RequireRole(enums.RoleAdmin, []string{"updateRole"}, logg)).
			Post("/users/actions", controllers.UserActions(usersService, logg))
		r.Post("/notifications/actions", controllers.NotificationActions(notificationsService, logg))
	})

	return r
}
