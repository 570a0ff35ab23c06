package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stockroomhq/stockroom-backend/api/controllers"
	"github.com/stockroomhq/stockroom-backend/api/middleware"
	"github.com/stockroomhq/stockroom-backend/internal/auth"
	"github.com/stockroomhq/stockroom-backend/internal/divisions"
	"github.com/stockroomhq/stockroom-backend/internal/inventory"
	"github.com/stockroomhq/stockroom-backend/internal/ledger"
	"github.com/stockroomhq/stockroom-backend/internal/notifications"
	"github.com/stockroomhq/stockroom-backend/internal/requests"
	"github.com/stockroomhq/stockroom-backend/pkg/config"
	"github.com/stockroomhq/stockroom-backend/pkg/logger"
	"github.com/stockroomhq/stockroom-backend/pkg/redis"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// NewRouter assembles the full HTTP surface. The router holds no state of
// its own; it only dispatches into the services.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP pinger,
	redisClient *redis.Client,
	authService auth.Service,
	requestsService requests.Service,
	inventoryService inventory.Service,
	divisionsService divisions.Service,
	notificationsService notifications.Service,
	ledgerService ledger.Service,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginUsernameLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/form", controllers.PublicForm(divisionsService, inventoryService, logg))
		r.Post("/requests", controllers.PublicSubmitRequest(requestsService, logg))
		r.Route("/track/{token}", func(r chi.Router) {
			r.Get("/", controllers.PublicTrackRequest(requestsService, logg))
			r.Patch("/", controllers.PublicUpdateRequest(requestsService, logg))
			r.Get("/notifications", controllers.PublicTrackNotifications(notificationsService, logg))
		})
	})

	r.Route("/api/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(authService, logg))
		r.With(middleware.Auth(cfg.JWT, logg)).Get("/me", controllers.AuthMe(authService, logg))
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/requests", func(r chi.Router) {
			r.Get("/", controllers.AdminListRequests(requestsService, logg))
			r.Get("/{requestId}", controllers.AdminRequestDetail(requestsService, logg))
			r.Post("/{requestId}/approve", controllers.AdminApproveRequest(requestsService, logg))
			r.Post("/{requestId}/reject", controllers.AdminRejectRequest(requestsService, logg))
		})

		r.Route("/items", func(r chi.Router) {
			r.Get("/", controllers.AdminListItems(inventoryService, logg))
			r.Post("/", controllers.AdminCreateItem(inventoryService, logg))
			r.Get("/low-stock", controllers.AdminLowStockItems(inventoryService, logg))
			r.Get("/total-stock", controllers.AdminTotalStock(inventoryService, logg))
			r.Route("/{itemId}", func(r chi.Router) {
				r.Get("/", controllers.AdminGetItem(inventoryService, logg))
				r.Patch("/", controllers.AdminUpdateItem(inventoryService, logg))
				r.Delete("/", controllers.AdminDeleteItem(inventoryService, logg))
				r.Post("/restock", controllers.AdminRestockItem(inventoryService, logg))
				r.Post("/reduce", controllers.AdminReduceItem(inventoryService, logg))
				r.Post("/damaged", controllers.AdminDamagedItem(inventoryService, logg))
				r.Post("/adjust", controllers.AdminAdjustItem(inventoryService, logg))
				r.Post("/set-stock", controllers.AdminSetItemStock(inventoryService, logg))
			})
		})

		r.Route("/divisions", func(r chi.Router) {
			r.Get("/", controllers.AdminListDivisions(divisionsService, logg))
			r.Post("/", controllers.AdminCreateDivision(divisionsService, logg))
			r.Patch("/{divisionId}", controllers.AdminRenameDivision(divisionsService, logg))
			r.Delete("/{divisionId}", controllers.AdminDeleteDivision(divisionsService, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.AdminListNotifications(notificationsService, logg))
			r.Get("/unread-count", controllers.AdminUnreadNotificationCount(notificationsService, logg))
			r.Post("/{notificationId}/read", controllers.AdminMarkNotificationRead(notificationsService, logg))
			r.Post("/read-all", controllers.AdminMarkAllNotificationsRead(notificationsService, logg))
		})

		r.Route("/history", func(r chi.Router) {
			r.Get("/requests", controllers.AdminListRequests(requestsService, logg))
			r.Get("/stock", controllers.AdminStockHistory(ledgerService, logg))
			r.Get("/adjustments", controllers.AdminStockAdjustments(ledgerService, logg))
		})
	})

	return r
}
