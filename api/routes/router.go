package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/iump/fruittree-backend/api/controllers"
	"github.com/iump/fruittree-backend/api/middleware"
	"github.com/iump/fruittree-backend/internal/basket"
	"github.com/iump/fruittree-backend/internal/pets"
	"github.com/iump/fruittree-backend/internal/rewards"
	"github.com/iump/fruittree-backend/internal/users"
	"github.com/iump/fruittree-backend/pkg/config"
	"github.com/iump/fruittree-backend/pkg/enums"
	"github.com/iump/fruittree-backend/pkg/logger"
	pkgredis "github.com/iump/fruittree-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisP controllers.Pinger,
	idempotencyStore pkgredis.IdempotencyStore,
	catalog controllers.FruitLister,
	basketService basket.Service,
	petService pets.Service,
	rewardService rewards.Service,
	userService users.Service,
	metricsHandler http.Handler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSAllowedOrigins),
	)

	idempotent := middleware.Idempotency(idempotencyStore, logg)
	clock := func() time.Time { return time.Now().UTC() }

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})
	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Get("/api/public/ping", controllers.PublicPing())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/fruits", controllers.ListFruits(catalog, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Get("/ping", controllers.PrivatePing())

			r.Route("/basket", func(r chi.Router) {
				r.Get("/", controllers.BasketSnapshot(basketService, logg))
				r.With(idempotent).Post("/placements", controllers.BasketPlace(basketService, logg))
				r.Delete("/placements/{placementId}", controllers.BasketReturn(basketService, logg))
			})

			r.Get("/pet", controllers.PetGet(petService, clock, logg))
			r.Patch("/pet", controllers.PetUpdate(petService, clock, logg))

			r.Get("/rewards", controllers.RewardHistory(rewardService, logg))

			r.Route("/admin", func(r chi.Router) {
				r.With(
					middleware.RequireAnyRole(logg, enums.RoleTeacher, enums.RoleAdmin),
					idempotent,
				).Post("/rewards", controllers.AdminIssueReward(rewardService, logg))
				r.With(
					middleware.RequireRole(enums.RoleAdmin, logg),
					idempotent,
				).Post("/accounts", controllers.AdminProvisionAccount(userService, logg))
			})
		})
	})

	return r
}
