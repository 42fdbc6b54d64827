package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/ratehub/ratehub-backend/internal/api/handlers"
	"github.com/ratehub/ratehub-backend/internal/auth"
	"github.com/ratehub/ratehub-backend/internal/config"
	"github.com/ratehub/ratehub-backend/internal/metrics"
	"github.com/ratehub/ratehub-backend/internal/middleware"
	"github.com/ratehub/ratehub-backend/internal/models"
	"github.com/ratehub/ratehub-backend/internal/services"
)

func NewRouter(cfg config.Config, tm *auth.TokenManager, us *services.UserService, ss *services.StoreService, rs *services.RatingService) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover, middleware.HTTPMetrics, middleware.RateLimit(cfg.RateRPS))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", metrics.Handler())

	ah := handlers.NewAuthHandler(us, tm)
	uh := handlers.NewUsersHandler(us)
	sh := handlers.NewStoresHandler(ss)
	rh := handlers.NewRatingsHandler(rs)
	am := middleware.NewAuthMiddleware(tm)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", ah.Register)
		r.Post("/auth/login", ah.Login)
		r.Post("/auth/refresh", ah.Refresh)

		r.Group(func(r chi.Router) {
			r.Use(am.Auth)

			r.Put("/auth/password", ah.ChangePassword)
			r.Get("/stores", sh.List)
			r.Get("/stores/{storeID}", sh.Get)

			// only normal users rate, and always as themselves
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleUser))
				r.Post("/ratings", rh.Submit)
				r.Get("/stores/{storeID}/rating", rh.GetOwn)
				r.Delete("/stores/{storeID}/rating", rh.Retract)
				r.Get("/me/ratings", rh.ListMine)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleStoreOwner))
				r.Get("/owner/dashboard", sh.OwnerDashboard)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleAdmin))
				r.Get("/admin/dashboard", sh.AdminDashboard)
				r.Get("/users", uh.List)
				r.Post("/users", uh.Create)
				r.Get("/users/{userID}", uh.Get)
				r.Delete("/users/{userID}", uh.Delete)
				r.Post("/stores", sh.Create)
				r.Delete("/stores/{storeID}", sh.Delete)
			})
		})
	})

	return r
}
