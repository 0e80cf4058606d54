package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/isdelr/todoshare-be/internal/api/handlers"
	"github.com/isdelr/todoshare-be/internal/auth"
	"github.com/isdelr/todoshare-be/internal/metrics"
	"github.com/isdelr/todoshare-be/internal/mw"
	"github.com/isdelr/todoshare-be/internal/presence"
	"github.com/isdelr/todoshare-be/internal/services"
	"github.com/isdelr/todoshare-be/internal/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps is everything the router hands to its handlers.
type Deps struct {
	UserService     services.UserServiceProvider
	ListService     services.ListServiceProvider
	ActivityService services.ActivityServiceProvider

	Verifier auth.Verifier
	Hub      *websocket.Hub
	Presence *presence.Registry
	Access   presence.AccessChecker

	// AuthLimiter throttles /api/auth when set.
	AuthLimiter *mw.RateLimiter

	AllowedOrigins []string
	TokenTTL       time.Duration
	SecureCookies  bool
	// TrustProxy rewrites RemoteAddr from forwarding headers. Leave it off
	// unless a proxy in front sets them, since the auth rate limit keys on it.
	TrustProxy bool
}

// NewRouter creates and configures a new Chi router.
func NewRouter(d Deps) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	if d.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(mw.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	userHandler := handlers.NewUserHandler(d.UserService, d.TokenTTL, d.SecureCookies)
	listHandler := handlers.NewListHandler(d.ListService)
	todoHandler := handlers.NewTodoHandler(d.ListService)
	activityHandler := handlers.NewActivityHandler(d.ActivityService)
	wsHandler := handlers.NewWebSocketHandler(d.Hub, d.Presence, d.Verifier, d.Access, d.AllowedOrigins)

	requireAuth := auth.Middleware(d.Verifier)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}` + "\n"))
	})
	r.Handle("/metrics", promhttp.Handler())

	// Realtime channel; identity arrives in an authenticate frame.
	r.Get("/ws", wsHandler.Serve)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			if d.AuthLimiter != nil {
				r.Use(d.AuthLimiter.Handler)
			}
			r.Post("/register", userHandler.Register)
			r.Post("/login", userHandler.Login)
			r.With(requireAuth).Get("/me", userHandler.GetMe)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Get("/activity", activityHandler.GetRecent)

			r.Route("/lists", func(r chi.Router) {
				r.Get("/", listHandler.GetAll)
				r.Post("/", listHandler.Create)
				r.Put("/", listHandler.ReplaceAll)
				r.Get("/owned", listHandler.GetOwned)
				r.Get("/shared", listHandler.GetShared)

				r.Route("/{listId}", func(r chi.Router) {
					r.Get("/", listHandler.Get)
					r.Delete("/", listHandler.Delete)

					r.Get("/shares", listHandler.Shares)
					r.Post("/share", listHandler.Share)
					r.Delete("/share/{targetUserId}", listHandler.Unshare)

					r.Post("/todos", todoHandler.Add)
					r.Put("/todos/{todoId}", todoHandler.Update)
					r.Delete("/todos/{todoId}", todoHandler.Delete)
					r.Patch("/todos/{todoId}/toggle", todoHandler.Toggle)
				})
			})
		})
	})

	return r
}
