package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bracula/campus/internal/api/handlers"
	mw "github.com/bracula/campus/internal/api/middleware"
	"github.com/bracula/campus/internal/auth"
)

type Dependencies struct {
	Sessions     *auth.Manager
	Cookies      auth.CookieConfig
	CORSOrigin   string
	LoginLimiter *mw.Limiter
	Metrics      prometheus.Gatherer

	HealthHandler         *handlers.HealthHandler
	AuthHandler           *handlers.AuthHandler
	UsersHandler          *handlers.UsersHandler
	EventsHandler         *handlers.EventsHandler
	AccommodationsHandler *handlers.AccommodationsHandler
}

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()

	// Built-in middleware
	r.Use(mw.RequestID)
	r.Use(mw.Recovery)
	r.Use(mw.Logging)
	r.Use(mw.CORS(dep.CORSOrigin))
	r.Use(chimid.Compress(5))

	requireSession := mw.RequireSession(dep.Sessions, dep.Cookies)

	// Health and metrics
	r.Get("/healthz", dep.HealthHandler.Liveness)
	r.Get("/readyz", dep.HealthHandler.Readiness)
	if dep.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(dep.Metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/auth", func(ar chi.Router) {
		login := ar.With()
		if dep.LoginLimiter != nil {
			login = ar.With(mw.RateLimit(dep.LoginLimiter))
		}
		login.Post("/login", dep.AuthHandler.Login)
		ar.Post("/logout", dep.AuthHandler.Logout)
		ar.With(requireSession).Get("/session", dep.AuthHandler.Session)
	})

	r.Route("/users", func(ur chi.Router) {
		ur.Post("/register", dep.AuthHandler.Register)
		ur.Get("/{id}", dep.UsersHandler.Get)
		ur.Group(func(protected chi.Router) {
			protected.Use(requireSession)
			protected.Get("/me", dep.UsersHandler.Me)
			protected.Put("/me", dep.UsersHandler.UpdateMe)
		})
	})

	r.Route("/events", func(er chi.Router) {
		er.Get("/", dep.EventsHandler.List)
		er.Get("/{id}", dep.EventsHandler.Get)
		er.Group(func(protected chi.Router) {
			protected.Use(requireSession)
			protected.Post("/", dep.EventsHandler.Create)
			protected.Post("/{id}/registration", dep.EventsHandler.ToggleRegistration)
			protected.Get("/{id}/registration", dep.EventsHandler.RegistrationStatus)
		})
	})

	r.Route("/accommodations", func(acr chi.Router) {
		acr.Use(requireSession)
		acr.HandleFunc("/inquiries", dep.AccommodationsHandler.Inquiries)
		acr.Get("/", dep.AccommodationsHandler.List)
		acr.Post("/", dep.AccommodationsHandler.Create)
		acr.Get("/{id}", dep.AccommodationsHandler.Get)
		acr.Put("/{id}", dep.AccommodationsHandler.Update)
		acr.Delete("/{id}", dep.AccommodationsHandler.Delete)
		acr.Post("/{id}/favorite", dep.AccommodationsHandler.ToggleFavorite)
	})

	return r
}
