package routes

import (
	"net/http"

	"github.com/AnshRaj112/serenify-advisor/internal/handlers"
	"github.com/AnshRaj112/serenify-advisor/internal/middleware"
	"github.com/go-chi/chi/v5"
)

// Options carries route-level extras built in main.
type Options struct {
	// LoginLimiter throttles register/login submissions. Nil disables it.
	LoginLimiter   *middleware.IPLimiter
	Metrics        http.Handler
	AllowedOrigins []string
}

func SetupRoutes(r chi.Router, h *handlers.Handler, opts Options) {
	// Probes
	r.Group(func(r chi.Router) {
		r.Use(middleware.CORS(opts.AllowedOrigins))
		r.Get("/healthz", h.Healthz)
		r.Get("/readyz", h.Readyz)
		if opts.Metrics != nil {
			r.Method(http.MethodGet, "/metrics", opts.Metrics)
		}
	})

	// Public pages
	r.Get("/", h.Index)
	r.Get("/home", h.Home)
	r.Group(func(r chi.Router) {
		if opts.LoginLimiter != nil {
			r.Use(middleware.LoginRateLimit(opts.LoginLimiter))
		}
		r.Get("/register", h.RegisterPage)
		r.Post("/register", h.Register)
		r.Get("/login", h.LoginPage)
		r.Post("/login", h.Login)
	})

	// Session required
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/logout", h.Logout)
		r.Get("/dashboard", h.Dashboard)
		r.Get("/profile", h.ProfilePage)
		r.Post("/profile", h.UpdateProfile)
		r.Get("/ask", h.AskPage)
		r.Post("/ask", h.Ask)
	})

	r.NotFound(h.NotFound)
}
