// Package router sets up the HTTP routes and middleware chains. Routes
// split into three surfaces: the authenticated management API under /api,
// the anonymous published-page reads under /sites, and the API-key path
// under /external.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"blockpress/internal/handlers"
	"blockpress/internal/middleware"
)

// Deps carries everything the router wires together.
type Deps struct {
	Authn    middleware.Authenticator
	Metrics  *middleware.Metrics
	Limiter  *middleware.RateLimiter
	Auth     *handlers.Auth
	Users    *handlers.Users
	Pages    *handlers.Pages
	Blocks   *handlers.Blocks
	Sections *handlers.Sections
	APIKeys  *handlers.APIKeys
	Audit    *handlers.Audit
	Public   *handlers.Public
	External *handlers.External
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
	}
	r.Use(middleware.LoadIdentity(d.Authn))

	r.Get("/health", healthHandler)
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	limiter := d.Limiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter(10, time.Minute)
	}

	// Management API, authenticated with bearer-token sessions.
	r.Route("/api", func(r chi.Router) {
		// Credential endpoints sit behind the rate limiter.
		r.Group(func(r chi.Router) {
			r.Use(limiter.Middleware)
			r.Post("/register", d.Auth.Register)
			r.Post("/login", d.Auth.Login)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser)

			r.Post("/logout", d.Auth.Logout)
			r.Get("/me", d.Auth.Me)

			r.Route("/2fa", func(r chi.Router) {
				r.Post("/setup", d.Auth.TwoFactorSetup)
				r.Post("/activate", d.Auth.TwoFactorActivate)
				r.Post("/reset/{userID}", d.Auth.TwoFactorReset)
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/", d.Users.List)
				r.Post("/", d.Users.Create)
				r.Put("/{userID}/active", d.Users.SetActive)
			})

			r.Route("/pages", func(r chi.Router) {
				r.Get("/", d.Pages.List)
				r.Post("/", d.Pages.Create)
				r.Get("/{pageID}", d.Pages.Get)
				r.Patch("/{pageID}", d.Pages.Update)
				r.Delete("/{pageID}", d.Pages.Delete)
				r.Post("/{pageID}/publish", d.Pages.Publish)
				r.Post("/{pageID}/unpublish", d.Pages.Unpublish)
				r.Post("/{pageID}/archive", d.Pages.Archive)
				r.Put("/{pageID}/order", d.Pages.Reorder)
				r.Post("/{pageID}/blocks", d.Blocks.Add)
			})

			r.Route("/blocks", func(r chi.Router) {
				r.Put("/{blockID}/content", d.Blocks.UpdateContent)
				r.Put("/{blockID}/layout", d.Blocks.UpdateLayout)
				r.Put("/{blockID}/lock", d.Blocks.SetLock)
				r.Post("/{blockID}/duplicate", d.Blocks.Duplicate)
				r.Delete("/{blockID}", d.Blocks.Delete)
			})

			r.Route("/sections", func(r chi.Router) {
				r.Get("/", d.Sections.List)
				r.Post("/", d.Sections.Create)
				r.Get("/{sectionID}", d.Sections.Get)
				r.Put("/{sectionID}", d.Sections.Update)
				r.Post("/{sectionID}/default", d.Sections.SetDefault)
				r.Delete("/{sectionID}", d.Sections.Delete)
			})

			r.Route("/keys", func(r chi.Router) {
				r.Get("/", d.APIKeys.List)
				r.Post("/", d.APIKeys.Create)
				r.Post("/{keyID}/revoke", d.APIKeys.Revoke)
				r.Delete("/{keyID}", d.APIKeys.Delete)
			})

			r.Get("/audit", d.Audit.Recent)
		})
	})

	// Anonymous reads of published content.
	r.Route("/sites/{workspaceID}", func(r chi.Router) {
		r.Get("/pages", d.Public.ListPages)
		r.Get("/pages/{slug}", d.Public.GetPage)
	})

	// API-key path for headless consumers.
	r.Route("/external", func(r chi.Router) {
		r.Get("/pages", d.External.ListPages)
		r.Get("/pages/{slug}", d.External.GetPage)
		r.Get("/sections", d.External.ListSections)
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
