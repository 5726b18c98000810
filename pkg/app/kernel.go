package app

import (
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/shashiranjanraj/storefront/app/controllers"
	"github.com/shashiranjanraj/storefront/app/routes"
	"github.com/shashiranjanraj/storefront/pkg/graphql"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
	"github.com/shashiranjanraj/storefront/pkg/middleware"
	"github.com/shashiranjanraj/storefront/pkg/reqid"
	"github.com/shashiranjanraj/storefront/pkg/response"
	"github.com/shashiranjanraj/storefront/pkg/router"
	"github.com/shashiranjanraj/storefront/pkg/storage"
)

// Router builds the route table with the global middleware stack.
func (a *App) Router() *router.Router {
	r := router.New()

	// Global middleware stack (outermost → innermost):
	//  1. Prometheus metrics, outermost for accurate total latency
	//  2. Recovery, catches panics before they kill the goroutine
	//  3. Request ID, injected before anything logs
	//  4. Logger, logs request_id from context
	//  5. CORS
	//  6. Rate limiter, rejects abusers early
	//  7. Body limit
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(chimw.StripSlashes)
	r.Use(middleware.CORS(middleware.DefaultCORSOptions(a.Config.CORSOrigins...)))
	r.Use(a.Limiter.Middleware)
	r.Use(middleware.BodyLimit(a.Config.MaxBodyBytes))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	// Prometheus /metrics endpoint.
	r.Get("/metrics", "metrics", metrics.Handler())

	if local, ok := a.Disk.(*storage.LocalDisk); ok {
		r.Mount("/storage", "storage", http.StripPrefix("/storage", local.FileServer()))
	}

	routes.RegisterAPI(r, routes.API{
		Home:    controllers.NewHomeController(a.Store),
		Auth:    controllers.NewAuthController(a.Auth),
		Items:   controllers.NewItemController(a.Items),
		Cart:    controllers.NewCartController(a.Cart),
		Tokens:  a.Tokens,
		GraphQL: graphql.Handler(a.Schema),
		Catalog: a.Hub,
	})
	return r
}

// Handler returns the root http.Handler.
func (a *App) Handler() http.Handler {
	return a.Router().Handler()
}
