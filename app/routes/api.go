package routes

import (
	"net/http"

	"github.com/shashiranjanraj/storefront/app/controllers"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
	"github.com/shashiranjanraj/storefront/pkg/middleware"
	"github.com/shashiranjanraj/storefront/pkg/router"
)

// API carries the handlers the route table is built from.
type API struct {
	Home  *controllers.HomeController
	Auth  *controllers.AuthController
	Items *controllers.ItemController
	Cart  *controllers.CartController

	Tokens  middleware.TokenValidator
	GraphQL http.HandlerFunc
	Catalog http.Handler // WebSocket catalog feed
}

func RegisterAPI(r *router.Router, api API) {
	authMW := middleware.Auth(api.Tokens)

	r.Get("/", "home", ctx.Wrap(api.Home.Index))
	r.Get("/health", "health", ctx.Wrap(api.Home.Health))

	auth := r.Group("/auth")
	auth.Post("/signup", "auth.signup", ctx.Wrap(api.Auth.Signup))
	auth.Post("/login", "auth.login", ctx.Wrap(api.Auth.Login))
	auth.Get("/me", "auth.me", ctx.Wrap(api.Auth.Me), authMW)

	items := r.Group("/items")
	items.Get("/", "items.index", ctx.Wrap(api.Items.Index))
	items.Get("/categories", "items.categories", ctx.Wrap(api.Items.Categories))
	items.Get("/{id}", "items.show", ctx.Wrap(api.Items.Show))
	items.Post("/", "items.store", ctx.Wrap(api.Items.Store), authMW)
	items.Put("/{id}", "items.update", ctx.Wrap(api.Items.Update), authMW)
	items.Delete("/{id}", "items.destroy", ctx.Wrap(api.Items.Destroy), authMW)
	items.Post("/{id}/image", "items.image", ctx.Wrap(api.Items.UploadImage), authMW)

	cart := r.Group("/cart", authMW)
	cart.Get("/", "cart.index", ctx.Wrap(api.Cart.Index))
	cart.Post("/add", "cart.add", ctx.Wrap(api.Cart.Add))
	cart.Post("/update", "cart.update", ctx.Wrap(api.Cart.Update))
	cart.Post("/remove", "cart.remove", ctx.Wrap(api.Cart.Remove))
	cart.Post("/merge", "cart.merge", ctx.Wrap(api.Cart.Merge))

	optional := r.Group("", middleware.OptionalAuth(api.Tokens))
	optional.Get("/graphql", "graphql.get", api.GraphQL)
	optional.Post("/graphql", "graphql", api.GraphQL)

	r.Get("/ws/catalog", "ws.catalog", api.Catalog.ServeHTTP)
}
