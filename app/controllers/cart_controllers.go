package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
	"github.com/shashiranjanraj/storefront/pkg/response"
)

type cartLine struct {
	ItemID   string `json:"item_id"`
	Quantity *int   `json:"quantity"`
}

type CartController struct {
	cart *services.CartService
}

func NewCartController(cart *services.CartService) *CartController {
	return &CartController{cart: cart}
}

// user returns the authenticated id; routes are mounted behind the auth
// middleware so a missing id is a wiring error.
func user(c *ctx.Context) (string, bool) {
	id, ok := c.UserID()
	if !ok {
		c.Unauthorized()
	}
	return id, ok
}

// Add handles POST /cart/add.
func (cc *CartController) Add(c *ctx.Context) {
	userID, ok := user(c)
	if !ok {
		return
	}
	var in cartLine
	if !c.DecodeJSON(&in) {
		return
	}

	id, err := cc.cart.Add(c.Context(), userID, in.ItemID, in.Quantity)
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK(response.M{"msg": "item added to cart", "cart_item_id": id})
}

// Index handles GET /cart.
func (cc *CartController) Index(c *ctx.Context) {
	userID, ok := user(c)
	if !ok {
		return
	}

	views, err := cc.cart.ListEnriched(c.Context(), userID)
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK(views)
}

// Update handles POST /cart/update.
func (cc *CartController) Update(c *ctx.Context) {
	userID, ok := user(c)
	if !ok {
		return
	}
	var in cartLine
	if !c.DecodeJSON(&in) {
		return
	}

	if err := cc.cart.Update(c.Context(), userID, in.ItemID, in.Quantity); err != nil {
		c.Fail(err)
		return
	}
	c.Msg(http.StatusOK, "cart updated")
}

// Remove handles POST /cart/remove.
func (cc *CartController) Remove(c *ctx.Context) {
	userID, ok := user(c)
	if !ok {
		return
	}
	var in cartLine
	if !c.DecodeJSON(&in) {
		return
	}

	if err := cc.cart.Remove(c.Context(), userID, in.ItemID); err != nil {
		c.Fail(err)
		return
	}
	c.Msg(http.StatusOK, "item removed from cart")
}

// Merge handles POST /cart/merge with a guest cart as a JSON array.
func (cc *CartController) Merge(c *ctx.Context) {
	userID, ok := user(c)
	if !ok {
		return
	}
	var lines []models.MergeLine
	if !c.DecodeJSON(&lines) {
		return
	}

	merged, err := cc.cart.Merge(c.Context(), userID, lines)
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK(response.M{"msg": "cart merged", "merged": merged})
}
