package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
	"github.com/shashiranjanraj/storefront/pkg/response"
)

type AuthController struct {
	auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

// Signup handles POST /auth/signup.
func (ac *AuthController) Signup(c *ctx.Context) {
	var in services.SignupInput
	if !c.BindJSON(&in) {
		return
	}

	u, err := ac.auth.Signup(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(response.M{"msg": "user created", "user": u.Summary()})
}

// Login handles POST /auth/login.
func (ac *AuthController) Login(c *ctx.Context) {
	var in services.LoginInput
	if !c.BindJSON(&in) {
		return
	}

	res, err := ac.auth.Login(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK(res)
}

// Me handles GET /auth/me.
func (ac *AuthController) Me(c *ctx.Context) {
	userID, ok := c.UserID()
	if !ok {
		c.Unauthorized()
		return
	}

	u, err := ac.auth.Me(c.Context(), userID)
	if err != nil {
		c.Fail(err)
		return
	}
	c.JSON(http.StatusOK, response.M{"user": u})
}
