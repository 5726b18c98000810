package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/shashiranjanraj/storefront/pkg/ctx"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/response"
)

const healthTimeout = 2 * time.Second

// Pinger reports whether the document store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HomeController struct {
	store Pinger
}

func NewHomeController(store Pinger) *HomeController {
	return &HomeController{store: store}
}

// Index handles GET /.
func (hc *HomeController) Index(c *ctx.Context) {
	c.OK(response.M{"message": "E-commerce API with MongoDB running"})
}

// Health handles GET /health.
func (hc *HomeController) Health(c *ctx.Context) {
	pingCtx, cancel := context.WithTimeout(c.Context(), healthTimeout)
	defer cancel()

	if err := hc.store.Ping(pingCtx); err != nil {
		logger.WithCtx(c.Context()).Warn("health check failed", "error", err.Error())
		c.JSON(http.StatusServiceUnavailable, response.M{"status": "unavailable"})
		return
	}
	c.OK(response.M{"status": "ok"})
}
