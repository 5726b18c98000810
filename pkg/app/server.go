package app

import (
	"context"

	"github.com/shashiranjanraj/storefront/internal/server"
	"github.com/shashiranjanraj/storefront/pkg/grpc"
)

// Serve runs the HTTP server, and the gRPC health endpoint when a port is
// configured, until ctx is cancelled. Shutdown order: HTTP drain, gRPC
// graceful stop, event queue drain, backends.
func (a *App) Serve(ctx context.Context) error {
	a.Background(ctx)

	var hooks []server.Hook
	if a.Config.GRPCPort != "" {
		g := grpc.New(a.Store)
		if err := g.Start(":" + a.Config.GRPCPort); err != nil {
			return err
		}
		hooks = append(hooks, func(context.Context) error {
			g.Stop()
			return nil
		})
	}
	hooks = append(hooks, a.Close)

	return server.Run(ctx, a.Config.Addr(), a.Handler(), server.Options{OnShutdown: hooks})
}
