package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/database/seeders"
	"github.com/shashiranjanraj/storefront/pkg/database"
)

// NewRootCommand returns the storefront CLI.
func NewRootCommand() *cobra.Command {
	var configPath, envPath string

	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Storefront e-commerce API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", config.DefaultConfigPath, "JSON config file")
	root.PersistentFlags().StringVar(&envPath, "env", config.DefaultEnvPath, "dotenv file")

	load := func() (*config.Config, error) {
		return config.LoadFrom(configPath, envPath)
	}

	root.AddCommand(
		serveCmd(load),
		seedCmd(load),
		indexesCmd(load),
		routeListCmd(load),
	)
	return root
}

type loader func() (*config.Config, error)

// storefront serve
func serveCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:     "serve",
		Aliases: []string{"run", "start"},
		Short:   "Start the HTTP server (and gRPC health when GRPC_PORT is set)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := New(ctx, cfg)
			if err != nil {
				return err
			}
			return a.Serve(ctx)
		},
	}
}

// storefront seed [--only catalog]
func seedCmd(load loader) *cobra.Command {
	var only []string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert the starter catalog into an empty store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			a, err := New(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close(context.WithoutCancel(ctx))

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Running seeders…")
			return seeders.Run(ctx, a.Store, out, only...)
		},
	}
	cmd.Flags().StringSliceVar(&only, "only", nil, "run only these seeders ("+strings.Join(seeders.Names(), ", ")+")")
	return cmd
}

// storefront db:indexes
func indexesCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "db:indexes",
		Short: "Create the unique and search indexes in MongoDB",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if cfg.DBDriver != "mongo" {
				return fmt.Errorf("db:indexes needs DB_DRIVER=mongo (got %q)", cfg.DBDriver)
			}
			ctx := cmd.Context()

			m, err := database.Connect(ctx, cfg)
			if err != nil {
				return err
			}
			defer m.Disconnect(context.WithoutCancel(ctx))

			created, err := database.EnsureIndexes(ctx, m.DB)
			for _, name := range created {
				fmt.Fprintln(cmd.OutOrStdout(), "  •", name)
			}
			return err
		},
	}
}

// storefront route:list
func routeListCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:     "route:list",
		Aliases: []string{"routes"},
		Short:   "List all registered routes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			a, err := New(ctx, offline(cfg))
			if err != nil {
				return err
			}
			defer a.Close(context.WithoutCancel(ctx))

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "METHOD\tPATH\tNAME")
			fmt.Fprintln(w, "------\t----\t----")
			for _, ri := range a.Router().Routes() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
			}
			return w.Flush()
		},
	}
}

// offline returns a copy of cfg that opens no network connections.
func offline(cfg *config.Config) *config.Config {
	c := *cfg
	c.DBDriver = "memory"
	c.CacheDriver = "memory"
	c.StorageDisk = "local"
	c.KafkaBrokers = nil
	c.LogMongo = false
	return &c
}
