package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wpschema/wpschema/internal/observability"
	"github.com/wpschema/wpschema/internal/web/api"
	"github.com/wpschema/wpschema/internal/web/auth"
	"github.com/wpschema/wpschema/internal/web/server"
)

// NewServeCommand creates the serve command
func NewServeCommand(opts *rootOptions) *cobra.Command {
	var (
		host string
		port int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the wp-schema/v1 REST routes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("host") {
				cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}

			logger := observability.NewLogger(cfg.Site.Debug)
			defer logger.Sync()

			ctx := cmd.Context()
			app, err := NewApp(ctx, cfg, logger)
			if err != nil {
				return err
			}

			if cfg.Auth.JWTSecret == "" && len(cfg.Auth.AppPasswords) == 0 {
				logger.Warn("no credentials configured, authenticated routes will refuse every request")
			}
			limiter, err := app.RateLimiter()
			if err != nil {
				app.Close(ctx)
				return err
			}
			router := api.NewRouter(api.Config{
				Service:      app.Service,
				Logger:       logger,
				Metrics:      app.Metrics,
				Tokens:       auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
				AppPasswords: auth.NewAppPasswords(cfg.Auth.AppPasswords),
				CORSOrigins:  cfg.Server.CORSOrigins,
				Timeout:      cfg.Server.RequestTimeout,
				RateLimiter:  limiter,
				Profiling:    cfg.Server.Profiling,
			})

			serverConfig := server.DefaultConfig(router)
			serverConfig.Address = cfg.Server.Address()
			serverConfig.ReadTimeout = cfg.Server.ReadTimeout
			serverConfig.WriteTimeout = cfg.Server.WriteTimeout
			srv, err := server.New(serverConfig)
			if err != nil {
				app.Close(ctx)
				return fmt.Errorf("failed to create server: %w", err)
			}

			gs := server.NewGracefulShutdown(srv, &server.ShutdownConfig{
				Timeout: cfg.Server.ShutdownTimeout,
				Logger:  logger,
			})
			gs.RegisterHook(app.Close)

			logger.Info("serving schema",
				zap.String("addr", serverConfig.Address),
				zap.String("content", cfg.Content.Driver),
				zap.String("cache", cfg.Cache.Driver),
				zap.Strings("integrations", app.Integrations))
			return gs.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "listen host (default from server.host)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (default from server.port)")
	return cmd
}
