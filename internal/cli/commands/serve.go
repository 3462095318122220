package commands

import (
	"context"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/assets/internal/setup"
	"github.com/conduit-lang/assets/internal/web/router"
	"github.com/conduit-lang/assets/internal/web/server"
)

var (
	serveHost            string
	servePort            int
	serveShutdownTimeout time.Duration
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve cached assets over HTTP",
		Long: `Start an HTTP server exposing the asset cache.

Routes:
  GET    /stats                   cache counters
  GET    /cache                   cached instances
  GET    /assets?pattern=GLOB     names known to the source
  GET    /assets/NAME?type=KIND   encoded asset
  DELETE /assets/NAME?type=KIND   unload a cached instance

Examples:
  assetctl serve
  assetctl serve --port 8080 --root ./assets`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().StringVar(&serveHost, "host", "", "Host to listen on (default from config)")
	cmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (default from config)")
	cmd.Flags().DurationVar(&serveShutdownTimeout, "shutdown-timeout", 30*time.Second, "Graceful shutdown timeout")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = serveHost
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = servePort
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	stack, logger, err := buildStack(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer stack.Close()

	handler := router.New(router.Config{
		Cache:  stack.Cache,
		Writer: stack.Writers,
		Lister: stack.Source,
		Logger: logger.Named("http"),

		AllowedOrigins: cfg.Server.CORSOrigins,
	})
	for _, route := range handler.Routes() {
		logger.Debug("route", zap.String("method", route.Method), zap.String("pattern", route.Pattern))
	}

	srvConfig := server.DefaultConfig(handler)
	srvConfig.Address = cfg.Server.Address()
	srv, err := server.New(srvConfig)
	if err != nil {
		return err
	}

	gs := server.NewGracefulShutdown(srv, &server.ShutdownConfig{
		Timeout: serveShutdownTimeout,
		Logger:  logger,
	})
	gs.RegisterHook(releaseStack(stack, logger))

	infoColor := color.New(color.FgCyan)
	infoColor.Fprintf(cmd.OutOrStdout(), "Serving %s assets on http://%s\n", cfg.Source.Kind, cfg.Server.Address())

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return gs.Run(ctx)
}

// releaseStack disposes the cache and closes the backend once the server
// has stopped taking requests.
func releaseStack(stack *setup.Stack, logger *zap.Logger) server.ShutdownHook {
	return func(context.Context) error {
		logger.Info("releasing asset cache", zap.Int("entries", stack.Cache.Stats().Entries))
		return stack.Close()
	}
}
