package commands

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/cas124/media-pacing/internal/di"
	"github.com/cas124/media-pacing/internal/server"
	"github.com/cas124/media-pacing/internal/services"
)

// ServeCommand returns the serve command: the production entrypoint of the
// service container. Binds :8080 unless PORT says otherwise and exposes the
// pipelines as HTTP triggers.
func ServeCommand(logger *zerolog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve HTTP pipeline triggers",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "port",
				Usage: "Port to listen on (defaults to PORT, then 8080)",
			},
			timeoutFlag(),
		},
		Action: func(c *cli.Context) error {
			ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			container, err := di.New(
				di.WithContext(ctx),
				di.WithTaskTimeout(c.Duration("timeout")),
			)
			if err != nil {
				return fmt.Errorf("failed to build container: %w", err)
			}

			return container.Invoke(func(srv *server.Server, config *services.Config) error {
				return srv.Run(ctx, ":"+resolvePort(c.String("port"), config))
			})
		},
	}
}

// resolvePort prefers the flag, then the configured port (PORT env or 8080)
func resolvePort(flagValue string, config *services.Config) string {
	if flagValue != "" {
		return flagValue
	}
	return config.Port
}
