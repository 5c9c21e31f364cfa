package main

import (
	"context"
	"os"

	"github.com/cas124/media-pacing/cmd/media-pacing/commands"
	"github.com/cas124/media-pacing/internal/di"
	"github.com/urfave/cli/v2"
)

func main() {
	logger := di.ProvideLogger()
	ctx := logger.WithContext(context.Background())

	app := &cli.App{
		Name:  "media-pacing",
		Usage: "Marketing data pipeline toolkit",
		Description: `Batch pipelines that feed the marketing BigQuery datasets.

This tool provides commands for:
  - Running the LearnDash, QuickBooks, and media pacing pipelines
  - Serving HTTP triggers for the pipelines on Cloud Run
  - Running pipelines on local cron schedules
  - Deploying pipelines as Cloud Run jobs`,
		Commands: []*cli.Command{
			commands.RunCommand(&logger),
			commands.LearnDashCommand(&logger),
			commands.QBOCommand(&logger),
			commands.PacingCommand(&logger),
			commands.ServeCommand(&logger),
			commands.ScheduleCommand(&logger),
			commands.DeployCommand(&logger),
		},
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		logger.Error().Err(err).Msg("Application error")
		os.Exit(1)
	}
}
