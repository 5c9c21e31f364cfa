package commands

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/cas124/media-pacing/internal/di"
	"github.com/cas124/media-pacing/internal/orchestrator"
	"github.com/cas124/media-pacing/internal/scheduler"
)

// ScheduleCommand returns the schedule command: a long-running in-process
// scheduler for environments without a managed job trigger.
func ScheduleCommand(logger *zerolog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "schedule",
		Usage: "Run pipelines on cron schedules",
		Description: `Runs pipelines on standard cron expressions until interrupted.

Each --job binds one pipeline to a schedule, separated by '@':

  media-pacing schedule \
    --job 'learndash@0 6 * * *' \
    --job 'media-pacing@30 6 * * *'`,
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:     "job",
				Usage:    "Schedule entry in the form <pipeline>@<cron expression> (repeatable)",
				Required: true,
			},
			timeoutFlag(),
		},
		Action: func(c *cli.Context) error {
			ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			entries, err := parseEntries(c.StringSlice("job"))
			if err != nil {
				return err
			}

			container, err := di.New(
				di.WithContext(ctx),
				di.WithTaskTimeout(c.Duration("timeout")),
			)
			if err != nil {
				return fmt.Errorf("failed to build container: %w", err)
			}

			return container.Invoke(func(orch *orchestrator.Orchestrator) error {
				sched := scheduler.New(orch)
				for _, entry := range entries {
					if err := sched.Add(ctx, entry); err != nil {
						return err
					}
				}
				sched.Start(ctx)
				return nil
			})
		},
	}
}

func parseEntries(specs []string) ([]scheduler.Entry, error) {
	entries := make([]scheduler.Entry, 0, len(specs))
	for _, spec := range specs {
		pipeline, expr, ok := strings.Cut(spec, "@")
		if !ok || pipeline == "" || expr == "" {
			return nil, fmt.Errorf("invalid --job %q, expected <pipeline>@<cron expression>", spec)
		}
		entries = append(entries, scheduler.Entry{
			Pipeline: strings.TrimSpace(pipeline),
			Spec:     strings.TrimSpace(expr),
		})
	}
	return entries, nil
}
