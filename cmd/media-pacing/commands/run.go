package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/cas124/media-pacing/internal/di"
	"github.com/cas124/media-pacing/internal/orchestrator"
	"github.com/cas124/media-pacing/internal/services"
)

// RunCommand returns the generic run command used as the job entrypoint
// inside the container. The process exits non-zero on failure so the job
// orchestrator surfaces it immediately; the jobs deploy with zero retries.
func RunCommand(logger *zerolog.Logger) *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Run a pipeline to completion and exit",
		ArgsUsage: "<pipeline>",
		Flags: []cli.Flag{
			timeoutFlag(),
		},
		Action: func(c *cli.Context) error {
			name := c.Args().First()
			if name == "" {
				return fmt.Errorf("pipeline name is required (one of: %s)", strings.Join(knownPipelines, ", "))
			}
			return runPipeline(c, name)
		},
	}
}

// LearnDashCommand runs the daily student count sync
func LearnDashCommand(logger *zerolog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "learndash",
		Usage: "Sync the daily LearnDash student count to BigQuery",
		Flags: []cli.Flag{timeoutFlag()},
		Action: func(c *cli.Context) error {
			return runPipeline(c, "learndash")
		},
	}
}

// QBOCommand runs the QuickBooks sales refresh
func QBOCommand(logger *zerolog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "qbo",
		Usage: "Refresh the QuickBooks sales table in BigQuery",
		Flags: []cli.Flag{timeoutFlag()},
		Action: func(c *cli.Context) error {
			return runPipeline(c, "qbo-sales")
		},
	}
}

// PacingCommand runs the media spend pacing sync
func PacingCommand(logger *zerolog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "pacing",
		Usage: "Append yesterday's ad spend to BigQuery",
		Flags: []cli.Flag{timeoutFlag()},
		Action: func(c *cli.Context) error {
			return runPipeline(c, "media-pacing")
		},
	}
}

var knownPipelines = []string{"learndash", "qbo-sales", "media-pacing"}

func validPipeline(name string) bool {
	for _, known := range knownPipelines {
		if known == name {
			return true
		}
	}
	return false
}

func timeoutFlag() cli.Flag {
	return &cli.DurationFlag{
		Name:    "timeout",
		Usage:   "Per-run task timeout",
		Value:   orchestrator.DefaultTaskTimeout,
		EnvVars: []string{"TASK_TIMEOUT"},
	}
}

func runPipeline(c *cli.Context, name string) error {
	ctx := c.Context

	if err := validateConfig(name); err != nil {
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
		result, err := orch.Run(ctx, name)
		if err != nil {
			return err
		}
		fmt.Printf("✓ %s: %s (%s)\n", result.Pipeline, result.Message, result.Duration.Round(time.Millisecond))
		return nil
	})
}

// validateConfig fails fast on missing environment variables before any
// network client is constructed.
func validateConfig(name string) error {
	config := services.LoadConfig()
	switch name {
	case "learndash":
		return config.RequireWordPress()
	case "qbo-sales":
		return config.RequireQuickBooks()
	case "media-pacing":
		return config.RequirePacing()
	default:
		return nil
	}
}
