package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/cas124/media-pacing/internal/di"
	"github.com/cas124/media-pacing/internal/services"
)

// DeployCommand returns the deploy command for creating or updating a
// pipeline's Cloud Run job. Defaults: one task, zero retries, five minute
// timeout.
func DeployCommand(logger *zerolog.Logger) *cli.Command {
	return &cli.Command{
		Name:      "deploy",
		Usage:     "Deploy a pipeline as a Cloud Run job",
		ArgsUsage: "<pipeline>",
		Description: `Creates or updates a Cloud Run job that runs one pipeline to completion.

Examples:
  # Deploy the learndash sync with its WordPress password bound from a secret
  media-pacing deploy learndash \
    --project my-project --region us-central1 \
    --image us-docker.pkg.dev/my-project/pipelines/media-pacing:latest \
    --set-env BQ_PROJECT_ID=my-project \
    --set-env WP_USER=reports@example.com \
    --set-secret WP_PASSWORD=wp-app-password

  # Pin a secret version instead of latest
  media-pacing deploy qbo-sales ... --set-secret QB_REFRESH=qbo-refresh-token:3`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "project",
				Usage:    "GCP project to deploy into",
				Required: true,
				EnvVars:  []string{"BQ_PROJECT_ID"},
			},
			&cli.StringFlag{
				Name:    "region",
				Usage:   "Cloud Run region",
				Value:   "us-central1",
				EnvVars: []string{"REGION"},
			},
			&cli.StringFlag{
				Name:  "job",
				Usage: "Job name (defaults to <pipeline>-daily-sync)",
			},
			&cli.StringFlag{
				Name:     "image",
				Usage:    "Container image to run",
				Required: true,
			},
			&cli.StringSliceFlag{
				Name:  "set-env",
				Usage: "Environment variable as KEY=VALUE (repeatable)",
			},
			&cli.StringSliceFlag{
				Name:  "set-secret",
				Usage: "Secret binding as ENV_VAR=secret[:version] (repeatable)",
			},
			&cli.IntFlag{
				Name:  "max-retries",
				Usage: "Automatic retries on task failure",
				Value: 0,
			},
			&cli.DurationFlag{
				Name:  "task-timeout",
				Usage: "Maximum task runtime",
				Value: 5 * time.Minute,
			},
		},
		Action: func(c *cli.Context) error {
			return deployAction(c)
		},
	}
}

func deployAction(c *cli.Context) error {
	ctx := c.Context

	name := c.Args().First()
	if name == "" {
		return fmt.Errorf("pipeline name is required (one of: %s)", strings.Join(knownPipelines, ", "))
	}
	if !validPipeline(name) {
		return fmt.Errorf("unknown pipeline %q (one of: %s)", name, strings.Join(knownPipelines, ", "))
	}

	jobName := c.String("job")
	if jobName == "" {
		jobName = name + "-daily-sync"
	}

	env, err := parseEnv(c.StringSlice("set-env"))
	if err != nil {
		return err
	}

	secrets, err := parseSecrets(c.StringSlice("set-secret"))
	if err != nil {
		return err
	}

	spec := services.JobSpec{
		Project:     c.String("project"),
		Region:      c.String("region"),
		Name:        jobName,
		Image:       c.String("image"),
		Args:        []string{"run", name},
		Env:         env,
		Secrets:     secrets,
		MaxRetries:  int32(c.Int("max-retries")),
		TaskTimeout: c.Duration("task-timeout"),
	}

	container, err := di.New(di.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to build container: %w", err)
	}

	return container.Invoke(func(cloudrun *services.CloudRunService) error {
		if err := cloudrun.EnsureJob(ctx, spec); err != nil {
			return err
		}
		fmt.Printf("✓ Deployed job %s in %s\n", jobName, spec.Region)
		return nil
	})
}

func parseEnv(pairs []string) (map[string]string, error) {
	env := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --set-env %q, expected KEY=VALUE", pair)
		}
		env[key] = value
	}
	return env, nil
}

func parseSecrets(pairs []string) ([]services.SecretBinding, error) {
	bindings := make([]services.SecretBinding, 0, len(pairs))
	for _, pair := range pairs {
		envVar, ref, ok := strings.Cut(pair, "=")
		if !ok || envVar == "" || ref == "" {
			return nil, fmt.Errorf("invalid --set-secret %q, expected ENV_VAR=secret[:version]", pair)
		}

		secret, version, _ := strings.Cut(ref, ":")
		bindings = append(bindings, services.SecretBinding{
			EnvVar:  envVar,
			Secret:  secret,
			Version: version,
		})
	}
	return bindings, nil
}
