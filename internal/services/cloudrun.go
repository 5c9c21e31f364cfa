package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	run "cloud.google.com/go/run/apiv2"
	"cloud.google.com/go/run/apiv2/runpb"
	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/durationpb"

	apperrors "github.com/cas124/media-pacing/internal/errors"
)

// SecretBinding maps an environment variable to a Secret Manager secret
// version, resolved by Cloud Run at task startup.
type SecretBinding struct {
	EnvVar  string
	Secret  string
	Version string // defaults to "latest"
}

// JobSpec describes a Cloud Run job to create or update.
// Defaults match the deploy scripts: one task, zero retries, 5m timeout.
type JobSpec struct {
	Project     string
	Region      string
	Name        string
	Image       string
	Args        []string
	Env         map[string]string
	Secrets     []SecretBinding
	MaxRetries  int32
	TaskTimeout time.Duration
}

func (spec *JobSpec) validate() error {
	if spec.Name == "" {
		return apperrors.ErrJobNameRequired
	}
	if spec.Image == "" {
		return apperrors.ErrImageRequired
	}
	if spec.TaskTimeout == 0 {
		spec.TaskTimeout = 5 * time.Minute
	}
	return nil
}

// CloudRunService wraps the Cloud Run Jobs admin API
type CloudRunService struct {
	client *run.JobsClient
}

func NewCloudRunService(ctx context.Context) (*CloudRunService, error) {
	client, err := run.NewJobsClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloud run jobs client: %w", err)
	}

	return &CloudRunService{client: client}, nil
}

// EnsureJob creates the job, or updates it in place when it already exists,
// and waits for the operation to complete.
func (s *CloudRunService) EnsureJob(ctx context.Context, spec JobSpec) error {
	if err := spec.validate(); err != nil {
		return err
	}

	logger := zerolog.Ctx(ctx)
	parent := fmt.Sprintf("projects/%s/locations/%s", spec.Project, spec.Region)
	name := fmt.Sprintf("%s/jobs/%s", parent, spec.Name)
	job := buildJob(spec)

	existing, err := s.client.GetJob(ctx, &runpb.GetJobRequest{Name: name})
	switch {
	case status.Code(err) == codes.NotFound:
		logger.Info().Str("job", spec.Name).Str("region", spec.Region).Msg("Creating job")
		op, err := s.client.CreateJob(ctx, &runpb.CreateJobRequest{
			Parent: parent,
			JobId:  spec.Name,
			Job:    job,
		})
		if err != nil {
			return fmt.Errorf("failed to create job %s: %w", spec.Name, err)
		}
		if _, err := op.Wait(ctx); err != nil {
			return fmt.Errorf("job creation %s did not complete: %w", spec.Name, err)
		}

	case err != nil:
		return fmt.Errorf("failed to look up job %s: %w", spec.Name, err)

	default:
		logger.Info().Str("job", spec.Name).Str("region", spec.Region).Msg("Updating job")
		job.Name = existing.Name
		op, err := s.client.UpdateJob(ctx, &runpb.UpdateJobRequest{Job: job})
		if err != nil {
			return fmt.Errorf("failed to update job %s: %w", spec.Name, err)
		}
		if _, err := op.Wait(ctx); err != nil {
			return fmt.Errorf("job update %s did not complete: %w", spec.Name, err)
		}
	}

	logger.Info().Str("job", spec.Name).
		Int32("max_retries", spec.MaxRetries).
		Dur("task_timeout", spec.TaskTimeout).
		Msg("Job deployed")
	return nil
}

// Close releases the underlying gRPC connection
func (s *CloudRunService) Close() error {
	return s.client.Close()
}

func buildJob(spec JobSpec) *runpb.Job {
	env := make([]*runpb.EnvVar, 0, len(spec.Env)+len(spec.Secrets))

	keys := make([]string, 0, len(spec.Env))
	for key := range spec.Env {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		env = append(env, &runpb.EnvVar{
			Name:   key,
			Values: &runpb.EnvVar_Value{Value: spec.Env[key]},
		})
	}

	for _, binding := range spec.Secrets {
		version := binding.Version
		if version == "" {
			version = "latest"
		}
		env = append(env, &runpb.EnvVar{
			Name: binding.EnvVar,
			Values: &runpb.EnvVar_ValueSource{
				ValueSource: &runpb.EnvVarSource{
					SecretKeyRef: &runpb.SecretKeySelector{
						Secret:  binding.Secret,
						Version: version,
					},
				},
			},
		})
	}

	return &runpb.Job{
		Template: &runpb.ExecutionTemplate{
			TaskCount: 1,
			Template: &runpb.TaskTemplate{
				Retries: &runpb.TaskTemplate_MaxRetries{MaxRetries: spec.MaxRetries},
				Timeout: durationpb.New(spec.TaskTimeout),
				Containers: []*runpb.Container{
					{
						Image: spec.Image,
						Args:  spec.Args,
						Env:   env,
					},
				},
			},
		},
	}
}
