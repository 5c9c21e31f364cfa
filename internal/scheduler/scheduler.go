// Package scheduler runs pipelines on cron schedules for environments
// without a managed job trigger.
package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	apperrors "github.com/cas124/media-pacing/internal/errors"
	"github.com/cas124/media-pacing/internal/orchestrator"
)

// Entry binds a pipeline to a cron expression
type Entry struct {
	Spec     string
	Pipeline string
}

// Scheduler triggers pipelines on cron schedules. Overlapping runs of the
// same pipeline are skipped rather than queued.
type Scheduler struct {
	cron    *cron.Cron
	orch    *orchestrator.Orchestrator
	mu      sync.Mutex
	running map[string]bool
}

func New(orch *orchestrator.Orchestrator) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		orch:    orch,
		running: make(map[string]bool),
	}
}

// Add registers a pipeline under a standard cron expression.
// The expression is validated before registration.
func (s *Scheduler) Add(ctx context.Context, entry Entry) error {
	if _, err := cron.ParseStandard(entry.Spec); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", entry.Spec, err)
	}

	// Validate the pipeline name up front rather than on first fire
	known := false
	for _, name := range s.orch.Names() {
		if name == entry.Pipeline {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("%w: %s", apperrors.ErrUnknownPipeline, entry.Pipeline)
	}

	logger := zerolog.Ctx(ctx)
	_, err := s.cron.AddFunc(entry.Spec, func() {
		s.fire(ctx, entry.Pipeline)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule %s: %w", entry.Pipeline, err)
	}

	logger.Info().Str("pipeline", entry.Pipeline).Str("cron", entry.Spec).Msg("Scheduled pipeline")
	return nil
}

// Start runs the scheduler until ctx is cancelled
func (s *Scheduler) Start(ctx context.Context) {
	s.cron.Start()
	<-ctx.Done()

	// Let in-flight jobs finish before returning
	<-s.cron.Stop().Done()
}

func (s *Scheduler) fire(ctx context.Context, name string) {
	s.mu.Lock()
	if s.running[name] {
		s.mu.Unlock()
		zerolog.Ctx(ctx).Warn().Str("pipeline", name).Msg("Previous run still in progress, skipping")
		return
	}
	s.running[name] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running[name] = false
		s.mu.Unlock()
	}()

	// Errors are already logged and counted by the orchestrator; a failed
	// scheduled run should not stop the schedule.
	_, _ = s.orch.Run(ctx, name)
}
