// Package orchestrator runs pipelines with the execution contract the job
// deployment expects: a hard per-task timeout, no retries, and a run-history
// record written after every execution.
package orchestrator

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/cas124/media-pacing/internal/dao/rundao"
	"github.com/cas124/media-pacing/internal/pipeline"
)

// DefaultTaskTimeout matches the --task-timeout the jobs deploy with
const DefaultTaskTimeout = 5 * time.Minute

// RunResult describes a completed execution
type RunResult struct {
	RunID    string
	Pipeline string
	Rows     int64
	Message  string
	Duration time.Duration
}

// RunRecorder persists run history records
type RunRecorder interface {
	Insert(ctx context.Context, record rundao.Record) error
}

// Orchestrator manages pipeline execution lifecycle
type Orchestrator struct {
	registry *pipeline.Registry
	dao      RunRecorder
	timeout  time.Duration
}

// New creates a new Orchestrator instance. A zero timeout falls back to the
// deploy default.
func New(registry *pipeline.Registry, dao RunRecorder, timeout time.Duration) *Orchestrator {
	if timeout <= 0 {
		timeout = DefaultTaskTimeout
	}
	return &Orchestrator{
		registry: registry,
		dao:      dao,
		timeout:  timeout,
	}
}

// Names returns the names of all runnable pipelines
func (o *Orchestrator) Names() []string {
	return o.registry.Names()
}

// Run executes a pipeline exactly once under the task timeout. Failures
// surface immediately; retrying is the caller's platform's decision, and the
// jobs deploy with max retries zero.
func (o *Orchestrator) Run(ctx context.Context, name string) (RunResult, error) {
	p, err := o.registry.Get(name)
	if err != nil {
		return RunResult{}, err
	}

	runID := rundao.NewID()
	logger := zerolog.Ctx(ctx).With().Str("pipeline", name).Str("run_id", runID).Logger()
	ctx = logger.WithContext(ctx)

	runCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	started := time.Now()
	logger.Info().Msg("Pipeline starting")

	result, runErr := p.Run(runCtx)
	finished := time.Now()
	duration := finished.Sub(started)

	record := rundao.Record{
		ID:         runID,
		Pipeline:   name,
		Status:     rundao.StatusSuccess,
		StartedAt:  started,
		FinishedAt: finished,
		Rows:       result.Rows,
	}
	if runErr != nil {
		record.Status = rundao.StatusFailed
		record.ErrorMsg = runErr.Error()
	}

	observeRun(name, record.Status, duration, result.Rows)

	// Run history is best effort: losing a record must not fail a run that
	// already loaded its data.
	if o.dao != nil {
		if err := o.dao.Insert(ctx, record); err != nil {
			logger.Warn().Err(err).Msg("Failed to record run history")
		}
	}

	if runErr != nil {
		logger.Error().Err(runErr).Dur("duration", duration).Msg("Pipeline failed")
		return RunResult{}, runErr
	}

	logger.Info().Int64("rows", result.Rows).Dur("duration", duration).Msg("Pipeline finished")
	return RunResult{
		RunID:    runID,
		Pipeline: name,
		Rows:     result.Rows,
		Message:  result.Message,
		Duration: duration,
	}, nil
}
