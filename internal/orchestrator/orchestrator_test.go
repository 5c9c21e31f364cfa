package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cas124/media-pacing/internal/dao/rundao"
	apperrors "github.com/cas124/media-pacing/internal/errors"
	"github.com/cas124/media-pacing/internal/pipeline"
)

type stubPipeline struct {
	name   string
	result pipeline.Result
	err    error
	block  bool
}

func (s *stubPipeline) Name() string { return s.name }

func (s *stubPipeline) Run(ctx context.Context) (pipeline.Result, error) {
	if s.block {
		<-ctx.Done()
		return pipeline.Result{}, ctx.Err()
	}
	return s.result, s.err
}

func TestRunSuccess(t *testing.T) {
	registry := pipeline.NewRegistry(&stubPipeline{
		name:   "learndash",
		result: pipeline.Result{Rows: 1, Message: "recorded 412 students"},
	})
	orch := New(registry, nil, time.Second)

	result, err := orch.Run(context.Background(), "learndash")
	require.NoError(t, err)

	assert.Equal(t, "learndash", result.Pipeline)
	assert.Equal(t, int64(1), result.Rows)
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, "recorded 412 students", result.Message)
}

func TestRunFailure(t *testing.T) {
	registry := pipeline.NewRegistry(&stubPipeline{
		name: "qbo-sales",
		err:  errors.New("quickbooks authentication failed"),
	})
	orch := New(registry, nil, time.Second)

	_, err := orch.Run(context.Background(), "qbo-sales")
	assert.ErrorContains(t, err, "quickbooks authentication failed")
}

func TestRunUnknownPipeline(t *testing.T) {
	orch := New(pipeline.NewRegistry(), nil, time.Second)

	_, err := orch.Run(context.Background(), "nope")
	assert.ErrorIs(t, err, apperrors.ErrUnknownPipeline)
}

func TestRunEnforcesTimeout(t *testing.T) {
	registry := pipeline.NewRegistry(&stubPipeline{name: "slow", block: true})
	orch := New(registry, nil, 50*time.Millisecond)

	start := time.Now()
	_, err := orch.Run(context.Background(), "slow")

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

type fakeRecorder struct {
	records []rundao.Record
	err     error
}

func (f *fakeRecorder) Insert(ctx context.Context, record rundao.Record) error {
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, record)
	return nil
}

func TestRunRecordsHistory(t *testing.T) {
	registry := pipeline.NewRegistry(&stubPipeline{
		name:   "qbo-sales",
		result: pipeline.Result{Rows: 42, Message: "loaded 42 sales rows"},
	})
	recorder := &fakeRecorder{}
	orch := New(registry, recorder, time.Second)

	result, err := orch.Run(context.Background(), "qbo-sales")
	require.NoError(t, err)

	require.Len(t, recorder.records, 1)
	record := recorder.records[0]
	assert.Equal(t, result.RunID, record.ID)
	assert.Equal(t, "qbo-sales", record.Pipeline)
	assert.Equal(t, rundao.StatusSuccess, record.Status)
	assert.Equal(t, int64(42), record.Rows)
	assert.Empty(t, record.ErrorMsg)
	assert.False(t, record.FinishedAt.Before(record.StartedAt))
}

func TestRunRecordsFailure(t *testing.T) {
	registry := pipeline.NewRegistry(&stubPipeline{
		name: "learndash",
		err:  errors.New("wordpress unreachable"),
	})
	recorder := &fakeRecorder{}
	orch := New(registry, recorder, time.Second)

	_, err := orch.Run(context.Background(), "learndash")
	require.Error(t, err)

	require.Len(t, recorder.records, 1)
	record := recorder.records[0]
	assert.Equal(t, rundao.StatusFailed, record.Status)
	assert.Equal(t, "wordpress unreachable", record.ErrorMsg)
}

func TestRunHistoryWriteFailureDoesNotFailRun(t *testing.T) {
	registry := pipeline.NewRegistry(&stubPipeline{
		name:   "qbo-sales",
		result: pipeline.Result{Rows: 7},
	})
	recorder := &fakeRecorder{err: errors.New("streaming insert failed")}
	orch := New(registry, recorder, time.Second)

	result, err := orch.Run(context.Background(), "qbo-sales")
	require.NoError(t, err)
	assert.Equal(t, int64(7), result.Rows)
}

func TestRunDefaultTimeout(t *testing.T) {
	orch := New(pipeline.NewRegistry(), nil, 0)
	assert.Equal(t, DefaultTaskTimeout, orch.timeout)
}

func TestRunIDsAreUnique(t *testing.T) {
	registry := pipeline.NewRegistry(&stubPipeline{name: "p"})
	orch := New(registry, nil, time.Second)

	first, err := orch.Run(context.Background(), "p")
	require.NoError(t, err)
	second, err := orch.Run(context.Background(), "p")
	require.NoError(t, err)

	assert.NotEqual(t, first.RunID, second.RunID)
}
