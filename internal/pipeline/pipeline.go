// Package pipeline holds the batch pipelines that feed the marketing
// BigQuery datasets, plus the registry the CLI, scheduler, and HTTP trigger
// server resolve them through.
package pipeline

import (
	"context"
	"fmt"
	"sort"

	apperrors "github.com/cas124/media-pacing/internal/errors"
	"github.com/cas124/media-pacing/internal/services"
)

// Result summarizes a completed pipeline run
type Result struct {
	Rows    int64
	Message string
}

// Pipeline is a named batch job that runs to completion
type Pipeline interface {
	Name() string
	Run(ctx context.Context) (Result, error)
}

// BigQueryWriter is the subset of the BigQuery service the pipelines write
// through.
type BigQueryWriter interface {
	InsertRows(ctx context.Context, dataset, table string, rows any) error
	LoadJSON(ctx context.Context, dataset, table string, rows []any, disposition services.WriteDisposition) (int64, error)
	Truncate(ctx context.Context, dataset, table string) error
}

// Registry resolves pipelines by name
type Registry struct {
	pipelines map[string]Pipeline
}

func NewRegistry(pipelines ...Pipeline) *Registry {
	m := make(map[string]Pipeline, len(pipelines))
	for _, p := range pipelines {
		m[p.Name()] = p
	}
	return &Registry{pipelines: m}
}

// Get returns the pipeline registered under name
func (r *Registry) Get(name string) (Pipeline, error) {
	p, ok := r.pipelines[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnknownPipeline, name)
	}
	return p, nil
}

// Names returns all registered pipeline names, sorted
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.pipelines))
	for name := range r.pipelines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
