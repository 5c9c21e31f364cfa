package di

import (
	"context"
	"time"
)

// TaskTimeout bounds a single pipeline execution. Zero means the deploy
// default.
type TaskTimeout time.Duration

// Option is a function that configures the dependency injection container.
type Option func(*options)

// WithContext supplies the root context injected into constructors that
// build network clients.
func WithContext(ctx context.Context) Option {
	return func(opts *options) {
		opts.ctx = ctx
	}
}

// WithTaskTimeout overrides the per-run timeout.
func WithTaskTimeout(timeout time.Duration) Option {
	return func(opts *options) {
		opts.taskTimeout = TaskTimeout(timeout)
	}
}

// WithProviders adds constructor functions to the dependency injection container.
// Each provider should be a constructor function that returns one or more values.
// Providers can declare dependencies as function parameters, which will be
// automatically resolved by the container.
func WithProviders(providers ...any) Option {
	return func(opts *options) {
		opts.providers = append(opts.providers, providers...)
	}
}

type options struct {
	ctx         context.Context
	taskTimeout TaskTimeout
	providers   []any
}
