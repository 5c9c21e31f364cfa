// Package server exposes the pipelines over HTTP for the Cloud Run service
// variant: POST triggers run a pipeline to completion and report the result.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	apperrors "github.com/cas124/media-pacing/internal/errors"
	"github.com/cas124/media-pacing/internal/orchestrator"
)

const shutdownTimeout = 10 * time.Second

// Server handles HTTP pipeline triggers
type Server struct {
	engine          *gin.Engine
	orch            *orchestrator.Orchestrator
	defaultPipeline string
}

// New builds the HTTP server. defaultPipeline is what a bare POST / runs, so
// a trigger with no path still kicks off the default sync.
func New(orch *orchestrator.Orchestrator, defaultPipeline string) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		engine:          engine,
		orch:            orch,
		defaultPipeline: defaultPipeline,
	}

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	engine.POST("/run/:pipeline", s.handleRun)
	engine.POST("/", func(c *gin.Context) {
		s.trigger(c, s.defaultPipeline)
	})

	return s
}

// Handler exposes the router for tests
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then drains connections
func (s *Server) Run(ctx context.Context, addr string) error {
	logger := zerolog.Ctx(ctx)

	// Request contexts inherit ctx so handlers see the logger and shutdown
	srv := &http.Server{
		Addr:    addr,
		Handler: s.engine,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info().Msg("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleRun(c *gin.Context) {
	s.trigger(c, c.Param("pipeline"))
}

func (s *Server) trigger(c *gin.Context, name string) {
	result, err := s.orch.Run(c.Request.Context(), name)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnknownPipeline) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"pipeline": result.Pipeline,
		"run_id":   result.RunID,
		"rows":     result.Rows,
		"message":  result.Message,
	})
}
