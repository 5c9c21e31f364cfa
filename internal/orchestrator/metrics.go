package orchestrator

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/cas124/media-pacing/internal/dao/rundao"
)

var (
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pipeline_runs_total",
		Help: "Pipeline executions by pipeline and terminal status.",
	}, []string{"pipeline", "status"})

	runDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pipeline_run_duration_seconds",
		Help:    "Pipeline execution duration.",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
	}, []string{"pipeline"})

	rowsLoaded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pipeline_rows_loaded_total",
		Help: "Rows loaded into BigQuery per pipeline.",
	}, []string{"pipeline"})
)

func observeRun(name string, status rundao.Status, duration time.Duration, rows int64) {
	runsTotal.WithLabelValues(name, string(status)).Inc()
	runDuration.WithLabelValues(name).Observe(duration.Seconds())
	if rows > 0 {
		rowsLoaded.WithLabelValues(name).Add(float64(rows))
	}
}
