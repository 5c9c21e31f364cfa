package rundao

import (
	"context"
	"time"

	"github.com/segmentio/ksuid"
)

// Status represents the terminal state of a pipeline run
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
)

// Record is one pipeline execution, written to the ops table after the run
// finishes. BigQuery streaming inserts are append-only, so runs are recorded
// once at completion rather than updated in place.
type Record struct {
	ID         string    `bigquery:"run_id"`
	Pipeline   string    `bigquery:"pipeline"`
	Status     Status    `bigquery:"status"`
	StartedAt  time.Time `bigquery:"started_at"`
	FinishedAt time.Time `bigquery:"finished_at"`
	Rows       int64     `bigquery:"rows_loaded"`
	ErrorMsg   string    `bigquery:"error_msg"`
}

// NewID generates a sortable run ID
func NewID() string {
	return ksuid.New().String()
}

// Inserter is the subset of the BigQuery service the DAO needs
type Inserter interface {
	InsertRows(ctx context.Context, dataset, table string, rows any) error
}

// DAO records pipeline run history in a BigQuery ops table
type DAO struct {
	bq      Inserter
	dataset string
	table   string
}

// New creates a new DAO instance
func New(bq Inserter, dataset, table string) *DAO {
	return &DAO{
		bq:      bq,
		dataset: dataset,
		table:   table,
	}
}

// Insert writes a completed run record
func (d *DAO) Insert(ctx context.Context, record Record) error {
	return d.bq.InsertRows(ctx, d.dataset, d.table, record)
}
