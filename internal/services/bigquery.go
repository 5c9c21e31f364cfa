package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/option"
)

// WriteDisposition controls how a load job treats existing table data
type WriteDisposition string

const (
	WriteAppend   WriteDisposition = "WRITE_APPEND"
	WriteTruncate WriteDisposition = "WRITE_TRUNCATE"
)

// BigQueryService wraps the BigQuery client for the two write paths the
// pipelines use: streaming inserts for small daily rows and batch load jobs
// for full table refreshes.
type BigQueryService struct {
	client *bigquery.Client
}

// NewBigQueryService creates a BigQuery client. Credential precedence: an
// explicit key file (BQ_KEY_FILE), a key JSON fetched from Secret Manager,
// then ambient credentials.
func NewBigQueryService(ctx context.Context, config *Config, secrets *SecretManagerService) (*BigQueryService, error) {
	var opts []option.ClientOption
	switch {
	case config.BQKeyFile != "":
		opts = append(opts, option.WithCredentialsFile(config.BQKeyFile))
	case config.BQKeySec != "":
		key, err := secrets.ServiceAccountKey(ctx, config.ProjectID, config.BQKeySec)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch BigQuery credentials: %w", err)
		}
		opts = append(opts, option.WithCredentialsJSON(key))
	}

	client, err := bigquery.NewClient(ctx, config.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create bigquery client: %w", err)
	}

	return &BigQueryService{client: client}, nil
}

// InsertRows streams rows into a table. rows follows the inserter contract:
// a struct, a slice of structs, or anything implementing ValueSaver.
func (s *BigQueryService) InsertRows(ctx context.Context, dataset, table string, rows any) error {
	inserter := s.client.Dataset(dataset).Table(table).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("failed to insert rows into %s.%s: %w", dataset, table, err)
	}
	return nil
}

// LoadJSON runs a load job from newline-delimited JSON with schema autodetect
// and field addition allowed, waits for completion, and returns the number of
// rows loaded.
func (s *BigQueryService) LoadJSON(ctx context.Context, dataset, table string, rows []any, disposition WriteDisposition) (int64, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, row := range rows {
		if err := enc.Encode(row); err != nil {
			return 0, fmt.Errorf("failed to encode row for %s.%s: %w", dataset, table, err)
		}
	}

	source := bigquery.NewReaderSource(&buf)
	source.SourceFormat = bigquery.JSON
	source.AutoDetect = true

	loader := s.client.Dataset(dataset).Table(table).LoaderFrom(source)
	loader.WriteDisposition = bigquery.TableWriteDisposition(disposition)
	loader.SchemaUpdateOptions = []string{"ALLOW_FIELD_ADDITION"}

	job, err := loader.Run(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to start load job for %s.%s: %w", dataset, table, err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to wait for load job %s: %w", job.ID(), err)
	}
	if err := status.Err(); err != nil {
		return 0, fmt.Errorf("load job %s failed: %w", job.ID(), err)
	}

	if stats, ok := status.Statistics.Details.(*bigquery.LoadStatistics); ok {
		return stats.OutputRows, nil
	}
	return int64(len(rows)), nil
}

// Truncate removes all rows from a table. Used when a refresh produces zero
// rows: an empty autodetect load job is rejected by BigQuery, but the table
// must still end up empty.
func (s *BigQueryService) Truncate(ctx context.Context, dataset, table string) error {
	query := s.client.Query(fmt.Sprintf("TRUNCATE TABLE `%s.%s.%s`", s.client.Project(), dataset, table))

	job, err := query.Run(ctx)
	if err != nil {
		return fmt.Errorf("failed to truncate %s.%s: %w", dataset, table, err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("failed to wait for truncate of %s.%s: %w", dataset, table, err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("truncate of %s.%s failed: %w", dataset, table, err)
	}
	return nil
}

// Close releases the underlying connection
func (s *BigQueryService) Close() error {
	return s.client.Close()
}
