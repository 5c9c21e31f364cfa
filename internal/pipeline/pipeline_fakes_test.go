package pipeline

import (
	"context"
	"time"

	"github.com/cas124/media-pacing/internal/services"
)

// fakeWriter records BigQuery writes for assertions
type fakeWriter struct {
	inserted    []any
	loaded      []any
	disposition services.WriteDisposition
	truncated   bool
	insertErr   error
	loadErr     error
}

func (f *fakeWriter) InsertRows(ctx context.Context, dataset, table string, rows any) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, rows)
	return nil
}

func (f *fakeWriter) LoadJSON(ctx context.Context, dataset, table string, rows []any, disposition services.WriteDisposition) (int64, error) {
	if f.loadErr != nil {
		return 0, f.loadErr
	}
	f.loaded = rows
	f.disposition = disposition
	return int64(len(rows)), nil
}

func (f *fakeWriter) Truncate(ctx context.Context, dataset, table string) error {
	f.truncated = true
	return nil
}

type fakeCounter struct {
	count int
	err   error
}

func (f *fakeCounter) CountUsers(ctx context.Context, role string) (int, error) {
	return f.count, f.err
}

type fakeSalesSource struct {
	token    string
	authErr  error
	byEntity map[string][]services.Transaction
	queryErr error
}

func (f *fakeSalesSource) Authenticate(ctx context.Context) (string, error) {
	if f.authErr != nil {
		return "", f.authErr
	}
	return f.token, nil
}

func (f *fakeSalesSource) QueryAll(ctx context.Context, accessToken, entity string) ([]services.Transaction, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.byEntity[entity], nil
}

type fakeSpoke struct {
	platform string
	rows     []services.SpendRow
	err      error
}

func (f *fakeSpoke) Platform() string { return f.platform }

func (f *fakeSpoke) FetchSpend(ctx context.Context, day time.Time) ([]services.SpendRow, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}
