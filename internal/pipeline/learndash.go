package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	apperrors "github.com/cas124/media-pacing/internal/errors"
)

// UserCounter is the subset of the WordPress service the learndash
// pipeline needs.
type UserCounter interface {
	CountUsers(ctx context.Context, role string) (int, error)
}

// StudentCountRow is one daily snapshot in the daily_student_count table
type StudentCountRow struct {
	Date          string `bigquery:"date"`
	TotalStudents int    `bigquery:"total_students"`
}

// LearnDash records the daily LearnDash student count: the number of
// WordPress users holding the subscriber role.
type LearnDash struct {
	wordpress UserCounter
	bq        BigQueryWriter
	dataset   string
	table     string
	hasCreds  bool
	clock     func() time.Time
}

func NewLearnDash(wordpress UserCounter, bq BigQueryWriter, dataset, table string, hasPassword bool) *LearnDash {
	return &LearnDash{
		wordpress: wordpress,
		bq:        bq,
		dataset:   dataset,
		table:     table,
		hasCreds:  hasPassword,
		clock:     time.Now,
	}
}

func (p *LearnDash) Name() string { return "learndash" }

func (p *LearnDash) Run(ctx context.Context) (Result, error) {
	if !p.hasCreds {
		return Result{}, apperrors.ErrWPPasswordRequired
	}

	logger := zerolog.Ctx(ctx)
	logger.Info().Msg("Fetching data from WordPress")

	total, err := p.wordpress.CountUsers(ctx, "subscriber")
	if err != nil {
		return Result{}, fmt.Errorf("failed to count students: %w", err)
	}
	logger.Info().Int("total_students", total).Msg("Found students")

	row := StudentCountRow{
		Date:          p.clock().Format("2006-01-02"),
		TotalStudents: total,
	}
	if err := p.bq.InsertRows(ctx, p.dataset, p.table, row); err != nil {
		return Result{}, err
	}

	return Result{
		Rows:    1,
		Message: fmt.Sprintf("recorded %d students", total),
	}, nil
}
