package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/cas124/media-pacing/internal/services"
)

// MediaPacing appends yesterday's ad spend from every configured platform
// spoke to the daily_spend table. A failing spoke is logged and skipped so a
// single platform outage never blocks the others.
type MediaPacing struct {
	spokes  []services.SpendFetcher
	bq      BigQueryWriter
	dataset string
	table   string
	clock   func() time.Time
}

func NewMediaPacing(spokes []services.SpendFetcher, bq BigQueryWriter, dataset, table string) *MediaPacing {
	return &MediaPacing{
		spokes:  spokes,
		bq:      bq,
		dataset: dataset,
		table:   table,
		clock:   time.Now,
	}
}

func (p *MediaPacing) Name() string { return "media-pacing" }

func (p *MediaPacing) Run(ctx context.Context) (Result, error) {
	logger := zerolog.Ctx(ctx)
	yesterday := p.clock().AddDate(0, 0, -1)

	var all []services.SpendRow
	for _, spoke := range p.spokes {
		rows, err := spoke.FetchSpend(ctx, yesterday)
		if err != nil {
			logger.Warn().Err(err).Str("platform", spoke.Platform()).Msg("Spoke failed, skipping")
			continue
		}
		logger.Info().Str("platform", spoke.Platform()).Int("rows", len(rows)).Msg("Fetched spend")
		all = append(all, rows...)
	}

	if len(all) == 0 {
		logger.Warn().Msg("No spend rows fetched, nothing to load")
		return Result{Rows: 0, Message: "no spend rows"}, nil
	}

	payload := make([]any, len(all))
	for i := range all {
		payload[i] = all[i]
	}

	loaded, err := p.bq.LoadJSON(ctx, p.dataset, p.table, payload, services.WriteAppend)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Rows:    loaded,
		Message: fmt.Sprintf("loaded %d spend rows", loaded),
	}, nil
}
