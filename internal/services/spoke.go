package services

import (
	"context"
	"time"
)

// SpendRow is one campaign-day of ad spend, shaped for the daily_spend table
type SpendRow struct {
	Date         string  `json:"date"`
	Platform     string  `json:"platform"`
	CampaignName string  `json:"campaign_name"`
	Spend        float64 `json:"spend"`
	Impressions  int64   `json:"impressions"`
	Clicks       int64   `json:"clicks"`
}

// SpendFetcher is implemented by each ad platform spoke
type SpendFetcher interface {
	// Platform returns the platform label written into each row
	Platform() string

	// FetchSpend returns campaign-level spend for a single day
	FetchSpend(ctx context.Context, day time.Time) ([]SpendRow, error)
}
