package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const metaGraphURL = "https://graph.facebook.com/v19.0"

// MetaService fetches campaign spend from the Meta Graph insights API
type MetaService struct {
	accessToken string
	adAccountID string
	baseURL     string
	httpClient  *http.Client
}

func NewMetaService(config MetaConfig) *MetaService {
	return &MetaService{
		accessToken: config.AccessToken,
		adAccountID: config.AdAccountID,
		baseURL:     metaGraphURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (s *MetaService) Platform() string { return "Meta" }

// FetchSpend returns campaign-level insights for a single day.
// The Graph API reports numeric metrics as strings.
func (s *MetaService) FetchSpend(ctx context.Context, day time.Time) ([]SpendRow, error) {
	date := day.Format("2006-01-02")

	timeRange, err := json.Marshal(map[string]string{"since": date, "until": date})
	if err != nil {
		return nil, fmt.Errorf("failed to encode time range: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/insights", s.baseURL, s.adAccountID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build meta request: %w", err)
	}

	query := url.Values{}
	query.Set("access_token", s.accessToken)
	query.Set("level", "campaign")
	query.Set("time_range", string(timeRange))
	query.Set("fields", "campaign_name,spend,impressions,clicks")
	req.URL.RawQuery = query.Encode()

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("meta request failed: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		Data []struct {
			CampaignName string `json:"campaign_name"`
			Spend        string `json:"spend"`
			Impressions  string `json:"impressions"`
			Clicks       string `json:"clicks"`
		} `json:"data"`
		Error *struct {
			Message string `json:"message"`
			Code    int    `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode meta response: %w", err)
	}

	if payload.Error != nil {
		return nil, fmt.Errorf("meta api error %d: %s", payload.Error.Code, payload.Error.Message)
	}

	rows := make([]SpendRow, 0, len(payload.Data))
	for _, item := range payload.Data {
		spend, _ := strconv.ParseFloat(item.Spend, 64)
		impressions, _ := strconv.ParseInt(item.Impressions, 10, 64)
		clicks, _ := strconv.ParseInt(item.Clicks, 10, 64)

		rows = append(rows, SpendRow{
			Date:         date,
			Platform:     s.Platform(),
			CampaignName: item.CampaignName,
			Spend:        spend,
			Impressions:  impressions,
			Clicks:       clicks,
		})
	}

	return rows, nil
}
