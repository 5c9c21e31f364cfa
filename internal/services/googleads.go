package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleAdsAPIURL = "https://googleads.googleapis.com/v17"

// GoogleAdsService fetches campaign spend via the Google Ads searchStream
// REST endpoint. Credentials come from a google-ads.yaml file, matching the
// layout the official client libraries use.
type GoogleAdsService struct {
	customerID      string
	developerToken  string
	loginCustomerID string
	baseURL         string
	tokenSource     oauth2.TokenSource
	httpClient      *http.Client
}

func NewGoogleAdsService(ads *AdsConfig, customerID string) *GoogleAdsService {
	conf := &oauth2.Config{
		ClientID:     ads.ClientID,
		ClientSecret: ads.ClientSecret,
		Endpoint:     google.Endpoint,
	}

	return &GoogleAdsService{
		customerID:      normalizeCustomerID(customerID),
		developerToken:  ads.DeveloperToken,
		loginCustomerID: normalizeCustomerID(ads.LoginCustomerID),
		baseURL:         googleAdsAPIURL,
		tokenSource:     conf.TokenSource(context.Background(), &oauth2.Token{RefreshToken: ads.RefreshToken}),
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (s *GoogleAdsService) Platform() string { return "Google Ads" }

// FetchSpend runs a GAQL query for a single day of campaign metrics.
// cost_micros converts to currency units.
func (s *GoogleAdsService) FetchSpend(ctx context.Context, day time.Time) ([]SpendRow, error) {
	date := day.Format("2006-01-02")

	gaql := fmt.Sprintf(
		"SELECT campaign.name, metrics.cost_micros, metrics.impressions, metrics.clicks "+
			"FROM campaign WHERE segments.date = '%s'", date)

	body, err := json.Marshal(map[string]string{"query": gaql})
	if err != nil {
		return nil, fmt.Errorf("failed to encode gaql query: %w", err)
	}

	endpoint := fmt.Sprintf("%s/customers/%s/googleAds:searchStream", s.baseURL, s.customerID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build google ads request: %w", err)
	}

	token, err := s.tokenSource.Token()
	if err != nil {
		return nil, fmt.Errorf("google ads token refresh failed: %w", err)
	}
	token.SetAuthHeader(req)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("developer-token", s.developerToken)
	if s.loginCustomerID != "" {
		req.Header.Set("login-customer-id", s.loginCustomerID)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google ads request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("google ads returned status %d: %s", resp.StatusCode, string(payload))
	}

	// searchStream responds with an array of result batches
	var batches []struct {
		Results []struct {
			Campaign struct {
				Name string `json:"name"`
			} `json:"campaign"`
			Metrics struct {
				CostMicros  string `json:"costMicros"`
				Impressions string `json:"impressions"`
				Clicks      string `json:"clicks"`
			} `json:"metrics"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&batches); err != nil {
		return nil, fmt.Errorf("failed to decode google ads response: %w", err)
	}

	var rows []SpendRow
	for _, batch := range batches {
		for _, result := range batch.Results {
			costMicros, err := parseMetric("cost_micros", result.Metrics.CostMicros)
			if err != nil {
				return nil, fmt.Errorf("campaign %s: %w", result.Campaign.Name, err)
			}
			impressions, err := parseMetric("impressions", result.Metrics.Impressions)
			if err != nil {
				return nil, fmt.Errorf("campaign %s: %w", result.Campaign.Name, err)
			}
			clicks, err := parseMetric("clicks", result.Metrics.Clicks)
			if err != nil {
				return nil, fmt.Errorf("campaign %s: %w", result.Campaign.Name, err)
			}

			rows = append(rows, SpendRow{
				Date:         date,
				Platform:     s.Platform(),
				CampaignName: result.Campaign.Name,
				Spend:        float64(costMicros) / 1e6,
				Impressions:  impressions,
				Clicks:       clicks,
			})
		}
	}

	return rows, nil
}

// parseMetric decodes a string-encoded int64 metric. The API omits metrics
// with no data, so an empty value reads as zero; anything else malformed is
// an error rather than a silent zero.
func parseMetric(name, value string) (int64, error) {
	if value == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

// normalizeCustomerID strips the dashes Google Ads UIs display in customer IDs
func normalizeCustomerID(id string) string {
	return strings.ReplaceAll(id, "-", "")
}
