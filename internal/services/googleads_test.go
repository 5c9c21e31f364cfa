package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestNormalizeCustomerID(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"123-456-7890", "1234567890"},
		{"1234567890", "1234567890"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := normalizeCustomerID(tt.input); got != tt.want {
			t.Errorf("normalizeCustomerID(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestGoogleAdsFetchSpend(t *testing.T) {
	var gotPath, gotDevToken, gotBody string

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotDevToken = r.Header.Get("developer-token")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)

		json.NewEncoder(w).Encode([]map[string]any{
			{
				"results": []map[string]any{
					{
						"campaign": map[string]any{"name": "search-brand"},
						"metrics":  map[string]any{"costMicros": "88120000", "impressions": "4100", "clicks": "95"},
					},
				},
			},
		})
	}))
	defer ts.Close()

	svc := &GoogleAdsService{
		customerID:     "1234567890",
		developerToken: "dev-token",
		baseURL:        ts.URL,
		tokenSource:    oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "tok"}),
		httpClient:     &http.Client{Timeout: 5 * time.Second},
	}

	day := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	rows, err := svc.FetchSpend(context.Background(), day)
	require.NoError(t, err)

	assert.Equal(t, "/customers/1234567890/googleAds:searchStream", gotPath)
	assert.Equal(t, "dev-token", gotDevToken)
	assert.Contains(t, gotBody, "segments.date = '2026-08-29'")

	require.Len(t, rows, 1)
	assert.Equal(t, "Google Ads", rows[0].Platform)
	assert.Equal(t, "search-brand", rows[0].CampaignName)
	assert.InDelta(t, 88.12, rows[0].Spend, 1e-9)
	assert.Equal(t, int64(4100), rows[0].Impressions)
}

func TestGoogleAdsFetchSpendMalformedMetric(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]any{
			{
				"results": []map[string]any{
					{
						"campaign": map[string]any{"name": "search-brand"},
						"metrics":  map[string]any{"costMicros": "not-a-number", "impressions": "10", "clicks": "1"},
					},
				},
			},
		})
	}))
	defer ts.Close()

	svc := &GoogleAdsService{
		customerID:  "1",
		baseURL:     ts.URL,
		tokenSource: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "tok"}),
		httpClient:  &http.Client{Timeout: 5 * time.Second},
	}

	_, err := svc.FetchSpend(context.Background(), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cost_micros")
	assert.Contains(t, err.Error(), "search-brand")
}

func TestGoogleAdsFetchSpendOmittedMetricsAreZero(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]any{
			{
				"results": []map[string]any{
					{"campaign": map[string]any{"name": "paused"}, "metrics": map[string]any{}},
				},
			},
		})
	}))
	defer ts.Close()

	svc := &GoogleAdsService{
		customerID:  "1",
		baseURL:     ts.URL,
		tokenSource: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "tok"}),
		httpClient:  &http.Client{Timeout: 5 * time.Second},
	}

	rows, err := svc.FetchSpend(context.Background(), time.Now())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Zero(t, rows[0].Spend)
	assert.Zero(t, rows[0].Impressions)
}

func TestGoogleAdsFetchSpendErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error": {"status": "PERMISSION_DENIED"}}`))
	}))
	defer ts.Close()

	svc := &GoogleAdsService{
		customerID:  "1",
		baseURL:     ts.URL,
		tokenSource: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "tok"}),
		httpClient:  &http.Client{Timeout: 5 * time.Second},
	}

	_, err := svc.FetchSpend(context.Background(), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
}
