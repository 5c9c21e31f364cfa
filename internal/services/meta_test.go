package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetaFetchSpend(t *testing.T) {
	var gotPath string
	var gotQuery map[string][]string

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		w.Write([]byte(`{
			"data": [
				{"campaign_name": "brand-awareness", "spend": "120.50", "impressions": "9000", "clicks": "210"},
				{"campaign_name": "retargeting", "spend": "45.02", "impressions": "1200", "clicks": "33"}
			]
		}`))
	}))
	defer ts.Close()

	svc := NewMetaService(MetaConfig{AccessToken: "tok", AdAccountID: "act_123456789"})
	svc.baseURL = ts.URL

	day := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	rows, err := svc.FetchSpend(context.Background(), day)
	require.NoError(t, err)

	assert.Equal(t, "/act_123456789/insights", gotPath)
	assert.Equal(t, []string{"campaign"}, gotQuery["level"])
	assert.Equal(t, []string{`{"since":"2026-08-29","until":"2026-08-29"}`}, gotQuery["time_range"])

	require.Len(t, rows, 2)
	assert.Equal(t, "Meta", rows[0].Platform)
	assert.Equal(t, "2026-08-29", rows[0].Date)
	assert.Equal(t, "brand-awareness", rows[0].CampaignName)
	assert.Equal(t, 120.50, rows[0].Spend)
	assert.Equal(t, int64(9000), rows[0].Impressions)
	assert.Equal(t, int64(210), rows[0].Clicks)
}

func TestMetaFetchSpendAPIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": {"message": "Invalid OAuth access token", "code": 190}}`))
	}))
	defer ts.Close()

	svc := NewMetaService(MetaConfig{AccessToken: "bad", AdAccountID: "act_1"})
	svc.baseURL = ts.URL

	_, err := svc.FetchSpend(context.Background(), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "meta api error 190")
}

func TestMetaFetchSpendEmpty(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": []}`))
	}))
	defer ts.Close()

	svc := NewMetaService(MetaConfig{AccessToken: "tok", AdAccountID: "act_1"})
	svc.baseURL = ts.URL

	rows, err := svc.FetchSpend(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Empty(t, rows)
}
