package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("REGION", "")

	config := LoadConfig()

	assert.Equal(t, "8080", config.Port)
	assert.Equal(t, "us-central1", config.Region)
	assert.Equal(t, "learndash_stats", config.LearnDashDataset)
	assert.Equal(t, "daily_student_count", config.LearnDashTable)
	assert.Equal(t, "quickbooks_data", config.SalesDataset)
	assert.Equal(t, "wahs_qbo_sales", config.SalesTable)
	assert.Equal(t, "marketing_data", config.PacingDataset)
	assert.Equal(t, "daily_spend", config.PacingTable)
	assert.Equal(t, "Products:We Are, HIPAA Smart", config.TargetProduct)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("BQ_PROJECT_ID", "media-pacing")
	t.Setenv("PORT", "9090")
	t.Setenv("WP_PASSWORD", "secret")
	t.Setenv("QB_ENVIRONMENT", "sandbox")

	config := LoadConfig()

	assert.Equal(t, "media-pacing", config.ProjectID)
	assert.Equal(t, "9090", config.Port)
	assert.Equal(t, "secret", config.WordPress.Password)
	assert.Equal(t, "sandbox", config.QuickBooks.Environment)
}

func TestRequireWordPress(t *testing.T) {
	config := &Config{}

	err := config.RequireWordPress()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BQ_PROJECT_ID")
	assert.Contains(t, err.Error(), "WP_PASSWORD")
	assert.Contains(t, err.Error(), "WP_USER")

	config.ProjectID = "p"
	config.WordPress.User = "u"
	config.WordPress.Password = "pw"
	assert.NoError(t, config.RequireWordPress())
}

func TestRequireQuickBooks(t *testing.T) {
	config := &Config{ProjectID: "p"}
	config.QuickBooks = QuickBooksConfig{
		ClientID:     "id",
		ClientSecret: "secret",
		RedirectURI:  "https://example.com/callback",
		CompanyID:    "123",
	}

	err := config.RequireQuickBooks()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "QB_SECRET_NAME")
	assert.NotContains(t, err.Error(), "QB_CLIENT_ID")

	config.QuickBooks.SecretName = "qbo-refresh-token"
	assert.NoError(t, config.RequireQuickBooks())
}

func TestLoadAdsConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "google-ads.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
developer_token: dev-token
client_id: client.apps.googleusercontent.com
client_secret: shhh
refresh_token: 1//refresh
login_customer_id: "123-456-7890"
`), 0o600))

	cfg, err := LoadAdsConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "dev-token", cfg.DeveloperToken)
	assert.Equal(t, "1//refresh", cfg.RefreshToken)
	assert.Equal(t, "123-456-7890", cfg.LoginCustomerID)
}

func TestLoadAdsConfigMissingFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "google-ads.yaml")
	require.NoError(t, os.WriteFile(path, []byte("client_id: only\n"), 0o600))

	_, err := LoadAdsConfig(path)
	assert.ErrorContains(t, err, "missing developer_token or refresh_token")
}

func TestLoadAdsConfigMissingFile(t *testing.T) {
	_, err := LoadAdsConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
