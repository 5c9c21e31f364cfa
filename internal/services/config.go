package services

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration values from environment variables
type Config struct {
	ProjectID string // GCP project for BigQuery and Secret Manager
	Region    string // Cloud Run region for job deploys
	BQKeyFile string // optional path to a service account key file
	BQKeySec  string // optional Secret Manager secret holding a key JSON
	Port      string

	WordPress  WordPressConfig
	QuickBooks QuickBooksConfig
	Meta       MetaConfig
	GoogleAds  GoogleAdsConfig

	LearnDashDataset string
	LearnDashTable   string
	SalesDataset     string
	SalesTable       string
	PacingDataset    string
	PacingTable      string
	OpsDataset       string
	OpsTable         string

	TargetProduct string // product line filter for the sales pipeline
}

type WordPressConfig struct {
	URL      string
	User     string
	Password string
}

type QuickBooksConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	CompanyID    string
	SecretName   string // Secret Manager secret holding the refresh token
	Environment  string // "production" or "sandbox"
}

type MetaConfig struct {
	AccessToken string
	AdAccountID string // must start with "act_"
}

type GoogleAdsConfig struct {
	CustomerID string
	ConfigFile string // path to google-ads.yaml
}

// LoadConfig reads configuration from environment variables.
// Variable names match what the deploy scripts set on the containers.
func LoadConfig() *Config {
	return &Config{
		ProjectID: os.Getenv("BQ_PROJECT_ID"),
		Region:    getEnvOrDefault("REGION", "us-central1"),
		BQKeyFile: os.Getenv("BQ_KEY_FILE"),
		BQKeySec:  os.Getenv("BQ_KEY_SECRET"),
		Port:      getEnvOrDefault("PORT", "8080"),
		WordPress: WordPressConfig{
			URL:      getEnvOrDefault("WP_URL", "https://wearehipaasmart.com"),
			User:     os.Getenv("WP_USER"),
			Password: os.Getenv("WP_PASSWORD"),
		},
		QuickBooks: QuickBooksConfig{
			ClientID:     os.Getenv("QB_CLIENT_ID"),
			ClientSecret: os.Getenv("QB_CLIENT_SECRET"),
			RedirectURI:  os.Getenv("QB_REDIRECT_URI"),
			CompanyID:    os.Getenv("QB_COMPANY_ID"),
			SecretName:   os.Getenv("QB_SECRET_NAME"),
			Environment:  getEnvOrDefault("QB_ENVIRONMENT", "production"),
		},
		Meta: MetaConfig{
			AccessToken: os.Getenv("META_ACCESS_TOKEN"),
			AdAccountID: os.Getenv("META_AD_ACCOUNT_ID"),
		},
		GoogleAds: GoogleAdsConfig{
			CustomerID: os.Getenv("GOOGLE_ADS_CUSTOMER_ID"),
			ConfigFile: getEnvOrDefault("GOOGLE_ADS_CONFIG", "google-ads.yaml"),
		},
		LearnDashDataset: getEnvOrDefault("LEARNDASH_DATASET", "learndash_stats"),
		LearnDashTable:   getEnvOrDefault("LEARNDASH_TABLE", "daily_student_count"),
		SalesDataset:     getEnvOrDefault("QBO_DATASET", "quickbooks_data"),
		SalesTable:       getEnvOrDefault("QBO_TABLE", "wahs_qbo_sales"),
		PacingDataset:    getEnvOrDefault("PACING_DATASET", "marketing_data"),
		PacingTable:      getEnvOrDefault("PACING_TABLE", "daily_spend"),
		OpsDataset:       getEnvOrDefault("OPS_DATASET", "pipeline_ops"),
		OpsTable:         getEnvOrDefault("OPS_TABLE", "pipeline_runs"),
		TargetProduct:    getEnvOrDefault("TARGET_PRODUCT", "Products:We Are, HIPAA Smart"),
	}
}

// RequireWordPress validates the variables the learndash pipeline depends on
func (c *Config) RequireWordPress() error {
	var missing []string
	if c.WordPress.User == "" {
		missing = append(missing, "WP_USER")
	}
	if c.WordPress.Password == "" {
		missing = append(missing, "WP_PASSWORD")
	}
	if c.ProjectID == "" {
		missing = append(missing, "BQ_PROJECT_ID")
	}
	return missingVarsError(missing)
}

// RequireQuickBooks validates the variables the sales pipeline depends on
func (c *Config) RequireQuickBooks() error {
	var missing []string
	for name, value := range map[string]string{
		"QB_CLIENT_ID":     c.QuickBooks.ClientID,
		"QB_CLIENT_SECRET": c.QuickBooks.ClientSecret,
		"QB_REDIRECT_URI":  c.QuickBooks.RedirectURI,
		"QB_COMPANY_ID":    c.QuickBooks.CompanyID,
		"QB_SECRET_NAME":   c.QuickBooks.SecretName,
		"BQ_PROJECT_ID":    c.ProjectID,
	} {
		if value == "" {
			missing = append(missing, name)
		}
	}
	return missingVarsError(missing)
}

// RequirePacing validates the variables the media pacing pipeline depends on.
// Spoke credentials are validated per spoke; only the sink is required here.
func (c *Config) RequirePacing() error {
	var missing []string
	if c.ProjectID == "" {
		missing = append(missing, "BQ_PROJECT_ID")
	}
	return missingVarsError(missing)
}

func missingVarsError(missing []string) error {
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
}

// AdsConfig mirrors the google-ads.yaml layout used by the Google Ads client libraries
type AdsConfig struct {
	DeveloperToken  string `yaml:"developer_token"`
	ClientID        string `yaml:"client_id"`
	ClientSecret    string `yaml:"client_secret"`
	RefreshToken    string `yaml:"refresh_token"`
	LoginCustomerID string `yaml:"login_customer_id"`
}

// LoadAdsConfig reads a google-ads.yaml configuration file
func LoadAdsConfig(path string) (*AdsConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ads config %s: %w", path, err)
	}

	var cfg AdsConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse ads config %s: %w", path, err)
	}

	if cfg.DeveloperToken == "" || cfg.RefreshToken == "" {
		return nil, fmt.Errorf("ads config %s missing developer_token or refresh_token", path)
	}

	return &cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
