package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

const (
	intuitTokenURL = "https://oauth.platform.intuit.com/oauth2/v1/tokens/bearer"

	qboProductionURL = "https://quickbooks.api.intuit.com"
	qboSandboxURL    = "https://sandbox-quickbooks.api.intuit.com"

	// QBO caps query pages at 1000 results
	qboMaxResults = 1000
)

// NameRef is a QBO entity reference carrying only the display name
type NameRef struct {
	Name string `json:"name"`
}

// SalesItemLineDetail holds the product reference on a sales line
type SalesItemLineDetail struct {
	ItemRef NameRef `json:"ItemRef"`
}

// Line is a single line item on a transaction. Lines without a
// SalesItemLineDetail (subtotals, discounts) carry a nil detail.
type Line struct {
	Amount              float64              `json:"Amount"`
	SalesItemLineDetail *SalesItemLineDetail `json:"SalesItemLineDetail,omitempty"`
}

// Transaction is the subset of a QBO SalesReceipt or Invoice the sales
// pipeline consumes.
type Transaction struct {
	ID          string  `json:"Id"`
	TxnDate     string  `json:"TxnDate"`
	CustomerRef NameRef `json:"CustomerRef"`
	Line        []Line  `json:"Line"`
}

// SecretStore is the subset of the Secret Manager service the QuickBooks
// client needs for refresh token storage.
type SecretStore interface {
	AccessLatest(ctx context.Context, projectID, name string) (string, error)
	AddVersion(ctx context.Context, projectID, name, payload string) error
}

// QuickBooksService talks to the QBO query API. Authentication uses the
// OAuth refresh grant; the refresh token lives in Secret Manager and Intuit
// rotates it on most refreshes, so the rotated value is written back before
// the pipeline proceeds.
type QuickBooksService struct {
	config     QuickBooksConfig
	projectID  string
	baseURL    string
	tokenURL   string
	secrets    SecretStore
	httpClient *http.Client
}

func NewQuickBooksService(config QuickBooksConfig, projectID string, secrets SecretStore) *QuickBooksService {
	baseURL := qboProductionURL
	if config.Environment == "sandbox" {
		baseURL = qboSandboxURL
	}

	return &QuickBooksService{
		config:    config,
		projectID: projectID,
		baseURL:   baseURL,
		tokenURL:  intuitTokenURL,
		secrets:   secrets,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Authenticate exchanges the stored refresh token for an access token.
// When Intuit rotates the refresh token, the new value is persisted as a new
// secret version; a write-back failure is logged but does not abort the run,
// since the access token is already valid for this execution.
func (s *QuickBooksService) Authenticate(ctx context.Context) (string, error) {
	refreshToken, err := s.secrets.AccessLatest(ctx, s.projectID, s.config.SecretName)
	if err != nil {
		return "", fmt.Errorf("failed to retrieve refresh token: %w", err)
	}

	conf := &oauth2.Config{
		ClientID:     s.config.ClientID,
		ClientSecret: s.config.ClientSecret,
		RedirectURL:  s.config.RedirectURI,
		Endpoint: oauth2.Endpoint{
			TokenURL:  s.tokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}

	source := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := source.Token()
	if err != nil {
		return "", fmt.Errorf("quickbooks token refresh failed: %w", err)
	}

	if token.RefreshToken != "" && token.RefreshToken != refreshToken {
		if err := s.secrets.AddVersion(ctx, s.projectID, s.config.SecretName, token.RefreshToken); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("secret", s.config.SecretName).
				Msg("Failed to persist rotated refresh token")
		} else {
			zerolog.Ctx(ctx).Info().Str("secret", s.config.SecretName).
				Msg("Persisted rotated refresh token")
		}
	}

	return token.AccessToken, nil
}

// QueryAll pages through every record of a query entity (SalesReceipt,
// Invoice) using STARTPOSITION/MAXRESULTS until a short page.
func (s *QuickBooksService) QueryAll(ctx context.Context, accessToken, entity string) ([]Transaction, error) {
	logger := zerolog.Ctx(ctx)

	var all []Transaction
	startPosition := 1

	for {
		statement := fmt.Sprintf("SELECT * FROM %s STARTPOSITION %d MAXRESULTS %d", entity, startPosition, qboMaxResults)

		page, err := s.queryPage(ctx, accessToken, entity, statement)
		if err != nil {
			return nil, err
		}

		if len(page) == 0 {
			break
		}

		all = append(all, page...)
		if len(page) < qboMaxResults {
			break
		}

		startPosition += qboMaxResults
		logger.Debug().Str("entity", entity).Int("fetched", len(all)).Msg("Fetching next page")
	}

	logger.Info().Str("entity", entity).Int("count", len(all)).Msg("Extraction complete")
	return all, nil
}

func (s *QuickBooksService) queryPage(ctx context.Context, accessToken, entity, statement string) ([]Transaction, error) {
	endpoint := fmt.Sprintf("%s/v3/company/%s/query", s.baseURL, s.config.CompanyID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build quickbooks request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	query := url.Values{}
	query.Set("query", statement)
	req.URL.RawQuery = query.Encode()

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("quickbooks request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("quickbooks query returned status %d: %s", resp.StatusCode, string(body))
	}

	var envelope struct {
		QueryResponse map[string]json.RawMessage `json:"QueryResponse"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode quickbooks response: %w", err)
	}

	raw, ok := envelope.QueryResponse[entity]
	if !ok {
		return nil, nil
	}

	var page []Transaction
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, fmt.Errorf("failed to decode %s records: %w", entity, err)
	}

	return page, nil
}
