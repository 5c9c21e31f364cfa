package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// WordPressService is a minimal WordPress REST API client. The learndash
// pipeline only needs user counts, which the API reports in the X-WP-Total
// header without paging through results.
type WordPressService struct {
	baseURL    string
	user       string
	password   string
	httpClient *http.Client
}

func NewWordPressService(config WordPressConfig) *WordPressService {
	return &WordPressService{
		baseURL:  strings.TrimRight(config.URL, "/"),
		user:     config.User,
		password: config.Password,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// CountUsers returns the total number of users with the given role.
// Requests a single result per page; the total comes from the header.
func (s *WordPressService) CountUsers(ctx context.Context, role string) (int, error) {
	endpoint := s.baseURL + "/wp-json/wp/v2/users"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build wordpress request: %w", err)
	}
	req.SetBasicAuth(s.user, s.password)

	query := url.Values{}
	query.Set("roles", role)
	query.Set("per_page", "1")
	req.URL.RawQuery = query.Encode()

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("wordpress request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return 0, fmt.Errorf("wordpress returned status %d: %s", resp.StatusCode, string(body))
	}

	total := resp.Header.Get("X-WP-Total")
	if total == "" {
		return 0, nil
	}

	count, err := strconv.Atoi(total)
	if err != nil {
		return 0, fmt.Errorf("invalid X-WP-Total header %q: %w", total, err)
	}

	return count, nil
}
