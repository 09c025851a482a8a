package unsplash

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/shutter/internal/domain"
)

const (
	DefaultBaseURL = "https://api.unsplash.com"

	defaultTimeout = 30 * time.Second
	maxPerPage     = 30
	maxRetries     = 3
	baseRetryDelay = 500 * time.Millisecond
)

// Client implements domain.PhotoSource for the Unsplash API
type Client struct {
	baseURL    string
	accessKey  string
	httpClient *http.Client
	logger     *slog.Logger
	retryDelay time.Duration
}

// NewClient creates a new Unsplash API client
func NewClient(baseURL, accessKey string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		accessKey: accessKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:     logger,
		retryDelay: baseRetryDelay,
	}
}

// doRequest performs an authenticated GET against the API.
// Includes retry logic with exponential backoff for 5xx server errors.
func (c *Client) doRequest(ctx context.Context, reqURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if attempt > 0 {
			delay := c.retryDelay * time.Duration(1<<(attempt-1)) // 500ms, 1s, 2s
			c.logger.Debug("retrying request", "attempt", attempt, "delay", delay, "url", reqURL)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Accept-Version", "v1")
		req.Header.Set("Authorization", "Client-ID "+c.accessKey)

		c.logger.Debug("unsplash request", "url", reqURL, "attempt", attempt)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.logger.Error("unsplash request failed", "error", err)
			return nil, fmt.Errorf("%w: %v", domain.ErrServerOffline, err)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}

		// Unsplash reports an exhausted quota as 403 with a zero remaining header
		if resp.StatusCode == http.StatusTooManyRequests ||
			(resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-Ratelimit-Remaining") == "0") {
			c.logger.Warn("unsplash rate limit reached", "status", resp.StatusCode)
			return nil, domain.ErrRateLimited
		}

		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return nil, fmt.Errorf("%w: %s", domain.ErrAuthFailed, apiError(body, resp.StatusCode))
		}

		if resp.StatusCode >= 500 && resp.StatusCode < 600 {
			lastErr = fmt.Errorf("server error: %d - %s", resp.StatusCode, apiError(body, resp.StatusCode))
			c.logger.Warn("unsplash server error, will retry",
				"status", resp.StatusCode,
				"attempt", attempt,
				"maxRetries", maxRetries,
				"url", reqURL,
			)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			c.logger.Error("unsplash request error", "status", resp.StatusCode, "body", string(body))
			return nil, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, apiError(body, resp.StatusCode))
		}

		return body, nil
	}

	c.logger.Error("unsplash request failed after retries", "error", lastErr, "url", reqURL)
	return nil, fmt.Errorf("%w: %v", domain.ErrServerOffline, lastErr)
}

// apiError extracts the API's error messages, falling back to the status text
func apiError(body []byte, status int) string {
	var e ErrorResponse
	if err := json.Unmarshal(body, &e); err == nil && len(e.Errors) > 0 {
		return strings.Join(e.Errors, "; ")
	}
	return http.StatusText(status)
}

// SearchPhotos returns one page of photos matching query
func (c *Client) SearchPhotos(ctx context.Context, query string, page, perPage int, opts domain.SearchOptions) (*domain.SearchPage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrEmptyQuery
	}
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 1
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(perPage))
	if opts.Orientation != "" {
		params.Set("orientation", opts.Orientation)
	}
	if opts.ContentFilter != "" {
		params.Set("content_filter", opts.ContentFilter)
	}

	body, err := c.doRequest(ctx, c.baseURL+"/search/photos?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var resp SearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	if resp.Results == nil {
		return nil, fmt.Errorf("%w: missing results", domain.ErrMalformedResponse)
	}

	return MapSearchPage(resp), nil
}

// TrackDownload hits the photo's download_location, which the API guidelines
// require whenever a photo is used.
func (c *Client) TrackDownload(ctx context.Context, photo domain.Photo) error {
	loc := photo.Links.DownloadLocation
	if loc == "" {
		loc = fmt.Sprintf("%s/photos/%s/download", c.baseURL, url.PathEscape(photo.ID))
	}

	u, err := url.Parse(loc)
	if err != nil {
		return fmt.Errorf("invalid download location: %w", err)
	}
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Host != base.Host {
		return errors.New("download location does not belong to the API host")
	}

	body, err := c.doRequest(ctx, u.String())
	if err != nil {
		return err
	}

	var resp DownloadResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	c.logger.Debug("download tracked", "photoID", photo.ID)
	return nil
}
