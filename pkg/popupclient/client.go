package popupclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// ErrUnavailable is returned when the popup service cannot be reached and no
// cached list exists to fall back on.
var ErrUnavailable = errors.New("popup service unavailable")

const (
	defaultTimeout  = 10 * time.Second
	defaultCacheTTL = 30 * time.Second
)

// Client talks to the popup HTTP surface. Fetches carry an explicit timeout
// and the decoded list is cached with a TTL; on a transient failure the stale
// cache is served so popup presentation degrades instead of breaking.
type Client struct {
	baseURL  string
	http     *http.Client
	cacheTTL time.Duration

	mu        sync.Mutex
	cached    []Popup
	cachedAt  time.Time
	haveCache bool

	now func() time.Time
}

func NewClient(baseURL string, timeout, cacheTTL time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if cacheTTL <= 0 {
		cacheTTL = defaultCacheTTL
	}
	return &Client{
		baseURL:  baseURL,
		http:     &http.Client{Timeout: timeout},
		cacheTTL: cacheTTL,
		now:      time.Now,
	}
}

// FetchPopups returns the server-reconciled popup list, from cache while it
// is fresh.
func (c *Client) FetchPopups(ctx context.Context) ([]Popup, error) {
	c.mu.Lock()
	if c.haveCache && c.now().Sub(c.cachedAt) < c.cacheTTL {
		cached := copyPopups(c.cached)
		c.mu.Unlock()
		return cached, nil
	}
	c.mu.Unlock()

	popups, err := c.fetchPopups(ctx)
	if err != nil {
		// Serve the last known list rather than failing the caller.
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.haveCache {
			return copyPopups(c.cached), nil
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	c.mu.Lock()
	c.cached = popups
	c.cachedAt = c.now()
	c.haveCache = true
	cached := copyPopups(c.cached)
	c.mu.Unlock()

	return cached, nil
}

func (c *Client) fetchPopups(ctx context.Context) ([]Popup, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/popups", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var payload struct {
		Success bool    `json:"success"`
		Popups  []Popup `json:"popups"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode popup list: %w", err)
	}
	if !payload.Success {
		return nil, errors.New("server reported failure")
	}

	return payload.Popups, nil
}

// SubmitSurveyResponse records one survey choice on the server.
func (c *Client) SubmitSurveyResponse(ctx context.Context, popupID uint, surveyID string, itemIndex int) error {
	body := map[string]interface{}{
		"surveyId":          surveyID,
		"selectedItemIndex": itemIndex,
	}
	url := fmt.Sprintf("%s/api/popups/%d/survey-responses", c.baseURL, popupID)
	return c.post(ctx, http.MethodPost, url, body)
}

// Toggle flips a popup's enabled flag on the server (admin shells only).
func (c *Client) Toggle(ctx context.Context, popupID uint, enabled bool) error {
	body := map[string]interface{}{"enabled": enabled}
	url := fmt.Sprintf("%s/api/popups/%d/toggle", c.baseURL, popupID)
	return c.post(ctx, http.MethodPut, url, body)
}

func (c *Client) post(ctx context.Context, method, url string, body map[string]interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errBody); decodeErr == nil && errBody.Error != "" {
			return fmt.Errorf("%s (status %d)", errBody.Error, resp.StatusCode)
		}
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return nil
}

func copyPopups(popups []Popup) []Popup {
	copied := make([]Popup, len(popups))
	copy(copied, popups)
	return copied
}
