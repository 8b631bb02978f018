package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultBaseURL is the production YouTube Data API v3 endpoint.
const DefaultBaseURL = "https://www.googleapis.com/youtube/v3"

// DefaultSearchLimit caps search results when the caller does not ask for a
// specific amount.
const DefaultSearchLimit = 5

// ErrNoResults is returned by FetchVideo when the API answers successfully
// but the response contains zero items, i.e. the id does not identify an
// existing video.
var ErrNoResults = errors.New("youtube: no results")

// Client calls the YouTube Data API v3 with an injected key. The zero value
// is not usable; construct it with New.
type Client struct {
	key     string
	baseURL string
	http    *http.Client
}

// New builds a Client. The key comes from configuration; timeout bounds
// every outbound call and is treated as an upstream failure when exceeded.
func New(key string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		key:     key,
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// WithBaseURL overrides the API endpoint. Used by tests to point the client
// at a local server.
func (c *Client) WithBaseURL(base string) *Client {
	c.baseURL = base
	return c
}

// snippet is the subset of the API's snippet part this service reads.
type snippet struct {
	Title string `json:"title"`
}

type videoListResponse struct {
	Items []struct {
		Snippet snippet `json:"snippet"`
	} `json:"items"`
}

// FetchVideo requests metadata for a single video id and returns its title.
// Zero result items map to ErrNoResults; transport failures and non-2xx
// statuses are returned as wrapped upstream errors.
func (c *Client) FetchVideo(ctx context.Context, id string) (string, error) {
	q := url.Values{}
	q.Set("part", "snippet")
	q.Set("id", id)
	q.Set("key", c.key)

	body, err := c.get(ctx, "/videos", q)
	if err != nil {
		return "", err
	}
	var out videoListResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("youtube: decode videos response: %w", err)
	}
	if len(out.Items) == 0 {
		return "", ErrNoResults
	}
	return out.Items[0].Snippet.Title, nil
}

// Search runs a free-text search and returns the upstream payload verbatim,
// preserving the API's relevance ordering. limit values outside 1..50 fall
// back to DefaultSearchLimit.
func (c *Client) Search(ctx context.Context, term string, limit int) (json.RawMessage, error) {
	if limit < 1 || limit > 50 {
		limit = DefaultSearchLimit
	}
	q := url.Values{}
	q.Set("part", "snippet")
	q.Set("maxResults", strconv.Itoa(limit))
	q.Set("q", term)
	q.Set("key", c.key)

	return c.get(ctx, "/search", q)
}

// get performs one API call and returns the raw response body.
func (c *Client) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("youtube: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("youtube: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("youtube: upstream status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("youtube: read response: %w", err)
	}
	return body, nil
}
