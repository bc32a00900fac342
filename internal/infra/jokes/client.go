// Package jokes fetches the one-line dad joke appended to notifications.
// Entirely best effort: every failure path degrades to an empty string.
package jokes

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
)

const defaultBaseURL = "https://icanhazdadjoke.com"

// Client fetches a random joke. Satisfies the app's AsideProvider.
type Client struct {
	http *resty.Client
}

// NewClient builds a joke client. baseURL is overridable for tests; pass ""
// for the real service.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	http := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "bin-collection-notifier (admin contact via repo)")
	return &Client{http: http}
}

// FetchOne returns one joke. The caller supplies the time box through ctx.
func (c *Client) FetchOne(ctx context.Context) (string, error) {
	var out struct {
		Joke string `json:"joke"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/")
	if err != nil {
		return "", fmt.Errorf("fetching joke: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("joke service returned %s", resp.Status())
	}
	return out.Joke, nil
}
