// Package banner fetches the promotional banner shown on the landing page.
package banner

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/alrashid-edu/portal/core"
)

const (
	cacheKey = "portal:banner"
	cacheTTL = 5 * time.Minute
)

// Client fetches the banner image path from the upstream API, with a short
// redis cache in front; a nil redis client disables caching.
type Client struct {
	baseURL string
	client  *http.Client
	cache   *redis.Client
	logger  core.Logger
}

type payload struct {
	Data struct {
		Image string `json:"image"`
	} `json:"data"`
}

func NewClient(baseURL string, client *http.Client, cache *redis.Client, logger core.Logger) *Client {
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{baseURL: baseURL, client: client, cache: cache, logger: logger}
}

// Get returns the current banner image path.
func (c *Client) Get(ctx context.Context) (string, error) {
	if c.cache != nil {
		if image, err := c.cache.Get(ctx, cacheKey).Result(); err == nil && image != "" {
			return image, nil
		} else if err != nil && err != redis.Nil {
			c.logger.Warn("banner cache read failed", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/banner/get-banner", nil)
	if err != nil {
		return "", errors.Wrap(err, "building banner request")
	}
	res, err := c.client.Do(req)
	if err != nil {
		return "", &core.TransportError{Op: "banner.get", Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return "", &core.TransportError{Op: "banner.get", StatusCode: res.StatusCode}
	}

	var body payload
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return "", &core.TransportError{Op: "banner.get", Err: errors.Wrap(err, "decoding response")}
	}

	if c.cache != nil && body.Data.Image != "" {
		if err := c.cache.Set(ctx, cacheKey, body.Data.Image, cacheTTL).Err(); err != nil {
			c.logger.Warn("banner cache write failed", err)
		}
	}
	return body.Data.Image, nil
}
