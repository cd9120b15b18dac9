// Package imagelookup resolves anime cover images through the Jikan API.
//
// Lookups are capped at a small number of concurrent requests, identical
// in-flight lookups are merged, and successful results are cached for the
// life of the process. Failures are never cached and never fatal: callers get
// an empty URL and present the round as text.
package imagelookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"
)

var errRateLimited = errors.New("jikan rate limit")

type Client struct {
	baseURL   string
	http      *http.Client
	sem       *semaphore.Weighted
	group     singleflight.Group
	retries   int
	retryWait time.Duration
	logger    *slog.Logger

	mu    sync.RWMutex
	cache map[int]string
}

// New creates a client. retries bounds how often a rate-limited request is
// repeated.
func New(baseURL string, concurrency int, timeout time.Duration, retries int, logger *slog.Logger) *Client {
	return &Client{
		baseURL:   baseURL,
		http:      &http.Client{Timeout: timeout},
		sem:       semaphore.NewWeighted(int64(concurrency)),
		retries:   retries,
		retryWait: 2 * time.Second,
		logger:    logger,
		cache:     make(map[int]string),
	}
}

// ImageURL returns the large cover image for malID, or "" if it cannot be
// resolved.
func (c *Client) ImageURL(ctx context.Context, malID int) string {
	c.mu.RLock()
	url, ok := c.cache[malID]
	c.mu.RUnlock()
	if ok {
		return url
	}

	// Merged callers share one lookup; only the client timeout bounds it.
	fetchCtx := context.WithoutCancel(ctx)
	v, err, _ := c.group.Do(strconv.Itoa(malID), func() (any, error) {
		url, err := c.fetch(fetchCtx, malID)
		if err != nil {
			return "", err
		}
		c.mu.Lock()
		c.cache[malID] = url
		c.mu.Unlock()
		return url, nil
	})
	if err != nil {
		c.logger.Warn("image lookup failed", "mal_id", malID, "error", err)
		return ""
	}
	return v.(string)
}

// Cached reports how many images are cached.
func (c *Client) Cached() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

type animeResponse struct {
	Data struct {
		Images struct {
			JPG struct {
				LargeImageURL string `json:"large_image_url"`
			} `json:"jpg"`
		} `json:"images"`
	} `json:"data"`
}

func (c *Client) fetch(ctx context.Context, malID int) (string, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer c.sem.Release(1)

	for attempt := 0; ; attempt++ {
		url, err := c.get(ctx, malID)
		if !errors.Is(err, errRateLimited) || attempt >= c.retries {
			return url, err
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(c.retryWait):
		}
	}
}

func (c *Client) get(ctx context.Context, malID int) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/anime/%d", c.baseURL, malID), nil)
	if err != nil {
		return "", fmt.Errorf("build jikan request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("jikan request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		return "", errRateLimited
	default:
		return "", fmt.Errorf("jikan returned %s", resp.Status)
	}

	var body animeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode jikan response: %w", err)
	}
	url := body.Data.Images.JPG.LargeImageURL
	if url == "" {
		return "", errors.New("jikan response has no image")
	}
	return url, nil
}
