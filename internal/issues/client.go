package issues

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"pulse-service/internal/config"
	"pulse-service/pkg/sl"

	"github.com/patrickmn/go-cache"
)

const (
	freshKey = "issues"
	staleKey = "issues:last"
)

// Issue is one item of the read-only tracker panel.
type Issue struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	URL    string `json:"html_url"`
	State  string `json:"state"`
}

// Client fetches the issue list for the configured repository and keeps the
// last successful response around: a failed fetch serves the stale copy and
// is simply retried on the next poll, no backoff.
type Client struct {
	log     *slog.Logger
	http    *http.Client
	baseURL string
	owner   string
	repo    string
	cache   *cache.Cache
	ttl     time.Duration
}

func New(log *slog.Logger, cfg config.Issues) *Client {
	return &Client{
		log:     log,
		http:    &http.Client{Timeout: 10 * time.Second},
		baseURL: cfg.BaseURL,
		owner:   cfg.Owner,
		repo:    cfg.Repo,
		cache:   cache.New(cfg.CacheTTL, time.Hour),
		ttl:     cfg.CacheTTL,
	}
}

// Enabled reports whether a repository is configured at all.
func (c *Client) Enabled() bool {
	return c.owner != "" && c.repo != ""
}

// List returns the cached issue list, refreshing it when the fresh entry has
// expired. When the upstream is down the last known list is returned.
func (c *Client) List(ctx context.Context) ([]Issue, error) {
	const op = "issues.Client.List"

	if !c.Enabled() {
		return nil, nil
	}

	if cached, ok := c.cache.Get(freshKey); ok {
		return cached.([]Issue), nil
	}

	list, err := c.fetch(ctx)
	if err != nil {
		if stale, ok := c.cache.Get(staleKey); ok {
			c.log.Warn("Issue fetch failed, serving stale list", sl.Err(err))
			return stale.([]Issue), nil
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	c.cache.Set(freshKey, list, c.ttl)
	c.cache.Set(staleKey, list, cache.NoExpiration)

	return list, nil
}

// Run refreshes the cache every interval until ctx is cancelled. Failures
// are logged and retried on the next period.
func (c *Client) Run(ctx context.Context, interval time.Duration) {
	if !c.Enabled() {
		return
	}

	c.log.Info("Issue poller started", slog.String("interval", interval.String()))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.log.Info("Issue poller stopped")
			return
		case <-ticker.C:
			if _, err := c.List(ctx); err != nil {
				c.log.Error("Issue poll failed", sl.Err(err))
			}
		}
	}
}

func (c *Client) fetch(ctx context.Context) ([]Issue, error) {
	const op = "issues.Client.fetch"

	url := fmt.Sprintf("%s/repos/%s/%s/issues?state=all&per_page=20", c.baseURL, c.owner, c.repo)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: unexpected status %d", op, resp.StatusCode)
	}

	var list []Issue
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return list, nil
}
