package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/morbeth/home-assistant-pdf-manuals/internal/infrastructure/config"
	"github.com/morbeth/home-assistant-pdf-manuals/internal/infrastructure/logging"
)

// Config holds the client's immutable settings. Build it once with
// NewConfig; the client never mutates it after construction.
type Config struct {
	baseURLs          []string
	token             string
	probeTimeout      time.Duration
	requestTimeout    time.Duration
	minLocationLength int
	stopWords         map[string]struct{}
}

// NewConfig builds a client Config from the application hub settings and
// the bearer token resolved by the caller.
func NewConfig(cfg config.HubConfig, token string) Config {
	stopWords := make(map[string]struct{}, len(cfg.StopWords))
	for _, w := range cfg.StopWords {
		stopWords[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}
	return Config{
		baseURLs:          append([]string(nil), cfg.BaseURLs...),
		token:             token,
		probeTimeout:      time.Duration(cfg.ProbeTimeout) * time.Second,
		requestTimeout:    time.Duration(cfg.RequestTimeout) * time.Second,
		minLocationLength: cfg.MinLocationLength,
		stopWords:         stopWords,
	}
}

// Client talks to the hub API. Safe for concurrent use.
type Client struct {
	cfg     Config
	baseURL string
	http    *http.Client
	logger  *logging.Logger
}

// New creates a client and probes the candidate base URLs in order with a
// GET on the cheap /config sub-resource. The first URL answering 2xx wins.
// If none answer, the first candidate is kept and the client runs degraded;
// every later call will simply come back empty.
func New(ctx context.Context, cfg Config, logger *logging.Logger) *Client {
	c := &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.requestTimeout},
		logger: logger.With("component", "hub"),
	}

	for _, base := range cfg.baseURLs {
		if c.probe(ctx, base) {
			c.baseURL = base
			c.logger.Info("hub base URL selected", "base_url", base)
			return c
		}
	}

	if len(cfg.baseURLs) > 0 {
		c.baseURL = cfg.baseURLs[0]
	}
	c.logger.Warn("no hub base URL reachable, running degraded",
		"candidates", len(cfg.baseURLs))
	return c
}

// BaseURL returns the base URL the client settled on.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// probe checks whether base answers a GET /config within the probe timeout.
func (c *Client) probe(ctx context.Context, base string) bool {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		strings.TrimRight(base, "/")+"/config", nil)
	if err != nil {
		return false
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("hub probe failed", "base_url", base, "error", err)
		return false
	}
	defer resp.Body.Close() //nolint:errcheck
	io.Copy(io.Discard, resp.Body) //nolint:errcheck

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

func (c *Client) authorize(req *http.Request) {
	if c.cfg.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.token)
	}
	req.Header.Set("Accept", "application/json")
}

// getJSON performs a GET against a path under the selected base URL and
// decodes the response body into v.
func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		strings.TrimRight(c.baseURL, "/")+path, nil)
	if err != nil {
		return fmt.Errorf("building request for %s: %w", path, err)
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", path, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		return fmt.Errorf("requesting %s: unexpected status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}
