package squid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/0xmhha/explorer-search/internal/constants"
)

// maxResponseSize bounds how much of a squid response is read
const maxResponseSize = 8 << 20

// Config holds squid client configuration
type Config struct {
	// Timeout bounds each HTTP request
	Timeout time.Duration
	// RatePerSecond limits requests per squid endpoint; zero disables limiting
	RatePerSecond float64
	// Burst is the limiter bucket size
	Burst int
	// UserAgent is sent with every request
	UserAgent string
}

// DefaultConfig returns the default squid client configuration
func DefaultConfig() *Config {
	return &Config{
		Timeout:       constants.DefaultSquidTimeout,
		RatePerSecond: constants.DefaultSquidRatePerSecond,
		Burst:         constants.DefaultSquidBurst,
		UserAgent:     "explorer-search/1.0",
	}
}

type request struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type response struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []GraphQLError             `json:"errors,omitempty"`
}

// Client posts GraphQL queries to squid endpoints. Identical concurrent
// requests share one round trip and each endpoint has its own rate limit.
type Client struct {
	config *Config
	http   *http.Client
	logger *zap.Logger
	group  singleflight.Group

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewClient creates a new squid client
func NewClient(config *Config, logger *zap.Logger) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		config: config,
		http: &http.Client{
			Timeout: config.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 16,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger:   logger.Named("squid"),
		limiters: make(map[string]*rate.Limiter),
	}
}

// Query runs a GraphQL query against url and returns the raw value of the
// named root field.
func (c *Client) Query(ctx context.Context, url, query string, variables map[string]interface{}, field string) (json.RawMessage, error) {
	body, err := json.Marshal(request{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	key := url + "\x00" + string(body)
	v, err, shared := c.group.Do(key, func() (interface{}, error) {
		return c.post(ctx, url, body)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.logger.Debug("squid request shared", zap.String("url", url), zap.String("field", field))
	}

	data := v.(map[string]json.RawMessage)
	raw, ok := data[field]
	if !ok || len(raw) == 0 || string(raw) == "null" {
		return nil, fmt.Errorf("%w: field %q", ErrMissingData, field)
	}
	return raw, nil
}

func (c *Client) post(ctx context.Context, url string, body []byte) (map[string]json.RawMessage, error) {
	if err := c.limiter(url).Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limit: %v", ErrRequestFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrRequestFailed, err)
	}

	c.logger.Debug("squid request",
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s returned %d", ErrBadStatus, url, resp.StatusCode)
	}

	var out response
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrRequestFailed, err)
	}
	if len(out.Errors) > 0 {
		return nil, &ResponseError{URL: url, Errors: out.Errors}
	}
	if out.Data == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingData, url)
	}
	return out.Data, nil
}

func (c *Client) limiter(url string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, ok := c.limiters[url]
	if !ok {
		limit := rate.Inf
		if c.config.RatePerSecond > 0 {
			limit = rate.Limit(c.config.RatePerSecond)
		}
		burst := c.config.Burst
		if burst <= 0 {
			burst = 1
		}
		l = rate.NewLimiter(limit, burst)
		c.limiters[url] = l
	}
	return l
}
