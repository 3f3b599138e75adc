package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/0xmhha/explorer-search/internal/constants"
	"gopkg.in/yaml.v3"
)

// Network sources
const (
	SourceSquid = "squid"
	SourceLocal = "local"
)

// Squid types served per network
const (
	SquidArchive  = "archive"
	SquidBalances = "balances"
	SquidExplorer = "explorer"
	SquidMain     = "main"
	SquidStats    = "stats"
)

// SquidTypes lists every squid type a network may expose.
var SquidTypes = []string{SquidArchive, SquidBalances, SquidExplorer, SquidMain, SquidStats}

// Config holds all configuration for the search service
type Config struct {
	Log      LogConfig       `yaml:"log"`
	API      APIConfig       `yaml:"api"`
	Search   SearchConfig    `yaml:"search"`
	Squid    SquidConfig     `yaml:"squid"`
	Storage  StorageConfig   `yaml:"storage"`
	Networks []NetworkConfig `yaml:"networks"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// APIConfig holds API server configuration
type APIConfig struct {
	Host               string        `yaml:"host"`
	Port               int           `yaml:"port"`
	EnableGraphQL      bool          `yaml:"enable_graphql"`
	EnableWebSocket    bool          `yaml:"enable_websocket"`
	EnableCORS         bool          `yaml:"enable_cors"`
	AllowedOrigins     []string      `yaml:"allowed_origins"`
	EnableRateLimit    bool          `yaml:"enable_rate_limit"`
	RateLimitPerSecond float64       `yaml:"rate_limit_per_second"`
	RateLimitBurst     int           `yaml:"rate_limit_burst"`
	WaitTimeout        time.Duration `yaml:"wait_timeout"`
}

// SearchConfig holds aggregation engine settings
type SearchConfig struct {
	// PageSize is the page size of every entity tab
	PageSize int `yaml:"page_size"`
	// MinDisplayTime keeps the searching state visible after a query change
	MinDisplayTime time.Duration `yaml:"min_display_time"`
	// DispatchWorkers is the size of the per-network dispatch pool
	DispatchWorkers int `yaml:"dispatch_workers"`
	// CacheSize is the maximum number of cached per-network pages
	CacheSize int `yaml:"cache_size"`
	// CacheTTL is how long a per-network page stays cached
	CacheTTL time.Duration `yaml:"cache_ttl"`
	// SessionTTL is how long an idle search session is kept
	SessionTTL time.Duration `yaml:"session_ttl"`
	// MaxSessions caps the number of live sessions
	MaxSessions int `yaml:"max_sessions"`
}

// SquidConfig describes how squid GraphQL endpoints are located and called
type SquidConfig struct {
	// URLTemplates maps a squid type to a URL template; "{network}" is replaced
	// by the network name
	URLTemplates map[string]string `yaml:"url_templates"`
	// ForceURLs overrides the template for a network and squid type
	ForceURLs map[string]map[string]string `yaml:"force_urls"`
	// Timeout is the HTTP timeout for one request
	Timeout time.Duration `yaml:"timeout"`
	// RatePerSecond limits requests towards one network
	RatePerSecond float64 `yaml:"rate_per_second"`
	// Burst is the rate limiter burst towards one network
	Burst int `yaml:"burst"`
}

// StorageConfig holds the pebble store used by local networks
type StorageConfig struct {
	Path     string `yaml:"path"`
	ReadOnly bool   `yaml:"readonly"`
	CacheMB  int    `yaml:"cache_mb"`
}

// NetworkConfig defines one searchable network
type NetworkConfig struct {
	// Name is the network name used in links, e.g. "kusama"
	Name string `yaml:"name"`
	// DisplayName is a human-readable name
	DisplayName string `yaml:"display_name"`
	// Source is "squid" (remote GraphQL) or "local" (pebble store)
	Source string `yaml:"source"`
	// Squids overrides individual squid URLs for this network
	Squids map[string]string `yaml:"squids,omitempty"`
	// Disabled hides the network from selection
	Disabled bool `yaml:"disabled"`
	// Fixtures is a JSON file loaded into the store at startup (local only)
	Fixtures string `yaml:"fixtures,omitempty"`
}

// DefaultSquidURLTemplates returns the hosted squid URL layout
func DefaultSquidURLTemplates() map[string]string {
	return map[string]string{
		SquidBalances: "https://squid.subsquid.io/{network}-balances/graphql",
		SquidExplorer: "https://squid.subsquid.io/gs-explorer-{network}/graphql",
		SquidMain:     "https://squid.subsquid.io/gs-main-{network}/graphql",
		SquidStats:    "https://squid.subsquid.io/gs-stats-{network}/graphql",
	}
}

// DefaultSquidForceURLs returns the per-network squid URL overrides
func DefaultSquidForceURLs() map[string]map[string]string {
	return map[string]map[string]string{
		"kusama": {
			SquidStats: "https://squid.subsquid.io/chain-analytics-squid/v/kusama-multi-parallel-2-0/graphql",
		},
		"polkadot": {
			SquidStats: "https://squid.subsquid.io/chain-analytics-squid/v/polkadot-multi-parallel-2-0/graphql",
		},
	}
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	cfg := &Config{}
	cfg.SetDefaults()
	return cfg
}

// SetDefaults sets default values for the configuration
func (c *Config) SetDefaults() {
	// Log defaults
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}

	// API defaults
	if c.API.Host == "" {
		c.API.Host = constants.DefaultAPIHost
	}
	if c.API.Port == 0 {
		c.API.Port = constants.DefaultAPIPort
	}
	if c.API.AllowedOrigins == nil {
		c.API.AllowedOrigins = []string{"*"}
	}
	if c.API.RateLimitPerSecond == 0 {
		c.API.RateLimitPerSecond = constants.DefaultRateLimitPerSecond
	}
	if c.API.RateLimitBurst == 0 {
		c.API.RateLimitBurst = constants.DefaultRateLimitBurst
	}
	if c.API.WaitTimeout == 0 {
		c.API.WaitTimeout = constants.DefaultWaitTimeout
	}

	// Search defaults
	if c.Search.PageSize == 0 {
		c.Search.PageSize = constants.DefaultPageSize
	}
	if c.Search.MinDisplayTime == 0 {
		c.Search.MinDisplayTime = constants.DefaultMinDisplayTime
	}
	if c.Search.DispatchWorkers == 0 {
		c.Search.DispatchWorkers = constants.DefaultDispatchWorkers
	}
	if c.Search.CacheSize == 0 {
		c.Search.CacheSize = constants.DefaultResponseCacheSize
	}
	if c.Search.CacheTTL == 0 {
		c.Search.CacheTTL = constants.DefaultResponseCacheTTL
	}
	if c.Search.SessionTTL == 0 {
		c.Search.SessionTTL = constants.DefaultSessionTTL
	}
	if c.Search.MaxSessions == 0 {
		c.Search.MaxSessions = constants.DefaultMaxSessions
	}

	// Squid defaults
	if c.Squid.URLTemplates == nil {
		c.Squid.URLTemplates = DefaultSquidURLTemplates()
	}
	if c.Squid.ForceURLs == nil {
		c.Squid.ForceURLs = DefaultSquidForceURLs()
	}
	if c.Squid.Timeout == 0 {
		c.Squid.Timeout = constants.DefaultSquidTimeout
	}
	if c.Squid.RatePerSecond == 0 {
		c.Squid.RatePerSecond = constants.DefaultSquidRatePerSecond
	}
	if c.Squid.Burst == 0 {
		c.Squid.Burst = constants.DefaultSquidBurst
	}

	// Storage defaults
	if c.Storage.CacheMB == 0 {
		c.Storage.CacheMB = constants.DefaultStorageCacheMB
	}

	// Network defaults
	for i := range c.Networks {
		if c.Networks[i].Source == "" {
			c.Networks[i].Source = SourceSquid
		}
		if c.Networks[i].DisplayName == "" {
			c.Networks[i].DisplayName = c.Networks[i].Name
		}
	}
}

// LoadFromEnv loads configuration from environment variables
// Environment variables take precedence over file configuration
func (c *Config) LoadFromEnv() error {
	// Log configuration
	if level := os.Getenv("EXPLORER_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	if format := os.Getenv("EXPLORER_LOG_FORMAT"); format != "" {
		c.Log.Format = format
	}

	// API configuration
	if host := os.Getenv("EXPLORER_API_HOST"); host != "" {
		c.API.Host = host
	}
	if port := os.Getenv("EXPLORER_API_PORT"); port != "" {
		val, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid EXPLORER_API_PORT: %w", err)
		}
		c.API.Port = val
	}
	if enableGraphQL := os.Getenv("EXPLORER_API_GRAPHQL"); enableGraphQL != "" {
		val, err := strconv.ParseBool(enableGraphQL)
		if err != nil {
			return fmt.Errorf("invalid EXPLORER_API_GRAPHQL: %w", err)
		}
		c.API.EnableGraphQL = val
	}
	if enableWebSocket := os.Getenv("EXPLORER_API_WEBSOCKET"); enableWebSocket != "" {
		val, err := strconv.ParseBool(enableWebSocket)
		if err != nil {
			return fmt.Errorf("invalid EXPLORER_API_WEBSOCKET: %w", err)
		}
		c.API.EnableWebSocket = val
	}
	if rateLimit := os.Getenv("EXPLORER_API_RATE_LIMIT"); rateLimit != "" {
		val, err := strconv.ParseFloat(rateLimit, 64)
		if err != nil {
			return fmt.Errorf("invalid EXPLORER_API_RATE_LIMIT: %w", err)
		}
		c.API.EnableRateLimit = val > 0
		c.API.RateLimitPerSecond = val
	}

	// Search configuration
	if pageSize := os.Getenv("EXPLORER_SEARCH_PAGE_SIZE"); pageSize != "" {
		val, err := strconv.Atoi(pageSize)
		if err != nil {
			return fmt.Errorf("invalid EXPLORER_SEARCH_PAGE_SIZE: %w", err)
		}
		c.Search.PageSize = val
	}
	if minDisplay := os.Getenv("EXPLORER_SEARCH_MIN_DISPLAY_TIME"); minDisplay != "" {
		duration, err := time.ParseDuration(minDisplay)
		if err != nil {
			return fmt.Errorf("invalid EXPLORER_SEARCH_MIN_DISPLAY_TIME: %w", err)
		}
		c.Search.MinDisplayTime = duration
	}
	if workers := os.Getenv("EXPLORER_SEARCH_WORKERS"); workers != "" {
		val, err := strconv.Atoi(workers)
		if err != nil {
			return fmt.Errorf("invalid EXPLORER_SEARCH_WORKERS: %w", err)
		}
		c.Search.DispatchWorkers = val
	}

	// Squid configuration
	if timeout := os.Getenv("EXPLORER_SQUID_TIMEOUT"); timeout != "" {
		duration, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid EXPLORER_SQUID_TIMEOUT: %w", err)
		}
		c.Squid.Timeout = duration
	}

	// Storage configuration
	if path := os.Getenv("EXPLORER_STORAGE_PATH"); path != "" {
		c.Storage.Path = path
	}

	// EXPLORER_NETWORKS adds squid networks that are not configured yet
	if names := os.Getenv("EXPLORER_NETWORKS"); names != "" {
		c.AddNetworks(strings.Split(names, ","))
	}

	return nil
}

// AddNetworks appends squid networks by name, skipping ones already configured
func (c *Config) AddNetworks(names []string) {
	known := make(map[string]bool, len(c.Networks))
	for _, n := range c.Networks {
		known[n.Name] = true
	}
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || known[name] {
			continue
		}
		known[name] = true
		c.Networks = append(c.Networks, NetworkConfig{
			Name:        name,
			DisplayName: name,
			Source:      SourceSquid,
		})
	}
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.Log.Level] {
		return fmt.Errorf("invalid log level %q, must be one of: debug, info, warn, error", c.Log.Level)
	}

	validLogFormats := map[string]bool{
		"json":    true,
		"console": true,
	}
	if !validLogFormats[c.Log.Format] {
		return fmt.Errorf("invalid log format %q, must be one of: json, console", c.Log.Format)
	}

	if c.API.Port < constants.MinPort || c.API.Port > constants.MaxPort {
		return fmt.Errorf("api port must be between %d and %d", constants.MinPort, constants.MaxPort)
	}

	if c.Search.PageSize <= 0 || c.Search.PageSize > constants.MaxPageSize {
		return fmt.Errorf("page size must be between 1 and %d", constants.MaxPageSize)
	}
	if c.Search.MinDisplayTime < 0 {
		return fmt.Errorf("min display time cannot be negative")
	}
	if c.Search.DispatchWorkers <= 0 {
		return fmt.Errorf("dispatch workers must be positive")
	}
	if c.Search.CacheSize <= 0 {
		return fmt.Errorf("cache size must be positive")
	}

	if c.Squid.Timeout <= 0 {
		return fmt.Errorf("squid timeout must be positive")
	}

	if len(c.Networks) == 0 {
		return fmt.Errorf("at least one network is required")
	}
	seen := make(map[string]bool, len(c.Networks))
	needsStorage := false
	for _, n := range c.Networks {
		if n.Name == "" {
			return fmt.Errorf("network name is required")
		}
		if seen[n.Name] {
			return fmt.Errorf("duplicate network %q", n.Name)
		}
		seen[n.Name] = true

		switch n.Source {
		case SourceSquid:
		case SourceLocal:
			needsStorage = true
		default:
			return fmt.Errorf("invalid source %q for network %q, must be one of: squid, local", n.Source, n.Name)
		}
	}
	if needsStorage && c.Storage.Path == "" {
		return fmt.Errorf("storage path is required when a local network is configured")
	}

	return nil
}

// Load is a convenience method that loads configuration in the following order:
// 1. Load from file (if provided)
// 2. Load from environment variables (override file)
// 3. Set defaults for missing values
// 4. Validate
func Load(configFile string) (*Config, error) {
	cfg := &Config{}

	if configFile != "" {
		if err := cfg.LoadFromFile(configFile); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := cfg.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}

	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
