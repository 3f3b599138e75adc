package api

import (
	"errors"
	"fmt"
	"time"

	"github.com/0xmhha/explorer-search/internal/config"
	"github.com/0xmhha/explorer-search/internal/constants"
)

// Config holds API server configuration
type Config struct {
	// Host is the server host (default: localhost)
	Host string

	// Port is the server port (default: 8080)
	Port int

	// ReadTimeout is the maximum duration for reading the entire request
	ReadTimeout time.Duration

	// WriteTimeout is the maximum duration before timing out writes.
	// It must exceed WaitTimeout for waiting searches to answer.
	WriteTimeout time.Duration

	// IdleTimeout is the maximum duration to wait for the next request
	IdleTimeout time.Duration

	// EnableCORS enables CORS headers
	EnableCORS bool

	// AllowedOrigins is a list of allowed CORS and stream origins
	AllowedOrigins []string

	// MaxHeaderBytes is the maximum size of request headers
	MaxHeaderBytes int

	// EnableGraphQL enables the GraphQL API and playground
	EnableGraphQL bool

	// EnableWebSocket enables search streams
	EnableWebSocket bool

	GraphQLPath           string
	GraphQLPlaygroundPath string
	SearchPath            string
	SearchStreamPath      string

	// ShutdownTimeout is the graceful shutdown timeout
	ShutdownTimeout time.Duration

	// EnableRateLimit enables per-IP rate limiting
	EnableRateLimit    bool
	RateLimitPerSecond float64
	RateLimitBurst     int

	// WaitTimeout bounds how long a waiting search blocks
	WaitTimeout time.Duration
}

// DefaultConfig returns a default API server configuration
func DefaultConfig() *Config {
	return &Config{
		Host:                  constants.DefaultAPIHost,
		Port:                  constants.DefaultAPIPort,
		ReadTimeout:           constants.DefaultReadTimeout,
		WriteTimeout:          constants.DefaultWriteTimeout,
		IdleTimeout:           constants.DefaultIdleTimeout,
		EnableCORS:            true,
		AllowedOrigins:        []string{"*"},
		MaxHeaderBytes:        constants.DefaultMaxHeaderBytes,
		EnableGraphQL:         true,
		EnableWebSocket:       true,
		GraphQLPath:           constants.DefaultGraphQLPath,
		GraphQLPlaygroundPath: constants.DefaultGraphQLPlaygroundPath,
		SearchPath:            constants.DefaultSearchPath,
		SearchStreamPath:      constants.DefaultSearchStreamPath,
		ShutdownTimeout:       constants.DefaultShutdownTimeout,
		RateLimitPerSecond:    constants.DefaultRateLimitPerSecond,
		RateLimitBurst:        constants.DefaultRateLimitBurst,
		WaitTimeout:           constants.DefaultWaitTimeout,
	}
}

// FromConfig applies the api section of the service configuration
func FromConfig(c config.APIConfig) *Config {
	cfg := DefaultConfig()
	if c.Host != "" {
		cfg.Host = c.Host
	}
	if c.Port != 0 {
		cfg.Port = c.Port
	}
	cfg.EnableGraphQL = c.EnableGraphQL
	cfg.EnableWebSocket = c.EnableWebSocket
	cfg.EnableCORS = c.EnableCORS
	if len(c.AllowedOrigins) > 0 {
		cfg.AllowedOrigins = c.AllowedOrigins
	}
	cfg.EnableRateLimit = c.EnableRateLimit
	if c.RateLimitPerSecond > 0 {
		cfg.RateLimitPerSecond = c.RateLimitPerSecond
	}
	if c.RateLimitBurst > 0 {
		cfg.RateLimitBurst = c.RateLimitBurst
	}
	if c.WaitTimeout > 0 {
		cfg.WaitTimeout = c.WaitTimeout
	}
	if cfg.WriteTimeout <= cfg.WaitTimeout {
		cfg.WriteTimeout = cfg.WaitTimeout + 5*time.Second
	}
	return cfg
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Host == "" {
		return errors.New("host cannot be empty")
	}
	if c.Port < constants.MinPort || c.Port > constants.MaxPort {
		return fmt.Errorf("port must be between %d and %d", constants.MinPort, constants.MaxPort)
	}
	if c.ReadTimeout <= 0 {
		return errors.New("read timeout must be positive")
	}
	if c.WriteTimeout <= 0 {
		return errors.New("write timeout must be positive")
	}
	if c.IdleTimeout <= 0 {
		return errors.New("idle timeout must be positive")
	}
	if c.MaxHeaderBytes <= 0 {
		return errors.New("max header bytes must be positive")
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("shutdown timeout must be positive")
	}
	if c.WaitTimeout <= 0 {
		return errors.New("wait timeout must be positive")
	}
	if c.SearchPath == "" {
		return errors.New("search path cannot be empty")
	}
	if c.EnableRateLimit && (c.RateLimitPerSecond <= 0 || c.RateLimitBurst <= 0) {
		return errors.New("rate limit and burst must be positive")
	}
	return nil
}

// Address returns the server address in host:port format
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
