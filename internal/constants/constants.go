package constants

import "time"

// API Server Constants
const (
	// DefaultAPIHost is the default API server host
	DefaultAPIHost = "localhost"

	// DefaultAPIPort is the default API server port
	DefaultAPIPort = 8080

	// MinPort is the minimum valid port number
	MinPort = 1

	// MaxPort is the maximum valid port number
	MaxPort = 65535

	// DefaultReadTimeout is the default HTTP read timeout
	DefaultReadTimeout = 15 * time.Second

	// DefaultWriteTimeout is the default HTTP write timeout
	DefaultWriteTimeout = 30 * time.Second

	// DefaultIdleTimeout is the default HTTP idle timeout
	DefaultIdleTimeout = 60 * time.Second

	// DefaultShutdownTimeout is the default graceful shutdown timeout
	DefaultShutdownTimeout = 30 * time.Second

	// DefaultMaxHeaderBytes is the default maximum request header size (1 MB)
	DefaultMaxHeaderBytes = 1 << 20

	// DefaultRateLimitPerSecond is the default rate limit (requests per second)
	DefaultRateLimitPerSecond = 100

	// DefaultRateLimitBurst is the default rate limit burst size
	DefaultRateLimitBurst = 200

	// DefaultWaitTimeout bounds how long a blocking search request waits for settlement
	DefaultWaitTimeout = 20 * time.Second
)

// API Paths
const (
	DefaultGraphQLPath           = "/graphql"
	DefaultGraphQLPlaygroundPath = "/playground"
	DefaultSearchPath            = "/search"
	DefaultSearchStreamPath      = "/search/ws"
)

// Search Constants
const (
	// DefaultPageSize is the page size used for every entity tab
	DefaultPageSize = 10

	// MaxPageSize caps page sizes accepted from callers
	MaxPageSize = 100

	// MaxPage caps page numbers so page*pageSize windows stay small
	MaxPage = 10000

	// DefaultMinDisplayTime keeps the searching state visible after a query change
	DefaultMinDisplayTime = time.Second

	// DefaultDispatchWorkers is the size of the per-network dispatch pool
	DefaultDispatchWorkers = 64

	// DefaultResponseCacheSize is the maximum number of cached per-network pages
	DefaultResponseCacheSize = 4096

	// DefaultResponseCacheTTL is how long a per-network page stays cached
	DefaultResponseCacheTTL = 30 * time.Second

	// DefaultSessionTTL is how long an idle search session is kept
	DefaultSessionTTL = 15 * time.Minute

	// DefaultMaxSessions caps the number of live search sessions
	DefaultMaxSessions = 10000
)

// Squid Client Constants
const (
	// DefaultSquidTimeout is the HTTP timeout for one squid GraphQL request
	DefaultSquidTimeout = 10 * time.Second

	// DefaultSquidRatePerSecond is the per-network request rate towards squids
	DefaultSquidRatePerSecond = 20

	// DefaultSquidBurst is the per-network burst towards squids
	DefaultSquidBurst = 40
)

// Storage Constants
const (
	// DefaultStorageCacheMB is the pebble block cache size in MB
	DefaultStorageCacheMB = 64

	// DefaultStorageMaxOpenFiles is the pebble open file limit
	DefaultStorageMaxOpenFiles = 500
)
