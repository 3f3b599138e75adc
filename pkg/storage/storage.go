// Package storage keeps the entities of locally hosted networks in PebbleDB
// and serves them to the search engine like any remote network.
package storage

import (
	"errors"

	"github.com/cockroachdb/pebble/vfs"

	"github.com/0xmhha/explorer-search/internal/constants"
)

// Common errors
var (
	// ErrNotFound is returned when an entity is not stored
	ErrNotFound = errors.New("not found")

	// ErrInvalidData is returned when stored data cannot be decoded
	ErrInvalidData = errors.New("invalid data")

	// ErrClosed is returned when operating on a closed storage
	ErrClosed = errors.New("storage closed")

	// ErrReadOnly is returned when attempting to write to a read-only storage
	ErrReadOnly = errors.New("storage is read-only")

	// ErrInvalidEntity is returned for entities without id or network
	ErrInvalidEntity = errors.New("invalid entity")
)

// Config holds storage configuration
type Config struct {
	// Path to the database directory
	Path string

	// Cache size in MB
	Cache int

	// MaxOpenFiles is the maximum number of open files
	MaxOpenFiles int

	// ReadOnly opens the database in read-only mode
	ReadOnly bool

	// FS overrides the filesystem, e.g. vfs.NewMem() in tests
	FS vfs.FS
}

// DefaultConfig returns a default configuration
func DefaultConfig(path string) *Config {
	return &Config{
		Path:         path,
		Cache:        constants.DefaultStorageCacheMB,
		MaxOpenFiles: constants.DefaultStorageMaxOpenFiles,
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Path == "" {
		return errors.New("path cannot be empty")
	}
	if c.Cache < 0 {
		return errors.New("cache size cannot be negative")
	}
	if c.MaxOpenFiles < 0 {
		return errors.New("max open files cannot be negative")
	}
	return nil
}
