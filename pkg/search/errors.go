package search

import (
	"errors"
	"fmt"
	"strings"

	"github.com/0xmhha/explorer-search/pkg/types"
)

// Sentinel errors for the search package.
var (
	// Input errors, raised before any dispatch
	ErrMalformedQuery = errors.New("search query is empty")
	ErrNoNetworks     = errors.New("no networks selected")

	// Per-network and per-kind failures
	ErrNetworkUnavailable = errors.New("network unavailable")
	ErrAllNetworksFailed  = errors.New("all networks failed")

	// Dispatch errors
	ErrDispatchRejected = errors.New("dispatch rejected")
	ErrClosed           = errors.New("search engine is closed")
	ErrSessionNotFound  = errors.New("search session not found")
)

// NetworkError wraps a client failure with network and kind context.
type NetworkError struct {
	Network string
	Kind    types.Kind
	Err     error
}

// NewNetworkError creates a new network error.
func NewNetworkError(network string, kind types.Kind, err error) *NetworkError {
	return &NetworkError{
		Network: network,
		Kind:    kind,
		Err:     err,
	}
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("network %s: %s: %v: %v", e.Network, e.Kind, ErrNetworkUnavailable, e.Err)
	}
	return fmt.Sprintf("network %s: %s: %v", e.Network, e.Kind, ErrNetworkUnavailable)
}

// Unwrap returns the underlying error.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Is reports ErrNetworkUnavailable for every network error.
func (e *NetworkError) Is(target error) bool {
	return target == ErrNetworkUnavailable
}

// KindError reports that every selected network failed for a kind.
type KindError struct {
	Kind     types.Kind
	Failures []NetworkFailure
}

// NewKindError creates a new kind error.
func NewKindError(kind types.Kind, failures []NetworkFailure) *KindError {
	return &KindError{Kind: kind, Failures: failures}
}

// Error implements the error interface.
func (e *KindError) Error() string {
	names := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		names[i] = f.Network
	}
	return fmt.Sprintf("%s: %v: %s", e.Kind, ErrAllNetworksFailed, strings.Join(names, ", "))
}

// Unwrap exposes the individual network failures.
func (e *KindError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}

// Is matches ErrAllNetworksFailed.
func (e *KindError) Is(target error) bool {
	return target == ErrAllNetworksFailed
}
