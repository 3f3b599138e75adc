package network

import "errors"

// Sentinel errors for the network package.
var (
	ErrNetworkNotFound      = errors.New("network not found")
	ErrNetworkAlreadyExists = errors.New("network already exists")
	ErrSquidNotConfigured   = errors.New("squid not configured for network")
	ErrInvalidNetwork       = errors.New("invalid network")
)
