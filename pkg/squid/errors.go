package squid

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the squid package.
var (
	ErrRequestFailed   = errors.New("squid request failed")
	ErrBadStatus       = errors.New("squid returned non-success status")
	ErrGraphQL         = errors.New("squid returned graphql errors")
	ErrMissingData     = errors.New("squid response has no data")
	ErrUnsupportedKind = errors.New("entity kind not served by squids")
)

// GraphQLError is one entry of the "errors" array of a GraphQL response.
type GraphQLError struct {
	Message string        `json:"message"`
	Path    []interface{} `json:"path,omitempty"`
}

// ResponseError carries the GraphQL errors returned by a squid.
type ResponseError struct {
	URL    string
	Errors []GraphQLError
}

// Error implements the error interface.
func (e *ResponseError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, ge := range e.Errors {
		msgs[i] = ge.Message
	}
	return fmt.Sprintf("%v: %s: %s", ErrGraphQL, e.URL, strings.Join(msgs, "; "))
}

// Is matches ErrGraphQL.
func (e *ResponseError) Is(target error) bool {
	return target == ErrGraphQL
}
