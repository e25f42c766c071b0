package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks missing credentials or a target table with no
	// rows for the active market context.
	ErrConfiguration = errors.New("configuration error")

	// ErrValidation marks caller input that failed domain rules.
	ErrValidation = errors.New("invalid input")

	// ErrNotFound marks a lookup with no matching rows.
	ErrNotFound = errors.New("not found")
)

// UpstreamKind classifies how the price provider failed
type UpstreamKind string

const (
	UpstreamTransport UpstreamKind = "transport"
	UpstreamStatus    UpstreamKind = "status"
	UpstreamDecode    UpstreamKind = "decode"
)

// UpstreamError is returned when the market-data provider is unreachable,
// answers with a non-2xx status or sends a body that cannot be parsed.
type UpstreamError struct {
	Kind       UpstreamKind
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Kind == UpstreamStatus {
		return fmt.Sprintf("upstream %s error (status %d): %v", e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("upstream %s error: %v", e.Kind, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// IsUpstream reports whether err carries an UpstreamError
func IsUpstream(err error) bool {
	var upstream *UpstreamError
	return errors.As(err, &upstream)
}
