package client

import (
	"errors"
	"fmt"
)

// IntegrationKind classifies how a backend call failed.
type IntegrationKind string

const (
	IntegrationTimeout IntegrationKind = "timeout"
	IntegrationStatus  IntegrationKind = "status"
	IntegrationDecode  IntegrationKind = "decode"
)

// IntegrationError is a transport-level failure: a timeout, a non-2xx
// response, or an unparseable body. These are the only client errors the
// retry and fallback policies act on.
type IntegrationError struct {
	Kind   IntegrationKind
	Status int
	Err    error
}

func (e *IntegrationError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("integration %s (status %d): %v", e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("integration %s: %v", e.Kind, e.Err)
}

func (e *IntegrationError) Unwrap() error {
	return e.Err
}

// IsIntegrationError reports whether err is a transport-level failure.
func IsIntegrationError(err error) bool {
	var ie *IntegrationError
	return errors.As(err, &ie)
}
