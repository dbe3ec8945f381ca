// internal/nutrition/errors.go
package nutrition

import (
	"errors"
	"fmt"
)

// ErrorKind tells lookup failures apart.
type ErrorKind int

const (
	KindTimeout ErrorKind = iota + 1
	KindTransport
	KindStatus
)

func (k ErrorKind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindTransport:
		return "transport"
	case KindStatus:
		return "status"
	}
	return "unknown"
}

// Sentinels for errors.Is against a *LookupError.
var (
	ErrTimeout   = errors.New("nutrition lookup timed out")
	ErrTransport = errors.New("nutrition lookup request failed")
	ErrStatus    = errors.New("nutrition lookup returned an error status")
)

const timeoutMessage = "The request took too long. Please try again."

// LookupError is the only error ParseFoodQuery returns.
type LookupError struct {
	Kind       ErrorKind
	StatusCode int    // set for KindStatus
	Message    string // text suitable for showing to the user
	Err        error  // underlying cause, if any
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%s: %s", e.summary(), e.Message)
}

func (e *LookupError) summary() string {
	switch e.Kind {
	case KindTimeout:
		return "API request timeout"
	case KindStatus:
		return fmt.Sprintf("API returned status code %d", e.StatusCode)
	default:
		return "API request failed"
	}
}

func (e *LookupError) Unwrap() error { return e.Err }

func (e *LookupError) Is(target error) bool {
	switch target {
	case ErrTimeout:
		return e.Kind == KindTimeout
	case ErrTransport:
		return e.Kind == KindTransport
	case ErrStatus:
		return e.Kind == KindStatus
	}
	return false
}
