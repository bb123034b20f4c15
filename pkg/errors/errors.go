package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeNetwork represents transport failures and non-2xx responses
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeRateLimit represents anti-bot blocks and cooldowns
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeParsing represents HTML parsing errors
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeDelivery represents messaging channel failures
	ErrorTypeDelivery ErrorType = "delivery"
	// ErrorTypeCache represents cache-related errors
	ErrorTypeCache ErrorType = "cache"
	// ErrorTypePublisher represents offer feed errors
	ErrorTypePublisher ErrorType = "publisher"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
	// ErrorTypeUnknown is returned by TypeOf for foreign errors
	ErrorTypeUnknown ErrorType = "unknown"
)

// Error is a watcher error scoped to a tracked identifier.
type Error struct {
	Type       ErrorType
	Identifier string
	Message    string
	Err        error
	Time       time.Time
}

// Error implements the error interface
func (e *Error) Error() string {
	scope := e.Identifier
	if scope == "" {
		scope = "-"
	}
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, scope, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, scope, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// AbortsCycle reports whether the error ends the current poll cycle.
// Parse anomalies are scoped to one entry and delivery failures to one offer.
func (e *Error) AbortsCycle() bool {
	switch e.Type {
	case ErrorTypeDelivery, ErrorTypePublisher:
		return false
	default:
		return true
	}
}

// New creates a new Error
func New(errType ErrorType, identifier, message string, err error) *Error {
	return &Error{
		Type:       errType,
		Identifier: identifier,
		Message:    message,
		Err:        err,
		Time:       time.Now(),
	}
}

// NewNetwork creates a new network error
func NewNetwork(identifier, message string, err error) *Error {
	return New(ErrorTypeNetwork, identifier, message, err)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(identifier string, duration time.Duration) *Error {
	message := fmt.Sprintf("rate limited for %v", duration)
	return New(ErrorTypeRateLimit, identifier, message, nil)
}

// NewParsing creates a new parsing error
func NewParsing(identifier, message string, err error) *Error {
	return New(ErrorTypeParsing, identifier, message, err)
}

// NewDelivery creates a new delivery error
func NewDelivery(identifier, message string, err error) *Error {
	return New(ErrorTypeDelivery, identifier, message, err)
}

// NewCache creates a new cache error
func NewCache(identifier, message string, err error) *Error {
	return New(ErrorTypeCache, identifier, message, err)
}

// NewPublisher creates a new publisher error
func NewPublisher(identifier, message string, err error) *Error {
	return New(ErrorTypePublisher, identifier, message, err)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *Error {
	return New(ErrorTypeConfiguration, "", message, err)
}

// TypeOf returns the type of the first *Error in err's chain.
func TypeOf(err error) ErrorType {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeUnknown
}

// Is reports whether err's chain contains an *Error of the given type.
func Is(err error, errType ErrorType) bool {
	return TypeOf(err) == errType
}
