package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeFetch represents network or HTTP failures while loading a page
	ErrorTypeFetch ErrorType = "fetch"
	// ErrorTypeRateLimit represents a blocked or throttled site
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeParse represents corrupted persisted state or unparseable documents
	ErrorTypeParse ErrorType = "parse"
	// ErrorTypeExtractionMiss represents a page without a recognizable listings table
	ErrorTypeExtractionMiss ErrorType = "extraction_miss"
	// ErrorTypeListing represents a malformed individual listing
	ErrorTypeListing ErrorType = "listing"
	// ErrorTypeNotify represents email send or report write failures
	ErrorTypeNotify ErrorType = "notify"
	// ErrorTypeStore represents seen store persistence failures
	ErrorTypeStore ErrorType = "store"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// ScraperError represents a typed error raised by one of the pipeline components
type ScraperError struct {
	Type      ErrorType
	Component string
	Message   string
	Err       error
	Time      time.Time
}

// Error implements the error interface
func (e *ScraperError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Component, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Component, e.Message)
}

// Unwrap returns the underlying error
func (e *ScraperError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the next scheduled cycle may succeed
func (e *ScraperError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeFetch, ErrorTypeRateLimit, ErrorTypeNotify, ErrorTypeStore:
		return true
	case ErrorTypeConfiguration:
		return false
	default:
		return false
	}
}

// New creates a new ScraperError
func New(errType ErrorType, component, message string, err error) *ScraperError {
	return &ScraperError{
		Type:      errType,
		Component: component,
		Message:   message,
		Err:       err,
		Time:      time.Now(),
	}
}

// NewFetch creates a new fetch error
func NewFetch(component, message string, err error) *ScraperError {
	return New(ErrorTypeFetch, component, message, err)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(component string, duration time.Duration) *ScraperError {
	message := fmt.Sprintf("rate limited for %v", duration)
	return New(ErrorTypeRateLimit, component, message, nil)
}

// NewParse creates a new parse error
func NewParse(component, message string, err error) *ScraperError {
	return New(ErrorTypeParse, component, message, err)
}

// NewExtractionMiss creates a new extraction miss
func NewExtractionMiss(component, message string) *ScraperError {
	return New(ErrorTypeExtractionMiss, component, message, nil)
}

// NewListing creates a new per-listing error
func NewListing(component, message string, err error) *ScraperError {
	return New(ErrorTypeListing, component, message, err)
}

// NewNotify creates a new notify error
func NewNotify(component, message string, err error) *ScraperError {
	return New(ErrorTypeNotify, component, message, err)
}

// NewStore creates a new store error
func NewStore(component, message string, err error) *ScraperError {
	return New(ErrorTypeStore, component, message, err)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *ScraperError {
	return New(ErrorTypeConfiguration, "config", message, err)
}

// IsType reports whether any error in err's chain is a ScraperError of the given type
func IsType(err error, errType ErrorType) bool {
	var se *ScraperError
	if stderrors.As(err, &se) {
		return se.Type == errType
	}
	return false
}

// IsFatal reports whether err should stop the scheduler.
// Only configuration errors are fatal; everything else waits for the next cycle.
func IsFatal(err error) bool {
	return IsType(err, ErrorTypeConfiguration)
}
