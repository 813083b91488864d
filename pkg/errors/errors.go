package errors

import (
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeNetwork represents network-related errors
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeParsing represents HTML parsing errors
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeResolution represents detail-link resolution errors
	ErrorTypeResolution ErrorType = "resolution"
	// ErrorTypeRateLimit represents rate limiting errors
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeExport represents workbook/JSON export errors
	ErrorTypeExport ErrorType = "export"
	// ErrorTypeUpload represents warehouse/document-store upload errors
	ErrorTypeUpload ErrorType = "upload"
	// ErrorTypeValidation represents validation errors
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// ScraperError represents a source-specific scraping error
type ScraperError struct {
	Type    ErrorType
	Source  string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *ScraperError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Source, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Source, e.Message)
}

// Unwrap returns the underlying error
func (e *ScraperError) Unwrap() error {
	return e.Err
}

// New creates a new ScraperError
func New(errType ErrorType, source, message string, err error) *ScraperError {
	return &ScraperError{
		Type:    errType,
		Source:  source,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewNetwork creates a new network error
func NewNetwork(source, message string, err error) *ScraperError {
	return New(ErrorTypeNetwork, source, message, err)
}

// NewParsing creates a new parsing error
func NewParsing(source, message string, err error) *ScraperError {
	return New(ErrorTypeParsing, source, message, err)
}

// NewResolution creates a new detail-resolution error
func NewResolution(source, message string, err error) *ScraperError {
	return New(ErrorTypeResolution, source, message, err)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(source string, duration time.Duration) *ScraperError {
	message := fmt.Sprintf("rate limited for %v", duration)
	return New(ErrorTypeRateLimit, source, message, nil)
}

// NewExport creates a new export error
func NewExport(source, message string, err error) *ScraperError {
	return New(ErrorTypeExport, source, message, err)
}

// NewUpload creates a new upload error
func NewUpload(source, message string, err error) *ScraperError {
	return New(ErrorTypeUpload, source, message, err)
}

// NewValidation creates a new validation error
func NewValidation(source, message string) *ScraperError {
	return New(ErrorTypeValidation, source, message, nil)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *ScraperError {
	return New(ErrorTypeConfiguration, "", message, err)
}
