package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode classifies application errors for logging and exit handling.
type ErrorCode string

const (
	ErrorCode_INTERNAL             ErrorCode = "INTERNAL"
	ErrorCode_INVALID_ARGUMENT     ErrorCode = "INVALID_ARGUMENT"
	ErrorCode_NOT_FOUND            ErrorCode = "NOT_FOUND"
	ErrorCode_ALREADY_EXISTS       ErrorCode = "ALREADY_EXISTS"
	ErrorCode_CONFIG_INVALID       ErrorCode = "CONFIG_INVALID"
	ErrorCode_LLM_PARSE_FAILED     ErrorCode = "LLM_PARSE_FAILED"
	ErrorCode_LLM_REQUEST_FAILED   ErrorCode = "LLM_REQUEST_FAILED"
	ErrorCode_TTS_RATE_LIMITED     ErrorCode = "TTS_RATE_LIMITED"
	ErrorCode_TTS_SYNTHESIS_FAILED ErrorCode = "TTS_SYNTHESIS_FAILED"
	ErrorCode_AUDIO_FAILED         ErrorCode = "AUDIO_FAILED"
	ErrorCode_STORAGE_FAILED       ErrorCode = "STORAGE_FAILED"
	ErrorCode_DB_FAILED            ErrorCode = "DB_FAILED"
	ErrorCode_PUBLISH_FAILED       ErrorCode = "PUBLISH_FAILED"
)

// String implements fmt.Stringer.
func (c ErrorCode) String() string { return string(c) }

// AppError is the custom error type for the application.
type AppError struct {
	Raw       error
	Code      ErrorCode
	Message   string
	Details   map[string]string
	Timestamp time.Time
}

// Error implements error interface
func (e AppError) Error() string {
	if e.Raw != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code.String(), e.Message, e.Raw)
	}
	return fmt.Sprintf("[%s] %s", e.Code.String(), e.Message)
}

// Unwrap exposes the wrapped error to errors.Is/errors.As.
func (e AppError) Unwrap() error { return e.Raw }

// WithDetail adds a detail to the error
func (e AppError) WithDetail(key, value string) AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// HasCode reports whether err is an AppError carrying the given code.
func HasCode(err error, code ErrorCode) bool {
	var appErr AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// General Errors

func ErrInternal(err error) AppError {
	return AppError{
		Raw:     err,
		Code:    ErrorCode_INTERNAL,
		Message: "Internal error",
	}
}

func ErrInvalidArgument(message string) AppError {
	return AppError{
		Code:    ErrorCode_INVALID_ARGUMENT,
		Message: message,
	}
}

func ErrNotFound(resource string) AppError {
	return AppError{
		Code:    ErrorCode_NOT_FOUND,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

func ErrAlreadyExists(resource string) AppError {
	return AppError{
		Code:    ErrorCode_ALREADY_EXISTS,
		Message: fmt.Sprintf("%s already exists", resource),
	}
}

// Configuration Errors

func ErrInvalidConfig(field, reason string) AppError {
	return AppError{
		Code:    ErrorCode_CONFIG_INVALID,
		Message: fmt.Sprintf("Invalid configuration: %s", reason),
	}.WithDetail("field", field)
}

func ErrUnsupportedProvider(kind, name string) AppError {
	return AppError{
		Code:    ErrorCode_CONFIG_INVALID,
		Message: fmt.Sprintf("Unsupported %s provider: %s", kind, name),
	}.WithDetail("provider", name)
}

func ErrUnknownSpeaker(speaker string) AppError {
	return AppError{
		Code:    ErrorCode_CONFIG_INVALID,
		Message: "Speaker has no configured voice",
	}.WithDetail("speaker", speaker)
}

// Script Workflow Errors

func ErrLLMRequestFailed(stage string, err error) AppError {
	return AppError{
		Raw:     err,
		Code:    ErrorCode_LLM_REQUEST_FAILED,
		Message: "LLM request failed",
	}.WithDetail("stage", stage)
}

func ErrLLMParseFailed(stage string, err error) AppError {
	return AppError{
		Raw:     err,
		Code:    ErrorCode_LLM_PARSE_FAILED,
		Message: "Failed to parse structured LLM output",
	}.WithDetail("stage", stage)
}

func ErrSegmentGenerationFailed(segment int, err error) AppError {
	return AppError{
		Raw:     err,
		Code:    ErrorCode_LLM_PARSE_FAILED,
		Message: "Segment script generation failed",
	}.WithDetail("segment", fmt.Sprintf("%d", segment))
}

// Speech Synthesis Errors

func ErrRateLimited(provider string) AppError {
	return AppError{
		Code:    ErrorCode_TTS_RATE_LIMITED,
		Message: "TTS provider rate limit exceeded",
	}.WithDetail("provider", provider)
}

func ErrSynthesisFailed(speaker string, err error) AppError {
	return AppError{
		Raw:     err,
		Code:    ErrorCode_TTS_SYNTHESIS_FAILED,
		Message: "Speech synthesis failed",
	}.WithDetail("speaker", speaker)
}

func ErrAudioCompositionFailed(err error) AppError {
	return AppError{
		Raw:     err,
		Code:    ErrorCode_AUDIO_FAILED,
		Message: "Audio composition failed",
	}
}

func ErrAudioMetadataFailed(path string, err error) AppError {
	return AppError{
		Raw:     err,
		Code:    ErrorCode_AUDIO_FAILED,
		Message: "Failed to read audio metadata",
	}.WithDetail("path", path)
}

// Publishing Errors

func ErrFeedNotFound(slug string) AppError {
	return AppError{
		Code:    ErrorCode_NOT_FOUND,
		Message: "Feed not found",
	}.WithDetail("feed_slug", slug)
}

func ErrFeedAlreadyExists(slug string) AppError {
	return AppError{
		Code:    ErrorCode_ALREADY_EXISTS,
		Message: "Feed already exists",
	}.WithDetail("feed_slug", slug)
}

func ErrEpisodeAlreadyExists(guid string) AppError {
	return AppError{
		Code:    ErrorCode_ALREADY_EXISTS,
		Message: "Episode already exists",
	}.WithDetail("guid", guid)
}

func ErrStorageFailed(operation string, err error) AppError {
	return AppError{
		Raw:     err,
		Code:    ErrorCode_STORAGE_FAILED,
		Message: fmt.Sprintf("Storage operation failed: %s", operation),
	}
}

func ErrDBQueryFailed(operation string, err error) AppError {
	return AppError{
		Raw:     err,
		Code:    ErrorCode_DB_FAILED,
		Message: "Database operation failed",
	}.WithDetail("operation", operation)
}

func ErrPublishFailed(step string, err error) AppError {
	return AppError{
		Raw:     err,
		Code:    ErrorCode_PUBLISH_FAILED,
		Message: "Publishing failed",
	}.WithDetail("step", step)
}
