package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"time"

	"github.com/johnquangdev/call-coach/internal/domain/entities"
)

// AppError là custom error type cho application
type AppError struct {
	Raw       error
	HTTPCode  int
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

// Unwrap exposes the underlying error to errors.Is and errors.As
func (e AppError) Unwrap() error {
	return e.Raw
}

// WithDetail adds a detail to the error
func (e AppError) WithDetail(key, value string) AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// General Errors
func ErrInternal(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_INTERNAL,
		Message:  "Internal server error",
	}
}

func ErrInvalidArgument(message string) AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INVALID_ARGUMENT,
		Message:  message,
	}
}

func ErrNotFound(resource string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_NOT_FOUND,
		Message:  fmt.Sprintf("%s not found", resource),
	}
}

func ErrInvalidPayload(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INVALID_PAYLOAD,
		Message:  "Invalid payload",
	}
}

// ErrFileTooLarge reports an oversized upload. A non-positive limit is
// left out of the response.
func ErrFileTooLarge(limitMB int64) AppError {
	appErr := AppError{
		HTTPCode: http.StatusRequestEntityTooLarge,
		Code:     ErrorCode_FILE_TOO_LARGE,
		Message:  "File too large",
	}
	if limitMB <= 0 {
		return appErr
	}
	appErr.Message = fmt.Sprintf("File too large. Max: %dMB", limitMB)
	return appErr.WithDetail("max_mb", fmt.Sprintf("%d", limitMB))
}

// Call Errors
func ErrCallNotFound(callID string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_CALL_NOT_FOUND,
		Message:  "Call not found",
	}.WithDetail("call_id", callID)
}

func ErrCallAlreadyExists(callID string) AppError {
	return AppError{
		HTTPCode: http.StatusConflict,
		Code:     ErrorCode_CALL_ALREADY_EXISTS,
		Message:  "Call already exists",
	}.WithDetail("call_id", callID)
}

func ErrCallInvalidState(callID string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusConflict,
		Code:     ErrorCode_CALL_INVALID_STATE,
		Message:  "Call is in invalid state",
	}.WithDetail("call_id", callID)
}

func ErrNoCoachableMoments(callID string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_NO_COACHABLE_MOMENTS,
		Message:  "No coachable moments found",
	}.WithDetail("call_id", callID)
}

// Pipeline Errors
func ErrAudioProcessing(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusUnprocessableEntity,
		Code:     ErrorCode_AUDIO_PROCESSING,
		Message:  "Audio processing failed",
	}
}

func ErrPersistenceFailed(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_PERSISTENCE_FAILED,
		Message:  "Failed to persist call results",
	}
}

// Speech Errors
func ErrEmptySynthesisText() AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_EMPTY_SYNTHESIS_TEXT,
		Message:  "Cannot synthesize empty text",
	}
}

func ErrSynthesisFailed(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_SYNTHESIS_FAILED,
		Message:  "Text-to-speech synthesis failed",
	}
}

// Integration Errors
func ErrStorageFailed(operation string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_INTEGRATION_STORAGE_FAILED,
		Message:  fmt.Sprintf("Storage operation failed: %s", operation),
	}
}

// Database Errors
func ErrDBQueryFailed(query string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_DB_QUERY_FAILED,
		Message:  "Database query failed",
	}.WithDetail("query", query)
}

// FromDomain maps a domain error onto its API error. Errors that are
// already AppErrors pass through unchanged.
func FromDomain(err error, callID string) AppError {
	var appErr AppError
	if stdErrors.As(err, &appErr) {
		return appErr
	}

	switch {
	case stdErrors.Is(err, entities.ErrCallNotFound):
		return ErrCallNotFound(callID)
	case stdErrors.Is(err, entities.ErrCallAlreadyExists):
		return ErrCallAlreadyExists(callID)
	case stdErrors.Is(err, entities.ErrNoCoachableMoments):
		return ErrNoCoachableMoments(callID)
	case stdErrors.Is(err, entities.ErrTranscriptNotFound):
		return ErrNotFound("Transcript").WithDetail("call_id", callID)
	case stdErrors.Is(err, entities.ErrInvalidStatusTransition):
		return ErrCallInvalidState(callID, err)
	case stdErrors.Is(err, entities.ErrAudioProcessing):
		return ErrAudioProcessing(err)
	case stdErrors.Is(err, entities.ErrPersistence):
		return ErrPersistenceFailed(err)
	case stdErrors.Is(err, entities.ErrEmptySynthesisText):
		return ErrEmptySynthesisText()
	case stdErrors.Is(err, entities.ErrSynthesis):
		return ErrSynthesisFailed(err)
	case stdErrors.Is(err, entities.ErrFileTooLarge):
		var limit int64
		var tooLarge *entities.FileTooLargeError
		if stdErrors.As(err, &tooLarge) {
			limit = tooLarge.LimitBytes >> 20
		}
		appErr := ErrFileTooLarge(limit)
		appErr.Raw = err
		return appErr
	case stdErrors.Is(err, entities.ErrStorage):
		return ErrStorageFailed("save audio", err)
	case stdErrors.Is(err, entities.ErrInvalidRequest):
		return ErrInvalidPayload(err)
	default:
		return ErrInternal(err)
	}
}
