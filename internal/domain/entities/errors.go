package entities

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	// Call errors
	ErrCallNotFound            = errors.New("call not found")
	ErrCallAlreadyExists       = errors.New("call already exists")
	ErrInvalidStatusTransition = errors.New("invalid call status transition")
	ErrTranscriptNotFound      = errors.New("transcript not found")
	ErrNoCoachableMoments      = errors.New("no coachable moments found")

	// Pipeline errors
	ErrAudioProcessing = errors.New("audio processing failed")
	ErrPersistence     = errors.New("failed to persist call results")
	ErrStorage         = errors.New("failed to store audio")

	// Enrichment errors, non-fatal for the pipeline
	ErrSentimentAnalysis = errors.New("sentiment analysis failed")

	// Input errors
	ErrInvalidCategoryConfig = errors.New("invalid coachable category config")
	ErrEmptySynthesisText    = errors.New("cannot synthesize empty text")
	ErrSynthesis             = errors.New("text-to-speech synthesis failed")
	ErrFileTooLarge          = errors.New("file too large")
	ErrInvalidRequest        = errors.New("invalid request")
)

// FileTooLargeError reports an upload over LimitBytes. It matches
// ErrFileTooLarge with errors.Is.
type FileTooLargeError struct {
	LimitBytes int64
}

func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf("file too large: limit is %d bytes", e.LimitBytes)
}

func (e *FileTooLargeError) Is(target error) bool {
	return target == ErrFileTooLarge
}
