package repositories

import (
	"context"

	"github.com/johnquangdev/call-coach/internal/domain/entities"
)

// CallRepository defines persistence operations for calls and their
// transcription results. Every lookup is keyed by the public call ID.
type CallRepository interface {
	// Create stores a new call. A duplicate call ID yields entities.ErrCallAlreadyExists.
	Create(ctx context.Context, call *entities.Call) error
	FindByCallID(ctx context.Context, callID string) (*entities.Call, error)
	List(ctx context.Context, limit int) ([]entities.Call, error)

	// UpdateAudioRefs records where the uploaded audio was stored
	UpdateAudioRefs(ctx context.Context, callID, filename, objectKey string) error

	// TransitionStatus moves a call to the given status only if the
	// transition is legal from its current status.
	TransitionStatus(ctx context.Context, callID string, to entities.CallStatus) error

	// SaveResults stores the transcript and all segments atomically
	SaveResults(ctx context.Context, transcript *entities.Transcript, segments []entities.Segment) error

	FindTranscript(ctx context.Context, callID string) (*entities.Transcript, error)
	FindSegments(ctx context.Context, callID string) ([]entities.Segment, error)
	FindCoachableSegments(ctx context.Context, callID string) ([]entities.Segment, error)

	// Delete removes a call together with its transcript and segments
	Delete(ctx context.Context, callID string) error
}
