package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/johnquangdev/call-coach/internal/domain/entities"
	"github.com/johnquangdev/call-coach/internal/domain/repositories"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
	segmentBatchSize = 200
)

// CallRepository handles call, transcript and segment data operations
type CallRepository struct {
	db *gorm.DB
}

var _ repositories.CallRepository = (*CallRepository)(nil)

// NewCallRepository creates a new call repository
func NewCallRepository(db *gorm.DB) *CallRepository {
	return &CallRepository{db: db}
}

// Create creates a new call, rejecting a call ID that already exists
func (r *CallRepository) Create(ctx context.Context, call *entities.Call) error {
	if call == nil {
		return errors.New("call cannot be nil")
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&entities.Call{}).Where("call_id = ?", call.CallID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return entities.ErrCallAlreadyExists
		}
		return tx.Create(call).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return entities.ErrCallAlreadyExists
	}
	return err
}

// FindByCallID retrieves a call by its public ID
func (r *CallRepository) FindByCallID(ctx context.Context, callID string) (*entities.Call, error) {
	var call entities.Call
	if err := r.db.WithContext(ctx).Where("call_id = ?", callID).First(&call).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrCallNotFound
		}
		return nil, err
	}
	return &call, nil
}

// List retrieves the most recent calls, newest first
func (r *CallRepository) List(ctx context.Context, limit int) ([]entities.Call, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	var calls []entities.Call
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&calls).Error; err != nil {
		return nil, err
	}
	return calls, nil
}

// UpdateAudioRefs sets the local path and archive key of the call's audio
func (r *CallRepository) UpdateAudioRefs(ctx context.Context, callID, filename, objectKey string) error {
	res := r.db.WithContext(ctx).
		Model(&entities.Call{}).
		Where("call_id = ?", callID).
		Updates(map[string]interface{}{
			"audio_filename":   filename,
			"audio_object_key": objectKey,
			"updated_at":       time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return entities.ErrCallNotFound
	}
	return nil
}

// TransitionStatus performs a conditional update so that concurrent
// writers can never move a call backwards or out of a terminal status
func (r *CallRepository) TransitionStatus(ctx context.Context, callID string, to entities.CallStatus) error {
	if !to.IsValid() {
		return fmt.Errorf("%w: unknown status %q", entities.ErrInvalidStatusTransition, to)
	}

	from := entities.PredecessorsOf(to)
	if len(from) == 0 {
		return fmt.Errorf("%w: nothing transitions to %s", entities.ErrInvalidStatusTransition, to)
	}

	res := r.db.WithContext(ctx).
		Model(&entities.Call{}).
		Where("call_id = ? AND status IN ?", callID, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	current, err := r.FindByCallID(ctx, callID)
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: %s -> %s", entities.ErrInvalidStatusTransition, current.Status, to)
}

// SaveResults stores the transcript and every segment in one transaction;
// either all rows for the call exist afterwards or none do
func (r *CallRepository) SaveResults(ctx context.Context, transcript *entities.Transcript, segments []entities.Segment) error {
	if transcript == nil {
		return errors.New("transcript cannot be nil")
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(transcript).Error; err != nil {
			return fmt.Errorf("failed to create transcript: %w", err)
		}
		if len(segments) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(segments, segmentBatchSize).Error; err != nil {
			return fmt.Errorf("failed to create segments: %w", err)
		}
		return nil
	})
}

// FindTranscript retrieves the transcript of a call
func (r *CallRepository) FindTranscript(ctx context.Context, callID string) (*entities.Transcript, error) {
	var transcript entities.Transcript
	if err := r.db.WithContext(ctx).Where("call_id = ?", callID).First(&transcript).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrTranscriptNotFound
		}
		return nil, err
	}
	return &transcript, nil
}

// FindSegments retrieves all segments of a call in playback order
func (r *CallRepository) FindSegments(ctx context.Context, callID string) ([]entities.Segment, error) {
	var segments []entities.Segment
	if err := r.db.WithContext(ctx).
		Where("call_id = ?", callID).
		Order("start_time ASC").
		Order("segment_index ASC").
		Find(&segments).Error; err != nil {
		return nil, err
	}
	return segments, nil
}

// FindCoachableSegments retrieves only the segments flagged as coachable
func (r *CallRepository) FindCoachableSegments(ctx context.Context, callID string) ([]entities.Segment, error) {
	var segments []entities.Segment
	if err := r.db.WithContext(ctx).
		Where("call_id = ? AND is_coachable = ?", callID, true).
		Order("start_time ASC").
		Order("segment_index ASC").
		Find(&segments).Error; err != nil {
		return nil, err
	}
	return segments, nil
}

// Delete deletes a call and everything it owns. Children are removed
// explicitly so the result does not depend on foreign key enforcement.
func (r *CallRepository) Delete(ctx context.Context, callID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("call_id = ?", callID).Delete(&entities.Segment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("call_id = ?", callID).Delete(&entities.Transcript{}).Error; err != nil {
			return err
		}
		res := tx.Where("call_id = ?", callID).Delete(&entities.Call{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return entities.ErrCallNotFound
		}
		return nil
	})
}
