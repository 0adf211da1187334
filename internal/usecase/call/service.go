package call

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/call-coach/internal/domain/entities"
	"github.com/johnquangdev/call-coach/internal/domain/repositories"
	"github.com/johnquangdev/call-coach/internal/infrastructure/cache"
	"github.com/johnquangdev/call-coach/internal/infrastructure/storage"
)

const (
	DefaultAgentID    = "System"
	DefaultCustomerID = "Customer"
	DefaultLanguage   = "en"

	defaultURLExpiry = 15 * time.Minute
)

// Processor runs the analysis pipeline for one uploaded call
type Processor interface {
	Process(ctx context.Context, callID, audioPath string) (*entities.TranscriptionResult, error)
}

// Synthesizer renders text to an audio file and returns its path
type Synthesizer interface {
	Synthesize(ctx context.Context, text, language string) (string, error)
}

// URLSigner issues time-limited download links for archived audio
type URLSigner interface {
	GetFileURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// Service defines the interface for call use cases
type Service interface {
	// Submit stores the upload, creates the call and runs the pipeline synchronously
	Submit(ctx context.Context, input SubmitInput) (*SubmitResult, error)

	// List returns the most recent calls, newest first
	List(ctx context.Context, limit int) ([]entities.Call, error)

	// Get returns a call with its transcript and segments
	Get(ctx context.Context, callID string) (*CallDetail, error)

	// Delete removes a call, its results and its stored audio
	Delete(ctx context.Context, callID string) error

	// Speak synthesizes arbitrary text
	Speak(ctx context.Context, text, language string) (string, error)

	// Replay synthesizes a narration of a call's coachable moments
	Replay(ctx context.Context, callID string) (*ReplayResult, error)
}

// SubmitInput is one audio upload
type SubmitInput struct {
	CallID      string
	AgentID     string
	CustomerID  string
	Filename    string
	ContentType string
	Size        int64
	Audio       io.Reader
}

// SubmitResult is the outcome of a completed pipeline run
type SubmitResult struct {
	Call     *entities.Call
	Result   *entities.TranscriptionResult
	Segments []entities.Segment
}

// CallDetail is the full stored view of a call
type CallDetail struct {
	Call       *entities.Call       `json:"call"`
	Transcript *entities.Transcript `json:"transcript,omitempty"`
	Segments   []entities.Segment   `json:"segments"`
	AudioURL   string               `json:"-"`
}

// ReplayResult is a synthesized narration of coachable moments
type ReplayResult struct {
	CallID    string
	Segments  []entities.Segment
	Text      string
	AudioPath string
}

// Options tunes a CallService
type Options struct {
	MaxUploadBytes int64
	// MaxConcurrency bounds simultaneous pipeline runs; zero means unbounded
	MaxConcurrency int
	CacheTTL       time.Duration

	// Archive, when set, receives a copy of every upload
	Archive   storage.AudioStore
	Signer    URLSigner
	URLExpiry time.Duration
}

// CallService implements Service
type CallService struct {
	calls    repositories.CallRepository
	pipeline Processor
	uploads  storage.AudioStore
	tts      Synthesizer
	cache    cache.Store
	opts     Options
	slots    chan struct{}
	logger   *zap.Logger
}

// Ensure CallService implements Service interface
var _ Service = (*CallService)(nil)

// NewService creates a call service. cache and logger may be nil.
func NewService(
	calls repositories.CallRepository,
	pipeline Processor,
	uploads storage.AudioStore,
	tts Synthesizer,
	store cache.Store,
	opts Options,
	logger *zap.Logger,
) *CallService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.URLExpiry <= 0 {
		opts.URLExpiry = defaultURLExpiry
	}

	s := &CallService{
		calls:    calls,
		pipeline: pipeline,
		uploads:  uploads,
		tts:      tts,
		cache:    store,
		opts:     opts,
		logger:   logger,
	}
	if opts.MaxConcurrency > 0 {
		s.slots = make(chan struct{}, opts.MaxConcurrency)
	}
	return s
}

// Submit stores the audio, registers the call and processes it before returning
func (s *CallService) Submit(ctx context.Context, input SubmitInput) (*SubmitResult, error) {
	if input.Audio == nil {
		return nil, fmt.Errorf("%w: audio is required", entities.ErrInvalidRequest)
	}
	if s.opts.MaxUploadBytes > 0 && input.Size > s.opts.MaxUploadBytes {
		return nil, &entities.FileTooLargeError{LimitBytes: s.opts.MaxUploadBytes}
	}

	agentID := strings.TrimSpace(input.AgentID)
	if agentID == "" {
		agentID = DefaultAgentID
	}
	customerID := strings.TrimSpace(input.CustomerID)
	if customerID == "" {
		customerID = DefaultCustomerID
	}

	call := entities.NewCall(strings.TrimSpace(input.CallID), agentID, customerID)
	call.AudioFilename = input.Filename
	if err := s.calls.Create(ctx, call); err != nil {
		return nil, err
	}
	log := s.logger.With(zap.String("call_id", call.CallID))

	name := storage.ObjectName(call.CallID, input.Filename)
	audio := input.Audio
	if s.opts.MaxUploadBytes > 0 {
		audio = newLimitReader(audio, s.opts.MaxUploadBytes)
	}

	path, err := s.uploads.Save(ctx, name, audio, input.Size, input.ContentType)
	if err != nil {
		log.Error("failed to store upload", zap.Error(err))
		s.failCall(ctx, call.CallID, log)
		if !errors.Is(err, entities.ErrFileTooLarge) {
			err = fmt.Errorf("%w: %w", entities.ErrStorage, err)
		}
		return nil, err
	}
	log.Info("audio uploaded", zap.String("path", path), zap.Int64("size", input.Size))

	objectKey := s.archive(ctx, name, path, input.ContentType, log)
	if err := s.calls.UpdateAudioRefs(ctx, call.CallID, path, objectKey); err != nil {
		log.Error("failed to record audio location", zap.Error(err))
		s.failCall(ctx, call.CallID, log)
		return nil, err
	}

	release, err := s.acquire(ctx)
	if err != nil {
		log.Warn("gave up waiting for a pipeline slot", zap.Error(err))
		s.failCall(ctx, call.CallID, log)
		return nil, err
	}
	result, err := s.pipeline.Process(ctx, call.CallID, path)
	release()
	s.invalidate(ctx, call.CallID, log)
	if err != nil {
		return nil, err
	}

	stored, err := s.calls.FindByCallID(ctx, call.CallID)
	if err != nil {
		return nil, err
	}
	segments, err := s.calls.FindSegments(ctx, call.CallID)
	if err != nil {
		return nil, err
	}
	return &SubmitResult{Call: stored, Result: result, Segments: segments}, nil
}

// List returns the most recent calls
func (s *CallService) List(ctx context.Context, limit int) ([]entities.Call, error) {
	return s.calls.List(ctx, limit)
}

// Get serves finished calls from the cache when possible
func (s *CallService) Get(ctx context.Context, callID string) (*CallDetail, error) {
	log := s.logger.With(zap.String("call_id", callID))

	detail, ok := s.cached(ctx, callID, log)
	if !ok {
		var err error
		detail, err = s.load(ctx, callID)
		if err != nil {
			return nil, err
		}
		if detail.Call.Status.IsTerminal() {
			s.store(ctx, detail, log)
		}
	}

	if s.opts.Signer != nil && detail.Call.AudioObjectKey != "" {
		url, err := s.opts.Signer.GetFileURL(ctx, detail.Call.AudioObjectKey, s.opts.URLExpiry)
		if err != nil {
			log.Warn("failed to sign audio url", zap.Error(err))
		} else {
			detail.AudioURL = url
		}
	}
	return detail, nil
}

// Delete refuses calls that are still being processed
func (s *CallService) Delete(ctx context.Context, callID string) error {
	call, err := s.calls.FindByCallID(ctx, callID)
	if err != nil {
		return err
	}
	if call.Status == entities.CallStatusProcessing {
		return fmt.Errorf("%w: call is still processing", entities.ErrInvalidStatusTransition)
	}

	if err := s.calls.Delete(ctx, callID); err != nil {
		return err
	}

	log := s.logger.With(zap.String("call_id", callID))
	s.invalidate(ctx, callID, log)
	if err := s.uploads.Remove(ctx, call.AudioFilename); err != nil {
		log.Warn("failed to remove uploaded audio", zap.Error(err))
	}
	if s.opts.Archive != nil && call.AudioObjectKey != "" {
		if err := s.opts.Archive.Remove(ctx, call.AudioObjectKey); err != nil {
			log.Warn("failed to remove archived audio", zap.Error(err))
		}
	}
	log.Info("call deleted")
	return nil
}

// Speak synthesizes text in the given language, English by default
func (s *CallService) Speak(ctx context.Context, text, language string) (string, error) {
	if strings.TrimSpace(language) == "" {
		language = DefaultLanguage
	}
	return s.tts.Synthesize(ctx, text, language)
}

// Replay narrates every coachable segment of a call in playback order
func (s *CallService) Replay(ctx context.Context, callID string) (*ReplayResult, error) {
	if _, err := s.calls.FindByCallID(ctx, callID); err != nil {
		return nil, err
	}

	segments, err := s.calls.FindCoachableSegments(ctx, callID)
	if err != nil {
		return nil, err
	}
	if len(segments) == 0 {
		return nil, entities.ErrNoCoachableMoments
	}

	text := ReplayText(segments)
	path, err := s.tts.Synthesize(ctx, text, DefaultLanguage)
	if err != nil {
		return nil, err
	}

	s.logger.Info("replay generated",
		zap.String("call_id", callID),
		zap.Int("coachable_segments", len(segments)),
		zap.String("path", path),
	)
	return &ReplayResult{CallID: callID, Segments: segments, Text: text, AudioPath: path}, nil
}

// ReplayText builds the narration: "<type>: <speaker> said: <text>" per segment
func ReplayText(segments []entities.Segment) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		kind := ""
		if seg.CoachableType != nil {
			kind = *seg.CoachableType
		}
		parts = append(parts, fmt.Sprintf("%s: %s said: %s", kind, seg.Speaker, seg.Text))
	}
	return strings.Join(parts, ". ")
}

// archive copies the saved upload to the archive store. Failures are
// logged and yield an empty key.
func (s *CallService) archive(ctx context.Context, name, path, contentType string, log *zap.Logger) string {
	if s.opts.Archive == nil {
		return ""
	}

	f, err := os.Open(path)
	if err != nil {
		log.Warn("failed to reopen upload for archiving", zap.Error(err))
		return ""
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		log.Warn("failed to stat upload for archiving", zap.Error(err))
		return ""
	}

	key, err := s.opts.Archive.Save(ctx, name, f, info.Size(), contentType)
	if err != nil {
		log.Warn("failed to archive upload", zap.Error(err))
		return ""
	}
	return key
}

func (s *CallService) acquire(ctx context.Context) (func(), error) {
	if s.slots == nil {
		return func() {}, nil
	}
	select {
	case s.slots <- struct{}{}:
		return func() { <-s.slots }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *CallService) failCall(ctx context.Context, callID string, log *zap.Logger) {
	if err := s.calls.TransitionStatus(context.WithoutCancel(ctx), callID, entities.CallStatusFailed); err != nil {
		log.Error("failed to mark call failed", zap.Error(err))
	}
}

func (s *CallService) load(ctx context.Context, callID string) (*CallDetail, error) {
	call, err := s.calls.FindByCallID(ctx, callID)
	if err != nil {
		return nil, err
	}

	detail := &CallDetail{Call: call}
	transcript, err := s.calls.FindTranscript(ctx, callID)
	switch {
	case err == nil:
		detail.Transcript = transcript
	case !errors.Is(err, entities.ErrTranscriptNotFound):
		return nil, err
	}

	detail.Segments, err = s.calls.FindSegments(ctx, callID)
	if err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *CallService) cached(ctx context.Context, callID string, log *zap.Logger) (*CallDetail, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, ok, err := s.cache.Get(ctx, cache.CallKey(callID))
	if err != nil {
		log.Warn("cache read failed", zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var detail CallDetail
	if err := json.Unmarshal(data, &detail); err != nil || detail.Call == nil {
		log.Warn("discarding unreadable cache entry", zap.Error(err))
		return nil, false
	}
	return &detail, true
}

func (s *CallService) store(ctx context.Context, detail *CallDetail, log *zap.Logger) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(detail)
	if err != nil {
		log.Warn("failed to encode call for cache", zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, cache.CallKey(detail.Call.CallID), data, s.opts.CacheTTL); err != nil {
		log.Warn("cache write failed", zap.Error(err))
	}
}

func (s *CallService) invalidate(ctx context.Context, callID string, log *zap.Logger) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(context.WithoutCancel(ctx), cache.CallKey(callID)); err != nil {
		log.Warn("cache invalidation failed", zap.Error(err))
	}
}

// limitReader fails with a FileTooLargeError once more than limit
// bytes have been read
type limitReader struct {
	r         io.Reader
	limit     int64
	remaining int64
}

func newLimitReader(r io.Reader, limit int64) *limitReader {
	return &limitReader{r: r, limit: limit, remaining: limit}
}

func (l *limitReader) Read(p []byte) (int, error) {
	if l.remaining < 0 {
		return 0, &entities.FileTooLargeError{LimitBytes: l.limit}
	}
	if int64(len(p)) > l.remaining+1 {
		p = p[:l.remaining+1]
	}
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		return n, &entities.FileTooLargeError{LimitBytes: l.limit}
	}
	return n, err
}
