package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/call-coach/internal/domain/entities"
	"github.com/johnquangdev/call-coach/internal/infrastructure/metrics"
	"github.com/johnquangdev/call-coach/internal/usecase/segmenter"
	"github.com/johnquangdev/call-coach/pkg/jobcontext"
)

// Stage names used in logs and metrics
const (
	StageTranscription = "transcription"
	StageSentiment     = "sentiment"
	StageCoachable     = "coachable"
	StagePersistence   = "persistence"
)

// CallStore is the persistence the pipeline needs
type CallStore interface {
	FindByCallID(ctx context.Context, callID string) (*entities.Call, error)
	TransitionStatus(ctx context.Context, callID string, to entities.CallStatus) error
	SaveResults(ctx context.Context, transcript *entities.Transcript, segments []entities.Segment) error
}

// Transcriber turns an audio file into timed text spans
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (*entities.RawTranscript, error)
}

// SentimentAnalyzer classifies a batch of texts. The result must be
// positionally aligned with texts.
type SentimentAnalyzer interface {
	AnalyzeBatch(ctx context.Context, texts []string) ([]entities.Sentiment, error)
}

// MomentDetector flags coaching-relevant segments
type MomentDetector interface {
	Detect(segments []entities.SpeakerSegment, sentiments []entities.NullSentiment) []entities.CoachableMoment
}

// Options tunes a Pipeline
type Options struct {
	SentimentEnabled bool
}

// Pipeline drives one call from audio to persisted, annotated segments
type Pipeline struct {
	store     CallStore
	stt       Transcriber
	sentiment SentimentAnalyzer
	detector  MomentDetector
	segmenter *segmenter.Segmenter
	opts      Options
	logger    *zap.Logger
	metrics   *metrics.Pipeline
}

// New creates a pipeline. sentiment may be nil; logger and metrics may be nil.
func New(
	store CallStore,
	stt Transcriber,
	sentiment SentimentAnalyzer,
	detector MomentDetector,
	seg *segmenter.Segmenter,
	opts Options,
	logger *zap.Logger,
	m *metrics.Pipeline,
) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if seg == nil {
		seg = segmenter.New(segmenter.DefaultSilenceGap)
	}
	return &Pipeline{
		store:     store,
		stt:       stt,
		sentiment: sentiment,
		detector:  detector,
		segmenter: seg,
		opts:      opts,
		logger:    logger,
		metrics:   m,
	}
}

// Process runs transcription, sentiment, coachable detection and
// persistence for a pending call. Transcription and persistence failures
// mark the call failed; sentiment and detection failures only degrade
// the result.
func (p *Pipeline) Process(ctx context.Context, callID, audioPath string) (*entities.TranscriptionResult, error) {
	ctx = jobcontext.Begin(ctx, callID)
	log := p.logger.With(jobcontext.Fields(ctx)...)

	if _, err := p.store.FindByCallID(ctx, callID); err != nil {
		return nil, err
	}
	if err := p.store.TransitionStatus(ctx, callID, entities.CallStatusProcessing); err != nil {
		return nil, err
	}

	done := p.metrics.Started()
	defer done()
	log.Info("pipeline started", zap.String("audio_path", audioPath))

	result, err := p.transcribe(ctx, audioPath)
	if err != nil {
		log.Error("transcription failed", zap.Error(err))
		p.markFailed(ctx, callID, log)
		if errors.Is(err, entities.ErrAudioProcessing) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", entities.ErrAudioProcessing, err)
	}
	p.metrics.Segments(len(result.Segments))

	sentiments := p.analyzeSentiment(ctx, result.Segments, log)
	moments := p.detectMoments(ctx, result.Segments, sentiments, log)

	start := time.Now()
	transcript := entities.NewTranscript(callID, result)
	rows := entities.BuildSegments(callID, result.Segments, sentiments, moments)
	err = p.store.SaveResults(ctx, transcript, rows)
	p.metrics.ObserveStage(StagePersistence, time.Since(start))
	if err != nil {
		log.Error("failed to persist results", zap.Error(err))
		p.markFailed(ctx, callID, log)
		return nil, fmt.Errorf("%w: %w", entities.ErrPersistence, err)
	}

	if err := p.store.TransitionStatus(ctx, callID, entities.CallStatusCompleted); err != nil {
		log.Error("failed to mark call completed", zap.Error(err))
		p.markFailed(ctx, callID, log)
		return nil, fmt.Errorf("%w: %w", entities.ErrPersistence, err)
	}
	p.metrics.Finished(entities.CallStatusCompleted)

	log.Info("pipeline completed",
		zap.Int("segments", len(result.Segments)),
		zap.Int("coachable_moments", len(moments)),
		zap.Float64("duration_seconds", result.DurationSeconds),
		zap.Duration("elapsed", jobcontext.Elapsed(ctx)),
	)
	return result, nil
}

func (p *Pipeline) transcribe(ctx context.Context, audioPath string) (*entities.TranscriptionResult, error) {
	start := time.Now()
	defer func() { p.metrics.ObserveStage(StageTranscription, time.Since(start)) }()

	var raw *entities.RawTranscript
	err := jobcontext.Safe(ctx, func(ctx context.Context) error {
		var err error
		raw, err = p.stt.Transcribe(ctx, audioPath)
		return err
	})
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, errors.New("transcriber returned no transcript")
	}

	segments := p.segmenter.AssignSpeakers(raw.Spans)
	return &entities.TranscriptionResult{
		FullText:        raw.FullText,
		Segments:        segments,
		Language:        raw.Language,
		DurationSeconds: segmenter.Duration(segments),
	}, nil
}

// analyzeSentiment always returns one entry per segment
func (p *Pipeline) analyzeSentiment(ctx context.Context, segments []entities.SpeakerSegment, log *zap.Logger) []entities.NullSentiment {
	if !p.opts.SentimentEnabled || p.sentiment == nil || len(segments) == 0 {
		return entities.AbsentSentiments(len(segments))
	}

	start := time.Now()
	defer func() { p.metrics.ObserveStage(StageSentiment, time.Since(start)) }()

	texts := make([]string, len(segments))
	for i, s := range segments {
		texts[i] = s.Text
	}

	var results []entities.Sentiment
	err := jobcontext.Safe(ctx, func(ctx context.Context) error {
		var err error
		results, err = p.sentiment.AnalyzeBatch(ctx, texts)
		return err
	})
	if err == nil && len(results) != len(segments) {
		err = fmt.Errorf("%w: got %d results for %d segments", entities.ErrSentimentAnalysis, len(results), len(segments))
	}
	if err != nil {
		log.Warn("sentiment analysis failed, continuing without sentiment",
			zap.String("stage", StageSentiment),
			zap.Error(err),
		)
		p.metrics.Degraded(StageSentiment)
		return entities.AbsentSentiments(len(segments))
	}
	return entities.SomeSentiments(results)
}

func (p *Pipeline) detectMoments(ctx context.Context, segments []entities.SpeakerSegment, sentiments []entities.NullSentiment, log *zap.Logger) []entities.CoachableMoment {
	if p.detector == nil || len(segments) == 0 {
		return nil
	}

	start := time.Now()
	defer func() { p.metrics.ObserveStage(StageCoachable, time.Since(start)) }()

	var moments []entities.CoachableMoment
	err := jobcontext.Safe(ctx, func(context.Context) error {
		moments = p.detector.Detect(segments, sentiments)
		return nil
	})
	if err != nil {
		log.Warn("coachable detection failed, continuing without moments",
			zap.String("stage", StageCoachable),
			zap.Error(err),
		)
		p.metrics.Degraded(StageCoachable)
		return nil
	}

	p.metrics.Moments(moments)
	return moments
}

// markFailed records the failure even when ctx is already cancelled
func (p *Pipeline) markFailed(ctx context.Context, callID string, log *zap.Logger) {
	if err := p.store.TransitionStatus(context.WithoutCancel(ctx), callID, entities.CallStatusFailed); err != nil {
		log.Error("failed to mark call failed", zap.Error(err))
		return
	}
	p.metrics.Finished(entities.CallStatusFailed)
}
