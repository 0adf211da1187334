package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/johnquangdev/call-coach/internal/adapter/repository"
	"github.com/johnquangdev/call-coach/internal/domain/entities"
	"github.com/johnquangdev/call-coach/internal/infrastructure/database/dbtest"
	"github.com/johnquangdev/call-coach/internal/infrastructure/metrics"
	"github.com/johnquangdev/call-coach/internal/usecase/coachable"
	"github.com/johnquangdev/call-coach/internal/usecase/segmenter"
)

type fakeTranscriber struct {
	raw   *entities.RawTranscript
	err   error
	calls int
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _ string) (*entities.RawTranscript, error) {
	f.calls++
	return f.raw, f.err
}

type fakeSentiment struct {
	fn func(texts []string) ([]entities.Sentiment, error)
}

func (f fakeSentiment) AnalyzeBatch(_ context.Context, texts []string) ([]entities.Sentiment, error) {
	return f.fn(texts)
}

func constantSentiment(label string) fakeSentiment {
	return fakeSentiment{fn: func(texts []string) ([]entities.Sentiment, error) {
		out := make([]entities.Sentiment, len(texts))
		for i := range out {
			out[i] = entities.Sentiment{Label: label, Score: 0.9}
		}
		return out, nil
	}}
}

type panickingDetector struct{}

func (panickingDetector) Detect([]entities.SpeakerSegment, []entities.NullSentiment) []entities.CoachableMoment {
	panic("detector exploded")
}

type failingSaveStore struct {
	*repository.CallRepository
}

func (failingSaveStore) SaveResults(context.Context, *entities.Transcript, []entities.Segment) error {
	return errors.New("disk full")
}

// orderedTimesStore rejects rows the way the segments table constraint does
type orderedTimesStore struct {
	*repository.CallRepository
}

func (s orderedTimesStore) SaveResults(ctx context.Context, transcript *entities.Transcript, segments []entities.Segment) error {
	for _, seg := range segments {
		if seg.StartTime < 0 || seg.EndTime < seg.StartTime {
			return fmt.Errorf("segment %d violates time ordering", seg.SegmentIndex)
		}
	}
	return s.CallRepository.SaveResults(ctx, transcript, segments)
}

func salesCall() *entities.RawTranscript {
	return &entities.RawTranscript{
		FullText: "Hi, thanks for joining. That's too expensive for our budget. Sounds great! How soon can we get started?",
		Language: "en",
		Spans: []entities.RawSpan{
			{Start: 0, End: 2, Text: "Hi, thanks for joining."},
			{Start: 4, End: 6.5, Text: "That's too expensive for our budget."},
			{Start: 9, End: 11.25, Text: "Sounds great! How soon can we get started?"},
		},
	}
}

type fixture struct {
	repo    *repository.CallRepository
	metrics *metrics.Pipeline
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	repo := repository.NewCallRepository(dbtest.New(t))
	require.NoError(t, repo.Create(context.Background(), entities.NewCall("call-1", "agent", "customer")))
	return fixture{
		repo:    repo,
		metrics: metrics.NewPipeline(prometheus.NewRegistry()),
	}
}

func newDetector(t *testing.T) *coachable.Detector {
	t.Helper()
	d, err := coachable.NewDetector()
	require.NoError(t, err)
	return d
}

func (f fixture) pipeline(store CallStore, stt Transcriber, sentiment SentimentAnalyzer, detector MomentDetector, enabled bool) *Pipeline {
	return New(store, stt, sentiment, detector, segmenter.New(1.5), Options{SentimentEnabled: enabled}, zap.NewNop(), f.metrics)
}

func TestProcess_Success(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.pipeline(f.repo, &fakeTranscriber{raw: salesCall()}, constantSentiment(entities.SentimentNegative), newDetector(t), true)

	result, err := p.Process(ctx, "call-1", "/tmp/audio.wav")
	require.NoError(t, err)
	require.Len(t, result.Segments, 3)
	assert.Equal(t, 11.25, result.DurationSeconds)
	assert.Equal(t, "en", result.Language)
	assert.Equal(t, []string{"speaker_0", "speaker_1", "speaker_0"},
		[]string{result.Segments[0].Speaker, result.Segments[1].Speaker, result.Segments[2].Speaker})

	call, err := f.repo.FindByCallID(ctx, "call-1")
	require.NoError(t, err)
	assert.Equal(t, entities.CallStatusCompleted, call.Status)

	transcript, err := f.repo.FindTranscript(ctx, "call-1")
	require.NoError(t, err)
	assert.Equal(t, salesCall().FullText, transcript.FullText)

	segments, err := f.repo.FindSegments(ctx, "call-1")
	require.NoError(t, err)
	require.Len(t, segments, 3)
	for _, s := range segments {
		require.NotNil(t, s.Sentiment)
		assert.Equal(t, entities.SentimentNegative, *s.Sentiment)
	}

	// the objection gets the NEGATIVE boost: 0.6 + 0.15
	coachableRows, err := f.repo.FindCoachableSegments(ctx, "call-1")
	require.NoError(t, err)
	require.Len(t, coachableRows, 2)
	assert.Equal(t, "objection", *coachableRows[0].CoachableType)
	assert.Equal(t, 0.75, *coachableRows[0].CoachableConfidence)
	assert.Equal(t, "buying_signal", *coachableRows[1].CoachableType)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CallsCounter(entities.CallStatusCompleted)))
}

func TestProcess_TranscriptionFailureMarksCallFailed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	stt := &fakeTranscriber{err: errors.New("corrupt audio")}
	p := f.pipeline(f.repo, stt, constantSentiment(entities.SentimentNeutral), newDetector(t), true)

	result, err := p.Process(ctx, "call-1", "/tmp/audio.wav")
	assert.Nil(t, result)
	require.Error(t, err)
	assert.ErrorIs(t, err, entities.ErrAudioProcessing)
	assert.Contains(t, err.Error(), "corrupt audio")

	call, err := f.repo.FindByCallID(ctx, "call-1")
	require.NoError(t, err)
	assert.Equal(t, entities.CallStatusFailed, call.Status)

	_, err = f.repo.FindTranscript(ctx, "call-1")
	assert.ErrorIs(t, err, entities.ErrTranscriptNotFound)
	segments, err := f.repo.FindSegments(ctx, "call-1")
	require.NoError(t, err)
	assert.Empty(t, segments)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CallsCounter(entities.CallStatusFailed)))
}

func TestProcess_TranscriptionErrorIsWrappedOnce(t *testing.T) {
	f := newFixture(t)

	stt := &fakeTranscriber{err: fmt.Errorf("%w: file not found", entities.ErrAudioProcessing)}
	p := f.pipeline(f.repo, stt, nil, newDetector(t), false)

	_, err := p.Process(context.Background(), "call-1", "/tmp/missing.wav")
	require.ErrorIs(t, err, entities.ErrAudioProcessing)
	assert.Equal(t, 1, strings.Count(err.Error(), entities.ErrAudioProcessing.Error()))
}

func TestProcess_MalformedSpanTimesAreStored(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	raw := &entities.RawTranscript{
		FullText: "Hello there. That costs too much.",
		Spans: []entities.RawSpan{
			{Start: -0.3, End: 1, Text: "Hello there."},
			{Start: 5, End: 4.9, Text: "That costs too much."},
		},
	}
	p := f.pipeline(orderedTimesStore{CallRepository: f.repo}, &fakeTranscriber{raw: raw}, nil, newDetector(t), false)

	result, err := p.Process(ctx, "call-1", "/tmp/audio.wav")
	require.NoError(t, err)
	require.Len(t, result.Segments, 2)
	assert.Equal(t, 0.0, result.Segments[0].StartTime)
	assert.Equal(t, 5.0, result.Segments[1].StartTime)
	assert.Equal(t, 5.0, result.Segments[1].EndTime)

	call, err := f.repo.FindByCallID(ctx, "call-1")
	require.NoError(t, err)
	assert.Equal(t, entities.CallStatusCompleted, call.Status)
}

func TestProcess_TranscriberPanicIsFatal(t *testing.T) {
	f := newFixture(t)

	stt := &panickyTranscriber{}
	p := f.pipeline(f.repo, stt, nil, newDetector(t), false)

	_, err := p.Process(context.Background(), "call-1", "/tmp/audio.wav")
	assert.ErrorIs(t, err, entities.ErrAudioProcessing)

	call, err := f.repo.FindByCallID(context.Background(), "call-1")
	require.NoError(t, err)
	assert.Equal(t, entities.CallStatusFailed, call.Status)
}

type panickyTranscriber struct{}

func (panickyTranscriber) Transcribe(context.Context, string) (*entities.RawTranscript, error) {
	panic("decoder crashed")
}

func TestProcess_SentimentFailureIsNonFatal(t *testing.T) {
	cases := map[string]SentimentAnalyzer{
		"error": fakeSentiment{fn: func([]string) ([]entities.Sentiment, error) {
			return nil, errors.New("model loading")
		}},
		"panic": fakeSentiment{fn: func([]string) ([]entities.Sentiment, error) {
			panic("tokenizer crashed")
		}},
		"short result": fakeSentiment{fn: func([]string) ([]entities.Sentiment, error) {
			return []entities.Sentiment{{Label: entities.SentimentPositive, Score: 1}}, nil
		}},
	}

	for name, analyzer := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()

			p := f.pipeline(f.repo, &fakeTranscriber{raw: salesCall()}, analyzer, newDetector(t), true)

			result, err := p.Process(ctx, "call-1", "/tmp/audio.wav")
			require.NoError(t, err)
			assert.Len(t, result.Segments, 3)

			segments, err := f.repo.FindSegments(ctx, "call-1")
			require.NoError(t, err)
			require.Len(t, segments, 3)
			for _, s := range segments {
				assert.Nil(t, s.Sentiment)
				assert.Nil(t, s.SentimentScore)
			}

			// detection still runs, just without the boost
			rows, err := f.repo.FindCoachableSegments(ctx, "call-1")
			require.NoError(t, err)
			require.Len(t, rows, 2)
			assert.Equal(t, 0.6, *rows[0].CoachableConfidence)

			call, err := f.repo.FindByCallID(ctx, "call-1")
			require.NoError(t, err)
			assert.Equal(t, entities.CallStatusCompleted, call.Status)
			assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.DegradedCounter(StageSentiment)))
		})
	}
}

func TestProcess_SentimentDisabledSkipsAnalyzer(t *testing.T) {
	f := newFixture(t)
	called := false
	analyzer := fakeSentiment{fn: func(texts []string) ([]entities.Sentiment, error) {
		called = true
		return make([]entities.Sentiment, len(texts)), nil
	}}

	p := f.pipeline(f.repo, &fakeTranscriber{raw: salesCall()}, analyzer, newDetector(t), false)

	_, err := p.Process(context.Background(), "call-1", "/tmp/audio.wav")
	require.NoError(t, err)
	assert.False(t, called)
}

func TestProcess_DetectorPanicIsNonFatal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.pipeline(f.repo, &fakeTranscriber{raw: salesCall()}, nil, panickingDetector{}, false)

	_, err := p.Process(ctx, "call-1", "/tmp/audio.wav")
	require.NoError(t, err)

	rows, err := f.repo.FindCoachableSegments(ctx, "call-1")
	require.NoError(t, err)
	assert.Empty(t, rows)

	segments, err := f.repo.FindSegments(ctx, "call-1")
	require.NoError(t, err)
	assert.Len(t, segments, 3)
}

func TestProcess_EmptyTranscript(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	raw := &entities.RawTranscript{Spans: []entities.RawSpan{{Start: 0, End: 1, Text: "   "}}}
	p := f.pipeline(f.repo, &fakeTranscriber{raw: raw}, constantSentiment(entities.SentimentPositive), newDetector(t), true)

	result, err := p.Process(ctx, "call-1", "/tmp/audio.wav")
	require.NoError(t, err)
	assert.Empty(t, result.Segments)
	assert.Zero(t, result.DurationSeconds)

	_, err = f.repo.FindTranscript(ctx, "call-1")
	assert.NoError(t, err)
}

func TestProcess_PersistenceFailureMarksCallFailed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	store := failingSaveStore{CallRepository: f.repo}
	p := f.pipeline(store, &fakeTranscriber{raw: salesCall()}, nil, newDetector(t), false)

	_, err := p.Process(ctx, "call-1", "/tmp/audio.wav")
	assert.ErrorIs(t, err, entities.ErrPersistence)

	call, err := f.repo.FindByCallID(ctx, "call-1")
	require.NoError(t, err)
	assert.Equal(t, entities.CallStatusFailed, call.Status)
}

func TestProcess_UnknownCall(t *testing.T) {
	f := newFixture(t)
	stt := &fakeTranscriber{raw: salesCall()}
	p := f.pipeline(f.repo, stt, nil, newDetector(t), false)

	_, err := p.Process(context.Background(), "missing", "/tmp/audio.wav")
	assert.ErrorIs(t, err, entities.ErrCallNotFound)
	assert.Zero(t, stt.calls)
}

func TestProcess_RefusesCallNotPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	stt := &fakeTranscriber{raw: salesCall()}
	p := f.pipeline(f.repo, stt, nil, newDetector(t), false)

	_, err := p.Process(ctx, "call-1", "/tmp/audio.wav")
	require.NoError(t, err)
	require.Equal(t, 1, stt.calls)

	_, err = p.Process(ctx, "call-1", "/tmp/audio.wav")
	assert.ErrorIs(t, err, entities.ErrInvalidStatusTransition)
	assert.Equal(t, 1, stt.calls)

	call, err := f.repo.FindByCallID(ctx, "call-1")
	require.NoError(t, err)
	assert.Equal(t, entities.CallStatusCompleted, call.Status)
}

func TestProcess_CancelledContextStillMarksFailed(t *testing.T) {
	f := newFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	stt := &cancellingTranscriber{cancel: cancel}
	p := f.pipeline(f.repo, stt, nil, newDetector(t), false)

	_, err := p.Process(ctx, "call-1", "/tmp/audio.wav")
	assert.ErrorIs(t, err, entities.ErrAudioProcessing)
	assert.ErrorIs(t, err, context.Canceled)

	call, err := f.repo.FindByCallID(context.Background(), "call-1")
	require.NoError(t, err)
	assert.Equal(t, entities.CallStatusFailed, call.Status)
}

type cancellingTranscriber struct {
	cancel context.CancelFunc
}

func (c *cancellingTranscriber) Transcribe(ctx context.Context, _ string) (*entities.RawTranscript, error) {
	c.cancel()
	return nil, ctx.Err()
}
