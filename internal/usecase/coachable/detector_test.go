package coachable

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/call-coach/internal/domain/entities"
)

func segs(texts ...string) []entities.SpeakerSegment {
	out := make([]entities.SpeakerSegment, len(texts))
	for i, t := range texts {
		out[i] = entities.SpeakerSegment{Speaker: "speaker_0", StartTime: float64(i), EndTime: float64(i) + 1, Text: t}
	}
	return out
}

func sentiment(label string) entities.NullSentiment {
	return entities.NullSentiment{Sentiment: entities.Sentiment{Label: label, Score: 0.9}, Valid: true}
}

func newDetector(t *testing.T, opts ...Option) *Detector {
	t.Helper()
	d, err := NewDetector(opts...)
	require.NoError(t, err)
	return d
}

func TestDetect_PriceObjection(t *testing.T) {
	d := newDetector(t)

	moments := d.Detect(segs("That's too expensive for our budget"), nil)

	require.Len(t, moments, 1)
	assert.Equal(t, entities.CoachableObjection, moments[0].Type)
	assert.Equal(t, 0, moments[0].SegmentIndex)
	assert.InDelta(t, 0.6, moments[0].Confidence, 1e-9)
	assert.Equal(t, "too expensive, expensive", moments[0].MatchedPattern)
}

func TestDetect_SingleMatchNeedsLowerThreshold(t *testing.T) {
	text := "What about the price"

	assert.Empty(t, newDetector(t).Detect(segs(text), nil))

	moments := newDetector(t, WithThreshold(0.3)).Detect(segs(text), nil)
	require.Len(t, moments, 1)
	assert.Equal(t, entities.CoachableObjection, moments[0].Type)
	assert.InDelta(t, 0.45, moments[0].Confidence, 1e-9)
}

func TestDetect_BuyingSignal(t *testing.T) {
	d := newDetector(t)

	moments := d.Detect(segs("Sounds great! How soon can we get started?"), nil)

	require.Len(t, moments, 1)
	assert.Equal(t, entities.CoachableBuyingSignal, moments[0].Type)
	assert.InDelta(t, 0.75, moments[0].Confidence, 1e-9)
	assert.Equal(t, "Sounds great, How soon, get started", moments[0].MatchedPattern)
	assert.Equal(t, []string{"Sounds great", "How soon", "get started"}, moments[0].MatchedPhrases)
}

func TestDetect_SentimentBoost(t *testing.T) {
	d := newDetector(t)
	text := segs("That's too expensive for our budget")

	plain := d.Detect(text, nil)
	boosted := d.Detect(text, []entities.NullSentiment{sentiment(entities.SentimentNegative)})
	unrelated := d.Detect(text, []entities.NullSentiment{sentiment(entities.SentimentPositive)})

	require.Len(t, plain, 1)
	require.Len(t, boosted, 1)
	require.Len(t, unrelated, 1)
	assert.InDelta(t, 0.75, boosted[0].Confidence, 1e-9)
	assert.GreaterOrEqual(t, boosted[0].Confidence, plain[0].Confidence)
	assert.Equal(t, plain[0].Confidence, unrelated[0].Confidence)
	assert.Equal(t, plain[0].MatchedPattern, boosted[0].MatchedPattern)
}

func TestDetect_BoostLabelIsCaseInsensitive(t *testing.T) {
	d := newDetector(t)
	moments := d.Detect(segs("What about the price"), []entities.NullSentiment{sentiment("negative")})

	require.Len(t, moments, 1)
	assert.InDelta(t, 0.6, moments[0].Confidence, 1e-9)
}

func TestDetect_AbsentSentimentGetsNoBoost(t *testing.T) {
	d := newDetector(t)
	absent := entities.NullSentiment{Sentiment: entities.Sentiment{Label: entities.SentimentNegative}, Valid: false}

	assert.Empty(t, d.Detect(segs("What about the price"), []entities.NullSentiment{absent}))
}

func TestDetect_FallsThroughToNextCategory(t *testing.T) {
	d := newDetector(t)
	text := segs("The pricing looks fine")

	// Objection and buying signal both score 0.45; only the positive
	// boost lifts the buying signal over the threshold.
	assert.Empty(t, d.Detect(text, nil))

	moments := d.Detect(text, []entities.NullSentiment{sentiment(entities.SentimentPositive)})
	require.Len(t, moments, 1)
	assert.Equal(t, entities.CoachableBuyingSignal, moments[0].Type)
	assert.InDelta(t, 0.6, moments[0].Confidence, 1e-9)
}

func TestDetect_FirstCategoryWins(t *testing.T) {
	d := newDetector(t)

	// Also matches "we need" from the buying signals.
	moments := d.Detect(segs("We need to think about the price"), nil)

	require.Len(t, moments, 1)
	assert.Equal(t, entities.CoachableObjection, moments[0].Type)
}

func TestDetect_HesitationCappedWithoutBoost(t *testing.T) {
	d := newDetector(t)
	text := segs("Um, I guess it's kind of...")

	moments := d.Detect(text, []entities.NullSentiment{sentiment(entities.SentimentNegative)})

	require.Len(t, moments, 1)
	assert.Equal(t, entities.CoachableHesitation, moments[0].Type)
	assert.InDelta(t, 0.85, moments[0].Confidence, 1e-9)
}

func TestDetect_EvidenceLimitedToThreePhrases(t *testing.T) {
	d := newDetector(t)

	moments := d.Detect(segs("That's too expensive, I'm not sure, maybe later, we use a competitor"), nil)

	require.Len(t, moments, 1)
	assert.InDelta(t, 0.85, moments[0].Confidence, 1e-9)
	assert.Equal(t, "too expensive, not sure, competitor", moments[0].MatchedPattern)
	assert.Len(t, moments[0].MatchedPhrases, 3)
}

func TestDetect_SegmentIndexAndOrder(t *testing.T) {
	d := newDetector(t)
	texts := segs(
		"Good morning",
		"That's too expensive for our budget",
		"Let me show you the dashboard",
		"Sounds great! How soon can we get started?",
	)

	moments := d.Detect(texts, entities.AbsentSentiments(2))

	require.Len(t, moments, 2)
	assert.Equal(t, 1, moments[0].SegmentIndex)
	assert.Equal(t, entities.CoachableObjection, moments[0].Type)
	assert.Equal(t, 3, moments[1].SegmentIndex)
	assert.Equal(t, entities.CoachableBuyingSignal, moments[1].Type)
}

func TestDetect_EmptyInput(t *testing.T) {
	moments := newDetector(t).Detect(nil, nil)
	assert.NotNil(t, moments)
	assert.Empty(t, moments)
}

func TestDetect_Properties(t *testing.T) {
	d := newDetector(t, WithThreshold(0))
	texts := segs(
		"um uh hmm er ah",
		"too expensive, too costly, over budget, competitor, not now, need to think, doesn't fit, price",
		"sounds good, how soon, pricing, sign up, our team, demo, integration",
		"hello there",
		"well... you know, I guess, sort of",
		"",
	)
	labels := []string{
		entities.SentimentNegative, entities.SentimentNegative, entities.SentimentPositive,
		entities.SentimentNeutral, entities.SentimentPositive, entities.SentimentNegative,
	}
	sentiments := make([]entities.NullSentiment, len(labels))
	for i, l := range labels {
		sentiments[i] = sentiment(l)
	}

	moments := d.Detect(texts, sentiments)

	seen := map[int]bool{}
	for _, m := range moments {
		assert.False(t, seen[m.SegmentIndex], "duplicate moment for segment %d", m.SegmentIndex)
		seen[m.SegmentIndex] = true
		assert.GreaterOrEqual(t, m.Confidence, 0.0)
		assert.LessOrEqual(t, m.Confidence, 1.0)
	}
	assert.Len(t, moments, 4)
}

func TestDetect_CustomCategories(t *testing.T) {
	d := newDetector(t, WithThreshold(0.4), WithCategories(Category{
		Type:     entities.CoachableObjection,
		Patterns: []string{`\bnope\b`},
	}))

	moments := d.Detect(segs("NOPE, not interested", "sounds great"), nil)

	require.Len(t, moments, 1)
	assert.Equal(t, "NOPE", moments[0].MatchedPattern)
}

func TestNewDetector_InvalidConfig(t *testing.T) {
	cases := map[string][]Option{
		"threshold too high": {WithThreshold(1.5)},
		"threshold negative": {WithThreshold(-0.1)},
		"no categories":      {WithCategories()},
		"missing type":       {WithCategories(Category{Patterns: []string{"x"}})},
		"no patterns":        {WithCategories(Category{Type: entities.CoachableHesitation})},
		"bad pattern":        {WithCategories(Category{Type: entities.CoachableHesitation, Patterns: []string{"(unclosed"}})},
	}

	for name, opts := range cases {
		t.Run(name, func(t *testing.T) {
			d, err := NewDetector(opts...)
			assert.Nil(t, d)
			assert.True(t, errors.Is(err, entities.ErrInvalidCategoryConfig))
		})
	}
}

func TestDetect_UnicodeWordBoundaries(t *testing.T) {
	d := newDetector(t, WithThreshold(0.4))

	assert.Empty(t, d.Detect(segs("costé"), nil))
	assert.Empty(t, d.Detect(segs("écost"), nil))

	moments := d.Detect(segs("costé aside, the cost is fine"), nil)
	require.Len(t, moments, 1)
	assert.Equal(t, entities.CoachableObjection, moments[0].Type)
	assert.Equal(t, "cost", moments[0].MatchedPattern)
	assert.InDelta(t, 0.45, moments[0].Confidence, 1e-9)

	moments = d.Detect(segs("Au café, the price is fine"), nil)
	require.Len(t, moments, 1)
	assert.Equal(t, "price", moments[0].MatchedPattern)
}
