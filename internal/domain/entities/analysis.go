package entities

// Sentiment labels produced by sentiment engines
const (
	SentimentPositive = "POSITIVE"
	SentimentNegative = "NEGATIVE"
	SentimentNeutral  = "NEUTRAL"
)

// Sentiment is the classification of a single segment's text
type Sentiment struct {
	Label string  `json:"label"` // POSITIVE | NEGATIVE | NEUTRAL
	Score float64 `json:"score"` // 0.0 - 1.0
}

// NullSentiment is a sentiment that may be absent, in the style of sql.NullString.
// Sentiment slices are positionally aligned with segments; a failed or
// skipped analysis is an entry with Valid false, never a shorter slice.
type NullSentiment struct {
	Sentiment Sentiment
	Valid     bool
}

// SomeSentiments wraps every result as a present entry
func SomeSentiments(results []Sentiment) []NullSentiment {
	out := make([]NullSentiment, len(results))
	for i, r := range results {
		out[i] = NullSentiment{Sentiment: r, Valid: true}
	}
	return out
}

// AbsentSentiments returns n absent entries
func AbsentSentiments(n int) []NullSentiment {
	return make([]NullSentiment, n)
}

// CoachableType is the kind of coaching-relevant moment
type CoachableType string

const (
	CoachableObjection    CoachableType = "objection"
	CoachableBuyingSignal CoachableType = "buying_signal"
	CoachableHesitation   CoachableType = "hesitation"
)

// CoachableMoment flags one segment as coaching-relevant
type CoachableMoment struct {
	SegmentIndex   int           `json:"segment_index"`
	Type           CoachableType `json:"coachable_type"`
	Confidence     float64       `json:"confidence"`
	MatchedPattern string        `json:"matched_pattern"`
	MatchedPhrases []string      `json:"matched_phrases,omitempty"`
}
