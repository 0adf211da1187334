// Package segmenter attributes speakers to raw speech-to-text spans.
//
// This is pseudo-diarization: speakers alternate between speaker_0 and
// speaker_1 whenever the silence before a span exceeds a gap threshold.
// It does not identify voices and never infers more than two speakers.
package segmenter

import (
	"fmt"
	"math"
	"strings"

	"github.com/johnquangdev/call-coach/internal/domain/entities"
)

// DefaultSilenceGap is the gap in seconds that toggles the speaker
const DefaultSilenceGap = 1.5

// Segmenter converts raw spans into speaker segments
type Segmenter struct {
	silenceGap float64
}

// New creates a segmenter. A non-positive gap falls back to DefaultSilenceGap.
func New(silenceGap float64) *Segmenter {
	if silenceGap <= 0 {
		silenceGap = DefaultSilenceGap
	}
	return &Segmenter{silenceGap: silenceGap}
}

// SilenceGap returns the configured toggle threshold in seconds
func (s *Segmenter) SilenceGap() float64 {
	return s.silenceGap
}

// AssignSpeakers labels each non-empty span with an alternating speaker.
// The gap is measured against the raw spans[i-1], even when that span was
// dropped for empty text. Emitted times satisfy 0 <= start <= end.
func (s *Segmenter) AssignSpeakers(spans []entities.RawSpan) []entities.SpeakerSegment {
	segments := make([]entities.SpeakerSegment, 0, len(spans))
	speaker := 0

	for i, span := range spans {
		text := strings.TrimSpace(span.Text)
		if text == "" {
			// Dropped spans never toggle, but still serve as the
			// previous span for the next gap check.
			continue
		}

		if i > 0 && span.Start-spans[i-1].End > s.silenceGap {
			speaker = 1 - speaker
		}

		// engines occasionally report negative or inverted times
		start := math.Max(0, round(span.Start, 2))
		end := math.Max(start, round(span.End, 2))

		segments = append(segments, entities.SpeakerSegment{
			Speaker:   SpeakerLabel(speaker),
			StartTime: start,
			EndTime:   end,
			Text:      text,
		})
	}

	return segments
}

// SpeakerLabel formats a speaker index
func SpeakerLabel(idx int) string {
	return fmt.Sprintf("speaker_%d", idx)
}

// Duration is the end time of the last segment, or 0
func Duration(segments []entities.SpeakerSegment) float64 {
	if len(segments) == 0 {
		return 0
	}
	return segments[len(segments)-1].EndTime
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
