package entities

import (
	"time"

	"gorm.io/datatypes"
)

// Segment is one persisted speaker segment, denormalized with its
// sentiment and coaching annotations
type Segment struct {
	ID                  uint                        `json:"-" gorm:"primaryKey;autoIncrement"`
	CallID              string                      `json:"call_id" gorm:"type:varchar(64);not null;index;index:ix_segments_call_speaker,priority:1"`
	SegmentIndex        int                         `json:"segment_index" gorm:"not null"`
	Speaker             string                      `json:"speaker" gorm:"type:varchar(64);not null;default:'unknown';index:ix_segments_call_speaker,priority:2"`
	StartTime           float64                     `json:"start_time" gorm:"not null"`
	EndTime             float64                     `json:"end_time" gorm:"not null"`
	Text                string                      `json:"text" gorm:"type:text;not null"`
	Sentiment           *string                     `json:"sentiment,omitempty" gorm:"type:varchar(32)"`
	SentimentScore      *float64                    `json:"sentiment_score,omitempty"`
	IsCoachable         bool                        `json:"is_coachable" gorm:"not null;default:false;index"`
	CoachableType       *string                     `json:"coachable_type,omitempty" gorm:"type:varchar(64)"`
	CoachableConfidence *float64                    `json:"coachable_confidence,omitempty"`
	MatchedPhrases      datatypes.JSONSlice[string] `json:"matched_phrases,omitempty"`
	CreatedAt           time.Time                   `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for GORM
func (Segment) TableName() string {
	return "segments"
}

// BuildSegments joins speaker segments with their positionally aligned
// sentiments and any coachable moments into persistable rows.
// sentiments may be shorter than segments; missing positions are absent.
func BuildSegments(callID string, segments []SpeakerSegment, sentiments []NullSentiment, moments []CoachableMoment) []Segment {
	byIndex := make(map[int]CoachableMoment, len(moments))
	for _, m := range moments {
		byIndex[m.SegmentIndex] = m
	}

	rows := make([]Segment, 0, len(segments))
	for i, seg := range segments {
		row := Segment{
			CallID:       callID,
			SegmentIndex: i,
			Speaker:      seg.Speaker,
			StartTime:    seg.StartTime,
			EndTime:      seg.EndTime,
			Text:         seg.Text,
		}

		if i < len(sentiments) && sentiments[i].Valid {
			label := sentiments[i].Sentiment.Label
			score := sentiments[i].Sentiment.Score
			row.Sentiment = &label
			row.SentimentScore = &score
		}

		if m, ok := byIndex[i]; ok {
			kind := string(m.Type)
			confidence := m.Confidence
			row.IsCoachable = true
			row.CoachableType = &kind
			row.CoachableConfidence = &confidence
			row.MatchedPhrases = datatypes.JSONSlice[string](m.MatchedPhrases)
		}

		rows = append(rows, row)
	}
	return rows
}
