package entities

import (
	"time"
)

// RawSpan is one timed span as returned by a speech-to-text engine,
// before any speaker attribution
type RawSpan struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// RawTranscript is the output of a speech-to-text engine
type RawTranscript struct {
	FullText string    `json:"full_text"`
	Language string    `json:"language,omitempty"`
	Spans    []RawSpan `json:"raw_segments"`
}

// SpeakerSegment is one speaker-attributed utterance produced by the segmenter
type SpeakerSegment struct {
	Speaker   string  `json:"speaker"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
	Text      string  `json:"text"`
}

// TranscriptionResult is the complete output of one pipeline run
type TranscriptionResult struct {
	FullText        string           `json:"full_text"`
	Segments        []SpeakerSegment `json:"segments"`
	Language        string           `json:"language,omitempty"`
	DurationSeconds float64          `json:"duration_seconds"`
}

// Transcript is the stored full-text transcript of a call
type Transcript struct {
	ID              uint      `json:"-" gorm:"primaryKey;autoIncrement"`
	CallID          string    `json:"call_id" gorm:"type:varchar(64);uniqueIndex;not null"`
	FullText        string    `json:"full_text" gorm:"type:text;not null"`
	Language        string    `json:"language,omitempty" gorm:"type:varchar(10);default:'en'"`
	DurationSeconds *float64  `json:"duration_seconds,omitempty"`
	CreatedAt       time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for GORM
func (Transcript) TableName() string {
	return "transcripts"
}

// NewTranscript builds the transcript row for a finished pipeline run
func NewTranscript(callID string, result *TranscriptionResult) *Transcript {
	duration := result.DurationSeconds
	return &Transcript{
		CallID:          callID,
		FullText:        result.FullText,
		Language:        result.Language,
		DurationSeconds: &duration,
		CreatedAt:       time.Now(),
	}
}
