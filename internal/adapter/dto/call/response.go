package call

import "time"

// SegmentResponse is one speaker segment with its annotations
type SegmentResponse struct {
	Speaker             string   `json:"speaker"`
	StartTime           float64  `json:"start_time"`
	EndTime             float64  `json:"end_time"`
	Text                string   `json:"text"`
	Sentiment           *string  `json:"sentiment"`
	SentimentScore      *float64 `json:"sentiment_score"`
	IsCoachable         bool     `json:"is_coachable"`
	CoachableType       *string  `json:"coachable_type"`
	CoachableConfidence *float64 `json:"coachable_confidence,omitempty"`
	MatchedPhrases      []string `json:"matched_phrases,omitempty"`
}

// TranscribeResponse is returned once an upload has been fully processed
type TranscribeResponse struct {
	CallID          string            `json:"call_id"`
	Status          string            `json:"status"`
	Transcript      string            `json:"transcript"`
	Segments        []SegmentResponse `json:"segments"`
	DurationSeconds float64           `json:"duration_seconds"`
	Language        string            `json:"language,omitempty"`
}

// CallSummaryResponse is one row of the call list
type CallSummaryResponse struct {
	CallID     string    `json:"call_id"`
	Status     string    `json:"status"`
	AgentID    string    `json:"agent_id,omitempty"`
	CustomerID string    `json:"customer_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// CallListResponse represents a list of calls
type CallListResponse struct {
	Calls []CallSummaryResponse `json:"calls"`
	Total int                   `json:"total"`
}

// CallDetailResponse is the full analysis of a call
type CallDetailResponse struct {
	CallID          string            `json:"call_id"`
	Status          string            `json:"status"`
	AgentID         string            `json:"agent_id,omitempty"`
	CustomerID      string            `json:"customer_id,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	Transcript      *string           `json:"transcript"`
	Language        string            `json:"language,omitempty"`
	DurationSeconds *float64          `json:"duration_seconds,omitempty"`
	AudioURL        string            `json:"audio_url,omitempty"`
	Segments        []SegmentResponse `json:"segments"`
}
