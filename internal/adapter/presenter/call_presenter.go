package presenter

import (
	"github.com/johnquangdev/call-coach/internal/adapter/dto/call"
	"github.com/johnquangdev/call-coach/internal/domain/entities"
	callUsecase "github.com/johnquangdev/call-coach/internal/usecase/call"
)

// ToSegmentResponse converts a Segment entity to SegmentResponse DTO
func ToSegmentResponse(s entities.Segment) call.SegmentResponse {
	resp := call.SegmentResponse{
		Speaker:             s.Speaker,
		StartTime:           s.StartTime,
		EndTime:             s.EndTime,
		Text:                s.Text,
		Sentiment:           s.Sentiment,
		SentimentScore:      s.SentimentScore,
		IsCoachable:         s.IsCoachable,
		CoachableType:       s.CoachableType,
		CoachableConfidence: s.CoachableConfidence,
	}
	if len(s.MatchedPhrases) > 0 {
		resp.MatchedPhrases = []string(s.MatchedPhrases)
	}
	return resp
}

// ToSegmentResponses converts segments, never returning nil
func ToSegmentResponses(segments []entities.Segment) []call.SegmentResponse {
	out := make([]call.SegmentResponse, len(segments))
	for i, s := range segments {
		out[i] = ToSegmentResponse(s)
	}
	return out
}

// ToTranscribeResponse converts a finished submission
func ToTranscribeResponse(r *callUsecase.SubmitResult) *call.TranscribeResponse {
	if r == nil || r.Call == nil || r.Result == nil {
		return nil
	}
	return &call.TranscribeResponse{
		CallID:          r.Call.CallID,
		Status:          string(r.Call.Status),
		Transcript:      r.Result.FullText,
		Segments:        ToSegmentResponses(r.Segments),
		DurationSeconds: r.Result.DurationSeconds,
		Language:        r.Result.Language,
	}
}

// ToCallListResponse converts calls to the list view
func ToCallListResponse(calls []entities.Call) *call.CallListResponse {
	items := make([]call.CallSummaryResponse, len(calls))
	for i, c := range calls {
		items[i] = call.CallSummaryResponse{
			CallID:     c.CallID,
			Status:     string(c.Status),
			AgentID:    c.AgentID,
			CustomerID: c.CustomerID,
			CreatedAt:  c.CreatedAt,
		}
	}
	return &call.CallListResponse{Calls: items, Total: len(items)}
}

// ToCallDetailResponse converts the stored view of a call
func ToCallDetailResponse(d *callUsecase.CallDetail) *call.CallDetailResponse {
	if d == nil || d.Call == nil {
		return nil
	}

	resp := &call.CallDetailResponse{
		CallID:     d.Call.CallID,
		Status:     string(d.Call.Status),
		AgentID:    d.Call.AgentID,
		CustomerID: d.Call.CustomerID,
		CreatedAt:  d.Call.CreatedAt,
		AudioURL:   d.AudioURL,
		Segments:   ToSegmentResponses(d.Segments),
	}

	if d.Transcript != nil {
		text := d.Transcript.FullText
		resp.Transcript = &text
		resp.Language = d.Transcript.Language
		resp.DurationSeconds = d.Transcript.DurationSeconds
	}
	return resp
}
