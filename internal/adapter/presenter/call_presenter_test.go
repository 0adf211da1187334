package presenter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/johnquangdev/call-coach/internal/domain/entities"
	callUsecase "github.com/johnquangdev/call-coach/internal/usecase/call"
)

func TestToSegmentResponse(t *testing.T) {
	kind := "objection"
	confidence := 0.75
	resp := ToSegmentResponse(entities.Segment{
		Speaker:             "speaker_1",
		StartTime:           4,
		EndTime:             6.5,
		Text:                "That's too expensive for our budget.",
		IsCoachable:         true,
		CoachableType:       &kind,
		CoachableConfidence: &confidence,
		MatchedPhrases:      datatypes.JSONSlice[string]{"too expensive", "expensive"},
	})

	assert.Equal(t, "speaker_1", resp.Speaker)
	assert.True(t, resp.IsCoachable)
	assert.Equal(t, &kind, resp.CoachableType)
	assert.Nil(t, resp.Sentiment)
	assert.Equal(t, []string{"too expensive", "expensive"}, resp.MatchedPhrases)

	assert.Nil(t, ToSegmentResponse(entities.Segment{}).MatchedPhrases)
	assert.NotNil(t, ToSegmentResponses(nil))
}

func TestToCallDetailResponse(t *testing.T) {
	assert.Nil(t, ToCallDetailResponse(nil))

	pending := ToCallDetailResponse(&callUsecase.CallDetail{
		Call: &entities.Call{CallID: "call-1", Status: entities.CallStatusPending},
	})
	require.NotNil(t, pending)
	assert.Nil(t, pending.Transcript)
	assert.Empty(t, pending.Segments)

	duration := 3.0
	done := ToCallDetailResponse(&callUsecase.CallDetail{
		Call:       &entities.Call{CallID: "call-1", Status: entities.CallStatusCompleted},
		Transcript: &entities.Transcript{FullText: "Hi.", Language: "en", DurationSeconds: &duration},
		AudioURL:   "https://files.example.com/calls/call-1_a.wav",
	})
	require.NotNil(t, done.Transcript)
	assert.Equal(t, "Hi.", *done.Transcript)
	assert.Equal(t, "en", done.Language)
	assert.Equal(t, "https://files.example.com/calls/call-1_a.wav", done.AudioURL)
}

func TestToCallListResponse(t *testing.T) {
	resp := ToCallListResponse([]entities.Call{{CallID: "a"}, {CallID: "b"}})
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, "b", resp.Calls[1].CallID)

	assert.Empty(t, ToCallListResponse(nil).Calls)
}
