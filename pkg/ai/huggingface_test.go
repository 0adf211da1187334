package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/johnquangdev/call-coach/internal/domain/entities"
	"github.com/johnquangdev/call-coach/pkg/config"
)

func newTestHF(t *testing.T, handler http.HandlerFunc) *HuggingFaceSentiment {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	h := NewHuggingFaceSentiment(config.SentimentConfig{
		Model:     "distilbert-sst2",
		HFToken:   "hf-test",
		HFBaseURL: ts.URL,
	}, zap.NewNop())
	h.backoff = func() backoff.BackOff {
		return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, 3)
	}
	return h
}

func TestHuggingFaceSentiment_AnalyzeBatch(t *testing.T) {
	var got hfRequest
	h := newTestHF(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/distilbert-sst2", r.URL.Path)
		assert.Equal(t, "Bearer hf-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			[{"label":"POSITIVE","score":0.99987},{"label":"NEGATIVE","score":0.00013}],
			[{"label":"negative","score":0.91234},{"label":"positive","score":0.08766}]
		]`))
	})

	long := strings.Repeat("a", 600)
	results, err := h.AnalyzeBatch(context.Background(), []string{"I love it", "  ", long})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, entities.Sentiment{Label: entities.SentimentPositive, Score: 0.9999}, results[0])
	assert.Equal(t, entities.Sentiment{Label: entities.SentimentNeutral, Score: 0.5}, results[1])
	assert.Equal(t, entities.Sentiment{Label: entities.SentimentNegative, Score: 0.9123}, results[2])

	// blank text never reaches the API and long text is truncated
	require.Len(t, got.Inputs, 2)
	assert.Len(t, got.Inputs[1], maxSentimentChars)
	assert.True(t, got.Options.WaitForModel)
}

func TestHuggingFaceSentiment_RetriesColdStart(t *testing.T) {
	var calls int32
	h := newTestHF(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":"Model is currently loading"}`))
			return
		}
		w.Write([]byte(`[[{"label":"NEGATIVE","score":0.8}]]`))
	})

	results, err := h.AnalyzeBatch(context.Background(), []string{"too expensive"})
	require.NoError(t, err)
	assert.Equal(t, entities.SentimentNegative, results[0].Label)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestHuggingFaceSentiment_FailureFillsNeutral(t *testing.T) {
	var calls int32
	h := newTestHF(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	})

	results, err := h.AnalyzeBatch(context.Background(), []string{"a", "", "b"})
	require.NoError(t, err)
	assert.Equal(t, []entities.Sentiment{
		{Label: entities.SentimentNeutral, Score: 0},
		{Label: entities.SentimentNeutral, Score: 0.5},
		{Label: entities.SentimentNeutral, Score: 0},
	}, results)

	// 401 is not retried
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestHuggingFaceSentiment_MisalignedResponse(t *testing.T) {
	h := newTestHF(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[[{"label":"POSITIVE","score":0.9}]]`))
	})

	results, err := h.AnalyzeBatch(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, entities.SentimentNeutral, r.Label)
		assert.Zero(t, r.Score)
	}
}

func TestHuggingFaceSentiment_Empty(t *testing.T) {
	h := newTestHF(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	results, err := h.AnalyzeBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)

	single, err := h.Analyze(context.Background(), "   ")
	require.NoError(t, err)
	assert.Equal(t, entities.Sentiment{Label: entities.SentimentNeutral, Score: 0.5}, single)
}
