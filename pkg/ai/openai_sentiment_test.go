package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/johnquangdev/call-coach/internal/domain/entities"
	"github.com/johnquangdev/call-coach/pkg/config"
)

func chatServer(t *testing.T, content string, status int) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			w.Write([]byte(`{"error":{"message":"nope"}}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"choices": []map[string]interface{}{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]string{"role": "assistant", "content": content},
			}},
		})
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestOpenAISentiment_AnalyzeBatch(t *testing.T) {
	ts := chatServer(t, `{"results":[{"label":"positive","score":0.92},{"label":"mixed","score":1.4}]}`, http.StatusOK)
	o := NewOpenAISentiment(&config.OpenAIConfig{APIKey: "k", BaseURL: ts.URL + "/v1"}, "", zap.NewNop())

	results, err := o.AnalyzeBatch(context.Background(), []string{"Great!", "", "Hmm"})
	require.NoError(t, err)
	assert.Equal(t, []entities.Sentiment{
		{Label: entities.SentimentPositive, Score: 0.92},
		{Label: entities.SentimentNeutral, Score: 0.5},
		{Label: entities.SentimentNeutral, Score: 1},
	}, results)
}

func TestOpenAISentiment_FailureFillsNeutral(t *testing.T) {
	cases := map[string]*httptest.Server{
		"http error":   chatServer(t, "", http.StatusBadRequest),
		"invalid json": chatServer(t, "not json", http.StatusOK),
		"short result": chatServer(t, `{"results":[]}`, http.StatusOK),
	}

	for name, ts := range cases {
		t.Run(name, func(t *testing.T) {
			o := NewOpenAISentiment(&config.OpenAIConfig{APIKey: "k", BaseURL: ts.URL + "/v1"}, "gpt-4o-mini", zap.NewNop())

			results, err := o.AnalyzeBatch(context.Background(), []string{"one", "two"})
			require.NoError(t, err)
			assert.Equal(t, []entities.Sentiment{
				{Label: entities.SentimentNeutral, Score: 0},
				{Label: entities.SentimentNeutral, Score: 0},
			}, results)
		})
	}
}
