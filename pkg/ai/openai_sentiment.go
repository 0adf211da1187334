package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/johnquangdev/call-coach/internal/domain/entities"
	"github.com/johnquangdev/call-coach/pkg/config"
)

const sentimentSystemPrompt = `You classify the sentiment of utterances from a sales call.
For every numbered utterance return one object with "label" (POSITIVE, NEGATIVE or NEUTRAL)
and "score" (confidence between 0 and 1). Reply with JSON only, in the form
{"results":[{"label":"POSITIVE","score":0.93}]}, keeping the input order.`

// OpenAISentiment classifies text with an OpenAI-compatible chat model.
// Any compatible endpoint (OpenAI, Groq, a local server) can be used through BaseURL.
type OpenAISentiment struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

type chatSentimentResponse struct {
	Results []struct {
		Label string  `json:"label"`
		Score float64 `json:"score"`
	} `json:"results"`
}

// NewOpenAISentiment creates a chat-based sentiment client.
// If cfg is nil, falls back to environment variables.
func NewOpenAISentiment(cfg *config.OpenAIConfig, model string, logger *zap.Logger) *OpenAISentiment {
	if logger == nil {
		logger = zap.NewNop()
	}
	clientCfg := openai.DefaultConfig(apiKeyOrEnv(cfg, "OPENAI_API_KEY"))
	if cfg != nil && cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAISentiment{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
		logger: logger,
	}
}

// AnalyzeBatch classifies every text, keeping the input order. A failed
// request yields NEUTRAL with score 0 for every text and no error.
func (o *OpenAISentiment) AnalyzeBatch(ctx context.Context, texts []string) ([]entities.Sentiment, error) {
	out := make([]entities.Sentiment, len(texts))
	if len(texts) == 0 {
		return out, nil
	}

	var prompt strings.Builder
	var positions []int
	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			out[i] = entities.Sentiment{Label: entities.SentimentNeutral, Score: emptyTextScore}
			continue
		}
		positions = append(positions, i)
		fmt.Fprintf(&prompt, "%d. %s\n", len(positions), truncate(t, maxSentimentChars))
	}
	if len(positions) == 0 {
		return out, nil
	}

	results, err := o.complete(ctx, prompt.String())
	if err == nil && len(results.Results) != len(positions) {
		err = fmt.Errorf("model returned %d results for %d inputs", len(results.Results), len(positions))
	}
	if err != nil {
		o.logger.Warn("batch sentiment analysis failed", zap.Int("texts", len(texts)), zap.Error(err))
		for _, pos := range positions {
			out[pos] = entities.Sentiment{Label: entities.SentimentNeutral, Score: 0}
		}
		return out, nil
	}

	for i, pos := range positions {
		r := results.Results[i]
		out[pos] = entities.Sentiment{Label: normalizeLabel(r.Label), Score: clamp01(r.Score)}
	}
	return out, nil
}

func (o *OpenAISentiment) complete(ctx context.Context, prompt string) (*chatSentimentResponse, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: sentimentSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	var parsed chatSentimentResponse
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse sentiment response: %w", err)
	}
	return &parsed, nil
}

func normalizeLabel(label string) string {
	switch l := strings.ToUpper(strings.TrimSpace(label)); l {
	case entities.SentimentPositive, entities.SentimentNegative:
		return l
	default:
		return entities.SentimentNeutral
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
