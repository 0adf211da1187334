package ai

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/johnquangdev/call-coach/internal/domain/entities"
	"github.com/johnquangdev/call-coach/pkg/config"
	"github.com/johnquangdev/call-coach/pkg/jobcontext"
)

const (
	// maxSentimentChars is the input limit of the classification model
	maxSentimentChars = 512
	// emptyTextScore is reported for blank segments
	emptyTextScore = 0.5
)

// HuggingFaceSentiment classifies text with the Hugging Face inference API
type HuggingFaceSentiment struct {
	client  *resty.Client
	model   string
	backoff func() backoff.BackOff
	logger  *zap.Logger
}

type hfRequest struct {
	Inputs  []string         `json:"inputs"`
	Options hfRequestOptions `json:"options"`
}

type hfRequestOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

type hfLabelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// NewHuggingFaceSentiment creates a sentiment client for the configured model
func NewHuggingFaceSentiment(cfg config.SentimentConfig, logger *zap.Logger) *HuggingFaceSentiment {
	if logger == nil {
		logger = zap.NewNop()
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.HFBaseURL, "/")).
		SetTimeout(60*time.Second).
		SetHeader("Content-Type", "application/json")
	if cfg.HFToken != "" {
		client.SetAuthToken(cfg.HFToken)
	}

	return &HuggingFaceSentiment{
		client: client,
		model:  cfg.Model,
		backoff: func() backoff.BackOff {
			bo := backoff.NewExponentialBackOff()
			bo.InitialInterval = 2 * time.Second
			bo.MaxInterval = 10 * time.Second
			bo.MaxElapsedTime = 45 * time.Second
			return bo
		},
		logger: logger,
	}
}

// Analyze classifies a single text
func (h *HuggingFaceSentiment) Analyze(ctx context.Context, text string) (entities.Sentiment, error) {
	results, err := h.AnalyzeBatch(ctx, []string{text})
	if err != nil {
		return entities.Sentiment{}, err
	}
	return results[0], nil
}

// AnalyzeBatch classifies every text, keeping the input order. A failed
// request yields NEUTRAL with score 0 for every text and no error.
func (h *HuggingFaceSentiment) AnalyzeBatch(ctx context.Context, texts []string) ([]entities.Sentiment, error) {
	out := make([]entities.Sentiment, len(texts))
	if len(texts) == 0 {
		return out, nil
	}

	// blank texts are answered locally
	var inputs []string
	var positions []int
	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			out[i] = entities.Sentiment{Label: entities.SentimentNeutral, Score: emptyTextScore}
			continue
		}
		inputs = append(inputs, truncate(t, maxSentimentChars))
		positions = append(positions, i)
	}
	if len(inputs) == 0 {
		return out, nil
	}

	results, err := h.classify(ctx, inputs)
	if err == nil && len(results) != len(inputs) {
		err = fmt.Errorf("huggingface returned %d results for %d inputs", len(results), len(inputs))
	}
	if err != nil {
		h.logger.Warn("batch sentiment analysis failed", zap.Int("texts", len(texts)), zap.Error(err))
		for _, pos := range positions {
			out[pos] = entities.Sentiment{Label: entities.SentimentNeutral, Score: 0}
		}
		return out, nil
	}

	for i, pos := range positions {
		out[pos] = topLabel(results[i])
	}
	return out, nil
}

func (h *HuggingFaceSentiment) classify(ctx context.Context, inputs []string) ([][]hfLabelScore, error) {
	var results [][]hfLabelScore

	op := func() error {
		results = nil
		resp, err := h.client.R().
			SetContext(ctx).
			SetBody(hfRequest{Inputs: inputs, Options: hfRequestOptions{WaitForModel: true}}).
			SetResult(&results).
			ForceContentType("application/json").
			Post("/models/" + h.model)
		if err != nil {
			if jobcontext.IsRetryableError(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		if resp.IsError() {
			statusErr := fmt.Errorf("huggingface returned status %d: %s", resp.StatusCode(), truncate(resp.String(), 200))
			if jobcontext.IsRetryableError(statusErr) {
				return statusErr
			}
			return backoff.Permanent(statusErr)
		}
		return nil
	}

	if err := backoff.Retry(op, backoff.WithContext(h.backoff(), ctx)); err != nil {
		return nil, err
	}
	return results, nil
}

func topLabel(scores []hfLabelScore) entities.Sentiment {
	best := entities.Sentiment{Label: entities.SentimentNeutral, Score: 0}
	for i, s := range scores {
		if i == 0 || s.Score > best.Score {
			best = entities.Sentiment{Label: strings.ToUpper(s.Label), Score: s.Score}
		}
	}
	best.Score = math.Round(best.Score*10000) / 10000
	return best
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
