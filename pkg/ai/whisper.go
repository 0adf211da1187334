package ai

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/johnquangdev/call-coach/internal/domain/entities"
	"github.com/johnquangdev/call-coach/pkg/config"
)

// WhisperTranscriber transcribes audio files with the OpenAI Whisper API
type WhisperTranscriber struct {
	client   *openai.Client
	model    string
	language string
}

// NewWhisperTranscriber creates a Whisper transcriber.
// If cfg is nil, falls back to environment variables.
func NewWhisperTranscriber(cfg *config.OpenAIConfig, stt config.STTConfig) *WhisperTranscriber {
	clientCfg := openai.DefaultConfig(apiKeyOrEnv(cfg, "OPENAI_API_KEY"))
	if cfg != nil && cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := stt.Model
	if model == "" {
		model = openai.Whisper1
	}
	return &WhisperTranscriber{
		client:   openai.NewClientWithConfig(clientCfg),
		model:    model,
		language: stt.Language,
	}
}

// Transcribe uploads the file and returns Whisper's timed segments
func (w *WhisperTranscriber) Transcribe(ctx context.Context, audioPath string) (*entities.RawTranscript, error) {
	if err := checkAudioFile(audioPath); err != nil {
		return nil, err
	}

	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    w.model,
		FilePath: audioPath,
		Language: w.language,
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("whisper transcription failed: %w", err)
	}

	spans := make([]entities.RawSpan, 0, len(resp.Segments))
	for _, seg := range resp.Segments {
		spans = append(spans, entities.RawSpan{
			Start: seg.Start,
			End:   seg.End,
			Text:  seg.Text,
		})
	}

	return &entities.RawTranscript{
		FullText: strings.TrimSpace(resp.Text),
		Language: resp.Language,
		Spans:    spans,
	}, nil
}

func checkAudioFile(audioPath string) error {
	info, err := os.Stat(audioPath)
	if err != nil {
		return fmt.Errorf("%w: audio file not found: %s", entities.ErrAudioProcessing, audioPath)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", entities.ErrAudioProcessing, audioPath)
	}
	return nil
}

func apiKeyOrEnv(cfg *config.OpenAIConfig, env string) string {
	if cfg != nil && cfg.APIKey != "" {
		return cfg.APIKey
	}
	return os.Getenv(env)
}
