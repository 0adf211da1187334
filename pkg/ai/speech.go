package ai

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/johnquangdev/call-coach/internal/domain/entities"
	"github.com/johnquangdev/call-coach/pkg/config"
)

// OpenAISpeech synthesizes speech with the OpenAI audio API and writes
// each result to a fresh file under the output directory
type OpenAISpeech struct {
	client    *openai.Client
	model     openai.SpeechModel
	voice     openai.SpeechVoice
	format    openai.SpeechResponseFormat
	outputDir string
	logger    *zap.Logger
}

// NewOpenAISpeech creates a text-to-speech client.
// If cfg is nil, falls back to environment variables.
func NewOpenAISpeech(cfg *config.OpenAIConfig, tts config.TTSConfig, outputDir string, logger *zap.Logger) *OpenAISpeech {
	if logger == nil {
		logger = zap.NewNop()
	}
	clientCfg := openai.DefaultConfig(apiKeyOrEnv(cfg, "OPENAI_API_KEY"))
	if cfg != nil && cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	s := &OpenAISpeech{
		client:    openai.NewClientWithConfig(clientCfg),
		model:     openai.TTSModel1,
		voice:     openai.VoiceAlloy,
		format:    openai.SpeechResponseFormatMp3,
		outputDir: outputDir,
		logger:    logger,
	}
	if tts.Model != "" {
		s.model = openai.SpeechModel(tts.Model)
	}
	if tts.Voice != "" {
		s.voice = openai.SpeechVoice(tts.Voice)
	}
	if tts.Format != "" {
		s.format = openai.SpeechResponseFormat(tts.Format)
	}
	return s
}

// Synthesize converts text to an audio file and returns its path.
// The voice model detects the language from the text; language is logged only.
func (s *OpenAISpeech) Synthesize(ctx context.Context, text, language string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", entities.ErrEmptySynthesisText
	}

	s.logger.Info("tts synthesis requested",
		zap.String("model", string(s.model)),
		zap.String("language", language),
		zap.Int("length", len(text)),
	)

	resp, err := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          s.model,
		Input:          text,
		Voice:          s.voice,
		ResponseFormat: s.format,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", entities.ErrSynthesis, err)
	}
	defer resp.Close()

	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("%w: %w", entities.ErrSynthesis, err)
	}

	path := filepath.Join(s.outputDir, OutputName(string(s.format)))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", entities.ErrSynthesis, err)
	}
	if _, err := io.Copy(f, resp); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("%w: %w", entities.ErrSynthesis, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("%w: %w", entities.ErrSynthesis, err)
	}

	s.logger.Info("tts audio saved", zap.String("path", path))
	return path, nil
}

// OutputName returns a unique file name of the form tts_<12 hex>.<ext>
func OutputName(ext string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("tts_%s.%s", id[:12], ext)
}
