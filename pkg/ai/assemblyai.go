package ai

import (
	"context"
	"fmt"
	"os"
	"strings"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"

	"github.com/johnquangdev/call-coach/internal/domain/entities"
	"github.com/johnquangdev/call-coach/pkg/config"
)

// AssemblyAITranscriber transcribes audio files with AssemblyAI.
// The file is uploaded, the call blocks until the transcript is ready, and
// the transcript's sentences become the timed spans.
type AssemblyAITranscriber struct {
	client *aai.Client
}

// NewAssemblyAITranscriber creates an AssemblyAI transcriber using the provided config.
// If cfg is nil, falls back to environment variables.
func NewAssemblyAITranscriber(cfg *config.AssemblyAIConfig) *AssemblyAITranscriber {
	var apiKey, baseURL string
	if cfg != nil {
		apiKey = cfg.APIKey
		baseURL = cfg.BaseURL
	}
	if apiKey == "" {
		apiKey = os.Getenv("ASSEMBLYAI_API_KEY")
	}

	opts := []aai.ClientOption{aai.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, aai.WithBaseURL(baseURL))
	}
	return &AssemblyAITranscriber{client: aai.NewClientWithOptions(opts...)}
}

// Transcribe implements the speech-to-text contract
func (a *AssemblyAITranscriber) Transcribe(ctx context.Context, audioPath string) (*entities.RawTranscript, error) {
	if err := checkAudioFile(audioPath); err != nil {
		return nil, err
	}

	f, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entities.ErrAudioProcessing, err)
	}
	defer f.Close()

	params := &aai.TranscriptOptionalParams{
		LanguageDetection: aai.Bool(true),
	}
	transcript, err := a.client.Transcripts.TranscribeFromReader(ctx, f, params)
	if err != nil {
		return nil, fmt.Errorf("assemblyai transcription failed: %w", err)
	}
	if transcript.Status == aai.TranscriptStatusError {
		return nil, fmt.Errorf("assemblyai transcription failed: %s", aai.ToString(transcript.Error))
	}

	transcriptID := aai.ToString(transcript.ID)
	sentences, err := a.client.Transcripts.GetSentences(ctx, transcriptID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sentences for transcript %s: %w", transcriptID, err)
	}

	spans := make([]entities.RawSpan, 0, len(sentences.Sentences))
	for _, s := range sentences.Sentences {
		spans = append(spans, entities.RawSpan{
			Start: msToSeconds(aai.ToInt64(s.Start)),
			End:   msToSeconds(aai.ToInt64(s.End)),
			Text:  aai.ToString(s.Text),
		})
	}

	return &entities.RawTranscript{
		FullText: strings.TrimSpace(aai.ToString(transcript.Text)),
		Language: string(transcript.LanguageCode),
		Spans:    spans,
	}, nil
}

func msToSeconds(ms int64) float64 {
	return float64(ms) / 1000
}
