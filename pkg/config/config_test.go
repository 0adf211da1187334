package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0.5, cfg.Coachable.ConfidenceThreshold)
	assert.Equal(t, 1.5, cfg.Diarization.SilenceGapSeconds)
	assert.True(t, cfg.Sentiment.Enabled)
	assert.Equal(t, "huggingface", cfg.Sentiment.Provider)
	assert.Equal(t, "whisper", cfg.STT.Provider)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "calls.db", cfg.GetDatabaseDSN())
	assert.Equal(t, int64(50*1024*1024), cfg.MaxUploadBytes())
	assert.Equal(t, 4, cfg.Pipeline.MaxConcurrency)
	assert.Equal(t, "0.0.0.0:8000", cfg.GetServerAddr())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STT_PROVIDER", "assemblyai")
	t.Setenv("ASSEMBLYAI_API_KEY", "aai-test")
	t.Setenv("SENTIMENT_ENABLED", "false")
	t.Setenv("COACHABLE_CONFIDENCE_THRESHOLD", "0.3")
	t.Setenv("DIARIZATION_SILENCE_GAP_SECONDS", "2.25")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_HOST", "db")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "assemblyai", cfg.STT.Provider)
	assert.False(t, cfg.Sentiment.Enabled)
	assert.Equal(t, 0.3, cfg.Coachable.ConfidenceThreshold)
	assert.Equal(t, 2.25, cfg.Diarization.SilenceGapSeconds)
	assert.Contains(t, cfg.GetDatabaseDSN(), "host=db")
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"threshold above one": {"OPENAI_API_KEY": "k", "COACHABLE_CONFIDENCE_THRESHOLD": "1.2"},
		"zero silence gap":    {"OPENAI_API_KEY": "k", "DIARIZATION_SILENCE_GAP_SECONDS": "0"},
		"missing whisper key": {"OPENAI_API_KEY": ""},
		"unknown stt":         {"OPENAI_API_KEY": "k", "STT_PROVIDER": "vosk"},
		"unknown sentiment":   {"OPENAI_API_KEY": "k", "SENTIMENT_PROVIDER": "vader"},
		"unknown db driver":   {"OPENAI_API_KEY": "k", "DB_DRIVER": "mysql"},
		"no concurrency":      {"OPENAI_API_KEY": "k", "PIPELINE_MAX_CONCURRENCY": "0"},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			cfg, err := Load()
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}
