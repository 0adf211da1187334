package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration
type Config struct {
	Server      ServerConfig      `envconfig:"SERVER"`
	Database    DatabaseConfig    `envconfig:"DB"`
	Redis       RedisConfig       `envconfig:"REDIS"`
	Storage     StorageConfig     `envconfig:"STORAGE"`
	OpenAI      OpenAIConfig      `envconfig:"OPENAI"`
	Assembly    AssemblyAIConfig  `envconfig:"ASSEMBLYAI"`
	STT         STTConfig         `envconfig:"STT"`
	Sentiment   SentimentConfig   `envconfig:"SENTIMENT"`
	Coachable   CoachableConfig   `envconfig:"COACHABLE"`
	Diarization DiarizationConfig `envconfig:"DIARIZATION"`
	TTS         TTSConfig         `envconfig:"TTS"`
	Pipeline    PipelineConfig    `envconfig:"PIPELINE"`
	Log         LogConfig         `envconfig:"LOG"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string   `envconfig:"PORT" default:"8000"`
	Host            string   `envconfig:"HOST" default:"0.0.0.0"`
	Environment     string   `envconfig:"ENVIRONMENT" default:"development"`
	AllowedOrigins  []string `envconfig:"ALLOWED_ORIGINS" default:"*"`
	ShutdownTimeout int      `envconfig:"SHUTDOWN_TIMEOUT" default:"10"`
	MaxUploadSizeMB int64    `envconfig:"MAX_UPLOAD_SIZE_MB" default:"50"`
	UploadDir       string   `envconfig:"UPLOAD_DIR" default:"uploads"`
	OutputDir       string   `envconfig:"OUTPUT_DIR" default:"outputs"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver      string `envconfig:"DRIVER" default:"sqlite"` // "sqlite" or "postgres"
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"calls.db"`
	Host        string `envconfig:"HOST" default:"localhost"`
	Port        string `envconfig:"PORT" default:"5432"`
	User        string `envconfig:"USER" default:"postgres"`
	Password    string `envconfig:"PASSWORD" default:"postgres"`
	Name        string `envconfig:"NAME" default:"call_coach"`
	SSLMode     string `envconfig:"SSLMODE" default:"disable"`
	MaxConns    int    `envconfig:"MAX_CONNS" default:"25"`
	MinConns    int    `envconfig:"MIN_CONNS" default:"5"`
	AutoMigrate bool   `envconfig:"AUTO_MIGRATE" default:"true"`
}

// RedisConfig holds Redis configuration. When disabled the call-detail
// cache is kept in process memory.
type RedisConfig struct {
	Enabled  bool   `envconfig:"ENABLED" default:"false"`
	Host     string `envconfig:"HOST" default:"localhost"`
	Port     string `envconfig:"PORT" default:"6379"`
	Password string `envconfig:"PASSWORD"`
	DB       int    `envconfig:"DB" default:"0"`
	TTL      int    `envconfig:"TTL_SECONDS" default:"300"`
}

// StorageConfig holds object storage configuration. Uploaded audio is
// always kept on local disk for the speech-to-text engine; when MinIO is
// enabled a copy is archived to the bucket.
type StorageConfig struct {
	MinIOEnabled    bool   `envconfig:"MINIO_ENABLED" default:"false"`
	Endpoint        string `envconfig:"ENDPOINT" default:"localhost:9000"`
	AccessKeyID     string `envconfig:"ACCESS_KEY" default:"minioadmin"`
	SecretAccessKey string `envconfig:"SECRET_KEY" default:"minioadmin"`
	BucketName      string `envconfig:"BUCKET" default:"call-coach"`
	UseSSL          bool   `envconfig:"USE_SSL" default:"false"`
	PublicURL       string `envconfig:"PUBLIC_URL"`
}

// OpenAIConfig holds credentials shared by the Whisper, chat and speech clients
type OpenAIConfig struct {
	APIKey  string `envconfig:"API_KEY"`
	BaseURL string `envconfig:"BASE_URL"`
}

// AssemblyAIConfig holds AssemblyAI credentials
type AssemblyAIConfig struct {
	APIKey  string `envconfig:"API_KEY"`
	BaseURL string `envconfig:"BASE_URL"`
}

// STTConfig selects the speech-to-text engine
type STTConfig struct {
	Provider string `envconfig:"PROVIDER" default:"whisper"` // "whisper" or "assemblyai"
	Model    string `envconfig:"MODEL" default:"whisper-1"`
	Language string `envconfig:"LANGUAGE"`
}

// SentimentConfig selects the sentiment engine
type SentimentConfig struct {
	Enabled   bool   `envconfig:"ENABLED" default:"true"`
	Provider  string `envconfig:"PROVIDER" default:"huggingface"` // "huggingface" or "openai"
	Model     string `envconfig:"MODEL" default:"distilbert-base-uncased-finetuned-sst-2-english"`
	HFToken   string `envconfig:"HF_TOKEN"`
	HFBaseURL string `envconfig:"HF_BASE_URL" default:"https://api-inference.huggingface.co"`
	ChatModel string `envconfig:"CHAT_MODEL" default:"gpt-4o-mini"`
}

// CoachableConfig tunes coachable moment detection
type CoachableConfig struct {
	ConfidenceThreshold float64 `envconfig:"CONFIDENCE_THRESHOLD" default:"0.5"`
}

// DiarizationConfig tunes the silence-gap speaker heuristic
type DiarizationConfig struct {
	SilenceGapSeconds float64 `envconfig:"SILENCE_GAP_SECONDS" default:"1.5"`
}

// TTSConfig holds text-to-speech configuration
type TTSConfig struct {
	Model  string `envconfig:"MODEL" default:"tts-1"`
	Voice  string `envconfig:"VOICE" default:"alloy"`
	Format string `envconfig:"FORMAT" default:"mp3"`
}

// PipelineConfig bounds pipeline execution
type PipelineConfig struct {
	MaxConcurrency int `envconfig:"MAX_CONCURRENCY" default:"4"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level      string `envconfig:"LEVEL" default:"info"`
	Format     string `envconfig:"FORMAT" default:"json"` // "json" or "console"
	File       string `envconfig:"FILE"`
	MaxSizeMB  int    `envconfig:"MAX_SIZE_MB" default:"100"`
	MaxBackups int    `envconfig:"MAX_BACKUPS" default:"5"`
	MaxAgeDays int    `envconfig:"MAX_AGE_DAYS" default:"28"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if t := c.Coachable.ConfidenceThreshold; t < 0 || t > 1 {
		return fmt.Errorf("COACHABLE_CONFIDENCE_THRESHOLD must be within [0,1], got %v", t)
	}
	if c.Diarization.SilenceGapSeconds <= 0 {
		return fmt.Errorf("DIARIZATION_SILENCE_GAP_SECONDS must be positive")
	}
	if c.Server.MaxUploadSizeMB <= 0 {
		return fmt.Errorf("SERVER_MAX_UPLOAD_SIZE_MB must be positive")
	}
	if c.Pipeline.MaxConcurrency < 1 {
		return fmt.Errorf("PIPELINE_MAX_CONCURRENCY must be at least 1")
	}

	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}

	switch c.STT.Provider {
	case "whisper":
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for the whisper STT provider")
		}
	case "assemblyai":
		if c.Assembly.APIKey == "" {
			return fmt.Errorf("ASSEMBLYAI_API_KEY is required for the assemblyai STT provider")
		}
	default:
		return fmt.Errorf("unsupported STT_PROVIDER %q", c.STT.Provider)
	}

	if c.Sentiment.Enabled {
		switch c.Sentiment.Provider {
		case "huggingface":
		case "openai":
			if c.OpenAI.APIKey == "" {
				return fmt.Errorf("OPENAI_API_KEY is required for the openai sentiment provider")
			}
		default:
			return fmt.Errorf("unsupported SENTIMENT_PROVIDER %q", c.Sentiment.Provider)
		}
	}

	switch strings.ToLower(c.Log.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("unsupported LOG_FORMAT %q", c.Log.Format)
	}

	return nil
}

// IsProduction reports whether the server runs in production
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	if c.Database.Driver == "sqlite" {
		return c.Database.SQLitePath
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// GetServerAddr returns the listen address
func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// MaxUploadBytes returns the upload size limit in bytes
func (c *Config) MaxUploadBytes() int64 {
	return c.Server.MaxUploadSizeMB * 1024 * 1024
}
