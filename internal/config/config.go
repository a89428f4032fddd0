package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// GenerationConfig selects one OpenAI-compatible text generation
// backend. The same shape serves the main generator and the humanizer.
type GenerationConfig struct {
	APIKey          string
	BaseURL         string
	Model           string
	MaxTokens       int
	Temperature     float32
	TranscribeModel string
}

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName string
	AppEnv  string
	AppPort string

	DatabaseURL string
	RedisURL    string

	OutputDir        string
	MaxUploadBytes   int64
	ResearchCacheTTL time.Duration

	Generation GenerationConfig
	Humanizer  GenerationConfig

	TavilyAPIKey string

	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string

	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string

	NATSURL               string
	NATSCompletionSubject string

	FactCheckMinConfidence float64
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("CHEATWELL")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "CheatWell API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("output.dir", "generated_docs")
	v.SetDefault("max_upload_bytes", 10*1024*1024)
	v.SetDefault("research.cache_ttl", "1h")
	v.SetDefault("generation.base_url", "https://generativelanguage.googleapis.com/v1beta/openai/")
	v.SetDefault("generation.model", "gemini-2.0-flash")
	v.SetDefault("generation.max_tokens", 4096)
	v.SetDefault("generation.temperature", 0.7)
	v.SetDefault("generation.transcribe_model", "whisper-1")
	v.SetDefault("humanizer.base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("humanizer.model", "llama-3.3-70b-versatile")
	v.SetDefault("humanizer.max_tokens", 4096)
	v.SetDefault("humanizer.temperature", 0.9)
	v.SetDefault("cloudinary.folder", "cheatwell/assignments")
	v.SetDefault("nats.completion_subject", "assignments.completed")
	v.SetDefault("factcheck.min_confidence", 0.6)

	ttlString := v.GetString("research.cache_ttl")
	if ttlString == "" {
		ttlString = "1h"
	}

	ttl, err := time.ParseDuration(ttlString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid research cache ttl: %w", err)
	}

	cfg := Config{
		AppName:          v.GetString("app.name"),
		AppEnv:           v.GetString("app.env"),
		AppPort:          v.GetString("app.port"),
		DatabaseURL:      v.GetString("database.url"),
		RedisURL:         v.GetString("redis.url"),
		OutputDir:        v.GetString("output.dir"),
		MaxUploadBytes:   v.GetInt64("max_upload_bytes"),
		ResearchCacheTTL: ttl,
		Generation: GenerationConfig{
			APIKey:          v.GetString("generation.api_key"),
			BaseURL:         v.GetString("generation.base_url"),
			Model:           v.GetString("generation.model"),
			MaxTokens:       v.GetInt("generation.max_tokens"),
			Temperature:     float32(v.GetFloat64("generation.temperature")),
			TranscribeModel: v.GetString("generation.transcribe_model"),
		},
		Humanizer: GenerationConfig{
			APIKey:      v.GetString("humanizer.api_key"),
			BaseURL:     v.GetString("humanizer.base_url"),
			Model:       v.GetString("humanizer.model"),
			MaxTokens:   v.GetInt("humanizer.max_tokens"),
			Temperature: float32(v.GetFloat64("humanizer.temperature")),
		},
		TavilyAPIKey:           v.GetString("tavily.api_key"),
		SendGridAPIKey:         v.GetString("sendgrid.api_key"),
		SendGridFromEmail:      v.GetString("sendgrid.from_email"),
		SendGridFromName:       v.GetString("sendgrid.from_name"),
		TwilioAccountSID:       v.GetString("twilio.account_sid"),
		TwilioAuthToken:        v.GetString("twilio.auth_token"),
		TwilioFromNumber:       v.GetString("twilio.from_number"),
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		NATSURL:                v.GetString("nats.url"),
		NATSCompletionSubject:  v.GetString("nats.completion_subject"),
		FactCheckMinConfidence: v.GetFloat64("factcheck.min_confidence"),
	}

	if cfg.Generation.APIKey == "" {
		return Config{}, fmt.Errorf("generation api key must be provided")
	}

	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10 * 1024 * 1024
	}

	return cfg, nil
}
