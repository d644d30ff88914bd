package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all server configuration
type Config struct {
	Port           int
	PublicBaseURL  string // Base URL Twilio can reach, used for self-served audio links
	SessionTimeout time.Duration

	// Generation
	LLMProvider  string // "gemini" or "openai"
	GeminiAPIKey string
	GeminiModel  string
	OpenAIAPIKey string
	OpenAIModel  string

	// Speech synthesis
	TTSAPIKey   string
	TTSLanguage string
	TTSVoice    string
	TTSGender   string
	TTSRate     float64
	TTSPitch    float64
	TTSGain     float64

	// Audio publishing
	StorageBucket string // Google Cloud Storage bucket; empty means serve audio from Redis/memory

	RedisURL      string
	RedisPassword string

	ClinicConfig string // optional YAML file overriding the built-in clinic data
}

// Load loads configuration from environment variables with defaults
func Load() (*Config, error) {
	// Load .env file if it exists (doesn't error if missing)
	_ = godotenv.Load()

	config := &Config{
		Port:           8080,
		SessionTimeout: 30 * time.Minute,
		LLMProvider:    "gemini",
		GeminiModel:    "gemini-2.0-flash",
		OpenAIModel:    "gpt-3.5-turbo",
		TTSLanguage:    "es-US",
		TTSVoice:       "es-US-Neural2-A",
		TTSGender:      "FEMALE",
		TTSRate:        1.0,
		TTSPitch:       0,
		TTSGain:        0,
		RedisURL:       "localhost:6379",
	}

	config.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	config.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")

	// Optional: LLM_PROVIDER ("gemini" or "openai")
	if provider := os.Getenv("LLM_PROVIDER"); provider != "" {
		switch provider {
		case "gemini", "openai":
			config.LLMProvider = provider
		default:
			return nil, fmt.Errorf("invalid LLM_PROVIDER: must be 'gemini' or 'openai'")
		}
	}

	// The selected provider needs its key
	switch config.LLMProvider {
	case "gemini":
		if config.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY environment variable is required")
		}
	case "openai":
		if config.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required")
		}
	}

	// Optional: PORT
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT: %w", err)
		}
		config.Port = p
	}

	// Optional: PUBLIC_BASE_URL (e.g. https://agent.example.com)
	if base := os.Getenv("PUBLIC_BASE_URL"); base != "" {
		config.PublicBaseURL = base
	}

	// Optional: SESSION_TIMEOUT (in minutes)
	if timeout := os.Getenv("SESSION_TIMEOUT"); timeout != "" {
		t, err := strconv.Atoi(timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid SESSION_TIMEOUT: %w", err)
		}
		config.SessionTimeout = time.Duration(t) * time.Minute
	}

	// Optional: model overrides
	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		config.GeminiModel = model
	}
	if model := os.Getenv("OPENAI_MODEL"); model != "" {
		config.OpenAIModel = model
	}

	// Optional: TTS settings
	config.TTSAPIKey = os.Getenv("GOOGLE_TTS_API_KEY")
	if lang := os.Getenv("TTS_LANGUAGE"); lang != "" {
		config.TTSLanguage = lang
	}
	if voice := os.Getenv("TTS_VOICE"); voice != "" {
		config.TTSVoice = voice
	}
	if gender := os.Getenv("TTS_GENDER"); gender != "" {
		config.TTSGender = gender
	}
	if rate := os.Getenv("TTS_RATE"); rate != "" {
		r, err := strconv.ParseFloat(rate, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TTS_RATE: %w", err)
		}
		config.TTSRate = r
	}
	if pitch := os.Getenv("TTS_PITCH"); pitch != "" {
		p, err := strconv.ParseFloat(pitch, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TTS_PITCH: %w", err)
		}
		config.TTSPitch = p
	}
	if gain := os.Getenv("TTS_GAIN"); gain != "" {
		g, err := strconv.ParseFloat(gain, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TTS_GAIN: %w", err)
		}
		config.TTSGain = g
	}

	// Optional: STORAGE_BUCKET
	if bucket := os.Getenv("STORAGE_BUCKET"); bucket != "" {
		config.StorageBucket = bucket
	}

	// Optional: REDIS_URL
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		config.RedisURL = redisURL
	}

	// Optional: REDIS_PASSWORD
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		config.RedisPassword = redisPassword
	}

	// Optional: CLINIC_CONFIG (YAML file path)
	if clinicCfg := os.Getenv("CLINIC_CONFIG"); clinicCfg != "" {
		config.ClinicConfig = clinicCfg
	}

	return config, nil
}
