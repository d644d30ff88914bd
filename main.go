package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/centro-otologico/voiceline/clinic"
	"github.com/centro-otologico/voiceline/config"
	"github.com/centro-otologico/voiceline/dialogue"
	"github.com/centro-otologico/voiceline/llm"
	"github.com/centro-otologico/voiceline/server"
	"github.com/centro-otologico/voiceline/session"
	"github.com/centro-otologico/voiceline/storage"
	"github.com/centro-otologico/voiceline/tts"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Clinic knowledge base (built-in data unless CLINIC_CONFIG overrides)
	kb, err := clinic.Load(cfg.ClinicConfig)
	if err != nil {
		log.Fatalf("Failed to load clinic config: %v", err)
	}

	// Session store seeded with the clinic system prompt
	store := session.NewStore(kb.Prompt(), cfg.SessionTimeout,
		session.WithRedis(cfg.RedisURL, cfg.RedisPassword, cfg.SessionTimeout))

	ctx := context.Background()

	// Generation collaborator
	var responder dialogue.Responder
	switch cfg.LLMProvider {
	case "gemini":
		responder, err = llm.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Fatalf("Failed to create Gemini client: %v", err)
		}
		log.Printf("✅ Generation provider: gemini (%s)", cfg.GeminiModel)
	case "openai":
		responder = llm.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		log.Printf("✅ Generation provider: openai (%s)", cfg.OpenAIModel)
	default:
		log.Fatalf("Unknown LLM_PROVIDER: %s", cfg.LLMProvider)
	}

	// Speech synthesis
	synth := tts.NewGoogle(cfg.TTSAPIKey, tts.VoiceConfig{
		LanguageCode: cfg.TTSLanguage,
		Name:         cfg.TTSVoice,
		Gender:       cfg.TTSGender,
		SpeakingRate: cfg.TTSRate,
		Pitch:        cfg.TTSPitch,
		VolumeGainDB: cfg.TTSGain,
	})

	// Audio publisher: bucket when configured, else Redis, else memory
	baseURL := cfg.PublicBaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("http://localhost:%d", cfg.Port)
	}

	var publisher dialogue.Publisher
	var audioFetcher server.AudioFetcher
	if cfg.StorageBucket != "" {
		gcs, err := storage.NewGCS(ctx, cfg.StorageBucket)
		if err != nil {
			log.Fatalf("Failed to create storage client: %v", err)
		}
		publisher = gcs
		log.Printf("✅ Audio publisher: gs://%s", cfg.StorageBucket)
	} else if redisPub, err := storage.NewRedis(cfg.RedisURL, cfg.RedisPassword, baseURL, cfg.SessionTimeout); err == nil {
		publisher = redisPub
		audioFetcher = redisPub
		log.Printf("✅ Audio publisher: redis (%s)", cfg.RedisURL)
	} else {
		mem := storage.NewMemory(baseURL, cfg.SessionTimeout)
		publisher = mem
		audioFetcher = mem
		log.Printf("⚠️ Audio publisher: in-memory (%v)", err)
	}

	controller := dialogue.NewController(store, kb, responder, synth, publisher, storage.FileName, cfg.SessionTimeout)

	srv := server.New(cfg.Port, controller, synth, audioFetcher)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("\nReceived shutdown signal...")
		store.Shutdown()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	if err := srv.Start(); err != nil && err.Error() != "http: Server closed" {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Server stopped")
}
