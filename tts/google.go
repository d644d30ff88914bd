// Package tts synthesizes speech through the Google Cloud
// Text-to-Speech REST API.
package tts

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/bytedance/sonic"
)

const synthesizeEndpoint = "https://texttospeech.googleapis.com/v1/text:synthesize"

// VoiceConfig holds the synthesis parameters; zero values are filled by
// DefaultVoiceConfig
type VoiceConfig struct {
	LanguageCode string
	Name         string
	Gender       string
	SpeakingRate float64
	Pitch        float64
	VolumeGainDB float64
}

// DefaultVoiceConfig is the Latin-Spanish Neural2 voice at normal speed
func DefaultVoiceConfig() VoiceConfig {
	return VoiceConfig{
		LanguageCode: "es-US",
		Name:         "es-US-Neural2-A",
		Gender:       "FEMALE",
		SpeakingRate: 1.0,
	}
}

// Google is the Text-to-Speech collaborator
type Google struct {
	apiKey   string
	voice    VoiceConfig
	client   *http.Client
	endpoint string // overridable in tests
}

// NewGoogle creates a synthesizer with the given voice configuration
func NewGoogle(apiKey string, voice VoiceConfig) *Google {
	if voice.LanguageCode == "" {
		voice = DefaultVoiceConfig()
	}
	return &Google{
		apiKey:   apiKey,
		voice:    voice,
		client:   &http.Client{Timeout: 15 * time.Second},
		endpoint: synthesizeEndpoint,
	}
}

type synthesizeRequest struct {
	Input struct {
		Text string `json:"text"`
	} `json:"input"`
	Voice struct {
		LanguageCode string `json:"languageCode"`
		Name         string `json:"name"`
		SsmlGender   string `json:"ssmlGender"`
	} `json:"voice"`
	AudioConfig struct {
		AudioEncoding string  `json:"audioEncoding"`
		SpeakingRate  float64 `json:"speakingRate"`
		Pitch         float64 `json:"pitch"`
		VolumeGainDB  float64 `json:"volumeGainDb"`
	} `json:"audioConfig"`
}

type synthesizeResponse struct {
	AudioContent string `json:"audioContent"`
}

// Synthesize renders text as MP3 audio bytes
func (g *Google) Synthesize(ctx context.Context, text string) ([]byte, error) {
	var reqBody synthesizeRequest
	reqBody.Input.Text = text
	reqBody.Voice.LanguageCode = g.voice.LanguageCode
	reqBody.Voice.Name = g.voice.Name
	reqBody.Voice.SsmlGender = g.voice.Gender
	reqBody.AudioConfig.AudioEncoding = "MP3"
	reqBody.AudioConfig.SpeakingRate = g.voice.SpeakingRate
	reqBody.AudioConfig.Pitch = g.voice.Pitch
	reqBody.AudioConfig.VolumeGainDB = g.voice.VolumeGainDB

	payload, err := sonic.Marshal(&reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to encode TTS request: %w", err)
	}

	endpoint := g.endpoint + "?key=" + url.QueryEscape(g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build TTS request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("TTS request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read TTS response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("TTS request returned %d: %s", resp.StatusCode, body)
	}

	var parsed synthesizeResponse
	if err := sonic.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode TTS response: %w", err)
	}
	if parsed.AudioContent == "" {
		return nil, fmt.Errorf("no audio content received from Google TTS")
	}

	audio, err := base64.StdEncoding.DecodeString(parsed.AudioContent)
	if err != nil {
		return nil, fmt.Errorf("failed to decode TTS audio: %w", err)
	}
	return audio, nil
}
