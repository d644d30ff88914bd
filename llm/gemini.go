// Package llm provides the text-generation collaborators. Both
// providers are stateless between calls: the caller hands over the full
// conversation history every time.
package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/centro-otologico/voiceline/session"
)

// Gemini generates replies with the Google GenAI SDK
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates the Gemini client
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

// Respond maps the conversation onto a GenerateContent call. The
// session's system turn becomes the system instruction; user and
// assistant turns become user/model contents.
func (g *Gemini) Respond(ctx context.Context, history []session.Turn, userText string) (string, error) {
	var system string
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, turn := range history {
		switch turn.Role {
		case session.RoleSystem:
			system = turn.Text
		case session.RoleUser:
			contents = append(contents, &genai.Content{
				Role:  "user",
				Parts: []*genai.Part{{Text: turn.Text}},
			})
		case session.RoleAssistant:
			contents = append(contents, &genai.Content{
				Role:  "model",
				Parts: []*genai.Part{{Text: turn.Text}},
			})
		}
	}
	contents = append(contents, &genai.Content{
		Role:  "user",
		Parts: []*genai.Part{{Text: userText}},
	})

	config := &genai.GenerateContentConfig{
		MaxOutputTokens: 200,
	}
	if system != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "Lo siento, no pude generar una respuesta.", nil
	}
	return text, nil
}
