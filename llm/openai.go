package llm

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/centro-otologico/voiceline/session"
)

// OpenAI generates replies with the OpenAI chat completions API
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI creates the OpenAI client
func NewOpenAI(apiKey, model string) *OpenAI {
	return &OpenAI{client: openai.NewClient(apiKey), model: model}
}

// Respond sends the conversation plus the newest utterance as one chat
// completion request
func (o *OpenAI) Respond(ctx context.Context, history []session.Turn, userText string) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	for _, turn := range history {
		var role string
		switch turn.Role {
		case session.RoleSystem:
			role = openai.ChatMessageRoleSystem
		case session.RoleUser:
			role = openai.ChatMessageRoleUser
		case session.RoleAssistant:
			role = openai.ChatMessageRoleAssistant
		default:
			continue
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: turn.Text})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userText,
	})

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     o.model,
		Messages:  messages,
		MaxTokens: 200,
	})
	if err != nil {
		return "", fmt.Errorf("openai generation failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "Lo siento, no pude generar una respuesta.", nil
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "Lo siento, no pude generar una respuesta.", nil
	}
	return text, nil
}
