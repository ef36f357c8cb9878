package llm

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/joescharf/fitmin/internal/models"
)

// AnthropicAdvisor answers coaching prompts with Claude.
type AnthropicAdvisor struct {
	api   *anthropic.Client
	model anthropic.Model
}

// NewAnthropicAdvisor creates an advisor with the given API key and model.
func NewAnthropicAdvisor(apiKey, model string) *AnthropicAdvisor {
	opts := []option.RequestOption{}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	client := anthropic.NewClient(opts...)
	return &AnthropicAdvisor{
		api:   &client,
		model: anthropic.Model(model),
	}
}

func anthropicMessages(prompt string, history []models.Turn) []anthropic.MessageParam {
	conv := buildConversation(prompt, history)
	msgs := make([]anthropic.MessageParam, 0, len(conv))
	for _, m := range conv {
		block := anthropic.NewTextBlock(m.text)
		if m.user {
			msgs = append(msgs, anthropic.NewUserMessage(block))
		} else {
			msgs = append(msgs, anthropic.NewAssistantMessage(block))
		}
	}
	return msgs
}

// Advise implements coach.Advisor.
func (a *AnthropicAdvisor) Advise(ctx context.Context, prompt string, history []models.Turn) (string, error) {
	msg, err := a.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       a.model,
		MaxTokens:   1024,
		Temperature: anthropic.Float(Temperature),
		System: []anthropic.TextBlockParam{
			{Text: SystemPrompt},
		},
		Messages: anthropicMessages(prompt, history),
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API call: %w", err)
	}

	for _, block := range msg.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", nil
}
