package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/joescharf/fitmin/internal/models"
)

// GeminiAdvisor answers coaching prompts with the Gemini API.
type GeminiAdvisor struct {
	client *genai.Client
	model  string
}

// NewGeminiAdvisor creates an advisor using an API key against the Gemini API backend.
func NewGeminiAdvisor(ctx context.Context, apiKey, model string) (*GeminiAdvisor, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &GeminiAdvisor{client: client, model: model}, nil
}

func geminiContents(prompt string, history []models.Turn) []*genai.Content {
	conv := buildConversation(prompt, history)
	contents := make([]*genai.Content, 0, len(conv))
	for _, m := range conv {
		role := genai.Role(genai.RoleUser)
		if !m.user {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.text, role))
	}
	return contents
}

func geminiConfig() *genai.GenerateContentConfig {
	temp := float32(Temperature)
	return &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(SystemPrompt, genai.RoleUser),
		Temperature:       &temp,
	}
}

// Advise implements coach.Advisor.
func (g *GeminiAdvisor) Advise(ctx context.Context, prompt string, history []models.Turn) (string, error) {
	res, err := g.client.Models.GenerateContent(ctx, g.model, geminiContents(prompt, history), geminiConfig())
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	return res.Text(), nil
}
