package llm

import (
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/joescharf/fitmin/internal/models"
)

func sampleHistory() []models.Turn {
	return []models.Turn{
		{Role: models.RoleUser, Text: "كيف أبدأ؟"},
		{Role: models.RoleModel, Text: "ابدأ بعشر دقائق يومياً"},
		{Role: models.RoleUser, Text: "   "},
	}
}

func TestBuildConversation(t *testing.T) {
	t.Run("empty history", func(t *testing.T) {
		conv := buildConversation("hello", nil)
		require.Len(t, conv, 1)
		assert.True(t, conv[0].user)
		assert.Equal(t, "hello", conv[0].text)
	})

	t.Run("history then prompt", func(t *testing.T) {
		conv := buildConversation("وماذا بعد؟", sampleHistory())
		require.Len(t, conv, 3, "blank turns are skipped")
		assert.True(t, conv[0].user)
		assert.False(t, conv[1].user)
		assert.Equal(t, "ابدأ بعشر دقائق يومياً", conv[1].text)
		assert.True(t, conv[2].user)
		assert.Equal(t, "وماذا بعد؟", conv[2].text)
	})

	t.Run("unknown role is sent as user", func(t *testing.T) {
		conv := buildConversation("p", []models.Turn{{Role: "system", Text: "x"}})
		assert.True(t, conv[0].user)
	})
}

func TestSystemPrompt(t *testing.T) {
	assert.Contains(t, SystemPrompt, "مدرب رياضي")
	assert.Contains(t, SystemPrompt, "بدون معدات")
	assert.InDelta(t, 0.7, Temperature, 1e-9)
}

func TestAnthropicMessages(t *testing.T) {
	msgs := anthropicMessages("وماذا بعد؟", sampleHistory())
	require.Len(t, msgs, 3)
	assert.Equal(t, anthropic.MessageParamRoleUser, msgs[0].Role)
	assert.Equal(t, anthropic.MessageParamRoleAssistant, msgs[1].Role)
	assert.Equal(t, anthropic.MessageParamRoleUser, msgs[2].Role)
}

func TestGeminiContents(t *testing.T) {
	contents := geminiContents("وماذا بعد؟", sampleHistory())
	require.Len(t, contents, 3)
	assert.Equal(t, string(genai.RoleUser), contents[0].Role)
	assert.Equal(t, string(genai.RoleModel), contents[1].Role)
	assert.Equal(t, string(genai.RoleUser), contents[2].Role)
	require.Len(t, contents[2].Parts, 1)
	assert.Equal(t, "وماذا بعد؟", contents[2].Parts[0].Text)
}

func TestGeminiConfig(t *testing.T) {
	cfg := geminiConfig()
	require.NotNil(t, cfg.Temperature)
	assert.InDelta(t, 0.7, *cfg.Temperature, 1e-6)
	require.NotNil(t, cfg.SystemInstruction)
	require.Len(t, cfg.SystemInstruction.Parts, 1)
	assert.Equal(t, SystemPrompt, cfg.SystemInstruction.Parts[0].Text)
}

func TestNewAnthropicAdvisor(t *testing.T) {
	a := NewAnthropicAdvisor("test-key", "claude-haiku-4-5-20251001")
	require.NotNil(t, a)
	assert.Equal(t, anthropic.Model("claude-haiku-4-5-20251001"), a.model)
}
