package llm

import (
	"strings"

	"github.com/joescharf/fitmin/internal/models"
)

// SystemPrompt is the coaching persona shared by every provider.
const SystemPrompt = `أنت مدرب رياضي ذكي وخبير في اللياقة البدنية المنزلية.
وظيفتك هي تقديم نصائح قصيرة، محفزة، ودقيقة باللغة العربية.
إذا طلب المستخدم برنامجا تدريبيا، اقترح تمارين بسيطة بدون معدات.
حافظ على نبرة إيجابية ومشجعة.`

// Temperature used for all advice requests.
const Temperature = 0.7

// Supported advice providers.
const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
)

// message is a provider-neutral conversation entry.
type message struct {
	user bool
	text string
}

// buildConversation flattens history plus the new prompt into the order the
// providers expect. Turns with any role other than model are sent as user.
func buildConversation(prompt string, history []models.Turn) []message {
	msgs := make([]message, 0, len(history)+1)
	for _, t := range history {
		if strings.TrimSpace(t.Text) == "" {
			continue
		}
		msgs = append(msgs, message{user: t.Role != models.RoleModel, text: t.Text})
	}
	return append(msgs, message{user: true, text: prompt})
}
