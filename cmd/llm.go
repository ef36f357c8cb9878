package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/viper"

	"github.com/joescharf/fitmin/internal/coach"
	"github.com/joescharf/fitmin/internal/llm"
)

// firstNonEmpty returns the first non-empty value.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// newAdvisor creates the configured advice client, or returns nil if no API
// key is configured for the selected provider.
func newAdvisor(ctx context.Context) coach.Advisor {
	switch provider := viper.GetString("advice.provider"); provider {
	case llm.ProviderAnthropic:
		apiKey := firstNonEmpty(viper.GetString("anthropic.api_key"), os.Getenv("ANTHROPIC_API_KEY"))
		if apiKey == "" {
			return nil
		}
		return llm.NewAnthropicAdvisor(apiKey, viper.GetString("anthropic.model"))
	case llm.ProviderGemini, "":
		apiKey := firstNonEmpty(viper.GetString("gemini.api_key"), os.Getenv("GEMINI_API_KEY"), os.Getenv("GOOGLE_API_KEY"))
		if apiKey == "" {
			return nil
		}
		a, err := llm.NewGeminiAdvisor(ctx, apiKey, viper.GetString("gemini.model"))
		if err != nil {
			slog.Warn("gemini unavailable", "error", err)
			return nil
		}
		return a
	default:
		slog.Warn("unknown advice provider", "provider", provider)
		return nil
	}
}

// newTranscript creates a coaching transcript wired to the configured advisor.
func newTranscript(ctx context.Context) *coach.Transcript {
	advisor := newAdvisor(ctx)
	if advisor == nil {
		ui.Warning("No API key for advice provider %q; the coach will reply with a fallback message", viper.GetString("advice.provider"))
	}
	return coach.NewTranscript(advisor, slog.Default(), coach.WithTimeout(viper.GetDuration("advice.timeout")))
}
