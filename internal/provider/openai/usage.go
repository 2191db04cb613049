// Package openai maps OpenAI SDK usage payloads into billable usage events.
package openai

import (
	"github.com/openai/openai-go"

	"github.com/davidbz/howl/internal/domain"
)

// UsageMapper turns OpenAI token usage into domain usage events.
type UsageMapper struct {
	tiers ModelTiers
}

// NewUsageMapper creates a usage mapper (DI constructor).
func NewUsageMapper(tiers ModelTiers) *UsageMapper {
	if tiers == nil {
		tiers = DefaultModelTiers()
	}

	return &UsageMapper{tiers: tiers}
}

// FromCompletion builds a usage event from a chat completion response.
func (m *UsageMapper) FromCompletion(userID string, completion *openai.ChatCompletion) domain.UsageEvent {
	event := m.FromUsage(userID, string(completion.Model), completion.Usage)
	event.MessageID = completion.ID
	return event
}

// FromUsage builds a usage event for model, tiered by the model name.
func (m *UsageMapper) FromUsage(userID, model string, usage openai.CompletionUsage) domain.UsageEvent {
	total := usage.TotalTokens
	if total == 0 {
		total = usage.PromptTokens + usage.CompletionTokens
	}

	return domain.UsageEvent{
		UserID:       userID,
		Model:        model,
		Tier:         m.tiers.Resolve(model),
		InputTokens:  usage.PromptTokens,
		OutputTokens: usage.CompletionTokens,
		TotalTokens:  total,
	}
}

