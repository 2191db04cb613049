package openai

import (
	"sort"
	"strings"

	"github.com/davidbz/howl/internal/domain"
)

// ModelTiers maps a model name or name prefix to its pricing tier.
type ModelTiers map[string]domain.Tier

// DefaultModelTiers returns the built-in model classification.
func DefaultModelTiers() ModelTiers {
	return ModelTiers{
		"gpt-3.5-turbo": domain.TierLite,
		"gpt-4o-mini":   domain.TierStandard,
		"gpt-4.1-mini":  domain.TierStandard,
		"gpt-4o":        domain.TierPro,
		"gpt-4.1":       domain.TierPro,
		"gpt-4-turbo":   domain.TierPro,
		"gpt-4":         domain.TierUltra,
		"o1":            domain.TierUltra,
		"o3":            domain.TierUltra,
	}
}

// Resolve returns the tier of the longest entry that prefixes model.
// Unknown models return the empty tier, which prices at the neutral multiplier.
func (m ModelTiers) Resolve(model string) domain.Tier {
	model = strings.ToLower(strings.TrimSpace(model))
	if model == "" {
		return ""
	}

	if tier, ok := m[model]; ok {
		return tier
	}

	prefixes := make([]string, 0, len(m))
	for prefix := range m {
		if strings.HasPrefix(model, prefix) {
			prefixes = append(prefixes, prefix)
		}
	}
	if len(prefixes) == 0 {
		return ""
	}

	sort.Slice(prefixes, func(i, j int) bool { return len(prefixes[i]) > len(prefixes[j]) })
	return m[prefixes[0]]
}
