package domain

// PricingContext carries the usage metrics of one billable event.
type PricingContext struct {
	Tier         Tier
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
	ToolCosts    int64 // fixed tool costs, already in credits
}

// Breakdown explains how a credit amount was derived.
type Breakdown struct {
	Strategy     string  `json:"strategy"`
	Tier         Tier    `json:"tier,omitempty"`
	Multiplier   float64 `json:"multiplier"`
	InputTokens  int64   `json:"input_tokens"`
	OutputTokens int64   `json:"output_tokens"`
	TotalTokens  int64   `json:"total_tokens"`
	InputCost    float64 `json:"input_cost"`
	OutputCost   float64 `json:"output_cost"`
	TokenCost    float64 `json:"token_cost"`
	ToolCosts    int64   `json:"tool_costs"`
	Free         bool    `json:"free,omitempty"`
	Amount       int64   `json:"amount"`
}

// PricingStrategy converts usage metrics into a credit amount.
// Implementations must be pure and must never fail: pricing cannot block a chat turn.
type PricingStrategy interface {
	// Calculate returns a non-negative credit amount and its breakdown.
	Calculate(pc PricingContext) (int64, Breakdown)
}

// RateTable holds the per-token credit rates.
type RateTable struct {
	InputRate  float64 // credits per input token
	OutputRate float64 // credits per output token
}

// TierMultipliers maps a tier to its rate multiplier.
type TierMultipliers map[Tier]float64

// DefaultRateTable returns the built-in per-token rates.
func DefaultRateTable() RateTable {
	return RateTable{
		InputRate:  1,
		OutputRate: 2,
	}
}

// DefaultTierMultipliers returns the built-in multipliers. Lite is free.
func DefaultTierMultipliers() TierMultipliers {
	return TierMultipliers{
		TierLite:     0,
		TierStandard: 1,
		TierPro:      1.5,
		TierUltra:    3,
	}
}

// ParseTierMultipliers converts configured tier names into multipliers.
// Unknown tier names are dropped.
func ParseTierMultipliers(raw map[string]float64) TierMultipliers {
	multipliers := make(TierMultipliers, len(raw))
	for name, multiplier := range raw {
		if tier, ok := ParseTier(name); ok {
			multipliers[tier] = multiplier
		}
	}
	return multipliers
}

// neutralMultiplier applies when a tier is unspecified or unknown.
const neutralMultiplier = 1.0

// Multiplier returns the multiplier for tier, falling back to the neutral 1.0.
func (m TierMultipliers) Multiplier(tier Tier) float64 {
	if tier == "" {
		return neutralMultiplier
	}

	normalized, _ := ParseTier(string(tier))
	multiplier, ok := m[normalized]
	if !ok || multiplier < 0 {
		return neutralMultiplier
	}

	return multiplier
}

func nonNegative(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
