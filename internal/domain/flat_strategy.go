package domain

// StrategyFlat is the registry name of FlatRateStrategy.
const StrategyFlat = "flat"

// FlatRateStrategy charges a fixed number of credits per event regardless of tokens.
type FlatRateStrategy struct {
	perEvent    int64
	multipliers TierMultipliers
}

// NewFlatRateStrategy creates a flat-rate strategy. Free tiers stay free.
func NewFlatRateStrategy(perEvent int64, multipliers TierMultipliers) *FlatRateStrategy {
	if multipliers == nil {
		multipliers = DefaultTierMultipliers()
	}

	return &FlatRateStrategy{
		perEvent:    nonNegative(perEvent),
		multipliers: multipliers,
	}
}

// Calculate returns the per-event charge plus tool costs.
func (s *FlatRateStrategy) Calculate(pc PricingContext) (int64, Breakdown) {
	breakdown := Breakdown{
		Strategy:     StrategyFlat,
		Tier:         pc.Tier,
		Multiplier:   neutralMultiplier,
		InputTokens:  nonNegative(pc.InputTokens),
		OutputTokens: nonNegative(pc.OutputTokens),
		TotalTokens:  nonNegative(pc.TotalTokens),
	}

	if s.multipliers.Multiplier(pc.Tier) == 0 {
		breakdown.Multiplier = 0
		breakdown.Free = true
		return 0, breakdown
	}

	breakdown.TokenCost = float64(s.perEvent)
	breakdown.ToolCosts = nonNegative(pc.ToolCosts)
	breakdown.Amount = s.perEvent + breakdown.ToolCosts

	return breakdown.Amount, breakdown
}
