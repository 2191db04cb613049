package domain

import "math"

// StrategyTiered is the registry name of TieredStrategy.
const StrategyTiered = "tiered"

// floorEpsilon absorbs float representation error before truncation,
// e.g. 2000 * 1.15 evaluating to 2299.9999999999995.
const floorEpsilon = 1e-9

// TieredStrategy prices tokens at fixed per-token rates scaled by a tier multiplier.
type TieredStrategy struct {
	rates       RateTable
	multipliers TierMultipliers
}

// NewTieredStrategy creates a tier-scaled token pricing strategy.
func NewTieredStrategy(rates RateTable, multipliers TierMultipliers) *TieredStrategy {
	if multipliers == nil {
		multipliers = DefaultTierMultipliers()
	}

	return &TieredStrategy{
		rates:       rates,
		multipliers: multipliers,
	}
}

// Calculate computes floor(token_cost * multiplier) + tool_costs.
// A zero multiplier makes the whole event free, tool costs included.
func (s *TieredStrategy) Calculate(pc PricingContext) (int64, Breakdown) {
	multiplier := s.multipliers.Multiplier(pc.Tier)

	breakdown := Breakdown{
		Strategy:     StrategyTiered,
		Tier:         pc.Tier,
		Multiplier:   multiplier,
		InputTokens:  nonNegative(pc.InputTokens),
		OutputTokens: nonNegative(pc.OutputTokens),
		TotalTokens:  nonNegative(pc.TotalTokens),
	}

	if multiplier == 0 {
		breakdown.Free = true
		return 0, breakdown
	}

	breakdown.InputCost = float64(breakdown.InputTokens) * s.rates.InputRate
	breakdown.OutputCost = float64(breakdown.OutputTokens) * s.rates.OutputRate
	breakdown.TokenCost = breakdown.InputCost + breakdown.OutputCost
	breakdown.ToolCosts = nonNegative(pc.ToolCosts)

	scaled := int64(math.Floor(breakdown.TokenCost*multiplier + floorEpsilon))
	breakdown.Amount = nonNegative(scaled) + breakdown.ToolCosts

	return breakdown.Amount, breakdown
}
