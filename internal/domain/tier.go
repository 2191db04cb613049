package domain

import "strings"

// Tier is a coarse model quality level used to scale token pricing.
type Tier string

const (
	TierLite     Tier = "lite"
	TierStandard Tier = "standard"
	TierPro      Tier = "pro"
	TierUltra    Tier = "ultra"
)

//nolint:gochecknoglobals // Fixed set of the tier enum
var knownTiers = map[Tier]struct{}{
	TierLite:     {},
	TierStandard: {},
	TierPro:      {},
	TierUltra:    {},
}

// ParseTier normalizes a tier name. Unknown names report ok=false.
func ParseTier(raw string) (Tier, bool) {
	tier := Tier(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := knownTiers[tier]; !ok {
		return tier, false
	}
	return tier, true
}

