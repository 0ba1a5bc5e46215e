package credit

// TierPolicy is static pricing configuration for one search tier.
type TierPolicy struct {
	Tier     Tier     `json:"tier"`
	Cost     int      `json:"cost"`
	Features []string `json:"features"`
}

var tierPolicies = map[Tier]TierPolicy{
	TierBasic: {
		Tier: TierBasic,
		Cost: 0,
		Features: []string{
			"Address lookup and geocoding",
			"Parcel boundaries",
			"Last sale price",
		},
	},
	TierSmart: {
		Tier: TierSmart,
		Cost: 1,
		Features: []string{
			"Everything in basic",
			"AI-enhanced valuation estimate",
			"Comparable sales analysis",
			"Owner and tax history",
		},
	},
}

// PolicyFor returns the pricing policy for a tier.
func PolicyFor(t Tier) (TierPolicy, error) {
	p, ok := tierPolicies[t]
	if !ok {
		return TierPolicy{}, ErrInvalidTier
	}
	return p, nil
}

// Policies returns all tier policies, cheapest first.
func Policies() []TierPolicy {
	return []TierPolicy{tierPolicies[TierBasic], tierPolicies[TierSmart]}
}
