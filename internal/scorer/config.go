// Package scorer computes the deterministic Signal Score for a deal.
package scorer

import (
	"fmt"

	"github.com/rotisserie/eris"
)

// Config holds the signal weights and keyword lists. All weights are deltas
// applied to the base score, so negative values are penalties.
type Config struct {
	BaseScore int

	// Positive signals.
	TopTierVC        int
	RevenueMentioned int
	MarketTAM        int
	GrowthRate       int
	PriorExit        int

	// Negative signals.
	HighBurn        int
	LowRunway       int
	FundedCompetitor int
	RedFlag         int // per flag
	NoMetrics       int

	RunwayFloorMonths int

	TopTierVCs      []string
	RevenueTerms    []string
	MarketTerms     []string
	GrowthTerms     []string
	HighBurnTerms   []string
	FundedTerms     []string
	ExitTerms       []string
	NegativeTerms   []string
}

// DefaultConfig returns the production scoring weights.
func DefaultConfig() Config {
	return Config{
		BaseScore: 50,

		TopTierVC:        20,
		RevenueMentioned: 15,
		MarketTAM:        10,
		GrowthRate:       10,
		PriorExit:        15,

		HighBurn:         -20,
		LowRunway:        -15,
		FundedCompetitor: -10,
		RedFlag:          -5,
		NoMetrics:        -10,

		RunwayFloorMonths: 6,

		TopTierVCs: []string{
			"a16z", "andreessen", "sequoia", "benchmark", "accel",
			"greylock", "lightspeed", "founders fund", "tiger global",
			"index ventures", "bessemer", "general catalyst", "y combinator",
			"yc", "khosla", "kleiner", "ggv", "insight partners",
		},
		RevenueTerms:  []string{"arr", "mrr", "revenue", "$"},
		MarketTerms:   []string{"tam", "billion", "market size"},
		GrowthTerms:   []string{"yoy", "year over year", "growth", "2x", "3x", "10x"},
		HighBurnTerms: []string{"high", "500k", "1m", "million"},
		FundedTerms:   []string{"raised", "funding", "series"},
		ExitTerms:     []string{"exited", "sold", "acquired", "ipo"},
		NegativeTerms: []string{"scam", "fraud", "terrible", "avoid"},
	}
}

// Validate checks that the config is internally consistent.
func Validate(c Config) error {
	var errs []string

	if c.BaseScore < 0 || c.BaseScore > 100 {
		errs = append(errs, fmt.Sprintf("base score %d outside [0,100]", c.BaseScore))
	}
	for name, w := range map[string]int{
		"top_tier_vc":       c.TopTierVC,
		"revenue_mentioned": c.RevenueMentioned,
		"market_tam":        c.MarketTAM,
		"growth_rate":       c.GrowthRate,
		"prior_exit":        c.PriorExit,
	} {
		if w < 0 {
			errs = append(errs, fmt.Sprintf("%s must be >= 0", name))
		}
	}
	for name, w := range map[string]int{
		"high_burn":         c.HighBurn,
		"low_runway":        c.LowRunway,
		"funded_competitor": c.FundedCompetitor,
		"red_flag":          c.RedFlag,
		"no_metrics":        c.NoMetrics,
	} {
		if w > 0 {
			errs = append(errs, fmt.Sprintf("%s must be <= 0", name))
		}
	}
	if len(c.TopTierVCs) == 0 {
		errs = append(errs, "top tier VC list is empty")
	}

	if len(errs) > 0 {
		return eris.Errorf("invalid scorer config: %v", errs)
	}
	return nil
}
