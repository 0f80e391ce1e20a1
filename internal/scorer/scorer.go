package scorer

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/deal-scout/internal/model"
)

// Scorer applies the weighted signal model to a deal. It is pure: the same
// inputs always produce the same score.
type Scorer struct {
	cfg Config
}

// New creates a Scorer. An invalid config falls back to defaults.
func New(cfg Config) *Scorer {
	if err := Validate(cfg); err != nil {
		zap.L().Warn("invalid scorer config, using defaults", zap.Error(err))
		cfg = DefaultConfig()
	}
	return &Scorer{cfg: cfg}
}

// Score computes the Signal Score in [0,100] for a deal. Deck insights and
// research are optional; their absence skips those signal groups rather than
// penalizing. Returns the score and the per-signal reasons that produced it.
func (s *Scorer) Score(emailText string, deck *model.DeckInsights, research *model.ResearchSummary) (int, []string) {
	cfg := s.cfg
	score := cfg.BaseScore
	var reasons []string

	text := strings.ToLower(emailText)

	// One bonus only, regardless of how many names match.
	for _, vc := range cfg.TopTierVCs {
		if strings.Contains(text, vc) {
			score += cfg.TopTierVC
			reasons = append(reasons, fmt.Sprintf("%+d: top-tier VC (%s)", cfg.TopTierVC, vc))
			break
		}
	}

	// Revenue and no-metrics are mutually exclusive.
	if containsAny(text, cfg.RevenueTerms) {
		score += cfg.RevenueMentioned
		reasons = append(reasons, fmt.Sprintf("%+d: revenue metrics mentioned", cfg.RevenueMentioned))
	} else {
		score += cfg.NoMetrics
		reasons = append(reasons, fmt.Sprintf("%+d: no concrete metrics", cfg.NoMetrics))
	}

	if containsAny(text, cfg.MarketTerms) {
		score += cfg.MarketTAM
		reasons = append(reasons, fmt.Sprintf("%+d: large market mentioned", cfg.MarketTAM))
	}

	if containsAny(text, cfg.GrowthTerms) {
		score += cfg.GrowthRate
		reasons = append(reasons, fmt.Sprintf("%+d: growth metrics mentioned", cfg.GrowthRate))
	}

	if deck != nil {
		if deck.RunwayMonths > 0 && deck.RunwayMonths < cfg.RunwayFloorMonths {
			score += cfg.LowRunway
			reasons = append(reasons, fmt.Sprintf("%+d: low runway (<%d months)", cfg.LowRunway, cfg.RunwayFloorMonths))
		}
		if deck.BurnRate != "" && containsAny(strings.ToLower(deck.BurnRate), cfg.HighBurnTerms) {
			score += cfg.HighBurn
			reasons = append(reasons, fmt.Sprintf("%+d: high burn rate", cfg.HighBurn))
		}
		if n := len(deck.RedFlags); n > 0 {
			penalty := n * cfg.RedFlag
			score += penalty
			reasons = append(reasons, fmt.Sprintf("%+d: %d red flags in deck", penalty, n))
		}
	}

	if research != nil {
		if snippetContainsAny(research.Competitors, cfg.FundedTerms) {
			score += cfg.FundedCompetitor
			reasons = append(reasons, fmt.Sprintf("%+d: funded competitor found", cfg.FundedCompetitor))
		}
		if snippetContainsAny(research.FounderInfo, cfg.ExitTerms) {
			score += cfg.PriorExit
			reasons = append(reasons, fmt.Sprintf("%+d: founder has prior exit", cfg.PriorExit))
		}

		negative := 0
		for _, snip := range research.UserSentiment {
			if containsAny(strings.ToLower(snip.Content), cfg.NegativeTerms) {
				negative++
			}
		}
		if negative > 0 {
			penalty := negative * cfg.RedFlag
			score += penalty
			reasons = append(reasons, fmt.Sprintf("%+d: negative user sentiment (%d)", penalty, negative))
		}
	}

	score = clamp(score, 0, 100)

	zap.L().Debug("signal score computed",
		zap.Int("score", score),
		zap.Strings("reasons", reasons))
	return score, reasons
}

// ActionForScore maps a Signal Score to a triage action. The bands form a
// total order with no overlap.
func ActionForScore(score int) model.Action {
	switch {
	case score >= 80:
		return model.ActionMustRead
	case score >= 60:
		return model.ActionInteresting
	default:
		return model.ActionPass
	}
}

// snippetContainsAny reports whether any snippet's content mentions one of
// the terms. First match wins; callers apply the weight once.
func snippetContainsAny(snippets []model.ResearchSnippet, terms []string) bool {
	for _, snip := range snippets {
		if containsAny(strings.ToLower(snip.Content), terms) {
			return true
		}
	}
	return false
}

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
