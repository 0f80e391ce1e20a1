package scorer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/deal-scout/internal/model"
)

func TestScore_HotDeal(t *testing.T) {
	s := New(DefaultConfig())

	// Top-tier VC +20, revenue +15, growth +10 on top of base 50.
	score, reasons := s.Score("a16z is leading. $2M ARR, 200% YoY.", nil, nil)
	assert.Equal(t, 95, score)
	assert.Len(t, reasons, 3)
	assert.Equal(t, model.ActionMustRead, ActionForScore(score))
}

func TestScore_WeakDeal(t *testing.T) {
	s := New(DefaultConfig())

	// No metrics -10, low runway -15.
	score, _ := s.Score("exciting opportunity in a hot space", &model.DeckInsights{RunwayMonths: 3}, nil)
	assert.Equal(t, 25, score)
	assert.Equal(t, model.ActionPass, ActionForScore(score))
}

func TestScore_TopTierVCCountedOnce(t *testing.T) {
	s := New(DefaultConfig())

	// Two allow-list names, one bonus. Revenue from "$".
	score, _ := s.Score("a16z and sequoia are both in, $500k committed", nil, nil)
	assert.Equal(t, 85, score)
}

func TestScore_RevenueAndNoMetricsExclusive(t *testing.T) {
	s := New(DefaultConfig())

	withRevenue, _ := s.Score("we have revenue", nil, nil)
	without, _ := s.Score("we have a dream", nil, nil)
	assert.Equal(t, 65, withRevenue)
	assert.Equal(t, 40, without)
}

func TestScore_DeckSignals(t *testing.T) {
	s := New(DefaultConfig())

	deck := &model.DeckInsights{
		RunwayMonths: 4,
		BurnRate:     "$1M/month",
		RedFlags:     []string{"no moat", "crowded market", "churn"},
	}
	// Base 50, no metrics -10, runway -15, burn -20, 3 flags -15 → clamp at 0.
	score, _ := s.Score("please invest", deck, nil)
	assert.Equal(t, 0, score)
}

func TestScore_RunwayAtFloorNotPenalized(t *testing.T) {
	s := New(DefaultConfig())

	score, _ := s.Score("revenue positive", &model.DeckInsights{RunwayMonths: 6}, nil)
	assert.Equal(t, 65, score)
}

func TestScore_ResearchSignals(t *testing.T) {
	s := New(DefaultConfig())

	research := &model.ResearchSummary{
		Competitors: []model.ResearchSnippet{
			{Content: "CompetitorX raised a $40M Series B"},
			{Content: "AnotherCo also raised funding"},
		},
		FounderInfo: []model.ResearchSnippet{
			{Content: "previously sold their startup to Google"},
		},
		UserSentiment: []model.ResearchSnippet{
			{Content: "honestly felt like a scam"},
			{Content: "terrible support experience"},
			{Content: "works fine for me"},
		},
	}

	// Base 50, revenue +15, funded competitor -10 (once), prior exit +15,
	// two negative sentiment hits -10.
	score, reasons := s.Score("$1.2M ARR", nil, research)
	assert.Equal(t, 60, score)
	require.Len(t, reasons, 4)
}

func TestScore_ClampUpper(t *testing.T) {
	s := New(DefaultConfig())

	research := &model.ResearchSummary{
		FounderInfo: []model.ResearchSnippet{{Content: "exited via IPO"}},
	}
	// 50+20+15+10+10+15 = 120 → 100.
	score, _ := s.Score("sequoia leading, $3M ARR, huge TAM, 10x growth", nil, research)
	assert.Equal(t, 100, score)
}

func TestActionForScore_Bands(t *testing.T) {
	tests := []struct {
		score int
		want  model.Action
	}{
		{0, model.ActionPass},
		{59, model.ActionPass},
		{60, model.ActionInteresting},
		{79, model.ActionInteresting},
		{80, model.ActionMustRead},
		{100, model.ActionMustRead},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ActionForScore(tt.score), "score %d", tt.score)
	}
}

func TestNew_InvalidConfigFallsBack(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RedFlag = 5 // penalties must be <= 0

	s := New(cfg)
	score, _ := s.Score("a16z leading, $2M ARR, 200% YoY", nil, nil)
	assert.Equal(t, 95, score)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(DefaultConfig()))

	bad := DefaultConfig()
	bad.TopTierVCs = nil
	assert.Error(t, Validate(bad))

	bad = DefaultConfig()
	bad.BaseScore = 120
	assert.Error(t, Validate(bad))
}
