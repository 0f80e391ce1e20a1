// Package verdict turns a scored, researched deal into a written
// investment verdict via the Anthropic API.
package verdict

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/deal-scout/internal/model"
	"github.com/sells-group/deal-scout/internal/resilience"
	"github.com/sells-group/deal-scout/internal/scorer"
	"github.com/sells-group/deal-scout/pkg/anthropic"
)

const defaultMaxTokens = 1000

const systemPrompt = "You are a skeptical VC analyst. Return only valid JSON."

const promptTemplate = `You are a skeptical angel investor analyzing a startup investment opportunity.

Given the following information:
- EMAIL PITCH: %s
- INVESTMENT TERMS: %s
- EXTERNAL RESEARCH: %s%s

Analyze this opportunity with a RED TEAM mindset. Compare the email claims vs external reality.

Provide your analysis as JSON with this exact structure:
{
    "one_line_pitch": "2-sentence company summary",
    "executive_summary": "3-4 sentence analysis of why to invest or not",
    "bull_case": ["reason 1", "reason 2", "reason 3"],
    "bear_case": ["risk 1", "risk 2", "risk 3"],
    "metrics": [
        {"label": "ARR", "value": "$X", "sentiment": "positive|neutral|negative"},
        {"label": "Growth", "value": "X%%", "sentiment": "positive|neutral|negative"}
    ],
    "competitors": [
        {"name": "Competitor", "differentiation": "How target differs"}
    ]
}

Be concise but insightful. Focus on discrepancies between claims and research.
Return ONLY valid JSON, no markdown.`

// narrativeResponse is the JSON shape the model is asked to emit.
type narrativeResponse struct {
	OneLinePitch     string `json:"one_line_pitch"`
	ExecutiveSummary string `json:"executive_summary"`
	BullCase         []string `json:"bull_case"`
	BearCase         []string `json:"bear_case"`
	Metrics          []struct {
		Label     string `json:"label"`
		Value     string `json:"value"`
		Sentiment string `json:"sentiment"`
	} `json:"metrics"`
	Competitors []struct {
		Name            string `json:"name"`
		Differentiation string `json:"differentiation"`
	} `json:"competitors"`
}

// Synthesizer generates verdict narratives.
type Synthesizer struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	retry     resilience.RetryConfig
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithMaxTokens bounds the narrative completion length.
func WithMaxTokens(n int64) Option {
	return func(s *Synthesizer) {
		if n > 0 {
			s.maxTokens = n
		}
	}
}

// NewSynthesizer creates a Synthesizer using the given model ID.
func NewSynthesizer(client anthropic.Client, modelID string, opts ...Option) *Synthesizer {
	s := &Synthesizer{
		client:    client,
		model:     modelID,
		maxTokens: defaultMaxTokens,
		retry:     resilience.DefaultRetryConfig(),
	}
	s.retry.OnRetry = resilience.RetryLogger("anthropic", "verdict")
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synthesize produces the verdict for a deal. The signal score and its
// action are computed upstream and always survive: a failed or malformed
// narrative yields a degraded verdict, never an error.
func (s *Synthesizer) Synthesize(ctx context.Context, deal *model.Deal, emailContent string, summary *model.ResearchSummary, signalScore int) *model.InvestmentVerdict {
	verdict := &model.InvestmentVerdict{
		SignalScore: signalScore,
		Action:      scorer.ActionForScore(signalScore),
	}

	narrative, err := s.generate(ctx, deal, emailContent, summary)
	if err != nil {
		zap.L().Warn("verdict narrative failed, storing degraded verdict",
			zap.String("company", deal.CompanyName),
			zap.Error(err))
		verdict.OneLinePitch = deal.Subject
		verdict.ExecutiveSummary = "Analysis pending - error during processing"
		verdict.Degraded = true
		return verdict
	}

	verdict.OneLinePitch = narrative.OneLinePitch
	if verdict.OneLinePitch == "" {
		verdict.OneLinePitch = deal.Subject
	}
	verdict.ExecutiveSummary = narrative.ExecutiveSummary
	verdict.BullCase = narrative.BullCase
	verdict.BearCase = narrative.BearCase
	for _, m := range narrative.Metrics {
		verdict.Metrics = append(verdict.Metrics, model.DealMetric{
			Label:     m.Label,
			Value:     m.Value,
			Sentiment: parseSentiment(m.Sentiment),
		})
	}
	for _, c := range narrative.Competitors {
		verdict.Competitors = append(verdict.Competitors, model.Competitor{
			Name:            c.Name,
			Differentiation: c.Differentiation,
		})
	}

	zap.L().Info("verdict synthesized",
		zap.String("company", deal.CompanyName),
		zap.Int("signal_score", signalScore),
		zap.String("action", string(verdict.Action)))
	return verdict
}

func (s *Synthesizer) generate(ctx context.Context, deal *model.Deal, emailContent string, summary *model.ResearchSummary) (*narrativeResponse, error) {
	prompt, err := buildPrompt(deal, emailContent, summary)
	if err != nil {
		return nil, err
	}

	temp := 0.3
	resp, err := resilience.DoVal(ctx, s.retry, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return s.client.CreateMessage(ctx, anthropic.MessageRequest{
			Model:       s.model,
			MaxTokens:   s.maxTokens,
			System:      anthropic.BuildCachedSystemBlocks(systemPrompt),
			Messages:    []anthropic.Message{{Role: "user", Content: prompt}},
			Temperature: &temp,
		})
	})
	if err != nil {
		return nil, eris.Wrap(err, "verdict: create message")
	}
	resp.Usage.LogCost(s.model, "verdict")

	var narrative narrativeResponse
	if err := json.Unmarshal([]byte(stripFences(resp.Text())), &narrative); err != nil {
		return nil, eris.Wrap(err, "verdict: decode narrative")
	}
	return &narrative, nil
}

func buildPrompt(deal *model.Deal, emailContent string, summary *model.ResearchSummary) (string, error) {
	termsJSON, err := json.Marshal(deal.Terms)
	if err != nil {
		return "", eris.Wrap(err, "verdict: marshal terms")
	}
	researchJSON, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", eris.Wrap(err, "verdict: marshal research")
	}

	deckSection := ""
	if deal.DeckInsights != nil {
		deckJSON, err := json.Marshal(deal.DeckInsights)
		if err != nil {
			return "", eris.Wrap(err, "verdict: marshal deck insights")
		}
		deckSection = fmt.Sprintf("\n- PITCH DECK INSIGHTS: %s", deckJSON)
	}

	return fmt.Sprintf(promptTemplate, emailContent, termsJSON, researchJSON, deckSection), nil
}

// stripFences removes markdown code fences the model sometimes wraps its
// JSON in despite instructions.
func stripFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

func parseSentiment(s string) model.Sentiment {
	switch model.Sentiment(strings.ToLower(s)) {
	case model.SentimentPositive:
		return model.SentimentPositive
	case model.SentimentNegative:
		return model.SentimentNegative
	default:
		return model.SentimentNeutral
	}
}
