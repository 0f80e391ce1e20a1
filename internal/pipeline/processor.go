// Package pipeline processes candidate messages into scored, researched
// deals: dedup, research fan-out, scoring, verdict synthesis, persistence.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/deal-scout/internal/extract"
	"github.com/sells-group/deal-scout/internal/model"
	"github.com/sells-group/deal-scout/internal/research"
	"github.com/sells-group/deal-scout/internal/scorer"
	"github.com/sells-group/deal-scout/internal/store"
	"github.com/sells-group/deal-scout/internal/verdict"
)

// Outcome classifies what ProcessCandidate did with a candidate.
type Outcome string

const (
	OutcomeCreated Outcome = "created" // new deal inserted, scored, verdict stored
	OutcomeUpdated Outcome = "updated" // existing deal's deadline refreshed
	OutcomeSkipped Outcome = "skipped" // existing deal, nothing new to apply
	OutcomeFailed  Outcome = "failed"  // candidate could not be processed
)

// Result is the per-candidate outcome, with the deal when one was created.
type Result struct {
	Outcome     Outcome
	Fingerprint string
	Deal        *model.Deal
}

// Summary aggregates a batch of results.
type Summary struct {
	Created []model.DealSummary
	Updated int
	Skipped int
	Failed  int
}

// Productive reports whether the batch changed anything worth announcing.
func (s *Summary) Productive() bool {
	return len(s.Created) > 0 || s.Updated > 0
}

// Processor runs the per-candidate pipeline.
type Processor struct {
	store        store.Store
	orchestrator *research.Orchestrator
	scorer       *scorer.Scorer
	synthesizer  *verdict.Synthesizer
}

// NewProcessor wires the pipeline stages together.
func NewProcessor(st store.Store, orch *research.Orchestrator, sc *scorer.Scorer, syn *verdict.Synthesizer) *Processor {
	return &Processor{
		store:        st,
		orchestrator: orch,
		scorer:       sc,
		synthesizer:  syn,
	}
}

// ProcessBatch runs every candidate through the pipeline. Per-candidate
// failures are absorbed into the summary; only context cancellation stops
// the batch early.
func (p *Processor) ProcessBatch(ctx context.Context, msgs []model.CandidateMessage) *Summary {
	start := time.Now()
	summary := &Summary{}

	for _, msg := range msgs {
		if ctx.Err() != nil {
			break
		}
		result := p.ProcessCandidate(ctx, msg)
		switch result.Outcome {
		case OutcomeCreated:
			summary.Created = append(summary.Created, result.Deal.Summary())
		case OutcomeUpdated:
			summary.Updated++
		case OutcomeSkipped:
			summary.Skipped++
		case OutcomeFailed:
			summary.Failed++
		}
	}

	zap.L().Info("pipeline batch complete",
		zap.Int("candidates", len(msgs)),
		zap.Int("created", len(summary.Created)),
		zap.Int("updated", summary.Updated),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
		zap.Duration("elapsed", time.Since(start)))
	return summary
}

// ProcessCandidate handles one candidate end to end. Deduplication comes
// first so known deals never trigger research or scoring; a fresh deadline
// on a known deal refreshes terms only. Deal status is never touched here.
func (p *Processor) ProcessCandidate(ctx context.Context, msg model.CandidateMessage) Result {
	draft := extract.Draft(msg)
	fingerprint := extract.Fingerprint(draft.CompanyName, draft.RoundType)
	result := Result{Fingerprint: fingerprint}

	exists, err := p.store.Exists(ctx, fingerprint)
	if err != nil {
		zap.L().Error("dedup lookup failed",
			zap.String("company", draft.CompanyName), zap.Error(err))
		result.Outcome = OutcomeFailed
		return result
	}
	if exists {
		result.Outcome = p.refreshTerms(ctx, fingerprint, draft)
		return result
	}

	deal, err := p.createDeal(ctx, msg, draft, fingerprint)
	if errors.Is(err, store.ErrDuplicateFingerprint) {
		// Lost the race to a concurrent pass: same as "already exists".
		result.Outcome = p.refreshTerms(ctx, fingerprint, draft)
		return result
	}
	if err != nil {
		zap.L().Error("candidate processing failed",
			zap.String("company", draft.CompanyName),
			zap.String("fingerprint", fingerprint),
			zap.Error(err))
		result.Outcome = OutcomeFailed
		return result
	}

	result.Outcome = OutcomeCreated
	result.Deal = deal
	return result
}

// refreshTerms applies a new deadline to a known deal. No deadline in the
// candidate means nothing to refresh.
func (p *Processor) refreshTerms(ctx context.Context, fingerprint string, draft model.DealDraft) Outcome {
	if draft.Terms.Deadline == "" {
		return OutcomeSkipped
	}

	patch := model.TermsPatch{Deadline: &draft.Terms.Deadline}
	if err := p.store.UpdateTerms(ctx, fingerprint, patch); err != nil {
		zap.L().Error("terms refresh failed",
			zap.String("fingerprint", fingerprint), zap.Error(err))
		return OutcomeFailed
	}
	zap.L().Info("deal deadline refreshed",
		zap.String("company", draft.CompanyName),
		zap.String("deadline", draft.Terms.Deadline))
	return OutcomeUpdated
}

func (p *Processor) createDeal(ctx context.Context, msg model.CandidateMessage, draft model.DealDraft, fingerprint string) (*model.Deal, error) {
	deal := &model.Deal{
		Fingerprint: fingerprint,
		CompanyName: draft.CompanyName,
		Website:     draft.Website,
		Stage:       draft.RoundType,
		Terms:       draft.Terms,
		MessageID:   msg.ID,
		Subject:     msg.Subject,
		From:        msg.From,
		Snippet:     msg.Snippet,
		Status:      model.DealStatusPending,
	}

	if err := p.store.Insert(ctx, deal); err != nil {
		return nil, err
	}
	zap.L().Info("new deal",
		zap.String("company", deal.CompanyName),
		zap.String("stage", deal.Stage))

	pitchText := fmt.Sprintf("%s\n%s", msg.Subject, msg.Snippet)

	companyResearch, err := p.orchestrator.Research(ctx, deal.CompanyName, founderName(deal), deal.Website)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: research")
	}
	summary := research.Summarize(companyResearch)

	score, _ := p.scorer.Score(pitchText, deal.DeckInsights, summary)
	v := p.synthesizer.Synthesize(ctx, deal, pitchText, summary, score)

	if err := p.store.SetVerdict(ctx, deal.ID, v); err != nil {
		return nil, eris.Wrap(err, "pipeline: store verdict")
	}
	deal.Verdict = v
	return deal, nil
}

func founderName(deal *model.Deal) string {
	if len(deal.Founders) > 0 {
		return deal.Founders[0].Name
	}
	return ""
}
