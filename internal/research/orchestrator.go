package research

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/sells-group/deal-scout/internal/model"
	"github.com/sells-group/deal-scout/internal/resilience"
	"github.com/sells-group/deal-scout/pkg/firecrawl"
)

const (
	defaultMaxResults = 5
	summaryTopN       = 3
	maxSummaryLen     = 500
)

// Orchestrator runs the full research pass for one company. Category
// failures degrade to empty results; only a context cancellation aborts
// the whole pass.
type Orchestrator struct {
	provider   Provider
	scraper    firecrawl.Client // optional, website fetch fallback
	limiter    *rate.Limiter
	retry      resilience.RetryConfig
	maxResults int
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithScraper sets the fallback website fetcher.
func WithScraper(c firecrawl.Client) OrchestratorOption {
	return func(o *Orchestrator) {
		o.scraper = c
	}
}

// WithMaxResults caps results per research category.
func WithMaxResults(n int) OrchestratorOption {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxResults = n
		}
	}
}

// WithRateLimit throttles provider calls to n per second.
func WithRateLimit(n float64) OrchestratorOption {
	return func(o *Orchestrator) {
		if n > 0 {
			o.limiter = rate.NewLimiter(rate.Limit(n), 1)
		}
	}
}

// NewOrchestrator creates a research orchestrator over the given provider.
func NewOrchestrator(provider Provider, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		provider:   provider,
		limiter:    rate.NewLimiter(rate.Limit(4), 2),
		retry:      resilience.DefaultRetryConfig(),
		maxResults: defaultMaxResults,
	}
	o.retry.OnRetry = resilience.RetryLogger(provider.Name(), "search")
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Research runs the four red-team searches in parallel, then fetches the
// company website when one is known. founderName may be empty.
func (o *Orchestrator) Research(ctx context.Context, companyName, founderName, website string) (*model.CompanyResearch, error) {
	start := time.Now()
	research := &model.CompanyResearch{CompanyName: companyName}

	validationQuery := fmt.Sprintf("%s founder CEO background", companyName)
	if founderName != "" {
		validationQuery = fmt.Sprintf("%s LinkedIn background founder", founderName)
	}

	year := time.Now().Year()
	categories := []struct {
		name  string
		query string
		dest  *[]model.ResearchResult
	}{
		{"validation", validationQuery, &research.Validation},
		{"sentiment", fmt.Sprintf("%s site:reddit.com OR site:news.ycombinator.com", companyName), &research.Sentiment},
		{"competitors", fmt.Sprintf("Alternatives to %s pricing comparison", companyName), &research.Competitors},
		{"news", fmt.Sprintf("%s funding layoffs %d %d", companyName, year-1, year), &research.News},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, cat := range categories {
		g.Go(func() error {
			results, err := o.search(gctx, cat.query)
			if err != nil {
				// A dead category must not sink the pass.
				zap.L().Warn("research category failed",
					zap.String("company", companyName),
					zap.String("category", cat.name),
					zap.Error(err))
				return nil
			}
			*cat.dest = results
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	if website != "" {
		research.WebsiteContent = o.fetchWebsite(ctx, website)
	}

	zap.L().Info("research pass complete",
		zap.String("company", companyName),
		zap.String("provider", o.provider.Name()),
		zap.Int("validation", len(research.Validation)),
		zap.Int("sentiment", len(research.Sentiment)),
		zap.Int("competitors", len(research.Competitors)),
		zap.Int("news", len(research.News)),
		zap.Bool("website", research.WebsiteContent != ""),
		zap.Duration("elapsed", time.Since(start)))
	return research, nil
}

func (o *Orchestrator) search(ctx context.Context, query string) ([]model.ResearchResult, error) {
	return resilience.DoVal(ctx, o.retry, func(ctx context.Context) ([]model.ResearchResult, error) {
		if err := o.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		return o.provider.Search(ctx, query, o.maxResults)
	})
}

// fetchWebsite tries the provider's reader first, then the scraper. Both
// failing leaves the website out of the research rather than failing it.
func (o *Orchestrator) fetchWebsite(ctx context.Context, website string) string {
	if err := o.limiter.Wait(ctx); err != nil {
		return ""
	}

	content, err := o.provider.Fetch(ctx, website)
	if err == nil && content != "" {
		return content
	}
	if err != nil {
		zap.L().Debug("provider website fetch failed, trying scraper",
			zap.String("website", website), zap.Error(err))
	}

	if o.scraper == nil {
		return ""
	}
	resp, err := o.scraper.Scrape(ctx, firecrawl.ScrapeRequest{URL: website})
	if err != nil {
		zap.L().Warn("website scrape failed",
			zap.String("website", website), zap.Error(err))
		return ""
	}
	return truncate(resp.Data.Markdown, maxWebsiteLen)
}

// Summarize trims research to the bounded digest used by scoring and the
// narrative prompt: top results per category, website capped.
func Summarize(research *model.CompanyResearch) *model.ResearchSummary {
	return &model.ResearchSummary{
		Company:        research.CompanyName,
		FounderInfo:    topSnippets(research.Validation, summaryTopN, false),
		UserSentiment:  topSnippets(research.Sentiment, summaryTopN, true),
		Competitors:    topSnippets(research.Competitors, summaryTopN, false),
		RecentNews:     topSnippets(research.News, summaryTopN, false),
		WebsiteSummary: truncate(research.WebsiteContent, maxSummaryLen),
	}
}

func topSnippets(results []model.ResearchResult, n int, withSource bool) []model.ResearchSnippet {
	if len(results) > n {
		results = results[:n]
	}
	snippets := make([]model.ResearchSnippet, 0, len(results))
	for _, r := range results {
		snip := model.ResearchSnippet{Title: r.Title, Content: r.Content}
		if withSource {
			snip.Source = r.URL
		}
		snippets = append(snippets, snip)
	}
	return snippets
}
