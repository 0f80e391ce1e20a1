package research

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/deal-scout/internal/model"
	"github.com/sells-group/deal-scout/pkg/perplexity"
)

// PerplexityProvider backs research with Perplexity sonar completions. Each
// search becomes one grounded answer plus the web sources the model cited.
type PerplexityProvider struct {
	client perplexity.Client
}

// NewPerplexityProvider wraps a Perplexity client as a research Provider.
func NewPerplexityProvider(client perplexity.Client) *PerplexityProvider {
	return &PerplexityProvider{client: client}
}

func (p *PerplexityProvider) Name() string { return "perplexity" }

func (p *PerplexityProvider) Search(ctx context.Context, query string, maxResults int) ([]model.ResearchResult, error) {
	resp, err := p.client.ChatCompletion(ctx, perplexity.ChatCompletionRequest{
		Messages: []perplexity.Message{
			{Role: "user", Content: query},
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "perplexity provider: search")
	}

	answer := resp.Answer()
	if answer == "" {
		return nil, nil
	}

	// First result carries the synthesized answer; the cited sources follow
	// as title-only results so downstream consumers see where it came from.
	results := []model.ResearchResult{{
		Source:  p.Name(),
		Title:   query,
		Content: truncate(answer, maxSnippetLen),
	}}
	for _, sr := range resp.SearchResults {
		results = append(results, model.ResearchResult{
			Source: p.Name(),
			Title:  sr.Title,
			URL:    sr.URL,
		})
	}

	if maxResults > 0 && len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, nil
}

// Fetch is unsupported; Perplexity has no reader endpoint. The orchestrator
// falls back to the scraper.
func (p *PerplexityProvider) Fetch(ctx context.Context, url string) (string, error) {
	return "", eris.New("perplexity provider: fetch not supported")
}
