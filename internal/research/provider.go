// Package research runs the red-team research pass over a deal: parallel
// web searches to validate founder claims, surface real user sentiment,
// map competitors, and pull recent news.
package research

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/deal-scout/internal/model"
	"github.com/sells-group/deal-scout/pkg/jina"
	"github.com/sells-group/deal-scout/pkg/perplexity"
)

// Provider abstracts a web research backend.
type Provider interface {
	Name() string
	// Search runs a web search and returns at most maxResults findings.
	Search(ctx context.Context, query string, maxResults int) ([]model.ResearchResult, error)
	// Fetch returns the readable content of a URL. Providers without a
	// reader return an error; the orchestrator falls back to the scraper.
	Fetch(ctx context.Context, url string) (string, error)
}

// SelectProvider picks the research backend from the configured clients.
// Jina is preferred; Perplexity is the fallback. Fails fast when neither
// is configured so a bad deployment dies at startup, not mid-pass.
func SelectProvider(jinaClient jina.Client, perplexityClient perplexity.Client) (Provider, error) {
	switch {
	case jinaClient != nil:
		return NewJinaProvider(jinaClient), nil
	case perplexityClient != nil:
		return NewPerplexityProvider(perplexityClient), nil
	default:
		return nil, eris.New("research: no provider configured, set a Jina or Perplexity API key")
	}
}
