package research

import (
	"context"
	"unicode/utf8"

	"github.com/rotisserie/eris"

	"github.com/sells-group/deal-scout/internal/model"
	"github.com/sells-group/deal-scout/pkg/jina"
)

const (
	maxSnippetLen = 500
	maxWebsiteLen = 2000
)

// JinaProvider backs research with the Jina search and reader APIs.
type JinaProvider struct {
	client jina.Client
}

// NewJinaProvider wraps a Jina client as a research Provider.
func NewJinaProvider(client jina.Client) *JinaProvider {
	return &JinaProvider{client: client}
}

func (p *JinaProvider) Name() string { return "jina" }

func (p *JinaProvider) Search(ctx context.Context, query string, maxResults int) ([]model.ResearchResult, error) {
	hits, err := p.client.Search(ctx, query)
	if err != nil {
		return nil, eris.Wrap(err, "jina provider: search")
	}

	if maxResults > 0 && len(hits) > maxResults {
		hits = hits[:maxResults]
	}

	results := make([]model.ResearchResult, 0, len(hits))
	for _, h := range hits {
		content := h.Content
		if content == "" {
			content = h.Description
		}
		results = append(results, model.ResearchResult{
			Source:  p.Name(),
			Title:   h.Title,
			Content: truncate(content, maxSnippetLen),
			URL:     h.URL,
		})
	}
	return results, nil
}

func (p *JinaProvider) Fetch(ctx context.Context, url string) (string, error) {
	page, err := p.client.Read(ctx, url)
	if err != nil {
		return "", eris.Wrap(err, "jina provider: fetch")
	}
	return truncate(page.Content, maxWebsiteLen), nil
}

// truncate cuts s to at most max bytes on a rune boundary.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := s[:max]
	for len(cut) > 0 && !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	return cut
}
