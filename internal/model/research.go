package model

// ResearchResult is a single finding returned by a search provider.
type ResearchResult struct {
	Source    string  `json:"source"`
	Title     string  `json:"title"`
	Content   string  `json:"content"`
	URL       string  `json:"url"`
	Relevance float64 `json:"relevance"`
}

// CompanyResearch bundles one research pass over a company. It lives only for
// the duration of a pipeline run; the store never sees it.
type CompanyResearch struct {
	CompanyName    string           `json:"company_name"`
	Validation     []ResearchResult `json:"validation"`  // founder background
	Sentiment      []ResearchResult `json:"sentiment"`   // reddit / HN discussions
	Competitors    []ResearchResult `json:"competitors"` // alternative products
	News           []ResearchResult `json:"news"`        // funding, layoffs
	WebsiteContent string           `json:"website_content,omitempty"`
}

// ResearchSnippet is a trimmed result used in summaries and prompts.
type ResearchSnippet struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Source  string `json:"source,omitempty"`
}

// ResearchSummary is the bounded digest handed to scoring and the narrative
// prompt. Degraded categories are empty slices, not absent fields.
type ResearchSummary struct {
	Company        string            `json:"company"`
	FounderInfo    []ResearchSnippet `json:"founder_info"`
	UserSentiment  []ResearchSnippet `json:"user_sentiment"`
	Competitors    []ResearchSnippet `json:"competitors"`
	RecentNews     []ResearchSnippet `json:"recent_news"`
	WebsiteSummary string            `json:"website_summary,omitempty"`
}
