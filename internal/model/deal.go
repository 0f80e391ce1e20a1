package model

import "time"

// DealStatus represents the triage state of a deal. Only the API mutates it;
// the pipeline never changes status after creation.
type DealStatus string

const (
	DealStatusPending  DealStatus = "pending"
	DealStatusInvested DealStatus = "invested"
	DealStatusPassed   DealStatus = "passed"
	DealStatusSaved    DealStatus = "saved"
)

// ValidDealStatus reports whether s is one of the closed status variants.
func ValidDealStatus(s string) bool {
	switch DealStatus(s) {
	case DealStatusPending, DealStatusInvested, DealStatusPassed, DealStatusSaved:
		return true
	}
	return false
}

// Action is the triage recommendation derived from the signal score.
type Action string

const (
	ActionMustRead    Action = "MUST_READ"
	ActionInteresting Action = "INTERESTING"
	ActionPass        Action = "PASS"
)

// Sentiment classifies a metric as good, bad, or neither.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// Founder describes a founder surfaced from the pitch or research.
type Founder struct {
	Name       string `json:"name"`
	Role       string `json:"role,omitempty"`
	LinkedIn   string `json:"linkedin,omitempty"`
	Background string `json:"background,omitempty"`
}

// InvestmentTerms holds the round terms extracted from the pitch.
type InvestmentTerms struct {
	MinCheck     int    `json:"min_check,omitempty"`
	Valuation    string `json:"valuation,omitempty"`
	RoundType    string `json:"round_type,omitempty"`
	LeadInvestor string `json:"lead_investor,omitempty"`
	Carry        string `json:"carry,omitempty"`
	ProRata      *bool  `json:"pro_rata,omitempty"`
	Deadline     string `json:"deadline,omitempty"`
}

// TermsPatch is a partial terms update. Nil fields are left untouched so a
// refreshed deadline never clobbers the original check size or valuation.
type TermsPatch struct {
	MinCheck  *int    `json:"min_check,omitempty"`
	Valuation *string `json:"valuation,omitempty"`
	Deadline  *string `json:"deadline,omitempty"`
}

// Apply merges the patch into terms in place.
func (p TermsPatch) Apply(t *InvestmentTerms) {
	if p.MinCheck != nil {
		t.MinCheck = *p.MinCheck
	}
	if p.Valuation != nil {
		t.Valuation = *p.Valuation
	}
	if p.Deadline != nil {
		t.Deadline = *p.Deadline
	}
}

// IsZero reports whether the patch carries no fields.
func (p TermsPatch) IsZero() bool {
	return p.MinCheck == nil && p.Valuation == nil && p.Deadline == nil
}

// DeckInsights holds metrics pulled from a pitch deck, when one was analyzed.
type DeckInsights struct {
	RevenueARR   string   `json:"revenue_arr,omitempty"`
	BurnRate     string   `json:"burn_rate,omitempty"`
	RunwayMonths int      `json:"runway_months,omitempty"`
	GrowthRate   string   `json:"growth_rate,omitempty"`
	KeyMetrics   []string `json:"key_metrics,omitempty"`
	RedFlags     []string `json:"red_flags,omitempty"`
}

// DealMetric is a single labeled metric in a verdict.
type DealMetric struct {
	Label     string    `json:"label"`
	Value     string    `json:"value"`
	Sentiment Sentiment `json:"sentiment"`
}

// Competitor names a competing product and how the target differs.
type Competitor struct {
	Name            string `json:"name"`
	Differentiation string `json:"differentiation"`
}

// InvestmentVerdict combines the deterministic signal score with the
// generated narrative. SignalScore and Action survive narrative failure.
type InvestmentVerdict struct {
	SignalScore      int          `json:"signal_score"`
	OneLinePitch     string       `json:"one_line_pitch"`
	ExecutiveSummary string       `json:"executive_summary"`
	BullCase         []string     `json:"bull_case"`
	BearCase         []string     `json:"bear_case"`
	Metrics          []DealMetric `json:"metrics"`
	Competitors      []Competitor `json:"competitors"`
	Action           Action       `json:"action"`
	Degraded         bool         `json:"degraded,omitempty"`
}

// Deal is the persistent aggregate, one row per fingerprint.
type Deal struct {
	ID           string             `json:"id"`
	Fingerprint  string             `json:"fingerprint"`
	CompanyName  string             `json:"company_name"`
	Website      string             `json:"website,omitempty"`
	Industry     string             `json:"industry,omitempty"`
	Stage        string             `json:"stage,omitempty"`
	Founders     []Founder          `json:"founders,omitempty"`
	Terms        InvestmentTerms    `json:"terms"`
	DeckInsights *DeckInsights      `json:"deck_insights,omitempty"`
	Verdict      *InvestmentVerdict `json:"verdict,omitempty"`
	MessageID    string             `json:"message_id"`
	Subject      string             `json:"subject"`
	From         string             `json:"from"`
	Snippet      string             `json:"snippet"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
	Status       DealStatus         `json:"status"`
}

// DealSummary is the lightweight shape used by list views and push events.
type DealSummary struct {
	ID          string     `json:"id"`
	CompanyName string     `json:"company_name"`
	Stage       string     `json:"stage,omitempty"`
	SignalScore *int       `json:"signal_score,omitempty"`
	Action      *Action    `json:"action,omitempty"`
	MinCheck    int        `json:"min_check,omitempty"`
	Deadline    string     `json:"deadline,omitempty"`
	Status      DealStatus `json:"status"`
}

// Summary projects a Deal into its list shape.
func (d *Deal) Summary() DealSummary {
	s := DealSummary{
		ID:          d.ID,
		CompanyName: d.CompanyName,
		Stage:       d.Stage,
		MinCheck:    d.Terms.MinCheck,
		Deadline:    d.Terms.Deadline,
		Status:      d.Status,
	}
	if d.Verdict != nil {
		score := d.Verdict.SignalScore
		action := d.Verdict.Action
		s.SignalScore = &score
		s.Action = &action
	}
	return s
}
