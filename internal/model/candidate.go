package model

// Attachment references a file attached to a candidate message. Only PDFs
// are tracked; deck analysis keys off them.
type Attachment struct {
	Filename     string `json:"filename"`
	AttachmentID string `json:"attachment_id"`
	MessageID    string `json:"message_id"`
}

// CandidateMessage is the raw inbound shape from the message source.
type CandidateMessage struct {
	ID          string       `json:"id"`
	Subject     string       `json:"subject"`
	From        string       `json:"from"`
	Snippet     string       `json:"snippet"`
	Body        string       `json:"body"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// DealDraft is the structured form of a candidate, produced by the extractor
// and consumed immediately by the pipeline.
type DealDraft struct {
	CompanyName string          `json:"company_name"`
	Website     string          `json:"website,omitempty"`
	RoundType   string          `json:"round_type,omitempty"`
	Terms       InvestmentTerms `json:"terms"`
}
