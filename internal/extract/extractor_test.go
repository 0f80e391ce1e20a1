package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/deal-scout/internal/model"
)

func TestFingerprint_CaseAndWhitespaceInsensitive(t *testing.T) {
	a := Fingerprint("Acme Robotics", "Seed")
	b := Fingerprint("  acme robotics", "SEED  ")
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestFingerprint_UnknownRound(t *testing.T) {
	assert.Equal(t, Fingerprint("Acme", ""), Fingerprint("Acme", "unknown"))
	assert.NotEqual(t, Fingerprint("Acme", ""), Fingerprint("Acme", "Seed"))
}

func TestFingerprint_DifferentRoundsDiffer(t *testing.T) {
	assert.NotEqual(t, Fingerprint("Acme", "Seed"), Fingerprint("Acme", "Series A"))
}

func TestCompanyName_SubjectPatterns(t *testing.T) {
	tests := []struct {
		subject string
		want    string
	}{
		{"Invest in Acme", "Acme"},
		{"invest in Acme Robotics", "Acme Robotics"},
		{"Acme - Seed Round closing soon", "Acme"},
		{"Acme Robotics – Series A allocation", "Acme Robotics"},
		{"Opportunity: Vanta", "Vanta"},
		{"Introducing Loom", "Loom"},
		{"Quick intro - thoughts?", "Quick intro"},
	}

	for _, tt := range tests {
		t.Run(tt.subject, func(t *testing.T) {
			assert.Equal(t, tt.want, companyName(tt.subject))
		})
	}
}

func TestCompanyName_FallbackCapsLength(t *testing.T) {
	long := strings.Repeat("x", 80)
	assert.Len(t, companyName(long), 50)
}

func TestRoundType(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"raising their pre-seed now", "Pre-seed"},
		{"their preseed is open", "Pre-seed"},
		{"Seed round of $2M", "Seed"},
		{"Series A led by Sequoia", "Series A"},
		{"series b extension", "Series B"},
		{"raising capital", ""},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, roundType(tt.text))
		})
	}
}

func TestTerms(t *testing.T) {
	body := `We're excited to share this allocation.
Minimum: $25,000
Valuation: $15M cap
Deadline: Jan 25th
Wire instructions to follow.`

	terms := Terms(body)
	assert.Equal(t, 25000, terms.MinCheck)
	assert.Equal(t, "15M", terms.Valuation)
	assert.Equal(t, "Jan 25th", terms.Deadline)
}

func TestTerms_ClosingVariant(t *testing.T) {
	terms := Terms("min $5,000, closing Feb 28")
	assert.Equal(t, 5000, terms.MinCheck)
	assert.Equal(t, "Feb 28", terms.Deadline)
}

func TestTerms_Empty(t *testing.T) {
	terms := Terms("just wanted to say hi")
	assert.Zero(t, terms.MinCheck)
	assert.Empty(t, terms.Valuation)
	assert.Empty(t, terms.Deadline)
}

func TestDraft(t *testing.T) {
	draft := Draft(model.CandidateMessage{
		Subject: "Invest in Acme - Seed Round",
		Body:    "Check out https://acme.dev — minimum $10,000, valuation $8M, closes Mar 15",
	})

	assert.Equal(t, "Acme", draft.CompanyName)
	assert.Equal(t, "https://acme.dev", draft.Website)
	assert.Equal(t, "Seed", draft.RoundType)
	assert.Equal(t, 10000, draft.Terms.MinCheck)
	assert.Equal(t, "8M", draft.Terms.Valuation)
	assert.Equal(t, "Mar 15", draft.Terms.Deadline)
}
