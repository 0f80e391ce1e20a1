// Package extract pulls structured deal facts out of raw email text.
// It is deliberately pattern-based: pitch emails are short and formulaic
// enough that a handful of regexes recovers the company, round, and terms
// without an LLM round-trip.
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/sells-group/deal-scout/internal/model"
)

const maxCompanyNameLen = 50

var companyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)invest in (\w+(?:\s+\w+)?)`),
	regexp.MustCompile(`(?i)^(\w+(?:\s+\w+)?)\s*[-–:]\s*(?:seed|series|pre-seed)`),
	regexp.MustCompile(`(?i)opportunity[:\s]+(\w+(?:\s+\w+)?)`),
	regexp.MustCompile(`(?i)introducing (\w+(?:\s+\w+)?)`),
}

var roundPatterns = []struct {
	re   *regexp.Regexp
	name string
}{
	{regexp.MustCompile(`(?i)pre-?seed`), "Pre-seed"},
	{regexp.MustCompile(`(?i)seed\s*round`), "Seed"},
	{regexp.MustCompile(`(?i)series\s*a`), "Series A"},
	{regexp.MustCompile(`(?i)series\s*b`), "Series B"},
}

var (
	websiteRe   = regexp.MustCompile(`https?://(?:www\.)?[a-zA-Z0-9-]+\.[a-zA-Z]{2,}`)
	minCheckRe  = regexp.MustCompile(`(?i)(?:minimum|min)[:\s]*\$?([0-9,]+)`)
	valuationRe = regexp.MustCompile(`(?i)valuation[:\s]*\$?([0-9.]+\s*[MB])`)
	deadlineRe  = regexp.MustCompile(`(?i)(?:deadline|closes?|closing)[:\s]*([A-Za-z]+\s+\d{1,2}(?:st|nd|rd|th)?)`)
)

// Draft extracts a DealDraft from a candidate message. Extraction never
// fails outright: a subject line that matches no pattern still yields a
// company name from the subject prefix.
func Draft(msg model.CandidateMessage) model.DealDraft {
	text := msg.Subject + " " + msg.Body

	return model.DealDraft{
		CompanyName: companyName(msg.Subject),
		Website:     websiteRe.FindString(text),
		RoundType:   roundType(text),
		Terms:       Terms(msg.Body),
	}
}

// Terms extracts investment terms from an email body. Fields that do not
// appear in the text stay zero.
func Terms(body string) model.InvestmentTerms {
	var terms model.InvestmentTerms

	if m := minCheckRe.FindStringSubmatch(body); m != nil {
		if n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", "")); err == nil {
			terms.MinCheck = n
		}
	}
	if m := valuationRe.FindStringSubmatch(body); m != nil {
		terms.Valuation = m[1]
	}
	if m := deadlineRe.FindStringSubmatch(body); m != nil {
		terms.Deadline = m[1]
	}
	return terms
}

func companyName(subject string) string {
	for _, re := range companyPatterns {
		if m := re.FindStringSubmatch(subject); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	// Fallback: everything before the first dash, capped.
	name := strings.TrimSpace(strings.SplitN(subject, "-", 2)[0])
	if runes := []rune(name); len(runes) > maxCompanyNameLen {
		name = string(runes[:maxCompanyNameLen])
	}
	return name
}

func roundType(text string) string {
	for _, p := range roundPatterns {
		if p.re.MatchString(text) {
			return p.name
		}
	}
	return ""
}
