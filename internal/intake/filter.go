package intake

import (
	"strings"

	"github.com/sells-group/deal-scout/internal/model"
)

// investmentSenders are sender-domain fragments that mark deal-flow email.
var investmentSenders = []string{
	"angel.co",
	"angellist.com",
	"squad",
	"syndicate",
}

// investmentKeywords mark deal-flow email by body or subject content.
var investmentKeywords = []string{
	"investment opportunity",
	"deal flow",
	"allocation",
	"syndicate",
	"minimum check",
	"carry",
	"pro-rata",
	"invest now",
	"closing soon",
	"last call",
}

// Filter reports whether a message looks like an investment opportunity:
// a known sender domain or at least one deal-flow keyword.
func Filter(msg model.CandidateMessage) bool {
	text := strings.ToLower(msg.Subject + " " + msg.Body)
	for _, kw := range investmentKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}

	from := strings.ToLower(msg.From)
	for _, s := range investmentSenders {
		if strings.Contains(from, s) {
			return true
		}
	}
	return false
}
