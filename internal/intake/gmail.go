package intake

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/sells-group/deal-scout/internal/model"
)

const defaultMaxMessages = 20

// GmailSource fetches investment email from a Gmail inbox using an
// existing OAuth token.
type GmailSource struct {
	svc         *gmail.Service
	maxMessages int64
}

// GmailOption configures a GmailSource.
type GmailOption func(*GmailSource)

// WithMaxMessages caps how many messages a single Fetch lists.
func WithMaxMessages(n int64) GmailOption {
	return func(s *GmailSource) {
		if n > 0 {
			s.maxMessages = n
		}
	}
}

// NewGmailSource builds a GmailSource from an OAuth client credentials file
// and a previously issued token file.
func NewGmailSource(ctx context.Context, credentialsPath, tokenPath string, opts ...GmailOption) (*GmailSource, error) {
	credsJSON, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, eris.Wrapf(err, "intake: read gmail credentials %s", credentialsPath)
	}
	oauthCfg, err := google.ConfigFromJSON(credsJSON, gmail.GmailReadonlyScope)
	if err != nil {
		return nil, eris.Wrap(err, "intake: parse gmail credentials")
	}

	tokenJSON, err := os.ReadFile(tokenPath)
	if err != nil {
		return nil, eris.Wrapf(err, "intake: read gmail token %s", tokenPath)
	}
	var token oauth2.Token
	if err := json.Unmarshal(tokenJSON, &token); err != nil {
		return nil, eris.Wrap(err, "intake: parse gmail token")
	}

	svc, err := gmail.NewService(ctx, option.WithHTTPClient(oauthCfg.Client(ctx, &token)))
	if err != nil {
		return nil, eris.Wrap(err, "intake: create gmail service")
	}

	source := &GmailSource{svc: svc, maxMessages: defaultMaxMessages}
	for _, opt := range opts {
		opt(source)
	}
	return source, nil
}

// Fetch lists recent messages from known deal-flow senders and parses each
// into a candidate. Individual message failures are logged and skipped.
func (s *GmailSource) Fetch(ctx context.Context) ([]model.CandidateMessage, error) {
	query := buildQuery()
	zap.L().Debug("gmail search", zap.String("query", query))

	list, err := s.svc.Users.Messages.List("me").
		Q(query).
		MaxResults(s.maxMessages).
		Context(ctx).
		Do()
	if err != nil {
		return nil, eris.Wrap(err, "intake: list gmail messages")
	}

	candidates := make([]model.CandidateMessage, 0, len(list.Messages))
	for _, m := range list.Messages {
		full, err := s.svc.Users.Messages.Get("me", m.Id).Format("full").Context(ctx).Do()
		if err != nil {
			zap.L().Warn("gmail message fetch failed",
				zap.String("message_id", m.Id), zap.Error(err))
			continue
		}
		candidates = append(candidates, parseMessage(full))
	}

	zap.L().Info("gmail fetch complete",
		zap.Int("listed", len(list.Messages)),
		zap.Int("parsed", len(candidates)))
	return candidates, nil
}

// buildQuery searches mail from known deal-flow senders over the last week.
func buildQuery() string {
	senders := make([]string, len(investmentSenders))
	for i, s := range investmentSenders {
		senders[i] = "from:" + s
	}
	return fmt.Sprintf("(%s) newer_than:7d", strings.Join(senders, " OR "))
}

// parseMessage flattens a Gmail API message into a candidate: headers,
// preferred text/plain body (html fallback), PDF attachments.
func parseMessage(msg *gmail.Message) model.CandidateMessage {
	candidate := model.CandidateMessage{
		ID:      msg.Id,
		Snippet: msg.Snippet,
	}
	if msg.Payload == nil {
		return candidate
	}

	for _, h := range msg.Payload.Headers {
		switch h.Name {
		case "Subject":
			candidate.Subject = h.Value
		case "From":
			candidate.From = h.Value
		}
	}
	if candidate.Subject == "" {
		candidate.Subject = "(No Subject)"
	}

	candidate.Body = extractBody(msg.Payload)

	for _, part := range msg.Payload.Parts {
		if strings.HasSuffix(strings.ToLower(part.Filename), ".pdf") && part.Body != nil {
			candidate.Attachments = append(candidate.Attachments, model.Attachment{
				Filename:     part.Filename,
				AttachmentID: part.Body.AttachmentId,
				MessageID:    msg.Id,
			})
		}
	}
	return candidate
}

func extractBody(payload *gmail.MessagePart) string {
	if payload.Body != nil && payload.Body.Data != "" {
		return decodeBody(payload.Body.Data)
	}

	var html string
	for _, part := range payload.Parts {
		if part.Body == nil || part.Body.Data == "" {
			continue
		}
		switch part.MimeType {
		case "text/plain":
			return decodeBody(part.Body.Data)
		case "text/html":
			if html == "" {
				html = decodeBody(part.Body.Data)
			}
		}
	}
	return html
}

func decodeBody(data string) string {
	decoded, err := base64.URLEncoding.WithPadding(base64.NoPadding).DecodeString(data)
	if err != nil {
		zap.L().Debug("gmail body decode failed", zap.Error(err))
		return ""
	}
	return string(decoded)
}
