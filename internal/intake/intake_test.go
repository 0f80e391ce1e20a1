package intake

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gmail "google.golang.org/api/gmail/v1"

	"github.com/sells-group/deal-scout/internal/model"
)

func TestFilter(t *testing.T) {
	tests := []struct {
		name string
		msg  model.CandidateMessage
		want bool
	}{
		{
			"keyword in subject",
			model.CandidateMessage{Subject: "New investment opportunity: Acme", From: "someone@example.com"},
			true,
		},
		{
			"keyword in body",
			model.CandidateMessage{Subject: "Acme", Body: "allocation is filling fast", From: "someone@example.com"},
			true,
		},
		{
			"known sender, no keywords",
			model.CandidateMessage{Subject: "Weekly digest", From: "deals@angellist.com"},
			true,
		},
		{
			"syndicate sender fragment",
			model.CandidateMessage{Subject: "Hello", From: "ops@foo-syndicate.io"},
			true,
		},
		{
			"unrelated mail",
			model.CandidateMessage{Subject: "Lunch on Friday?", Body: "tacos?", From: "friend@example.com"},
			false,
		},
		{
			"keyword case insensitive",
			model.CandidateMessage{Subject: "LAST CALL for Acme", From: "x@example.com"},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Filter(tt.msg))
		})
	}
}

func TestBuildQuery(t *testing.T) {
	q := buildQuery()
	assert.Contains(t, q, "from:angel.co")
	assert.Contains(t, q, "from:angellist.com")
	assert.Contains(t, q, " OR ")
	assert.Contains(t, q, "newer_than:7d")
}

func encodeBody(s string) string {
	return base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString([]byte(s))
}

func TestParseMessage_PlainBody(t *testing.T) {
	msg := &gmail.Message{
		Id:      "m1",
		Snippet: "Acme is raising...",
		Payload: &gmail.MessagePart{
			Headers: []*gmail.MessagePartHeader{
				{Name: "Subject", Value: "Invest in Acme"},
				{Name: "From", Value: "deals@angellist.com"},
			},
			Body: &gmail.MessagePartBody{Data: encodeBody("Full pitch body")},
		},
	}

	c := parseMessage(msg)
	assert.Equal(t, "m1", c.ID)
	assert.Equal(t, "Invest in Acme", c.Subject)
	assert.Equal(t, "deals@angellist.com", c.From)
	assert.Equal(t, "Full pitch body", c.Body)
}

func TestParseMessage_PrefersPlainOverHTML(t *testing.T) {
	msg := &gmail.Message{
		Id: "m2",
		Payload: &gmail.MessagePart{
			Parts: []*gmail.MessagePart{
				{MimeType: "text/html", Body: &gmail.MessagePartBody{Data: encodeBody("<b>html</b>")}},
				{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: encodeBody("plain text")}},
			},
		},
	}

	c := parseMessage(msg)
	assert.Equal(t, "plain text", c.Body)
	assert.Equal(t, "(No Subject)", c.Subject)
}

func TestParseMessage_HTMLFallback(t *testing.T) {
	msg := &gmail.Message{
		Id: "m3",
		Payload: &gmail.MessagePart{
			Parts: []*gmail.MessagePart{
				{MimeType: "text/html", Body: &gmail.MessagePartBody{Data: encodeBody("<b>html only</b>")}},
			},
		},
	}
	assert.Equal(t, "<b>html only</b>", parseMessage(msg).Body)
}

func TestParseMessage_PDFAttachments(t *testing.T) {
	msg := &gmail.Message{
		Id: "m4",
		Payload: &gmail.MessagePart{
			Parts: []*gmail.MessagePart{
				{Filename: "Deck.PDF", Body: &gmail.MessagePartBody{AttachmentId: "att-1"}},
				{Filename: "logo.png", Body: &gmail.MessagePartBody{AttachmentId: "att-2"}},
				{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: encodeBody("body")}},
			},
		},
	}

	c := parseMessage(msg)
	require.Len(t, c.Attachments, 1)
	assert.Equal(t, "Deck.PDF", c.Attachments[0].Filename)
	assert.Equal(t, "att-1", c.Attachments[0].AttachmentID)
	assert.Equal(t, "m4", c.Attachments[0].MessageID)
}

func TestParseMessage_NilPayload(t *testing.T) {
	c := parseMessage(&gmail.Message{Id: "m5", Snippet: "snip"})
	assert.Equal(t, "m5", c.ID)
	assert.Empty(t, c.Body)
}
