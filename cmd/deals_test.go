package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/deal-scout/internal/model"
)

func TestFormatDealsList(t *testing.T) {
	score := 85
	action := model.ActionMustRead

	var sb strings.Builder
	formatDealsList(&sb, []model.DealSummary{
		{
			ID:          "0e2b1fbc-9c1d-4a2e-8f5f-0123456789ab",
			CompanyName: "Acme",
			Stage:       "Seed",
			SignalScore: &score,
			Action:      &action,
			Deadline:    "Feb 28",
			Status:      model.DealStatusPending,
		},
		{
			ID:          "ffffffff-0000-0000-0000-000000000000",
			CompanyName: "A Company With A Very Long Name Indeed",
			Status:      model.DealStatusSaved,
		},
	})

	out := sb.String()
	assert.Contains(t, out, "0e2b1fbc")
	assert.NotContains(t, out, "9c1d-4a2e")
	assert.Contains(t, out, "Acme")
	assert.Contains(t, out, "85")
	assert.Contains(t, out, string(model.ActionMustRead))
	assert.Contains(t, out, "Feb 28")
	assert.Contains(t, out, "...")
	assert.NotContains(t, out, "Name Indeed")
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "0e2b1fbc", truncateID("0e2b1fbc-9c1d-4a2e-8f5f-0123456789ab"))
	assert.Equal(t, "short", truncateID("short"))
}
