package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/deal-scout/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func testDeal(fingerprint, company string) *model.Deal {
	return &model.Deal{
		Fingerprint: fingerprint,
		CompanyName: company,
		Website:     "https://" + company + ".example",
		Stage:       "Seed",
		Terms: model.InvestmentTerms{
			MinCheck:  5000,
			Valuation: "15M",
			RoundType: "Seed",
			Deadline:  "Jan 25",
		},
		MessageID: "msg-1",
		Subject:   "Invest in " + company,
		From:      "deals@angellist.com",
		Snippet:   company + " is raising",
	}
}

func TestSQLite_InsertAndGet_RoundTrip(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	deal := testDeal("fp-1", "acme")
	deal.Founders = []model.Founder{{Name: "Jane Doe", Role: "CEO"}}
	deal.Verdict = &model.InvestmentVerdict{
		SignalScore: 78,
		OneLinePitch: "Analytics for everyone",
		BullCase:    []string{"strong growth"},
		BearCase:    []string{"crowded market"},
		Metrics:     []model.DealMetric{{Label: "ARR", Value: "$2M", Sentiment: model.SentimentPositive}},
		Action:      model.ActionInteresting,
	}
	require.NoError(t, st.Insert(ctx, deal))
	require.NotEmpty(t, deal.ID)

	got, err := st.Get(ctx, deal.ID)
	require.NoError(t, err)
	assert.Equal(t, "acme", got.CompanyName)
	assert.Equal(t, "fp-1", got.Fingerprint)
	assert.Equal(t, model.DealStatusPending, got.Status)
	assert.Equal(t, 5000, got.Terms.MinCheck)
	require.Len(t, got.Founders, 1)
	assert.Equal(t, "Jane Doe", got.Founders[0].Name)
	require.NotNil(t, got.Verdict)
	assert.Equal(t, 78, got.Verdict.SignalScore)
	assert.Equal(t, model.ActionInteresting, got.Verdict.Action)
	require.Len(t, got.Verdict.Metrics, 1)
	assert.Equal(t, model.SentimentPositive, got.Verdict.Metrics[0].Sentiment)
}

func TestSQLite_Insert_DuplicateFingerprint(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.Insert(ctx, testDeal("fp-dup", "acme")))

	err := st.Insert(ctx, testDeal("fp-dup", "acme again"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateFingerprint)

	// Only one deal survives.
	summaries, err := st.List(ctx, DealFilter{})
	require.NoError(t, err)
	assert.Len(t, summaries, 1)
	assert.Equal(t, "acme", summaries[0].CompanyName)
}

func TestSQLite_Exists(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	ok, err := st.Exists(ctx, "fp-missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, st.Insert(ctx, testDeal("fp-here", "acme")))
	ok, err = st.Exists(ctx, "fp-here")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSQLite_UpdateTerms_MergesDeadlineOnly(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	deal := testDeal("fp-terms", "acme")
	require.NoError(t, st.Insert(ctx, deal))

	deadline := "Feb 28"
	err := st.UpdateTerms(ctx, "fp-terms", model.TermsPatch{Deadline: &deadline})
	require.NoError(t, err)

	got, err := st.GetByFingerprint(ctx, "fp-terms")
	require.NoError(t, err)
	assert.Equal(t, "Feb 28", got.Terms.Deadline)
	// Untouched fields survive the merge.
	assert.Equal(t, 5000, got.Terms.MinCheck)
	assert.Equal(t, "15M", got.Terms.Valuation)
	assert.Equal(t, "Seed", got.Terms.RoundType)
}

func TestSQLite_UpdateTerms_TouchesUpdatedAt(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	deal := testDeal("fp-ts", "acme")
	require.NoError(t, st.Insert(ctx, deal))
	inserted, err := st.GetByFingerprint(ctx, "fp-ts")
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	deadline := "Mar 1"
	require.NoError(t, st.UpdateTerms(ctx, "fp-ts", model.TermsPatch{Deadline: &deadline}))

	got, err := st.GetByFingerprint(ctx, "fp-ts")
	require.NoError(t, err)
	assert.True(t, got.UpdatedAt.After(inserted.UpdatedAt))
	assert.Equal(t, inserted.CreatedAt.Unix(), got.CreatedAt.Unix())
}

func TestSQLite_UpdateTerms_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)

	deadline := "Mar 1"
	err := st.UpdateTerms(context.Background(), "fp-none", model.TermsPatch{Deadline: &deadline})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLite_SetVerdict(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	deal := testDeal("fp-v", "acme")
	require.NoError(t, st.Insert(ctx, deal))

	verdict := &model.InvestmentVerdict{
		SignalScore: 95,
		Action:      model.ActionMustRead,
		BullCase:    []string{"a16z leading"},
	}
	require.NoError(t, st.SetVerdict(ctx, deal.ID, verdict))

	got, err := st.Get(ctx, deal.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Verdict)
	assert.Equal(t, 95, got.Verdict.SignalScore)
	assert.Equal(t, model.ActionMustRead, got.Verdict.Action)
}

func TestSQLite_UpdateStatus(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	deal := testDeal("fp-s", "acme")
	require.NoError(t, st.Insert(ctx, deal))

	require.NoError(t, st.UpdateStatus(ctx, deal.ID, model.DealStatusInvested))

	got, err := st.Get(ctx, deal.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DealStatusInvested, got.Status)
}

func TestSQLite_UpdateStatus_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)
	err := st.UpdateStatus(context.Background(), "no-such-id", model.DealStatusSaved)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLite_List_FilterAndOrder(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	older := testDeal("fp-old", "oldco")
	older.CreatedAt = time.Now().UTC().Add(-2 * time.Hour)
	require.NoError(t, st.Insert(ctx, older))

	newer := testDeal("fp-new", "newco")
	require.NoError(t, st.Insert(ctx, newer))
	require.NoError(t, st.UpdateStatus(ctx, newer.ID, model.DealStatusSaved))

	all, err := st.List(ctx, DealFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "newco", all[0].CompanyName) // most recent first

	saved, err := st.List(ctx, DealFilter{Status: model.DealStatusSaved})
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "newco", saved[0].CompanyName)
}

func TestSQLite_List_Limit(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	for _, fp := range []string{"fp-a", "fp-b", "fp-c"} {
		require.NoError(t, st.Insert(ctx, testDeal(fp, "co-"+fp)))
	}

	limited, err := st.List(ctx, DealFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestSQLite_Get_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)
	_, err := st.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
