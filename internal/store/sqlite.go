package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/deal-scout/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS deals (
	id            TEXT PRIMARY KEY,
	fingerprint   TEXT NOT NULL UNIQUE,
	company_name  TEXT NOT NULL,
	website       TEXT,
	industry      TEXT,
	stage         TEXT,
	founders      TEXT,
	terms         TEXT,
	deck_insights TEXT,
	verdict       TEXT,
	message_id    TEXT,
	subject       TEXT,
	from_addr     TEXT,
	snippet       TEXT,
	created_at    DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at    DATETIME NOT NULL DEFAULT (datetime('now')),
	status        TEXT NOT NULL DEFAULT 'pending'
);

CREATE INDEX IF NOT EXISTS idx_deals_status ON deals(status);
CREATE INDEX IF NOT EXISTS idx_deals_created_at ON deals(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Exists(ctx context.Context, fingerprint string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM deals WHERE fingerprint = ?`, fingerprint,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, eris.Wrap(err, "sqlite: exists")
	}
	return true, nil
}

func (s *SQLiteStore) Insert(ctx context.Context, deal *model.Deal) error {
	if deal.ID == "" {
		deal.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if deal.CreatedAt.IsZero() {
		deal.CreatedAt = now
	}
	deal.UpdatedAt = now
	if deal.Status == "" {
		deal.Status = model.DealStatusPending
	}

	founders, terms, deck, verdict, err := marshalDealJSON(deal)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO deals (
			id, fingerprint, company_name, website, industry, stage,
			founders, terms, deck_insights, verdict,
			message_id, subject, from_addr, snippet,
			created_at, updated_at, status
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		deal.ID, deal.Fingerprint, deal.CompanyName, deal.Website, deal.Industry, deal.Stage,
		founders, terms, deck, verdict,
		deal.MessageID, deal.Subject, deal.From, deal.Snippet,
		deal.CreatedAt, deal.UpdatedAt, string(deal.Status),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicateFingerprint
		}
		return eris.Wrap(err, "sqlite: insert deal")
	}
	return nil
}

func (s *SQLiteStore) GetByFingerprint(ctx context.Context, fingerprint string) (*model.Deal, error) {
	row := s.db.QueryRowContext(ctx,
		dealSelectSQLite+` WHERE fingerprint = ?`, fingerprint,
	)
	return scanDeal(row)
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*model.Deal, error) {
	row := s.db.QueryRowContext(ctx,
		dealSelectSQLite+` WHERE id = ?`, id,
	)
	return scanDeal(row)
}

// UpdateTerms merges a partial terms patch into the stored terms JSON inside
// a transaction so nothing else on the row is touched.
func (s *SQLiteStore) UpdateTerms(ctx context.Context, fingerprint string, patch model.TermsPatch) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin update terms")
	}
	defer tx.Rollback() //nolint:errcheck

	var termsJSON sql.NullString
	err = tx.QueryRowContext(ctx,
		`SELECT terms FROM deals WHERE fingerprint = ?`, fingerprint,
	).Scan(&termsJSON)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return eris.Wrap(err, "sqlite: read terms")
	}

	var terms model.InvestmentTerms
	if termsJSON.Valid && termsJSON.String != "" {
		if err := json.Unmarshal([]byte(termsJSON.String), &terms); err != nil {
			return eris.Wrap(err, "sqlite: unmarshal terms")
		}
	}
	patch.Apply(&terms)

	merged, err := json.Marshal(terms)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal terms")
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE deals SET terms = ?, updated_at = ? WHERE fingerprint = ?`,
		string(merged), time.Now().UTC(), fingerprint,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: update terms")
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit update terms")
}

func (s *SQLiteStore) SetVerdict(ctx context.Context, id string, verdict *model.InvestmentVerdict) error {
	verdictJSON, err := json.Marshal(verdict)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal verdict")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE deals SET verdict = ?, updated_at = ? WHERE id = ?`,
		string(verdictJSON), time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: set verdict %s", id)
	}
	return checkRowsAffected(res)
}

func (s *SQLiteStore) UpdateStatus(ctx context.Context, id string, status model.DealStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE deals SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update status %s", id)
	}
	return checkRowsAffected(res)
}

func (s *SQLiteStore) List(ctx context.Context, filter DealFilter) ([]model.DealSummary, error) {
	query := dealSelectSQLite + ` WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC LIMIT ?`

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list deals")
	}
	defer rows.Close()

	var summaries []model.DealSummary
	for rows.Next() {
		d, err := scanDeal(rows)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, d.Summary())
	}
	return summaries, eris.Wrap(rows.Err(), "sqlite: list deals iterate")
}

const dealSelectSQLite = `SELECT id, fingerprint, company_name, website, industry, stage,
	founders, terms, deck_insights, verdict,
	message_id, subject, from_addr, snippet,
	created_at, updated_at, status FROM deals`

// helpers shared by both drivers

func checkRowsAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func marshalDealJSON(deal *model.Deal) (founders, terms, deck, verdict sql.NullString, err error) {
	set := func(v any) (sql.NullString, error) {
		b, mErr := json.Marshal(v)
		if mErr != nil {
			return sql.NullString{}, eris.Wrap(mErr, "store: marshal deal field")
		}
		return sql.NullString{String: string(b), Valid: true}, nil
	}

	if len(deal.Founders) > 0 {
		if founders, err = set(deal.Founders); err != nil {
			return
		}
	}
	if terms, err = set(deal.Terms); err != nil {
		return
	}
	if deal.DeckInsights != nil {
		if deck, err = set(deal.DeckInsights); err != nil {
			return
		}
	}
	if deal.Verdict != nil {
		if verdict, err = set(deal.Verdict); err != nil {
			return
		}
	}
	return
}

type scannable interface {
	Scan(dest ...any) error
}

func scanDeal(row scannable) (*model.Deal, error) {
	var d model.Deal
	var website, industry, stage sql.NullString
	var founders, terms, deck, verdict sql.NullString
	var status string

	err := row.Scan(
		&d.ID, &d.Fingerprint, &d.CompanyName, &website, &industry, &stage,
		&founders, &terms, &deck, &verdict,
		&d.MessageID, &d.Subject, &d.From, &d.Snippet,
		&d.CreatedAt, &d.UpdatedAt, &status,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "store: scan deal")
	}

	d.Website = website.String
	d.Industry = industry.String
	d.Stage = stage.String
	d.Status = model.DealStatus(status)

	if founders.Valid && founders.String != "" {
		if err := json.Unmarshal([]byte(founders.String), &d.Founders); err != nil {
			return nil, eris.Wrap(err, "store: unmarshal founders")
		}
	}
	if terms.Valid && terms.String != "" {
		if err := json.Unmarshal([]byte(terms.String), &d.Terms); err != nil {
			return nil, eris.Wrap(err, "store: unmarshal terms")
		}
	}
	if deck.Valid && deck.String != "" {
		d.DeckInsights = &model.DeckInsights{}
		if err := json.Unmarshal([]byte(deck.String), d.DeckInsights); err != nil {
			return nil, eris.Wrap(err, "store: unmarshal deck insights")
		}
	}
	if verdict.Valid && verdict.String != "" {
		d.Verdict = &model.InvestmentVerdict{}
		if err := json.Unmarshal([]byte(verdict.String), d.Verdict); err != nil {
			return nil, eris.Wrap(err, "store: unmarshal verdict")
		}
	}
	return &d, nil
}
