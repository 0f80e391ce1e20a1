package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/deal-scout/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock implements it.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
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
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	status        TEXT NOT NULL DEFAULT 'pending'
);

CREATE INDEX IF NOT EXISTS idx_deals_status ON deals(status);
CREATE INDEX IF NOT EXISTS idx_deals_created_at ON deals(created_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) Exists(ctx context.Context, fingerprint string) (bool, error) {
	var one int
	err := s.pool.QueryRow(ctx,
		`SELECT 1 FROM deals WHERE fingerprint = $1`, fingerprint,
	).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, eris.Wrap(err, "postgres: exists")
	}
	return true, nil
}

func (s *PostgresStore) Insert(ctx context.Context, deal *model.Deal) error {
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

	_, err = s.pool.Exec(ctx,
		`INSERT INTO deals (
			id, fingerprint, company_name, website, industry, stage,
			founders, terms, deck_insights, verdict,
			message_id, subject, from_addr, snippet,
			created_at, updated_at, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		deal.ID, deal.Fingerprint, deal.CompanyName, deal.Website, deal.Industry, deal.Stage,
		founders, terms, deck, verdict,
		deal.MessageID, deal.Subject, deal.From, deal.Snippet,
		deal.CreatedAt, deal.UpdatedAt, string(deal.Status),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateFingerprint
		}
		return eris.Wrap(err, "postgres: insert deal")
	}
	return nil
}

func (s *PostgresStore) GetByFingerprint(ctx context.Context, fingerprint string) (*model.Deal, error) {
	row := s.pool.QueryRow(ctx, dealSelectPostgres+` WHERE fingerprint = $1`, fingerprint)
	return scanDealPgx(row)
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*model.Deal, error) {
	row := s.pool.QueryRow(ctx, dealSelectPostgres+` WHERE id = $1`, id)
	return scanDealPgx(row)
}

func (s *PostgresStore) UpdateTerms(ctx context.Context, fingerprint string, patch model.TermsPatch) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin update terms")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var termsJSON *string
	err = tx.QueryRow(ctx,
		`SELECT terms FROM deals WHERE fingerprint = $1 FOR UPDATE`, fingerprint,
	).Scan(&termsJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return eris.Wrap(err, "postgres: read terms")
	}

	var terms model.InvestmentTerms
	if termsJSON != nil && *termsJSON != "" {
		if err := json.Unmarshal([]byte(*termsJSON), &terms); err != nil {
			return eris.Wrap(err, "postgres: unmarshal terms")
		}
	}
	patch.Apply(&terms)

	merged, err := json.Marshal(terms)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal terms")
	}

	_, err = tx.Exec(ctx,
		`UPDATE deals SET terms = $1, updated_at = $2 WHERE fingerprint = $3`,
		string(merged), time.Now().UTC(), fingerprint,
	)
	if err != nil {
		return eris.Wrap(err, "postgres: update terms")
	}
	return eris.Wrap(tx.Commit(ctx), "postgres: commit update terms")
}

func (s *PostgresStore) SetVerdict(ctx context.Context, id string, verdict *model.InvestmentVerdict) error {
	verdictJSON, err := json.Marshal(verdict)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal verdict")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE deals SET verdict = $1, updated_at = $2 WHERE id = $3`,
		string(verdictJSON), time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: set verdict %s", id)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, id string, status model.DealStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE deals SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update status %s", id)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, filter DealFilter) ([]model.DealSummary, error) {
	query := dealSelectPostgres + ` WHERE 1=1`
	var args []any

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += ` AND status = $1`
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit)
	if len(args) == 2 {
		query += ` ORDER BY created_at DESC LIMIT $2`
	} else {
		query += ` ORDER BY created_at DESC LIMIT $1`
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list deals")
	}
	defer rows.Close()

	var summaries []model.DealSummary
	for rows.Next() {
		d, err := scanDealPgx(rows)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, d.Summary())
	}
	return summaries, eris.Wrap(rows.Err(), "postgres: list deals iterate")
}

const dealSelectPostgres = `SELECT id, fingerprint, company_name, website, industry, stage,
	founders, terms, deck_insights, verdict,
	message_id, subject, from_addr, snippet,
	created_at, updated_at, status FROM deals`

// scanDealPgx mirrors scanDeal but maps pgx.ErrNoRows to ErrNotFound.
func scanDealPgx(row scannable) (*model.Deal, error) {
	d, err := scanDeal(row)
	if err != nil && errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return d, err
}
