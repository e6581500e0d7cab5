package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"bigfive/internal/results/models"
)

// DefaultTable is the results table name.
const DefaultTable = "gz_results"

// PostgresStore keeps the record document in a jsonb column next to the
// indexed suite hash.
type PostgresStore struct {
	db     *sql.DB
	insert string
	get    string
	byHash string
}

// NewPostgresStore builds the statements for table. An empty table uses
// DefaultTable.
func NewPostgresStore(db *sql.DB, table string) *PostgresStore {
	if table == "" {
		table = DefaultTable
	}
	t := pq.QuoteIdentifier(table)
	return &PostgresStore{
		db:     db,
		insert: fmt.Sprintf(`INSERT INTO %s (id, suite_hash, record, created_at) VALUES ($1, $2, $3, $4) ON CONFLICT (id) DO NOTHING`, t),
		get:    fmt.Sprintf(`SELECT record FROM %s WHERE id = $1`, t),
		byHash: fmt.Sprintf(`SELECT id FROM %s WHERE suite_hash = $1 ORDER BY created_at, id LIMIT 1`, t),
	}
}

func (s *PostgresStore) Create(ctx context.Context, r models.Record) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	res, err := s.db.ExecContext(ctx, s.insert, r.ID, r.SuiteHash, raw, r.DateStamp)
	if err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*models.Record, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, s.get, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get result: %w", err)
	}
	var r models.Record
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	return &r, nil
}

func (s *PostgresStore) FindByHash(ctx context.Context, hash string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, s.byHash, hash).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("find result: %w", err)
	}
	return id, nil
}
