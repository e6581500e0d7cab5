package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"bigfive/internal/assessment"
)

// DefaultTable is the runs table name.
const DefaultTable = "gz_runs"

// PostgresStore keeps suites in a jsonb column keyed by hash.
type PostgresStore struct {
	db     *sql.DB
	insert string
	get    string
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
		insert: fmt.Sprintf(`INSERT INTO %s (hash, results) VALUES ($1, $2) ON CONFLICT (hash) DO NOTHING`, t),
		get:    fmt.Sprintf(`SELECT results FROM %s WHERE hash = $1`, t),
	}
}

func (s *PostgresStore) Save(ctx context.Context, hash string, suite assessment.SuiteResult) error {
	raw, err := json.Marshal(suite)
	if err != nil {
		return fmt.Errorf("encode suite: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, s.insert, hash, raw); err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, hash string) (*assessment.SuiteResult, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, s.get, hash).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	var suite assessment.SuiteResult
	if err := json.Unmarshal(raw, &suite); err != nil {
		return nil, fmt.Errorf("decode run: %w", err)
	}
	return &suite, nil
}
