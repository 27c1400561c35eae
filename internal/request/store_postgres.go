package request

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PostgresStore persists request records as JSONB rows in change_requests,
// keyed by (collection, id). The service's put-then-delete move between
// collections keeps each id in exactly one collection.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore constructs a PostgreSQL-backed request store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, col Collection, id string) (*ChangeRequest, error) {
	var record []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT record FROM change_requests WHERE collection = $1 AND id = $2`,
		string(col), id,
	).Scan(&record)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get request: %w", err)
	}

	var req ChangeRequest
	if err := json.Unmarshal(record, &req); err != nil {
		return nil, fmt.Errorf("decode request %s: %w", id, err)
	}
	return &req, nil
}

func (s *PostgresStore) Put(ctx context.Context, col Collection, req *ChangeRequest) error {
	record, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	sortKey := req.SubmittedAt
	if completed := req.CompletedAt(); !completed.IsZero() {
		sortKey = completed
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO change_requests (id, collection, record, sort_key)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (collection, id) DO UPDATE SET
			record   = EXCLUDED.record,
			sort_key = EXCLUDED.sort_key`,
		req.ID, string(col), record, sortKey,
	)
	if err != nil {
		return fmt.Errorf("put request: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, col Collection, id string) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM change_requests WHERE collection = $1 AND id = $2`,
		string(col), id,
	)
	if err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, col Collection) ([]*ChangeRequest, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT record FROM change_requests WHERE collection = $1 ORDER BY sort_key DESC`,
		string(col),
	)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	defer rows.Close()

	var out []*ChangeRequest
	for rows.Next() {
		var record []byte
		if err := rows.Scan(&record); err != nil {
			continue
		}
		var req ChangeRequest
		if err := json.Unmarshal(record, &req); err != nil || req.ID == "" {
			// A bad row must not fail the whole listing.
			continue
		}
		out = append(out, &req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return out, nil
}
