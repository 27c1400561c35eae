package override

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresStore persists overrides in the rule_overrides table. The primary
// key on (case_id, rule_id) backs the upsert contract.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore constructs a PostgreSQL-backed override store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Upsert(ctx context.Context, ovr Override) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rule_overrides (case_id, rule_id, override_id, reason, overridden_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (case_id, rule_id) DO UPDATE SET
			override_id   = EXCLUDED.override_id,
			reason        = EXCLUDED.reason,
			overridden_by = EXCLUDED.overridden_by,
			created_at    = EXCLUDED.created_at`,
		ovr.CaseID, ovr.RuleID, ovr.ID, ovr.Reason, ovr.OverriddenBy, ovr.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("save override: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByCase(ctx context.Context, caseID string) ([]Override, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT override_id, case_id, rule_id, reason, overridden_by, created_at
		FROM rule_overrides
		WHERE case_id = $1
		ORDER BY created_at`,
		caseID,
	)
	if err != nil {
		return nil, fmt.Errorf("list overrides: %w", err)
	}
	defer rows.Close()

	var out []Override
	for rows.Next() {
		var ovr Override
		if err := rows.Scan(&ovr.ID, &ovr.CaseID, &ovr.RuleID, &ovr.Reason, &ovr.OverriddenBy, &ovr.Timestamp); err != nil {
			// A bad row must not fail the whole read.
			continue
		}
		out = append(out, ovr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list overrides: %w", err)
	}
	return out, nil
}
