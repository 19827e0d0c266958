package decisionlog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	id "birthregistry/pkg/domain"
)

// PostgresStore persists admin actions in PostgreSQL.
//
// Expected schema:
//
//	CREATE TABLE admin_actions (
//	    seq         BIGSERIAL PRIMARY KEY,
//	    id          TEXT NOT NULL,
//	    reg_number  TEXT NOT NULL,
//	    action      TEXT NOT NULL,
//	    reason      TEXT NOT NULL DEFAULT '',
//	    action_date TIMESTAMPTZ NOT NULL,
//	    admin_id    TEXT NOT NULL
//	);
//	CREATE INDEX admin_actions_reg_number ON admin_actions (reg_number, seq);
//
// seq preserves insertion order for the reconciler's tie-break.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Append(ctx context.Context, action AdminAction) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO admin_actions (id, reg_number, action, reason, action_date, admin_id)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		action.ID, action.RegistrationNumber.String(), string(action.Action),
		action.Reason, action.ActionDate, action.AdminID,
	)
	if err != nil {
		return fmt.Errorf("append admin action: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByRegistration(ctx context.Context, regNumber id.RegistrationNumber) ([]AdminAction, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, reg_number, action, reason, action_date, admin_id
		FROM admin_actions
		WHERE reg_number = $1
		ORDER BY seq ASC`,
		regNumber.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("list admin actions: %w", err)
	}
	defer rows.Close()

	var out []AdminAction
	for rows.Next() {
		var a AdminAction
		var rawReg, rawAction string
		if err := rows.Scan(&a.ID, &rawReg, &rawAction, &a.Reason, &a.ActionDate, &a.AdminID); err != nil {
			return nil, fmt.Errorf("scan admin action: %w", err)
		}
		a.RegistrationNumber = id.RegistrationNumber(rawReg)
		a.Action = Action(rawAction)
		out = append(out, a)
	}
	return out, rows.Err()
}
