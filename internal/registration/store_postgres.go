package registration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	id "birthregistry/pkg/domain"
	"birthregistry/pkg/platform/sentinel"
)

// PostgresStore persists parent registrations in PostgreSQL.
//
// The record itself is stored as a JSONB document (writes are whole-record
// replaces by contract); reg_number, hospital_id, status, and
// submission_date are lifted into columns for keys and filters.
//
// Expected schema:
//
//	CREATE TABLE parent_registrations (
//	    reg_number      TEXT PRIMARY KEY,
//	    hospital_id     TEXT NOT NULL,
//	    status          TEXT NOT NULL,
//	    submission_date TIMESTAMPTZ NOT NULL,
//	    record          JSONB NOT NULL
//	);
//	CREATE UNIQUE INDEX parent_registrations_hospital_claim
//	    ON parent_registrations (hospital_id) WHERE status <> 'rejected';
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const uniqueViolation = "23505"

func (s *PostgresStore) Save(ctx context.Context, r *ParentRegistration) error {
	record, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal registration: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO parent_registrations (reg_number, hospital_id, status, submission_date, record)
		VALUES ($1, $2, $3, $4, $5)`,
		r.RegistrationNumber.String(), r.HospitalData.HospitalID.String(),
		string(r.Status), r.SubmissionDate, record,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("save registration: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByNumber(ctx context.Context, regNumber id.RegistrationNumber) (*ParentRegistration, error) {
	var record []byte
	err := s.pool.QueryRow(ctx,
		`SELECT record FROM parent_registrations WHERE reg_number = $1`,
		regNumber.String(),
	).Scan(&record)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find registration: %w", err)
	}
	return unmarshalRegistration(record)
}

func (s *PostgresStore) List(ctx context.Context, filter Filter) ([]*ParentRegistration, error) {
	query := `SELECT record FROM parent_registrations`
	args := []any{}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, st := range filter.Statuses {
			statuses[i] = string(st)
		}
		query += ` WHERE status = ANY($1)`
		args = append(args, statuses)
	}
	query += ` ORDER BY submission_date ASC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var out []*ParentRegistration
	for rows.Next() {
		var record []byte
		if err := rows.Scan(&record); err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		r, err := unmarshalRegistration(record)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresStore) HospitalIDClaimed(ctx context.Context, hospitalID id.HospitalID) (bool, error) {
	var claimed bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM parent_registrations
			WHERE hospital_id = $1 AND status <> 'rejected'
		)`,
		hospitalID.String(),
	).Scan(&claimed)
	if err != nil {
		return false, fmt.Errorf("check hospital claim: %w", err)
	}
	return claimed, nil
}

// FindByHospitalID relies on the partial unique index: at most one
// non-rejected registration references a hospital ID.
func (s *PostgresStore) FindByHospitalID(ctx context.Context, hospitalID id.HospitalID) (*ParentRegistration, error) {
	var record []byte
	err := s.pool.QueryRow(ctx, `
		SELECT record FROM parent_registrations
		WHERE hospital_id = $1 AND status <> 'rejected'`,
		hospitalID.String(),
	).Scan(&record)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find registration by hospital: %w", err)
	}
	return unmarshalRegistration(record)
}

func (s *PostgresStore) Execute(ctx context.Context, regNumber id.RegistrationNumber,
	validate func(*ParentRegistration) error,
	mutate func(*ParentRegistration)) (*ParentRegistration, error) {

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var record []byte
	err = tx.QueryRow(ctx,
		`SELECT record FROM parent_registrations WHERE reg_number = $1 FOR UPDATE`,
		regNumber.String(),
	).Scan(&record)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("lock registration: %w", err)
	}

	r, err := unmarshalRegistration(record)
	if err != nil {
		return nil, err
	}
	if err := validate(r); err != nil {
		return nil, err
	}
	mutate(r)

	updated, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshal registration: %w", err)
	}
	_, err = tx.Exec(ctx, `
		UPDATE parent_registrations SET status = $2, record = $3 WHERE reg_number = $1`,
		r.RegistrationNumber.String(), string(r.Status), updated,
	)
	if err != nil {
		return nil, fmt.Errorf("update registration: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return r, nil
}

func unmarshalRegistration(record []byte) (*ParentRegistration, error) {
	var r ParentRegistration
	if err := json.Unmarshal(record, &r); err != nil {
		return nil, fmt.Errorf("unmarshal registration: %w", err)
	}
	return &r, nil
}
