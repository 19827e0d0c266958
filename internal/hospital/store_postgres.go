package hospital

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	id "birthregistry/pkg/domain"
	"birthregistry/pkg/platform/sentinel"
)

// PostgresStore persists hospital notifications in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const uniqueViolation = "23505"

func (s *PostgresStore) Save(ctx context.Context, n *Notification) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO hospital_notifications (
			hospital_id, child_name, gender, date_of_birth, time_of_birth,
			weight_kg, attending_doctor, hospital_name, hospital_reg_no, upload_date
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		n.HospitalID.String(), n.ChildName, n.Gender, n.DateOfBirth, n.TimeOfBirth,
		n.WeightKg, n.AttendingDoctor, n.HospitalName, n.HospitalRegNo, n.UploadDate,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("save hospital notification: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, hospitalID id.HospitalID) (*Notification, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT hospital_id, child_name, gender, date_of_birth, time_of_birth,
		       weight_kg, attending_doctor, hospital_name, hospital_reg_no, upload_date
		FROM hospital_notifications
		WHERE hospital_id = $1`,
		hospitalID.String(),
	)

	var n Notification
	var rawID string
	err := row.Scan(&rawID, &n.ChildName, &n.Gender, &n.DateOfBirth, &n.TimeOfBirth,
		&n.WeightKg, &n.AttendingDoctor, &n.HospitalName, &n.HospitalRegNo, &n.UploadDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find hospital notification: %w", err)
	}
	n.HospitalID = id.HospitalID(rawID)
	return &n, nil
}
