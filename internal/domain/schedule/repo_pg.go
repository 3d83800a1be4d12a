package schedule

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hearcare/hearcare/internal/platform/db"
)

var ErrNotFound = errors.New("schedule not found")

const scheduleCols = `id, title, location_id, phase, start_date, end_date,
	notes, created_by, created_at, updated_at`

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

func (r *repoPG) Create(ctx context.Context, s *Schedule) error {
	s.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO schedules (id, title, location_id, phase, start_date, end_date, notes, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		s.ID, s.Title, s.LocationID, s.Phase, s.StartDate, s.EndDate, s.Notes, s.CreatedBy)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Schedule, error) {
	var s Schedule
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT `+scheduleCols+` FROM schedules WHERE id = $1`, id).Scan(
		&s.ID, &s.Title, &s.LocationID, &s.Phase, &s.StartDate, &s.EndDate,
		&s.Notes, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Schedule, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM schedules`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+scheduleCols+` FROM schedules ORDER BY start_date DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Schedule
	for rows.Next() {
		var s Schedule
		if err := rows.Scan(&s.ID, &s.Title, &s.LocationID, &s.Phase, &s.StartDate,
			&s.EndDate, &s.Notes, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, &s)
	}
	return out, total, rows.Err()
}

func (r *repoPG) Update(ctx context.Context, s *Schedule) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE schedules
		SET title=$2, location_id=$3, phase=$4, start_date=$5, end_date=$6, notes=$7,
		    updated_at=NOW()
		WHERE id=$1`,
		s.ID, s.Title, s.LocationID, s.Phase, s.StartDate, s.EndDate, s.Notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM schedules WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) ListRecipients(ctx context.Context, locationID uuid.UUID) ([]*Recipient, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, TRIM(first_name || ' ' || last_name), COALESCE(phone_number, '')
		FROM patients
		WHERE location_id = $1 AND NOT archived AND status = 'active'
		ORDER BY shf_id`, locationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Recipient
	for rows.Next() {
		var rec Recipient
		if err := rows.Scan(&rec.PatientID, &rec.FullName, &rec.Phone); err != nil {
			return nil, err
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}
