package documents

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hearcare/hearcare/internal/platform/db"
)

var ErrNotFound = errors.New("document not found")

const documentCols = `id, schedule_id, patient_id, file_name, stored_name,
	content_type, size_bytes, uploaded_by, created_at`

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

func (r *repoPG) Insert(ctx context.Context, d *Document) error {
	d.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO documents (id, schedule_id, patient_id, file_name, stored_name,
			content_type, size_bytes, uploaded_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		d.ID, d.ScheduleID, d.PatientID, d.FileName, d.StoredName,
		d.ContentType, d.SizeBytes, d.UploadedBy)
	return err
}

func scanDocument(row pgx.Row) (*Document, error) {
	var d Document
	err := row.Scan(&d.ID, &d.ScheduleID, &d.PatientID, &d.FileName, &d.StoredName,
		&d.ContentType, &d.SizeBytes, &d.UploadedBy, &d.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Document, error) {
	return scanDocument(r.conn(ctx).QueryRow(ctx,
		`SELECT `+documentCols+` FROM documents WHERE id = $1`, id))
}

func (r *repoPG) list(ctx context.Context, query string, arg interface{}) ([]*Document, error) {
	rows, err := r.conn(ctx).Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.ScheduleID, &d.PatientID, &d.FileName,
			&d.StoredName, &d.ContentType, &d.SizeBytes, &d.UploadedBy, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &d)
	}
	return out, rows.Err()
}

func (r *repoPG) ListBySchedule(ctx context.Context, scheduleID uuid.UUID) ([]*Document, error) {
	return r.list(ctx,
		`SELECT `+documentCols+` FROM documents WHERE schedule_id = $1 ORDER BY created_at DESC`,
		scheduleID)
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Document, error) {
	return r.list(ctx,
		`SELECT `+documentCols+` FROM documents WHERE patient_id = $1 ORDER BY created_at DESC`,
		patientID)
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
