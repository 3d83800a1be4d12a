package archival

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hearcare/hearcare/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

func (r *repoPG) Insert(ctx context.Context, a *Archive) error {
	a.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patient_archives (id, patient_id, shf_id, reason, snapshot, summary, archived_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		a.ID, a.PatientID, a.SHFID, a.Reason, a.Snapshot, a.Summary, a.ArchivedBy)
	return err
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Archive, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, patient_id, shf_id, reason, snapshot, summary, archived_by, archived_at
		FROM patient_archives WHERE patient_id = $1 ORDER BY archived_at DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Archive
	for rows.Next() {
		var a Archive
		if err := rows.Scan(&a.ID, &a.PatientID, &a.SHFID, &a.Reason, &a.Snapshot,
			&a.Summary, &a.ArchivedBy, &a.ArchivedAt); err != nil {
			return nil, err
		}
		out = append(out, &a)
	}
	return out, nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Archive, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patient_archives`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, patient_id, shf_id, reason, snapshot, summary, archived_by, archived_at
		FROM patient_archives ORDER BY archived_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Archive
	for rows.Next() {
		var a Archive
		if err := rows.Scan(&a.ID, &a.PatientID, &a.SHFID, &a.Reason, &a.Snapshot,
			&a.Summary, &a.ArchivedBy, &a.ArchivedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, &a)
	}
	return out, total, nil
}
