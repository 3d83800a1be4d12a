package phase2

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hearcare/hearcare/internal/platform/db"
)

var ErrRegistrationNotFound = errors.New("phase 2 registration not found")

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

func (r *repoPG) CreateRegistration(ctx context.Context, reg *Registration) error {
	reg.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO phase2_registrations
			(id, patient_id, registration_date, fitting_site, notes, created_by)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		reg.ID, reg.PatientID, reg.RegistrationDate, reg.FittingSite, reg.Notes, reg.CreatedBy)
	return err
}

func (r *repoPG) GetRegistration(ctx context.Context, id uuid.UUID) (*Registration, error) {
	var reg Registration
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, patient_id, registration_date, fitting_site, notes,
		       created_by, created_at, updated_at
		FROM phase2_registrations WHERE id = $1`, id,
	).Scan(&reg.ID, &reg.PatientID, &reg.RegistrationDate, &reg.FittingSite,
		&reg.Notes, &reg.CreatedBy, &reg.CreatedAt, &reg.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRegistrationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *repoPG) ListRegistrations(ctx context.Context, patientID uuid.UUID) ([]*Registration, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, patient_id, registration_date, fitting_site, notes,
		       created_by, created_at, updated_at
		FROM phase2_registrations
		WHERE patient_id = $1
		ORDER BY registration_date DESC, created_at DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var regs []*Registration
	for rows.Next() {
		var reg Registration
		if err := rows.Scan(&reg.ID, &reg.PatientID, &reg.RegistrationDate, &reg.FittingSite,
			&reg.Notes, &reg.CreatedBy, &reg.CreatedAt, &reg.UpdatedAt); err != nil {
			return nil, err
		}
		regs = append(regs, &reg)
	}
	return regs, nil
}

func (r *repoPG) CreateFittingTableRows(ctx context.Context, rows []*FittingTableRow) error {
	for _, row := range rows {
		row.ID = uuid.New()
		if _, err := r.conn(ctx).Exec(ctx, `
			INSERT INTO fitting_table_rows
				(id, patient_id, registration_id, ear, frequency_hz, threshold_db, created_by)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			row.ID, row.PatientID, row.RegistrationID, row.Ear,
			row.FrequencyHz, row.ThresholdDB, row.CreatedBy); err != nil {
			return err
		}
	}
	return nil
}

func (r *repoPG) ListFittingTableRows(ctx context.Context, patientID uuid.UUID) ([]*FittingTableRow, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, patient_id, registration_id, ear, frequency_hz, threshold_db,
		       created_by, created_at
		FROM fitting_table_rows
		WHERE patient_id = $1 ORDER BY ear, frequency_hz`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*FittingTableRow
	for rows.Next() {
		var row FittingTableRow
		if err := rows.Scan(&row.ID, &row.PatientID, &row.RegistrationID, &row.Ear,
			&row.FrequencyHz, &row.ThresholdDB, &row.CreatedBy, &row.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &row)
	}
	return out, nil
}

func (r *repoPG) CreateFitting(ctx context.Context, f *Fitting) error {
	f.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO fittings
			(id, patient_id, registration_id, fitting_date, fitted_code,
			 device_item_code, battery_item_code, battery_packs, notes, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		f.ID, f.PatientID, f.RegistrationID, f.FittingDate, f.FittedCode,
		f.DeviceItemCode, f.BatteryItemCode, f.BatteryPacks, f.Notes, f.CreatedBy)
	return err
}

func (r *repoPG) ListFittings(ctx context.Context, patientID uuid.UUID) ([]*Fitting, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, patient_id, registration_id, fitting_date, fitted_code,
		       device_item_code, battery_item_code, battery_packs, notes,
		       created_by, created_at
		FROM fittings WHERE patient_id = $1 ORDER BY fitting_date DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Fitting
	for rows.Next() {
		var f Fitting
		if err := rows.Scan(&f.ID, &f.PatientID, &f.RegistrationID, &f.FittingDate,
			&f.FittedCode, &f.DeviceItemCode, &f.BatteryItemCode, &f.BatteryPacks,
			&f.Notes, &f.CreatedBy, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &f)
	}
	return out, nil
}

func (r *repoPG) CreateCounseling(ctx context.Context, cs *Counseling) error {
	cs.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO counselings
			(id, patient_id, registration_id, session_date, topics, notes, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		cs.ID, cs.PatientID, cs.RegistrationID, cs.SessionDate, cs.Topics, cs.Notes, cs.CreatedBy)
	return err
}

func (r *repoPG) ListCounselings(ctx context.Context, patientID uuid.UUID) ([]*Counseling, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, patient_id, registration_id, session_date, topics, notes,
		       created_by, created_at
		FROM counselings WHERE patient_id = $1 ORDER BY session_date DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Counseling
	for rows.Next() {
		var cs Counseling
		if err := rows.Scan(&cs.ID, &cs.PatientID, &cs.RegistrationID, &cs.SessionDate,
			&cs.Topics, &cs.Notes, &cs.CreatedBy, &cs.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &cs)
	}
	return out, nil
}

func (r *repoPG) CreateFinalQC(ctx context.Context, qc *FinalQC) error {
	qc.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO phase2_final_qcs
			(id, patient_id, registration_id, check_date, passed, issues, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		qc.ID, qc.PatientID, qc.RegistrationID, qc.CheckDate, qc.Passed, qc.Issues, qc.CreatedBy)
	return err
}

func (r *repoPG) ListFinalQCs(ctx context.Context, patientID uuid.UUID) ([]*FinalQC, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, patient_id, registration_id, check_date, passed, issues,
		       created_by, created_at
		FROM phase2_final_qcs WHERE patient_id = $1 ORDER BY check_date DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*FinalQC
	for rows.Next() {
		var qc FinalQC
		if err := rows.Scan(&qc.ID, &qc.PatientID, &qc.RegistrationID, &qc.CheckDate,
			&qc.Passed, &qc.Issues, &qc.CreatedBy, &qc.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &qc)
	}
	return out, nil
}
