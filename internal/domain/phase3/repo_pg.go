package phase3

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hearcare/hearcare/internal/platform/db"
)

var ErrRegistrationNotFound = errors.New("phase 3 registration not found")

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
		INSERT INTO phase3_registrations
			(id, patient_id, registration_date, aftercare_site, notes, created_by)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		reg.ID, reg.PatientID, reg.RegistrationDate, reg.AftercareSite, reg.Notes, reg.CreatedBy)
	return err
}

func (r *repoPG) GetRegistration(ctx context.Context, id uuid.UUID) (*Registration, error) {
	var reg Registration
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, patient_id, registration_date, aftercare_site, notes,
		       created_by, created_at, updated_at
		FROM phase3_registrations WHERE id = $1`, id,
	).Scan(&reg.ID, &reg.PatientID, &reg.RegistrationDate, &reg.AftercareSite,
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
		SELECT id, patient_id, registration_date, aftercare_site, notes,
		       created_by, created_at, updated_at
		FROM phase3_registrations
		WHERE patient_id = $1
		ORDER BY registration_date DESC, created_at DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var regs []*Registration
	for rows.Next() {
		var reg Registration
		if err := rows.Scan(&reg.ID, &reg.PatientID, &reg.RegistrationDate, &reg.AftercareSite,
			&reg.Notes, &reg.CreatedBy, &reg.CreatedAt, &reg.UpdatedAt); err != nil {
			return nil, err
		}
		regs = append(regs, &reg)
	}
	return regs, nil
}

func (r *repoPG) CreateAssessment(ctx context.Context, a *AftercareAssessment) error {
	a.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO aftercare_assessments
			(id, patient_id, registration_id, visit_date, usage_code,
			 device_working, complaints, notes, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		a.ID, a.PatientID, a.RegistrationID, a.VisitDate, a.UsageCode,
		a.DeviceWorking, a.Complaints, a.Notes, a.CreatedBy)
	return err
}

func (r *repoPG) ListAssessments(ctx context.Context, patientID uuid.UUID) ([]*AftercareAssessment, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, patient_id, registration_id, visit_date, usage_code,
		       device_working, complaints, notes, created_by, created_at
		FROM aftercare_assessments WHERE patient_id = $1 ORDER BY visit_date DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*AftercareAssessment
	for rows.Next() {
		var a AftercareAssessment
		if err := rows.Scan(&a.ID, &a.PatientID, &a.RegistrationID, &a.VisitDate,
			&a.UsageCode, &a.DeviceWorking, &a.Complaints, &a.Notes, &a.CreatedBy, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &a)
	}
	return out, nil
}

func (r *repoPG) CreateBatteryDispense(ctx context.Context, d *BatteryDispense) error {
	d.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO battery_dispenses
			(id, patient_id, registration_id, dispense_date, item_code, packs, notes, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		d.ID, d.PatientID, d.RegistrationID, d.DispenseDate, d.ItemCode, d.Packs, d.Notes, d.CreatedBy)
	return err
}

func (r *repoPG) ListBatteryDispenses(ctx context.Context, patientID uuid.UUID) ([]*BatteryDispense, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, patient_id, registration_id, dispense_date, item_code, packs,
		       notes, created_by, created_at
		FROM battery_dispenses WHERE patient_id = $1 ORDER BY dispense_date DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*BatteryDispense
	for rows.Next() {
		var d BatteryDispense
		if err := rows.Scan(&d.ID, &d.PatientID, &d.RegistrationID, &d.DispenseDate,
			&d.ItemCode, &d.Packs, &d.Notes, &d.CreatedBy, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &d)
	}
	return out, nil
}

func (r *repoPG) CreateFinalQC(ctx context.Context, qc *FinalQC) error {
	qc.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO phase3_final_qcs
			(id, patient_id, registration_id, check_date, passed, issues, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		qc.ID, qc.PatientID, qc.RegistrationID, qc.CheckDate, qc.Passed, qc.Issues, qc.CreatedBy)
	return err
}

func (r *repoPG) ListFinalQCs(ctx context.Context, patientID uuid.UUID) ([]*FinalQC, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, patient_id, registration_id, check_date, passed, issues,
		       created_by, created_at
		FROM phase3_final_qcs WHERE patient_id = $1 ORDER BY check_date DESC`, patientID)
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
