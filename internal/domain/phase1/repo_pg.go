package phase1

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hearcare/hearcare/internal/platform/db"
)

// ErrRegistrationNotFound is returned when no registration matches.
var ErrRegistrationNotFound = errors.New("phase 1 registration not found")

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
		INSERT INTO phase1_registrations
			(id, patient_id, registration_date, screening_site, referral_source, notes, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		reg.ID, reg.PatientID, reg.RegistrationDate, reg.ScreeningSite,
		reg.ReferralSource, reg.Notes, reg.CreatedBy)
	return err
}

func (r *repoPG) GetRegistration(ctx context.Context, id uuid.UUID) (*Registration, error) {
	var reg Registration
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, patient_id, registration_date, screening_site, referral_source,
		       notes, created_by, created_at, updated_at
		FROM phase1_registrations WHERE id = $1`, id,
	).Scan(&reg.ID, &reg.PatientID, &reg.RegistrationDate, &reg.ScreeningSite,
		&reg.ReferralSource, &reg.Notes, &reg.CreatedBy, &reg.CreatedAt, &reg.UpdatedAt)
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
		SELECT id, patient_id, registration_date, screening_site, referral_source,
		       notes, created_by, created_at, updated_at
		FROM phase1_registrations
		WHERE patient_id = $1
		ORDER BY registration_date DESC, created_at DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var regs []*Registration
	for rows.Next() {
		var reg Registration
		if err := rows.Scan(&reg.ID, &reg.PatientID, &reg.RegistrationDate, &reg.ScreeningSite,
			&reg.ReferralSource, &reg.Notes, &reg.CreatedBy, &reg.CreatedAt, &reg.UpdatedAt); err != nil {
			return nil, err
		}
		regs = append(regs, &reg)
	}
	return regs, nil
}

func (r *repoPG) UpdateRegistration(ctx context.Context, reg *Registration) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE phase1_registrations SET
			registration_date=$2, screening_site=$3, referral_source=$4, notes=$5,
			updated_at=NOW()
		WHERE id = $1`,
		reg.ID, reg.RegistrationDate, reg.ScreeningSite, reg.ReferralSource, reg.Notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRegistrationNotFound
	}
	return nil
}

func (r *repoPG) CreateEarScreening(ctx context.Context, s *EarScreening) error {
	s.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO ear_screenings
			(id, patient_id, registration_id, screening_date, wax_code,
			 infection_code, perforation_code, notes, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		s.ID, s.PatientID, s.RegistrationID, s.ScreeningDate, s.WaxCode,
		s.InfectionCode, s.PerforationCode, s.Notes, s.CreatedBy)
	return err
}

func (r *repoPG) ListEarScreenings(ctx context.Context, patientID uuid.UUID) ([]*EarScreening, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, patient_id, registration_id, screening_date, wax_code,
		       infection_code, perforation_code, notes, created_by, created_at
		FROM ear_screenings WHERE patient_id = $1 ORDER BY screening_date DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*EarScreening
	for rows.Next() {
		var s EarScreening
		if err := rows.Scan(&s.ID, &s.PatientID, &s.RegistrationID, &s.ScreeningDate,
			&s.WaxCode, &s.InfectionCode, &s.PerforationCode, &s.Notes, &s.CreatedBy, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &s)
	}
	return out, nil
}

func (r *repoPG) CreateHearingScreening(ctx context.Context, s *HearingScreening) error {
	s.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO hearing_screenings
			(id, patient_id, registration_id, test_date, left_result, right_result,
			 left_threshold_db, right_threshold_db, notes, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		s.ID, s.PatientID, s.RegistrationID, s.TestDate, s.LeftResult, s.RightResult,
		s.LeftThresholdDB, s.RightThresholdDB, s.Notes, s.CreatedBy)
	return err
}

func (r *repoPG) ListHearingScreenings(ctx context.Context, patientID uuid.UUID) ([]*HearingScreening, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, patient_id, registration_id, test_date, left_result, right_result,
		       left_threshold_db, right_threshold_db, notes, created_by, created_at
		FROM hearing_screenings WHERE patient_id = $1 ORDER BY test_date DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*HearingScreening
	for rows.Next() {
		var s HearingScreening
		if err := rows.Scan(&s.ID, &s.PatientID, &s.RegistrationID, &s.TestDate,
			&s.LeftResult, &s.RightResult, &s.LeftThresholdDB, &s.RightThresholdDB,
			&s.Notes, &s.CreatedBy, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &s)
	}
	return out, nil
}

func (r *repoPG) CreateEarImpression(ctx context.Context, imp *EarImpression) error {
	imp.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO ear_impressions
			(id, patient_id, registration_id, impression_date, impression_code,
			 material_item_code, notes, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		imp.ID, imp.PatientID, imp.RegistrationID, imp.ImpressionDate,
		imp.ImpressionCode, imp.MaterialItemCode, imp.Notes, imp.CreatedBy)
	return err
}

func (r *repoPG) ListEarImpressions(ctx context.Context, patientID uuid.UUID) ([]*EarImpression, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, patient_id, registration_id, impression_date, impression_code,
		       material_item_code, notes, created_by, created_at
		FROM ear_impressions WHERE patient_id = $1 ORDER BY impression_date DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*EarImpression
	for rows.Next() {
		var imp EarImpression
		if err := rows.Scan(&imp.ID, &imp.PatientID, &imp.RegistrationID, &imp.ImpressionDate,
			&imp.ImpressionCode, &imp.MaterialItemCode, &imp.Notes, &imp.CreatedBy, &imp.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &imp)
	}
	return out, nil
}
