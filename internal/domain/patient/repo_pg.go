package patient

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hearcare/hearcare/internal/platform/db"
)

// ErrNotFound is returned when no patient matches.
var ErrNotFound = errors.New("patient not found")

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const patientCols = `id, shf_id, first_name, last_name, gender, date_of_birth, phone_number,
	guardian_name, location_id, city, status, date_of_death, last_active_date,
	archived, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	// shf_id comes from a database sequence so concurrent creates cannot
	// collide.
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO patients (id, shf_id, first_name, last_name, gender, date_of_birth,
			phone_number, guardian_name, location_id, city, status, last_active_date)
		VALUES ($1, 'SHF-' || lpad(nextval('shf_id_seq')::text, 6, '0'),
			$2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		RETURNING shf_id`,
		p.ID, p.FirstName, p.LastName, p.Gender, p.DateOfBirth,
		p.PhoneNumber, p.GuardianName, p.LocationID, p.City, p.Status,
	).Scan(&p.SHFID)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patients WHERE id = $1`, id))
}

func (r *repoPG) GetBySHFID(ctx context.Context, shfID string) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patients WHERE shf_id = $1`, shfID))
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE patients SET
			first_name=$2, last_name=$3, gender=$4, date_of_birth=$5, phone_number=$6,
			guardian_name=$7, location_id=$8, city=$9, status=$10, date_of_death=$11,
			last_active_date=NOW(), updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.FirstName, p.LastName, p.Gender, p.DateOfBirth, p.PhoneNumber,
		p.GuardianName, p.LocationID, p.City, p.Status, p.DateOfDeath,
	)
	return err
}

func (r *repoPG) SetArchived(ctx context.Context, id uuid.UUID, archived bool) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE patients SET archived = $2, updated_at = NOW() WHERE id = $1`, id, archived)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List applies the allow-listed filters. Conditions are assembled from
// fixed column expressions only.
func (r *repoPG) List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Patient, int, error) {
	where := []string{}
	args := []interface{}{}

	if !filter.IncludeArchived {
		where = append(where, "p.archived = false")
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where = append(where, fmt.Sprintf(
			"(p.first_name ILIKE $%d OR p.last_name ILIKE $%d OR p.shf_id ILIKE $%d)",
			len(args), len(args), len(args)))
	}
	if filter.Gender != "" {
		args = append(args, filter.Gender)
		where = append(where, fmt.Sprintf("p.gender = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("p.status = $%d", len(args)))
	}
	if filter.LocationID != nil {
		args = append(args, *filter.LocationID)
		where = append(where, fmt.Sprintf("p.location_id = $%d", len(args)))
	}
	if len(filter.ScopeLocationIDs) > 0 {
		args = append(args, filter.ScopeLocationIDs)
		where = append(where, fmt.Sprintf("p.location_id = ANY($%d)", len(args)))
	}
	if filter.Phase != nil {
		args = append(args, *filter.Phase)
		where = append(where, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM patient_phases pp WHERE pp.patient_id = p.id AND pp.phase_id = $%d)",
			len(args)))
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + joinAnd(where)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM patients p`+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM patients p%s ORDER BY p.created_at DESC LIMIT $%d OFFSET $%d`,
		qualify(patientCols), clause, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var patients []*Patient
	for rows.Next() {
		p, err := scanPatientRows(rows)
		if err != nil {
			return nil, 0, err
		}
		patients = append(patients, p)
	}
	return patients, total, nil
}

func (r *repoPG) ListArchiveEligible(ctx context.Context, inactivityYears int) ([]*Patient, error) {
	rows, err := r.conn(ctx).Query(ctx, fmt.Sprintf(`
		SELECT %s FROM patients p
		WHERE p.archived = false
		  AND (p.status = 'deceased'
		       OR p.date_of_death IS NOT NULL
		       OR p.last_active_date < NOW() - INTERVAL '%d years')`,
		qualify(patientCols), inactivityYears))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var patients []*Patient
	for rows.Next() {
		p, err := scanPatientRows(rows)
		if err != nil {
			return nil, err
		}
		patients = append(patients, p)
	}
	return patients, nil
}

func (r *repoPG) CreatePhase(ctx context.Context, ph *Phase) error {
	ph.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patient_phases (id, patient_id, phase_id, status, start_date)
		VALUES ($1,$2,$3,$4,NOW())`,
		ph.ID, ph.PatientID, ph.PhaseID, ph.Status,
	)
	return err
}

func (r *repoPG) GetPhase(ctx context.Context, patientID uuid.UUID, phaseID int) (*Phase, error) {
	var ph Phase
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, patient_id, phase_id, status, start_date, end_date, created_at
		FROM patient_phases WHERE patient_id = $1 AND phase_id = $2`,
		patientID, phaseID,
	).Scan(&ph.ID, &ph.PatientID, &ph.PhaseID, &ph.Status, &ph.StartDate, &ph.EndDate, &ph.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ph, nil
}

func (r *repoPG) ListPhases(ctx context.Context, patientID uuid.UUID) ([]*Phase, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, patient_id, phase_id, status, start_date, end_date, created_at
		FROM patient_phases WHERE patient_id = $1 ORDER BY phase_id`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var phases []*Phase
	for rows.Next() {
		var ph Phase
		if err := rows.Scan(&ph.ID, &ph.PatientID, &ph.PhaseID, &ph.Status,
			&ph.StartDate, &ph.EndDate, &ph.CreatedAt); err != nil {
			return nil, err
		}
		phases = append(phases, &ph)
	}
	return phases, nil
}

func (r *repoPG) UpdatePhaseStatus(ctx context.Context, patientID uuid.UUID, phaseID int, status string, setEnd bool) error {
	end := "NULL"
	if setEnd {
		end = "NOW()"
	}
	tag, err := r.conn(ctx).Exec(ctx, fmt.Sprintf(`
		UPDATE patient_phases SET status = $3, end_date = %s
		WHERE patient_id = $1 AND phase_id = $2`, end),
		patientID, phaseID, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("patient has no phase %d row", phaseID)
	}
	return nil
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.SHFID, &p.FirstName, &p.LastName, &p.Gender,
		&p.DateOfBirth, &p.PhoneNumber, &p.GuardianName, &p.LocationID, &p.City,
		&p.Status, &p.DateOfDeath, &p.LastActiveDate, &p.Archived, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanPatientRows(rows pgx.Rows) (*Patient, error) {
	var p Patient
	err := rows.Scan(&p.ID, &p.SHFID, &p.FirstName, &p.LastName, &p.Gender,
		&p.DateOfBirth, &p.PhoneNumber, &p.GuardianName, &p.LocationID, &p.City,
		&p.Status, &p.DateOfDeath, &p.LastActiveDate, &p.Archived, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func joinAnd(conds []string) string {
	return strings.Join(conds, " AND ")
}

// qualify prefixes each column in the shared column list with the patients
// alias used in filtered queries.
func qualify(cols string) string {
	parts := strings.Split(cols, ",")
	for i, c := range parts {
		parts[i] = "p." + strings.TrimSpace(c)
	}
	return strings.Join(parts, ", ")
}
