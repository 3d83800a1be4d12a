// Package registration resolves the active registration record a phase
// sub-record should attach to. Resolution is by latest registration date;
// a patient revisiting a phase gets new sub-records attached to the most
// recent registration.
package registration

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hearcare/hearcare/internal/platform/db"
)

// phaseTables is the fixed allow-list of registration tables; phase numbers
// never reach SQL text from user input.
var phaseTables = map[int]string{
	1: "phase1_registrations",
	2: "phase2_registrations",
	3: "phase3_registrations",
}

// ErrUnknownPhase is returned for phase numbers outside 1..3.
var ErrUnknownPhase = errors.New("unknown phase")

type Resolver struct {
	conn func(ctx context.Context) db.Querier
}

func NewResolver(pool *pgxpool.Pool) *Resolver {
	return &Resolver{conn: func(ctx context.Context) db.Querier {
		return db.Conn(ctx, pool)
	}}
}

// Resolve returns the registration id sub-records of the given phase should
// link to. A non-nil providedID is trusted and returned unchanged. Otherwise
// the most recent registration for the patient wins; nil (with no error)
// means the patient has no registration in that phase and the sub-record is
// stored unlinked.
func (r *Resolver) Resolve(ctx context.Context, phase int, patientID uuid.UUID, providedID *uuid.UUID) (*uuid.UUID, error) {
	if providedID != nil && *providedID != uuid.Nil {
		return providedID, nil
	}

	table, ok := phaseTables[phase]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPhase, phase)
	}

	var id uuid.UUID
	err := r.conn(ctx).QueryRow(ctx, fmt.Sprintf(`
		SELECT id FROM %s
		WHERE patient_id = $1
		ORDER BY registration_date DESC, created_at DESC
		LIMIT 1`, table), patientID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve phase %d registration: %w", phase, err)
	}
	return &id, nil
}
