package patient

import (
	"time"

	"github.com/google/uuid"
)

// Phase statuses. A phase N+1 row may only be created once phase N is
// Completed.
const (
	StatusInProgress = "In Progress"
	StatusCompleted  = "Completed"
	StatusOngoing    = "Ongoing"
	StatusPending    = "Pending"
)

var validStatuses = map[string]bool{
	StatusInProgress: true,
	StatusCompleted:  true,
	StatusOngoing:    true,
	StatusPending:    true,
}

// Patient maps to the patients table. Patients are never hard-deleted;
// the archived flag hides them from active listings.
type Patient struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	SHFID          string     `db:"shf_id" json:"shf_id"`
	FirstName      string     `db:"first_name" json:"first_name"`
	LastName       string     `db:"last_name" json:"last_name"`
	Gender         string     `db:"gender" json:"gender"`
	DateOfBirth    *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	PhoneNumber    *string    `db:"phone_number" json:"phone_number,omitempty"`
	GuardianName   *string    `db:"guardian_name" json:"guardian_name,omitempty"`
	LocationID     *uuid.UUID `db:"location_id" json:"location_id,omitempty"`
	City           *string    `db:"city" json:"city,omitempty"`
	Status         string     `db:"status" json:"status"`
	DateOfDeath    *time.Time `db:"date_of_death" json:"date_of_death,omitempty"`
	LastActiveDate *time.Time `db:"last_active_date" json:"last_active_date,omitempty"`
	Archived       bool       `db:"archived" json:"archived"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// Phase maps to the patient_phases table, one row per phase a patient has
// entered.
type Phase struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	PatientID uuid.UUID  `db:"patient_id" json:"patient_id"`
	PhaseID   int        `db:"phase_id" json:"phase_id"`
	Status    string     `db:"status" json:"status"`
	StartDate time.Time  `db:"start_date" json:"start_date"`
	EndDate   *time.Time `db:"end_date" json:"end_date,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// ListFilter is the allow-listed set of patient search filters. Filters
// map to fixed columns; request keys never reach SQL text.
type ListFilter struct {
	Search          string     // matches first/last name or shf_id
	Gender          string
	Status          string
	LocationID      *uuid.UUID
	Phase           *int       // patients currently in this phase
	IncludeArchived bool

	// ScopeLocationIDs comes from the requester's token, never from the
	// query string. Non-empty means the caller may only see patients at
	// these locations.
	ScopeLocationIDs []uuid.UUID
}
