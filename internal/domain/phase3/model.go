package phase3

import (
	"time"

	"github.com/google/uuid"
)

// Registration maps to phase3_registrations, opened when a patient enters
// aftercare.
type Registration struct {
	ID               uuid.UUID `db:"id" json:"id"`
	PatientID        uuid.UUID `db:"patient_id" json:"patient_id"`
	RegistrationDate time.Time `db:"registration_date" json:"registration_date"`
	AftercareSite    string    `db:"aftercare_site" json:"aftercare_site"`
	Notes            *string   `db:"notes" json:"notes,omitempty"`
	CreatedBy        string    `db:"created_by" json:"created_by"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// AftercareAssessment records a follow-up visit. UsageCode is a packed ear
// code for which devices the patient still wears.
type AftercareAssessment struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	PatientID      uuid.UUID  `db:"patient_id" json:"patient_id"`
	RegistrationID *uuid.UUID `db:"registration_id" json:"registration_id,omitempty"`
	VisitDate      time.Time  `db:"visit_date" json:"visit_date"`
	UsageCode      int        `db:"usage_code" json:"usage_code"`
	DeviceWorking  bool       `db:"device_working" json:"device_working"`
	Complaints     *string    `db:"complaints" json:"complaints,omitempty"`
	Notes          *string    `db:"notes" json:"notes,omitempty"`
	CreatedBy      string     `db:"created_by" json:"created_by"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}

// BatteryDispense records battery packs handed out during aftercare;
// saving one deducts the packs from inventory in the same transaction.
type BatteryDispense struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	PatientID      uuid.UUID  `db:"patient_id" json:"patient_id"`
	RegistrationID *uuid.UUID `db:"registration_id" json:"registration_id,omitempty"`
	DispenseDate   time.Time  `db:"dispense_date" json:"dispense_date"`
	ItemCode       string     `db:"item_code" json:"item_code"`
	Packs          int        `db:"packs" json:"packs"`
	Notes          *string    `db:"notes" json:"notes,omitempty"`
	CreatedBy      string     `db:"created_by" json:"created_by"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}

// FinalQC closes the aftercare phase.
type FinalQC struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	PatientID      uuid.UUID  `db:"patient_id" json:"patient_id"`
	RegistrationID *uuid.UUID `db:"registration_id" json:"registration_id,omitempty"`
	CheckDate      time.Time  `db:"check_date" json:"check_date"`
	Passed         bool       `db:"passed" json:"passed"`
	Issues         *string    `db:"issues" json:"issues,omitempty"`
	CreatedBy      string     `db:"created_by" json:"created_by"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}
