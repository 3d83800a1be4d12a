package phase2

import (
	"time"

	"github.com/google/uuid"
)

// Registration maps to phase2_registrations, opened when a patient enters
// the fitting phase.
type Registration struct {
	ID               uuid.UUID `db:"id" json:"id"`
	PatientID        uuid.UUID `db:"patient_id" json:"patient_id"`
	RegistrationDate time.Time `db:"registration_date" json:"registration_date"`
	FittingSite      string    `db:"fitting_site" json:"fitting_site"`
	Notes            *string   `db:"notes" json:"notes,omitempty"`
	CreatedBy        string    `db:"created_by" json:"created_by"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// FittingTableRow is one audiogram measurement taken during fitting, keyed
// by ear and frequency.
type FittingTableRow struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	PatientID      uuid.UUID  `db:"patient_id" json:"patient_id"`
	RegistrationID *uuid.UUID `db:"registration_id" json:"registration_id,omitempty"`
	Ear            string     `db:"ear" json:"ear"`
	FrequencyHz    int        `db:"frequency_hz" json:"frequency_hz"`
	ThresholdDB    int        `db:"threshold_db" json:"threshold_db"`
	CreatedBy      string     `db:"created_by" json:"created_by"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}

// Fitting records the hearing aids dispensed. FittedCode is a packed ear
// code; saving a fitting deducts the device per fitted ear and the initial
// battery pack from inventory inside the same transaction.
type Fitting struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	PatientID       uuid.UUID  `db:"patient_id" json:"patient_id"`
	RegistrationID  *uuid.UUID `db:"registration_id" json:"registration_id,omitempty"`
	FittingDate     time.Time  `db:"fitting_date" json:"fitting_date"`
	FittedCode      int        `db:"fitted_code" json:"fitted_code"`
	DeviceItemCode  string     `db:"device_item_code" json:"device_item_code"`
	BatteryItemCode string     `db:"battery_item_code" json:"battery_item_code"`
	BatteryPacks    int        `db:"battery_packs" json:"battery_packs"`
	Notes           *string    `db:"notes" json:"notes,omitempty"`
	CreatedBy       string     `db:"created_by" json:"created_by"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
}

// Counseling records the device-care session held after fitting.
type Counseling struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	PatientID      uuid.UUID  `db:"patient_id" json:"patient_id"`
	RegistrationID *uuid.UUID `db:"registration_id" json:"registration_id,omitempty"`
	SessionDate    time.Time  `db:"session_date" json:"session_date"`
	Topics         *string    `db:"topics" json:"topics,omitempty"`
	Notes          *string    `db:"notes" json:"notes,omitempty"`
	CreatedBy      string     `db:"created_by" json:"created_by"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}

// FinalQC is the quality check closing the fitting phase.
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
