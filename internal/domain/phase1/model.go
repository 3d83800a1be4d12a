package phase1

import (
	"time"

	"github.com/google/uuid"
)

// Registration maps to phase1_registrations, the intake record opened when
// a patient enters the screening programme. A patient may hold several
// registrations across campaigns; sub-records attach to the resolved one.
type Registration struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	PatientID        uuid.UUID  `db:"patient_id" json:"patient_id"`
	RegistrationDate time.Time  `db:"registration_date" json:"registration_date"`
	ScreeningSite    string     `db:"screening_site" json:"screening_site"`
	ReferralSource   *string    `db:"referral_source" json:"referral_source,omitempty"`
	Notes            *string    `db:"notes" json:"notes,omitempty"`
	CreatedBy        string     `db:"created_by" json:"created_by"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// EarScreening is one otoscopy pass; a registration accumulates one row per
// visit. The *Code fields are packed ear codes (0 none, 1 left, 2 right,
// 3 both).
type EarScreening struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	PatientID      uuid.UUID  `db:"patient_id" json:"patient_id"`
	RegistrationID *uuid.UUID `db:"registration_id" json:"registration_id,omitempty"`
	ScreeningDate  time.Time  `db:"screening_date" json:"screening_date"`
	WaxCode        int        `db:"wax_code" json:"wax_code"`
	InfectionCode  int        `db:"infection_code" json:"infection_code"`
	PerforationCode int       `db:"perforation_code" json:"perforation_code"`
	Notes          *string    `db:"notes" json:"notes,omitempty"`
	CreatedBy      string     `db:"created_by" json:"created_by"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}

// HearingScreening records the pass/refer outcome per ear.
type HearingScreening struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	PatientID      uuid.UUID  `db:"patient_id" json:"patient_id"`
	RegistrationID *uuid.UUID `db:"registration_id" json:"registration_id,omitempty"`
	TestDate       time.Time  `db:"test_date" json:"test_date"`
	LeftResult     string     `db:"left_result" json:"left_result"`
	RightResult    string     `db:"right_result" json:"right_result"`
	LeftThresholdDB  *int     `db:"left_threshold_db" json:"left_threshold_db,omitempty"`
	RightThresholdDB *int     `db:"right_threshold_db" json:"right_threshold_db,omitempty"`
	Notes          *string    `db:"notes" json:"notes,omitempty"`
	CreatedBy      string     `db:"created_by" json:"created_by"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}

// EarImpression records impressions taken for mould manufacture.
// ImpressionCode is a packed ear code; saving one consumes impression
// material from inventory, one unit per ear.
type EarImpression struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	PatientID      uuid.UUID  `db:"patient_id" json:"patient_id"`
	RegistrationID *uuid.UUID `db:"registration_id" json:"registration_id,omitempty"`
	ImpressionDate time.Time  `db:"impression_date" json:"impression_date"`
	ImpressionCode int        `db:"impression_code" json:"impression_code"`
	MaterialItemCode string   `db:"material_item_code" json:"material_item_code"`
	Notes          *string    `db:"notes" json:"notes,omitempty"`
	CreatedBy      string     `db:"created_by" json:"created_by"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}
