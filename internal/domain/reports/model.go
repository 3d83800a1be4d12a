package reports

import (
	"time"

	"github.com/google/uuid"
)

// Filter narrows report queries. Nil fields mean "no restriction".
type Filter struct {
	From       *time.Time
	To         *time.Time
	LocationID *uuid.UUID
}

// PatientRow is one line of the patient progress report.
type PatientRow struct {
	SHFID        string     `json:"shf_id"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Gender       string     `json:"gender"`
	DateOfBirth  *time.Time `json:"date_of_birth"`
	Status       string     `json:"status"`
	Location     string     `json:"location"`
	CurrentPhase int        `json:"current_phase"`
	PhaseStatus  string     `json:"phase_status"`
	RegisteredAt time.Time  `json:"registered_at"`
}

// InventoryRow summarises ledger movement for one item over the filter
// window.
type InventoryRow struct {
	ItemCode     string `json:"item_code"`
	ItemName     string `json:"item_name"`
	Received     int    `json:"received"`
	Distributed  int    `json:"distributed"`
	Adjusted     int    `json:"adjusted"`
	CurrentStock int    `json:"current_stock"`
}
