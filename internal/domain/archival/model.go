package archival

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Archive reasons.
const (
	ReasonManual = "manual"
	ReasonAuto   = "auto"
)

// Archive is a frozen copy of a patient's full record tree taken at
// archive time. Snapshots survive unarchiving.
type Archive struct {
	ID         uuid.UUID       `db:"id" json:"id"`
	PatientID  uuid.UUID       `db:"patient_id" json:"patient_id"`
	SHFID      string          `db:"shf_id" json:"shf_id"`
	Reason     string          `db:"reason" json:"reason"`
	Snapshot   json.RawMessage `db:"snapshot" json:"snapshot"`
	Summary    json.RawMessage `db:"summary" json:"summary"`
	ArchivedBy string          `db:"archived_by" json:"archived_by"`
	ArchivedAt time.Time       `db:"archived_at" json:"archived_at"`
}

// Summary is the flat row kept alongside the full snapshot for listings.
type Summary struct {
	SHFID       string     `json:"shf_id"`
	FullName    string     `json:"full_name"`
	Status      string     `json:"status"`
	LastPhase   int        `json:"last_phase"`
	DateOfDeath *time.Time `json:"date_of_death,omitempty"`
}
