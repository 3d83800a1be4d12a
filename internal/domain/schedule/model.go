package schedule

import (
	"time"

	"github.com/google/uuid"
)

// Schedule is one planned mission visit at a location.
type Schedule struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	Title      string     `db:"title" json:"title"`
	LocationID uuid.UUID  `db:"location_id" json:"location_id"`
	Phase      int        `db:"phase" json:"phase"`
	StartDate  time.Time  `db:"start_date" json:"start_date"`
	EndDate    *time.Time `db:"end_date" json:"end_date"`
	Notes      *string    `db:"notes" json:"notes"`
	CreatedBy  string     `db:"created_by" json:"created_by"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}

// Recipient is one patient reachable for a schedule notice.
type Recipient struct {
	PatientID uuid.UUID
	FullName  string
	Phone     string
}

// NotifyResult summarises one bulk notification run.
type NotifyResult struct {
	Recipients int `json:"recipients"`
	Sent       int `json:"sent"`
	Failed     int `json:"failed"`
	NoPhone    int `json:"no_phone"`
}
