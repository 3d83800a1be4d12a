package location

import (
	"time"

	"github.com/google/uuid"
)

// Location is a programme site. Coordinates are resolved from the packaged
// city table at read time and not stored.
type Location struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	City      string    `db:"city" json:"city"`
	Region    *string   `db:"region" json:"region,omitempty"`
	Country   string    `db:"country" json:"country"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	Latitude  *float64 `db:"-" json:"latitude,omitempty"`
	Longitude *float64 `db:"-" json:"longitude,omitempty"`
}
