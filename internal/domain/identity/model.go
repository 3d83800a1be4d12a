package identity

import (
	"time"

	"github.com/google/uuid"
)

// User is a staff account. Roles come from the fixed role set in
// platform/auth; locations scope what coordinators and clinicians see.
type User struct {
	ID           uuid.UUID   `db:"id" json:"id"`
	Username     string      `db:"username" json:"username"`
	PasswordHash string      `db:"password_hash" json:"-"`
	FullName     string      `db:"full_name" json:"full_name"`
	PhoneNumber  string      `db:"phone_number" json:"phone_number"`
	Roles        []string    `db:"roles" json:"roles"`
	LocationIDs  []uuid.UUID `db:"location_ids" json:"location_ids"`
	Active       bool        `db:"active" json:"active"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updated_at"`
}

// OTP purposes. A code issued for login cannot reset a password.
const (
	PurposeLogin         = "login"
	PurposePasswordReset = "password_reset"
)

// OTP is a stored one-time password challenge. Only the bcrypt hash of the
// code is persisted.
type OTP struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Purpose   string    `db:"purpose" json:"purpose"`
	CodeHash  string    `db:"code_hash" json:"-"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
	Consumed  bool      `db:"consumed" json:"consumed"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
