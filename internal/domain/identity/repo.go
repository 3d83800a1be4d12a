package identity

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	CreateUser(ctx context.Context, u *User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	UpdateUser(ctx context.Context, u *User) error
	SetUserActive(ctx context.Context, id uuid.UUID, active bool) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	ListUsers(ctx context.Context, limit, offset int) ([]*User, int, error)

	CreateOTP(ctx context.Context, otp *OTP) error
	LatestOTP(ctx context.Context, userID uuid.UUID, purpose string) (*OTP, error)
	ConsumeOTP(ctx context.Context, id uuid.UUID) error
}
