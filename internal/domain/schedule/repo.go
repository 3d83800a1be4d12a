package schedule

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, s *Schedule) error
	GetByID(ctx context.Context, id uuid.UUID) (*Schedule, error)
	List(ctx context.Context, limit, offset int) ([]*Schedule, int, error)
	Update(ctx context.Context, s *Schedule) error
	Delete(ctx context.Context, id uuid.UUID) error

	// ListRecipients returns the patients registered at the schedule's
	// location. Patients without a phone number come back with an empty
	// Phone so the caller can count them.
	ListRecipients(ctx context.Context, locationID uuid.UUID) ([]*Recipient, error)
}
