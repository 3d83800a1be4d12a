package phase1

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	CreateRegistration(ctx context.Context, reg *Registration) error
	GetRegistration(ctx context.Context, id uuid.UUID) (*Registration, error)
	ListRegistrations(ctx context.Context, patientID uuid.UUID) ([]*Registration, error)
	UpdateRegistration(ctx context.Context, reg *Registration) error

	CreateEarScreening(ctx context.Context, s *EarScreening) error
	ListEarScreenings(ctx context.Context, patientID uuid.UUID) ([]*EarScreening, error)

	CreateHearingScreening(ctx context.Context, s *HearingScreening) error
	ListHearingScreenings(ctx context.Context, patientID uuid.UUID) ([]*HearingScreening, error)

	CreateEarImpression(ctx context.Context, imp *EarImpression) error
	ListEarImpressions(ctx context.Context, patientID uuid.UUID) ([]*EarImpression, error)
}
