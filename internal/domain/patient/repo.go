package patient

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetBySHFID(ctx context.Context, shfID string) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	SetArchived(ctx context.Context, id uuid.UUID, archived bool) error
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Patient, int, error)
	ListArchiveEligible(ctx context.Context, inactivityYears int) ([]*Patient, error)

	CreatePhase(ctx context.Context, ph *Phase) error
	GetPhase(ctx context.Context, patientID uuid.UUID, phaseID int) (*Phase, error)
	ListPhases(ctx context.Context, patientID uuid.UUID) ([]*Phase, error)
	UpdatePhaseStatus(ctx context.Context, patientID uuid.UUID, phaseID int, status string, endDate bool) error
}
