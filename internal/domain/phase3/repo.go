package phase3

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	CreateRegistration(ctx context.Context, reg *Registration) error
	GetRegistration(ctx context.Context, id uuid.UUID) (*Registration, error)
	ListRegistrations(ctx context.Context, patientID uuid.UUID) ([]*Registration, error)

	CreateAssessment(ctx context.Context, a *AftercareAssessment) error
	ListAssessments(ctx context.Context, patientID uuid.UUID) ([]*AftercareAssessment, error)

	CreateBatteryDispense(ctx context.Context, d *BatteryDispense) error
	ListBatteryDispenses(ctx context.Context, patientID uuid.UUID) ([]*BatteryDispense, error)

	CreateFinalQC(ctx context.Context, qc *FinalQC) error
	ListFinalQCs(ctx context.Context, patientID uuid.UUID) ([]*FinalQC, error)
}
