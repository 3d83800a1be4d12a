package phase2

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	CreateRegistration(ctx context.Context, reg *Registration) error
	GetRegistration(ctx context.Context, id uuid.UUID) (*Registration, error)
	ListRegistrations(ctx context.Context, patientID uuid.UUID) ([]*Registration, error)

	CreateFittingTableRows(ctx context.Context, rows []*FittingTableRow) error
	ListFittingTableRows(ctx context.Context, patientID uuid.UUID) ([]*FittingTableRow, error)

	CreateFitting(ctx context.Context, f *Fitting) error
	ListFittings(ctx context.Context, patientID uuid.UUID) ([]*Fitting, error)

	CreateCounseling(ctx context.Context, cs *Counseling) error
	ListCounselings(ctx context.Context, patientID uuid.UUID) ([]*Counseling, error)

	CreateFinalQC(ctx context.Context, qc *FinalQC) error
	ListFinalQCs(ctx context.Context, patientID uuid.UUID) ([]*FinalQC, error)
}
