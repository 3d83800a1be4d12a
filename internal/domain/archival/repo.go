package archival

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Insert(ctx context.Context, a *Archive) error
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Archive, error)
	List(ctx context.Context, limit, offset int) ([]*Archive, int, error)
}
