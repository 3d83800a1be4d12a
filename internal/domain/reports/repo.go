package reports

import "context"

type Repository interface {
	PatientRows(ctx context.Context, f Filter) ([]*PatientRow, error)
	InventoryRows(ctx context.Context, f Filter) ([]*InventoryRow, error)
}
