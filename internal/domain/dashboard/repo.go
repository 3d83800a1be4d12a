package dashboard

import (
	"context"

	"github.com/google/uuid"
)

// Repository aggregates read-only dashboard figures. A non-empty scope
// restricts every count to patients (or locations) at those locations.
type Repository interface {
	Overview(ctx context.Context, scope []uuid.UUID) (*Overview, error)
	PhaseFunnel(ctx context.Context, scope []uuid.UUID) ([]*PhaseFunnelEntry, error)
	GenderCounts(ctx context.Context, scope []uuid.UUID) (map[string]int, error)
	AgeBuckets(ctx context.Context, scope []uuid.UUID) ([]AgeBucket, error)
	RegistrationsPerMonth(ctx context.Context, scope []uuid.UUID, months int) ([]*MonthCount, error)
	Geography(ctx context.Context, scope []uuid.UUID) ([]*GeographyEntry, error)
}
