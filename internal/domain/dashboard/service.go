package dashboard

import (
	"context"

	"github.com/google/uuid"

	"github.com/hearcare/hearcare/internal/platform/geo"
)

type Service struct {
	repo Repository
	geo  *geo.Lookup
}

func NewService(repo Repository, lookup *geo.Lookup) *Service {
	return &Service{repo: repo, geo: lookup}
}

func (s *Service) Overview(ctx context.Context, scope []uuid.UUID) (*Overview, error) {
	return s.repo.Overview(ctx, scope)
}

func (s *Service) PhaseFunnel(ctx context.Context, scope []uuid.UUID) ([]*PhaseFunnelEntry, error) {
	return s.repo.PhaseFunnel(ctx, scope)
}

func (s *Service) Demographics(ctx context.Context, scope []uuid.UUID) (*Demographics, error) {
	gender, err := s.repo.GenderCounts(ctx, scope)
	if err != nil {
		return nil, err
	}
	buckets, err := s.repo.AgeBuckets(ctx, scope)
	if err != nil {
		return nil, err
	}
	return &Demographics{Gender: gender, AgeBuckets: buckets}, nil
}

func (s *Service) RegistrationsPerMonth(ctx context.Context, scope []uuid.UUID, months int) ([]*MonthCount, error) {
	if months < 1 || months > 60 {
		months = 12
	}
	return s.repo.RegistrationsPerMonth(ctx, scope, months)
}

// Geography joins location headcounts with map coordinates from the geo
// table. Unknown cities keep nil coordinates rather than dropping the row.
func (s *Service) Geography(ctx context.Context, scope []uuid.UUID) ([]*GeographyEntry, error) {
	entries, err := s.repo.Geography(ctx, scope)
	if err != nil {
		return nil, err
	}
	if s.geo == nil {
		return entries, nil
	}
	for _, e := range entries {
		if coords, ok := s.geo.Find(e.City); ok {
			lat, lon := coords.Latitude, coords.Longitude
			e.Latitude, e.Longitude = &lat, &lon
		}
	}
	return entries, nil
}
