package location

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/hearcare/hearcare/internal/domain/auditlog"
	"github.com/hearcare/hearcare/internal/platform/geo"
)

type Service struct {
	repo  Repository
	geo   *geo.Lookup
	audit *auditlog.Service
}

// NewService takes the geo lookup as an explicit dependency; there is no
// package-level table.
func NewService(repo Repository, lookup *geo.Lookup, audit *auditlog.Service) *Service {
	return &Service{repo: repo, geo: lookup, audit: audit}
}

func (s *Service) Create(ctx context.Context, l *Location, actorID string) error {
	if l.Name == "" || l.City == "" || l.Country == "" {
		return errors.New("name, city and country are required")
	}
	l.Active = true
	if err := s.repo.Create(ctx, l); err != nil {
		return err
	}
	s.resolve(l)
	s.audit.Record(ctx, "locations", l.ID.String(), auditlog.ActionCreate, actorID, nil, l)
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Location, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.resolve(l)
	return l, nil
}

func (s *Service) Update(ctx context.Context, l *Location, actorID string) error {
	old, err := s.repo.GetByID(ctx, l.ID)
	if err != nil {
		return err
	}
	if err := s.repo.Update(ctx, l); err != nil {
		return err
	}
	s.resolve(l)
	s.audit.Record(ctx, "locations", l.ID.String(), auditlog.ActionUpdate, actorID, old, l)
	return nil
}

func (s *Service) Deactivate(ctx context.Context, id uuid.UUID, actorID string) error {
	if err := s.repo.SetActive(ctx, id, false); err != nil {
		return err
	}
	s.audit.Record(ctx, "locations", id.String(), auditlog.ActionUpdate, actorID,
		map[string]bool{"active": true}, map[string]bool{"active": false})
	return nil
}

func (s *Service) List(ctx context.Context) ([]*Location, error) {
	out, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, l := range out {
		s.resolve(l)
	}
	return out, nil
}

func (s *Service) resolve(l *Location) {
	if s.geo == nil {
		return
	}
	if coords, ok := s.geo.Find(l.City); ok {
		l.Latitude = &coords.Latitude
		l.Longitude = &coords.Longitude
	}
}
