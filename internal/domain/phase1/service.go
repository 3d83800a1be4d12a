package phase1

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hearcare/hearcare/internal/domain/auditlog"
	"github.com/hearcare/hearcare/internal/domain/inventory"
	"github.com/hearcare/hearcare/internal/platform/db"
	"github.com/hearcare/hearcare/pkg/earcode"
)

const phaseNumber = 1

// RegistrationResolver links sub-records to a registration row.
type RegistrationResolver interface {
	Resolve(ctx context.Context, phase int, patientID uuid.UUID, providedID *uuid.UUID) (*uuid.UUID, error)
}

// StockDeducter consumes inventory under an explicit failure policy.
type StockDeducter interface {
	Deduct(ctx context.Context, itemCode string, quantity int, actorID, notes string, meta inventory.Meta, policy inventory.Policy) error
}

type Service struct {
	repo     Repository
	resolver RegistrationResolver
	stock    StockDeducter
	audit    *auditlog.Service
	runTx    func(ctx context.Context, fn func(context.Context) error) error
}

func NewService(repo Repository, resolver RegistrationResolver, stock StockDeducter,
	audit *auditlog.Service, pool *pgxpool.Pool) *Service {
	return &Service{
		repo:     repo,
		resolver: resolver,
		stock:    stock,
		audit:    audit,
		runTx: func(ctx context.Context, fn func(context.Context) error) error {
			return db.RunInTx(ctx, pool, fn)
		},
	}
}

func (s *Service) CreateRegistration(ctx context.Context, reg *Registration) error {
	if reg.ScreeningSite == "" {
		return errors.New("screening_site is required")
	}
	if err := s.repo.CreateRegistration(ctx, reg); err != nil {
		return err
	}
	s.audit.Record(ctx, "phase1_registrations", reg.ID.String(), auditlog.ActionCreate, reg.CreatedBy, nil, reg)
	return nil
}

func (s *Service) GetRegistration(ctx context.Context, id uuid.UUID) (*Registration, error) {
	return s.repo.GetRegistration(ctx, id)
}

func (s *Service) ListRegistrations(ctx context.Context, patientID uuid.UUID) ([]*Registration, error) {
	return s.repo.ListRegistrations(ctx, patientID)
}

func (s *Service) UpdateRegistration(ctx context.Context, reg *Registration, actorID string) error {
	old, err := s.repo.GetRegistration(ctx, reg.ID)
	if err != nil {
		return err
	}
	reg.PatientID = old.PatientID
	if err := s.repo.UpdateRegistration(ctx, reg); err != nil {
		return err
	}
	s.audit.Record(ctx, "phase1_registrations", reg.ID.String(), auditlog.ActionUpdate, actorID, old, reg)
	return nil
}

// AddEarScreening stores one otoscopy row, linked to the resolved
// registration when one exists.
func (s *Service) AddEarScreening(ctx context.Context, sc *EarScreening) error {
	regID, err := s.resolver.Resolve(ctx, phaseNumber, sc.PatientID, sc.RegistrationID)
	if err != nil {
		return err
	}
	sc.RegistrationID = regID
	if err := s.repo.CreateEarScreening(ctx, sc); err != nil {
		return err
	}
	s.audit.Record(ctx, "ear_screenings", sc.ID.String(), auditlog.ActionCreate, sc.CreatedBy, nil, sc)
	return nil
}

func (s *Service) ListEarScreenings(ctx context.Context, patientID uuid.UUID) ([]*EarScreening, error) {
	return s.repo.ListEarScreenings(ctx, patientID)
}

func (s *Service) AddHearingScreening(ctx context.Context, sc *HearingScreening) error {
	if sc.LeftResult == "" || sc.RightResult == "" {
		return errors.New("left_result and right_result are required")
	}
	regID, err := s.resolver.Resolve(ctx, phaseNumber, sc.PatientID, sc.RegistrationID)
	if err != nil {
		return err
	}
	sc.RegistrationID = regID
	if err := s.repo.CreateHearingScreening(ctx, sc); err != nil {
		return err
	}
	s.audit.Record(ctx, "hearing_screenings", sc.ID.String(), auditlog.ActionCreate, sc.CreatedBy, nil, sc)
	return nil
}

func (s *Service) ListHearingScreenings(ctx context.Context, patientID uuid.UUID) ([]*HearingScreening, error) {
	return s.repo.ListHearingScreenings(ctx, patientID)
}

// AddEarImpression saves the impression record and consumes one unit of
// impression material per ear. The deduction is best-effort: an empty
// stock bin must not block taking a clinical impression.
func (s *Service) AddEarImpression(ctx context.Context, imp *EarImpression) error {
	if imp.ImpressionCode == earcode.None {
		return errors.New("at least one ear must be selected")
	}
	if imp.MaterialItemCode == "" {
		return errors.New("material_item_code is required")
	}
	regID, err := s.resolver.Resolve(ctx, phaseNumber, imp.PatientID, imp.RegistrationID)
	if err != nil {
		return err
	}
	imp.RegistrationID = regID

	left, right := earcode.Decode(imp.ImpressionCode)
	units := 0
	if left {
		units++
	}
	if right {
		units++
	}

	err = s.runTx(ctx, func(ctx context.Context) error {
		if err := s.repo.CreateEarImpression(ctx, imp); err != nil {
			return err
		}
		phase := phaseNumber
		return s.stock.Deduct(ctx, imp.MaterialItemCode, units, imp.CreatedBy,
			fmt.Sprintf("ear impression %s", imp.ID),
			inventory.Meta{PatientID: &imp.PatientID, Phase: &phase},
			inventory.PolicyBestEffort)
	})
	if err != nil {
		return err
	}
	s.audit.Record(ctx, "ear_impressions", imp.ID.String(), auditlog.ActionCreate, imp.CreatedBy, nil, imp)
	return nil
}

func (s *Service) ListEarImpressions(ctx context.Context, patientID uuid.UUID) ([]*EarImpression, error) {
	return s.repo.ListEarImpressions(ctx, patientID)
}
