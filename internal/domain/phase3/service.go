package phase3

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hearcare/hearcare/internal/domain/auditlog"
	"github.com/hearcare/hearcare/internal/domain/inventory"
	"github.com/hearcare/hearcare/internal/platform/db"
)

const phaseNumber = 3

type RegistrationResolver interface {
	Resolve(ctx context.Context, phase int, patientID uuid.UUID, providedID *uuid.UUID) (*uuid.UUID, error)
}

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
	if reg.AftercareSite == "" {
		return errors.New("aftercare_site is required")
	}
	if err := s.repo.CreateRegistration(ctx, reg); err != nil {
		return err
	}
	s.audit.Record(ctx, "phase3_registrations", reg.ID.String(), auditlog.ActionCreate, reg.CreatedBy, nil, reg)
	return nil
}

func (s *Service) GetRegistration(ctx context.Context, id uuid.UUID) (*Registration, error) {
	return s.repo.GetRegistration(ctx, id)
}

func (s *Service) ListRegistrations(ctx context.Context, patientID uuid.UUID) ([]*Registration, error) {
	return s.repo.ListRegistrations(ctx, patientID)
}

func (s *Service) AddAssessment(ctx context.Context, a *AftercareAssessment) error {
	regID, err := s.resolver.Resolve(ctx, phaseNumber, a.PatientID, a.RegistrationID)
	if err != nil {
		return err
	}
	a.RegistrationID = regID
	if err := s.repo.CreateAssessment(ctx, a); err != nil {
		return err
	}
	s.audit.Record(ctx, "aftercare_assessments", a.ID.String(), auditlog.ActionCreate, a.CreatedBy, nil, a)
	return nil
}

func (s *Service) ListAssessments(ctx context.Context, patientID uuid.UUID) ([]*AftercareAssessment, error) {
	return s.repo.ListAssessments(ctx, patientID)
}

// DispenseBatteries hands out battery packs. The deduction is Required: a
// dispense record without matching stock movement would make the ledger
// lie, so the whole operation rolls back on insufficient stock.
func (s *Service) DispenseBatteries(ctx context.Context, d *BatteryDispense) error {
	if d.ItemCode == "" {
		return errors.New("item_code is required")
	}
	if d.Packs <= 0 {
		return errors.New("packs must be positive")
	}
	regID, err := s.resolver.Resolve(ctx, phaseNumber, d.PatientID, d.RegistrationID)
	if err != nil {
		return err
	}
	d.RegistrationID = regID

	phase := phaseNumber
	err = s.runTx(ctx, func(ctx context.Context) error {
		if err := s.repo.CreateBatteryDispense(ctx, d); err != nil {
			return err
		}
		return s.stock.Deduct(ctx, d.ItemCode, d.Packs, d.CreatedBy,
			fmt.Sprintf("battery dispense %s", d.ID),
			inventory.Meta{PatientID: &d.PatientID, Phase: &phase},
			inventory.PolicyRequired)
	})
	if err != nil {
		return err
	}
	s.audit.Record(ctx, "battery_dispenses", d.ID.String(), auditlog.ActionCreate, d.CreatedBy, nil, d)
	return nil
}

func (s *Service) ListBatteryDispenses(ctx context.Context, patientID uuid.UUID) ([]*BatteryDispense, error) {
	return s.repo.ListBatteryDispenses(ctx, patientID)
}

func (s *Service) AddFinalQC(ctx context.Context, qc *FinalQC) error {
	regID, err := s.resolver.Resolve(ctx, phaseNumber, qc.PatientID, qc.RegistrationID)
	if err != nil {
		return err
	}
	qc.RegistrationID = regID
	if err := s.repo.CreateFinalQC(ctx, qc); err != nil {
		return err
	}
	s.audit.Record(ctx, "phase3_final_qcs", qc.ID.String(), auditlog.ActionCreate, qc.CreatedBy, nil, qc)
	return nil
}

func (s *Service) ListFinalQCs(ctx context.Context, patientID uuid.UUID) ([]*FinalQC, error) {
	return s.repo.ListFinalQCs(ctx, patientID)
}
