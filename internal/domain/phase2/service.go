package phase2

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

const phaseNumber = 2

var validEars = map[string]bool{"left": true, "right": true}

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
	if reg.FittingSite == "" {
		return errors.New("fitting_site is required")
	}
	if err := s.repo.CreateRegistration(ctx, reg); err != nil {
		return err
	}
	s.audit.Record(ctx, "phase2_registrations", reg.ID.String(), auditlog.ActionCreate, reg.CreatedBy, nil, reg)
	return nil
}

func (s *Service) GetRegistration(ctx context.Context, id uuid.UUID) (*Registration, error) {
	return s.repo.GetRegistration(ctx, id)
}

func (s *Service) ListRegistrations(ctx context.Context, patientID uuid.UUID) ([]*Registration, error) {
	return s.repo.ListRegistrations(ctx, patientID)
}

// AddFittingTableRows stores a batch of audiogram rows under one resolved
// registration. The batch is all-or-nothing.
func (s *Service) AddFittingTableRows(ctx context.Context, patientID uuid.UUID,
	providedRegID *uuid.UUID, rows []*FittingTableRow) error {
	if len(rows) == 0 {
		return errors.New("at least one measurement row is required")
	}
	for _, row := range rows {
		if !validEars[row.Ear] {
			return fmt.Errorf("invalid ear %q", row.Ear)
		}
		if row.FrequencyHz <= 0 {
			return fmt.Errorf("invalid frequency %d", row.FrequencyHz)
		}
	}

	regID, err := s.resolver.Resolve(ctx, phaseNumber, patientID, providedRegID)
	if err != nil {
		return err
	}
	for _, row := range rows {
		row.PatientID = patientID
		row.RegistrationID = regID
	}

	err = s.runTx(ctx, func(ctx context.Context) error {
		return s.repo.CreateFittingTableRows(ctx, rows)
	})
	if err != nil {
		return err
	}
	if len(rows) > 0 {
		s.audit.Record(ctx, "fitting_table_rows", rows[0].ID.String(), auditlog.ActionCreate,
			rows[0].CreatedBy, nil, rows)
	}
	return nil
}

func (s *Service) ListFittingTableRows(ctx context.Context, patientID uuid.UUID) ([]*FittingTableRow, error) {
	return s.repo.ListFittingTableRows(ctx, patientID)
}

// AddFitting dispenses hearing aids. The device deduction is Required:
// stock must cover one device per fitted ear plus the battery packs, or
// the whole fitting rolls back.
func (s *Service) AddFitting(ctx context.Context, f *Fitting) error {
	if f.FittedCode == earcode.None {
		return errors.New("at least one ear must be fitted")
	}
	if f.DeviceItemCode == "" {
		return errors.New("device_item_code is required")
	}
	if f.BatteryPacks < 0 {
		return errors.New("battery_packs cannot be negative")
	}
	if f.BatteryPacks > 0 && f.BatteryItemCode == "" {
		return errors.New("battery_item_code is required when dispensing batteries")
	}

	regID, err := s.resolver.Resolve(ctx, phaseNumber, f.PatientID, f.RegistrationID)
	if err != nil {
		return err
	}
	f.RegistrationID = regID

	left, right := earcode.Decode(f.FittedCode)
	devices := 0
	if left {
		devices++
	}
	if right {
		devices++
	}

	phase := phaseNumber
	meta := inventory.Meta{PatientID: &f.PatientID, Phase: &phase}
	err = s.runTx(ctx, func(ctx context.Context) error {
		if err := s.repo.CreateFitting(ctx, f); err != nil {
			return err
		}
		if err := s.stock.Deduct(ctx, f.DeviceItemCode, devices, f.CreatedBy,
			fmt.Sprintf("fitting %s", f.ID), meta, inventory.PolicyRequired); err != nil {
			return err
		}
		if f.BatteryPacks > 0 {
			if err := s.stock.Deduct(ctx, f.BatteryItemCode, f.BatteryPacks, f.CreatedBy,
				fmt.Sprintf("fitting %s batteries", f.ID), meta, inventory.PolicyRequired); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.audit.Record(ctx, "fittings", f.ID.String(), auditlog.ActionCreate, f.CreatedBy, nil, f)
	return nil
}

func (s *Service) ListFittings(ctx context.Context, patientID uuid.UUID) ([]*Fitting, error) {
	return s.repo.ListFittings(ctx, patientID)
}

func (s *Service) AddCounseling(ctx context.Context, cs *Counseling) error {
	regID, err := s.resolver.Resolve(ctx, phaseNumber, cs.PatientID, cs.RegistrationID)
	if err != nil {
		return err
	}
	cs.RegistrationID = regID
	if err := s.repo.CreateCounseling(ctx, cs); err != nil {
		return err
	}
	s.audit.Record(ctx, "counselings", cs.ID.String(), auditlog.ActionCreate, cs.CreatedBy, nil, cs)
	return nil
}

func (s *Service) ListCounselings(ctx context.Context, patientID uuid.UUID) ([]*Counseling, error) {
	return s.repo.ListCounselings(ctx, patientID)
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
	s.audit.Record(ctx, "phase2_final_qcs", qc.ID.String(), auditlog.ActionCreate, qc.CreatedBy, nil, qc)
	return nil
}

func (s *Service) ListFinalQCs(ctx context.Context, patientID uuid.UUID) ([]*FinalQC, error) {
	return s.repo.ListFinalQCs(ctx, patientID)
}
