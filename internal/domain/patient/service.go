package patient

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/hearcare/hearcare/internal/domain/auditlog"
	"github.com/hearcare/hearcare/internal/platform/db"
)

const maxPhase = 3

var (
	// ErrValidation wraps request errors the client can correct.
	ErrValidation        = errors.New("invalid patient data")
	ErrPhaseNotCompleted = errors.New("previous phase is not completed")
	ErrPhaseExists       = errors.New("patient already entered this phase")
	ErrInvalidStatus     = errors.New("invalid phase status")
)

type Service struct {
	repo  Repository
	audit *auditlog.Service
	runTx func(ctx context.Context, fn func(context.Context) error) error
}

func NewService(repo Repository, pool *pgxpool.Pool, audit *auditlog.Service) *Service {
	return &Service{
		repo:  repo,
		audit: audit,
		runTx: func(ctx context.Context, fn func(context.Context) error) error {
			return db.RunInTx(ctx, pool, fn)
		},
	}
}

// CreatePatient registers a patient and opens their phase 1 row in the same
// transaction, so a patient can never exist without a phase.
func (s *Service) CreatePatient(ctx context.Context, p *Patient, actorID string) error {
	if p.FirstName == "" {
		return fmt.Errorf("%w: first_name is required", ErrValidation)
	}
	if p.Status == "" {
		p.Status = "active"
	}
	err := s.runTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, p); err != nil {
			return err
		}
		return s.repo.CreatePhase(ctx, &Phase{
			PatientID: p.ID,
			PhaseID:   1,
			Status:    StatusInProgress,
		})
	})
	if err != nil {
		return err
	}
	s.audit.Record(ctx, "patients", p.ID.String(), auditlog.ActionCreate, actorID, nil, p)
	return nil
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, []*Phase, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	phases, err := s.repo.ListPhases(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return p, phases, nil
}

func (s *Service) GetBySHFID(ctx context.Context, shfID string) (*Patient, error) {
	return s.repo.GetBySHFID(ctx, shfID)
}

func (s *Service) UpdatePatient(ctx context.Context, p *Patient, actorID string) error {
	old, err := s.repo.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	// SHF ID and archival state are immutable through this path.
	p.SHFID = old.SHFID
	p.Archived = old.Archived
	if err := s.repo.Update(ctx, p); err != nil {
		return err
	}
	s.audit.Record(ctx, "patients", p.ID.String(), auditlog.ActionUpdate, actorID, old, p)
	return nil
}

func (s *Service) ListPatients(ctx context.Context, filter ListFilter, limit, offset int) ([]*Patient, int, error) {
	return s.repo.List(ctx, filter, limit, offset)
}

// AdvancePhase moves the patient into targetPhase. The preceding phase
// must be Completed and targetPhase must not have been entered yet.
func (s *Service) AdvancePhase(ctx context.Context, patientID uuid.UUID, targetPhase int, actorID string) (*Phase, error) {
	if targetPhase < 2 || targetPhase > maxPhase {
		return nil, fmt.Errorf("%w: phase must be between 2 and %d", ErrValidation, maxPhase)
	}
	if _, err := s.repo.GetByID(ctx, patientID); err != nil {
		return nil, err
	}

	prev, err := s.repo.GetPhase(ctx, patientID, targetPhase-1)
	if err != nil {
		return nil, err
	}
	if prev == nil {
		return nil, fmt.Errorf("%w: patient has not entered phase %d", ErrPhaseNotCompleted, targetPhase-1)
	}
	if prev.Status != StatusCompleted {
		return nil, fmt.Errorf("%w: phase %d is %q", ErrPhaseNotCompleted, prev.PhaseID, prev.Status)
	}

	if existing, err := s.repo.GetPhase(ctx, patientID, targetPhase); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrPhaseExists
	}

	next := &Phase{
		PatientID: patientID,
		PhaseID:   targetPhase,
		Status:    StatusInProgress,
	}
	if err := s.repo.CreatePhase(ctx, next); err != nil {
		return nil, err
	}
	log.Info().
		Str("patient_id", patientID.String()).
		Int("phase", next.PhaseID).
		Msg("patient advanced to next phase")
	s.audit.Record(ctx, "patient_phases", next.ID.String(), auditlog.ActionCreate, actorID, nil, next)
	return next, nil
}

// SetPhaseStatus updates the status of an existing phase row. Completing a
// phase stamps its end date; any other status clears it.
func (s *Service) SetPhaseStatus(ctx context.Context, patientID uuid.UUID, phaseID int, status, actorID string) error {
	if !validStatuses[status] {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	if phaseID < 1 || phaseID > maxPhase {
		return fmt.Errorf("%w: phase must be between 1 and %d", ErrValidation, maxPhase)
	}
	old, err := s.repo.GetPhase(ctx, patientID, phaseID)
	if err != nil {
		return err
	}
	if old == nil {
		return fmt.Errorf("%w: patient has not entered phase %d", ErrValidation, phaseID)
	}
	if err := s.repo.UpdatePhaseStatus(ctx, patientID, phaseID, status, status == StatusCompleted); err != nil {
		return err
	}
	s.audit.Record(ctx, "patient_phases", old.ID.String(), auditlog.ActionUpdate, actorID,
		map[string]string{"status": old.Status}, map[string]string{"status": status})
	return nil
}

// SetArchived flips the soft-archive flag. The archival service owns the
// snapshot and audit trail around this.
func (s *Service) SetArchived(ctx context.Context, id uuid.UUID, archived bool) error {
	return s.repo.SetArchived(ctx, id, archived)
}

// ListArchiveEligible exposes the archival candidate query for the
// archival service.
func (s *Service) ListArchiveEligible(ctx context.Context, inactivityYears int) ([]*Patient, error) {
	return s.repo.ListArchiveEligible(ctx, inactivityYears)
}
