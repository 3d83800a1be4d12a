package archival

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/hearcare/hearcare/internal/domain/auditlog"
	"github.com/hearcare/hearcare/internal/domain/patient"
	"github.com/hearcare/hearcare/internal/domain/phase1"
	"github.com/hearcare/hearcare/internal/domain/phase2"
	"github.com/hearcare/hearcare/internal/domain/phase3"
	"github.com/hearcare/hearcare/internal/platform/db"
)

var (
	ErrAlreadyArchived = errors.New("patient is already archived")
	ErrNotArchived     = errors.New("patient is not archived")
	ErrRunInProgress   = errors.New("auto-archive run already in progress")
)

// PatientStore is the subset of the patient service archival needs.
type PatientStore interface {
	GetPatient(ctx context.Context, id uuid.UUID) (*patient.Patient, []*patient.Phase, error)
	ListArchiveEligible(ctx context.Context, inactivityYears int) ([]*patient.Patient, error)
	SetArchived(ctx context.Context, id uuid.UUID, archived bool) error
}

// Phase1Source, Phase2Source and Phase3Source expose the per-phase record
// listings folded into a snapshot.
type Phase1Source interface {
	ListRegistrations(ctx context.Context, patientID uuid.UUID) ([]*phase1.Registration, error)
	ListEarScreenings(ctx context.Context, patientID uuid.UUID) ([]*phase1.EarScreening, error)
	ListHearingScreenings(ctx context.Context, patientID uuid.UUID) ([]*phase1.HearingScreening, error)
	ListEarImpressions(ctx context.Context, patientID uuid.UUID) ([]*phase1.EarImpression, error)
}

type Phase2Source interface {
	ListRegistrations(ctx context.Context, patientID uuid.UUID) ([]*phase2.Registration, error)
	ListFittingTableRows(ctx context.Context, patientID uuid.UUID) ([]*phase2.FittingTableRow, error)
	ListFittings(ctx context.Context, patientID uuid.UUID) ([]*phase2.Fitting, error)
	ListCounselings(ctx context.Context, patientID uuid.UUID) ([]*phase2.Counseling, error)
	ListFinalQCs(ctx context.Context, patientID uuid.UUID) ([]*phase2.FinalQC, error)
}

type Phase3Source interface {
	ListRegistrations(ctx context.Context, patientID uuid.UUID) ([]*phase3.Registration, error)
	ListAssessments(ctx context.Context, patientID uuid.UUID) ([]*phase3.AftercareAssessment, error)
	ListBatteryDispenses(ctx context.Context, patientID uuid.UUID) ([]*phase3.BatteryDispense, error)
	ListFinalQCs(ctx context.Context, patientID uuid.UUID) ([]*phase3.FinalQC, error)
}

type Service struct {
	repo            Repository
	patients        PatientStore
	p1              Phase1Source
	p2              Phase2Source
	p3              Phase3Source
	audit           *auditlog.Service
	logger          zerolog.Logger
	inactivityYears int
	running         atomic.Bool
	runTx           func(ctx context.Context, fn func(context.Context) error) error
}

func NewService(repo Repository, patients PatientStore, p1 Phase1Source, p2 Phase2Source,
	p3 Phase3Source, audit *auditlog.Service, pool *pgxpool.Pool, inactivityYears int,
	logger zerolog.Logger) *Service {
	return &Service{
		repo:            repo,
		patients:        patients,
		p1:              p1,
		p2:              p2,
		p3:              p3,
		audit:           audit,
		logger:          logger,
		inactivityYears: inactivityYears,
		runTx: func(ctx context.Context, fn func(context.Context) error) error {
			return db.RunInTx(ctx, pool, fn)
		},
	}
}

// snapshot is the full record tree frozen into an archive row.
type snapshot struct {
	Patient *patient.Patient `json:"patient"`
	Phases  []*patient.Phase `json:"phases"`
	Phase1  struct {
		Registrations     []*phase1.Registration     `json:"registrations"`
		EarScreenings     []*phase1.EarScreening     `json:"ear_screenings"`
		HearingScreenings []*phase1.HearingScreening `json:"hearing_screenings"`
		EarImpressions    []*phase1.EarImpression    `json:"ear_impressions"`
	} `json:"phase1"`
	Phase2 struct {
		Registrations []*phase2.Registration    `json:"registrations"`
		FittingTable  []*phase2.FittingTableRow `json:"fitting_table"`
		Fittings      []*phase2.Fitting         `json:"fittings"`
		Counselings   []*phase2.Counseling      `json:"counselings"`
		FinalQCs      []*phase2.FinalQC         `json:"final_qcs"`
	} `json:"phase2"`
	Phase3 struct {
		Registrations    []*phase3.Registration        `json:"registrations"`
		Assessments      []*phase3.AftercareAssessment `json:"assessments"`
		BatteryDispenses []*phase3.BatteryDispense     `json:"battery_dispenses"`
		FinalQCs         []*phase3.FinalQC             `json:"final_qcs"`
	} `json:"phase3"`
}

// Archive freezes the patient's record tree and flips the archived flag in
// one transaction.
func (s *Service) Archive(ctx context.Context, patientID uuid.UUID, reason, actorID string) (*Archive, error) {
	p, phases, err := s.patients.GetPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if p.Archived {
		return nil, ErrAlreadyArchived
	}

	snap, err := s.buildSnapshot(ctx, p, phases)
	if err != nil {
		return nil, fmt.Errorf("build snapshot: %w", err)
	}

	lastPhase := 0
	for _, ph := range phases {
		if ph.PhaseID > lastPhase {
			lastPhase = ph.PhaseID
		}
	}
	summary, err := json.Marshal(Summary{
		SHFID:       p.SHFID,
		FullName:    strings.TrimSpace(p.FirstName + " " + p.LastName),
		Status:      p.Status,
		LastPhase:   lastPhase,
		DateOfDeath: p.DateOfDeath,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal summary: %w", err)
	}

	archive := &Archive{
		PatientID: patientID,
		SHFID:     p.SHFID,
		Reason:    reason,
		Snapshot:  snap,
		Summary:   summary,
	}
	archive.ArchivedBy = actorID

	err = s.runTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Insert(ctx, archive); err != nil {
			return err
		}
		return s.patients.SetArchived(ctx, patientID, true)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, "patients", patientID.String(), auditlog.ActionArchive, actorID,
		map[string]bool{"archived": false}, map[string]bool{"archived": true})
	s.logger.Info().
		Str("patient_id", patientID.String()).
		Str("reason", reason).
		Msg("patient archived")
	return archive, nil
}

// Unarchive flips the flag back; the snapshots stay.
func (s *Service) Unarchive(ctx context.Context, patientID uuid.UUID, actorID string) error {
	p, _, err := s.patients.GetPatient(ctx, patientID)
	if err != nil {
		return err
	}
	if !p.Archived {
		return ErrNotArchived
	}
	if err := s.patients.SetArchived(ctx, patientID, false); err != nil {
		return err
	}
	s.audit.Record(ctx, "patients", patientID.String(), auditlog.ActionArchive, actorID,
		map[string]bool{"archived": true}, map[string]bool{"archived": false})
	return nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Archive, error) {
	return s.repo.ListByPatient(ctx, patientID)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Archive, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// RunResult summarises one auto-archive batch.
type RunResult struct {
	Eligible int `json:"eligible"`
	Archived int `json:"archived"`
	Failed   int `json:"failed"`
}

// RunAutoArchive archives every eligible patient, each in its own
// transaction so one failure doesn't block the rest. Only one run may be
// active at a time; overlapping timer fires are rejected.
func (s *Service) RunAutoArchive(ctx context.Context) (*RunResult, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer s.running.Store(false)

	eligible, err := s.patients.ListArchiveEligible(ctx, s.inactivityYears)
	if err != nil {
		return nil, fmt.Errorf("list eligible patients: %w", err)
	}

	result := &RunResult{Eligible: len(eligible)}
	for _, p := range eligible {
		if _, err := s.Archive(ctx, p.ID, ReasonAuto, "system"); err != nil {
			result.Failed++
			s.logger.Error().Err(err).
				Str("patient_id", p.ID.String()).
				Msg("auto-archive failed for patient")
			continue
		}
		result.Archived++
	}
	s.logger.Info().
		Int("eligible", result.Eligible).
		Int("archived", result.Archived).
		Int("failed", result.Failed).
		Msg("auto-archive run finished")
	return result, nil
}

func (s *Service) buildSnapshot(ctx context.Context, p *patient.Patient, phases []*patient.Phase) (json.RawMessage, error) {
	var snap snapshot
	snap.Patient = p
	snap.Phases = phases

	var err error
	if snap.Phase1.Registrations, err = s.p1.ListRegistrations(ctx, p.ID); err != nil {
		return nil, err
	}
	if snap.Phase1.EarScreenings, err = s.p1.ListEarScreenings(ctx, p.ID); err != nil {
		return nil, err
	}
	if snap.Phase1.HearingScreenings, err = s.p1.ListHearingScreenings(ctx, p.ID); err != nil {
		return nil, err
	}
	if snap.Phase1.EarImpressions, err = s.p1.ListEarImpressions(ctx, p.ID); err != nil {
		return nil, err
	}

	if snap.Phase2.Registrations, err = s.p2.ListRegistrations(ctx, p.ID); err != nil {
		return nil, err
	}
	if snap.Phase2.FittingTable, err = s.p2.ListFittingTableRows(ctx, p.ID); err != nil {
		return nil, err
	}
	if snap.Phase2.Fittings, err = s.p2.ListFittings(ctx, p.ID); err != nil {
		return nil, err
	}
	if snap.Phase2.Counselings, err = s.p2.ListCounselings(ctx, p.ID); err != nil {
		return nil, err
	}
	if snap.Phase2.FinalQCs, err = s.p2.ListFinalQCs(ctx, p.ID); err != nil {
		return nil, err
	}

	if snap.Phase3.Registrations, err = s.p3.ListRegistrations(ctx, p.ID); err != nil {
		return nil, err
	}
	if snap.Phase3.Assessments, err = s.p3.ListAssessments(ctx, p.ID); err != nil {
		return nil, err
	}
	if snap.Phase3.BatteryDispenses, err = s.p3.ListBatteryDispenses(ctx, p.ID); err != nil {
		return nil, err
	}
	if snap.Phase3.FinalQCs, err = s.p3.ListFinalQCs(ctx, p.ID); err != nil {
		return nil, err
	}

	return json.Marshal(snap)
}
