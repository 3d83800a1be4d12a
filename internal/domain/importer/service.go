// Package importer ingests bulk phase-1 intake data from CSV exports of
// the field registration sheets.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/hearcare/hearcare/internal/domain/patient"
	"github.com/hearcare/hearcare/internal/domain/phase1"
	"github.com/hearcare/hearcare/internal/platform/db"
)

var ErrMissingHeader = errors.New("csv is missing required header columns")

// Columns recognised in the upload. registration_id switches a row from
// create to update mode; the rest describe the patient and intake.
var requiredColumns = []string{"first_name", "last_name", "screening_site"}

// PatientCreator and RegistrationStore are the write surfaces the import
// needs; satisfied by the patient and phase1 services.
type PatientCreator interface {
	CreatePatient(ctx context.Context, p *patient.Patient, actorID string) error
}

type RegistrationStore interface {
	GetRegistration(ctx context.Context, id uuid.UUID) (*phase1.Registration, error)
	CreateRegistration(ctx context.Context, reg *phase1.Registration) error
	UpdateRegistration(ctx context.Context, reg *phase1.Registration, actorID string) error
}

// RowError ties one failed CSV line to its reason. Row numbers are
// 1-based and include the header line, matching what a spreadsheet shows.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// Result summarises one import run.
type Result struct {
	Created int        `json:"created"`
	Updated int        `json:"updated"`
	Failed  int        `json:"failed"`
	Errors  []RowError `json:"errors"`
}

type Service struct {
	patients      PatientCreator
	registrations RegistrationStore
	logger        zerolog.Logger
	runTx         func(ctx context.Context, fn func(context.Context) error) error
}

func NewService(patients PatientCreator, registrations RegistrationStore,
	pool *pgxpool.Pool, logger zerolog.Logger) *Service {
	return &Service{
		patients:      patients,
		registrations: registrations,
		logger:        logger,
		runTx: func(ctx context.Context, fn func(context.Context) error) error {
			return db.RunInTx(ctx, pool, fn)
		},
	}
}

// Import processes the whole file, collecting per-row failures instead of
// aborting: a bad line costs that line only.
func (s *Service) Import(ctx context.Context, r io.Reader, actorID string) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range requiredColumns {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingHeader, required)
		}
	}

	result := &Result{}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, RowError{Row: line, Message: err.Error()})
			continue
		}
		updated, err := s.importRow(ctx, cols, record, actorID)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, RowError{Row: line, Message: err.Error()})
			continue
		}
		if updated {
			result.Updated++
		} else {
			result.Created++
		}
	}

	s.logger.Info().
		Int("created", result.Created).
		Int("updated", result.Updated).
		Int("failed", result.Failed).
		Msg("phase1 import finished")
	return result, nil
}

func (s *Service) importRow(ctx context.Context, cols map[string]int, record []string,
	actorID string) (updated bool, err error) {
	get := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	if idStr := get("registration_id"); idStr != "" {
		id, err := uuid.Parse(idStr)
		if err != nil {
			return false, fmt.Errorf("invalid registration_id %q", idStr)
		}
		return true, s.updateRegistration(ctx, id, get, actorID)
	}

	p := &patient.Patient{
		FirstName: get("first_name"),
		LastName:  get("last_name"),
		Gender:    get("gender"),
	}
	if v := get("date_of_birth"); v != "" {
		dob, err := time.Parse("2006-01-02", v)
		if err != nil {
			return false, fmt.Errorf("invalid date_of_birth %q", v)
		}
		p.DateOfBirth = &dob
	}
	if v := get("phone"); v != "" {
		p.PhoneNumber = &v
	}
	if v := get("guardian_name"); v != "" {
		p.GuardianName = &v
	}
	if v := get("city"); v != "" {
		p.City = &v
	}
	regDate := time.Now()
	if v := get("registration_date"); v != "" {
		regDate, err = time.Parse("2006-01-02", v)
		if err != nil {
			return false, fmt.Errorf("invalid registration_date %q", v)
		}
	}

	// Patient and intake registration land together or not at all.
	err = s.runTx(ctx, func(ctx context.Context) error {
		if err := s.patients.CreatePatient(ctx, p, actorID); err != nil {
			return fmt.Errorf("create patient: %w", err)
		}
		reg := &phase1.Registration{
			PatientID:        p.ID,
			RegistrationDate: regDate,
			ScreeningSite:    get("screening_site"),
			CreatedBy:        actorID,
		}
		if v := get("referral_source"); v != "" {
			reg.ReferralSource = &v
		}
		if v := get("notes"); v != "" {
			reg.Notes = &v
		}
		if err := s.registrations.CreateRegistration(ctx, reg); err != nil {
			return fmt.Errorf("create registration: %w", err)
		}
		return nil
	})
	return false, err
}

func (s *Service) updateRegistration(ctx context.Context, id uuid.UUID,
	get func(string) string, actorID string) error {
	reg, err := s.registrations.GetRegistration(ctx, id)
	if err != nil {
		return fmt.Errorf("registration %s: %w", id, err)
	}
	if v := get("screening_site"); v != "" {
		reg.ScreeningSite = v
	}
	if v := get("registration_date"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			return fmt.Errorf("invalid registration_date %q", v)
		}
		reg.RegistrationDate = d
	}
	if v := get("referral_source"); v != "" {
		reg.ReferralSource = &v
	}
	if v := get("notes"); v != "" {
		reg.Notes = &v
	}
	return s.registrations.UpdateRegistration(ctx, reg, actorID)
}
