package schedule

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hearcare/hearcare/internal/domain/auditlog"
	"github.com/hearcare/hearcare/internal/domain/location"
	"github.com/hearcare/hearcare/internal/platform/sms"
)

var ErrNoRecipients = errors.New("schedule has no notifiable patients")

// LocationGetter resolves the location a schedule points at; satisfied by
// the location service.
type LocationGetter interface {
	Get(ctx context.Context, id uuid.UUID) (*location.Location, error)
}

type Service struct {
	repo      Repository
	locations LocationGetter
	sender    sms.Sender
	templates *sms.TemplateEngine
	audit     *auditlog.Service
	logger    zerolog.Logger
}

func NewService(repo Repository, locations LocationGetter, sender sms.Sender,
	templates *sms.TemplateEngine, audit *auditlog.Service, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		locations: locations,
		sender:    sender,
		templates: templates,
		audit:     audit,
		logger:    logger,
	}
}

func (s *Service) Create(ctx context.Context, sched *Schedule, actorID string) error {
	if sched.Title == "" {
		return errors.New("title is required")
	}
	if sched.Phase < 1 || sched.Phase > 3 {
		return fmt.Errorf("invalid phase %d", sched.Phase)
	}
	if sched.StartDate.IsZero() {
		return errors.New("start_date is required")
	}
	if sched.EndDate != nil && sched.EndDate.Before(sched.StartDate) {
		return errors.New("end_date is before start_date")
	}
	if _, err := s.locations.Get(ctx, sched.LocationID); err != nil {
		return fmt.Errorf("location: %w", err)
	}
	sched.CreatedBy = actorID
	if err := s.repo.Create(ctx, sched); err != nil {
		return err
	}
	s.audit.Record(ctx, "schedules", sched.ID.String(), auditlog.ActionCreate, actorID, nil, sched)
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Schedule, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Schedule, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) Update(ctx context.Context, sched *Schedule, actorID string) error {
	old, err := s.repo.GetByID(ctx, sched.ID)
	if err != nil {
		return err
	}
	if sched.Phase < 1 || sched.Phase > 3 {
		return fmt.Errorf("invalid phase %d", sched.Phase)
	}
	sched.CreatedBy = old.CreatedBy
	if err := s.repo.Update(ctx, sched); err != nil {
		return err
	}
	s.audit.Record(ctx, "schedules", sched.ID.String(), auditlog.ActionUpdate, actorID, old, sched)
	return nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID, actorID string) error {
	old, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.audit.Record(ctx, "schedules", id.String(), auditlog.ActionDelete, actorID, old, nil)
	return nil
}

// Notify sends the schedule notice to every active patient of the
// schedule's location. Each send is best-effort: a failed or unreachable
// recipient is counted and skipped, never aborting the run.
func (s *Service) Notify(ctx context.Context, scheduleID uuid.UUID, actorID string) (*NotifyResult, error) {
	sched, err := s.repo.GetByID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	loc, err := s.locations.Get(ctx, sched.LocationID)
	if err != nil {
		return nil, fmt.Errorf("location: %w", err)
	}
	recipients, err := s.repo.ListRecipients(ctx, sched.LocationID)
	if err != nil {
		return nil, fmt.Errorf("list recipients: %w", err)
	}
	if len(recipients) == 0 {
		return nil, ErrNoRecipients
	}

	result := &NotifyResult{Recipients: len(recipients)}
	for _, rec := range recipients {
		if rec.Phone == "" {
			result.NoPhone++
			continue
		}
		body, err := s.templates.Render("schedule-notice", map[string]string{
			"patient_name": rec.FullName,
			"location":     loc.Name,
			"date":         sched.StartDate.Format("02 Jan 2006"),
			"phase":        fmt.Sprintf("phase %d", sched.Phase),
		})
		if err != nil {
			return nil, fmt.Errorf("render notice: %w", err)
		}
		if err := s.sender.Send(ctx, rec.Phone, body); err != nil {
			result.Failed++
			s.logger.Warn().Err(err).
				Str("patient_id", rec.PatientID.String()).
				Str("schedule_id", scheduleID.String()).
				Msg("schedule notice failed")
			continue
		}
		result.Sent++
	}

	s.audit.Record(ctx, "schedules", scheduleID.String(), auditlog.ActionNotify, actorID, nil, result)
	s.logger.Info().
		Str("schedule_id", scheduleID.String()).
		Int("sent", result.Sent).
		Int("failed", result.Failed).
		Msg("schedule notices sent")
	return result, nil
}
