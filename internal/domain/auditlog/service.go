package auditlog

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"
)

// Service records and lists audit entries. Recording is best-effort: a
// failed insert is logged as a warning and never propagated, so a broken
// audit table cannot fail a clinical write.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Record appends an audit entry. old and new are marshalled to JSON;
// marshal failures are treated like insert failures.
func (s *Service) Record(ctx context.Context, table, recordID, action, actorID string, oldValues, newValues interface{}) {
	entry := &Entry{
		TableName: table,
		RecordID:  recordID,
		Action:    action,
		ActorID:   actorID,
	}

	var err error
	if oldValues != nil {
		if entry.OldValues, err = json.Marshal(oldValues); err != nil {
			s.warn(table, recordID, err)
			return
		}
	}
	if newValues != nil {
		if entry.NewValues, err = json.Marshal(newValues); err != nil {
			s.warn(table, recordID, err)
			return
		}
	}

	if err := s.repo.Insert(ctx, entry); err != nil {
		s.warn(table, recordID, err)
	}
}

func (s *Service) warn(table, recordID string, err error) {
	s.logger.Warn().Err(err).
		Str("table", table).
		Str("record_id", recordID).
		Msg("audit log write failed")
}

func (s *Service) List(ctx context.Context, table string, limit, offset int) ([]*Entry, int, error) {
	return s.repo.List(ctx, table, limit, offset)
}

func (s *Service) ListByRecord(ctx context.Context, table, recordID string, limit, offset int) ([]*Entry, int, error) {
	return s.repo.ListByRecord(ctx, table, recordID, limit, offset)
}
