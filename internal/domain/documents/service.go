package documents

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hearcare/hearcare/internal/domain/auditlog"
)

var (
	ErrTooLarge        = errors.New("file exceeds the upload size limit")
	ErrUnsupportedType = errors.New("only PDF files are accepted")
)

const sniffLen = 512

// Upload is one incoming file.
type Upload struct {
	FileName   string
	Size       int64
	Reader     io.Reader
	ScheduleID *uuid.UUID
	PatientID  *uuid.UUID
}

type Service struct {
	repo     Repository
	dir      string
	maxBytes int64
	audit    *auditlog.Service
	logger   zerolog.Logger
}

func NewService(repo Repository, dir string, maxBytes int64, audit *auditlog.Service,
	logger zerolog.Logger) (*Service, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Service{repo: repo, dir: dir, maxBytes: maxBytes, audit: audit, logger: logger}, nil
}

// Save validates and stores one upload: bytes on disk under a generated
// name, metadata in the database. A failed metadata insert removes the
// file again.
func (s *Service) Save(ctx context.Context, up Upload, actorID string) (*Document, error) {
	if up.Size > s.maxBytes {
		return nil, ErrTooLarge
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(up.Reader, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]
	if http.DetectContentType(head) != "application/pdf" {
		return nil, ErrUnsupportedType
	}

	storedName := uuid.NewString() + ".pdf"
	path := filepath.Join(s.dir, storedName)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create file: %w", err)
	}

	// Cap the copy one byte past the limit so oversized bodies that lied
	// about their size are still caught.
	written, err := io.Copy(f, io.MultiReader(bytes.NewReader(head),
		io.LimitReader(up.Reader, s.maxBytes-int64(len(head))+1)))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("write file: %w", err)
	}
	if written > s.maxBytes {
		os.Remove(path)
		return nil, ErrTooLarge
	}

	doc := &Document{
		ScheduleID:  up.ScheduleID,
		PatientID:   up.PatientID,
		FileName:    filepath.Base(up.FileName),
		StoredName:  storedName,
		ContentType: "application/pdf",
		SizeBytes:   written,
		UploadedBy:  actorID,
	}
	if err := s.repo.Insert(ctx, doc); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("save document metadata: %w", err)
	}

	s.audit.Record(ctx, "documents", doc.ID.String(), auditlog.ActionCreate, actorID, nil, doc)
	return doc, nil
}

// Open returns the metadata and an open handle on the stored bytes. The
// caller closes the handle.
func (s *Service) Open(ctx context.Context, id uuid.UUID) (*Document, io.ReadSeekCloser, error) {
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(filepath.Join(s.dir, doc.StoredName))
	if err != nil {
		return nil, nil, fmt.Errorf("open stored file: %w", err)
	}
	return doc, f, nil
}

func (s *Service) ListBySchedule(ctx context.Context, scheduleID uuid.UUID) ([]*Document, error) {
	return s.repo.ListBySchedule(ctx, scheduleID)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Document, error) {
	return s.repo.ListByPatient(ctx, patientID)
}

// Delete removes the metadata row first; a leftover file is logged, not
// fatal.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, actorID string) error {
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.dir, doc.StoredName)); err != nil && !os.IsNotExist(err) {
		s.logger.Warn().Err(err).Str("stored_name", doc.StoredName).
			Msg("failed to remove stored file")
	}
	s.audit.Record(ctx, "documents", id.String(), auditlog.ActionDelete, actorID, doc, nil)
	return nil
}
