package documents

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hearcare/hearcare/internal/domain/auditlog"
)

type mockRepo struct {
	docs       map[uuid.UUID]*Document
	failInsert bool
}

func newMockRepo() *mockRepo {
	return &mockRepo{docs: make(map[uuid.UUID]*Document)}
}

func (m *mockRepo) Insert(ctx context.Context, d *Document) error {
	if m.failInsert {
		return errors.New("insert failed")
	}
	d.ID = uuid.New()
	m.docs[d.ID] = d
	return nil
}

func (m *mockRepo) GetByID(ctx context.Context, id uuid.UUID) (*Document, error) {
	d, ok := m.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return d, nil
}

func (m *mockRepo) ListBySchedule(ctx context.Context, scheduleID uuid.UUID) ([]*Document, error) {
	var out []*Document
	for _, d := range m.docs {
		if d.ScheduleID != nil && *d.ScheduleID == scheduleID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *mockRepo) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Document, error) {
	return nil, nil
}

func (m *mockRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.docs[id]; !ok {
		return ErrNotFound
	}
	delete(m.docs, id)
	return nil
}

type noopAuditRepo struct{}

func (noopAuditRepo) Insert(ctx context.Context, e *auditlog.Entry) error { return nil }
func (noopAuditRepo) List(ctx context.Context, table string, limit, offset int) ([]*auditlog.Entry, int, error) {
	return nil, 0, nil
}
func (noopAuditRepo) ListByRecord(ctx context.Context, table, recordID string, limit, offset int) ([]*auditlog.Entry, int, error) {
	return nil, 0, nil
}

// pdfBytes is a minimal but sniffable PDF body.
func pdfBytes(size int) []byte {
	b := []byte("%PDF-1.4\n")
	for len(b) < size {
		b = append(b, "0 obj\n"...)
	}
	return b[:size]
}

func newTestService(t *testing.T, repo Repository, maxBytes int64) (*Service, string) {
	t.Helper()
	dir := t.TempDir()
	svc, err := NewService(repo, dir, maxBytes,
		auditlog.NewService(noopAuditRepo{}, zerolog.Nop()), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	return svc, dir
}

func TestSaveStoresFileAndMetadata(t *testing.T) {
	repo := newMockRepo()
	svc, dir := newTestService(t, repo, 1<<20)

	body := pdfBytes(2048)
	doc, err := svc.Save(context.Background(), Upload{
		FileName: "consent form.pdf",
		Size:     int64(len(body)),
		Reader:   bytes.NewReader(body),
	}, "uploader")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if doc.SizeBytes != int64(len(body)) {
		t.Errorf("SizeBytes = %d, want %d", doc.SizeBytes, len(body))
	}
	if !strings.HasSuffix(doc.StoredName, ".pdf") || doc.StoredName == doc.FileName {
		t.Errorf("stored name %q must be generated, not the client name", doc.StoredName)
	}

	stored, err := os.ReadFile(filepath.Join(dir, doc.StoredName))
	if err != nil {
		t.Fatalf("stored file missing: %v", err)
	}
	if !bytes.Equal(stored, body) {
		t.Error("stored bytes differ from upload")
	}
}

func TestSaveRejectsNonPDF(t *testing.T) {
	repo := newMockRepo()
	svc, dir := newTestService(t, repo, 1<<20)

	_, err := svc.Save(context.Background(), Upload{
		FileName: "notes.txt",
		Size:     10,
		Reader:   strings.NewReader("plain text"),
	}, "uploader")
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("err = %v, want ErrUnsupportedType", err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Error("rejected upload must leave no file behind")
	}
}

func TestSaveRejectsOversizedUpload(t *testing.T) {
	repo := newMockRepo()
	svc, _ := newTestService(t, repo, 1024)

	body := pdfBytes(4096)
	_, err := svc.Save(context.Background(), Upload{
		FileName: "big.pdf",
		Size:     int64(len(body)),
		Reader:   bytes.NewReader(body),
	}, "uploader")
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("err = %v, want ErrTooLarge", err)
	}

	// A client lying about the size must still be caught.
	_, err = svc.Save(context.Background(), Upload{
		FileName: "big.pdf",
		Size:     100,
		Reader:   bytes.NewReader(body),
	}, "uploader")
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("err = %v, want ErrTooLarge for understated size", err)
	}
}

func TestSaveRemovesFileWhenInsertFails(t *testing.T) {
	repo := newMockRepo()
	repo.failInsert = true
	svc, dir := newTestService(t, repo, 1<<20)

	body := pdfBytes(512)
	_, err := svc.Save(context.Background(), Upload{
		FileName: "orphan.pdf",
		Size:     int64(len(body)),
		Reader:   bytes.NewReader(body),
	}, "uploader")
	if err == nil {
		t.Fatal("expected insert failure")
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Error("file must be removed when metadata insert fails")
	}
}

func TestDeleteRemovesFileAndRow(t *testing.T) {
	repo := newMockRepo()
	svc, dir := newTestService(t, repo, 1<<20)

	body := pdfBytes(512)
	doc, err := svc.Save(context.Background(), Upload{
		FileName: "gone.pdf",
		Size:     int64(len(body)),
		Reader:   bytes.NewReader(body),
	}, "uploader")
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.Delete(context.Background(), doc.ID, "uploader"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, doc.StoredName)); !os.IsNotExist(err) {
		t.Error("stored file must be gone after delete")
	}
	if _, err := repo.GetByID(context.Background(), doc.ID); !errors.Is(err, ErrNotFound) {
		t.Error("metadata row must be gone after delete")
	}
}
