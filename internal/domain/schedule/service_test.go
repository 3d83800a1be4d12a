package schedule

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hearcare/hearcare/internal/domain/auditlog"
	"github.com/hearcare/hearcare/internal/domain/location"
	"github.com/hearcare/hearcare/internal/platform/sms"
)

type mockRepo struct {
	schedules  map[uuid.UUID]*Schedule
	recipients []*Recipient
}

func newMockRepo() *mockRepo {
	return &mockRepo{schedules: make(map[uuid.UUID]*Schedule)}
}

func (m *mockRepo) Create(ctx context.Context, s *Schedule) error {
	s.ID = uuid.New()
	m.schedules[s.ID] = s
	return nil
}

func (m *mockRepo) GetByID(ctx context.Context, id uuid.UUID) (*Schedule, error) {
	s, ok := m.schedules[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

func (m *mockRepo) List(ctx context.Context, limit, offset int) ([]*Schedule, int, error) {
	var out []*Schedule
	for _, s := range m.schedules {
		out = append(out, s)
	}
	return out, len(out), nil
}

func (m *mockRepo) Update(ctx context.Context, s *Schedule) error {
	if _, ok := m.schedules[s.ID]; !ok {
		return ErrNotFound
	}
	m.schedules[s.ID] = s
	return nil
}

func (m *mockRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.schedules[id]; !ok {
		return ErrNotFound
	}
	delete(m.schedules, id)
	return nil
}

func (m *mockRepo) ListRecipients(ctx context.Context, locationID uuid.UUID) ([]*Recipient, error) {
	return m.recipients, nil
}

type mockLocations struct {
	loc *location.Location
}

func (m *mockLocations) Get(ctx context.Context, id uuid.UUID) (*location.Location, error) {
	if m.loc == nil {
		return nil, location.ErrNotFound
	}
	return m.loc, nil
}

// flakySender fails for the numbers listed in failFor.
type flakySender struct {
	sent    []sms.SendCall
	failFor map[string]bool
}

func (f *flakySender) Send(_ context.Context, to, content string) error {
	if f.failFor[to] {
		return errors.New("gateway rejected")
	}
	f.sent = append(f.sent, sms.SendCall{To: to, Content: content})
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

func newTestService(repo *mockRepo, sender sms.Sender) *Service {
	locs := &mockLocations{loc: &location.Location{
		ID: uuid.New(), Name: "Kigali Clinic", City: "Kigali", Country: "Rwanda",
	}}
	return NewService(repo, locs, sender, sms.NewTemplateEngine(),
		auditlog.NewService(noopAuditRepo{}, zerolog.Nop()), zerolog.Nop())
}

func seedSchedule(repo *mockRepo) *Schedule {
	s := &Schedule{
		ID:         uuid.New(),
		Title:      "August mission",
		LocationID: uuid.New(),
		Phase:      2,
		StartDate:  time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC),
	}
	repo.schedules[s.ID] = s
	return s
}

func TestNotifySendsRenderedTemplate(t *testing.T) {
	repo := newMockRepo()
	repo.recipients = []*Recipient{
		{PatientID: uuid.New(), FullName: "Amina Uwase", Phone: "+250780000001"},
	}
	sender := &flakySender{}
	svc := newTestService(repo, sender)
	sched := seedSchedule(repo)

	result, err := svc.Notify(context.Background(), sched.ID, "coordinator")
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if result.Sent != 1 || result.Failed != 0 {
		t.Fatalf("result = %+v, want one sent", result)
	}
	body := sender.sent[0].Content
	for _, want := range []string{"Amina Uwase", "Kigali Clinic", "20 Aug 2026", "phase 2"} {
		if !strings.Contains(body, want) {
			t.Errorf("notice body missing %q: %s", want, body)
		}
	}
}

func TestNotifyContinuesPastFailedRecipients(t *testing.T) {
	repo := newMockRepo()
	repo.recipients = []*Recipient{
		{PatientID: uuid.New(), FullName: "A", Phone: "+250780000001"},
		{PatientID: uuid.New(), FullName: "B", Phone: "+250780000002"},
		{PatientID: uuid.New(), FullName: "C", Phone: ""},
	}
	sender := &flakySender{failFor: map[string]bool{"+250780000002": true}}
	svc := newTestService(repo, sender)
	sched := seedSchedule(repo)

	result, err := svc.Notify(context.Background(), sched.ID, "coordinator")
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if result.Recipients != 3 || result.Sent != 1 || result.Failed != 1 || result.NoPhone != 1 {
		t.Errorf("result = %+v, want 3 recipients / 1 sent / 1 failed / 1 no-phone", result)
	}
}

func TestNotifyRejectsEmptyLocation(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, &flakySender{})
	sched := seedSchedule(repo)

	_, err := svc.Notify(context.Background(), sched.ID, "coordinator")
	if !errors.Is(err, ErrNoRecipients) {
		t.Errorf("err = %v, want ErrNoRecipients", err)
	}
}

func TestCreateValidatesDates(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, &flakySender{})

	start := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, -1)
	err := svc.Create(context.Background(), &Schedule{
		Title:      "Backwards mission",
		LocationID: uuid.New(),
		Phase:      1,
		StartDate:  start,
		EndDate:    &end,
	}, "coordinator")
	if err == nil {
		t.Fatal("expected error for end_date before start_date")
	}

	err = svc.Create(context.Background(), &Schedule{
		Title:      "No phase",
		LocationID: uuid.New(),
		Phase:      5,
		StartDate:  start,
	}, "coordinator")
	if err == nil {
		t.Fatal("expected error for out-of-range phase")
	}
}

func TestUpdatePreservesCreator(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, &flakySender{})
	sched := seedSchedule(repo)
	sched.CreatedBy = "original-user"

	updated := *sched
	updated.Title = "Renamed mission"
	updated.CreatedBy = "someone-else"
	if err := svc.Update(context.Background(), &updated, "editor"); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.CreatedBy != "original-user" {
		t.Errorf("CreatedBy = %q, want original creator kept", updated.CreatedBy)
	}
}
