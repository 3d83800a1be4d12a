package phase1

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hearcare/hearcare/internal/domain/auditlog"
	"github.com/hearcare/hearcare/internal/domain/inventory"
	"github.com/hearcare/hearcare/pkg/earcode"
)

type mockRepo struct {
	registrations map[uuid.UUID]*Registration
	earScreenings []*EarScreening
	hearingTests  []*HearingScreening
	impressions   []*EarImpression
	failImpression bool
}

func newMockRepo() *mockRepo {
	return &mockRepo{registrations: make(map[uuid.UUID]*Registration)}
}

func (m *mockRepo) CreateRegistration(ctx context.Context, reg *Registration) error {
	reg.ID = uuid.New()
	m.registrations[reg.ID] = reg
	return nil
}

func (m *mockRepo) GetRegistration(ctx context.Context, id uuid.UUID) (*Registration, error) {
	reg, ok := m.registrations[id]
	if !ok {
		return nil, ErrRegistrationNotFound
	}
	return reg, nil
}

func (m *mockRepo) ListRegistrations(ctx context.Context, patientID uuid.UUID) ([]*Registration, error) {
	var out []*Registration
	for _, reg := range m.registrations {
		if reg.PatientID == patientID {
			out = append(out, reg)
		}
	}
	return out, nil
}

func (m *mockRepo) UpdateRegistration(ctx context.Context, reg *Registration) error {
	if _, ok := m.registrations[reg.ID]; !ok {
		return ErrRegistrationNotFound
	}
	m.registrations[reg.ID] = reg
	return nil
}

func (m *mockRepo) CreateEarScreening(ctx context.Context, s *EarScreening) error {
	s.ID = uuid.New()
	m.earScreenings = append(m.earScreenings, s)
	return nil
}

func (m *mockRepo) ListEarScreenings(ctx context.Context, patientID uuid.UUID) ([]*EarScreening, error) {
	return m.earScreenings, nil
}

func (m *mockRepo) CreateHearingScreening(ctx context.Context, s *HearingScreening) error {
	s.ID = uuid.New()
	m.hearingTests = append(m.hearingTests, s)
	return nil
}

func (m *mockRepo) ListHearingScreenings(ctx context.Context, patientID uuid.UUID) ([]*HearingScreening, error) {
	return m.hearingTests, nil
}

func (m *mockRepo) CreateEarImpression(ctx context.Context, imp *EarImpression) error {
	if m.failImpression {
		return errors.New("insert failed")
	}
	imp.ID = uuid.New()
	m.impressions = append(m.impressions, imp)
	return nil
}

func (m *mockRepo) ListEarImpressions(ctx context.Context, patientID uuid.UUID) ([]*EarImpression, error) {
	return m.impressions, nil
}

type mockResolver struct {
	id  *uuid.UUID
	err error
}

func (m *mockResolver) Resolve(ctx context.Context, phase int, patientID uuid.UUID, providedID *uuid.UUID) (*uuid.UUID, error) {
	if providedID != nil {
		return providedID, nil
	}
	return m.id, m.err
}

type deduction struct {
	itemCode string
	quantity int
	policy   inventory.Policy
}

type mockDeducter struct {
	calls []deduction
	err   error
}

func (m *mockDeducter) Deduct(ctx context.Context, itemCode string, quantity int, actorID, notes string,
	meta inventory.Meta, policy inventory.Policy) error {
	m.calls = append(m.calls, deduction{itemCode: itemCode, quantity: quantity, policy: policy})
	if m.err != nil && policy == inventory.PolicyRequired {
		return m.err
	}
	return nil
}

func noopAudit() *auditlog.Service {
	return auditlog.NewService(noopAuditRepo{}, zerolog.Nop())
}

type noopAuditRepo struct{}

func (noopAuditRepo) Insert(ctx context.Context, e *auditlog.Entry) error { return nil }
func (noopAuditRepo) List(ctx context.Context, table string, limit, offset int) ([]*auditlog.Entry, int, error) {
	return nil, 0, nil
}
func (noopAuditRepo) ListByRecord(ctx context.Context, table, recordID string, limit, offset int) ([]*auditlog.Entry, int, error) {
	return nil, 0, nil
}

func newTestService(repo Repository, resolver RegistrationResolver, stock StockDeducter) *Service {
	return &Service{
		repo:     repo,
		resolver: resolver,
		stock:    stock,
		audit:    noopAudit(),
		runTx: func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		},
	}
}

func TestAddEarScreeningLinksResolvedRegistration(t *testing.T) {
	repo := newMockRepo()
	regID := uuid.New()
	svc := newTestService(repo, &mockResolver{id: &regID}, &mockDeducter{})

	sc := &EarScreening{
		PatientID:     uuid.New(),
		ScreeningDate: time.Now(),
		WaxCode:       earcode.Encode(true, false),
	}
	if err := svc.AddEarScreening(context.Background(), sc); err != nil {
		t.Fatalf("AddEarScreening: %v", err)
	}
	if sc.RegistrationID == nil || *sc.RegistrationID != regID {
		t.Errorf("expected screening linked to %s, got %v", regID, sc.RegistrationID)
	}
}

func TestAddEarScreeningUnlinkedWhenNoRegistration(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, &mockResolver{id: nil}, &mockDeducter{})

	sc := &EarScreening{PatientID: uuid.New(), ScreeningDate: time.Now()}
	if err := svc.AddEarScreening(context.Background(), sc); err != nil {
		t.Fatalf("AddEarScreening: %v", err)
	}
	if sc.RegistrationID != nil {
		t.Errorf("expected nil registration link, got %v", sc.RegistrationID)
	}
}

func TestAddEarImpressionDeductsPerEar(t *testing.T) {
	cases := []struct {
		name      string
		left      bool
		right     bool
		wantUnits int
	}{
		{"both ears", true, true, 2},
		{"left only", true, false, 1},
		{"right only", false, true, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newMockRepo()
			stock := &mockDeducter{}
			svc := newTestService(repo, &mockResolver{}, stock)

			imp := &EarImpression{
				PatientID:        uuid.New(),
				ImpressionDate:   time.Now(),
				ImpressionCode:   earcode.Encode(tc.left, tc.right),
				MaterialItemCode: "IMP-MAT",
			}
			if err := svc.AddEarImpression(context.Background(), imp); err != nil {
				t.Fatalf("AddEarImpression: %v", err)
			}
			if len(stock.calls) != 1 {
				t.Fatalf("expected 1 deduction, got %d", len(stock.calls))
			}
			call := stock.calls[0]
			if call.quantity != tc.wantUnits {
				t.Errorf("expected %d units, got %d", tc.wantUnits, call.quantity)
			}
			if call.policy != inventory.PolicyBestEffort {
				t.Errorf("impression material must deduct best-effort, got %v", call.policy)
			}
		})
	}
}

func TestAddEarImpressionRejectsNoEars(t *testing.T) {
	svc := newTestService(newMockRepo(), &mockResolver{}, &mockDeducter{})
	imp := &EarImpression{
		PatientID:        uuid.New(),
		ImpressionCode:   earcode.None,
		MaterialItemCode: "IMP-MAT",
	}
	if err := svc.AddEarImpression(context.Background(), imp); err == nil {
		t.Fatal("expected error when no ear selected")
	}
}

func TestAddEarImpressionSavesWhenStockEmpty(t *testing.T) {
	repo := newMockRepo()
	// Deduction errors are swallowed under best-effort.
	stock := &mockDeducter{err: inventory.ErrInsufficientStock}
	svc := newTestService(repo, &mockResolver{}, stock)

	imp := &EarImpression{
		PatientID:        uuid.New(),
		ImpressionCode:   earcode.Both,
		MaterialItemCode: "IMP-MAT",
	}
	if err := svc.AddEarImpression(context.Background(), imp); err != nil {
		t.Fatalf("expected record to save despite empty stock, got %v", err)
	}
	if len(repo.impressions) != 1 {
		t.Fatalf("expected impression row, got %d", len(repo.impressions))
	}
}

func TestAddHearingScreeningRequiresResults(t *testing.T) {
	svc := newTestService(newMockRepo(), &mockResolver{}, &mockDeducter{})
	err := svc.AddHearingScreening(context.Background(), &HearingScreening{PatientID: uuid.New()})
	if err == nil {
		t.Fatal("expected error for missing results")
	}
}
