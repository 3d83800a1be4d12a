package phase3

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hearcare/hearcare/internal/domain/auditlog"
	"github.com/hearcare/hearcare/internal/domain/inventory"
)

type mockRepo struct {
	registrations map[uuid.UUID]*Registration
	assessments   []*AftercareAssessment
	dispenses     []*BatteryDispense
	qcs           []*FinalQC
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
	return nil, nil
}

func (m *mockRepo) CreateAssessment(ctx context.Context, a *AftercareAssessment) error {
	a.ID = uuid.New()
	m.assessments = append(m.assessments, a)
	return nil
}

func (m *mockRepo) ListAssessments(ctx context.Context, patientID uuid.UUID) ([]*AftercareAssessment, error) {
	return m.assessments, nil
}

func (m *mockRepo) CreateBatteryDispense(ctx context.Context, d *BatteryDispense) error {
	d.ID = uuid.New()
	m.dispenses = append(m.dispenses, d)
	return nil
}

func (m *mockRepo) ListBatteryDispenses(ctx context.Context, patientID uuid.UUID) ([]*BatteryDispense, error) {
	return m.dispenses, nil
}

func (m *mockRepo) CreateFinalQC(ctx context.Context, qc *FinalQC) error {
	qc.ID = uuid.New()
	m.qcs = append(m.qcs, qc)
	return nil
}

func (m *mockRepo) ListFinalQCs(ctx context.Context, patientID uuid.UUID) ([]*FinalQC, error) {
	return m.qcs, nil
}

type mockResolver struct {
	id *uuid.UUID
}

func (m *mockResolver) Resolve(ctx context.Context, phase int, patientID uuid.UUID, providedID *uuid.UUID) (*uuid.UUID, error) {
	if providedID != nil {
		return providedID, nil
	}
	return m.id, nil
}

type mockDeducter struct {
	calls int
	err   error
}

func (m *mockDeducter) Deduct(ctx context.Context, itemCode string, quantity int, actorID, notes string,
	meta inventory.Meta, policy inventory.Policy) error {
	m.calls++
	return m.err
}

type noopAuditRepo struct{}

func (noopAuditRepo) Insert(ctx context.Context, e *auditlog.Entry) error { return nil }
func (noopAuditRepo) List(ctx context.Context, table string, limit, offset int) ([]*auditlog.Entry, int, error) {
	return nil, 0, nil
}
func (noopAuditRepo) ListByRecord(ctx context.Context, table, recordID string, limit, offset int) ([]*auditlog.Entry, int, error) {
	return nil, 0, nil
}

func newTestService(repo *mockRepo, resolver RegistrationResolver, stock StockDeducter) *Service {
	return &Service{
		repo:     repo,
		resolver: resolver,
		stock:    stock,
		audit:    auditlog.NewService(noopAuditRepo{}, zerolog.Nop()),
		runTx: func(ctx context.Context, fn func(context.Context) error) error {
			before := len(repo.dispenses)
			if err := fn(ctx); err != nil {
				repo.dispenses = repo.dispenses[:before]
				return err
			}
			return nil
		},
	}
}

func TestDispenseBatteriesDeductsStock(t *testing.T) {
	repo := newMockRepo()
	stock := &mockDeducter{}
	svc := newTestService(repo, &mockResolver{}, stock)

	d := &BatteryDispense{
		PatientID:    uuid.New(),
		DispenseDate: time.Now(),
		ItemCode:     "BAT-312",
		Packs:        3,
	}
	if err := svc.DispenseBatteries(context.Background(), d); err != nil {
		t.Fatalf("DispenseBatteries: %v", err)
	}
	if stock.calls != 1 {
		t.Fatalf("expected 1 deduction, got %d", stock.calls)
	}
	if len(repo.dispenses) != 1 {
		t.Fatalf("expected dispense row, got %d", len(repo.dispenses))
	}
}

func TestDispenseBatteriesRollsBackOnEmptyStock(t *testing.T) {
	repo := newMockRepo()
	stock := &mockDeducter{err: inventory.ErrInsufficientStock}
	svc := newTestService(repo, &mockResolver{}, stock)

	d := &BatteryDispense{PatientID: uuid.New(), ItemCode: "BAT-312", Packs: 1}
	err := svc.DispenseBatteries(context.Background(), d)
	if !errors.Is(err, inventory.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	if len(repo.dispenses) != 0 {
		t.Fatal("dispense row must not survive a failed deduction")
	}
}

func TestDispenseBatteriesValidation(t *testing.T) {
	svc := newTestService(newMockRepo(), &mockResolver{}, &mockDeducter{})

	if err := svc.DispenseBatteries(context.Background(),
		&BatteryDispense{PatientID: uuid.New(), Packs: 1}); err == nil {
		t.Fatal("expected error for missing item code")
	}
	if err := svc.DispenseBatteries(context.Background(),
		&BatteryDispense{PatientID: uuid.New(), ItemCode: "BAT-312", Packs: 0}); err == nil {
		t.Fatal("expected error for zero packs")
	}
}

func TestAddAssessmentLinksRegistration(t *testing.T) {
	repo := newMockRepo()
	regID := uuid.New()
	svc := newTestService(repo, &mockResolver{id: &regID}, &mockDeducter{})

	a := &AftercareAssessment{PatientID: uuid.New(), VisitDate: time.Now()}
	if err := svc.AddAssessment(context.Background(), a); err != nil {
		t.Fatalf("AddAssessment: %v", err)
	}
	if a.RegistrationID == nil || *a.RegistrationID != regID {
		t.Errorf("expected assessment linked to %s, got %v", regID, a.RegistrationID)
	}
}
