package phase2

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
	tableRows     []*FittingTableRow
	fittings      []*Fitting
	counselings   []*Counseling
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

func (m *mockRepo) CreateFittingTableRows(ctx context.Context, rows []*FittingTableRow) error {
	for _, row := range rows {
		row.ID = uuid.New()
	}
	m.tableRows = append(m.tableRows, rows...)
	return nil
}

func (m *mockRepo) ListFittingTableRows(ctx context.Context, patientID uuid.UUID) ([]*FittingTableRow, error) {
	return m.tableRows, nil
}

func (m *mockRepo) CreateFitting(ctx context.Context, f *Fitting) error {
	f.ID = uuid.New()
	m.fittings = append(m.fittings, f)
	return nil
}

func (m *mockRepo) ListFittings(ctx context.Context, patientID uuid.UUID) ([]*Fitting, error) {
	return m.fittings, nil
}

func (m *mockRepo) CreateCounseling(ctx context.Context, cs *Counseling) error {
	cs.ID = uuid.New()
	m.counselings = append(m.counselings, cs)
	return nil
}

func (m *mockRepo) ListCounselings(ctx context.Context, patientID uuid.UUID) ([]*Counseling, error) {
	return m.counselings, nil
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

type deduction struct {
	itemCode string
	quantity int
	policy   inventory.Policy
}

type mockDeducter struct {
	calls   []deduction
	failOn  string
}

func (m *mockDeducter) Deduct(ctx context.Context, itemCode string, quantity int, actorID, notes string,
	meta inventory.Meta, policy inventory.Policy) error {
	m.calls = append(m.calls, deduction{itemCode: itemCode, quantity: quantity, policy: policy})
	if m.failOn == itemCode {
		return inventory.ErrInsufficientStock
	}
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

// trackingTx mimics transactional rollback for the mock repo: on error the
// fittings created inside fn are discarded.
func newTestService(repo *mockRepo, resolver RegistrationResolver, stock StockDeducter) *Service {
	return &Service{
		repo:     repo,
		resolver: resolver,
		stock:    stock,
		audit:    auditlog.NewService(noopAuditRepo{}, zerolog.Nop()),
		runTx: func(ctx context.Context, fn func(context.Context) error) error {
			before := len(repo.fittings)
			if err := fn(ctx); err != nil {
				repo.fittings = repo.fittings[:before]
				return err
			}
			return nil
		},
	}
}

func TestAddFittingDeductsDeviceAndBatteries(t *testing.T) {
	repo := newMockRepo()
	stock := &mockDeducter{}
	svc := newTestService(repo, &mockResolver{}, stock)

	f := &Fitting{
		PatientID:       uuid.New(),
		FittingDate:     time.Now(),
		FittedCode:      earcode.Both,
		DeviceItemCode:  "HA-STD",
		BatteryItemCode: "BAT-312",
		BatteryPacks:    2,
	}
	if err := svc.AddFitting(context.Background(), f); err != nil {
		t.Fatalf("AddFitting: %v", err)
	}
	if len(stock.calls) != 2 {
		t.Fatalf("expected 2 deductions, got %d", len(stock.calls))
	}
	if stock.calls[0].itemCode != "HA-STD" || stock.calls[0].quantity != 2 {
		t.Errorf("expected 2 devices deducted, got %+v", stock.calls[0])
	}
	if stock.calls[0].policy != inventory.PolicyRequired {
		t.Errorf("device deduction must be required, got %v", stock.calls[0].policy)
	}
	if stock.calls[1].itemCode != "BAT-312" || stock.calls[1].quantity != 2 {
		t.Errorf("expected 2 battery packs deducted, got %+v", stock.calls[1])
	}
}

func TestAddFittingRollsBackOnEmptyStock(t *testing.T) {
	repo := newMockRepo()
	stock := &mockDeducter{failOn: "HA-STD"}
	svc := newTestService(repo, &mockResolver{}, stock)

	f := &Fitting{
		PatientID:      uuid.New(),
		FittedCode:     earcode.Left,
		DeviceItemCode: "HA-STD",
	}
	err := svc.AddFitting(context.Background(), f)
	if !errors.Is(err, inventory.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	if len(repo.fittings) != 0 {
		t.Fatalf("fitting must not survive a failed device deduction, got %d rows", len(repo.fittings))
	}
}

func TestAddFittingValidation(t *testing.T) {
	svc := newTestService(newMockRepo(), &mockResolver{}, &mockDeducter{})

	cases := []struct {
		name string
		f    *Fitting
	}{
		{"no ears", &Fitting{PatientID: uuid.New(), DeviceItemCode: "HA-STD"}},
		{"no device", &Fitting{PatientID: uuid.New(), FittedCode: earcode.Left}},
		{"negative packs", &Fitting{PatientID: uuid.New(), FittedCode: earcode.Left,
			DeviceItemCode: "HA-STD", BatteryPacks: -1}},
		{"packs without item", &Fitting{PatientID: uuid.New(), FittedCode: earcode.Left,
			DeviceItemCode: "HA-STD", BatteryPacks: 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := svc.AddFitting(context.Background(), tc.f); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestAddFittingTableRowsValidatesEarAndFrequency(t *testing.T) {
	svc := newTestService(newMockRepo(), &mockResolver{}, &mockDeducter{})
	patientID := uuid.New()

	err := svc.AddFittingTableRows(context.Background(), patientID, nil, []*FittingTableRow{
		{Ear: "middle", FrequencyHz: 1000, ThresholdDB: 40},
	})
	if err == nil {
		t.Fatal("expected error for invalid ear")
	}

	err = svc.AddFittingTableRows(context.Background(), patientID, nil, []*FittingTableRow{
		{Ear: "left", FrequencyHz: 0, ThresholdDB: 40},
	})
	if err == nil {
		t.Fatal("expected error for invalid frequency")
	}

	if err := svc.AddFittingTableRows(context.Background(), patientID, nil, nil); err == nil {
		t.Fatal("expected error for empty batch")
	}
}

func TestAddFittingTableRowsStampsPatientAndRegistration(t *testing.T) {
	repo := newMockRepo()
	regID := uuid.New()
	svc := newTestService(repo, &mockResolver{id: &regID}, &mockDeducter{})
	patientID := uuid.New()

	rows := []*FittingTableRow{
		{Ear: "left", FrequencyHz: 500, ThresholdDB: 35},
		{Ear: "right", FrequencyHz: 2000, ThresholdDB: 60},
	}
	if err := svc.AddFittingTableRows(context.Background(), patientID, nil, rows); err != nil {
		t.Fatalf("AddFittingTableRows: %v", err)
	}
	for i, row := range rows {
		if row.PatientID != patientID {
			t.Errorf("row %d missing patient id", i)
		}
		if row.RegistrationID == nil || *row.RegistrationID != regID {
			t.Errorf("row %d not linked to resolved registration", i)
		}
	}
}
