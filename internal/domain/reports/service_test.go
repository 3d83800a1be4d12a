package reports

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

type mockRepo struct {
	patients  []*PatientRow
	inventory []*InventoryRow
	gotFilter Filter
}

func (m *mockRepo) PatientRows(ctx context.Context, f Filter) ([]*PatientRow, error) {
	m.gotFilter = f
	return m.patients, nil
}

func (m *mockRepo) InventoryRows(ctx context.Context, f Filter) ([]*InventoryRow, error) {
	return m.inventory, nil
}

func TestExportProducesReadableWorkbook(t *testing.T) {
	repo := &mockRepo{
		patients: []*PatientRow{{
			SHFID:        "SHF-000001",
			FirstName:    "Amina",
			LastName:     "Uwase",
			Status:       "active",
			CurrentPhase: 2,
			PhaseStatus:  "In Progress",
			RegisteredAt: time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		}},
		inventory: []*InventoryRow{{
			ItemCode:     "HA-STD",
			ItemName:     "Hearing aid, standard",
			Received:     100,
			Distributed:  42,
			CurrentStock: 58,
		}},
	}
	svc := NewService(repo)

	buf, err := svc.Export(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	x, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer x.Close()

	got, err := x.GetCellValue(sheetPatients, "A2")
	if err != nil {
		t.Fatal(err)
	}
	if got != "SHF-000001" {
		t.Errorf("patients A2 = %q, want SHF-000001", got)
	}

	got, err = x.GetCellValue(sheetInventory, "B2")
	if err != nil {
		t.Fatal(err)
	}
	if got != "Hearing aid, standard" {
		t.Errorf("inventory B2 = %q, want item name", got)
	}

	header, err := x.GetCellValue(sheetInventory, "C1")
	if err != nil {
		t.Fatal(err)
	}
	if header != "Received" {
		t.Errorf("inventory C1 = %q, want Received", header)
	}
}

func TestExportHandlesEmptyReports(t *testing.T) {
	svc := NewService(&mockRepo{})

	buf, err := svc.Export(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	x, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer x.Close()

	sheets := x.GetSheetList()
	if len(sheets) != 2 {
		t.Fatalf("sheet list = %v, want two sheets", sheets)
	}
}
