package reports

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) PatientReport(ctx context.Context, f Filter) ([]*PatientRow, error) {
	return s.repo.PatientRows(ctx, f)
}

func (s *Service) InventoryReport(ctx context.Context, f Filter) ([]*InventoryRow, error) {
	return s.repo.InventoryRows(ctx, f)
}

const (
	sheetPatients  = "Patients"
	sheetInventory = "Inventory"
)

var patientHeader = []string{"SHF ID", "First Name", "Last Name", "Gender",
	"Date of Birth", "Status", "Location", "Current Phase", "Phase Status", "Registered"}

var inventoryHeader = []string{"Item Code", "Item Name", "Received",
	"Distributed", "Adjusted", "Current Stock"}

// Export renders both reports into a single workbook and returns the
// serialized .xlsx bytes.
func (s *Service) Export(ctx context.Context, f Filter) (*bytes.Buffer, error) {
	patients, err := s.repo.PatientRows(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("patient rows: %w", err)
	}
	items, err := s.repo.InventoryRows(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("inventory rows: %w", err)
	}

	x := excelize.NewFile()
	defer x.Close()

	x.SetSheetName("Sheet1", sheetPatients)
	if _, err := x.NewSheet(sheetInventory); err != nil {
		return nil, err
	}

	if err := writeRow(x, sheetPatients, 1, toCells(patientHeader)); err != nil {
		return nil, err
	}
	for i, p := range patients {
		cells := []interface{}{
			p.SHFID, p.FirstName, p.LastName, p.Gender,
			formatDate(p.DateOfBirth), p.Status, p.Location,
			p.CurrentPhase, p.PhaseStatus, p.RegisteredAt.Format("2006-01-02"),
		}
		if err := writeRow(x, sheetPatients, i+2, cells); err != nil {
			return nil, err
		}
	}

	if err := writeRow(x, sheetInventory, 1, toCells(inventoryHeader)); err != nil {
		return nil, err
	}
	for i, item := range items {
		cells := []interface{}{
			item.ItemCode, item.ItemName, item.Received,
			item.Distributed, item.Adjusted, item.CurrentStock,
		}
		if err := writeRow(x, sheetInventory, i+2, cells); err != nil {
			return nil, err
		}
	}

	return x.WriteToBuffer()
}

func writeRow(x *excelize.File, sheet string, row int, cells []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return x.SetSheetRow(sheet, cell, &cells)
}

func toCells(header []string) []interface{} {
	cells := make([]interface{}, len(header))
	for i, h := range header {
		cells[i] = h
	}
	return cells
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
