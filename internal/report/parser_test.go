package report

import (
	"errors"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

// buildWorkbook creates an xlsx with one named sheet filled row by row.
func buildWorkbook(t *testing.T, sheet string, rows [][]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet(sheet); err != nil {
		t.Fatal(err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatal(err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestParseProductionWorkbook(t *testing.T) {
	data := buildWorkbook(t, "Produksi 2025", [][]any{
		{"LAPORAN PRODUKSI TAMBANG"},
		{},
		{"Tanggal", "Shift", "Dump Truck", "Jam", "Blok", "Front", "Commodity", "Excavator", "Dumping Location", "Rit", "Tonase"},
		{"01/08/2025", "1", "DT-01", "07:30", "B1", "F2", "Limestone", "EX-03", "Crusher", "4", "1.234,56"},
		{"01/08/2025", "2", "DT-02", "19:15", "B1", "F2", "Limestone", "EX-03", "Crusher", "3", "980,4"},
		{"", "1", "DT-03", "08:00", "B2", "F1", "Silika", "EX-01", "ROM", "2", "500"},
	})

	res, err := NewParser(DocProduction).Parse(data, "2025")
	if err != nil {
		t.Fatal(err)
	}

	if res.Sheet != "Produksi 2025" {
		t.Fatalf("sheet = %q", res.Sheet)
	}
	if len(res.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(res.Rows))
	}
	if res.Skipped != 1 {
		t.Fatalf("skipped = %d, want 1 (row without date)", res.Skipped)
	}

	first := res.Rows[0]
	wantDate := time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC)
	if d, _ := first["date"].(time.Time); !d.Equal(wantDate) {
		t.Fatalf("date = %v, want %v", first["date"], wantDate)
	}
	if first["dump_truck"] != "DT-01" {
		t.Fatalf("dump_truck = %v", first["dump_truck"])
	}
	if first["tonnase"] != 1234.56 {
		t.Fatalf("tonnase = %v, want 1234.56 (comma-decimal locale)", first["tonnase"])
	}
	if first["rit"] != 4 {
		t.Fatalf("rit = %v, want 4", first["rit"])
	}

	// Sheet order is preserved.
	if second := res.Rows[1]; second["dump_truck"] != "DT-02" {
		t.Fatalf("row order not preserved: %v", second["dump_truck"])
	}
}

func TestParseHeaderDrift(t *testing.T) {
	// An older workbook revision with renamed and reordered columns.
	data := buildWorkbook(t, "Produksi 2024", [][]any{
		{"Rit", "Date", "DT", "Shift"},
		{"5", "2024-03-10", "DT-09", "1"},
	})

	res, err := NewParser(DocProduction).Parse(data, "2024")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(res.Rows))
	}
	row := res.Rows[0]
	if row["dump_truck"] != "DT-09" {
		t.Fatalf("aliased DT column not resolved: %v", row["dump_truck"])
	}
	if row["rit"] != 5 {
		t.Fatalf("rit = %v", row["rit"])
	}
	// Unmapped numeric columns default to zero rather than null.
	if row["tonnase"] != float64(0) {
		t.Fatalf("tonnase default = %v, want 0", row["tonnase"])
	}
}

func TestParseSheetNotFound(t *testing.T) {
	data := buildWorkbook(t, "Produksi 2024", [][]any{
		{"Tanggal", "Shift", "Dump Truck"},
	})

	_, err := NewParser(DocProduction).Parse(data, "2026")
	if !errors.Is(err, ErrSheetNotFound) {
		t.Fatalf("err = %v, want ErrSheetNotFound", err)
	}
}

func TestParseEmptySelectorTakesFirstSheet(t *testing.T) {
	data := buildWorkbook(t, "Sheet1", [][]any{
		{"Date", "Plan"},
		{"2025-08-01", "12000"},
	})

	res, err := NewParser(DocTarget).Parse(data, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(res.Rows))
	}
	if res.Rows[0]["plan"] != float64(12000) {
		t.Fatalf("plan = %v", res.Rows[0]["plan"])
	}
}

func TestParseDowntimeRemediationFields(t *testing.T) {
	data := buildWorkbook(t, "Breakdown 2025", [][]any{
		{"Tanggal", "Alat", "Shift", "Start", "End", "Durasi", "Problem", "Kategori", "Action", "Plan", "PIC", "Status", "Due Date"},
		{"02/08/2025", "EX-03", "1", "08:00", "10:30", "2,5", "hydraulic leak", "mechanical", "replace hose", "order spare", "Budi", "on progress", "05/08/2025"},
	})

	res, err := NewParser(DocDowntime).Parse(data, "2025")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(res.Rows))
	}
	row := res.Rows[0]
	if row["alat"] != "EX-03" {
		t.Fatalf("alat = %v", row["alat"])
	}
	if row["durasi"] != 2.5 {
		t.Fatalf("durasi = %v, want 2.5", row["durasi"])
	}
	// Workflow fields stay free text, no enforced transitions.
	if row["status"] != "on progress" {
		t.Fatalf("status = %v", row["status"])
	}
	due, ok := row["due_date"].(time.Time)
	if !ok || !due.Equal(time.Date(2025, time.August, 5, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("due_date = %v", row["due_date"])
	}
}

func TestParseStockpileTimeWindow(t *testing.T) {
	data := buildWorkbook(t, "Stockpile 2025", [][]any{
		{"Tanggal", "Jam", "Dumping", "Unit", "Shift", "Ritase"},
		{"01/08/2025", "13:00-14:00", "ROM-2", "DT-11", "2", "6"},
	})

	res, err := NewParser(DocStockpile).Parse(data, "2025")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(res.Rows))
	}
	// The hour window is a string, not a scalar time.
	if res.Rows[0]["time_range"] != "13:00-14:00" {
		t.Fatalf("time_range = %v", res.Rows[0]["time_range"])
	}
}
