package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

func TestExportWorkbookRoundTrip(t *testing.T) {
	rows := []Row{
		{
			"date": day(2025, time.August, 1), "shift": "1", "dump_truck": "DT-01",
			"time": "07:30", "rit": 4, "tonnase": 1234.56,
		},
		{
			"date": day(2025, time.August, 2), "shift": "2", "dump_truck": "DT-02",
			"rit": 3, "tonnase": 980.4,
		},
	}

	data, err := ExportWorkbook(DocProduction, rows)
	if err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	got, err := f.GetRows(sheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(got))
	}

	desc := DescriptorFor(DocProduction)
	for i, field := range desc.Fields {
		if got[0][i] != DisplayName(field.Name) {
			t.Fatalf("header[%d] = %q, want %q", i, got[0][i], DisplayName(field.Name))
		}
	}

	if got[1][0] != "2025-08-01" {
		t.Fatalf("date cell = %q", got[1][0])
	}
	if got[1][2] != "DT-01" {
		t.Fatalf("dump truck cell = %q", got[1][2])
	}
	if got[2][1] != "2" {
		t.Fatalf("shift cell = %q", got[2][1])
	}
}

func TestExportWorkbookDisplayKeys(t *testing.T) {
	// Frames coming off the serving path carry display names already.
	rows := Rename([]Row{
		{"date": day(2025, time.August, 1), "shift": "1", "dump_truck": "DT-07"},
	})

	data, err := ExportWorkbook(DocProduction, rows)
	if err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	got, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("rows = %d", len(got))
	}
	if got[1][2] != "DT-07" {
		t.Fatalf("dump truck cell = %q", got[1][2])
	}
}

func TestExportWorkbookEmpty(t *testing.T) {
	data, err := ExportWorkbook(DocTarget, nil)
	if err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	got, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("rows = %d, want header only", len(got))
	}
	if got[0][0] != "Date" || got[0][1] != "Plan" {
		t.Fatalf("header = %v", got[0])
	}
}
