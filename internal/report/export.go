package report

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ExportWorkbook renders rows into xlsx bytes, one sheet, header row first.
// Columns follow the document type's descriptor order under display names, so
// an export of the frame a consumer just viewed is byte-equivalent in content
// to what was on screen.
func ExportWorkbook(dt DocType, rows []Row) ([]byte, error) {
	desc := DescriptorFor(dt)
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	header := make([]any, 0, len(desc.Fields))
	for _, field := range desc.Fields {
		header = append(header, DisplayName(field.Name))
	}
	if err := writeRow(f, sheet, 1, header); err != nil {
		return nil, err
	}

	for i, r := range rows {
		cells := make([]any, 0, len(desc.Fields))
		for _, field := range desc.Fields {
			v, ok := r[field.Name]
			if !ok {
				// Renamed frames carry display keys instead.
				v = r[DisplayName(field.Name)]
			}
			cells = append(cells, formatCell(v))
		}
		if err := writeRow(f, sheet, i+2, cells); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, rowNum int, cells []any) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &cells)
}
