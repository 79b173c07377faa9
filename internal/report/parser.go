package report

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrSheetNotFound signals that the sheet selector matched nothing. Callers
// must treat this as "no new data this cycle", not a hard failure.
var ErrSheetNotFound = errors.New("no sheet matched selector")

// Row is one normalized record keyed by canonical internal field names.
// Values are time.Time for dates, float64/int for numerics, string otherwise.
type Row map[string]any

// ParseResult carries the normalized rows plus parse diagnostics. Rows keep
// sheet order top to bottom; downstream readers rely on that to recover
// "latest entry" semantics.
type ParseResult struct {
	Rows    []Row
	Skipped int
	Sheet   string
}

// Parser turns raw workbook bytes into normalized rows for one document type.
type Parser struct {
	desc Descriptor
}

// NewParser builds a parser for the given document type.
func NewParser(dt DocType) Parser {
	return Parser{desc: DescriptorFor(dt)}
}

// Parse opens the workbook, selects the first sheet whose name contains
// sheetToken (case-insensitive; empty token selects the first sheet), locates
// the header row by alias matching, and coerces every data row. Rows missing
// a natural-key field are counted in Skipped and dropped.
func (p Parser) Parse(workbook []byte, sheetToken string) (ParseResult, error) {
	f, err := excelize.OpenReader(bytes.NewReader(workbook))
	if err != nil {
		return ParseResult{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := selectSheet(f.GetSheetList(), sheetToken)
	if sheet == "" {
		return ParseResult{}, fmt.Errorf("%w: token %q", ErrSheetNotFound, sheetToken)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return ParseResult{}, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	headerIdx, cols := p.locateHeader(rows)
	if headerIdx < 0 {
		// A sheet without a recognizable header carries no data this cycle.
		return ParseResult{Sheet: sheet}, nil
	}

	result := ParseResult{Sheet: sheet}
	for _, raw := range rows[headerIdx+1:] {
		row, ok := p.coerceRow(cols, raw)
		if !ok {
			result.Skipped++
			continue
		}
		if row != nil {
			result.Rows = append(result.Rows, row)
		}
	}
	return result, nil
}

// selectSheet picks the first sheet whose name contains the token.
func selectSheet(names []string, token string) string {
	if len(names) == 0 {
		return ""
	}
	if strings.TrimSpace(token) == "" {
		return names[0]
	}
	needle := strings.ToLower(strings.TrimSpace(token))
	for _, name := range names {
		if strings.Contains(strings.ToLower(name), needle) {
			return name
		}
	}
	return ""
}

// locateHeader scans the first HeaderScan rows and returns the index of the
// best-scoring candidate together with its resolved column map. A candidate
// must resolve every required field.
func (p Parser) locateHeader(rows [][]string) (int, map[int]int) {
	limit := p.desc.HeaderScan
	if limit <= 0 || limit > len(rows) {
		limit = len(rows)
	}

	bestIdx, bestScore := -1, -1
	for i := 0; i < limit; i++ {
		if score := p.desc.headerRowScore(rows[i]); score > bestScore {
			bestIdx, bestScore = i, score
		}
	}
	if bestIdx < 0 || bestScore < 0 {
		return -1, nil
	}
	return bestIdx, p.desc.resolveColumns(rows[bestIdx])
}

// coerceRow converts one raw sheet row. It returns (nil, true) for fully
// blank rows, (nil, false) when a required field fails coercion.
func (p Parser) coerceRow(cols map[int]int, raw []string) (Row, bool) {
	blank := true
	for _, cell := range raw {
		if strings.TrimSpace(cell) != "" {
			blank = false
			break
		}
	}
	if blank {
		return nil, true
	}

	row := make(Row, len(p.desc.Fields))
	seen := make(map[int]bool, len(cols))

	for col, fi := range cols {
		var cell string
		if col < len(raw) {
			cell = raw[col]
		}
		v, ok := coerce(p.desc.Fields[fi], cell)
		if !ok {
			return nil, false
		}
		seen[fi] = true
		if v != nil {
			row[p.desc.Fields[fi].Name] = v
		}
	}

	// Required columns absent from the row slice entirely.
	for fi, f := range p.desc.Fields {
		if f.Required && !seen[fi] {
			return nil, false
		}
		if !seen[fi] {
			if dv := defaultValue(f.Kind); dv != nil {
				row[f.Name] = dv
			}
		}
	}

	// A required date that coerced to nil means the natural key is broken.
	for _, f := range p.desc.Fields {
		if f.Required {
			if _, ok := row[f.Name]; !ok {
				return nil, false
			}
		}
	}

	return row, true
}

func defaultValue(k FieldKind) any {
	switch k {
	case KindFloat:
		return float64(0)
	case KindInt:
		return 0
	case KindDate:
		return nil
	default:
		return ""
	}
}
