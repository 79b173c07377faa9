package report

import (
	"strconv"
	"strings"
	"time"
)

// Excel serial day 0 is 1899-12-30 for the 1900 date system.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
	"2006-01-02 15:04:05",
	"02/01/2006 15:04:05",
	"2 January 2006",
}

// Indonesian month names as they appear in workbook date cells.
var indonesianMonths = map[string]time.Month{
	"januari": time.January, "februari": time.February, "maret": time.March,
	"april": time.April, "mei": time.May, "juni": time.June,
	"juli": time.July, "agustus": time.August, "september": time.September,
	"oktober": time.October, "november": time.November, "desember": time.December,
}

// parseDate accepts spreadsheet serial numbers and the locale date strings
// observed across workbook revisions. The result is truncated to the day.
func parseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}

	// Serial number: unstyled date cells surface as the raw day count.
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if serial < 1 || serial > 200000 {
			return time.Time{}, false
		}
		t := excelEpoch.Add(time.Duration(serial*24) * time.Hour)
		return truncateDay(t), true
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return truncateDay(t), true
		}
	}

	if t, ok := parseIndonesianDate(s); ok {
		return t, true
	}

	return time.Time{}, false
}

// parseIndonesianDate handles "2 Agustus 2025" and "02 Mei 2025" forms.
func parseIndonesianDate(s string) (time.Time, bool) {
	fields := strings.Fields(strings.ToLower(s))
	if len(fields) != 3 {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(fields[0])
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, false
	}
	month, ok := indonesianMonths[fields[1]]
	if !ok {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(fields[2])
	if err != nil || year < 1990 || year > 2200 {
		return time.Time{}, false
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), true
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// parseNumber accepts either "." or "," as decimal separator, tolerating the
// opposite character as a thousands separator: "1.234,56" and "1,234.56" both
// yield 1234.56. Blank cells coerce to the zero default.
func parseNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, true
	}
	s = strings.ReplaceAll(s, " ", "")

	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		// The rightmost separator is the decimal point.
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	case lastDot >= 0 && strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s, ".", "")
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// coerce converts one raw cell into the field's target type. The boolean
// reports whether the value was usable; blanks fall back to the kind's
// declared default and still count as usable for optional fields.
func coerce(f Field, raw string) (any, bool) {
	s := strings.TrimSpace(raw)

	switch f.Kind {
	case KindDate:
		t, ok := parseDate(s)
		if !ok {
			if f.Required {
				return nil, false
			}
			return nil, true
		}
		return t, true
	case KindFloat:
		v, ok := parseNumber(s)
		if !ok {
			return float64(0), !f.Required
		}
		return v, true
	case KindInt:
		v, ok := parseNumber(s)
		if !ok {
			return 0, !f.Required
		}
		return int(v), true
	case KindTimeRange, KindString:
		if s == "" && f.Required {
			return nil, false
		}
		return s, true
	default:
		return nil, false
	}
}

// formatCell renders a normalized value back into a display cell for exports.
func formatCell(v any) any {
	switch t := v.(type) {
	case nil:
		return ""
	case time.Time:
		return t.Format("2006-01-02")
	case *time.Time:
		if t == nil {
			return ""
		}
		return t.Format("2006-01-02")
	default:
		return v
	}
}
