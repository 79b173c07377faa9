package report

import (
	"strings"
	"time"
)

// displayNames maps internal field names to the display names contracted with
// downstream consumers. The same map applies to every document type so the
// dashboard never needs type-specific renaming.
var displayNames = map[string]string{
	"date":         "Date",
	"tanggal":      "Tanggal",
	"shift":        "Shift",
	"dump_truck":   "Dump Truck",
	"time":         "Time",
	"time_range":   "Time",
	"blok":         "Blok",
	"front":        "Front",
	"commodity":    "Commodity",
	"excavator":    "Excavator",
	"dump_loc":     "Dump Loc",
	"rit":          "Rit",
	"tonnase":      "Tonnase",
	"alat":         "Alat",
	"start_time":   "Start",
	"end_time":     "End",
	"durasi":       "Durasi",
	"problem":      "Problem",
	"category":     "Category",
	"action":       "Action",
	"plan":         "Plan",
	"pic":          "PIC",
	"status":       "Status",
	"due_date":     "Due Date",
	"dumping":      "Dumping",
	"unit":         "Unit",
	"ritase":       "Ritase",
	"ap_ls":        "AP LS",
	"ap_ls_mk3":    "AP LS MK3",
	"ap_ss":        "AP SS",
	"total_ls":     "Total LS",
	"total_ss":     "Total SS",
	"hari":         "Hari",
	"batu_kapur":   "Batu Kapur",
	"silika":       "Silika",
	"clay":         "Clay",
	"alat_support": "Alat Support",
	"grid":         "Grid",
	"rom":          "ROM",
}

// DisplayName returns the contracted display name for an internal field.
func DisplayName(field string) string {
	if n, ok := displayNames[field]; ok {
		return n
	}
	return field
}

// Rename maps every row's internal field names to display names, leaving the
// input untouched. Row order is preserved.
func Rename(rows []Row) []Row {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		nr := make(Row, len(r))
		for k, v := range r {
			nr[DisplayName(k)] = v
		}
		out = append(out, nr)
	}
	return out
}

// ShiftAll disables shift filtering when passed to Filter.
const ShiftAll = "all"

// Filter returns the rows whose date field falls inside [from, to], both
// endpoints inclusive, and whose shift matches the selection. An empty or
// "all" selection applies no shift filter. This is the single range-filter
// contract every view composes against, identical across document types.
func Filter(rows []Row, dateField string, from, to time.Time, shift string) []Row {
	from = truncateDay(from)
	to = truncateDay(to)

	shiftFilter := strings.TrimSpace(strings.ToLower(shift))
	applyShift := shiftFilter != "" && shiftFilter != ShiftAll

	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		d, ok := rowDate(r, dateField)
		if !ok {
			continue
		}
		if d.Before(from) || d.After(to) {
			continue
		}
		if applyShift && strings.TrimSpace(strings.ToLower(rowShift(r))) != shiftFilter {
			continue
		}
		out = append(out, r)
	}
	return out
}

// rowShift reads the shift value whether the row uses internal or display keys.
func rowShift(r Row) string {
	if s, ok := r["shift"].(string); ok {
		return s
	}
	s, _ := r["Shift"].(string)
	return s
}

func rowDate(r Row, field string) (time.Time, bool) {
	switch v := r[field].(type) {
	case time.Time:
		return truncateDay(v), true
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return truncateDay(*v), true
	default:
		return time.Time{}, false
	}
}

// DateRange reports the min and max natural-key date across the rows.
func DateRange(rows []Row, dateField string) (time.Time, time.Time, bool) {
	var min, max time.Time
	found := false
	for _, r := range rows {
		d, ok := rowDate(r, dateField)
		if !ok {
			continue
		}
		if !found || d.Before(min) {
			min = d
		}
		if !found || d.After(max) {
			max = d
		}
		found = true
	}
	return min, max, found
}
