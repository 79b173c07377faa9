package report

import (
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestFilterInclusiveEndpoints(t *testing.T) {
	rows := []Row{
		{"date": day(2025, time.July, 31), "shift": "1"},
		{"date": day(2025, time.August, 1), "shift": "1"},
		{"date": day(2025, time.August, 15), "shift": "2"},
		{"date": day(2025, time.August, 31), "shift": "1"},
		{"date": day(2025, time.September, 1), "shift": "1"},
	}

	got := Filter(rows, "date", day(2025, time.August, 1), day(2025, time.August, 31), "")
	if len(got) != 3 {
		t.Fatalf("rows = %d, want 3 (both endpoints inclusive)", len(got))
	}
	if !got[0]["date"].(time.Time).Equal(day(2025, time.August, 1)) {
		t.Fatalf("first row = %v", got[0]["date"])
	}
	if !got[2]["date"].(time.Time).Equal(day(2025, time.August, 31)) {
		t.Fatalf("last row = %v", got[2]["date"])
	}
}

func TestFilterShiftSelection(t *testing.T) {
	rows := []Row{
		{"date": day(2025, time.August, 1), "shift": "1"},
		{"date": day(2025, time.August, 1), "shift": "2"},
		{"date": day(2025, time.August, 2), "shift": "1"},
	}
	from, to := day(2025, time.August, 1), day(2025, time.August, 2)

	cases := []struct {
		shift string
		want  int
	}{
		{"", 3},
		{ShiftAll, 3},
		{"ALL", 3},
		{"1", 2},
		{"2", 1},
		{"3", 0},
	}
	for _, c := range cases {
		if got := Filter(rows, "date", from, to, c.shift); len(got) != c.want {
			t.Fatalf("shift %q: rows = %d, want %d", c.shift, len(got), c.want)
		}
	}
}

func TestFilterRenamedRows(t *testing.T) {
	// Frames that already carry display keys still filter on shift.
	rows := Rename([]Row{
		{"date": day(2025, time.August, 1), "shift": "1"},
		{"date": day(2025, time.August, 1), "shift": "2"},
	})

	got := Filter(rows, "Date", day(2025, time.August, 1), day(2025, time.August, 1), "2")
	if len(got) != 1 {
		t.Fatalf("rows = %d, want 1", len(got))
	}
}

func TestFilterTruncatesTimestamps(t *testing.T) {
	rows := []Row{
		{"date": time.Date(2025, time.August, 1, 23, 59, 0, 0, time.UTC)},
	}
	got := Filter(rows, "date", day(2025, time.August, 1), day(2025, time.August, 1), "")
	if len(got) != 1 {
		t.Fatalf("timestamped row outside its own day")
	}
}

func TestRename(t *testing.T) {
	in := []Row{
		{"tanggal": day(2025, time.August, 1), "ap_ls_mk3": 120.5, "pic": "Budi", "custom": "x"},
	}
	out := Rename(in)

	if len(out) != 1 {
		t.Fatalf("rows = %d", len(out))
	}
	r := out[0]
	if _, ok := r["Tanggal"]; !ok {
		t.Fatal("tanggal not renamed")
	}
	if r["AP LS MK3"] != 120.5 {
		t.Fatalf("ap_ls_mk3 = %v", r["AP LS MK3"])
	}
	if r["PIC"] != "Budi" {
		t.Fatalf("pic = %v", r["PIC"])
	}
	// Unknown fields pass through unchanged.
	if r["custom"] != "x" {
		t.Fatalf("custom = %v", r["custom"])
	}
	// Input rows stay untouched.
	if _, ok := in[0]["tanggal"]; !ok {
		t.Fatal("Rename mutated its input")
	}
}

func TestDateRange(t *testing.T) {
	rows := []Row{
		{"date": day(2025, time.August, 10)},
		{"date": day(2025, time.August, 2)},
		{"date": day(2025, time.August, 25)},
		{"note": "no date"},
	}
	min, max, ok := DateRange(rows, "date")
	if !ok {
		t.Fatal("range not found")
	}
	if !min.Equal(day(2025, time.August, 2)) || !max.Equal(day(2025, time.August, 25)) {
		t.Fatalf("range = %v..%v", min, max)
	}

	if _, _, ok := DateRange(nil, "date"); ok {
		t.Fatal("empty input reported a range")
	}
}
