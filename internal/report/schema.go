package report

import "strings"

// FieldKind declares how a column's cell values are coerced.
type FieldKind int

const (
	KindString FieldKind = iota
	KindInt
	KindFloat
	KindDate
	// KindTimeRange keeps hour-window strings such as "13:00-14:00" verbatim.
	KindTimeRange
)

// Field describes one canonical column of a document type: its internal name,
// the header spellings observed across workbook revisions, the value kind and
// whether it belongs to the natural key. A row missing a required field is
// skipped, never fatal.
type Field struct {
	Name     string
	Aliases  []string
	Kind     FieldKind
	Required bool
}

// Descriptor is the per-document-type schema: which sheet to select, how deep
// to scan for the header row, and the ordered canonical field list. Field
// order is also the column order of rendered and exported frames.
type Descriptor struct {
	DocType    DocType
	SheetToken string
	HeaderScan int
	DateField  string
	Fields     []Field
}

// headerScanDefault bounds how many leading rows are probed for the header.
// Workbooks routinely put titles and merged banner cells above it.
const headerScanDefault = 10

var descriptors = map[DocType]Descriptor{
	DocProduction: {
		DocType:    DocProduction,
		HeaderScan: headerScanDefault,
		DateField:  "date",
		Fields: []Field{
			{Name: "date", Aliases: []string{"date", "tanggal", "tgl"}, Kind: KindDate, Required: true},
			{Name: "shift", Aliases: []string{"shift"}, Kind: KindString, Required: true},
			{Name: "dump_truck", Aliases: []string{"dump truck", "dumptruck", "dt", "unit dt"}, Kind: KindString, Required: true},
			{Name: "time", Aliases: []string{"time", "jam"}, Kind: KindString},
			{Name: "blok", Aliases: []string{"blok", "block"}, Kind: KindString},
			{Name: "front", Aliases: []string{"front", "front loading"}, Kind: KindString},
			{Name: "commodity", Aliases: []string{"commodity", "material"}, Kind: KindString},
			{Name: "excavator", Aliases: []string{"excavator", "exca", "alat loading"}, Kind: KindString},
			{Name: "dump_loc", Aliases: []string{"dump loc", "dumping location", "disposal", "lokasi dumping"}, Kind: KindString},
			{Name: "rit", Aliases: []string{"rit", "ritase"}, Kind: KindInt},
			{Name: "tonnase", Aliases: []string{"tonnase", "tonase", "tonnage", "ton"}, Kind: KindFloat},
		},
	},
	DocDowntime: {
		DocType:    DocDowntime,
		HeaderScan: headerScanDefault,
		DateField:  "tanggal",
		Fields: []Field{
			{Name: "tanggal", Aliases: []string{"tanggal", "date", "tgl"}, Kind: KindDate, Required: true},
			{Name: "alat", Aliases: []string{"alat", "equipment", "unit"}, Kind: KindString, Required: true},
			{Name: "shift", Aliases: []string{"shift"}, Kind: KindString},
			{Name: "start_time", Aliases: []string{"start", "jam mulai", "start time"}, Kind: KindString},
			{Name: "end_time", Aliases: []string{"end", "jam selesai", "end time", "finish"}, Kind: KindString},
			{Name: "durasi", Aliases: []string{"durasi", "duration", "total jam"}, Kind: KindFloat},
			{Name: "problem", Aliases: []string{"problem", "masalah", "keterangan"}, Kind: KindString},
			{Name: "category", Aliases: []string{"category", "kategori", "jenis"}, Kind: KindString},
			{Name: "action", Aliases: []string{"action", "tindakan", "perbaikan"}, Kind: KindString},
			{Name: "plan", Aliases: []string{"plan", "rencana"}, Kind: KindString},
			{Name: "pic", Aliases: []string{"pic", "penanggung jawab"}, Kind: KindString},
			{Name: "status", Aliases: []string{"status"}, Kind: KindString},
			{Name: "due_date", Aliases: []string{"due date", "target selesai"}, Kind: KindDate},
		},
	},
	DocStockpile: {
		DocType:    DocStockpile,
		HeaderScan: headerScanDefault,
		DateField:  "date",
		Fields: []Field{
			{Name: "date", Aliases: []string{"date", "tanggal", "tgl"}, Kind: KindDate, Required: true},
			{Name: "time_range", Aliases: []string{"time", "jam", "waktu"}, Kind: KindTimeRange, Required: true},
			{Name: "dumping", Aliases: []string{"dumping", "lokasi dumping", "dump loc"}, Kind: KindString, Required: true},
			{Name: "unit", Aliases: []string{"unit", "dump truck", "dt"}, Kind: KindString, Required: true},
			{Name: "shift", Aliases: []string{"shift"}, Kind: KindString},
			{Name: "ritase", Aliases: []string{"ritase", "rit"}, Kind: KindInt},
		},
	},
	DocShipping: {
		DocType:    DocShipping,
		HeaderScan: headerScanDefault,
		DateField:  "tanggal",
		Fields: []Field{
			{Name: "tanggal", Aliases: []string{"tanggal", "date", "tgl"}, Kind: KindDate, Required: true},
			{Name: "shift", Aliases: []string{"shift"}, Kind: KindString, Required: true},
			{Name: "ap_ls", Aliases: []string{"ap ls", "ap limestone"}, Kind: KindFloat},
			{Name: "ap_ls_mk3", Aliases: []string{"ap ls mk3", "ap limestone mk3", "mk3"}, Kind: KindFloat},
			{Name: "ap_ss", Aliases: []string{"ap ss", "ap silika"}, Kind: KindFloat},
			{Name: "total_ls", Aliases: []string{"total ls", "total limestone"}, Kind: KindFloat},
			{Name: "total_ss", Aliases: []string{"total ss", "total silika"}, Kind: KindFloat},
		},
	},
	DocDailyPlan: {
		DocType:    DocDailyPlan,
		HeaderScan: headerScanDefault,
		DateField:  "tanggal",
		Fields: []Field{
			{Name: "tanggal", Aliases: []string{"tanggal", "date", "tgl"}, Kind: KindDate, Required: true},
			{Name: "shift", Aliases: []string{"shift"}, Kind: KindString, Required: true},
			{Name: "hari", Aliases: []string{"hari", "day"}, Kind: KindString},
			{Name: "batu_kapur", Aliases: []string{"batu kapur", "limestone", "ls"}, Kind: KindFloat},
			{Name: "silika", Aliases: []string{"silika", "silica", "ss"}, Kind: KindFloat},
			{Name: "clay", Aliases: []string{"clay", "tanah liat"}, Kind: KindFloat},
			{Name: "excavator", Aliases: []string{"excavator", "exca", "alat loading"}, Kind: KindString},
			{Name: "dump_truck", Aliases: []string{"dump truck", "dt"}, Kind: KindString},
			{Name: "alat_support", Aliases: []string{"alat support", "support", "dozer"}, Kind: KindString},
			{Name: "blok", Aliases: []string{"blok", "block"}, Kind: KindString},
			{Name: "grid", Aliases: []string{"grid"}, Kind: KindString},
			{Name: "rom", Aliases: []string{"rom", "stockpile"}, Kind: KindString},
		},
	},
	DocTarget: {
		DocType:    DocTarget,
		HeaderScan: headerScanDefault,
		DateField:  "date",
		Fields: []Field{
			{Name: "date", Aliases: []string{"date", "tanggal", "tgl"}, Kind: KindDate, Required: true},
			{Name: "plan", Aliases: []string{"plan", "target", "target produksi"}, Kind: KindFloat},
		},
	},
}

// DescriptorFor returns the schema descriptor of a document type.
func DescriptorFor(dt DocType) Descriptor {
	return descriptors[dt]
}

// normalizeHeader canonicalizes a header cell for alias matching: lower case,
// trimmed, inner whitespace collapsed to single spaces.
func normalizeHeader(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(s))), " ")
}

// resolveColumns maps sheet column index -> field index via deterministic
// longest-alias match. Every header is compared against every alias; exact
// matches win over substring matches, longer aliases over shorter ones, and
// the first claimed column per field sticks.
func (d Descriptor) resolveColumns(headers []string) map[int]int {
	type claim struct {
		field int
		score int
	}

	best := make(map[int]claim)
	for col, raw := range headers {
		h := normalizeHeader(raw)
		if h == "" {
			continue
		}
		for fi, f := range d.Fields {
			for _, alias := range f.Aliases {
				var score int
				switch {
				case h == alias:
					// Exact matches rank above any substring hit.
					score = 1000 + len(alias)
				case strings.Contains(h, alias):
					score = len(alias)
				default:
					continue
				}
				if cur, ok := best[col]; !ok || score > cur.score {
					best[col] = claim{field: fi, score: score}
				}
			}
		}
	}

	taken := make(map[int]bool, len(d.Fields))
	out := make(map[int]int, len(best))
	for col := 0; col < len(headers); col++ {
		c, ok := best[col]
		if !ok || taken[c.field] {
			continue
		}
		taken[c.field] = true
		out[col] = c.field
	}
	return out
}

// headerRowScore counts how many fields a candidate header row resolves,
// returning -1 when any required field is missing.
func (d Descriptor) headerRowScore(headers []string) int {
	cols := d.resolveColumns(headers)
	matched := make(map[int]bool, len(cols))
	for _, fi := range cols {
		matched[fi] = true
	}
	for fi, f := range d.Fields {
		if f.Required && !matched[fi] {
			return -1
		}
	}
	return len(cols)
}
