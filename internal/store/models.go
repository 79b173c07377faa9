package store

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"oresync/internal/report"
)

type productionLog struct {
	ID        int64     `gorm:"type:bigserial;primaryKey"`
	Date      time.Time `gorm:"type:date;not null;index"`
	Shift     string    `gorm:"type:text;not null"`
	DumpTruck string    `gorm:"type:text;not null"`
	Time      string    `gorm:"type:text"`
	Blok      string    `gorm:"type:text"`
	Front     string    `gorm:"type:text"`
	Commodity string    `gorm:"type:text"`
	Excavator string    `gorm:"type:text"`
	DumpLoc   string    `gorm:"type:text"`
	Rit       int       `gorm:"type:integer;not null;default:0"`
	Tonnase   float64   `gorm:"type:double precision;not null;default:0"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
}

func (productionLog) TableName() string { return "production_logs" }

type downtimeLog struct {
	ID        int64      `gorm:"type:bigserial;primaryKey"`
	Tanggal   time.Time  `gorm:"type:date;not null;index"`
	Alat      string     `gorm:"type:text;not null"`
	Shift     string     `gorm:"type:text"`
	StartTime string     `gorm:"type:text"`
	EndTime   string     `gorm:"type:text"`
	Durasi    float64    `gorm:"type:double precision;not null;default:0"`
	Problem   string     `gorm:"type:text"`
	Category  string     `gorm:"type:text"`
	Action    string     `gorm:"type:text"`
	Plan      string     `gorm:"type:text"`
	PIC       string     `gorm:"type:text"`
	Status    string     `gorm:"type:text"`
	DueDate   *time.Time `gorm:"type:date"`
	CreatedAt time.Time  `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
}

func (downtimeLog) TableName() string { return "downtime_logs" }

type stockpileLog struct {
	ID        int64     `gorm:"type:bigserial;primaryKey"`
	Date      time.Time `gorm:"type:date;not null;index"`
	TimeRange string    `gorm:"type:text;not null"`
	Dumping   string    `gorm:"type:text;not null"`
	Unit      string    `gorm:"type:text;not null"`
	Shift     string    `gorm:"type:text"`
	Ritase    int       `gorm:"type:integer;not null;default:0"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
}

func (stockpileLog) TableName() string { return "stockpile_logs" }

type shippingLog struct {
	ID        int64     `gorm:"type:bigserial;primaryKey"`
	Tanggal   time.Time `gorm:"type:date;not null;index"`
	Shift     string    `gorm:"type:text;not null"`
	ApLs      float64   `gorm:"type:double precision;not null;default:0"`
	ApLsMk3   float64   `gorm:"type:double precision;not null;default:0"`
	ApSs      float64   `gorm:"type:double precision;not null;default:0"`
	TotalLs   float64   `gorm:"type:double precision;not null;default:0"`
	TotalSs   float64   `gorm:"type:double precision;not null;default:0"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
}

func (shippingLog) TableName() string { return "shipping_logs" }

type dailyPlanLog struct {
	ID          int64     `gorm:"type:bigserial;primaryKey"`
	Tanggal     time.Time `gorm:"type:date;not null;index"`
	Shift       string    `gorm:"type:text;not null"`
	Hari        string    `gorm:"type:text"`
	BatuKapur   float64   `gorm:"type:double precision;not null;default:0"`
	Silika      float64   `gorm:"type:double precision;not null;default:0"`
	Clay        float64   `gorm:"type:double precision;not null;default:0"`
	Excavator   string    `gorm:"type:text"`
	DumpTruck   string    `gorm:"type:text"`
	AlatSupport string    `gorm:"type:text"`
	Blok        string    `gorm:"type:text"`
	Grid        string    `gorm:"type:text"`
	Rom         string    `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
}

func (dailyPlanLog) TableName() string { return "daily_plan_logs" }

type targetLog struct {
	ID        int64     `gorm:"type:bigserial;primaryKey"`
	Date      time.Time `gorm:"type:date;not null;index"`
	Plan      float64   `gorm:"type:double precision;not null;default:0"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
}

func (targetLog) TableName() string { return "target_logs" }

// RunRecord is one persisted sync attempt, serving the consumer contract's
// "last synced per document type" display.
type RunRecord struct {
	ID              uuid.UUID         `gorm:"type:uuid;primaryKey"`
	DocType         string            `gorm:"type:text;not null;index"`
	Status          string            `gorm:"type:text;not null"`
	Outcome         string            `gorm:"type:text"`
	RowsWritten     int               `gorm:"type:integer;not null;default:0"`
	RowsSkipped     int               `gorm:"type:integer;not null;default:0"`
	RangeStart      *time.Time        `gorm:"type:date"`
	RangeEnd        *time.Time        `gorm:"type:date"`
	SourceTimestamp *time.Time        `gorm:"type:timestamptz"`
	Details         datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt       time.Time         `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
}

func (RunRecord) TableName() string { return "sync_runs" }

// Accessors tolerant of missing keys; numerics default to zero by contract.

func str(r report.Row, k string) string {
	s, _ := r[k].(string)
	return s
}

func num(r report.Row, k string) float64 {
	switch v := r[k].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}

func count(r report.Row, k string) int {
	switch v := r[k].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}

func day(r report.Row, k string) time.Time {
	t, _ := r[k].(time.Time)
	return t
}

func dayPtr(r report.Row, k string) *time.Time {
	if t, ok := r[k].(time.Time); ok {
		return &t
	}
	return nil
}

func productionFromRow(r report.Row) productionLog {
	return productionLog{
		Date:      day(r, "date"),
		Shift:     str(r, "shift"),
		DumpTruck: str(r, "dump_truck"),
		Time:      str(r, "time"),
		Blok:      str(r, "blok"),
		Front:     str(r, "front"),
		Commodity: str(r, "commodity"),
		Excavator: str(r, "excavator"),
		DumpLoc:   str(r, "dump_loc"),
		Rit:       count(r, "rit"),
		Tonnase:   num(r, "tonnase"),
	}
}

func (m productionLog) toRow() report.Row {
	return report.Row{
		"date": m.Date, "shift": m.Shift, "dump_truck": m.DumpTruck,
		"time": m.Time, "blok": m.Blok, "front": m.Front,
		"commodity": m.Commodity, "excavator": m.Excavator,
		"dump_loc": m.DumpLoc, "rit": m.Rit, "tonnase": m.Tonnase,
	}
}

func downtimeFromRow(r report.Row) downtimeLog {
	return downtimeLog{
		Tanggal:   day(r, "tanggal"),
		Alat:      str(r, "alat"),
		Shift:     str(r, "shift"),
		StartTime: str(r, "start_time"),
		EndTime:   str(r, "end_time"),
		Durasi:    num(r, "durasi"),
		Problem:   str(r, "problem"),
		Category:  str(r, "category"),
		Action:    str(r, "action"),
		Plan:      str(r, "plan"),
		PIC:       str(r, "pic"),
		Status:    str(r, "status"),
		DueDate:   dayPtr(r, "due_date"),
	}
}

func (m downtimeLog) toRow() report.Row {
	row := report.Row{
		"tanggal": m.Tanggal, "alat": m.Alat, "shift": m.Shift,
		"start_time": m.StartTime, "end_time": m.EndTime, "durasi": m.Durasi,
		"problem": m.Problem, "category": m.Category, "action": m.Action,
		"plan": m.Plan, "pic": m.PIC, "status": m.Status,
	}
	if m.DueDate != nil {
		row["due_date"] = *m.DueDate
	}
	return row
}

func stockpileFromRow(r report.Row) stockpileLog {
	return stockpileLog{
		Date:      day(r, "date"),
		TimeRange: str(r, "time_range"),
		Dumping:   str(r, "dumping"),
		Unit:      str(r, "unit"),
		Shift:     str(r, "shift"),
		Ritase:    count(r, "ritase"),
	}
}

func (m stockpileLog) toRow() report.Row {
	return report.Row{
		"date": m.Date, "time_range": m.TimeRange, "dumping": m.Dumping,
		"unit": m.Unit, "shift": m.Shift, "ritase": m.Ritase,
	}
}

func shippingFromRow(r report.Row) shippingLog {
	return shippingLog{
		Tanggal: day(r, "tanggal"),
		Shift:   str(r, "shift"),
		ApLs:    num(r, "ap_ls"),
		ApLsMk3: num(r, "ap_ls_mk3"),
		ApSs:    num(r, "ap_ss"),
		TotalLs: num(r, "total_ls"),
		TotalSs: num(r, "total_ss"),
	}
}

func (m shippingLog) toRow() report.Row {
	return report.Row{
		"tanggal": m.Tanggal, "shift": m.Shift, "ap_ls": m.ApLs,
		"ap_ls_mk3": m.ApLsMk3, "ap_ss": m.ApSs,
		"total_ls": m.TotalLs, "total_ss": m.TotalSs,
	}
}

func dailyPlanFromRow(r report.Row) dailyPlanLog {
	return dailyPlanLog{
		Tanggal:     day(r, "tanggal"),
		Shift:       str(r, "shift"),
		Hari:        str(r, "hari"),
		BatuKapur:   num(r, "batu_kapur"),
		Silika:      num(r, "silika"),
		Clay:        num(r, "clay"),
		Excavator:   str(r, "excavator"),
		DumpTruck:   str(r, "dump_truck"),
		AlatSupport: str(r, "alat_support"),
		Blok:        str(r, "blok"),
		Grid:        str(r, "grid"),
		Rom:         str(r, "rom"),
	}
}

func (m dailyPlanLog) toRow() report.Row {
	return report.Row{
		"tanggal": m.Tanggal, "shift": m.Shift, "hari": m.Hari,
		"batu_kapur": m.BatuKapur, "silika": m.Silika, "clay": m.Clay,
		"excavator": m.Excavator, "dump_truck": m.DumpTruck,
		"alat_support": m.AlatSupport, "blok": m.Blok,
		"grid": m.Grid, "rom": m.Rom,
	}
}

func targetFromRow(r report.Row) targetLog {
	return targetLog{
		Date: day(r, "date"),
		Plan: num(r, "plan"),
	}
}

func (m targetLog) toRow() report.Row {
	return report.Row{"date": m.Date, "plan": m.Plan}
}
