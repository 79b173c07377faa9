package migrations

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

func init() {
	goose.AddMigrationContext(upInit, downInit)
}

// Canonical report tables. Each row is one observed operational event or
// target. Surrogate id plus the business natural key (date, usually shift);
// numeric fields default to zero because an absent value is not an error.

type ProductionLog struct {
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

type DowntimeLog struct {
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

type StockpileLog struct {
	ID        int64     `gorm:"type:bigserial;primaryKey"`
	Date      time.Time `gorm:"type:date;not null;index"`
	TimeRange string    `gorm:"type:text;not null"`
	Dumping   string    `gorm:"type:text;not null"`
	Unit      string    `gorm:"type:text;not null"`
	Shift     string    `gorm:"type:text"`
	Ritase    int       `gorm:"type:integer;not null;default:0"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
}

type ShippingLog struct {
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

type DailyPlanLog struct {
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

type TargetLog struct {
	ID        int64     `gorm:"type:bigserial;primaryKey"`
	Date      time.Time `gorm:"type:date;not null;index"`
	Plan      float64   `gorm:"type:double precision;not null;default:0"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
}

type SyncRun struct {
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

func upInit(ctx context.Context, tx *sql.Tx) error {
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: tx, PreferSimpleProtocol: true}), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{SingularTable: false},
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return err
	}

	return gormDB.WithContext(ctx).AutoMigrate(
		&ProductionLog{},
		&DowntimeLog{},
		&StockpileLog{},
		&ShippingLog{},
		&DailyPlanLog{},
		&TargetLog{},
		&SyncRun{},
	)
}

func downInit(ctx context.Context, tx *sql.Tx) error {
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: tx, PreferSimpleProtocol: true}), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{SingularTable: false},
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return err
	}

	return gormDB.WithContext(ctx).Migrator().DropTable(
		&SyncRun{},
		&TargetLog{},
		&DailyPlanLog{},
		&ShippingLog{},
		&StockpileLog{},
		&DowntimeLog{},
		&ProductionLog{},
	)
}
