// Package store persists canonical report rows and sync audit records.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"

	"oresync/internal/report"
	"oresync/pkg/db"
)

// Store owns the process-wide database handles: a pgx pool for reads and a
// GORM session for transactional writes. Created once per process.
type Store struct {
	Pool *pgxpool.Pool
	ORM  *gorm.DB
}

// New opens the connection pool and the GORM session over the same DSN.
func New(ctx context.Context, dsn string) (*Store, error) {
	pool, err := db.Open(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}

	orm, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		NamingStrategy: schema.NamingStrategy{SingularTable: false},
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("open orm: %w", err)
	}

	sqlDB, err := orm.DB()
	if err != nil {
		pool.Close()
		return nil, err
	}
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	return &Store{Pool: pool, ORM: orm}, nil
}

// Migrate creates the schema objects if absent.
func (s *Store) Migrate(ctx context.Context) error {
	return db.Migrate(ctx, s.Pool)
}

// Ping verifies database reachability.
func (s *Store) Ping(ctx context.Context) error {
	return db.Ping(ctx, s.Pool)
}

// Close releases both database handles.
func (s *Store) Close() {
	if s == nil {
		return
	}
	if sqlDB, err := s.ORM.DB(); err == nil {
		_ = sqlDB.Close()
	}
	s.Pool.Close()
}

// ReplaceRange atomically replaces all rows of the document type whose
// natural-key date falls inside [from, to] with the given normalized rows.
// Either every row for the range lands or none do; disjoint date ranges from
// earlier syncs are untouched. Returns the number of rows written.
func (s *Store) ReplaceRange(ctx context.Context, dt report.DocType, rows []report.Row, from, to time.Time) (int, error) {
	dateCol := report.DescriptorFor(dt).DateField

	err := s.ORM.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		switch dt {
		case report.DocProduction:
			return replaceRows(tx, dateCol, from, to, rows, productionFromRow)
		case report.DocDowntime:
			return replaceRows(tx, dateCol, from, to, rows, downtimeFromRow)
		case report.DocStockpile:
			return replaceRows(tx, dateCol, from, to, rows, stockpileFromRow)
		case report.DocShipping:
			return replaceRows(tx, dateCol, from, to, rows, shippingFromRow)
		case report.DocDailyPlan:
			return replaceRows(tx, dateCol, from, to, rows, dailyPlanFromRow)
		case report.DocTarget:
			return replaceRows(tx, dateCol, from, to, rows, targetFromRow)
		default:
			return fmt.Errorf("unknown document type %q", dt)
		}
	})
	if err != nil {
		return 0, fmt.Errorf("replace %s [%s, %s]: %w", dt,
			from.Format("2006-01-02"), to.Format("2006-01-02"), err)
	}
	return len(rows), nil
}

const insertBatchSize = 500

// replaceRows deletes the date range for the model type, then bulk inserts
// the converted rows, all inside the caller's transaction.
func replaceRows[T any](tx *gorm.DB, dateCol string, from, to time.Time, rows []report.Row, conv func(report.Row) T) error {
	var zero T
	if err := tx.Where(dateCol+" BETWEEN ? AND ?", from, to).Delete(&zero).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	models := make([]T, 0, len(rows))
	for _, r := range rows {
		models = append(models, conv(r))
	}
	return tx.CreateInBatches(models, insertBatchSize).Error
}

// Query reads the document type's rows inside [from, to], inclusive, in
// insertion order, then applies the shared shift filter.
func (s *Store) Query(ctx context.Context, dt report.DocType, from, to time.Time, shift string) ([]report.Row, error) {
	desc := report.DescriptorFor(dt)
	table := tableFor(dt)
	query := fmt.Sprintf(
		`SELECT * FROM %s WHERE %s BETWEEN $1 AND $2 ORDER BY %s, id`,
		table, desc.DateField, desc.DateField,
	)

	var rows []report.Row
	var err error
	switch dt {
	case report.DocProduction:
		rows, err = selectRows[productionLog](ctx, s.Pool, query, from, to)
	case report.DocDowntime:
		rows, err = selectRows[downtimeLog](ctx, s.Pool, query, from, to)
	case report.DocStockpile:
		rows, err = selectRows[stockpileLog](ctx, s.Pool, query, from, to)
	case report.DocShipping:
		rows, err = selectRows[shippingLog](ctx, s.Pool, query, from, to)
	case report.DocDailyPlan:
		rows, err = selectRows[dailyPlanLog](ctx, s.Pool, query, from, to)
	case report.DocTarget:
		rows, err = selectRows[targetLog](ctx, s.Pool, query, from, to)
	default:
		return nil, fmt.Errorf("unknown document type %q", dt)
	}
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", dt, err)
	}

	return report.Filter(rows, desc.DateField, from, to, shift), nil
}

func selectRows[T interface{ toRow() report.Row }](ctx context.Context, pool *pgxpool.Pool, query string, from, to time.Time) ([]report.Row, error) {
	var models []T
	if err := db.Select(ctx, pool, &models, query, from, to); err != nil {
		return nil, err
	}
	out := make([]report.Row, 0, len(models))
	for _, m := range models {
		out = append(out, m.toRow())
	}
	return out, nil
}

func tableFor(dt report.DocType) string {
	switch dt {
	case report.DocProduction:
		return productionLog{}.TableName()
	case report.DocDowntime:
		return downtimeLog{}.TableName()
	case report.DocStockpile:
		return stockpileLog{}.TableName()
	case report.DocShipping:
		return shippingLog{}.TableName()
	case report.DocDailyPlan:
		return dailyPlanLog{}.TableName()
	case report.DocTarget:
		return targetLog{}.TableName()
	default:
		return ""
	}
}

// RecordRun persists one sync attempt's audit record.
func (s *Store) RecordRun(ctx context.Context, run RunRecord) error {
	return s.ORM.WithContext(ctx).Create(&run).Error
}

// LastRuns returns the most recent sync run per document type.
func (s *Store) LastRuns(ctx context.Context) ([]RunRecord, error) {
	var runs []RunRecord
	query := `
        SELECT DISTINCT ON (doc_type)
            id, doc_type, status, outcome, rows_written, rows_skipped,
            range_start, range_end, source_timestamp, details, created_at
        FROM sync_runs
        ORDER BY doc_type, created_at DESC
    `
	if err := db.Select(ctx, s.Pool, &runs, query); err != nil {
		return nil, fmt.Errorf("last runs: %w", err)
	}
	return runs, nil
}
