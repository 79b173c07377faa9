// Package syncer orchestrates resolve, fetch, parse and persist for each
// document type.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
	"gorm.io/datatypes"

	"oresync/internal/config"
	"oresync/internal/fetch"
	"oresync/internal/report"
	"oresync/internal/sharelink"
	"oresync/internal/store"
	"oresync/pkg/bus"
)

// ErrLinkInvalid marks a document type whose configured share link is blank
// or unresolvable; the sync for that type is skipped.
var ErrLinkInvalid = errors.New("share link invalid")

// ErrNoSource marks a document type absent from the source registry.
var ErrNoSource = errors.New("no source configured")

// Fetcher abstracts the workbook cache.
type Fetcher interface {
	GetOrFetch(ctx context.Context, key, url string, ttl time.Duration, force bool) ([]byte, fetch.Outcome, time.Time, error)
}

// Persister abstracts the storage layer touched by a sync.
type Persister interface {
	ReplaceRange(ctx context.Context, dt report.DocType, rows []report.Row, from, to time.Time) (int, error)
	RecordRun(ctx context.Context, run store.RunRecord) error
}

// Archiver stores raw workbook snapshots.
type Archiver interface {
	PutObject(ctx context.Context, bucket, key string, data []byte) error
}

// Publisher emits sync lifecycle events.
type Publisher interface {
	Publish(ctx context.Context, subj string, v any) error
}

// SyncResult summarizes one completed sync.
type SyncResult struct {
	RunID           uuid.UUID      `json:"run_id"`
	DocType         report.DocType `json:"doc_type"`
	Outcome         string         `json:"outcome"`
	RowsWritten     int            `json:"rows_written"`
	RowsSkipped     int            `json:"rows_skipped"`
	RangeStart      *time.Time     `json:"range_start,omitempty"`
	RangeEnd        *time.Time     `json:"range_end,omitempty"`
	SourceTimestamp time.Time      `json:"source_timestamp"`
	Sheet           string         `json:"sheet,omitempty"`
}

// Manager runs the ingestion pipeline. Fetch and parse always complete before
// a storage transaction opens, so transaction duration is bounded by the
// database write alone and never spans a network wait.
type Manager struct {
	sources config.Sources
	cache   Fetcher
	store   Persister
	bus     Publisher
	archive Archiver
	bucket  string
	log     zerolog.Logger

	now func() time.Time
}

// Option mutates a Manager during construction.
type Option func(*Manager)

// WithBus attaches a sync event publisher.
func WithBus(p Publisher) Option {
	return func(m *Manager) { m.bus = p }
}

// WithArchive attaches a snapshot archiver writing to bucket.
func WithArchive(a Archiver, bucket string) Option {
	return func(m *Manager) {
		m.archive = a
		m.bucket = bucket
	}
}

// New builds a Manager for the given source registry.
func New(sources config.Sources, cache Fetcher, st Persister, log zerolog.Logger, opts ...Option) *Manager {
	m := &Manager{
		sources: sources,
		cache:   cache,
		store:   st,
		log:     log,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

const (
	forceRetryAttempts = 3
	forceRetryBase     = 2 * time.Second
)

// Sync runs the full pipeline for one document type. With force set the
// share link is cache-busted, the fetch bypasses the cache and a fetch
// failure is returned to the caller instead of falling back to stale bytes.
func (m *Manager) Sync(ctx context.Context, dt report.DocType, force bool) (SyncResult, error) {
	src, ok := m.sources[dt]
	if !ok {
		return SyncResult{}, fmt.Errorf("%w: %s", ErrNoSource, dt)
	}

	url, ok := sharelink.Resolve(src.ShareLink, force)
	if !ok {
		return SyncResult{}, fmt.Errorf("%w: %s", ErrLinkInvalid, dt)
	}

	payload, outcome, fetchedAt, fetchErr := m.fetch(ctx, dt, src, url, force)
	if fetchErr != nil {
		if force || payload == nil {
			m.finishRun(ctx, dt, runFailed(dt, outcome, fetchErr))
			return SyncResult{}, fmt.Errorf("fetch %s: %w", dt, fetchErr)
		}
		// Routine sync rides the retained stale payload.
		m.log.Warn().Err(fetchErr).Str("doc_type", string(dt)).
			Msg("fetch failed, continuing with stale workbook")
	}

	parsed, err := report.NewParser(dt).Parse(payload, src.SheetToken)
	if err != nil {
		if errors.Is(err, report.ErrSheetNotFound) {
			// No data this cycle; not a failure.
			m.log.Info().Str("doc_type", string(dt)).Str("token", src.SheetToken).
				Msg("sheet selector matched nothing")
			res := SyncResult{
				RunID: uuid.New(), DocType: dt, Outcome: outcome.String(),
				SourceTimestamp: fetchedAt,
			}
			m.finishRun(ctx, dt, runEmpty(res))
			return res, nil
		}
		m.finishRun(ctx, dt, runFailed(dt, outcome, err))
		return SyncResult{}, fmt.Errorf("parse %s: %w", dt, err)
	}

	res := SyncResult{
		RunID:           uuid.New(),
		DocType:         dt,
		Outcome:         outcome.String(),
		RowsSkipped:     parsed.Skipped,
		SourceTimestamp: fetchedAt,
		Sheet:           parsed.Sheet,
	}

	if len(parsed.Rows) > 0 {
		desc := report.DescriptorFor(dt)
		from, to, _ := report.DateRange(parsed.Rows, desc.DateField)
		if src.ReplaceWindowDays > 0 {
			// A fixed look-back widens the replace boundary, never narrows it.
			if wide := to.AddDate(0, 0, -src.ReplaceWindowDays); wide.Before(from) {
				from = wide
			}
		}

		written, err := m.store.ReplaceRange(ctx, dt, parsed.Rows, from, to)
		if err != nil {
			m.finishRun(ctx, dt, runFailed(dt, outcome, err))
			return SyncResult{}, fmt.Errorf("persist %s: %w", dt, err)
		}
		res.RowsWritten = written
		res.RangeStart = &from
		res.RangeEnd = &to
	}

	if outcome == fetch.OutcomeFresh {
		m.archiveSnapshot(ctx, dt, payload)
	}

	m.finishRun(ctx, dt, runSucceeded(res))
	m.publish(ctx, bus.SubjectSyncCompleted, res, "")

	syncsTotal.WithLabelValues(string(dt), "success").Inc()
	rowsWritten.WithLabelValues(string(dt)).Add(float64(res.RowsWritten))
	rowsSkipped.WithLabelValues(string(dt)).Add(float64(res.RowsSkipped))

	m.log.Info().
		Str("doc_type", string(dt)).
		Str("outcome", res.Outcome).
		Int("rows_written", res.RowsWritten).
		Int("rows_skipped", res.RowsSkipped).
		Msg("sync completed")

	return res, nil
}

// SyncAll runs every configured document type, best effort: a failing type is
// logged and skipped so one bad source cannot block the rest.
func (m *Manager) SyncAll(ctx context.Context, force bool) []SyncResult {
	out := make([]SyncResult, 0, len(m.sources))
	for _, dt := range report.AllDocTypes() {
		if _, ok := m.sources[dt]; !ok {
			continue
		}
		res, err := m.Sync(ctx, dt, force)
		if err != nil {
			m.log.Error().Err(err).Str("doc_type", string(dt)).Msg("sync failed")
			continue
		}
		out = append(out, res)
	}
	return out
}

// fetch wraps the cache call. Forced refreshes retry with capped exponential
// backoff because the caller explicitly needs fresh bytes; routine syncs take
// whatever single attempt plus stale fallback the cache yields.
func (m *Manager) fetch(ctx context.Context, dt report.DocType, src config.Source, url string, force bool) ([]byte, fetch.Outcome, time.Time, error) {
	if !force {
		return m.cache.GetOrFetch(ctx, string(dt), url, src.TTL(), false)
	}

	var (
		payload   []byte
		outcome   fetch.Outcome
		fetchedAt time.Time
	)
	backoff := retry.WithMaxRetries(forceRetryAttempts-1, retry.NewExponential(forceRetryBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var err error
		payload, outcome, fetchedAt, err = m.cache.GetOrFetch(ctx, string(dt), url, src.TTL(), true)
		if err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	return payload, outcome, fetchedAt, err
}

func (m *Manager) archiveSnapshot(ctx context.Context, dt report.DocType, payload []byte) {
	if m.archive == nil || m.bucket == "" {
		return
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		m.log.Error().Err(err).Msg("snapshot encoder")
		return
	}
	compressed := enc.EncodeAll(payload, nil)
	_ = enc.Close()

	key := fmt.Sprintf("snapshots/%s/%s.xlsx.zst", dt, m.now().UTC().Format(time.RFC3339))
	if err := m.archive.PutObject(ctx, m.bucket, key, compressed); err != nil {
		// Archival is an audit convenience; losing one snapshot never fails a sync.
		m.log.Error().Err(err).Str("key", key).Msg("snapshot upload failed")
	}
}

func (m *Manager) finishRun(ctx context.Context, dt report.DocType, run store.RunRecord) {
	if err := m.store.RecordRun(ctx, run); err != nil {
		m.log.Error().Err(err).Str("doc_type", string(dt)).Msg("record sync run")
	}
	if run.Status == "failed" {
		syncsTotal.WithLabelValues(string(dt), "failed").Inc()
		m.publish(ctx, bus.SubjectSyncFailed, SyncResult{
			RunID:   run.ID,
			DocType: dt,
			Outcome: run.Outcome,
		}, run.Details["error"])
	}
}

func (m *Manager) publish(ctx context.Context, subj string, res SyncResult, errMsg any) {
	if m.bus == nil {
		return
	}
	msg, _ := errMsg.(string)
	ev := bus.SyncEvent{
		RunID:       res.RunID.String(),
		DocType:     string(res.DocType),
		Outcome:     res.Outcome,
		RowsWritten: res.RowsWritten,
		RowsSkipped: res.RowsSkipped,
		Error:       msg,
		At:          m.now().UTC(),
	}
	if err := m.bus.Publish(ctx, subj, ev); err != nil {
		m.log.Error().Err(err).Str("subject", subj).Msg("publish sync event")
	}
}

func runSucceeded(res SyncResult) store.RunRecord {
	ts := res.SourceTimestamp
	return store.RunRecord{
		ID:              res.RunID,
		DocType:         string(res.DocType),
		Status:          "success",
		Outcome:         res.Outcome,
		RowsWritten:     res.RowsWritten,
		RowsSkipped:     res.RowsSkipped,
		RangeStart:      res.RangeStart,
		RangeEnd:        res.RangeEnd,
		SourceTimestamp: &ts,
		Details:         datatypes.JSONMap{"sheet": res.Sheet},
	}
}

func runEmpty(res SyncResult) store.RunRecord {
	ts := res.SourceTimestamp
	return store.RunRecord{
		ID:              res.RunID,
		DocType:         string(res.DocType),
		Status:          "success",
		Outcome:         res.Outcome,
		SourceTimestamp: &ts,
		Details:         datatypes.JSONMap{"note": "sheet not found"},
	}
}

func runFailed(dt report.DocType, outcome fetch.Outcome, err error) store.RunRecord {
	return store.RunRecord{
		ID:      uuid.New(),
		DocType: string(dt),
		Status:  "failed",
		Outcome: outcome.String(),
		Details: datatypes.JSONMap{"error": err.Error()},
	}
}
