package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"oresync/internal/report"
	"oresync/internal/syncer"
)

// defaultReportDays bounds an un-parameterized report query to the last month.
const defaultReportDays = 30

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	dt, err := report.ParseDocType(chi.URLParam(r, "type"))
	if err != nil {
		respondError(w, http.StatusNotFound, err)
		return
	}
	force := boolParam(r, "force")

	res, err := s.syncer.Sync(r.Context(), dt, force)
	if err != nil {
		switch {
		case errors.Is(err, syncer.ErrNoSource):
			respondError(w, http.StatusNotFound, err)
		case errors.Is(err, syncer.ErrLinkInvalid):
			respondError(w, http.StatusUnprocessableEntity, err)
		default:
			s.log.Error().Err(err).Str("doc_type", string(dt)).Msg("sync request failed")
			respondError(w, http.StatusBadGateway, err)
		}
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"sync": res})
}

func (s *Server) handleSyncAll(w http.ResponseWriter, r *http.Request) {
	results := s.syncer.SyncAll(r.Context(), boolParam(r, "force"))
	respondJSON(w, http.StatusOK, map[string]any{"syncs": results})
}

func (s *Server) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	runs, err := s.store.LastRuns(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	dt, from, to, shift, err := reportParams(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	rows, err := s.store.Query(r.Context(), dt, from, to, shift)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"doc_type": dt,
		"from":     from.Format(dateParamLayout),
		"to":       to.Format(dateParamLayout),
		"shift":    shiftOrAll(shift),
		"rows":     report.Rename(rows),
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	dt, from, to, shift, err := reportParams(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	rows, err := s.store.Query(r.Context(), dt, from, to, shift)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	data, err := report.ExportWorkbook(dt, rows)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	name := fmt.Sprintf("%s_%s_%s.xlsx",
		dt, from.Format(dateParamLayout), to.Format(dateParamLayout))
	w.Header().Set("Content-Type",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

const dateParamLayout = "2006-01-02"

// reportParams parses the shared type/from/to/shift query contract. A missing
// "to" means today, a missing "from" means a month back from "to".
func reportParams(r *http.Request) (report.DocType, time.Time, time.Time, string, error) {
	dt, err := report.ParseDocType(chi.URLParam(r, "type"))
	if err != nil {
		return "", time.Time{}, time.Time{}, "", err
	}

	q := r.URL.Query()
	to, err := dateParam(q.Get("to"), time.Now().UTC())
	if err != nil {
		return "", time.Time{}, time.Time{}, "", fmt.Errorf("to: %w", err)
	}
	from, err := dateParam(q.Get("from"), to.AddDate(0, 0, -defaultReportDays))
	if err != nil {
		return "", time.Time{}, time.Time{}, "", fmt.Errorf("from: %w", err)
	}
	if from.After(to) {
		return "", time.Time{}, time.Time{}, "", fmt.Errorf("from %s after to %s",
			from.Format(dateParamLayout), to.Format(dateParamLayout))
	}

	return dt, from, to, q.Get("shift"), nil
}

func dateParam(raw string, fallback time.Time) (time.Time, error) {
	if raw == "" {
		return time.Date(fallback.Year(), fallback.Month(), fallback.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Parse(dateParamLayout, raw)
}

func boolParam(r *http.Request, name string) bool {
	switch r.URL.Query().Get(name) {
	case "1", "true", "yes":
		return true
	}
	return false
}

func shiftOrAll(shift string) string {
	if shift == "" {
		return report.ShiftAll
	}
	return shift
}
