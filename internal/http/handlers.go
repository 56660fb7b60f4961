package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/settings"
	"fintrack/internal/store"
)

type summaryResponse struct {
	TotalSpent  core.Money      `json:"totalSpent"`
	TopCategory string          `json:"topCategory"`
	DailyTotals []core.DayTotal `json:"dailyTotals"`
	OverBudget  bool            `json:"overBudget"`
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeStoreError maps the store's error taxonomy onto status codes:
// validation is the caller's problem, not-found means a stale view, and
// a persistence failure is a durability warning the user must see.
func writeStoreError(w http.ResponseWriter, err error) {
	var verr *store.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: verr.Reason, Field: verr.Field})
		return
	}
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}
	var perr *store.PersistenceError
	if errors.As(err, &perr) {
		writeError(w, http.StatusServiceUnavailable, "could not persist the change; it will not survive a reload")
		return
	}
	writeError(w, http.StatusInternalServerError, "internal error")
}

func methodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListRecords(w, r)
	case http.MethodPost:
		s.handleCreateRecord(w, r)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	var records []core.Record
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		records = s.records.Search(q)
	} else {
		records = s.records.GetAll()
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	var candidate core.Candidate
	if err := json.NewDecoder(r.Body).Decode(&candidate); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := s.records.Create(r.Context(), candidate)
	if err != nil {
		slog.ErrorContext(r.Context(), "Record create failed", applog.FieldError, err)
		writeStoreError(w, err)
		return
	}

	s.summaryCache.Purge()
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleRecordByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/records/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}

	switch r.Method {
	case http.MethodPatch:
		s.handleUpdateRecord(w, r, id)
	case http.MethodDelete:
		s.handleDeleteRecord(w, r, id)
	default:
		methodNotAllowed(w, "PATCH, DELETE")
	}
}

func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request, id string) {
	var patch core.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if patch.IsEmpty() {
		slog.DebugContext(r.Context(), "Empty patch, refreshing updatedAt only", applog.FieldRecordID, id)
	}

	rec, err := s.records.Update(r.Context(), id, patch)
	if err != nil {
		slog.ErrorContext(r.Context(), "Record update failed", applog.FieldError, err, applog.FieldRecordID, id)
		writeStoreError(w, err)
		return
	}

	s.summaryCache.Purge()
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request, id string) {
	removed, err := s.records.Delete(r.Context(), id)
	if err != nil {
		slog.ErrorContext(r.Context(), "Record delete failed", applog.FieldError, err, applog.FieldRecordID, id)
		writeStoreError(w, err)
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}

	s.summaryCache.Purge()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	days := s.windowDays
	if v := strings.TrimSpace(r.URL.Query().Get("days")); v != "" {
		d, err := strconv.Atoi(v)
		if err != nil || d < 1 || d > 366 {
			writeError(w, http.StatusBadRequest, "days must be between 1 and 366")
			return
		}
		days = d
	}

	today := time.Now().UTC().Format(time.DateOnly)
	key := today + ":" + strconv.Itoa(days)
	if cached, ok := s.summaryCache.Get(key); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	records := s.records.GetAll()
	total := core.TotalSpent(records)

	budget, err := s.settings.Budget(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Budget load failed", applog.FieldError, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := summaryResponse{
		TotalSpent:  total,
		TopCategory: core.TopCategory(records),
		DailyTotals: core.DailyTotals(records, days, time.Now().UTC()),
		OverBudget:  budget.OverBudget(total),
	}
	s.summaryCache.Set(key, resp)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBudget(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		budget, err := s.settings.Budget(r.Context())
		if err != nil {
			slog.ErrorContext(r.Context(), "Budget load failed", applog.FieldError, err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, budget)
	case http.MethodPut:
		var budget settings.Budget
		if err := json.NewDecoder(r.Body).Decode(&budget); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := s.settings.SetBudget(r.Context(), budget); err != nil {
			if errors.Is(err, settings.ErrInvalidThreshold) {
				writeError(w, http.StatusUnprocessableEntity, err.Error())
				return
			}
			slog.ErrorContext(r.Context(), "Budget save failed", applog.FieldError, err)
			writeError(w, http.StatusServiceUnavailable, "could not persist the budget")
			return
		}
		s.summaryCache.Purge()
		writeJSON(w, http.StatusOK, budget)
	default:
		methodNotAllowed(w, "GET, PUT")
	}
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		display, err := s.settings.Display(r.Context())
		if err != nil {
			slog.ErrorContext(r.Context(), "Settings load failed", applog.FieldError, err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, display)
	case http.MethodPut:
		var display settings.Display
		if err := json.NewDecoder(r.Body).Decode(&display); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := s.settings.SetDisplay(r.Context(), display); err != nil {
			if errors.Is(err, settings.ErrInvalidCurrency) || errors.Is(err, settings.ErrInvalidRate) {
				writeError(w, http.StatusUnprocessableEntity, err.Error())
				return
			}
			slog.ErrorContext(r.Context(), "Settings save failed", applog.FieldError, err)
			writeError(w, http.StatusServiceUnavailable, "could not persist the settings")
			return
		}
		writeJSON(w, http.StatusOK, display)
	default:
		methodNotAllowed(w, "GET, PUT")
	}
}
