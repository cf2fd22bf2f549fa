// Package httpapi provides the REST HTTP adapter for the planner.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/evanschultz/hwplan/internal/adapters/server/common"
)

// Handler serves the versioned API subrouter mounted under `/api/v1`.
type Handler struct {
	planner common.PlannerService
}

// APIError represents one structured API failure response.
type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Hint    string         `json:"hint,omitempty"`
	Context map[string]any `json:"context,omitempty"`
}

// ErrorEnvelope wraps one structured API error.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// NewHandler constructs one HTTP API adapter over the planner service.
func NewHandler(planner common.PlannerService) *Handler {
	return &Handler{planner: planner}
}

// ServeHTTP routes one versioned API request to the matching handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.planner == nil {
		writeJSONError(w, http.StatusServiceUnavailable, APIError{
			Code:    "service_unavailable",
			Message: "planner service is not configured",
		})
		return
	}

	parts := splitPath(r.URL.Path)
	switch {
	case len(parts) == 1 && parts[0] == "today":
		if !allowMethod(w, r, http.MethodGet) {
			return
		}
		h.handleToday(w, r)
	case len(parts) == 1 && parts[0] == "homework":
		if !allowMethod(w, r, http.MethodGet) {
			return
		}
		h.handleListHomework(w, r)
	case len(parts) == 2 && parts[0] == "homework":
		if !allowMethod(w, r, http.MethodGet) {
			return
		}
		h.handleGetHomework(w, r, parts[1])
	case len(parts) == 3 && parts[0] == "homework" && parts[2] == "toggle":
		if !allowMethod(w, r, http.MethodPost) {
			return
		}
		h.handleToggleHomework(w, r, parts[1])
	case len(parts) == 5 && parts[0] == "homework" && parts[2] == "tasks" && parts[4] == "toggle":
		if !allowMethod(w, r, http.MethodPost) {
			return
		}
		h.handleToggleDayTask(w, r, parts[1], parts[3])
	case len(parts) == 1 && parts[0] == "deadlines":
		if !allowMethod(w, r, http.MethodGet) {
			return
		}
		h.handleDeadlines(w, r)
	case len(parts) == 2 && parts[0] == "calendar":
		if !allowMethod(w, r, http.MethodGet) {
			return
		}
		h.handleCalendarDay(w, r, parts[1])
	default:
		writeJSONError(w, http.StatusNotFound, APIError{
			Code:    "not_found",
			Message: "endpoint not found",
		})
	}
}

// handleToday serves GET `/today`.
func (h *Handler) handleToday(w http.ResponseWriter, r *http.Request) {
	today, err := h.planner.Today(r.Context())
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, today)
}

// handleListHomework serves GET `/homework`.
func (h *Handler) handleListHomework(w http.ResponseWriter, r *http.Request) {
	items, err := h.planner.ListHomework(r.Context())
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
	})
}

// handleGetHomework serves GET `/homework/{id}`.
func (h *Handler) handleGetHomework(w http.ResponseWriter, r *http.Request, id string) {
	item, err := h.planner.GetHomework(r.Context(), id)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// handleToggleHomework serves POST `/homework/{id}/toggle`.
func (h *Handler) handleToggleHomework(w http.ResponseWriter, r *http.Request, id string) {
	item, err := h.planner.ToggleHomework(r.Context(), id)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// handleToggleDayTask serves POST `/homework/{id}/tasks/{date}/toggle`.
// The date segment accepts "today".
func (h *Handler) handleToggleDayTask(w http.ResponseWriter, r *http.Request, id, date string) {
	if strings.EqualFold(date, "today") {
		date = ""
	}
	item, err := h.planner.ToggleDayTask(r.Context(), id, date)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// handleDeadlines serves GET `/deadlines`.
func (h *Handler) handleDeadlines(w http.ResponseWriter, r *http.Request) {
	items, err := h.planner.Deadlines(r.Context())
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
	})
}

// handleCalendarDay serves GET `/calendar/{date}`.
func (h *Handler) handleCalendarDay(w http.ResponseWriter, r *http.Request, date string) {
	day, err := h.planner.CalendarDay(r.Context(), date)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, day)
}

// splitPath canonicalizes one request path into its segments.
func splitPath(path string) []string {
	path = strings.Trim(strings.TrimSpace(path), "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	writeMethodNotAllowed(w, method)
	return false
}

// writeErrorFrom maps adapter errors into structured HTTP responses.
func writeErrorFrom(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		writeJSONError(w, http.StatusInternalServerError, APIError{
			Code:    "internal_error",
			Message: "unknown error",
		})
	case errors.Is(err, common.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, APIError{
			Code:    "not_found",
			Message: err.Error(),
		})
	case errors.Is(err, common.ErrInvalidRequest):
		writeJSONError(w, http.StatusBadRequest, APIError{
			Code:    "invalid_request",
			Message: err.Error(),
			Hint:    "Dates use the YYYY-MM-DD form.",
		})
	case errors.Is(err, common.ErrUnavailable):
		writeJSONError(w, http.StatusServiceUnavailable, APIError{
			Code:    "service_unavailable",
			Message: err.Error(),
		})
	default:
		writeJSONError(w, http.StatusInternalServerError, APIError{
			Code:    "internal_error",
			Message: err.Error(),
		})
	}
}

// writeMethodNotAllowed writes a structured 405 response with `Allow` headers.
func writeMethodNotAllowed(w http.ResponseWriter, methods ...string) {
	if len(methods) > 0 {
		w.Header().Set("Allow", strings.Join(methods, ", "))
	}
	writeJSONError(w, http.StatusMethodNotAllowed, APIError{
		Code:    "method_not_allowed",
		Message: "method not allowed",
	})
}

// writeJSONError writes one structured error envelope.
func writeJSONError(w http.ResponseWriter, statusCode int, apiErr APIError) {
	writeJSON(w, statusCode, ErrorEnvelope{Error: apiErr})
}

// writeJSON writes one JSON response envelope.
func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, fmt.Sprintf(`{"error":{"code":"encode_error","message":"%s"}}`, err.Error()), http.StatusInternalServerError)
	}
}
