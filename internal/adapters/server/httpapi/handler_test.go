package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/evanschultz/hwplan/internal/adapters/server/common"
)

// stubPlanner provides deterministic planner responses for handler tests.
type stubPlanner struct {
	homework   common.HomeworkView
	err        error
	lastID     string
	lastDate   string
	toggleDays int
}

func (s *stubPlanner) Today(context.Context) (common.TodayView, error) {
	if s.err != nil {
		return common.TodayView{}, s.err
	}
	return common.TodayView{
		Date: "2024-03-01",
		Tasks: []common.DayEntryView{{
			HomeworkID: s.homework.ID,
			Subject:    s.homework.Subject,
			Title:      s.homework.Title,
			Task:       common.DayTaskView{Date: "2024-03-01", Pages: 2, Minutes: 20},
		}},
	}, nil
}

func (s *stubPlanner) ListHomework(context.Context) ([]common.HomeworkView, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []common.HomeworkView{s.homework}, nil
}

func (s *stubPlanner) GetHomework(_ context.Context, id string) (common.HomeworkView, error) {
	s.lastID = id
	if s.err != nil {
		return common.HomeworkView{}, s.err
	}
	return s.homework, nil
}

func (s *stubPlanner) ToggleHomework(_ context.Context, id string) (common.HomeworkView, error) {
	s.lastID = id
	if s.err != nil {
		return common.HomeworkView{}, s.err
	}
	out := s.homework
	out.Completed = !out.Completed
	return out, nil
}

func (s *stubPlanner) ToggleDayTask(_ context.Context, id, date string) (common.HomeworkView, error) {
	s.lastID, s.lastDate = id, date
	s.toggleDays++
	if s.err != nil {
		return common.HomeworkView{}, s.err
	}
	return s.homework, nil
}

func (s *stubPlanner) Deadlines(context.Context) ([]common.DeadlineView, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []common.DeadlineView{{HomeworkID: s.homework.ID, DueDate: s.homework.DueDate, DaysLeft: 2}}, nil
}

func (s *stubPlanner) CalendarDay(_ context.Context, date string) (common.CalendarDayView, error) {
	s.lastDate = date
	if s.err != nil {
		return common.CalendarDayView{}, s.err
	}
	return common.CalendarDayView{Date: date}, nil
}

func newStubPlanner() *stubPlanner {
	return &stubPlanner{homework: common.HomeworkView{
		ID:      "hw-1",
		Subject: "Math",
		Title:   "Worksheet",
		DueDate: "2024-03-03",
	}}
}

func serve(handler http.Handler, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// TestHandlerReadRoutes verifies the GET routes and their payload shapes.
func TestHandlerReadRoutes(t *testing.T) {
	planner := newStubPlanner()
	handler := NewHandler(planner)

	rec := serve(handler, http.MethodGet, "/today")
	if rec.Code != http.StatusOK {
		t.Fatalf("today status = %d, want %d", rec.Code, http.StatusOK)
	}
	var today common.TodayView
	if err := json.NewDecoder(rec.Body).Decode(&today); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if today.Date != "2024-03-01" || len(today.Tasks) != 1 || today.Tasks[0].Task.Pages != 2 {
		t.Fatalf("unexpected today payload %#v", today)
	}

	rec = serve(handler, http.MethodGet, "/homework/")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, want %d", rec.Code, http.StatusOK)
	}
	var list struct {
		Items []common.HomeworkView `json:"items"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(list.Items) != 1 || list.Items[0].ID != "hw-1" {
		t.Fatalf("unexpected list payload %#v", list)
	}

	rec = serve(handler, http.MethodGet, "/homework/hw-1")
	if rec.Code != http.StatusOK || planner.lastID != "hw-1" {
		t.Fatalf("get status = %d id = %q", rec.Code, planner.lastID)
	}

	rec = serve(handler, http.MethodGet, "/deadlines")
	if rec.Code != http.StatusOK {
		t.Fatalf("deadlines status = %d, want %d", rec.Code, http.StatusOK)
	}

	rec = serve(handler, http.MethodGet, "/calendar/2024-03-02")
	if rec.Code != http.StatusOK || planner.lastDate != "2024-03-02" {
		t.Fatalf("calendar status = %d date = %q", rec.Code, planner.lastDate)
	}
}

// TestHandlerToggleRoutes verifies toggle routing and the "today" date alias.
func TestHandlerToggleRoutes(t *testing.T) {
	planner := newStubPlanner()
	handler := NewHandler(planner)

	rec := serve(handler, http.MethodPost, "/homework/hw-1/toggle")
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle status = %d, want %d", rec.Code, http.StatusOK)
	}
	var got common.HomeworkView
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !got.Completed {
		t.Fatalf("expected toggled item to be completed, got %#v", got)
	}

	rec = serve(handler, http.MethodPost, "/homework/hw-1/tasks/2024-03-02/toggle")
	if rec.Code != http.StatusOK || planner.lastDate != "2024-03-02" {
		t.Fatalf("toggle day status = %d date = %q", rec.Code, planner.lastDate)
	}

	rec = serve(handler, http.MethodPost, "/homework/hw-1/tasks/today/toggle")
	if rec.Code != http.StatusOK || planner.lastDate != "" {
		t.Fatalf("toggle today status = %d date = %q", rec.Code, planner.lastDate)
	}
	if planner.toggleDays != 2 {
		t.Fatalf("toggleDays = %d, want 2", planner.toggleDays)
	}
}

// TestHandlerMethodAndRouteErrors verifies 404 and 405 envelopes.
func TestHandlerMethodAndRouteErrors(t *testing.T) {
	handler := NewHandler(newStubPlanner())

	rec := serve(handler, http.MethodPost, "/today")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
	if got := rec.Header().Get("Allow"); got != http.MethodGet {
		t.Fatalf("Allow = %q, want GET", got)
	}

	rec = serve(handler, http.MethodGet, "/homework/hw-1/toggle")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}

	rec = serve(handler, http.MethodGet, "/nope")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}

	rec = serve(NewHandler(nil), http.MethodGet, "/today")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

// TestHandlerErrorMapping verifies structured status mapping for planner errors.
func TestHandlerErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "invalid request",
			err:        errors.Join(common.ErrInvalidRequest, errors.New("bad date")),
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_request",
		},
		{
			name:       "not found",
			err:        errors.Join(common.ErrNotFound, errors.New("missing")),
			wantStatus: http.StatusNotFound,
			wantCode:   "not_found",
		},
		{
			name:       "unavailable",
			err:        common.ErrUnavailable,
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "service_unavailable",
		},
		{
			name:       "internal",
			err:        errors.New("disk on fire"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "internal_error",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			planner := newStubPlanner()
			planner.err = tc.err
			rec := serve(NewHandler(planner), http.MethodGet, "/homework/hw-1")
			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
			var envelope ErrorEnvelope
			if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if envelope.Error.Code != tc.wantCode {
				t.Fatalf("code = %q, want %q", envelope.Error.Code, tc.wantCode)
			}
		})
	}
}
