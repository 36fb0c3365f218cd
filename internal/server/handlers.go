package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/claude/fitbuddy/internal/auth"
	"github.com/claude/fitbuddy/internal/models"
	"github.com/claude/fitbuddy/internal/schedule"
	"github.com/claude/fitbuddy/internal/session"
	"github.com/go-chi/chi/v5"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, auth.ErrSignedOut):
		return http.StatusUnauthorized
	case errors.Is(err, session.ErrIndexOutOfRange):
		return http.StatusNotFound
	case errors.Is(err, session.ErrInvalidOrder),
		errors.Is(err, session.ErrInputRejected),
		errors.Is(err, session.ErrEmpty),
		errors.Is(err, models.ErrInvalidSurvey):
		return http.StatusBadRequest
	case errors.Is(err, errUpstream):
		return http.StatusBadGateway
	case errors.Is(err, errNoHistory):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return false
	}
	return true
}

// decodeOptionalBody is decodeBody for routes where the body may be omitted.
// An empty body leaves v untouched.
func decodeOptionalBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		badRequest(w, "invalid JSON: "+err.Error())
		return false
	}
	return true
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UID   string `json:"uid"`
		Token string `json:"token"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.UID == "" || req.Token == "" {
		badRequest(w, "uid and token are required")
		return
	}
	sess, err := s.ws.SignIn(r.Context(), req.UID, req.Token)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if err := s.ws.SignOut(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"signed_out": true})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	sess, err := s.ws.CurrentUser()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user":    sess,
		"tailnet": userInfoFromContext(r),
	})
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	var (
		plan *models.FitnessPlan
		err  error
	)
	if r.URL.Query().Get("refresh") != "" {
		plan, err = s.ws.RefreshPlan(r.Context())
	} else {
		plan, err = s.ws.Plan(r.Context())
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"plan": plan})
}

func (s *Server) handlePlanToday(w http.ResponseWriter, r *http.Request) {
	day, err := s.ws.DailyWorkout(r.Context())
	if errors.Is(err, schedule.ErrScheduleUnresolved) {
		writeJSON(w, http.StatusOK, map[string]any{"scheduled": false, "reason": err.Error()})
		return
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"scheduled": true, "day": day})
}

func (s *Server) handlePlanWeek(w http.ResponseWriter, r *http.Request) {
	days, err := s.ws.WeeklyWorkout(r.Context())
	if errors.Is(err, schedule.ErrScheduleUnresolved) {
		writeJSON(w, http.StatusOK, map[string]any{"scheduled": false, "reason": err.Error()})
		return
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"scheduled": true, "days": days})
}

func (s *Server) handleExercises(w http.ResponseWriter, r *http.Request) {
	page := 1
	if p := r.URL.Query().Get("page"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 {
			badRequest(w, "page must be a positive integer")
			return
		}
		page = n
	}

	result, err := s.ws.Exercises(r.Context(), page)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		result.Exercises = filterExercises(result.Exercises, q)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"page":        page,
		"total_pages": result.TotalPages,
		"exercises":   result.Exercises,
	})
}

// filterExercises keeps catalog entries whose name contains q, ignoring case.
func filterExercises(in []models.CatalogExercise, q string) []models.CatalogExercise {
	q = strings.ToLower(q)
	out := make([]models.CatalogExercise, 0, len(in))
	for _, ex := range in {
		if strings.Contains(strings.ToLower(ex.Name), q) {
			out = append(out, ex)
		}
	}
	return out
}

func (s *Server) handleSurvey(w http.ResponseWriter, r *http.Request) {
	var survey models.Survey
	if !decodeBody(w, r, &survey) {
		return
	}
	if err := s.ws.SubmitSurvey(r.Context(), survey); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]bool{"submitted": true})
}

func (s *Server) handleHeatmap(w http.ResponseWriter, r *http.Request) {
	now := s.ws.now().In(s.ws.resolver.Zone())
	year, month := now.Year(), now.Month()
	if m := r.URL.Query().Get("month"); m != "" {
		t, err := time.Parse("2006-01", m)
		if err != nil {
			badRequest(w, "month must be YYYY-MM")
			return
		}
		year, month = t.Year(), t.Month()
	}

	hm, err := s.ws.Heatmap(r.Context(), year, month)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hm)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	rows, err := s.ws.QueryWorkoutSets(r.Context(), start, end)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if ex := r.URL.Query().Get("exercise"); ex != "" {
		rows = filterHistory(rows, ex)
	}
	writeJSON(w, http.StatusOK, rows)
}

// filterHistory keeps rows whose exercise name contains q, ignoring case.
func filterHistory(in []models.HistorySetRow, q string) []models.HistorySetRow {
	q = strings.ToLower(q)
	out := make([]models.HistorySetRow, 0, len(in))
	for _, row := range in {
		if strings.Contains(strings.ToLower(row.ExerciseName), q) {
			out = append(out, row)
		}
	}
	return out
}

func (s *Server) handleHistoryDays(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	days, err := s.ws.WorkoutDays(r.Context(), start, end)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, days)
}

func (s *Server) handleTrainingSummary(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	bucket := r.URL.Query().Get("bucket")
	if bucket == "" {
		bucket = "1 week"
	}
	summary, err := s.ws.TrainingSummary(r.Context(), start, end, bucket)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleHistoryStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.ws.HistoryStats(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleExerciseProgress(w http.ResponseWriter, r *http.Request) {
	exercise := r.URL.Query().Get("exercise")
	if exercise == "" {
		badRequest(w, "exercise is required")
		return
	}
	start, end, err := parseTimeRange(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	progress, err := s.ws.ExerciseProgress(r.Context(), start, end, exercise)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

func (s *Server) handleDeleteWorkout(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "workout"))
	if err != nil {
		badRequest(w, "invalid workout ID")
		return
	}
	n, err := s.ws.DeleteWorkout(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if n == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": fmt.Sprintf("workout %d not found", id)})
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted_sets": n})
}

func (s *Server) handleSubmissions(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	logs, err := s.ws.Submissions(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

func parseTimeRange(r *http.Request) (start, end time.Time, err error) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	if startStr == "" {
		// Default: last 30 days
		end = time.Now()
		start = end.AddDate(0, 0, -30)
		return
	}

	start, err = time.Parse(time.RFC3339, startStr)
	if err != nil {
		start, err = time.Parse("2006-01-02", startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}

	if endStr == "" {
		end = time.Now()
	} else {
		end, err = time.Parse(time.RFC3339, endStr)
		if err != nil {
			end, err = time.Parse("2006-01-02", endStr)
			if err != nil {
				return time.Time{}, time.Time{}, err
			}
			// End of day for date-only
			end = end.Add(24 * time.Hour)
		}
	}
	return
}
