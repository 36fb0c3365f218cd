package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/claude/fitbuddy/internal/auth"
	"github.com/claude/fitbuddy/internal/backend"
	"github.com/claude/fitbuddy/internal/models"
	"github.com/claude/fitbuddy/internal/schedule"
	"github.com/claude/fitbuddy/internal/session"
	"github.com/claude/fitbuddy/internal/storage"
	"github.com/google/uuid"
)

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("X-API-Key", testAPIKey)
	rec := httptest.NewRecorder()
	e.srv.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode error: %v (body %q)", err, rec.Body.String())
	}
	return v
}

type keyedSummary struct {
	Key     uuid.UUID       `json:"key"`
	Session session.Summary `json:"session"`
}

type updateResult struct {
	Accepted bool            `json:"accepted"`
	Session  session.Summary `json:"session"`
}

func setLabels(ex session.Exercise) []string {
	out := make([]string, len(ex.Sets))
	for i, s := range ex.Sets {
		out[i] = s.Label
	}
	return out
}

// TestAPIRequiresKey verifies /api/v1 routes reject requests without the key.
func TestAPIRequiresKey(t *testing.T) {
	env := newTestEnv(t)
	rec := httptest.NewRecorder()
	env.srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/session", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

// TestMe verifies the signed-in user and tailnet identity are reported.
func TestMe(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/v1/me", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decode[struct {
		User    auth.Session `json:"user"`
		Tailnet UserInfo     `json:"tailnet"`
	}](t, rec)
	if body.User.UID != "u1" {
		t.Errorf("uid = %q, want u1", body.User.UID)
	}
	if body.Tailnet.Login != "local" {
		t.Errorf("tailnet login = %q, want local", body.Tailnet.Login)
	}
	if strings.Contains(rec.Body.String(), "tok") {
		t.Error("token leaked in /me response")
	}
}

// TestSignOutThenUnauthorized verifies signed-out calls map to 401.
func TestSignOutThenUnauthorized(t *testing.T) {
	env := newTestEnv(t)
	if rec := env.do(t, http.MethodPost, "/api/v1/auth/signout", nil); rec.Code != http.StatusOK {
		t.Fatalf("signout status = %d", rec.Code)
	}
	for _, path := range []string{"/api/v1/me", "/api/v1/history"} {
		if rec := env.do(t, http.MethodGet, path, nil); rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want 401", path, rec.Code)
		}
	}
	if rec := env.do(t, http.MethodPost, "/api/v1/survey", models.Survey{Goal: "not-sure", Type: "not-sure", Level: "beginner"}); rec.Code != http.StatusUnauthorized {
		t.Errorf("survey: status = %d, want 401", rec.Code)
	}
}

// TestSignInRejected verifies a backend rejection is a 502 and leaves nobody signed in.
func TestSignInRejected(t *testing.T) {
	env := newTestEnv(t)
	env.backend.loginErr = &backend.StatusError{Path: "/users/login/", Code: http.StatusUnauthorized}

	rec := env.do(t, http.MethodPost, "/api/v1/auth/signin", map[string]string{"uid": "u2", "token": "bad"})
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
	if _, ok := env.auth.Current(); ok {
		t.Error("credentials kept after rejected sign-in")
	}
}

// TestSignInRequiresFields verifies uid and token are mandatory.
func TestSignInRequiresFields(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/v1/auth/signin", map[string]string{"uid": "u2"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

// TestPlanCached verifies the plan is fetched once and refreshed on demand.
func TestPlanCached(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodGet, "/api/v1/plan", nil)
	env.do(t, http.MethodGet, "/api/v1/plan", nil)
	if env.backend.planCalls != 1 {
		t.Errorf("plan calls = %d, want 1", env.backend.planCalls)
	}
	env.do(t, http.MethodGet, "/api/v1/plan?refresh=1", nil)
	if env.backend.planCalls != 2 {
		t.Errorf("plan calls after refresh = %d, want 2", env.backend.planCalls)
	}
}

// TestPlanToday resolves day 5 for a Wednesday start viewed on Saturday.
func TestPlanToday(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/v1/plan/today", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decode[struct {
		Scheduled bool           `json:"scheduled"`
		Day       models.DayPlan `json:"day"`
	}](t, rec)
	if !body.Scheduled {
		t.Fatal("scheduled = false, want true")
	}
	if got := body.Day.Exercises[0].Reps; got != 10 {
		t.Errorf("reps = %d, want 10 (plan day 5)", got)
	}
}

// TestPlanWeek returns the first seven plan days.
func TestPlanWeek(t *testing.T) {
	env := newTestEnv(t)
	body := decode[struct {
		Scheduled bool             `json:"scheduled"`
		Days      []models.DayPlan `json:"days"`
	}](t, env.do(t, http.MethodGet, "/api/v1/plan/week", nil))
	if len(body.Days) != 7 {
		t.Fatalf("days = %d, want 7", len(body.Days))
	}
	if body.Days[0].Exercises[0].Reps != 5 {
		t.Errorf("first day reps = %d, want 5", body.Days[0].Exercises[0].Reps)
	}
}

// TestPlanTodayUnresolved verifies a day outside the plan is reported, not failed.
func TestPlanTodayUnresolved(t *testing.T) {
	env := newTestEnv(t)
	env.ws.now = func() time.Time { return time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC) }

	rec := env.do(t, http.MethodGet, "/api/v1/plan/today", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decode[map[string]any](t, rec)
	if body["scheduled"] != false {
		t.Errorf("scheduled = %v, want false", body["scheduled"])
	}
	if body["reason"] == "" {
		t.Error("reason is empty")
	}
}

// TestExercisesFilter verifies the catalog page and the name filter.
func TestExercisesFilter(t *testing.T) {
	env := newTestEnv(t)
	body := decode[struct {
		Page       int                      `json:"page"`
		TotalPages int                      `json:"total_pages"`
		Exercises  []models.CatalogExercise `json:"exercises"`
	}](t, env.do(t, http.MethodGet, "/api/v1/exercises?page=2&q=SQUAT", nil))

	if body.Page != 2 || body.TotalPages != 3 {
		t.Errorf("page = %d/%d, want 2/3", body.Page, body.TotalPages)
	}
	if len(body.Exercises) != 2 {
		t.Errorf("exercises = %d, want 2 squats", len(body.Exercises))
	}

	if rec := env.do(t, http.MethodGet, "/api/v1/exercises?page=0", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("page=0: status = %d, want 400", rec.Code)
	}
}

// TestSurvey verifies the uid is filled in and invalid answers are 400.
func TestSurvey(t *testing.T) {
	env := newTestEnv(t)
	good := models.Survey{Goal: "build-muscle", Type: "mesomorph", Level: "beginner", Equipment: []string{"barbell"}}
	if rec := env.do(t, http.MethodPost, "/api/v1/survey", good); rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	if len(env.backend.surveys) != 1 || env.backend.surveys[0].UID != "u1" {
		t.Errorf("surveys = %+v, want one for u1", env.backend.surveys)
	}

	bad := good
	bad.Level = "elite"
	if rec := env.do(t, http.MethodPost, "/api/v1/survey", bad); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid survey: status = %d, want 400", rec.Code)
	}
}

// TestSessionEditing walks the squat scenario: two sets, a warm-up, edits and rejected input.
func TestSessionEditing(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/session/exercises", session.ExerciseDetails{Name: "Squat"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add exercise: status = %d, want 201", rec.Code)
	}
	added := decode[keyedSummary](t, rec)
	if added.Key == uuid.Nil {
		t.Error("exercise key is nil")
	}

	if rec := env.do(t, http.MethodPost, "/api/v1/session/exercises/0/sets", nil); rec.Code != http.StatusCreated {
		t.Fatalf("add set: status = %d, want 201", rec.Code)
	}

	res := decode[updateResult](t, env.do(t, http.MethodPatch, "/api/v1/session/exercises/0/sets/1",
		map[string]string{"field": "weight", "value": "100.5"}))
	if !res.Accepted {
		t.Error("weight 100.5 rejected")
	}
	res = decode[updateResult](t, env.do(t, http.MethodPatch, "/api/v1/session/exercises/0/sets/1",
		map[string]string{"field": "reps", "value": "5"}))
	if !res.Accepted {
		t.Error("reps 5 rejected")
	}

	rec = env.do(t, http.MethodPatch, "/api/v1/session/exercises/0/sets/1",
		map[string]string{"field": "weight", "value": "1.2.3"})
	if rec.Code != http.StatusOK {
		t.Fatalf("rejected edit: status = %d, want 200", rec.Code)
	}
	res = decode[updateResult](t, rec)
	if res.Accepted {
		t.Error("weight 1.2.3 accepted")
	}
	if got := res.Session.Exercises[0].Sets[1].Weight; got != "100.5" {
		t.Errorf("weight after rejected edit = %q, want 100.5", got)
	}

	sum := decode[session.Summary](t, env.do(t, http.MethodPost, "/api/v1/session/exercises/0/sets/0/kind", nil))
	if got := setLabels(sum.Exercises[0]); got[0] != session.WarmUpLabel || got[1] != "1" {
		t.Errorf("labels = %v, want [Warm-up 1]", got)
	}

	sum = decode[session.Summary](t, env.do(t, http.MethodPost, "/api/v1/session/exercises/0/sets/1/done", nil))
	if sum.TotalVolume != 502.5 {
		t.Errorf("total volume = %v, want 502.5", sum.TotalVolume)
	}

	sum = decode[session.Summary](t, env.do(t, http.MethodPost, "/api/v1/session/exercises/0/sets/0/kind",
		map[string]string{"kind": "normal"}))
	if got := setLabels(sum.Exercises[0]); got[0] != "1" || got[1] != "2" {
		t.Errorf("labels = %v, want [1 2]", got)
	}
}

// TestSessionBadRequests covers invalid fields, kinds and paths.
func TestSessionBadRequests(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/api/v1/session/exercises", session.ExerciseDetails{Name: "Squat"})

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"no name", http.MethodPost, "/api/v1/session/exercises", map[string]string{}, http.StatusBadRequest},
		{"bad field", http.MethodPatch, "/api/v1/session/exercises/0/sets/0", map[string]string{"field": "tempo", "value": "1"}, http.StatusBadRequest},
		{"bad kind", http.MethodPost, "/api/v1/session/exercises/0/sets/0/kind", map[string]string{"kind": "drop"}, http.StatusBadRequest},
		{"malformed kind body", http.MethodPost, "/api/v1/session/exercises/0/sets/0/kind", []int{1}, http.StatusBadRequest},
		{"negative index", http.MethodDelete, "/api/v1/session/exercises/-1", nil, http.StatusBadRequest},
		{"stale exercise", http.MethodDelete, "/api/v1/session/exercises/3", nil, http.StatusNotFound},
		{"stale set", http.MethodPost, "/api/v1/session/exercises/0/sets/4/done", nil, http.StatusNotFound},
		{"empty reorder", http.MethodPut, "/api/v1/session/order", map[string]any{}, http.StatusBadRequest},
		{"wrong order", http.MethodPut, "/api/v1/session/order", map[string]any{"keys": []uuid.UUID{uuid.New()}}, http.StatusBadRequest},
		{"move out of range", http.MethodPut, "/api/v1/session/order", map[string]int{"from": 0, "to": 5}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, tt.method, tt.path, tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

// TestDecodeOptionalBody verifies an omitted body is accepted and a malformed
// one is a 400.
func TestDecodeOptionalBody(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		wantOK bool
		want   string
	}{
		{"empty", "", true, "keep"},
		{"object", `{"kind":"warmup"}`, true, "warmup"},
		{"truncated", `{"kind":`, false, "keep"},
		{"wrong type", `[1]`, false, "keep"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			v := struct {
				Kind string `json:"kind"`
			}{Kind: "keep"}

			ok := decodeOptionalBody(rec, req, &v)
			if ok != tt.wantOK || v.Kind != tt.want {
				t.Errorf("ok = %v, kind = %q; want %v, %q", ok, v.Kind, tt.wantOK, tt.want)
			}
			if !ok && rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

// TestSessionReorder verifies both key ordering and single moves.
func TestSessionReorder(t *testing.T) {
	env := newTestEnv(t)
	var keys []uuid.UUID
	for _, name := range []string{"Squat", "Bench Press", "Row"} {
		keys = append(keys, decode[keyedSummary](t, env.do(t, http.MethodPost, "/api/v1/session/exercises", session.ExerciseDetails{Name: name})).Key)
	}

	sum := decode[session.Summary](t, env.do(t, http.MethodPut, "/api/v1/session/order",
		map[string]any{"keys": []uuid.UUID{keys[2], keys[0], keys[1]}}))
	if sum.Exercises[0].Name != "Row" || sum.Exercises[2].Name != "Bench Press" {
		t.Errorf("order = %s, %s, %s", sum.Exercises[0].Name, sum.Exercises[1].Name, sum.Exercises[2].Name)
	}

	sum = decode[session.Summary](t, env.do(t, http.MethodPut, "/api/v1/session/order", map[string]int{"from": 0, "to": 2}))
	if sum.Exercises[2].Name != "Row" || sum.Exercises[0].Name != "Squat" {
		t.Errorf("after move = %s, %s, %s", sum.Exercises[0].Name, sum.Exercises[1].Name, sum.Exercises[2].Name)
	}
}

// TestFocusAndDiscard verifies the timer follows focus and discard clears everything.
func TestFocusAndDiscard(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/api/v1/session/exercises", session.ExerciseDetails{Name: "Squat"})

	sum := decode[session.Summary](t, env.do(t, http.MethodPost, "/api/v1/session/focus", map[string]bool{"focused": true}))
	if !sum.Running {
		t.Error("timer not running after focus")
	}
	sum = decode[session.Summary](t, env.do(t, http.MethodPost, "/api/v1/session/focus", map[string]bool{"focused": false}))
	if sum.Running {
		t.Error("timer running after blur")
	}

	sum = decode[session.Summary](t, env.do(t, http.MethodPost, "/api/v1/session/discard", nil))
	if len(sum.Exercises) != 0 || sum.ElapsedSeconds != 0 {
		t.Errorf("after discard: %d exercises, %ds", len(sum.Exercises), sum.ElapsedSeconds)
	}
}

// TestSubmit verifies the full submission: backend log, mirror rows,
// submission record and a cleared session.
func TestSubmit(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/api/v1/session/exercises", session.ExerciseDetails{Name: "Squat"})
	env.do(t, http.MethodPost, "/api/v1/session/exercises/0/sets", nil)
	env.do(t, http.MethodPost, "/api/v1/session/exercises/0/sets/0/kind", nil)
	env.do(t, http.MethodPatch, "/api/v1/session/exercises/0/sets/1", map[string]string{"field": "weight", "value": "100"})
	env.do(t, http.MethodPatch, "/api/v1/session/exercises/0/sets/1", map[string]string{"field": "reps", "value": "5"})
	env.do(t, http.MethodPost, "/api/v1/session/exercises/0/sets/1/done", nil)

	rec := env.do(t, http.MethodPost, "/api/v1/session/submit", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	result := decode[SubmitResult](t, rec)
	if result.WorkoutID != 99 || result.Sets != 2 || result.SetsMirrored != 2 {
		t.Errorf("result = %+v", result)
	}
	if result.TotalVolume != 500 {
		t.Errorf("total volume = %v, want 500", result.TotalVolume)
	}

	if len(env.backend.logged) != 1 {
		t.Fatalf("logged workouts = %d, want 1", len(env.backend.logged))
	}
	sets := env.backend.logged[0].Exercises[0].Sets
	if !sets[0].IsWarmup || sets[0].SetNumber != 0 {
		t.Errorf("warm-up set = %+v, want set number 0", sets[0])
	}
	if sets[1].SetNumber != 1 || sets[1].Weight != 100 || sets[1].Reps != 5 {
		t.Errorf("working set = %+v", sets[1])
	}
	if env.backend.logged[0].Exercises[0].ExerciseID != 11 {
		t.Errorf("exercise id = %d, want 11", env.backend.logged[0].Exercises[0].ExerciseID)
	}

	logs := decode[[]storage.SubmissionLog](t, env.do(t, http.MethodGet, "/api/v1/submissions", nil))
	if len(logs) != 1 || logs[0].Status != storage.SubmissionSuccess {
		t.Errorf("submission logs = %+v, want one success", logs)
	}

	sum := decode[session.Summary](t, env.do(t, http.MethodGet, "/api/v1/session/", nil))
	if len(sum.Exercises) != 0 {
		t.Errorf("session has %d exercises after submit, want 0", len(sum.Exercises))
	}
}

// TestSubmitEmpty verifies an empty session cannot be submitted.
func TestSubmitEmpty(t *testing.T) {
	env := newTestEnv(t)
	if rec := env.do(t, http.MethodPost, "/api/v1/session/submit", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if len(env.backend.createdFor) != 0 {
		t.Error("workout created for empty session")
	}
}

// TestSubmitFailureKeepsSession verifies a backend failure is a 502, is
// recorded, and leaves the session intact for a retry.
func TestSubmitFailureKeepsSession(t *testing.T) {
	env := newTestEnv(t)
	env.backend.logErr = errors.New("connection reset")
	env.do(t, http.MethodPost, "/api/v1/session/exercises", session.ExerciseDetails{Name: "Squat"})

	if rec := env.do(t, http.MethodPost, "/api/v1/session/submit", nil); rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
	sum, _ := env.ws.SessionSummary(context.Background())
	if len(sum.Exercises) != 1 {
		t.Errorf("session has %d exercises after failed submit, want 1", len(sum.Exercises))
	}
	if len(env.history.rows) != 0 {
		t.Errorf("mirrored %d rows for failed submit", len(env.history.rows))
	}
	logs, _ := env.history.QuerySubmissionLogs(context.Background(), "u1", 10)
	if len(logs) != 1 || logs[0].Status != storage.SubmissionError || logs[0].ErrorMessage == nil {
		t.Errorf("submission logs = %+v, want one error", logs)
	}
}

// TestSubmitUnknownExercise verifies a catalog miss fails the submission.
func TestSubmitUnknownExercise(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/api/v1/session/exercises", session.ExerciseDetails{Name: "Zercher Squat"})
	if rec := env.do(t, http.MethodPost, "/api/v1/session/submit", nil); rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
	if len(env.backend.logged) != 0 {
		t.Error("workout logged despite unknown exercise")
	}
}

func seedHistory(env *testEnv) {
	at := func(d int) time.Time { return time.Date(2024, 7, d, 18, 0, 0, 0, time.UTC) }
	env.history.rows = []models.HistorySetRow{
		{UserID: "u1", WorkoutID: 1, CompletedAt: at(1), ExerciseName: "Squat", SetNumber: 1, Weight: 100, Reps: 5},
		{UserID: "u1", WorkoutID: 1, CompletedAt: at(1), ExerciseName: "Bench Press", SetNumber: 1, Weight: 60, Reps: 8},
		{UserID: "u1", WorkoutID: 2, CompletedAt: at(4), ExerciseName: "Squat", SetNumber: 1, Weight: 105, Reps: 5},
		{UserID: "u2", WorkoutID: 3, CompletedAt: at(5), ExerciseName: "Squat", SetNumber: 1, Weight: 50, Reps: 5},
	}
}

// TestHeatmap verifies completed days come from the history mirror.
func TestHeatmap(t *testing.T) {
	env := newTestEnv(t)
	seedHistory(env)

	rec := env.do(t, http.MethodGet, "/api/v1/heatmap?month=2024-07", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	hm := decode[schedule.Heatmap](t, rec)
	if hm.Completed != 2 {
		t.Errorf("completed = %d, want 2", hm.Completed)
	}
	if hm.Month != time.July || hm.Year != 2024 {
		t.Errorf("month = %v %d, want July 2024", hm.Month, hm.Year)
	}

	if rec := env.do(t, http.MethodGet, "/api/v1/heatmap?month=July", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("bad month: status = %d, want 400", rec.Code)
	}
}

// TestHistoryQueries covers the history list, its filter, the day list and stats.
func TestHistoryQueries(t *testing.T) {
	env := newTestEnv(t)
	seedHistory(env)

	rows := decode[[]models.HistorySetRow](t, env.do(t, http.MethodGet, "/api/v1/history?start=2024-07-01&end=2024-07-31", nil))
	if len(rows) != 3 {
		t.Errorf("rows = %d, want 3 for u1", len(rows))
	}
	rows = decode[[]models.HistorySetRow](t, env.do(t, http.MethodGet, "/api/v1/history?start=2024-07-01&end=2024-07-31&exercise=bench", nil))
	if len(rows) != 1 {
		t.Errorf("bench rows = %d, want 1", len(rows))
	}

	days := decode[[]models.Date](t, env.do(t, http.MethodGet, "/api/v1/history/days?start=2024-07-01&end=2024-07-31", nil))
	if len(days) != 2 || days[0].String() != "2024-07-01" || days[1].String() != "2024-07-04" {
		t.Errorf("days = %v, want [2024-07-01 2024-07-04]", days)
	}

	stats := decode[storage.HistoryStats](t, env.do(t, http.MethodGet, "/api/v1/history/stats", nil))
	if stats.TotalWorkouts != 2 {
		t.Errorf("total workouts = %d, want 2", stats.TotalWorkouts)
	}

	if rec := env.do(t, http.MethodGet, "/api/v1/history?start=yesterday", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("bad start: status = %d, want 400", rec.Code)
	}
}

// TestExerciseProgress verifies per-workout progression for the signed-in
// user and that the exercise parameter is required.
func TestExerciseProgress(t *testing.T) {
	env := newTestEnv(t)
	seedHistory(env)

	p := decode[storage.ExerciseProgress](t, env.do(t, http.MethodGet, "/api/v1/history/progress?exercise=squat&start=2024-07-01&end=2024-07-31", nil))
	if len(p.Workouts) != 2 {
		t.Fatalf("workouts = %d, want 2 for u1", len(p.Workouts))
	}
	if p.Workouts[0].WorkoutID != 1 || p.Workouts[1].WorkoutID != 2 {
		t.Errorf("order = %d,%d, want 1,2", p.Workouts[0].WorkoutID, p.Workouts[1].WorkoutID)
	}
	if p.BestWeight != 105 {
		t.Errorf("best weight = %g, want 105", p.BestWeight)
	}

	if rec := env.do(t, http.MethodGet, "/api/v1/history/progress", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("missing exercise: status = %d, want 400", rec.Code)
	}
}

// TestDeleteWorkout verifies mirror deletion and the not-found case.
func TestDeleteWorkout(t *testing.T) {
	env := newTestEnv(t)
	seedHistory(env)

	body := decode[map[string]int64](t, env.do(t, http.MethodDelete, "/api/v1/history/1", nil))
	if body["deleted_sets"] != 2 {
		t.Errorf("deleted_sets = %d, want 2", body["deleted_sets"])
	}
	if rec := env.do(t, http.MethodDelete, "/api/v1/history/3", nil); rec.Code != http.StatusNotFound {
		t.Errorf("other user's workout: status = %d, want 404", rec.Code)
	}
	if rec := env.do(t, http.MethodDelete, "/api/v1/history/abc", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("bad id: status = %d, want 400", rec.Code)
	}
}

// TestHistoryNotConfigured verifies history routes report 503 without a store.
func TestHistoryNotConfigured(t *testing.T) {
	env := newTestEnv(t)
	env.ws.history = nil

	for _, path := range []string{"/api/v1/history", "/api/v1/heatmap", "/api/v1/history/stats", "/api/v1/submissions"} {
		if rec := env.do(t, http.MethodGet, path, nil); rec.Code != http.StatusServiceUnavailable {
			t.Errorf("%s: status = %d, want 503", path, rec.Code)
		}
	}
}

// TestStatusFor pins the error-to-status mapping.
func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{auth.ErrSignedOut, http.StatusUnauthorized},
		{session.ErrIndexOutOfRange, http.StatusNotFound},
		{session.ErrInvalidOrder, http.StatusBadRequest},
		{session.ErrEmpty, http.StatusBadRequest},
		{models.ErrInvalidSurvey, http.StatusBadRequest},
		{upstream(errors.New("timeout")), http.StatusBadGateway},
		{upstream(auth.ErrSignedOut), http.StatusUnauthorized},
		{errNoHistory, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

// TestParseTimeRange verifies date-only ends cover the whole day.
func TestParseTimeRange(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?start=2024-07-01&end=2024-07-02", nil)
	start, end, err := parseTimeRange(req)
	if err != nil {
		t.Fatal(err)
	}
	if !start.Equal(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %v", start)
	}
	if !end.Equal(time.Date(2024, 7, 3, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("end = %v, want 2024-07-03", end)
	}
}
