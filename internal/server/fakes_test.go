package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/claude/fitbuddy/internal/auth"
	"github.com/claude/fitbuddy/internal/backend"
	"github.com/claude/fitbuddy/internal/models"
	"github.com/claude/fitbuddy/internal/schedule"
	"github.com/claude/fitbuddy/internal/storage"
)

const testAPIKey = "test-key"

// fakeBackend records calls and answers from canned data.
type fakeBackend struct {
	mu         sync.Mutex
	plan       *models.FitnessPlan
	planCalls  int
	loginErr   error
	catalog    []models.CatalogExercise
	ids        map[string]int
	logErr     error
	logged     []*models.WorkoutLog
	surveys    []models.Survey
	createdFor []string

	// When set, LogWorkout signals logStarted and waits on logRelease.
	logStarted chan struct{}
	logRelease chan struct{}
}

func (f *fakeBackend) Login(context.Context) (string, error) {
	if f.loginErr != nil {
		return "", f.loginErr
	}
	return "sam@example.com", nil
}

func (f *fakeBackend) Plan(context.Context) (*models.FitnessPlan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.planCalls++
	return f.plan, nil
}

func (f *fakeBackend) Exercises(_ context.Context, page int) (*models.ExercisePage, error) {
	return &models.ExercisePage{Exercises: f.catalog, TotalPages: 3}, nil
}

func (f *fakeBackend) ExerciseID(_ context.Context, name string) (int, error) {
	id, ok := f.ids[name]
	if !ok {
		return 0, backend.ErrNotFound
	}
	return id, nil
}

func (f *fakeBackend) PlanDayID(context.Context, string) (int, error) { return 5, nil }

// CreateWorkout hands out ids 99, 100, ...
func (f *fakeBackend) CreateWorkout(_ context.Context, uid string, _ int, _ time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createdFor = append(f.createdFor, uid)
	return 98 + len(f.createdFor), nil
}

func (f *fakeBackend) LogWorkout(_ context.Context, log *models.WorkoutLog) error {
	if f.logStarted != nil {
		f.logStarted <- struct{}{}
		<-f.logRelease
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.logErr != nil {
		return f.logErr
	}
	f.logged = append(f.logged, log)
	return nil
}

func (f *fakeBackend) SubmitSurvey(_ context.Context, s models.Survey) error {
	f.surveys = append(f.surveys, s)
	return nil
}

// fakeHistory keeps history rows and submission logs in memory.
type fakeHistory struct {
	mu      sync.Mutex
	rows    []models.HistorySetRow
	logs    map[int64]storage.SubmissionLog
	nextLog int64
	users   []string
}

func newFakeHistory() *fakeHistory {
	return &fakeHistory{logs: make(map[int64]storage.SubmissionLog)}
}

func (f *fakeHistory) TouchUser(_ context.Context, uid, _ string) (int, error) {
	f.users = append(f.users, uid)
	return len(f.users), nil
}

func (f *fakeHistory) InsertWorkoutSets(_ context.Context, rows []models.HistorySetRow) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, rows...)
	return int64(len(rows)), nil
}

func (f *fakeHistory) QueryWorkoutSets(_ context.Context, start, end time.Time, userID string) ([]models.HistorySetRow, error) {
	var out []models.HistorySetRow
	for _, r := range f.rows {
		if r.UserID == userID && !r.CompletedAt.Before(start) && r.CompletedAt.Before(end) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeHistory) WorkoutDays(ctx context.Context, start, end time.Time, userID string, loc *time.Location) ([]models.Date, error) {
	rows, _ := f.QueryWorkoutSets(ctx, start, end, userID)
	times := make([]time.Time, len(rows))
	for i, r := range rows {
		times[i] = r.CompletedAt
	}
	return storage.BucketDays(times, loc), nil
}

func (f *fakeHistory) DeleteWorkout(_ context.Context, workoutID int, userID string) (int64, error) {
	var kept []models.HistorySetRow
	var n int64
	for _, r := range f.rows {
		if r.WorkoutID == workoutID && r.UserID == userID {
			n++
			continue
		}
		kept = append(kept, r)
	}
	f.rows = kept
	return n, nil
}

func (f *fakeHistory) GetTrainingSummary(context.Context, time.Time, time.Time, string, string) ([]storage.TrainingSummaryPeriod, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeHistory) GetHistoryStats(_ context.Context, userID string, _ int) (*storage.HistoryStats, error) {
	workouts := map[int]bool{}
	for _, r := range f.rows {
		if r.UserID == userID {
			workouts[r.WorkoutID] = true
		}
	}
	return &storage.HistoryStats{TotalWorkouts: int64(len(workouts)), TotalSets: int64(len(f.rows))}, nil
}

func (f *fakeHistory) GetExerciseProgress(ctx context.Context, start, end time.Time, userID, exercise string) (*storage.ExerciseProgress, error) {
	rows, _ := f.QueryWorkoutSets(ctx, start, end, userID)
	return storage.Progress(exercise, rows), nil
}

func (f *fakeHistory) InsertSubmissionLog(_ context.Context, log storage.SubmissionLog) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextLog++
	log.ID = f.nextLog
	f.logs[log.ID] = log
	return log.ID, nil
}

func (f *fakeHistory) UpdateSubmissionLog(_ context.Context, id int64, log storage.SubmissionLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	log.ID = id
	f.logs[id] = log
	return nil
}

func (f *fakeHistory) QuerySubmissionLogs(_ context.Context, userID string, _ int) ([]storage.SubmissionLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []storage.SubmissionLog
	for i := int64(1); i <= f.nextLog; i++ {
		if l := f.logs[i]; l.UserID == userID {
			out = append(out, l)
		}
	}
	return out, nil
}

// testPlan is a 14-day plan starting Wednesday 2024-07-03.
func testPlan() *models.FitnessPlan {
	start, _ := models.ParseDate("2024-07-03")
	plan := &models.FitnessPlan{Name: "Strength", StartDate: start}
	for i := range 14 {
		plan.Days = append(plan.Days, models.DayPlan{
			DayOfWeek: time.Weekday((int(time.Monday) + i) % 7).String(),
			Exercises: []models.PlannedExercise{{Name: "Squat", Sets: 3, Reps: 5 + i}},
		})
	}
	return plan
}

type testEnv struct {
	ws      *Workspace
	srv     *Server
	backend *fakeBackend
	history *fakeHistory
	auth    *auth.Manager
}

// newTestEnv builds a signed-in workspace fixed at 2024-07-06 12:00 UTC.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := auth.OpenStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	mgr, err := auth.NewManager(context.Background(), store)
	if err != nil {
		t.Fatal(err)
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	fb := &fakeBackend{
		plan:    testPlan(),
		catalog: []models.CatalogExercise{{ID: 1, Name: "Barbell Squat"}, {ID: 2, Name: "Bench Press"}, {ID: 3, Name: "Front Squat"}},
		ids:     map[string]int{"Squat": 11, "Bench Press": 12},
	}
	fh := newFakeHistory()
	ws := NewWorkspace(fb, mgr, fh, schedule.New(time.UTC), log)
	ws.now = func() time.Time { return time.Date(2024, 7, 6, 12, 0, 0, 0, time.UTC) }

	if _, err := ws.SignIn(context.Background(), "u1", "tok"); err != nil {
		t.Fatal(err)
	}
	return &testEnv{ws: ws, srv: New(ws, testAPIKey, log), backend: fb, history: fh, auth: mgr}
}
