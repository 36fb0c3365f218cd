package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/claude/fitbuddy/internal/auth"
	"github.com/claude/fitbuddy/internal/models"
	"github.com/claude/fitbuddy/internal/schedule"
	"github.com/claude/fitbuddy/internal/session"
	"github.com/claude/fitbuddy/internal/storage"
)

var (
	// errUpstream marks failures talking to the fitness backend.
	errUpstream = errors.New("backend request failed")
	// errNoHistory is returned when no history store is configured.
	errNoHistory = errors.New("history store not configured")
)

// Backend is the part of the fitness backend client the workspace uses.
// *backend.Client satisfies it.
type Backend interface {
	Login(ctx context.Context) (string, error)
	Plan(ctx context.Context) (*models.FitnessPlan, error)
	Exercises(ctx context.Context, page int) (*models.ExercisePage, error)
	ExerciseID(ctx context.Context, name string) (int, error)
	PlanDayID(ctx context.Context, uid string) (int, error)
	CreateWorkout(ctx context.Context, uid string, planDayID int, completedAt time.Time) (int, error)
	LogWorkout(ctx context.Context, log *models.WorkoutLog) error
	SubmitSurvey(ctx context.Context, s models.Survey) error
}

// History is the workout history mirror. *storage.DB satisfies it.
type History interface {
	TouchUser(ctx context.Context, uid, email string) (int, error)
	InsertWorkoutSets(ctx context.Context, rows []models.HistorySetRow) (int64, error)
	QueryWorkoutSets(ctx context.Context, start, end time.Time, userID string) ([]models.HistorySetRow, error)
	WorkoutDays(ctx context.Context, start, end time.Time, userID string, loc *time.Location) ([]models.Date, error)
	DeleteWorkout(ctx context.Context, workoutID int, userID string) (int64, error)
	GetTrainingSummary(ctx context.Context, start, end time.Time, bucket, userID string) ([]storage.TrainingSummaryPeriod, error)
	GetHistoryStats(ctx context.Context, userID string, topN int) (*storage.HistoryStats, error)
	GetExerciseProgress(ctx context.Context, start, end time.Time, userID, exercise string) (*storage.ExerciseProgress, error)
	InsertSubmissionLog(ctx context.Context, log storage.SubmissionLog) (int64, error)
	UpdateSubmissionLog(ctx context.Context, id int64, log storage.SubmissionLog) error
	QuerySubmissionLogs(ctx context.Context, userID string, limit int) ([]storage.SubmissionLog, error)
}

var _ History = (*storage.DB)(nil)

// Workspace owns the single in-progress workout session, its timer and the
// cached fitness plan. All session mutations are serialized by mu. Backend
// calls never run under mu.
type Workspace struct {
	mu       sync.Mutex
	sess     *session.Session
	timer    *session.Timer
	rev      uint64 // bumped on every session change
	gen      uint64 // bumped when the session is reset
	pending  *pendingWorkout
	submitMu sync.Mutex
	plan     *models.FitnessPlan
	planSet  bool
	resolver *schedule.Resolver
	backend  Backend
	auth     *auth.Manager
	history  History
	log      *slog.Logger
	now      func() time.Time
}

// NewWorkspace wires a workspace. history may be nil.
func NewWorkspace(b Backend, a *auth.Manager, h History, r *schedule.Resolver, log *slog.Logger) *Workspace {
	return &Workspace{
		sess:     session.New(),
		timer:    session.NewTimer(nil),
		resolver: r,
		backend:  b,
		auth:     a,
		history:  h,
		log:      log,
		now:      time.Now,
	}
}

func upstream(err error) error {
	if err == nil || errors.Is(err, auth.ErrSignedOut) {
		return err
	}
	return fmt.Errorf("%w: %w", errUpstream, err)
}

// SignIn stores the credentials and verifies them with the backend. On
// rejection the credentials are cleared again.
func (w *Workspace) SignIn(ctx context.Context, uid, token string) (auth.Session, error) {
	sess, err := w.auth.SignIn(ctx, uid, token)
	if err != nil {
		return auth.Session{}, err
	}
	email, err := w.backend.Login(ctx)
	if err != nil {
		if serr := w.auth.SignOut(ctx); serr != nil {
			w.log.Error("clearing rejected credentials", "error", serr)
		}
		return auth.Session{}, upstream(err)
	}
	if w.history != nil {
		if _, err := w.history.TouchUser(ctx, uid, email); err != nil {
			w.log.Warn("recording user", "uid", uid, "error", err)
		}
	}

	w.mu.Lock()
	w.plan, w.planSet = nil, false
	w.mu.Unlock()
	return sess, nil
}

// SignOut clears the credentials, the in-progress session and the plan cache.
func (w *Workspace) SignOut(ctx context.Context) error {
	w.mu.Lock()
	w.resetLocked()
	w.plan, w.planSet = nil, false
	w.mu.Unlock()
	return w.auth.SignOut(ctx)
}

// CurrentUser returns the signed-in identity.
func (w *Workspace) CurrentUser() (auth.Session, error) {
	s, ok := w.auth.Current()
	if !ok {
		return auth.Session{}, auth.ErrSignedOut
	}
	return s, nil
}

// Plan returns the cached fitness plan, fetching it on first use.
func (w *Workspace) Plan(ctx context.Context) (*models.FitnessPlan, error) {
	w.mu.Lock()
	if w.planSet {
		p := w.plan
		w.mu.Unlock()
		return p, nil
	}
	w.mu.Unlock()
	return w.RefreshPlan(ctx)
}

// RefreshPlan fetches the plan from the backend and replaces the cache.
func (w *Workspace) RefreshPlan(ctx context.Context) (*models.FitnessPlan, error) {
	p, err := w.backend.Plan(ctx)
	if err != nil {
		return nil, upstream(err)
	}
	w.mu.Lock()
	w.plan, w.planSet = p, true
	w.mu.Unlock()
	return p, nil
}

// DailyWorkout resolves today's plan day.
func (w *Workspace) DailyWorkout(ctx context.Context) (models.DayPlan, error) {
	p, err := w.Plan(ctx)
	if err != nil {
		return models.DayPlan{}, err
	}
	return w.resolver.DailyWorkout(p, w.now())
}

// WeeklyWorkout resolves the current plan week.
func (w *Workspace) WeeklyWorkout(ctx context.Context) ([]models.DayPlan, error) {
	p, err := w.Plan(ctx)
	if err != nil {
		return nil, err
	}
	return w.resolver.WeeklyWorkout(p, w.now())
}

// Exercises returns one catalog page.
func (w *Workspace) Exercises(ctx context.Context, page int) (*models.ExercisePage, error) {
	p, err := w.backend.Exercises(ctx, page)
	return p, upstream(err)
}

// SubmitSurvey forwards the survey for the signed-in user and drops the
// plan cache, since the backend regenerates the plan from it.
func (w *Workspace) SubmitSurvey(ctx context.Context, s models.Survey) error {
	uid, err := w.auth.UID()
	if err != nil {
		return err
	}
	s.UID = uid
	if err := s.Validate(); err != nil {
		return err
	}
	if err := w.backend.SubmitSurvey(ctx, s); err != nil {
		return upstream(err)
	}
	w.mu.Lock()
	w.plan, w.planSet = nil, false
	w.mu.Unlock()
	return nil
}

// SessionSummary snapshots the in-progress session.
func (w *Workspace) SessionSummary(context.Context) (session.Summary, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return session.Summarize(w.sess, w.timer), nil
}

// Mutate applies fn to the session under the lock and returns the resulting
// summary. The summary is returned even when fn fails, reflecting the
// unchanged state.
func (w *Workspace) Mutate(fn func(*session.Session) error) (session.Summary, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	err := fn(w.sess)
	if err == nil {
		w.rev++
	}
	return session.Summarize(w.sess, w.timer), err
}

// Focus resumes the timer when the workout screen gains focus and pauses it otherwise.
func (w *Workspace) Focus(focused bool) session.Summary {
	w.mu.Lock()
	defer w.mu.Unlock()
	if focused {
		w.timer.Resume()
	} else {
		w.timer.Pause()
	}
	return session.Summarize(w.sess, w.timer)
}

// Discard clears the session and resets the timer.
func (w *Workspace) Discard() session.Summary {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.resetLocked()
	return session.Summarize(w.sess, w.timer)
}

// resetLocked empties the session and forgets any unfinished backend workout.
func (w *Workspace) resetLocked() {
	w.sess.Discard()
	w.timer.Reset()
	w.pending = nil
	w.rev++
	w.gen++
}

// SubmitResult reports a completed submission.
type SubmitResult struct {
	WorkoutID    int     `json:"workout_id"`
	Exercises    int     `json:"exercises"`
	Sets         int     `json:"sets"`
	TotalVolume  float64 `json:"total_volume"`
	SetsMirrored int64   `json:"sets_mirrored"`
	Duration     string  `json:"duration"`
}

// pendingWorkout is a backend workout created by a submission whose log was
// not accepted. The next submission by the same user logs into it instead of
// creating another.
type pendingWorkout struct {
	uid         string
	workoutID   int
	completedAt time.Time
}

// Submit sends the session to the backend: plan day id, new workout id,
// exercise ids, then the log itself. The log is mirrored into the history
// store and the session is discarded unless it was edited while the request
// was in flight. On failure the session is kept and a created backend
// workout is reused by the next attempt.
//
// The backend conversation works on a copy of the session so reads and
// edits are not held up by it. Concurrent submissions are serialized.
func (w *Workspace) Submit(ctx context.Context) (*SubmitResult, error) {
	uid, err := w.auth.UID()
	if err != nil {
		return nil, err
	}

	w.submitMu.Lock()
	defer w.submitMu.Unlock()

	w.mu.Lock()
	if w.sess.Len() == 0 {
		w.mu.Unlock()
		return nil, session.ErrEmpty
	}
	snap := w.sess.Clone()
	rev, gen := w.rev, w.gen
	elapsed := w.timer.Elapsed()
	pending := w.pending
	w.mu.Unlock()
	if pending != nil && pending.uid != uid {
		pending = nil
	}

	started := w.now()
	logID := w.startSubmissionLog(ctx, uid, snap.Len())

	result, err := w.send(ctx, uid, gen, snap, elapsed, pending)
	w.finishSubmissionLog(logID, uid, result, err, started)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	if w.rev == rev {
		w.resetLocked()
	} else {
		w.pending = nil
		w.log.Warn("session edited during submit, keeping it", "workout_id", result.WorkoutID)
	}
	w.mu.Unlock()
	return result, nil
}

// send runs the backend conversation for snap without holding mu.
func (w *Workspace) send(ctx context.Context, uid string, gen uint64, snap *session.Session, elapsed int, pending *pendingWorkout) (*SubmitResult, error) {
	if pending == nil {
		planDayID, err := w.backend.PlanDayID(ctx, uid)
		if err != nil {
			return nil, upstream(fmt.Errorf("plan day id: %w", err))
		}
		completedAt := w.now().UTC()
		workoutID, err := w.backend.CreateWorkout(ctx, uid, planDayID, completedAt)
		if err != nil {
			return nil, upstream(fmt.Errorf("create workout: %w", err))
		}
		pending = &pendingWorkout{uid: uid, workoutID: workoutID, completedAt: completedAt}
		w.mu.Lock()
		if w.gen == gen {
			w.pending = pending
		}
		w.mu.Unlock()
	}

	log, err := snap.BuildLog(ctx, pending.workoutID, pending.completedAt, w.backend)
	if err != nil {
		return nil, upstream(fmt.Errorf("exercise ids: %w", err))
	}
	if err := w.backend.LogWorkout(ctx, log); err != nil {
		return nil, upstream(fmt.Errorf("log workout: %w", err))
	}

	rows := models.HistoryRows(uid, *log)
	result := &SubmitResult{
		WorkoutID:   pending.workoutID,
		Exercises:   len(log.Exercises),
		Sets:        len(rows),
		TotalVolume: snap.TotalVolume(),
		Duration:    session.FormatElapsed(elapsed),
	}
	if w.history != nil {
		n, err := w.history.InsertWorkoutSets(ctx, rows)
		if err != nil {
			w.log.Error("mirroring workout", "workout_id", pending.workoutID, "error", err)
		}
		result.SetsMirrored = n
	}
	return result, nil
}

func (w *Workspace) startSubmissionLog(ctx context.Context, uid string, exercises int) int64 {
	if w.history == nil {
		return 0
	}
	id, err := w.history.InsertSubmissionLog(ctx, storage.SubmissionLog{
		UserID:    uid,
		Status:    storage.SubmissionRunning,
		Exercises: exercises,
	})
	if err != nil {
		w.log.Warn("recording submission", "error", err)
		return 0
	}
	return id
}

func (w *Workspace) finishSubmissionLog(id int64, uid string, result *SubmitResult, submitErr error, started time.Time) {
	if w.history == nil || id == 0 {
		return
	}
	durationMs := int(w.now().Sub(started).Milliseconds())
	entry := storage.SubmissionLog{UserID: uid, Status: storage.SubmissionSuccess, DurationMs: &durationMs}
	if result != nil {
		entry.WorkoutID = &result.WorkoutID
		entry.Exercises = result.Exercises
		entry.SetsInserted = result.SetsMirrored
	}
	if submitErr != nil {
		entry.Status = storage.SubmissionError
		msg := submitErr.Error()
		entry.ErrorMessage = &msg
	}

	ctx, cancel := contextWithTimeout()
	defer cancel()
	if err := w.history.UpdateSubmissionLog(ctx, id, entry); err != nil {
		w.log.Error("updating submission log", "id", id, "error", err)
	}
}

// contextWithTimeout returns a background context with a 5-second timeout for bookkeeping writes.
func contextWithTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

func (w *Workspace) historyUID() (string, error) {
	if w.history == nil {
		return "", errNoHistory
	}
	return w.auth.UID()
}

// WorkoutDays returns the days in [start, end) with a completed workout.
func (w *Workspace) WorkoutDays(ctx context.Context, start, end time.Time) ([]models.Date, error) {
	uid, err := w.historyUID()
	if err != nil {
		return nil, err
	}
	return w.history.WorkoutDays(ctx, start, end, uid, w.resolver.Zone())
}

// Heatmap builds the month grid for year/month from the history store.
func (w *Workspace) Heatmap(ctx context.Context, year int, month time.Month) (schedule.Heatmap, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, w.resolver.Zone())
	days, err := w.WorkoutDays(ctx, start, start.AddDate(0, 1, 0))
	if err != nil {
		return schedule.Heatmap{}, err
	}
	return w.resolver.MonthGrid(year, month, days, w.now()), nil
}

// QueryWorkoutSets returns mirrored sets completed in [start, end).
func (w *Workspace) QueryWorkoutSets(ctx context.Context, start, end time.Time) ([]models.HistorySetRow, error) {
	uid, err := w.historyUID()
	if err != nil {
		return nil, err
	}
	return w.history.QueryWorkoutSets(ctx, start, end, uid)
}

// TrainingSummary returns working-set volume per bucket.
func (w *Workspace) TrainingSummary(ctx context.Context, start, end time.Time, bucket string) ([]storage.TrainingSummaryPeriod, error) {
	uid, err := w.historyUID()
	if err != nil {
		return nil, err
	}
	return w.history.GetTrainingSummary(ctx, start, end, bucket, uid)
}

// HistoryStats returns lifetime totals.
func (w *Workspace) HistoryStats(ctx context.Context) (*storage.HistoryStats, error) {
	uid, err := w.historyUID()
	if err != nil {
		return nil, err
	}
	return w.history.GetHistoryStats(ctx, uid, 10)
}

// ExerciseProgress returns per-workout working-set stats for one exercise.
func (w *Workspace) ExerciseProgress(ctx context.Context, start, end time.Time, exercise string) (*storage.ExerciseProgress, error) {
	uid, err := w.historyUID()
	if err != nil {
		return nil, err
	}
	return w.history.GetExerciseProgress(ctx, start, end, uid, exercise)
}

// DeleteWorkout removes a workout from the local mirror only.
func (w *Workspace) DeleteWorkout(ctx context.Context, workoutID int) (int64, error) {
	uid, err := w.historyUID()
	if err != nil {
		return 0, err
	}
	return w.history.DeleteWorkout(ctx, workoutID, uid)
}

// Submissions returns recent submission attempts.
func (w *Workspace) Submissions(ctx context.Context, limit int) ([]storage.SubmissionLog, error) {
	uid, err := w.historyUID()
	if err != nil {
		return nil, err
	}
	return w.history.QuerySubmissionLogs(ctx, uid, limit)
}
