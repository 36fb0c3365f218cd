package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	ws     *Workspace
	log    *slog.Logger
	apiKey string
	whois  WhoIser
	router chi.Router
}

// New creates a new Server with all routes configured.
func New(ws *Workspace, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		ws:     ws,
		log:    log,
		apiKey: apiKey,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Mount attaches an extra handler (e.g. the MCP endpoint) under pattern,
// behind the same API key check.
func (s *Server) Mount(pattern string, h http.Handler) {
	s.router.With(APIKeyAuth(s.apiKey)).Mount(pattern, h)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)
	s.router.Use(s.identity)

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))

		r.Post("/auth/signin", s.handleSignIn)
		r.Post("/auth/signout", s.handleSignOut)
		r.Get("/me", s.handleMe)

		r.Get("/plan", s.handlePlan)
		r.Get("/plan/today", s.handlePlanToday)
		r.Get("/plan/week", s.handlePlanWeek)
		r.Get("/exercises", s.handleExercises)
		r.Post("/survey", s.handleSurvey)

		r.Get("/heatmap", s.handleHeatmap)
		r.Get("/history", s.handleHistory)
		r.Get("/history/days", s.handleHistoryDays)
		r.Get("/history/summary", s.handleTrainingSummary)
		r.Get("/history/stats", s.handleHistoryStats)
		r.Get("/history/progress", s.handleExerciseProgress)
		r.Delete("/history/{workout}", s.handleDeleteWorkout)
		r.Get("/submissions", s.handleSubmissions)

		r.Route("/session", func(r chi.Router) {
			r.Get("/", s.handleSession)
			r.Post("/exercises", s.handleAddExercise)
			r.Delete("/exercises/{ex}", s.handleRemoveExercise)
			r.Post("/exercises/{ex}/sets", s.handleAddSet)
			r.Delete("/exercises/{ex}/sets/{set}", s.handleRemoveSet)
			r.Patch("/exercises/{ex}/sets/{set}", s.handleUpdateSet)
			r.Post("/exercises/{ex}/sets/{set}/done", s.handleToggleDone)
			r.Post("/exercises/{ex}/sets/{set}/kind", s.handleSetKind)
			r.Put("/order", s.handleReorder)
			r.Post("/focus", s.handleFocus)
			r.Post("/discard", s.handleDiscard)
			r.Post("/submit", s.handleSubmit)
		})
	})
}
