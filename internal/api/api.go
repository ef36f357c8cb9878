package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/joescharf/fitmin/internal/catalog"
	"github.com/joescharf/fitmin/internal/coach"
	"github.com/joescharf/fitmin/internal/models"
	"github.com/joescharf/fitmin/internal/stats"
	"github.com/joescharf/fitmin/internal/workout"
)

// Server provides the REST API handlers.
type Server struct {
	catalog    *catalog.Catalog
	stats      *stats.Aggregator
	workouts   *workout.Manager
	transcript *coach.Transcript
	log        *slog.Logger
	router     chi.Router
}

// NewServer wires the handlers over the engine components.
func NewServer(cat *catalog.Catalog, agg *stats.Aggregator, workouts *workout.Manager, transcript *coach.Transcript, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		catalog:    cat,
		stats:      agg,
		workouts:   workouts,
		transcript: transcript,
		log:        log,
		router:     chi.NewRouter(),
	}
	s.routes()
	return s
}

// Router returns an http.Handler for the API routes.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) routes() {
	s.router.Use(RequestID)
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/stats", s.getStats)
		r.Delete("/stats", s.resetStats)

		r.Get("/categories", s.listCategories)
		r.Get("/exercises", s.listExercises)
		r.Get("/exercises/daily", s.dailyExercise)
		r.Get("/exercises/{id}", s.getExercise)

		r.Get("/workout", s.getWorkout)
		r.Post("/workout", s.startWorkout)
		r.Delete("/workout", s.closeWorkout)
		r.Post("/workout/pause", s.pauseWorkout)
		r.Post("/workout/finish", s.finishWorkout)

		r.Get("/chat", s.getChat)
		r.Post("/chat", s.postChat)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// --- Stats ---

func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.stats.Snapshot())
}

func (s *Server) resetStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.stats.Reset(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// --- Exercises ---

type categoryEntry struct {
	ID    models.Category `json:"id"`
	Label string          `json:"label"`
}

type exerciseEntry struct {
	models.Exercise
	Badge          string `json:"badge"`
	IntensityLabel string `json:"intensityLabel"`
}

func toEntry(ex models.Exercise) exerciseEntry {
	return exerciseEntry{
		Exercise:       ex,
		Badge:          catalog.Badge(ex),
		IntensityLabel: catalog.IntensityLabel(ex.Intensity),
	}
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	out := make([]categoryEntry, 0, len(models.Categories))
	for _, c := range models.Categories {
		out = append(out, categoryEntry{ID: c, Label: catalog.CategoryLabel(c)})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) listExercises(w http.ResponseWriter, r *http.Request) {
	cat := models.Category(r.URL.Query().Get("category"))
	if cat != "" && !cat.Valid() {
		writeError(w, http.StatusBadRequest, "unknown category: "+string(cat))
		return
	}
	exercises := s.catalog.Filter(cat)
	out := make([]exerciseEntry, 0, len(exercises))
	for _, ex := range exercises {
		out = append(out, toEntry(ex))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) dailyExercise(w http.ResponseWriter, r *http.Request) {
	ex, ok := s.catalog.Daily()
	if !ok {
		writeError(w, http.StatusNotFound, "catalog is empty")
		return
	}
	writeJSON(w, http.StatusOK, toEntry(ex))
}

func (s *Server) getExercise(w http.ResponseWriter, r *http.Request) {
	ex, err := s.catalog.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toEntry(ex))
}

// --- Workout ---

type startWorkoutRequest struct {
	ExerciseID string `json:"exercise_id"`
}

type finishResponse struct {
	Workout workout.Snapshot `json:"workout"`
	Stats   models.Stats     `json:"stats"`
}

func (s *Server) getWorkout(w http.ResponseWriter, r *http.Request) {
	sess, err := s.workouts.Current()
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) startWorkout(w http.ResponseWriter, r *http.Request) {
	var req startWorkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.ExerciseID == "" {
		writeError(w, http.StatusBadRequest, "exercise_id is required")
		return
	}

	ex, err := s.catalog.Get(req.ExerciseID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	sess, err := s.workouts.Start(ex)
	if errors.Is(err, workout.ErrSessionInProgress) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, sess.Snapshot())
}

func (s *Server) pauseWorkout(w http.ResponseWriter, r *http.Request) {
	sess, err := s.workouts.Current()
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	sess.TogglePause()
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) finishWorkout(w http.ResponseWriter, r *http.Request) {
	sess, err := s.workouts.Current()
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	sess.Finish()
	writeJSON(w, http.StatusOK, finishResponse{Workout: sess.Snapshot(), Stats: s.stats.Snapshot()})
}

func (s *Server) closeWorkout(w http.ResponseWriter, r *http.Request) {
	if err := s.workouts.Close(); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Chat ---

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Turns []models.Turn `json:"turns"`
	Busy  bool          `json:"busy"`
}

func (s *Server) getChat(w http.ResponseWriter, r *http.Request) {
	turns := s.transcript.Turns()
	if turns == nil {
		turns = []models.Turn{}
	}
	writeJSON(w, http.StatusOK, chatResponse{Turns: turns, Busy: s.transcript.Busy()})
}

func (s *Server) postChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	reply, err := s.transcript.Send(r.Context(), req.Message)
	switch {
	case errors.Is(err, coach.ErrEmptyMessage):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, coach.ErrBusy):
		writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, reply)
}
