package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hperssn/sous/internal/runner"
	"github.com/hperssn/sous/internal/storage"
)

type Server struct {
	manager        *runner.SessionManager
	repo           storage.Repository
	logger         *slog.Logger
	allowAnonymous bool
	router         chi.Router
}

type Options struct {
	Logger *slog.Logger
	// AllowAnonymous maps requests without a client header to one shared
	// development client.
	AllowAnonymous bool
}

func NewServer(manager *runner.SessionManager, repo storage.Repository, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	s := &Server{
		manager:        manager,
		repo:           repo,
		logger:         opts.Logger,
		allowAnonymous: opts.AllowAnonymous,
	}
	s.router = s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
	})

	r.Route("/recipes", func(r chi.Router) {
		r.Get("/{id}", s.getRecipe)
		r.Put("/{id}", s.putRecipe)
		r.Get("/{id}/completions", s.listCompletions)
	})
	r.Get("/stats", s.getStats)

	r.Route("/session", func(r chi.Router) {
		r.Use(s.identify)

		r.Post("/", s.startSession)
		r.Get("/", s.getSession)
		r.Post("/end", s.endSession)
		r.Post("/next", s.nextStep)
		r.Post("/previous", s.previousStep)
		r.Post("/goto/{idx}", s.gotoStep)
		r.Post("/repeat", s.repeatStep)
		r.Post("/pause", s.togglePause)
		r.Post("/voice", s.toggleVoice)

		r.Get("/timers", s.listTimers)
		r.Post("/timers", s.addTimer)
		r.Get("/timers/{timerID}", s.getTimer)
		r.Delete("/timers/{timerID}", s.removeTimer)
		r.Post("/timers/{timerID}/pause", s.pauseTimer)
		r.Post("/timers/{timerID}/resume", s.resumeTimer)

		r.Get("/narration", s.narrationStatus)
		r.Post("/narration/done", s.narrationDone)

		r.Get("/events", s.streamSessionEvents)
	})

	return r
}

func respondJSON(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Default().Warn("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, storage.ErrRecipeNotFound):
		return http.StatusNotFound
	case errors.Is(err, runner.ErrNoSession):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
