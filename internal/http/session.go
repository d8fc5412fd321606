package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hperssn/sous/internal/domain"
	"github.com/hperssn/sous/internal/runner"
)

func (s *Server) startSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RecipeID string         `json:"recipeId"`
		Recipe   *domain.Recipe `json:"recipe"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	ctrl := s.manager.Client(clientID(r)).Controller

	var (
		session *domain.CookingSession
		err     error
	)
	switch {
	case req.Recipe != nil:
		session, err = ctrl.Start(*req.Recipe)
	case req.RecipeID != "":
		session, err = ctrl.StartByID(r.Context(), req.RecipeID)
	default:
		respondError(w, "recipeId or recipe is required", http.StatusBadRequest)
		return
	}

	if errors.Is(err, domain.ErrNoSteps) {
		respondError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if err != nil {
		respondError(w, err.Error(), statusFor(err))
		return
	}

	respondJSON(w, session, http.StatusCreated)
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	ctrl := s.manager.Client(clientID(r)).Controller
	respondJSON(w, ctrl.Snapshot(), http.StatusOK)
}

func (s *Server) endSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Completed bool `json:"completed"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, "invalid request body", http.StatusBadRequest)
			return
		}
	}

	cl, ok := s.manager.Lookup(clientID(r))
	if !ok || cl.Controller.State() == runner.StateIdle {
		respondError(w, runner.ErrNoSession.Error(), http.StatusConflict)
		return
	}

	// The completion report runs in the background; its outcome reaches the
	// client as a warning event if it fails.
	cl.Controller.End(req.Completed)
	respondJSON(w, cl.Controller.Snapshot(), http.StatusAccepted)
}

func (s *Server) nextStep(w http.ResponseWriter, r *http.Request) {
	ctrl := s.manager.Client(clientID(r)).Controller

	index, completed := ctrl.Next()
	respondJSON(w, map[string]any{
		"step":      index,
		"completed": completed,
		"state":     ctrl.State(),
	}, http.StatusOK)
}

func (s *Server) previousStep(w http.ResponseWriter, r *http.Request) {
	ctrl := s.manager.Client(clientID(r)).Controller
	respondJSON(w, map[string]int{"step": ctrl.Previous()}, http.StatusOK)
}

func (s *Server) gotoStep(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.Atoi(chi.URLParam(r, "idx"))
	if err != nil {
		respondError(w, "invalid step index", http.StatusBadRequest)
		return
	}

	ctrl := s.manager.Client(clientID(r)).Controller
	moved := ctrl.Goto(idx)

	snap := ctrl.Snapshot()
	step := 0
	if snap.Session != nil {
		step = snap.Session.CurrentStep
	}
	respondJSON(w, map[string]any{"step": step, "moved": moved}, http.StatusOK)
}

func (s *Server) repeatStep(w http.ResponseWriter, r *http.Request) {
	s.manager.Client(clientID(r)).Controller.Repeat()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) togglePause(w http.ResponseWriter, r *http.Request) {
	paused := s.manager.Client(clientID(r)).Controller.TogglePause()
	respondJSON(w, map[string]bool{"paused": paused}, http.StatusOK)
}

func (s *Server) toggleVoice(w http.ResponseWriter, r *http.Request) {
	enabled := s.manager.Client(clientID(r)).Controller.ToggleVoice()
	respondJSON(w, map[string]bool{"voiceEnabled": enabled}, http.StatusOK)
}

func (s *Server) narrationStatus(w http.ResponseWriter, r *http.Request) {
	ctrl := s.manager.Client(clientID(r)).Controller
	respondJSON(w, map[string]bool{"speaking": ctrl.IsSpeaking(r.Context())}, http.StatusOK)
}

func (s *Server) narrationDone(w http.ResponseWriter, r *http.Request) {
	s.manager.Client(clientID(r)).Relay.Finished()
	w.WriteHeader(http.StatusNoContent)
}
