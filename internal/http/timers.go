package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hperssn/sous/internal/runner"
	"github.com/hperssn/sous/internal/timers"
)

type timerView struct {
	ID               string `json:"id"`
	Label            string `json:"label"`
	Active           bool   `json:"active"`
	DurationSeconds  int    `json:"durationSeconds"`
	RemainingSeconds int    `json:"remainingSeconds"`
}

func toTimerView(v timers.View) timerView {
	return timerView{
		ID:               v.ID,
		Label:            v.Label,
		Active:           v.Active,
		DurationSeconds:  v.DurationSeconds,
		RemainingSeconds: v.RemainingSeconds,
	}
}

func (s *Server) listTimers(w http.ResponseWriter, r *http.Request) {
	ctrl := s.manager.Client(clientID(r)).Controller

	views := ctrl.Timers()
	out := make([]timerView, 0, len(views))
	for _, v := range views {
		out = append(out, toTimerView(v))
	}
	respondJSON(w, out, http.StatusOK)
}

func (s *Server) addTimer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Label           string `json:"label"`
		DurationSeconds int    `json:"durationSeconds"`
		FromStep        bool   `json:"fromStep"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	ctrl := s.manager.Client(clientID(r)).Controller

	var (
		id  string
		err error
	)
	if req.FromStep {
		id, err = ctrl.AddStepTimer()
	} else {
		if req.DurationSeconds <= 0 {
			respondError(w, "durationSeconds must be positive", http.StatusBadRequest)
			return
		}
		id, err = ctrl.AddTimer(req.Label, time.Duration(req.DurationSeconds)*time.Second)
	}

	if errors.Is(err, runner.ErrStepUntimed) {
		respondError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if err != nil {
		respondError(w, err.Error(), statusFor(err))
		return
	}

	respondJSON(w, map[string]string{"id": id}, http.StatusCreated)
}

func (s *Server) getTimer(w http.ResponseWriter, r *http.Request) {
	ctrl := s.manager.Client(clientID(r)).Controller
	id := chi.URLParam(r, "timerID")

	for _, v := range ctrl.Timers() {
		if v.ID == id {
			respondJSON(w, toTimerView(v), http.StatusOK)
			return
		}
	}
	respondError(w, timers.ErrTimerNotFound.Error(), http.StatusNotFound)
}

func (s *Server) removeTimer(w http.ResponseWriter, r *http.Request) {
	s.manager.Client(clientID(r)).Controller.RemoveTimer(chi.URLParam(r, "timerID"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) pauseTimer(w http.ResponseWriter, r *http.Request) {
	s.timerAction(w, r, (*runner.Controller).PauseTimer)
}

func (s *Server) resumeTimer(w http.ResponseWriter, r *http.Request) {
	s.timerAction(w, r, (*runner.Controller).ResumeTimer)
}

func (s *Server) timerAction(w http.ResponseWriter, r *http.Request, action func(*runner.Controller, string) error) {
	ctrl := s.manager.Client(clientID(r)).Controller

	if err := action(ctrl, chi.URLParam(r, "timerID")); err != nil {
		if errors.Is(err, timers.ErrTimerNotFound) {
			respondError(w, err.Error(), http.StatusNotFound)
			return
		}
		respondError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
