package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hperssn/sous/internal/domain"
	"github.com/hperssn/sous/internal/storage"
)

func (s *Server) getRecipe(w http.ResponseWriter, r *http.Request) {
	recipe, err := s.repo.GetRecipeByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err.Error(), statusFor(err))
		return
	}
	respondJSON(w, recipe, http.StatusOK)
}

func (s *Server) putRecipe(w http.ResponseWriter, r *http.Request) {
	var recipe domain.Recipe
	if err := json.NewDecoder(r.Body).Decode(&recipe); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	recipe.ID = chi.URLParam(r, "id")

	if len(recipe.Steps) == 0 {
		respondError(w, domain.ErrNoSteps.Error(), http.StatusUnprocessableEntity)
		return
	}

	if err := s.repo.SaveRecipe(r.Context(), &recipe); err != nil {
		respondError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listCompletions(w http.ResponseWriter, r *http.Request) {
	records, err := s.repo.ListCompletions(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err.Error(), statusFor(err))
		return
	}
	if records == nil {
		records = []storage.CompletionRecord{}
	}
	respondJSON(w, records, http.StatusOK)
}

func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.repo.GetCookingStats(r.Context())
	if err != nil {
		respondError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, stats, http.StatusOK)
}
