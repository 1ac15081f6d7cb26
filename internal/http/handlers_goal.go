package http

import (
	"net/http"

	"fintrack/internal/core"

	"github.com/go-chi/chi/v5"
)

type savingGoalRequest struct {
	TargetAmount float64 `json:"target_amount"`
}

type categoryGoalRequest struct {
	Category     string  `json:"category"`
	TargetAmount float64 `json:"target_amount"`
}

func (s *Server) handleCreateSavingGoal(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())

	var req savingGoalRequest
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, r, err)
		return
	}

	progress, err := s.goals.CreateSavingGoal(r.Context(), user.ID, req.TargetAmount)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, "saving goal created", toGoalResponse(progress))
}

func (s *Server) handleGetSavingGoal(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())

	progress, err := s.goals.GetSavingGoal(r.Context(), user.ID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, "saving goal retrieved", toGoalResponse(progress))
}

func (s *Server) handleUpdateSavingGoal(w http.ResponseWriter, r *http.Request) {
	var req savingGoalRequest
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, r, err)
		return
	}

	progress, err := s.goals.UpdateSavingGoal(r.Context(), chi.URLParam(r, "id"), req.TargetAmount)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, "saving goal updated", toGoalResponse(progress))
}

func (s *Server) handleCreateCategoryGoal(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())

	var req categoryGoalRequest
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, r, err)
		return
	}

	category, err := core.ParseCategory(req.Category)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	progress, err := s.goals.CreateCategoryGoal(r.Context(), user.ID, category, req.TargetAmount)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, "category goal created", toCategoryGoalResponse(progress))
}

func (s *Server) handleListCategoryGoals(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())

	goals, err := s.goals.ListCategoryGoals(r.Context(), user.ID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	out := make([]categoryGoalResponse, 0, len(goals))
	for _, g := range goals {
		out = append(out, toCategoryGoalResponse(g))
	}
	respondJSON(w, http.StatusOK, "category goals retrieved", out)
}

func (s *Server) handleUpdateCategoryGoal(w http.ResponseWriter, r *http.Request) {
	var req categoryGoalRequest
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, r, err)
		return
	}

	category, err := core.ParseCategory(req.Category)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	progress, err := s.goals.UpdateCategoryGoal(r.Context(), chi.URLParam(r, "id"), category, req.TargetAmount)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, "category goal updated", toCategoryGoalResponse(progress))
}
