package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"fintrack/internal/analytics"
	"fintrack/internal/auth"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/services"
)

// envelope is the wire shape of every successful response.
type envelope struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type errorBody struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Message: message, Data: data})
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorBody{Error: message})
}

// respondServiceError maps domain errors onto HTTP status codes.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	logger := applog.FromContext(r.Context())

	switch {
	case errors.Is(err, core.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, core.ErrInvalidInput),
		errors.Is(err, core.ErrInvalidType),
		errors.Is(err, core.ErrInvalidCategory),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrEmptyUserID),
		errors.Is(err, analytics.ErrInvalidPeriod),
		errors.Is(err, auth.ErrWeakPassword):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		respondError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, auth.ErrEmailTaken), errors.Is(err, services.ErrGoalExists):
		respondError(w, http.StatusConflict, err.Error())
	default:
		logger.ErrorContext(r.Context(), "request failed", applog.FieldError, err)
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// --- wire DTOs ---

type transactionResponse struct {
	ID        string  `json:"id"`
	UserID    string  `json:"user_id"`
	Amount    float64 `json:"amount"`
	Type      string  `json:"type"`
	Category  string  `json:"category"`
	CreatedAt string  `json:"createdAt"`
}

type transactionListResponse struct {
	Transactions []transactionResponse     `json:"transactions"`
	Pagination   *analytics.PaginationMeta `json:"pagination,omitempty"`
}

type goalResponse struct {
	ID              string  `json:"id"`
	UserID          string  `json:"user_id"`
	TargetAmount    float64 `json:"target_amount"`
	ExpensesAmount  float64 `json:"expenses_amount"`
	RemainingAmount float64 `json:"remaining_amount"`
	CreatedAt       string  `json:"createdAt"`
	UpdatedAt       string  `json:"updatedAt"`
}

type categoryGoalResponse struct {
	goalResponse
	Category string `json:"category"`
}

type authResponse struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Token  string `json:"token"`
}

func toTransactionResponse(tx core.Transaction) transactionResponse {
	return transactionResponse{
		ID:        tx.ID,
		UserID:    tx.UserID,
		Amount:    tx.Amount,
		Type:      string(tx.Type),
		Category:  string(tx.Category),
		CreatedAt: tx.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toTransactionListResponse(txs []core.Transaction, meta *analytics.PaginationMeta) transactionListResponse {
	out := transactionListResponse{
		Transactions: make([]transactionResponse, 0, len(txs)),
		Pagination:   meta,
	}
	for _, tx := range txs {
		out.Transactions = append(out.Transactions, toTransactionResponse(tx))
	}
	return out
}

func toGoalResponse(p analytics.GoalProgress) goalResponse {
	return goalResponse{
		ID:              p.Goal.ID,
		UserID:          p.Goal.UserID,
		TargetAmount:    p.Goal.TargetAmount,
		ExpensesAmount:  p.ExpensesAmount,
		RemainingAmount: p.RemainingAmount,
		CreatedAt:       p.Goal.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:       p.Goal.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toCategoryGoalResponse(p analytics.CategoryGoalProgress) categoryGoalResponse {
	return categoryGoalResponse{
		goalResponse: goalResponse{
			ID:              p.Goal.ID,
			UserID:          p.Goal.UserID,
			TargetAmount:    p.Goal.TargetAmount,
			ExpensesAmount:  p.ExpensesAmount,
			RemainingAmount: p.RemainingAmount,
			CreatedAt:       p.Goal.CreatedAt.UTC().Format(time.RFC3339Nano),
			UpdatedAt:       p.Goal.UpdatedAt.UTC().Format(time.RFC3339Nano),
		},
		Category: string(p.Goal.Category),
	}
}
