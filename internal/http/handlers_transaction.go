package http

import (
	"net/http"

	"fintrack/internal/analytics"
	"fintrack/internal/core"
	"fintrack/internal/storage"

	"github.com/go-chi/chi/v5"
)

const defaultRecentLimit = 5

type createTransactionRequest struct {
	Amount   float64 `json:"amount"`
	Type     string  `json:"type"`
	Category string  `json:"category"`
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())

	var req createTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, r, err)
		return
	}

	typ, err := core.ParseTransactionType(req.Type)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	category, err := core.ParseCategory(req.Category)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	tx, err := s.transactions.Create(r.Context(), core.Transaction{
		UserID:   user.ID,
		Amount:   req.Amount,
		Type:     typ,
		Category: category,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, "transaction created", toTransactionResponse(tx))
}

// handleListTransactions lists the caller's transactions, optionally
// filtered to a period and paginated.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())
	s.listTransactions(w, r, storage.TransactionFilter{UserID: user.ID})
}

// handleListAllTransactions lists transactions across every user.
func (s *Server) handleListAllTransactions(w http.ResponseWriter, r *http.Request) {
	s.listTransactions(w, r, storage.TransactionFilter{})
}

func (s *Server) handleTransactionsByCategory(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())

	category, err := core.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	s.listTransactions(w, r, storage.TransactionFilter{UserID: user.ID, Category: category})
}

func (s *Server) handleTransactionsByType(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())

	typ, err := core.ParseTransactionType(chi.URLParam(r, "type"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	s.listTransactions(w, r, storage.TransactionFilter{UserID: user.ID, Type: typ})
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request, filter storage.TransactionFilter) {
	period, anchor, err := parsePeriodAnchor(r)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	if rng, ok := analytics.ResolveRange(period, anchor); ok {
		filter.Range = &rng
	}

	page, limit, err := parsePagination(r)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	txs, meta, err := s.transactions.List(r.Context(), filter, page, limit)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, "transactions retrieved", toTransactionListResponse(txs, &meta))
}

func (s *Server) handleRecentTransactions(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())

	limit, err := parseLimit(r, defaultRecentLimit)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	txs, err := s.transactions.Recent(r.Context(), user.ID, limit)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, "transactions retrieved", toTransactionListResponse(txs, nil))
}

func (s *Server) handleTotalsByCategory(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())

	period, anchor, err := parsePeriodAnchor(r)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	totals, err := s.transactions.TotalsByCategory(r.Context(), user.ID, period, anchor)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, "totals retrieved", totals)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())

	period, anchor, err := parsePeriodAnchor(r)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	report, err := s.transactions.Report(r.Context(), user.ID, period, anchor)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, "report generated", report)
}
