package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/hisabkitab/internal/server/services"
	"github.com/gorilla/mux"
)

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.svc.Transactions.List(r.Context(), currentUser(r).ID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"message": "Your transactions", "data": txs})
}

func (s *Server) getTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := s.svc.Transactions.Get(r.Context(), currentUser(r).ID, mux.Vars(r)["id"])
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": tx})
}

func (s *Server) monthlySummary(w http.ResponseWriter, r *http.Request) {
	rows, err := s.svc.Transactions.MonthlySummary(r.Context(), currentUser(r).ID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

// The /transaction and /transactionLog families mutate through the same
// service and differ only in their response envelopes.

func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request) {
	var in services.TransactionInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.respondError(w, r, err)
		return
	}

	tx, err := s.svc.Transactions.Create(r.Context(), currentUser(r).ID, in)
	if err != nil && !auditWarning(w, err) {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, tx)
}

func (s *Server) updateTransaction(w http.ResponseWriter, r *http.Request) {
	var in services.TransactionInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.respondError(w, r, err)
		return
	}

	tx, err := s.svc.Transactions.Update(r.Context(), currentUser(r).ID, mux.Vars(r)["id"], in)
	if err != nil && !auditWarning(w, err) {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"message": "Transaction updated successfully", "data": tx})
}

func (s *Server) deleteTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := s.svc.Transactions.Delete(r.Context(), currentUser(r).ID, mux.Vars(r)["id"])
	if err != nil && !auditWarning(w, err) {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "deleted": tx})
}

func (s *Server) createTransactionViaLog(w http.ResponseWriter, r *http.Request) {
	var in services.TransactionInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.respondError(w, r, err)
		return
	}

	tx, err := s.svc.Transactions.Create(r.Context(), currentUser(r).ID, in)
	if err != nil && !auditWarning(w, err) {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"message": "Transaction created", "data": tx})
}

func (s *Server) updateTransactionViaLog(w http.ResponseWriter, r *http.Request) {
	var in services.TransactionInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.respondError(w, r, err)
		return
	}

	tx, err := s.svc.Transactions.Update(r.Context(), currentUser(r).ID, mux.Vars(r)["id"], in)
	if err != nil && !auditWarning(w, err) {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"message": "Transaction updated", "data": tx})
}

func (s *Server) deleteTransactionViaLog(w http.ResponseWriter, r *http.Request) {
	tx, err := s.svc.Transactions.Delete(r.Context(), currentUser(r).ID, mux.Vars(r)["id"])
	if err != nil && !auditWarning(w, err) {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"message": "Transaction deleted", "deleted": tx})
}

func (s *Server) listTransactionLogs(w http.ResponseWriter, r *http.Request) {
	entries, err := s.svc.TransactionLogs.ListForUser(r.Context(), currentUser(r).ID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

func (s *Server) listLogsForTransaction(w http.ResponseWriter, r *http.Request) {
	entries, err := s.svc.TransactionLogs.ListForTransaction(r.Context(), currentUser(r).ID, mux.Vars(r)["id"])
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}
