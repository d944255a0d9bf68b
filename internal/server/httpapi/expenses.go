package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/hisabkitab/internal/server/services"
	"github.com/gorilla/mux"
)

func (s *Server) listExpenses(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Expenses.List(r.Context(), currentUser(r).ID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (s *Server) createExpense(w http.ResponseWriter, r *http.Request) {
	var in services.ExpenseInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.respondError(w, r, err)
		return
	}

	e, err := s.svc.Expenses.Create(r.Context(), currentUser(r).ID, in)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, e)
}

func (s *Server) updateExpense(w http.ResponseWriter, r *http.Request) {
	var in services.ExpenseInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.respondError(w, r, err)
		return
	}

	e, err := s.svc.Expenses.Update(r.Context(), currentUser(r).ID, mux.Vars(r)["id"], in)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, e)
}

func (s *Server) deleteExpense(w http.ResponseWriter, r *http.Request) {
	e, err := s.svc.Expenses.Delete(r.Context(), currentUser(r).ID, mux.Vars(r)["id"])
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"message": "Deleted", "expense": e})
}
