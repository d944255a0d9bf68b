package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	var api *mux.Router
	if s.prefix == "" {
		api = r.NewRoute().Subrouter()
	} else {
		api = r.PathPrefix(s.prefix).Subrouter()
	}
	api.Use(s.observe, s.cors)

	api.HandleFunc("/test", s.health).Methods(http.MethodGet)

	api.HandleFunc("/user/send-registration-otp", s.sendRegistrationOTP).Methods(http.MethodPost)
	api.HandleFunc("/user/verify-otp-and-register", s.verifyOTPAndRegister).Methods(http.MethodPost)
	api.HandleFunc("/user/login", s.login).Methods(http.MethodPost)
	api.HandleFunc("/user/logout", s.logout).Methods(http.MethodPost)

	api.HandleFunc("/reset-password/send-otp", s.sendResetOTP).Methods(http.MethodPost)
	api.HandleFunc("/reset-password/verify-otp", s.verifyResetOTP).Methods(http.MethodPost)
	api.HandleFunc("/reset-password/reset", s.resetPassword).Methods(http.MethodPost)

	authed := api.NewRoute().Subrouter()
	authed.Use(s.requireSession)

	authed.HandleFunc("/user/profile", s.getProfile).Methods(http.MethodGet)
	authed.HandleFunc("/user/upload", s.uploadProfileImage).Methods(http.MethodPost)

	authed.HandleFunc("/transaction", s.listTransactions).Methods(http.MethodGet)
	authed.HandleFunc("/transaction", s.createTransaction).Methods(http.MethodPost)
	authed.HandleFunc("/transaction/monthly-summary", s.monthlySummary).Methods(http.MethodGet)
	authed.HandleFunc("/transaction/{id}", s.getTransaction).Methods(http.MethodGet)
	authed.HandleFunc("/transaction/{id}", s.updateTransaction).Methods(http.MethodPut)
	authed.HandleFunc("/transaction/{id}", s.deleteTransaction).Methods(http.MethodDelete)

	authed.HandleFunc("/transactionLog", s.listTransactionLogs).Methods(http.MethodGet)
	authed.HandleFunc("/transactionLog", s.createTransactionViaLog).Methods(http.MethodPost)
	authed.HandleFunc("/transactionLog/transaction/{id}", s.listLogsForTransaction).Methods(http.MethodGet)
	authed.HandleFunc("/transactionLog/{id}", s.listLogsForTransaction).Methods(http.MethodGet)
	authed.HandleFunc("/transactionLog/{id}", s.updateTransactionViaLog).Methods(http.MethodPut)
	authed.HandleFunc("/transactionLog/{id}", s.deleteTransactionViaLog).Methods(http.MethodDelete)

	authed.HandleFunc("/expenses", s.listExpenses).Methods(http.MethodGet)
	authed.HandleFunc("/expenses", s.createExpense).Methods(http.MethodPost)
	authed.HandleFunc("/expenses/{id}", s.updateExpense).Methods(http.MethodPut)
	authed.HandleFunc("/expenses/{id}", s.deleteExpense).Methods(http.MethodDelete)

	authed.HandleFunc("/friends", s.listFriends).Methods(http.MethodGet)
	authed.HandleFunc("/friends", s.addFriend).Methods(http.MethodPost)
	authed.HandleFunc("/friends", s.clearFriends).Methods(http.MethodDelete)
	authed.HandleFunc("/friends/{friendName}", s.removeFriend).Methods(http.MethodDelete)

	// a MatcherFunc, not Methods, so other verbs on unknown paths stay 404
	api.PathPrefix("/").MatcherFunc(isPreflight).HandlerFunc(preflight)

	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"message": "App is running"})
}
