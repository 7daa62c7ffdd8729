// Package http exposes the ledger services as a JSON REST API.
package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fintrack/groupledger/internal/auth"
	"github.com/fintrack/groupledger/internal/middleware"
	"github.com/fintrack/groupledger/internal/service"
	"github.com/fintrack/groupledger/internal/storage"
)

// Server bundles the service layer behind HTTP handlers.
type Server struct {
	auth     *service.AuthService
	groups   *service.GroupService
	expenses *service.ExpenseService
	messages *service.MessageService
	store    storage.Store
}

// NewServer creates a Server over the given services.
func NewServer(
	authSvc *service.AuthService,
	groups *service.GroupService,
	expenses *service.ExpenseService,
	messages *service.MessageService,
	store storage.Store,
) *Server {
	return &Server{
		auth:     authSvc,
		groups:   groups,
		expenses: expenses,
		messages: messages,
		store:    store,
	}
}

// Router builds the full route table. Everything under /api except the
// auth endpoints requires a valid bearer token.
func (s *Server) Router(jwtManager *auth.JWTManager) *mux.Router {
	r := mux.NewRouter()

	r.Use(middleware.Logging)
	r.Use(middleware.Metrics)

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/auth/register", s.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)

	authed := api.NewRoute().Subrouter()
	authed.Use(middleware.RequireAuth(jwtManager))

	authed.HandleFunc("/groups", s.handleCreateGroup).Methods(http.MethodPost)
	authed.HandleFunc("/groups", s.handleListGroups).Methods(http.MethodGet)
	authed.HandleFunc("/groups/{groupId}", s.handleGetGroup).Methods(http.MethodGet)
	authed.HandleFunc("/groups/{groupId}", s.handleUpdateGroup).Methods(http.MethodPut)
	authed.HandleFunc("/groups/{groupId}", s.handleDeleteGroup).Methods(http.MethodDelete)

	authed.HandleFunc("/groups/{groupId}/members", s.handleAddMember).Methods(http.MethodPost)
	authed.HandleFunc("/groups/{groupId}/members/{userId}", s.handleRemoveMember).Methods(http.MethodDelete)

	authed.HandleFunc("/groups/{groupId}/expenses", s.handleAddExpense).Methods(http.MethodPost)
	authed.HandleFunc("/groups/{groupId}/expenses", s.handleListExpenses).Methods(http.MethodGet)
	authed.HandleFunc("/expenses/{expenseId}", s.handleGetExpense).Methods(http.MethodGet)
	authed.HandleFunc("/expenses/{expenseId}", s.handleUpdateExpense).Methods(http.MethodPut)
	authed.HandleFunc("/expenses/{expenseId}", s.handleDeleteExpense).Methods(http.MethodDelete)
	authed.HandleFunc("/expenses/{expenseId}/splits/{userId}/settle", s.handleSettleSplit).Methods(http.MethodPost)
	authed.HandleFunc("/expenses/{expenseId}/splits/{userId}/remind", s.handleSendReminder).Methods(http.MethodPost)

	authed.HandleFunc("/groups/{groupId}/balances", s.handleBalances).Methods(http.MethodGet)
	authed.HandleFunc("/groups/{groupId}/settled-balances", s.handleSettledBalances).Methods(http.MethodGet)
	authed.HandleFunc("/groups/{groupId}/debts", s.handleDebts).Methods(http.MethodGet)

	authed.HandleFunc("/groups/{groupId}/messages", s.handleSendMessage).Methods(http.MethodPost)
	authed.HandleFunc("/groups/{groupId}/messages", s.handleListMessages).Methods(http.MethodGet)

	authed.HandleFunc("/notifications", s.handleListNotifications).Methods(http.MethodGet)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
