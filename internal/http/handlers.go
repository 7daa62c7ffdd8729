package http

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/fintrack/groupledger/internal/middleware"
	"github.com/fintrack/groupledger/internal/models"
)

// --- auth ---

type registerRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Password    string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	session, err := s.auth.Register(r.Context(), req.Email, req.DisplayName, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, session)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	session, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, session)
}

// --- groups ---

type groupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	group, err := s.groups.CreateGroup(r.Context(), req.Name, req.Description)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, group)
}

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.groups.ListUserGroups(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, groups)
}

func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	group, err := s.groups.GetGroup(r.Context(), mux.Vars(r)["groupId"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, group)
}

func (s *Server) handleUpdateGroup(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	group, err := s.groups.UpdateGroupInfo(r.Context(), mux.Vars(r)["groupId"], req.Name, req.Description)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, group)
}

func (s *Server) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	if err := s.groups.DeleteGroup(r.Context(), mux.Vars(r)["groupId"]); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// --- membership ---

type addMemberRequest struct {
	Email string `json:"email"`
}

func (s *Server) handleAddMember(w http.ResponseWriter, r *http.Request) {
	var req addMemberRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	group, err := s.groups.AddMember(r.Context(), mux.Vars(r)["groupId"], req.Email)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, group)
}

func (s *Server) handleRemoveMember(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	result, err := s.groups.RemoveMember(r.Context(), vars["groupId"], vars["userId"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// --- expenses ---

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	var expense models.GroupExpense
	if err := decodeJSON(r, &expense); err != nil {
		respondError(w, err)
		return
	}
	expense.GroupID = mux.Vars(r)["groupId"]
	view, err := s.expenses.AddExpense(r.Context(), &expense)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, view)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	views, err := s.expenses.ListExpenses(r.Context(), mux.Vars(r)["groupId"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, views)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	view, err := s.expenses.GetExpense(r.Context(), mux.Vars(r)["expenseId"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	var expense models.GroupExpense
	if err := decodeJSON(r, &expense); err != nil {
		respondError(w, err)
		return
	}
	expense.ID = mux.Vars(r)["expenseId"]
	view, err := s.expenses.UpdateExpense(r.Context(), &expense)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.expenses.DeleteExpense(r.Context(), mux.Vars(r)["expenseId"]); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleSettleSplit(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	view, err := s.expenses.SettleSplit(r.Context(), vars["expenseId"], vars["userId"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleSendReminder(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := s.expenses.SendPaymentReminder(r.Context(), vars["expenseId"], vars["userId"]); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
}

// --- balances ---

func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	balances, err := s.expenses.Balances(r.Context(), mux.Vars(r)["groupId"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, balances)
}

func (s *Server) handleSettledBalances(w http.ResponseWriter, r *http.Request) {
	balances, err := s.expenses.SettledBalances(r.Context(), mux.Vars(r)["groupId"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, balances)
}

func (s *Server) handleDebts(w http.ResponseWriter, r *http.Request) {
	debts, err := s.expenses.Debts(r.Context(), mux.Vars(r)["groupId"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, debts)
}

// --- messages ---

type messageRequest struct {
	Content string `json:"content"`
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	msg, err := s.messages.SendMessage(r.Context(), mux.Vars(r)["groupId"], req.Content)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, msg)
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}
	msgs, err := s.messages.ListMessages(r.Context(), mux.Vars(r)["groupId"], limit)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, msgs)
}

// --- notifications ---

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	notifications, err := s.store.ListNotificationsByUser(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, notifications)
}
