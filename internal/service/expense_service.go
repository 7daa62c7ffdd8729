package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/fintrack/groupledger/internal/errs"
	"github.com/fintrack/groupledger/internal/ledger"
	"github.com/fintrack/groupledger/internal/middleware"
	"github.com/fintrack/groupledger/internal/models"
	"github.com/fintrack/groupledger/internal/notify"
	"github.com/fintrack/groupledger/internal/permission"
	"github.com/fintrack/groupledger/internal/split"
	"github.com/fintrack/groupledger/internal/storage"
)

// ExpenseService handles shared expenses: creation, edits, settlement and
// the derived balance queries. Validation and permission checks resolve
// before any write; store failures propagate unchanged.
type ExpenseService struct {
	store    storage.Store
	notifier notify.Notifier
}

// NewExpenseService creates a new ExpenseService. Pass notify.Nop{} when
// no broker is configured.
func NewExpenseService(store storage.Store, notifier notify.Notifier) *ExpenseService {
	return &ExpenseService{store: store, notifier: notifier}
}

// ExpenseView pairs an expense with its derived aggregate status.
type ExpenseView struct {
	*models.GroupExpense
	Status models.ExpenseStatus `json:"status"`
}

func view(e *models.GroupExpense) *ExpenseView {
	return &ExpenseView{GroupExpense: e, Status: split.DeriveStatus(e)}
}

// AddExpense validates and persists a new shared expense. The caller must
// be a member of the group; when PaidBy is empty it defaults to the caller.
// All splits start pending regardless of the submitted status.
func (s *ExpenseService) AddExpense(ctx context.Context, expense *models.GroupExpense) (*ExpenseView, error) {
	const op = "expense.Add"

	callerID := middleware.GetUserID(ctx)
	if callerID == "" {
		return nil, errs.Unauthenticated(op)
	}

	group, err := s.store.GetGroup(ctx, expense.GroupID)
	if err != nil {
		return nil, err
	}
	if !group.IsMember(callerID) {
		return nil, errs.Forbidden(op, expense.GroupID, permission.ReasonNotMember)
	}

	if expense.PaidBy == "" {
		expense.PaidBy = callerID
	}
	for i := range expense.SplitBetween {
		expense.SplitBetween[i].Status = models.SplitPending
		expense.SplitBetween[i].PaidAt = nil
	}
	if expense.Date == 0 {
		expense.Date = time.Now().Unix()
	}

	if err := split.Validate(group, expense); err != nil {
		return nil, err
	}

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		return nil, err
	}

	expensesCreated.Inc()
	slog.Info("expense added",
		"expense_id", expense.ID,
		"group_id", expense.GroupID,
		"amount", expense.Amount,
		"paid_by", expense.PaidBy,
		"splits", len(expense.SplitBetween),
	)
	return view(expense), nil
}

// GetExpense retrieves an expense; the caller must belong to its group.
func (s *ExpenseService) GetExpense(ctx context.Context, expenseID string) (*ExpenseView, error) {
	const op = "expense.Get"

	callerID := middleware.GetUserID(ctx)
	if callerID == "" {
		return nil, errs.Unauthenticated(op)
	}

	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	group, err := s.store.GetGroup(ctx, expense.GroupID)
	if err != nil {
		return nil, err
	}
	if !group.IsMember(callerID) {
		return nil, errs.Forbidden(op, expenseID, permission.ReasonNotMember)
	}
	return view(expense), nil
}

// ListExpenses retrieves a group's expenses in creation order.
func (s *ExpenseService) ListExpenses(ctx context.Context, groupID string) ([]*ExpenseView, error) {
	const op = "expense.List"

	callerID := middleware.GetUserID(ctx)
	if callerID == "" {
		return nil, errs.Unauthenticated(op)
	}

	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.IsMember(callerID) {
		return nil, errs.Forbidden(op, groupID, permission.ReasonNotMember)
	}

	expenses, err := s.store.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	views := make([]*ExpenseView, len(expenses))
	for i, e := range expenses {
		views[i] = view(e)
	}
	return views, nil
}

// UpdateExpense replaces an expense's content. Only the payer or a group
// admin may edit. The split list is re-derived wholesale, so an edit acts
// as expense recreation: submitted split statuses are taken as-is and a
// fresh validation runs against the current roster.
func (s *ExpenseService) UpdateExpense(ctx context.Context, expense *models.GroupExpense) (*ExpenseView, error) {
	const op = "expense.Update"

	callerID := middleware.GetUserID(ctx)
	if callerID == "" {
		return nil, errs.Unauthenticated(op)
	}

	existing, err := s.store.GetExpense(ctx, expense.ID)
	if err != nil {
		return nil, err
	}
	group, err := s.store.GetGroup(ctx, existing.GroupID)
	if err != nil {
		return nil, err
	}
	if d := permission.CanEditExpense(group, existing, callerID); !d.Allowed {
		return nil, errs.Forbidden(op, expense.ID, d.Reason)
	}

	expense.GroupID = existing.GroupID
	expense.CreatedAt = existing.CreatedAt
	expense.UpdatedAt = time.Now().Unix()
	for i := range expense.SplitBetween {
		if expense.SplitBetween[i].Status == "" {
			expense.SplitBetween[i].Status = models.SplitPending
		}
	}

	if err := split.Validate(group, expense); err != nil {
		return nil, err
	}

	if err := s.store.UpdateExpense(ctx, expense); err != nil {
		return nil, err
	}

	slog.Info("expense updated", "expense_id", expense.ID, "group_id", expense.GroupID, "user_id", callerID)
	return view(expense), nil
}

// DeleteExpense removes an expense. Only the payer or a group admin may
// delete.
func (s *ExpenseService) DeleteExpense(ctx context.Context, expenseID string) error {
	const op = "expense.Delete"

	callerID := middleware.GetUserID(ctx)
	if callerID == "" {
		return errs.Unauthenticated(op)
	}

	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return err
	}
	group, err := s.store.GetGroup(ctx, expense.GroupID)
	if err != nil {
		return err
	}
	if d := permission.CanDeleteExpense(group, expense, callerID); !d.Allowed {
		return errs.Forbidden(op, expenseID, d.Reason)
	}

	if err := s.store.DeleteExpense(ctx, expenseID); err != nil {
		return err
	}

	slog.Info("expense deleted", "expense_id", expenseID, "group_id", expense.GroupID, "user_id", callerID)
	return nil
}

// SettleSplit marks one member's split as paid. The caller must be that
// member, the expense creator, or a group admin. Settlement changes the
// split status and the derived expense status only; balances are
// unaffected (see Balances vs SettledBalances).
func (s *ExpenseService) SettleSplit(ctx context.Context, expenseID, userID string) (*ExpenseView, error) {
	const op = "expense.SettleSplit"

	callerID := middleware.GetUserID(ctx)
	if callerID == "" {
		return nil, errs.Unauthenticated(op)
	}

	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	group, err := s.store.GetGroup(ctx, expense.GroupID)
	if err != nil {
		return nil, err
	}
	if d := permission.CanSettleSplit(group, expense, callerID, userID); !d.Allowed {
		return nil, errs.Forbidden(op, expenseID, d.Reason)
	}

	if err := split.Settle(expense, userID, time.Now().Unix()); err != nil {
		return nil, err
	}

	if err := s.store.UpdateExpense(ctx, expense); err != nil {
		return nil, err
	}

	settlementsTotal.Inc()
	slog.Info("split settled",
		"expense_id", expenseID,
		"group_id", expense.GroupID,
		"user_id", userID,
		"settled_by", callerID,
		"expense_status", split.DeriveStatus(expense),
	)
	return view(expense), nil
}

// Balances computes the total-obligation balance mapping for a group:
// every split counts against its ower whether paid or pending, so the
// values always sum to zero.
func (s *ExpenseService) Balances(ctx context.Context, groupID string) (map[string]int64, error) {
	expenses, err := s.memberExpenses(ctx, "expense.Balances", groupID)
	if err != nil {
		return nil, err
	}
	return ledger.ComputeBalances(expenses), nil
}

// SettledBalances computes the cash-view balance mapping: only paid splits
// count.
func (s *ExpenseService) SettledBalances(ctx context.Context, groupID string) (map[string]int64, error) {
	expenses, err := s.memberExpenses(ctx, "expense.SettledBalances", groupID)
	if err != nil {
		return nil, err
	}
	return ledger.ComputeSettledBalances(expenses), nil
}

// Debts returns a simplified who-pays-whom edge list for the group,
// derived from the total-obligation balances.
func (s *ExpenseService) Debts(ctx context.Context, groupID string) ([]ledger.DebtEdge, error) {
	expenses, err := s.memberExpenses(ctx, "expense.Debts", groupID)
	if err != nil {
		return nil, err
	}
	return ledger.SimplifyDebts(ledger.ComputeBalances(expenses)), nil
}

func (s *ExpenseService) memberExpenses(ctx context.Context, op, groupID string) ([]*models.GroupExpense, error) {
	callerID := middleware.GetUserID(ctx)
	if callerID == "" {
		return nil, errs.Unauthenticated(op)
	}
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.IsMember(callerID) {
		return nil, errs.Forbidden(op, groupID, permission.ReasonNotMember)
	}
	return s.store.ListExpensesByGroup(ctx, groupID)
}

// SendPaymentReminder records a payment-reminder notification for the
// split's user and hands it to the broker. Only the expense creator or a
// group admin may send one, and only while the split is still pending.
func (s *ExpenseService) SendPaymentReminder(ctx context.Context, expenseID, userID string) error {
	const op = "expense.SendPaymentReminder"

	callerID := middleware.GetUserID(ctx)
	if callerID == "" {
		return errs.Unauthenticated(op)
	}

	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return err
	}
	group, err := s.store.GetGroup(ctx, expense.GroupID)
	if err != nil {
		return err
	}
	if d := permission.CanSendReminder(group, expense, callerID); !d.Allowed {
		return errs.Forbidden(op, expenseID, d.Reason)
	}

	sd := expense.Split(userID)
	if sd == nil {
		return errs.NotFound(op, expenseID+"/"+userID)
	}
	if sd.Status == models.SplitPaid {
		return errs.Invariant(op, expenseID, split.ReasonSplitAlreadyPaid)
	}

	reminder := &notify.Reminder{
		UserID:      userID,
		ExpenseID:   expenseID,
		Amount:      sd.Amount,
		GroupID:     group.ID,
		GroupName:   group.Name,
		Description: expense.Description,
		Timestamp:   time.Now(),
	}

	if err := s.store.CreateNotification(ctx, &models.Notification{
		UserID:    userID,
		Type:      models.NotificationPaymentReminder,
		Title:     reminder.Title(),
		Message:   reminder.Message(),
		ExpenseID: expenseID,
		Amount:    sd.Amount,
		GroupID:   group.ID,
		GroupName: group.Name,
	}); err != nil {
		return err
	}

	if err := s.notifier.SendPaymentReminder(ctx, reminder); err != nil {
		// The record is persisted; broker delivery is best-effort.
		slog.Error("reminder publish failed", "expense_id", expenseID, "user_id", userID, "error", err)
	}

	remindersTotal.Inc()
	slog.Info("payment reminder sent", "expense_id", expenseID, "user_id", userID, "sent_by", callerID)
	return nil
}
