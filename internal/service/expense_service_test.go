package service

import (
	"context"
	"testing"

	"github.com/fintrack/groupledger/internal/errs"
	"github.com/fintrack/groupledger/internal/models"
	"github.com/fintrack/groupledger/internal/notify"
	"github.com/fintrack/groupledger/internal/split"
	"github.com/fintrack/groupledger/internal/storage/memory"
)

// captureNotifier records dispatched reminders instead of publishing them.
type captureNotifier struct {
	reminders []*notify.Reminder
}

func (c *captureNotifier) SendPaymentReminder(_ context.Context, r *notify.Reminder) error {
	c.reminders = append(c.reminders, r)
	return nil
}

func (c *captureNotifier) Close() error { return nil }

func equalSplit(amount int64, users ...string) []models.SplitDetail {
	share := amount / int64(len(users))
	splits := make([]models.SplitDetail, len(users))
	for i, u := range users {
		splits[i] = models.SplitDetail{UserID: u, Amount: share}
	}
	return splits
}

func TestAddExpense(t *testing.T) {
	env := newTestEnv(t)
	g := env.tripGroup(t)

	view, err := env.expenses.AddExpense(as("alice"), &models.GroupExpense{
		GroupID:      g.ID,
		Description:  "hotel",
		Amount:       300000,
		PaidBy:       "alice",
		SplitBetween: equalSplit(300000, "alice", "bob", "carol"),
	})
	if err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}

	if view.ID == "" {
		t.Error("expense ID not assigned")
	}
	if view.Status != models.ExpensePending {
		t.Errorf("status = %s, want pending", view.Status)
	}
	for _, sd := range view.SplitBetween {
		if sd.Status != models.SplitPending || sd.PaidAt != nil {
			t.Errorf("split %s = %+v, want pending with no PaidAt", sd.UserID, sd)
		}
	}
}

func TestAddExpenseDefaultsPayerToCaller(t *testing.T) {
	env := newTestEnv(t)
	g := env.tripGroup(t)

	view, err := env.expenses.AddExpense(as("bob"), &models.GroupExpense{
		GroupID:      g.ID,
		Amount:       10000,
		SplitBetween: equalSplit(10000, "bob", "carol"),
	})
	if err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}
	if view.PaidBy != "bob" {
		t.Errorf("PaidBy = %s, want the caller", view.PaidBy)
	}
}

func TestAddExpenseRejections(t *testing.T) {
	env := newTestEnv(t)
	g := env.tripGroup(t)

	tests := []struct {
		name     string
		caller   string
		expense  *models.GroupExpense
		wantKind errs.Kind
		wantRule string
	}{
		{
			name:   "outsider cannot add",
			caller: "mallory",
			expense: &models.GroupExpense{
				GroupID:      g.ID,
				Amount:       10000,
				PaidBy:       "alice",
				SplitBetween: equalSplit(10000, "alice", "bob"),
			},
			wantKind: errs.KindForbidden,
		},
		{
			name:   "splits must cover the amount",
			caller: "alice",
			expense: &models.GroupExpense{
				GroupID: g.ID,
				Amount:  100000,
				PaidBy:  "alice",
				SplitBetween: []models.SplitDetail{
					{UserID: "alice", Amount: 45000},
					{UserID: "bob", Amount: 45000},
				},
			},
			wantKind: errs.KindInvalid,
			wantRule: split.RuleSumMatchesAmount,
		},
		{
			name:   "split user must be on the roster",
			caller: "alice",
			expense: &models.GroupExpense{
				GroupID: g.ID,
				Amount:  10000,
				PaidBy:  "alice",
				SplitBetween: []models.SplitDetail{
					{UserID: "mallory", Amount: 10000},
				},
			},
			wantKind: errs.KindInvalid,
			wantRule: split.RuleSplitUserIsMember,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.expenses.AddExpense(as(tt.caller), tt.expense)
			if !errs.IsKind(err, tt.wantKind) {
				t.Fatalf("kind = %v (%v), want %v", errs.KindOf(err), err, tt.wantKind)
			}
			if tt.wantRule != "" && errs.ReasonOf(err) != tt.wantRule {
				t.Errorf("rule = %s, want %s", errs.ReasonOf(err), tt.wantRule)
			}
		})
	}

	// Nothing persisted by the failed attempts.
	views, err := env.expenses.ListExpenses(as("alice"), g.ID)
	if err != nil {
		t.Fatalf("ListExpenses failed: %v", err)
	}
	if len(views) != 0 {
		t.Errorf("%d expenses persisted after rejections, want 0", len(views))
	}
}

// TestSettlementLifecycle walks the full flow: one shared expense, balances
// before and after settlement, and the derived status flip when the last
// split is paid.
func TestSettlementLifecycle(t *testing.T) {
	env := newTestEnv(t)
	g := env.tripGroup(t)

	view, err := env.expenses.AddExpense(as("alice"), &models.GroupExpense{
		GroupID:      g.ID,
		Description:  "hotel",
		Amount:       300000,
		PaidBy:       "alice",
		SplitBetween: equalSplit(300000, "alice", "bob", "carol"),
	})
	if err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}

	wantBalances := map[string]int64{"alice": 200000, "bob": -100000, "carol": -100000}
	balances, err := env.expenses.Balances(as("alice"), g.ID)
	if err != nil {
		t.Fatalf("Balances failed: %v", err)
	}
	for userID, want := range wantBalances {
		if balances[userID] != want {
			t.Errorf("balance[%s] = %d, want %d", userID, balances[userID], want)
		}
	}

	// bob settles his own share: the expense stays pending and the
	// obligation balances do not move.
	after, err := env.expenses.SettleSplit(as("bob"), view.ID, "bob")
	if err != nil {
		t.Fatalf("SettleSplit(bob) failed: %v", err)
	}
	if after.Status != models.ExpensePending {
		t.Errorf("status = %s, want pending with splits outstanding", after.Status)
	}
	if sd := after.Split("bob"); sd.Status != models.SplitPaid || sd.PaidAt == nil {
		t.Errorf("bob split = %+v, want paid with PaidAt", sd)
	}

	balances, _ = env.expenses.Balances(as("alice"), g.ID)
	for userID, want := range wantBalances {
		if balances[userID] != want {
			t.Errorf("post-settle balance[%s] = %d, want %d unchanged", userID, balances[userID], want)
		}
	}

	// The cash view does move.
	settled, err := env.expenses.SettledBalances(as("alice"), g.ID)
	if err != nil {
		t.Fatalf("SettledBalances failed: %v", err)
	}
	if settled["alice"] != 100000 || settled["bob"] != -100000 {
		t.Errorf("settled = %v, want alice +100000, bob -100000", settled)
	}

	// Settling the same split again is refused and changes nothing.
	if _, err := env.expenses.SettleSplit(as("bob"), view.ID, "bob"); !errs.IsKind(err, errs.KindInvariant) {
		t.Errorf("re-settle kind = %v, want KindInvariant", errs.KindOf(err))
	}

	// alice settles for carol as the expense creator, then her own share;
	// the derived status flips once every split is paid.
	if _, err := env.expenses.SettleSplit(as("alice"), view.ID, "carol"); err != nil {
		t.Fatalf("SettleSplit(carol) failed: %v", err)
	}
	final, err := env.expenses.SettleSplit(as("alice"), view.ID, "alice")
	if err != nil {
		t.Fatalf("SettleSplit(alice) failed: %v", err)
	}
	if final.Status != models.ExpenseSettled {
		t.Errorf("status = %s, want settled with all splits paid", final.Status)
	}

	// Debts derive from the unchanged obligation view.
	debts, err := env.expenses.Debts(as("alice"), g.ID)
	if err != nil {
		t.Fatalf("Debts failed: %v", err)
	}
	if len(debts) != 2 {
		t.Errorf("debts = %v, want two edges toward alice", debts)
	}
}

func TestSettleSplitPermissions(t *testing.T) {
	env := newTestEnv(t)
	g := env.tripGroup(t)

	view, err := env.expenses.AddExpense(as("bob"), &models.GroupExpense{
		GroupID:      g.ID,
		Amount:       10000,
		PaidBy:       "bob",
		SplitBetween: equalSplit(10000, "bob", "carol"),
	})
	if err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}

	// carol may not settle bob's share.
	if _, err := env.expenses.SettleSplit(as("carol"), view.ID, "bob"); !errs.IsKind(err, errs.KindForbidden) {
		t.Errorf("kind = %v, want KindForbidden", errs.KindOf(err))
	}

	// The group admin may settle anyone's share.
	if _, err := env.expenses.SettleSplit(as("alice"), view.ID, "carol"); err != nil {
		t.Errorf("admin settle failed: %v", err)
	}
}

func TestUpdateExpense(t *testing.T) {
	env := newTestEnv(t)
	g := env.tripGroup(t)

	view, err := env.expenses.AddExpense(as("bob"), &models.GroupExpense{
		GroupID:      g.ID,
		Description:  "taxi",
		Amount:       6000,
		PaidBy:       "bob",
		SplitBetween: equalSplit(6000, "bob", "carol"),
	})
	if err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}

	// carol is neither payer nor admin.
	_, err = env.expenses.UpdateExpense(as("carol"), &models.GroupExpense{
		ID:           view.ID,
		Description:  "hijacked",
		Amount:       6000,
		PaidBy:       "bob",
		SplitBetween: equalSplit(6000, "bob", "carol"),
	})
	if !errs.IsKind(err, errs.KindForbidden) {
		t.Errorf("kind = %v, want KindForbidden", errs.KindOf(err))
	}

	updated, err := env.expenses.UpdateExpense(as("bob"), &models.GroupExpense{
		ID:           view.ID,
		Description:  "airport taxi",
		Amount:       9000,
		PaidBy:       "bob",
		SplitBetween: equalSplit(9000, "bob", "carol", "alice"),
	})
	if err != nil {
		t.Fatalf("UpdateExpense failed: %v", err)
	}
	if updated.Description != "airport taxi" || len(updated.SplitBetween) != 3 {
		t.Errorf("got %+v, want rewritten expense", updated)
	}
	if updated.GroupID != g.ID || updated.CreatedAt != view.CreatedAt {
		t.Error("GroupID or CreatedAt not preserved across the edit")
	}

	// An invalid edit leaves the stored expense untouched.
	_, err = env.expenses.UpdateExpense(as("bob"), &models.GroupExpense{
		ID:           view.ID,
		Amount:       9000,
		PaidBy:       "bob",
		SplitBetween: equalSplit(4000, "bob", "carol"),
	})
	if !errs.IsKind(err, errs.KindInvalid) {
		t.Errorf("kind = %v, want KindInvalid", errs.KindOf(err))
	}
	current, _ := env.expenses.GetExpense(as("bob"), view.ID)
	if current.Description != "airport taxi" {
		t.Error("failed edit mutated the stored expense")
	}
}

func TestDeleteExpense(t *testing.T) {
	env := newTestEnv(t)
	g := env.tripGroup(t)

	view, err := env.expenses.AddExpense(as("bob"), &models.GroupExpense{
		GroupID:      g.ID,
		Amount:       10000,
		PaidBy:       "bob",
		SplitBetween: equalSplit(10000, "bob", "carol"),
	})
	if err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}

	if err := env.expenses.DeleteExpense(as("carol"), view.ID); !errs.IsKind(err, errs.KindForbidden) {
		t.Errorf("kind = %v, want KindForbidden", errs.KindOf(err))
	}

	// Admin may delete another member's expense.
	if err := env.expenses.DeleteExpense(as("alice"), view.ID); err != nil {
		t.Fatalf("admin delete failed: %v", err)
	}
	if _, err := env.expenses.GetExpense(as("bob"), view.ID); !errs.IsKind(err, errs.KindNotFound) {
		t.Errorf("deleted expense kind = %v, want KindNotFound", errs.KindOf(err))
	}
}

func TestSendPaymentReminder(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	for _, u := range []*models.User{
		{ID: "alice", Email: "alice@example.com", DisplayName: "Alice"},
		{ID: "bob", Email: "bob@example.com", DisplayName: "Bob"},
	} {
		if err := store.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
	}

	notifier := &captureNotifier{}
	groups := NewGroupService(store)
	expenses := NewExpenseService(store, notifier)

	g, err := groups.CreateGroup(as("alice"), "Trip", "")
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if g, err = groups.AddMember(as("alice"), g.ID, "bob@example.com"); err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}

	view, err := expenses.AddExpense(as("alice"), &models.GroupExpense{
		GroupID:      g.ID,
		Description:  "hotel",
		Amount:       10000,
		PaidBy:       "alice",
		SplitBetween: equalSplit(10000, "alice", "bob"),
	})
	if err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}

	// bob is neither creator nor admin.
	if err := expenses.SendPaymentReminder(as("bob"), view.ID, "alice"); !errs.IsKind(err, errs.KindForbidden) {
		t.Errorf("kind = %v, want KindForbidden", errs.KindOf(err))
	}

	if err := expenses.SendPaymentReminder(as("alice"), view.ID, "bob"); err != nil {
		t.Fatalf("SendPaymentReminder failed: %v", err)
	}

	if len(notifier.reminders) != 1 {
		t.Fatalf("dispatched %d reminders, want 1", len(notifier.reminders))
	}
	r := notifier.reminders[0]
	if r.UserID != "bob" || r.Amount != 5000 || r.GroupName != "Trip" {
		t.Errorf("reminder = %+v, want bob / 5000 / Trip", r)
	}

	records, err := store.ListNotificationsByUser(ctx, "bob")
	if err != nil {
		t.Fatalf("ListNotificationsByUser failed: %v", err)
	}
	if len(records) != 1 || records[0].Type != models.NotificationPaymentReminder {
		t.Fatalf("records = %v, want one payment reminder", records)
	}
	if records[0].Amount != 5000 || records[0].ExpenseID != view.ID {
		t.Errorf("record = %+v, want amount 5000 for the expense", records[0])
	}

	// A paid split cannot be nudged.
	if _, err := expenses.SettleSplit(as("bob"), view.ID, "bob"); err != nil {
		t.Fatalf("SettleSplit failed: %v", err)
	}
	if err := expenses.SendPaymentReminder(as("alice"), view.ID, "bob"); !errs.IsKind(err, errs.KindInvariant) {
		t.Errorf("paid-split reminder kind = %v, want KindInvariant", errs.KindOf(err))
	}

	// No split for the user at all.
	if err := expenses.SendPaymentReminder(as("alice"), view.ID, "mallory"); !errs.IsKind(err, errs.KindNotFound) {
		t.Errorf("no-split reminder kind = %v, want KindNotFound", errs.KindOf(err))
	}
}
