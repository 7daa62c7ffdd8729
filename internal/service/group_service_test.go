package service

import (
	"context"
	"testing"

	"github.com/fintrack/groupledger/internal/errs"
	"github.com/fintrack/groupledger/internal/middleware"
	"github.com/fintrack/groupledger/internal/models"
	"github.com/fintrack/groupledger/internal/notify"
	"github.com/fintrack/groupledger/internal/storage/memory"
)

// testEnv seeds a store with three users and wires the services against it.
type testEnv struct {
	store    *memory.MemoryStore
	groups   *GroupService
	expenses *ExpenseService
	messages *MessageService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.New()
	ctx := context.Background()

	for _, u := range []*models.User{
		{ID: "alice", Email: "alice@example.com", DisplayName: "Alice"},
		{ID: "bob", Email: "bob@example.com", DisplayName: "Bob"},
		{ID: "carol", Email: "carol@example.com", DisplayName: "Carol"},
	} {
		if err := store.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser(%s) failed: %v", u.ID, err)
		}
	}

	return &testEnv{
		store:    store,
		groups:   NewGroupService(store),
		expenses: NewExpenseService(store, notify.Nop{}),
		messages: NewMessageService(store),
	}
}

func as(userID string) context.Context {
	return middleware.WithUser(context.Background(), userID, userID)
}

// tripGroup creates a group with alice as admin and bob, carol as members.
func (e *testEnv) tripGroup(t *testing.T) *models.Group {
	t.Helper()
	g, err := e.groups.CreateGroup(as("alice"), "Trip", "")
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	for _, email := range []string{"bob@example.com", "carol@example.com"} {
		if g, err = e.groups.AddMember(as("alice"), g.ID, email); err != nil {
			t.Fatalf("AddMember(%s) failed: %v", email, err)
		}
	}
	return g
}

func TestCreateGroup(t *testing.T) {
	env := newTestEnv(t)

	g, err := env.groups.CreateGroup(as("alice"), "Trip", "beach weekend")
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if g.CreatedBy != "alice" || !g.IsAdmin("alice") {
		t.Errorf("creator not admin: %+v", g)
	}
	if g.Members[0].DisplayName != "Alice" {
		t.Errorf("roster entry = %+v, want Alice's profile", g.Members[0])
	}

	if _, err := env.groups.CreateGroup(context.Background(), "Trip", ""); !errs.IsKind(err, errs.KindUnauthenticated) {
		t.Errorf("anonymous create kind = %v, want KindUnauthenticated", errs.KindOf(err))
	}
	if _, err := env.groups.CreateGroup(as("alice"), "", ""); !errs.IsKind(err, errs.KindInvalid) {
		t.Errorf("empty name kind = %v, want KindInvalid", errs.KindOf(err))
	}
}

func TestGetGroupMembersOnly(t *testing.T) {
	env := newTestEnv(t)
	g := env.tripGroup(t)

	if _, err := env.groups.GetGroup(as("bob"), g.ID); err != nil {
		t.Errorf("member read failed: %v", err)
	}

	// carol is a member here; build an outsider with no groups.
	if _, err := env.groups.GetGroup(as("mallory"), g.ID); !errs.IsKind(err, errs.KindForbidden) {
		t.Errorf("outsider read kind = %v, want KindForbidden", errs.KindOf(err))
	}
}

func TestAddMember(t *testing.T) {
	env := newTestEnv(t)
	g, err := env.groups.CreateGroup(as("alice"), "Trip", "")
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	// Any member may invite, and the invitee joins as a plain member.
	g, err = env.groups.AddMember(as("alice"), g.ID, "bob@example.com")
	if err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}
	if g.Member("bob").Role != models.RoleMember {
		t.Errorf("bob role = %s, want member", g.Member("bob").Role)
	}

	g, err = env.groups.AddMember(as("bob"), g.ID, "carol@example.com")
	if err != nil {
		t.Fatalf("member invite failed: %v", err)
	}
	if !g.IsMember("carol") {
		t.Error("carol missing after invite")
	}

	if _, err := env.groups.AddMember(as("alice"), g.ID, "bob@example.com"); !errs.IsKind(err, errs.KindInvalid) {
		t.Errorf("duplicate invite kind = %v, want KindInvalid", errs.KindOf(err))
	}
	if _, err := env.groups.AddMember(as("alice"), g.ID, "nobody@example.com"); !errs.IsKind(err, errs.KindNotFound) {
		t.Errorf("unknown email kind = %v, want KindNotFound", errs.KindOf(err))
	}
}

func TestUpdateAndDeleteGroupCreatorOnly(t *testing.T) {
	env := newTestEnv(t)
	g := env.tripGroup(t)

	if _, err := env.groups.UpdateGroupInfo(as("bob"), g.ID, "Renamed", ""); !errs.IsKind(err, errs.KindForbidden) {
		t.Errorf("member rename kind = %v, want KindForbidden", errs.KindOf(err))
	}

	updated, err := env.groups.UpdateGroupInfo(as("alice"), g.ID, "Renamed", "new plan")
	if err != nil {
		t.Fatalf("creator rename failed: %v", err)
	}
	if updated.Name != "Renamed" || updated.Description != "new plan" {
		t.Errorf("got %+v, want renamed group", updated)
	}

	if err := env.groups.DeleteGroup(as("bob"), g.ID); !errs.IsKind(err, errs.KindForbidden) {
		t.Errorf("member delete kind = %v, want KindForbidden", errs.KindOf(err))
	}
	if err := env.groups.DeleteGroup(as("alice"), g.ID); err != nil {
		t.Fatalf("creator delete failed: %v", err)
	}
	if _, err := env.groups.GetGroup(as("alice"), g.ID); !errs.IsKind(err, errs.KindNotFound) {
		t.Errorf("deleted group kind = %v, want KindNotFound", errs.KindOf(err))
	}
}

func TestRemoveMember(t *testing.T) {
	env := newTestEnv(t)
	g := env.tripGroup(t)

	// A plain member cannot remove anyone.
	if _, err := env.groups.RemoveMember(as("carol"), g.ID, "bob"); !errs.IsKind(err, errs.KindForbidden) {
		t.Errorf("member removal kind = %v, want KindForbidden", errs.KindOf(err))
	}

	// The sole admin cannot be removed, even by themselves.
	if _, err := env.groups.RemoveMember(as("alice"), g.ID, "alice"); !errs.IsKind(err, errs.KindInvariant) {
		t.Errorf("sole admin removal kind = %v, want KindInvariant", errs.KindOf(err))
	}

	result, err := env.groups.RemoveMember(as("alice"), g.ID, "bob")
	if err != nil {
		t.Fatalf("RemoveMember failed: %v", err)
	}
	if result.Group.IsMember("bob") || result.Group.Member("bob") != nil {
		t.Error("bob still on the roster after removal")
	}
	if len(result.Group.MemberIDs) != len(result.Group.Members) {
		t.Error("roster collections diverged")
	}
	if result.Warning != "" {
		t.Errorf("warning = %q, want none without expenses", result.Warning)
	}
}

func TestRemoveMemberWithBalanceWarns(t *testing.T) {
	env := newTestEnv(t)
	g := env.tripGroup(t)

	_, err := env.expenses.AddExpense(as("alice"), &models.GroupExpense{
		GroupID: g.ID,
		Amount:  10000,
		PaidBy:  "alice",
		SplitBetween: []models.SplitDetail{
			{UserID: "alice", Amount: 5000},
			{UserID: "bob", Amount: 5000},
		},
	})
	if err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}

	result, err := env.groups.RemoveMember(as("alice"), g.ID, "bob")
	if err != nil {
		t.Fatalf("RemoveMember failed: %v", err)
	}
	if result.Warning == "" {
		t.Error("expected a non-zero balance warning")
	}

	// Historical expenses keep referencing the removed member.
	views, err := env.expenses.ListExpenses(as("alice"), g.ID)
	if err != nil {
		t.Fatalf("ListExpenses failed: %v", err)
	}
	if len(views) != 1 || views[0].Split("bob") == nil {
		t.Error("removed member's split vanished from history")
	}
}

func TestSendMessage(t *testing.T) {
	env := newTestEnv(t)
	g := env.tripGroup(t)

	msg, err := env.messages.SendMessage(as("bob"), g.ID, "who paid for gas?")
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if msg.DisplayName != "Bob" {
		t.Errorf("DisplayName = %s, want Bob", msg.DisplayName)
	}

	if _, err := env.messages.SendMessage(as("bob"), g.ID, "   "); !errs.IsKind(err, errs.KindInvalid) {
		t.Errorf("blank message kind = %v, want KindInvalid", errs.KindOf(err))
	}
	if _, err := env.messages.SendMessage(as("mallory"), g.ID, "hi"); !errs.IsKind(err, errs.KindForbidden) {
		t.Errorf("outsider message kind = %v, want KindForbidden", errs.KindOf(err))
	}

	msgs, err := env.messages.ListMessages(as("carol"), g.ID, 0)
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Content != "who paid for gas?" {
		t.Errorf("messages = %v, want the sent one", msgs)
	}
}
