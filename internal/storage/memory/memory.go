// Package memory provides an in-memory implementation of storage.Store.
// It backs the dev server and the test suites, and mirrors the document
// semantics of the remote store: reads and writes copy records, so callers
// never share memory with stored state, and each document update is atomic
// under the store mutex.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fintrack/groupledger/internal/errs"
	"github.com/fintrack/groupledger/internal/models"
	"github.com/fintrack/groupledger/internal/storage"
)

// Ensure MemoryStore implements storage.Store.
var _ storage.Store = (*MemoryStore)(nil)

// MemoryStore holds all collections behind a single mutex.
type MemoryStore struct {
	mu            sync.RWMutex
	users         map[string]*models.User
	groups        map[string]*models.Group
	expenses      map[string]*models.GroupExpense
	messages      map[string]*models.GroupMessage
	notifications map[string]*models.Notification

	hub *storage.ExpenseHub
}

// New creates an empty in-memory store.
func New() *MemoryStore {
	return &MemoryStore{
		users:         make(map[string]*models.User),
		groups:        make(map[string]*models.Group),
		expenses:      make(map[string]*models.GroupExpense),
		messages:      make(map[string]*models.GroupMessage),
		notifications: make(map[string]*models.Notification),
		hub:           storage.NewExpenseHub(),
	}
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }

func cloneGroup(g *models.Group) *models.Group {
	out := *g
	out.MemberIDs = append([]string(nil), g.MemberIDs...)
	out.Members = append([]models.GroupMember(nil), g.Members...)
	return &out
}

func cloneExpense(e *models.GroupExpense) *models.GroupExpense {
	out := *e
	out.SplitBetween = make([]models.SplitDetail, len(e.SplitBetween))
	for i, sd := range e.SplitBetween {
		out.SplitBetween[i] = sd
		if sd.PaidAt != nil {
			paidAt := *sd.PaidAt
			out.SplitBetween[i].PaidAt = &paidAt
		}
	}
	return &out
}

// --- users ---

func (s *MemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt == 0 {
		user.CreatedAt = time.Now().Unix()
	}
	u := *user
	s.users[u.ID] = &u
	return nil
}

func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, errs.NotFound("memory.GetUserByEmail", email)
}

func (s *MemoryStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, errs.NotFound("memory.GetUserByID", id)
	}
	out := *u
	return &out, nil
}

// --- groups ---

func (s *MemoryStore) CreateGroup(ctx context.Context, group *models.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if group.CreatedAt == 0 {
		group.CreatedAt = now
	}
	if group.UpdatedAt == 0 {
		group.UpdatedAt = now
	}
	s.groups[group.ID] = cloneGroup(group)
	return nil
}

func (s *MemoryStore) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.groups[groupID]
	if !ok {
		return nil, errs.NotFound("memory.GetGroup", groupID)
	}
	return cloneGroup(g), nil
}

func (s *MemoryStore) ListGroupsByMember(ctx context.Context, userID string) ([]*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Group
	for _, g := range s.groups {
		if g.IsMember(userID) {
			out = append(out, cloneGroup(g))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt < out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) UpdateGroup(ctx context.Context, group *models.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.groups[group.ID]; !ok {
		return errs.NotFound("memory.UpdateGroup", group.ID)
	}
	s.groups[group.ID] = cloneGroup(group)
	return nil
}

func (s *MemoryStore) DeleteGroup(ctx context.Context, groupID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.groups[groupID]; !ok {
		return errs.NotFound("memory.DeleteGroup", groupID)
	}
	delete(s.groups, groupID)
	return nil
}

// RemoveMember re-runs the roster mutation against current data under the
// store mutex, so the last-admin check cannot pass on a stale snapshot.
func (s *MemoryStore) RemoveMember(ctx context.Context, groupID, userID string) (*models.Group, error) {
	const op = "memory.RemoveMember"
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.groups[groupID]
	if !ok {
		return nil, errs.NotFound(op, groupID)
	}
	updated := cloneGroup(g)
	if err := updated.RemoveMember(userID, time.Now().Unix()); err != nil {
		switch err {
		case models.ErrMemberNotFound:
			return nil, errs.NotFound(op, userID)
		case models.ErrLastAdmin:
			return nil, errs.Invariant(op, groupID, "last_remaining_admin")
		default:
			return nil, errs.Wrap(op, err)
		}
	}
	s.groups[groupID] = updated
	return cloneGroup(updated), nil
}

// --- expenses ---

func (s *MemoryStore) CreateExpense(ctx context.Context, expense *models.GroupExpense) error {
	s.mu.Lock()
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if expense.CreatedAt == 0 {
		expense.CreatedAt = now
	}
	if expense.UpdatedAt == 0 {
		expense.UpdatedAt = now
	}
	s.expenses[expense.ID] = cloneExpense(expense)
	groupID := expense.GroupID
	snapshot := s.snapshotExpensesLocked(groupID)
	s.mu.Unlock()

	s.hub.Publish(groupID, snapshot)
	return nil
}

func (s *MemoryStore) GetExpense(ctx context.Context, expenseID string) (*models.GroupExpense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.expenses[expenseID]
	if !ok {
		return nil, errs.NotFound("memory.GetExpense", expenseID)
	}
	return cloneExpense(e), nil
}

func (s *MemoryStore) UpdateExpense(ctx context.Context, expense *models.GroupExpense) error {
	s.mu.Lock()
	if _, ok := s.expenses[expense.ID]; !ok {
		s.mu.Unlock()
		return errs.NotFound("memory.UpdateExpense", expense.ID)
	}
	s.expenses[expense.ID] = cloneExpense(expense)
	groupID := expense.GroupID
	snapshot := s.snapshotExpensesLocked(groupID)
	s.mu.Unlock()

	s.hub.Publish(groupID, snapshot)
	return nil
}

func (s *MemoryStore) DeleteExpense(ctx context.Context, expenseID string) error {
	s.mu.Lock()
	e, ok := s.expenses[expenseID]
	if !ok {
		s.mu.Unlock()
		return errs.NotFound("memory.DeleteExpense", expenseID)
	}
	groupID := e.GroupID
	delete(s.expenses, expenseID)
	snapshot := s.snapshotExpensesLocked(groupID)
	s.mu.Unlock()

	s.hub.Publish(groupID, snapshot)
	return nil
}

func (s *MemoryStore) ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.GroupExpense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotExpensesLocked(groupID), nil
}

func (s *MemoryStore) snapshotExpensesLocked(groupID string) []*models.GroupExpense {
	var out []*models.GroupExpense
	for _, e := range s.expenses {
		if e.GroupID == groupID {
			out = append(out, cloneExpense(e))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt < out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// SubscribeExpenses delivers the current snapshot immediately, then one
// snapshot per observed change. The subscription is released by the cancel
// func or by ctx cancellation, whichever comes first.
func (s *MemoryStore) SubscribeExpenses(ctx context.Context, groupID string) (<-chan []*models.GroupExpense, storage.CancelFunc, error) {
	ch, cancel := s.hub.Subscribe(groupID)

	s.mu.RLock()
	snapshot := s.snapshotExpensesLocked(groupID)
	s.mu.RUnlock()
	s.hub.Push(ch, groupID, snapshot)

	go func() {
		<-ctx.Done()
		cancel()
	}()
	return ch, cancel, nil
}

// --- messages ---

func (s *MemoryStore) CreateMessage(ctx context.Context, msg *models.GroupMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.CreatedAt == 0 {
		msg.CreatedAt = time.Now().Unix()
	}
	m := *msg
	s.messages[m.ID] = &m
	return nil
}

func (s *MemoryStore) ListMessagesByGroup(ctx context.Context, groupID string, limit int) ([]*models.GroupMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.GroupMessage
	for _, m := range s.messages {
		if m.GroupID == groupID {
			msg := *m
			out = append(out, &msg)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt < out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

// --- notifications ---

func (s *MemoryStore) CreateNotification(ctx context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt == 0 {
		n.CreatedAt = time.Now().Unix()
	}
	record := *n
	s.notifications[record.ID] = &record
	return nil
}

func (s *MemoryStore) ListNotificationsByUser(ctx context.Context, userID string) ([]*models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Notification
	for _, n := range s.notifications {
		if n.UserID == userID {
			record := *n
			out = append(out, &record)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt > out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
