// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/fintrack/groupledger/internal/models"
)

// CancelFunc releases a subscription. Safe to call more than once.
type CancelFunc func()

// Store defines the interface for group-ledger persistence.
// This abstraction allows swapping storage backends (SQLite, in-memory,
// a remote document store) without changing the service layer, and keeps
// the core engines testable against an in-memory fake.
type Store interface {
	// Users.
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// Groups. CreateGroup populates the ID and timestamps.
	CreateGroup(ctx context.Context, group *models.Group) error
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)
	ListGroupsByMember(ctx context.Context, userID string) ([]*models.Group, error)
	UpdateGroup(ctx context.Context, group *models.Group) error
	DeleteGroup(ctx context.Context, groupID string) error

	// RemoveMember drops a member from both roster collections as a single
	// atomic write. The last-admin check runs inside the store transaction
	// against current data, so concurrent removals cannot both pass on
	// stale snapshots. Returns the updated group.
	RemoveMember(ctx context.Context, groupID, userID string) (*models.Group, error)

	// Expenses. CreateExpense populates the ID and timestamps. Every
	// expense write publishes a fresh snapshot to the group's subscribers.
	CreateExpense(ctx context.Context, expense *models.GroupExpense) error
	GetExpense(ctx context.Context, expenseID string) (*models.GroupExpense, error)
	UpdateExpense(ctx context.Context, expense *models.GroupExpense) error
	DeleteExpense(ctx context.Context, expenseID string) error
	ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.GroupExpense, error)

	// SubscribeExpenses streams expense-list snapshots for a group. The
	// current snapshot is delivered first, then one per observed change,
	// in delivery order. The channel closes when the subscription is
	// released, either by the CancelFunc or by ctx cancellation.
	SubscribeExpenses(ctx context.Context, groupID string) (<-chan []*models.GroupExpense, CancelFunc, error)

	// Messages, ascending by creation time, newest-limited.
	CreateMessage(ctx context.Context, msg *models.GroupMessage) error
	ListMessagesByGroup(ctx context.Context, groupID string, limit int) ([]*models.GroupMessage, error)

	// Notifications are write-mostly; a separate component consumes them.
	CreateNotification(ctx context.Context, n *models.Notification) error
	ListNotificationsByUser(ctx context.Context, userID string) ([]*models.Notification, error)

	// Close releases any resources held by the store.
	Close() error
}
