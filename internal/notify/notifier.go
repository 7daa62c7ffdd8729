// Package notify dispatches payment reminders to the notification
// component. The reminder record itself is persisted by the caller; this
// package only covers the broker hand-off.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Reminder is the payload of a payment-reminder dispatch.
type Reminder struct {
	UserID      string    `json:"userId"`
	ExpenseID   string    `json:"expenseId"`
	Amount      int64     `json:"amount"`
	GroupID     string    `json:"groupId"`
	GroupName   string    `json:"groupName"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

// Title returns the notification title for the reminder.
func (r *Reminder) Title() string {
	return "Payment reminder"
}

// Message returns the user-facing reminder text.
func (r *Reminder) Message() string {
	return fmt.Sprintf("You have a pending share for %q in group %s", r.Description, r.GroupName)
}

// ToJSON converts the reminder to JSON bytes for the wire.
func (r *Reminder) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

// ReminderFromJSON creates a reminder from JSON bytes.
func ReminderFromJSON(data []byte) (*Reminder, error) {
	var r Reminder
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Notifier delivers payment reminders to the external notification
// component.
type Notifier interface {
	SendPaymentReminder(ctx context.Context, r *Reminder) error
	Close() error
}

// Nop is a Notifier that drops every reminder. Used when no broker is
// configured; the persisted notification record still exists.
type Nop struct{}

func (Nop) SendPaymentReminder(ctx context.Context, r *Reminder) error { return nil }
func (Nop) Close() error                                               { return nil }
