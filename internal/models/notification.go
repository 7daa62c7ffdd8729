package models

// NotificationType identifies the kind of notification record.
type NotificationType string

const (
	// NotificationPaymentReminder nudges a member about a pending split.
	NotificationPaymentReminder NotificationType = "payment_reminder"
)

// Notification is a write-only record from this subsystem's perspective;
// a separate notification component consumes and delivers it.
type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"userId"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	ExpenseID string           `json:"expenseId"`
	Amount    int64            `json:"amount"`
	GroupID   string           `json:"groupId"`
	GroupName string           `json:"groupName"`
	CreatedAt int64            `json:"createdAt"`
	Read      bool             `json:"read"`
}
