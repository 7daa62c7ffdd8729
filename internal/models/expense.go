package models

// SplitStatus is the payment state of one split line.
type SplitStatus string

const (
	// SplitPending is the initial state of every split.
	SplitPending SplitStatus = "pending"
	// SplitPaid is terminal; a split never moves back to pending.
	SplitPaid SplitStatus = "paid"
)

// ExpenseStatus is the derived aggregate state of an expense.
// It is never persisted; recompute it from the split list.
type ExpenseStatus string

const (
	ExpensePending ExpenseStatus = "pending"
	ExpenseSettled ExpenseStatus = "settled"
)

// SplitDetail is one member's allocated share of a shared expense.
type SplitDetail struct {
	UserID      string      `json:"userId"`
	DisplayName string      `json:"displayName"`
	Amount      int64       `json:"amount"`
	Status      SplitStatus `json:"status"`
	PaidAt      *int64      `json:"paidAt,omitempty"`
}

// GroupExpense is a shared expense recorded against a group.
//
// The split amounts always sum to Amount (within one currency unit); the
// split validator enforces this before an expense is accepted. PaidBy may
// reference a since-removed member on historical expenses.
type GroupExpense struct {
	ID           string        `json:"id"`
	GroupID      string        `json:"groupId"`
	Description  string        `json:"description"`
	Amount       int64         `json:"amount"`
	PaidBy       string        `json:"paidBy"`
	Category     string        `json:"category,omitempty"`
	Date         int64         `json:"date"`
	SplitBetween []SplitDetail `json:"splitBetween"`
	CreatedAt    int64         `json:"createdAt"`
	UpdatedAt    int64         `json:"updatedAt"`
}

// Split returns the split line for userID, or nil if the user has none.
func (e *GroupExpense) Split(userID string) *SplitDetail {
	for i := range e.SplitBetween {
		if e.SplitBetween[i].UserID == userID {
			return &e.SplitBetween[i]
		}
	}
	return nil
}
