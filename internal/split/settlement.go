package split

import (
	"github.com/fintrack/groupledger/internal/errs"
	"github.com/fintrack/groupledger/internal/models"
)

// Settlement refusal reasons.
const (
	ReasonNoSplitForUser   = "no_split_for_user"
	ReasonSplitAlreadyPaid = "split_already_paid"
)

// Settle marks userID's split on the expense as paid at the given time.
// pending -> paid is the only transition; a paid split is terminal and a
// second settle attempt is refused. The caller persists the expense after
// a successful transition.
func Settle(expense *models.GroupExpense, userID string, now int64) error {
	const op = "split.Settle"

	s := expense.Split(userID)
	if s == nil {
		return errs.NotFound(op, expense.ID+"/"+userID)
	}
	if s.Status == models.SplitPaid {
		return errs.Invariant(op, expense.ID, ReasonSplitAlreadyPaid)
	}

	s.Status = models.SplitPaid
	s.PaidAt = &now
	expense.UpdatedAt = now
	return nil
}

// DeriveStatus computes the expense's aggregate status from its splits:
// settled iff every split is paid. The result is never persisted; storing
// it redundantly could drift out of sync with the split list.
func DeriveStatus(expense *models.GroupExpense) models.ExpenseStatus {
	if len(expense.SplitBetween) == 0 {
		return models.ExpensePending
	}
	for _, s := range expense.SplitBetween {
		if s.Status != models.SplitPaid {
			return models.ExpensePending
		}
	}
	return models.ExpenseSettled
}
