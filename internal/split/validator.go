// Package split enforces the structural rules of an expense's split list
// and drives the per-split settlement lifecycle. Both halves are pure:
// they inspect and mutate in-memory records and never touch storage.
package split

import (
	"github.com/fintrack/groupledger/internal/errs"
	"github.com/fintrack/groupledger/internal/models"
)

// SumTolerance is the allowed gap, in smallest currency units, between an
// expense amount and the sum of its splits. One unit absorbs the remainder
// of an equal split that does not divide evenly.
const SumTolerance int64 = 1

// Validation rule names, reported as the Reason on rejection.
const (
	RuleAmountPositive     = "amount_positive"
	RuleSplitsNonEmpty     = "splits_non_empty"
	RulePayerIsMember      = "payer_is_member"
	RuleSplitUserIsMember  = "split_user_is_member"
	RuleSplitNonNegative   = "split_amount_non_negative"
	RuleNoDuplicateSplits  = "no_duplicate_split_users"
	RuleSumMatchesAmount   = "split_sum_matches_amount"
)

// Validate checks an expense against its group before creation or update.
// It returns a KindInvalid error naming the first violated rule, or nil.
// Validation is all-or-nothing; a failed expense must not be persisted.
//
// Membership is checked against the roster at validation time. Stored
// expenses that reference since-removed members remain valid and are never
// re-validated.
func Validate(group *models.Group, expense *models.GroupExpense) error {
	const op = "split.Validate"

	if expense.Amount <= 0 {
		return errs.Invalid(op, RuleAmountPositive)
	}
	if len(expense.SplitBetween) == 0 {
		return errs.Invalid(op, RuleSplitsNonEmpty)
	}
	if !group.IsMember(expense.PaidBy) {
		return errs.Invalid(op, RulePayerIsMember)
	}

	seen := make(map[string]bool, len(expense.SplitBetween))
	var sum int64
	for _, s := range expense.SplitBetween {
		if !group.IsMember(s.UserID) {
			return errs.Invalid(op, RuleSplitUserIsMember)
		}
		if s.Amount < 0 {
			return errs.Invalid(op, RuleSplitNonNegative)
		}
		if seen[s.UserID] {
			return errs.Invalid(op, RuleNoDuplicateSplits)
		}
		seen[s.UserID] = true
		sum += s.Amount
	}

	diff := expense.Amount - sum
	if diff < -SumTolerance || diff > SumTolerance {
		return errs.Invalid(op, RuleSumMatchesAmount)
	}
	return nil
}
