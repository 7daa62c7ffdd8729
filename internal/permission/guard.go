// Package permission evaluates role- and ownership-based authorization for
// every mutating group operation. Each check runs synchronously against an
// in-memory snapshot of the group and performs no I/O; callers load the
// snapshot, consult the guard, and only then write.
package permission

import "github.com/fintrack/groupledger/internal/models"

// Denial reason codes.
const (
	ReasonNotCreator         = "not_group_creator"
	ReasonNotMember          = "not_group_member"
	ReasonNotAdmin           = "not_group_admin"
	ReasonLastAdmin          = "last_remaining_admin"
	ReasonTargetNotMember    = "target_not_member"
	ReasonNotOwnerOrAdmin    = "not_expense_owner_or_admin"
	ReasonNotSplitUserOrAdmin = "not_split_user_creator_or_admin"
)

// Decision is a tagged allow/deny result. Denials carry a reason code so
// call sites surface a specific message instead of an ad hoc error.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision             { return Decision{Allowed: true} }
func deny(reason string) Decision { return Decision{Reason: reason} }

// CanDeleteGroup permits only the group's creator.
func CanDeleteGroup(g *models.Group, caller string) Decision {
	if g.CreatedBy != caller {
		return deny(ReasonNotCreator)
	}
	return allow()
}

// CanRenameGroup permits only the group's creator, same as deletion.
func CanRenameGroup(g *models.Group, caller string) Decision {
	return CanDeleteGroup(g, caller)
}

// CanAddMember permits any current member to invite.
func CanAddMember(g *models.Group, caller string) Decision {
	if !g.IsMember(caller) {
		return deny(ReasonNotMember)
	}
	return allow()
}

// CanRemoveMember requires the caller to be an admin and refuses removal of
// the only remaining admin. A ReasonLastAdmin denial is an invariant
// protection, not a role failure; callers report it as such.
//
// A member with a non-zero balance may still be removed; that surfaces as a
// warning at the service layer, not a denial here.
func CanRemoveMember(g *models.Group, caller, target string) Decision {
	if !g.IsAdmin(caller) {
		return deny(ReasonNotAdmin)
	}
	tm := g.Member(target)
	if tm == nil {
		return deny(ReasonTargetNotMember)
	}
	if tm.Role == models.RoleAdmin && g.AdminCount() <= 1 {
		return deny(ReasonLastAdmin)
	}
	return allow()
}

// CanEditExpense permits the expense's payer or a group admin.
func CanEditExpense(g *models.Group, e *models.GroupExpense, caller string) Decision {
	if e.PaidBy == caller || g.IsAdmin(caller) {
		return allow()
	}
	return deny(ReasonNotOwnerOrAdmin)
}

// CanDeleteExpense follows the same rule as editing.
func CanDeleteExpense(g *models.Group, e *models.GroupExpense, caller string) Decision {
	return CanEditExpense(g, e, caller)
}

// CanSettleSplit permits the split's own user, the expense creator, or a
// group admin to mark the split paid.
func CanSettleSplit(g *models.Group, e *models.GroupExpense, caller, splitUser string) Decision {
	if caller == splitUser || e.PaidBy == caller || g.IsAdmin(caller) {
		return allow()
	}
	return deny(ReasonNotSplitUserOrAdmin)
}

// CanSendReminder permits the expense creator or a group admin to nudge a
// member about a pending split.
func CanSendReminder(g *models.Group, e *models.GroupExpense, caller string) Decision {
	if e.PaidBy == caller || g.IsAdmin(caller) {
		return allow()
	}
	return deny(ReasonNotOwnerOrAdmin)
}
