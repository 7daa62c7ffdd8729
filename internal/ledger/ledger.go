// Package ledger recomputes per-member balances from a group's expense
// history. The engine is pure: given the same expense list it always
// produces the same mapping, and nothing here is ever persisted.
package ledger

import (
	"sort"

	"github.com/fintrack/groupledger/internal/models"
)

// MemberBalance is one member's aggregate position across a group.
type MemberBalance struct {
	UserID    string `json:"userId"`
	Net       int64  `json:"net"`       // positive = owed to the user, negative = user owes
	TotalPaid int64  `json:"totalPaid"` // amounts fronted across all expenses
	TotalOwed int64  `json:"totalOwed"` // sum of the user's split shares
}

// DebtEdge is a suggested payment from one member to another.
type DebtEdge struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount int64  `json:"amount"`
}

// ComputeBalances maps each user to their signed net balance over the full
// expense list. Every split counts against its ower regardless of payment
// status: this is the total-obligation view, where settling a split changes
// its status but never anyone's balance.
//
// For every expense that satisfies the split-sum invariant the contribution
// is amount - sum(splits) == 0, so the values always sum to zero.
func ComputeBalances(expenses []*models.GroupExpense) map[string]int64 {
	balances := make(map[string]int64)
	for _, e := range expenses {
		balances[e.PaidBy] += e.Amount
		for _, s := range e.SplitBetween {
			balances[s.UserID] -= s.Amount
		}
	}
	return balances
}

// ComputeSettledBalances is the cash view: only paid splits count against
// their ower. A payer is credited per split as it is settled, so the values
// again sum to zero over any expense history.
func ComputeSettledBalances(expenses []*models.GroupExpense) map[string]int64 {
	balances := make(map[string]int64)
	for _, e := range expenses {
		for _, s := range e.SplitBetween {
			if s.Status != models.SplitPaid {
				continue
			}
			balances[e.PaidBy] += s.Amount
			balances[s.UserID] -= s.Amount
		}
	}
	return balances
}

// Summarize expands a balance mapping into per-member paid/owed totals.
func Summarize(expenses []*models.GroupExpense) []MemberBalance {
	totals := make(map[string]*MemberBalance)
	member := func(userID string) *MemberBalance {
		if b, ok := totals[userID]; ok {
			return b
		}
		b := &MemberBalance{UserID: userID}
		totals[userID] = b
		return b
	}

	for _, e := range expenses {
		member(e.PaidBy).TotalPaid += e.Amount
		for _, s := range e.SplitBetween {
			member(s.UserID).TotalOwed += s.Amount
		}
	}

	out := make([]MemberBalance, 0, len(totals))
	for _, b := range totals {
		b.Net = b.TotalPaid - b.TotalOwed
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

// SimplifyDebts derives a minimal who-pays-whom edge list from a net balance
// mapping using greedy matching: the largest debtor repeatedly pays the
// largest creditor. The result is deterministic; ties break on user ID.
func SimplifyDebts(balances map[string]int64) []DebtEdge {
	type position struct {
		userID string
		amount int64
	}

	var debtors, creditors []position
	for userID, net := range balances {
		switch {
		case net < 0:
			debtors = append(debtors, position{userID, -net})
		case net > 0:
			creditors = append(creditors, position{userID, net})
		}
	}

	byAmount := func(ps []position) {
		sort.Slice(ps, func(i, j int) bool {
			if ps[i].amount != ps[j].amount {
				return ps[i].amount > ps[j].amount
			}
			return ps[i].userID < ps[j].userID
		})
	}
	byAmount(debtors)
	byAmount(creditors)

	var edges []DebtEdge
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := debtors[i].amount
		if creditors[j].amount < amount {
			amount = creditors[j].amount
		}
		if amount > 0 {
			edges = append(edges, DebtEdge{
				From:   debtors[i].userID,
				To:     creditors[j].userID,
				Amount: amount,
			})
		}
		debtors[i].amount -= amount
		creditors[j].amount -= amount
		if debtors[i].amount == 0 {
			i++
		}
		if creditors[j].amount == 0 {
			j++
		}
	}
	return edges
}
