package ledger

import (
	"testing"

	"github.com/fintrack/groupledger/internal/models"
)

func paid() models.SplitStatus    { return models.SplitPaid }
func pending() models.SplitStatus { return models.SplitPending }

func expense(paidBy string, amount int64, splits ...models.SplitDetail) *models.GroupExpense {
	return &models.GroupExpense{
		PaidBy:       paidBy,
		Amount:       amount,
		SplitBetween: splits,
	}
}

func splitLine(userID string, amount int64, status models.SplitStatus) models.SplitDetail {
	return models.SplitDetail{UserID: userID, Amount: amount, Status: status}
}

func TestComputeBalances(t *testing.T) {
	tests := []struct {
		name     string
		expenses []*models.GroupExpense
		want     map[string]int64
	}{
		{
			name:     "no expenses",
			expenses: nil,
			want:     map[string]int64{},
		},
		{
			name: "single expense split three ways",
			expenses: []*models.GroupExpense{
				expense("alice", 300000,
					splitLine("alice", 100000, pending()),
					splitLine("bob", 100000, pending()),
					splitLine("carol", 100000, pending()),
				),
			},
			want: map[string]int64{"alice": 200000, "bob": -100000, "carol": -100000},
		},
		{
			name: "settlement does not move balances",
			expenses: []*models.GroupExpense{
				expense("alice", 300000,
					splitLine("alice", 100000, paid()),
					splitLine("bob", 100000, paid()),
					splitLine("carol", 100000, pending()),
				),
			},
			want: map[string]int64{"alice": 200000, "bob": -100000, "carol": -100000},
		},
		{
			name: "offsetting expenses cancel out",
			expenses: []*models.GroupExpense{
				expense("alice", 10000,
					splitLine("alice", 5000, pending()),
					splitLine("bob", 5000, pending()),
				),
				expense("bob", 10000,
					splitLine("alice", 5000, pending()),
					splitLine("bob", 5000, pending()),
				),
			},
			want: map[string]int64{"alice": 0, "bob": 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeBalances(tt.expenses)
			if len(got) != len(tt.want) {
				t.Fatalf("ComputeBalances returned %d entries, want %d: %v", len(got), len(tt.want), got)
			}
			var sum int64
			for userID, want := range tt.want {
				if got[userID] != want {
					t.Errorf("balance[%s] = %d, want %d", userID, got[userID], want)
				}
				sum += got[userID]
			}
			if sum != 0 {
				t.Errorf("balances sum to %d, want 0", sum)
			}
		})
	}
}

func TestComputeSettledBalances(t *testing.T) {
	expenses := []*models.GroupExpense{
		expense("alice", 300000,
			splitLine("alice", 100000, paid()),
			splitLine("bob", 100000, paid()),
			splitLine("carol", 100000, pending()),
		),
	}

	got := ComputeSettledBalances(expenses)

	// Only paid splits count: alice settled her own share (net zero for her
	// split) and bob paid his back.
	want := map[string]int64{"alice": 100000, "bob": -100000}
	for userID, amount := range want {
		if got[userID] != amount {
			t.Errorf("settled[%s] = %d, want %d", userID, got[userID], amount)
		}
	}
	if got["carol"] != 0 {
		t.Errorf("settled[carol] = %d, want 0 while pending", got["carol"])
	}

	var sum int64
	for _, v := range got {
		sum += v
	}
	if sum != 0 {
		t.Errorf("settled balances sum to %d, want 0", sum)
	}
}

func TestSummarize(t *testing.T) {
	expenses := []*models.GroupExpense{
		expense("alice", 300000,
			splitLine("alice", 100000, pending()),
			splitLine("bob", 100000, pending()),
			splitLine("carol", 100000, pending()),
		),
		expense("bob", 60000,
			splitLine("alice", 30000, pending()),
			splitLine("bob", 30000, pending()),
		),
	}

	got := Summarize(expenses)
	if len(got) != 3 {
		t.Fatalf("Summarize returned %d members, want 3", len(got))
	}

	// Sorted by user ID.
	if got[0].UserID != "alice" || got[1].UserID != "bob" || got[2].UserID != "carol" {
		t.Fatalf("unexpected order: %v", got)
	}

	alice := got[0]
	if alice.TotalPaid != 300000 || alice.TotalOwed != 130000 || alice.Net != 170000 {
		t.Errorf("alice = %+v, want paid=300000 owed=130000 net=170000", alice)
	}
	bob := got[1]
	if bob.TotalPaid != 60000 || bob.TotalOwed != 130000 || bob.Net != -70000 {
		t.Errorf("bob = %+v, want paid=60000 owed=130000 net=-70000", bob)
	}
}

func TestSimplifyDebts(t *testing.T) {
	tests := []struct {
		name     string
		balances map[string]int64
		want     []DebtEdge
	}{
		{
			name:     "all settled",
			balances: map[string]int64{"alice": 0, "bob": 0},
			want:     nil,
		},
		{
			name:     "single debtor single creditor",
			balances: map[string]int64{"alice": 200000, "bob": -100000, "carol": -100000},
			want: []DebtEdge{
				{From: "bob", To: "alice", Amount: 100000},
				{From: "carol", To: "alice", Amount: 100000},
			},
		},
		{
			name:     "largest debtor pays largest creditor first",
			balances: map[string]int64{"alice": 50000, "bob": 30000, "carol": -60000, "dave": -20000},
			want: []DebtEdge{
				{From: "carol", To: "alice", Amount: 50000},
				{From: "carol", To: "bob", Amount: 10000},
				{From: "dave", To: "bob", Amount: 20000},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SimplifyDebts(tt.balances)
			if len(got) != len(tt.want) {
				t.Fatalf("SimplifyDebts returned %d edges, want %d: %v", len(got), len(tt.want), got)
			}
			for i, edge := range tt.want {
				if got[i] != edge {
					t.Errorf("edge[%d] = %+v, want %+v", i, got[i], edge)
				}
			}
		})
	}
}

func TestSimplifyDebtsDeterministic(t *testing.T) {
	balances := map[string]int64{"a": -10000, "b": -10000, "c": 10000, "d": 10000}

	first := SimplifyDebts(balances)
	for i := 0; i < 10; i++ {
		again := SimplifyDebts(balances)
		if len(again) != len(first) {
			t.Fatalf("edge count changed between runs: %d vs %d", len(again), len(first))
		}
		for j := range first {
			if again[j] != first[j] {
				t.Fatalf("run %d edge %d = %+v, first run had %+v", i, j, again[j], first[j])
			}
		}
	}
}
