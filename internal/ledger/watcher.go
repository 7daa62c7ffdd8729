package ledger

import (
	"context"
	"log/slog"
	"sync"

	"github.com/fintrack/groupledger/internal/models"
	"github.com/fintrack/groupledger/internal/storage"
)

// Watcher keeps a group's balance mapping current by recomputing it from
// every expense snapshot the store delivers, in delivery order. It owns the
// underlying subscription and releases it on Stop or context cancellation,
// never leaking the recompute goroutine.
type Watcher struct {
	groupID string
	cancel  storage.CancelFunc
	done    chan struct{}

	mu       sync.RWMutex
	balances map[string]int64
	settled  map[string]int64
}

// Watch subscribes to a group's expenses and starts recomputing balances.
// Callers must call Stop when the consuming view goes away.
func Watch(ctx context.Context, store storage.Store, groupID string) (*Watcher, error) {
	snapshots, cancel, err := store.SubscribeExpenses(ctx, groupID)
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		groupID:  groupID,
		cancel:   cancel,
		done:     make(chan struct{}),
		balances: make(map[string]int64),
		settled:  make(map[string]int64),
	}
	go w.run(snapshots)
	return w, nil
}

func (w *Watcher) run(snapshots <-chan []*models.GroupExpense) {
	defer close(w.done)
	for snapshot := range snapshots {
		w.apply(snapshot)
	}
}

func (w *Watcher) apply(expenses []*models.GroupExpense) {
	balances := ComputeBalances(expenses)
	settled := ComputeSettledBalances(expenses)

	w.mu.Lock()
	w.balances = balances
	w.settled = settled
	w.mu.Unlock()

	slog.Debug("balances recomputed",
		"group_id", w.groupID,
		"expenses", len(expenses),
		"members", len(balances),
	)
}

// Balances returns a copy of the latest total-obligation balance mapping.
func (w *Watcher) Balances() map[string]int64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make(map[string]int64, len(w.balances))
	for k, v := range w.balances {
		out[k] = v
	}
	return out
}

// SettledBalances returns a copy of the latest cash-view balance mapping.
func (w *Watcher) SettledBalances() map[string]int64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make(map[string]int64, len(w.settled))
	for k, v := range w.settled {
		out[k] = v
	}
	return out
}

// Stop releases the subscription and waits for the recompute goroutine to
// drain. Safe to call more than once.
func (w *Watcher) Stop() {
	w.cancel()
	<-w.done
}
