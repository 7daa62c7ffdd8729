package storage

import (
	"sync"

	"github.com/fintrack/groupledger/internal/models"
)

// ExpenseHub fans expense-list snapshots out to per-group subscribers.
// Both store implementations embed one to back SubscribeExpenses.
//
// Subscriber channels are buffered with capacity one and coalesce: if a
// subscriber is slow, a newer snapshot replaces the undelivered one rather
// than blocking the writer. Consumers always observe snapshots in delivery
// order and eventually observe the latest.
type ExpenseHub struct {
	mu   sync.Mutex
	subs map[string]map[uint64]chan []*models.GroupExpense
	next uint64
}

// NewExpenseHub creates an empty hub.
func NewExpenseHub() *ExpenseHub {
	return &ExpenseHub{subs: make(map[string]map[uint64]chan []*models.GroupExpense)}
}

// Subscribe registers a snapshot channel for groupID. The returned
// CancelFunc closes the channel and is idempotent.
func (h *ExpenseHub) Subscribe(groupID string) (<-chan []*models.GroupExpense, CancelFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan []*models.GroupExpense, 1)
	id := h.next
	h.next++
	if h.subs[groupID] == nil {
		h.subs[groupID] = make(map[uint64]chan []*models.GroupExpense)
	}
	h.subs[groupID][id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if group, ok := h.subs[groupID]; ok {
				delete(group, id)
				if len(group) == 0 {
					delete(h.subs, groupID)
				}
			}
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers snapshot to every subscriber of groupID.
func (h *ExpenseHub) Publish(groupID string, snapshot []*models.GroupExpense) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs[groupID] {
		// Coalesce: drop an undelivered snapshot in favor of the new one.
		select {
		case <-ch:
		default:
		}
		ch <- snapshot
	}
}

// Push delivers snapshot to a single subscriber channel outside of Publish,
// used for the initial snapshot right after Subscribe.
func (h *ExpenseHub) Push(ch <-chan []*models.GroupExpense, groupID string, snapshot []*models.GroupExpense) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, sub := range h.subs[groupID] {
		if sub == ch {
			select {
			case <-sub:
			default:
			}
			sub <- snapshot
			return
		}
	}
}
