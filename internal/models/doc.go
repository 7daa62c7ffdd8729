// Package models defines the core domain records for the group ledger.
//
// The central aggregate is the Group: a shared-expense circle with a member
// roster and role assignments. Money movements are recorded as GroupExpense
// documents that reference the group by ID; each expense carries its own
// split list with per-member payment status. Balances are never stored --
// they are always recomputed from the expense history (see internal/ledger).
//
// Conventions:
//   - Amounts are int64 values in the smallest currency unit.
//   - Timestamps are Unix seconds.
//   - IDs are opaque strings assigned by the storage layer (UUID format).
//   - Relationships use ID strings rather than pointers to avoid circular
//     references between documents.
package models
