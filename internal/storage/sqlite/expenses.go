package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fintrack/groupledger/internal/errs"
	"github.com/fintrack/groupledger/internal/models"
)

// CreateExpense persists a new expense and its split list.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.GroupExpense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if expense.CreatedAt == 0 {
		expense.CreatedAt = now
	}
	if expense.UpdatedAt == 0 {
		expense.UpdatedAt = now
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO group_expenses (id, group_id, description, amount, paid_by, category, date, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.GroupID, expense.Description, expense.Amount, expense.PaidBy,
		nullable(expense.Category), expense.Date, expense.CreatedAt, expense.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	if err := insertSplits(ctx, tx, expense); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.publishExpenses(ctx, expense.GroupID)
	return nil
}

// GetExpense retrieves an expense by ID, including its split list.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.GroupExpense, error) {
	expense := &models.GroupExpense{}
	var category sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, group_id, description, amount, paid_by, category, date, created_at, updated_at
		 FROM group_expenses WHERE id = ?`,
		expenseID,
	).Scan(&expense.ID, &expense.GroupID, &expense.Description, &expense.Amount, &expense.PaidBy,
		&category, &expense.Date, &expense.CreatedAt, &expense.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, errs.NotFound("sqlite.GetExpense", expenseID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	if category.Valid {
		expense.Category = category.String
	}

	if err := s.loadSplits(ctx, expense); err != nil {
		return nil, err
	}
	return expense, nil
}

// UpdateExpense overwrites the expense document and re-derives the whole
// split list, so a full edit behaves as expense recreation.
func (s *SQLiteStore) UpdateExpense(ctx context.Context, expense *models.GroupExpense) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE group_expenses SET description = ?, amount = ?, paid_by = ?, category = ?, date = ?, updated_at = ?
		 WHERE id = ?`,
		expense.Description, expense.Amount, expense.PaidBy, nullable(expense.Category),
		expense.Date, expense.UpdatedAt, expense.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return errs.NotFound("sqlite.UpdateExpense", expense.ID)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM expense_splits WHERE expense_id = ?", expense.ID); err != nil {
		return fmt.Errorf("failed to clear expense splits: %w", err)
	}
	if err := insertSplits(ctx, tx, expense); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.publishExpenses(ctx, expense.GroupID)
	return nil
}

// DeleteExpense removes an expense; splits cascade.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, expenseID string) error {
	var groupID string
	err := s.db.QueryRowContext(ctx,
		"SELECT group_id FROM group_expenses WHERE id = ?", expenseID,
	).Scan(&groupID)
	if err == sql.ErrNoRows {
		return errs.NotFound("sqlite.DeleteExpense", expenseID)
	}
	if err != nil {
		return fmt.Errorf("failed to check expense existence: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM group_expenses WHERE id = ?", expenseID); err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}

	s.publishExpenses(ctx, groupID)
	return nil
}

// ListExpensesByGroup retrieves all expenses for a group in creation order.
func (s *SQLiteStore) ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.GroupExpense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_id, description, amount, paid_by, category, date, created_at, updated_at
		 FROM group_expenses WHERE group_id = ? ORDER BY created_at, id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses by group: %w", err)
	}
	defer rows.Close()

	var expenses []*models.GroupExpense
	for rows.Next() {
		expense := &models.GroupExpense{}
		var category sql.NullString
		if err := rows.Scan(&expense.ID, &expense.GroupID, &expense.Description, &expense.Amount,
			&expense.PaidBy, &category, &expense.Date, &expense.CreatedAt, &expense.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		if category.Valid {
			expense.Category = category.String
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	for _, expense := range expenses {
		if err := s.loadSplits(ctx, expense); err != nil {
			return nil, err
		}
	}
	return expenses, nil
}

func (s *SQLiteStore) loadSplits(ctx context.Context, expense *models.GroupExpense) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, display_name, amount, status, paid_at
		 FROM expense_splits WHERE expense_id = ? ORDER BY position`,
		expense.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get expense splits: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sd models.SplitDetail
		var paidAt sql.NullInt64
		if err := rows.Scan(&sd.UserID, &sd.DisplayName, &sd.Amount, &sd.Status, &paidAt); err != nil {
			return fmt.Errorf("failed to scan expense split: %w", err)
		}
		if paidAt.Valid {
			v := paidAt.Int64
			sd.PaidAt = &v
		}
		expense.SplitBetween = append(expense.SplitBetween, sd)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate expense splits: %w", err)
	}
	return nil
}

func insertSplits(ctx context.Context, tx *sql.Tx, expense *models.GroupExpense) error {
	for i, sd := range expense.SplitBetween {
		var paidAt any
		if sd.PaidAt != nil {
			paidAt = *sd.PaidAt
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO expense_splits (expense_id, user_id, display_name, amount, status, paid_at, position)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			expense.ID, sd.UserID, sd.DisplayName, sd.Amount, string(sd.Status), paidAt, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense split: %w", err)
		}
	}
	return nil
}
