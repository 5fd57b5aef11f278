package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/kakeibo/internal/model"
)

// PostgresExpenseRepo はPostgreSQLを使用した支出の読み取りリポジトリ。
type PostgresExpenseRepo struct {
	db *sql.DB
}

// NewPostgresExpenseRepo はPostgresExpenseRepoを生成する。
func NewPostgresExpenseRepo(db *sql.DB) *PostgresExpenseRepo {
	return &PostgresExpenseRepo{db: db}
}

// ListByUserID はユーザーの全支出をカテゴリ名付きでexpense_date降順に返す。
// 同一日時の支出はidで順序を固定する。
func (r *PostgresExpenseRepo) ListByUserID(ctx context.Context, userID string) ([]model.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT e.id, e.user_id, e.category_id, c.name, e.amount, e.expense_date,
		        COALESCE(e.description, ''), e.is_recurring
		 FROM expenses e
		 JOIN categories c ON c.id = e.category_id
		 WHERE e.user_id = $1
		 ORDER BY e.expense_date DESC, e.id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []model.Expense
	for rows.Next() {
		var e model.Expense
		if err := rows.Scan(
			&e.ID, &e.UserID, &e.CategoryID, &e.CategoryName, &e.Amount, &e.ExpenseDate,
			&e.Description, &e.IsRecurring,
		); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	return expenses, nil
}

// compile-time interface check
var _ ExpenseRepository = (*PostgresExpenseRepo)(nil)
