package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mdc-cast/expense-approval/internal/models"
)

const expenseColumns = `uid, user_uid, user_id_number, user_email, user_full_name,
			      expense_date, item_name, amount::float8, year_level, description,
			      created_at, status`

// CreateExpense вставляет новую запись расхода.
func (s *Storage) CreateExpense(ctx context.Context, expense models.Expense) error {
	const op = "storage.CreateExpense"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO expenses (uid, user_uid, user_id_number, user_email,
			      user_full_name, expense_date, item_name, amount, year_level,
			      description, created_at, status)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	if _, err := s.DB.ExecContext(ctx, query,
		expense.UID, expense.UserUID, expense.UserIDNumber, expense.UserEmail,
		expense.UserFullName, expense.Date, expense.ItemName, expense.Amount,
		expense.YearLevel, expense.Description, expense.CreatedAt, expense.Status); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ReadExpense возвращает расход по UID или ErrNotFound.
func (s *Storage) ReadExpense(ctx context.Context, uid string) (*models.Expense, error) {
	const op = "storage.ReadExpense"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE uid = $1`
	e := &models.Expense{}
	row := s.DB.QueryRowContext(ctx, query, uid)
	if err := row.Scan(&e.UID, &e.UserUID, &e.UserIDNumber, &e.UserEmail,
		&e.UserFullName, &e.Date, &e.ItemName, &e.Amount, &e.YearLevel,
		&e.Description, &e.CreatedAt, &e.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return e, nil
}

// UpdateExpense обновляет редактируемые поля расхода по UID.
// Снимок владельца, статус и время создания не меняются.
func (s *Storage) UpdateExpense(ctx context.Context, expense models.Expense, uid string) (int, error) {
	const op = "storage.UpdateExpense"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE expenses
			  SET expense_date = $1, item_name = $2, amount = $3,
			      year_level = $4, description = $5
			  WHERE uid = $6`
	result, err := s.DB.ExecContext(ctx, query,
		expense.Date, expense.ItemName, expense.Amount, expense.YearLevel,
		expense.Description, uid)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// DeleteExpense удаляет расход по UID и возвращает количество удалённых строк.
func (s *Storage) DeleteExpense(ctx context.Context, uid string) (int, error) {
	const op = "storage.DeleteExpense"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM expenses WHERE uid = $1`
	result, err := s.DB.ExecContext(ctx, query, uid)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// SetExpenseStatus переводит расход из pending в заданный статус.
// Условие status = 'pending' делает переход односторонним: повторное
// решение по одобренной или отклонённой записи не затрагивает строк.
func (s *Storage) SetExpenseStatus(ctx context.Context, uid, status string) (int, error) {
	const op = "storage.SetExpenseStatus"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE expenses SET status = $1 WHERE uid = $2 AND status = $3`
	result, err := s.DB.ExecContext(ctx, query, status, uid, models.ExpenseStatusPending)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ListOwnApproved возвращает одобренные расходы владельца.
func (s *Storage) ListOwnApproved(ctx context.Context, userUID string) ([]*models.Expense, error) {
	const op = "storage.ListOwnApproved"
	query := `SELECT ` + expenseColumns + `
			  FROM expenses
			  WHERE user_uid = $1 AND status = $2
			  ORDER BY created_at DESC`
	return s.listExpenses(ctx, op, query, userUID, models.ExpenseStatusApproved)
}

// ListAllApproved возвращает все одобренные расходы системы.
func (s *Storage) ListAllApproved(ctx context.Context) ([]*models.Expense, error) {
	const op = "storage.ListAllApproved"
	query := `SELECT ` + expenseColumns + `
			  FROM expenses
			  WHERE status = $1
			  ORDER BY created_at DESC`
	return s.listExpenses(ctx, op, query, models.ExpenseStatusApproved)
}

// ListPending возвращает все записи, ожидающие решения администратора.
func (s *Storage) ListPending(ctx context.Context) ([]*models.Expense, error) {
	const op = "storage.ListPending"
	query := `SELECT ` + expenseColumns + `
			  FROM expenses
			  WHERE status = $1
			  ORDER BY created_at DESC`
	return s.listExpenses(ctx, op, query, models.ExpenseStatusPending)
}

// ListByOwner возвращает все расходы владельца независимо от статуса.
func (s *Storage) ListByOwner(ctx context.Context, userUID string) ([]*models.Expense, error) {
	const op = "storage.ListByOwner"
	query := `SELECT ` + expenseColumns + `
			  FROM expenses
			  WHERE user_uid = $1
			  ORDER BY created_at DESC`
	return s.listExpenses(ctx, op, query, userUID)
}

func (s *Storage) listExpenses(ctx context.Context, op, query string, args ...any) ([]*models.Expense, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var result []*models.Expense
	for rows.Next() {
		var e models.Expense
		if err = rows.Scan(&e.UID, &e.UserUID, &e.UserIDNumber, &e.UserEmail,
			&e.UserFullName, &e.Date, &e.ItemName, &e.Amount, &e.YearLevel,
			&e.Description, &e.CreatedAt, &e.Status); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// SummarizeApproved агрегирует одобренные расходы владельца, начиная c
// заданной даты. Пустой userUID агрегирует по всем владельцам.
func (s *Storage) SummarizeApproved(ctx context.Context, userUID string, since time.Time) (*models.ExpenseSummary, error) {
	const op = "storage.SummarizeApproved"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT year_level, COUNT(*), COALESCE(SUM(amount), 0)::float8
			  FROM expenses
			  WHERE status = $1
			    AND ($2 = '' OR user_uid::text = $2)
			    AND expense_date >= $3
			  GROUP BY year_level`
	rows, err := s.DB.QueryContext(ctx, query, models.ExpenseStatusApproved, userUID, since)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	summary := &models.ExpenseSummary{ByYear: make(map[string]float64)}
	for rows.Next() {
		var yearLevel string
		var count int
		var sum float64
		if err = rows.Scan(&yearLevel, &count, &sum); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		summary.ByYear[yearLevel] = sum
		summary.Count += count
		summary.Total += sum
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return summary, nil
}
