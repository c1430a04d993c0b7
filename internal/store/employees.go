package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/multielectric/mesupply/internal/models"
)

const employeeColumns = `id, name, email, role, status, password_hash, last_login_at`

// EmployeeByEmail looks up a portal user for login.
func (s *Store) EmployeeByEmail(ctx context.Context, email string) (*models.Employee, error) {
	var e models.Employee
	err := s.db.QueryRowContext(ctx, `
		SELECT `+employeeColumns+` FROM employees WHERE email = $1`, email).Scan(
		&e.ID, &e.Name, &e.Email, &e.Role, &e.Status, &e.PasswordHash, &e.LastLoginAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	return &e, nil
}

func (s *Store) ListEmployees(ctx context.Context) ([]models.Employee, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+employeeColumns+` FROM employees ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var employees []models.Employee
	for rows.Next() {
		var e models.Employee
		if err := rows.Scan(&e.ID, &e.Name, &e.Email, &e.Role, &e.Status, &e.PasswordHash, &e.LastLoginAt); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

type EmployeeParams struct {
	Name         string
	Email        string
	Role         string
	Status       string
	PasswordHash string
}

func (s *Store) CreateEmployee(ctx context.Context, p EmployeeParams) (*models.Employee, error) {
	var e models.Employee
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO employees (name, email, role, status, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+employeeColumns,
		p.Name, p.Email, p.Role, p.Status, p.PasswordHash).Scan(
		&e.ID, &e.Name, &e.Email, &e.Role, &e.Status, &e.PasswordHash, &e.LastLoginAt)
	if err != nil {
		if isUniqueViolation(err, "") {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create employee: %w", err)
	}
	return &e, nil
}

// EnsureEmployee creates an employee if the email is free and returns
// without error when it is already taken. Used by the seed command to
// bootstrap the initial admin idempotently.
func (s *Store) EnsureEmployee(ctx context.Context, p EmployeeParams) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO employees (name, email, role, status, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO NOTHING`,
		p.Name, p.Email, p.Role, p.Status, p.PasswordHash)
	if err != nil {
		return fmt.Errorf("failed to ensure employee: %w", err)
	}
	return nil
}

type EmployeeUpdate struct {
	Name         *string
	Email        *string
	Role         *string
	Status       *string
	PasswordHash *string
}

func (s *Store) UpdateEmployee(ctx context.Context, id string, u EmployeeUpdate) (*models.Employee, error) {
	set := ""
	var args []any
	add := func(col string, v any) {
		args = append(args, v)
		if set != "" {
			set += ", "
		}
		set += fmt.Sprintf("%s = $%d", col, len(args))
	}
	if u.Name != nil {
		add("name", *u.Name)
	}
	if u.Email != nil {
		add("email", *u.Email)
	}
	if u.Role != nil {
		add("role", *u.Role)
	}
	if u.Status != nil {
		add("status", *u.Status)
	}
	if u.PasswordHash != nil {
		add("password_hash", *u.PasswordHash)
	}
	if set == "" {
		return nil, fmt.Errorf("no fields to update")
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE employees SET %s WHERE id = $%d RETURNING %s`, set, len(args), employeeColumns)

	var e models.Employee
	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&e.ID, &e.Name, &e.Email, &e.Role, &e.Status, &e.PasswordHash, &e.LastLoginAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		if isUniqueViolation(err, "") {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to update employee: %w", err)
	}
	return &e, nil
}

func (s *Store) DeleteEmployee(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// TouchEmployeeLogin records a successful login.
func (s *Store) TouchEmployeeLogin(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE employees SET last_login_at = now() WHERE id = $1`, id)
	return err
}
