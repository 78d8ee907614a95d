package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/apetrov/orderflow/internal/db"
	"github.com/apetrov/orderflow/internal/domain"
)

// SQLiteDirectoryRepo implements DirectoryRepo over the users table,
// falling back to the approval trail itself when a name is not in the
// directory but has already appeared on a step.
type SQLiteDirectoryRepo struct {
	db db.DBTX
}

// NewSQLiteDirectoryRepo creates a new SQLiteDirectoryRepo.
func NewSQLiteDirectoryRepo(dbtx db.DBTX) *SQLiteDirectoryRepo {
	return &SQLiteDirectoryRepo{db: dbtx}
}

func (r *SQLiteDirectoryRepo) RoleOf(ctx context.Context, name string) (domain.Role, error) {
	var roleStr string
	err := r.db.QueryRowContext(ctx,
		`SELECT role FROM users WHERE name = ?`, name).Scan(&roleStr)
	if err == nil {
		return domain.Role(roleStr), nil
	}
	if err != sql.ErrNoRows {
		return "", fmt.Errorf("reading user role: %w", err)
	}

	// Fall back to the trail: a name that has received or sent a step
	// already carries a role there.
	err = r.db.QueryRowContext(ctx,
		`SELECT recipient_role FROM approval_steps WHERE recipient_name = ?
			UNION
		SELECT sender_role FROM approval_steps WHERE sender_name = ? AND sender_role != ''
			LIMIT 1`, name, name).Scan(&roleStr)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("role of %q: %w", name, ErrNotFound)
		}
		return "", fmt.Errorf("reading role from trail: %w", err)
	}
	return domain.Role(roleStr), nil
}

func (r *SQLiteDirectoryRepo) DefaultAssignee(ctx context.Context, role domain.Role) (string, error) {
	var name string
	err := r.db.QueryRowContext(ctx,
		`SELECT name FROM users WHERE role = ?
			ORDER BY is_default DESC, name LIMIT 1`, string(role)).Scan(&name)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("default assignee for %s: %w", role, ErrNotFound)
		}
		return "", fmt.Errorf("reading default assignee: %w", err)
	}
	return name, nil
}

func (r *SQLiteDirectoryRepo) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, role, is_default FROM users ORDER BY role, name`)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		var roleStr string
		var defaultInt int
		if err := rows.Scan(&u.Name, &roleStr, &defaultInt); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		u.Role = domain.Role(roleStr)
		u.IsDefault = intToBool(defaultInt)
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating users: %w", err)
	}
	return users, nil
}

func (r *SQLiteDirectoryRepo) Upsert(ctx context.Context, name string, role domain.Role, isDefault bool) error {
	if !domain.ValidRoles[string(role)] {
		return fmt.Errorf("unknown role %q", role)
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (name, role, is_default) VALUES (?, ?, ?)
			ON CONFLICT(name) DO UPDATE SET role = excluded.role, is_default = excluded.is_default`,
		name, string(role), boolToInt(isDefault),
	)
	if err != nil {
		return fmt.Errorf("upserting user: %w", err)
	}
	// Only one default per role.
	if isDefault {
		if _, err := r.db.ExecContext(ctx,
			`UPDATE users SET is_default = 0 WHERE role = ? AND name != ?`,
			string(role), name); err != nil {
			return fmt.Errorf("clearing previous default: %w", err)
		}
	}
	return nil
}
