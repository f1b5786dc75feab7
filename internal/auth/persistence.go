package auth

import (
	"context"
	"fmt"
)

func (a *Authenticator) insertUser(ctx context.Context, displayName string) (int, error) {
	var userID int
	stmt := `INSERT INTO users (display_name) VALUES (?) RETURNING id`
	if err := a.database.ReadWrite.QueryRowContext(ctx, stmt, displayName).Scan(&userID); err != nil {
		return 0, fmt.Errorf("db insert user %s: %w", displayName, err)
	}
	return userID, nil
}

func (a *Authenticator) userExists(ctx context.Context, userID int) (bool, error) {
	var exists bool
	stmt := `SELECT EXISTS (SELECT 1 FROM users WHERE id = ?)`
	if err := a.database.ReadOnly.QueryRowContext(ctx, stmt, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("query user %d: %w", userID, err)
	}
	return exists, nil
}

func (a *Authenticator) deleteUser(ctx context.Context, userID int) error {
	if _, err := a.database.ReadWrite.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, userID); err != nil {
		return fmt.Errorf("db delete user %d: %w", userID, err)
	}
	return nil
}
