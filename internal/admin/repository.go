// internal/admin/repository.go
//
// Query helpers for administrator accounts.
//
// Thin parameterised queries against the process-wide pool; the login
// handler wraps ByUsername, and cmd/bootstrap uses Create.  There is no
// in-band path that mutates accounts beyond creation.
package admin

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when no account matches the username.
var ErrNotFound = errors.New("admin: account not found")

// ErrExists is returned when Create hits the unique username index.
var ErrExists = errors.New("admin: username already taken")

// ByUsername fetches a single account.  The caller supplies a context so
// the lookup respects request deadlines.
func ByUsername(ctx context.Context, db *sqlx.DB, username string) (*Account, error) {
	const q = `
        SELECT id, username, password, created_at
        FROM   admin_account
        WHERE  username = ?
        LIMIT  1`
	var acc Account
	if err := db.GetContext(ctx, &acc, q, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &acc, nil
}

// Create inserts a new account with an already-encoded password record.
func Create(ctx context.Context, db *sqlx.DB, username, encodedPassword string) error {
	const q = `
        INSERT INTO admin_account (username, password, created_at)
        VALUES (?, ?, NOW())`
	if _, err := db.ExecContext(ctx, q, username, encodedPassword); err != nil {
		var my *mysql.MySQLError
		if errors.As(err, &my) && my.Number == 1062 { // duplicate key
			return ErrExists
		}
		return err
	}
	return nil
}
