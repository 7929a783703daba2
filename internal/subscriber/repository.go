// internal/subscriber/repository.go
//
// Persistence for newsletter subscriptions.
//
// Context
// -------
// Subscribe is an upsert keyed by the unique email index: a new address
// inserts the full record, a known address refreshes only the token
// columns.  Concurrent duplicate subscriptions therefore resolve to "one
// winner, the other refreshes the token" without any in-process lock.
// Confirmation is a single UPDATE matching the token, which both sets the
// flag and clears the token columns; a consumed token can never match
// again.
package subscriber

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

// ErrTokenNotFound is returned when a confirmation token matches no
// unconfirmed row: unknown, mistyped, or already consumed.
var ErrTokenNotFound = errors.New("subscriber: confirmation token not found")

// Repository is the storage capability the service consumes.
type Repository interface {
	Upsert(ctx context.Context, sub *Subscription, token string, issuedAt time.Time) error
	ConfirmByToken(ctx context.Context, token string) error
	List(ctx context.Context, f Filter) (items []Subscription, total int, err error)
	ConfirmedEmails(ctx context.Context) ([]string, error)
}

// MySQLRepository implements Repository on the process-wide pool.
type MySQLRepository struct {
	db *sqlx.DB
}

var _ Repository = (*MySQLRepository)(nil)

// NewMySQLRepository wraps db.
func NewMySQLRepository(db *sqlx.DB) *MySQLRepository {
	return &MySQLRepository{db: db}
}

// Upsert inserts sub or, when the email already exists, refreshes only
// the token columns.  Original subscription metadata survives.
func (r *MySQLRepository) Upsert(ctx context.Context, sub *Subscription, token string, issuedAt time.Time) error {
	const q = `
        INSERT INTO newsletter_subscription
            (email, name, subscribed_at, date, hour, weekday, confirmed,
             confirm_token, confirm_token_created_at)
        VALUES (?, ?, ?, ?, ?, ?, FALSE, ?, ?)
        ON DUPLICATE KEY UPDATE
            confirm_token            = VALUES(confirm_token),
            confirm_token_created_at = VALUES(confirm_token_created_at)`
	_, err := r.db.ExecContext(ctx, q,
		sub.Email, sub.Name, sub.SubscribedAt, sub.Date, sub.Hour, sub.Weekday,
		token, issuedAt)
	return err
}

// ConfirmByToken flips confirmed and clears both token columns in one
// statement, so no partial state is observable.
func (r *MySQLRepository) ConfirmByToken(ctx context.Context, token string) error {
	const q = `
        UPDATE newsletter_subscription
        SET    confirmed = TRUE,
               confirm_token = NULL,
               confirm_token_created_at = NULL
        WHERE  confirm_token = ?`
	res, err := r.db.ExecContext(ctx, q, token)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTokenNotFound
	}
	return nil
}

// List returns one page plus the unpaginated total.  The projection never
// includes the token columns.
func (r *MySQLRepository) List(ctx context.Context, f Filter) ([]Subscription, int, error) {
	f.Normalize()

	where := "WHERE 1=1"
	args := make([]any, 0, 5)
	if f.Confirmed != nil {
		where += " AND confirmed = ?"
		args = append(args, *f.Confirmed)
	}
	if f.Search != "" {
		where += " AND LOWER(email) LIKE ?"
		args = append(args, "%"+strings.ToLower(f.Search)+"%")
	}
	if f.DateFrom != "" {
		where += " AND date >= ?"
		args = append(args, f.DateFrom)
	}
	if f.DateTo != "" {
		where += " AND date <= ?"
		args = append(args, f.DateTo)
	}

	var total int
	countQ := "SELECT COUNT(*) FROM newsletter_subscription " + where
	if err := r.db.GetContext(ctx, &total, countQ, args...); err != nil {
		return nil, 0, fmt.Errorf("subscriber: count: %w", err)
	}

	listQ := `SELECT id, email, name, subscribed_at, date, hour, weekday, confirmed
              FROM newsletter_subscription ` + where + `
              ORDER BY subscribed_at DESC
              LIMIT ? OFFSET ?`
	args = append(args, f.Limit, (f.Page-1)*f.Limit)

	items := make([]Subscription, 0, f.Limit)
	if err := r.db.SelectContext(ctx, &items, listQ, args...); err != nil {
		return nil, 0, fmt.Errorf("subscriber: list: %w", err)
	}
	return items, total, nil
}

// ConfirmedEmails returns every address eligible for a broadcast.
func (r *MySQLRepository) ConfirmedEmails(ctx context.Context) ([]string, error) {
	var emails []string
	const q = `SELECT email FROM newsletter_subscription WHERE confirmed = TRUE`
	if err := r.db.SelectContext(ctx, &emails, q); err != nil {
		return nil, err
	}
	return emails, nil
}
