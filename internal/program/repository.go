// internal/program/repository.go
//
// Persistence for program and event entries.
//
// Notes
// -----
// Text search rides the FULLTEXT index on title.  Update always rewrites
// updated_at with a fresh timestamp, so a matched row is always a changed
// row and RowsAffected distinguishes "not found" reliably even without
// CLIENT_FOUND_ROWS.
package program

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when an id matches no row.
var ErrNotFound = errors.New("program: not found")

// Repository is the storage capability the service consumes.
type Repository interface {
	List(ctx context.Context, f ListFilter) ([]Program, error)
	GetByID(ctx context.Context, id uint64) (*Program, error)
	Create(ctx context.Context, p *Program) (uint64, error)
	Update(ctx context.Context, id uint64, patch Patch, now time.Time) error
	Delete(ctx context.Context, id uint64) error
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

const listColumns = "id, title, summary, date, time, location, organizer, image, type, created_at, updated_at"

// List returns one page ordered by date ascending.
func (r *MySQLRepository) List(ctx context.Context, f ListFilter) ([]Program, error) {
	f.Normalize()

	where := "WHERE 1=1"
	args := make([]any, 0, 6)
	if f.Type != "" {
		where += " AND type = ?"
		args = append(args, f.Type)
	}
	if f.Search != "" {
		where += " AND MATCH(title) AGAINST (? IN NATURAL LANGUAGE MODE)"
		args = append(args, f.Search)
	}
	if f.DateFrom != "" {
		where += " AND date >= ?"
		args = append(args, f.DateFrom)
	}
	if f.DateTo != "" {
		where += " AND date <= ?"
		args = append(args, f.DateTo)
	}

	q := "SELECT " + listColumns + " FROM program " + where +
		" ORDER BY date ASC LIMIT ? OFFSET ?"
	args = append(args, f.Limit, (f.Page-1)*f.Limit)

	items := make([]Program, 0, f.Limit)
	if err := r.db.SelectContext(ctx, &items, q, args...); err != nil {
		return nil, fmt.Errorf("program: list: %w", err)
	}
	return items, nil
}

// GetByID fetches one row or ErrNotFound.
func (r *MySQLRepository) GetByID(ctx context.Context, id uint64) (*Program, error) {
	var p Program
	q := "SELECT " + listColumns + " FROM program WHERE id = ?"
	if err := r.db.GetContext(ctx, &p, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("program: get: %w", err)
	}
	return &p, nil
}

// Create inserts p and returns the new id.
func (r *MySQLRepository) Create(ctx context.Context, p *Program) (uint64, error) {
	const q = `
        INSERT INTO program
            (title, summary, date, time, location, organizer, image, type,
             created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		p.Title, p.Summary, p.Date, p.Time, p.Location, p.Organizer, p.Image,
		p.Type, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return 0, fmt.Errorf("program: create: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Update applies the non-nil patch fields and refreshes updated_at.
func (r *MySQLRepository) Update(ctx context.Context, id uint64, patch Patch, now time.Time) error {
	set := make([]string, 0, 9)
	args := make([]any, 0, 10)
	add := func(col string, v any) {
		set = append(set, col+" = ?")
		args = append(args, v)
	}
	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Summary != nil {
		add("summary", *patch.Summary)
	}
	if patch.Date != nil {
		add("date", *patch.Date)
	}
	if patch.Time != nil {
		add("time", *patch.Time)
	}
	if patch.Location != nil {
		add("location", *patch.Location)
	}
	if patch.Organizer != nil {
		add("organizer", *patch.Organizer)
	}
	if patch.Type != nil {
		add("type", *patch.Type)
	}
	if patch.Image != nil {
		add("image", *patch.Image)
	}
	add("updated_at", now)

	q := "UPDATE program SET "
	for i, s := range set {
		if i > 0 {
			q += ", "
		}
		q += s
	}
	q += " WHERE id = ?"
	args = append(args, id)

	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("program: update: %w", err)
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

// Delete removes one row or returns ErrNotFound.
func (r *MySQLRepository) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM program WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("program: delete: %w", err)
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
