package program

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "mysql"), mock
}

var programColumns = []string{
	"id", "title", "summary", "date", "time", "location", "organizer",
	"image", "type", "created_at", "updated_at",
}

func TestList_BuildsFilterClauses(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMySQLRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(
		"FROM program WHERE 1=1 AND type = ? AND MATCH(title) AGAINST (? IN NATURAL LANGUAGE MODE) AND date >= ? ORDER BY date ASC LIMIT ? OFFSET ?")).
		WithArgs("event", "fest", "2025-01-01", 20, 0).
		WillReturnRows(sqlmock.NewRows(programColumns).
			AddRow(3, "Sommerfest", "", "2025-07-12", nil, nil, nil, nil, "event", time.Now(), time.Now()))

	items, err := repo.List(context.Background(), ListFilter{Type: "event", Search: "Fest", DateFrom: "2025-01-01"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Sommerfest", items[0].Title)
	assert.Nil(t, items[0].Time)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMySQLRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM program WHERE id = ?")).
		WithArgs(uint64(99)).
		WillReturnRows(sqlmock.NewRows(programColumns))

	_, err := repo.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreate_ReturnsInsertID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMySQLRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(
		"INSERT INTO program (title, summary, date, time, location, organizer, image, type, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")).
		WillReturnResult(sqlmock.NewResult(7, 1))

	now := time.Now()
	id, err := repo.Create(context.Background(), &Program{
		Title: "Kurs", Date: "2025-09-01", Type: "program",
		CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(7), id)
}

func TestUpdate_PatchesOnlyProvidedFields(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMySQLRepository(db)

	title := "Herbstfest"
	loc := "Bürgerhaus"
	now := time.Now()

	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE program SET title = ?, location = ?, updated_at = ? WHERE id = ?")).
		WithArgs(title, loc, now, uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), 3, Patch{Title: &title, Location: &loc}, now)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_NoMatchIsNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMySQLRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE program SET updated_at = ? WHERE id = ?")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), 99, Patch{}, time.Now())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMySQLRepository(db)

	q := regexp.QuoteMeta("DELETE FROM program WHERE id = ?")

	mock.ExpectExec(q).WithArgs(uint64(3)).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), 3))

	mock.ExpectExec(q).WithArgs(uint64(99)).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), 99), ErrNotFound)
}
