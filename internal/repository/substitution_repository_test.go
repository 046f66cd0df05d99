package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarihci20/okul-yonetim-api/internal/models"
)

func newSubstitutionRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestSubstitutionRepositoryListByDate(t *testing.T) {
	db, mock, cleanup := newSubstitutionRepoMock(t)
	defer cleanup()
	repo := NewSubstitutionRepository(db)

	date := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "absent_teacher_id", "substitute_teacher_id", "schedule_entry_id", "date", "created_at"}).
		AddRow(40, 1, 3, 10, date, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, absent_teacher_id, substitute_teacher_id, schedule_entry_id, date, created_at FROM substitution_assignments WHERE date = $1 ORDER BY id ASC")).
		WithArgs(date).
		WillReturnRows(rows)

	assignments, err := repo.ListByDate(context.Background(), date)
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	assert.Equal(t, int64(3), assignments[0].SubstituteTeacherID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubstitutionRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newSubstitutionRepoMock(t)
	defer cleanup()
	repo := NewSubstitutionRepository(db)

	date := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO substitution_assignments (absent_teacher_id, substitute_teacher_id, schedule_entry_id, date, created_at) VALUES ($1, $2, $3, $4, $5) RETURNING id")).
		WithArgs(int64(1), int64(3), int64(10), date, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(40))

	assignment := &models.SubstitutionAssignment{
		AbsentTeacherID:     1,
		SubstituteTeacherID: 3,
		ScheduleEntryID:     10,
		Date:                date,
	}
	require.NoError(t, repo.Create(context.Background(), assignment))
	assert.Equal(t, int64(40), assignment.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubstitutionRepositoryFindByDateAndEntryMissing(t *testing.T) {
	db, mock, cleanup := newSubstitutionRepoMock(t)
	defer cleanup()
	repo := NewSubstitutionRepository(db)

	date := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, absent_teacher_id, substitute_teacher_id, schedule_entry_id, date, created_at FROM substitution_assignments WHERE date = $1 AND schedule_entry_id = $2")).
		WithArgs(date, int64(10)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByDateAndEntry(context.Background(), date, 10)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubstitutionRepositoryDeleteByDateAndEntry(t *testing.T) {
	db, mock, cleanup := newSubstitutionRepoMock(t)
	defer cleanup()
	repo := NewSubstitutionRepository(db)

	date := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM substitution_assignments WHERE date = $1 AND schedule_entry_id = $2")).
		WithArgs(date, int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	affected, err := repo.DeleteByDateAndEntry(context.Background(), date, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubstitutionRepositoryListForAbsence(t *testing.T) {
	db, mock, cleanup := newSubstitutionRepoMock(t)
	defer cleanup()
	repo := NewSubstitutionRepository(db)

	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "absent_teacher_id", "substitute_teacher_id", "schedule_entry_id", "date", "created_at"}).
		AddRow(40, 1, 3, 10, start, time.Now()).
		AddRow(41, 1, 2, 11, end, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, absent_teacher_id, substitute_teacher_id, schedule_entry_id, date, created_at FROM substitution_assignments WHERE absent_teacher_id = $1 AND date BETWEEN $2 AND $3")).
		WithArgs(int64(1), start, end).
		WillReturnRows(rows)

	assignments, err := repo.ListForAbsence(context.Background(), 1, start, end)
	require.NoError(t, err)
	assert.Len(t, assignments, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}
