package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarihci20/okul-yonetim-api/internal/models"
)

func newScheduleRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestScheduleRepositoryListByDay(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	rows := sqlmock.NewRows([]string{"id", "teacher_id", "class_id", "subject_id", "period_id", "day_of_week", "created_at", "updated_at"}).
		AddRow(10, 1, 1, 1, 1, 1, time.Now(), time.Now()).
		AddRow(11, 1, 1, 1, 3, 1, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, teacher_id, class_id, subject_id, period_id, day_of_week, created_at, updated_at FROM schedule_entries WHERE day_of_week = $1")).
		WithArgs(1).
		WillReturnRows(rows)

	entries, err := repo.ListByDay(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryExistsSlot(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM schedule_entries WHERE teacher_id = $1 AND period_id = $2 AND day_of_week = $3 AND id <> $4")).
		WithArgs(int64(1), int64(1), 1, int64(0)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	occupied, err := repo.ExistsSlot(context.Background(), 1, 1, 1, 0)
	require.NoError(t, err)
	assert.True(t, occupied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO schedule_entries (teacher_id, class_id, subject_id, period_id, day_of_week, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id")).
		WithArgs(int64(1), int64(2), int64(3), int64(4), 1, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10))

	entry := &models.ScheduleEntry{TeacherID: 1, ClassID: 2, SubjectID: 3, PeriodID: 4, DayOfWeek: 1}
	require.NoError(t, repo.Create(context.Background(), entry))
	assert.Equal(t, int64(10), entry.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryListByTeacherAndDay(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	rows := sqlmock.NewRows([]string{
		"id", "teacher_id", "class_id", "subject_id", "period_id", "day_of_week", "created_at", "updated_at",
		"teacher_name", "class_name", "subject_name", "period_order", "start_time", "end_time",
	}).AddRow(10, 1, 1, 1, 1, 1, time.Now(), time.Now(), "Teacher One", "5-A", "Matematik", 1, "08:30", "09:10")
	mock.ExpectQuery("SELECT .+ FROM schedule_entries s").
		WithArgs(int64(1), 1).
		WillReturnRows(rows)

	entries, err := repo.ListByTeacherAndDay(context.Background(), 1, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Matematik", entries[0].SubjectName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM schedule_entries WHERE id = $1")).
		WithArgs(int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), 10))
	assert.NoError(t, mock.ExpectationsWereMet())
}
