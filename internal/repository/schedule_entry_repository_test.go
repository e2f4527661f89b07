package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusops/schedule-api/internal/models"
)

func scheduleEntryRows(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "section_id", "subject_id", "subject_code", "subject_name",
		"room_id", "room_name", "instructor_id", "instructor_name",
		"start_time", "end_time", "days", "kind", "is_lab_component",
		"linked_entry_id", "color", "valid_from", "valid_to", "created_at", "updated_at",
	}).AddRow(
		"entry-1", "section-1", "subject-1", "MATH101", "College Algebra",
		"room-1", "Room 101", "instructor-1", "Prof. Cruz",
		"9:00 AM", "10:30 AM", pq.StringArray{"monday", "wednesday"}, "lecture", false,
		nil, "#3b82f6", nil, nil, now, now,
	)
}

func TestListScheduleEntriesFiltersBySection(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewScheduleEntryRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + scheduleEntryColumns + " FROM schedule_entries WHERE 1=1 AND section_id = $1 ORDER BY created_at ASC LIMIT 20 OFFSET 0")).
		WithArgs("section-1").
		WillReturnRows(scheduleEntryRows(now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM schedule_entries WHERE 1=1 AND section_id = $1")).
		WithArgs("section-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	entries, total, err := repo.List(context.Background(), models.ScheduleEntryFilter{SectionID: "section-1"})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "MATH101", entries[0].SubjectCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListScheduleEntriesDayUsesArrayMatch(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewScheduleEntryRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + scheduleEntryColumns + " FROM schedule_entries WHERE 1=1 AND $1 = ANY(days) ORDER BY created_at ASC LIMIT 20 OFFSET 0")).
		WithArgs("monday").
		WillReturnRows(scheduleEntryRows(now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM schedule_entries WHERE 1=1 AND $1 = ANY(days)")).
		WithArgs("monday").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	entries, _, err := repo.List(context.Background(), models.ScheduleEntryFilter{Day: "Monday"})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListScheduleEntriesRejectsUnknownSortColumn(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewScheduleEntryRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at ASC LIMIT 20 OFFSET 0")).
		WillReturnRows(scheduleEntryRows(now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	_, _, err := repo.List(context.Background(), models.ScheduleEntryFilter{SortBy: "days; DROP TABLE schedule_entries"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindScheduleEntryByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewScheduleEntryRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + scheduleEntryColumns + " FROM schedule_entries WHERE id = $1")).
		WithArgs("entry-1").
		WillReturnRows(scheduleEntryRows(now))

	entry, err := repo.FindByID(context.Background(), "entry-1")
	require.NoError(t, err)
	assert.Equal(t, "entry-1", entry.ID)
	assert.Equal(t, pq.StringArray{"monday", "wednesday"}, entry.Days)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateScheduleEntryStampsIDAndTimes(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewScheduleEntryRepository(db)

	mock.ExpectExec("INSERT INTO schedule_entries").WillReturnResult(sqlmock.NewResult(1, 1))

	entry := &models.ScheduleEntry{
		SectionID:   "section-1",
		SubjectID:   "subject-1",
		SubjectCode: "MATH101",
		RoomID:      "room-1",
		StartTime:   "9:00 AM",
		EndTime:     "10:30 AM",
		Days:        pq.StringArray{"monday"},
		Kind:        "lecture",
	}
	err := repo.Create(context.Background(), entry)
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePairLinksLabToLecture(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewScheduleEntryRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO schedule_entries").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO schedule_entries").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	lecture := &models.ScheduleEntry{SectionID: "section-1", SubjectID: "subject-1", Kind: "lecture", Days: pq.StringArray{"monday"}}
	lab := &models.ScheduleEntry{SectionID: "section-1", SubjectID: "subject-1", Kind: "laboratory", IsLabComponent: true, Days: pq.StringArray{"tuesday"}}

	err := repo.CreatePair(context.Background(), lecture, lab)
	require.NoError(t, err)
	require.NotNil(t, lab.LinkedEntryID)
	assert.Equal(t, lecture.ID, *lab.LinkedEntryID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePairRollsBackOnLabFailure(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewScheduleEntryRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO schedule_entries").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO schedule_entries").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	lecture := &models.ScheduleEntry{SectionID: "section-1", Kind: "lecture", Days: pq.StringArray{"monday"}}
	lab := &models.ScheduleEntry{SectionID: "section-1", Kind: "laboratory", Days: pq.StringArray{"tuesday"}}

	err := repo.CreatePair(context.Background(), lecture, lab)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteScheduleEntryDetachesLinked(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewScheduleEntryRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE schedule_entries SET linked_entry_id = NULL, updated_at = $2 WHERE linked_entry_id = $1")).
		WithArgs("entry-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM schedule_entries WHERE id = $1")).
		WithArgs("entry-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Delete(context.Background(), "entry-1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
