package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusops/schedule-api/internal/models"
)

func roomRows(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "floor", "type", "capacity", "status", "created_at", "updated_at"}).
		AddRow("room-1", "Room 101", "1st Floor", "lecture", 40, "available", now, now)
}

func TestListRoomsWithSearch(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + roomColumns + " FROM rooms WHERE 1=1 AND name ILIKE $1 ORDER BY name ASC LIMIT 20 OFFSET 0")).
		WithArgs("%101%").
		WillReturnRows(roomRows(now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM rooms WHERE 1=1 AND name ILIKE $1")).
		WithArgs("%101%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	rooms, total, err := repo.List(context.Background(), models.RoomFilter{Search: "101"})
	require.NoError(t, err)
	assert.Len(t, rooms, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Room 101", rooms[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindRoomByName(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + roomColumns + " FROM rooms WHERE name = $1")).
		WithArgs("Room 101").
		WillReturnRows(roomRows(now))

	room, err := repo.FindByName(context.Background(), "Room 101")
	require.NoError(t, err)
	assert.Equal(t, "room-1", room.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRoomStampsID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	mock.ExpectExec("INSERT INTO rooms").WillReturnResult(sqlmock.NewResult(1, 1))

	room := &models.Room{Name: "Room 202", Floor: "2nd Floor", Type: "lecture", Capacity: 35, Status: "available"}
	err := repo.Create(context.Background(), room)
	require.NoError(t, err)
	assert.NotEmpty(t, room.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkCreateRoomsCommitsOnce(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO rooms").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO rooms").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	rooms := []models.Room{
		{Name: "Room 301", Floor: "3rd Floor", Type: "lecture"},
		{Name: "Comp Lab 1", Floor: "3rd Floor", Type: "laboratory"},
	}
	err := repo.BulkCreate(context.Background(), rooms)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkCreateRoomsRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO rooms").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := repo.BulkCreate(context.Background(), []models.Room{{Name: "Room 301", Floor: "3rd Floor", Type: "lecture"}})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteRoom(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM rooms WHERE id = $1")).
		WithArgs("room-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Delete(context.Background(), "room-1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
