package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusops/schedule-api/internal/models"
	appErrors "github.com/campusops/schedule-api/pkg/errors"
)

type mockRoomRepo struct {
	rooms       map[string]*models.Room
	bulkCreated [][]models.Room
	bulkErr     error
}

func (m *mockRoomRepo) List(ctx context.Context, filter models.RoomFilter) ([]models.Room, int, error) {
	var rooms []models.Room
	for _, r := range m.rooms {
		rooms = append(rooms, *r)
	}
	return rooms, len(rooms), nil
}

func (m *mockRoomRepo) ListAll(ctx context.Context) ([]models.Room, error) {
	rooms, _, err := m.List(ctx, models.RoomFilter{})
	return rooms, err
}

func (m *mockRoomRepo) FindByID(ctx context.Context, id string) (*models.Room, error) {
	if room, ok := m.rooms[id]; ok {
		copy := *room
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockRoomRepo) FindByName(ctx context.Context, name string) (*models.Room, error) {
	for _, room := range m.rooms {
		if strings.EqualFold(room.Name, name) {
			copy := *room
			return &copy, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockRoomRepo) Create(ctx context.Context, room *models.Room) error {
	if m.rooms == nil {
		m.rooms = make(map[string]*models.Room)
	}
	if room.ID == "" {
		room.ID = "room-" + room.Name
	}
	copy := *room
	m.rooms[room.ID] = &copy
	return nil
}

func (m *mockRoomRepo) BulkCreate(ctx context.Context, rooms []models.Room) error {
	if m.bulkErr != nil {
		return m.bulkErr
	}
	m.bulkCreated = append(m.bulkCreated, rooms)
	for i := range rooms {
		room := rooms[i]
		if err := m.Create(ctx, &room); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockRoomRepo) Update(ctx context.Context, room *models.Room) error {
	copy := *room
	m.rooms[room.ID] = &copy
	return nil
}

func (m *mockRoomRepo) Delete(ctx context.Context, id string) error {
	delete(m.rooms, id)
	return nil
}

func TestRoomCreateDefaultsStatus(t *testing.T) {
	repo := &mockRoomRepo{}
	svc := NewRoomService(repo, nil, nil, 0)

	room, err := svc.Create(context.Background(), CreateRoomRequest{
		Name: "Room 101", Floor: "1", Type: models.RoomTypeLecture, Capacity: 40,
	})
	require.NoError(t, err)
	assert.Equal(t, "available", room.Status)
}

func TestRoomCreateRejectsBadType(t *testing.T) {
	repo := &mockRoomRepo{}
	svc := NewRoomService(repo, nil, nil, 0)

	_, err := svc.Create(context.Background(), CreateRoomRequest{
		Name: "Room 101", Floor: "1", Type: "auditorium",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRoomUpdateNotFound(t *testing.T) {
	repo := &mockRoomRepo{}
	svc := NewRoomService(repo, nil, nil, 0)

	_, err := svc.Update(context.Background(), "missing", UpdateRoomRequest{
		Name: "Room 101", Floor: "1", Type: models.RoomTypeLecture, Status: "available",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestRoomImportCSV(t *testing.T) {
	repo := &mockRoomRepo{rooms: map[string]*models.Room{
		"existing": {ID: "existing", Name: "Room 101", Floor: "1", Type: models.RoomTypeLecture, Status: "available"},
	}}
	svc := NewRoomService(repo, nil, nil, 0)

	csv := strings.Join([]string{
		"name,floor,type,capacity,status",
		"Room 201,2,lecture,40,available",
		"Comp Lab 1,3,Laboratory,30,",
		"Room 101,1,lecture,40,available",
		"Room 201,2,lecture,40,available",
		",1,lecture,40,available",
		"Broken,1,auditorium,40,available",
	}, "\n")

	result, err := svc.ImportCSV(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 4, result.Skipped)
	require.Len(t, result.Errors, 4)
	assert.Contains(t, result.Errors[0], "already exists")
	assert.Contains(t, result.Errors[1], "duplicate room")
	assert.Contains(t, result.Errors[2], "name is required")

	require.Len(t, repo.bulkCreated, 1)
	imported := repo.bulkCreated[0]
	require.Len(t, imported, 2)
	assert.Equal(t, "Room 201", imported[0].Name)
	// Type is normalised and a blank status defaults to available.
	assert.Equal(t, "laboratory", imported[1].Type)
	assert.Equal(t, "available", imported[1].Status)
}

func TestRoomImportCSVRowLimit(t *testing.T) {
	svc := NewRoomService(&mockRoomRepo{}, nil, nil, 2)

	csv := strings.Join([]string{
		"name,floor,type,capacity,status",
		"Room 1,1,lecture,40,available",
		"Room 2,1,lecture,40,available",
		"Room 3,1,lecture,40,available",
	}, "\n")

	_, err := svc.ImportCSV(context.Background(), strings.NewReader(csv))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRoomImportCSVEmpty(t *testing.T) {
	svc := NewRoomService(&mockRoomRepo{}, nil, nil, 0)

	_, err := svc.ImportCSV(context.Background(), strings.NewReader("name,floor,type,capacity,status\n"))
	require.Error(t, err)
}
