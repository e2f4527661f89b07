package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusops/schedule-api/internal/models"
	"github.com/campusops/schedule-api/internal/timetable"
	appErrors "github.com/campusops/schedule-api/pkg/errors"
)

func mustDays(t *testing.T, names ...string) []timetable.Weekday {
	t.Helper()
	days := make([]timetable.Weekday, 0, len(names))
	for _, name := range names {
		day, err := timetable.ParseWeekday(name)
		require.NoError(t, err)
		days = append(days, day)
	}
	return days
}

func mustTestInterval(t *testing.T, start, end string) timetable.TimeInterval {
	t.Helper()
	s, err := timetable.ParseClock(start)
	require.NoError(t, err)
	e, err := timetable.ParseClock(end)
	require.NoError(t, err)
	return timetable.TimeInterval{Start: s, End: e}
}

type mockRoomCatalog struct {
	rooms   []models.Room
	listErr error
}

func (m *mockRoomCatalog) ListAll(ctx context.Context) ([]models.Room, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.rooms, nil
}

func availabilityFixtures() (*mockRoomCatalog, *mockScheduleEntryRepo) {
	catalog := &mockRoomCatalog{rooms: []models.Room{
		{ID: "room-101", Name: "Room 101", Floor: "1", Type: models.RoomTypeLecture, Status: "available"},
		{ID: "room-201", Name: "Room 201", Floor: "2", Type: models.RoomTypeLecture, Status: "available"},
		{ID: "room-301", Name: "Room 301", Floor: "3", Type: models.RoomTypeLecture, Status: "maintenance"},
		{ID: "lab-1", Name: "Comp Lab 1", Floor: "3", Type: models.RoomTypeLaboratory, Status: "available"},
	}}
	entries := &mockScheduleEntryRepo{entries: map[string]*models.ScheduleEntry{
		"busy-1": {
			ID: "busy-1", SectionID: "section-1", SubjectCode: "MATH101",
			RoomID: "room-101", RoomName: "Room 101",
			InstructorID: "instructor-cruz",
			StartTime:    "9:00 AM", EndTime: "10:30 AM",
			Days: []string{"monday"}, Kind: "LECTURE", Color: "blue",
		},
	}}
	return catalog, entries
}

func availabilityQuery(days ...string) AvailabilityRequest {
	return AvailabilityRequest{
		RoomType:  models.RoomTypeLecture,
		Days:      days,
		StartTime: TimeFields{Hour: "9", Minute: "00", Period: "AM"},
		EndTime:   TimeFields{Hour: "10", Minute: "00", Period: "AM"},
	}
}

func TestAvailabilityExcludesBookedAndUnavailableRooms(t *testing.T) {
	catalog, entries := availabilityFixtures()
	svc := NewAvailabilityService(catalog, entries, nil, nil, nil)

	result, err := svc.Query(context.Background(), availabilityQuery("monday"))
	require.NoError(t, err)

	// room-101 is booked, room-301 is under maintenance, lab-1 is the
	// wrong type.
	require.Len(t, result.Rooms, 1)
	assert.Equal(t, "room-201", result.Rooms[0].ID)
	require.Len(t, result.Floors, 1)
	assert.Equal(t, "2", result.Floors[0].Floor)
}

func TestAvailabilityFreeOnOtherDays(t *testing.T) {
	catalog, entries := availabilityFixtures()
	svc := NewAvailabilityService(catalog, entries, nil, nil, nil)

	result, err := svc.Query(context.Background(), availabilityQuery("tuesday"))
	require.NoError(t, err)
	assert.Len(t, result.Rooms, 2)
}

func TestAvailabilityExcludeEntryFreesItsRoom(t *testing.T) {
	catalog, entries := availabilityFixtures()
	svc := NewAvailabilityService(catalog, entries, nil, nil, nil)

	req := availabilityQuery("monday")
	req.ExcludeEntryIDs = []string{"busy-1"}
	result, err := svc.Query(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, result.Rooms, 2)
}

func TestAvailabilitySelectionCleared(t *testing.T) {
	catalog, entries := availabilityFixtures()
	svc := NewAvailabilityService(catalog, entries, nil, nil, nil)

	req := availabilityQuery("monday")
	req.SelectedRoomID = "room-101"
	result, err := svc.Query(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, result.SelectionCleared)

	req.SelectedRoomID = "room-201"
	result, err = svc.Query(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, result.SelectionCleared)
}

func TestAvailabilityRejectsInvalidInput(t *testing.T) {
	catalog, entries := availabilityFixtures()
	svc := NewAvailabilityService(catalog, entries, nil, nil, nil)

	_, err := svc.Query(context.Background(), AvailabilityRequest{
		RoomType:  models.RoomTypeLecture,
		StartTime: TimeFields{Hour: "9", Minute: "00", Period: "AM"},
		EndTime:   TimeFields{Hour: "10", Minute: "00", Period: "AM"},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	req := availabilityQuery("monday")
	req.EndTime = TimeFields{Hour: "9", Minute: "00", Period: "AM"}
	_, err = svc.Query(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrEndBeforeStart.Code, appErrors.FromError(err).Code)

	req = availabilityQuery("monday")
	req.StartTime = TimeFields{Hour: "25", Minute: "00", Period: "AM"}
	_, err = svc.Query(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidTimeFormat.Code, appErrors.FromError(err).Code)
}

func TestAvailabilityCacheKeyNormalisesInputs(t *testing.T) {
	keyA := availabilityCacheKey("lecture", mustDays(t, "wednesday", "monday"), mustTestInterval(t, "9:00 AM", "10:00 AM"), []string{"b", "a"})
	keyB := availabilityCacheKey("Lecture", mustDays(t, "monday", "wednesday"), mustTestInterval(t, "9:00 AM", "10:00 AM"), []string{"a", "b"})
	assert.Equal(t, keyA, keyB)

	keyC := availabilityCacheKey("lecture", mustDays(t, "monday"), mustTestInterval(t, "9:00 AM", "10:00 AM"), nil)
	assert.NotEqual(t, keyA, keyC)
}
