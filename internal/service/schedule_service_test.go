package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusops/schedule-api/internal/models"
	"github.com/campusops/schedule-api/internal/timetable"
	appErrors "github.com/campusops/schedule-api/pkg/errors"
)

type mockScheduleEntryRepo struct {
	entries    map[string]*models.ScheduleEntry
	listAllErr error
	created    []*models.ScheduleEntry
	pairs      int
	updated    []*models.ScheduleEntry
	deleted    []string
}

func (m *mockScheduleEntryRepo) List(ctx context.Context, filter models.ScheduleEntryFilter) ([]models.ScheduleEntry, int, error) {
	all, err := m.ListAll(ctx)
	if err != nil {
		return nil, 0, err
	}
	return all, len(all), nil
}

func (m *mockScheduleEntryRepo) ListAll(ctx context.Context) ([]models.ScheduleEntry, error) {
	if m.listAllErr != nil {
		return nil, m.listAllErr
	}
	var entries []models.ScheduleEntry
	for _, e := range m.entries {
		entries = append(entries, *e)
	}
	return entries, nil
}

func (m *mockScheduleEntryRepo) FindByID(ctx context.Context, id string) (*models.ScheduleEntry, error) {
	if entry, ok := m.entries[id]; ok {
		copy := *entry
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockScheduleEntryRepo) FindLinked(ctx context.Context, entryID string) (*models.ScheduleEntry, error) {
	for _, e := range m.entries {
		if e.LinkedEntryID != nil && *e.LinkedEntryID == entryID {
			copy := *e
			return &copy, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockScheduleEntryRepo) Create(ctx context.Context, entry *models.ScheduleEntry) error {
	if m.entries == nil {
		m.entries = make(map[string]*models.ScheduleEntry)
	}
	if entry.ID == "" {
		entry.ID = "generated-1"
	}
	copy := *entry
	m.entries[entry.ID] = &copy
	m.created = append(m.created, &copy)
	return nil
}

func (m *mockScheduleEntryRepo) CreatePair(ctx context.Context, lecture, lab *models.ScheduleEntry) error {
	if lecture.ID == "" {
		lecture.ID = "generated-lecture"
	}
	if lab.ID == "" {
		lab.ID = "generated-lab"
	}
	id := lecture.ID
	lab.LinkedEntryID = &id
	m.pairs++
	if err := m.Create(ctx, lecture); err != nil {
		return err
	}
	return m.Create(ctx, lab)
}

func (m *mockScheduleEntryRepo) Update(ctx context.Context, entry *models.ScheduleEntry) error {
	copy := *entry
	m.entries[entry.ID] = &copy
	m.updated = append(m.updated, &copy)
	return nil
}

func (m *mockScheduleEntryRepo) Delete(ctx context.Context, id string) error {
	delete(m.entries, id)
	m.deleted = append(m.deleted, id)
	return nil
}

type mockSubjectReader struct{ subjects map[string]*models.Subject }

func (m *mockSubjectReader) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	if s, ok := m.subjects[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

type mockRoomReader struct{ rooms map[string]*models.Room }

func (m *mockRoomReader) FindByID(ctx context.Context, id string) (*models.Room, error) {
	if r, ok := m.rooms[id]; ok {
		return r, nil
	}
	return nil, sql.ErrNoRows
}

type mockInstructorReader struct{ instructors map[string]*models.Instructor }

func (m *mockInstructorReader) FindByID(ctx context.Context, id string) (*models.Instructor, error) {
	if i, ok := m.instructors[id]; ok {
		return i, nil
	}
	return nil, sql.ErrNoRows
}

type mockCacheInvalidator struct{ patterns []string }

func (m *mockCacheInvalidator) Invalidate(ctx context.Context, pattern string) error {
	m.patterns = append(m.patterns, pattern)
	return nil
}

func scheduleFixtures() (*mockScheduleEntryRepo, *mockSubjectReader, *mockRoomReader, *mockInstructorReader) {
	repo := &mockScheduleEntryRepo{entries: map[string]*models.ScheduleEntry{
		"existing-1": {
			ID:             "existing-1",
			SectionID:      "section-1",
			SubjectID:      "subject-math",
			SubjectCode:    "MATH101",
			SubjectName:    "Calculus I",
			RoomID:         "room-101",
			RoomName:       "Room 101",
			InstructorID:   "instructor-cruz",
			InstructorName: "Prof. Cruz",
			StartTime:      "9:00 AM",
			EndTime:        "10:30 AM",
			Days:           []string{"monday", "wednesday"},
			Kind:           "LECTURE",
			Color:          "blue",
		},
	}}
	subjects := &mockSubjectReader{subjects: map[string]*models.Subject{
		"subject-phys": {ID: "subject-phys", Code: "PHYS201", Name: "Physics II", Units: 4, HasLab: true},
		"subject-math": {ID: "subject-math", Code: "MATH101", Name: "Calculus I", Units: 3},
	}}
	rooms := &mockRoomReader{rooms: map[string]*models.Room{
		"room-101": {ID: "room-101", Name: "Room 101", Floor: "1", Type: models.RoomTypeLecture, Status: "available"},
		"room-201": {ID: "room-201", Name: "Room 201", Floor: "2", Type: models.RoomTypeLecture, Status: "available"},
		"lab-1":    {ID: "lab-1", Name: "Comp Lab 1", Floor: "3", Type: models.RoomTypeLaboratory, Status: "available"},
	}}
	instructors := &mockInstructorReader{instructors: map[string]*models.Instructor{
		"instructor-cruz":  {ID: "instructor-cruz", FullName: "Prof. Cruz", Email: "cruz@campus.edu"},
		"instructor-reyes": {ID: "instructor-reyes", FullName: "Prof. Reyes", Email: "reyes@campus.edu"},
	}}
	return repo, subjects, rooms, instructors
}

func payload(roomID, instructorID string, startHour, endHour string, days ...string) EntryPayload {
	return EntryPayload{
		RoomID:       roomID,
		InstructorID: instructorID,
		StartTime:    TimeFields{Hour: startHour, Minute: "00", Period: "AM"},
		EndTime:      TimeFields{Hour: endHour, Minute: "00", Period: "AM"},
		Days:         days,
	}
}

func TestScheduleCreateSuccess(t *testing.T) {
	repo, subjects, rooms, instructors := scheduleFixtures()
	cache := &mockCacheInvalidator{}
	svc := NewScheduleService(repo, subjects, rooms, instructors, cache, nil, nil)

	result, err := svc.Create(context.Background(), CreateScheduleRequest{
		SectionID: "section-1",
		SubjectID: "subject-phys",
		Lecture:   payload("room-201", "instructor-reyes", "8", "10", "tuesday", "thursday"),
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "PHYS201", result.Lecture.SubjectCode)
	assert.Equal(t, "Room 201", result.Lecture.RoomName)
	assert.Nil(t, result.Lab)
	assert.Empty(t, result.Overridden)
	assert.Len(t, repo.created, 1)
	assert.Contains(t, cache.patterns, "availability:*")
	assert.Contains(t, cache.patterns, "calendar:*")
}

func TestScheduleCreateBlockedByConflict(t *testing.T) {
	repo, subjects, rooms, instructors := scheduleFixtures()
	svc := NewScheduleService(repo, subjects, rooms, instructors, nil, nil, nil)

	// Same room, overlapping time, overlapping day as existing-1.
	_, err := svc.Create(context.Background(), CreateScheduleRequest{
		SectionID: "section-2",
		SubjectID: "subject-phys",
		Lecture:   payload("room-101", "instructor-reyes", "9", "10", "monday"),
	})
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)

	var conflictErr *models.ScheduleConflictError
	require.True(t, errors.As(err, &conflictErr))
	assert.True(t, conflictErr.Report.HasConflicts)
	assert.NotEmpty(t, conflictErr.Report.ByDimension[timetable.DimensionRoom])
	assert.Empty(t, repo.created)
}

func TestScheduleCreateForceOverridesConflicts(t *testing.T) {
	repo, subjects, rooms, instructors := scheduleFixtures()
	svc := NewScheduleService(repo, subjects, rooms, instructors, nil, nil, nil)

	result, err := svc.Create(context.Background(), CreateScheduleRequest{
		SectionID: "section-2",
		SubjectID: "subject-phys",
		Lecture:   payload("room-101", "instructor-reyes", "9", "10", "monday"),
		Force:     true,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Overridden)
	assert.Len(t, repo.created, 1)
}

func TestScheduleCreateWithLabPersistsPair(t *testing.T) {
	repo, subjects, rooms, instructors := scheduleFixtures()
	svc := NewScheduleService(repo, subjects, rooms, instructors, nil, nil, nil)

	lab := payload("lab-1", "instructor-reyes", "10", "11", "tuesday")
	result, err := svc.Create(context.Background(), CreateScheduleRequest{
		SectionID: "section-2",
		SubjectID: "subject-phys",
		Lecture:   payload("room-201", "instructor-reyes", "8", "10", "tuesday"),
		Lab:       &lab,
	})
	require.NoError(t, err)
	require.NotNil(t, result.Lab)
	assert.Equal(t, 1, repo.pairs)
	assert.Equal(t, "LABORATORY", result.Lab.Kind)
	require.NotNil(t, result.Lab.LinkedEntryID)
	assert.Equal(t, result.Lecture.ID, *result.Lab.LinkedEntryID)
	assert.Equal(t, result.Lecture.Color, result.Lab.Color)
}

func TestScheduleCreateRejectsUnknownSubject(t *testing.T) {
	repo, subjects, rooms, instructors := scheduleFixtures()
	svc := NewScheduleService(repo, subjects, rooms, instructors, nil, nil, nil)

	_, err := svc.Create(context.Background(), CreateScheduleRequest{
		SectionID: "section-2",
		SubjectID: "subject-unknown",
		Lecture:   payload("room-201", "instructor-reyes", "8", "10", "tuesday"),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestScheduleCreateRejectsLateEnd(t *testing.T) {
	repo, subjects, rooms, instructors := scheduleFixtures()
	svc := NewScheduleService(repo, subjects, rooms, instructors, nil, nil, nil)

	_, err := svc.Create(context.Background(), CreateScheduleRequest{
		SectionID: "section-2",
		SubjectID: "subject-phys",
		Lecture: EntryPayload{
			RoomID:       "room-201",
			InstructorID: "instructor-reyes",
			StartTime:    TimeFields{Hour: "7", Minute: "00", Period: "PM"},
			EndTime:      TimeFields{Hour: "9", Minute: "00", Period: "PM"},
			Days:         []string{"friday"},
		},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrLateEndTime.Code, appErrors.FromError(err).Code)
}

func TestScheduleUpdateExcludesSelfFromDetection(t *testing.T) {
	repo, subjects, rooms, instructors := scheduleFixtures()
	svc := NewScheduleService(repo, subjects, rooms, instructors, nil, nil, nil)

	// Re-submitting the existing entry at its own time must not conflict
	// with itself.
	updated, err := svc.Update(context.Background(), "existing-1", UpdateScheduleRequest{
		SectionID: "section-1",
		SubjectID: "subject-math",
		Entry:     payload("room-101", "instructor-cruz", "9", "11", "monday", "wednesday"),
	})
	require.NoError(t, err)
	assert.Equal(t, "11:00 AM", updated.EndTime)
	assert.Len(t, repo.updated, 1)
}

func TestScheduleUpdateDetectsNewConflicts(t *testing.T) {
	repo, subjects, rooms, instructors := scheduleFixtures()
	repo.entries["existing-2"] = &models.ScheduleEntry{
		ID: "existing-2", SectionID: "section-3", SubjectID: "subject-phys",
		SubjectCode: "PHYS201", RoomID: "room-201", RoomName: "Room 201",
		InstructorID: "instructor-reyes", InstructorName: "Prof. Reyes",
		StartTime: "1:00 PM", EndTime: "2:30 PM", Days: []string{"monday"},
		Kind: "LECTURE", Color: "green",
	}
	svc := NewScheduleService(repo, subjects, rooms, instructors, nil, nil, nil)

	_, err := svc.Update(context.Background(), "existing-1", UpdateScheduleRequest{
		SectionID: "section-1",
		SubjectID: "subject-math",
		Entry: EntryPayload{
			RoomID:       "room-201",
			InstructorID: "instructor-cruz",
			StartTime:    TimeFields{Hour: "1", Minute: "00", Period: "PM"},
			EndTime:      TimeFields{Hour: "2", Minute: "00", Period: "PM"},
			Days:         []string{"monday"},
		},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestScheduleDeleteRemovesEntry(t *testing.T) {
	repo, subjects, rooms, instructors := scheduleFixtures()
	svc := NewScheduleService(repo, subjects, rooms, instructors, nil, nil, nil)

	require.NoError(t, svc.Delete(context.Background(), "existing-1"))
	assert.Equal(t, []string{"existing-1"}, repo.deleted)

	err := svc.Delete(context.Background(), "existing-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestScheduleCheckConflictsDryRun(t *testing.T) {
	repo, subjects, rooms, instructors := scheduleFixtures()
	svc := NewScheduleService(repo, subjects, rooms, instructors, nil, nil, nil)

	report, err := svc.CheckConflicts(context.Background(), CreateScheduleRequest{
		SectionID: "section-2",
		SubjectID: "subject-phys",
		Lecture:   payload("room-101", "instructor-cruz", "9", "10", "monday"),
	})
	require.NoError(t, err)
	assert.True(t, report.HasConflicts)
	// Room and instructor both clash with existing-1.
	assert.Len(t, report.ByDimension[timetable.DimensionRoom], 1)
	assert.Len(t, report.ByDimension[timetable.DimensionInstructor], 1)
	assert.Empty(t, repo.created)

	clean, err := svc.CheckConflicts(context.Background(), CreateScheduleRequest{
		SectionID: "section-2",
		SubjectID: "subject-phys",
		Lecture:   payload("room-101", "instructor-cruz", "9", "10", "monday"),
	}, "existing-1")
	require.NoError(t, err)
	assert.False(t, clean.HasConflicts)
}

func TestScheduleColorAssignmentReusesSubjectColor(t *testing.T) {
	repo, subjects, rooms, instructors := scheduleFixtures()
	svc := NewScheduleService(repo, subjects, rooms, instructors, nil, nil, nil)

	// subject-math already renders blue, a new block keeps it.
	result, err := svc.Create(context.Background(), CreateScheduleRequest{
		SectionID: "section-2",
		SubjectID: "subject-math",
		Lecture:   payload("room-201", "instructor-reyes", "8", "9", "friday"),
	})
	require.NoError(t, err)
	assert.Equal(t, "blue", result.Lecture.Color)

	// A different subject gets the next free palette slot.
	other, err := svc.Create(context.Background(), CreateScheduleRequest{
		SectionID: "section-2",
		SubjectID: "subject-phys",
		Lecture:   payload("room-201", "instructor-reyes", "10", "11", "friday"),
	})
	require.NoError(t, err)
	assert.NotEqual(t, "blue", other.Lecture.Color)
	assert.True(t, timetable.ValidColor(other.Lecture.Color))
}
