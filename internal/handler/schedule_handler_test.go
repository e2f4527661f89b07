package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusops/schedule-api/internal/models"
	"github.com/campusops/schedule-api/internal/service"
	"github.com/campusops/schedule-api/pkg/response"
)

type stubScheduleRepo struct {
	entries map[string]*models.ScheduleEntry
}

func (m *stubScheduleRepo) List(ctx context.Context, filter models.ScheduleEntryFilter) ([]models.ScheduleEntry, int, error) {
	all, _ := m.ListAll(ctx)
	return all, len(all), nil
}

func (m *stubScheduleRepo) ListAll(ctx context.Context) ([]models.ScheduleEntry, error) {
	var entries []models.ScheduleEntry
	for _, e := range m.entries {
		entries = append(entries, *e)
	}
	return entries, nil
}

func (m *stubScheduleRepo) FindByID(ctx context.Context, id string) (*models.ScheduleEntry, error) {
	if e, ok := m.entries[id]; ok {
		copy := *e
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (m *stubScheduleRepo) FindLinked(ctx context.Context, entryID string) (*models.ScheduleEntry, error) {
	return nil, sql.ErrNoRows
}

func (m *stubScheduleRepo) Create(ctx context.Context, entry *models.ScheduleEntry) error {
	if m.entries == nil {
		m.entries = make(map[string]*models.ScheduleEntry)
	}
	if entry.ID == "" {
		entry.ID = "created-1"
	}
	copy := *entry
	m.entries[entry.ID] = &copy
	return nil
}

func (m *stubScheduleRepo) CreatePair(ctx context.Context, lecture, lab *models.ScheduleEntry) error {
	if err := m.Create(ctx, lecture); err != nil {
		return err
	}
	id := lecture.ID
	lab.LinkedEntryID = &id
	lab.ID = lecture.ID + "-lab"
	return m.Create(ctx, lab)
}

func (m *stubScheduleRepo) Update(ctx context.Context, entry *models.ScheduleEntry) error {
	copy := *entry
	m.entries[entry.ID] = &copy
	return nil
}

func (m *stubScheduleRepo) Delete(ctx context.Context, id string) error {
	delete(m.entries, id)
	return nil
}

type stubSubjects struct{}

func (stubSubjects) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	if id == "subject-1" {
		return &models.Subject{ID: "subject-1", Code: "MATH101", Name: "Calculus I"}, nil
	}
	return nil, sql.ErrNoRows
}

type stubRooms struct{}

func (stubRooms) FindByID(ctx context.Context, id string) (*models.Room, error) {
	if id == "room-1" {
		return &models.Room{ID: "room-1", Name: "Room 101", Floor: "1", Type: models.RoomTypeLecture, Status: "available"}, nil
	}
	return nil, sql.ErrNoRows
}

type stubInstructors struct{}

func (stubInstructors) FindByID(ctx context.Context, id string) (*models.Instructor, error) {
	if id == "instructor-1" {
		return &models.Instructor{ID: "instructor-1", FullName: "Prof. Cruz", Email: "cruz@campus.edu"}, nil
	}
	return nil, sql.ErrNoRows
}

func newScheduleHandler(repo *stubScheduleRepo) *ScheduleHandler {
	svc := service.NewScheduleService(repo, stubSubjects{}, stubRooms{}, stubInstructors{}, nil, nil, nil)
	return NewScheduleHandler(svc)
}

func scheduleBody(force bool, days ...string) []byte {
	body := map[string]interface{}{
		"section_id": "section-1",
		"subject_id": "subject-1",
		"force":      force,
		"lecture": map[string]interface{}{
			"room_id":       "room-1",
			"instructor_id": "instructor-1",
			"start_time":    map[string]string{"hour": "9", "minute": "00", "period": "AM"},
			"end_time":      map[string]string{"hour": "10", "minute": "30", "period": "AM"},
			"days":          days,
		},
	}
	payload, _ := json.Marshal(body)
	return payload
}

func postJSON(t *testing.T, handler gin.HandlerFunc, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(http.MethodPost, target, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	handler(c)
	return w
}

func TestScheduleHandlerCreate(t *testing.T) {
	repo := &stubScheduleRepo{}
	handler := newScheduleHandler(repo)

	w := postJSON(t, handler.Create, "/schedules", scheduleBody(false, "monday"))
	require.Equal(t, http.StatusCreated, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Nil(t, envelope.Error)
	assert.Len(t, repo.entries, 1)
}

func TestScheduleHandlerCreateConflictCarriesReport(t *testing.T) {
	repo := &stubScheduleRepo{entries: map[string]*models.ScheduleEntry{
		"busy": {
			ID: "busy", SectionID: "section-2", SubjectCode: "PHYS201",
			RoomID: "room-1", RoomName: "Room 101", InstructorID: "other",
			StartTime: "9:00 AM", EndTime: "10:00 AM",
			Days: []string{"monday"}, Kind: "LECTURE", Color: "green",
		},
	}}
	handler := newScheduleHandler(repo)

	w := postJSON(t, handler.Create, "/schedules", scheduleBody(false, "monday"))
	require.Equal(t, http.StatusConflict, w.Code)

	var envelope struct {
		Data  models.ConflictReport `json:"data"`
		Error *struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "CONFLICT", envelope.Error.Code)
	assert.True(t, envelope.Data.HasConflicts)
	assert.NotEmpty(t, envelope.Data.Conflicts)
	assert.Len(t, repo.entries, 1)
}

func TestScheduleHandlerCreateForce(t *testing.T) {
	repo := &stubScheduleRepo{entries: map[string]*models.ScheduleEntry{
		"busy": {
			ID: "busy", SectionID: "section-2", SubjectCode: "PHYS201",
			RoomID: "room-1", RoomName: "Room 101", InstructorID: "other",
			StartTime: "9:00 AM", EndTime: "10:00 AM",
			Days: []string{"monday"}, Kind: "LECTURE", Color: "green",
		},
	}}
	handler := newScheduleHandler(repo)

	w := postJSON(t, handler.Create, "/schedules", scheduleBody(true, "monday"))
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, repo.entries, 2)
}

func TestScheduleHandlerCreateInvalidBody(t *testing.T) {
	handler := newScheduleHandler(&stubScheduleRepo{})

	w := postJSON(t, handler.Create, "/schedules", []byte(`{"section_id":`))
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScheduleHandlerCheckConflicts(t *testing.T) {
	repo := &stubScheduleRepo{entries: map[string]*models.ScheduleEntry{
		"busy": {
			ID: "busy", SectionID: "section-2", SubjectCode: "PHYS201",
			RoomID: "room-1", RoomName: "Room 101", InstructorID: "other",
			StartTime: "9:00 AM", EndTime: "10:00 AM",
			Days: []string{"monday"}, Kind: "LECTURE", Color: "green",
		},
	}}
	handler := newScheduleHandler(repo)

	w := postJSON(t, handler.CheckConflicts, "/schedules/check-conflicts", scheduleBody(false, "monday"))
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data models.ConflictReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.True(t, envelope.Data.HasConflicts)
	// Dry run must not persist.
	assert.Len(t, repo.entries, 1)
}

func TestScheduleHandlerDelete(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &stubScheduleRepo{entries: map[string]*models.ScheduleEntry{
		"entry-1": {
			ID: "entry-1", SectionID: "section-1", RoomID: "room-1",
			StartTime: "9:00 AM", EndTime: "10:00 AM",
			Days: []string{"monday"}, Kind: "LECTURE",
		},
	}}
	handler := newScheduleHandler(repo)

	// Route through an engine so the 204 status is flushed to the recorder.
	router := gin.New()
	router.DELETE("/schedules/:id", handler.Delete)

	w := httptest.NewRecorder()
	req, err := http.NewRequest(http.MethodDelete, "/schedules/entry-1", nil)
	require.NoError(t, err)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, repo.entries)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)
}
