package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusops/schedule-api/internal/models"
	"github.com/campusops/schedule-api/internal/service"
)

func newCalendarHandler(repo *stubScheduleRepo) *CalendarHandler {
	return NewCalendarHandler(service.NewCalendarViewService(repo, nil, nil))
}

func getRequest(t *testing.T, handler gin.HandlerFunc, target string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(http.MethodGet, target, nil)
	require.NoError(t, err)
	c.Request = req
	handler(c)
	return w
}

func calendarRepo() *stubScheduleRepo {
	return &stubScheduleRepo{entries: map[string]*models.ScheduleEntry{
		"entry-1": {
			ID: "entry-1", SectionID: "section-1", SubjectCode: "MATH101",
			RoomID: "room-1", RoomName: "Room 101", InstructorID: "instructor-1",
			StartTime: "9:00 AM", EndTime: "10:30 AM",
			Days: []string{"monday"}, Kind: "LECTURE", Color: "blue",
		},
	}}
}

func TestCalendarHandlerWeek(t *testing.T) {
	handler := newCalendarHandler(calendarRepo())

	w := getRequest(t, handler.Week, "/calendar/week?sectionId=section-1")
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data service.WeekView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Days, 7)
	assert.Len(t, envelope.Data.Days[0].Blocks, 1)
	assert.Equal(t, 240, envelope.Data.Days[0].Blocks[0].Top)
}

func TestCalendarHandlerDayRejectsBadDate(t *testing.T) {
	handler := newCalendarHandler(calendarRepo())

	w := getRequest(t, handler.Day, "/calendar/day?date=09-07-2026")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCalendarHandlerDay(t *testing.T) {
	handler := newCalendarHandler(calendarRepo())

	// A Monday.
	w := getRequest(t, handler.Day, "/calendar/day?sectionId=section-1&date=2026-09-07")
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data service.DayView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Data.Blocks, 1)
}

func TestCalendarHandlerMonthValidation(t *testing.T) {
	handler := newCalendarHandler(calendarRepo())

	w := getRequest(t, handler.Month, "/calendar/month?year=2026&month=13")
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = getRequest(t, handler.Month, "/calendar/month?month=9")
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = getRequest(t, handler.Month, "/calendar/month?year=2026&month=9")
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data service.MonthView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Data.Cells, 42)
}
