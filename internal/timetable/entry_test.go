package timetable

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/campusops/schedule-api/pkg/errors"
)

func mustInterval(t *testing.T, start, end string) TimeInterval {
	t.Helper()
	s, err := ParseClock(start)
	require.NoError(t, err)
	e, err := ParseClock(end)
	require.NoError(t, err)
	return TimeInterval{Start: s, End: e}
}

func TestParseWeekday(t *testing.T) {
	day, err := ParseWeekday(" Monday ")
	require.NoError(t, err)
	assert.Equal(t, Monday, day)

	_, err = ParseWeekday("mon")
	assert.Error(t, err)
	_, err = ParseWeekday("")
	assert.Error(t, err)
}

func TestWeekdayOf(t *testing.T) {
	// 2025-01-06 is a Monday.
	assert.Equal(t, Monday, WeekdayOf(time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, Sunday, WeekdayOf(time.Date(2025, 1, 12, 23, 0, 0, 0, time.UTC)))
}

func TestDaysOverlap(t *testing.T) {
	assert.True(t, DaysOverlap([]Weekday{Monday, Wednesday}, []Weekday{Wednesday, Friday}))
	assert.False(t, DaysOverlap([]Weekday{Monday}, []Weekday{Tuesday}))
	assert.False(t, DaysOverlap(nil, []Weekday{Monday}))
}

func TestPalette(t *testing.T) {
	colors := Palette()
	assert.Len(t, colors, 10)
	assert.Equal(t, "blue", colors[0])
	for _, c := range colors {
		assert.True(t, ValidColor(c))
	}
	assert.False(t, ValidColor("magenta"))

	// Returned slice is a copy.
	colors[0] = "mutated"
	assert.Equal(t, "blue", Palette()[0])
}

func TestScheduleEntryValidate(t *testing.T) {
	base := ScheduleEntry{
		ID:       "e1",
		Interval: mustInterval(t, "9:00 AM", "10:30 AM"),
		Days:     []Weekday{Monday, Wednesday},
		Kind:     KindLecture,
		Color:    "blue",
	}
	assert.NoError(t, base.Validate())

	noDays := base
	noDays.Days = nil
	err := noDays.Validate()
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrEmptyDaySelection.Code, appErrors.FromError(err).Code)

	badDay := base
	badDay.Days = []Weekday{"someday"}
	assert.Error(t, badDay.Validate())

	lateEnd := base
	lateEnd.Interval = mustInterval(t, "8:00 PM", "9:00 PM")
	err = lateEnd.Validate()
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrLateEndTime.Code, appErrors.FromError(err).Code)

	badColor := base
	badColor.Color = "mauve"
	assert.Error(t, badColor.Validate())

	noColor := base
	noColor.Color = ""
	assert.NoError(t, noColor.Validate(), "color is assigned later for unset entries")
}

func TestActiveOn(t *testing.T) {
	from := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)  // Monday
	to := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)   // Monday
	entry := ScheduleEntry{
		Interval:  mustInterval(t, "9:00 AM", "10:30 AM"),
		Days:      []Weekday{Monday},
		ValidFrom: &from,
		ValidTo:   &to,
	}

	assert.True(t, entry.ActiveOn(from), "start bound is inclusive")
	assert.True(t, entry.ActiveOn(to), "end bound is inclusive")
	assert.True(t, entry.ActiveOn(time.Date(2025, 2, 10, 15, 30, 0, 0, time.UTC)), "time of day does not matter")
	assert.False(t, entry.ActiveOn(time.Date(2025, 2, 11, 0, 0, 0, 0, time.UTC)), "tuesday never matches")
	assert.False(t, entry.ActiveOn(time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC)), "before the window")
	assert.False(t, entry.ActiveOn(time.Date(2025, 4, 7, 0, 0, 0, 0, time.UTC)), "after the window")

	open := entry
	open.ValidFrom, open.ValidTo = nil, nil
	assert.True(t, open.ActiveOn(time.Date(2030, 6, 3, 0, 0, 0, 0, time.UTC)), "unset bounds do not constrain")
}
