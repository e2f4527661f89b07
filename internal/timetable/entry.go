package timetable

import (
	"fmt"
	"strings"
	"time"

	appErrors "github.com/campusops/schedule-api/pkg/errors"
)

// Weekday is a lower-case day-of-week token matching the stored form.
type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

var weekdayOrder = map[Weekday]int{
	Monday:    1,
	Tuesday:   2,
	Wednesday: 3,
	Thursday:  4,
	Friday:    5,
	Saturday:  6,
	Sunday:    7,
}

// ParseWeekday normalizes a raw day token.
func ParseWeekday(raw string) (Weekday, error) {
	day := Weekday(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := weekdayOrder[day]; !ok {
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown weekday %q", raw))
	}
	return day, nil
}

// WeekdayOf maps a calendar date to its weekday token.
func WeekdayOf(date time.Time) Weekday {
	switch date.Weekday() {
	case time.Monday:
		return Monday
	case time.Tuesday:
		return Tuesday
	case time.Wednesday:
		return Wednesday
	case time.Thursday:
		return Thursday
	case time.Friday:
		return Friday
	case time.Saturday:
		return Saturday
	default:
		return Sunday
	}
}

// DaysOverlap reports whether the two day sets intersect.
func DaysOverlap(a, b []Weekday) bool {
	for _, dayA := range a {
		for _, dayB := range b {
			if dayA == dayB {
				return true
			}
		}
	}
	return false
}

// EntryKind discriminates lecture entries from their laboratory components.
type EntryKind string

const (
	KindLecture    EntryKind = "LECTURE"
	KindLaboratory EntryKind = "LABORATORY"
)

// palette is the fixed set of display color tokens. The engine treats them
// as opaque strings; actual pixel values belong to the rendering layer.
var palette = []string{"blue", "green", "red", "purple", "orange", "pink", "cyan", "amber", "lime", "teal"}

// Palette returns the allowed color tokens.
func Palette() []string {
	out := make([]string, len(palette))
	copy(out, palette)
	return out
}

// ValidColor reports whether the token belongs to the palette.
func ValidColor(color string) bool {
	for _, c := range palette {
		if c == color {
			return true
		}
	}
	return false
}

// ScheduleEntry is one weekly-recurring class time block, lecture or
// laboratory. A laboratory component points back at its lecture through
// LinkedEntryID and shares its subject and color.
type ScheduleEntry struct {
	ID             string       `json:"id"`
	SectionID      string       `json:"section_id"`
	SubjectID      string       `json:"subject_id"`
	SubjectCode    string       `json:"subject_code"`
	SubjectName    string       `json:"subject_name"`
	RoomID         string       `json:"room_id"`
	RoomName       string       `json:"room_name"`
	InstructorID   string       `json:"instructor_id"`
	InstructorName string       `json:"instructor_name"`
	Interval       TimeInterval `json:"interval"`
	Days           []Weekday    `json:"days"`
	Kind           EntryKind    `json:"kind"`
	IsLabComponent bool         `json:"is_lab_component"`
	LinkedEntryID  string       `json:"linked_entry_id,omitempty"`
	Color          string       `json:"color"`
	ValidFrom      *time.Time   `json:"valid_from,omitempty"`
	ValidTo        *time.Time   `json:"valid_to,omitempty"`
}

// Validate checks the invariants an entry must hold before it is eligible
// for conflict detection or persistence.
func (e ScheduleEntry) Validate() error {
	if len(e.Days) == 0 {
		return appErrors.Clone(appErrors.ErrEmptyDaySelection, "")
	}
	for _, day := range e.Days {
		if _, err := ParseWeekday(string(day)); err != nil {
			return err
		}
	}
	if err := e.Interval.Validate(); err != nil {
		return err
	}
	if e.Color != "" && !ValidColor(e.Color) {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("color %q is not in the schedule palette", e.Color))
	}
	return nil
}

// OnDay reports whether the entry recurs on the given weekday.
func (e ScheduleEntry) OnDay(day Weekday) bool {
	for _, d := range e.Days {
		if d == day {
			return true
		}
	}
	return false
}

// ActiveOn reports whether the entry applies on a concrete calendar date:
// the weekday must match and the date must fall inside the validity window,
// inclusive on both ends. Unset bounds do not constrain.
func (e ScheduleEntry) ActiveOn(date time.Time) bool {
	if !e.OnDay(WeekdayOf(date)) {
		return false
	}
	day := truncateToDay(date)
	if e.ValidFrom != nil && day.Before(truncateToDay(*e.ValidFrom)) {
		return false
	}
	if e.ValidTo != nil && day.After(truncateToDay(*e.ValidTo)) {
		return false
	}
	return true
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
