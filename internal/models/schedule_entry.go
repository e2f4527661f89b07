package models

import (
	"time"

	"github.com/lib/pq"

	"github.com/campusops/schedule-api/internal/timetable"
)

// ScheduleEntry is the persisted form of one weekly class time block.
// Times are stored in their display form ("9:00 AM") and parsed into the
// engine's clock model at the repository boundary.
type ScheduleEntry struct {
	ID             string         `db:"id" json:"id"`
	SectionID      string         `db:"section_id" json:"section_id"`
	SubjectID      string         `db:"subject_id" json:"subject_id"`
	SubjectCode    string         `db:"subject_code" json:"subject_code"`
	SubjectName    string         `db:"subject_name" json:"subject_name"`
	RoomID         string         `db:"room_id" json:"room_id"`
	RoomName       string         `db:"room_name" json:"room_name"`
	InstructorID   string         `db:"instructor_id" json:"instructor_id"`
	InstructorName string         `db:"instructor_name" json:"instructor_name"`
	StartTime      string         `db:"start_time" json:"start_time"`
	EndTime        string         `db:"end_time" json:"end_time"`
	Days           pq.StringArray `db:"days" json:"days"`
	Kind           string         `db:"kind" json:"kind"`
	IsLabComponent bool           `db:"is_lab_component" json:"is_lab_component"`
	LinkedEntryID  *string        `db:"linked_entry_id" json:"linked_entry_id,omitempty"`
	Color          string         `db:"color" json:"color"`
	ValidFrom      *time.Time     `db:"valid_from" json:"valid_from,omitempty"`
	ValidTo        *time.Time     `db:"valid_to" json:"valid_to,omitempty"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// ToTimetable converts the stored row into an engine entry, parsing the
// clock strings. Rows with unparsable times are data corruption and
// surface as errors rather than silently dropping.
func (s ScheduleEntry) ToTimetable() (timetable.ScheduleEntry, error) {
	start, err := timetable.ParseClock(s.StartTime)
	if err != nil {
		return timetable.ScheduleEntry{}, err
	}
	end, err := timetable.ParseClock(s.EndTime)
	if err != nil {
		return timetable.ScheduleEntry{}, err
	}

	days := make([]timetable.Weekday, 0, len(s.Days))
	for _, raw := range s.Days {
		day, err := timetable.ParseWeekday(raw)
		if err != nil {
			return timetable.ScheduleEntry{}, err
		}
		days = append(days, day)
	}

	linked := ""
	if s.LinkedEntryID != nil {
		linked = *s.LinkedEntryID
	}

	return timetable.ScheduleEntry{
		ID:             s.ID,
		SectionID:      s.SectionID,
		SubjectID:      s.SubjectID,
		SubjectCode:    s.SubjectCode,
		SubjectName:    s.SubjectName,
		RoomID:         s.RoomID,
		RoomName:       s.RoomName,
		InstructorID:   s.InstructorID,
		InstructorName: s.InstructorName,
		Interval:       timetable.TimeInterval{Start: start, End: end},
		Days:           days,
		Kind:           timetable.EntryKind(s.Kind),
		IsLabComponent: s.IsLabComponent,
		LinkedEntryID:  linked,
		Color:          s.Color,
		ValidFrom:      s.ValidFrom,
		ValidTo:        s.ValidTo,
	}, nil
}

// FromTimetable maps an engine entry back onto the stored row form.
func FromTimetable(e timetable.ScheduleEntry) ScheduleEntry {
	days := make(pq.StringArray, 0, len(e.Days))
	for _, day := range e.Days {
		days = append(days, string(day))
	}

	var linked *string
	if e.LinkedEntryID != "" {
		id := e.LinkedEntryID
		linked = &id
	}

	return ScheduleEntry{
		ID:             e.ID,
		SectionID:      e.SectionID,
		SubjectID:      e.SubjectID,
		SubjectCode:    e.SubjectCode,
		SubjectName:    e.SubjectName,
		RoomID:         e.RoomID,
		RoomName:       e.RoomName,
		InstructorID:   e.InstructorID,
		InstructorName: e.InstructorName,
		StartTime:      e.Interval.Start.String(),
		EndTime:        e.Interval.End.String(),
		Days:           days,
		Kind:           string(e.Kind),
		IsLabComponent: e.IsLabComponent,
		LinkedEntryID:  linked,
		Color:          e.Color,
		ValidFrom:      e.ValidFrom,
		ValidTo:        e.ValidTo,
	}
}

// ScheduleEntryFilter describes query params for listing schedule entries.
type ScheduleEntryFilter struct {
	SectionID    string
	SubjectID    string
	RoomID       string
	InstructorID string
	Day          string
	Kind         string
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}

// ConflictReport is the detection result returned to clients: the flat
// conflict list plus dimension buckets for display.
type ConflictReport struct {
	HasConflicts bool                                         `json:"has_conflicts"`
	Conflicts    []timetable.Conflict                         `json:"conflicts"`
	ByDimension  map[timetable.Dimension][]timetable.Conflict `json:"by_dimension,omitempty"`
}

// NewConflictReport builds a report from detector output.
func NewConflictReport(conflicts []timetable.Conflict) ConflictReport {
	report := ConflictReport{
		HasConflicts: len(conflicts) > 0,
		Conflicts:    conflicts,
	}
	if report.HasConflicts {
		report.ByDimension = timetable.GroupByDimension(conflicts)
	}
	return report
}
