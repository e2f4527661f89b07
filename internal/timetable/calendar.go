package timetable

import (
	"fmt"
	"sort"
	"time"
)

// Week view geometry. The grid spans 7:00 AM through 8:30 PM in half-hour
// rows of a fixed pixel height; entries render as absolutely positioned
// blocks whose top and height derive from their slot indices.
const (
	slotMinutes      = 30
	gridStartMinutes = 7 * 60

	SlotCount      = 28
	SlotHeight     = 60
	MinBlockHeight = 60
)

// TimeSlots returns the grid's row boundaries, 7:00 AM through 8:30 PM.
func TimeSlots() []TimeOfDay {
	slots := make([]TimeOfDay, SlotCount)
	for i := range slots {
		slots[i] = timeFromMinutes(gridStartMinutes + i*slotMinutes)
	}
	return slots
}

// BlockGeometry positions an entry block inside the week grid, in pixels.
type BlockGeometry struct {
	Top    int `json:"top"`
	Height int `json:"height"`
}

// Layout computes an entry's block geometry. A start before the grid or
// between rows snaps to the nearest lower row; an end that does not land
// on a row boundary defaults the span to a single row. Height never drops
// below one row.
func Layout(entry ScheduleEntry) BlockGeometry {
	start := entry.Interval.Start.Minutes() - gridStartMinutes
	if start < 0 {
		start = 0
	}
	end := entry.Interval.End.Minutes() - gridStartMinutes

	startIdx := start / slotMinutes
	if startIdx > SlotCount-1 {
		startIdx = SlotCount - 1
	}
	endIdx := startIdx + 1
	if end > 0 && end%slotMinutes == 0 {
		endIdx = end / slotMinutes
		if endIdx > SlotCount {
			endIdx = SlotCount
		}
		if endIdx <= startIdx {
			endIdx = startIdx + 1
		}
	}

	height := (endIdx - startIdx) * SlotHeight
	if height < MinBlockHeight {
		height = MinBlockHeight
	}
	return BlockGeometry{Top: startIdx * SlotHeight, Height: height}
}

// GroupByWeekday buckets entries under each weekday they meet on, ordered
// by start time within the day.
func GroupByWeekday(entries []ScheduleEntry) map[Weekday][]ScheduleEntry {
	out := make(map[Weekday][]ScheduleEntry)
	for _, entry := range entries {
		for _, day := range entry.Days {
			out[day] = append(out[day], entry)
		}
	}
	for day, bucket := range out {
		sortEntriesByStart(bucket)
		out[day] = bucket
	}
	return out
}

func sortEntriesByStart(entries []ScheduleEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Interval.Start.Minutes() < entries[j].Interval.Start.Minutes()
	})
}

// DurationLabel renders an entry length for display: "30 min", "1 hr",
// "2 hr 30 min".
func DurationLabel(interval TimeInterval) string {
	total := interval.DurationMinutes()
	if total <= 0 {
		return "0 min"
	}
	hours, minutes := total/60, total%60
	switch {
	case hours == 0:
		return fmt.Sprintf("%d min", minutes)
	case minutes == 0:
		return fmt.Sprintf("%d hr", hours)
	default:
		return fmt.Sprintf("%d hr %d min", hours, minutes)
	}
}

// EntriesOnDate filters entries meeting on the given calendar date: the
// weekday must be selected and the date must fall inside the entry's
// validity window, bounds inclusive.
func EntriesOnDate(entries []ScheduleEntry, date time.Time) []ScheduleEntry {
	var out []ScheduleEntry
	for _, entry := range entries {
		if entry.ActiveOn(date) {
			out = append(out, entry)
		}
	}
	sortEntriesByStart(out)
	return out
}

// MonthCell is one cell of the 6x7 month grid.
type MonthCell struct {
	Date    time.Time `json:"date"`
	Day     int       `json:"day"`
	InMonth bool      `json:"in_month"`
}

// MonthGrid lays out a month as 42 cells starting on Monday, padded with
// the neighboring months' trailing and leading days.
func MonthGrid(year int, month time.Month) []MonthCell {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)

	// time.Weekday is Sunday-based; shift so Monday is column zero.
	lead := (int(first.Weekday()) + 6) % 7

	cells := make([]MonthCell, 0, 42)
	cursor := first.AddDate(0, 0, -lead)
	for i := 0; i < 42; i++ {
		cells = append(cells, MonthCell{
			Date:    cursor,
			Day:     cursor.Day(),
			InMonth: cursor.Month() == month && cursor.Year() == year,
		})
		cursor = cursor.AddDate(0, 0, 1)
	}
	return cells
}
