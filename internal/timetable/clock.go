// Package timetable implements the class-scheduling engine: the 12-hour
// time model, weekly recurring schedule entries, conflict detection, room
// availability filtering, and calendar layout projection. Every function in
// this package is a pure computation over in-memory collections; persistence
// and transport live in the surrounding service layer.
package timetable

import (
	"fmt"
	"strconv"
	"strings"

	appErrors "github.com/campusops/schedule-api/pkg/errors"
)

// Meridiem is the AM/PM half of the 12-hour dial.
type Meridiem string

const (
	AM Meridiem = "AM"
	PM Meridiem = "PM"
)

// TimeOfDay is a clock time on the 12-hour dial.
type TimeOfDay struct {
	Hour   int      `json:"hour"`
	Minute int      `json:"minute"`
	Period Meridiem `json:"period"`
}

// ParseTimeOfDay builds a TimeOfDay from raw form fields. Hours outside 1-12,
// minutes outside 0-59 and unknown periods surface INVALID_TIME_FORMAT.
func ParseTimeOfDay(hourStr, minuteStr, period string) (TimeOfDay, error) {
	hour, err := strconv.Atoi(strings.TrimSpace(hourStr))
	if err != nil || hour < 1 || hour > 12 {
		return TimeOfDay{}, appErrors.Clone(appErrors.ErrInvalidTimeFormat, fmt.Sprintf("hour %q must be between 1 and 12", hourStr))
	}
	minute, err := strconv.Atoi(strings.TrimSpace(minuteStr))
	if err != nil || minute < 0 || minute > 59 {
		return TimeOfDay{}, appErrors.Clone(appErrors.ErrInvalidTimeFormat, fmt.Sprintf("minute %q must be between 0 and 59", minuteStr))
	}
	switch Meridiem(strings.ToUpper(strings.TrimSpace(period))) {
	case AM:
		return TimeOfDay{Hour: hour, Minute: minute, Period: AM}, nil
	case PM:
		return TimeOfDay{Hour: hour, Minute: minute, Period: PM}, nil
	default:
		return TimeOfDay{}, appErrors.Clone(appErrors.ErrInvalidTimeFormat, fmt.Sprintf("period %q must be AM or PM", period))
	}
}

// ParseClock parses the stored display form, e.g. "9:00 AM".
func ParseClock(raw string) (TimeOfDay, error) {
	parts := strings.Fields(strings.TrimSpace(raw))
	if len(parts) != 2 {
		return TimeOfDay{}, appErrors.Clone(appErrors.ErrInvalidTimeFormat, fmt.Sprintf("time %q must look like \"9:00 AM\"", raw))
	}
	clock := strings.SplitN(parts[0], ":", 2)
	if len(clock) != 2 {
		return TimeOfDay{}, appErrors.Clone(appErrors.ErrInvalidTimeFormat, fmt.Sprintf("time %q must look like \"9:00 AM\"", raw))
	}
	return ParseTimeOfDay(clock[0], clock[1], parts[1])
}

// Minutes converts to minutes past midnight. 12 AM normalizes to 0, 12 PM
// stays at noon, every other PM hour shifts by twelve.
func (t TimeOfDay) Minutes() int {
	hour := t.Hour
	if t.Period == PM && t.Hour != 12 {
		hour += 12
	}
	if t.Period == AM && t.Hour == 12 {
		hour = 0
	}
	return hour*60 + t.Minute
}

// Compare orders two times chronologically: -1, 0 or 1.
func (t TimeOfDay) Compare(other TimeOfDay) int {
	a, b := t.Minutes(), other.Minutes()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// String renders the display form, e.g. "9:00 AM". Display only; ordering
// always goes through Minutes.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%d:%02d %s", t.Hour, t.Minute, t.Period)
}

// eveningCutoffMinutes is 8:30 PM, the latest end time policy allows.
const eveningCutoffMinutes = 20*60 + 30

// WithinEveningCutoff reports whether the time is at or before 8:30 PM.
func (t TimeOfDay) WithinEveningCutoff() bool {
	return t.Minutes() <= eveningCutoffMinutes
}

// timeFromMinutes is the inverse of Minutes for grid-aligned values.
func timeFromMinutes(total int) TimeOfDay {
	hour24 := total / 60
	minute := total % 60
	period := AM
	hour := hour24
	if hour24 >= 12 {
		period = PM
	}
	if hour24 > 12 {
		hour = hour24 - 12
	}
	if hour24 == 0 {
		hour = 12
	}
	return TimeOfDay{Hour: hour, Minute: minute, Period: period}
}

// TimeInterval is the [start, end) span of one entry.
type TimeInterval struct {
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

// Overlaps reports whether two intervals collide. The base rule is half-open
// intersection; intervals sharing a start or an end instant also collide,
// while back-to-back intervals do not. The same-instant rule deliberately
// over-reports rather than missing a collision.
func (iv TimeInterval) Overlaps(other TimeInterval) bool {
	aStart, aEnd := iv.Start.Minutes(), iv.End.Minutes()
	bStart, bEnd := other.Start.Minutes(), other.End.Minutes()
	if aStart == bStart || aEnd == bEnd {
		return true
	}
	return aStart < bEnd && aEnd > bStart
}

// DurationMinutes is the total span length in minutes.
func (iv TimeInterval) DurationMinutes() int {
	return iv.End.Minutes() - iv.Start.Minutes()
}

// Validate enforces the invariants an interval must satisfy before its entry
// reaches conflict detection: end strictly after start, end no later than
// 8:30 PM.
func (iv TimeInterval) Validate() error {
	if iv.End.Minutes() <= iv.Start.Minutes() {
		return appErrors.Clone(appErrors.ErrEndBeforeStart, "")
	}
	if !iv.End.WithinEveningCutoff() {
		return appErrors.Clone(appErrors.ErrLateEndTime, "")
	}
	return nil
}

// String renders the interval span, e.g. "9:00 AM - 10:30 AM".
func (iv TimeInterval) String() string {
	return iv.Start.String() + " - " + iv.End.String()
}
