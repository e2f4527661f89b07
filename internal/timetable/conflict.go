package timetable

import "fmt"

// Dimension is the resource axis along which a conflict is classified.
type Dimension string

const (
	DimensionRoom          Dimension = "room"
	DimensionInstructor    Dimension = "instructor"
	DimensionSection       Dimension = "section"
	DimensionLabRoom       Dimension = "labRoom"
	DimensionLabInstructor Dimension = "labInstructor"
	DimensionSelf          Dimension = "self"
)

// Conflict describes one collision between a candidate and an existing
// entry. Conflicts are data handed to a human, never errors: the engine
// reports, the caller decides whether to override and persist anyway.
type Conflict struct {
	ID                 string    `json:"id"`
	ConflictingEntryID string    `json:"conflicting_entry_id,omitempty"`
	Dimension          Dimension `json:"dimension"`
	SubjectLabel       string    `json:"subject"`
	Message            string    `json:"message"`
}

// CandidatePair is the unit submitted from the schedule form: a lecture
// entry plus its optional laboratory component.
type CandidatePair struct {
	Lecture ScheduleEntry
	Lab     *ScheduleEntry
}

// IDSet holds entry ids excluded from detection, typically the entry (and
// linked lab) currently being edited.
type IDSet map[string]struct{}

// NewIDSet builds an IDSet, skipping empty ids.
func NewIDSet(ids ...string) IDSet {
	set := make(IDSet, len(ids))
	for _, id := range ids {
		if id != "" {
			set[id] = struct{}{}
		}
	}
	return set
}

// DetectConflicts evaluates a candidate pair against the existing entry set
// and returns every detected conflict, classified by dimension and
// deduplicated by (existing entry, dimension). The detector never consults
// validity windows: weekly recurrences conflict session-wide. Ordering of
// the result is unspecified; callers group by dimension for display.
func DetectConflicts(candidate CandidatePair, existing []ScheduleEntry, exclude IDSet) []Conflict {
	conflicts := scanExisting(candidate.Lecture, existing, exclude, false)

	if candidate.Lab != nil {
		lab := *candidate.Lab
		conflicts = append(conflicts, scanExisting(lab, existing, exclude, true)...)

		// Lecture vs its own lab: only the shared-instructor case is a
		// conflict, a section is expected to attend both components.
		if DaysOverlap(candidate.Lecture.Days, lab.Days) &&
			candidate.Lecture.Interval.Overlaps(lab.Interval) &&
			candidate.Lecture.InstructorID != "" &&
			candidate.Lecture.InstructorID == lab.InstructorID {
			conflicts = append(conflicts, Conflict{
				ID:           "self-conflict",
				Dimension:    DimensionSelf,
				SubjectLabel: candidate.Lecture.SubjectName,
				Message:      "the same instructor cannot teach lecture and laboratory sessions at overlapping times",
			})
		}
	}

	return dedupeConflicts(conflicts)
}

// scanExisting runs the per-entry room/instructor/section checks for one
// candidate component. The laboratory pass swaps in the lab dimensions and
// skips the section check.
func scanExisting(candidate ScheduleEntry, existing []ScheduleEntry, exclude IDSet, lab bool) []Conflict {
	if len(candidate.Days) == 0 {
		return nil
	}

	roomDim, instructorDim := DimensionRoom, DimensionInstructor
	roomLabel, instructorLabel := "Room", "Instructor"
	if lab {
		roomDim, instructorDim = DimensionLabRoom, DimensionLabInstructor
		roomLabel, instructorLabel = "Laboratory room", "Laboratory instructor"
	}

	var out []Conflict
	for _, entry := range existing {
		if _, skip := exclude[entry.ID]; skip {
			continue
		}
		if !DaysOverlap(candidate.Days, entry.Days) {
			continue
		}
		if !candidate.Interval.Overlaps(entry.Interval) {
			continue
		}

		span := entry.Interval.String()

		if candidate.RoomID != "" && candidate.RoomID == entry.RoomID {
			out = append(out, Conflict{
				ID:                 entry.ID + "-" + string(roomDim),
				ConflictingEntryID: entry.ID,
				Dimension:          roomDim,
				SubjectLabel:       entry.SubjectName,
				Message:            fmt.Sprintf("%s %s is already booked for %s (%s)", roomLabel, entry.RoomName, entry.SubjectCode, span),
			})
		}

		if candidate.InstructorID != "" && candidate.InstructorID == entry.InstructorID {
			out = append(out, Conflict{
				ID:                 entry.ID + "-" + string(instructorDim),
				ConflictingEntryID: entry.ID,
				Dimension:          instructorDim,
				SubjectLabel:       entry.SubjectName,
				Message:            fmt.Sprintf("%s %s is already teaching %s (%s)", instructorLabel, entry.InstructorName, entry.SubjectCode, span),
			})
		}

		// A section cannot sit in two classes at once. Laboratory
		// components of other subjects are skipped so a lecture and its
		// own lab do not double-report through their shared section.
		if !lab && !entry.IsLabComponent && candidate.SectionID != "" && candidate.SectionID == entry.SectionID {
			out = append(out, Conflict{
				ID:                 entry.ID + "-" + string(DimensionSection),
				ConflictingEntryID: entry.ID,
				Dimension:          DimensionSection,
				SubjectLabel:       entry.SubjectName,
				Message:            fmt.Sprintf("this section already has %s scheduled at this time (%s)", entry.SubjectCode, span),
			})
		}
	}
	return out
}

// dedupeConflicts drops repeat (entry, dimension) pairs, keeping the first
// occurrence and its message.
func dedupeConflicts(conflicts []Conflict) []Conflict {
	if len(conflicts) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(conflicts))
	out := conflicts[:0]
	for _, c := range conflicts {
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		out = append(out, c)
	}
	return out
}

// GroupByDimension buckets conflicts for display.
func GroupByDimension(conflicts []Conflict) map[Dimension][]Conflict {
	out := make(map[Dimension][]Conflict)
	for _, c := range conflicts {
		out[c.Dimension] = append(out[c.Dimension], c)
	}
	return out
}
