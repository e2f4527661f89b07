package models

// ScheduleConflictError is returned when a submission collides with
// existing entries and the caller did not ask to override.
type ScheduleConflictError struct {
	Report ConflictReport `json:"report"`
}

// Error implements the error interface.
func (e *ScheduleConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if n := len(e.Report.Conflicts); n == 1 {
		return e.Report.Conflicts[0].Message
	} else if n > 1 {
		return e.Report.Conflicts[0].Message + " (and others)"
	}
	return "schedule conflict"
}
