package models

import "time"

// Section represents a student cohort that attends classes together.
type Section struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Program   string    `db:"program" json:"program"`
	YearLevel int       `db:"year_level" json:"year_level"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// SectionFilter defines filter criteria for listing sections.
type SectionFilter struct {
	Program   string
	YearLevel int
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
