package models

import "time"

// Subject represents an academic subject offered for scheduling.
type Subject struct {
	ID        string    `db:"id" json:"id"`
	Code      string    `db:"code" json:"code"`
	Name      string    `db:"name" json:"name"`
	Units     int       `db:"units" json:"units"`
	HasLab    bool      `db:"has_lab" json:"has_lab"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// SubjectFilter captures supported filters for listing subjects.
type SubjectFilter struct {
	HasLab    *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
