package models

import (
	"time"

	"github.com/campusops/schedule-api/internal/timetable"
)

// RoomType constants for the catalog.
const (
	RoomTypeLecture    = "lecture"
	RoomTypeLaboratory = "laboratory"
)

// Room represents a bookable room in the catalog.
type Room struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Floor     string    `db:"floor" json:"floor"`
	Type      string    `db:"type" json:"type"`
	Capacity  int       `db:"capacity" json:"capacity"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ToTimetable projects the catalog row into the engine's room view.
func (r Room) ToTimetable() timetable.Room {
	return timetable.Room{
		ID:     r.ID,
		Name:   r.Name,
		Floor:  r.Floor,
		Type:   r.Type,
		Status: timetable.RoomStatus(r.Status),
	}
}

// RoomFilter captures filtering options for listing rooms.
type RoomFilter struct {
	Type      string
	Floor     string
	Status    string
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// RoomCSVRow is one line of the bulk import file.
type RoomCSVRow struct {
	Name     string `csv:"name"`
	Floor    string `csv:"floor"`
	Type     string `csv:"type"`
	Capacity int    `csv:"capacity"`
	Status   string `csv:"status"`
}

// RoomImportResult summarises a bulk import run.
type RoomImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}
