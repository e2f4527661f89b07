package timetable

import (
	"sort"
	"strconv"
	"strings"
)

// RoomStatus marks whether a room can be offered for booking at all.
type RoomStatus string

const (
	RoomAvailable   RoomStatus = "available"
	RoomMaintenance RoomStatus = "maintenance"
	RoomRetired     RoomStatus = "retired"
)

// Room is the engine's view of a bookable room. Capacity and equipment
// live on the persistence model; availability only needs identity, floor
// and type.
type Room struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	Floor  string     `json:"floor"`
	Type   string     `json:"type"`
	Status RoomStatus `json:"status"`
}

// AvailableRooms filters the room catalog down to rooms of the requested
// type that are free for every requested day over the given interval.
// An empty day selection or a zero interval yields no results rather than
// "everything is free".
func AvailableRooms(all []Room, roomType string, days []Weekday, interval TimeInterval, existing []ScheduleEntry) []Room {
	if len(days) == 0 || interval.Start.Minutes() == interval.End.Minutes() {
		return nil
	}

	var out []Room
	for _, room := range all {
		if room.Status != RoomAvailable {
			continue
		}
		if roomType != "" && !strings.EqualFold(room.Type, roomType) {
			continue
		}
		if roomBooked(room.ID, days, interval, existing) {
			continue
		}
		out = append(out, room)
	}
	return out
}

// roomBooked reports whether any existing entry occupies the room on an
// overlapping day and time.
func roomBooked(roomID string, days []Weekday, interval TimeInterval, existing []ScheduleEntry) bool {
	for _, entry := range existing {
		if entry.RoomID != roomID {
			continue
		}
		if !DaysOverlap(days, entry.Days) {
			continue
		}
		if interval.Overlaps(entry.Interval) {
			return true
		}
	}
	return false
}

// FloorGroup is a floor's rooms, ordered for display.
type FloorGroup struct {
	Floor string `json:"floor"`
	Rooms []Room `json:"rooms"`
}

// GroupRoomsByFloor buckets rooms by floor. Numeric floors sort ascending
// and come before named floors, which sort alphabetically. Rooms within a
// floor sort by name, numerically where the names are numbers.
func GroupRoomsByFloor(rooms []Room) []FloorGroup {
	byFloor := make(map[string][]Room)
	for _, room := range rooms {
		byFloor[room.Floor] = append(byFloor[room.Floor], room)
	}

	floors := make([]string, 0, len(byFloor))
	for floor := range byFloor {
		floors = append(floors, floor)
	}
	sort.Slice(floors, func(i, j int) bool {
		return lessNumericAware(floors[i], floors[j])
	})

	out := make([]FloorGroup, 0, len(floors))
	for _, floor := range floors {
		group := byFloor[floor]
		sort.Slice(group, func(i, j int) bool {
			return lessNumericAware(group[i].Name, group[j].Name)
		})
		out = append(out, FloorGroup{Floor: floor, Rooms: group})
	}
	return out
}

// lessNumericAware orders purely numeric strings by value and places them
// before non-numeric ones, which fall back to case-insensitive order.
func lessNumericAware(a, b string) bool {
	an, aerr := strconv.Atoi(a)
	bn, berr := strconv.Atoi(b)
	switch {
	case aerr == nil && berr == nil:
		return an < bn
	case aerr == nil:
		return true
	case berr == nil:
		return false
	default:
		return strings.ToLower(a) < strings.ToLower(b)
	}
}
