package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campusops/schedule-api/internal/models"
	"github.com/campusops/schedule-api/internal/timetable"
	appErrors "github.com/campusops/schedule-api/pkg/errors"
)

type roomCatalog interface {
	ListAll(ctx context.Context) ([]models.Room, error)
}

type scheduleEntrySource interface {
	ListAll(ctx context.Context) ([]models.ScheduleEntry, error)
}

// AvailabilityRequest describes a room availability query: which rooms of
// a given type are free on every requested day over the requested span.
type AvailabilityRequest struct {
	RoomType        string     `json:"room_type"`
	Days            []string   `json:"days" validate:"required,min=1"`
	StartTime       TimeFields `json:"start_time" validate:"required"`
	EndTime         TimeFields `json:"end_time" validate:"required"`
	SelectedRoomID  string     `json:"selected_room_id"`
	ExcludeEntryIDs []string   `json:"exclude_entry_ids"`
}

// AvailabilityResult lists the free rooms, grouped by floor for display.
// SelectionCleared is set when the caller's previously selected room is no
// longer free under the new day/time inputs.
type AvailabilityResult struct {
	Rooms            []timetable.Room       `json:"rooms"`
	Floors           []timetable.FloorGroup `json:"floors"`
	SelectionCleared bool                   `json:"selection_cleared"`
	FromCache        bool                   `json:"-"`
}

// AvailabilityService answers room availability queries over the live
// schedule, with a short-lived cache in front.
type AvailabilityService struct {
	rooms     roomCatalog
	entries   scheduleEntrySource
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAvailabilityService constructs the service.
func NewAvailabilityService(rooms roomCatalog, entries scheduleEntrySource, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *AvailabilityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityService{rooms: rooms, entries: entries, cache: cache, validator: validate, logger: logger}
}

// Query returns rooms free over the requested days and span. Entries named
// in ExcludeEntryIDs are ignored, so an edit does not see its own booking.
func (s *AvailabilityService) Query(ctx context.Context, req AvailabilityRequest) (*AvailabilityResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability query")
	}

	start, err := timetable.ParseTimeOfDay(req.StartTime.Hour, req.StartTime.Minute, req.StartTime.Period)
	if err != nil {
		return nil, err
	}
	end, err := timetable.ParseTimeOfDay(req.EndTime.Hour, req.EndTime.Minute, req.EndTime.Period)
	if err != nil {
		return nil, err
	}
	interval := timetable.TimeInterval{Start: start, End: end}
	if err := interval.Validate(); err != nil {
		return nil, err
	}

	days := make([]timetable.Weekday, 0, len(req.Days))
	for _, raw := range req.Days {
		day, err := timetable.ParseWeekday(raw)
		if err != nil {
			return nil, err
		}
		days = append(days, day)
	}

	key := availabilityCacheKey(req.RoomType, days, interval, req.ExcludeEntryIDs)
	var result AvailabilityResult
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, key, &result); err == nil && hit {
			result.SelectionCleared = selectionCleared(req.SelectedRoomID, result.Rooms)
			result.FromCache = true
			return &result, nil
		}
	}

	catalog, err := s.rooms.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room catalog")
	}
	records, err := s.entries.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule entries")
	}

	exclude := timetable.NewIDSet(req.ExcludeEntryIDs...)
	existing := make([]timetable.ScheduleEntry, 0, len(records))
	for _, record := range records {
		if _, skip := exclude[record.ID]; skip {
			continue
		}
		entry, err := record.ToTimetable()
		if err != nil {
			s.logger.Warn("skipping unparsable schedule entry", zap.String("entry_id", record.ID), zap.Error(err))
			continue
		}
		existing = append(existing, entry)
	}

	engineRooms := make([]timetable.Room, 0, len(catalog))
	for _, room := range catalog {
		engineRooms = append(engineRooms, room.ToTimetable())
	}

	free := timetable.AvailableRooms(engineRooms, req.RoomType, days, interval, existing)
	result = AvailabilityResult{
		Rooms:  free,
		Floors: timetable.GroupRoomsByFloor(free),
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, result, 0); err != nil {
			s.logger.Warn("availability cache write failed", zap.Error(err))
		}
	}

	result.SelectionCleared = selectionCleared(req.SelectedRoomID, free)
	return &result, nil
}

func selectionCleared(selectedID string, free []timetable.Room) bool {
	if selectedID == "" {
		return false
	}
	for _, room := range free {
		if room.ID == selectedID {
			return false
		}
	}
	return true
}

func availabilityCacheKey(roomType string, days []timetable.Weekday, interval timetable.TimeInterval, exclude []string) string {
	dayTokens := make([]string, 0, len(days))
	for _, day := range days {
		dayTokens = append(dayTokens, string(day))
	}
	sort.Strings(dayTokens)

	excluded := append([]string(nil), exclude...)
	sort.Strings(excluded)

	return fmt.Sprintf("availability:%s:%s:%d-%d:%s",
		strings.ToLower(roomType),
		strings.Join(dayTokens, ","),
		interval.Start.Minutes(),
		interval.End.Minutes(),
		strings.Join(excluded, ","))
}
