package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/campusops/schedule-api/internal/timetable"
	appErrors "github.com/campusops/schedule-api/pkg/errors"
)

// CalendarBlock is one rendered time block: the entry plus its grid
// geometry and display labels.
type CalendarBlock struct {
	Entry         timetable.ScheduleEntry `json:"entry"`
	Top           int                     `json:"top"`
	Height        int                     `json:"height"`
	TimeLabel     string                  `json:"time_label"`
	DurationLabel string                  `json:"duration_label"`
}

// DayColumn is one weekday's ordered blocks in the week view.
type DayColumn struct {
	Day    timetable.Weekday `json:"day"`
	Blocks []CalendarBlock   `json:"blocks"`
}

// WeekView is the full week grid: row labels plus seven day columns.
type WeekView struct {
	Slots []string    `json:"slots"`
	Days  []DayColumn `json:"days"`
}

// DayView lists a single date's blocks in start order.
type DayView struct {
	Date   time.Time       `json:"date"`
	Blocks []CalendarBlock `json:"blocks"`
}

// MonthCell is one month grid cell with its scheduled entry count.
type MonthCell struct {
	Date       time.Time `json:"date"`
	Day        int       `json:"day"`
	InMonth    bool      `json:"in_month"`
	EntryCount int       `json:"entry_count"`
}

// MonthView is the 42-cell month grid.
type MonthView struct {
	Year  int         `json:"year"`
	Month int         `json:"month"`
	Cells []MonthCell `json:"cells"`
}

// CalendarViewService projects the stored schedule into day, week and
// month calendar views.
type CalendarViewService struct {
	entries scheduleEntrySource
	cache   *CacheService
	logger  *zap.Logger
}

// NewCalendarViewService constructs the service.
func NewCalendarViewService(entries scheduleEntrySource, cache *CacheService, logger *zap.Logger) *CalendarViewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CalendarViewService{entries: entries, cache: cache, logger: logger}
}

// Week renders the weekly recurring grid, optionally scoped to a section.
func (s *CalendarViewService) Week(ctx context.Context, sectionID string) (*WeekView, error) {
	key := fmt.Sprintf("calendar:week:%s", sectionID)
	var cached WeekView
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	entries, err := s.load(ctx, sectionID)
	if err != nil {
		return nil, err
	}

	slots := make([]string, 0, timetable.SlotCount)
	for _, slot := range timetable.TimeSlots() {
		slots = append(slots, slot.String())
	}

	grouped := timetable.GroupByWeekday(entries)
	order := []timetable.Weekday{
		timetable.Monday, timetable.Tuesday, timetable.Wednesday,
		timetable.Thursday, timetable.Friday, timetable.Saturday, timetable.Sunday,
	}

	view := &WeekView{Slots: slots}
	for _, day := range order {
		column := DayColumn{Day: day, Blocks: make([]CalendarBlock, 0, len(grouped[day]))}
		for _, entry := range grouped[day] {
			column.Blocks = append(column.Blocks, newBlock(entry))
		}
		view.Days = append(view.Days, column)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, view, 0); err != nil {
			s.logger.Warn("calendar cache write failed", zap.Error(err))
		}
	}
	return view, nil
}

// Day renders the blocks active on one calendar date, honoring each
// entry's validity window.
func (s *CalendarViewService) Day(ctx context.Context, sectionID string, date time.Time) (*DayView, error) {
	entries, err := s.load(ctx, sectionID)
	if err != nil {
		return nil, err
	}

	view := &DayView{Date: date}
	for _, entry := range timetable.EntriesOnDate(entries, date) {
		view.Blocks = append(view.Blocks, newBlock(entry))
	}
	return view, nil
}

// Month renders the 42-cell month grid with per-date entry counts.
func (s *CalendarViewService) Month(ctx context.Context, sectionID string, year int, month time.Month) (*MonthView, error) {
	if month < time.January || month > time.December {
		return nil, appErrors.Clone(appErrors.ErrValidation, "month must be between 1 and 12")
	}

	entries, err := s.load(ctx, sectionID)
	if err != nil {
		return nil, err
	}

	view := &MonthView{Year: year, Month: int(month)}
	for _, cell := range timetable.MonthGrid(year, month) {
		view.Cells = append(view.Cells, MonthCell{
			Date:       cell.Date,
			Day:        cell.Day,
			InMonth:    cell.InMonth,
			EntryCount: len(timetable.EntriesOnDate(entries, cell.Date)),
		})
	}
	return view, nil
}

func (s *CalendarViewService) load(ctx context.Context, sectionID string) ([]timetable.ScheduleEntry, error) {
	records, err := s.entries.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule entries")
	}

	entries := make([]timetable.ScheduleEntry, 0, len(records))
	for _, record := range records {
		if sectionID != "" && record.SectionID != sectionID {
			continue
		}
		entry, err := record.ToTimetable()
		if err != nil {
			s.logger.Warn("skipping unparsable schedule entry", zap.String("entry_id", record.ID), zap.Error(err))
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func newBlock(entry timetable.ScheduleEntry) CalendarBlock {
	geo := timetable.Layout(entry)
	return CalendarBlock{
		Entry:         entry,
		Top:           geo.Top,
		Height:        geo.Height,
		TimeLabel:     entry.Interval.String(),
		DurationLabel: timetable.DurationLabel(entry.Interval),
	}
}
