package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campusops/schedule-api/internal/models"
	"github.com/campusops/schedule-api/internal/timetable"
	appErrors "github.com/campusops/schedule-api/pkg/errors"
)

type scheduleEntryRepository interface {
	List(ctx context.Context, filter models.ScheduleEntryFilter) ([]models.ScheduleEntry, int, error)
	ListAll(ctx context.Context) ([]models.ScheduleEntry, error)
	FindByID(ctx context.Context, id string) (*models.ScheduleEntry, error)
	FindLinked(ctx context.Context, entryID string) (*models.ScheduleEntry, error)
	Create(ctx context.Context, entry *models.ScheduleEntry) error
	CreatePair(ctx context.Context, lecture, lab *models.ScheduleEntry) error
	Update(ctx context.Context, entry *models.ScheduleEntry) error
	Delete(ctx context.Context, id string) error
}

type subjectReader interface {
	FindByID(ctx context.Context, id string) (*models.Subject, error)
}

type roomReader interface {
	FindByID(ctx context.Context, id string) (*models.Room, error)
}

type instructorReader interface {
	FindByID(ctx context.Context, id string) (*models.Instructor, error)
}

type scheduleCacheInvalidator interface {
	Invalidate(ctx context.Context, pattern string) error
}

// TimeFields carries one clock time as submitted from the schedule form.
type TimeFields struct {
	Hour   string `json:"hour" validate:"required"`
	Minute string `json:"minute" validate:"required"`
	Period string `json:"period" validate:"required"`
}

// EntryPayload describes one time block of a schedule submission.
type EntryPayload struct {
	RoomID       string     `json:"room_id" validate:"required"`
	InstructorID string     `json:"instructor_id" validate:"required"`
	StartTime    TimeFields `json:"start_time" validate:"required"`
	EndTime      TimeFields `json:"end_time" validate:"required"`
	Days         []string   `json:"days" validate:"required,min=1"`
}

// CreateScheduleRequest is the payload for creating a schedule entry,
// optionally with a laboratory component.
type CreateScheduleRequest struct {
	SectionID string        `json:"section_id" validate:"required"`
	SubjectID string        `json:"subject_id" validate:"required"`
	Color     string        `json:"color"`
	Lecture   EntryPayload  `json:"lecture" validate:"required"`
	Lab       *EntryPayload `json:"lab,omitempty"`
	Force     bool          `json:"force"`
}

// UpdateScheduleRequest modifies one existing entry in place.
type UpdateScheduleRequest struct {
	SectionID string       `json:"section_id" validate:"required"`
	SubjectID string       `json:"subject_id" validate:"required"`
	Color     string       `json:"color"`
	Entry     EntryPayload `json:"entry" validate:"required"`
	Force     bool         `json:"force"`
}

// CreateScheduleResult returns the persisted pair and any conflicts the
// caller chose to override.
type CreateScheduleResult struct {
	Lecture    models.ScheduleEntry  `json:"lecture"`
	Lab        *models.ScheduleEntry `json:"lab,omitempty"`
	Overridden []timetable.Conflict  `json:"overridden_conflicts,omitempty"`
}

// ScheduleService coordinates schedule entry CRUD around the conflict
// detection engine.
type ScheduleService struct {
	repo        scheduleEntryRepository
	subjects    subjectReader
	rooms       roomReader
	instructors instructorReader
	cache       scheduleCacheInvalidator
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewScheduleService instantiates ScheduleService.
func NewScheduleService(repo scheduleEntryRepository, subjects subjectReader, rooms roomReader, instructors instructorReader, cache scheduleCacheInvalidator, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{
		repo:        repo,
		subjects:    subjects,
		rooms:       rooms,
		instructors: instructors,
		cache:       cache,
		validator:   validate,
		logger:      logger,
	}
}

// List returns schedule entries with pagination metadata.
func (s *ScheduleService) List(ctx context.Context, filter models.ScheduleEntryFilter) ([]models.ScheduleEntry, *models.Pagination, error) {
	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedule entries")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return entries, pagination, nil
}

// Get loads one schedule entry.
func (s *ScheduleService) Get(ctx context.Context, id string) (*models.ScheduleEntry, error) {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule entry not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule entry")
	}
	return entry, nil
}

// Create validates the submission, runs conflict detection against the
// whole schedule and persists the entry, atomically with its laboratory
// component when present. Conflicts block persistence unless Force is set.
func (s *ScheduleService) Create(ctx context.Context, req CreateScheduleRequest) (*CreateScheduleResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}

	pair, err := s.buildPair(ctx, req)
	if err != nil {
		return nil, err
	}

	existing, err := s.loadEngineEntries(ctx)
	if err != nil {
		return nil, err
	}

	conflicts := timetable.DetectConflicts(*pair, existing, nil)
	if len(conflicts) > 0 && !req.Force {
		return nil, conflictError(conflicts)
	}

	lecture := models.FromTimetable(pair.Lecture)
	result := &CreateScheduleResult{Overridden: nil}
	if req.Force {
		result.Overridden = conflicts
	}

	if pair.Lab != nil {
		lab := models.FromTimetable(*pair.Lab)
		if err := s.repo.CreatePair(ctx, &lecture, &lab); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create schedule pair")
		}
		result.Lab = &lab
	} else {
		if err := s.repo.Create(ctx, &lecture); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create schedule entry")
		}
	}
	result.Lecture = lecture

	s.invalidateCaches(ctx)
	s.logger.Info("schedule entry created",
		zap.String("entry_id", lecture.ID),
		zap.String("section_id", lecture.SectionID),
		zap.Bool("forced", req.Force && len(conflicts) > 0))
	return result, nil
}

// Update modifies an entry in place. The entry itself and its linked
// laboratory component are excluded from conflict detection.
func (s *ScheduleService) Update(ctx context.Context, id string, req UpdateScheduleRequest) (*models.ScheduleEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	entry, err := s.buildEntry(ctx, req.SectionID, req.SubjectID, req.Color, req.Entry, timetable.EntryKind(current.Kind), current.IsLabComponent)
	if err != nil {
		return nil, err
	}
	entry.ID = current.ID
	if current.LinkedEntryID != nil {
		entry.LinkedEntryID = *current.LinkedEntryID
	}
	entry.ValidFrom = current.ValidFrom
	entry.ValidTo = current.ValidTo

	existing, err := s.loadEngineEntries(ctx)
	if err != nil {
		return nil, err
	}

	exclude := []string{current.ID}
	if current.LinkedEntryID != nil {
		exclude = append(exclude, *current.LinkedEntryID)
	}
	if linked, err := s.repo.FindLinked(ctx, current.ID); err == nil && linked != nil {
		exclude = append(exclude, linked.ID)
	}

	conflicts := timetable.DetectConflicts(timetable.CandidatePair{Lecture: entry}, existing, timetable.NewIDSet(exclude...))
	if len(conflicts) > 0 && !req.Force {
		return nil, conflictError(conflicts)
	}

	record := models.FromTimetable(entry)
	record.CreatedAt = current.CreatedAt
	if err := s.repo.Update(ctx, &record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update schedule entry")
	}

	s.invalidateCaches(ctx)
	s.logger.Info("schedule entry updated", zap.String("entry_id", record.ID))
	return &record, nil
}

// Delete removes one entry. A linked laboratory component is detached,
// never cascade-deleted.
func (s *ScheduleService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete schedule entry")
	}
	s.invalidateCaches(ctx)
	s.logger.Info("schedule entry deleted", zap.String("entry_id", id))
	return nil
}

// CheckConflicts runs detection for a submission without persisting
// anything, the dry-run behind the form's live conflict panel.
func (s *ScheduleService) CheckConflicts(ctx context.Context, req CreateScheduleRequest, excludeIDs ...string) (*models.ConflictReport, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}

	pair, err := s.buildPair(ctx, req)
	if err != nil {
		return nil, err
	}

	existing, err := s.loadEngineEntries(ctx)
	if err != nil {
		return nil, err
	}

	report := models.NewConflictReport(timetable.DetectConflicts(*pair, existing, timetable.NewIDSet(excludeIDs...)))
	return &report, nil
}

func (s *ScheduleService) buildPair(ctx context.Context, req CreateScheduleRequest) (*timetable.CandidatePair, error) {
	lecture, err := s.buildEntry(ctx, req.SectionID, req.SubjectID, req.Color, req.Lecture, timetable.KindLecture, false)
	if err != nil {
		return nil, err
	}

	pair := &timetable.CandidatePair{Lecture: lecture}
	if req.Lab != nil {
		lab, err := s.buildEntry(ctx, req.SectionID, req.SubjectID, req.Color, *req.Lab, timetable.KindLaboratory, true)
		if err != nil {
			return nil, err
		}
		lab.Color = lecture.Color
		pair.Lab = &lab
	}
	return pair, nil
}

func (s *ScheduleService) buildEntry(ctx context.Context, sectionID, subjectID, color string, payload EntryPayload, kind timetable.EntryKind, labComponent bool) (timetable.ScheduleEntry, error) {
	start, err := timetable.ParseTimeOfDay(payload.StartTime.Hour, payload.StartTime.Minute, payload.StartTime.Period)
	if err != nil {
		return timetable.ScheduleEntry{}, err
	}
	end, err := timetable.ParseTimeOfDay(payload.EndTime.Hour, payload.EndTime.Minute, payload.EndTime.Period)
	if err != nil {
		return timetable.ScheduleEntry{}, err
	}

	days := make([]timetable.Weekday, 0, len(payload.Days))
	for _, raw := range payload.Days {
		day, err := timetable.ParseWeekday(raw)
		if err != nil {
			return timetable.ScheduleEntry{}, err
		}
		days = append(days, day)
	}

	subject, err := s.subjects.FindByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return timetable.ScheduleEntry{}, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return timetable.ScheduleEntry{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}
	room, err := s.rooms.FindByID(ctx, payload.RoomID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return timetable.ScheduleEntry{}, appErrors.Clone(appErrors.ErrNotFound, "room not found")
		}
		return timetable.ScheduleEntry{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room")
	}
	instructor, err := s.instructors.FindByID(ctx, payload.InstructorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return timetable.ScheduleEntry{}, appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
		}
		return timetable.ScheduleEntry{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructor")
	}

	entry := timetable.ScheduleEntry{
		SectionID:      sectionID,
		SubjectID:      subject.ID,
		SubjectCode:    subject.Code,
		SubjectName:    subject.Name,
		RoomID:         room.ID,
		RoomName:       room.Name,
		InstructorID:   instructor.ID,
		InstructorName: instructor.FullName,
		Interval:       timetable.TimeInterval{Start: start, End: end},
		Days:           days,
		Kind:           kind,
		IsLabComponent: labComponent,
		Color:          color,
	}
	if entry.Color == "" {
		entry.Color = s.colorFor(ctx, subject.ID)
	}
	if err := entry.Validate(); err != nil {
		return timetable.ScheduleEntry{}, err
	}
	return entry, nil
}

// colorFor keeps one palette color per subject: reuse the subject's
// existing color, otherwise pick the next unused slot.
func (s *ScheduleService) colorFor(ctx context.Context, subjectID string) string {
	palette := timetable.Palette()
	entries, err := s.repo.ListAll(ctx)
	if err != nil {
		return palette[0]
	}

	used := make(map[string]bool)
	for _, entry := range entries {
		if entry.SubjectID == subjectID && timetable.ValidColor(entry.Color) {
			return entry.Color
		}
		used[entry.Color] = true
	}
	for _, color := range palette {
		if !used[color] {
			return color
		}
	}
	return palette[len(used)%len(palette)]
}

func (s *ScheduleService) loadEngineEntries(ctx context.Context) ([]timetable.ScheduleEntry, error) {
	records, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule entries")
	}

	entries := make([]timetable.ScheduleEntry, 0, len(records))
	for _, record := range records {
		entry, err := record.ToTimetable()
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("corrupt schedule entry %s", record.ID))
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *ScheduleService) invalidateCaches(ctx context.Context) {
	if s.cache == nil {
		return
	}
	for _, pattern := range []string{"availability:*", "calendar:*"} {
		if err := s.cache.Invalidate(ctx, pattern); err != nil {
			s.logger.Warn("cache invalidation failed", zap.String("pattern", pattern), zap.Error(err))
		}
	}
}

func conflictError(conflicts []timetable.Conflict) error {
	domainErr := &models.ScheduleConflictError{Report: models.NewConflictReport(conflicts)}
	return appErrors.Wrap(domainErr, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "schedule conflicts detected")
}
