package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gocarina/gocsv"
	"go.uber.org/zap"

	"github.com/campusops/schedule-api/internal/models"
	"github.com/campusops/schedule-api/internal/timetable"
	appErrors "github.com/campusops/schedule-api/pkg/errors"
)

type roomRepository interface {
	List(ctx context.Context, filter models.RoomFilter) ([]models.Room, int, error)
	ListAll(ctx context.Context) ([]models.Room, error)
	FindByID(ctx context.Context, id string) (*models.Room, error)
	FindByName(ctx context.Context, name string) (*models.Room, error)
	Create(ctx context.Context, room *models.Room) error
	BulkCreate(ctx context.Context, rooms []models.Room) error
	Update(ctx context.Context, room *models.Room) error
	Delete(ctx context.Context, id string) error
}

// CreateRoomRequest describes payload for adding a room.
type CreateRoomRequest struct {
	Name     string `json:"name" validate:"required"`
	Floor    string `json:"floor" validate:"required"`
	Type     string `json:"type" validate:"required,oneof=lecture laboratory"`
	Capacity int    `json:"capacity" validate:"gte=0"`
	Status   string `json:"status" validate:"omitempty,oneof=available maintenance retired"`
}

// UpdateRoomRequest modifies a room.
type UpdateRoomRequest struct {
	Name     string `json:"name" validate:"required"`
	Floor    string `json:"floor" validate:"required"`
	Type     string `json:"type" validate:"required,oneof=lecture laboratory"`
	Capacity int    `json:"capacity" validate:"gte=0"`
	Status   string `json:"status" validate:"required,oneof=available maintenance retired"`
}

// RoomService manages the room catalog.
type RoomService struct {
	repo          roomRepository
	validator     *validator.Validate
	logger        *zap.Logger
	importMaxRows int
}

// NewRoomService instantiates RoomService.
func NewRoomService(repo roomRepository, validate *validator.Validate, logger *zap.Logger, importMaxRows int) *RoomService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if importMaxRows <= 0 {
		importMaxRows = 500
	}
	return &RoomService{repo: repo, validator: validate, logger: logger, importMaxRows: importMaxRows}
}

// List returns rooms with pagination metadata.
func (s *RoomService) List(ctx context.Context, filter models.RoomFilter) ([]models.Room, *models.Pagination, error) {
	rooms, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list rooms")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return rooms, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get loads one room.
func (s *RoomService) Get(ctx context.Context, id string) (*models.Room, error) {
	room, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "room not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room")
	}
	return room, nil
}

// Grouped returns the whole catalog grouped by floor for picker UIs.
func (s *RoomService) Grouped(ctx context.Context) ([]timetable.FloorGroup, error) {
	rooms, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rooms")
	}
	engineRooms := make([]timetable.Room, 0, len(rooms))
	for _, room := range rooms {
		engineRooms = append(engineRooms, room.ToTimetable())
	}
	return timetable.GroupRoomsByFloor(engineRooms), nil
}

// Create adds a room to the catalog.
func (s *RoomService) Create(ctx context.Context, req CreateRoomRequest) (*models.Room, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid room payload")
	}

	status := req.Status
	if status == "" {
		status = string(timetable.RoomAvailable)
	}
	room := models.Room{
		Name:     req.Name,
		Floor:    req.Floor,
		Type:     req.Type,
		Capacity: req.Capacity,
		Status:   status,
	}
	if err := s.repo.Create(ctx, &room); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create room")
	}
	return &room, nil
}

// Update modifies a room.
func (s *RoomService) Update(ctx context.Context, id string, req UpdateRoomRequest) (*models.Room, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid room payload")
	}

	room, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	room.Name = req.Name
	room.Floor = req.Floor
	room.Type = req.Type
	room.Capacity = req.Capacity
	room.Status = req.Status
	if err := s.repo.Update(ctx, room); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update room")
	}
	return room, nil
}

// Delete removes a room.
func (s *RoomService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete room")
	}
	return nil
}

// ImportCSV bulk-loads rooms from a CSV stream with name, floor, type,
// capacity and status columns. Rows that fail validation or duplicate an
// existing room name are skipped and reported, valid rows commit in one
// transaction.
func (s *RoomService) ImportCSV(ctx context.Context, r io.Reader) (*models.RoomImportResult, error) {
	var rows []models.RoomCSVRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to parse room CSV")
	}
	if len(rows) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "room CSV contains no rows")
	}
	if len(rows) > s.importMaxRows {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("room CSV exceeds %d rows", s.importMaxRows))
	}

	result := &models.RoomImportResult{}
	var toCreate []models.Room
	seen := make(map[string]bool)

	for i, row := range rows {
		line := i + 2
		name := strings.TrimSpace(row.Name)
		if name == "" {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: name is required", line))
			continue
		}
		if seen[strings.ToLower(name)] {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: duplicate room %q in file", line, name))
			continue
		}

		req := CreateRoomRequest{
			Name:     name,
			Floor:    strings.TrimSpace(row.Floor),
			Type:     strings.ToLower(strings.TrimSpace(row.Type)),
			Capacity: row.Capacity,
			Status:   strings.ToLower(strings.TrimSpace(row.Status)),
		}
		if req.Status == "" {
			req.Status = string(timetable.RoomAvailable)
		}
		if err := s.validator.Struct(req); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}

		if _, err := s.repo.FindByName(ctx, name); err == nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: room %q already exists", line, name))
			continue
		} else if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check room name")
		}

		seen[strings.ToLower(name)] = true
		toCreate = append(toCreate, models.Room{
			Name:     req.Name,
			Floor:    req.Floor,
			Type:     req.Type,
			Capacity: req.Capacity,
			Status:   req.Status,
		})
	}

	if len(toCreate) > 0 {
		if err := s.repo.BulkCreate(ctx, toCreate); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to import rooms")
		}
	}
	result.Imported = len(toCreate)

	s.logger.Info("room catalog import finished",
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped))
	return result, nil
}
