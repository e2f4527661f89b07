package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campusops/schedule-api/internal/models"
	appErrors "github.com/campusops/schedule-api/pkg/errors"
)

type instructorRepository interface {
	List(ctx context.Context, filter models.InstructorFilter) ([]models.Instructor, int, error)
	FindByID(ctx context.Context, id string) (*models.Instructor, error)
	Create(ctx context.Context, instructor *models.Instructor) error
	Update(ctx context.Context, instructor *models.Instructor) error
	Delete(ctx context.Context, id string) error
}

// CreateInstructorRequest captures fields for adding instructors.
type CreateInstructorRequest struct {
	Email      string  `json:"email" validate:"required,email"`
	FullName   string  `json:"full_name" validate:"required"`
	Department *string `json:"department"`
}

// UpdateInstructorRequest modifies instructor fields.
type UpdateInstructorRequest struct {
	Email      string  `json:"email" validate:"required,email"`
	FullName   string  `json:"full_name" validate:"required"`
	Department *string `json:"department"`
	Active     bool    `json:"active"`
}

// InstructorService handles instructor catalog workflows.
type InstructorService struct {
	repo      instructorRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewInstructorService creates a new instructor service.
func NewInstructorService(repo instructorRepository, validate *validator.Validate, logger *zap.Logger) *InstructorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstructorService{repo: repo, validator: validate, logger: logger}
}

// List returns paginated instructors.
func (s *InstructorService) List(ctx context.Context, filter models.InstructorFilter) ([]models.Instructor, *models.Pagination, error) {
	instructors, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list instructors")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return instructors, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns instructor by identifier.
func (s *InstructorService) Get(ctx context.Context, id string) (*models.Instructor, error) {
	instructor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructor")
	}
	return instructor, nil
}

// Create adds a new instructor.
func (s *InstructorService) Create(ctx context.Context, req CreateInstructorRequest) (*models.Instructor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid instructor payload")
	}

	instructor := &models.Instructor{
		Email:      strings.ToLower(strings.TrimSpace(req.Email)),
		FullName:   req.FullName,
		Department: req.Department,
		Active:     true,
	}
	if err := s.repo.Create(ctx, instructor); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create instructor")
	}
	return instructor, nil
}

// Update modifies an existing instructor.
func (s *InstructorService) Update(ctx context.Context, id string, req UpdateInstructorRequest) (*models.Instructor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid instructor payload")
	}

	instructor, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	instructor.Email = strings.ToLower(strings.TrimSpace(req.Email))
	instructor.FullName = req.FullName
	instructor.Department = req.Department
	instructor.Active = req.Active

	if err := s.repo.Update(ctx, instructor); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update instructor")
	}
	return instructor, nil
}

// Delete removes an instructor.
func (s *InstructorService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete instructor")
	}
	return nil
}
