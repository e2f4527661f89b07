package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campusops/schedule-api/internal/models"
	appErrors "github.com/campusops/schedule-api/pkg/errors"
)

type sectionRepository interface {
	List(ctx context.Context, filter models.SectionFilter) ([]models.Section, int, error)
	FindByID(ctx context.Context, id string) (*models.Section, error)
	Create(ctx context.Context, section *models.Section) error
	Update(ctx context.Context, section *models.Section) error
	Delete(ctx context.Context, id string) error
}

// CreateSectionRequest captures fields for adding sections.
type CreateSectionRequest struct {
	Name      string `json:"name" validate:"required"`
	Program   string `json:"program" validate:"required"`
	YearLevel int    `json:"year_level" validate:"required,gte=1,lte=6"`
}

// UpdateSectionRequest modifies section fields.
type UpdateSectionRequest struct {
	Name      string `json:"name" validate:"required"`
	Program   string `json:"program" validate:"required"`
	YearLevel int    `json:"year_level" validate:"required,gte=1,lte=6"`
}

// SectionService handles section catalog workflows.
type SectionService struct {
	repo      sectionRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSectionService creates a new section service.
func NewSectionService(repo sectionRepository, validate *validator.Validate, logger *zap.Logger) *SectionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SectionService{repo: repo, validator: validate, logger: logger}
}

// List returns paginated sections.
func (s *SectionService) List(ctx context.Context, filter models.SectionFilter) ([]models.Section, *models.Pagination, error) {
	sections, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sections")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return sections, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns section by identifier.
func (s *SectionService) Get(ctx context.Context, id string) (*models.Section, error) {
	section, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "section not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section")
	}
	return section, nil
}

// Create adds a new section.
func (s *SectionService) Create(ctx context.Context, req CreateSectionRequest) (*models.Section, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid section payload")
	}

	section := &models.Section{
		Name:      req.Name,
		Program:   req.Program,
		YearLevel: req.YearLevel,
	}
	if err := s.repo.Create(ctx, section); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create section")
	}
	return section, nil
}

// Update modifies an existing section.
func (s *SectionService) Update(ctx context.Context, id string, req UpdateSectionRequest) (*models.Section, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid section payload")
	}

	section, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	section.Name = req.Name
	section.Program = req.Program
	section.YearLevel = req.YearLevel

	if err := s.repo.Update(ctx, section); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update section")
	}
	return section, nil
}

// Delete removes a section.
func (s *SectionService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete section")
	}
	return nil
}
