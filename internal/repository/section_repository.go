package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campusops/schedule-api/internal/models"
)

const sectionColumns = "id, name, program, year_level, created_at, updated_at"

// SectionRepository handles persistence for sections.
type SectionRepository struct {
	db *sqlx.DB
}

// NewSectionRepository creates a new repository instance.
func NewSectionRepository(db *sqlx.DB) *SectionRepository {
	return &SectionRepository{db: db}
}

// List returns sections matching filters with pagination metadata.
func (r *SectionRepository) List(ctx context.Context, filter models.SectionFilter) ([]models.Section, int, error) {
	base := "FROM sections WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Program != "" {
		conditions = append(conditions, fmt.Sprintf("program = $%d", len(args)+1))
		args = append(args, filter.Program)
	}
	if filter.YearLevel > 0 {
		conditions = append(conditions, fmt.Sprintf("year_level = $%d", len(args)+1))
		args = append(args, filter.YearLevel)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(name) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"name":       true,
		"program":    true,
		"year_level": true,
		"created_at": true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "name"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", sectionColumns, base, sortBy, order, size, offset)
	var sections []models.Section
	if err := r.db.SelectContext(ctx, &sections, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list sections: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count sections: %w", err)
	}

	return sections, total, nil
}

// FindByID loads a section by id.
func (r *SectionRepository) FindByID(ctx context.Context, id string) (*models.Section, error) {
	query := fmt.Sprintf("SELECT %s FROM sections WHERE id = $1", sectionColumns)
	var section models.Section
	if err := r.db.GetContext(ctx, &section, query, id); err != nil {
		return nil, err
	}
	return &section, nil
}

// Create stores a new section.
func (r *SectionRepository) Create(ctx context.Context, section *models.Section) error {
	if section.ID == "" {
		section.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if section.CreatedAt.IsZero() {
		section.CreatedAt = now
	}
	section.UpdatedAt = now

	const query = `INSERT INTO sections (id, name, program, year_level, created_at, updated_at) VALUES (:id, :name, :program, :year_level, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, section); err != nil {
		return fmt.Errorf("create section: %w", err)
	}
	return nil
}

// Update modifies a section.
func (r *SectionRepository) Update(ctx context.Context, section *models.Section) error {
	section.UpdatedAt = time.Now().UTC()
	const query = `UPDATE sections SET name = :name, program = :program, year_level = :year_level, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, section); err != nil {
		return fmt.Errorf("update section: %w", err)
	}
	return nil
}

// Delete removes a section by id.
func (r *SectionRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sections WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete section: %w", err)
	}
	return nil
}
