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

const scheduleEntryColumns = "id, section_id, subject_id, subject_code, subject_name, room_id, room_name, instructor_id, instructor_name, start_time, end_time, days, kind, is_lab_component, linked_entry_id, color, valid_from, valid_to, created_at, updated_at"

// ScheduleEntryRepository provides persistence for schedule entries.
type ScheduleEntryRepository struct {
	db *sqlx.DB
}

// NewScheduleEntryRepository creates a new schedule entry repository.
func NewScheduleEntryRepository(db *sqlx.DB) *ScheduleEntryRepository {
	return &ScheduleEntryRepository{db: db}
}

// List returns schedule entries with optional filtering and pagination.
func (r *ScheduleEntryRepository) List(ctx context.Context, filter models.ScheduleEntryFilter) ([]models.ScheduleEntry, int, error) {
	base := "FROM schedule_entries WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.SectionID != "" {
		conditions = append(conditions, fmt.Sprintf("section_id = $%d", len(args)+1))
		args = append(args, filter.SectionID)
	}
	if filter.SubjectID != "" {
		conditions = append(conditions, fmt.Sprintf("subject_id = $%d", len(args)+1))
		args = append(args, filter.SubjectID)
	}
	if filter.RoomID != "" {
		conditions = append(conditions, fmt.Sprintf("room_id = $%d", len(args)+1))
		args = append(args, filter.RoomID)
	}
	if filter.InstructorID != "" {
		conditions = append(conditions, fmt.Sprintf("instructor_id = $%d", len(args)+1))
		args = append(args, filter.InstructorID)
	}
	if filter.Day != "" {
		conditions = append(conditions, fmt.Sprintf("$%d = ANY(days)", len(args)+1))
		args = append(args, strings.ToLower(filter.Day))
	}
	if filter.Kind != "" {
		conditions = append(conditions, fmt.Sprintf("kind = $%d", len(args)+1))
		args = append(args, filter.Kind)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"subject_code": true,
		"room_name":    true,
		"start_time":   true,
		"created_at":   true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "created_at"
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", scheduleEntryColumns, base, sortBy, order, size, offset)
	var entries []models.ScheduleEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list schedule entries: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count schedule entries: %w", err)
	}

	return entries, total, nil
}

// ListAll returns the entire schedule, the working set for conflict
// detection and availability checks.
func (r *ScheduleEntryRepository) ListAll(ctx context.Context) ([]models.ScheduleEntry, error) {
	query := fmt.Sprintf("SELECT %s FROM schedule_entries ORDER BY created_at ASC", scheduleEntryColumns)
	var entries []models.ScheduleEntry
	if err := r.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, fmt.Errorf("list all schedule entries: %w", err)
	}
	return entries, nil
}

// FindByID loads a schedule entry by id.
func (r *ScheduleEntryRepository) FindByID(ctx context.Context, id string) (*models.ScheduleEntry, error) {
	query := fmt.Sprintf("SELECT %s FROM schedule_entries WHERE id = $1", scheduleEntryColumns)
	var entry models.ScheduleEntry
	if err := r.db.GetContext(ctx, &entry, query, id); err != nil {
		return nil, err
	}
	return &entry, nil
}

// FindLinked returns the laboratory component pointing at the given entry.
func (r *ScheduleEntryRepository) FindLinked(ctx context.Context, entryID string) (*models.ScheduleEntry, error) {
	query := fmt.Sprintf("SELECT %s FROM schedule_entries WHERE linked_entry_id = $1", scheduleEntryColumns)
	var entry models.ScheduleEntry
	if err := r.db.GetContext(ctx, &entry, query, entryID); err != nil {
		return nil, err
	}
	return &entry, nil
}

const insertScheduleEntry = `INSERT INTO schedule_entries (id, section_id, subject_id, subject_code, subject_name, room_id, room_name, instructor_id, instructor_name, start_time, end_time, days, kind, is_lab_component, linked_entry_id, color, valid_from, valid_to, created_at, updated_at) VALUES (:id, :section_id, :subject_id, :subject_code, :subject_name, :room_id, :room_name, :instructor_id, :instructor_name, :start_time, :end_time, :days, :kind, :is_lab_component, :linked_entry_id, :color, :valid_from, :valid_to, :created_at, :updated_at)`

// Create stores a new schedule entry.
func (r *ScheduleEntryRepository) Create(ctx context.Context, entry *models.ScheduleEntry) error {
	stampForInsert(entry)
	if _, err := r.db.NamedExecContext(ctx, insertScheduleEntry, entry); err != nil {
		return fmt.Errorf("create schedule entry: %w", err)
	}
	return nil
}

// CreatePair inserts a lecture and its laboratory component atomically,
// linking the lab back to the lecture.
func (r *ScheduleEntryRepository) CreatePair(ctx context.Context, lecture, lab *models.ScheduleEntry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create schedule pair: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stampForInsert(lecture)
	if _, err = sqlx.NamedExecContext(ctx, tx, insertScheduleEntry, lecture); err != nil {
		return fmt.Errorf("insert lecture entry: %w", err)
	}

	stampForInsert(lab)
	lab.LinkedEntryID = &lecture.ID
	if _, err = sqlx.NamedExecContext(ctx, tx, insertScheduleEntry, lab); err != nil {
		return fmt.Errorf("insert laboratory entry: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create schedule pair: %w", err)
	}
	return nil
}

// Update modifies a schedule entry.
func (r *ScheduleEntryRepository) Update(ctx context.Context, entry *models.ScheduleEntry) error {
	entry.UpdatedAt = time.Now().UTC()
	const query = `UPDATE schedule_entries SET section_id = :section_id, subject_id = :subject_id, subject_code = :subject_code, subject_name = :subject_name, room_id = :room_id, room_name = :room_name, instructor_id = :instructor_id, instructor_name = :instructor_name, start_time = :start_time, end_time = :end_time, days = :days, kind = :kind, is_lab_component = :is_lab_component, linked_entry_id = :linked_entry_id, color = :color, valid_from = :valid_from, valid_to = :valid_to, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("update schedule entry: %w", err)
	}
	return nil
}

// Delete removes a schedule entry by id. Linked laboratory components
// survive as standalone entries.
func (r *ScheduleEntryRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete schedule entry: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `UPDATE schedule_entries SET linked_entry_id = NULL, updated_at = $2 WHERE linked_entry_id = $1`, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("detach linked entries: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM schedule_entries WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete schedule entry: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit delete schedule entry: %w", err)
	}
	return nil
}

func stampForInsert(entry *models.ScheduleEntry) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	entry.UpdatedAt = now
}
