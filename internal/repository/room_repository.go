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

const roomColumns = "id, name, floor, type, capacity, status, created_at, updated_at"

// RoomRepository provides persistence for the room catalog.
type RoomRepository struct {
	db *sqlx.DB
}

// NewRoomRepository creates a new room repository.
func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// List returns rooms with optional filtering and pagination.
func (r *RoomRepository) List(ctx context.Context, filter models.RoomFilter) ([]models.Room, int, error) {
	base := "FROM rooms WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Type != "" {
		conditions = append(conditions, fmt.Sprintf("type = $%d", len(args)+1))
		args = append(args, filter.Type)
	}
	if filter.Floor != "" {
		conditions = append(conditions, fmt.Sprintf("floor = $%d", len(args)+1))
		args = append(args, filter.Floor)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"name":       true,
		"floor":      true,
		"capacity":   true,
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", roomColumns, base, sortBy, order, size, offset)
	var rooms []models.Room
	if err := r.db.SelectContext(ctx, &rooms, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list rooms: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count rooms: %w", err)
	}

	return rooms, total, nil
}

// ListAll returns every room in the catalog.
func (r *RoomRepository) ListAll(ctx context.Context) ([]models.Room, error) {
	query := fmt.Sprintf("SELECT %s FROM rooms ORDER BY name ASC", roomColumns)
	var rooms []models.Room
	if err := r.db.SelectContext(ctx, &rooms, query); err != nil {
		return nil, fmt.Errorf("list all rooms: %w", err)
	}
	return rooms, nil
}

// FindByID loads a room by id.
func (r *RoomRepository) FindByID(ctx context.Context, id string) (*models.Room, error) {
	query := fmt.Sprintf("SELECT %s FROM rooms WHERE id = $1", roomColumns)
	var room models.Room
	if err := r.db.GetContext(ctx, &room, query, id); err != nil {
		return nil, err
	}
	return &room, nil
}

// FindByName loads a room by its display name.
func (r *RoomRepository) FindByName(ctx context.Context, name string) (*models.Room, error) {
	query := fmt.Sprintf("SELECT %s FROM rooms WHERE name = $1", roomColumns)
	var room models.Room
	if err := r.db.GetContext(ctx, &room, query, name); err != nil {
		return nil, err
	}
	return &room, nil
}

const insertRoom = `INSERT INTO rooms (id, name, floor, type, capacity, status, created_at, updated_at) VALUES (:id, :name, :floor, :type, :capacity, :status, :created_at, :updated_at)`

// Create stores a new room.
func (r *RoomRepository) Create(ctx context.Context, room *models.Room) error {
	stampRoom(room)
	if _, err := r.db.NamedExecContext(ctx, insertRoom, room); err != nil {
		return fmt.Errorf("create room: %w", err)
	}
	return nil
}

// BulkCreate inserts many rooms within a transaction, used by the CSV
// import.
func (r *RoomRepository) BulkCreate(ctx context.Context, rooms []models.Room) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin bulk create rooms: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for i := range rooms {
		stampRoom(&rooms[i])
		if _, err = sqlx.NamedExecContext(ctx, tx, insertRoom, &rooms[i]); err != nil {
			return fmt.Errorf("bulk insert room: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit bulk create rooms: %w", err)
	}
	return nil
}

// Update modifies a room.
func (r *RoomRepository) Update(ctx context.Context, room *models.Room) error {
	room.UpdatedAt = time.Now().UTC()
	const query = `UPDATE rooms SET name = :name, floor = :floor, type = :type, capacity = :capacity, status = :status, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, room); err != nil {
		return fmt.Errorf("update room: %w", err)
	}
	return nil
}

// Delete removes a room by id.
func (r *RoomRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete room: %w", err)
	}
	return nil
}

func stampRoom(room *models.Room) {
	if room.ID == "" {
		room.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if room.CreatedAt.IsZero() {
		room.CreatedAt = now
	}
	room.UpdatedAt = now
}
