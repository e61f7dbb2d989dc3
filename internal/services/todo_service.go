package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lvidal/tasklist-be/internal/models"
)

// TodoServiceProvider defines the interface for the todo store. Every
// operation is owner-scoped: the matching predicate includes the requesting
// user's id, so cross-user access is impossible by construction.
type TodoServiceProvider interface {
	Create(ctx context.Context, ownerID int64, title string) (models.Todo, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]models.Todo, error)
	ToggleStatus(ctx context.Context, id, ownerID int64) error
	Delete(ctx context.Context, id, ownerID int64) error
}

// TodoService provides the owner-scoped todo store.
type TodoService struct {
	db *sql.DB
}

// NewTodoService creates a new TodoService.
func NewTodoService(db *sql.DB) *TodoService {
	return &TodoService{db: db}
}

// Create inserts a new pending todo for the given owner.
func (s *TodoService) Create(ctx context.Context, ownerID int64, title string) (models.Todo, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO todos(title, status, created_at, owner_id) VALUES(?, ?, ?, ?)",
		title, models.TodoStatusPending, now, ownerID)
	if err != nil {
		return models.Todo{}, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return models.Todo{}, err
	}
	return s.getByID(ctx, id, ownerID)
}

// ListByOwner returns every todo owned by ownerID. Ordering is a user-facing
// contract: pending todos first, and within each group newest first
// (completed todos by completion time, pending ones by creation time).
func (s *TodoService) ListByOwner(ctx context.Context, ownerID int64) ([]models.Todo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, status, created_at, completed_at
		FROM todos
		WHERE owner_id = ?
		ORDER BY completed_at IS NULL DESC, completed_at DESC, created_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var todos []models.Todo
	for rows.Next() {
		var todo models.Todo
		if err := rows.Scan(&todo.ID, &todo.Title, &todo.Status, &todo.CreatedAt, &todo.CompletedAt); err != nil {
			return nil, err
		}
		todo.OwnerID = ownerID
		todos = append(todos, todo)
	}
	return todos, rows.Err()
}

// ToggleStatus flips a todo between pending and completed, setting or
// clearing completed_at in the same statement. Status and completed_at can
// never disagree because a single row-level UPDATE changes both, and the
// owner filter sits in the same predicate, so there is no window between an
// ownership check and the mutation. A todo that does not exist or is not
// owned by ownerID is a silent no-op.
func (s *TodoService) ToggleStatus(ctx context.Context, id, ownerID int64) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE todos
		SET status = CASE WHEN status = ? THEN ? ELSE ? END,
		    completed_at = CASE WHEN status = ? THEN ? ELSE NULL END
		WHERE id = ? AND owner_id = ?`,
		models.TodoStatusPending, models.TodoStatusCompleted, models.TodoStatusPending,
		models.TodoStatusPending, time.Now().UTC(),
		id, ownerID)
	return err
}

// Delete removes a todo. Not-found and not-owned are silent no-ops.
func (s *TodoService) Delete(ctx context.Context, id, ownerID int64) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM todos WHERE id = ? AND owner_id = ?", id, ownerID)
	return err
}

func (s *TodoService) getByID(ctx context.Context, id, ownerID int64) (models.Todo, error) {
	var todo models.Todo
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, status, created_at, completed_at
		FROM todos WHERE id = ? AND owner_id = ?`, id, ownerID)
	err := row.Scan(&todo.ID, &todo.Title, &todo.Status, &todo.CreatedAt, &todo.CompletedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Todo{}, fmt.Errorf("todo %d: %w", id, ErrNotFound)
		}
		return models.Todo{}, err
	}
	todo.OwnerID = ownerID
	return todo, nil
}
