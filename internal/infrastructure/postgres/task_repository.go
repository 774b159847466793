package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/bitumen-api/internal/domain"
	"github.com/jhoicas/bitumen-api/internal/domain/entity"
	"github.com/jhoicas/bitumen-api/internal/domain/repository"
)

var _ repository.TaskRepository = (*TaskRepo)(nil)

const taskColumns = `id, title, description, assignee_id, client_id, due_date, priority, status, created_by, created_at, updated_at`

// TaskRepo tareas sobre PostgreSQL.
type TaskRepo struct {
	q Querier
}

// NewTaskRepository construye el adaptador de tareas.
func NewTaskRepository(q Querier) *TaskRepo {
	return &TaskRepo{q: q}
}

func scanTask(row pgx.Row) (*entity.Task, error) {
	var t entity.Task
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.AssigneeID, &t.ClientID, &t.DueDate, &t.Priority, &t.Status,
		&t.CreatedBy, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TaskRepo) Create(ctx context.Context, t *entity.Task) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		t.ID, t.Title, t.Description, t.AssigneeID, t.ClientID, t.DueDate, t.Priority, t.Status, t.CreatedBy,
		t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return mapWriteError("insert task", err)
	}
	return nil
}

func (r *TaskRepo) GetByID(ctx context.Context, id string) (*entity.Task, error) {
	t, err := scanTask(r.q.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
	return notFound(t, err, "get task")
}

func (r *TaskRepo) List(ctx context.Context, f repository.TaskFilter) ([]*entity.Task, error) {
	var w where
	w.eq("status", f.Status)
	w.eq("assignee_id::text", f.AssigneeID)
	w.eq("client_id::text", f.ClientID)
	w.search(f.Search, "title", "description")
	rows, err := r.q.Query(ctx, `SELECT `+taskColumns+` FROM tasks`+w.sql("created_at DESC, id", f.Page), w.args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return collect(rows, scanTask)
}

func (r *TaskRepo) Update(ctx context.Context, t *entity.Task) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE tasks SET title = $2, description = $3, assignee_id = $4, client_id = $5, due_date = $6,
			priority = $7, status = $8, updated_at = $9
		WHERE id = $1`,
		t.ID, t.Title, t.Description, t.AssigneeID, t.ClientID, t.DueDate, t.Priority, t.Status, t.UpdatedAt,
	)
	if err != nil {
		return mapWriteError("update task", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete borra la tarea físicamente.
func (r *TaskRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
