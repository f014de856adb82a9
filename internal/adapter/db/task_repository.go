package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"taskmanager/internal/core/domain"
	"taskmanager/internal/core/ports"
)

const getTaskQuery = `
SELECT` + taskColumns + `
FROM tasks t
WHERE t.id = ? AND t.owner_id = ?;
`

const insertTaskQuery = `
INSERT INTO tasks (
  id, owner_id, title, description, status, priority, due_date, completed_at,
  is_completed, estimated_time, actual_time, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
`

// owner_id is part of the predicate and never part of SET.
const updateTaskQuery = `
UPDATE tasks SET
  title = ?,
  description = ?,
  status = ?,
  priority = ?,
  due_date = ?,
  completed_at = ?,
  is_completed = ?,
  estimated_time = ?,
  actual_time = ?,
  updated_at = ?
WHERE id = ? AND owner_id = ?;
`

const deleteTaskQuery = `DELETE FROM tasks WHERE id = ? AND owner_id = ?;`

const deleteTaskTagsQuery = `DELETE FROM task_tags WHERE task_id = ?;`

const insertTaskTagQuery = `INSERT INTO task_tags (task_id, position, tag) VALUES (?, ?, ?);`

const listTaskTagsQuery = `
SELECT task_id, tag
FROM task_tags
WHERE task_id IN (?)
ORDER BY task_id, position;
`

const taskStatsQuery = `
SELECT
  COUNT(*) AS total,
  COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0) AS completed,
  COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0) AS pending,
  COALESCE(SUM(CASE WHEN status = 'in-progress' THEN 1 ELSE 0 END), 0) AS in_progress,
  COALESCE(SUM(CASE WHEN status = 'cancelled' THEN 1 ELSE 0 END), 0) AS cancelled,
  COALESCE(SUM(CASE WHEN priority = 'urgent' THEN 1 ELSE 0 END), 0) AS urgent,
  COALESCE(SUM(CASE WHEN priority = 'high' THEN 1 ELSE 0 END), 0) AS high,
  COALESCE(SUM(CASE WHEN status <> 'completed' AND due_date IS NOT NULL AND due_date < ? THEN 1 ELSE 0 END), 0) AS overdue
FROM tasks
WHERE owner_id = ?;
`

type TaskRepository struct {
	db      *sqlx.DB
	dialect sqlDialect
}

type taskRow struct {
	ID            string         `db:"id"`
	OwnerID       string         `db:"owner_id"`
	Title         string         `db:"title"`
	Description   sql.NullString `db:"description"`
	Status        string         `db:"status"`
	Priority      string         `db:"priority"`
	DueDate       sql.NullTime   `db:"due_date"`
	CompletedAt   sql.NullTime   `db:"completed_at"`
	IsCompleted   bool           `db:"is_completed"`
	EstimatedTime sql.NullInt64  `db:"estimated_time"`
	ActualTime    sql.NullInt64  `db:"actual_time"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

type taskTagRow struct {
	TaskID string `db:"task_id"`
	Tag    string `db:"tag"`
}

type taskStatsRow struct {
	Total      int64 `db:"total"`
	Completed  int64 `db:"completed"`
	Pending    int64 `db:"pending"`
	InProgress int64 `db:"in_progress"`
	Cancelled  int64 `db:"cancelled"`
	Urgent     int64 `db:"urgent"`
	High       int64 `db:"high"`
	Overdue    int64 `db:"overdue"`
}

var _ ports.TaskRepository = (*TaskRepository)(nil)

func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db, dialect: dialectFor(db.DriverName())}
}

func (r *TaskRepository) ListTasks(ctx context.Context, query domain.TaskQuery) ([]domain.Task, error) {
	statement, args := buildListTasksQuery(r.dialect, query)

	var rows []taskRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(statement), args...); err != nil {
		return nil, err
	}

	tasks := make([]domain.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, mapTaskRowToDomainTask(row))
	}

	if err := r.attachTags(ctx, tasks); err != nil {
		return nil, err
	}

	return tasks, nil
}

func (r *TaskRepository) CountTasks(ctx context.Context, query domain.TaskQuery) (int, error) {
	statement, args := buildCountTasksQuery(r.dialect, query)

	var total int
	if err := r.db.GetContext(ctx, &total, r.db.Rebind(statement), args...); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *TaskRepository) GetTask(ctx context.Context, ownerID, id string) (domain.Task, error) {
	var row taskRow
	if err := r.db.GetContext(ctx, &row, r.db.Rebind(getTaskQuery), id, ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Task{}, domain.ErrTaskNotFound
		}
		return domain.Task{}, err
	}

	tasks := []domain.Task{mapTaskRowToDomainTask(row)}
	if err := r.attachTags(ctx, tasks); err != nil {
		return domain.Task{}, err
	}

	return tasks[0], nil
}

func (r *TaskRepository) CreateTask(ctx context.Context, task domain.Task) error {
	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(
			ctx,
			tx.Rebind(insertTaskQuery),
			task.ID,
			task.OwnerID,
			task.Title,
			nullString(task.Description),
			string(task.Status),
			string(task.Priority),
			nullTime(task.DueDate),
			nullTime(task.CompletedAt),
			task.IsCompleted,
			nullInt(task.EstimatedTime),
			nullInt(task.ActualTime),
			dbTime(task.CreatedAt),
			dbTime(task.UpdatedAt),
		); err != nil {
			return fmt.Errorf("insert task: %w", err)
		}

		return insertTags(ctx, tx, task.ID, task.Tags)
	})
}

func (r *TaskRepository) UpdateTask(ctx context.Context, task domain.Task) error {
	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(
			ctx,
			tx.Rebind(updateTaskQuery),
			task.Title,
			nullString(task.Description),
			string(task.Status),
			string(task.Priority),
			nullTime(task.DueDate),
			nullTime(task.CompletedAt),
			task.IsCompleted,
			nullInt(task.EstimatedTime),
			nullInt(task.ActualTime),
			dbTime(task.UpdatedAt),
			task.ID,
			task.OwnerID,
		)
		if err != nil {
			return fmt.Errorf("update task: %w", err)
		}
		if err := requireAffected(result); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, tx.Rebind(deleteTaskTagsQuery), task.ID); err != nil {
			return fmt.Errorf("clear task tags: %w", err)
		}
		return insertTags(ctx, tx, task.ID, task.Tags)
	})
}

func (r *TaskRepository) DeleteTask(ctx context.Context, ownerID, id string) error {
	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, tx.Rebind(deleteTaskQuery), id, ownerID)
		if err != nil {
			return fmt.Errorf("delete task: %w", err)
		}
		if err := requireAffected(result); err != nil {
			return err
		}

		// Redundant where the foreign key cascades; kept for databases that do not enforce it.
		if _, err := tx.ExecContext(ctx, tx.Rebind(deleteTaskTagsQuery), id); err != nil {
			return fmt.Errorf("delete task tags: %w", err)
		}
		return nil
	})
}

func (r *TaskRepository) TaskStats(ctx context.Context, ownerID string, now time.Time) (domain.TaskStats, error) {
	var row taskStatsRow
	if err := r.db.GetContext(ctx, &row, r.db.Rebind(taskStatsQuery), dbTime(now), ownerID); err != nil {
		return domain.TaskStats{}, err
	}

	return domain.TaskStats{
		Total:      int(row.Total),
		Completed:  int(row.Completed),
		Pending:    int(row.Pending),
		InProgress: int(row.InProgress),
		Cancelled:  int(row.Cancelled),
		Urgent:     int(row.Urgent),
		High:       int(row.High),
		Overdue:    int(row.Overdue),
	}, nil
}

func (r *TaskRepository) attachTags(ctx context.Context, tasks []domain.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	ids := make([]string, 0, len(tasks))
	for _, task := range tasks {
		ids = append(ids, task.ID)
	}

	statement, args, err := sqlx.In(listTaskTagsQuery, ids)
	if err != nil {
		return fmt.Errorf("build tag query: %w", err)
	}

	var rows []taskTagRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(statement), args...); err != nil {
		return fmt.Errorf("list task tags: %w", err)
	}

	tagsByTask := make(map[string][]string, len(tasks))
	for _, row := range rows {
		tagsByTask[row.TaskID] = append(tagsByTask[row.TaskID], row.Tag)
	}
	for i := range tasks {
		if tags, ok := tagsByTask[tasks[i].ID]; ok {
			tasks[i].Tags = tags
		}
	}

	return nil
}

func (r *TaskRepository) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func insertTags(ctx context.Context, tx *sqlx.Tx, taskID string, tags []string) error {
	for position, tag := range tags {
		if _, err := tx.ExecContext(ctx, tx.Rebind(insertTaskTagQuery), taskID, position, tag); err != nil {
			return fmt.Errorf("insert task tag: %w", err)
		}
	}
	return nil
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func mapTaskRowToDomainTask(row taskRow) domain.Task {
	task := domain.Task{
		ID:          row.ID,
		Title:       row.Title,
		Status:      domain.TaskStatus(row.Status),
		Priority:    domain.TaskPriority(row.Priority),
		Tags:        []string{},
		OwnerID:     row.OwnerID,
		IsCompleted: row.IsCompleted,
		CreatedAt:   row.CreatedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}

	if row.Description.Valid {
		value := row.Description.String
		task.Description = &value
	}

	if row.DueDate.Valid {
		value := row.DueDate.Time.UTC()
		task.DueDate = &value
	}

	if row.CompletedAt.Valid {
		value := row.CompletedAt.Time.UTC()
		task.CompletedAt = &value
	}

	if row.EstimatedTime.Valid {
		value := int(row.EstimatedTime.Int64)
		task.EstimatedTime = &value
	}

	if row.ActualTime.Valid {
		value := int(row.ActualTime.Int64)
		task.ActualTime = &value
	}

	return task
}

func dbTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: dbTime(*t), Valid: true}
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
