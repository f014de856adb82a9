package ports

import (
	"context"
	"time"

	"taskmanager/internal/core/domain"
)

// TaskRepository persists tasks. Every method is scoped to an owner; a task
// that exists under another owner is reported as domain.ErrTaskNotFound.
type TaskRepository interface {
	ListTasks(ctx context.Context, query domain.TaskQuery) ([]domain.Task, error)
	CountTasks(ctx context.Context, query domain.TaskQuery) (int, error)
	GetTask(ctx context.Context, ownerID, id string) (domain.Task, error)
	CreateTask(ctx context.Context, task domain.Task) error
	UpdateTask(ctx context.Context, task domain.Task) error
	DeleteTask(ctx context.Context, ownerID, id string) error
	TaskStats(ctx context.Context, ownerID string, now time.Time) (domain.TaskStats, error)
}

type TaskService interface {
	ListTasks(ctx context.Context, requester domain.User, params domain.ListTasksParams) (domain.TaskPage, error)
	GetTask(ctx context.Context, requester domain.User, id string) (domain.Task, error)
	CreateTask(ctx context.Context, requester domain.User, input domain.CreateTaskInput) (domain.Task, error)
	UpdateTask(ctx context.Context, requester domain.User, id string, input domain.UpdateTaskInput) (domain.Task, error)
	DeleteTask(ctx context.Context, requester domain.User, id string) error
	SetTaskStatus(ctx context.Context, requester domain.User, id string, status domain.TaskStatus) (domain.Task, error)
	CompleteTask(ctx context.Context, requester domain.User, id string) (domain.Task, error)
	TaskStats(ctx context.Context, requester domain.User) (domain.TaskStats, error)
}
