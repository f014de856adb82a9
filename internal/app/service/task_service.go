package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"taskmanager/internal/core/domain"
	"taskmanager/internal/core/ports"
)

type TaskService struct {
	taskRepository ports.TaskRepository
	now            func() time.Time
	newID          func() (string, error)
}

type Option func(*TaskService)

// WithClock overrides the time source used for timestamps and overdue checks.
func WithClock(now func() time.Time) Option {
	return func(s *TaskService) {
		s.now = now
	}
}

// WithIDGenerator overrides task id generation.
func WithIDGenerator(newID func() (string, error)) Option {
	return func(s *TaskService) {
		s.newID = newID
	}
}

func NewTaskService(taskRepository ports.TaskRepository, opts ...Option) *TaskService {
	s := &TaskService{
		taskRepository: taskRepository,
		now:            time.Now,
		newID:          newTaskID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ ports.TaskService = (*TaskService)(nil)

func (s *TaskService) ListTasks(ctx context.Context, requester domain.User, params domain.ListTasksParams) (domain.TaskPage, error) {
	query, err := domain.NewTaskQuery(requester.ID, params)
	if err != nil {
		return domain.TaskPage{}, err
	}

	tasks, err := s.taskRepository.ListTasks(ctx, query)
	if err != nil {
		return domain.TaskPage{}, internal("list tasks", err)
	}

	// Counted separately from the page; a concurrent write may make the two disagree.
	total, err := s.taskRepository.CountTasks(ctx, query)
	if err != nil {
		return domain.TaskPage{}, internal("count tasks", err)
	}

	return domain.TaskPage{
		Tasks:      withOwner(tasks, requester),
		Pagination: domain.NewPagination(query.Page, query.Limit, total),
	}, nil
}

func (s *TaskService) GetTask(ctx context.Context, requester domain.User, id string) (domain.Task, error) {
	task, err := s.loadOwnedTask(ctx, requester, id)
	if err != nil {
		return domain.Task{}, err
	}
	task.Owner = requester.Owner()
	return task, nil
}

func (s *TaskService) CreateTask(ctx context.Context, requester domain.User, input domain.CreateTaskInput) (domain.Task, error) {
	id, err := s.newID()
	if err != nil {
		return domain.Task{}, internal("generate task id", err)
	}

	task, err := domain.NewTask(requester.ID, id, input, s.timestamp())
	if err != nil {
		return domain.Task{}, err
	}

	if err := s.taskRepository.CreateTask(ctx, task); err != nil {
		return domain.Task{}, internal("create task", err)
	}

	task.Owner = requester.Owner()
	return task, nil
}

func (s *TaskService) UpdateTask(ctx context.Context, requester domain.User, id string, input domain.UpdateTaskInput) (domain.Task, error) {
	current, err := s.loadOwnedTask(ctx, requester, id)
	if err != nil {
		return domain.Task{}, err
	}

	if input.Empty() {
		current.Owner = requester.Owner()
		return current, nil
	}

	updated, err := current.Apply(input, s.timestamp())
	if err != nil {
		return domain.Task{}, err
	}

	return s.save(ctx, requester, updated, "update task")
}

func (s *TaskService) DeleteTask(ctx context.Context, requester domain.User, id string) error {
	if !validTaskID(id) {
		return domain.ErrTaskNotFound
	}

	if err := s.taskRepository.DeleteTask(ctx, requester.ID, id); err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return domain.ErrTaskNotFound
		}
		return internal("delete task", err)
	}
	return nil
}

func (s *TaskService) SetTaskStatus(ctx context.Context, requester domain.User, id string, status domain.TaskStatus) (domain.Task, error) {
	if err := domain.ValidateStatus(status); err != nil {
		return domain.Task{}, err
	}

	current, err := s.loadOwnedTask(ctx, requester, id)
	if err != nil {
		return domain.Task{}, err
	}

	return s.save(ctx, requester, current.WithStatus(status, s.timestamp()), "set task status")
}

func (s *TaskService) CompleteTask(ctx context.Context, requester domain.User, id string) (domain.Task, error) {
	return s.SetTaskStatus(ctx, requester, id, domain.TaskStatusCompleted)
}

func (s *TaskService) TaskStats(ctx context.Context, requester domain.User) (domain.TaskStats, error) {
	stats, err := s.taskRepository.TaskStats(ctx, requester.ID, s.timestamp())
	if err != nil {
		return domain.TaskStats{}, internal("task stats", err)
	}
	return stats, nil
}

func (s *TaskService) loadOwnedTask(ctx context.Context, requester domain.User, id string) (domain.Task, error) {
	if !validTaskID(id) {
		return domain.Task{}, domain.ErrTaskNotFound
	}

	task, err := s.taskRepository.GetTask(ctx, requester.ID, id)
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return domain.Task{}, domain.ErrTaskNotFound
		}
		return domain.Task{}, internal("get task", err)
	}
	return task, nil
}

func (s *TaskService) save(ctx context.Context, requester domain.User, task domain.Task, op string) (domain.Task, error) {
	if err := s.taskRepository.UpdateTask(ctx, task); err != nil {
		// The task may have been deleted between the read and the write.
		if errors.Is(err, domain.ErrTaskNotFound) {
			return domain.Task{}, domain.ErrTaskNotFound
		}
		return domain.Task{}, internal(op, err)
	}
	task.Owner = requester.Owner()
	return task, nil
}

// timestamp is truncated to what every supported database column can store,
// so a returned task matches the persisted one.
func (s *TaskService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func withOwner(tasks []domain.Task, requester domain.User) []domain.Task {
	owner := requester.Owner()
	for i := range tasks {
		tasks[i].Owner = owner
	}
	return tasks
}

func internal(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrInternal, op, err)
}

func newTaskID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func validTaskID(id string) bool {
	return uuid.Validate(id) == nil
}
