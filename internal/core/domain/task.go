package domain

import "time"

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

var taskStatuses = []TaskStatus{
	TaskStatusPending,
	TaskStatusInProgress,
	TaskStatusCompleted,
	TaskStatusCancelled,
}

func (s TaskStatus) Valid() bool {
	for _, status := range taskStatuses {
		if s == status {
			return true
		}
	}
	return false
}

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityUrgent TaskPriority = "urgent"
)

var taskPriorities = []TaskPriority{
	TaskPriorityLow,
	TaskPriorityMedium,
	TaskPriorityHigh,
	TaskPriorityUrgent,
}

func (p TaskPriority) Valid() bool {
	for _, priority := range taskPriorities {
		if p == priority {
			return true
		}
	}
	return false
}

const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 500
)

// Task is owned by exactly one user. IsCompleted and CompletedAt are derived
// from Status and must only change through WithStatus or Apply.
type Task struct {
	ID            string
	Title         string
	Description   *string
	Status        TaskStatus
	Priority      TaskPriority
	DueDate       *time.Time
	CompletedAt   *time.Time
	Tags          []string
	OwnerID       string
	Owner         *Owner
	IsCompleted   bool
	EstimatedTime *int
	ActualTime    *int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsOverdue is computed at read time and never persisted.
func (t Task) IsOverdue(now time.Time) bool {
	if t.DueDate == nil || t.IsCompleted {
		return false
	}
	return t.DueDate.Before(now)
}

// WithStatus returns a copy of the task moved to status. Every move to
// completed stamps a fresh completion time, even from completed.
func (t Task) WithStatus(status TaskStatus, now time.Time) Task {
	t.Status = status
	t.IsCompleted = status == TaskStatusCompleted
	if t.IsCompleted {
		completedAt := now
		t.CompletedAt = &completedAt
	} else {
		t.CompletedAt = nil
	}
	t.UpdatedAt = now
	return t
}

type CreateTaskInput struct {
	Title         string
	Description   *string
	Status        *TaskStatus
	Priority      *TaskPriority
	DueDate       *time.Time
	Tags          []string
	EstimatedTime *int
	ActualTime    *int
}

// UpdateTaskInput carries a partial update. Nil pointers leave the field
// untouched; the *Set flags mark nullable fields explicitly sent, where a nil
// value clears the stored one.
type UpdateTaskInput struct {
	Title            *string
	Description      *string
	DescriptionSet   bool
	Status           *TaskStatus
	Priority         *TaskPriority
	DueDate          *time.Time
	DueDateSet       bool
	Tags             []string
	TagsSet          bool
	EstimatedTime    *int
	EstimatedTimeSet bool
	ActualTime       *int
	ActualTimeSet    bool
}

func (in UpdateTaskInput) Empty() bool {
	return in.Title == nil &&
		!in.DescriptionSet &&
		in.Status == nil &&
		in.Priority == nil &&
		!in.DueDateSet &&
		!in.TagsSet &&
		!in.EstimatedTimeSet &&
		!in.ActualTimeSet
}

// NewTask builds a validated task for ownerID. Every violated rule is
// reported at once.
func NewTask(ownerID, id string, in CreateTaskInput, now time.Time) (Task, error) {
	task := Task{
		ID:            id,
		Title:         in.Title,
		Description:   in.Description,
		Status:        TaskStatusPending,
		Priority:      TaskPriorityMedium,
		DueDate:       in.DueDate,
		Tags:          in.Tags,
		OwnerID:       ownerID,
		EstimatedTime: in.EstimatedTime,
		ActualTime:    in.ActualTime,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if in.Status != nil {
		task.Status = *in.Status
	}
	if in.Priority != nil {
		task.Priority = *in.Priority
	}

	task = normalizeTask(task)
	if err := validateTask(task); err != nil {
		return Task{}, err
	}

	return task.WithStatus(task.Status, now), nil
}

// Apply merges in into a copy of t and validates the merged record. The
// receiver is left untouched on failure.
func (t Task) Apply(in UpdateTaskInput, now time.Time) (Task, error) {
	next := t
	if in.Title != nil {
		next.Title = *in.Title
	}
	if in.DescriptionSet {
		next.Description = in.Description
	}
	if in.Priority != nil {
		next.Priority = *in.Priority
	}
	if in.DueDateSet {
		next.DueDate = in.DueDate
	}
	if in.TagsSet {
		next.Tags = in.Tags
	}
	if in.EstimatedTimeSet {
		next.EstimatedTime = in.EstimatedTime
	}
	if in.ActualTimeSet {
		next.ActualTime = in.ActualTime
	}
	status := next.Status
	if in.Status != nil {
		status = *in.Status
	}
	next.Status = status

	next = normalizeTask(next)
	if err := validateTask(next); err != nil {
		return Task{}, err
	}

	// Editing a task that stays completed leaves its completion time alone.
	if status == TaskStatusCompleted && t.Status == TaskStatusCompleted && t.CompletedAt != nil {
		next.IsCompleted = true
		next.UpdatedAt = now
		return next, nil
	}
	return next.WithStatus(status, now), nil
}
