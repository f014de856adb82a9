package mapper

import (
	"time"

	"taskmanager/internal/adapter/http/dto"
	"taskmanager/internal/core/domain"
	"taskmanager/pkg/apierrors"
)

func ToTaskItems(tasks []domain.Task, now time.Time) []dto.TaskItem {
	items := make([]dto.TaskItem, 0, len(tasks))
	for _, task := range tasks {
		items = append(items, ToTaskItem(task, now))
	}
	return items
}

// ToTaskItem renders task as seen at now, which decides isOverdue.
func ToTaskItem(task domain.Task, now time.Time) dto.TaskItem {
	item := dto.TaskItem{
		ID:            task.ID,
		Title:         task.Title,
		Status:        string(task.Status),
		Priority:      string(task.Priority),
		Tags:          task.Tags,
		IsCompleted:   task.IsCompleted,
		IsOverdue:     task.IsOverdue(now),
		EstimatedTime: task.EstimatedTime,
		ActualTime:    task.ActualTime,
		CreatedAt:     formatTime(task.CreatedAt),
		UpdatedAt:     formatTime(task.UpdatedAt),
	}
	if item.Tags == nil {
		item.Tags = []string{}
	}

	if task.Description != nil {
		value := *task.Description
		item.Description = &value
	}

	if task.DueDate != nil {
		value := formatTime(*task.DueDate)
		item.DueDate = &value
	}

	if task.CompletedAt != nil {
		value := formatTime(*task.CompletedAt)
		item.CompletedAt = &value
	}

	if task.Owner != nil {
		item.Owner = &dto.Owner{
			ID:        task.Owner.ID,
			Username:  task.Owner.Username,
			FirstName: task.Owner.FirstName,
			LastName:  task.Owner.LastName,
		}
	}

	return item
}

func ToPagination(p domain.Pagination) dto.Pagination {
	return dto.Pagination{
		CurrentPage: p.CurrentPage,
		TotalPages:  p.TotalPages,
		TotalTasks:  p.TotalTasks,
		HasNext:     p.HasNext,
		HasPrev:     p.HasPrev,
	}
}

func ToTaskStats(stats domain.TaskStats) dto.TaskStats {
	return dto.TaskStats{
		Total:      stats.Total,
		Completed:  stats.Completed,
		Pending:    stats.Pending,
		InProgress: stats.InProgress,
		Cancelled:  stats.Cancelled,
		Urgent:     stats.Urgent,
		High:       stats.High,
		Overdue:    stats.Overdue,
	}
}

func ToViolations(err *domain.ValidationError) []apierrors.Violation {
	if err == nil {
		return []apierrors.Violation{}
	}
	violations := make([]apierrors.Violation, 0, len(err.Errors))
	for _, fieldErr := range err.Errors {
		violations = append(violations, apierrors.Violation{
			Field: fieldErr.Field,
			Rule:  fieldErr.Rule,
			Param: fieldErr.Param,
		})
	}
	return violations
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
