package db

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/suite"

	"taskmanager/internal/core/domain"
)

type TaskRepositorySuite struct {
	suite.Suite

	db   *sqlx.DB
	repo *TaskRepository
	ctx  context.Context
	now  time.Time
	seq  int
}

func TestTaskRepositorySuite(t *testing.T) {
	suite.Run(t, new(TaskRepositorySuite))
}

func (s *TaskRepositorySuite) SetupTest() {
	db, err := ConnectSQLite(filepath.Join(s.T().TempDir(), "tasks.db"))
	s.Require().NoError(err)
	s.ctx = context.Background()
	s.Require().NoError(RunMigrations(s.ctx, db))

	s.db = db
	s.repo = NewTaskRepository(db)
	s.now = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	s.seq = 0
}

func (s *TaskRepositorySuite) TearDownTest() {
	s.Require().NoError(s.db.Close())
}

// seed stores a task whose id sorts in insertion order.
func (s *TaskRepositorySuite) seed(ownerID string, mutate func(*domain.CreateTaskInput)) domain.Task {
	s.seq++
	in := domain.CreateTaskInput{Title: "task"}
	if mutate != nil {
		mutate(&in)
	}
	id := "00000000-0000-7000-8000-" + leftPad(s.seq)
	task, err := domain.NewTask(ownerID, id, in, s.now.Add(time.Duration(s.seq)*time.Minute))
	s.Require().NoError(err)
	s.Require().NoError(s.repo.CreateTask(s.ctx, task))
	return task
}

func leftPad(n int) string {
	const width = 12
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	for len(digits) < width {
		digits = append([]byte{'0'}, digits...)
	}
	return string(digits)
}

func (s *TaskRepositorySuite) list(ownerID string, params domain.ListTasksParams) ([]domain.Task, int) {
	q, err := domain.NewTaskQuery(ownerID, params)
	s.Require().NoError(err)

	tasks, err := s.repo.ListTasks(s.ctx, q)
	s.Require().NoError(err)
	total, err := s.repo.CountTasks(s.ctx, q)
	s.Require().NoError(err)
	return tasks, total
}

func titles(tasks []domain.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, task.Title)
	}
	return out
}

func (s *TaskRepositorySuite) TestCreateAndGetRoundTrip() {
	due := s.now.Add(36 * time.Hour)
	description := "with details"
	estimated := 45
	created := s.seed("alice", func(in *domain.CreateTaskInput) {
		in.Title = "Write release notes"
		in.Description = &description
		in.DueDate = &due
		in.Tags = []string{"docs", "work", "docs"}
		in.EstimatedTime = &estimated
	})

	got, err := s.repo.GetTask(s.ctx, "alice", created.ID)
	s.Require().NoError(err)

	s.Require().Equal(created.ID, got.ID)
	s.Require().Equal("alice", got.OwnerID)
	s.Require().Equal("Write release notes", got.Title)
	s.Require().Equal("with details", *got.Description)
	s.Require().Equal(domain.TaskStatusPending, got.Status)
	s.Require().Equal(domain.TaskPriorityMedium, got.Priority)
	s.Require().True(due.Equal(*got.DueDate))
	s.Require().Nil(got.CompletedAt)
	s.Require().False(got.IsCompleted)
	s.Require().Equal([]string{"docs", "work", "docs"}, got.Tags)
	s.Require().Equal(45, *got.EstimatedTime)
	s.Require().Nil(got.ActualTime)
	s.Require().True(created.CreatedAt.Equal(got.CreatedAt))
}

func (s *TaskRepositorySuite) TestGetTask_OtherOwnerIsNotFound() {
	created := s.seed("alice", nil)

	_, err := s.repo.GetTask(s.ctx, "bob", created.ID)
	s.Require().ErrorIs(err, domain.ErrTaskNotFound)

	_, err = s.repo.GetTask(s.ctx, "alice", "00000000-0000-7000-8000-999999999999")
	s.Require().ErrorIs(err, domain.ErrTaskNotFound)
}

func (s *TaskRepositorySuite) TestUpdateTask_ReplacesFieldsAndTags() {
	created := s.seed("alice", func(in *domain.CreateTaskInput) {
		in.Tags = []string{"old"}
	})

	title := "renamed"
	status := domain.TaskStatusCompleted
	updated, err := created.Apply(domain.UpdateTaskInput{
		Title:   &title,
		Status:  &status,
		Tags:    []string{"new", "shiny"},
		TagsSet: true,
	}, s.now.Add(time.Hour))
	s.Require().NoError(err)
	s.Require().NoError(s.repo.UpdateTask(s.ctx, updated))

	got, err := s.repo.GetTask(s.ctx, "alice", created.ID)
	s.Require().NoError(err)
	s.Require().Equal("renamed", got.Title)
	s.Require().Equal(domain.TaskStatusCompleted, got.Status)
	s.Require().True(got.IsCompleted)
	s.Require().NotNil(got.CompletedAt)
	s.Require().True(s.now.Add(time.Hour).Equal(*got.CompletedAt))
	s.Require().Equal([]string{"new", "shiny"}, got.Tags)
}

func (s *TaskRepositorySuite) TestUpdateTask_CannotTouchOtherOwner() {
	created := s.seed("alice", nil)

	hijacked := created
	hijacked.OwnerID = "bob"
	hijacked.Title = "mine now"
	s.Require().ErrorIs(s.repo.UpdateTask(s.ctx, hijacked), domain.ErrTaskNotFound)

	got, err := s.repo.GetTask(s.ctx, "alice", created.ID)
	s.Require().NoError(err)
	s.Require().Equal("task", got.Title)
}

func (s *TaskRepositorySuite) TestDeleteTask_IsPermanentAndIdempotent() {
	created := s.seed("alice", func(in *domain.CreateTaskInput) {
		in.Tags = []string{"x"}
	})

	s.Require().ErrorIs(s.repo.DeleteTask(s.ctx, "bob", created.ID), domain.ErrTaskNotFound)
	s.Require().NoError(s.repo.DeleteTask(s.ctx, "alice", created.ID))
	s.Require().ErrorIs(s.repo.DeleteTask(s.ctx, "alice", created.ID), domain.ErrTaskNotFound)

	_, err := s.repo.GetTask(s.ctx, "alice", created.ID)
	s.Require().ErrorIs(err, domain.ErrTaskNotFound)

	var remainingTags int
	s.Require().NoError(s.db.Get(&remainingTags, "SELECT COUNT(*) FROM task_tags WHERE task_id = ?", created.ID))
	s.Require().Zero(remainingTags)
}

func (s *TaskRepositorySuite) TestListTasks_SortsAndPages() {
	for _, title := range []string{"C", "A", "B", "D"} {
		title := title
		s.seed("alice", func(in *domain.CreateTaskInput) { in.Title = title })
	}
	s.seed("bob", func(in *domain.CreateTaskInput) { in.Title = "AA" })

	tasks, total := s.list("alice", domain.ListTasksParams{
		SortBy:    "title",
		SortOrder: "asc",
		Limit:     "2",
		Page:      "2",
	})
	s.Require().Equal([]string{"C", "D"}, titles(tasks))
	s.Require().Equal(4, total)

	pagination := domain.NewPagination(2, 2, total)
	s.Require().Equal(2, pagination.TotalPages)
	s.Require().False(pagination.HasNext)
	s.Require().True(pagination.HasPrev)
}

func (s *TaskRepositorySuite) TestListTasks_DefaultOrderIsNewestFirst() {
	for _, title := range []string{"first", "second", "third"} {
		title := title
		s.seed("alice", func(in *domain.CreateTaskInput) { in.Title = title })
	}

	tasks, _ := s.list("alice", domain.ListTasksParams{})
	s.Require().Equal([]string{"third", "second", "first"}, titles(tasks))
}

func (s *TaskRepositorySuite) TestListTasks_LastPageHoldsRemainder() {
	for i := 0; i < 7; i++ {
		s.seed("alice", nil)
	}

	for page, want := range map[string]int{"1": 3, "2": 3, "3": 1, "4": 0} {
		tasks, total := s.list("alice", domain.ListTasksParams{Limit: "3", Page: page})
		s.Require().Len(tasks, want, "page %s", page)
		s.Require().Equal(7, total)
	}
}

func (s *TaskRepositorySuite) TestListTasks_FiltersByStatusAndPriority() {
	completed := domain.TaskStatusCompleted
	high := domain.TaskPriorityHigh
	s.seed("alice", func(in *domain.CreateTaskInput) { in.Title = "done-high"; in.Status = &completed; in.Priority = &high })
	s.seed("alice", func(in *domain.CreateTaskInput) { in.Title = "done-medium"; in.Status = &completed })
	s.seed("alice", func(in *domain.CreateTaskInput) { in.Title = "open-high"; in.Priority = &high })
	s.seed("bob", func(in *domain.CreateTaskInput) { in.Title = "bob-done"; in.Status = &completed })

	tasks, total := s.list("alice", domain.ListTasksParams{Status: "completed", SortBy: "title", SortOrder: "asc"})
	s.Require().Equal([]string{"done-high", "done-medium"}, titles(tasks))
	s.Require().Equal(2, total)

	tasks, total = s.list("alice", domain.ListTasksParams{Status: "completed", Priority: "high"})
	s.Require().Equal([]string{"done-high"}, titles(tasks))
	s.Require().Equal(1, total)
}

func (s *TaskRepositorySuite) TestListTasks_SearchesTitleDescriptionAndTags() {
	description := "Contains ALPHA inside"
	s.seed("alice", func(in *domain.CreateTaskInput) { in.Title = "Alpha release" })
	s.seed("alice", func(in *domain.CreateTaskInput) { in.Title = "described"; in.Description = &description })
	s.seed("alice", func(in *domain.CreateTaskInput) { in.Title = "tagged"; in.Tags = []string{"beta", "project-alphabet"} })
	s.seed("alice", func(in *domain.CreateTaskInput) { in.Title = "unrelated"; in.Tags = []string{"beta"} })
	s.seed("bob", func(in *domain.CreateTaskInput) { in.Title = "alpha for bob" })

	tasks, total := s.list("alice", domain.ListTasksParams{Search: "alpha", SortBy: "title", SortOrder: "asc"})
	s.Require().Equal([]string{"Alpha release", "described", "tagged"}, titles(tasks))
	s.Require().Equal(3, total)

	tasks, _ = s.list("alice", domain.ListTasksParams{Search: "50%"})
	s.Require().Empty(tasks)
}

func (s *TaskRepositorySuite) TestListTasks_SearchFoldsNonASCIICase() {
	s.seed("alice", func(in *domain.CreateTaskInput) { in.Title = "Élan vital" })
	s.seed("alice", func(in *domain.CreateTaskInput) { in.Title = "tagged"; in.Tags = []string{"ÜBER"} })
	s.seed("alice", func(in *domain.CreateTaskInput) { in.Title = "plain" })

	for search, want := range map[string][]string{
		"élan": {"Élan vital"},
		"Élan": {"Élan vital"},
		"ÉLAN": {"Élan vital"},
		"über": {"tagged"},
		"Über": {"tagged"},
	} {
		tasks, total := s.list("alice", domain.ListTasksParams{Search: search})
		s.Require().Equal(want, titles(tasks), "search %q", search)
		s.Require().Equal(len(want), total, "search %q", search)
	}
}

func (s *TaskRepositorySuite) TestListTasks_SortByTitleComparesBytes() {
	for _, title := range []string{"banana", "Cherry", "apple", "Banana"} {
		title := title
		s.seed("alice", func(in *domain.CreateTaskInput) { in.Title = title })
	}

	tasks, _ := s.list("alice", domain.ListTasksParams{SortBy: "title", SortOrder: "asc"})
	s.Require().Equal([]string{"Banana", "Cherry", "apple", "banana"}, titles(tasks))
}

func (s *TaskRepositorySuite) TestCreateTask_StoresLongTags() {
	long := strings.Repeat("étiquette-", 40)
	created := s.seed("alice", func(in *domain.CreateTaskInput) { in.Tags = []string{long} })

	got, err := s.repo.GetTask(s.ctx, "alice", created.ID)
	s.Require().NoError(err)
	s.Require().Equal([]string{long}, got.Tags)
}

func (s *TaskRepositorySuite) TestListTasks_SortByPriorityUsesLabels() {
	for _, priority := range []domain.TaskPriority{domain.TaskPriorityUrgent, domain.TaskPriorityLow, domain.TaskPriorityHigh, domain.TaskPriorityMedium} {
		priority := priority
		s.seed("alice", func(in *domain.CreateTaskInput) { in.Title = string(priority); in.Priority = &priority })
	}

	tasks, _ := s.list("alice", domain.ListTasksParams{SortBy: "priority", SortOrder: "asc"})
	s.Require().Equal([]string{"high", "low", "medium", "urgent"}, titles(tasks))
}

func (s *TaskRepositorySuite) TestListTasks_SortByDueDatePutsMissingFirstAscending() {
	soon := s.now.Add(time.Hour)
	later := s.now.Add(48 * time.Hour)
	s.seed("alice", func(in *domain.CreateTaskInput) { in.Title = "later"; in.DueDate = &later })
	s.seed("alice", func(in *domain.CreateTaskInput) { in.Title = "none" })
	s.seed("alice", func(in *domain.CreateTaskInput) { in.Title = "soon"; in.DueDate = &soon })

	tasks, _ := s.list("alice", domain.ListTasksParams{SortBy: "dueDate", SortOrder: "asc"})
	s.Require().Equal([]string{"none", "soon", "later"}, titles(tasks))

	tasks, _ = s.list("alice", domain.ListTasksParams{SortBy: "dueDate", SortOrder: "desc"})
	s.Require().Equal([]string{"later", "soon", "none"}, titles(tasks))
}

func (s *TaskRepositorySuite) TestTaskStats() {
	yesterday := s.now.Add(-24 * time.Hour)
	tomorrow := s.now.Add(24 * time.Hour)
	completed := domain.TaskStatusCompleted
	inProgress := domain.TaskStatusInProgress
	cancelled := domain.TaskStatusCancelled
	high := domain.TaskPriorityHigh
	urgent := domain.TaskPriorityUrgent

	s.seed("alice", func(in *domain.CreateTaskInput) { in.Priority = &high; in.DueDate = &yesterday })
	s.seed("alice", func(in *domain.CreateTaskInput) { in.Status = &completed; in.DueDate = &yesterday })
	s.seed("alice", func(in *domain.CreateTaskInput) { in.Status = &inProgress; in.Priority = &urgent; in.DueDate = &tomorrow })
	s.seed("alice", func(in *domain.CreateTaskInput) { in.Status = &cancelled })
	s.seed("bob", func(in *domain.CreateTaskInput) { in.Priority = &urgent; in.DueDate = &yesterday })

	stats, err := s.repo.TaskStats(s.ctx, "alice", s.now)
	s.Require().NoError(err)
	s.Require().Equal(domain.TaskStats{
		Total:      4,
		Completed:  1,
		Pending:    1,
		InProgress: 1,
		Cancelled:  1,
		Urgent:     1,
		High:       1,
		Overdue:    1,
	}, stats)
}

func (s *TaskRepositorySuite) TestTaskStats_EmptyOwner() {
	stats, err := s.repo.TaskStats(s.ctx, "nobody", s.now)
	s.Require().NoError(err)
	s.Require().Equal(domain.TaskStats{}, stats)
}
