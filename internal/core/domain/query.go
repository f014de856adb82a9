package domain

import (
	"strconv"
	"strings"
)

type SortField string

const (
	SortByTitle     SortField = "title"
	SortByDueDate   SortField = "dueDate"
	SortByPriority  SortField = "priority"
	SortByStatus    SortField = "status"
	SortByCreatedAt SortField = "createdAt"
)

var sortFields = []SortField{SortByTitle, SortByDueDate, SortByPriority, SortByStatus, SortByCreatedAt}

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// ListTasksParams holds the raw list parameters as received from the caller.
// Empty strings mean "not provided".
type ListTasksParams struct {
	Status    string
	Priority  string
	Search    string
	SortBy    string
	SortOrder string
	Page      string
	Limit     string
}

// TaskQuery is a validated selection over one owner's tasks.
type TaskQuery struct {
	OwnerID   string
	Status    *TaskStatus
	Priority  *TaskPriority
	Search    string
	SortBy    SortField
	SortOrder SortOrder
	Page      int
	Limit     int
}

func (q TaskQuery) Skip() int {
	return (q.Page - 1) * q.Limit
}

// NewTaskQuery validates params for ownerID. All failing parameters are
// reported together.
func NewTaskQuery(ownerID string, params ListTasksParams) (TaskQuery, error) {
	verr := &ValidationError{}
	q := TaskQuery{
		OwnerID:   ownerID,
		SortBy:    SortByCreatedAt,
		SortOrder: SortDesc,
		Page:      DefaultPage,
		Limit:     DefaultLimit,
	}

	if params.Status != "" {
		status := TaskStatus(params.Status)
		if status.Valid() {
			q.Status = &status
		} else {
			verr.Add("status", RuleOneOf, joinStatuses())
		}
	}

	if params.Priority != "" {
		priority := TaskPriority(params.Priority)
		if priority.Valid() {
			q.Priority = &priority
		} else {
			verr.Add("priority", RuleOneOf, joinPriorities())
		}
	}

	q.Search = strings.TrimSpace(params.Search)

	if params.SortBy != "" {
		sortBy := SortField(params.SortBy)
		if sortBy.valid() {
			q.SortBy = sortBy
		} else {
			verr.Add("sortBy", RuleOneOf, joinSortFields())
		}
	}

	if params.SortOrder != "" {
		switch order := SortOrder(params.SortOrder); order {
		case SortAsc, SortDesc:
			q.SortOrder = order
		default:
			verr.Add("sortOrder", RuleOneOf, string(SortAsc)+" "+string(SortDesc))
		}
	}

	if params.Page != "" {
		page, err := strconv.Atoi(params.Page)
		switch {
		case err != nil:
			verr.Add("page", RuleInteger, "")
		case page < 1:
			verr.Add("page", RuleMin, "1")
		default:
			q.Page = page
		}
	}

	if params.Limit != "" {
		limit, err := strconv.Atoi(params.Limit)
		switch {
		case err != nil:
			verr.Add("limit", RuleInteger, "")
		case limit < 1:
			verr.Add("limit", RuleMin, "1")
		case limit > MaxLimit:
			verr.Add("limit", RuleMax, strconv.Itoa(MaxLimit))
		default:
			q.Limit = limit
		}
	}

	if err := verr.Err(); err != nil {
		return TaskQuery{}, err
	}
	return q, nil
}

func (f SortField) valid() bool {
	for _, field := range sortFields {
		if f == field {
			return true
		}
	}
	return false
}

func joinSortFields() string {
	values := make([]string, 0, len(sortFields))
	for _, field := range sortFields {
		values = append(values, string(field))
	}
	return strings.Join(values, " ")
}

type Pagination struct {
	CurrentPage int
	TotalPages  int
	TotalTasks  int
	HasNext     bool
	HasPrev     bool
}

func NewPagination(page, limit, total int) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalTasks:  total,
		HasNext:     page*limit < total,
		HasPrev:     page > 1,
	}
}

type TaskPage struct {
	Tasks      []Task
	Pagination Pagination
}
