package dto

type Owner struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type TaskItem struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   *string  `json:"description"`
	Status        string   `json:"status"`
	Priority      string   `json:"priority"`
	DueDate       *string  `json:"dueDate"`
	CompletedAt   *string  `json:"completedAt"`
	Tags          []string `json:"tags"`
	Owner         *Owner   `json:"owner,omitempty"`
	IsCompleted   bool     `json:"isCompleted"`
	IsOverdue     bool     `json:"isOverdue"`
	EstimatedTime *int     `json:"estimatedTime"`
	ActualTime    *int     `json:"actualTime"`
	CreatedAt     string   `json:"createdAt"`
	UpdatedAt     string   `json:"updatedAt"`
}

type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalTasks  int  `json:"totalTasks"`
	HasNext     bool `json:"hasNext"`
	HasPrev     bool `json:"hasPrev"`
}

type TaskListResponse struct {
	Tasks      []TaskItem `json:"tasks"`
	Pagination Pagination `json:"pagination"`
}

type TaskResponse struct {
	Task TaskItem `json:"task"`
}

type TaskMessageResponse struct {
	Message string   `json:"message"`
	Task    TaskItem `json:"task"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type TaskStats struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	Pending    int `json:"pending"`
	InProgress int `json:"inProgress"`
	Cancelled  int `json:"cancelled"`
	Urgent     int `json:"urgent"`
	High       int `json:"high"`
	Overdue    int `json:"overdue"`
}

type TaskStatsResponse struct {
	Stats TaskStats `json:"stats"`
}
