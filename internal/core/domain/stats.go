package domain

// TaskStats are the per-owner counters shown on the dashboard. The zero
// value is the answer for an owner without tasks.
type TaskStats struct {
	Total      int
	Completed  int
	Pending    int
	InProgress int
	Cancelled  int
	Urgent     int
	High       int
	Overdue    int
}
