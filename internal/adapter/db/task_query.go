package db

import (
	"bytes"
	"strings"

	"taskmanager/internal/core/domain"
)

const taskColumns = `
  t.id,
  t.owner_id,
  t.title,
  t.description,
  t.status,
  t.priority,
  t.due_date,
  t.completed_at,
  t.is_completed,
  t.estimated_time,
  t.actual_time,
  t.created_at,
  t.updated_at`

// likeEscape is portable across MySQL, SQLite and Postgres, unlike backslash.
const likeEscape = "!"

var sortColumns = map[domain.SortField]string{
	domain.SortByTitle:     "t.title",
	domain.SortByDueDate:   "t.due_date",
	domain.SortByPriority:  "t.priority",
	domain.SortByStatus:    "t.status",
	domain.SortByCreatedAt: "t.created_at",
}

// textSortColumns are compared byte by byte on every dialect.
var textSortColumns = map[string]bool{
	"t.title": true,
}

// nullableSortColumns get an explicit null rank so every dialect puts
// missing values first ascending and last descending.
var nullableSortColumns = map[string]bool{
	"t.due_date": true,
}

// buildTaskSelection renders the WHERE clause of q. The owner clause is
// always first and cannot be dropped by any other filter.
func buildTaskSelection(d sqlDialect, q domain.TaskQuery) (string, []any) {
	var buf bytes.Buffer
	args := []any{q.OwnerID}

	buf.WriteString(" WHERE t.owner_id = ?")

	if q.Status != nil {
		buf.WriteString(" AND t.status = ?")
		args = append(args, string(*q.Status))
	}

	if q.Priority != nil {
		buf.WriteString(" AND t.priority = ?")
		args = append(args, string(*q.Priority))
	}

	if q.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(q.Search)) + "%"
		like := " LIKE ? ESCAPE '" + likeEscape + "'"
		buf.WriteString(" AND (" + d.lower + "(t.title)" + like)
		buf.WriteString(" OR " + d.lower + "(COALESCE(t.description, ''))" + like)
		buf.WriteString(" OR EXISTS (SELECT 1 FROM task_tags tt WHERE tt.task_id = t.id AND " + d.lower + "(tt.tag)" + like + "))")
		args = append(args, pattern, pattern, pattern)
	}

	return buf.String(), args
}

// buildTaskOrder renders ORDER BY with the id as a deterministic tie breaker.
// Enum columns sort on their labels, not on a severity rank.
func buildTaskOrder(d sqlDialect, q domain.TaskQuery) string {
	column, ok := sortColumns[q.SortBy]
	if !ok {
		column = sortColumns[domain.SortByCreatedAt]
	}

	direction := "DESC"
	if q.SortOrder == domain.SortAsc {
		direction = "ASC"
	}

	var buf bytes.Buffer
	buf.WriteString(" ORDER BY ")
	if nullableSortColumns[column] {
		buf.WriteString("CASE WHEN " + column + " IS NULL THEN 0 ELSE 1 END " + direction + ", ")
	}
	buf.WriteString(column)
	if textSortColumns[column] {
		buf.WriteString(d.binaryCollate)
	}
	buf.WriteString(" " + direction)
	buf.WriteString(", t.id " + direction)

	return buf.String()
}

func buildListTasksQuery(d sqlDialect, q domain.TaskQuery) (string, []any) {
	where, args := buildTaskSelection(d, q)

	var buf bytes.Buffer
	buf.WriteString("SELECT")
	buf.WriteString(taskColumns)
	buf.WriteString("\nFROM tasks t")
	buf.WriteString(where)
	buf.WriteString(buildTaskOrder(d, q))
	buf.WriteString(" LIMIT ? OFFSET ?")

	return buf.String(), append(args, q.Limit, q.Skip())
}

func buildCountTasksQuery(d sqlDialect, q domain.TaskQuery) (string, []any) {
	where, args := buildTaskSelection(d, q)
	return "SELECT COUNT(*) FROM tasks t" + where, args
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(
		likeEscape, likeEscape+likeEscape,
		"%", likeEscape+"%",
		"_", likeEscape+"_",
	)
	return replacer.Replace(value)
}
