package repositories

import (
	"strings"

	"netowork_backend/internal/models"
)

// TaskFilter - уже провалидированные параметры выборки задач
type TaskFilter struct {
	Search         string
	SubcategoryIDs []int64
	Sort           []string
	Status         *models.TaskStatus
	ClientID       *int64
	RepliedBy      *int64
	TaskID         *int64
	Page           models.Page
}

var taskSortColumns = map[string]string{
	"createdAt-asc":  "t.created_at ASC",
	"createdAt-desc": "t.created_at DESC",
	"price-asc":      "t.price ASC",
	"price-desc":     "t.price DESC",
}

const taskSelect = `
SELECT
	t.id, t.title, t.description, t.price, t.status,
	t.category_id, t.subcategory_id, t.client_id, t.freelancer_id,
	t.notify_about_replies, t.created_at, t.updated_at,
	c.name AS category,
	sc.name AS subcategory,
	u.first_name || ' ' || u.last_name AS creator,
	COALESCE((
		SELECT json_agg(json_build_object(
			'id', tf.id,
			'fileId', tf.file_id,
			'fileUrl', tf.file_url,
			'fileName', tf.file_name
		) ORDER BY tf.id)
		FROM task_files tf
		WHERE tf.task_id = t.id
	), '[]'::json) AS files,
	COUNT(*) OVER() AS total_count` + taskFrom

const taskFrom = `
FROM tasks t
JOIN categories c ON c.id = t.category_id
LEFT JOIN categories sc ON sc.id = t.subcategory_id
JOIN users u ON u.id = t.client_id`

// buildTaskQuery собирает SQL и аргументы. Значения из фильтра идут
// только через плейсхолдеры, сортировка только из белого списка.
func buildTaskQuery(f TaskFilter) (string, []interface{}) {
	where, args := taskWhere(f)

	var sb strings.Builder
	sb.WriteString(taskSelect)
	sb.WriteString(where)
	sb.WriteString("\nORDER BY ")
	sb.WriteString(taskOrderBy(f.Sort))

	if f.Page.Limit > 0 {
		sb.WriteString("\nLIMIT ? OFFSET ?")
		args = append(args, f.Page.Limit, f.Page.Offset())
	}

	return sb.String(), args
}

// buildTaskCountQuery считает строки того же фильтра без страницы
func buildTaskCountQuery(f TaskFilter) (string, []interface{}) {
	where, args := taskWhere(f)
	return "SELECT COUNT(*)" + taskFrom + where, args
}

func taskWhere(f TaskFilter) (string, []interface{}) {
	var where []string
	var args []interface{}

	if f.TaskID != nil {
		where = append(where, "t.id = ?")
		args = append(args, *f.TaskID)
	}
	if f.Status != nil {
		where = append(where, "t.status = ?")
		args = append(args, string(*f.Status))
	}
	if f.ClientID != nil {
		where = append(where, "t.client_id = ?")
		args = append(args, *f.ClientID)
	}
	if f.RepliedBy != nil {
		where = append(where, "EXISTS (SELECT 1 FROM task_replies tr WHERE tr.task_id = t.id AND tr.freelancer_id = ?)")
		args = append(args, *f.RepliedBy)
	}
	if len(f.SubcategoryIDs) > 0 {
		where = append(where, "t.subcategory_id IN ?")
		args = append(args, f.SubcategoryIDs)
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		pattern := "%" + escapeLike(search) + "%"
		where = append(where, "(t.title ILIKE ? OR t.description ILIKE ?)")
		args = append(args, pattern, pattern)
	}

	if len(where) == 0 {
		return "", args
	}
	return "\nWHERE " + strings.Join(where, " AND "), args
}

// taskOrderBy: по умолчанию t.id ASC, он же добавляется последним для стабильной пагинации
func taskOrderBy(sort []string) string {
	parts := make([]string, 0, len(sort)+1)
	seen := make(map[string]bool, len(sort))
	for _, s := range sort {
		col, ok := taskSortColumns[s]
		if !ok || seen[s] {
			continue
		}
		seen[s] = true
		parts = append(parts, col)
	}
	parts = append(parts, "t.id ASC")
	return strings.Join(parts, ", ")
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
