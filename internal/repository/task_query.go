package repository

import (
	"github.com/yukikurage/taskboard-api/internal/models"
)

// TaskSort selects the ordering of a task listing.
type TaskSort string

const (
	// SortNewest orders by creation time, newest first.
	SortNewest TaskSort = ""
	// SortDueDate orders by due date ascending with undated tasks last.
	SortDueDate TaskSort = "due-date"
	// SortPriority orders by the priority label ascending, then newest first.
	SortPriority TaskSort = "priority"
)

// Valid reports whether s is a known sort mode.
func (s TaskSort) Valid() bool {
	switch s {
	case SortNewest, SortDueDate, SortPriority:
		return true
	}
	return false
}

// TaskGroupField is a task attribute that can be aggregated on.
type TaskGroupField string

const (
	GroupByStatus   TaskGroupField = "status"
	GroupByPriority TaskGroupField = "priority"
)

// TaskQuery is the typed filter/sort specification for listing tasks.
// Every criterion is conjunctive and the result is always scoped to OwnerID.
type TaskQuery struct {
	OwnerID  string
	Status   *models.TaskStatus
	Priority *models.TaskPriority
	// Search is matched as a literal, case-insensitive substring of title or description.
	Search   string
	Sort     TaskSort
	Page     int
	PageSize int
}

// Paginated reports whether the query asks for a single page.
func (q TaskQuery) Paginated() bool {
	return q.Page > 0 && q.PageSize > 0
}

// Offset returns the number of records to skip for the requested page.
func (q TaskQuery) Offset() int {
	if !q.Paginated() {
		return 0
	}
	return (q.Page - 1) * q.PageSize
}
