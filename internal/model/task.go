package model

import (
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in-progress"
	StatusCompleted  TaskStatus = "completed"
)

// Valid reports whether s is one of the known statuses. Any status may follow any other.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Task struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey"`
	OwnerID     uuid.UUID    `gorm:"type:uuid;not null"`
	Title       string       `gorm:"not null"`
	Description string       `gorm:"not null"`
	Status      TaskStatus   `gorm:"type:varchar(16);not null"`
	Priority    TaskPriority `gorm:"type:varchar(16);not null"`
	DueDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TaskChanges holds the mutable fields applied by an owner-scoped update.
// Nil pointers leave the stored value untouched.
type TaskChanges struct {
	Title       string
	Description string
	Status      *TaskStatus
	Priority    *TaskPriority
	DueDate     *time.Time
}

// TaskPage is one page of an owner's tasks plus the paging envelope.
type TaskPage struct {
	Items      []Task
	Total      int64
	Page       int
	PageSize   int
	TotalPages int
}
