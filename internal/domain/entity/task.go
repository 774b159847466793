package entity

import "time"

// Prioridades de Task.
const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
)

// TaskStatus estado de Task.
type TaskStatus string

const (
	TaskPending    TaskStatus = "PENDING"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskCompleted  TaskStatus = "COMPLETED"
)

// Task tarea asignada a un usuario. Es la única entidad que se borra físicamente.
type Task struct {
	ID          string
	Title       string
	Description string
	AssigneeID  string
	ClientID    *string
	DueDate     *time.Time
	Priority    string
	Status      TaskStatus
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
