package domain

import "time"

// TaskStatus enumerates follow-up task states.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

// Task is a follow-up item against a merchant.
type Task struct {
	ID          string
	MerchantID  string
	AssignedTo  *string
	Title       string
	Description string
	Status      TaskStatus
	DueDate     *time.Time
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// EnrichedTask is a task with its assignee and merchant resolved.
type EnrichedTask struct {
	Task
	AssignedUser *Profile
	Merchant     *Merchant
}
