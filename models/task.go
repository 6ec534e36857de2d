package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TaskType string

const (
	TaskTypeEpic    TaskType = "Epic"
	TaskTypeStory   TaskType = "Story"
	TaskTypeTask    TaskType = "Task"
	TaskTypeBug     TaskType = "Bug"
	TaskTypeSubtask TaskType = "Subtask"
	TaskTypeSpike   TaskType = "Spike"
)

type TaskStatus string

const (
	TaskStatusToDo       TaskStatus = "ToDo"
	TaskStatusInProgress TaskStatus = "InProgress"
	TaskStatusInReview   TaskStatus = "InReview"
	TaskStatusTesting    TaskStatus = "Testing"
	TaskStatusDone       TaskStatus = "Done"
	TaskStatusBlocked    TaskStatus = "Blocked"
)

func (t TaskType) IsValid() bool {
	switch t {
	case TaskTypeEpic, TaskTypeStory, TaskTypeTask, TaskTypeBug, TaskTypeSubtask, TaskTypeSpike:
		return true
	default:
		return false
	}
}

func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusToDo, TaskStatusInProgress, TaskStatusInReview, TaskStatusTesting, TaskStatusDone, TaskStatusBlocked:
		return true
	default:
		return false
	}
}

// TaskPriority runs from Lowest (0) to Critical (5).
type TaskPriority int

const (
	PriorityLowest TaskPriority = iota
	PriorityLow
	PriorityMedium
	PriorityHigh
	PriorityHighest
	PriorityCritical
)

type Task struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	TaskKey     string              `bson:"taskKey" json:"taskKey"`
	ProjectID   primitive.ObjectID  `bson:"projectId" json:"projectId"`
	SprintID    *primitive.ObjectID `bson:"sprintId" json:"sprintId"`
	Title       string              `bson:"title" json:"title"`
	Description *string             `bson:"description,omitempty" json:"description,omitempty"`
	Type        TaskType            `bson:"type" json:"type"`
	Status      TaskStatus          `bson:"status" json:"status"`
	Priority    TaskPriority        `bson:"priority" json:"priority"`
	StoryPoints *int                `bson:"storyPoints,omitempty" json:"storyPoints,omitempty"`
	AssigneeID  *primitive.ObjectID `bson:"assigneeId,omitempty" json:"assigneeId,omitempty"`
	ReporterID  primitive.ObjectID  `bson:"reporterId" json:"reporterId"`
	Order       int                 `bson:"order" json:"order"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt" json:"updatedAt"`
	CompletedAt *time.Time          `bson:"completedAt,omitempty" json:"completedAt,omitempty"`

	EstimatedHours *float64   `bson:"estimatedHours,omitempty" json:"estimatedHours,omitempty"`
	LoggedHours    float64    `bson:"loggedHours" json:"loggedHours"`
	RemainingHours *float64   `bson:"remainingHours,omitempty" json:"remainingHours,omitempty"`
	Labels         []string   `bson:"labels,omitempty" json:"labels,omitempty"`
	DueDate        *time.Time `bson:"dueDate,omitempty" json:"dueDate,omitempty"`
}

// Points returns the task's story points, zero when unestimated.
func (t *Task) Points() int {
	if t.StoryPoints == nil {
		return 0
	}
	return *t.StoryPoints
}

type CreateTaskRequest struct {
	ProjectID   primitive.ObjectID  `json:"projectId"`
	SprintID    *primitive.ObjectID `json:"sprintId,omitempty"`
	Title       string              `json:"title"`
	Description *string             `json:"description,omitempty"`
	Type        TaskType            `json:"type"`
	Priority    TaskPriority        `json:"priority"`
	StoryPoints *int                `json:"storyPoints,omitempty"`
	AssigneeID  *primitive.ObjectID `json:"assigneeId,omitempty"`
}

// UpdateTaskRequest changes only the fields that are set. AssigneeID and
// SprintID cannot be cleared here; Move returns a task to the backlog.
type UpdateTaskRequest struct {
	Title          *string             `json:"title,omitempty"`
	Description    *string             `json:"description,omitempty"`
	Type           *TaskType           `json:"type,omitempty"`
	Status         *TaskStatus         `json:"status,omitempty"`
	Priority       *TaskPriority       `json:"priority,omitempty"`
	StoryPoints    *int                `json:"storyPoints,omitempty"`
	EstimatedHours *float64            `json:"estimatedHours,omitempty"`
	RemainingHours *float64            `json:"remainingHours,omitempty"`
	AssigneeID     *primitive.ObjectID `json:"assigneeId,omitempty"`
	SprintID       *primitive.ObjectID `json:"sprintId,omitempty"`
	Labels         []string            `json:"labels,omitempty"`
	DueDate        *time.Time          `json:"dueDate,omitempty"`
	Order          *int                `json:"order,omitempty"`
}

type LogTimeRequest struct {
	Hours       float64 `json:"hours"`
	Description *string `json:"description,omitempty"`
}

// TaskFilter selects tasks for the paged task query. Unset fields match
// everything; Search matches title or task key case-insensitively.
type TaskFilter struct {
	ProjectID  *primitive.ObjectID
	SprintID   *primitive.ObjectID
	AssigneeID *primitive.ObjectID
	Status     *TaskStatus
	Type       *TaskType
	Priority   *TaskPriority
	Search     string
	Page       int
	PageSize   int
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Clamp forces Page to at least 1 and PageSize into [1, MaxPageSize],
// defaulting it to DefaultPageSize.
func (f *TaskFilter) Clamp() {
	if f.Page < 1 {
		f.Page = 1
	}
	switch {
	case f.PageSize == 0:
		f.PageSize = DefaultPageSize
	case f.PageSize < 1:
		f.PageSize = 1
	case f.PageSize > MaxPageSize:
		f.PageSize = MaxPageSize
	}
}

// Skip is the number of matches before the current page.
func (f *TaskFilter) Skip() int {
	return (f.Page - 1) * f.PageSize
}

type MoveTaskRequest struct {
	SprintID *primitive.ObjectID `json:"sprintId"`
	Order    int                 `json:"order"`
}

// TaskPointTotals sums estimated and Done story points over tasks.
func TaskPointTotals(tasks []*Task) (total, completed int) {
	for _, t := range tasks {
		if t == nil || t.StoryPoints == nil {
			continue
		}
		total += *t.StoryPoints
		if t.Status == TaskStatusDone {
			completed += *t.StoryPoints
		}
	}
	return total, completed
}
