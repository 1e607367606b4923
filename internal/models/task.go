package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// Valid reports whether p is one of the known priorities.
func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

type Task struct {
	ID          string       `gorm:"type:varchar(36);primarykey" bson:"_id" json:"_id"`
	Title       string       `gorm:"type:varchar(100);not null" bson:"title" json:"title"`
	Description string       `gorm:"type:text" bson:"description" json:"description"`
	OwnerID     string       `gorm:"type:varchar(36);not null;index:idx_tasks_owner_created,priority:1" bson:"userId" json:"userId"`
	Status      TaskStatus   `gorm:"type:varchar(20);not null;default:'pending'" bson:"status" json:"status"`
	Priority    TaskPriority `gorm:"type:varchar(20);not null;default:'medium'" bson:"priority" json:"priority"`
	DueDate     *time.Time   `bson:"dueDate" json:"dueDate"`
	Tags        []string     `gorm:"type:text;serializer:json" bson:"tags" json:"tags"`
	CreatedAt   time.Time    `gorm:"index:idx_tasks_owner_created,priority:2,sort:desc" bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time    `bson:"updatedAt" json:"updatedAt"`
}

// BeforeCreate assigns a UUID when the caller has not set one.
func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
