package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type FieldChange struct {
	FieldName string  `bson:"field" json:"field"`
	OldValue  *string `bson:"oldValue,omitempty" json:"oldValue,omitempty"`
	NewValue  *string `bson:"newValue,omitempty" json:"newValue,omitempty"`
}

type ActivityLog struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EntityType string             `bson:"entityType" json:"entityType"`
	EntityID   primitive.ObjectID `bson:"entityId" json:"entityId"`
	Action     string             `bson:"action" json:"action"`
	UserID     primitive.ObjectID `bson:"userId" json:"userId"`
	Changes    []FieldChange      `bson:"changes" json:"changes"`
	Timestamp  time.Time          `bson:"timestamp" json:"timestamp"`
}

// SprintMetrics is a daily burndown snapshot.
type SprintMetrics struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SprintID        primitive.ObjectID `bson:"sprintId" json:"sprintId"`
	Date            time.Time          `bson:"date" json:"date"`
	TotalPoints     int                `bson:"totalPoints" json:"totalPoints"`
	CompletedPoints int                `bson:"completedPoints" json:"completedPoints"`
	RemainingPoints int                `bson:"remainingPoints" json:"remainingPoints"`
	TasksByStatus   map[string]int     `bson:"tasksByStatus" json:"tasksByStatus"`
}
