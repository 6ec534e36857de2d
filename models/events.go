package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SubmissionEvent is published after every successful submission mutation.
type SubmissionEvent struct {
	Action       string             `json:"action"`
	SubmissionID primitive.ObjectID `json:"submissionId"`
	SprintID     primitive.ObjectID `json:"sprintId"`
	UserID       primitive.ObjectID `json:"userId"`
	Status       SubmissionStatus   `json:"status"`
	At           time.Time          `json:"at"`
}

func (e SubmissionEvent) Type() string {
	return "submission." + e.Action
}
