package command

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func TestUpdateBuilder(t *testing.T) {
	at := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	update := NewUpdateBuilder().
		Set("submissionStatus", "Submitted").
		Set("updatedAt", at).
		Unset("submittedAt").
		Build()

	assert.Equal(t, bson.M{
		"$set":   bson.M{"submissionStatus": "Submitted", "updatedAt": at},
		"$unset": bson.M{"submittedAt": ""},
	}, update)
}
