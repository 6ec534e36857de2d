package mongo

import (
	"errors"
	"testing"

	"github.com/mytrueresume-stack/SprintTracker/services/mongo/command"
	"github.com/mytrueresume-stack/SprintTracker/services/tracker"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStoreErr(t *testing.T) {
	assert.NoError(t, storeErr("find sprint", nil))
	assert.ErrorIs(t, storeErr("find sprint", mongo.ErrNoDocuments), tracker.ErrNotFound)
	assert.ErrorIs(t, storeErr("update task", command.ErrNoMatch), tracker.ErrNotFound)

	dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key"}}}
	assert.ErrorIs(t, storeErr("insert submission", dup), tracker.ErrDuplicateKey)

	boom := errors.New("connection refused")
	err := storeErr("list tasks", boom)
	assert.ErrorIs(t, err, boom)
	assert.EqualError(t, err, "failed to list tasks: connection refused")
}
