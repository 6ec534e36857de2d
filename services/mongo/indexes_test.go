package mongo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestSubmissionIndexIsUnique(t *testing.T) {
	idx := indexModels()[submissionsCollection]
	require.NotEmpty(t, idx)

	first := idx[0]
	assert.Equal(t, bson.D{{Key: "sprintId", Value: 1}, {Key: "userId", Value: 1}}, first.Keys)
	require.NotNil(t, first.Options)
	require.NotNil(t, first.Options.Unique)
	assert.True(t, *first.Options.Unique)
}

func TestEveryCollectionIsIndexed(t *testing.T) {
	idx := indexModels()
	for _, name := range []string{
		usersCollection, projectsCollection, sprintsCollection, tasksCollection,
		submissionsCollection, metricsCollection, activityCollection,
	} {
		assert.NotEmpty(t, idx[name], name)
	}
	assert.True(t, *idx[usersCollection][0].Options.Unique)
	assert.True(t, *idx[projectsCollection][0].Options.Unique)
}
