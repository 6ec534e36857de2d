package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestBuilder(t *testing.T) {
	ids := []primitive.ObjectID{primitive.NewObjectID()}
	user := primitive.NewObjectID()

	filter := NewBuilder().
		WhereIn("projectId", ids).
		WhereNe("status", "Done").
		WhereNull("sprintId").
		Or(bson.M{"ownerId": user}, bson.M{"teamMembers": user}).
		Build()

	assert.Equal(t, bson.M{
		"projectId": bson.M{"$in": ids},
		"status":    bson.M{"$ne": "Done"},
		"sprintId":  nil,
		"$or":       []bson.M{{"ownerId": user}, {"teamMembers": user}},
	}, filter)
}

func TestBuilderSearch(t *testing.T) {
	filter := NewBuilder().Where("isActive", true).Search(" a.b ", "firstName", "email").Build()
	re := primitive.Regex{Pattern: `a\.b`, Options: "i"}
	assert.Equal(t, bson.M{
		"isActive": true,
		"$or":      []bson.M{{"firstName": re}, {"email": re}},
	}, filter)

	assert.Equal(t, bson.M{}, NewBuilder().Search("   ", "title").Build())
}
