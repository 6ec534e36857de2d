package command

import (
	"go.mongodb.org/mongo-driver/bson"
)

// UpdateBuilder assembles an update document grouped by operator.
type UpdateBuilder struct {
	update bson.M
}

func NewUpdateBuilder() *UpdateBuilder {
	return &UpdateBuilder{update: bson.M{}}
}

func (u *UpdateBuilder) op(name, key string, value interface{}) *UpdateBuilder {
	if u.update[name] == nil {
		u.update[name] = bson.M{}
	}
	u.update[name].(bson.M)[key] = value
	return u
}

func (u *UpdateBuilder) Set(key string, value interface{}) *UpdateBuilder {
	return u.op("$set", key, value)
}

// Unset removes key from the stored document.
func (u *UpdateBuilder) Unset(key string) *UpdateBuilder {
	return u.op("$unset", key, "")
}

func (u *UpdateBuilder) Build() bson.M {
	return u.update
}
