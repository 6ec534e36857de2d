package query

import (
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Builder accumulates an AND filter. Setting the same key twice keeps
// the last condition.
type Builder struct {
	filter bson.M
}

func NewBuilder() *Builder {
	return &Builder{filter: bson.M{}}
}

func (b *Builder) cond(key string, value interface{}) *Builder {
	b.filter[key] = value
	return b
}

func (b *Builder) Where(key string, value interface{}) *Builder {
	return b.cond(key, value)
}

// WhereIn takes a slice value, e.g. []primitive.ObjectID.
func (b *Builder) WhereIn(key string, values interface{}) *Builder {
	return b.cond(key, bson.M{"$in": values})
}

func (b *Builder) WhereNe(key string, value interface{}) *Builder {
	return b.cond(key, bson.M{"$ne": value})
}

// WhereNull also matches documents where key is missing.
func (b *Builder) WhereNull(key string) *Builder {
	return b.cond(key, nil)
}

func (b *Builder) Or(clauses ...bson.M) *Builder {
	return b.cond("$or", clauses)
}

// Search matches term literally and case-insensitively against any of keys.
// A blank term adds nothing. It occupies $or, so it does not combine with Or.
func (b *Builder) Search(term string, keys ...string) *Builder {
	term = strings.TrimSpace(term)
	if term == "" || len(keys) == 0 {
		return b
	}
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
	clauses := make([]bson.M, 0, len(keys))
	for _, k := range keys {
		clauses = append(clauses, bson.M{k: pattern})
	}
	return b.Or(clauses...)
}

func (b *Builder) Build() bson.M {
	return b.filter
}
