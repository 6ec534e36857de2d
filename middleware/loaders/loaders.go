package loaders

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/graph-gophers/dataloader"
	"github.com/mytrueresume-stack/SprintTracker/models"
	"github.com/mytrueresume-stack/SprintTracker/services/tracker"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const unknownUser = "Unknown"

// Loaders holds the request-scoped batch loaders.
type Loaders struct {
	UserLoader *dataloader.Loader
}

func NewLoaders(users tracker.UserStore) *Loaders {
	return &Loaders{
		UserLoader: newUserLoader(users),
	}
}

func newUserLoader(users tracker.UserStore) *dataloader.Loader {
	return dataloader.NewBatchedLoader(func(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
		ids := make([]primitive.ObjectID, len(keys))
		for i, key := range keys {
			id, err := primitive.ObjectIDFromHex(key.String())
			if err != nil {
				return resultsWithError(len(keys), fmt.Errorf("invalid user ID: %s", key.String()))
			}
			ids[i] = id
		}

		found, err := users.FindByIDs(ctx, ids)
		if err != nil {
			return resultsWithError(len(keys), err)
		}

		userMap := make(map[primitive.ObjectID]*models.User, len(found))
		for _, user := range found {
			userMap[user.ID] = user
		}

		results := make([]*dataloader.Result, len(keys))
		for i, id := range ids {
			if user, exists := userMap[id]; exists {
				results[i] = &dataloader.Result{Data: user}
			} else {
				results[i] = &dataloader.Result{Error: fmt.Errorf("user %s: %w", id.Hex(), tracker.ErrNotFound)}
			}
		}
		return results
	}, dataloader.WithWait(2*time.Millisecond))
}

// User loads one user through the batch.
func (l *Loaders) User(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	data, err := l.UserLoader.Load(ctx, ObjectIDKey(id))()
	if err != nil {
		return nil, err
	}
	return data.(*models.User), nil
}

// UserNames resolves display names for ids in one batch. Users that cannot
// be loaded are named "Unknown".
func (l *Loaders) UserNames(ctx context.Context, ids []primitive.ObjectID) map[primitive.ObjectID]string {
	thunks := make(map[primitive.ObjectID]dataloader.Thunk, len(ids))
	for _, id := range ids {
		if _, ok := thunks[id]; !ok {
			thunks[id] = l.UserLoader.Load(ctx, ObjectIDKey(id))
		}
	}

	names := make(map[primitive.ObjectID]string, len(thunks))
	for id, thunk := range thunks {
		data, err := thunk()
		if err != nil {
			names[id] = unknownUser
			continue
		}
		names[id] = data.(*models.User).FullName()
	}
	return names
}

func resultsWithError(count int, err error) []*dataloader.Result {
	results := make([]*dataloader.Result, count)
	for i := range results {
		results[i] = &dataloader.Result{Error: err}
	}
	return results
}

type ctxKey string

const loadersKey ctxKey = "dataloaders"

// For returns the request's loaders, or nil outside Middleware.
func For(ctx context.Context) *Loaders {
	l, _ := ctx.Value(loadersKey).(*Loaders)
	return l
}

func WithLoaders(ctx context.Context, loaders *Loaders) context.Context {
	return context.WithValue(ctx, loadersKey, loaders)
}

// Middleware attaches fresh loaders to every request so cached lookups never
// outlive it.
func Middleware(users tracker.UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := WithLoaders(r.Context(), NewLoaders(users))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func ObjectIDKey(id primitive.ObjectID) dataloader.Key {
	return dataloader.StringKey(id.Hex())
}
