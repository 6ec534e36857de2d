package loaders

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/mytrueresume-stack/SprintTracker/models"
	"github.com/mytrueresume-stack/SprintTracker/services/tracker"
	"github.com/mytrueresume-stack/SprintTracker/services/tracker/trackertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type countingUsers struct {
	tracker.UserStore
	calls atomic.Int32
	err   error
}

func (c *countingUsers) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.User, error) {
	c.calls.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return c.UserStore.FindByIDs(ctx, ids)
}

func TestUserNamesBatchesLookups(t *testing.T) {
	st := trackertest.New()
	ana := st.SeedUser(models.UserRoleDeveloper, "Ana", "Lopez")
	bo := st.SeedUser(models.UserRoleManager, "Bo", "Chen")
	ghost := primitive.NewObjectID()
	users := &countingUsers{UserStore: st.Users()}

	l := NewLoaders(users)
	names := l.UserNames(context.Background(), []primitive.ObjectID{ana.ID, bo.ID, ana.ID, ghost})

	assert.Equal(t, map[primitive.ObjectID]string{
		ana.ID: "Ana Lopez",
		bo.ID:  "Bo Chen",
		ghost:  "Unknown",
	}, names)
	assert.Equal(t, int32(1), users.calls.Load())

	// cached for the rest of the request
	u, err := l.User(context.Background(), bo.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bo Chen", u.FullName())
	assert.Equal(t, int32(1), users.calls.Load())
}

func TestUserMissingAndStoreErrors(t *testing.T) {
	st := trackertest.New()
	l := NewLoaders(st.Users())
	_, err := l.User(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, tracker.ErrNotFound)

	failing := &countingUsers{UserStore: st.Users(), err: errors.New("connection reset")}
	names := NewLoaders(failing).UserNames(context.Background(), []primitive.ObjectID{primitive.NewObjectID()})
	for _, name := range names {
		assert.Equal(t, "Unknown", name)
	}
}

func TestMiddlewareAttachesLoaders(t *testing.T) {
	assert.Nil(t, For(context.Background()))

	var got *Loaders
	h := Middleware(trackertest.New().Users())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = For(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotNil(t, got)
	assert.NotNil(t, got.UserLoader)
}
