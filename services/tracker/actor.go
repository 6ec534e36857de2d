package tracker

import (
	"context"
	"errors"

	"github.com/mytrueresume-stack/SprintTracker/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// loadActor resolves the calling user. An unknown id means the token no
// longer maps to an account.
func loadActor(ctx context.Context, users UserStore, userID primitive.ObjectID) (*models.User, error) {
	if userID.IsZero() {
		return nil, ErrUnauthenticated
	}
	u, err := users.FindByID(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, wrapStoreErr("find", "user", err)
	}
	return u, nil
}

func loadProject(ctx context.Context, projects ProjectStore, id primitive.ObjectID) (*models.Project, error) {
	p, err := projects.FindByID(ctx, id)
	if err != nil {
		return nil, wrapStoreErr("find", "project", err)
	}
	return p, nil
}
