package tracker

import (
	"context"
	"log/slog"
	"time"

	"github.com/mytrueresume-stack/SprintTracker/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// activityRecorder writes audit entries. Failures are logged and dropped.
type activityRecorder struct {
	store  ActivityStore
	logger *slog.Logger
}

func (r activityRecorder) record(ctx context.Context, entityType string, entityID primitive.ObjectID, action string, userID primitive.ObjectID, at time.Time, changes ...models.FieldChange) {
	if r.store == nil {
		return
	}
	if changes == nil {
		changes = []models.FieldChange{}
	}
	entry := &models.ActivityLog{
		ID:         primitive.NewObjectID(),
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		UserID:     userID,
		Changes:    changes,
		Timestamp:  at,
	}
	if err := r.store.Insert(ctx, entry); err != nil {
		r.logger.Warn("failed to record activity", "entityType", entityType, "entityId", entityID.Hex(), "action", action, "error", err)
	}
}

func change(field string, oldValue, newValue string) models.FieldChange {
	return models.FieldChange{FieldName: field, OldValue: &oldValue, NewValue: &newValue}
}
