package redis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/mytrueresume-stack/SprintTracker/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestReportCacheRoundTrip(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := NewMockClient(ctrl)
	cache := NewReportCache(client, 5*time.Minute, nil)
	ctx := context.Background()
	sprintID := primitive.NewObjectID()
	key := "report:sprint:" + sprintID.Hex()

	report := &models.SprintReportData{SprintID: sprintID, SprintName: "Sprint 4", TotalStoryPointsPlanned: 15, CompletionPercentage: 73.3}
	var stored []byte
	client.EXPECT().Set(ctx, key, gomock.Any(), 5*time.Minute).DoAndReturn(
		func(_ context.Context, _ string, value interface{}, _ time.Duration) error {
			stored = value.([]byte)
			return nil
		})
	require.NoError(t, cache.Set(ctx, sprintID, report))

	client.EXPECT().Get(ctx, key).DoAndReturn(func(context.Context, string) (string, error) {
		return string(stored), nil
	})
	got, ok, err := cache.Get(ctx, sprintID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Sprint 4", got.SprintName)
	assert.Equal(t, 73.3, got.CompletionPercentage)
	assert.Equal(t, sprintID, got.SprintID)
}

func TestReportCacheMisses(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := NewMockClient(ctrl)
	cache := NewReportCache(client, time.Minute, nil)
	ctx := context.Background()
	sprintID := primitive.NewObjectID()

	client.EXPECT().Get(ctx, gomock.Any()).Return("", redis.Nil)
	_, ok, err := cache.Get(ctx, sprintID)
	assert.NoError(t, err)
	assert.False(t, ok)

	client.EXPECT().Get(ctx, gomock.Any()).Return("not json", nil)
	_, ok, err = cache.Get(ctx, sprintID)
	assert.NoError(t, err)
	assert.False(t, ok)

	down := errors.New("connection refused")
	client.EXPECT().Get(ctx, gomock.Any()).Return("", down)
	_, _, err = cache.Get(ctx, sprintID)
	assert.ErrorIs(t, err, down)
}

func TestReportCacheInvalidate(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := NewMockClient(ctrl)
	cache := NewReportCache(client, time.Minute, nil)
	sprintID := primitive.NewObjectID()

	client.EXPECT().Delete(gomock.Any(), "report:sprint:"+sprintID.Hex()).Return(nil)
	assert.NoError(t, cache.Invalidate(context.Background(), sprintID))
}

func TestEventPublisher(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := NewMockClient(ctrl)
	pub := NewEventPublisher(client)

	ev := models.SubmissionEvent{
		Action:       "submitted",
		SubmissionID: primitive.NewObjectID(),
		SprintID:     primitive.NewObjectID(),
		UserID:       primitive.NewObjectID(),
		Status:       models.SubmissionStatusSubmitted,
		At:           time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	}
	client.EXPECT().Publish(gomock.Any(), SubmissionChannel, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, message interface{}) error {
			var decoded map[string]interface{}
			require.NoError(t, json.Unmarshal(message.([]byte), &decoded))
			assert.Equal(t, "submission.submitted", decoded["type"])
			assert.Equal(t, "Submitted", decoded["status"])
			assert.Equal(t, ev.SprintID.Hex(), decoded["sprintId"])
			return nil
		})
	require.NoError(t, pub.Publish(context.Background(), ev))
}

func TestInitFailsWhenPingFails(t *testing.T) {
	// Nothing listens on port 1.
	_, err := Init(context.Background(), "127.0.0.1:1", "", 0)
	assert.Error(t, err)
}
