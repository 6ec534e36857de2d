package service

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/mytrueresume-stack/SprintTracker/env"
	"github.com/mytrueresume-stack/SprintTracker/models"
	mongosvc "github.com/mytrueresume-stack/SprintTracker/services/mongo"
	red "github.com/mytrueresume-stack/SprintTracker/services/redis"
	"github.com/mytrueresume-stack/SprintTracker/services/s3"
	"github.com/mytrueresume-stack/SprintTracker/services/tracker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// These tests talk to real backing services and are skipped unless the
// matching *_TEST_* variable is set (a .env file is honoured).

func lookup(t *testing.T, key string) string {
	t.Helper()
	require.NoError(t, env.LoadDotEnv())
	v := os.Getenv(key)
	if v == "" {
		t.Skipf("%s not set", key)
	}
	return v
}

func TestMongo(t *testing.T) {
	uri := lookup(t, "MONGO_TEST_URI")
	ctx := context.Background()

	client, err := mongosvc.Connect(ctx, uri)
	require.NoError(t, err)
	defer client.Disconnect(ctx)

	db := client.Database("sprinttracker-test-" + primitive.NewObjectID().Hex())
	defer db.Drop(ctx)
	service := mongosvc.New(db)
	require.NoError(t, service.EnsureIndexes(ctx))

	submissions := mongosvc.NewSubmissionService(service)
	now := time.Now().UTC().Truncate(time.Millisecond)
	sub := &models.SprintSubmission{
		ID:                 primitive.NewObjectID(),
		SprintID:           primitive.NewObjectID(),
		UserID:             primitive.NewObjectID(),
		StoryPointsPlanned: 8,
		Status:             models.SubmissionStatusDraft,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	sub.Normalize()
	require.NoError(t, submissions.Insert(ctx, sub))

	found, err := submissions.FindBySprintAndUser(ctx, sub.SprintID, sub.UserID)
	require.NoError(t, err)
	assert.Equal(t, sub.ID, found.ID)
	assert.Equal(t, 8, found.StoryPointsPlanned)

	dup := *sub
	dup.ID = primitive.NewObjectID()
	assert.ErrorIs(t, submissions.Insert(ctx, &dup), tracker.ErrDuplicateKey)

	require.NoError(t, submissions.SetStatus(ctx, sub.ID, models.SubmissionStatusSubmitted, &now, now))
	deleted, err := submissions.DeleteDraft(ctx, sub.ID, sub.UserID)
	require.NoError(t, err)
	assert.False(t, deleted)

	require.NoError(t, submissions.SetStatus(ctx, sub.ID, models.SubmissionStatusDraft, nil, now))
	found, err = submissions.FindByID(ctx, sub.ID)
	require.NoError(t, err)
	assert.Nil(t, found.SubmittedAt)

	deleted, err = submissions.DeleteDraft(ctx, sub.ID, sub.UserID)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = submissions.FindByID(ctx, sub.ID)
	assert.ErrorIs(t, err, tracker.ErrNotFound)
}

func TestRedis(t *testing.T) {
	addr := lookup(t, "REDIS_TEST_ADDR")
	ctx := context.Background()

	client, err := red.Init(ctx, addr, os.Getenv("REDIS_TEST_PASSWORD"), 0)
	require.NoError(t, err)
	defer client.Close()

	cache := red.NewReportCache(client, time.Minute, nil)
	sprintID := primitive.NewObjectID()
	report := &models.SprintReportData{SprintID: sprintID, SprintName: "Sprint 7", TotalStoryPointsPlanned: 15}

	require.NoError(t, cache.Set(ctx, sprintID, report))
	got, ok, err := cache.Get(ctx, sprintID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Sprint 7", got.SprintName)

	require.NoError(t, cache.Invalidate(ctx, sprintID))
	_, ok, err = cache.Get(ctx, sprintID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestS3Upload(t *testing.T) {
	bucket := lookup(t, "S3_TEST_BUCKET")
	s3cfg := &s3.S3ClientConfig{
		Bucket:    bucket,
		Endpoint:  os.Getenv("S3_ENDPOINT"),
		Region:    os.Getenv("S3_REGION"),
		AccessKey: os.Getenv("AWS_ACCESS_KEY_ID"),
		SecretKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
	}

	service, err := s3.NewS3Service(context.TODO(), s3cfg, nil)
	require.NoError(t, err, "create S3 service")

	key := tracker.ArchiveKey(primitive.NewObjectID(), time.Now())
	location, err := service.Put(context.TODO(), key, "application/pdf", []byte("%PDF-1.3 test"))
	assert.NoError(t, err, "upload file error")
	assert.Equal(t, "s3://"+bucket+"/"+key, location)
}
