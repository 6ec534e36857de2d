package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mytrueresume-stack/SprintTracker/models"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SubmissionChannel carries submission lifecycle events as JSON.
const SubmissionChannel = "sprint-submissions"

// Init connects to Redis and verifies the connection.
func Init(ctx context.Context, addr, password string, db int) (Client, error) {
	client := NewRedisClient(addr, password, db)
	if err := client.Ping(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return client, nil
}

// ReportCache stores rendered sprint reports as JSON with a TTL.
type ReportCache struct {
	client Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewReportCache(client Client, ttl time.Duration, logger *slog.Logger) *ReportCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportCache{client: client, ttl: ttl, logger: logger.With("component", "ReportCache")}
}

func reportKey(sprintID primitive.ObjectID) string {
	return "report:sprint:" + sprintID.Hex()
}

func (c *ReportCache) Get(ctx context.Context, sprintID primitive.ObjectID) (*models.SprintReportData, bool, error) {
	raw, err := c.client.Get(ctx, reportKey(sprintID))
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var report models.SprintReportData
	if err := json.Unmarshal([]byte(raw), &report); err != nil {
		// A stale or foreign value is treated as a miss and overwritten.
		c.logger.Warn("discarding undecodable cached report", "sprintId", sprintID.Hex(), "error", err)
		return nil, false, nil
	}
	return &report, true, nil
}

func (c *ReportCache) Set(ctx context.Context, sprintID primitive.ObjectID, report *models.SprintReportData) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return c.client.Set(ctx, reportKey(sprintID), payload, c.ttl)
}

func (c *ReportCache) Invalidate(ctx context.Context, sprintID primitive.ObjectID) error {
	return c.client.Delete(ctx, reportKey(sprintID))
}

// EventPublisher fans submission events out over Redis pub/sub.
type EventPublisher struct {
	client  Client
	channel string
}

func NewEventPublisher(client Client) *EventPublisher {
	return &EventPublisher{client: client, channel: SubmissionChannel}
}

type eventMessage struct {
	Type string `json:"type"`
	models.SubmissionEvent
}

func (p *EventPublisher) Publish(ctx context.Context, event models.SubmissionEvent) error {
	payload, err := json.Marshal(eventMessage{Type: event.Type(), SubmissionEvent: event})
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	return p.client.Publish(ctx, p.channel, payload)
}
