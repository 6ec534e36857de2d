package trackertest

import (
	"context"
	"sync"

	"github.com/mytrueresume-stack/SprintTracker/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Cache is a map-backed ReportCache that counts calls.
type Cache struct {
	mu          sync.Mutex
	reports     map[primitive.ObjectID]models.SprintReportData
	Err         error
	Hits        int
	Misses      int
	Invalidated []primitive.ObjectID
}

func NewCache() *Cache {
	return &Cache{reports: make(map[primitive.ObjectID]models.SprintReportData)}
}

func (c *Cache) Get(_ context.Context, sprintID primitive.ObjectID) (*models.SprintReportData, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return nil, false, c.Err
	}
	r, ok := c.reports[sprintID]
	if !ok {
		c.Misses++
		return nil, false, nil
	}
	c.Hits++
	return &r, true, nil
}

func (c *Cache) Set(_ context.Context, sprintID primitive.ObjectID, report *models.SprintReportData) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return c.Err
	}
	c.reports[sprintID] = *report
	return nil
}

func (c *Cache) Invalidate(_ context.Context, sprintID primitive.ObjectID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Invalidated = append(c.Invalidated, sprintID)
	if c.Err != nil {
		return c.Err
	}
	delete(c.reports, sprintID)
	return nil
}

// Events records published submission events.
type Events struct {
	mu     sync.Mutex
	Err    error
	events []models.SubmissionEvent
}

func (e *Events) Publish(_ context.Context, ev models.SubmissionEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, ev)
	return e.Err
}

// Types returns the type of every published event in order.
func (e *Events) Types() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.events))
	for _, ev := range e.events {
		out = append(out, ev.Type())
	}
	return out
}

// Archive keeps uploaded objects in memory.
type Archive struct {
	mu      sync.Mutex
	Err     error
	Objects map[string][]byte
}

func (a *Archive) Put(_ context.Context, key, _ string, body []byte) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Err != nil {
		return "", a.Err
	}
	if a.Objects == nil {
		a.Objects = make(map[string][]byte)
	}
	a.Objects[key] = append([]byte(nil), body...)
	return "mem://" + key, nil
}
