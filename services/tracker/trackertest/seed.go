package trackertest

import (
	"strconv"
	"time"

	"github.com/mytrueresume-stack/SprintTracker/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SeedUser stores an active user with the given role and name.
func (s *Store) SeedUser(role models.UserRole, first, last string) *models.User {
	u := models.User{
		ID:        primitive.NewObjectID(),
		Email:     first + "." + primitive.NewObjectID().Hex() + "@example.com",
		FirstName: first,
		LastName:  last,
		Role:      role,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	s.mu.Lock()
	s.users[u.ID] = u
	s.mu.Unlock()
	return &u
}

// SeedProject stores an active project owned by owner with members added to
// its team.
func (s *Store) SeedProject(key string, owner *models.User, members ...*models.User) *models.Project {
	p := models.Project{
		ID:            primitive.NewObjectID(),
		Name:          key + " project",
		Key:           key,
		OwnerID:       owner.ID,
		TeamMemberIDs: []primitive.ObjectID{owner.ID},
		Status:        models.ProjectStatusActive,
		Settings:      models.ProjectSettings{DefaultSprintDurationDays: 14},
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}
	for _, m := range members {
		p.TeamMemberIDs = append(p.TeamMemberIDs, m.ID)
	}
	s.mu.Lock()
	s.projects[p.ID] = cloneProject(p)
	s.mu.Unlock()
	return &p
}

// SeedSprint stores a two-week sprint starting at start.
func (s *Store) SeedSprint(project *models.Project, name string, status models.SprintStatus, start time.Time) *models.Sprint {
	sp := models.Sprint{
		ID:        primitive.NewObjectID(),
		ProjectID: project.ID,
		Name:      name,
		Status:    status,
		StartDate: start,
		EndDate:   start.AddDate(0, 0, 14),
		CreatedBy: project.OwnerID,
		CreatedAt: start,
		UpdatedAt: start,
	}
	s.mu.Lock()
	sp.SprintNumber = len(s.sprints) + 1
	s.sprints[sp.ID] = sp
	s.mu.Unlock()
	return &sp
}

// SeedTask stores a task in the sprint (or backlog when sprint is nil).
func (s *Store) SeedTask(project *models.Project, sprint *models.Sprint, status models.TaskStatus, points *int) *models.Task {
	t := models.Task{
		ID:          primitive.NewObjectID(),
		ProjectID:   project.ID,
		Title:       "task",
		Type:        models.TaskTypeTask,
		Status:      status,
		Priority:    models.PriorityMedium,
		StoryPoints: points,
		ReporterID:  project.OwnerID,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	if sprint != nil {
		id := sprint.ID
		t.SprintID = &id
	}
	s.mu.Lock()
	t.TaskKey = project.Key + "-" + strconv.Itoa(len(s.tasks)+1)
	s.tasks[t.ID] = t
	s.mu.Unlock()
	return &t
}

// Points is a helper for optional story points.
func Points(n int) *int { return &n }

// SetActive flips a stored user's IsActive flag.
func (s *Store) SetActive(id primitive.ObjectID, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		u.IsActive = active
		s.users[id] = u
	}
}
