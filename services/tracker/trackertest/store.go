// Package trackertest provides in-memory implementations of the tracker
// store interfaces for tests.
package trackertest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mytrueresume-stack/SprintTracker/models"
	"github.com/mytrueresume-stack/SprintTracker/services/tracker"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store keeps every collection in memory behind one mutex. It enforces the
// unique (sprintId, userId) submission index, unique user emails and
// unique project keys.
type Store struct {
	mu          sync.Mutex
	err         error
	users       map[primitive.ObjectID]models.User
	projects    map[primitive.ObjectID]models.Project
	sprints     map[primitive.ObjectID]models.Sprint
	tasks       map[primitive.ObjectID]models.Task
	submissions map[primitive.ObjectID]models.SprintSubmission
	metrics     []models.SprintMetrics
	activity    []models.ActivityLog
}

func New() *Store {
	return &Store{
		users:       make(map[primitive.ObjectID]models.User),
		projects:    make(map[primitive.ObjectID]models.Project),
		sprints:     make(map[primitive.ObjectID]models.Sprint),
		tasks:       make(map[primitive.ObjectID]models.Task),
		submissions: make(map[primitive.ObjectID]models.SprintSubmission),
	}
}

// FailWith makes every subsequent call return err until cleared with nil.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *Store) Submissions() tracker.SubmissionStore { return submissionStore{s} }
func (s *Store) Sprints() tracker.SprintStore         { return sprintStore{s} }
func (s *Store) Tasks() tracker.TaskStore             { return taskStore{s} }
func (s *Store) Users() tracker.UserStore             { return userStore{s} }
func (s *Store) Projects() tracker.ProjectStore       { return projectStore{s} }
func (s *Store) Metrics() tracker.MetricsStore        { return metricsStore{s} }
func (s *Store) Activity() tracker.ActivityStore      { return activityStore{s} }

// SubmissionCount returns how many submissions exist for the pair.
func (s *Store) SubmissionCount(sprintID, userID primitive.ObjectID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, sub := range s.submissions {
		if sub.SprintID == sprintID && sub.UserID == userID {
			n++
		}
	}
	return n
}

// ActivityLogs returns a copy of every recorded activity entry.
func (s *Store) ActivityLogs() []models.ActivityLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ActivityLog(nil), s.activity...)
}

// MetricsFor returns the snapshots recorded for a sprint.
func (s *Store) MetricsFor(sprintID primitive.ObjectID) []models.SprintMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.SprintMetrics
	for _, m := range s.metrics {
		if m.SprintID == sprintID {
			out = append(out, m)
		}
	}
	return out
}

// PutSubmission stores a submission as is, bypassing the unique index, so
// tests can model duplicates left behind by a race.
func (s *Store) PutSubmission(sub models.SprintSubmission) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submissions[sub.ID] = cloneSubmission(sub)
}

func cloneSubmission(sub models.SprintSubmission) models.SprintSubmission {
	sub.UserStories = append([]models.UserStoryEntry(nil), sub.UserStories...)
	sub.FeaturesDelivered = append([]models.FeatureEntry(nil), sub.FeaturesDelivered...)
	sub.Impediments = append([]models.ImpedimentEntry(nil), sub.Impediments...)
	sub.Appreciations = append([]models.AppreciationEntry(nil), sub.Appreciations...)
	if sub.SubmittedAt != nil {
		t := *sub.SubmittedAt
		sub.SubmittedAt = &t
	}
	return sub
}

func cloneTask(t models.Task) models.Task {
	t.Labels = append([]string(nil), t.Labels...)
	return t
}

func cloneProject(p models.Project) models.Project {
	p.TeamMemberIDs = append([]primitive.ObjectID(nil), p.TeamMemberIDs...)
	return p
}

type submissionStore struct{ s *Store }

func (st submissionStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.SprintSubmission, error) {
	return st.findOne(func(sub *models.SprintSubmission) bool { return sub.ID == id })
}

func (st submissionStore) FindOwned(_ context.Context, id, userID primitive.ObjectID) (*models.SprintSubmission, error) {
	return st.findOne(func(sub *models.SprintSubmission) bool { return sub.ID == id && sub.UserID == userID })
}

func (st submissionStore) FindBySprintAndUser(_ context.Context, sprintID, userID primitive.ObjectID) (*models.SprintSubmission, error) {
	return st.findOne(func(sub *models.SprintSubmission) bool { return sub.SprintID == sprintID && sub.UserID == userID })
}

func (st submissionStore) ListBySprint(_ context.Context, sprintID primitive.ObjectID) ([]*models.SprintSubmission, error) {
	return st.list(func(sub *models.SprintSubmission) bool { return sub.SprintID == sprintID })
}

func (st submissionStore) ListBySprintAndStatus(_ context.Context, sprintID primitive.ObjectID, status models.SubmissionStatus) ([]*models.SprintSubmission, error) {
	return st.list(func(sub *models.SprintSubmission) bool { return sub.SprintID == sprintID && sub.Status == status })
}

func (st submissionStore) ListByUser(_ context.Context, userID primitive.ObjectID) ([]*models.SprintSubmission, error) {
	out, err := st.list(func(sub *models.SprintSubmission) bool { return sub.UserID == userID })
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, err
}

func (st submissionStore) Insert(_ context.Context, sub *models.SprintSubmission) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	if st.s.err != nil {
		return st.s.err
	}
	for _, existing := range st.s.submissions {
		if existing.ID == sub.ID || (existing.SprintID == sub.SprintID && existing.UserID == sub.UserID) {
			return tracker.ErrDuplicateKey
		}
	}
	st.s.submissions[sub.ID] = cloneSubmission(*sub)
	return nil
}

func (st submissionStore) Replace(_ context.Context, sub *models.SprintSubmission) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	if st.s.err != nil {
		return st.s.err
	}
	if _, ok := st.s.submissions[sub.ID]; !ok {
		return tracker.ErrNotFound
	}
	st.s.submissions[sub.ID] = cloneSubmission(*sub)
	return nil
}

func (st submissionStore) SetStatus(_ context.Context, id primitive.ObjectID, status models.SubmissionStatus, submittedAt *time.Time, updatedAt time.Time) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	if st.s.err != nil {
		return st.s.err
	}
	sub, ok := st.s.submissions[id]
	if !ok {
		return tracker.ErrNotFound
	}
	sub.Status = status
	sub.SubmittedAt = nil
	if submittedAt != nil {
		t := *submittedAt
		sub.SubmittedAt = &t
	}
	sub.UpdatedAt = updatedAt
	st.s.submissions[id] = sub
	return nil
}

func (st submissionStore) DeleteDraft(_ context.Context, id, userID primitive.ObjectID) (bool, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	if st.s.err != nil {
		return false, st.s.err
	}
	sub, ok := st.s.submissions[id]
	if !ok || sub.UserID != userID || sub.Status != models.SubmissionStatusDraft {
		return false, nil
	}
	delete(st.s.submissions, id)
	return true, nil
}

func (st submissionStore) findOne(match func(*models.SprintSubmission) bool) (*models.SprintSubmission, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	if st.s.err != nil {
		return nil, st.s.err
	}
	for _, sub := range st.s.submissions {
		if match(&sub) {
			c := cloneSubmission(sub)
			return &c, nil
		}
	}
	return nil, tracker.ErrNotFound
}

func (st submissionStore) list(match func(*models.SprintSubmission) bool) ([]*models.SprintSubmission, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	if st.s.err != nil {
		return nil, st.s.err
	}
	out := []*models.SprintSubmission{}
	for _, sub := range st.s.submissions {
		if match(&sub) {
			c := cloneSubmission(sub)
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID.Hex() < out[j].ID.Hex() })
	return out, nil
}

type sprintStore struct{ s *Store }

func (st sprintStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Sprint, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	if st.s.err != nil {
		return nil, st.s.err
	}
	sp, ok := st.s.sprints[id]
	if !ok {
		return nil, tracker.ErrNotFound
	}
	return &sp, nil
}

func (st sprintStore) ListByProject(_ context.Context, projectID primitive.ObjectID) ([]*models.Sprint, error) {
	out, err := st.list(func(sp *models.Sprint) bool { return sp.ProjectID == projectID })
	sort.SliceStable(out, func(i, j int) bool { return out[i].SprintNumber > out[j].SprintNumber })
	return out, err
}

func (st sprintStore) ListActiveByProjects(_ context.Context, projectIDs []primitive.ObjectID) ([]*models.Sprint, error) {
	in := idSet(projectIDs)
	return st.list(func(sp *models.Sprint) bool {
		_, ok := in[sp.ProjectID]
		return ok && sp.Status == models.SprintStatusActive
	})
}

func (st sprintStore) ListCompleted(_ context.Context, projectID primitive.ObjectID, limit int) ([]*models.Sprint, error) {
	out, err := st.list(func(sp *models.Sprint) bool {
		return sp.ProjectID == projectID && sp.Status == models.SprintStatusCompleted
	})
	sort.SliceStable(out, func(i, j int) bool { return completedAt(out[i]).After(completedAt(out[j])) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, err
}

func completedAt(sp *models.Sprint) time.Time {
	if sp.CompletedAt == nil {
		return time.Time{}
	}
	return *sp.CompletedAt
}

func (st sprintStore) HasOtherActive(_ context.Context, projectID, excludeID primitive.ObjectID) (bool, error) {
	out, err := st.list(func(sp *models.Sprint) bool {
		return sp.ProjectID == projectID && sp.ID != excludeID && sp.Status == models.SprintStatusActive
	})
	return len(out) > 0, err
}

func (st sprintStore) LastSprintNumber(_ context.Context, projectID primitive.ObjectID) (int, error) {
	out, err := st.list(func(sp *models.Sprint) bool { return sp.ProjectID == projectID })
	last := 0
	for _, sp := range out {
		last = max(last, sp.SprintNumber)
	}
	return last, err
}

func (st sprintStore) Insert(_ context.Context, sp *models.Sprint) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	if st.s.err != nil {
		return st.s.err
	}
	if _, ok := st.s.sprints[sp.ID]; ok {
		return tracker.ErrDuplicateKey
	}
	st.s.sprints[sp.ID] = *sp
	return nil
}

func (st sprintStore) Update(_ context.Context, sp *models.Sprint) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	if st.s.err != nil {
		return st.s.err
	}
	if _, ok := st.s.sprints[sp.ID]; !ok {
		return tracker.ErrNotFound
	}
	st.s.sprints[sp.ID] = *sp
	return nil
}

func (st sprintStore) Delete(_ context.Context, id primitive.ObjectID) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	if st.s.err != nil {
		return st.s.err
	}
	delete(st.s.sprints, id)
	return nil
}

func (st sprintStore) list(match func(*models.Sprint) bool) ([]*models.Sprint, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	if st.s.err != nil {
		return nil, st.s.err
	}
	out := []*models.Sprint{}
	for _, sp := range st.s.sprints {
		if match(&sp) {
			c := sp
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID.Hex() < out[j].ID.Hex() })
	return out, nil
}

type taskStore struct{ s *Store }

func (st taskStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Task, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	if st.s.err != nil {
		return nil, st.s.err
	}
	t, ok := st.s.tasks[id]
	if !ok {
		return nil, tracker.ErrNotFound
	}
	return &t, nil
}

func (st taskStore) ListBySprint(_ context.Context, sprintID primitive.ObjectID) ([]*models.Task, error) {
	return st.list(func(t *models.Task) bool { return t.SprintID != nil && *t.SprintID == sprintID })
}

func (st taskStore) ListBacklog(_ context.Context, projectID primitive.ObjectID) ([]*models.Task, error) {
	out, err := st.list(func(t *models.Task) bool { return t.ProjectID == projectID && t.SprintID == nil })
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, err
}

func (st taskStore) ListByProjects(_ context.Context, projectIDs []primitive.ObjectID) ([]*models.Task, error) {
	in := idSet(projectIDs)
	return st.list(func(t *models.Task) bool {
		_, ok := in[t.ProjectID]
		return ok
	})
}

func (st taskStore) ListOpenAssigned(_ context.Context, assigneeID primitive.ObjectID, limit int) ([]*models.Task, error) {
	out, err := st.list(func(t *models.Task) bool {
		return t.AssigneeID != nil && *t.AssigneeID == assigneeID && t.Status != models.TaskStatusDone
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority > out[j].Priority })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, err
}

func (st taskStore) LatestInProject(_ context.Context, projectID primitive.ObjectID) (*models.Task, error) {
	out, err := st.list(func(t *models.Task) bool { return t.ProjectID == projectID })
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, tracker.ErrNotFound
	}
	latest := out[0]
	for _, t := range out[1:] {
		if t.CreatedAt.After(latest.CreatedAt) || (t.CreatedAt.Equal(latest.CreatedAt) && t.ID.Hex() > latest.ID.Hex()) {
			latest = t
		}
	}
	return latest, nil
}

func (st taskStore) CountInSprint(_ context.Context, projectID primitive.ObjectID, sprintID *primitive.ObjectID) (int, error) {
	out, err := st.list(func(t *models.Task) bool {
		if t.ProjectID != projectID {
			return false
		}
		if sprintID == nil {
			return t.SprintID == nil
		}
		return t.SprintID != nil && *t.SprintID == *sprintID
	})
	return len(out), err
}

func (st taskStore) Insert(_ context.Context, t *models.Task) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	if st.s.err != nil {
		return st.s.err
	}
	if _, ok := st.s.tasks[t.ID]; ok {
		return tracker.ErrDuplicateKey
	}
	st.s.tasks[t.ID] = cloneTask(*t)
	return nil
}

func (st taskStore) Update(_ context.Context, t *models.Task) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	if st.s.err != nil {
		return st.s.err
	}
	if _, ok := st.s.tasks[t.ID]; !ok {
		return tracker.ErrNotFound
	}
	st.s.tasks[t.ID] = cloneTask(*t)
	return nil
}

func (st taskStore) Delete(_ context.Context, id primitive.ObjectID) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	if st.s.err != nil {
		return st.s.err
	}
	delete(st.s.tasks, id)
	return nil
}

func (st taskStore) MoveToBacklog(_ context.Context, sprintID primitive.ObjectID, keepDone bool, at time.Time) (int, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	if st.s.err != nil {
		return 0, st.s.err
	}
	n := 0
	for id, t := range st.s.tasks {
		if t.SprintID == nil || *t.SprintID != sprintID {
			continue
		}
		if keepDone && t.Status == models.TaskStatusDone {
			continue
		}
		t.SprintID = nil
		t.UpdatedAt = at
		st.s.tasks[id] = t
		n++
	}
	return n, nil
}

func (st taskStore) Query(_ context.Context, f models.TaskFilter) ([]*models.Task, int, error) {
	term := strings.ToLower(strings.TrimSpace(f.Search))
	out, err := st.list(func(t *models.Task) bool {
		switch {
		case f.ProjectID != nil && t.ProjectID != *f.ProjectID,
			f.SprintID != nil && (t.SprintID == nil || *t.SprintID != *f.SprintID),
			f.AssigneeID != nil && (t.AssigneeID == nil || *t.AssigneeID != *f.AssigneeID),
			f.Status != nil && t.Status != *f.Status,
			f.Type != nil && t.Type != *f.Type,
			f.Priority != nil && t.Priority != *f.Priority:
			return false
		}
		return term == "" ||
			strings.Contains(strings.ToLower(t.Title), term) ||
			strings.Contains(strings.ToLower(t.TaskKey), term)
	})
	if err != nil {
		return nil, 0, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	total := len(out)
	start := min(f.Skip(), total)
	end := min(start+f.PageSize, total)
	return out[start:end], total, nil
}

func (st taskStore) list(match func(*models.Task) bool) ([]*models.Task, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	if st.s.err != nil {
		return nil, st.s.err
	}
	out := []*models.Task{}
	for _, t := range st.s.tasks {
		if match(&t) {
			c := t
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID.Hex() < out[j].ID.Hex() })
	return out, nil
}

type userStore struct{ s *Store }

func (st userStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	if st.s.err != nil {
		return nil, st.s.err
	}
	u, ok := st.s.users[id]
	if !ok {
		return nil, tracker.ErrNotFound
	}
	return &u, nil
}

func (st userStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	if st.s.err != nil {
		return nil, st.s.err
	}
	for _, u := range st.s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, tracker.ErrNotFound
}

func (st userStore) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]*models.User, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	if st.s.err != nil {
		return nil, st.s.err
	}
	out := []*models.User{}
	for _, id := range ids {
		if u, ok := st.s.users[id]; ok {
			out = append(out, &u)
		}
	}
	return out, nil
}

func (st userStore) Insert(_ context.Context, u *models.User) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	if st.s.err != nil {
		return st.s.err
	}
	for _, existing := range st.s.users {
		if existing.ID == u.ID || strings.EqualFold(existing.Email, u.Email) {
			return tracker.ErrDuplicateKey
		}
	}
	st.s.users[u.ID] = *u
	return nil
}

func (st userStore) Update(_ context.Context, u *models.User) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	if st.s.err != nil {
		return st.s.err
	}
	if _, ok := st.s.users[u.ID]; !ok {
		return tracker.ErrNotFound
	}
	st.s.users[u.ID] = *u
	return nil
}

func (st userStore) Search(_ context.Context, f models.UserFilter, limit int) ([]*models.User, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	if st.s.err != nil {
		return nil, st.s.err
	}
	term := strings.ToLower(strings.TrimSpace(f.Search))
	out := []*models.User{}
	for _, u := range st.s.users {
		if !u.IsActive || (f.Role != nil && u.Role != *f.Role) {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(u.FirstName), term) &&
			!strings.Contains(strings.ToLower(u.LastName), term) &&
			!strings.Contains(strings.ToLower(u.Email), term) {
			continue
		}
		c := u
		out = append(out, &c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].FirstName != out[j].FirstName {
			return out[i].FirstName < out[j].FirstName
		}
		return out[i].LastName < out[j].LastName
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (st userStore) SetLastLogin(_ context.Context, id primitive.ObjectID, at time.Time) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	if st.s.err != nil {
		return st.s.err
	}
	u, ok := st.s.users[id]
	if !ok {
		return tracker.ErrNotFound
	}
	u.LastLoginAt = &at
	st.s.users[id] = u
	return nil
}

type projectStore struct{ s *Store }

func (st projectStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Project, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	if st.s.err != nil {
		return nil, st.s.err
	}
	p, ok := st.s.projects[id]
	if !ok {
		return nil, tracker.ErrNotFound
	}
	c := cloneProject(p)
	return &c, nil
}

func (st projectStore) FindByKey(_ context.Context, key string) (*models.Project, error) {
	out, err := st.list(func(p *models.Project) bool { return p.Key == key })
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, tracker.ErrNotFound
	}
	return out[0], nil
}

func (st projectStore) ListForUser(_ context.Context, userID primitive.ObjectID, includeArchived bool) ([]*models.Project, error) {
	return st.list(func(p *models.Project) bool {
		if !includeArchived && p.Status == models.ProjectStatusArchived {
			return false
		}
		return p.OwnerID == userID || p.HasMember(userID)
	})
}

func (st projectStore) ListAll(_ context.Context, includeArchived bool) ([]*models.Project, error) {
	return st.list(func(p *models.Project) bool {
		return includeArchived || p.Status != models.ProjectStatusArchived
	})
}

func (st projectStore) Insert(_ context.Context, p *models.Project) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	if st.s.err != nil {
		return st.s.err
	}
	for _, existing := range st.s.projects {
		if existing.ID == p.ID || existing.Key == p.Key {
			return tracker.ErrDuplicateKey
		}
	}
	st.s.projects[p.ID] = cloneProject(*p)
	return nil
}

func (st projectStore) Update(_ context.Context, p *models.Project) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	if st.s.err != nil {
		return st.s.err
	}
	if _, ok := st.s.projects[p.ID]; !ok {
		return tracker.ErrNotFound
	}
	st.s.projects[p.ID] = cloneProject(*p)
	return nil
}

func (st projectStore) list(match func(*models.Project) bool) ([]*models.Project, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	if st.s.err != nil {
		return nil, st.s.err
	}
	out := []*models.Project{}
	for _, p := range st.s.projects {
		if match(&p) {
			c := cloneProject(p)
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID.Hex() < out[j].ID.Hex() })
	return out, nil
}

type metricsStore struct{ s *Store }

func (st metricsStore) Insert(_ context.Context, m *models.SprintMetrics) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	if st.s.err != nil {
		return st.s.err
	}
	st.s.metrics = append(st.s.metrics, *m)
	return nil
}

func (st metricsStore) ListBySprint(_ context.Context, sprintID primitive.ObjectID) ([]*models.SprintMetrics, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	if st.s.err != nil {
		return nil, st.s.err
	}
	out := []*models.SprintMetrics{}
	for _, m := range st.s.metrics {
		if m.SprintID == sprintID {
			c := m
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

type activityStore struct{ s *Store }

func (st activityStore) Insert(_ context.Context, a *models.ActivityLog) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	if st.s.err != nil {
		return st.s.err
	}
	st.s.activity = append(st.s.activity, *a)
	return nil
}

func (st activityStore) ListRecent(_ context.Context, entityIDs []primitive.ObjectID, userID primitive.ObjectID, limit int) ([]*models.ActivityLog, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	if st.s.err != nil {
		return nil, st.s.err
	}
	in := idSet(entityIDs)
	out := []*models.ActivityLog{}
	for _, a := range st.s.activity {
		if _, ok := in[a.EntityID]; ok || a.UserID == userID {
			c := a
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func idSet(ids []primitive.ObjectID) map[primitive.ObjectID]struct{} {
	set := make(map[primitive.ObjectID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
