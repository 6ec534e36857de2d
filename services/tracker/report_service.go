package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mytrueresume-stack/SprintTracker/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const unknownName = "Unknown"

type ReportService struct {
	clock
	sprints     SprintStore
	submissions SubmissionStore
	users       UserStore
	cache       ReportCache
	renderer    ReportRenderer
	archive     ReportArchive
	logger      *slog.Logger
}

func NewReportService(sprints SprintStore, submissions SubmissionStore, users UserStore, logger *slog.Logger) *ReportService {
	return &ReportService{
		sprints:     sprints,
		submissions: submissions,
		users:       users,
		logger:      componentLogger(logger, "ReportService"),
	}
}

func (s *ReportService) WithCache(c ReportCache) *ReportService {
	s.cache = c
	return s
}

// WithExport enables ExportPDF. archive may be nil.
func (s *ReportService) WithExport(r ReportRenderer, archive ReportArchive) *ReportService {
	s.renderer = r
	s.archive = archive
	return s
}

// SprintReport returns the rolled-up report for a sprint, served from the
// cache when possible. A missing sprint still yields a report named
// "Unknown" with zero dates.
func (s *ReportService) SprintReport(ctx context.Context, sprintID primitive.ObjectID) (*models.SprintReportData, error) {
	if s.cache != nil {
		report, ok, err := s.cache.Get(ctx, sprintID)
		switch {
		case err != nil:
			s.logger.Warn("report cache read failed", "sprintId", sprintID.Hex(), "error", err)
		case ok:
			return report, nil
		}
	}

	report, err := s.build(ctx, sprintID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, sprintID, report); err != nil {
			s.logger.Warn("report cache write failed", "sprintId", sprintID.Hex(), "error", err)
		}
	}
	return report, nil
}

func (s *ReportService) build(ctx context.Context, sprintID primitive.ObjectID) (*models.SprintReportData, error) {
	sprint, err := s.sprints.FindByID(ctx, sprintID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		s.logger.Error("failed to load sprint for report", "sprintId", sprintID.Hex(), "error", err)
		return nil, wrapStoreErr("find", "sprint", err)
	}
	subs, err := s.submissions.ListBySprint(ctx, sprintID)
	if err != nil {
		s.logger.Error("failed to list submissions for report", "sprintId", sprintID.Hex(), "error", err)
		return nil, wrapStoreErr("list", "submission", err)
	}
	names, err := s.userNames(ctx, subs)
	if err != nil {
		s.logger.Error("failed to resolve users for report", "sprintId", sprintID.Hex(), "error", err)
		return nil, wrapStoreErr("list", "user", err)
	}
	return aggregate(sprintID, sprint, subs, names), nil
}

// userNames resolves the owners of subs to display names.
func (s *ReportService) userNames(ctx context.Context, subs []*models.SprintSubmission) (map[primitive.ObjectID]string, error) {
	seen := make(map[primitive.ObjectID]struct{})
	var ids []primitive.ObjectID
	for _, sub := range subs {
		if sub == nil || sub.UserID.IsZero() {
			continue
		}
		if _, ok := seen[sub.UserID]; ok {
			continue
		}
		seen[sub.UserID] = struct{}{}
		ids = append(ids, sub.UserID)
	}
	names := make(map[primitive.ObjectID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		names[u.ID] = u.FullName()
	}
	return names, nil
}

func aggregate(sprintID primitive.ObjectID, sprint *models.Sprint, subs []*models.SprintSubmission, names map[primitive.ObjectID]string) *models.SprintReportData {
	nameOf := func(id primitive.ObjectID) string {
		if n, ok := names[id]; ok {
			return n
		}
		return unknownName
	}

	r := &models.SprintReportData{
		SprintID:      sprintID,
		SprintName:    unknownName,
		UserBreakdown: []models.UserSprintSummary{},
		UserStories:   []models.UserStoryReport{},
		Features:      []models.FeatureReport{},
		Impediments:   []models.ImpedimentReport{},
		Appreciations: []models.AppreciationReport{},
	}
	if sprint != nil {
		r.SprintName = sprint.Name
		r.SprintNumber = sprint.SprintNumber
		r.StartDate = sprint.StartDate
		r.EndDate = sprint.EndDate
	}

	type userAgg struct {
		summary  models.UserSprintSummary
		statuses []string
	}
	byUser := make(map[primitive.ObjectID]*userAgg)
	var order []primitive.ObjectID

	for _, sub := range subs {
		if sub == nil {
			continue
		}
		by := nameOf(sub.UserID)

		r.TotalStoryPointsPlanned += sub.StoryPointsPlanned
		r.TotalStoryPointsCompleted += sub.StoryPointsCompleted
		r.TotalHoursWorked += sub.HoursWorked
		r.TotalUserStories += len(sub.UserStories)
		r.TotalFeatures += len(sub.FeaturesDelivered)
		r.TotalImpediments += len(sub.Impediments)
		r.TotalAppreciations += len(sub.Appreciations)

		agg, ok := byUser[sub.UserID]
		if !ok {
			agg = &userAgg{summary: models.UserSprintSummary{UserID: sub.UserID, UserName: by}}
			byUser[sub.UserID] = agg
			order = append(order, sub.UserID)
		}
		agg.summary.StoryPointsPlanned += sub.StoryPointsPlanned
		agg.summary.StoryPointsCompleted += sub.StoryPointsCompleted
		agg.summary.HoursWorked += sub.HoursWorked
		agg.summary.UserStoriesCount += len(sub.UserStories)
		agg.summary.FeaturesCount += len(sub.FeaturesDelivered)
		agg.summary.ImpedimentsCount += len(sub.Impediments)
		agg.summary.AppreciationsGiven += len(sub.Appreciations)
		if !containsString(agg.statuses, string(sub.Status)) {
			agg.statuses = append(agg.statuses, string(sub.Status))
		}

		for _, us := range sub.UserStories {
			r.UserStories = append(r.UserStories, models.UserStoryReport{
				StoryID:     us.StoryID,
				Title:       us.Title,
				StoryPoints: us.StoryPoints,
				Status:      us.Status,
				ReportedBy:  by,
			})
		}
		for _, f := range sub.FeaturesDelivered {
			r.Features = append(r.Features, models.FeatureReport{
				FeatureName: f.FeatureName,
				Description: f.Description,
				Module:      f.Module,
				Status:      f.Status,
				DeliveredBy: by,
			})
		}
		for _, im := range sub.Impediments {
			if im.IsOpen() {
				r.OpenImpediments++
			}
			r.Impediments = append(r.Impediments, models.ImpedimentReport{
				Description:  im.Description,
				Category:     im.Category,
				Impact:       im.Impact,
				Status:       im.Status,
				Resolution:   im.Resolution,
				ReportedBy:   by,
				ReportedDate: im.ReportedDate,
			})
		}
		for _, a := range sub.Appreciations {
			r.Appreciations = append(r.Appreciations, models.AppreciationReport{
				AppreciatedUserName: a.AppreciatedUserName,
				Reason:              a.Reason,
				Category:            a.Category,
				GivenBy:             by,
			})
		}
	}

	for _, id := range order {
		agg := byUser[id]
		agg.summary.SubmissionStatus = strings.Join(agg.statuses, ",")
		r.UserBreakdown = append(r.UserBreakdown, agg.summary)
		if !id.IsZero() {
			r.TotalTeamMembers++
		}
	}
	r.CompletionPercentage = Percent(r.TotalStoryPointsCompleted, r.TotalStoryPointsPlanned)
	return r
}

var ErrExportDisabled = errors.New("report export is not configured")

// ExportPDF renders the sprint report and, when an archive is configured,
// stores it under reports/<sprintId>/<unix>.pdf. location is empty when
// nothing was archived.
func (s *ReportService) ExportPDF(ctx context.Context, sprintID primitive.ObjectID) (pdf []byte, location string, err error) {
	if s.renderer == nil {
		return nil, "", ErrExportDisabled
	}
	report, err := s.SprintReport(ctx, sprintID)
	if err != nil {
		return nil, "", err
	}
	pdf, err = s.renderer.Render(report)
	if err != nil {
		return nil, "", fmt.Errorf("failed to render report: %w", err)
	}
	if s.archive == nil {
		return pdf, "", nil
	}

	key := ArchiveKey(sprintID, s.Now())
	location, err = s.archive.Put(ctx, key, "application/pdf", pdf)
	if err != nil {
		s.logger.Error("failed to archive report", "sprintId", sprintID.Hex(), "key", key, "error", err)
		return nil, "", &UnavailableError{Op: "archive", Resource: "report", Err: err}
	}
	s.logger.Info("report archived", "sprintId", sprintID.Hex(), "location", location, "bytes", len(pdf))
	return pdf, location, nil
}

func ArchiveKey(sprintID primitive.ObjectID, at time.Time) string {
	return fmt.Sprintf("reports/%s/%d.pdf", sprintID.Hex(), at.Unix())
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
