package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Zadjehi/satisf-exercice/internal/authz"
	"github.com/Zadjehi/satisf-exercice/internal/models"
	"github.com/Zadjehi/satisf-exercice/internal/repository"
)

var (
	phonePattern = regexp.MustCompile(`^[0-9+\s().-]{8,20}$`)
)

const (
	maxCommentLen   = 1000
	maxFutureWindow = 24 * time.Hour
)

// SurveyService handles anonymous intake submissions and the staff-facing
// listing operations.
type SurveyService struct {
	surveys       SurveyStore
	departments   DepartmentStore
	notifications NotificationStore
	users         UserStore
	auditor       *Auditor
	log           zerolog.Logger
}

func NewSurveyService(surveys SurveyStore, departments DepartmentStore, notifications NotificationStore, users UserStore, auditor *Auditor, log zerolog.Logger) *SurveyService {
	return &SurveyService{
		surveys:       surveys,
		departments:   departments,
		notifications: notifications,
		users:         users,
		auditor:       auditor,
		log:           log,
	}
}

type SurveyInput struct {
	VisitedAt       string
	LastName        string
	FirstName       string
	Phone           string
	Email           string
	VisitReason     string
	Satisfaction    string
	Department      string
	Comments        string
	Recommendations string
	IPAddress       string
	UserAgent       string
}

func validReason(r string) bool {
	switch models.VisitReason(r) {
	case models.VisitReasonInformation, models.VisitReasonBloodTest, models.VisitReasonResultPickup:
		return true
	}
	return false
}

func validSatisfaction(s string) bool {
	switch models.SatisfactionLevel(s) {
	case models.SatisfactionSatisfied, models.SatisfactionDissatisfied:
		return true
	}
	return false
}

// Validate runs the intake rules without persisting anything. The returned
// slice is nil when the input is acceptable.
func (s *SurveyService) Validate(input SurveyInput) []string {
	var errs []string

	visitedAt, err := time.Parse("2006-01-02", strings.TrimSpace(input.VisitedAt))
	if err != nil {
		errs = append(errs, "visit date must be in YYYY-MM-DD format")
	} else if visitedAt.After(time.Now().Add(maxFutureWindow)) {
		errs = append(errs, "visit date cannot be in the future")
	}

	if !namePattern.MatchString(strings.TrimSpace(input.LastName)) {
		errs = append(errs, "last name must be 2-100 letters, spaces, hyphens or apostrophes")
	}
	if fn := strings.TrimSpace(input.FirstName); fn != "" && !namePattern.MatchString(fn) {
		errs = append(errs, "first name must be 2-100 letters, spaces, hyphens or apostrophes")
	}
	if !phonePattern.MatchString(strings.TrimSpace(input.Phone)) {
		errs = append(errs, "invalid phone number")
	}
	if email := strings.TrimSpace(input.Email); email != "" && !emailPattern.MatchString(email) {
		errs = append(errs, "invalid email format")
	}
	if !validReason(input.VisitReason) {
		errs = append(errs, "invalid visit reason")
	}
	if !validSatisfaction(input.Satisfaction) {
		errs = append(errs, "invalid satisfaction level")
	}
	if strings.TrimSpace(input.Department) == "" {
		errs = append(errs, "department is required")
	}
	if len(input.Comments) > maxCommentLen {
		errs = append(errs, "comments exceed 1000 characters")
	}
	if len(input.Recommendations) > maxCommentLen {
		errs = append(errs, "recommendations exceed 1000 characters")
	}

	return errs
}

// Create validates, resolves the department by name, and persists the survey.
// A dissatisfied submission fans out a notification to every active user who
// follows up on quality issues.
func (s *SurveyService) Create(ctx context.Context, input SurveyInput) (models.Survey, error) {
	if errs := s.Validate(input); len(errs) > 0 {
		return models.Survey{}, validationFailed("invalid survey data", errs)
	}

	dept, err := s.departments.GetActiveByName(ctx, strings.TrimSpace(input.Department))
	if err != nil {
		if errors.Is(err, repository.ErrDepartmentNotFound) {
			return models.Survey{}, validationFailed("unknown department", nil)
		}
		return models.Survey{}, fmt.Errorf("resolve department: %w", err)
	}

	visitedAt, _ := time.Parse("2006-01-02", strings.TrimSpace(input.VisitedAt))

	survey := models.Survey{
		VisitedAt:      visitedAt,
		LastName:       strings.TrimSpace(input.LastName),
		Phone:          strings.TrimSpace(input.Phone),
		VisitReason:    models.VisitReason(input.VisitReason),
		Satisfaction:   models.SatisfactionLevel(input.Satisfaction),
		DepartmentID:   dept.ID,
		DepartmentName: dept.Name,
		IPAddress:      input.IPAddress,
		UserAgent:      input.UserAgent,
	}
	if fn := strings.TrimSpace(input.FirstName); fn != "" {
		survey.FirstName = &fn
	}
	if email := strings.TrimSpace(strings.ToLower(input.Email)); email != "" {
		survey.Email = &email
	}
	if c := strings.TrimSpace(input.Comments); c != "" {
		survey.Comments = &c
	}
	if rec := strings.TrimSpace(input.Recommendations); rec != "" {
		survey.Recommendations = &rec
	}

	id, err := s.surveys.Create(ctx, survey)
	if err != nil {
		return models.Survey{}, fmt.Errorf("create survey: %w", err)
	}
	survey.ID = id

	if survey.Satisfaction == models.SatisfactionDissatisfied {
		s.notifyDissatisfied(ctx, survey)
	}

	return survey, nil
}

// notifyDissatisfied alerts active administrators and quality managers.
// Failures are logged and dropped so a notification problem never rejects a
// visitor's submission.
func (s *SurveyService) notifyDissatisfied(ctx context.Context, survey models.Survey) {
	recipients, err := s.users.ListActiveByRoles(ctx, []string{
		string(authz.RoleAdministrator),
		string(authz.RoleQualityManager),
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("list notification recipients failed")
		return
	}
	if len(recipients) == 0 {
		return
	}

	ids := make([]int64, 0, len(recipients))
	for _, u := range recipients {
		ids = append(ids, u.ID)
	}

	title := "Dissatisfied visitor"
	body := fmt.Sprintf("A visitor reported dissatisfaction with %s on %s (survey #%d)",
		survey.DepartmentName, survey.VisitedAt.Format("2006-01-02"), survey.ID)

	if err := s.notifications.CreateForUsers(ctx, ids, models.NotificationDissatisfied, title, body); err != nil {
		s.log.Warn().Err(err).Int64("survey_id", survey.ID).Msg("dissatisfied fan-out failed")
	}
}

func (s *SurveyService) Get(ctx context.Context, id int64) (models.Survey, error) {
	return s.surveys.GetByID(ctx, id)
}

// List returns a page of surveys with the total count for pagination.
func (s *SurveyService) List(ctx context.Context, filter models.SurveyFilter, limit, offset int) ([]models.Survey, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	surveys, err := s.surveys.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.surveys.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return surveys, total, nil
}

func (s *SurveyService) Total(ctx context.Context) (int64, error) {
	return s.surveys.Count(ctx, models.SurveyFilter{})
}

func (s *SurveyService) Delete(ctx context.Context, id int64, actorID int64, ip, userAgent string) error {
	if err := s.surveys.Delete(ctx, id); err != nil {
		return err
	}
	s.auditor.Record(ctx, actorID, "delete_survey", fmt.Sprintf("survey %d deleted", id), ip, userAgent)
	return nil
}

type DepartmentInput struct {
	Name        string
	Description string
	Active      *bool
}

func (s *SurveyService) ListDepartments(ctx context.Context) ([]models.Department, error) {
	return s.departments.ListActive(ctx)
}

func (s *SurveyService) CreateDepartment(ctx context.Context, input DepartmentInput, actorID int64, ip, userAgent string) (int64, error) {
	name := strings.TrimSpace(input.Name)
	if len(name) < 2 || len(name) > 100 {
		return 0, validationFailed("department name must be 2-100 characters", nil)
	}

	dept := models.Department{Name: name, Description: strings.TrimSpace(input.Description), Active: true}
	id, err := s.departments.Create(ctx, dept)
	if err != nil {
		return 0, fmt.Errorf("create department: %w", err)
	}
	s.auditor.Record(ctx, actorID, "create_department", fmt.Sprintf("department %s created", name), ip, userAgent)
	return id, nil
}

func (s *SurveyService) UpdateDepartment(ctx context.Context, id int64, input DepartmentInput, actorID int64, ip, userAgent string) error {
	name := strings.TrimSpace(input.Name)
	if len(name) < 2 || len(name) > 100 {
		return validationFailed("department name must be 2-100 characters", nil)
	}

	dept := models.Department{ID: id, Name: name, Description: strings.TrimSpace(input.Description), Active: true}
	if input.Active != nil {
		dept.Active = *input.Active
	}
	if err := s.departments.Update(ctx, dept); err != nil {
		return err
	}
	s.auditor.Record(ctx, actorID, "update_department", fmt.Sprintf("department %d updated", id), ip, userAgent)
	return nil
}
