package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Zadjehi/satisf-exercice/internal/middleware"
	"github.com/Zadjehi/satisf-exercice/internal/models"
	"github.com/Zadjehi/satisf-exercice/internal/repository"
	"github.com/Zadjehi/satisf-exercice/internal/service"
)

type surveyRequest struct {
	VisitDate       string `json:"visitDate"`
	LastName        string `json:"lastName"`
	FirstName       string `json:"firstName"`
	Phone           string `json:"phone"`
	Email           string `json:"email"`
	VisitReason     string `json:"visitReason"`
	Satisfaction    string `json:"satisfaction"`
	Department      string `json:"department"`
	Comments        string `json:"comments"`
	Recommendations string `json:"recommendations"`
}

func (r surveyRequest) toInput(c *gin.Context) service.SurveyInput {
	return service.SurveyInput{
		VisitedAt:       r.VisitDate,
		LastName:        r.LastName,
		FirstName:       r.FirstName,
		Phone:           r.Phone,
		Email:           r.Email,
		VisitReason:     r.VisitReason,
		Satisfaction:    r.Satisfaction,
		Department:      r.Department,
		Comments:        r.Comments,
		Recommendations: r.Recommendations,
		IPAddress:       c.ClientIP(),
		UserAgent:       c.GetHeader("User-Agent"),
	}
}

type surveyResponse struct {
	ID              int64  `json:"id"`
	VisitDate       string `json:"visitDate"`
	LastName        string `json:"lastName"`
	FirstName       string `json:"firstName,omitempty"`
	Phone           string `json:"phone"`
	Email           string `json:"email,omitempty"`
	VisitReason     string `json:"visitReason"`
	Satisfaction    string `json:"satisfaction"`
	Department      string `json:"department"`
	Comments        string `json:"comments,omitempty"`
	Recommendations string `json:"recommendations,omitempty"`
	SubmittedAt     string `json:"submittedAt"`
}

func toSurveyResponse(s models.Survey) surveyResponse {
	resp := surveyResponse{
		ID:           s.ID,
		VisitDate:    s.VisitedAt.Format("2006-01-02"),
		LastName:     s.LastName,
		Phone:        s.Phone,
		VisitReason:  string(s.VisitReason),
		Satisfaction: string(s.Satisfaction),
		Department:   s.DepartmentName,
		SubmittedAt:  s.CreatedAt.Format(time.RFC3339),
	}
	if s.FirstName != nil {
		resp.FirstName = *s.FirstName
	}
	if s.Email != nil {
		resp.Email = *s.Email
	}
	if s.Comments != nil {
		resp.Comments = *s.Comments
	}
	if s.Recommendations != nil {
		resp.Recommendations = *s.Recommendations
	}
	return resp
}

// CreateSurvey is the public intake endpoint. No authentication; throttled
// per IP.
func (h HandlerSet) CreateSurvey(c *gin.Context) {
	var req surveyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
		return
	}

	survey, err := h.surveyService.Create(c.Request.Context(), req.toInput(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	created(c, "thank you for your feedback", gin.H{"id": survey.ID})
}

// ValidateSurvey dry-runs the intake rules so the form can check before
// submitting.
func (h HandlerSet) ValidateSurvey(c *gin.Context) {
	var req surveyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
		return
	}

	if errs := h.surveyService.Validate(req.toInput(c)); len(errs) > 0 {
		c.JSON(http.StatusOK, envelope{
			Success: true,
			Message: "validation failed",
			Data:    gin.H{"valid": false, "errors": errs},
		})
		return
	}
	ok(c, "validation passed", gin.H{"valid": true})
}

func pageParams(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	return limit, offset
}

func (h HandlerSet) ListSurveys(c *gin.Context) {
	limit, offset := pageParams(c)
	h.listSurveys(c, models.SurveyFilter{}, limit, offset)
}

type surveyFilterRequest struct {
	From         string `json:"from"`
	To           string `json:"to"`
	Satisfaction string `json:"satisfaction"`
	VisitReason  string `json:"visitReason"`
	DepartmentID int64  `json:"departmentId"`
	Search       string `json:"search"`
	Limit        int    `json:"limit"`
	Offset       int    `json:"offset"`
}

func (h HandlerSet) FilterSurveys(c *gin.Context) {
	var req surveyFilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
		return
	}

	filter := models.SurveyFilter{
		Satisfaction: models.SatisfactionLevel(req.Satisfaction),
		VisitReason:  models.VisitReason(req.VisitReason),
		DepartmentID: req.DepartmentID,
		Search:       req.Search,
	}
	if req.From != "" {
		from, err := time.Parse("2006-01-02", req.From)
		if err != nil {
			fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid from date")
			return
		}
		filter.From = &from
	}
	if req.To != "" {
		to, err := time.Parse("2006-01-02", req.To)
		if err != nil {
			fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid to date")
			return
		}
		filter.To = &to
	}

	h.listSurveys(c, filter, req.Limit, req.Offset)
}

func (h HandlerSet) listSurveys(c *gin.Context, filter models.SurveyFilter, limit, offset int) {
	surveys, total, err := h.surveyService.List(c.Request.Context(), filter, limit, offset)
	if err != nil {
		h.failServer(c, err)
		return
	}

	resp := make([]surveyResponse, 0, len(surveys))
	for _, s := range surveys {
		resp = append(resp, toSurveyResponse(s))
	}
	okPaged(c, "surveys", resp, total, limit, offset)
}

func (h HandlerSet) SurveyTotal(c *gin.Context) {
	total, err := h.surveyService.Total(c.Request.Context())
	if err != nil {
		h.failServer(c, err)
		return
	}
	ok(c, "survey total", gin.H{"total": total})
}

func (h HandlerSet) GetSurvey(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid survey id")
		return
	}

	survey, err := h.surveyService.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrSurveyNotFound) {
			fail(c, http.StatusNotFound, "SURVEY_NOT_FOUND", "survey not found")
			return
		}
		h.failServer(c, err)
		return
	}
	ok(c, "survey", toSurveyResponse(survey))
}

func (h HandlerSet) DeleteSurvey(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid survey id")
		return
	}

	identity, _ := middleware.CurrentIdentity(c)
	if err := h.surveyService.Delete(c.Request.Context(), id, identity.UserID, c.ClientIP(), c.GetHeader("User-Agent")); err != nil {
		if errors.Is(err, repository.ErrSurveyNotFound) {
			fail(c, http.StatusNotFound, "SURVEY_NOT_FOUND", "survey not found")
			return
		}
		h.failServer(c, err)
		return
	}
	ok(c, "survey deleted", nil)
}
