package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Zadjehi/satisf-exercice/internal/middleware"
	"github.com/Zadjehi/satisf-exercice/internal/models"
	"github.com/Zadjehi/satisf-exercice/internal/repository"
	"github.com/Zadjehi/satisf-exercice/internal/service"
)

type departmentResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Active      bool   `json:"active"`
}

func toDepartmentResponse(d models.Department) departmentResponse {
	return departmentResponse{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Active:      d.Active,
	}
}

// ListDepartments is public: the intake form needs the choices before any
// authentication happens.
func (h HandlerSet) ListDepartments(c *gin.Context) {
	departments, err := h.surveyService.ListDepartments(c.Request.Context())
	if err != nil {
		h.failServer(c, err)
		return
	}

	resp := make([]departmentResponse, 0, len(departments))
	for _, d := range departments {
		resp = append(resp, toDepartmentResponse(d))
	}
	ok(c, "departments", resp)
}

type departmentRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Active      *bool  `json:"active"`
}

func (h HandlerSet) CreateDepartment(c *gin.Context) {
	var req departmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
		return
	}

	identity, _ := middleware.CurrentIdentity(c)
	id, err := h.surveyService.CreateDepartment(c.Request.Context(), service.DepartmentInput{
		Name:        req.Name,
		Description: req.Description,
	}, identity.UserID, c.ClientIP(), c.GetHeader("User-Agent"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	created(c, "department created", gin.H{"id": id})
}

func (h HandlerSet) UpdateDepartment(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid department id")
		return
	}

	var req departmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
		return
	}

	identity, _ := middleware.CurrentIdentity(c)
	err = h.surveyService.UpdateDepartment(c.Request.Context(), id, service.DepartmentInput{
		Name:        req.Name,
		Description: req.Description,
		Active:      req.Active,
	}, identity.UserID, c.ClientIP(), c.GetHeader("User-Agent"))
	if err != nil {
		if errors.Is(err, repository.ErrDepartmentNotFound) {
			fail(c, http.StatusNotFound, "DEPARTMENT_NOT_FOUND", "department not found")
			return
		}
		h.respondError(c, err)
		return
	}
	ok(c, "department updated", nil)
}
