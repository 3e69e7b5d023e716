package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Zadjehi/satisf-exercice/internal/service"
)

// envelope is the shared response shape. Every endpoint answers with it so
// the frontend can branch on success and code uniformly.
type envelope struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Code       string      `json:"code,omitempty"`
	Errors     []string    `json:"errors,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	Pagination *pagination `json:"pagination,omitempty"`
}

type pagination struct {
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

func ok(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, envelope{Success: true, Message: message, Data: data})
}

func created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, envelope{Success: true, Message: message, Data: data})
}

func okPaged(c *gin.Context, message string, data interface{}, total int64, limit, offset int) {
	c.JSON(http.StatusOK, envelope{
		Success:    true,
		Message:    message,
		Data:       data,
		Pagination: &pagination{Total: total, Limit: limit, Offset: offset},
	})
}

func fail(c *gin.Context, status int, code, message string) {
	c.JSON(status, envelope{Success: false, Message: message, Code: code})
}

func failValidation(c *gin.Context, ve *service.ValidationError) {
	c.JSON(http.StatusBadRequest, envelope{
		Success: false,
		Message: ve.Message,
		Code:    "VALIDATION_ERROR",
		Errors:  ve.Errors,
	})
}

// failServer hides internals in production and surfaces them elsewhere.
func (h HandlerSet) failServer(c *gin.Context, err error) {
	h.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	message := "internal server error"
	if !h.cfg.Production() {
		message = err.Error()
	}
	fail(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", message)
}

// respondError routes a service error to the right status. Validation errors
// become 400s; everything else is a 500.
func (h HandlerSet) respondError(c *gin.Context, err error) {
	if ve, isValidation := service.AsValidationError(err); isValidation {
		failValidation(c, ve)
		return
	}
	h.failServer(c, err)
}
