package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Zadjehi/satisf-exercice/internal/middleware"
	"github.com/Zadjehi/satisf-exercice/internal/models"
	"github.com/Zadjehi/satisf-exercice/internal/service"
)

func (h HandlerSet) StatsDashboard(c *gin.Context) {
	stats, err := h.statsService.Dashboard(c.Request.Context())
	if err != nil {
		h.failServer(c, err)
		return
	}
	ok(c, "dashboard statistics", stats)
}

func (h HandlerSet) StatsSummary(c *gin.Context) {
	stats, err := h.statsService.Summary(c.Request.Context())
	if err != nil {
		h.failServer(c, err)
		return
	}
	ok(c, "satisfaction summary", stats)
}

func (h HandlerSet) StatsByDepartment(c *gin.Context) {
	stats, err := h.statsService.ByDepartment(c.Request.Context())
	if err != nil {
		h.failServer(c, err)
		return
	}
	ok(c, "statistics by department", stats)
}

func (h HandlerSet) StatsByReason(c *gin.Context) {
	stats, err := h.statsService.ByReason(c.Request.Context())
	if err != nil {
		h.failServer(c, err)
		return
	}
	ok(c, "statistics by visit reason", stats)
}

func (h HandlerSet) StatsMonthly(c *gin.Context) {
	months, _ := strconv.Atoi(c.DefaultQuery("months", "6"))
	stats, err := h.statsService.Monthly(c.Request.Context(), months)
	if err != nil {
		h.failServer(c, err)
		return
	}
	ok(c, "monthly statistics", stats)
}

type periodRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (r periodRequest) parse() (time.Time, time.Time, error) {
	from, err := time.Parse("2006-01-02", r.From)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid from date")
	}
	to, err := time.Parse("2006-01-02", r.To)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid to date")
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("to date precedes from date")
	}
	// Include the whole final day.
	return from, to.Add(24*time.Hour - time.Nanosecond), nil
}

func (h HandlerSet) StatsPeriod(c *gin.Context) {
	var req periodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
		return
	}
	from, to, err := req.parse()
	if err != nil {
		fail(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	stats, err := h.statsService.SummaryBetween(c.Request.Context(), from, to)
	if err != nil {
		h.failServer(c, err)
		return
	}
	ok(c, "period statistics", stats)
}

func (h HandlerSet) LiveStats(c *gin.Context) {
	stats, err := h.statsService.Live(c.Request.Context())
	if err != nil {
		h.failServer(c, err)
		return
	}
	ok(c, "live statistics", stats)
}

func (h HandlerSet) sendExport(c *gin.Context, file service.ExportFile, err error) {
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

// Export streams a CSV download. kind selects surveys, statistics or both.
func (h HandlerSet) Export(c *gin.Context) {
	kind := service.ExportKind(c.DefaultQuery("kind", string(service.ExportSurveys)))
	identity, _ := middleware.CurrentIdentity(c)

	file, err := h.exportService.Export(c.Request.Context(), kind, models.SurveyFilter{},
		identity.UserID, c.ClientIP(), c.GetHeader("User-Agent"))
	h.sendExport(c, file, err)
}

func (h HandlerSet) ExportPreview(c *gin.Context) {
	stats, count, err := h.exportService.Preview(c.Request.Context(), models.SurveyFilter{})
	if err != nil {
		h.failServer(c, err)
		return
	}
	ok(c, "export preview", gin.H{"rows": count, "summary": stats})
}

type exportPeriodRequest struct {
	periodRequest
	Kind string `json:"kind"`
}

func (h HandlerSet) ExportPeriod(c *gin.Context) {
	var req exportPeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
		return
	}
	from, to, err := req.parse()
	if err != nil {
		fail(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	kind := service.ExportKind(req.Kind)
	if req.Kind == "" {
		kind = service.ExportSurveys
	}

	identity, _ := middleware.CurrentIdentity(c)
	file, exportErr := h.exportService.Export(c.Request.Context(), kind,
		models.SurveyFilter{From: &from, To: &to},
		identity.UserID, c.ClientIP(), c.GetHeader("User-Agent"))
	h.sendExport(c, file, exportErr)
}

type auditEntryResponse struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Username  string    `json:"username,omitempty"`
	Action    string    `json:"action"`
	Details   string    `json:"details,omitempty"`
	IPAddress string    `json:"ipAddress,omitempty"`
	UserAgent string    `json:"userAgent,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (h HandlerSet) ActivityLogs(c *gin.Context) {
	limit, offset := pageParams(c)
	entries, total, err := h.auditor.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.failServer(c, err)
		return
	}

	resp := make([]auditEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, auditEntryResponse{
			ID:        e.ID,
			UserID:    e.UserID,
			Username:  e.Username,
			Action:    e.Action,
			Details:   e.Details,
			IPAddress: e.IPAddress,
			UserAgent: e.UserAgent,
			CreatedAt: e.CreatedAt,
		})
	}
	okPaged(c, "activity logs", resp, total, limit, offset)
}
