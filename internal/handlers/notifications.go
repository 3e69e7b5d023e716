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

type notificationResponse struct {
	ID        int64     `json:"id"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Body      string    `json:"body,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

func toNotificationResponses(list []models.Notification) []notificationResponse {
	resp := make([]notificationResponse, 0, len(list))
	for _, n := range list {
		resp = append(resp, notificationResponse{
			ID:        n.ID,
			Kind:      string(n.Kind),
			Title:     n.Title,
			Body:      n.Body,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		})
	}
	return resp
}

func (h HandlerSet) UnreadNotifications(c *gin.Context) {
	identity, _ := middleware.CurrentIdentity(c)
	list, err := h.notifService.Unread(c.Request.Context(), identity.UserID)
	if err != nil {
		h.failServer(c, err)
		return
	}
	ok(c, "unread notifications", toNotificationResponses(list))
}

func (h HandlerSet) NotificationCount(c *gin.Context) {
	identity, _ := middleware.CurrentIdentity(c)
	count, err := h.notifService.UnreadCount(c.Request.Context(), identity.UserID)
	if err != nil {
		h.failServer(c, err)
		return
	}
	ok(c, "unread count", gin.H{"count": count})
}

// NotificationUpdates returns notifications newer than the since parameter,
// an RFC3339 timestamp.
func (h HandlerSet) NotificationUpdates(c *gin.Context) {
	identity, _ := middleware.CurrentIdentity(c)

	since := time.Now().Add(-time.Hour)
	if raw := c.Query("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid since timestamp")
			return
		}
		since = parsed
	}

	list, err := h.notifService.Updates(c.Request.Context(), identity.UserID, since)
	if err != nil {
		h.failServer(c, err)
		return
	}
	ok(c, "notification updates", gin.H{
		"notifications": toNotificationResponses(list),
		"serverTime":    time.Now().Format(time.RFC3339),
	})
}

func (h HandlerSet) NotificationHistory(c *gin.Context) {
	identity, _ := middleware.CurrentIdentity(c)
	limit, offset := pageParams(c)

	list, err := h.notifService.History(c.Request.Context(), identity.UserID, limit, offset)
	if err != nil {
		h.failServer(c, err)
		return
	}
	ok(c, "notification history", toNotificationResponses(list))
}

func (h HandlerSet) MarkNotificationRead(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid notification id")
		return
	}

	identity, _ := middleware.CurrentIdentity(c)
	if err := h.notifService.MarkRead(c.Request.Context(), id, identity.UserID); err != nil {
		if errors.Is(err, repository.ErrNotificationNotFound) {
			fail(c, http.StatusNotFound, "NOTIFICATION_NOT_FOUND", "notification not found")
			return
		}
		h.failServer(c, err)
		return
	}
	ok(c, "notification marked read", nil)
}

func (h HandlerSet) MarkAllNotificationsRead(c *gin.Context) {
	identity, _ := middleware.CurrentIdentity(c)
	n, err := h.notifService.MarkAllRead(c.Request.Context(), identity.UserID)
	if err != nil {
		h.failServer(c, err)
		return
	}
	ok(c, "notifications marked read", gin.H{"updated": n})
}

type createNotificationRequest struct {
	UserIDs []int64 `json:"userIds"`
	Title   string  `json:"title"`
	Body    string  `json:"body"`
}

func (h HandlerSet) CreateNotification(c *gin.Context) {
	var req createNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
		return
	}

	err := h.notifService.Notify(c.Request.Context(), service.NotifyInput{
		UserIDs: req.UserIDs,
		Title:   req.Title,
		Body:    req.Body,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	created(c, "notifications created", nil)
}

func (h HandlerSet) CleanupNotifications(c *gin.Context) {
	n, err := h.notifService.Cleanup(c.Request.Context())
	if err != nil {
		h.failServer(c, err)
		return
	}
	ok(c, "old notifications removed", gin.H{"deleted": n})
}
