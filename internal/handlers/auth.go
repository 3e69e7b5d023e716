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

type userResponse struct {
	ID          int64      `json:"id"`
	Username    string     `json:"username"`
	LastName    string     `json:"lastName"`
	FirstName   string     `json:"firstName"`
	Email       string     `json:"email,omitempty"`
	Role        string     `json:"role"`
	Active      bool       `json:"active"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func toUserResponse(u models.User) userResponse {
	resp := userResponse{
		ID:          u.ID,
		Username:    u.Username,
		LastName:    u.LastName,
		FirstName:   u.FirstName,
		Role:        string(u.Role),
		Active:      u.Active,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
	if u.Email != nil {
		resp.Email = *u.Email
	}
	return resp
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
		return
	}

	result, err := h.authService.Login(c.Request.Context(), service.LoginInput{
		Username:  req.Username,
		Password:  req.Password,
		IPAddress: c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			fail(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", err.Error())
		case errors.Is(err, service.ErrUserDisabled):
			fail(c, http.StatusUnauthorized, "USER_DISABLED", err.Error())
		default:
			h.respondError(c, err)
		}
		return
	}

	data := gin.H{
		"token": result.Token,
		"user":  toUserResponse(result.User),
	}
	if result.SessionID != "" {
		data["sessionId"] = result.SessionID
	}
	if result.Privileged {
		data["privileged"] = true
	}
	ok(c, "login successful", data)
}

func (h HandlerSet) Logout(c *gin.Context) {
	var userID int64
	if identity, found := middleware.CurrentIdentity(c); found {
		userID = identity.UserID
	}

	sessionID := c.GetHeader("x-session-id")
	if err := h.authService.Logout(c.Request.Context(), sessionID, userID, c.ClientIP(), c.GetHeader("User-Agent")); err != nil {
		h.failServer(c, err)
		return
	}
	ok(c, "logout successful", nil)
}

// AuthStatus echoes the resolved identity back, with the scheme that
// authenticated it.
func (h HandlerSet) AuthStatus(c *gin.Context) {
	identity, _ := middleware.CurrentIdentity(c)
	ok(c, "authenticated", gin.H{
		"user": gin.H{
			"id":        identity.UserID,
			"username":  identity.Username,
			"lastName":  identity.LastName,
			"firstName": identity.FirstName,
			"email":     identity.Email,
			"role":      identity.Role,
		},
		"privileged": identity.Privileged,
		"method":     middleware.AuthMethod(c),
	})
}

type changePasswordRequest struct {
	OldPassword     string `json:"oldPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (h HandlerSet) ChangePassword(c *gin.Context) {
	identity, _ := middleware.CurrentIdentity(c)
	if identity.Privileged {
		fail(c, http.StatusForbidden, "PERMISSION_DENIED", "the privileged account has no stored password")
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
		return
	}

	err := h.authService.ChangePassword(c.Request.Context(), service.ChangePasswordInput{
		UserID:          identity.UserID,
		OldPassword:     req.OldPassword,
		NewPassword:     req.NewPassword,
		ConfirmPassword: req.ConfirmPassword,
		IPAddress:       c.ClientIP(),
		UserAgent:       c.GetHeader("User-Agent"),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, "password changed", nil)
}

func (h HandlerSet) ListUsers(c *gin.Context) {
	users, err := h.authService.ListUsers(c.Request.Context())
	if err != nil {
		h.failServer(c, err)
		return
	}

	resp := make([]userResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, toUserResponse(u))
	}
	ok(c, "users", resp)
}

type createUserRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	LastName  string `json:"lastName"`
	FirstName string `json:"firstName"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

func (h HandlerSet) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
		return
	}

	identity, _ := middleware.CurrentIdentity(c)
	id, err := h.authService.CreateUser(c.Request.Context(), service.CreateUserInput{
		Username:  req.Username,
		Password:  req.Password,
		LastName:  req.LastName,
		FirstName: req.FirstName,
		Email:     req.Email,
		Role:      req.Role,
	}, identity.UserID, c.ClientIP(), c.GetHeader("User-Agent"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	created(c, "user created", gin.H{"id": id})
}

type updateUserRequest struct {
	LastName  *string `json:"lastName"`
	FirstName *string `json:"firstName"`
	Email     *string `json:"email"`
	Role      *string `json:"role"`
	Active    *bool   `json:"active"`
}

func (h HandlerSet) UpdateUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid user id")
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
		return
	}

	identity, _ := middleware.CurrentIdentity(c)
	err = h.authService.UpdateUser(c.Request.Context(), id, service.UpdateUserInput{
		LastName:  req.LastName,
		FirstName: req.FirstName,
		Email:     req.Email,
		Role:      req.Role,
		Active:    req.Active,
	}, identity.UserID, c.ClientIP(), c.GetHeader("User-Agent"))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			fail(c, http.StatusNotFound, "USER_NOT_FOUND", "user not found")
			return
		}
		h.respondError(c, err)
		return
	}
	ok(c, "user updated", nil)
}

func (h HandlerSet) PurgeSessions(c *gin.Context) {
	deleted, err := h.authService.PurgeExpiredSessions(c.Request.Context())
	if err != nil {
		h.failServer(c, err)
		return
	}
	ok(c, "expired sessions purged", gin.H{"deleted": deleted})
}
