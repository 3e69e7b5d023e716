package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Zadjehi/satisf-exercice/internal/authz"
	"github.com/Zadjehi/satisf-exercice/internal/config"
	"github.com/Zadjehi/satisf-exercice/internal/models"
	"github.com/Zadjehi/satisf-exercice/internal/repository"
	"github.com/Zadjehi/satisf-exercice/internal/security"
)

const (
	identityKey   = "auth_identity"
	authMethodKey = "auth_method"

	sessionHeader = "x-session-id"
)

// Identity is the authenticated caller attached to the request context.
type Identity struct {
	UserID     int64
	Username   string
	LastName   string
	FirstName  string
	Email      string
	Role       authz.Role
	Privileged bool
}

// UserSource re-fetches the user row backing a bearer token.
type UserSource interface {
	GetByID(ctx context.Context, id int64) (models.User, error)
}

// SessionSource resolves a live session to its user.
type SessionSource interface {
	Verify(ctx context.Context, id string) (models.User, error)
}

// Authenticator resolves request credentials into an Identity. Two schemes
// are tried in order: a bearer token, then a session id header. A failed
// token falls through to the session header rather than rejecting outright.
type Authenticator struct {
	cfg      *config.AppConfig
	users    UserSource
	sessions SessionSource
}

func NewAuthenticator(cfg *config.AppConfig, users UserSource, sessions SessionSource) *Authenticator {
	return &Authenticator{cfg: cfg, users: users, sessions: sessions}
}

func abortAuth(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"message": message,
		"code":    code,
	})
}

func identityFromUser(user models.User, privileged bool) Identity {
	id := Identity{
		UserID:     user.ID,
		Username:   user.Username,
		LastName:   user.LastName,
		FirstName:  user.FirstName,
		Role:       user.Role,
		Privileged: privileged,
	}
	if user.Email != nil {
		id.Email = *user.Email
	}
	return id
}

func (a *Authenticator) isPrivilegedClaims(claims *security.Claims) bool {
	sa := a.cfg.SuperAdmin
	return sa.Username != "" && claims.Username == sa.Username && claims.Role == sa.Role
}

func (a *Authenticator) privilegedIdentity() Identity {
	return Identity{
		Username:   a.cfg.SuperAdmin.Username,
		LastName:   "Super",
		FirstName:  "Admin",
		Role:       authz.Role(a.cfg.SuperAdmin.Role),
		Privileged: true,
	}
}

// resolveToken tries the Authorization header. A missing header or a token
// that fails verification yields ok=false so the next scheme can be tried.
func (a *Authenticator) resolveToken(c *gin.Context) (Identity, int64, bool) {
	header := c.GetHeader("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return Identity{}, 0, false
	}

	claims, err := security.VerifyToken(strings.TrimPrefix(header, "Bearer "), a.cfg.Security.JWTSecret)
	if err != nil {
		return Identity{}, 0, false
	}

	if a.isPrivilegedClaims(claims) {
		return a.privilegedIdentity(), 0, true
	}
	return Identity{}, claims.UserID, true
}

// resolveSession tries the x-session-id header against stored sessions.
func (a *Authenticator) resolveSession(c *gin.Context) (models.User, bool) {
	sessionID := c.GetHeader(sessionHeader)
	if sessionID == "" {
		return models.User{}, false
	}

	user, err := a.sessions.Verify(c.Request.Context(), sessionID)
	if err != nil {
		return models.User{}, false
	}
	return user, true
}

// authenticate runs the resolver chain. On success the identity and method
// are returned; otherwise aborted reports whether a response was written.
func (a *Authenticator) authenticate(c *gin.Context, required bool) (Identity, string, bool) {
	if identity, userID, ok := a.resolveToken(c); ok {
		if identity.Privileged {
			return identity, "JWT", true
		}

		// A valid token is not enough on its own. The user row is the
		// source of truth for existence and the active flag.
		user, err := a.users.GetByID(c.Request.Context(), userID)
		if err != nil {
			if required {
				if errors.Is(err, repository.ErrUserNotFound) {
					abortAuth(c, http.StatusUnauthorized, "USER_NOT_FOUND", "account no longer exists")
				} else {
					abortAuth(c, http.StatusUnauthorized, "AUTH_REQUIRED", "authentication failed")
				}
			}
			return Identity{}, "", false
		}
		if !user.Active {
			if required {
				abortAuth(c, http.StatusUnauthorized, "USER_DISABLED", "account is disabled")
			}
			return Identity{}, "", false
		}
		return identityFromUser(user, false), "JWT", true
	}

	if user, ok := a.resolveSession(c); ok {
		if !user.Active {
			if required {
				abortAuth(c, http.StatusUnauthorized, "USER_DISABLED", "account is disabled")
			}
			return Identity{}, "", false
		}
		return identityFromUser(user, false), "Session", true
	}

	if required {
		abortAuth(c, http.StatusUnauthorized, "AUTH_REQUIRED", "authentication required")
	}
	return Identity{}, "", false
}

// Require rejects unauthenticated requests with 401 and attaches the
// resolved identity otherwise.
func (a *Authenticator) Require() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, method, ok := a.authenticate(c, true)
		if !ok {
			return
		}
		c.Set(identityKey, identity)
		c.Set(authMethodKey, method)
		c.Next()
	}
}

// Optional attaches an identity when credentials are present and valid, and
// lets the request through anonymously otherwise.
func (a *Authenticator) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if identity, method, ok := a.authenticate(c, false); ok {
			c.Set(identityKey, identity)
			c.Set(authMethodKey, method)
		}
		c.Next()
	}
}

// CurrentIdentity returns the identity the auth chain attached, if any.
func CurrentIdentity(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}

// AuthMethod reports how the current request authenticated ("JWT" or
// "Session").
func AuthMethod(c *gin.Context) string {
	return c.GetString(authMethodKey)
}
