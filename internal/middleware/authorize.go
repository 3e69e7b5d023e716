package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Zadjehi/satisf-exercice/internal/authz"
)

// RequireRoles allows only the listed roles through. The privileged identity
// passes regardless of the list.
func RequireRoles(roles ...authz.Role) gin.HandlerFunc {
	roleSet := make(map[authz.Role]struct{}, len(roles))
	for _, role := range roles {
		roleSet[role] = struct{}{}
	}

	return func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		if !ok {
			abortAuth(c, http.StatusUnauthorized, "AUTH_REQUIRED", "authentication required")
			return
		}

		if !identity.Privileged {
			if _, allowed := roleSet[identity.Role]; !allowed {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
					"success":  false,
					"message":  "insufficient permissions",
					"code":     "INSUFFICIENT_PERMISSIONS",
					"required": roles,
					"actual":   identity.Role,
				})
				return
			}
		}

		c.Next()
	}
}

// RequirePermission checks the role's capability map for a single permission.
func RequirePermission(perm authz.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		if !ok {
			abortAuth(c, http.StatusUnauthorized, "AUTH_REQUIRED", "authentication required")
			return
		}

		if !authz.HasPermission(identity.Role, perm) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success":  false,
				"message":  "permission denied",
				"code":     "PERMISSION_DENIED",
				"required": perm,
				"actual":   identity.Role,
			})
			return
		}

		c.Next()
	}
}
