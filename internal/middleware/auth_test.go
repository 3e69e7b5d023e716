package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Zadjehi/satisf-exercice/internal/authz"
	"github.com/Zadjehi/satisf-exercice/internal/config"
	"github.com/Zadjehi/satisf-exercice/internal/models"
	"github.com/Zadjehi/satisf-exercice/internal/repository"
	"github.com/Zadjehi/satisf-exercice/internal/security"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testSecret = "test-secret"

type fakeUsers struct {
	byID map[int64]models.User
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (models.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

type fakeSessionRow struct {
	user    models.User
	session models.Session
}

type fakeSessions struct {
	byID map[string]fakeSessionRow
}

func (f *fakeSessions) add(id string, user models.User, expiresAt time.Time) {
	f.byID[id] = fakeSessionRow{
		user:    user,
		session: models.Session{ID: id, UserID: user.ID, ExpiresAt: expiresAt},
	}
}

// Verify mirrors the store: an unknown id and an expired one are
// indistinguishable.
func (f *fakeSessions) Verify(_ context.Context, id string) (models.User, error) {
	row, ok := f.byID[id]
	if !ok || row.session.Expired(time.Now()) {
		return models.User{}, repository.ErrSessionNotFound
	}
	return row.user, nil
}

func testCfg() *config.AppConfig {
	cfg := &config.AppConfig{}
	cfg.Security.JWTSecret = testSecret
	cfg.Security.TokenTTL = time.Hour
	cfg.SuperAdmin.Username = "root-admin"
	cfg.SuperAdmin.Role = "SuperAdmin"
	return cfg
}

func activeUser() models.User {
	return models.User{
		ID:        7,
		Username:  "akone",
		LastName:  "Kone",
		FirstName: "Awa",
		Role:      authz.RoleQualityManager,
		Active:    true,
	}
}

type gateFixture struct {
	auth     *Authenticator
	users    *fakeUsers
	sessions *fakeSessions
}

func newGateFixture() *gateFixture {
	users := &fakeUsers{byID: map[int64]models.User{}}
	sessions := &fakeSessions{byID: map[string]fakeSessionRow{}}
	return &gateFixture{
		auth:     NewAuthenticator(testCfg(), users, sessions),
		users:    users,
		sessions: sessions,
	}
}

func (f *gateFixture) router(extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	chain := append([]gin.HandlerFunc{f.auth.Require()}, extra...)
	chain = append(chain, func(c *gin.Context) {
		identity, _ := CurrentIdentity(c)
		c.JSON(http.StatusOK, gin.H{
			"username": identity.Username,
			"method":   AuthMethod(c),
		})
	})
	r.GET("/protected", chain...)
	return r
}

func do(t *testing.T, r *gin.Engine, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("parse body %q: %v", w.Body.String(), err)
	}
	return w, body
}

func issue(t *testing.T, user models.User) string {
	t.Helper()
	token, err := security.IssueToken(testSecret, user, time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func TestAuthNoCredentials(t *testing.T) {
	f := newGateFixture()
	w, body := do(t, f.router(), nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d", w.Code)
	}
	if body["code"] != "AUTH_REQUIRED" {
		t.Errorf("code = %v", body["code"])
	}
}

func TestAuthValidToken(t *testing.T) {
	f := newGateFixture()
	user := activeUser()
	f.users.byID[user.ID] = user

	w, body := do(t, f.router(), map[string]string{"Authorization": "Bearer " + issue(t, user)})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %v", w.Code, body)
	}
	if body["username"] != "akone" || body["method"] != "JWT" {
		t.Errorf("body = %v", body)
	}
}

func TestAuthTokenForDeletedUser(t *testing.T) {
	f := newGateFixture()

	w, body := do(t, f.router(), map[string]string{"Authorization": "Bearer " + issue(t, activeUser())})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d", w.Code)
	}
	if body["code"] != "USER_NOT_FOUND" {
		t.Errorf("code = %v", body["code"])
	}
}

func TestAuthTokenForDisabledUser(t *testing.T) {
	f := newGateFixture()
	user := activeUser()
	user.Active = false
	f.users.byID[user.ID] = user

	w, body := do(t, f.router(), map[string]string{"Authorization": "Bearer " + issue(t, user)})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d", w.Code)
	}
	if body["code"] != "USER_DISABLED" {
		t.Errorf("code = %v", body["code"])
	}
}

func TestAuthBadTokenFallsThroughToSession(t *testing.T) {
	f := newGateFixture()
	user := activeUser()
	f.sessions.add("ses_abc", user, time.Now().Add(time.Hour))

	w, body := do(t, f.router(), map[string]string{
		"Authorization": "Bearer not-a-jwt",
		"x-session-id":  "ses_abc",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %v", w.Code, body)
	}
	if body["method"] != "Session" {
		t.Errorf("method = %v", body["method"])
	}
}

func TestAuthSessionOnly(t *testing.T) {
	f := newGateFixture()
	f.sessions.add("ses_abc", activeUser(), time.Now().Add(time.Hour))

	w, body := do(t, f.router(), map[string]string{"x-session-id": "ses_abc"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %v", w.Code, body)
	}
	if body["username"] != "akone" || body["method"] != "Session" {
		t.Errorf("body = %v", body)
	}
}

func TestAuthSessionExpiryBoundary(t *testing.T) {
	f := newGateFixture()
	f.sessions.add("ses_live", activeUser(), time.Now().Add(time.Second))
	f.sessions.add("ses_dead", activeUser(), time.Now().Add(-time.Second))

	w, _ := do(t, f.router(), map[string]string{"x-session-id": "ses_live"})
	if w.Code != http.StatusOK {
		t.Errorf("session before expiry: status = %d", w.Code)
	}

	w, body := do(t, f.router(), map[string]string{"x-session-id": "ses_dead"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("session after expiry: status = %d", w.Code)
	}
	if body["code"] != "AUTH_REQUIRED" {
		t.Errorf("code = %v", body["code"])
	}
}

func TestSessionExpiredPredicate(t *testing.T) {
	now := time.Now()
	s := models.Session{ExpiresAt: now}

	if s.Expired(now.Add(-time.Second)) {
		t.Error("session one second before expiry must be live")
	}
	if !s.Expired(now) {
		t.Error("session at its expiry instant must be dead")
	}
	if !s.Expired(now.Add(time.Second)) {
		t.Error("session one second after expiry must be dead")
	}
}

func TestAuthUnknownSession(t *testing.T) {
	f := newGateFixture()

	w, body := do(t, f.router(), map[string]string{"x-session-id": "ses_gone"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d", w.Code)
	}
	if body["code"] != "AUTH_REQUIRED" {
		t.Errorf("code = %v", body["code"])
	}
}

func TestAuthPrivilegedToken(t *testing.T) {
	f := newGateFixture()
	sa := models.User{Username: "root-admin", Role: authz.RoleSuperAdmin, Active: true}

	// No user row exists for the privileged identity, yet the token passes.
	w, body := do(t, f.router(), map[string]string{"Authorization": "Bearer " + issue(t, sa)})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %v", w.Code, body)
	}
	if body["username"] != "root-admin" {
		t.Errorf("body = %v", body)
	}
}

func TestOptionalAuth(t *testing.T) {
	f := newGateFixture()
	user := activeUser()
	f.users.byID[user.ID] = user

	r := gin.New()
	r.GET("/maybe", f.auth.Optional(), func(c *gin.Context) {
		if identity, ok := CurrentIdentity(c); ok {
			c.JSON(http.StatusOK, gin.H{"username": identity.Username})
			return
		}
		c.JSON(http.StatusOK, gin.H{"username": nil})
	})

	req := httptest.NewRequest(http.MethodGet, "/maybe", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("anonymous status = %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/maybe", nil)
	req.Header.Set("Authorization", "Bearer "+issue(t, user))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var body map[string]any
	json.Unmarshal(w.Body.Bytes(), &body)
	if body["username"] != "akone" {
		t.Errorf("body = %v", body)
	}
}

func TestRequireRoles(t *testing.T) {
	f := newGateFixture()
	user := activeUser()
	f.users.byID[user.ID] = user

	r := f.router(RequireRoles(authz.RoleAdministrator))
	w, body := do(t, r, map[string]string{"Authorization": "Bearer " + issue(t, user)})
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d", w.Code)
	}
	if body["code"] != "INSUFFICIENT_PERMISSIONS" {
		t.Errorf("code = %v", body["code"])
	}
	if body["actual"] != string(authz.RoleQualityManager) {
		t.Errorf("actual = %v", body["actual"])
	}

	r = f.router(RequireRoles(authz.RoleQualityManager))
	w, _ = do(t, r, map[string]string{"Authorization": "Bearer " + issue(t, user)})
	if w.Code != http.StatusOK {
		t.Errorf("allowed role status = %d", w.Code)
	}
}

func TestRequirePermission(t *testing.T) {
	f := newGateFixture()
	user := activeUser()
	f.users.byID[user.ID] = user
	token := issue(t, user)

	r := f.router(RequirePermission(authz.PermManageUsers))
	w, body := do(t, r, map[string]string{"Authorization": "Bearer " + token})
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d", w.Code)
	}
	if body["code"] != "PERMISSION_DENIED" {
		t.Errorf("code = %v", body["code"])
	}

	r = f.router(RequirePermission(authz.PermViewStatistics))
	w, _ = do(t, r, map[string]string{"Authorization": "Bearer " + token})
	if w.Code != http.StatusOK {
		t.Errorf("granted permission status = %d", w.Code)
	}
}
